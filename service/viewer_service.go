package service

import (
	"context"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/varchasvakhare2022/Github-Stats-Analyzer/model"
)

// Viewer statuses
const (
	StatusIdle    = "idle"
	StatusLoading = "loading"
	StatusReady   = "ready"
	StatusError   = "error"
)

// ViewerState is what the rendering layer reads: at most one report and at
// most one error, never both
type ViewerState struct {
	Status   string          `json:"status"`
	Sequence uint64          `json:"sequence"`
	Report   *Report         `json:"report,omitempty"`
	Error    *model.APIError `json:"error,omitempty"`
}

// Viewer is the single query session behind the API. Submitting a username
// starts an asynchronous fetch; submitting again supersedes any in-flight
// one. Every query carries a monotonically increasing sequence number and a
// completion whose number is no longer the latest is dropped, so a stale
// response can never overwrite newer state.
type Viewer struct {
	mu sync.Mutex

	reportService ReportService
	sequence      uint64
	state         ViewerState
}

func NewViewer(reportService ReportService) *Viewer {
	return &Viewer{
		reportService: reportService,
		state:         ViewerState{Status: StatusIdle},
	}
}

// Submit starts a new query. Validation failures are synchronous and recorded
// as the current error without touching the network. Any previous error is
// cleared the moment a new query starts.
func (v *Viewer) Submit(login string) (uint64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.sequence++
	sequence := v.sequence

	if err := validateLogin(login); err != nil {
		apiErr := model.NewAPIError(err)
		v.state = ViewerState{Status: StatusError, Sequence: sequence, Error: &apiErr}
		return sequence, err
	}

	v.state = ViewerState{Status: StatusLoading, Sequence: sequence}

	go v.run(sequence, login)
	return sequence, nil
}

// run executes one query to completion. There is no abort control on an
// in-flight query, superseded results are simply discarded on arrival.
func (v *Viewer) run(sequence uint64, login string) {
	report, err := v.reportService.BuildReport(context.Background(), login)

	v.mu.Lock()
	defer v.mu.Unlock()

	if sequence != v.sequence {
		log.WithFields(log.Fields{
			"login":    login,
			"sequence": sequence,
			"latest":   v.sequence,
		}).Debug("dropping superseded query result")

		return
	}

	if err != nil {
		apiErr := model.NewAPIError(err)
		v.state = ViewerState{Status: StatusError, Sequence: sequence, Error: &apiErr}
		return
	}

	v.state = ViewerState{Status: StatusReady, Sequence: sequence, Report: report}
}

// Snapshot returns the current state for rendering
func (v *Viewer) Snapshot() ViewerState {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.state
}

// FilteredView recomputes the displayed subsequence from the current
// collection and the given criteria, together with the language options
// derived from the full collection
func (v *Viewer) FilteredView(query model.ViewQuery) (model.RepositoryCollection, []string, error) {
	v.mu.Lock()
	state := v.state
	v.mu.Unlock()

	if state.Status != StatusReady || state.Report == nil {
		return nil, nil, model.ErrNoReport
	}

	filtered := FilterRepositories(state.Report.Repositories, query)
	return filtered, AvailableLanguages(state.Report.Repositories), nil
}

func validateLogin(login string) error {
	if strings.TrimSpace(login) == "" {
		return model.ErrValidation
	}

	return nil
}
