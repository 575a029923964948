package service

import (
	"context"
	"strings"
	"time"

	"github.com/remeh/sizedwaitgroup"
	log "github.com/sirupsen/logrus"

	"github.com/varchasvakhare2022/Github-Stats-Analyzer/config"
	"github.com/varchasvakhare2022/Github-Stats-Analyzer/model"
)

// Report is the complete result of one query: profile, full repository
// collection and the aggregates derived from it. It is the snapshot handed
// to every consumer, including the PDF export collaborator.
type Report struct {
	Login        string                     `json:"login"`
	Profile      model.Profile              `json:"profile"`
	Repositories model.RepositoryCollection `json:"repositories"`
	Aggregates   model.Aggregates           `json:"aggregates"`
	FetchedAt    time.Time                  `json:"fetchedAt"`
}

type ReportService interface {
	BuildReport(ctx context.Context, login string) (*Report, error)
}

type reportService struct {
	githubService GithubService
	config        config.Config
}

func NewReportService(config config.Config, githubService GithubService) ReportService {
	return reportService{
		githubService: githubService,
		config:        config,
	}
}

// BuildReport fetches profile and repositories concurrently and aggregates
// the result. Both fetches must succeed: when either fails the other's
// result is discarded and the single failure is surfaced, there is no
// partial profile-without-repos state.
func (s reportService) BuildReport(ctx context.Context, login string) (*Report, error) {
	login = strings.TrimSpace(login)

	if login == "" {
		return nil, model.ErrValidation
	}

	log.WithField("login", login).Info("fetch profile and repositories from github")

	var (
		profile    model.Profile
		profileErr error

		repos    model.RepositoryCollection
		reposErr error
	)

	swg := sizedwaitgroup.New(s.config.Github.MaxParallelTasksAllowed)

	swg.Add()
	go func() {
		defer swg.Done()
		profile, profileErr = s.githubService.FetchProfile(ctx, login)
	}()

	swg.Add()
	go func() {
		defer swg.Done()
		repos, reposErr = s.githubService.FetchAllRepositories(ctx, login)
	}()

	swg.Wait()

	// the profile failure wins when both fetches fail, it carries the more
	// specific classification (user not found)
	if profileErr != nil {
		return nil, profileErr
	}

	if reposErr != nil {
		return nil, reposErr
	}

	log.WithFields(log.Fields{
		"login":        login,
		"repositories": len(repos),
	}).Debug("query complete. computing aggregates")

	return &Report{
		Login:        login,
		Profile:      profile,
		Repositories: repos,
		Aggregates:   ComputeAggregates(repos, s.config.Github.TopRepositories),
		FetchedAt:    time.Now(),
	}, nil
}
