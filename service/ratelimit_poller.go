package service

import (
	"context"
	"errors"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/varchasvakhare2022/Github-Stats-Analyzer/model"
)

// RateLimitPoller maintains the current RateLimitStatus for the active
// credential, independently of any query. It polls once immediately, then on
// a fixed interval, and again right after every credential change.
//
// When the token is refused with a 401 the poller marks it rejected for the
// rest of the session and retries the same request anonymously. On any other
// failure, or on a structurally unexpected body, the status is suppressed
// entirely rather than showing stale or partial numbers.
type RateLimitPoller struct {
	mu sync.Mutex

	githubService GithubService
	interval      time.Duration

	status   *model.RateLimitStatus // nil means suppressed
	rejected bool

	// generation counts credential changes so that a poll finishing after a
	// change cannot write back state observed under the old credential
	generation uint64

	refresh chan struct{}
}

func NewRateLimitPoller(githubService GithubService, interval time.Duration) *RateLimitPoller {
	return &RateLimitPoller{
		githubService: githubService,
		interval:      interval,
		refresh:       make(chan struct{}, 1),
	}
}

// Run polls until the context is cancelled. Callers start it in its own
// goroutine and cancel the context on teardown.
func (p *RateLimitPoller) Run(ctx context.Context) {
	p.poll(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug("rate limit poller stopped")
			return

		case <-ticker.C:
			p.poll(ctx)

		case <-p.refresh:
			p.poll(ctx)
		}
	}
}

// CredentialChanged clears the rejected flag and triggers an immediate poll
// with the new credential
func (p *RateLimitPoller) CredentialChanged() {
	p.mu.Lock()
	p.rejected = false
	p.generation++
	p.mu.Unlock()

	select {
	case p.refresh <- struct{}{}:
	default:
	}
}

// Status returns the latest rate limit snapshot, false while suppressed
func (p *RateLimitPoller) Status() (model.RateLimitStatus, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.status == nil {
		return model.RateLimitStatus{}, false
	}

	return *p.status, true
}

func (p *RateLimitPoller) poll(ctx context.Context) {
	p.mu.Lock()
	generation := p.generation
	anonymous := p.rejected || !p.githubService.HasCredential()
	p.mu.Unlock()

	sawRejection := false

	status, err := p.githubService.FetchRateLimit(ctx, anonymous)

	// a refused token is remembered for the session and the same request is
	// immediately retried without it
	if errors.Is(err, model.ErrInvalidCredential) {
		log.Warning("github rejected the configured token. falling back to anonymous rate limits")

		sawRejection = true
		status, err = p.githubService.FetchRateLimit(ctx, true)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// the credential changed while this poll was in flight: the result
	// describes the old one, and the refresh it queued re-polls with the new
	if generation != p.generation {
		return
	}

	if sawRejection {
		p.rejected = true
	}

	if err != nil {
		log.WithError(err).Debug("unable to fetch rate limit. suppressing status")
		p.status = nil
		return
	}

	status.CredentialRejected = p.rejected
	p.status = &status
}
