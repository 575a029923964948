package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/varchasvakhare2022/Github-Stats-Analyzer/model"
)

// stubGithubService fakes only the rate limit endpoint, the poller never
// touches the other operations
type stubGithubService struct {
	mu sync.Mutex

	hasCredential bool
	authedErr     error
	anonymousErr  error
	status        model.RateLimitStatus

	anonymousGate chan struct{} // when set, anonymous calls block until closed

	calls []bool // anonymous flag of every FetchRateLimit call
}

func (s *stubGithubService) FetchProfile(context.Context, string) (model.Profile, error) {
	panic("not used by the poller")
}

func (s *stubGithubService) FetchAllRepositories(context.Context, string) (model.RepositoryCollection, error) {
	panic("not used by the poller")
}

func (s *stubGithubService) FetchRateLimit(_ context.Context, anonymous bool) (model.RateLimitStatus, error) {
	s.mu.Lock()
	s.calls = append(s.calls, anonymous)
	gate := s.anonymousGate
	s.mu.Unlock()

	if anonymous && gate != nil {
		<-gate
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if anonymous {
		if s.anonymousErr != nil {
			return model.RateLimitStatus{}, s.anonymousErr
		}

		status := s.status
		status.Anonymous = true
		return status, nil
	}

	if s.authedErr != nil {
		return model.RateLimitStatus{}, s.authedErr
	}

	return s.status, nil
}

func (s *stubGithubService) SetCredential(string) {}

func (s *stubGithubService) HasCredential() bool {
	return s.hasCredential
}

func (s *stubGithubService) recordedCalls() []bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]bool{}, s.calls...)
}

// TestPollerCredentialDowngrade checks the 401 fallback: the credential is
// marked rejected for the session and the same request retried anonymously
func TestPollerCredentialDowngrade(t *testing.T) {
	stub := &stubGithubService{
		hasCredential: true,
		authedErr:     model.ErrInvalidCredential,
		status:        model.RateLimitStatus{Remaining: 55, Limit: 60},
	}

	poller := NewRateLimitPoller(stub, time.Minute)
	poller.poll(context.Background())

	status, ok := poller.Status()
	require.True(t, ok)
	assert.True(t, status.Anonymous)
	assert.True(t, status.CredentialRejected)
	assert.Equal(t, 60, status.Limit)

	// first an authenticated attempt, then the anonymous retry
	assert.Equal(t, []bool{false, true}, stub.recordedCalls())

	// the rejection sticks: the next poll goes anonymous directly
	poller.poll(context.Background())
	assert.Equal(t, []bool{false, true, true}, stub.recordedCalls())
}

// TestPollerSuppressesStatusOnFailure checks no stale or partial status is
// ever shown
func TestPollerSuppressesStatusOnFailure(t *testing.T) {
	stub := &stubGithubService{
		hasCredential: false,
		anonymousErr:  &model.TransportError{},
	}

	poller := NewRateLimitPoller(stub, time.Minute)
	poller.poll(context.Background())

	_, ok := poller.Status()
	assert.False(t, ok)

	// once the endpoint recovers the status comes back
	stub.mu.Lock()
	stub.anonymousErr = nil
	stub.status = model.RateLimitStatus{Remaining: 60, Limit: 60}
	stub.mu.Unlock()

	poller.poll(context.Background())

	status, ok := poller.Status()
	require.True(t, ok)
	assert.Equal(t, 60, status.Remaining)
}

// TestPollerCredentialChanged checks a new credential resets the rejection
// and triggers an immediate poll
func TestPollerCredentialChanged(t *testing.T) {
	stub := &stubGithubService{
		hasCredential: true,
		authedErr:     model.ErrInvalidCredential,
		status:        model.RateLimitStatus{Remaining: 60, Limit: 60},
	}

	poller := NewRateLimitPoller(stub, time.Minute)
	poller.poll(context.Background())

	status, ok := poller.Status()
	require.True(t, ok)
	assert.True(t, status.CredentialRejected)

	// the new token is valid
	stub.mu.Lock()
	stub.authedErr = nil
	stub.status = model.RateLimitStatus{Remaining: 4999, Limit: 5000}
	stub.mu.Unlock()

	poller.CredentialChanged()
	poller.poll(context.Background())

	status, ok = poller.Status()
	require.True(t, ok)
	assert.False(t, status.CredentialRejected)
	assert.False(t, status.Anonymous)
	assert.Equal(t, 5000, status.Limit)
}

// TestPollerCredentialChangedDuringPoll checks a poll that straddles a
// credential change cannot re-mark the fresh credential as rejected
func TestPollerCredentialChangedDuringPoll(t *testing.T) {
	gate := make(chan struct{})
	stub := &stubGithubService{
		hasCredential: true,
		authedErr:     model.ErrInvalidCredential,
		anonymousGate: gate,
		status:        model.RateLimitStatus{Remaining: 55, Limit: 60},
	}

	poller := NewRateLimitPoller(stub, time.Minute)

	done := make(chan struct{})
	go func() {
		poller.poll(context.Background())
		close(done)
	}()

	// wait for the first poll to hit the 401 and block in its anonymous retry
	require.Eventually(t, func() bool {
		return len(stub.recordedCalls()) == 2
	}, time.Second, time.Millisecond)

	// a valid token arrives while that poll is still in flight
	stub.mu.Lock()
	stub.authedErr = nil
	stub.status = model.RateLimitStatus{Remaining: 4999, Limit: 5000}
	stub.mu.Unlock()

	poller.CredentialChanged()

	close(gate)
	<-done

	// the queued refresh polls with the new token, not anonymously
	poller.poll(context.Background())

	calls := stub.recordedCalls()
	assert.Equal(t, []bool{false, true, false}, calls)

	status, ok := poller.Status()
	require.True(t, ok)
	assert.False(t, status.CredentialRejected)
	assert.False(t, status.Anonymous)
	assert.Equal(t, 5000, status.Limit)
}

// TestPollerRunStopsOnCancel checks the repeating poll is cancellable
func TestPollerRunStopsOnCancel(t *testing.T) {
	stub := &stubGithubService{
		status: model.RateLimitStatus{Remaining: 60, Limit: 60},
	}

	poller := NewRateLimitPoller(stub, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		poller.Run(ctx)
		close(done)
	}()

	// let it poll at least once, then stop it
	require.Eventually(t, func() bool {
		_, ok := poller.Status()
		return ok
	}, time.Second, time.Millisecond)

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop on context cancellation")
	}
}
