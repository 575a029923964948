package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/go-github/v66/github"
	"github.com/varchasvakhare2022/Github-Stats-Analyzer/config"
	"github.com/varchasvakhare2022/Github-Stats-Analyzer/model"

	log "github.com/sirupsen/logrus"

	"golang.org/x/time/rate"
)

type GithubService interface {
	FetchProfile(ctx context.Context, login string) (model.Profile, error)
	FetchAllRepositories(ctx context.Context, login string) (model.RepositoryCollection, error)
	FetchRateLimit(ctx context.Context, anonymous bool) (model.RateLimitStatus, error)

	SetCredential(token string)
	HasCredential() bool
}

type githubService struct {
	mu sync.RWMutex

	// baseClient keeps the transport (and BaseURL in tests) so that the
	// authenticated client can be rebuilt on every credential change
	baseClient *github.Client
	client     *github.Client
	token      string

	githubRateLimiter *rate.Limiter
	config            config.Config
}

// NewGithubService builds the fetcher on top of a go-github client.
// The client is injected so tests can pass a mocked one. The rate limiter
// guards outbound calls so we fail fast instead of burning the upstream quota.
func NewGithubService(config config.Config, githubClient *github.Client, rateLimiter *rate.Limiter) GithubService {
	svc := &githubService{
		baseClient:        githubClient,
		client:            githubClient,
		githubRateLimiter: rateLimiter,
		config:            config,
	}

	svc.SetCredential(config.Github.Token)
	return svc
}

// SetCredential swaps the bearer token used for all subsequent requests.
// An empty token downgrades to anonymous access.
func (s *githubService) SetCredential(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token

	if token == "" {
		s.client = s.baseClient
		return
	}

	s.client = s.baseClient.WithAuthToken(token)
}

func (s *githubService) HasCredential() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.token != ""
}

func (s *githubService) snapshot() (*github.Client, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.client, s.token != ""
}

// FetchProfile returns the profile of a single user.
// A 404 here means the user does not exist, which is its own failure class.
func (s *githubService) FetchProfile(ctx context.Context, login string) (model.Profile, error) {
	client, hasCredential := s.snapshot()

	if !s.githubRateLimiter.Allow() {
		log.Warning("the Github rate limit has been reached. Use a token or wait until the limit reset")
		return model.Profile{}, model.ErrRateLimitReached
	}

	log.WithField("login", login).Debug("fetch user profile from github")

	user, resp, err := client.Users.Get(ctx, login)

	if err != nil {
		return model.Profile{}, s.classifyRequestError(resp, err, true, hasCredential)
	}

	return model.Profile{
		Login:       user.GetLogin(),
		Name:        user.GetName(),
		AvatarURL:   user.GetAvatarURL(),
		Bio:         user.GetBio(),
		Followers:   user.GetFollowers(),
		Following:   user.GetFollowing(),
		PublicRepos: user.GetPublicRepos(),
		CreatedAt:   user.GetCreatedAt().Time,
		Location:    user.GetLocation(),
		Company:     user.GetCompany(),
		Blog:        user.GetBlog(),
	}, nil
}

// FetchAllRepositories accumulates every page of the user's repositories.
// Pages are requested strictly sequentially because the decision to continue
// depends on the size of the previous page: the first page shorter than the
// fixed page size terminates the loop. Any page failure aborts the whole
// aggregation, no partial collection is ever returned.
func (s *githubService) FetchAllRepositories(ctx context.Context, login string) (model.RepositoryCollection, error) {
	client, hasCredential := s.snapshot()

	collection := make(model.RepositoryCollection, 0)
	seen := make(map[int64]bool)

	for page := 1; ; page++ {

		// the upstream is trusted to eventually return a short page, but a
		// hard ceiling keeps a misbehaving upstream from looping us forever
		if page > s.config.Github.MaxRepositoryPages {
			log.WithFields(log.Fields{
				"login":    login,
				"maxPages": s.config.Github.MaxRepositoryPages,
			}).Error("repository pagination exceeded the page ceiling")

			return nil, model.ErrTooManyPages
		}

		if !s.githubRateLimiter.Allow() {
			log.Warning("the Github rate limit has been reached. Use a token or wait until the limit reset")
			return nil, model.ErrRateLimitReached
		}

		log.WithFields(log.Fields{
			"login": login,
			"page":  page,
		}).Debug("fetch repositories page from github")

		repos, resp, err := client.Repositories.ListByUser(ctx, login, &github.RepositoryListByUserOptions{
			Sort: "updated",
			ListOptions: github.ListOptions{
				Page:    page,
				PerPage: s.config.Github.RepositoriesPerPage,
			},
		})

		if err != nil {
			return nil, s.classifyRequestError(resp, err, false, hasCredential)
		}

		for _, r := range repos {
			if seen[r.GetID()] {
				continue
			}

			seen[r.GetID()] = true

			collection = append(collection, model.Repository{
				ID:          r.GetID(),
				Name:        r.GetName(),
				Description: r.GetDescription(),
				Language:    r.GetLanguage(),
				Stars:       r.GetStargazersCount(),
				Forks:       r.GetForksCount(),
				UpdatedAt:   r.GetUpdatedAt().Time,
				HTMLURL:     r.GetHTMLURL(),
			})
		}

		if len(repos) < s.config.Github.RepositoriesPerPage {
			break
		}
	}

	return collection, nil
}

// FetchRateLimit reads the current quota for the active credential.
// With anonymous set the configured token is bypassed, which is how the
// poller retries after a 401. This endpoint does not count against the
// quota so the local limiter is not consulted.
func (s *githubService) FetchRateLimit(ctx context.Context, anonymous bool) (model.RateLimitStatus, error) {
	client, hasCredential := s.snapshot()

	if anonymous {
		client = s.baseClient
		hasCredential = false
	}

	limits, resp, err := client.RateLimit.Get(ctx)

	if err != nil {
		return model.RateLimitStatus{}, s.classifyRequestError(resp, err, false, hasCredential)
	}

	// a body without the core resource is unusable, callers suppress the status
	if limits == nil || limits.Core == nil {
		return model.RateLimitStatus{}, &model.UpstreamError{Status: resp.StatusCode}
	}

	return model.RateLimitStatus{
		Remaining: limits.Core.Remaining,
		Limit:     limits.Core.Limit,
		Reset:     limits.Core.Reset.Unix(),
		Anonymous: !hasCredential,
	}, nil
}

// classifyRequestError turns a go-github error into one of the pipeline
// failure classes. No retry happens here, retry and fallback policies
// belong to the callers.
func (s *githubService) classifyRequestError(resp *github.Response, err error, profileLookup bool, hasCredential bool) error {
	if _, ok := err.(*github.RateLimitError); ok {

		// drain the local limiter so it stays aligned with the upstream one
		if !s.githubRateLimiter.AllowN(time.Now(), s.githubRateLimiter.Burst()) {
			log.Debug("local rate limiter already drained")
		}

		log.Warning("the Github rate limit has been reached. Use a token or wait until the limit reset")
		return model.ErrRateLimitReached
	}

	if resp != nil {
		switch {
		case resp.StatusCode == 404 && profileLookup:
			return model.ErrUserNotFound

		case resp.StatusCode == 401 && hasCredential:
			return model.ErrInvalidCredential

		case resp.StatusCode >= 400:
			log.WithError(err).WithField("status", resp.StatusCode).Error("unexpected github answer")
			return &model.UpstreamError{Status: resp.StatusCode}
		}
	}

	log.WithError(err).Error("error catched when fetching data from github")
	return &model.TransportError{Err: err}
}
