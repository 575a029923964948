package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/go-github/v66/github"
	githubMock "github.com/migueleliasweb/go-github-mock/src/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/varchasvakhare2022/Github-Stats-Analyzer/config"
	"github.com/varchasvakhare2022/Github-Stats-Analyzer/model"
)

// TestBuildReport will test the combined profile + repositories query
func TestBuildReport(t *testing.T) {
	tests := []struct {
		name          string
		login         string
		profileStatus int
		reposStatus   int
		expectedErr   error
	}{
		{
			name:          "Both fetches succeed",
			login:         "octocat",
			profileStatus: http.StatusOK,
			reposStatus:   http.StatusOK,
		},
		{
			name:        "Blank username never reaches the network",
			login:       "   ",
			expectedErr: model.ErrValidation,
		},
		{
			name:          "Profile not found discards the repositories result",
			login:         "ghost",
			profileStatus: http.StatusNotFound,
			reposStatus:   http.StatusOK,
			expectedErr:   model.ErrUserNotFound,
		},
		{
			name:          "Repository failure aborts the whole query",
			login:         "octocat",
			profileStatus: http.StatusOK,
			reposStatus:   http.StatusInternalServerError,
			expectedErr:   &model.UpstreamError{Status: http.StatusInternalServerError},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockedHTTPClient := githubMock.NewMockedHTTPClient(
				githubMock.WithRequestMatchHandler(
					githubMock.GetUsersByUsername,
					http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
						if tt.profileStatus != http.StatusOK {
							githubMock.WriteError(w, tt.profileStatus, http.StatusText(tt.profileStatus))
							return
						}

						user := &github.User{Login: github.String(tt.login), Followers: github.Int(10), Following: github.Int(5)}
						if _, err := w.Write(githubMock.MustMarshal(user)); err != nil {
							t.Error("unable to configure mock http client")
						}
					}),
				),
				githubMock.WithRequestMatchHandler(
					githubMock.GetUsersReposByUsername,
					http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
						if tt.reposStatus != http.StatusOK {
							githubMock.WriteError(w, tt.reposStatus, http.StatusText(tt.reposStatus))
							return
						}

						if _, err := w.Write(githubMock.MustMarshal(makeRepositoriesPage(1, 3))); err != nil {
							t.Error("unable to configure mock http client")
						}
					}),
				),
			)

			svc := newTestService(t, mockedHTTPClient, nil)
			reports := NewReportService(*config.GetDefault(), svc)

			report, err := reports.BuildReport(context.Background(), tt.login)

			if tt.expectedErr != nil {
				require.Error(t, err)
				assert.Nil(t, report)

				var expectedUpstream *model.UpstreamError
				if upstream, ok := tt.expectedErr.(*model.UpstreamError); ok {
					require.ErrorAs(t, err, &expectedUpstream)
					assert.Equal(t, upstream.Status, expectedUpstream.Status)
				} else {
					assert.ErrorIs(t, err, tt.expectedErr)
				}

				return
			}

			require.NoError(t, err)
			require.NotNil(t, report)
			assert.Equal(t, tt.login, report.Login)
			assert.Len(t, report.Repositories, 3)
			assert.Equal(t, 3, report.Aggregates.TotalStars)
			assert.Equal(t, map[string]int{"Go": 3}, report.Aggregates.Languages)
		})
	}
}
