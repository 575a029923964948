package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/varchasvakhare2022/Github-Stats-Analyzer/model"
)

func repoNames(repos model.RepositoryCollection) []string {
	names := make([]string, 0, len(repos))
	for _, r := range repos {
		names = append(names, r.Name)
	}
	return names
}

// TestFilterRepositories will test search, language filter and sort orders
func TestFilterRepositories(t *testing.T) {
	collection := model.RepositoryCollection{
		{ID: 2, Name: "beta", Description: "a rust experiment", Stars: 50, Forks: 1, Language: "Rust", UpdatedAt: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
		{ID: 1, Name: "alpha", Description: "tooling", Stars: 10, Forks: 2, Language: "Go", UpdatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{ID: 3, Name: "gamma", Stars: 10, Forks: 5, UpdatedAt: time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)},
	}

	tests := []struct {
		name          string
		query         model.ViewQuery
		expectedNames []string
	}{
		{
			name:          "Empty criteria keep the upstream order",
			query:         model.ViewQuery{},
			expectedNames: []string{"beta", "alpha", "gamma"},
		},
		{
			name:          "Sort by stars descending",
			query:         model.ViewQuery{Sort: model.SortStars},
			expectedNames: []string{"beta", "alpha", "gamma"},
		},
		{
			name:          "Sort by forks descending",
			query:         model.ViewQuery{Sort: model.SortForks},
			expectedNames: []string{"gamma", "alpha", "beta"},
		},
		{
			name:          "Sort by name ascending",
			query:         model.ViewQuery{Sort: model.SortName},
			expectedNames: []string{"alpha", "beta", "gamma"},
		},
		{
			name:          "Search matches the name",
			query:         model.ViewQuery{Search: "alp"},
			expectedNames: []string{"alpha"},
		},
		{
			name:          "Search matches the description case insensitively",
			query:         model.ViewQuery{Search: "RUST"},
			expectedNames: []string{"beta"},
		},
		{
			name:          "Language filter is an exact match",
			query:         model.ViewQuery{Language: "Rust"},
			expectedNames: []string{"beta"},
		},
		{
			name:          "Empty language filter includes repositories without language",
			query:         model.ViewQuery{Language: ""},
			expectedNames: []string{"beta", "alpha", "gamma"},
		},
		{
			name:          "Search and language filter combine with AND",
			query:         model.ViewQuery{Search: "a", Language: "Go"},
			expectedNames: []string{"alpha"},
		},
		{
			name:          "No match gives an empty view",
			query:         model.ViewQuery{Search: "zzz"},
			expectedNames: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filtered := FilterRepositories(collection, tt.query)
			assert.Equal(t, tt.expectedNames, repoNames(filtered))
		})
	}
}

// TestFilterRepositoriesDoesNotMutate checks the collection is never reordered
func TestFilterRepositoriesDoesNotMutate(t *testing.T) {
	collection := model.RepositoryCollection{
		{ID: 2, Name: "beta", Stars: 50, UpdatedAt: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
		{ID: 1, Name: "alpha", Stars: 10, UpdatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	FilterRepositories(collection, model.ViewQuery{Sort: model.SortName})

	assert.Equal(t, []string{"beta", "alpha"}, repoNames(collection))
}

func TestFilterRepositoriesEmptyCollection(t *testing.T) {
	filtered := FilterRepositories(model.RepositoryCollection{}, model.ViewQuery{Search: "x", Sort: model.SortStars})
	assert.Empty(t, filtered)
}

// TestAvailableLanguages checks the filter control options come from the
// full collection, distinct and alphabetically sorted
func TestAvailableLanguages(t *testing.T) {
	collection := model.RepositoryCollection{
		{ID: 1, Language: "Rust"},
		{ID: 2, Language: "Go"},
		{ID: 3, Language: "Go"},
		{ID: 4},
	}

	assert.Equal(t, []string{"Go", "Rust"}, AvailableLanguages(collection))
	assert.Empty(t, AvailableLanguages(model.RepositoryCollection{}))
}
