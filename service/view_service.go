package service

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/varchasvakhare2022/Github-Stats-Analyzer/model"
)

// FilterRepositories derives the displayed subsequence of a collection from
// the user supplied criteria. Pure function over its inputs, the collection
// itself is never mutated: sorting happens on a copy.
//
// Search is a case-insensitive substring match on name or description,
// language is an exact match (empty matches everything, including
// repositories without a language), both predicates must hold.
func FilterRepositories(repos model.RepositoryCollection, query model.ViewQuery) model.RepositoryCollection {
	query = query.Normalized()

	filtered := make(model.RepositoryCollection, 0, len(repos))
	search := strings.ToLower(strings.TrimSpace(query.Search))

	for _, r := range repos {
		if search != "" {
			name := strings.ToLower(r.Name)
			description := strings.ToLower(r.Description)

			if !strings.Contains(name, search) && !strings.Contains(description, search) {
				continue
			}
		}

		if query.Language != "" && r.Language != query.Language {
			continue
		}

		filtered = append(filtered, r)
	}

	sortRepositories(filtered, query.Sort)
	return filtered
}

// sortRepositories orders the view in place.
// Stable sorts keep the upstream order for exact ties, so the default
// updated sort over an upstream ordered collection is an identity.
func sortRepositories(repos model.RepositoryCollection, sortKey string) {
	switch sortKey {
	case model.SortStars:
		sort.SliceStable(repos, func(i, j int) bool {
			return repos[i].Stars > repos[j].Stars
		})

	case model.SortForks:
		sort.SliceStable(repos, func(i, j int) bool {
			return repos[i].Forks > repos[j].Forks
		})

	case model.SortName:
		collator := collate.New(language.Und, collate.IgnoreCase)

		sort.SliceStable(repos, func(i, j int) bool {
			return collator.CompareString(repos[i].Name, repos[j].Name) < 0
		})

	default: // model.SortUpdated
		sort.SliceStable(repos, func(i, j int) bool {
			return repos[i].UpdatedAt.After(repos[j].UpdatedAt)
		})
	}
}

// AvailableLanguages lists the distinct non-empty language values of the FULL
// collection, alphabetically sorted. The filter control is always built from
// the complete collection, not from the filtered view.
func AvailableLanguages(repos model.RepositoryCollection) []string {
	seen := make(map[string]bool)
	languages := make([]string, 0)

	for _, r := range repos {
		if r.Language == "" || seen[r.Language] {
			continue
		}

		seen[r.Language] = true
		languages = append(languages, r.Language)
	}

	sort.Strings(languages)
	return languages
}
