package service

import (
	"fmt"
	"sort"

	"github.com/varchasvakhare2022/Github-Stats-Analyzer/model"
)

// ComputeAggregates derives the display totals from a complete collection.
// Pure function: same collection in, same aggregates out, no hidden state.
// An empty collection yields zero totals and an empty tally.
func ComputeAggregates(repos model.RepositoryCollection, topCount int) model.Aggregates {
	aggregates := model.Aggregates{
		Languages:       make(map[string]int),
		TopRepositories: []model.Repository{},
	}

	for _, r := range repos {
		aggregates.TotalStars += r.Stars
		aggregates.TotalForks += r.Forks

		// repositories without a primary language stay out of the tally entirely
		if r.Language != "" {
			aggregates.Languages[r.Language]++
		}
	}

	aggregates.TopRepositories = topRepositories(repos, topCount)
	return aggregates
}

// topRepositories returns the topCount most starred repositories without
// touching the order of the input collection
func topRepositories(repos model.RepositoryCollection, topCount int) []model.Repository {
	if topCount <= 0 {
		return []model.Repository{}
	}

	ranked := make([]model.Repository, len(repos))
	copy(ranked, repos)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Stars > ranked[j].Stars
	})

	if len(ranked) > topCount {
		ranked = ranked[:topCount]
	}

	return ranked
}

// HumanNumber renders counts the way the viewer displays them (1.5k style)
func HumanNumber(n int) string {
	if n >= 1000 {
		return fmt.Sprintf("%.1fk", float64(n)/1000)
	}

	return fmt.Sprintf("%d", n)
}
