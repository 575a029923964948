package model

// Sort keys accepted by the repository view
const (
	SortUpdated = "updated"
	SortStars   = "stars"
	SortForks   = "forks"
	SortName    = "name"
)

// ViewQuery carries the user supplied display criteria for the repository list.
// An empty search matches everything, an empty language matches everything
// including repositories without a language.
type ViewQuery struct {
	Search   string `form:"search"`
	Language string `form:"language"`
	Sort     string `form:"sort"`
}

// Normalized returns a copy with the default sort key applied when none is set
func (q ViewQuery) Normalized() ViewQuery {
	if q.Sort == "" {
		q.Sort = SortUpdated
	}

	return q
}

// ValidSortKey reports whether the sort key is one of the supported values
func (q ViewQuery) ValidSortKey() bool {
	switch q.Normalized().Sort {
	case SortUpdated, SortStars, SortForks, SortName:
		return true
	}

	return false
}
