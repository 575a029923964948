package model

import "time"

// Repository is one public repository owned by the queried user
// Repositories are immutable value records, the full set is replaced per query
type Repository struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Language    string    `json:"language,omitempty"` // primary language, can be empty
	Stars       int       `json:"stars"`
	Forks       int       `json:"forks"`
	UpdatedAt   time.Time `json:"updatedAt"`
	HTMLURL     string    `json:"htmlUrl"`
}

// RepositoryCollection is the complete ordered set of a user's repositories,
// accumulated across paginated fetches. Order follows the upstream API sort
// (most recently updated first) until a view re-sorts a copy of it.
type RepositoryCollection []Repository
