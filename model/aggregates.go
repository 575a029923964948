package model

// Aggregates are derived numbers computed from a complete RepositoryCollection.
// They are recomputed in full whenever the collection changes, never cached
// across queries and never incrementally maintained.
type Aggregates struct {
	TotalStars      int            `json:"totalStars"`
	TotalForks      int            `json:"totalForks"`
	Languages       map[string]int `json:"languages"`
	TopRepositories []Repository   `json:"topRepositories"`
}
