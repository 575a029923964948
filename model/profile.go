package model

import "time"

// Profile holds the account metadata of the queried Github user.
// A profile is replaced wholesale on every new query, never patched.
type Profile struct {
	Login       string    `json:"login"`
	Name        string    `json:"name,omitempty"`
	AvatarURL   string    `json:"avatarUrl"`
	Bio         string    `json:"bio,omitempty"`
	Followers   int       `json:"followers"`
	Following   int       `json:"following"`
	PublicRepos int       `json:"publicRepos"`
	CreatedAt   time.Time `json:"createdAt"`
	Location    string    `json:"location,omitempty"`
	Company     string    `json:"company,omitempty"`
	Blog        string    `json:"blog,omitempty"`
}

// FollowRatio returns following divided by followers.
// The second return value is false when the user has no followers,
// in which case the ratio is undefined and displayed as N/A
func (p Profile) FollowRatio() (float64, bool) {
	if p.Followers <= 0 {
		return 0, false
	}

	return float64(p.Following) / float64(p.Followers), true
}
