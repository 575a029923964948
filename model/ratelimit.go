package model

import "time"

// RateLimitStatus mirrors the core resource of the Github /rate_limit endpoint
// for the active credential. It is polled independently of any query.
type RateLimitStatus struct {
	Remaining int   `json:"remaining"`
	Limit     int   `json:"limit"`
	Reset     int64 `json:"reset"` // epoch seconds
	Anonymous bool  `json:"anonymous"`

	// CredentialRejected is set when the configured token was refused with a 401
	// and the poller fell back to anonymous limits for the rest of the session
	CredentialRejected bool `json:"credentialRejected,omitempty"`
}

// ResetTime returns the reset timestamp as a time.Time
func (s RateLimitStatus) ResetTime() time.Time {
	return time.Unix(s.Reset, 0)
}
