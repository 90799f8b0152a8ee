package domain

import "time"

// TokenPair is the credential pair issued on login.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Claims is the subset of an access token payload the client reads. It is
// never trusted for authorization; the backend verifies signatures.
type Claims struct {
	SubjectID string
	ExpiresAt time.Time
	TokenType string
}

// HasExpiry reports whether the token declared an exp claim.
func (c Claims) HasExpiry() bool { return !c.ExpiresAt.IsZero() }
