// Package jwtinspect reads the claims of access tokens for client-side
// decisions such as skipping a request that is bound to fail. Signatures are
// never verified here; that is the backend's job.
package jwtinspect

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ecoruta/portal/internal/core/domain"
)

// payload is the claim set issued by the backend. The subject travels in
// user_id, as a number or a string depending on the backend version.
type payload struct {
	UserID    json.RawMessage `json:"user_id"`
	TokenType string          `json:"token_type"`
	jwt.RegisteredClaims
}

// Inspector decodes token payloads.
type Inspector struct {
	parser *jwt.Parser
	now    func() time.Time
}

// Option customises an Inspector.
type Option func(*Inspector)

// WithClock injects the time source used by IsExpired.
func WithClock(now func() time.Time) Option {
	return func(i *Inspector) {
		if now != nil {
			i.now = now
		}
	}
}

func New(opts ...Option) *Inspector {
	i := &Inspector{
		parser: jwt.NewParser(jwt.WithPaddingAllowed()),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Decode extracts the subject and expiry of token. Any structural problem
// yields domain.ErrInvalidToken.
func (i *Inspector) Decode(token string) (domain.Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return domain.Claims{}, fmt.Errorf("%w: %d segments", domain.ErrInvalidToken, len(parts))
	}

	raw, err := i.parser.DecodeSegment(parts[1])
	if err != nil {
		return domain.Claims{}, fmt.Errorf("%w: decode payload: %v", domain.ErrInvalidToken, err)
	}

	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return domain.Claims{}, fmt.Errorf("%w: parse payload: %v", domain.ErrInvalidToken, err)
	}

	claims := domain.Claims{
		SubjectID: subject(p),
		TokenType: p.TokenType,
	}
	if p.ExpiresAt != nil {
		claims.ExpiresAt = p.ExpiresAt.Time
	}
	return claims, nil
}

// IsExpired reports whether token can no longer be used. Invalid tokens are
// expired; a token without exp claim is not.
func (i *Inspector) IsExpired(token string) bool {
	claims, err := i.Decode(token)
	if err != nil {
		return true
	}
	if !claims.HasExpiry() {
		return false
	}
	return claims.ExpiresAt.Unix() <= i.now().Unix()
}

// SubjectID returns the numeric user id carried by token.
func (i *Inspector) SubjectID(token string) (int64, error) {
	claims, err := i.Decode(token)
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(claims.SubjectID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: subject %q is not numeric", domain.ErrInvalidToken, claims.SubjectID)
	}
	return id, nil
}

func subject(p payload) string {
	raw := bytes.TrimSpace(p.UserID)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return p.Subject
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return p.Subject
}
