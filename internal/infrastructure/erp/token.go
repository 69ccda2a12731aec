package erp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"
)

const (
	// defaultTokenTTL is the conservative cache lifetime. The ERP advertises
	// tokens valid for roughly 15 minutes; caching for 14 avoids
	// edge-of-expiry rejections.
	defaultTokenTTL = 14 * time.Minute

	// jwtExpirySafety backs off the token's own exp claim so a token is never
	// presented within a minute of expiring
	jwtExpirySafety = time.Minute
)

// ErrUnknownTokenShape indicates the login response was valid JSON but matched
// none of the documented token field names
var ErrUnknownTokenShape = errors.New("erp: unrecognized login response shape")

// AuthError is returned when the ERP login endpoint rejects the credentials
// or is otherwise unavailable. Status and Body carry the upstream diagnostics.
type AuthError struct {
	Status int
	Body   string
}

// Error implements the error interface
func (e *AuthError) Error() string {
	return fmt.Sprintf("erp: login failed with status %d: %s", e.Status, e.Body)
}

// loginFunc performs the upstream login call and returns the raw response body
type loginFunc func(ctx context.Context) ([]byte, error)

// TokenCache memoizes the ERP bearer token. Process-wide state shared by the
// catalog sync and webhook pipelines; safe for concurrent use. Concurrent
// refreshes collapse into a single in-flight login via singleflight.
type TokenCache struct {
	login loginFunc
	ttl   time.Duration
	now   func() time.Time

	mu        sync.Mutex
	token     string
	expiresAt time.Time

	group singleflight.Group
}

// newTokenCache creates a cache around the given login call
func newTokenCache(login loginFunc, ttl time.Duration) *TokenCache {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &TokenCache{
		login: login,
		ttl:   ttl,
		now:   time.Now,
	}
}

// Token returns a valid bearer token, logging in when none is cached or the
// cached one has expired
func (c *TokenCache) Token(ctx context.Context) (string, error) {
	if token, ok := c.cached(); ok {
		return token, nil
	}

	v, err, _ := c.group.Do("login", func() (any, error) {
		// A concurrent caller may have refreshed while we queued.
		if token, ok := c.cached(); ok {
			return token, nil
		}

		body, err := c.login(ctx)
		if err != nil {
			return "", err
		}
		token, err := parseTokenBody(body)
		if err != nil {
			return "", err
		}

		issuedAt := c.now()
		c.mu.Lock()
		c.token = token
		c.expiresAt = tokenExpiry(token, issuedAt, c.ttl)
		c.mu.Unlock()
		return token, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Invalidate drops the cached token, forcing a fresh login on the next Token
// call. Used after the ERP rejects a request with 401.
func (c *TokenCache) Invalidate() {
	c.mu.Lock()
	c.token = ""
	c.expiresAt = time.Time{}
	c.mu.Unlock()
}

func (c *TokenCache) cached() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == "" || !c.now().Before(c.expiresAt) {
		return "", false
	}
	return c.token, true
}

// parseTokenBody extracts the bearer token from a login response. The ERP
// returns either a JSON object with one of several token field names, a JSON
// string, or the bare token as plain text. The raw trimmed body is used as
// the token only when JSON parsing fails.
func parseTokenBody(body []byte) (string, error) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return "", errors.New("erp: empty login response")
	}

	var decoded any
	if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil {
		// Some environments return the token as plain text.
		return trimmed, nil
	}

	switch v := decoded.(type) {
	case string:
		token := strings.TrimSpace(v)
		if token == "" {
			return "", errors.New("erp: empty token in login response")
		}
		return token, nil
	case map[string]any:
		for _, field := range []string{"token", "accessToken", "Token"} {
			if token, ok := v[field].(string); ok && token != "" {
				return token, nil
			}
		}
		return "", ErrUnknownTokenShape
	default:
		return "", ErrUnknownTokenShape
	}
}

// tokenExpiry derives the cache expiry for a token issued at issuedAt. When
// the token is a JWT carrying an exp claim, the claim (minus a safety margin)
// wins if it is tighter than the fixed TTL. Claims are read unverified; the
// ERP signs its own tokens and we only consume the timestamp.
func tokenExpiry(token string, issuedAt time.Time, ttl time.Duration) time.Time {
	expiry := issuedAt.Add(ttl)

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return expiry
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return expiry
	}

	claimed := exp.Time.Add(-jwtExpirySafety)
	if claimed.After(issuedAt) && claimed.Before(expiry) {
		return claimed
	}
	return expiry
}
