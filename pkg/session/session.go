// Package session stores the API credentials of the lifetree CLI.
//
// A session holds the access token for one timeline API (the HTTP backend of
// pkg/store). Sessions are keyed by API URL, so logging in to a second
// deployment does not replace the first.
//
// # Usage
//
//	store, err := session.NewFileStore(filepath.Join(config.Dir(), "sessions"))
//	if err != nil {
//	    return err
//	}
//
//	sess, err := session.New(apiURL, accessToken)
//	if err != nil {
//	    return err // not a JWT, or already expired
//	}
//	store.Set(ctx, sess)
//
//	// Later
//	sess, err = store.Get(ctx, session.IDFor(apiURL))
//	if sess == nil && err == nil {
//	    // Not logged in
//	}
package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lifetree/lifetree/pkg/errors"
)

// DefaultTTL is used for tokens that carry no expiry.
const DefaultTTL = 24 * time.Hour

// Session stores the credentials for one API.
type Session struct {
	ID          string    `json:"id"`
	APIURL      string    `json:"api_url"`
	AccessToken string    `json:"access_token"`
	Owner       string    `json:"owner,omitempty"`
	ExpiresAt   time.Time `json:"expires_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns nil, nil if the session doesn't exist.
	// Returns nil and a SESSION_EXPIRED error if it has expired.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, session *Session) error

	// Delete removes a session.
	Delete(ctx context.Context, sessionID string) error

	// Cleanup removes expired sessions.
	Cleanup(ctx context.Context) error
}

// IDFor returns the session ID for an API URL. Trailing slashes are ignored.
func IDFor(apiURL string) string {
	sum := sha256.Sum256([]byte(strings.TrimRight(apiURL, "/")))
	return hex.EncodeToString(sum[:8])
}

// New creates a session for token at apiURL. The token must be a JWT; its
// subject becomes the owner and its expiry the session expiry. The
// signature is not checked here, the API does that on every request.
func New(apiURL, token string) (*Session, error) {
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "access token is not a JWT")
	}

	now := time.Now()
	expires := now.Add(DefaultTTL)
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time
	}
	if now.After(expires) {
		return nil, errors.New(errors.ErrCodeSessionExpired, "access token expired at %s", expires.Format(time.RFC3339))
	}

	return &Session{
		ID:          IDFor(apiURL),
		APIURL:      strings.TrimRight(apiURL, "/"),
		AccessToken: token,
		Owner:       claims.Subject,
		ExpiresAt:   expires,
		CreatedAt:   now,
	}, nil
}

func expired(s *Session) error {
	return errors.New(errors.ErrCodeSessionExpired, "session for %s expired at %s", s.APIURL, s.ExpiresAt.Format(time.RFC3339))
}
