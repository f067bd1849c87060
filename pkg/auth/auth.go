// Package auth issues and validates the bearer tokens that protect the
// timeline API.
//
// Tokens are HS256 JWTs carrying the owner ID in "sub" plus the user's
// e-mail and display name. They are stateless: [Refresh] trades a token that
// is still valid, or expired within the refresh window, for a fresh one
// without any server-side session.
//
//	issuer, _ := auth.NewIssuer(secret, 24*time.Hour)
//	token, _ := issuer.Issue(auth.Claims{Email: "ada@example.com"}.For("u1"))
//
//	validator, _ := auth.NewValidator(secret)
//	claims, err := validator.Validate(token)
package auth

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/lifetree/lifetree/pkg/errors"
)

// DefaultTTL is the lifetime of an issued token.
const DefaultTTL = 24 * time.Hour

// DefaultRefreshWindow is how long after expiry a token may still be
// refreshed.
const DefaultRefreshWindow = 7 * 24 * time.Hour

var (
	ErrMissingToken  = stderrors.New("missing authentication token")
	ErrInvalidToken  = stderrors.New("invalid token")
	ErrExpiredToken  = stderrors.New("token has expired")
	ErrInvalidClaims = stderrors.New("invalid token claims")
	ErrMissingSecret = stderrors.New("signing secret is required")
)

// Claims are the token claims. The owner ID is the registered subject.
type Claims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Owner returns the subject, which is the ID of the timeline owner.
func (c *Claims) Owner() string { return c.Subject }

// For returns a copy of c with the subject set to owner.
func (c Claims) For(owner string) Claims {
	c.Subject = owner
	return c
}

// =============================================================================
// Issuer
// =============================================================================

// Issuer signs new tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer returns an issuer signing with secret. A zero ttl means
// [DefaultTTL].
func NewIssuer(secret string, ttl time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// TTL returns the lifetime of issued tokens.
func (i *Issuer) TTL() time.Duration { return i.ttl }

// Issue signs a token for claims. Registered time claims and the token ID
// are always set by the issuer.
func (i *Issuer) Issue(claims Claims) (string, error) {
	if claims.Subject == "" {
		return "", errors.Wrap(errors.ErrCodeInvalidInput, ErrInvalidClaims, "issue token: missing subject")
	}
	now := i.now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.NotBefore = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(i.ttl))
	claims.ID = uuid.NewString()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "sign token")
	}
	return signed, nil
}

// =============================================================================
// Validator
// =============================================================================

// Validator checks tokens signed by an [Issuer] with the same secret.
type Validator struct {
	secret []byte
	now    func() time.Time
}

// NewValidator returns a validator for secret.
func NewValidator(secret string) (*Validator, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	return &Validator{secret: []byte(secret), now: time.Now}, nil
}

// Validate checks the signature and expiry of token and returns its claims.
// A leading "Bearer " is ignored. Expired tokens fail with SESSION_EXPIRED;
// every other failure is UNAUTHORIZED.
func (v *Validator) Validate(token string) (*Claims, error) {
	return v.parse(token, jwt.WithTimeFunc(v.now))
}

func (v *Validator) parse(token string, opts ...jwt.ParserOption) (*Claims, error) {
	token = bearerToken(token)
	if token == "" {
		return nil, errors.Wrap(errors.ErrCodeUnauthorized, ErrMissingToken, "missing bearer token")
	}

	opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		if stderrors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.Wrap(errors.ErrCodeSessionExpired, ErrExpiredToken, "session expired")
		}
		return nil, errors.Wrap(errors.ErrCodeUnauthorized, ErrInvalidToken, "invalid token: %v", err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.Wrap(errors.ErrCodeUnauthorized, ErrInvalidClaims, "invalid token claims")
	}
	if claims.Subject == "" {
		return nil, errors.Wrap(errors.ErrCodeUnauthorized, ErrInvalidClaims, "token has no subject")
	}
	return claims, nil
}

// bearerToken strips an optional "Bearer" scheme (any case) from an
// Authorization value.
func bearerToken(value string) string {
	value = strings.TrimSpace(value)
	scheme, rest, found := strings.Cut(value, " ")
	switch {
	case found && strings.EqualFold(scheme, "Bearer"):
		return strings.TrimSpace(rest)
	case !found && strings.EqualFold(value, "Bearer"):
		return ""
	}
	return value
}

// =============================================================================
// Refresh
// =============================================================================

// Refresh exchanges current for a new token with the same identity claims.
// current must carry a valid signature and be unexpired or expired for less
// than window; a zero window means [DefaultRefreshWindow].
func Refresh(v *Validator, i *Issuer, current string, window time.Duration) (string, error) {
	if window <= 0 {
		window = DefaultRefreshWindow
	}
	claims, err := v.parse(current, jwt.WithoutClaimsValidation())
	if err != nil {
		return "", err
	}
	if claims.ExpiresAt == nil {
		return "", errors.Wrap(errors.ErrCodeUnauthorized, ErrInvalidClaims, "refresh: token has no expiry")
	}
	if v.now().After(claims.ExpiresAt.Add(window)) {
		return "", errors.Wrap(errors.ErrCodeSessionExpired, ErrExpiredToken, "refresh: past refresh window")
	}

	return i.Issue(Claims{
		Email:            claims.Email,
		Name:             claims.Name,
		RegisteredClaims: jwt.RegisteredClaims{Subject: claims.Subject},
	})
}

// =============================================================================
// Context
// =============================================================================

type contextKey struct{}

// WithClaims returns a context carrying claims.
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// ClaimsFromContext returns the claims stored by [WithClaims].
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(contextKey{}).(*Claims)
	return c, ok && c != nil
}
