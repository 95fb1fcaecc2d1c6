// Package identity resolves who is acting and for which household. The
// resulting Actor is passed explicitly to every engine call.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned for malformed, expired or wrongly signed tokens.
var ErrInvalidToken = errors.New("invalid token")

// Actor is the authenticated caller. An empty FamilyID means the user does
// not belong to a household yet.
type Actor struct {
	UserID   string
	FamilyID string
}

// HasFamily reports whether the actor belongs to a household.
func (a Actor) HasFamily() bool {
	return a.FamilyID != ""
}

// Resolver turns a session credential into an Actor.
type Resolver interface {
	Resolve(ctx context.Context, token string) (Actor, error)
}

// Claims are the JWT claims carried by a session token.
type Claims struct {
	FamilyID string `json:"fid,omitempty"`
	jwt.RegisteredClaims
}

// JWTResolver validates HS256 session tokens.
type JWTResolver struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewJWTResolver creates a resolver for tokens signed with secret.
func NewJWTResolver(secret, issuer string) (*JWTResolver, error) {
	if len(secret) < 16 {
		return nil, errors.New("jwt secret must be at least 16 characters")
	}
	return &JWTResolver{
		secret: []byte(secret),
		issuer: issuer,
		now:    time.Now,
	}, nil
}

// Issue mints a token for userID valid for ttl.
func (r *JWTResolver) Issue(userID, familyID string, ttl time.Duration) (string, error) {
	if userID == "" {
		return "", errors.New("user id is required")
	}
	now := r.now()
	claims := Claims{
		FamilyID: familyID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			Issuer:    r.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(r.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// Resolve validates token and returns its Actor. A "Bearer " prefix is
// tolerated.
func (r *JWTResolver) Resolve(_ context.Context, token string) (Actor, error) {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	if token == "" {
		return Actor{}, fmt.Errorf("%w: empty", ErrInvalidToken)
	}

	var claims Claims
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(r.now),
		jwt.WithExpirationRequired(),
	}
	if r.issuer != "" {
		opts = append(opts, jwt.WithIssuer(r.issuer))
	}
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return r.secret, nil
	}, opts...)
	if err != nil {
		return Actor{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return Actor{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return Actor{UserID: claims.Subject, FamilyID: claims.FamilyID}, nil
}

type contextKey struct{}

// WithActor stores the actor in ctx.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, contextKey{}, a)
}

// FromContext returns the actor stored by WithActor.
func FromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(contextKey{}).(Actor)
	return a, ok
}
