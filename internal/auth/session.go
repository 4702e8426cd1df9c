package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "favtunes"

// ErrInvalidSession is returned for tokens that fail verification.
var ErrInvalidSession = errors.New("invalid session")

// Claims are the JWT claims carried by a session token.
type Claims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// Sessions issues and validates signed session tokens.
type Sessions struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessions configures session handling with an HMAC secret and lifetime.
func NewSessions(secret string, ttl time.Duration) *Sessions {
	return &Sessions{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue creates a token for userID and returns it with its expiry.
func (s *Sessions) Issue(userID string) (string, time.Time, error) {
	if userID == "" {
		return "", time.Time{}, errors.New("issue session: empty user id")
	}

	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session: %w", err)
	}
	return token, expiresAt, nil
}

// Verify parses token and returns the identity it carries.
func (s *Sessions) Verify(token string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrInvalidSession
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	if claims.UserID == "" {
		return Identity{}, ErrInvalidSession
	}
	return Identity{UserID: claims.UserID}, nil
}

// Resolve is Verify without the error: any bad token is an anonymous caller.
func (s *Sessions) Resolve(token string) Identity {
	id, err := s.Verify(token)
	if err != nil {
		return Identity{}
	}
	return id
}
