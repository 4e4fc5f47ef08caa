package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrWrongKind    = errors.New("token kind mismatch")
)

const (
	kindAccess  = "access"
	kindRefresh = "refresh"
)

// Claims are the JWT claims of provider tokens. Subject holds the provider id.
type Claims struct {
	Kind string `json:"kind"`
	jwt.RegisteredClaims
}

// TokenPair is an access token and the refresh token that renews it
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Issuer signs and verifies provider tokens with HS256.
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// NewIssuer creates an issuer
func NewIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

// Issue creates a fresh token pair for providerID
func (i *Issuer) Issue(providerID string) (*TokenPair, error) {
	access, err := i.sign(providerID, kindAccess, i.accessTTL, i.accessSecret)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := i.sign(providerID, kindRefresh, i.refreshTTL, i.refreshSecret)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// ParseAccess verifies an access token and returns the provider id
func (i *Issuer) ParseAccess(token string) (string, error) {
	return i.parse(token, kindAccess, i.accessSecret)
}

// ParseRefresh verifies a refresh token and returns the provider id
func (i *Issuer) ParseRefresh(token string) (string, error) {
	return i.parse(token, kindRefresh, i.refreshSecret)
}

func (i *Issuer) sign(subject, kind string, ttl time.Duration, secret []byte) (string, error) {
	now := i.now()
	claims := Claims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (i *Issuer) parse(raw, kind string, secret []byte) (string, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	if claims.Kind != kind {
		return "", ErrWrongKind
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
