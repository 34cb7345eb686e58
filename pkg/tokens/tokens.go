// Package tokens issues and validates the signed access tokens handed out at
// login. Tokens are HMAC-signed JWTs carrying the username as "sub" and the
// numeric user id as "id".
package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken         = errors.New("invalid token")
	ErrEmptySecret          = errors.New("token secret is empty")
	ErrUnsupportedAlgorithm = errors.New("unsupported signing algorithm")
)

const DefaultAlgorithm = "HS256"

type Claims struct {
	UserID *int64 `json:"id,omitempty"`
	jwt.RegisteredClaims
}

// Identity is what an authenticated request knows about its caller.
type Identity struct {
	Username string `json:"username"`
	ID       int64  `json:"id"`
}

type Codec struct {
	secret []byte
	method *jwt.SigningMethodHMAC
	now    func() time.Time
}

type Option func(*Codec)

// WithClock overrides the wall clock used for iat/exp and for validation.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

func NewCodec(secret []byte, alg string, opts ...Option) (*Codec, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	method, err := hmacMethod(alg)
	if err != nil {
		return nil, err
	}

	c := &Codec{
		secret: secret,
		method: method,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func hmacMethod(alg string) (*jwt.SigningMethodHMAC, error) {
	switch alg {
	case "", jwt.SigningMethodHS256.Alg():
		return jwt.SigningMethodHS256, nil
	case jwt.SigningMethodHS384.Alg():
		return jwt.SigningMethodHS384, nil
	case jwt.SigningMethodHS512.Alg():
		return jwt.SigningMethodHS512, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, alg)
}

// SupportedAlgorithm reports whether alg can be passed to NewCodec.
func SupportedAlgorithm(alg string) bool {
	_, err := hmacMethod(alg)
	return err == nil
}

func (c *Codec) Algorithm() string { return c.method.Alg() }

func (c *Codec) Encode(subject string, userID int64, ttl time.Duration) (string, error) {
	now := c.now().UTC()
	claims := Claims{
		UserID: &userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token, err := jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Decode verifies signature, algorithm and expiry. Every failure wraps
// ErrInvalidToken; expired tokens also match jwt.ErrTokenExpired.
func (c *Codec) Decode(tokenStr string) (*Claims, error) {
	var claims Claims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !tkn.Valid {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
