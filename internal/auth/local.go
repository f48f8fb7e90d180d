package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/yourname/rehabtracker/internal"
)

const (
	sessionSubject = "authenticated"
	SessionTTL     = 365 * 24 * time.Hour
)

// SharedSecretProvider gates the app behind a single password. Sessions are
// HS256 tokens signed with key.
type SharedSecretProvider struct {
	password []byte
	key      []byte
	logger   internal.Logger
}

func NewSharedSecretProvider(password, signingKey string, logger internal.Logger) *SharedSecretProvider {
	if signingKey == "" {
		signingKey = password
	}
	return &SharedSecretProvider{password: []byte(password), key: []byte(signingKey), logger: logger}
}

// Check compares candidate to the configured password in constant time.
// An empty configured password accepts nothing.
func (p *SharedSecretProvider) Check(candidate string) bool {
	if len(p.password) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(candidate), p.password) == 1
}

func (p *SharedSecretProvider) Issue(now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   sessionSubject,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(SessionTTL)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.key)
	if err != nil {
		p.logger.Errorf("failed to sign session: %v", err)
		return "", err
	}
	return token, nil
}

// Validate verifies the signature, then checks expiry and subject at now.
func (p *SharedSecretProvider) Validate(token string, now time.Time) error {
	if token == "" {
		return internal.ErrUnauthorized
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	var claims jwt.RegisteredClaims
	_, err := parser.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return p.key, nil
	})
	if err != nil {
		p.logger.Debugf("invalid session: %v", err)
		return fmt.Errorf("%w: %v", internal.ErrUnauthorized, err)
	}
	if !claims.VerifyExpiresAt(now, true) {
		return fmt.Errorf("%w: session expired", internal.ErrUnauthorized)
	}
	if claims.Subject != sessionSubject {
		return internal.ErrUnauthorized
	}
	return nil
}

var _ Provider = (*SharedSecretProvider)(nil)
