package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenLifetime is the fixed validity window of a session token.
const TokenLifetime = 3600 * time.Second

// TokenService issues and verifies short-lived session tokens. Tokens are
// HS256 JWTs signed with the secret of the key named in the subject claim,
// so each key's sessions can be revoked independently by expiring that key.
type TokenService struct {
	keys KeyFinder
	now  NowFunc
}

// NewTokenService creates a token service reading keys from the given finder.
func NewTokenService(keys KeyFinder, opts ...Option) *TokenService {
	s := &TokenService{keys: keys, now: defaultNow}
	for _, opt := range opts {
		opt(&s.now)
	}
	return s
}

// Issue exchanges a valid access/secret pair for a signed session token.
// An unknown access identifier, a secret mismatch, or an expired key all
// yield ErrUnauthorized; storage failures surface wrapped in ErrInternal.
func (s *TokenService) Issue(ctx context.Context, access, secret string) (string, error) {
	key, err := s.keys.FindKeyByAccess(ctx, access)
	if errors.Is(err, ErrNotFound) {
		return "", ErrUnauthorized
	}
	if err != nil {
		return "", err
	}
	if key.Expired(s.now()) {
		return "", ErrUnauthorized
	}
	if subtle.ConstantTimeCompare([]byte(key.Secret), []byte(secret)) != 1 {
		return "", ErrUnauthorized
	}

	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   access,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(TokenLifetime)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key.Secret))
	if err != nil {
		return "", Internal("sign token", err)
	}
	return signed, nil
}

// Verify checks a session token: HS256 signature under the owning key's
// stored secret, a present and future expiry claim (validated once, by the
// JWT library), and a key that is itself still live at verification time.
func (s *TokenService) Verify(ctx context.Context, tokenString string) error {
	keyfunc := func(t *jwt.Token) (interface{}, error) {
		claims, ok := t.Claims.(*jwt.RegisteredClaims)
		if !ok || claims.Subject == "" {
			return nil, ErrUnauthorized
		}
		key, err := s.keys.FindKeyByAccess(ctx, claims.Subject)
		if errors.Is(err, ErrNotFound) {
			return nil, ErrUnauthorized
		}
		if err != nil {
			return nil, err
		}
		if key.Expired(s.now()) {
			return nil, ErrUnauthorized
		}
		return []byte(key.Secret), nil
	}

	_, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, keyfunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		// Storage failures propagate as 500s; every parse, signature, or
		// claim failure is indistinguishable to the client.
		if errors.Is(err, ErrInternal) {
			return err
		}
		return ErrUnauthorized
	}
	return nil
}
