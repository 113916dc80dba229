package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

const (
	// KeyLength is the number of characters in a generated credential.
	KeyLength = 64

	// keyAlphabet is the fixed credential alphabet: letters, digits, and a
	// small symbol set. Both halves of a key pair are drawn from it.
	keyAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*_-"

	// maxCreateAttempts bounds the retry loop on access collisions. The
	// 72^64 keyspace makes even one collision effectively unobservable;
	// the UNIQUE constraint on the access column is the authoritative guard.
	maxCreateAttempts = 5
)

// GenerateKey draws KeyLength characters uniformly from the credential
// alphabet using a cryptographically secure source.
func GenerateKey() (string, error) {
	buf := make([]byte, KeyLength)
	max := big.NewInt(int64(len(keyAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", Internal("generate key", err)
		}
		buf[i] = keyAlphabet[n.Int64()]
	}
	return string(buf), nil
}

// KeyService manages the API key lifecycle on top of a Store.
type KeyService struct {
	store Store
	now   NowFunc
}

// NewKeyService creates a key service backed by the given store.
func NewKeyService(store Store, opts ...Option) *KeyService {
	s := &KeyService{store: store, now: defaultNow}
	for _, opt := range opts {
		opt(&s.now)
	}
	return s
}

// CreateKey generates a fresh access/secret pair, persists it, and returns
// the record together with the plaintext secret. This is the only time the
// secret ever leaves the package.
func (s *KeyService) CreateKey(ctx context.Context, description string) (*Key, string, error) {
	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		access, err := GenerateKey()
		if err != nil {
			return nil, "", err
		}
		secret, err := GenerateKey()
		if err != nil {
			return nil, "", err
		}

		key := &Key{
			Access:      access,
			Secret:      secret,
			Description: description,
		}
		id, err := s.store.CreateKey(ctx, key)
		if errors.Is(err, ErrDuplicateAccess) {
			continue
		}
		if err != nil {
			return nil, "", err
		}
		key.ID = id
		return key, secret, nil
	}
	return nil, "", fmt.Errorf("create key: %w: access collisions on %d consecutive draws", ErrInternal, maxCreateAttempts)
}

// ListKeys returns access identifiers, descriptions, and expiry state for
// every key. Secrets are never included.
func (s *KeyService) ListKeys(ctx context.Context) ([]KeyInfo, error) {
	return s.store.ListKeys(ctx)
}

// ExpireKey marks the key expired as of now, making it immediately unusable
// for both token issuance and verification.
func (s *KeyService) ExpireKey(ctx context.Context, id int64) error {
	return s.store.ExpireKey(ctx, id, s.now())
}
