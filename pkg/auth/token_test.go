package auth

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func storeWithKey(t *testing.T, access, secret string) *fakeStore {
	t.Helper()
	store := newFakeStore()
	_, err := store.CreateKey(context.Background(), &Key{Access: access, Secret: secret})
	require.NoError(t, err)
	return store
}

func TestIssueAndVerify(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := storeWithKey(t, "access-1", "secret-1")
	service := NewTokenService(store, WithClock(fixedClock(now)))

	token, err := service.Issue(context.Background(), "access-1", "secret-1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	assert.NoError(t, service.Verify(context.Background(), token))
}

func TestIssueUnknownAccess(t *testing.T) {
	service := NewTokenService(newFakeStore())

	_, err := service.Issue(context.Background(), "nope", "whatever")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestIssueWrongSecret(t *testing.T) {
	store := storeWithKey(t, "access-1", "secret-1")
	service := NewTokenService(store)

	_, err := service.Issue(context.Background(), "access-1", "wrong")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestIssueExpiredKey(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := storeWithKey(t, "access-1", "secret-1")
	past := now.Add(-time.Hour)
	store.keys["access-1"].ExpiredAt = &past
	service := NewTokenService(store, WithClock(fixedClock(now)))

	_, err := service.Issue(context.Background(), "access-1", "secret-1")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestIssueStorageFailure(t *testing.T) {
	store := newFakeStore()
	store.findErr = Internal("find key", fmt.Errorf("disk gone"))
	service := NewTokenService(store)

	_, err := service.Issue(context.Background(), "access-1", "secret-1")
	assert.ErrorIs(t, err, ErrInternal)
}

func TestVerifyClaims(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := storeWithKey(t, "access-1", "secret-1")
	service := NewTokenService(store, WithClock(fixedClock(now)))

	token, err := service.Issue(context.Background(), "access-1", "secret-1")
	require.NoError(t, err)

	claims := &jwt.RegisteredClaims{}
	_, err = jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("secret-1"), nil
	}, jwt.WithTimeFunc(fixedClock(now)))
	require.NoError(t, err)

	assert.Equal(t, "access-1", claims.Subject)
	assert.Equal(t, now.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, now.Add(TokenLifetime).Unix(), claims.ExpiresAt.Unix())
}

func TestVerifyExpiredToken(t *testing.T) {
	issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := storeWithKey(t, "access-1", "secret-1")

	issuer := NewTokenService(store, WithClock(fixedClock(issuedAt)))
	token, err := issuer.Issue(context.Background(), "access-1", "secret-1")
	require.NoError(t, err)

	// One second inside the window the token still verifies.
	within := NewTokenService(store, WithClock(fixedClock(issuedAt.Add(TokenLifetime-time.Second))))
	assert.NoError(t, within.Verify(context.Background(), token))

	// Past the window it does not.
	after := NewTokenService(store, WithClock(fixedClock(issuedAt.Add(TokenLifetime+time.Second))))
	assert.ErrorIs(t, after.Verify(context.Background(), token), ErrUnauthorized)
}

func TestVerifyTamperedToken(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := storeWithKey(t, "access-1", "secret-1")
	service := NewTokenService(store, WithClock(fixedClock(now)))

	token, err := service.Issue(context.Background(), "access-1", "secret-1")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	flipped := byte('A')
	if parts[2][0] == 'A' {
		flipped = 'B'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(flipped) + parts[2][1:]

	assert.ErrorIs(t, service.Verify(context.Background(), tampered), ErrUnauthorized)
}

func TestVerifyGarbage(t *testing.T) {
	service := NewTokenService(newFakeStore())
	assert.ErrorIs(t, service.Verify(context.Background(), "not-a-token"), ErrUnauthorized)
}

func TestVerifyUnknownSubject(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := storeWithKey(t, "access-1", "secret-1")
	service := NewTokenService(store, WithClock(fixedClock(now)))

	token, err := service.Issue(context.Background(), "access-1", "secret-1")
	require.NoError(t, err)

	delete(store.keys, "access-1")
	assert.ErrorIs(t, service.Verify(context.Background(), token), ErrUnauthorized)
}

func TestVerifyRejectsTokenOfExpiredKey(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := storeWithKey(t, "access-1", "secret-1")
	service := NewTokenService(store, WithClock(fixedClock(now)))

	token, err := service.Issue(context.Background(), "access-1", "secret-1")
	require.NoError(t, err)

	// Expiring the key kills its outstanding tokens even though the token
	// claim itself is still within its window.
	expiredAt := now.Add(time.Minute)
	store.keys["access-1"].ExpiredAt = &expiredAt

	later := NewTokenService(store, WithClock(fixedClock(now.Add(2*time.Minute))))
	assert.ErrorIs(t, later.Verify(context.Background(), token), ErrUnauthorized)
}

func TestVerifyRejectsUnsignedToken(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := storeWithKey(t, "access-1", "secret-1")
	service := NewTokenService(store, WithClock(fixedClock(now)))

	claims := jwt.RegisteredClaims{
		Subject:   "access-1",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(TokenLifetime)),
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	assert.ErrorIs(t, service.Verify(context.Background(), unsigned), ErrUnauthorized)
}

func TestVerifyRequiresExpiryClaim(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := storeWithKey(t, "access-1", "secret-1")
	service := NewTokenService(store, WithClock(fixedClock(now)))

	claims := jwt.RegisteredClaims{
		Subject:  "access-1",
		IssuedAt: jwt.NewNumericDate(now),
	}
	eternal, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret-1"))
	require.NoError(t, err)

	assert.ErrorIs(t, service.Verify(context.Background(), eternal), ErrUnauthorized)
}

func TestVerifyStorageFailure(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := storeWithKey(t, "access-1", "secret-1")
	service := NewTokenService(store, WithClock(fixedClock(now)))

	token, err := service.Issue(context.Background(), "access-1", "secret-1")
	require.NoError(t, err)

	store.findErr = Internal("find key", fmt.Errorf("disk gone"))
	assert.ErrorIs(t, service.Verify(context.Background(), token), ErrInternal)
}
