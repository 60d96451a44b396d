package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cheatsheets/pkg/errors"
	"cheatsheets/pkg/storage"
)

func TestJWTRoundTrip(t *testing.T) {
	t.Parallel()
	j := NewJWT("secret", time.Hour)

	token, err := j.Sign("user-1")
	require.NoError(t, err)

	id, err := j.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", id)
}

func TestJWTRejects(t *testing.T) {
	t.Parallel()
	j := NewJWT("secret", time.Hour)
	token, err := j.Sign("user-1")
	require.NoError(t, err)

	_, err = NewJWT("other", time.Hour).Verify(token)
	assert.Error(t, err, "wrong secret")

	_, err = j.Verify(token + "x")
	assert.Error(t, err, "tampered")

	_, err = j.Verify("")
	assert.Error(t, err)

	later := NewJWT("secret", time.Hour)
	later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = later.Verify(token)
	assert.Error(t, err, "expired")

	none := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{"sub": "user-1", "exp": time.Now().Add(time.Hour).Unix()})
	signed, err := none.SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = j.Verify(signed)
	assert.Error(t, err, "other algorithm")

	noSub := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})
	signed, err = noSub.SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = j.Verify(signed)
	assert.Error(t, err, "missing subject")
}

func TestPasswordHash(t *testing.T) {
	t.Parallel()
	hash, err := HashPassword("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)
	assert.True(t, ComparePassword(hash, "secret1"))
	assert.False(t, ComparePassword(hash, "secret2"))
	assert.False(t, ComparePassword("not-a-hash", "secret1"))
}

func TestDirectory(t *testing.T) {
	t.Parallel()
	store := storage.NewStore(storage.NewMemoryBackend(), storage.WithLogger(zerolog.Nop()))
	d := NewDirectory(store)

	user, err := d.Register(" Alice@Example.com ", "Alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEmpty(t, user.ID)

	_, err = d.Register("alice@example.com", "Other", "secret2")
	assert.ErrorIs(t, err, errors.ErrEmailTaken)

	got, err := d.Authenticate("ALICE@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = d.Authenticate("alice@example.com", "nope")
	assert.ErrorIs(t, err, errors.ErrInvalidCredentials)
	_, err = d.Authenticate("bob@example.com", "secret1")
	assert.ErrorIs(t, err, errors.ErrInvalidCredentials)

	byID, ok := NewDirectory(store).Get(user.ID)
	require.True(t, ok)
	assert.Equal(t, user.Email, byID.Email)
	assert.True(t, user.CreatedAt.Equal(byID.CreatedAt))

	_, ok = d.Get("missing")
	assert.False(t, ok)
}
