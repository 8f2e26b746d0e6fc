package token

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type FileStoreSuite struct {
	suite.Suite
	store *FileStore
	path  string
	ctx   context.Context
}

func TestFileStoreSuite(t *testing.T) {
	suite.Run(t, new(FileStoreSuite))
}

func (s *FileStoreSuite) SetupTest() {
	s.path = filepath.Join(s.T().TempDir(), "token")
	s.store = NewFileStore(s.path, "test-passphrase")
	s.ctx = context.Background()
}

func (s *FileStoreSuite) TestSaveLoadRoundTrip() {
	s.Require().NoError(s.store.Save(s.ctx, "abc"))

	got, err := s.store.Load(s.ctx)
	s.Require().NoError(err)
	s.Equal("abc", got)
}

func (s *FileStoreSuite) TestLoadMissingMeansNoToken() {
	got, err := s.store.Load(s.ctx)
	s.Require().NoError(err)
	s.Empty(got)
}

func (s *FileStoreSuite) TestLoadCorruptedMeansNoToken() {
	s.Require().NoError(s.store.Save(s.ctx, "abc"))
	s.Require().NoError(os.WriteFile(s.path, []byte("not an encrypted blob"), 0o600))

	got, err := s.store.Load(s.ctx)
	s.Require().NoError(err)
	s.Empty(got)
}

func (s *FileStoreSuite) TestLoadWrongPassphraseMeansNoToken() {
	s.Require().NoError(s.store.Save(s.ctx, "abc"))

	other := NewFileStore(s.path, "a different passphrase")
	got, err := other.Load(s.ctx)
	s.Require().NoError(err)
	s.Empty(got)
}

func (s *FileStoreSuite) TestSaveOverwrites() {
	s.Require().NoError(s.store.Save(s.ctx, "first"))
	s.Require().NoError(s.store.Save(s.ctx, "second"))

	got, err := s.store.Load(s.ctx)
	s.Require().NoError(err)
	s.Equal("second", got)
}

func (s *FileStoreSuite) TestClearIsIdempotent() {
	s.Require().NoError(s.store.Clear(s.ctx), "clearing an empty store")

	s.Require().NoError(s.store.Save(s.ctx, "abc"))
	s.Require().NoError(s.store.Clear(s.ctx))
	s.Require().NoError(s.store.Clear(s.ctx), "clearing twice")

	got, err := s.store.Load(s.ctx)
	s.Require().NoError(err)
	s.Empty(got)
}

func (s *FileStoreSuite) TestTokenNotStoredInPlaintext() {
	s.Require().NoError(s.store.Save(s.ctx, "super-secret-bearer"))

	blob, err := os.ReadFile(s.path)
	s.Require().NoError(err)
	s.NotContains(string(blob), "super-secret-bearer")
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, store.Save(ctx, "abc"))
	got, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc", got)

	require.NoError(t, store.Clear(ctx))
	require.NoError(t, store.Clear(ctx))
	got, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestExpiresAt(t *testing.T) {
	exp := time.Now().Add(24 * time.Hour).Truncate(time.Second)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": exp.Unix(),
	})
	signed, err := tok.SignedString([]byte("key"))
	require.NoError(t, err)

	assert.True(t, ExpiresAt(signed).Equal(exp))
}

func TestExpiresAtNonJWT(t *testing.T) {
	assert.True(t, ExpiresAt("opaque-bearer-token").IsZero())
	assert.True(t, ExpiresAt("").IsZero())
}

func TestExpiresAtNoExpClaim(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "user-1"})
	signed, err := tok.SignedString([]byte("key"))
	require.NoError(t, err)

	assert.True(t, ExpiresAt(signed).IsZero())
}
