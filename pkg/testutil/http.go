// Package testutil provides common helpers for tests that drive the SDK
// against the in-process stub backend.
package testutil

import (
	"net/http/httptest"
	"testing"
	"time"

	"agrofarm/internal/platform/httpclient"
	"agrofarm/internal/platform/logger"
	"agrofarm/internal/session"
	"agrofarm/internal/stub"
	"agrofarm/internal/token"
)

// SigningKey signs the stub backend's tokens in tests.
var SigningKey = []byte("test-signing-key")

// StartStub boots the stub backend on an httptest server and tears it down
// with the test. The returned URL already includes the /api root the SDK
// expects as its base.
func StartStub(t *testing.T) (*stub.Server, string) {
	t.Helper()
	backend := stub.New(logger.Discard(), SigningKey)
	srv := httptest.NewServer(backend.Router())
	t.Cleanup(srv.Close)
	return backend, srv.URL + "/api"
}

// NewSDK assembles a full client stack (memory token store, gateway, session
// facade) pointed at baseURL.
func NewSDK(t *testing.T, baseURL string) (*session.Client, *token.MemoryStore) {
	t.Helper()
	tokens := token.NewMemoryStore()
	gateway := httpclient.New(baseURL, 5*time.Second, tokens, logger.Discard(), nil)
	return session.NewClient(gateway, tokens, logger.Discard()), tokens
}
