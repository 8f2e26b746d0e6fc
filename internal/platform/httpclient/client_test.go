package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"agrofarm/internal/platform/logger"
	"agrofarm/internal/platform/metrics"
	"agrofarm/internal/token"
)

type ClientSuite struct {
	suite.Suite
	ctx    context.Context
	tokens *token.MemoryStore
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientSuite))
}

func (s *ClientSuite) SetupTest() {
	s.ctx = context.Background()
	s.tokens = token.NewMemoryStore()
}

func (s *ClientSuite) newClient(srvURL string) *Client {
	return New(srvURL, 5*time.Second, s.tokens, logger.Discard(), nil)
}

func (s *ClientSuite) TestBearerAttachedWhenTokenStored() {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	s.Require().NoError(s.tokens.Save(s.ctx, "abc"))
	err := s.newClient(srv.URL).Get(s.ctx, "buyers/me", nil)
	s.Require().NoError(err)
	s.Equal("Bearer abc", got)
}

func (s *ClientSuite) TestNoBearerWithoutToken() {
	var header string
	var present bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Get("Authorization")
		_, present = r.Header["Authorization"]
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	err := s.newClient(srv.URL).Get(s.ctx, "buyers/all", nil)
	s.Require().NoError(err)
	s.Empty(header)
	s.False(present, "unauthenticated requests must not carry an empty Authorization header")
}

func (s *ClientSuite) TestRequestIDAndContentTypeSet() {
	var requestID, contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID = r.Header.Get("X-Request-ID")
		contentType = r.Header.Get("Content-Type")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	err := s.newClient(srv.URL).Post(s.ctx, "farmers/login", map[string]string{"email": "a@b.com"}, nil)
	s.Require().NoError(err)
	s.NotEmpty(requestID)
	s.Equal("application/json", contentType)
}

func (s *ClientSuite) TestServerMessagePreferred() {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"email already registered"}`))
	}))
	defer srv.Close()

	err := s.newClient(srv.URL).Post(s.ctx, "farmers/new", map[string]string{}, nil)
	s.Require().Error(err)

	var apiErr *APIError
	s.Require().ErrorAs(err, &apiErr)
	s.Equal("email already registered", apiErr.Message)
	s.Equal(http.StatusBadRequest, apiErr.StatusCode)
	s.Equal(http.MethodPost, apiErr.Method)
	s.Contains(apiErr.Error(), "email already registered (POST ")
	s.Contains(apiErr.Error(), "-> 400)")
}

func (s *ClientSuite) TestGenericMessageWhenBodyUnhelpful() {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`<html>boom</html>`))
	}))
	defer srv.Close()

	err := s.newClient(srv.URL).Get(s.ctx, "farmers/me", nil)
	var apiErr *APIError
	s.Require().ErrorAs(err, &apiErr)
	s.Equal("request failed", apiErr.Message)
	s.Equal(http.StatusInternalServerError, apiErr.StatusCode)
}

func (s *ClientSuite) TestUnauthorizedTagged() {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"unauthorized"}`))
	}))
	defer srv.Close()

	err := s.newClient(srv.URL).Get(s.ctx, "buyers/me", nil)
	s.Require().Error(err)
	s.True(errors.Is(err, ErrUnauthorized))

	// A 401 is detectable but must NOT clear the stored token.
	s.Require().NoError(s.tokens.Save(s.ctx, "stale"))
	_ = s.newClient(srv.URL).Get(s.ctx, "buyers/me", nil)
	tok, loadErr := s.tokens.Load(s.ctx)
	s.Require().NoError(loadErr)
	s.Equal("stale", tok)
}

func (s *ClientSuite) TestOtherStatusesNotTaggedUnauthorized() {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"nope"}`))
	}))
	defer srv.Close()

	err := s.newClient(srv.URL).Get(s.ctx, "buyers/me", nil)
	s.Require().Error(err)
	s.False(errors.Is(err, ErrUnauthorized))
}

func (s *ClientSuite) TestTransportFailureNormalized() {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	err := s.newClient(srv.URL).Get(s.ctx, "farmers/me", nil)
	s.Require().Error(err)

	var apiErr *APIError
	s.Require().ErrorAs(err, &apiErr)
	s.Equal(0, apiErr.StatusCode)
	s.NotEmpty(apiErr.Message)
	s.Contains(apiErr.Error(), "-> ERR)")
}

func (s *ClientSuite) TestTimeoutNormalized() {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := New(srv.URL, 20*time.Millisecond, s.tokens, logger.Discard(), nil)
	err := client.Get(s.ctx, "farmers/me", nil)

	var apiErr *APIError
	s.Require().ErrorAs(err, &apiErr)
	s.Equal("request timed out", apiErr.Message)
}

func (s *ClientSuite) TestSuccessDecoded() {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"token":"abc","name":"Ada"}`))
	}))
	defer srv.Close()

	var out map[string]any
	err := s.newClient(srv.URL).Post(s.ctx, "buyers/login", map[string]string{}, &out)
	s.Require().NoError(err)
	s.Equal("abc", out["token"])
	s.Equal("Ada", out["name"])
}

func TestMetricsRecorded(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWith(reg)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"unauthorized"}`))
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second, token.NewMemoryStore(), logger.Discard(), m)
	_ = client.Get(context.Background(), "buyers/me", nil)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	assert.True(t, names["agrofarm_client_requests_total"])
	assert.True(t, names["agrofarm_client_request_failures_total"])
	assert.True(t, names["agrofarm_client_unauthorized_total"])
}
