// Package httpclient is the single gateway between the SDK and the backend.
//
// Every request flows through one shared client with a fixed timeout, a
// request interceptor (bearer token injection, request ID) and a response
// interceptor that collapses every failure into *APIError. Callers above this
// package never see a raw transport error.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"agrofarm/internal/platform/metrics"
	"agrofarm/internal/token"
)

// fallbackMessage is shown when neither the server nor the transport provided
// anything human-readable.
const fallbackMessage = "request failed"

// Client issues all backend requests for the SDK.
type Client struct {
	base    string
	http    *http.Client
	tokens  token.Store
	log     *log.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// New builds the shared gateway client. baseURL is the API root (including
// the /api segment); metrics may be nil to disable instrumentation.
func New(baseURL string, timeout time.Duration, tokens token.Store, log *log.Logger, m *metrics.Metrics) *Client {
	return &Client{
		base:    strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
		log:     log,
		metrics: m,
		tracer:  otel.Tracer("agrofarm/httpclient"),
	}
}

// Get issues a GET and decodes the JSON response into out (out may be nil).
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

// Put issues a PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	fullURL := c.base + "/" + strings.TrimLeft(path, "/")

	ctx, span := c.tracer.Start(ctx, method+" "+path)
	defer span.End()
	span.SetAttributes(
		attribute.String("http.request.method", method),
		attribute.String("url.full", fullURL),
	)

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return c.fail(span, &APIError{Message: "encode request: " + err.Error(), Method: method, URL: fullURL})
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return c.fail(span, &APIError{Message: err.Error(), Method: method, URL: fullURL})
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	// Best-effort token attach. Unauthenticated endpoints exist, so neither a
	// missing token nor a failed read is an error at this layer.
	if tok, err := c.tokens.Load(ctx); err != nil {
		c.log.Printf("token load failed, sending unauthenticated: %v", err)
	} else if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(method, 0, time.Since(start))
		return c.fail(span, &APIError{Message: transportMessage(err), Method: method, URL: fullURL})
	}
	defer resp.Body.Close()

	c.observe(method, resp.StatusCode, time.Since(start))
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.fail(span, &APIError{Message: "read response: " + err.Error(), Method: method, URL: fullURL, StatusCode: resp.StatusCode})
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusUnauthorized {
			c.log.Printf("401 unauthorized from %s %s: token may be expired", method, fullURL)
		}
		return c.fail(span, &APIError{
			Message:    serverMessage(data),
			Method:     method,
			URL:        fullURL,
			StatusCode: resp.StatusCode,
		})
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return c.fail(span, &APIError{Message: "decode response: " + err.Error(), Method: method, URL: fullURL, StatusCode: resp.StatusCode})
		}
	}
	return nil
}

func (c *Client) fail(span trace.Span, apiErr *APIError) error {
	span.SetStatus(codes.Error, apiErr.Message)
	return apiErr
}

func (c *Client) observe(method string, statusCode int, elapsed time.Duration) {
	if c.metrics != nil {
		c.metrics.ObserveRequest(method, statusCode, elapsed)
	}
}

// serverMessage prefers the backend's message field over anything else.
func serverMessage(data []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return fallbackMessage
}

// transportMessage keeps transport failures readable: url.Error wraps the
// method and URL we already report, so surface only the inner cause.
func transportMessage(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "request timed out"
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		if ue.Timeout() {
			return "request timed out"
		}
		return ue.Err.Error()
	}
	return err.Error()
}
