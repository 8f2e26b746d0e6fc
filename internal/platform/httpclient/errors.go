package httpclient

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
)

// ErrUnauthorized tags 401 responses so callers can detect a rejected session
// with errors.Is instead of string-matching. Detection only: the gateway never
// clears the stored token on a 401. Only an explicit logout does that, which
// matches the deployed client and is a known gap, not an accident.
var ErrUnauthorized = errors.New("unauthorized")

// APIError is the one failure shape every caller of the gateway observes,
// whether the transport or the server failed. StatusCode is zero when the
// request never produced a response.
type APIError struct {
	Message    string
	Method     string
	URL        string
	StatusCode int
}

func (e *APIError) Error() string {
	status := "ERR"
	if e.StatusCode != 0 {
		status = strconv.Itoa(e.StatusCode)
	}
	return fmt.Sprintf("%s (%s %s -> %s)", e.Message, e.Method, e.URL, status)
}

// Is lets errors.Is(err, ErrUnauthorized) match any 401 APIError.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}
