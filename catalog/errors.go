package catalog

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// ErrNoSession is returned when a stored token or user snapshot is requested
// but nobody is logged in.
var ErrNoSession = errors.New("no active session")

// ErrMutationPending is returned when a save is requested while an earlier
// one for the same dialog is still in flight.
var ErrMutationPending = errors.New("a save is already in progress")

// HTTPError carries the status code and server-supplied message of a failed
// API call.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("server returned %d", e.Status)
}

// IsAuthError reports whether err is an authentication rejection (401/403).
// The client clears the stored session when it sees one; callers route the
// user back to the login flow.
func IsAuthError(err error) bool {
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		return false
	}
	return httpErr.Status == http.StatusUnauthorized || httpErr.Status == http.StatusForbidden
}

// ValidationError reports the fields of a form that failed their rules. It
// blocks submission and never reaches the network.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
