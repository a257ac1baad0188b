package httpclient

import (
	"net/http"
	"time"
)

// Doer is the subset of http.Client the collaborator clients depend on.
// Tests substitute it with httptest-backed clients.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// New returns an HTTP client bound by the given timeout.
func New(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
	}
}
