// Package api provides the shared HTTP client for external API calls.
//
// The TOTP endpoint and the Telegram Bot API both go through one
// pooled client so connections are reused across the run instead of
// each call paying its own TCP and TLS handshake.
package api

import (
	"net/http"
	"time"
)

// NewHTTPClient creates an HTTP client with connection pooling.
//
// Parameters:
//   - timeout: Maximum time for a complete request, including reading
//     the response body
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			DisableKeepAlives:   false,
			ForceAttemptHTTP2:   true,
		},
	}
}
