// Package totp supplies one-time second-factor codes.
//
// Two providers exist: local derivation from the shared secret
// (standard 30-second TOTP) and delegation to a remote code-issuing
// endpoint. Every provider failure surfaces as a
// SecondFactorUnavailableError so the runner reports it as a
// retriable provider problem rather than a rejected code.
package totp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"idcrenew/internal/errors"

	"github.com/pquerna/otp/totp"
)

// Provider supplies the current one-time code for a shared secret.
type Provider interface {
	Code(ctx context.Context, secret string) (string, error)
}

// NewProvider picks the remote provider when an endpoint is
// configured and local derivation otherwise.
func NewProvider(apiURL string, client *http.Client) Provider {
	if apiURL != "" {
		return &RemoteProvider{BaseURL: apiURL, Client: client}
	}
	return LocalProvider{}
}

// LocalProvider derives the code directly from the shared secret.
type LocalProvider struct{}

// Code returns the 6-digit code for the current 30-second window.
func (LocalProvider) Code(_ context.Context, secret string) (string, error) {
	code, err := totp.GenerateCode(secret, time.Now())
	if err != nil {
		return "", errors.NewSecondFactorUnavailableError("local code derivation failed", err)
	}
	return code, nil
}

// RemoteProvider asks an external endpoint for the current code.
//
// Request: GET {BaseURL}/totp/{secret}
// Response: {"code": "123456"}
type RemoteProvider struct {
	BaseURL string
	Client  *http.Client
}

// Code fetches the current code from the remote endpoint.
//
// Failure modes (network error, non-2xx status, malformed or empty
// response) all map to SecondFactorUnavailableError.
func (p *RemoteProvider) Code(ctx context.Context, secret string) (string, error) {
	url := fmt.Sprintf("%s/totp/%s", strings.TrimRight(p.BaseURL, "/"), secret)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", errors.NewSecondFactorUnavailableError("failed to build totp request", err)
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", errors.NewSecondFactorUnavailableError("totp endpoint unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", errors.NewSecondFactorUnavailableError(
			fmt.Sprintf("totp endpoint returned status %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return "", errors.NewSecondFactorUnavailableError("failed to read totp response", err)
	}

	var payload struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", errors.NewSecondFactorUnavailableError("malformed totp response", err)
	}
	if payload.Code == "" {
		return "", errors.NewSecondFactorUnavailableError("totp response carried no code", nil)
	}

	return payload.Code, nil
}
