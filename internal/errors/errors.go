// Package errors provides custom error types for the renewal run.
//
// Each type corresponds to one terminal failure mode of an account's
// login pass, so the runner can map an error to a per-account status
// without string matching. Failures are contained per account; none
// of these abort the batch.
package errors

import (
	stderrors "errors"
	"fmt"
)

// AuthFailedError indicates the portal rejected the credentials or the
// login never reached the client area.
//
// This error is returned when:
//   - The submitted username/password combination is rejected
//   - The portal stays on the login page after submission
//
// Recovery strategy: none within a run. Credentials are submitted
// exactly once per account; fix the configured credentials.
type AuthFailedError struct {
	Message string
	Err     error
}

func (e *AuthFailedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth failed: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("auth failed: %s", e.Message)
}

// Unwrap returns the wrapped error for error chain inspection
func (e *AuthFailedError) Unwrap() error {
	return e.Err
}

// NewAuthFailedError creates a new auth failed error with context
func NewAuthFailedError(msg string, err error) *AuthFailedError {
	return &AuthFailedError{Message: msg, Err: err}
}

// ChallengeTimeoutError indicates the bot-challenge widget did not
// resolve within the configured timeout.
//
// Recovery strategy: retriable on the next scheduled invocation.
type ChallengeTimeoutError struct {
	Message string
}

func (e *ChallengeTimeoutError) Error() string {
	return fmt.Sprintf("challenge timed out: %s", e.Message)
}

// NewChallengeTimeoutError creates a new challenge timeout error with context
func NewChallengeTimeoutError(msg string) *ChallengeTimeoutError {
	return &ChallengeTimeoutError{Message: msg}
}

// SecondFactorFailedError indicates the portal demanded a second factor
// that could not be satisfied: either the submitted code was rejected
// or no shared secret is configured for the account.
//
// Recovery strategy: none within a run. A rejected code usually means
// clock drift or a wrong secret.
type SecondFactorFailedError struct {
	Message string
}

func (e *SecondFactorFailedError) Error() string {
	return fmt.Sprintf("second factor failed: %s", e.Message)
}

// NewSecondFactorFailedError creates a new second factor failed error with context
func NewSecondFactorFailedError(msg string) *SecondFactorFailedError {
	return &SecondFactorFailedError{Message: msg}
}

// SecondFactorUnavailableError indicates the code provider itself
// failed: network timeout, non-2xx response, or a malformed response
// from the TOTP endpoint.
//
// Recovery strategy: retriable on the next scheduled invocation.
type SecondFactorUnavailableError struct {
	Message string
	Err     error
}

func (e *SecondFactorUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("second factor unavailable: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("second factor unavailable: %s", e.Message)
}

// Unwrap returns the wrapped error for error chain inspection
func (e *SecondFactorUnavailableError) Unwrap() error {
	return e.Err
}

// NewSecondFactorUnavailableError creates a new second factor unavailable error with context
func NewSecondFactorUnavailableError(msg string, err error) *SecondFactorUnavailableError {
	return &SecondFactorUnavailableError{Message: msg, Err: err}
}

// IsAuthFailed checks if the error is an auth failure error
func IsAuthFailed(err error) bool {
	var target *AuthFailedError
	return stderrors.As(err, &target)
}

// IsChallengeTimeout checks if the error is a challenge timeout error
func IsChallengeTimeout(err error) bool {
	var target *ChallengeTimeoutError
	return stderrors.As(err, &target)
}

// IsSecondFactorFailed checks if the error is a second factor failure error
func IsSecondFactorFailed(err error) bool {
	var target *SecondFactorFailedError
	return stderrors.As(err, &target)
}

// IsSecondFactorUnavailable checks if the error is a second factor provider error
func IsSecondFactorUnavailable(err error) bool {
	var target *SecondFactorUnavailableError
	return stderrors.As(err, &target)
}
