// Package runner contains one account run with a fault boundary and
// iterates the configured accounts into an ordered summary.
//
// Invariant: every account the orchestrator reaches yields exactly one
// Result, in configuration order, no matter how its run ends. Panics
// and unknown errors become unexpected_error; nothing an account does
// can abort its siblings.
package runner

import (
	"context"
	stderrors "errors"
	"fmt"
	"log"
	"time"

	"idcrenew/internal/config"
	"idcrenew/internal/errors"
)

// Status is the terminal outcome of one account run.
type Status string

const (
	StatusSuccess                 Status = "success"
	StatusAuthFailed              Status = "auth_failed"
	StatusChallengeFailed         Status = "challenge_failed"
	StatusSecondFactorFailed      Status = "second_factor_failed"
	StatusSecondFactorUnavailable Status = "second_factor_unavailable"
	StatusTimeout                 Status = "timeout"
	StatusUnexpectedError         Status = "unexpected_error"
)

// Result is the immutable outcome of one account run.
type Result struct {
	Email   string
	Status  Status
	Detail  string
	Elapsed time.Duration
}

// Summary is the ordered collection of results for one invocation,
// one per configured account.
type Summary struct {
	Results []Result
}

// Succeeded returns the number of successful accounts.
func (s *Summary) Succeeded() int {
	n := 0
	for _, r := range s.Results {
		if r.Status == StatusSuccess {
			n++
		}
	}
	return n
}

// Failed returns the number of accounts that did not reach success.
func (s *Summary) Failed() int {
	return len(s.Results) - s.Succeeded()
}

// AllSucceeded reports whether every account reached success.
func (s *Summary) AllSucceeded() bool {
	return s.Failed() == 0
}

// Text renders the human-readable notification body, one line per
// account plus the overall counts. HTML-safe for the Telegram Bot API
// (emails contain no markup).
func (s *Summary) Text() string {
	body := "<b>56idc login summary</b>\n"
	for _, r := range s.Results {
		icon := "❌"
		if r.Status == StatusSuccess {
			icon = "✅"
		}
		line := fmt.Sprintf("%s %s — %s (%s)", icon, r.Email, r.Status, r.Elapsed.Round(100*time.Millisecond))
		if r.Detail != "" && r.Status != StatusSuccess {
			line += ": " + r.Detail
		}
		body += line + "\n"
	}
	body += fmt.Sprintf("\nSucceeded: %d\nFailed: %d", s.Succeeded(), s.Failed())
	return body
}

// LoginFunc runs one account's full login flow against a fresh
// browser tab. The context carries the per-account budget.
type LoginFunc func(ctx context.Context, acct config.Account) error

// Orchestrator processes accounts sequentially through a LoginFunc.
type Orchestrator struct {
	Login LoginFunc

	// Timeout is the wall-clock budget per account.
	Timeout time.Duration

	// Gap is the pause between consecutive accounts, giving the portal
	// some breathing room between logins.
	Gap time.Duration
}

// Run processes all accounts in configuration order and returns the
// summary.
//
// A process-level interrupt (ctx cancellation) lets the current
// account finish its teardown, records the remaining accounts as
// skipped, and stops. Results always line up one-to-one with the
// configured accounts.
func (o *Orchestrator) Run(ctx context.Context, accounts []config.Account) *Summary {
	results := make([]Result, 0, len(accounts))

	for i, acct := range accounts {
		if ctx.Err() != nil {
			results = append(results, Result{
				Email:  acct.Email,
				Status: StatusUnexpectedError,
				Detail: "run interrupted",
			})
			continue
		}

		log.Printf("👤 Processing account %d/%d: %s", i+1, len(accounts), acct.Email)
		res := o.runAccount(ctx, acct)
		log.Printf("   Result: %s (%v)", res.Status, res.Elapsed.Round(time.Millisecond))
		results = append(results, res)

		if o.Gap > 0 && i < len(accounts)-1 && ctx.Err() == nil {
			sleepCtx(ctx, o.Gap)
		}
	}

	return &Summary{Results: results}
}

// runAccount executes one login flow inside the fault boundary: the
// per-account deadline is applied here and any panic or error is
// mapped to a status instead of propagating.
func (o *Orchestrator) runAccount(ctx context.Context, acct config.Account) (res Result) {
	start := time.Now()
	res = Result{Email: acct.Email}

	defer func() {
		res.Elapsed = time.Since(start)
		if r := recover(); r != nil {
			res.Status = StatusUnexpectedError
			res.Detail = fmt.Sprintf("panic: %v", r)
		}
	}()

	actx := ctx
	if o.Timeout > 0 {
		var cancel context.CancelFunc
		actx, cancel = context.WithTimeout(ctx, o.Timeout)
		defer cancel()
	}

	res.Status, res.Detail = classify(o.Login(actx, acct))
	return res
}

// classify maps a login flow error to the per-account status.
func classify(err error) (Status, string) {
	switch {
	case err == nil:
		return StatusSuccess, ""
	case errors.IsAuthFailed(err):
		return StatusAuthFailed, err.Error()
	case errors.IsChallengeTimeout(err):
		return StatusChallengeFailed, err.Error()
	case errors.IsSecondFactorUnavailable(err):
		return StatusSecondFactorUnavailable, err.Error()
	case errors.IsSecondFactorFailed(err):
		return StatusSecondFactorFailed, err.Error()
	case stderrors.Is(err, context.DeadlineExceeded):
		return StatusTimeout, "account budget exhausted"
	default:
		return StatusUnexpectedError, err.Error()
	}
}

// sleepCtx pauses for d or until the context is done.
func sleepCtx(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
