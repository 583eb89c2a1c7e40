// Package auth drives a single account through the portal login flow.
//
// The flow is a fixed sequence of steps with explicit waits and
// exactly-once submission rules: restore session → navigate → (short-
// circuit if already authenticated) → challenge → credentials →
// optional second factor → confirm → hold → persist. Each terminal
// failure mode maps to one typed error from internal/errors; anything
// else bubbles up as an unexpected fault for the runner to contain.
package auth

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"idcrenew/internal/config"
	"idcrenew/internal/errors"
)

// Login form selectors, as rendered by the WHMCS-based portal.
const (
	usernameSelector = `input[name="username"]`
	passwordSelector = `input[name="password"]`
	submitSelector   = `input[type="submit"], button[type="submit"]`

	// The two-factor prompt uses either name depending on the theme
	secondFactorSelector = `input[name="code"], input[name="twoFactorCode"]`
)

// SessionStore persists and restores opaque per-account session blobs.
type SessionStore interface {
	Load(email string) ([]byte, bool)
	Save(email string, blob []byte) error
}

// CodeProvider supplies the current second-factor code for a secret.
type CodeProvider interface {
	Code(ctx context.Context, secret string) (string, error)
}

// Flow holds the collaborators and timing knobs for one login pass.
// A single Flow is shared across accounts; per-account state lives in
// the page and the arguments.
type Flow struct {
	Store SessionStore
	Codes CodeProvider

	LoginURL     string
	DashboardURL string

	StayDuration          time.Duration
	ChallengeTimeout      time.Duration
	ChallengePollInterval time.Duration

	// SettleDelay is how long to let the portal process a submission
	// before inspecting the result. Defaults to 3s when zero.
	SettleDelay time.Duration
}

// Run drives one account through the login flow on the given page.
//
// A nil return means the account reached the authenticated state and
// the session hold completed; session persistence failures are logged
// and swallowed because the login itself already succeeded. Restored
// sessions are advisory: a stale one falls through to the fresh-login
// path instead of failing.
func (f *Flow) Run(ctx context.Context, page Browser, acct config.Account) error {
	// Step 1: restore prior session, if any
	if blob, ok := f.Store.Load(acct.Email); ok {
		if err := page.SetCookies(blob); err != nil {
			log.Println("  ⚠️  Failed to restore saved session:", err)
		} else {
			log.Println("  ✓ Restored saved session")
		}
	}

	// Step 2: navigate to the login page
	log.Println("  → Navigating to login page...")
	if err := page.Navigate(f.LoginURL); err != nil {
		return fmt.Errorf("failed to load login page: %w", err)
	}

	// Step 3: a restored session may land us straight in the client area
	if loc, err := page.Location(); err == nil && f.isAuthenticatedURL(loc) {
		log.Println("  ✓ Already logged in, no credentials needed")
		return f.holdAndPersist(ctx, page, acct)
	}

	// Step 4: let the bot-challenge resolve before touching the form
	if err := AwaitChallenge(ctx, page, f.ChallengeTimeout, f.ChallengePollInterval); err != nil {
		return err
	}

	// Step 5: fresh login path; also reached when the restored session
	// was stale and the portal still demands credentials
	log.Println("  → Submitting login credentials...")
	if err := page.WaitVisible(usernameSelector); err != nil {
		return fmt.Errorf("login form not found: %w", err)
	}
	if err := page.SendKeys(usernameSelector, acct.Email); err != nil {
		return fmt.Errorf("failed to fill username: %w", err)
	}
	if err := page.SendKeys(passwordSelector, acct.Password); err != nil {
		return fmt.Errorf("failed to fill password: %w", err)
	}
	if err := page.Click(submitSelector); err != nil {
		return fmt.Errorf("failed to submit login form: %w", err)
	}
	if err := sleepCtx(ctx, f.settleDelay()); err != nil {
		return err
	}

	// Step 6: second factor, only when the portal asks for it
	if present, err := page.Exists(secondFactorSelector); err == nil && present {
		if err := f.submitSecondFactor(ctx, page, acct); err != nil {
			return err
		}
	}

	// Step 7: confirm we reached the client area
	loc, err := page.Location()
	if err != nil {
		return fmt.Errorf("failed to read page location: %w", err)
	}
	if !f.isAuthenticatedURL(loc) {
		return errors.NewAuthFailedError("portal did not reach the client area after submission", nil)
	}
	log.Println("  ✓ Login successful")

	return f.holdAndPersist(ctx, page, acct)
}

// submitSecondFactor requests exactly one code and submits it once.
func (f *Flow) submitSecondFactor(ctx context.Context, page Browser, acct config.Account) error {
	log.Println("  → Portal requires a second factor")

	if acct.TOTPSecret == "" {
		return errors.NewSecondFactorFailedError("portal requires a second factor but no secret is configured")
	}

	code, err := f.Codes.Code(ctx, acct.TOTPSecret)
	if err != nil {
		return err
	}

	if err := page.SendKeys(secondFactorSelector, code); err != nil {
		return fmt.Errorf("failed to fill second factor code: %w", err)
	}
	if err := page.Click(submitSelector); err != nil {
		return fmt.Errorf("failed to submit second factor code: %w", err)
	}
	if err := sleepCtx(ctx, f.settleDelay()); err != nil {
		return err
	}

	// The prompt re-appears when the code is rejected. No retry: a
	// second code from the same window would be rejected too.
	if still, err := page.Exists(secondFactorSelector); err == nil && still {
		return errors.NewSecondFactorFailedError("code was rejected")
	}

	log.Println("  ✓ Second factor accepted")
	return nil
}

// holdAndPersist keeps the authenticated session open for the
// configured stay duration, then captures and saves the session blob.
// Persistence failures are downgraded to log lines.
func (f *Flow) holdAndPersist(ctx context.Context, page Browser, acct config.Account) error {
	if f.StayDuration > 0 {
		log.Printf("  ⏳ Staying logged in for %v...", f.StayDuration)
		if err := sleepCtx(ctx, f.StayDuration); err != nil {
			return err
		}
	}

	blob, err := page.Cookies()
	if err != nil {
		log.Println("  ⚠️  Failed to capture session cookies:", err)
		return nil
	}
	if err := f.Store.Save(acct.Email, blob); err != nil {
		log.Println("  ⚠️  Failed to persist session:", err)
		return nil
	}

	log.Println("  ✓ Session persisted")
	return nil
}

// isAuthenticatedURL reports whether the URL belongs to the
// authenticated client area rather than the login page.
func (f *Flow) isAuthenticatedURL(loc string) bool {
	if u, err := url.Parse(f.DashboardURL); err == nil && u.Path != "" {
		if strings.Contains(loc, u.Path) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(loc), "dashboard")
}

func (f *Flow) settleDelay() time.Duration {
	if f.SettleDelay > 0 {
		return f.SettleDelay
	}
	return 3 * time.Second
}

// sleepCtx sleeps for d or until the context is done, whichever comes
// first, returning the context error on early wake-up.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
