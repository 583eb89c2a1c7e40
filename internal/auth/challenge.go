package auth

import (
	"context"
	"log"
	"time"

	"idcrenew/internal/errors"
)

// Cloudflare Turnstile markers on the login page. The widget writes
// its response token into a hidden input once verification completes;
// a populated token is how we know the page is unblocked.
const (
	turnstileInputSelector = `input[name="cf-turnstile-response"]`

	turnstileTokenJS = `(() => {
		const el = document.querySelector('input[name="cf-turnstile-response"]');
		return el ? el.value : '';
	})()`

	// Real tokens are long opaque strings; anything shorter is the
	// widget still working.
	minTokenLength = 10
)

// AwaitChallenge waits for the bot-challenge on the current page to
// resolve.
//
// Detection is purely passive: if no Turnstile widget is present the
// challenge is considered resolved immediately; otherwise the response
// token is re-checked every pollInterval until it is populated or the
// timeout elapses. The widget's own logic (or an upstream service) is
// what actually solves the challenge; this function never attempts to.
//
// Returns nil once resolved, ChallengeTimeoutError when the token
// never appears within the timeout.
func AwaitChallenge(ctx context.Context, page Browser, timeout, pollInterval time.Duration) error {
	present, err := page.Exists(turnstileInputSelector)
	if err != nil {
		return err
	}
	if !present {
		// No challenge posed on this page
		return nil
	}

	if token, err := page.EvalString(turnstileTokenJS); err == nil && len(token) > minTokenLength {
		return nil
	}

	log.Println("  ⏳ Waiting for Turnstile verification...")

	deadline, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-deadline.Done():
			if ctx.Err() != nil {
				// Parent cancelled: account budget exhausted or interrupt
				return ctx.Err()
			}
			log.Println("  ✗ Turnstile verification timed out")
			return errors.NewChallengeTimeoutError("response token never populated")
		case <-ticker.C:
			token, err := page.EvalString(turnstileTokenJS)
			if err != nil {
				// Transient evaluation failures happen while the widget
				// swaps iframes; keep polling until the deadline
				continue
			}
			if len(token) > minTokenLength {
				log.Println("  ✓ Turnstile verification passed")
				return nil
			}
		}
	}
}
