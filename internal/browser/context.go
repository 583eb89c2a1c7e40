// Package browser provides Chrome automation contexts and the
// chromedp-backed page driver for the login flow.
//
// One exec allocator (one Chrome process) is shared across the whole
// run; each account gets its own tab context with its own deadline so
// a stuck account tears down cleanly without touching the others.
package browser

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"
)

// Matches a common desktop Chrome so the portal serves the regular
// login page instead of a bot interstitial.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// NewAllocator creates the process-wide Chrome exec allocator.
//
// The flags mirror what the portal tolerates in containerized runs:
// sandbox disabled for root containers, /dev/shm avoided for small
// shared-memory limits, and the automation marker blink feature off
// so Turnstile sees an ordinary browser.
func NewAllocator(ctx context.Context, headless bool) (context.Context, context.CancelFunc) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(1280, 720),
		chromedp.UserAgent(userAgent),
	)
	return chromedp.NewExecAllocator(ctx, opts...)
}

// NewTab opens a fresh tab context on the shared allocator with its
// own wall-clock budget. navTimeout additionally bounds individual
// page loads, so a hanging navigation fails fast instead of eating
// the whole account budget.
//
// The returned cancel function closes the tab and must run on every
// exit path; the first tab also spawns the browser process itself.
func NewTab(allocCtx context.Context, budget, navTimeout time.Duration) (*Page, context.CancelFunc) {
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)
	ctx, timeoutCancel := context.WithTimeout(tabCtx, budget)

	cancel := func() {
		timeoutCancel()
		tabCancel()
	}
	return &Page{ctx: ctx, navTimeout: navTimeout}, cancel
}
