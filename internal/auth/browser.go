package auth

// Browser is the page-automation capability the login flow drives.
//
// It is the minimal surface the state machine needs: navigation,
// element interaction, JS evaluation, and opaque session blobs. The
// chromedp-backed implementation lives in internal/browser; tests use
// a scripted fake. Every method respects the deadline of the page it
// wraps, so no call blocks past the per-account budget.
type Browser interface {
	// Navigate loads the given URL and waits for the DOM to be ready.
	Navigate(url string) error

	// Location returns the current page URL.
	Location() (string, error)

	// WaitVisible blocks until the selector matches a visible element.
	WaitVisible(selector string) error

	// Exists reports whether the selector matches any element right now.
	Exists(selector string) (bool, error)

	// SendKeys types text into the element matched by the selector.
	SendKeys(selector, text string) error

	// Click clicks the first element matched by the selector.
	Click(selector string) error

	// EvalString evaluates a JS expression and returns its string result.
	EvalString(js string) (string, error)

	// Cookies serializes the context's cookies into an opaque blob.
	Cookies() ([]byte, error)

	// SetCookies restores cookies from a blob produced by Cookies.
	SetCookies(blob []byte) error
}
