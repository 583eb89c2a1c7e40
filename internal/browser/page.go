package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// Page implements auth.Browser on top of a chromedp tab context.
// All operations run against the tab's context, so they stop at the
// per-account deadline set by NewTab.
type Page struct {
	ctx        context.Context
	navTimeout time.Duration
}

// Navigate loads the URL and waits for the document body to render.
// Page loads get their own deadline on top of the tab's budget.
func (p *Page) Navigate(url string) error {
	ctx := p.ctx
	if p.navTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(p.ctx, p.navTimeout)
		defer cancel()
	}
	return chromedp.Run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitVisible("body", chromedp.ByQuery),
	)
}

// Location returns the current page URL.
func (p *Page) Location() (string, error) {
	var loc string
	err := chromedp.Run(p.ctx, chromedp.Location(&loc))
	return loc, err
}

// WaitVisible blocks until the selector matches a visible element.
func (p *Page) WaitVisible(selector string) error {
	return chromedp.Run(p.ctx, chromedp.WaitVisible(selector, chromedp.ByQuery))
}

// Exists reports whether the selector matches any element right now,
// without waiting. JS evaluation avoids the blocking DOM queries that
// chromedp selectors perform.
func (p *Page) Exists(selector string) (bool, error) {
	var found bool
	js := fmt.Sprintf("document.querySelector(%q) !== null", selector)
	err := chromedp.Run(p.ctx, chromedp.Evaluate(js, &found))
	return found, err
}

// SendKeys types text into the element matched by the selector.
func (p *Page) SendKeys(selector, text string) error {
	return chromedp.Run(p.ctx, chromedp.SendKeys(selector, text, chromedp.ByQuery))
}

// Click clicks the first element matched by the selector.
func (p *Page) Click(selector string) error {
	return chromedp.Run(p.ctx, chromedp.Click(selector, chromedp.NodeVisible, chromedp.ByQuery))
}

// EvalString evaluates a JS expression and returns its string result.
func (p *Page) EvalString(js string) (string, error) {
	var out string
	err := chromedp.Run(p.ctx, chromedp.Evaluate(js, &out))
	return out, err
}

// Cookies serializes the tab's cookies into an opaque JSON blob.
// Callers treat the blob as engine-specific state; only SetCookies
// understands it.
func (p *Page) Cookies() ([]byte, error) {
	var blob []byte
	err := chromedp.Run(p.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		cookies, err := network.GetCookies().Do(ctx)
		if err != nil {
			return err
		}
		blob, err = json.Marshal(cookies)
		return err
	}))
	return blob, err
}

// SetCookies restores cookies from a blob produced by Cookies.
func (p *Page) SetCookies(blob []byte) error {
	var cookies []*network.Cookie
	if err := json.Unmarshal(blob, &cookies); err != nil {
		return fmt.Errorf("failed to decode session blob: %w", err)
	}

	params := make([]*network.CookieParam, 0, len(cookies))
	for _, c := range cookies {
		param := &network.CookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
			SameSite: c.SameSite,
		}
		if c.Expires > 0 {
			expires := cdp.TimeSinceEpoch(time.Unix(int64(c.Expires), 0))
			param.Expires = &expires
		}
		params = append(params, param)
	}

	return chromedp.Run(p.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		return network.SetCookies(params).Do(ctx)
	}))
}
