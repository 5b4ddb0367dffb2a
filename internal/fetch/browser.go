// Package fetch - browser.go provides headless browser rendering for when
// the jackpot widget is drawn by client-side script.
package fetch

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"
)

// renderSettle is the extra wait after document-ready for the jackpot
// widget's script to fill in the value.
const renderSettle = 2 * time.Second

// Browser fetches pages through a headless Chrome/Chromium instance.
// Requires Chrome/Chromium to be installed on the system.
type Browser struct {
	opts Options
}

// NewBrowser returns a browser-backed page fetcher.
func NewBrowser(opts Options) *Browser {
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Browser{opts: opts}
}

// Fetch renders the page at urlStr and returns the rendered HTML.
func (b *Browser) Fetch(ctx context.Context, urlStr string) (string, error) {
	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, b.opts.Timeout)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(urlStr),
		chromedp.WaitReady("body"),
		chromedp.Sleep(renderSettle),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", &Error{
			URL:     urlStr,
			Message: "browser rendering failed",
			Cause:   err,
		}
	}

	return html, nil
}
