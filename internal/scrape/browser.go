package scrape

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/chromedp/chromedp"

	"menucal/internal/menu"
)

const defaultBrowserTimeout = 30 * time.Second

// Browser retrieves fragments through a headless Chromium session.
// Some district hosts render the widget exclusively via JavaScript and
// refuse non-browser clients; for those, the plain Fetcher sees an
// empty shell and this path is configured instead.
type Browser struct {
	// PageURL is the widget page to load; meal/month parameters are
	// appended to its query string.
	PageURL string

	// Timeout bounds one whole navigate-and-extract cycle. Zero means
	// defaultBrowserTimeout.
	Timeout time.Duration
}

// FetchFragment loads the widget page for one meal and month window,
// waits for the calendar grid to render, and returns its outer HTML.
func (b *Browser) FetchFragment(ctx context.Context, meal menu.MealType, year int, month time.Month) ([]byte, error) {
	if b.PageURL == "" {
		return nil, fmt.Errorf("browser fetch: page URL is required")
	}

	pageURL, err := url.Parse(b.PageURL)
	if err != nil {
		return nil, fmt.Errorf("browser fetch: invalid page URL: %w", err)
	}
	q := pageURL.Query()
	q.Set("meal", string(meal))
	q.Set("year", fmt.Sprint(year))
	q.Set("month", fmt.Sprint(int(month)-1))
	pageURL.RawQuery = q.Encode()

	timeout := b.Timeout
	if timeout <= 0 {
		timeout = defaultBrowserTimeout
	}

	browserCtx, cancel := chromedp.NewContext(ctx)
	defer cancel()
	browserCtx, timeoutCancel := context.WithTimeout(browserCtx, timeout)
	defer timeoutCancel()

	var fragment string
	tasks := chromedp.Tasks{
		chromedp.Navigate(pageURL.String()),
		// The widget marks the grid container once its AJAX load has
		// rendered.
		chromedp.WaitVisible(`.calendar-month`, chromedp.ByQuery),
		// Small extra delay for late item chips.
		chromedp.Sleep(500 * time.Millisecond),
		chromedp.OuterHTML(`.calendar-month`, &fragment, chromedp.ByQuery),
	}

	if err := chromedp.Run(browserCtx, tasks); err != nil {
		return nil, fmt.Errorf("browser fetch: chromedp run failed: %w", err)
	}

	return []byte(fragment), nil
}
