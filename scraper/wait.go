package scraper

import (
	"fmt"
	"time"

	"github.com/go-rod/rod"
)

// retryBackoff is the fixed delay between failed selector-wait attempts.
const retryBackoff = 1 * time.Second

// WaitOptions controls a bounded-retry selector wait.
type WaitOptions struct {
	// Timeout is the per-attempt wait for the selector to appear.
	Timeout time.Duration

	// MaxRetries is the number of extra attempts after the first.
	MaxRetries int

	// RequireVisible additionally waits for the element to be visible.
	RequireVisible bool

	// Description names what is being waited for, for logs and errors.
	Description string
}

// SelectorError reports a selector that never appeared within the retry
// budget. Callers decide what it means: on the first page of a pagination
// loop it is a hard failure, on later pages it marks the normal end of
// pagination.
type SelectorError struct {
	Selector    string
	Description string
	Attempts    int
	Err         error
}

func (e *SelectorError) Error() string {
	return fmt.Sprintf("selector %q (%s) not found after %d attempts", e.Selector, e.Description, e.Attempts)
}

func (e *SelectorError) Unwrap() error { return e.Err }

// WaitFor waits for selector to appear on page, retrying up to
// opts.MaxRetries extra times with a fixed backoff between failed attempts.
// Slow-rendering pages get several chances; pages that will never render
// the selector fail with a typed *SelectorError.
func WaitFor(page *rod.Page, selector string, opts WaitOptions) error {
	attempt := func(timeout time.Duration) error {
		el, err := page.Timeout(timeout).Element(selector)
		if err != nil {
			return err
		}
		if opts.RequireVisible {
			return el.Timeout(timeout).WaitVisible()
		}
		return nil
	}
	err := waitWithPolicy(opts, attempt)
	if serr, ok := err.(*SelectorError); ok {
		serr.Selector = selector
	}
	return err
}

// waitWithPolicy runs the retry loop around a single-attempt probe. The
// backoff sleeps between failed attempts only, never after the last one.
func waitWithPolicy(opts WaitOptions, attempt func(timeout time.Duration) error) error {
	attempts := opts.MaxRetries + 1
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if lastErr = attempt(opts.Timeout); lastErr == nil {
			return nil
		}
		if i < attempts-1 {
			time.Sleep(retryBackoff)
		}
	}

	return &SelectorError{
		Description: opts.Description,
		Attempts:    attempts,
		Err:         lastErr,
	}
}
