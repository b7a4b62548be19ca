package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/smartshopza/trolley/models"
)

// settleDelay is the fixed pause after a page transition before extraction,
// giving late-loading product tiles time to land.
const settleDelay = 2 * time.Second

// PaginateOptions configures a multi-page extraction loop.
type PaginateOptions struct {
	// ItemSelector is the per-page product item selector.
	ItemSelector string

	// Wait is the selector-wait policy for the first page.
	Wait WaitOptions

	// TransitionTimeout replaces Wait.Timeout after a next-page click,
	// allowing for a full page transition.
	TransitionTimeout time.Duration

	// MaxPages caps the loop. Zero means no cap.
	MaxPages int
}

// Paginate runs the multi-page extraction protocol: wait for the item
// selector, extract the current page, find a "next" control by visible
// link text, click it and go again.
//
// The item selector missing on page 1 is a hard error; missing on any
// later page ends pagination normally, as does a missing or unclickable
// next control. Extracted items accumulate in arrival order and are not
// de-duplicated here.
func Paginate(ctx context.Context, page *rod.Page, opts PaginateOptions, extract func() ([]models.Product, error)) ([]models.Product, error) {
	var all []models.Product
	waitTimeout := opts.Wait.Timeout

	for pageNum := 1; ; pageNum++ {
		w := opts.Wait
		w.Timeout = waitTimeout
		w.Description = fmt.Sprintf("%s (page %d)", opts.Wait.Description, pageNum)

		if err := WaitFor(page, opts.ItemSelector, w); err != nil {
			if pageNum == 1 {
				return nil, err
			}
			slog.Debug("item selector gone, pagination ends", "page", pageNum)
			break
		}

		if pageNum > 1 {
			time.Sleep(settleDelay)
		}

		items, err := extract()
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", pageNum, err)
		}
		all = append(all, items...)

		if err := ctx.Err(); err != nil {
			return all, err
		}
		if opts.MaxPages > 0 && pageNum >= opts.MaxPages {
			break
		}

		next, found := findNextControl(page)
		if !found {
			break
		}
		if err := next.Click(proto.InputMouseButtonLeft, 1); err != nil {
			slog.Debug("next-page click failed, pagination ends", "page", pageNum, "error", err)
			break
		}
		waitTimeout = opts.TransitionTimeout
	}

	return all, nil
}

// findNextControl locates a pagination control whose visible text is
// "next", matched case-insensitively. A short deadline is enough: on the
// last page the control simply is not there.
func findNextControl(page *rod.Page) (*rod.Element, bool) {
	el, err := page.Timeout(2 * time.Second).ElementR("a, button", `/^\s*next\s*>?\s*$/i`)
	if err != nil {
		return nil, false
	}
	if visible, err := el.Visible(); err != nil || !visible {
		return nil, false
	}
	return el, true
}
