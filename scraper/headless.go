package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"

	"github.com/smartshopza/trolley/browser"
	"github.com/smartshopza/trolley/config"
	"github.com/smartshopza/trolley/models"
)

const chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// ExtractFunc pulls normalized products out of a rendered page. It may run
// additional selector waits, pagination loops, and in-page script
// evaluation. The page it receives is already bound to the request context.
type ExtractFunc func(ctx context.Context, page *rod.Page) ([]models.Product, error)

// Headless runs one retailer scrape on a page borrowed from the shared
// browser session. It owns the uniform lifecycle around the retailer's
// extractor: header setup, navigation, error capture, and the guarantee
// that the page is closed on every exit path. The browser process itself
// is never closed here.
type Headless struct {
	session *browser.Session
	cfg     config.ScraperConfig

	hooks runnerHooks
}

// runnerHooks are the browser touchpoints of Run. Swappable in tests so
// the lifecycle guarantees can be asserted without a Chromium.
type runnerHooks struct {
	acquire  func(ctx context.Context) (*rod.Page, error)
	prepare  func(page *rod.Page) *rod.HijackRouter
	navigate func(ctx context.Context, page *rod.Page, target string) (*rod.Page, error)
	close    func(page *rod.Page) error
	capture  func(page *rod.Page, retailer string)
}

// NewHeadless creates a headless scrape runner on top of the shared session.
func NewHeadless(session *browser.Session, cfg config.ScraperConfig) *Headless {
	h := &Headless{session: session, cfg: cfg}
	h.hooks = runnerHooks{
		acquire:  session.Page,
		prepare:  h.preparePage,
		navigate: h.navigatePage,
		close:    func(page *rod.Page) error { return page.Close() },
		capture:  h.captureScreenshot,
	}
	return h
}

// Run navigates to searchURL and delegates extraction to extract. Any
// navigation or extraction error is contained in the returned outcome;
// Run never propagates an error to the caller.
func (h *Headless) Run(ctx context.Context, retailer, searchURL string, extract ExtractFunc) models.ScrapeOutcome {
	log := slog.With("retailer", retailer)
	log.Info("headless scrape starting", "url", searchURL)

	page, err := h.hooks.acquire(ctx)
	if err != nil {
		log.Error("failed to acquire page", "error", err)
		return models.OutcomeFailed("browser page unavailable: " + err.Error())
	}
	defer func() {
		if closeErr := h.hooks.close(page); closeErr != nil {
			log.Warn("page close failed", "error", closeErr)
		}
	}()

	if router := h.hooks.prepare(page); router != nil {
		defer func() { _ = router.Stop() }()
	}

	p, err := h.hooks.navigate(ctx, page, searchURL)
	if err != nil {
		log.Error("navigation failed", "url", searchURL, "error", err)
		h.hooks.capture(page, retailer)
		return models.OutcomeFailed(navigationMessage(err))
	}
	log.Debug("navigation complete")

	products, err := extract(ctx, p)
	if err != nil {
		log.Error("extraction failed", "error", err)
		h.hooks.capture(page, retailer)
		return models.OutcomeFailed("extraction failed: " + err.Error())
	}

	log.Info("headless scrape complete", "products", len(products))
	return models.OutcomeOK(products)
}

// preparePage installs everything that must be in place before navigation:
// stealth JS, the outbound identity headers, and the resource-blocking
// hijack router.
func (h *Headless) preparePage(page *rod.Page) *rod.HijackRouter {
	if _, err := page.EvalOnNewDocument(stealth.JS); err != nil {
		slog.Warn("stealth injection failed, proceeding without stealth", "error", err)
	}

	_ = proto.NetworkSetUserAgentOverride{
		UserAgent:      chromeUA,
		AcceptLanguage: "en-ZA,en;q=0.9",
	}.Call(page)

	_ = proto.NetworkSetExtraHTTPHeaders{
		Headers: toHeadersMap(map[string]string{
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
			"Accept-Language": "en-ZA,en;q=0.9",
			"Cache-Control":   "no-cache",
		}),
	}.Call(page)

	return setupHijack(page, h.cfg.BlockedResourceTypes)
}

// navigatePage binds the request context to the page, navigates, and waits
// for the DOM to settle, all bounded by the navigation timeout. It returns
// the context-bound page the extractor should use.
func (h *Headless) navigatePage(ctx context.Context, page *rod.Page, target string) (*rod.Page, error) {
	p := page.Context(ctx)

	if err := p.Timeout(h.cfg.NavigationTimeout).Navigate(target); err != nil {
		return nil, err
	}
	if err := p.Timeout(h.cfg.NavigationTimeout).WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
		slog.Debug("WaitDOMStable did not converge, proceeding with current DOM", "error", err)
	}
	return p, nil
}

// captureScreenshot saves a diagnostic screenshot of the failed page.
// Best-effort only: every error in here is swallowed.
func (h *Headless) captureScreenshot(page *rod.Page, retailer string) {
	if h.cfg.ScreenshotDir == "" {
		return
	}
	data, err := page.Screenshot(false, nil)
	if err != nil {
		slog.Debug("diagnostic screenshot failed", "retailer", retailer, "error", err)
		return
	}
	if err := os.MkdirAll(h.cfg.ScreenshotDir, 0o755); err != nil {
		return
	}
	name := fmt.Sprintf("%s-%d.png", strings.ToLower(retailer), time.Now().Unix())
	_ = os.WriteFile(filepath.Join(h.cfg.ScreenshotDir, name), data, 0o644)
}

// navigationMessage keeps the outcome message stable for the two common
// navigation failure classes.
func navigationMessage(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "navigation timed out"
	}
	return "navigation failed: " + err.Error()
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}

// SearchURL builds a retailer search URL from a base pattern containing a
// single %s placeholder for the query-escaped term.
func SearchURL(pattern, query string) string {
	return fmt.Sprintf(pattern, url.QueryEscape(query))
}
