package scraper

import (
	"context"
	"errors"
	"testing"

	"github.com/go-rod/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartshopza/trolley/config"
	"github.com/smartshopza/trolley/models"
)

// fakeRunnerHooks records lifecycle calls without touching a browser.
type fakeRunnerHooks struct {
	acquireErr  error
	navigateErr error
	closed      int
	captured    int
}

func (f *fakeRunnerHooks) install(h *Headless) {
	page := &rod.Page{}
	h.hooks = runnerHooks{
		acquire: func(context.Context) (*rod.Page, error) {
			if f.acquireErr != nil {
				return nil, f.acquireErr
			}
			return page, nil
		},
		prepare: func(*rod.Page) *rod.HijackRouter { return nil },
		navigate: func(_ context.Context, p *rod.Page, _ string) (*rod.Page, error) {
			return p, f.navigateErr
		},
		close: func(*rod.Page) error {
			f.closed++
			return nil
		},
		capture: func(*rod.Page, string) { f.captured++ },
	}
}

func newTestHeadless() *Headless {
	return &Headless{cfg: config.ScraperConfig{}}
}

func TestHeadlessRun_ExtractorFailureClosesPage(t *testing.T) {
	h := newTestHeadless()
	fakes := &fakeRunnerHooks{}
	fakes.install(h)

	outcome := h.Run(context.Background(), "Makro", "https://example.test/search", func(context.Context, *rod.Page) ([]models.Product, error) {
		return nil, errors.New("next-page click lost the DOM")
	})

	assert.True(t, outcome.Failed)
	assert.Contains(t, outcome.Message, "extraction failed")
	assert.Empty(t, outcome.Results)
	assert.Equal(t, 1, fakes.closed, "the page must be closed when the extractor fails")
	assert.Equal(t, 1, fakes.captured, "a diagnostic screenshot must be attempted")
}

func TestHeadlessRun_NavigationFailureClosesPage(t *testing.T) {
	h := newTestHeadless()
	fakes := &fakeRunnerHooks{navigateErr: errors.New("net::ERR_NAME_NOT_RESOLVED")}
	fakes.install(h)

	extractorRan := false
	outcome := h.Run(context.Background(), "Woolworths", "https://example.test/search", func(context.Context, *rod.Page) ([]models.Product, error) {
		extractorRan = true
		return nil, nil
	})

	assert.True(t, outcome.Failed)
	assert.Contains(t, outcome.Message, "navigation failed")
	assert.False(t, extractorRan)
	assert.Equal(t, 1, fakes.closed)
}

func TestHeadlessRun_NavigationTimeoutMessage(t *testing.T) {
	h := newTestHeadless()
	fakes := &fakeRunnerHooks{navigateErr: context.DeadlineExceeded}
	fakes.install(h)

	outcome := h.Run(context.Background(), "Woolworths", "https://example.test/search", nil)
	assert.True(t, outcome.Failed)
	assert.Equal(t, "navigation timed out", outcome.Message)
}

func TestHeadlessRun_AcquireFailureDoesNotClose(t *testing.T) {
	h := newTestHeadless()
	fakes := &fakeRunnerHooks{acquireErr: errors.New("browser session is shut down")}
	fakes.install(h)

	outcome := h.Run(context.Background(), "Makro", "https://example.test/search", nil)

	assert.True(t, outcome.Failed)
	assert.Contains(t, outcome.Message, "browser page unavailable")
	assert.Equal(t, 0, fakes.closed, "no page was acquired, so none must be closed")
}

func TestHeadlessRun_Success(t *testing.T) {
	h := newTestHeadless()
	fakes := &fakeRunnerHooks{}
	fakes.install(h)

	want := []models.Product{
		{ID: "p1", Name: "Full Cream Milk 2L", Price: 38.99, Retailer: "Makro"},
		{ID: "p2", Name: "Low Fat Milk 2L", Price: 36.99, Retailer: "Makro"},
	}
	outcome := h.Run(context.Background(), "Makro", "https://example.test/search", func(context.Context, *rod.Page) ([]models.Product, error) {
		return want, nil
	})

	require.False(t, outcome.Failed)
	assert.Equal(t, want, outcome.Results)
	assert.Empty(t, outcome.Message)
	assert.Equal(t, 1, fakes.closed, "the page is closed on the success path too")
	assert.Equal(t, 0, fakes.captured)
}

func TestSearchURL(t *testing.T) {
	got := SearchURL("https://www.makro.co.za/search/?text=%s", "peanut butter")
	assert.Equal(t, "https://www.makro.co.za/search/?text=peanut+butter", got)
}
