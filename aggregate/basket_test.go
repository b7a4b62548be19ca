package aggregate

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartshopza/trolley/config"
	"github.com/smartshopza/trolley/models"
	"github.com/smartshopza/trolley/retailers"
)

// fakeScraper serves canned outcomes per query and records the queries it
// received, so concurrency and fold behaviour can be asserted without any
// network or browser.
type fakeScraper struct {
	name     string
	outcomes map[string]models.ScrapeOutcome
	err      error

	mu      sync.Mutex
	queries []string
}

func (f *fakeScraper) Name() string { return f.name }

func (f *fakeScraper) Scrape(_ context.Context, query string) (models.ScrapeOutcome, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()
	if f.err != nil {
		return models.ScrapeOutcome{}, f.err
	}
	if out, ok := f.outcomes[query]; ok {
		return out, nil
	}
	return models.OutcomeOK(nil), nil
}

func product(name string, price float64) models.Product {
	return models.Product{ID: "1", Name: name, Price: price, Retailer: "x"}
}

func newAggregator(t *testing.T, scrapers ...*fakeScraper) *Aggregator {
	t.Helper()
	reg := retailers.NewRegistry()
	for _, s := range scrapers {
		reg.Register(s.name, s)
	}
	cfg := config.ScraperConfig{}
	return New(reg, cfg, config.BasketConfig{MaxItems: 30}, slog.Default())
}

func TestCompareBasket_FoldRules(t *testing.T) {
	shop := &fakeScraper{
		name: "Checkers",
		outcomes: map[string]models.ScrapeOutcome{
			"bread": models.OutcomeOK([]models.Product{product("White Bread 700g", 18.99), product("Brown Bread 700g", 17.99)}),
			"milk":  models.OutcomeFailed("selector not found"),
			"caviar": models.OutcomeOK(nil),
		},
	}
	agg := newAggregator(t, shop)

	results, err := agg.CompareBasket(context.Background(), []string{"bread", "milk", "caviar"})
	require.NoError(t, err)
	r := results["Checkers"]
	require.NotNil(t, r)

	// Successful item contributes the first result only.
	require.Len(t, r.FoundItems, 1)
	assert.Equal(t, "bread", r.FoundItems[0].ItemQuery)
	assert.Equal(t, 18.99, r.FoundItems[0].Price)
	assert.Equal(t, "White Bread 700g", r.FoundItems[0].Product.Name)

	// Failed scrape is missing plus exactly one potential error; an empty
	// result set is missing only.
	assert.ElementsMatch(t, []string{"milk", "caviar"}, r.MissingItems)
	require.Len(t, r.PotentialErrors, 1)
	assert.Equal(t, "milk", r.PotentialErrors[0].ItemQuery)
	assert.Equal(t, "selector not found", r.PotentialErrors[0].Message)

	assert.Equal(t, 18.99, r.TotalPrice)
	assert.Equal(t, 1, r.ItemCount)
}

func TestCompareBasket_RoundsTotalOnce(t *testing.T) {
	// 10.005 + 10.005 kept un-rounded sums to 20.01; rounding each term
	// first would lose a cent.
	shop := &fakeScraper{
		name: "Makro",
		outcomes: map[string]models.ScrapeOutcome{
			"tea":    models.OutcomeOK([]models.Product{product("Tea", 10.005)}),
			"coffee": models.OutcomeOK([]models.Product{product("Coffee", 10.005)}),
		},
	}
	agg := newAggregator(t, shop)

	results, err := agg.CompareBasket(context.Background(), []string{"tea", "coffee"})
	require.NoError(t, err)
	assert.Equal(t, 20.01, results["Makro"].TotalPrice)
}

func TestCompareBasket_TotalOrderIndependent(t *testing.T) {
	outcomes := map[string]models.ScrapeOutcome{
		"a": models.OutcomeOK([]models.Product{product("A", 10.10)}),
		"b": models.OutcomeOK([]models.Product{product("B", 0.05)}),
		"c": models.OutcomeOK([]models.Product{product("C", 33.33)}),
	}
	agg1 := newAggregator(t, &fakeScraper{name: "Shoprite", outcomes: outcomes})
	agg2 := newAggregator(t, &fakeScraper{name: "Shoprite", outcomes: outcomes})

	r1, err := agg1.CompareBasket(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	r2, err := agg2.CompareBasket(context.Background(), []string{"c", "a", "b"})
	require.NoError(t, err)

	assert.Equal(t, r1["Shoprite"].TotalPrice, r2["Shoprite"].TotalPrice)
}

func TestCompareBasket_MultipleRetailersIndependent(t *testing.T) {
	ok := &fakeScraper{
		name: "Checkers",
		outcomes: map[string]models.ScrapeOutcome{
			"milk": models.OutcomeOK([]models.Product{product("Milk 2L", 32.99)}),
		},
	}
	broken := &fakeScraper{
		name: "Woolworths",
		outcomes: map[string]models.ScrapeOutcome{
			"milk": models.OutcomeFailed("navigation timed out"),
		},
	}
	agg := newAggregator(t, ok, broken)

	results, err := agg.CompareBasket(context.Background(), []string{"milk"})
	require.NoError(t, err)

	assert.Equal(t, 32.99, results["Checkers"].TotalPrice)
	assert.Empty(t, results["Checkers"].MissingItems)
	assert.Equal(t, 0.0, results["Woolworths"].TotalPrice)
	assert.Equal(t, []string{"milk"}, results["Woolworths"].MissingItems)
	require.Len(t, results["Woolworths"].PotentialErrors, 1)
}

func TestCompareBasket_RunnerErrorTreatedAsFailure(t *testing.T) {
	shop := &fakeScraper{name: "Makro", err: errors.New("browser gone")}
	agg := newAggregator(t, shop)

	results, err := agg.CompareBasket(context.Background(), []string{"rice"})
	require.NoError(t, err)
	r := results["Makro"]
	assert.Equal(t, []string{"rice"}, r.MissingItems)
	require.Len(t, r.PotentialErrors, 1)
	assert.Contains(t, r.PotentialErrors[0].Message, "browser gone")
}

func TestCompareBasket_NormalizesItems(t *testing.T) {
	shop := &fakeScraper{name: "Checkers", outcomes: map[string]models.ScrapeOutcome{}}
	agg := newAggregator(t, shop)

	_, err := agg.CompareBasket(context.Background(), []string{" milk ", "milk", "MILK", "", "bread"})
	require.NoError(t, err)

	shop.mu.Lock()
	defer shop.mu.Unlock()
	assert.ElementsMatch(t, []string{"milk", "bread"}, shop.queries)
}

func TestCompareBasket_RejectsEmptyBasket(t *testing.T) {
	agg := newAggregator(t, &fakeScraper{name: "Checkers"})

	for _, items := range [][]string{nil, {}, {"", "  "}} {
		_, err := agg.CompareBasket(context.Background(), items)
		var serr *models.ScrapeError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, models.ErrCodeInvalidInput, serr.Code)
	}
}

func TestCompareBasket_RejectsOversizedBasket(t *testing.T) {
	reg := retailers.NewRegistry()
	reg.Register("checkers", &fakeScraper{name: "Checkers"})
	agg := New(reg, config.ScraperConfig{}, config.BasketConfig{MaxItems: 2}, slog.Default())

	_, err := agg.CompareBasket(context.Background(), []string{"a", "b", "c"})
	var serr *models.ScrapeError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, models.ErrCodeInvalidInput, serr.Code)
}

func TestCompareBasket_ExcludesOfflineRetailers(t *testing.T) {
	online := &fakeScraper{name: "Checkers"}
	offline := &fakeScraper{name: "PriceCheck"}
	reg := retailers.NewRegistry()
	reg.Register("checkers", online)
	reg.RegisterOffline("pricecheck", offline)
	agg := New(reg, config.ScraperConfig{}, config.BasketConfig{MaxItems: 30}, slog.Default())

	results, err := agg.CompareBasket(context.Background(), []string{"milk"})
	require.NoError(t, err)

	assert.Contains(t, results, "Checkers")
	assert.NotContains(t, results, "PriceCheck")
	offline.mu.Lock()
	defer offline.mu.Unlock()
	assert.Empty(t, offline.queries)
}
