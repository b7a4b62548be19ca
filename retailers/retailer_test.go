package retailers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartshopza/trolley/models"
)

type stubScraper struct {
	name string
}

func (s *stubScraper) Name() string { return s.name }
func (s *stubScraper) Scrape(context.Context, string) (models.ScrapeOutcome, error) {
	return models.OutcomeOK(nil), nil
}

func newTestRegistry() *Registry {
	r := NewRegistry()
	r.Register("checkers", &stubScraper{name: "Checkers"})
	r.Register("shoprite", &stubScraper{name: "Shoprite"})
	r.Register("makro", &stubScraper{name: "Makro"})
	r.RegisterOffline("pricecheck", &stubScraper{name: "PriceCheck"})
	return r
}

func TestRegistry_KeysPreserveOrder(t *testing.T) {
	r := newTestRegistry()
	assert.Equal(t, []string{"checkers", "shoprite", "makro", "pricecheck"}, r.Keys())
}

func TestRegistry_SelectAllByDefault(t *testing.T) {
	r := newTestRegistry()
	assert.Len(t, r.Select(nil), 4)
	assert.Len(t, r.Select([]string{}), 4)
}

func TestRegistry_SelectFilterSkipsUnknown(t *testing.T) {
	r := newTestRegistry()
	selected := r.Select([]string{"makro", "spaza", "checkers"})
	require.Len(t, selected, 2)
	assert.Equal(t, "Makro", selected[0].Name())
	assert.Equal(t, "Checkers", selected[1].Name())
}

func TestRegistry_InteractiveExcludesOffline(t *testing.T) {
	r := newTestRegistry()
	names := []string{}
	for _, s := range r.Interactive() {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{"Checkers", "Shoprite", "Makro"}, names)
	assert.NotContains(t, names, "PriceCheck")
}

func TestRegistry_Get(t *testing.T) {
	r := newTestRegistry()
	s, ok := r.Get("shoprite")
	require.True(t, ok)
	assert.Equal(t, "Shoprite", s.Name())

	_, ok = r.Get("spaza")
	assert.False(t, ok)
}
