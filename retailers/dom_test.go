package retailers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func price(v float64) *float64 { return &v }

func TestConvertDOMItems_DropsInvalidRecords(t *testing.T) {
	raw := []domItem{
		{ID: "1", Name: "Milk 2L", Price: price(32.99), URL: "/p/milk-2l"},
		{ID: "2", Name: "Milk 1L"},                      // no price
		{ID: "3", Name: "", Price: price(10)},           // no name
		{ID: "", Name: "Milk 500ml", Price: price(12)},  // no id
		{ID: "4", Name: "Sour Milk", Price: price(-1)},  // negative price
		{ID: "5", Name: "Long Life Milk", Price: price(25.499)},
	}

	products, dropped := convertDOMItems(raw, "Makro", "https://www.makro.co.za", true)

	assert.Equal(t, 4, dropped)
	require.Len(t, products, 2)
	assert.Equal(t, "Milk 2L", products[0].Name)
	assert.Equal(t, "Makro", products[0].Retailer)
	assert.Equal(t, "https://www.makro.co.za/p/milk-2l", products[0].URL)
	assert.Equal(t, 25.5, products[1].Price)
}

func TestConvertDOMItems_OptionalID(t *testing.T) {
	raw := []domItem{
		{ID: "", Name: "Milk", Price: price(30)},
	}

	products, dropped := convertDOMItems(raw, "Checkers", "https://www.checkers.co.za", false)

	assert.Equal(t, 0, dropped)
	require.Len(t, products, 1)
	assert.Empty(t, products[0].ID)
}
