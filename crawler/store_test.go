package crawler

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "products.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_SearchMatchesTitleSubstring(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, Record{
		ID: "pc-1", Retailer: "PriceCheck", Title: "Full Cream Milk 2L",
		Price: 32.99, URL: "https://example.com/milk-2l", Image: "https://example.com/milk.jpg",
	}))
	require.NoError(t, store.Upsert(ctx, Record{
		ID: "pc-2", Retailer: "PriceCheck", Title: "Brown Bread 700g",
		Price: 18.49, URL: "https://example.com/bread",
	}))

	products, err := store.Search(ctx, "PriceCheck", "milk", 50)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "pc-1", products[0].ID)
	assert.Equal(t, "Full Cream Milk 2L", products[0].Name)
	assert.Equal(t, 32.99, products[0].Price)
	assert.Equal(t, "PriceCheck", products[0].Retailer)
	assert.Equal(t, "https://example.com/milk.jpg", products[0].Image)
}

func TestStore_SearchScopedToRetailer(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, Record{
		ID: "pc-1", Retailer: "PriceCheck", Title: "Milk", Price: 30, URL: "https://a",
	}))
	require.NoError(t, store.Upsert(ctx, Record{
		ID: "other-1", Retailer: "Other", Title: "Milk", Price: 25, URL: "https://b",
	}))

	products, err := store.Search(ctx, "PriceCheck", "milk", 50)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "pc-1", products[0].ID)
}

func TestStore_UpsertRefreshesExistingRow(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	rec := Record{ID: "pc-1", Retailer: "PriceCheck", Title: "Milk 2L", Price: 30.99, URL: "https://a"}
	require.NoError(t, store.Upsert(ctx, rec))
	rec.Price = 28.99
	require.NoError(t, store.Upsert(ctx, rec))

	products, err := store.Search(ctx, "PriceCheck", "milk", 50)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, 28.99, products[0].Price)
}

func TestStore_SearchSkipsUnpricedRows(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_, err := store.db.ExecContext(ctx, `
		INSERT INTO products (id, retailer, title, price, url, data, created_at, updated_at)
		VALUES ('pc-1', 'PriceCheck', 'Milk', NULL, 'https://a', '{}', 1, 1),
		       ('pc-2', 'PriceCheck', 'Milk 2L', -1, 'https://b', '{}', 1, 1)`)
	require.NoError(t, err)

	products, err := store.Search(ctx, "PriceCheck", "milk", 50)
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestStore_SearchLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.Upsert(ctx, Record{
			ID: id, Retailer: "PriceCheck", Title: "Milk " + id, Price: 10, URL: "https://" + id,
		}))
	}

	products, err := store.Search(ctx, "PriceCheck", "milk", 2)
	require.NoError(t, err)
	assert.Len(t, products, 2)
}
