// Package crawler bridges the batch sitemap crawler: a Python subprocess
// that walks retailer sitemaps offline and writes its catalogue to SQLite.
// This package launches the subprocess and serves reads from its database.
package crawler

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"time"

	_ "modernc.org/sqlite"

	"github.com/smartshopza/trolley/models"
)

// schema matches the table the Python crawler maintains, so both sides
// can share one database file.
const schema = `
CREATE TABLE IF NOT EXISTS products (
	id TEXT PRIMARY KEY,
	retailer TEXT NOT NULL,
	title TEXT NOT NULL,
	description TEXT,
	price REAL,
	brand TEXT,
	category TEXT,
	url TEXT NOT NULL,
	data TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_retailer ON products(retailer);
CREATE INDEX IF NOT EXISTS idx_title ON products(title);
`

// Store reads and writes the crawled product catalogue.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the catalogue at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("crawler store: open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("crawler store: ensure schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record is one crawled product row.
type Record struct {
	ID       string
	Retailer string
	Title    string
	Price    float64
	URL      string
	Image    string
}

// Upsert inserts or refreshes one crawled product.
func (s *Store) Upsert(ctx context.Context, rec Record) error {
	data, err := json.Marshal(map[string]string{"image": rec.Image})
	if err != nil {
		return err
	}
	now := time.Now().Unix()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO products (id, retailer, title, price, url, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			retailer = excluded.retailer,
			title = excluded.title,
			price = excluded.price,
			url = excluded.url,
			data = excluded.data,
			updated_at = excluded.updated_at`,
		rec.ID, rec.Retailer, rec.Title, rec.Price, rec.URL, string(data), now, now)
	if err != nil {
		return fmt.Errorf("crawler store: upsert %s: %w", rec.ID, err)
	}
	return nil
}

// Search returns catalogue products whose title matches the query,
// freshest first. Rows without a usable price never leave the store, so
// callers see only fully-valid records.
func (s *Store) Search(ctx context.Context, retailer, query string, limit int) ([]models.Product, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, price, url, data
		FROM products
		WHERE retailer = ? AND title LIKE ? AND price IS NOT NULL AND price >= 0
		ORDER BY updated_at DESC
		LIMIT ?`,
		retailer, "%"+query+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("crawler store: search: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var (
			id, title, url, data string
			price                float64
		)
		if err := rows.Scan(&id, &title, &price, &url, &data); err != nil {
			return nil, fmt.Errorf("crawler store: scan: %w", err)
		}
		var extra struct {
			Image string `json:"image"`
		}
		_ = json.Unmarshal([]byte(data), &extra)

		products = append(products, models.Product{
			ID:       id,
			Name:     title,
			Price:    math.Round(price*100) / 100,
			Retailer: retailer,
			Image:    extra.Image,
			URL:      url,
		})
	}
	return products, rows.Err()
}
