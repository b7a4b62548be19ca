package aggregate

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/smartshopza/trolley/models"
	"github.com/smartshopza/trolley/retailers"
)

type basketTask struct {
	scraper retailers.Scraper
	item    string
	outcome models.ScrapeOutcome
}

// CompareBasket prices a shopping list at every interactive retailer and
// returns one accumulated result per retailer, keyed by retailer name.
//
// Each (item, retailer) pair is an independent task; all tasks run to
// completion regardless of individual failures. A failed scrape marks the
// item missing and records a potential error, an empty result marks it
// missing only, and a successful scrape contributes the first result's
// price. Totals are summed un-rounded and rounded to 2 decimals exactly
// once per retailer at the end.
func (a *Aggregator) CompareBasket(ctx context.Context, items []string) (map[string]*models.BasketResult, error) {
	cleaned := normalizeItems(items)
	if len(cleaned) == 0 {
		return nil, &models.ScrapeError{
			Code:    models.ErrCodeInvalidInput,
			Message: "basket must contain at least one non-empty item",
		}
	}
	if max := a.basket.MaxItems; max > 0 && len(cleaned) > max {
		return nil, &models.ScrapeError{
			Code:    models.ErrCodeInvalidInput,
			Message: fmt.Sprintf("basket exceeds the %d item limit", max),
		}
	}

	if a.cfg.SearchDeadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.SearchDeadline)
		defer cancel()
	}

	selected := a.registry.Interactive()

	tasks := make([]basketTask, 0, len(cleaned)*len(selected))
	for _, s := range selected {
		for _, item := range cleaned {
			tasks = append(tasks, basketTask{scraper: s, item: item})
		}
	}

	var wg sync.WaitGroup
	for i := range tasks {
		wg.Add(1)
		go func(t *basketTask) {
			defer wg.Done()
			t.outcome = a.scrapeOne(ctx, t.scraper, t.item)
		}(&tasks[i])
	}
	wg.Wait()

	results := make(map[string]*models.BasketResult, len(selected))
	for _, s := range selected {
		results[s.Name()] = models.NewBasketResult()
	}
	for i := range tasks {
		foldTask(results[tasks[i].scraper.Name()], &tasks[i])
	}
	for _, r := range results {
		r.TotalPrice = retailers.Round2(r.TotalPrice)
		r.ItemCount = len(r.FoundItems)
	}
	return results, nil
}

// foldTask merges one settled task outcome into its retailer accumulator.
func foldTask(r *models.BasketResult, t *basketTask) {
	if t.outcome.Failed {
		r.MissingItems = append(r.MissingItems, t.item)
		r.PotentialErrors = append(r.PotentialErrors, models.BasketItemError{
			ItemQuery: t.item,
			Message:   t.outcome.Message,
		})
		return
	}
	if len(t.outcome.Results) == 0 {
		r.MissingItems = append(r.MissingItems, t.item)
		return
	}
	first := t.outcome.Results[0]
	r.TotalPrice += first.Price
	r.FoundItems = append(r.FoundItems, models.FoundItem{
		ItemQuery: t.item,
		Price:     first.Price,
		Product:   &first,
	})
}

// normalizeItems trims whitespace, drops empties, and removes duplicates
// (case-insensitive) while preserving first-seen order.
func normalizeItems(items []string) []string {
	seen := make(map[string]bool, len(items))
	cleaned := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		key := strings.ToLower(item)
		if seen[key] {
			continue
		}
		seen[key] = true
		cleaned = append(cleaned, item)
	}
	return cleaned
}
