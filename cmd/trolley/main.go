package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/smartshopza/trolley/aggregate"
	"github.com/smartshopza/trolley/api"
	"github.com/smartshopza/trolley/browser"
	"github.com/smartshopza/trolley/cache"
	"github.com/smartshopza/trolley/config"
	"github.com/smartshopza/trolley/crawler"
	"github.com/smartshopza/trolley/retailers"
	"github.com/smartshopza/trolley/scraper"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("trolley starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
	)

	// ── 3. Shared browser session (launched lazily on first scrape) ─
	session := browser.NewSession(cfg.Browser)
	defer session.Shutdown()

	// ── 4. Scrape runners ───────────────────────────────────────────
	headless := scraper.NewHeadless(session, cfg.Scraper)
	httpRunner := scraper.NewHTTPRunner(cfg.Browser.Proxy)

	// ── 5. Crawler catalogue + bridge ───────────────────────────────
	store, err := crawler.Open(cfg.Crawler.DBPath)
	if err != nil {
		slog.Error("failed to open crawler catalogue", "error", err, "path", cfg.Crawler.DBPath)
		os.Exit(1)
	}
	defer store.Close()
	bridge := crawler.NewBridge(cfg.Crawler)

	// ── 6. Retailer registry ────────────────────────────────────────
	reg := retailers.NewRegistry()
	reg.Register("checkers", retailers.NewCheckers(httpRunner))
	reg.Register("shoprite", retailers.NewShoprite(httpRunner))
	reg.Register("woolworths", retailers.NewWoolworths(headless, cfg.Scraper))
	reg.Register("picknpay", retailers.NewPicknPay(headless, cfg.Scraper))
	reg.Register("makro", retailers.NewMakro(headless, cfg.Scraper))
	reg.RegisterOffline("pricecheck", retailers.NewPriceCheck(store))
	slog.Info("retailers registered", "keys", reg.Keys())

	// ── 7. Aggregator and cache ─────────────────────────────────────
	agg := aggregate.New(reg, cfg.Scraper, cfg.Basket, slog.Default())
	cc := cache.New(cfg.Cache.MaxEntries, cfg.Cache.TTL)

	// ── 8. Setup router ─────────────────────────────────────────────
	startTime := time.Now()
	router := api.NewRouter(agg, reg, session, bridge, cfg, cc, startTime)

	// ── 9. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 10. Graceful shutdown ───────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// Give in-flight requests 5 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	// session.Shutdown() and store.Close() run via defer.
	slog.Info("trolley stopped")
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
