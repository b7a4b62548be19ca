package crawler

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"os/exec"
	"strconv"

	"golang.org/x/time/rate"

	"github.com/smartshopza/trolley/config"
	"github.com/smartshopza/trolley/models"
	"github.com/smartshopza/trolley/webhook"
)

// Bridge launches the sitemap crawler subprocess. Contract: the script
// takes --retailer, --max-urls and --db flags, writes progress to stdout,
// and exits non-zero on failure; results land in the shared SQLite
// catalogue, not on stdout.
type Bridge struct {
	cfg     config.CrawlerConfig
	limiter *rate.Limiter
}

// NewBridge creates a bridge with launch pacing so repeated crawl requests
// cannot stampede the retailer sites.
func NewBridge(cfg config.CrawlerConfig) *Bridge {
	return &Bridge{
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.LaunchesPerHour/3600), 1),
	}
}

// StartCrawl reserves a launch slot and runs the crawl in the background.
// It returns immediately: a rate-limit error when no slot is available,
// nil once the crawl is underway. Completion is reported through logs and
// the webhook, not to the caller.
func (b *Bridge) StartCrawl(retailer string, maxURLs int) error {
	if !b.limiter.Allow() {
		return models.NewScrapeError(
			models.ErrCodeRateLimited,
			"crawl launches are rate limited, try again later",
			nil,
		)
	}

	go func() {
		if err := b.run(context.Background(), retailer, maxURLs); err != nil {
			slog.Error("background crawl failed", "retailer", retailer, "error", err)
		}
	}()
	return nil
}

// RunCrawl runs one crawl to completion. It blocks for the lifetime of the
// subprocess.
func (b *Bridge) RunCrawl(ctx context.Context, retailer string, maxURLs int) error {
	if !b.limiter.Allow() {
		return models.NewScrapeError(
			models.ErrCodeRateLimited,
			"crawl launches are rate limited, try again later",
			nil,
		)
	}
	return b.run(ctx, retailer, maxURLs)
}

func (b *Bridge) run(ctx context.Context, retailer string, maxURLs int) error {
	log := slog.With("retailer", retailer)
	cmd := exec.CommandContext(ctx, b.cfg.Python, b.cfg.Script,
		"--retailer", retailer,
		"--max-urls", strconv.Itoa(maxURLs),
		"--db", b.cfg.DBPath,
	)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return models.NewScrapeError(models.ErrCodeCrawlerFailed, "failed to wire crawler stdout", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return models.NewScrapeError(models.ErrCodeCrawlerFailed, "failed to wire crawler stderr", err)
	}

	if err := cmd.Start(); err != nil {
		return models.NewScrapeError(models.ErrCodeCrawlerFailed, "failed to launch crawler process", err)
	}
	log.Info("crawler launched", "pid", cmd.Process.Pid, "maxURLs", maxURLs)

	go relayLines(stdout, func(line string) { log.Info("crawler", "line", line) })
	go relayLines(stderr, func(line string) { log.Warn("crawler", "line", line) })

	if err := cmd.Wait(); err != nil {
		b.notify(retailer, "crawl.failed", err.Error())
		return models.NewScrapeError(models.ErrCodeCrawlerFailed, "crawler exited with failure", err)
	}

	log.Info("crawler finished")
	b.notify(retailer, "crawl.completed", "")
	return nil
}

// notify reports crawl completion to the configured webhook, if any.
func (b *Bridge) notify(retailer, event, detail string) {
	if b.cfg.WebhookURL == "" {
		return
	}
	webhook.DeliverAsync(b.cfg.WebhookURL, b.cfg.WebhookSecret, &webhook.Event{
		Type:  event,
		JobID: retailer,
		Data:  map[string]string{"retailer": retailer, "detail": detail},
	})
}

func relayLines(r io.Reader, emit func(string)) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		emit(scanner.Text())
	}
}
