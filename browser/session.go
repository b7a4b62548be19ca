package browser

import (
	"context"
	"log/slog"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/smartshopza/trolley/config"
	"github.com/smartshopza/trolley/models"
)

// State is the lifecycle state of the shared browser session.
type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// launchFunc launches a browser process and returns a connected client.
// Swappable so tests can count launches without a real Chromium.
type launchFunc func() (*rod.Browser, error)

// initAttempt is one in-flight browser launch. Every caller that arrives
// while the launch is running waits on the same attempt, so N concurrent
// callers never spawn N browsers.
type initAttempt struct {
	done chan struct{}
	err  error
}

// Session owns the single browser process shared by all headless scrapes.
// It is created by the composition root and passed by handle to every
// scrape runner; it is safe for concurrent use.
//
// The browser is launched lazily on the first Page call. An engine-reported
// disconnect silently resets the session to uninitialized so the next Page
// call relaunches instead of failing permanently.
type Session struct {
	cfg    config.BrowserConfig
	launch launchFunc

	mu      sync.Mutex
	state   State
	browser *rod.Browser
	attempt *initAttempt
	gen     uint64 // bumped per successful launch; guards stale disconnect resets
}

// Option customizes a Session.
type Option func(*Session)

// WithLaunchFunc overrides how the browser process is launched.
func WithLaunchFunc(fn func() (*rod.Browser, error)) Option {
	return func(s *Session) { s.launch = fn }
}

// NewSession creates an uninitialized session. No browser is launched
// until the first Page call.
func NewSession(cfg config.BrowserConfig, opts ...Option) *Session {
	s := &Session{cfg: cfg}
	s.launch = s.launchBrowser
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State reports the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Page returns a fresh page from the shared browser, launching the browser
// on first use. Concurrent callers during a launch all await the same
// attempt; if the launch fails they all receive the launch error and the
// session returns to uninitialized so a later call may retry.
func (s *Session) Page(ctx context.Context) (*rod.Page, error) {
	for {
		s.mu.Lock()
		switch s.state {
		case StateClosed:
			s.mu.Unlock()
			return nil, models.NewScrapeError(
				models.ErrCodeBrowserCrash,
				"browser session is shut down",
				nil,
			)

		case StateReady:
			b := s.browser
			s.mu.Unlock()
			page, err := b.Page(proto.TargetCreateTarget{})
			if err != nil {
				return nil, models.NewScrapeError(
					models.ErrCodeBrowserCrash,
					"failed to open page on shared browser",
					err,
				)
			}
			return page, nil

		case StateInitializing:
			attempt := s.attempt
			s.mu.Unlock()
			select {
			case <-attempt.done:
				if attempt.err != nil {
					return nil, attempt.err
				}
				// Launch succeeded; loop and take the Ready path.
			case <-ctx.Done():
				return nil, ctx.Err()
			}

		case StateUninitialized:
			attempt := &initAttempt{done: make(chan struct{})}
			s.state = StateInitializing
			s.attempt = attempt
			s.mu.Unlock()

			b, err := s.launch()

			s.mu.Lock()
			if err != nil {
				s.state = StateUninitialized
				s.attempt = nil
				attempt.err = models.NewScrapeError(
					models.ErrCodeBrowserCrash,
					"failed to launch browser",
					err,
				)
				close(attempt.done)
				s.mu.Unlock()
				return nil, attempt.err
			}
			s.browser = b
			s.state = StateReady
			s.attempt = nil
			s.gen++
			gen := s.gen
			close(attempt.done)
			s.mu.Unlock()

			slog.Info("browser session ready", "generation", gen)
			go s.watchDisconnect(b, gen)
		}
	}
}

// watchDisconnect blocks until the browser's event stream closes, which
// happens when the CDP connection dies (crash, external kill, Shutdown).
// A disconnect is a recovery path, not a failure path: the session resets
// to uninitialized and the next Page call relaunches transparently.
func (s *Session) watchDisconnect(b *rod.Browser, gen uint64) {
	for range b.Event() {
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateReady && s.gen == gen {
		slog.Warn("browser disconnected, resetting session", "generation", gen)
		s.browser = nil
		s.state = StateUninitialized
	}
}

// Shutdown closes the underlying browser process if one is running. It is
// idempotent and safe to call on a session that never initialized. A launch
// still in flight is awaited first so its browser does not leak.
func (s *Session) Shutdown() {
	s.mu.Lock()
	for s.state == StateInitializing {
		attempt := s.attempt
		s.mu.Unlock()
		<-attempt.done
		s.mu.Lock()
	}

	b := s.browser
	s.browser = nil
	alreadyClosed := s.state == StateClosed
	s.state = StateClosed
	s.mu.Unlock()

	if alreadyClosed || b == nil {
		return
	}
	slog.Info("browser session shutting down")
	if err := b.Close(); err != nil {
		slog.Warn("browser close failed", "error", err)
	}
}

// launchBrowser is the default launch path: a headless Chromium via the
// rod launcher, with the usual automation-masking flags.
func (s *Session) launchBrowser() (*rod.Browser, error) {
	l := launcher.New().
		Headless(s.cfg.Headless).
		NoSandbox(s.cfg.NoSandbox)

	if s.cfg.Bin != "" {
		l = l.Bin(s.cfg.Bin)
	}
	if s.cfg.Proxy != "" {
		l = l.Proxy(s.cfg.Proxy)
	}

	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-features"), "AudioServiceOutOfProcess,TranslateUI")
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, err
	}
	slog.Info("browser launched", "controlURL", controlURL)

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		return nil, err
	}
	return b, nil
}
