package browser

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/cdp"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"

	"ratesync/internal/pipeline"
)

// RodConfig configures the Chrome-backed renderer.
type RodConfig struct {
	// RemoteURL is the WebSocket URL of an external Chrome instance.
	// Empty = launch a local Chrome per session.
	RemoteURL string

	Headless bool

	// NavTimeout bounds navigation and the initial load. Default: 60s.
	NavTimeout time.Duration

	// SettleDelay is waited after load so client-side rendering can finish.
	SettleDelay time.Duration

	Logger *slog.Logger
}

func (c *RodConfig) defaults() {
	if c.NavTimeout <= 0 {
		c.NavTimeout = 60 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// RodRenderer renders pages in Chrome through Rod with stealth applied.
type RodRenderer struct {
	cfg RodConfig
}

// NewRodRenderer creates a RodRenderer.
func NewRodRenderer(cfg RodConfig) *RodRenderer {
	cfg.defaults()
	return &RodRenderer{cfg: cfg}
}

// Open starts (or connects to) Chrome, navigates to pageURL and waits for
// load, network idle and the settle delay. On any failure everything
// acquired so far is released before returning.
func (r *RodRenderer) Open(ctx context.Context, pageURL string) (Session, error) {
	log := r.cfg.Logger
	s := &rodSession{}

	if r.cfg.RemoteURL != "" {
		b, conn, err := connectRemote(ctx, r.cfg.RemoteURL)
		if err != nil {
			return nil, pipeline.NewNavigationError(pageURL, err)
		}
		s.browser, s.conn = b, conn
		log.Debug("browser: connected to remote chrome", "url", r.cfg.RemoteURL)
	} else {
		l := launcher.New().
			Headless(r.cfg.Headless).
			Set("disable-blink-features", "AutomationControlled")

		u, err := l.Launch()
		if err != nil {
			return nil, pipeline.NewNavigationError(pageURL, fmt.Errorf("browser: launch: %w", err))
		}
		s.lnch = l
		log.Debug("browser: launched local chrome", "url", u, "headless", r.cfg.Headless)

		b := rod.New().ControlURL(u)
		if err := b.Connect(); err != nil {
			s.Close()
			return nil, pipeline.NewNavigationError(pageURL, fmt.Errorf("browser: connect: %w", err))
		}
		s.browser = b
	}

	page, err := stealth.Page(s.browser)
	if err != nil {
		s.Close()
		return nil, pipeline.NewNavigationError(pageURL, fmt.Errorf("browser: create tab: %w", err))
	}
	s.page = page

	navCtx, cancel := context.WithTimeout(ctx, r.cfg.NavTimeout)
	defer cancel()

	if err := page.Context(navCtx).Navigate(pageURL); err != nil {
		s.Close()
		return nil, navigationError(navCtx, pageURL, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		s.Close()
		return nil, navigationError(navCtx, pageURL, err)
	}

	// Idle detection is best-effort; long-polling pages never go quiet.
	if err := page.Context(navCtx).WaitIdle(r.cfg.NavTimeout); err != nil {
		log.Warn("browser: wait idle", "url", pageURL, "error", err)
	}

	if r.cfg.SettleDelay > 0 {
		select {
		case <-ctx.Done():
			s.Close()
			return nil, ctx.Err()
		case <-time.After(r.cfg.SettleDelay):
		}
	}

	log.Debug("browser: page settled", "url", pageURL)
	return s, nil
}

func navigationError(navCtx context.Context, pageURL string, err error) error {
	if errors.Is(navCtx.Err(), context.DeadlineExceeded) {
		return pipeline.NewTimeoutError(pageURL, err)
	}
	return pipeline.NewNavigationError(pageURL, err)
}

// connectRemote attaches to a shared Chrome and returns a browser scoped to
// a fresh incognito context. Closing the returned browser disposes only that
// context; the caller owns conn and must close it to drop the connection.
func connectRemote(ctx context.Context, wsURL string) (*rod.Browser, *cdp.WebSocket, error) {
	key := make([]byte, 16)
	if _, err := rand.Read(key); err != nil {
		return nil, nil, fmt.Errorf("browser: handshake key: %w", err)
	}
	header := http.Header{"Sec-WebSocket-Key": {base64.StdEncoding.EncodeToString(key)}}

	conn := &cdp.WebSocket{}
	if err := conn.Connect(ctx, wsURL, header); err != nil {
		return nil, nil, fmt.Errorf("browser: connect: %w", err)
	}

	b := rod.New().Client(cdp.New().Start(conn))
	if err := b.Connect(); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("browser: connect: %w", err)
	}

	inc, err := b.Incognito()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("browser: create context: %w", err)
	}
	return inc, conn, nil
}

// rodSession owns either a launched Chrome (lnch) or an incognito context
// on a remote one (conn). The remote browser itself is never closed.
type rodSession struct {
	lnch    *launcher.Launcher
	conn    *cdp.WebSocket
	browser *rod.Browser
	page    *rod.Page
}

// QueryAll snapshots the live DOM and queries it.
func (s *rodSession) QueryAll(ctx context.Context, selector string) ([]Element, error) {
	html, err := s.page.Context(ctx).HTML()
	if err != nil {
		return nil, fmt.Errorf("browser: get DOM: %w", err)
	}

	doc, err := NewDocumentSession(html)
	if err != nil {
		return nil, err
	}
	return doc.QueryAll(ctx, selector)
}

// Close releases the tab and the browser context, then either shuts down the
// launched Chrome or disconnects from the remote one.
func (s *rodSession) Close() error {
	var errs []error
	if s.page != nil {
		if err := s.page.Close(); err != nil {
			errs = append(errs, fmt.Errorf("browser: close page: %w", err))
		}
		s.page = nil
	}
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("browser: close browser: %w", err))
		}
		s.browser = nil
	}
	if s.conn != nil {
		if err := s.conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			errs = append(errs, fmt.Errorf("browser: disconnect: %w", err))
		}
		s.conn = nil
	}
	if s.lnch != nil {
		s.lnch.Cleanup()
		s.lnch = nil
	}
	return errors.Join(errs...)
}
