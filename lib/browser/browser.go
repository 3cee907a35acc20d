package browser

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
	"github.com/mazen160/go-random"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("repcal.lib.browser")

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

type Options struct {
	// path to the chrome binary, empty means whatever chromedp finds
	ExecPath  string `json:"exec_path"`
	Headless  *bool  `json:"headless"`
	UserAgent string `json:"user_agent"`

	PageLoadTimeoutSeconds int     `json:"page_load_timeout_seconds"`
	LoadRetries            int     `json:"load_retries"`
	RetryDelaySeconds      int     `json:"retry_delay_seconds"`
	RenderWaitSeconds      int     `json:"render_wait_seconds"`
	ScrollWaitSeconds      float64 `json:"scroll_wait_seconds"`
	MaxScrollAttempts      int     `json:"max_scroll_attempts"`
	MaxLoadMoreClicks      int     `json:"max_load_more_clicks"`
}

func (o Options) withDefaults() Options {
	if o.Headless == nil {
		headless := true
		o.Headless = &headless
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUserAgent
	}
	if o.PageLoadTimeoutSeconds <= 0 {
		o.PageLoadTimeoutSeconds = 30
	}
	if o.LoadRetries <= 0 {
		o.LoadRetries = 3
	}
	if o.RetryDelaySeconds <= 0 {
		o.RetryDelaySeconds = 5
	}
	if o.RenderWaitSeconds <= 0 {
		o.RenderWaitSeconds = 2
	}
	if o.ScrollWaitSeconds <= 0 {
		o.ScrollWaitSeconds = 1.5
	}
	if o.MaxScrollAttempts <= 0 {
		o.MaxScrollAttempts = 25
	}
	if o.MaxLoadMoreClicks <= 0 {
		o.MaxLoadMoreClicks = 10
	}
	return o
}

// Session owns one headless chrome tab. Each scraper gets its own
// session for the duration of its run, nothing is shared between
// theaters.
type Session struct {
	ctx     context.Context
	cancels []context.CancelFunc
	opts    Options
}

func NewSession(ctx context.Context, opts Options) (*Session, error) {
	opts = opts.withDefaults()

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", *opts.Headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.UserAgent(opts.UserAgent),
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}

	allocatorCtx, cancelAllocator := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocatorCtx)

	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAllocator()
		return nil, fmt.Errorf("start chrome: %w", err)
	}

	return &Session{
		ctx:     browserCtx,
		cancels: []context.CancelFunc{cancelBrowser, cancelAllocator},
		opts:    opts,
	}, nil
}

func (s *Session) Close() {
	for _, cancel := range s.cancels {
		cancel()
	}
}

func (s *Session) Options() Options {
	return s.opts
}

// Load navigates to a url, waits for the body to exist and gives the
// page a moment to render. Failed loads are retried with a fixed
// delay, matching the page-load retry policy the sites tolerate.
func (s *Session) Load(url string) error {
	ctx, span := tracer.Start(s.ctx, "Load", trace.WithAttributes(
		attribute.String("url", url),
	))
	defer span.End()

	jitterSleep()

	var lastErr error
	for attempt := 1; attempt <= s.opts.LoadRetries; attempt++ {
		slog.DebugContext(ctx, "loading page", "url", url, "attempt", attempt)

		loadCtx, cancel := context.WithTimeout(ctx, time.Duration(s.opts.PageLoadTimeoutSeconds)*time.Second)
		err := chromedp.Run(loadCtx,
			chromedp.Navigate(url),
			chromedp.WaitVisible("body", chromedp.ByQuery),
			chromedp.Sleep(time.Duration(s.opts.RenderWaitSeconds)*time.Second),
		)
		cancel()
		if err == nil {
			return nil
		}

		lastErr = err
		slog.WarnContext(ctx, "page load failed", "url", url, "attempt", attempt, "err", err)
		if attempt < s.opts.LoadRetries {
			time.Sleep(time.Duration(s.opts.RetryDelaySeconds) * time.Second)
		}
	}

	span.RecordError(lastErr)
	span.SetStatus(codes.Error, "page load failed")
	return fmt.Errorf("load %s: %w", url, lastErr)
}

// WaitVisible blocks until the selector renders, for pages that build
// their DOM client side after the body exists.
func (s *Session) WaitVisible(selector string, timeout time.Duration) error {
	ctx, span := tracer.Start(s.ctx, "WaitVisible", trace.WithAttributes(
		attribute.String("selector", selector),
	))
	defer span.End()

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := chromedp.Run(waitCtx, chromedp.WaitVisible(selector, chromedp.ByQuery))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "selector never became visible")
		return fmt.Errorf("wait for %q: %w", selector, err)
	}
	return nil
}

func (s *Session) Sleep(d time.Duration) {
	_ = chromedp.Run(s.ctx, chromedp.Sleep(d))
}

// ScrollToLoadAll scrolls to the bottom of the page until the number
// of elements matching itemSelector stops increasing for three
// consecutive rounds.
func (s *Session) ScrollToLoadAll(itemSelector string) error {
	ctx, span := tracer.Start(s.ctx, "ScrollToLoadAll", trace.WithAttributes(
		attribute.String("selector", itemSelector),
	))
	defer span.End()

	wait := time.Duration(s.opts.ScrollWaitSeconds * float64(time.Second))
	countExpr := fmt.Sprintf("document.querySelectorAll(%q).length", itemSelector)

	lastCount := -1
	stable := 0
	for i := 0; i < s.opts.MaxScrollAttempts; i++ {
		var count int
		err := chromedp.Run(ctx, chromedp.Evaluate(countExpr, &count))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to count items")
			return err
		}
		slog.DebugContext(ctx, "scrolling", "selector", itemSelector, "items", count)

		if count == lastCount {
			stable++
		} else {
			stable = 0
			lastCount = count
		}
		if stable >= 3 {
			break
		}

		err = chromedp.Run(ctx,
			chromedp.Evaluate("window.scrollTo(0, document.body.scrollHeight)", nil),
			chromedp.Sleep(wait),
		)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to scroll")
			return err
		}
	}

	span.SetAttributes(attribute.Int("items", max(lastCount, 0)))
	return nil
}

// ClickLoadMore clicks an element located by xpath until it disappears
// or the click cap is hit.
func (s *Session) ClickLoadMore(xpath string) error {
	ctx, span := tracer.Start(s.ctx, "ClickLoadMore", trace.WithAttributes(
		attribute.String("xpath", xpath),
	))
	defer span.End()

	wait := time.Duration(s.opts.ScrollWaitSeconds * float64(time.Second))

	for i := 0; i < s.opts.MaxLoadMoreClicks; i++ {
		clickCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err := chromedp.Run(clickCtx,
			chromedp.ScrollIntoView(xpath, chromedp.BySearch),
			chromedp.Click(xpath, chromedp.BySearch),
			chromedp.Sleep(wait),
		)
		cancel()
		if err != nil {
			// the control is gone, everything is loaded
			break
		}
		slog.DebugContext(ctx, "clicked load more", "xpath", xpath, "count", i+1)
	}
	return nil
}

// HTML snapshots the rendered body for goquery parsing.
func (s *Session) HTML() (string, error) {
	ctx, span := tracer.Start(s.ctx, "HTML")
	defer span.End()

	var html string
	err := chromedp.Run(ctx, chromedp.OuterHTML("body", &html, chromedp.ByQuery))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to snapshot body")
		return "", err
	}
	return html, nil
}

// Document snapshots the rendered page as a goquery document.
func (s *Session) Document() (*goquery.Document, error) {
	html, err := s.HTML()
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

// a small random pause between navigations so back to back scrapes
// don't hit a site in lockstep
func jitterSleep() {
	ms, err := random.IntRange(250, 1250)
	if err != nil {
		ms = 500
	}
	time.Sleep(time.Duration(ms) * time.Millisecond)
}
