package commands

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"repcal/internal/runlog"
	"repcal/internal/scrapers"
	"repcal/internal/showtimes"
	"repcal/lib/browser"
	"repcal/lib/sqliteutil"
	"repcal/lib/timezone"

	"github.com/jedib0t/go-pretty/v6/table"
)

type theaterResult struct {
	theater   scrapers.Theater
	films     int
	showtimes int
	added     int
	duration  time.Duration
	err       error
}

// scrapeTheaters runs the selected scrapers and merges their output
// into the per-theater files. Sequential by default; with parallel
// each theater gets its own goroutine, browser session and output
// file, bounded by workers.
func scrapeTheaters(ctx context.Context, cfg Config, selected []scrapers.Scraper, parallel bool, workers int) []theaterResult {
	if !parallel || workers < 1 {
		workers = 1
	}
	if parallel && workers > len(selected) {
		workers = len(selected)
	}

	results := make([]theaterResult, len(selected))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i, s := range selected {
		wg.Add(1)
		go func(i int, s scrapers.Scraper) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = scrapeOne(ctx, cfg, s)
		}(i, s)
	}
	wg.Wait()
	return results
}

func scrapeOne(ctx context.Context, cfg Config, s scrapers.Scraper) theaterResult {
	t := s.Theater()
	start := timezone.Now()
	res := theaterResult{theater: t}

	slog.InfoContext(ctx, "scraping theater", "theater", t.ID, "url", t.URL)

	var films []showtimes.Film
	var err error
	if s.NeedsBrowser() {
		var session *browser.Session
		session, err = browser.NewSession(ctx, cfg.Browser)
		if err == nil {
			films, err = s.Scrape(ctx, session)
			session.Close()
		}
	} else {
		films, err = s.Scrape(ctx, nil)
	}

	if err == nil {
		store := showtimes.NewStore(cfg.DataDir)
		_, res.added, err = store.Upsert(ctx, t.ID, films)
	}

	res.duration = timezone.Now().Sub(start)
	if err != nil {
		// the existing file stays as-is, the calendar keeps serving
		// the previous scrape for this theater
		res.err = fmt.Errorf("%s: %w", t.ID, err)
		slog.ErrorContext(ctx, "theater scrape failed", "theater", t.ID, "err", err)
		return res
	}

	res.films = len(films)
	res.showtimes = showtimes.CountShowtimes(films)
	slog.InfoContext(ctx, "theater scraped",
		"theater", t.ID,
		"films", res.films,
		"showtimes", res.showtimes,
		"new", res.added,
		"duration", res.duration,
	)
	return res
}

// recordResults appends every theater outcome to the scrape journal.
// Journal trouble is logged, never fatal.
func recordResults(ctx context.Context, cfg Config, startedAt time.Time, results []theaterResult) {
	db, err := sqliteutil.OpenDB(runlog.Schema, cfg.JournalDB)
	if err != nil {
		slog.WarnContext(ctx, "could not open scrape journal", "path", cfg.JournalDB, "err", err)
		return
	}
	defer db.Close()

	journal := runlog.NewStore(db)
	for _, r := range results {
		entry := runlog.Entry{
			Theater:   r.theater.ID,
			StartedAt: startedAt,
			Duration:  r.duration,
			Films:     r.films,
			Showtimes: r.showtimes,
		}
		if r.err != nil {
			entry.Err = r.err.Error()
		}
		err := journal.Record(ctx, entry)
		if err != nil {
			slog.WarnContext(ctx, "could not record journal entry", "theater", r.theater.ID, "err", err)
		}
	}
}

func renderSummary(results []theaterResult) {
	t := newTable()
	t.AppendHeader(table.Row{"Theater", "Films", "Showtimes", "New", "Duration", "Status"})
	for _, r := range results {
		status := "ok"
		if r.err != nil {
			status = r.err.Error()
		}
		t.AppendRow(table.Row{
			r.theater.Name,
			r.films,
			r.showtimes,
			r.added,
			r.duration.Round(time.Millisecond),
			status,
		})
	}
	t.Render()
}

func failureMap(results []theaterResult) map[string]error {
	failures := map[string]error{}
	for _, r := range results {
		if r.err != nil {
			failures[r.theater.ID] = r.err
		}
	}
	return failures
}
