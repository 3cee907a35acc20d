package scrapers

import (
	"context"

	"repcal/internal/showtimes"
	"repcal/lib/browser"
)

// Theater is the static identity of one cinema source, straight from
// configuration.
type Theater struct {
	ID    string
	Name  string
	URL   string
	Color string
}

// Scraper extracts raw listing data from one theater's website and
// returns it as normalized film records. Implementations own no state
// between runs, the output depends only on what the site serves.
type Scraper interface {
	Theater() Theater

	// NeedsBrowser reports whether the site requires a rendered DOM.
	// Static sites are fetched over plain HTTP instead.
	NeedsBrowser() bool

	Scrape(ctx context.Context, session *browser.Session) ([]showtimes.Film, error)
}
