package scrapers

import (
	"context"
	"log/slog"
	"time"

	"repcal/internal/showtimes"
	"repcal/lib/browser"
	"repcal/lib/htmlutil"
	"repcal/lib/timezone"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
)

// Revue scrapes the Revue Cinema's films page. Listings hide behind a
// "Load More" control that is clicked until it goes away.
type Revue struct {
	theater Theater
}

func NewRevue(t Theater) *Revue {
	return &Revue{theater: t}
}

func (s *Revue) Theater() Theater {
	return s.theater
}

func (s *Revue) NeedsBrowser() bool {
	return true
}

func (s *Revue) Scrape(ctx context.Context, session *browser.Session) ([]showtimes.Film, error) {
	ctx, span := tracer.Start(ctx, "Revue.Scrape")
	defer span.End()

	err := session.Load(s.theater.URL)
	if err != nil {
		return nil, err
	}
	err = session.ClickLoadMore(`//a[text()='Load More']`)
	if err != nil {
		return nil, err
	}

	doc, err := session.Document()
	if err != nil {
		return nil, err
	}

	films := s.parse(doc, timezone.Now())
	span.SetAttributes(attribute.Int("films", len(films)))
	slog.InfoContext(ctx, "scraped revue", "films", len(films))
	return films, nil
}

func (s *Revue) parse(doc *goquery.Document, now time.Time) []showtimes.Film {
	collector := showtimes.NewCollector(s.theater.ID)

	doc.Find(".brxe-sdlpwn").Each(func(_ int, block *goquery.Selection) {
		titleTag := block.Find("h5 a").First()
		title := htmlutil.CleanText(titleTag)
		link, _ := titleTag.Attr("href")
		if title == "" {
			return
		}

		raw := htmlutil.CleanText(block.Find(".brxe-ndxpjc").First())
		if raw == "" {
			return
		}

		date, clock := showtimes.SplitShowtime(raw, now)
		collector.Add(title, date, clock, raw, link)
	})

	return collector.Films()
}
