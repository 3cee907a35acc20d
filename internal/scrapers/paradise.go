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

// Paradise scrapes the Paradise Theatre's coming-soon page, a plain
// server-rendered listing of showtime blocks.
type Paradise struct {
	theater Theater
}

func NewParadise(t Theater) *Paradise {
	return &Paradise{theater: t}
}

func (s *Paradise) Theater() Theater {
	return s.theater
}

func (s *Paradise) NeedsBrowser() bool {
	return true
}

func (s *Paradise) Scrape(ctx context.Context, session *browser.Session) ([]showtimes.Film, error) {
	ctx, span := tracer.Start(ctx, "Paradise.Scrape")
	defer span.End()

	err := session.Load(s.theater.URL)
	if err != nil {
		return nil, err
	}

	doc, err := session.Document()
	if err != nil {
		return nil, err
	}

	films := s.parse(doc, timezone.Now())
	span.SetAttributes(attribute.Int("films", len(films)))
	slog.InfoContext(ctx, "scraped paradise", "films", len(films))
	return films, nil
}

func (s *Paradise) parse(doc *goquery.Document, now time.Time) []showtimes.Film {
	collector := showtimes.NewCollector(s.theater.ID)

	doc.Find(".showtimes-description").Each(func(_ int, block *goquery.Selection) {
		titleTag := block.Find(".show-title a").First()
		title := htmlutil.CleanText(titleTag)
		link, _ := titleTag.Attr("href")
		if title == "" {
			return
		}

		date := showtimes.NormalizeDate(htmlutil.CleanText(block.Find(".selected-date").First()), now)
		if date == "" {
			return
		}

		block.Find(".showtime").Each(func(_ int, tag *goquery.Selection) {
			raw := htmlutil.CleanText(tag)
			if raw == "" {
				return
			}
			clock := showtimes.ExtractTime(raw)
			if clock == "" {
				clock = raw
			}
			collector.Add(title, date, clock, date+", "+raw, link)
		})
	})

	return collector.Films()
}
