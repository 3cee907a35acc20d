package scrapers

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"repcal/internal/showtimes"
	"repcal/lib/browser"
	"repcal/lib/htmlutil"
	"repcal/lib/timezone"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("repcal.internal.scrapers")

// Fox scrapes the Fox Theatre's "now showing" page. The page loads
// showtimes through infinite scroll, so the session scrolls until the
// number of screening spans stops growing.
type Fox struct {
	theater Theater
}

func NewFox(t Theater) *Fox {
	return &Fox{theater: t}
}

func (s *Fox) Theater() Theater {
	return s.theater
}

func (s *Fox) NeedsBrowser() bool {
	return true
}

func (s *Fox) Scrape(ctx context.Context, session *browser.Session) ([]showtimes.Film, error) {
	ctx, span := tracer.Start(ctx, "Fox.Scrape")
	defer span.End()

	err := session.Load(s.theater.URL)
	if err != nil {
		return nil, err
	}
	err = session.ScrollToLoadAll("span[data-date]")
	if err != nil {
		return nil, err
	}

	doc, err := session.Document()
	if err != nil {
		return nil, err
	}

	films := s.parse(doc)
	span.SetAttributes(attribute.Int("films", len(films)))
	slog.InfoContext(ctx, "scraped fox", "films", len(films))
	return films, nil
}

func (s *Fox) parse(doc *goquery.Document) []showtimes.Film {
	collector := showtimes.NewCollector(s.theater.ID)

	doc.Find("div[data-element_type='container']").Each(func(_ int, block *goquery.Selection) {
		title := htmlutil.CleanText(block.Find("h4.elementor-heading-title").First())
		if title == "" {
			return
		}

		link, _ := block.Find("a[href*='/movies/']").First().Attr("href")
		if link == "" {
			link = s.theater.URL
		}

		block.Find("span[data-date]").Each(func(_ int, span *goquery.Selection) {
			clock := htmlutil.CleanText(span)
			rawDate, _ := span.Attr("data-date")
			if clock == "" || rawDate == "" {
				return
			}
			if !looksLikeClock(clock) {
				return
			}

			date := foxDate(rawDate)
			collector.Add(title, date, clock, date+", "+clock, link)
		})
	})

	return collector.Films()
}

// foxDate converts the data-date attribute ("2026-08-07") to the
// calendar's date form. Attributes that fail to parse pass through
// untouched.
func foxDate(raw string) string {
	t, err := time.ParseInLocation("2006-01-02", raw, timezone.Location)
	if err != nil {
		return raw
	}
	return showtimes.FormatDate(t)
}

func looksLikeClock(s string) bool {
	lower := strings.ToLower(s)
	return strings.Contains(s, ":") &&
		(strings.Contains(lower, "am") || strings.Contains(lower, "pm"))
}
