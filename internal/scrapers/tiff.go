package scrapers

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"repcal/internal/showtimes"
	"repcal/lib/browser"
	"repcal/lib/htmlutil"
	"repcal/lib/timezone"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
)

// Tiff scrapes the TIFF Bell Lightbox calendar. The page is a React
// app whose CSS module class names carry build hashes, so every
// selector matches on a stable substring instead of a full class.
//
// Dates arrive as "Today Jan 26" / "Tomorrow Jan 27" / "Monday Jan 28"
// headers, screenings as ticketed buttons plus free drop-in slots, and
// untimed events (exhibitions) as cards with no screening controls.
type Tiff struct {
	theater Theater
}

func NewTiff(t Theater) *Tiff {
	return &Tiff{theater: t}
}

func (s *Tiff) Theater() Theater {
	return s.theater
}

func (s *Tiff) NeedsBrowser() bool {
	return true
}

func (s *Tiff) Scrape(ctx context.Context, session *browser.Session) ([]showtimes.Film, error) {
	ctx, span := tracer.Start(ctx, "Tiff.Scrape")
	defer span.End()

	err := session.Load(s.theater.URL)
	if err != nil {
		return nil, err
	}

	// the calendar renders client side well after the body exists
	err = session.WaitVisible(".calendar-list-item", 45*time.Second)
	if err != nil {
		return nil, err
	}
	err = session.WaitVisible(`[class*="resultCard"]`, 45*time.Second)
	if err != nil {
		return nil, err
	}
	session.Sleep(3 * time.Second)

	doc, err := session.Document()
	if err != nil {
		return nil, err
	}

	films := s.parse(doc, timezone.Now())
	span.SetAttributes(attribute.Int("films", len(films)))
	slog.InfoContext(ctx, "scraped tiff", "films", len(films))
	return films, nil
}

func (s *Tiff) parse(doc *goquery.Document, now time.Time) []showtimes.Film {
	collector := showtimes.NewCollector(s.theater.ID)

	doc.Find(".calendar-list-item").Each(func(_ int, group *goquery.Selection) {
		date := showtimes.NormalizeDate(htmlutil.CleanText(group.Find(`h2[class*="date"]`).First()), now)
		if date == "" {
			return
		}

		group.Find("ul").First().Find("li").Each(func(_ int, item *goquery.Selection) {
			card := item.Find(`[class*="resultCard"]`).First()
			if card.Length() == 0 {
				return
			}

			title := htmlutil.CleanText(card.Find(`[class*="cardTitle"]`).First())
			if title == "" {
				return
			}
			director := htmlutil.CleanText(card.Find(`[class*="cardDirectors"]`).First())
			if director != "" {
				title = title + " - " + director
			}

			link := s.cardLink(card)

			found := 0
			card.Find(`a[class*="screeningButtonLink"]`).Each(func(_ int, btn *goquery.Selection) {
				text := htmlutil.CleanText(btn.Find("span").First())
				if text == "" {
					text = htmlutil.CleanText(btn)
				}
				clock := tiffClock(text)
				if clock == "" {
					return
				}

				ticketLink := link
				if href, ok := btn.Attr("href"); ok && href != "" {
					ticketLink = htmlutil.ResolveHref(s.theater.URL, href)
				}
				collector.Add(title, date, clock, date+", "+clock, ticketLink)
				found++
			})

			card.Find(`[class*="freeDropIn"]`).Each(func(_ int, slot *goquery.Selection) {
				clock := tiffClock(htmlutil.CleanText(slot))
				if clock == "" {
					return
				}
				clock += " (Free)"
				collector.Add(title, date, clock, date+", "+clock, link)
				found++
			})

			// untimed events still land on the calendar
			if found == 0 {
				collector.Add(title, date, "", date, link)
			}
		})
	})

	return collector.Films()
}

func (s *Tiff) cardLink(card *goquery.Selection) string {
	href, ok := card.Find(`[class*="cardTitle"] a`).First().Attr("href")
	if !ok || href == "" {
		return s.theater.URL
	}
	return htmlutil.ResolveHref(s.theater.URL, href)
}

var tiffClockRegex = regexp.MustCompile(`(?i)(\d{1,2}:\d{2})\s*(am|pm)`)

// tiffClock extracts a clock from screening button text, tolerating
// trailing icon labels like "6:00pm open_in_new".
func tiffClock(text string) string {
	m := tiffClockRegex.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1] + strings.ToUpper(m[2])
}
