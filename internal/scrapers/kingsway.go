package scrapers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"repcal/internal/showtimes"
	"repcal/lib/browser"
	"repcal/lib/restyutil"
	"repcal/lib/timezone"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	fakeua "github.com/EDDYCJY/fake-useragent"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// alt text on site furniture that is not a film listing
var kingswaySkipKeywords = []string{
	"kingsway theatre", "twitter", "facebook", "logo", "header",
}

const kingswayScheduleHorizonDays = 14

// Kingsway scrapes the Kingsway Theatre. The site is a static page
// with no showtime markup at all: the weekly schedule lives in image
// alt text, so a plain HTTP fetch is enough and no browser is needed.
type Kingsway struct {
	theater Theater
	http    *resty.Client
}

func NewKingsway(t Theater, output restyutil.InstrumentOutput) *Kingsway {
	client := resty.New()
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	client.SetHeader("user-agent", fakeua.Chrome())
	client.SetTimeout(30 * time.Second)
	restyutil.InstrumentClient(client, otel.Tracer("repcal.internal.scrapers.kingsway"), output)

	return &Kingsway{theater: t, http: client}
}

func (s *Kingsway) Theater() Theater {
	return s.theater
}

func (s *Kingsway) NeedsBrowser() bool {
	return false
}

func (s *Kingsway) Scrape(ctx context.Context, _ *browser.Session) ([]showtimes.Film, error) {
	ctx, span := tracer.Start(ctx, "Kingsway.Scrape")
	defer span.End()

	res, err := s.http.R().SetContext(ctx).Get(s.theater.URL)
	if err != nil {
		return nil, err
	}
	if res.StatusCode() >= 400 {
		err := fmt.Errorf("fetch %s: status %s", s.theater.URL, res.Status())
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(res.String()))
	if err != nil {
		return nil, err
	}

	films := s.parse(doc, timezone.Today())
	span.SetAttributes(attribute.Int("films", len(films)))
	slog.InfoContext(ctx, "scraped kingsway", "films", len(films))
	return films, nil
}

func (s *Kingsway) parse(doc *goquery.Document, today time.Time) []showtimes.Film {
	collector := showtimes.NewCollector(s.theater.ID)

	doc.Find("img").Each(func(_ int, img *goquery.Selection) {
		alt, ok := img.Attr("alt")
		if !ok || alt == "" {
			alt, _ = img.Attr("title")
		}
		if alt == "" || s.skipAlt(alt) {
			return
		}
		if !kingswayTimeRegex.MatchString(alt) {
			return
		}

		title := extractScheduleTitle(alt)
		if len(title) < 2 {
			return
		}

		link := s.theater.URL
		if parent := img.Parent(); goquery.NodeName(parent) == "a" {
			if href, ok := parent.Attr("href"); ok && href != "" {
				link = href
			}
		}

		for _, schedule := range parseKingswaySchedule(alt) {
			for _, date := range expandScheduleDates(schedule.days, today, kingswayScheduleHorizonDays) {
				collector.Add(title, date, schedule.clock, alt, link)
			}
		}
	})

	return collector.Films()
}

func (s *Kingsway) skipAlt(alt string) bool {
	lower := strings.ToLower(alt)
	for _, kw := range kingswaySkipKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
