package generator

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"repcal/internal/linker"
	"repcal/internal/scrapers"
	"repcal/internal/showtimes"
	"repcal/lib/textutil"
	"repcal/lib/timezone"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("repcal.internal.generator")

//go:embed calendar.tmpl
var calendarTmpl string

//go:embed films.tmpl
var filmsTmpl string

var (
	calendarTemplate = template.Must(template.New("calendar").Parse(calendarTmpl))
	filmsTemplate    = template.Must(template.New("films").Parse(filmsTmpl))
)

// Entry is one screening with its theater identity attached, the unit
// the pages are built from.
type Entry struct {
	Theater scrapers.Theater
	Title   string
	Link    string
	Date    string
	Time    string
}

// Generator renders the static pages from the per-theater JSON files.
type Generator struct {
	store    showtimes.Store
	theaters []scrapers.Theater
}

func New(store showtimes.Store, theaters []scrapers.Theater) Generator {
	return Generator{store: store, theaters: theaters}
}

// Load flattens every theater's persisted films into entries. A
// missing or unreadable theater file is logged and skipped so one bad
// file never takes the whole calendar down.
func (g Generator) Load(ctx context.Context) []Entry {
	ctx, span := tracer.Start(ctx, "Load")
	defer span.End()

	var entries []Entry
	for _, t := range g.theaters {
		films, err := g.store.Load(ctx, t.ID)
		if err != nil {
			slog.WarnContext(ctx, "skipping unreadable theater file", "theater", t.ID, "err", err)
			continue
		}
		for _, f := range films {
			for _, st := range f.Showtimes {
				entries = append(entries, Entry{
					Theater: t,
					Title:   f.Title,
					Link:    f.Link,
					Date:    st.Date,
					Time:    st.Time,
				})
			}
		}
	}

	span.SetAttributes(attribute.Int("entries", len(entries)))
	return entries
}

// WriteCalendar renders index.html. Output depends only on the stored
// data and today's date, so unchanged data produces unchanged bytes.
func (g Generator) WriteCalendar(ctx context.Context, path string) error {
	ctx, span := tracer.Start(ctx, "WriteCalendar")
	defer span.End()

	page, err := RenderCalendar(g.Load(ctx), g.theaters, timezone.Today(), "")
	if err != nil {
		return err
	}
	return os.WriteFile(path, page, 0666)
}

// WriteFilms renders the cross-theater film index.
func (g Generator) WriteFilms(ctx context.Context, path string) error {
	ctx, span := tracer.Start(ctx, "WriteFilms")
	defer span.End()

	page, err := RenderFilms(g.Load(ctx), g.theaters, timezone.Today())
	if err != nil {
		return err
	}
	return os.WriteFile(path, page, 0666)
}

type theaterView struct {
	scrapers.Theater
	Short string
}

type filmView struct {
	TheaterID   string
	TheaterName string
	Title       string
	Link        string
	Time        string
}

type dayView struct {
	Date  string
	Films []filmView
}

type monthView struct {
	Name string
	Year int
	Days []dayView
}

type calendarView struct {
	TotalScreenings int
	TotalDays       int
	Theaters        []theaterView
	Months          []monthView
	ActiveSources   template.JS
	Updated         string
}

var dayNumberRegex = regexp.MustCompile(`(\d{1,2})\s*$`)

// RenderCalendar builds index.html from screening entries. Screenings
// dated before today are dropped, days sort chronologically inside
// month sections, and films sort by minutes since midnight within a
// day. updated is shown in the footer when non-empty; leaving it empty
// keeps the output a pure function of the entries.
func RenderCalendar(entries []Entry, theaters []scrapers.Theater, today time.Time, updated string) ([]byte, error) {
	kept := 0
	dateOrder := []string{}
	byDate := map[string][]Entry{}
	for _, e := range entries {
		if dv, ok := showtimes.DateValue(e.Date, today); ok && dv.Before(today) {
			continue
		}
		if _, seen := byDate[e.Date]; !seen {
			dateOrder = append(dateOrder, e.Date)
		}
		byDate[e.Date] = append(byDate[e.Date], e)
		kept++
	}

	for _, date := range dateOrder {
		day := byDate[date]
		sort.SliceStable(day, func(a, b int) bool {
			return showtimes.TimeMinutes(day[a].Time) < showtimes.TimeMinutes(day[b].Time)
		})
	}

	months := collectMonths(dateOrder, today)

	view := calendarView{
		TotalScreenings: kept,
		TotalDays:       len(byDate),
		Updated:         updated,
	}
	for _, t := range theaters {
		view.Theaters = append(view.Theaters, theaterView{
			Theater: t,
			Short:   strings.ToUpper(strings.Fields(t.Name)[0]),
		})
	}
	view.ActiveSources = activeSourcesJS(theaters)

	for _, m := range months {
		mv := monthView{Name: m.name, Year: m.year}
		for _, date := range monthDates(dateOrder, m.name) {
			day := dayView{Date: date}
			for _, e := range byDate[date] {
				day.Films = append(day.Films, filmView{
					TheaterID:   e.Theater.ID,
					TheaterName: e.Theater.Name,
					Title:       e.Title,
					Link:        e.Link,
					Time:        e.Time,
				})
			}
			mv.Days = append(mv.Days, day)
		}
		view.Months = append(view.Months, mv)
	}

	var buf bytes.Buffer
	err := calendarTemplate.Execute(&buf, view)
	if err != nil {
		return nil, fmt.Errorf("render calendar: %w", err)
	}
	return buf.Bytes(), nil
}

type monthKey struct {
	name string
	year int
}

// collectMonths extracts the distinct months the dates span, in
// chronological order. Dates that fail to resolve fall back to their
// month name and the current year.
func collectMonths(dates []string, today time.Time) []monthKey {
	seen := map[monthKey]bool{}
	var months []monthKey
	add := func(k monthKey) {
		if !seen[k] {
			seen[k] = true
			months = append(months, k)
		}
	}

	for _, date := range dates {
		if dv, ok := showtimes.DateValue(date, today); ok {
			add(monthKey{name: dv.Month().String(), year: dv.Year()})
			continue
		}
		if name := monthName(date); name != "" {
			add(monthKey{name: name, year: today.Year()})
		}
	}

	sort.SliceStable(months, func(a, b int) bool {
		if months[a].year != months[b].year {
			return months[a].year < months[b].year
		}
		return monthNumber(months[a].name) < monthNumber(months[b].name)
	})
	return months
}

// monthDates picks the dates belonging to a month section, ordered by
// day number.
func monthDates(dates []string, month string) []string {
	var out []string
	for _, date := range dates {
		if strings.Contains(date, month) {
			out = append(out, date)
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		return dayNumber(out[a]) < dayNumber(out[b])
	})
	return out
}

func dayNumber(date string) int {
	m := dayNumberRegex.FindStringSubmatch(date)
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

func monthName(date string) string {
	for _, f := range strings.Fields(strings.ReplaceAll(date, ",", " ")) {
		if monthNumber(f) != 13 {
			return f
		}
	}
	return ""
}

func monthNumber(name string) int {
	for m := time.January; m <= time.December; m++ {
		if m.String() == name {
			return int(m)
		}
	}
	return 13
}

func activeSourcesJS(theaters []scrapers.Theater) template.JS {
	names := make([]string, 0, len(theaters))
	for _, t := range theaters {
		names = append(names, t.Name)
	}
	raw, _ := json.Marshal(names)
	return template.JS(raw)
}

type filmGroupMember struct {
	TheaterID   string
	TheaterName string
	Link        string
	Screenings  int
}

type filmGroupView struct {
	Title      string
	Screenings int
	Members    []filmGroupMember
}

type filmsView struct {
	Theaters []theaterView
	Films    []filmGroupView
}

// RenderFilms builds films.html, an index of upcoming films across
// all theaters with near-identical titles collapsed into one row.
func RenderFilms(entries []Entry, theaters []scrapers.Theater, today time.Time) ([]byte, error) {
	type perTheater struct {
		theater scrapers.Theater
		title   string
		link    string
		count   int
	}

	order := []string{}
	films := map[string]*perTheater{}
	for _, e := range entries {
		if dv, ok := showtimes.DateValue(e.Date, today); ok && dv.Before(today) {
			continue
		}
		key := e.Theater.ID + "|" + textutil.NormalizeTitle(e.Title)
		f, ok := films[key]
		if !ok {
			f = &perTheater{theater: e.Theater, title: e.Title, link: e.Link}
			films[key] = f
			order = append(order, key)
		}
		f.count++
	}

	titles := make([]string, 0, len(order))
	for _, key := range order {
		titles = append(titles, films[key].title)
	}

	view := filmsView{}
	for _, t := range theaters {
		view.Theaters = append(view.Theaters, theaterView{
			Theater: t,
			Short:   strings.ToUpper(strings.Fields(t.Name)[0]),
		})
	}

	for _, group := range linker.GroupTitles(titles) {
		gv := filmGroupView{Title: group.Title}
		for _, i := range group.Indices {
			f := films[order[i]]
			gv.Screenings += f.count
			gv.Members = append(gv.Members, filmGroupMember{
				TheaterID:   f.theater.ID,
				TheaterName: f.theater.Name,
				Link:        f.link,
				Screenings:  f.count,
			})
		}
		view.Films = append(view.Films, gv)
	}
	sort.SliceStable(view.Films, func(a, b int) bool {
		return textutil.NormalizeTitle(view.Films[a].Title) < textutil.NormalizeTitle(view.Films[b].Title)
	})

	var buf bytes.Buffer
	err := filmsTemplate.Execute(&buf, view)
	if err != nil {
		return nil, fmt.Errorf("render films: %w", err)
	}
	return buf.Bytes(), nil
}
