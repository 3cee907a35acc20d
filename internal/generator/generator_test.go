package generator

import (
	"context"
	"strings"
	"testing"
	"time"

	"repcal/internal/scrapers"
	"repcal/internal/showtimes"
	"repcal/lib/telemetry"
	"repcal/lib/timezone"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

var testTheaters = []scrapers.Theater{
	{ID: "revue", Name: "Revue Cinema", URL: "https://revuecinema.ca/films/", Color: "#3b82f6"},
	{ID: "fox", Name: "Fox Theatre", URL: "https://www.foxtheatre.ca/", Color: "#f59e0b"},
}

func entriesFixture() []Entry {
	revue := testTheaters[0]
	fox := testTheaters[1]
	return []Entry{
		{Theater: revue, Title: "Perfect Blue", Link: "https://revuecinema.ca/films/perfect-blue/",
			Date: "Monday, January 26", Time: "10:00 PM"},
		{Theater: revue, Title: "Stop Making Sense", Link: "https://revuecinema.ca/films/sms/",
			Date: "Monday, January 26", Time: "12:00 PM"},
		{Theater: fox, Title: "Alien", Link: "https://www.foxtheatre.ca/movies/alien/",
			Date: "Tuesday, December 29", Time: "7:00 PM"},
		{Theater: fox, Title: "Old News", Link: "https://www.foxtheatre.ca/movies/old/",
			Date: "Sunday, January 25", Time: "7:00 PM"},
	}
}

func testToday() time.Time {
	return time.Date(2026, time.January, 26, 0, 0, 0, 0, timezone.Location)
}

func TestRenderCalendarDeterministic(t *testing.T) {
	first, err := RenderCalendar(entriesFixture(), testTheaters, testToday(), "")
	require.NoError(t, err)
	second, err := RenderCalendar(entriesFixture(), testTheaters, testToday(), "")
	require.NoError(t, err)

	require.Empty(t, cmp.Diff(string(first), string(second)))
}

func TestRenderCalendarDropsPastDates(t *testing.T) {
	page, err := RenderCalendar(entriesFixture(), testTheaters, testToday(), "")
	require.NoError(t, err)

	html := string(page)
	require.NotContains(t, html, "Old News")
	require.NotContains(t, html, "Sunday, January 25")
	require.Contains(t, html, "3 screenings across 2 days")
}

func TestRenderCalendarOrdersTimesWithinDay(t *testing.T) {
	page, err := RenderCalendar(entriesFixture(), testTheaters, testToday(), "")
	require.NoError(t, err)

	html := string(page)
	// noon sorts before 10 PM even though "10:00" < "12:00" as strings
	require.Less(t, strings.Index(html, "Stop Making Sense"), strings.Index(html, "Perfect Blue"))
}

func TestRenderCalendarOrdersMonths(t *testing.T) {
	page, err := RenderCalendar(entriesFixture(), testTheaters, testToday(), "")
	require.NoError(t, err)

	html := string(page)
	// December belongs to the current year, eleven months out
	require.Contains(t, html, "January 2026")
	require.Contains(t, html, "December 2026")
	require.Less(t, strings.Index(html, "<h2>January 2026</h2>"), strings.Index(html, "<h2>December 2026</h2>"))
}

func TestRenderCalendarTheaterChrome(t *testing.T) {
	page, err := RenderCalendar(entriesFixture(), testTheaters, testToday(), "")
	require.NoError(t, err)

	html := string(page)
	require.Contains(t, html, ".toggle.revue { background-color: #3b82f6; }")
	require.Contains(t, html, "data-source='Revue Cinema'>REVUE</button>")
	require.Contains(t, html, `new Set(["Revue Cinema","Fox Theatre"])`)
}

func TestRenderFilmsGroupsAcrossTheaters(t *testing.T) {
	revue := testTheaters[0]
	fox := testTheaters[1]
	entries := []Entry{
		{Theater: revue, Title: "Perfect Blue", Link: "https://revuecinema.ca/films/perfect-blue/",
			Date: "Monday, January 26", Time: "10:00 PM"},
		{Theater: fox, Title: "perfect blue", Link: "https://www.foxtheatre.ca/movies/pb/",
			Date: "Tuesday, January 27", Time: "7:00 PM"},
		{Theater: fox, Title: "perfect blue", Link: "https://www.foxtheatre.ca/movies/pb/",
			Date: "Wednesday, January 28", Time: "7:00 PM"},
		{Theater: fox, Title: "Alien", Link: "https://www.foxtheatre.ca/movies/alien/",
			Date: "Tuesday, January 27", Time: "9:00 PM"},
	}

	page, err := RenderFilms(entries, testTheaters, testToday())
	require.NoError(t, err)

	html := string(page)
	require.Contains(t, html, "3 screenings")
	require.Equal(t, 1, strings.Count(html, "Perfect Blue</a>"))
	// films sort alphabetically
	require.Less(t, strings.Index(html, "Alien"), strings.Index(html, "Perfect Blue"))
}

func TestGeneratorLoadFlattens(t *testing.T) {
	defer telemetry.SetupForTesting("generator")()
	ctx := context.Background()

	store := showtimes.NewStore(t.TempDir())
	require.NoError(t, store.Save(ctx, "revue", []showtimes.Film{{
		Title: "Perfect Blue",
		Link:  "https://revuecinema.ca/films/perfect-blue/",
		Showtimes: []showtimes.Showtime{
			{Date: "Monday, January 26", Time: "10:00 PM", Raw: "Monday, January 26, 10:00 PM"},
			{Date: "Tuesday, January 27", Time: "7:00 PM", Raw: "Tuesday, January 27, 7:00 PM"},
		},
	}}))

	g := New(store, testTheaters)
	entries := g.Load(ctx)
	require.Len(t, entries, 2)
	require.Equal(t, "revue", entries[0].Theater.ID)
	require.Equal(t, "Perfect Blue", entries[0].Title)
}
