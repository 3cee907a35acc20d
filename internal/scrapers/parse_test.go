package scrapers

import (
	"strings"
	"testing"
	"time"

	"repcal/internal/showtimes"
	"repcal/lib/timezone"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func docFromHTML(t *testing.T, html string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func testNow() time.Time {
	return time.Date(2026, time.August, 7, 12, 0, 0, 0, timezone.Location)
}

const foxFixture = `
<body>
<div data-element_type="container">
	<h4 class="elementor-heading-title">Alien</h4>
	<a href="https://www.foxtheatre.ca/movies/alien/">details</a>
	<span data-date="2026-08-07">9:30pm</span>
	<span data-date="2026-08-08">7:00pm</span>
	<span data-date="2026-08-07">Sold Out</span>
	<span data-date="">9:30pm</span>
</div>
<div data-element_type="container">
	<h4 class="elementor-heading-title"></h4>
	<span data-date="2026-08-07">5:00pm</span>
</div>
</body>`

func TestFoxParse(t *testing.T) {
	s := NewFox(Theater{ID: "fox", URL: "https://www.foxtheatre.ca/whats-on/now-showing/"})
	films := s.parse(docFromHTML(t, foxFixture))

	require.Len(t, films, 1)
	require.Equal(t, "Alien", films[0].Title)
	require.Equal(t, "https://www.foxtheatre.ca/movies/alien/", films[0].Link)
	require.Equal(t, []showtimes.Showtime{
		{Date: "Friday, August 7", Time: "9:30pm", Raw: "Friday, August 7, 9:30pm"},
		{Date: "Saturday, August 8", Time: "7:00pm", Raw: "Saturday, August 8, 7:00pm"},
	}, films[0].Showtimes)
}

const paradiseFixture = `
<body>
<div class="showtimes-description">
	<div class="show-title"><a href="https://paradiseonbloor.com/films/chinatown/">Chinatown</a></div>
	<div class="selected-date">Friday,
August 7</div>
	<span class="showtime">6:30 PM</span>
	<span class="showtime">9:15 PM</span>
	<span class="showtime"></span>
</div>
</body>`

func TestParadiseParse(t *testing.T) {
	s := NewParadise(Theater{ID: "paradise", URL: "https://paradiseonbloor.com/coming-soon/"})
	films := s.parse(docFromHTML(t, paradiseFixture), testNow())

	require.Len(t, films, 1)
	require.Equal(t, "Chinatown", films[0].Title)
	require.Equal(t, "https://paradiseonbloor.com/films/chinatown/", films[0].Link)
	require.Equal(t, []showtimes.Showtime{
		{Date: "Friday, August 7", Time: "6:30 PM", Raw: "Friday, August 7, 6:30 PM"},
		{Date: "Friday, August 7", Time: "9:15 PM", Raw: "Friday, August 7, 9:15 PM"},
	}, films[0].Showtimes)
}

const revueFixture = `
<body>
<div class="brxe-sdlpwn">
	<h5><a href="https://revuecinema.ca/films/perfect-blue/">Perfect Blue</a></h5>
	<div class="brxe-ndxpjc">Friday, August 7, 9:30 PM</div>
</div>
<div class="brxe-sdlpwn">
	<h5><a href="https://revuecinema.ca/films/stop-making-sense/">Stop Making Sense</a></h5>
	<div class="brxe-ndxpjc"></div>
</div>
</body>`

func TestRevueParse(t *testing.T) {
	s := NewRevue(Theater{ID: "revue", URL: "https://revuecinema.ca/films/"})
	films := s.parse(docFromHTML(t, revueFixture), testNow())

	require.Len(t, films, 1)
	require.Equal(t, "Perfect Blue", films[0].Title)
	require.Equal(t, []showtimes.Showtime{
		{Date: "Friday, August 7", Time: "9:30 PM", Raw: "Friday, August 7, 9:30 PM"},
	}, films[0].Showtimes)
}

const tiffFixture = `
<body>
<div class="calendar-list-item">
	<h2 class="style__date___a1b2c">Today Aug 7</h2>
	<ul>
		<li>
			<div class="style__resultCard___x9y8z">
				<h3 class="style__cardTitle___q1w2e"><a href="/events/seven-samurai/">Seven Samurai</a></h3>
				<div class="style__cardDirectors___r3t4y">Akira Kurosawa</div>
				<a class="style__screeningButtonLink___u5i6o" href="/tickets/123"><span>6:00pm open_in_new</span></a>
				<div class="style__freeDropIn___p7a8s">9:00pm drop-in</div>
			</div>
		</li>
		<li>
			<div class="style__resultCard___x9y8z">
				<h3 class="style__cardTitle___q1w2e">Photography Exhibition</h3>
			</div>
		</li>
	</ul>
</div>
</body>`

func TestTiffParse(t *testing.T) {
	s := NewTiff(Theater{ID: "tiff", URL: "https://tiff.net/calendar"})
	films := s.parse(docFromHTML(t, tiffFixture), testNow())

	require.Len(t, films, 2)

	require.Equal(t, "Seven Samurai - Akira Kurosawa", films[0].Title)
	require.Equal(t, []showtimes.Showtime{
		{Date: "Friday, August 7", Time: "6:00PM", Raw: "Friday, August 7, 6:00PM"},
		{Date: "Friday, August 7", Time: "9:00PM (Free)", Raw: "Friday, August 7, 9:00PM (Free)"},
	}, films[0].Showtimes)
	// the free drop-in is added after the ticketed screening, so the
	// film-level link settles on the event page
	require.Equal(t, "https://tiff.net/events/seven-samurai/", films[0].Link)

	require.Equal(t, "Photography Exhibition", films[1].Title)
	require.Equal(t, []showtimes.Showtime{
		{Date: "Friday, August 7", Time: "", Raw: "Friday, August 7"},
	}, films[1].Showtimes)
	require.Equal(t, "https://tiff.net/calendar", films[1].Link)
}

func TestTiffClock(t *testing.T) {
	require.Equal(t, "6:00PM", tiffClock("6:00pm open_in_new"))
	require.Equal(t, "12:30PM", tiffClock("12:30PM"))
	require.Equal(t, "", tiffClock("open_in_new"))
}

const kingswayFixture = `
<body>
<a href="http://kingswaymovies.ca/movie/the-godfather">
	<img alt="The Godfather daily 7:00 pm" src="godfather.jpg">
</a>
<img alt="Kingsway Theatre header" src="header.jpg">
<img alt="Coming Soon" src="soon.jpg">
</body>`

func TestKingswayParse(t *testing.T) {
	s := NewKingsway(Theater{ID: "kingsway", URL: "http://kingswaymovies.ca/"}, nil)
	// a Monday
	today := time.Date(2026, time.January, 26, 0, 0, 0, 0, timezone.Location)
	films := s.parse(docFromHTML(t, kingswayFixture), today)

	require.Len(t, films, 1)
	require.Equal(t, "The Godfather", films[0].Title)
	require.Equal(t, "http://kingswaymovies.ca/movie/the-godfather", films[0].Link)
	require.Len(t, films[0].Showtimes, kingswayScheduleHorizonDays)
	require.Equal(t, showtimes.Showtime{
		Date: "Monday, January 26",
		Time: "7:00 PM",
		Raw:  "The Godfather daily 7:00 pm",
	}, films[0].Showtimes[0])
}
