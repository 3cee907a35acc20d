package showtimes

import (
	"testing"
	"time"

	"repcal/lib/timezone"

	"github.com/stretchr/testify/require"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, timezone.Location)
}

func TestFormatDate(t *testing.T) {
	require.Equal(t, "Monday, January 26", FormatDate(date(2026, time.January, 26)))
	require.Equal(t, "Wednesday, September 2", FormatDate(date(2026, time.September, 2)))
}

func TestNormalizeDate(t *testing.T) {
	now := date(2026, time.January, 26)

	cases := []struct {
		in   string
		want string
	}{
		{"Today Jan 26", "Monday, January 26"},
		{"Tomorrow Jan 27", "Tuesday, January 27"},
		{"Monday Jan 26", "Monday, January 26"},
		{"Mon, Jan 26", "Monday, January 26"},
		{"Sat February 7", "Saturday, February 7"},
		{"Monday, January 26", "Monday, January 26"},
		{"  Friday, August 7,  ", "Friday, August 7"},
		{"Coming Soon", "Coming Soon"},
	}
	for _, c := range cases {
		require.Equal(t, c.want, NormalizeDate(c.in, now), "input %q", c.in)
	}
}

func TestSplitShowtime(t *testing.T) {
	now := date(2026, time.January, 26)

	cases := []struct {
		in        string
		wantDate  string
		wantClock string
	}{
		{"Monday, January 26, 7:00 PM", "Monday, January 26", "7:00 PM"},
		{"Tomorrow Jan 27, 9:30pm", "Tuesday, January 27", "9:30pm"},
		{"Friday Aug 7 9:30pm", "Friday, August 7", "9:30pm"},
		{"Monday, January 26, 6:00PM (Free)", "Monday, January 26", "6:00PM (Free)"},
		{"Monday, January 26", "Monday, January 26", ""},
	}
	for _, c := range cases {
		gotDate, gotClock := SplitShowtime(c.in, now)
		require.Equal(t, c.wantDate, gotDate, "input %q", c.in)
		require.Equal(t, c.wantClock, gotClock, "input %q", c.in)
	}
}

func TestExtractTime(t *testing.T) {
	require.Equal(t, "7:00 PM", ExtractTime("Monday, January 26, 7:00 PM"))
	require.Equal(t, "6:00pm", ExtractTime("6:00pm open_in_new"))
	require.Equal(t, "6:00PM (Free)", ExtractTime("6:00PM (Free)"))
	require.Equal(t, "", ExtractTime("Gallery exhibition"))
}

func TestDateValue(t *testing.T) {
	now := date(2026, time.August, 29)

	got, ok := DateValue("Saturday, August 29", now)
	require.True(t, ok)
	require.Equal(t, date(2026, time.August, 29), got)

	// months far behind the current one roll into next year
	got, ok = DateValue("Monday, January 26", now)
	require.True(t, ok)
	require.Equal(t, 2027, got.Year())

	// a nearby earlier month stays in the current year
	got, ok = DateValue("Friday, July 3", now)
	require.True(t, ok)
	require.Equal(t, 2026, got.Year())

	_, ok = DateValue("Monday, February 30", now)
	require.False(t, ok)

	_, ok = DateValue("Coming Soon", now)
	require.False(t, ok)
}

func TestTimeMinutes(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"7:00 PM", 19 * 60},
		{"12:00 PM", 12 * 60},
		{"12:30 AM", 30},
		{"9:05am", 9*60 + 5},
		{"6:00PM (Free)", 18 * 60},
		{"", 0},
		{"matinee", 0},
	}
	for _, c := range cases {
		require.Equal(t, c.want, TimeMinutes(c.in), "input %q", c.in)
	}
}
