package showtimes

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"repcal/lib/timezone"
)

var dayNames = map[string]string{
	"Mon": "Monday", "Tue": "Tuesday", "Wed": "Wednesday", "Thu": "Thursday",
	"Fri": "Friday", "Sat": "Saturday", "Sun": "Sunday",
	"Monday": "Monday", "Tuesday": "Tuesday", "Wednesday": "Wednesday",
	"Thursday": "Thursday", "Friday": "Friday", "Saturday": "Saturday", "Sunday": "Sunday",
}

var monthNames = map[string]string{
	"Jan": "January", "Feb": "February", "Mar": "March", "Apr": "April",
	"May": "May", "Jun": "June", "Jul": "July", "Aug": "August",
	"Sep": "September", "Oct": "October", "Nov": "November", "Dec": "December",
	"January": "January", "February": "February", "March": "March", "April": "April",
	"June": "June", "July": "July", "August": "August", "September": "September",
	"October": "October", "November": "November", "December": "December",
}

var monthIndex = map[string]time.Month{
	"January": time.January, "February": time.February, "March": time.March,
	"April": time.April, "May": time.May, "June": time.June, "July": time.July,
	"August": time.August, "September": time.September, "October": time.October,
	"November": time.November, "December": time.December,
}

var (
	dayMonthDayRegex = regexp.MustCompile(`^(\w+),?\s+(\w+)\s+(\d{1,2})`)
	clockRegex       = regexp.MustCompile(`(\d{1,2}):(\d{2})\s*(AM|PM|am|pm)`)
	// keeps a "(Free)" style suffix attached to the time portion
	timePortionRegex = regexp.MustCompile(`\d{1,2}:\d{2}\s*(?:AM|PM|am|pm)(?:\s*\([^)]+\))?`)
)

// FormatDate renders a normalized calendar date, "Monday, January 26".
// Day numbers are never zero padded.
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%s, %s %d", t.Weekday(), t.Month(), t.Day())
}

// NormalizeDate coerces the date formats the five sites emit into the
// canonical "Monday, January 26" form. Relative dates ("Today",
// "Tomorrow") resolve against now. Strings that don't look like a date
// come back trimmed but otherwise untouched.
func NormalizeDate(s string, now time.Time) string {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), ","))

	if strings.HasPrefix(s, "Today") {
		return FormatDate(now)
	}
	if strings.HasPrefix(s, "Tomorrow") {
		return FormatDate(now.AddDate(0, 0, 1))
	}

	m := dayMonthDayRegex.FindStringSubmatch(s)
	if m == nil {
		return s
	}

	day, okDay := dayNames[m[1]]
	month, okMonth := monthNames[m[2]]
	if !okDay || !okMonth {
		return s
	}
	num, err := strconv.Atoi(m[3])
	if err != nil {
		return s
	}
	return fmt.Sprintf("%s, %s %d", day, month, num)
}

// SplitShowtime breaks a full showtime string
// ("Monday, January 26, 7:00 PM") into its normalized date and clock
// parts. Strings without a recognizable time yield an empty clock.
func SplitShowtime(s string, now time.Time) (date string, clock string) {
	clock = ExtractTime(s)

	parts := strings.Split(s, ",")
	if clock != "" && len(parts) >= 2 {
		date = NormalizeDate(strings.Join(parts[:len(parts)-1], ","), now)
		return date, clock
	}
	if clock == "" {
		return NormalizeDate(s, now), ""
	}

	// no comma between date and time, take the leading words
	words := strings.Fields(s)
	if len(words) >= 3 {
		return NormalizeDate(strings.Join(words[:3], " "), now), clock
	}
	return NormalizeDate(s, now), clock
}

// ExtractTime pulls the clock portion out of a showtime string,
// keeping qualifiers like "(Free)" attached.
func ExtractTime(s string) string {
	return strings.TrimSpace(timePortionRegex.FindString(s))
}

// DateValue resolves a normalized date to an actual day. The sites
// never publish a year, so it is inferred from now: a month far behind
// the current one belongs to next year (Dec -> Jan rollover).
func DateValue(date string, now time.Time) (time.Time, bool) {
	m := dayMonthDayRegex.FindStringSubmatch(strings.TrimSpace(date))
	if m == nil {
		return time.Time{}, false
	}
	month, ok := monthIndex[monthNames[m[2]]]
	if !ok {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(m[3])
	if err != nil {
		return time.Time{}, false
	}

	year := now.Year()
	if int(month) < int(now.Month()) && int(now.Month())-int(month) >= 6 {
		year++
	}

	t := time.Date(year, month, day, 0, 0, 0, 0, timezone.Location)
	if t.Day() != day {
		// the 30th of February and friends
		return time.Time{}, false
	}
	return t, true
}

// TimeMinutes converts a clock string to minutes since midnight so
// showtimes sort chronologically (12:00 PM before 10:00 PM).
// Unparseable input sorts to midnight.
func TimeMinutes(clock string) int {
	m := clockRegex.FindStringSubmatch(clock)
	if m == nil {
		return 0
	}
	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	meridiem := strings.ToUpper(m[3])

	if meridiem == "PM" && hours != 12 {
		hours += 12
	} else if meridiem == "AM" && hours == 12 {
		hours = 0
	}
	return hours*60 + minutes
}
