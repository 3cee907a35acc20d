package timezone

import "time"

var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("America/Toronto")
	if err != nil {
		panic(err)
	}
}

// force the timezone to Toronto because the scrapers can run on
// hosts in any region and date math based on
// <time.Time>.Year()/Month()/Day() must agree with the theaters'
// local calendar.
func Now() time.Time {
	return time.Now().In(Location)
}

// Today returns midnight of the current Toronto day.
func Today() time.Time {
	now := Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, Location)
}
