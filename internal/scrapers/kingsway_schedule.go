package scrapers

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"repcal/internal/showtimes"
)

// The Kingsway publishes its schedule as prose embedded in image alt
// text, e.g. "Film Title Fri/Mon to Thurs 1:00 pm / daily 7:00 pm".
// A "/" between day names means OR ("Fri/Mon" is Friday and Monday),
// while a "/" before "daily" or a time starts a new schedule block.

// day indices run Monday=0 through Sunday=6 so ranges like
// "Mon to Thurs" expand with simple arithmetic
var kingswayDays = map[string]int{
	"mon": 0, "monday": 0,
	"tue": 1, "tues": 1, "tuesday": 1,
	"wed": 2, "wednesday": 2,
	"thu": 3, "thur": 3, "thurs": 3, "thursday": 3,
	"fri": 4, "friday": 4,
	"sat": 5, "saturday": 5,
	"sun": 6, "sunday": 6,
}

var (
	kingswayTimeRegex  = regexp.MustCompile(`(?i)(\d{1,2}:\d{2})\s*(am|pm)`)
	kingswayDayRegex   = regexp.MustCompile(`(?i)\b(mon|tues?|wed|thurs?|fri|sat|sun|monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
	kingswayRangeRegex = regexp.MustCompile(`(?i)(\w+)\s+to\s+(\w+)`)
	kingswayDailyRegex = regexp.MustCompile(`(?i)\bdaily\b`)
	kingswayBlockRegex = regexp.MustCompile(`(?i)/\s*(daily\b|\d{1,2}:\d{2})`)
)

type kingswaySchedule struct {
	days  []int
	clock string
}

// parseKingswaySchedule breaks schedule prose into (days, clock)
// entries. Blocks with a time but no recognizable days run daily.
func parseKingswaySchedule(text string) []kingswaySchedule {
	var out []kingswaySchedule

	for _, block := range splitScheduleBlocks(text) {
		var clocks []string
		for _, m := range kingswayTimeRegex.FindAllStringSubmatch(block, -1) {
			clocks = append(clocks, m[1]+" "+strings.ToUpper(m[2]))
		}
		if len(clocks) == 0 {
			continue
		}

		if kingswayDailyRegex.MatchString(block) {
			for _, clock := range clocks {
				out = append(out, kingswaySchedule{days: everyDay(), clock: clock})
			}
			continue
		}

		seen := map[int]bool{}
		for _, m := range kingswayRangeRegex.FindAllStringSubmatch(block, -1) {
			start, okStart := kingswayDays[strings.ToLower(m[1])]
			end, okEnd := kingswayDays[strings.ToLower(m[2])]
			if !okStart || !okEnd {
				continue
			}
			if start <= end {
				for d := start; d <= end; d++ {
					seen[d] = true
				}
			} else {
				// ranges may wrap around the week, "Sat to Tue"
				for d := start; d < 7; d++ {
					seen[d] = true
				}
				for d := 0; d <= end; d++ {
					seen[d] = true
				}
			}
		}
		for _, m := range kingswayDayRegex.FindAllStringSubmatch(block, -1) {
			seen[kingswayDays[strings.ToLower(m[1])]] = true
		}

		days := everyDay()
		if len(seen) > 0 {
			days = days[:0]
			for d := range seen {
				days = append(days, d)
			}
			sort.Ints(days)
		}

		for _, clock := range clocks {
			out = append(out, kingswaySchedule{days: days, clock: clock})
		}
	}

	return out
}

// splitScheduleBlocks splits on "/" only when it introduces a new
// block ("daily ..." or a bare time), keeping "Fri/Mon" day groups
// intact.
func splitScheduleBlocks(text string) []string {
	var blocks []string
	rest := text
	for {
		loc := kingswayBlockRegex.FindStringSubmatchIndex(rest)
		if loc == nil {
			blocks = append(blocks, rest)
			return blocks
		}
		blocks = append(blocks, rest[:loc[0]])
		rest = rest[loc[2]:]
	}
}

// expandScheduleDates turns a weekly schedule into concrete calendar
// dates covering the next two weeks.
func expandScheduleDates(days []int, start time.Time, daysAhead int) []string {
	want := map[int]bool{}
	for _, d := range days {
		want[d] = true
	}

	var dates []string
	for offset := 0; offset < daysAhead; offset++ {
		day := start.AddDate(0, 0, offset)
		if want[mondayIndex(day.Weekday())] {
			dates = append(dates, showtimes.FormatDate(day))
		}
	}
	return dates
}

// extractScheduleTitle takes everything before the first day name,
// "daily" keyword or time as the film's title.
func extractScheduleTitle(text string) string {
	text = strings.TrimSpace(text)

	cut := len(text)
	for _, re := range []*regexp.Regexp{kingswayDayRegex, kingswayDailyRegex, kingswayTimeRegex} {
		if loc := re.FindStringIndex(text); loc != nil && loc[0] < cut {
			cut = loc[0]
		}
	}

	title := strings.TrimRight(strings.TrimSpace(text[:cut]), " -/")
	return strings.Join(strings.Fields(title), " ")
}

func everyDay() []int {
	return []int{0, 1, 2, 3, 4, 5, 6}
}

func mondayIndex(w time.Weekday) int {
	return (int(w) + 6) % 7
}
