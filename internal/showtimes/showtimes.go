package showtimes

import (
	"strings"

	"repcal/lib/textutil"
)

// Showtime is a single screening slot. Date is normalized
// ("Monday, January 26"), Time is the clock portion ("7:00 PM", may be
// empty for untimed events like exhibitions), Raw is whatever string
// the theater's site published.
type Showtime struct {
	Date string `json:"date"`
	Time string `json:"time"`
	Raw  string `json:"raw"`
}

// Film groups the showtimes of one title at one theater. One JSON
// array of these per theater is the entire persisted state.
type Film struct {
	Title     string     `json:"title"`
	Showtimes []Showtime `json:"showtimes"`
	Link      string     `json:"link"`
}

// Key derives the identity used for deduplication. The raw source
// string is payload, not identity, so cosmetic site changes don't
// create duplicate entries.
func Key(theater, title, date, clock string) string {
	return strings.Join([]string{
		theater,
		textutil.NormalizeTitle(title),
		date,
		strings.ToUpper(strings.ReplaceAll(clock, " ", "")),
	}, "|")
}

// Collector accumulates scraped entries for one theater, deduplicating
// as it goes and grouping showtimes under their film.
type Collector struct {
	theater string
	films   []Film
	byTitle map[string]int
	seen    map[string]struct{}
}

func NewCollector(theater string) *Collector {
	return &Collector{
		theater: theater,
		byTitle: map[string]int{},
		seen:    map[string]struct{}{},
	}
}

func (c *Collector) Add(title, date, clock, raw, link string) {
	title = textutil.CollapseSpace(title)
	if title == "" {
		return
	}

	key := Key(c.theater, title, date, clock)
	if _, dup := c.seen[key]; dup {
		return
	}
	c.seen[key] = struct{}{}

	norm := textutil.NormalizeTitle(title)
	idx, ok := c.byTitle[norm]
	if !ok {
		c.films = append(c.films, Film{Title: title, Link: link})
		idx = len(c.films) - 1
		c.byTitle[norm] = idx
	}
	if link != "" {
		c.films[idx].Link = link
	}
	c.films[idx].Showtimes = append(c.films[idx].Showtimes, Showtime{
		Date: date,
		Time: clock,
		Raw:  raw,
	})
}

func (c *Collector) Films() []Film {
	return c.films
}

// Len reports the number of collected showtimes.
func (c *Collector) Len() int {
	return len(c.seen)
}

// CountShowtimes totals the screening slots across a film list.
func CountShowtimes(films []Film) int {
	n := 0
	for _, f := range films {
		n += len(f.Showtimes)
	}
	return n
}
