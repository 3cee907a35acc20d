package registry

import (
	"fmt"

	"repcal/internal/scrapers"
	"repcal/lib/restyutil"
)

// TheaterConfig is the per-theater section of config.json5. Every
// field is optional, zero values fall back to the built-in defaults.
type TheaterConfig struct {
	Name    string `json:"name"`
	URL     string `json:"url"`
	Color   string `json:"color"`
	Enabled *bool  `json:"enabled"`
}

// The five supported theaters, in calendar display order.
var defaults = []scrapers.Theater{
	{ID: "revue", Name: "Revue Cinema", URL: "https://revuecinema.ca/films/", Color: "#3b82f6"},
	{ID: "paradise", Name: "Paradise Theatre", URL: "https://paradiseonbloor.com/coming-soon/", Color: "#10b981"},
	{ID: "tiff", Name: "TIFF Bell Lightbox", URL: "https://tiff.net/calendar", Color: "#ef4444"},
	{ID: "fox", Name: "Fox Theatre", URL: "https://www.foxtheatre.ca/whats-on/now-showing/", Color: "#f59e0b"},
	{ID: "kingsway", Name: "Kingsway Theatre", URL: "http://kingswaymovies.ca/", Color: "#8b5cf6"},
}

// Registry owns one scraper per enabled theater.
type Registry struct {
	order []string
	byID  map[string]scrapers.Scraper
}

// New builds scrapers for every enabled theater. httpDump receives
// raw HTTP exchanges of browserless scrapers when debug logging is on
// and may be nil.
func New(overrides map[string]TheaterConfig, httpDump restyutil.InstrumentOutput) (*Registry, error) {
	known := map[string]bool{}
	for _, t := range defaults {
		known[t.ID] = true
	}
	for id := range overrides {
		if !known[id] {
			return nil, fmt.Errorf("unknown theater in config: %q", id)
		}
	}

	r := &Registry{byID: map[string]scrapers.Scraper{}}
	for _, t := range defaults {
		o := overrides[t.ID]
		if o.Name != "" {
			t.Name = o.Name
		}
		if o.URL != "" {
			t.URL = o.URL
		}
		if o.Color != "" {
			t.Color = o.Color
		}
		if o.Enabled != nil && !*o.Enabled {
			continue
		}

		var s scrapers.Scraper
		switch t.ID {
		case "revue":
			s = scrapers.NewRevue(t)
		case "paradise":
			s = scrapers.NewParadise(t)
		case "tiff":
			s = scrapers.NewTiff(t)
		case "fox":
			s = scrapers.NewFox(t)
		case "kingsway":
			s = scrapers.NewKingsway(t, httpDump)
		}

		r.order = append(r.order, t.ID)
		r.byID[t.ID] = s
	}
	return r, nil
}

func (r *Registry) Get(id string) (scrapers.Scraper, bool) {
	s, ok := r.byID[id]
	return s, ok
}

// All returns every enabled scraper in display order.
func (r *Registry) All() []scrapers.Scraper {
	out := make([]scrapers.Scraper, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// Select resolves a list of theater ids, or every enabled scraper
// when ids is empty.
func (r *Registry) Select(ids []string) ([]scrapers.Scraper, error) {
	if len(ids) == 0 {
		return r.All(), nil
	}
	var out []scrapers.Scraper
	for _, id := range ids {
		s, ok := r.byID[id]
		if !ok {
			return nil, fmt.Errorf("unknown or disabled theater: %q", id)
		}
		out = append(out, s)
	}
	return out, nil
}

// Theaters returns the identities of every enabled theater in display
// order.
func (r *Registry) Theaters() []scrapers.Theater {
	out := make([]scrapers.Theater, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id].Theater())
	}
	return out
}
