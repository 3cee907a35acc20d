package showtimes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"repcal/lib/textutil"
	"repcal/lib/timezone"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("repcal.internal.showtimes")

// Store persists one JSON array of films per theater under a data
// directory. Files are written deterministically so an unchanged
// scrape produces an unchanged file.
type Store struct {
	dir string
}

func NewStore(dir string) Store {
	return Store{dir: dir}
}

func (s Store) Path(theater string) string {
	return filepath.Join(s.dir, theater+"_films.json")
}

func (s Store) Load(ctx context.Context, theater string) ([]Film, error) {
	_, span := tracer.Start(ctx, "Load", trace.WithAttributes(attribute.String("theater", theater)))
	defer span.End()

	raw, err := os.ReadFile(s.Path(theater))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read theater file")
		return nil, err
	}

	var films []Film
	err = json.Unmarshal(raw, &films)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to decode theater file")
		return nil, fmt.Errorf("decode %s: %w", s.Path(theater), err)
	}
	return films, nil
}

func (s Store) Save(ctx context.Context, theater string, films []Film) error {
	_, span := tracer.Start(ctx, "Save", trace.WithAttributes(attribute.String("theater", theater)))
	defer span.End()

	err := os.MkdirAll(s.dir, 0777)
	if err != nil {
		return err
	}

	sortFilms(films, timezone.Now())

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	err = enc.Encode(films)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to encode theater file")
		return err
	}

	err = os.WriteFile(s.Path(theater), buf.Bytes(), 0666)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to write theater file")
		return err
	}
	return nil
}

// Upsert merges freshly scraped films into the persisted file for a
// theater. Returns the merged list and how many showtimes were new.
func (s Store) Upsert(ctx context.Context, theater string, scraped []Film) ([]Film, int, error) {
	ctx, span := tracer.Start(ctx, "Upsert", trace.WithAttributes(attribute.String("theater", theater)))
	defer span.End()

	existing, err := s.Load(ctx, theater)
	if err != nil {
		return nil, 0, err
	}

	merged, added := Merge(theater, existing, scraped)

	err = s.Save(ctx, theater, merged)
	if err != nil {
		return nil, 0, err
	}

	span.SetAttributes(attribute.Int("added", added))
	return merged, added, nil
}

// Merge upserts scraped records into the existing list by the
// composite key. Existing entries keep their place, the newest link
// and raw string win, and nothing is ever dropped here (stale dates
// are the generator's problem). Merging the same input twice is a
// no-op, and input order never changes the resulting set.
func Merge(theater string, existing, scraped []Film) ([]Film, int) {
	type slot struct {
		film, showtime int
	}

	merged := make([]Film, len(existing))
	copy(merged, existing)

	byTitle := map[string]int{}
	byKey := map[string]slot{}
	for i, f := range merged {
		byTitle[textutil.NormalizeTitle(f.Title)] = i
		for j, st := range f.Showtimes {
			byKey[Key(theater, f.Title, st.Date, st.Time)] = slot{film: i, showtime: j}
		}
	}

	added := 0
	for _, f := range scraped {
		norm := textutil.NormalizeTitle(f.Title)
		idx, known := byTitle[norm]
		if !known {
			merged = append(merged, Film{Title: f.Title, Link: f.Link})
			idx = len(merged) - 1
			byTitle[norm] = idx
		}
		if f.Link != "" {
			merged[idx].Link = f.Link
		}

		for _, st := range f.Showtimes {
			key := Key(theater, f.Title, st.Date, st.Time)
			if at, dup := byKey[key]; dup {
				merged[at.film].Showtimes[at.showtime].Raw = st.Raw
				continue
			}
			merged[idx].Showtimes = append(merged[idx].Showtimes, st)
			byKey[key] = slot{film: idx, showtime: len(merged[idx].Showtimes) - 1}
			added++
		}
	}

	return merged, added
}

func sortFilms(films []Film, now time.Time) {
	for i := range films {
		sts := films[i].Showtimes
		sort.SliceStable(sts, func(a, b int) bool {
			da, okA := DateValue(sts[a].Date, now)
			db, okB := DateValue(sts[b].Date, now)
			if okA != okB {
				return okA
			}
			if okA && !da.Equal(db) {
				return da.Before(db)
			}
			if sts[a].Date != sts[b].Date {
				return sts[a].Date < sts[b].Date
			}
			return TimeMinutes(sts[a].Time) < TimeMinutes(sts[b].Time)
		})
	}
	sort.SliceStable(films, func(a, b int) bool {
		return textutil.NormalizeTitle(films[a].Title) < textutil.NormalizeTitle(films[b].Title)
	})
}

