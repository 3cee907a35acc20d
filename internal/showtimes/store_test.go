package showtimes

import (
	"context"
	"os"
	"testing"

	"repcal/lib/telemetry"

	"github.com/stretchr/testify/require"
)

func scrapedFixture() []Film {
	return []Film{
		{
			Title: "Perfect Blue",
			Link:  "https://revuecinema.ca/films/perfect-blue/",
			Showtimes: []Showtime{
				{Date: "Friday, August 7", Time: "9:30 PM", Raw: "Friday, August 7, 9:30 PM"},
				{Date: "Saturday, August 8", Time: "7:00 PM", Raw: "Saturday, August 8, 7:00 PM"},
			},
		},
		{
			Title: "Stop Making Sense",
			Link:  "https://revuecinema.ca/films/stop-making-sense/",
			Showtimes: []Showtime{
				{Date: "Friday, August 7", Time: "11:45 PM", Raw: "Friday, August 7, 11:45 PM"},
			},
		},
	}
}

func keySet(theater string, films []Film) map[string]struct{} {
	set := map[string]struct{}{}
	for _, f := range films {
		for _, st := range f.Showtimes {
			set[Key(theater, f.Title, st.Date, st.Time)] = struct{}{}
		}
	}
	return set
}

func TestMergeIntoEmpty(t *testing.T) {
	scraped := scrapedFixture()
	merged, added := Merge("revue", nil, scraped)
	require.Equal(t, 3, added)
	require.Equal(t, keySet("revue", scraped), keySet("revue", merged))
}

func TestMergeIdempotent(t *testing.T) {
	scraped := scrapedFixture()
	merged, added := Merge("revue", nil, scraped)
	require.Equal(t, 3, added)

	again, added := Merge("revue", merged, scraped)
	require.Zero(t, added)
	require.Equal(t, keySet("revue", merged), keySet("revue", again))
	require.Equal(t, CountShowtimes(merged), CountShowtimes(again))
}

func TestMergeOrderIndependent(t *testing.T) {
	scraped := scrapedFixture()
	reversed := []Film{scraped[1], scraped[0]}

	a, _ := Merge("revue", nil, scraped)
	b, _ := Merge("revue", nil, reversed)
	require.Equal(t, keySet("revue", a), keySet("revue", b))
}

func TestMergeTitleCaseInsensitive(t *testing.T) {
	existing := []Film{{
		Title:     "Perfect Blue",
		Showtimes: []Showtime{{Date: "Friday, August 7", Time: "9:30 PM", Raw: "old"}},
	}}
	scraped := []Film{{
		Title:     "PERFECT  BLUE",
		Link:      "https://example.com/perfect-blue",
		Showtimes: []Showtime{{Date: "Friday, August 7", Time: "9:30 PM", Raw: "new"}},
	}}

	merged, added := Merge("revue", existing, scraped)
	require.Zero(t, added)
	require.Len(t, merged, 1)
	require.Len(t, merged[0].Showtimes, 1)

	// the freshest scrape wins for payload fields
	require.Equal(t, "new", merged[0].Showtimes[0].Raw)
	require.Equal(t, "https://example.com/perfect-blue", merged[0].Link)
}

func TestMergeKeepsStaleDates(t *testing.T) {
	existing := []Film{{
		Title:     "Paris, Texas",
		Showtimes: []Showtime{{Date: "Monday, January 26", Time: "7:00 PM", Raw: "gone from site"}},
	}}

	merged, added := Merge("revue", existing, scrapedFixture())
	require.Equal(t, 3, added)
	require.Equal(t, 4, CountShowtimes(merged))
}

func TestStoreRoundTrip(t *testing.T) {
	defer telemetry.SetupForTesting("showtimes")()
	ctx := context.Background()
	store := NewStore(t.TempDir())

	films, err := store.Load(ctx, "revue")
	require.NoError(t, err)
	require.Empty(t, films)

	merged, added, err := store.Upsert(ctx, "revue", scrapedFixture())
	require.NoError(t, err)
	require.Equal(t, 3, added)
	require.Len(t, merged, 2)

	loaded, err := store.Load(ctx, "revue")
	require.NoError(t, err)
	require.Equal(t, merged, loaded)
}

func TestStoreSaveDeterministic(t *testing.T) {
	defer telemetry.SetupForTesting("showtimes")()
	ctx := context.Background()
	store := NewStore(t.TempDir())

	scraped := scrapedFixture()
	_, _, err := store.Upsert(ctx, "revue", scraped)
	require.NoError(t, err)
	first, err := os.ReadFile(store.Path("revue"))
	require.NoError(t, err)

	// reversed input, same set, must produce identical bytes
	_, _, err = store.Upsert(ctx, "revue", []Film{scraped[1], scraped[0]})
	require.NoError(t, err)
	second, err := os.ReadFile(store.Path("revue"))
	require.NoError(t, err)

	require.Equal(t, string(first), string(second))
}

func TestStoreSaveDoesNotEscapeHTML(t *testing.T) {
	defer telemetry.SetupForTesting("showtimes")()
	ctx := context.Background()
	store := NewStore(t.TempDir())

	films := []Film{{
		Title: "Cats & Dogs",
		Link:  "https://example.com/films?id=3&lang=en",
	}}
	require.NoError(t, store.Save(ctx, "fox", films))

	raw, err := os.ReadFile(store.Path("fox"))
	require.NoError(t, err)
	require.Contains(t, string(raw), "Cats & Dogs")
	require.Contains(t, string(raw), "id=3&lang=en")
}
