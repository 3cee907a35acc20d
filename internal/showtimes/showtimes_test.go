package showtimes

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyIgnoresCosmetics(t *testing.T) {
	a := Key("revue", "Perfect Blue", "Friday, August 7", "9:30 PM")
	b := Key("revue", "  PERFECT   blue ", "Friday, August 7", "9:30pm")
	require.Equal(t, a, b)

	require.NotEqual(t, a, Key("fox", "Perfect Blue", "Friday, August 7", "9:30 PM"))
	require.NotEqual(t, a, Key("revue", "Perfect Blue", "Friday, August 7", "7:00 PM"))
}

func TestCollectorDedupsAndGroups(t *testing.T) {
	c := NewCollector("fox")
	c.Add("Alien", "Friday, August 7", "9:30 PM", "Friday, August 7, 9:30 PM", "https://example.com/alien")
	c.Add("Alien", "Saturday, August 8", "7:00 PM", "Saturday, August 8, 7:00 PM", "")
	c.Add("ALIEN", "Friday, August 7", "9:30pm", "dup", "")
	c.Add("Aliens", "Friday, August 7", "9:30 PM", "Friday, August 7, 9:30 PM", "")
	c.Add("", "Friday, August 7", "9:30 PM", "ignored", "")

	require.Equal(t, 3, c.Len())

	films := c.Films()
	require.Len(t, films, 2)
	require.Equal(t, "Alien", films[0].Title)
	require.Len(t, films[0].Showtimes, 2)
	require.Equal(t, "https://example.com/alien", films[0].Link)
}
