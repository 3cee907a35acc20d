package linker

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSimilar(t *testing.T) {
	require.True(t, Similar("Perfect Blue", "PERFECT  BLUE"))
	require.True(t, Similar("Seven Samurai", "Seven Samurai!"))
	require.False(t, Similar("Alien", "Blade Runner"))
}

func TestGroupTitles(t *testing.T) {
	groups := GroupTitles([]string{
		"Perfect Blue",
		"Alien",
		"perfect blue ",
		"Perfect Blue 35mm",
		"Blade Runner",
	})

	require.Len(t, groups, 3)
	require.Equal(t, []int{0, 2, 3}, groups[0].Indices)
	require.Equal(t, "Perfect Blue 35mm", groups[0].Title)
	require.Equal(t, []int{1}, groups[1].Indices)
	require.Equal(t, []int{4}, groups[2].Indices)
}
