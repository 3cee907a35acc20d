package registry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	r, err := New(nil, nil)
	require.NoError(t, err)

	theaters := r.Theaters()
	require.Len(t, theaters, 5)
	require.Equal(t, "revue", theaters[0].ID)
	require.Equal(t, "kingsway", theaters[4].ID)
	require.Equal(t, "TIFF Bell Lightbox", theaters[2].Name)
}

func TestNewOverridesAndDisables(t *testing.T) {
	disabled := false
	r, err := New(map[string]TheaterConfig{
		"fox":  {URL: "https://staging.foxtheatre.ca/"},
		"tiff": {Enabled: &disabled},
	}, nil)
	require.NoError(t, err)

	require.Len(t, r.All(), 4)
	_, ok := r.Get("tiff")
	require.False(t, ok)

	fox, ok := r.Get("fox")
	require.True(t, ok)
	require.Equal(t, "https://staging.foxtheatre.ca/", fox.Theater().URL)
	require.Equal(t, "Fox Theatre", fox.Theater().Name)
}

func TestNewRejectsUnknownTheater(t *testing.T) {
	_, err := New(map[string]TheaterConfig{"royal": {}}, nil)
	require.Error(t, err)
}

func TestSelect(t *testing.T) {
	r, err := New(nil, nil)
	require.NoError(t, err)

	picked, err := r.Select([]string{"fox", "revue"})
	require.NoError(t, err)
	require.Len(t, picked, 2)
	require.Equal(t, "fox", picked[0].Theater().ID)

	_, err = r.Select([]string{"royal"})
	require.Error(t, err)

	all, err := r.Select(nil)
	require.NoError(t, err)
	require.Len(t, all, 5)
}
