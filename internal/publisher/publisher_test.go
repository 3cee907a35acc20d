package publisher

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	p := New("/srv/repcal", []string{"data", "index.html", "films.html"})
	require.Equal(t, "origin", p.Remote)
	require.Equal(t, "main", p.Branch)
	require.Equal(t, []string{"data", "index.html", "films.html"}, p.Paths)
}

func TestCommitMessage(t *testing.T) {
	require.Regexp(t,
		regexp.MustCompile(`^Update calendar - \d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`),
		CommitMessage())
}
