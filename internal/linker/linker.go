package linker

import (
	"repcal/lib/textutil"

	"github.com/antzucaro/matchr"
)

// Titles for the same film differ slightly between theater sites
// ("Seven Samurai" vs "Seven Samurai - Akira Kurosawa", stray
// whitespace, casing). Jaro-Winkler over normalized titles groups them
// without maintaining a hand-curated alias list.

const similarityThreshold = 0.93

// Similar reports whether two film titles plausibly name the same
// film.
func Similar(a, b string) bool {
	na := textutil.NormalizeTitle(a)
	nb := textutil.NormalizeTitle(b)
	if na == nb {
		return true
	}
	return matchr.JaroWinkler(na, nb, false) >= similarityThreshold
}

// Group is a set of indices into the input slice that name the same
// film. Title is the longest member title, which tends to carry the
// most detail.
type Group struct {
	Title   string
	Indices []int
}

// GroupTitles clusters titles greedily: each title joins the first
// group it is similar to, in input order, so the output is stable for
// a given input.
func GroupTitles(titles []string) []Group {
	var groups []Group
	for i, title := range titles {
		joined := false
		for gi := range groups {
			if Similar(groups[gi].Title, title) {
				groups[gi].Indices = append(groups[gi].Indices, i)
				if len(title) > len(groups[gi].Title) {
					groups[gi].Title = title
				}
				joined = true
				break
			}
		}
		if !joined {
			groups = append(groups, Group{Title: title, Indices: []int{i}})
		}
	}
	return groups
}
