package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

func NormalizeTitle(title string) string {
	title = strings.ToLower(title)
	title = strings.Trim(title, " \n\t")
	title = whitespaceRegex.ReplaceAllString(title, "")
	return title
}

func MatchTitle(title string, matchers []string) bool {
	title = NormalizeTitle(title)
	for _, m := range matchers {
		if strings.Contains(title, m) {
			return true
		}
	}
	return false
}

var innerWhitespace = regexp.MustCompile(`\s\s+`)

// CollapseSpace trims a scraped string and squashes inner runs of
// whitespace (including newlines) down to single spaces.
func CollapseSpace(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.Trim(s, " \t\n")
	return innerWhitespace.ReplaceAllString(s, " ")
}
