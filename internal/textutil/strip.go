package textutil

import (
	"regexp"
	"strings"
)

var (
	// "(feat. X)", "[Remastered 2011]", "(Live at Wembley)" and similar.
	variantGroupPattern = regexp.MustCompile(`(?i)\s*[\(\[][^\)\]]*\b(feat\.?|ft\.?|featuring|remaster(ed)?|live|version|edit|mix|remix|mono|stereo|acoustic|demo|bonus|explicit|clean|instrumental)\b[^\)\]]*[\)\]]`)
	// " - Remastered 2011", " - Live", " - Radio Edit".
	variantSuffixPattern = regexp.MustCompile(`(?i)\s+-\s+.*\b(remaster(ed)?|live|version|edit|mix|remix|mono|stereo|acoustic|demo|bonus|single)\b.*$`)
)

// StripVariant removes version annotations from a title so the base song name
// can be searched. Titles made only of an annotation are returned unchanged.
func StripVariant(title string) string {
	original := strings.TrimSpace(title)
	stripped := variantSuffixPattern.ReplaceAllString(original, "")
	stripped = variantGroupPattern.ReplaceAllString(stripped, "")
	stripped = strings.Join(strings.Fields(stripped), " ")
	if stripped == "" {
		return original
	}
	return stripped
}
