package metadata

import (
	"path/filepath"
	"regexp"
	"strings"
)

// "01 - ", "3. ", "07_", "12 " prefixes.
var trackNumberPrefix = regexp.MustCompile(`^\d{1,3}(\s*[.\-_]\s*|\s+)`)

// FromFilename derives title and artist from an audio file name. The artist is
// only returned for stems of the form "Artist - Title".
func FromFilename(path string) (title, artist string) {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	stem = strings.TrimSpace(stem)
	if stripped := strings.TrimSpace(trackNumberPrefix.ReplaceAllString(stem, "")); stripped != "" {
		stem = stripped
	}
	if left, right, ok := strings.Cut(stem, " - "); ok {
		left, right = strings.TrimSpace(left), strings.TrimSpace(right)
		if left != "" && right != "" {
			return right, left
		}
	}
	return stem, ""
}
