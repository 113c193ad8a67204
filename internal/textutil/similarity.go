package textutil

import (
	"math"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// EditRatio returns 1 - distance/maxLen over the folded forms of a and b.
// Two empty strings are identical; one empty string scores 0.
func EditRatio(a, b string) float64 {
	fa, fb := Fold(a), Fold(b)
	if fa == fb {
		return 1
	}
	la, lb := utf8.RuneCountInString(fa), utf8.RuneCountInString(fb)
	longest := max(la, lb)
	if la == 0 || lb == 0 {
		return 0
	}
	dist := levenshtein.ComputeDistance(fa, fb)
	return 1 - float64(dist)/float64(longest)
}

// Similarity scores how alike two metadata strings are in the range [0, 1],
// taking the better of the edit ratio and the token cosine.
func Similarity(a, b string) float64 {
	edit := EditRatio(a, b)
	if edit == 1 {
		return 1
	}
	cosine := CosineSimilarity(NewFingerprint(a), NewFingerprint(b))
	return math.Max(edit, cosine)
}
