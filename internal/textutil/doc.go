// Package textutil provides the text normalization and similarity helpers used
// to compare track metadata against lyrics provider records.
//
// Fold reduces a string to a comparison form: Unicode compatibility
// decomposition, diacritics removed, case folded, punctuation collapsed to
// single spaces. Similarity combines a Levenshtein edit ratio with a
// token-frequency cosine so reordered words ("Artist & Other" vs "Other &
// Artist") still score well. StripVariant drops version suffixes such as
// " - Remastered 2011" or " (Live)" from titles.
package textutil
