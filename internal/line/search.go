// ABOUTME: FindMatches runs a compiled regex against a line's escape-stripped
// ABOUTME: form and translates hits back onto the line's original byte offsets.

package line

import "regexp"

// FindMatches returns every non-overlapping match of re against data's
// escape-stripped form, translated back to data's own byte offsets via
// TranslateMatches (spec.md §4.6 "Rationale"). indexOffset is added to
// each match's Index, letting a caller assign globally increasing match
// indices across many lines.
func FindMatches(data []byte, re *regexp.Regexp, indexOffset int) []MatchRange {
	stripped, _ := stripForSearch(data)
	locs := re.FindAllIndex(stripped, -1)
	if len(locs) == 0 {
		return nil
	}
	strippedMatches := make([]MatchRange, len(locs))
	for i, loc := range locs {
		strippedMatches[i] = MatchRange{Start: loc[0], End: loc[1], Index: indexOffset + i}
	}
	return TranslateMatches(data, strippedMatches)
}
