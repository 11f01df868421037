package metrics

import "strings"

// WERBreakdown holds the edit counts behind a word error rate.
type WERBreakdown struct {
	Substitutions int `json:"substitutions"`
	Deletions     int `json:"deletions"`
	Insertions    int `json:"insertions"`
	ReferenceLen  int `json:"reference_length"`
}

// WER returns the word error rate between a reference and a hypothesis,
// with the edit breakdown. Tokens are whitespace-separated words; WER is
// (S + D + I) / N where N is the reference length. ok is false when the
// reference has no tokens.
func WER(reference, hypothesis string) (wer float64, breakdown WERBreakdown, ok bool) {
	ref := strings.Fields(reference)
	hyp := strings.Fields(hypothesis)

	breakdown.ReferenceLen = len(ref)
	if len(ref) == 0 {
		return 0, breakdown, false
	}

	// Levenshtein over words, then backtrace for S/D/I counts.
	n, m := len(ref), len(hyp)
	d := make([][]int, n+1)
	for i := range d {
		d[i] = make([]int, m+1)
		d[i][0] = i
	}
	for j := 0; j <= m; j++ {
		d[0][j] = j
	}

	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			cost := 1
			if ref[i-1] == hyp[j-1] {
				cost = 0
			}
			d[i][j] = minInt(
				d[i-1][j]+1,      // deletion
				d[i][j-1]+1,      // insertion
				d[i-1][j-1]+cost, // substitution or match
			)
		}
	}

	i, j := n, m
	for i > 0 || j > 0 {
		switch {
		case i > 0 && j > 0 && ref[i-1] == hyp[j-1] && d[i][j] == d[i-1][j-1]:
			i, j = i-1, j-1
		case i > 0 && j > 0 && d[i][j] == d[i-1][j-1]+1:
			breakdown.Substitutions++
			i, j = i-1, j-1
		case i > 0 && d[i][j] == d[i-1][j]+1:
			breakdown.Deletions++
			i--
		default:
			breakdown.Insertions++
			j--
		}
	}

	edits := breakdown.Substitutions + breakdown.Deletions + breakdown.Insertions
	return float64(edits) / float64(n), breakdown, true
}

func minInt(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
