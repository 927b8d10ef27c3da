package search

import (
	"math"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Scorer returns a similarity in [0,100] between two normalized strings.
type Scorer func(a, b string) int

// Ratio is the edit-distance similarity round(100 * (1 - d / max(len))),
// with lengths and distance counted in runes. Two empty strings score 0.
func Ratio(a, b string) int {
	return round(ratio(a, b))
}

func ratio(a, b string) float64 {
	la, lb := len([]rune(a)), len([]rune(b))
	longest := max(la, lb)
	if longest == 0 {
		return 0
	}
	d := levenshtein.ComputeDistance(a, b)
	return 100 * (1 - float64(d)/float64(longest))
}

// PartialRatio scores the shorter string against every window of the same
// length in the longer one and keeps the best.
func PartialRatio(a, b string) int {
	return round(partialRatio(a, b))
}

func partialRatio(a, b string) float64 {
	short, long := []rune(a), []rune(b)
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) == 0 {
		return 0
	}
	s := string(short)
	best := 0.0
	for i := 0; i+len(short) <= len(long); i++ {
		r := ratio(s, string(long[i:i+len(short)]))
		if r > best {
			best = r
			if best >= 99.5 {
				return 100
			}
		}
	}
	return best
}

// TokenSortRatio compares the strings after sorting their words.
func TokenSortRatio(a, b string) int {
	return round(tokenSort(a, b, ratio))
}

// TokenSetRatio compares the shared words against each side's remainder,
// so "оак развернутый" and "оак" score high.
func TokenSetRatio(a, b string) int {
	return round(tokenSet(a, b, ratio))
}

func tokenSort(a, b string, f func(string, string) float64) float64 {
	return f(sortedJoin(tokens(a)), sortedJoin(tokens(b)))
}

func tokenSet(a, b string, f func(string, string) float64) float64 {
	ta, tb := toSet(tokens(a)), toSet(tokens(b))
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	var inter, onlyA, onlyB []string
	for w := range ta {
		if _, ok := tb[w]; ok {
			inter = append(inter, w)
		} else {
			onlyA = append(onlyA, w)
		}
	}
	for w := range tb {
		if _, ok := ta[w]; !ok {
			onlyB = append(onlyB, w)
		}
	}
	sect := sortedJoin(inter)
	combA := strings.TrimSpace(sect + " " + sortedJoin(onlyA))
	combB := strings.TrimSpace(sect + " " + sortedJoin(onlyB))

	best := f(combA, combB)
	if sect != "" {
		best = math.Max(best, math.Max(f(sect, combA), f(sect, combB)))
	}
	return best
}

// WRatio is the weighted blend used for catalog matching. Similar-length
// strings take the best of the plain and token ratios; when one string is
// at least 1.5 times longer, partial ratios are used instead and scaled
// down (0.9, or 0.6 beyond a length ratio of 8).
func WRatio(a, b string) int {
	la, lb := len([]rune(a)), len([]rune(b))
	if la == 0 || lb == 0 {
		return 0
	}
	base := ratio(a, b)
	lenRatio := float64(max(la, lb)) / float64(min(la, lb))

	const unbaseScale = 0.95
	if lenRatio < 1.5 {
		return round(math.Max(base, math.Max(
			tokenSort(a, b, ratio)*unbaseScale,
			tokenSet(a, b, ratio)*unbaseScale,
		)))
	}

	partialScale := 0.9
	if lenRatio > 8 {
		partialScale = 0.6
	}
	return round(math.Max(
		math.Max(base, partialRatio(a, b)*partialScale),
		math.Max(
			tokenSort(a, b, partialRatio)*unbaseScale*partialScale,
			tokenSet(a, b, partialRatio)*unbaseScale*partialScale,
		),
	))
}

func sortedJoin(ws []string) string {
	out := append([]string(nil), ws...)
	sort.Strings(out)
	return strings.Join(out, " ")
}

func toSet(ws []string) map[string]struct{} {
	m := make(map[string]struct{}, len(ws))
	for _, w := range ws {
		m[w] = struct{}{}
	}
	return m
}

func round(f float64) int {
	return int(math.Round(f))
}
