package grammar

import (
	"fmt"
	"strings"
)

// digitRange is a closed range over a single decimal digit position,
// analogous to the automaton package's byteRange but over the digit
// alphabet '0'-'9' rather than UTF-8 continuation bytes: every
// position but the first is always free to range over the whole
// alphabet, so the three-way split used for UTF-8 byte sequences
// degenerates to the same recursive shape without the continuation-
// byte bookkeeping.
type digitRange struct{ lo, hi byte }

// digitRangeSequences decomposes the decimal range [lo, hi] (as
// equal-width, zero-padded digit strings) into disjoint per-position
// digit-range sequences, the same way automaton.splitRange does for
// UTF-8 byte sequences.
func digitRangeSequences(lo, hi []byte) [][]digitRange {
	n := len(lo)
	if n == 1 {
		return [][]digitRange{{{lo[0], hi[0]}}}
	}
	if lo[0] == hi[0] {
		rest := digitRangeSequences(lo[1:], hi[1:])
		for i := range rest {
			rest[i] = append([]digitRange{{lo[0], lo[0]}}, rest[i]...)
		}
		return rest
	}

	var out [][]digitRange
	loFirst, hiFirst := lo[0], hi[0]

	if !allEqual(lo[1:], '0') {
		maxSuffix := make([]byte, n-1)
		for i := range maxSuffix {
			maxSuffix[i] = '9'
		}
		rest := digitRangeSequences(lo[1:], maxSuffix)
		for i := range rest {
			rest[i] = append([]digitRange{{lo[0], lo[0]}}, rest[i]...)
		}
		out = append(out, rest...)
		loFirst = lo[0] + 1
	}

	if !allEqual(hi[1:], '9') {
		hiFirst = hi[0] - 1
	}

	if loFirst <= hiFirst {
		mid := make([]digitRange, n)
		mid[0] = digitRange{loFirst, hiFirst}
		for i := 1; i < n; i++ {
			mid[i] = digitRange{'0', '9'}
		}
		out = append(out, mid)
	}

	if !allEqual(hi[1:], '9') {
		minSuffix := make([]byte, n-1)
		for i := range minSuffix {
			minSuffix[i] = '0'
		}
		rest := digitRangeSequences(minSuffix, hi[1:])
		for i := range rest {
			rest[i] = append([]digitRange{{hi[0], hi[0]}}, rest[i]...)
		}
		out = append(out, rest...)
	}

	return out
}

func allEqual(b []byte, v byte) bool {
	for _, x := range b {
		if x != v {
			return false
		}
	}
	return true
}

// sameWidthRegex renders the decimal range [lo, hi] (equal digit
// width) as a regex alternation of fixed-width digit sequences.
func sameWidthRegex(lo, hi int64, width int) string {
	loDigits := []byte(fmt.Sprintf("%0*d", width, lo))
	hiDigits := []byte(fmt.Sprintf("%0*d", width, hi))

	var alts []string
	for _, seq := range digitRangeSequences(loDigits, hiDigits) {
		var b strings.Builder
		for _, r := range seq {
			if r.lo == r.hi {
				b.WriteByte(r.lo)
			} else {
				fmt.Fprintf(&b, "[%c-%c]", r.lo, r.hi)
			}
		}
		alts = append(alts, b.String())
	}
	if len(alts) == 1 {
		return alts[0]
	}
	return "(?:" + strings.Join(alts, "|") + ")"
}

// nonNegativeIntegerRangeRegex renders the non-negative integer range
// [lo, hi] as a regex, splitting first by digit-count so no
// fixed-width segment can produce a leading-zero number it shouldn't.
func nonNegativeIntegerRangeRegex(lo, hi int64) string {
	var alts []string
	cur := lo
	for cur <= hi {
		width := numDigits(cur)
		upperForWidth := pow10(width) - 1
		segHi := hi
		if upperForWidth < segHi {
			segHi = upperForWidth
		}
		alts = append(alts, sameWidthRegex(cur, segHi, width))
		cur = segHi + 1
	}
	if len(alts) == 1 {
		return alts[0]
	}
	return "(?:" + strings.Join(alts, "|") + ")"
}

// integerRangeRegex renders the (possibly negative) integer range
// [lo, hi] as a regex matching exactly the decimal literals in range.
func integerRangeRegex(lo, hi int64) string {
	switch {
	case lo >= 0:
		return nonNegativeIntegerRangeRegex(lo, hi)
	case hi < 0:
		return "-" + nonNegativeIntegerRangeRegex(-hi, -lo)
	default:
		neg := "-" + nonNegativeIntegerRangeRegex(1, -lo)
		pos := nonNegativeIntegerRangeRegex(0, hi)
		return "(?:" + neg + "|" + pos + ")"
	}
}

func numDigits(n int64) int {
	if n == 0 {
		return 1
	}
	d := 0
	for n > 0 {
		d++
		n /= 10
	}
	return d
}

func pow10(n int) int64 {
	p := int64(1)
	for i := 0; i < n; i++ {
		p *= 10
	}
	return p
}
