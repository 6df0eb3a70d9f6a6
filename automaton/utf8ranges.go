package automaton

import "unicode/utf8"

// byteRange is a closed range of byte values, one position within a
// UTF-8 encoded sequence.
type byteRange struct{ lo, hi byte }

const (
	contMin byte = 0x80
	contMax byte = 0xBF
)

// utf8 encoding length boundaries, used to split an arbitrary rune
// range into sub-ranges that each encode to the same number of UTF-8
// bytes. The 3-byte class additionally excludes the UTF-16 surrogate
// gap, which is never a valid Unicode scalar value.
var lengthClasses = [...][2]rune{
	{0x0000, 0x007F},
	{0x0080, 0x07FF},
	{0x0800, 0xD7FF},
	{0xE000, 0xFFFF},
	{0x10000, 0x10FFFF},
}

// utf8Sequences decomposes the closed rune range [lo, hi] into a set
// of byte-range sequences: concatenating one byte from each range of
// any single returned sequence, for every combination, enumerates
// exactly the UTF-8 encodings of the runes in [lo, hi] (and nothing
// else). This is the standard encoding-boundary/byte-recursion
// technique for compiling Unicode character classes into byte-range
// automata (ported here rather than taken from a library, since
// spec.md §4.3/§9 requires the DFA itself to be byte-oriented and
// none of the teacher's dependencies expose this).
func utf8Sequences(lo, hi rune) [][]byteRange {
	var out [][]byteRange
	for _, class := range lengthClasses {
		clo, chi := class[0], class[1]
		if hi < clo || chi < lo {
			continue
		}
		segLo, segHi := lo, hi
		if segLo < clo {
			segLo = clo
		}
		if segHi > chi {
			segHi = chi
		}
		out = append(out, splitRange(encodeUTF8(segLo), encodeUTF8(segHi))...)
	}
	return out
}

func encodeUTF8(r rune) []byte {
	buf := make([]byte, utf8.UTFMax)
	n := utf8.EncodeRune(buf, r)
	return buf[:n]
}

func allEqual(b []byte, v byte) bool {
	for _, x := range b {
		if x != v {
			return false
		}
	}
	return true
}

// splitRange recursively splits the byte encodings of [lo, hi]
// (same length) into disjoint per-position range sequences.
func splitRange(lo, hi []byte) [][]byteRange {
	n := len(lo)
	if n == 1 {
		return [][]byteRange{{{lo[0], hi[0]}}}
	}
	if lo[0] == hi[0] {
		rest := splitRange(lo[1:], hi[1:])
		for i := range rest {
			rest[i] = append([]byteRange{{lo[0], lo[0]}}, rest[i]...)
		}
		return rest
	}

	var out [][]byteRange
	loFirst, hiFirst := lo[0], hi[0]

	if !allEqual(lo[1:], contMin) {
		maxSuffix := make([]byte, n-1)
		for i := range maxSuffix {
			maxSuffix[i] = contMax
		}
		rest := splitRange(lo[1:], maxSuffix)
		for i := range rest {
			rest[i] = append([]byteRange{{lo[0], lo[0]}}, rest[i]...)
		}
		out = append(out, rest...)
		loFirst = lo[0] + 1
	}

	if !allEqual(hi[1:], contMax) {
		hiFirst = hi[0] - 1
	}

	if loFirst <= hiFirst {
		mid := make([]byteRange, n)
		mid[0] = byteRange{loFirst, hiFirst}
		for i := 1; i < n; i++ {
			mid[i] = byteRange{contMin, contMax}
		}
		out = append(out, mid)
	}

	if !allEqual(hi[1:], contMax) {
		minSuffix := make([]byte, n-1)
		for i := range minSuffix {
			minSuffix[i] = contMin
		}
		rest := splitRange(minSuffix, hi[1:])
		for i := range rest {
			rest[i] = append([]byteRange{{hi[0], hi[0]}}, rest[i]...)
		}
		out = append(out, rest...)
	}

	return out
}
