package automaton

import (
	"strconv"
	"strings"
)

// parseBound parses the inside of a "{...}" quantifier: "m", "m,", or
// "m,n". max == -1 means unbounded (the "m,n" with no n case).
func parseBound(s string) (min, max int) {
	parts := strings.SplitN(s, ",", 2)
	min = mustAtoi(parts[0])
	switch len(parts) {
	case 1:
		max = min
	default:
		if parts[1] == "" {
			max = -1
		} else {
			max = mustAtoi(parts[1])
		}
	}
	if max != -1 && max < min {
		panic(parseError{"invalid bound: max < min"})
	}
	return min, max
}

func mustAtoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		panic(parseError{"invalid bound: " + s})
	}
	return n
}

// repeatBounded expands base{min,max} into min mandatory copies of
// base concatenated with (max-min) optional copies, or, when max is
// unbounded (-1), min mandatory copies followed by a '+'-repeated
// copy (min==0 degrades to plain '*').
func repeatBounded(base *nfa, min, max int) *nfa {
	if max == -1 {
		if min == 0 {
			cp := base.clone()
			cp.star()
			return cp
		}
		var result *nfa
		for i := 0; i < min-1; i++ {
			cp := base.clone()
			if result == nil {
				result = cp
			} else {
				result.concatenate(cp)
			}
		}
		tail := base.clone()
		tail.plus()
		if result == nil {
			return tail
		}
		result.concatenate(tail)
		return result
	}

	if max == 0 {
		empty := &nfaState{}
		return &nfa{states: []*nfaState{empty}}
	}

	var result *nfa
	for i := 0; i < min; i++ {
		cp := base.clone()
		if result == nil {
			result = cp
		} else {
			result.concatenate(cp)
		}
	}
	for i := min; i < max; i++ {
		cp := base.clone()
		cp.optional()
		if result == nil {
			result = cp
		} else {
			result.concatenate(cp)
		}
	}
	return result
}
