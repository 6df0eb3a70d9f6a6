package automaton

import "sort"

// runeTransition is one outgoing edge of a runeDFA state, covering the
// closed range [lower, upper].
type runeTransition struct {
	target       int
	lower, upper rune
}

// runeDFAState is a state in the intermediate, rune-range DFA built by
// subset construction over the Thompson NFA. It is determinized but
// not yet total: a rune outside every transition's range has no
// target, which the caller treats as the dead state.
type runeDFAState struct {
	accepting bool
	edges     []runeTransition // sorted, disjoint, ascending by lower
}

type runeDFA struct {
	states []runeDFAState
}

// next returns the target state for input, or (-1, false) if input
// drives the automaton dead.
func (d *runeDFA) next(state int, input rune) (int, bool) {
	edges := d.states[state].edges
	lo, hi := 0, len(edges)
	for lo < hi {
		mid := (lo + hi) / 2
		switch {
		case input < edges[mid].lower:
			hi = mid
		case edges[mid].upper < input:
			lo = mid + 1
		default:
			return edges[mid].target, true
		}
	}
	return -1, false
}

// choice is a single disjoint rune range reachable (via zero or more
// epsilon moves) out of a set of NFA states, together with every NFA
// state it can land on.
type choice struct {
	lower, upper rune
	targets      map[int]bool
}

// mergeChoice folds a single (range, target) edge into the disjoint
// set cs, re-splitting overlapping ranges by a breakpoint sweep so
// the result stays disjoint and each sub-range carries the union of
// every target that can produce it.
func mergeChoice(cs []choice, lower, upper rune, target int) []choice {
	return mergeChoiceWithTargets(cs, choice{lower, upper, map[int]bool{target: true}})
}

func mergeChoiceWithTargets(cs []choice, in choice) []choice {
	breakSet := make(map[rune]bool, 2*len(cs)+2)
	breakSet[in.lower] = true
	breakSet[in.upper+1] = true
	for _, c := range cs {
		breakSet[c.lower] = true
		breakSet[c.upper+1] = true
	}
	points := make([]rune, 0, len(breakSet))
	for p := range breakSet {
		points = append(points, p)
	}
	sort.Slice(points, func(i, j int) bool { return points[i] < points[j] })

	var out []choice
	for i := 0; i+1 < len(points); i++ {
		lo, hi := points[i], points[i+1]-1
		if hi < lo {
			continue
		}
		targets := map[int]bool{}
		for _, c := range cs {
			if c.lower <= lo && hi <= c.upper {
				for t := range c.targets {
					targets[t] = true
				}
			}
		}
		if in.lower <= lo && hi <= in.upper {
			for t := range in.targets {
				targets[t] = true
			}
		}
		if len(targets) > 0 {
			out = append(out, choice{lo, hi, targets})
		}
	}
	return out
}

// determinize runs subset construction (with epsilon-closure
// precomputed once) over n, producing a rune-range DFA. Grounded on
// the closure/merge technique in _examples/FlyGinger-rek's
// nfa_to_dfa.go, restructured around an explicit BFS frontier. The
// byte-level expansion of the result is done by compileBytes (dfa.go).
func determinize(n *nfa) *runeDFA {
	size := len(n.states)
	index := make(map[*nfaState]int, size)
	for i, s := range n.states {
		index[s] = i
	}

	// epsilon-closure[i][j] is true iff state j is epsilon-reachable
	// from state i (reflexive).
	closure := make([][]bool, size)
	for i := range closure {
		closure[i] = make([]bool, size)
		closure[i][i] = true
	}
	for i, s := range n.states {
		for _, t := range s.transfers {
			if t.isEmpty {
				closure[i][index[t.target]] = true
			}
		}
	}
	for k := 0; k < size; k++ {
		for i := 0; i < size; i++ {
			if !closure[i][k] {
				continue
			}
			for j := 0; j < size; j++ {
				closure[i][j] = closure[i][j] || closure[k][j]
			}
		}
	}

	// perStateChoices[i] is every non-epsilon edge reachable from
	// state i via epsilon moves, range-merged.
	perStateChoices := make([][]choice, size)
	for i := 0; i < size; i++ {
		var cs []choice
		for j := 0; j < size; j++ {
			if !closure[i][j] {
				continue
			}
			for _, t := range n.states[j].transfers {
				if t.isEmpty {
					continue
				}
				for k := range t.lower {
					cs = mergeChoice(cs, t.lower[k], t.upper[k], index[t.target])
				}
			}
		}
		perStateChoices[i] = cs
	}

	d := &runeDFA{}
	seen := make(map[string]int)
	var queue [][]bool

	addState := func(set []bool) int {
		key := string(boolsToBytes(set))
		if id, ok := seen[key]; ok {
			return id
		}
		id := len(d.states)
		seen[key] = id
		d.states = append(d.states, runeDFAState{accepting: set[size-1]})
		queue = append(queue, set)
		return id
	}

	startSet := append([]bool(nil), closure[0]...)
	addState(startSet)

	for head := 0; head < len(queue); head++ {
		set := queue[head]

		var cs []choice
		for j, in := range set {
			if !in {
				continue
			}
			for _, c := range perStateChoices[j] {
				cs = mergeChoiceWithTargets(cs, c)
			}
		}

		for _, c := range cs {
			nextSet := make([]bool, size)
			for t := range c.targets {
				for k := range closure[t] {
					nextSet[k] = nextSet[k] || closure[t][k]
				}
			}
			targetID := addState(nextSet)
			d.states[head].edges = append(d.states[head].edges, runeTransition{
				target: targetID, lower: c.lower, upper: c.upper,
			})
		}
	}
	return d
}

func boolsToBytes(set []bool) []byte {
	b := make([]byte, len(set))
	for i, v := range set {
		if v {
			b[i] = 1
		}
	}
	return b
}
