package motif

import "sort"

// Generate builds the next round's candidates from a round's survivors.
//
// For every ordered pair (P, Q) of survivors of equal length k where the
// last k-1 symbols of P equal the first k-1 symbols of Q, the candidate
// P+Q[k-1] is produced, scoped to the union of the indices where P and Q
// were found. (P, P) is a valid pair. Scopes of pairs yielding the same
// candidate are unioned. The union only excludes strings containing neither
// constituent; the next Scan does the exact check.
//
// A survivor with no recorded occurrences (possible only when the threshold
// is <= 0) is not used as a constituent: it occurs nowhere, so no extension
// of it can occur either.
func Generate(survivors OccurrenceMap) CandidateSet {
	byPrefix := make(map[string][]string, len(survivors))
	patterns := survivors.Patterns()
	for _, q := range patterns {
		if len(survivors[q]) == 0 || q == "" {
			continue
		}
		prefix := q[:len(q)-1]
		byPrefix[prefix] = append(byPrefix[prefix], q)
	}

	scopes := make(map[string]map[int]struct{})
	for _, p := range patterns {
		if len(survivors[p]) == 0 || p == "" {
			continue
		}
		for _, q := range byPrefix[p[1:]] {
			merged := p + q[len(q)-1:]
			scope, ok := scopes[merged]
			if !ok {
				scope = make(map[int]struct{})
				scopes[merged] = scope
			}
			for idx := range survivors[p] {
				scope[idx] = struct{}{}
			}
			for idx := range survivors[q] {
				scope[idx] = struct{}{}
			}
		}
	}

	candidates := make(CandidateSet, len(scopes))
	for pattern, scope := range scopes {
		indices := make([]int, 0, len(scope))
		for idx := range scope {
			indices = append(indices, idx)
		}
		sort.Ints(indices)
		candidates[pattern] = indices
	}
	return candidates
}
