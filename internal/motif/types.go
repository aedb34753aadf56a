package motif

import (
	"sort"
	"time"
)

// Corpus is the ordered collection of input strings. Index 0 is the first
// string. It is never modified during a run and may be shared by workers.
type Corpus []string

// MaxLen returns the length of the longest string in the corpus.
func (c Corpus) MaxLen() int {
	longest := 0
	for _, s := range c {
		if len(s) > longest {
			longest = len(s)
		}
	}
	return longest
}

// AllIndices returns 0..len(c)-1.
func (c Corpus) AllIndices() []int {
	indices := make([]int, len(c))
	for i := range indices {
		indices[i] = i
	}
	return indices
}

// Occurrences maps a corpus index to the ascending start positions of a
// pattern in that string. Only indices with at least one hit are present.
type Occurrences map[int][]int

// Total sums the hit counts across all indices.
func (o Occurrences) Total() int {
	total := 0
	for _, positions := range o {
		total += len(positions)
	}
	return total
}

// Indices returns the corpus indices with recorded hits, ascending.
func (o Occurrences) Indices() []int {
	indices := make([]int, 0, len(o))
	for idx := range o {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	return indices
}

// CandidateSet maps each candidate pattern to the corpus indices it should
// be searched in during one round.
type CandidateSet map[string][]int

// Patterns returns the candidate patterns in lexicographic order.
func (cs CandidateSet) Patterns() []string {
	patterns := make([]string, 0, len(cs))
	for p := range cs {
		patterns = append(patterns, p)
	}
	sort.Strings(patterns)
	return patterns
}

// OccurrenceMap holds the occurrences of every pattern that survived a scan.
type OccurrenceMap map[string]Occurrences

// Patterns returns the surviving patterns in lexicographic order.
func (m OccurrenceMap) Patterns() []string {
	patterns := make([]string, 0, len(m))
	for p := range m {
		patterns = append(patterns, p)
	}
	sort.Strings(patterns)
	return patterns
}

// Total sums the occurrence counts of every pattern in the map.
func (m OccurrenceMap) Total() int {
	total := 0
	for _, occ := range m {
		total += occ.Total()
	}
	return total
}

// RoundStats summarises one scan-then-generate round.
type RoundStats struct {
	Length      int           `json:"length"`
	Candidates  int           `json:"candidates"`
	Survivors   int           `json:"survivors"`
	Occurrences int           `json:"occurrences"`
	Duration    time.Duration `json:"duration"`
}

// Result is the accumulated outcome of a discovery run. A Result is never
// mutated after it is returned; each round produces a new value.
type Result struct {
	Threshold  float64                `json:"threshold"`
	CorpusSize int                    `json:"corpus_size"`
	Patterns   map[string]Occurrences `json:"patterns"`
	Order      []string               `json:"order"`
	Rounds     []RoundStats           `json:"rounds"`
}

func newResult(threshold float64, corpusSize int) *Result {
	return &Result{
		Threshold:  threshold,
		CorpusSize: corpusSize,
		Patterns:   make(map[string]Occurrences),
		Order:      []string{},
		Rounds:     []RoundStats{},
	}
}

// Len returns the number of discovered patterns.
func (r *Result) Len() int {
	return len(r.Patterns)
}

// Lookup returns the occurrences recorded for pattern.
func (r *Result) Lookup(pattern string) (Occurrences, bool) {
	occ, ok := r.Patterns[pattern]
	return occ, ok
}

// withRound returns a copy of r extended by one round. Survivors are
// appended to Order in lexicographic order. Patterns of a new round are
// strictly longer than all earlier ones, so no entry is ever overwritten.
func (r *Result) withRound(stats RoundStats, survivors OccurrenceMap) *Result {
	next := &Result{
		Threshold:  r.Threshold,
		CorpusSize: r.CorpusSize,
		Patterns:   make(map[string]Occurrences, len(r.Patterns)+len(survivors)),
		Order:      make([]string, len(r.Order), len(r.Order)+len(survivors)),
		Rounds:     append(append([]RoundStats(nil), r.Rounds...), stats),
	}
	for p, occ := range r.Patterns {
		next.Patterns[p] = occ
	}
	copy(next.Order, r.Order)
	for _, p := range survivors.Patterns() {
		next.Patterns[p] = survivors[p]
		next.Order = append(next.Order, p)
	}
	return next
}
