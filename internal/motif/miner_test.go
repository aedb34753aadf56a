package motif

import (
	"context"
	"errors"
	"math/rand"
	"reflect"
	"sort"
	"testing"

	apperrors "github.com/Adithya-Monish-Kumar-K/repfinder/pkg/errors"
)

func mine(t *testing.T, corpus Corpus, support string, opts Options) *Result {
	t.Helper()
	result, err := Discover(context.Background(), corpus, support, opts)
	if err != nil {
		t.Fatalf("Discover(%q): %v", support, err)
	}
	return result
}

func TestDiscoverScenario(t *testing.T) {
	corpus := Corpus{"AAACAA", "CCAATG", "CACTGA"}
	result := mine(t, corpus, "2", Options{Workers: 2})

	want := map[string]Occurrences{
		"AA":  {0: {0, 1, 4}, 1: {2}},
		"AC":  {0: {2}, 2: {1}},
		"CA":  {0: {3}, 1: {1}, 2: {0}},
		"TG":  {1: {4}, 2: {3}},
		"CAA": {0: {3}, 1: {1}},
	}
	if !reflect.DeepEqual(result.Patterns, want) {
		t.Errorf("Patterns = %v, want %v", result.Patterns, want)
	}
	if !reflect.DeepEqual(result.Order, []string{"AA", "AC", "CA", "TG", "CAA"}) {
		t.Errorf("Order = %v", result.Order)
	}
	if result.Threshold != 2 || result.CorpusSize != 3 {
		t.Errorf("threshold/corpus = %v/%d", result.Threshold, result.CorpusSize)
	}
	if len(result.Rounds) != 2 {
		t.Fatalf("rounds = %d, want 2", len(result.Rounds))
	}
	first := result.Rounds[0]
	if first.Length != 2 || first.Candidates != 16 || first.Survivors != 4 || first.Occurrences != 11 {
		t.Errorf("first round = %+v", first)
	}
	second := result.Rounds[1]
	if second.Length != 3 || second.Candidates != 5 || second.Survivors != 1 {
		t.Errorf("second round = %+v", second)
	}
}

func TestDiscoverScenarioDisjoint(t *testing.T) {
	corpus := Corpus{"AAACAA", "CCAATG", "CACTGA"}
	result := mine(t, corpus, "2", Options{Mode: MatchDisjoint})

	aa, ok := result.Lookup("AA")
	if !ok {
		t.Fatal("AA not discovered")
	}
	if want := (Occurrences{0: {0, 4}, 1: {2}}); !reflect.DeepEqual(aa, want) {
		t.Errorf("AA = %v, want %v", aa, want)
	}
	ac, _ := result.Lookup("AC")
	if ac.Total() < 2 {
		t.Errorf("AC total = %d, want >= 2", ac.Total())
	}
}

func TestDiscoverNoRepeats(t *testing.T) {
	result := mine(t, Corpus{"ACGT"}, "2", Options{})
	if result.Len() != 0 {
		t.Errorf("expected no patterns, got %v", result.Patterns)
	}
	if len(result.Rounds) != 1 {
		t.Errorf("rounds = %d, want 1", len(result.Rounds))
	}
}

func TestDiscoverUnreachablePercentage(t *testing.T) {
	result := mine(t, Corpus{"AC", "GT", "CA"}, "100%", Options{})
	if result.Len() != 0 {
		t.Errorf("expected no patterns at 100%%, got %v", result.Patterns)
	}
}

func TestDiscoverOverlappingOccurrences(t *testing.T) {
	result := mine(t, Corpus{"AAAA"}, "3", Options{})
	aa, ok := result.Lookup("AA")
	if !ok {
		t.Fatal("AA not discovered")
	}
	if !reflect.DeepEqual(aa[0], []int{0, 1, 2}) {
		t.Errorf("AA positions = %v, want [0 1 2]", aa[0])
	}
	if _, ok := result.Lookup("AAA"); ok {
		t.Error("AAA occurs twice and must not reach support 3")
	}
}

func TestDiscoverTandemRepeat(t *testing.T) {
	result := mine(t, Corpus{"AAAAAA"}, "1", Options{})
	for _, p := range []string{"AA", "AAA", "AAAA", "AAAAA", "AAAAAA"} {
		if _, ok := result.Lookup(p); !ok {
			t.Errorf("%s not discovered", p)
		}
	}
	if result.Len() != 5 {
		t.Errorf("patterns = %v", result.Order)
	}
}

func TestDiscoverEmptyCorpus(t *testing.T) {
	result := mine(t, Corpus{}, "2", Options{})
	if result.Len() != 0 {
		t.Errorf("empty corpus produced %v", result.Patterns)
	}
}

func TestDiscoverZeroThreshold(t *testing.T) {
	result := mine(t, Corpus{"ACG"}, "0", Options{})

	// All 16 seeds survive at threshold 0, but only the ones actually found
	// are extended.
	if result.Len() != 17 {
		t.Fatalf("patterns = %d (%v), want 17", result.Len(), result.Order)
	}
	acg, ok := result.Lookup("ACG")
	if !ok || !reflect.DeepEqual(acg, Occurrences{0: {0}}) {
		t.Errorf("ACG = %v, %v", acg, ok)
	}
	gg, ok := result.Lookup("GG")
	if !ok {
		t.Fatal("GG should survive threshold 0")
	}
	if len(gg) != 0 {
		t.Errorf("GG occurrences = %v, want none", gg)
	}

	empty := mine(t, Corpus{}, "0", Options{})
	if empty.Len() != 16 {
		t.Errorf("empty corpus at threshold 0: %d patterns, want 16", empty.Len())
	}
	if len(empty.Rounds) != 1 {
		t.Errorf("rounds = %d, want 1", len(empty.Rounds))
	}
}

func TestDiscoverMaxLength(t *testing.T) {
	result := mine(t, Corpus{"AAAAAA"}, "1", Options{MaxLength: 3})
	if !reflect.DeepEqual(result.Order, []string{"AA", "AAA"}) {
		t.Errorf("Order = %v", result.Order)
	}
}

func TestDiscoverInvalidSupportFailsFirst(t *testing.T) {
	observer := &countingObserver{}
	_, err := Discover(context.Background(), Corpus{"ACGT"}, "lots", Options{Observer: observer})
	if !errors.Is(err, apperrors.ErrInvalidSupport) {
		t.Fatalf("err = %v, want ErrInvalidSupport", err)
	}
	if observer.rounds != 0 {
		t.Errorf("%d rounds ran before support was validated", observer.rounds)
	}
}

func TestNewMinerValidation(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want error
	}{
		{"duplicate symbols", Options{Alphabet: "ACCA"}, apperrors.ErrInvalidAlphabet},
		{"control symbol", Options{Alphabet: "A\tC"}, apperrors.ErrInvalidAlphabet},
		{"max length one", Options{MaxLength: 1}, apperrors.ErrInvalidInput},
		{"negative max length", Options{MaxLength: -4}, apperrors.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewMiner(tt.opts); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDiscoverCustomAlphabet(t *testing.T) {
	result := mine(t, Corpus{"ABAB", "BABA"}, "2", Options{Alphabet: "AB"})
	if _, ok := result.Lookup("ABA"); !ok {
		t.Errorf("ABA not discovered: %v", result.Order)
	}
	if len(result.Rounds) == 0 || result.Rounds[0].Candidates != 4 {
		t.Errorf("seed round = %+v, want 4 candidates", result.Rounds)
	}
}

type countingObserver struct {
	rounds  int
	lengths []int
}

func (o *countingObserver) ObserveRound(stats RoundStats) {
	o.rounds++
	o.lengths = append(o.lengths, stats.Length)
}

func TestObserverSeesEveryRound(t *testing.T) {
	observer := &countingObserver{}
	mine(t, Corpus{"AAAAAA"}, "1", Options{Observer: observer})
	// Lengths 2..6 survive; length 7 is generated from AAAAAA and scanned empty.
	if !reflect.DeepEqual(observer.lengths, []int{2, 3, 4, 5, 6, 7}) {
		t.Errorf("observed lengths = %v", observer.lengths)
	}
}

// bruteForce counts every substring of length >= 2 with overlapping
// occurrences and keeps those reaching threshold.
func bruteForce(corpus Corpus, threshold float64) map[string]Occurrences {
	all := make(map[string]Occurrences)
	for idx, s := range corpus {
		for i := 0; i < len(s); i++ {
			for j := i + 2; j <= len(s); j++ {
				p := s[i:j]
				occ, ok := all[p]
				if !ok {
					occ = make(Occurrences)
					all[p] = occ
				}
				occ[idx] = append(occ[idx], i)
			}
		}
	}
	kept := make(map[string]Occurrences)
	for p, occ := range all {
		for _, positions := range occ {
			sort.Ints(positions)
		}
		if float64(occ.Total()) >= threshold {
			kept[p] = occ
		}
	}
	return kept
}

func randomCorpus(rng *rand.Rand, n, maxLen int) Corpus {
	corpus := make(Corpus, n)
	for i := range corpus {
		b := make([]byte, rng.Intn(maxLen+1))
		for j := range b {
			b[j] = DefaultAlphabet[rng.Intn(len(DefaultAlphabet))]
		}
		corpus[i] = string(b)
	}
	return corpus
}

func TestDiscoverMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 25; trial++ {
		corpus := randomCorpus(rng, 1+rng.Intn(6), 24)
		threshold := float64(1 + rng.Intn(4))

		miner, err := NewMiner(Options{Workers: 3})
		if err != nil {
			t.Fatal(err)
		}
		result, err := miner.Run(context.Background(), corpus, threshold)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		want := bruteForce(corpus, threshold)
		if !reflect.DeepEqual(result.Patterns, want) {
			t.Fatalf("trial %d corpus %q threshold %v:\n got %v\nwant %v",
				trial, corpus, threshold, result.Patterns, want)
		}
	}
}

func TestDiscoverProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	corpus := randomCorpus(rng, 8, 40)
	result := mine(t, corpus, "25%", Options{})

	lastLen := 0
	for _, p := range result.Order {
		occ := result.Patterns[p]
		if float64(occ.Total()) < result.Threshold {
			t.Errorf("%s total %d below threshold %v", p, occ.Total(), result.Threshold)
		}
		if len(p) < lastLen {
			t.Errorf("order not monotonic: %s after length %d", p, lastLen)
		}
		lastLen = len(p)
		if len(p) >= 3 {
			if _, ok := result.Patterns[p[:len(p)-1]]; !ok {
				t.Errorf("%s discovered without prefix %s", p, p[:len(p)-1])
			}
			if _, ok := result.Patterns[p[1:]]; !ok {
				t.Errorf("%s discovered without suffix %s", p, p[1:])
			}
		}
	}
}

func TestDiscoverDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	corpus := randomCorpus(rng, 10, 60)
	a := mine(t, corpus, "3", Options{Workers: 1})
	b := mine(t, corpus, "3", Options{Workers: 8})
	if !reflect.DeepEqual(a.Patterns, b.Patterns) || !reflect.DeepEqual(a.Order, b.Order) {
		t.Error("results differ between runs")
	}
}

func TestResultRoundsAreImmutable(t *testing.T) {
	base := newResult(1, 1)
	first := base.withRound(RoundStats{Length: 2}, OccurrenceMap{"AC": {0: {0}}})
	second := first.withRound(RoundStats{Length: 3}, OccurrenceMap{"ACG": {0: {0}}})

	if base.Len() != 0 || len(base.Rounds) != 0 {
		t.Error("base result was mutated")
	}
	if first.Len() != 1 || len(first.Rounds) != 1 {
		t.Errorf("first result was mutated: %v", first.Order)
	}
	if second.Len() != 2 || !reflect.DeepEqual(second.Order, []string{"AC", "ACG"}) {
		t.Errorf("second = %v", second.Order)
	}
}
