package motif

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/repfinder/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// MatchMode selects how repeated matches inside one string are counted.
type MatchMode int

const (
	// MatchOverlapping resumes the search one symbol after each match
	// start, so "AA" occurs at [0 1] in "AAA".
	MatchOverlapping MatchMode = iota
	// MatchDisjoint resumes after the matched span, so "AA" occurs only
	// at [0] in "AAA".
	MatchDisjoint
)

// ParseMatchMode accepts "overlapping" (or "") and "disjoint".
func ParseMatchMode(s string) (MatchMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "overlapping":
		return MatchOverlapping, nil
	case "disjoint":
		return MatchDisjoint, nil
	default:
		return 0, apperrors.Newf(apperrors.ErrInvalidInput, apperrors.ExitUsage,
			"unknown match mode %q", s)
	}
}

func (m MatchMode) String() string {
	if m == MatchDisjoint {
		return "disjoint"
	}
	return "overlapping"
}

// Scanner finds every occurrence of a round's candidates and keeps only the
// candidates whose total count reaches the threshold.
type Scanner struct {
	corpus    Corpus
	threshold float64
	workers   int
	mode      MatchMode
}

// NewScanner creates a Scanner over corpus. workers <= 0 uses GOMAXPROCS.
func NewScanner(corpus Corpus, threshold float64, workers int, mode MatchMode) *Scanner {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Scanner{
		corpus:    corpus,
		threshold: threshold,
		workers:   workers,
		mode:      mode,
	}
}

type scanResult struct {
	occurrences Occurrences
	total       int
}

// Scan searches each candidate in its assigned corpus indices. Candidates are
// independent, so they are fanned out across the worker pool; each worker
// writes only its own slot. Survival is all-or-nothing per pattern.
func (s *Scanner) Scan(ctx context.Context, candidates CandidateSet) (OccurrenceMap, error) {
	patterns := candidates.Patterns()
	results := make([]scanResult, len(patterns))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, pattern := range patterns {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := s.scanOne(pattern, candidates[pattern])
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scanning %d candidates: %w", len(patterns), err)
	}

	survivors := make(OccurrenceMap)
	for i, pattern := range patterns {
		if float64(results[i].total) >= s.threshold {
			survivors[pattern] = results[i].occurrences
		}
	}
	return survivors, nil
}

func (s *Scanner) scanOne(pattern string, scope []int) (scanResult, error) {
	res := scanResult{occurrences: make(Occurrences)}
	for _, idx := range scope {
		if idx < 0 || idx >= len(s.corpus) {
			return scanResult{}, apperrors.Newf(apperrors.ErrInvalidInput, apperrors.ExitFailure,
				"pattern %q scoped to index %d outside corpus of %d strings", pattern, idx, len(s.corpus))
		}
		var positions []int
		if s.mode == MatchDisjoint {
			positions = FindDisjoint(s.corpus[idx], pattern)
		} else {
			positions = FindAll(s.corpus[idx], pattern)
		}
		if len(positions) == 0 {
			continue
		}
		res.occurrences[idx] = positions
		res.total += len(positions)
	}
	return res, nil
}

// FindAll returns every start position of pattern in text, including
// overlapping matches: the search resumes one byte after each match start.
func FindAll(text, pattern string) []int {
	if pattern == "" || len(pattern) > len(text) {
		return nil
	}
	var positions []int
	offset := 0
	for offset <= len(text)-len(pattern) {
		i := strings.Index(text[offset:], pattern)
		if i < 0 {
			break
		}
		positions = append(positions, offset+i)
		offset += i + 1
	}
	return positions
}

// FindDisjoint returns the start positions of non-overlapping matches of
// pattern in text, scanning left to right.
func FindDisjoint(text, pattern string) []int {
	if pattern == "" || len(pattern) > len(text) {
		return nil
	}
	var positions []int
	offset := 0
	for offset <= len(text)-len(pattern) {
		i := strings.Index(text[offset:], pattern)
		if i < 0 {
			break
		}
		positions = append(positions, offset+i)
		offset += i + len(pattern)
	}
	return positions
}
