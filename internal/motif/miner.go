// Package motif discovers every substring over a small alphabet that occurs
// at least a minimum number of times across a corpus of strings. Length-2
// seeds are scanned, survivors are overlap-merged into length-3 candidates,
// and so on until a round finds nothing or nothing new can be merged.
package motif

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	apperrors "github.com/Adithya-Monish-Kumar-K/repfinder/pkg/errors"
)

// RoundObserver is notified after every scanned round.
type RoundObserver interface {
	ObserveRound(stats RoundStats)
}

// Options configures a Miner. The zero value mines over DefaultAlphabet
// with GOMAXPROCS workers, overlapping matches and no length bound.
type Options struct {
	Alphabet  Alphabet
	Workers   int
	MaxLength int
	Mode      MatchMode
	Observer  RoundObserver
	Logger    *slog.Logger
}

// Miner runs the discovery loop.
type Miner struct {
	alphabet  Alphabet
	workers   int
	maxLength int
	mode      MatchMode
	observer  RoundObserver
	logger    *slog.Logger
}

// NewMiner validates opts and returns a Miner.
func NewMiner(opts Options) (*Miner, error) {
	alphabet := opts.Alphabet
	if alphabet == "" {
		alphabet = DefaultAlphabet
	}
	alphabet, err := ParseAlphabet(string(alphabet))
	if err != nil {
		return nil, err
	}
	if opts.MaxLength < 0 || opts.MaxLength == 1 {
		return nil, apperrors.Newf(apperrors.ErrInvalidInput, apperrors.ExitUsage,
			"max length %d must be 0 (unbounded) or at least 2", opts.MaxLength)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default().With("component", "discovery")
	}
	return &Miner{
		alphabet:  alphabet,
		workers:   opts.Workers,
		maxLength: opts.MaxLength,
		mode:      opts.Mode,
		observer:  opts.Observer,
		logger:    logger,
	}, nil
}

// Run mines corpus with an already resolved threshold and returns the
// accumulated result. An empty corpus yields an empty result.
func (m *Miner) Run(ctx context.Context, corpus Corpus, threshold float64) (*Result, error) {
	scanner := NewScanner(corpus, threshold, m.workers, m.mode)
	acc := newResult(threshold, len(corpus))
	candidates := m.alphabet.Seed(len(corpus))
	length := 2

	for {
		start := time.Now()
		survivors, err := scanner.Scan(ctx, candidates)
		if err != nil {
			return nil, fmt.Errorf("round %d: %w", length, err)
		}
		stats := RoundStats{
			Length:      length,
			Candidates:  len(candidates),
			Survivors:   len(survivors),
			Occurrences: survivors.Total(),
			Duration:    time.Since(start),
		}
		if m.observer != nil {
			m.observer.ObserveRound(stats)
		}
		m.logger.Debug("discovery round",
			"length", stats.Length,
			"candidates", stats.Candidates,
			"survivors", stats.Survivors,
			"occurrences", stats.Occurrences,
			"duration", stats.Duration,
		)

		acc = acc.withRound(stats, survivors)
		if len(survivors) == 0 {
			break
		}
		if m.maxLength > 0 && length >= m.maxLength {
			m.logger.Debug("max length reached", "max_length", m.maxLength)
			break
		}
		if phantoms := countPhantoms(survivors); phantoms > 0 {
			m.logger.Debug("survivors without occurrences are not extended",
				"length", length,
				"count", phantoms,
			)
		}
		candidates = Generate(survivors)
		if len(candidates) == 0 {
			break
		}
		length++
	}

	m.logger.Info("discovery finished",
		"patterns", acc.Len(),
		"rounds", len(acc.Rounds),
		"threshold", threshold,
	)
	return acc, nil
}

// Discover parses support, resolves it against corpus and mines it. A
// malformed support value fails before any scanning happens.
func Discover(ctx context.Context, corpus Corpus, support string, opts Options) (*Result, error) {
	threshold, err := ResolveSupport(support, corpus)
	if err != nil {
		return nil, err
	}
	miner, err := NewMiner(opts)
	if err != nil {
		return nil, err
	}
	return miner.Run(ctx, corpus, threshold)
}

func countPhantoms(survivors OccurrenceMap) int {
	n := 0
	for _, occ := range survivors {
		if len(occ) == 0 {
			n++
		}
	}
	return n
}
