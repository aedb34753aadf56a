package motif

import (
	apperrors "github.com/Adithya-Monish-Kumar-K/repfinder/pkg/errors"
)

// DefaultAlphabet is the nucleotide alphabet the seed round is built from.
const DefaultAlphabet Alphabet = "ACGT"

// Alphabet is an ordered set of single-byte symbols.
type Alphabet string

// ParseAlphabet validates that s is a non-empty set of distinct printable
// ASCII symbols.
func ParseAlphabet(s string) (Alphabet, error) {
	if s == "" {
		return "", apperrors.New(apperrors.ErrInvalidAlphabet, apperrors.ExitUsage, "alphabet is empty")
	}
	seen := make(map[byte]struct{}, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c <= ' ' || c > '~' {
			return "", apperrors.Newf(apperrors.ErrInvalidAlphabet, apperrors.ExitUsage,
				"symbol %q at offset %d is not printable ASCII", c, i)
		}
		if _, dup := seen[c]; dup {
			return "", apperrors.Newf(apperrors.ErrInvalidAlphabet, apperrors.ExitUsage,
				"symbol %q appears more than once", c)
		}
		seen[c] = struct{}{}
	}
	return Alphabet(s), nil
}

// Contains reports whether c is one of the alphabet's symbols.
func (a Alphabet) Contains(c byte) bool {
	for i := 0; i < len(a); i++ {
		if a[i] == c {
			return true
		}
	}
	return false
}

// Seed builds the first round: every length-2 string over the alphabet,
// each searched in all n corpus strings.
func (a Alphabet) Seed(n int) CandidateSet {
	scope := make([]int, n)
	for i := range scope {
		scope[i] = i
	}
	seed := make(CandidateSet, len(a)*len(a))
	for i := 0; i < len(a); i++ {
		for j := 0; j < len(a); j++ {
			seed[string([]byte{a[i], a[j]})] = scope
		}
	}
	return seed
}
