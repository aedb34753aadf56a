package motif

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/repfinder/pkg/errors"
)

// SupportKind tells how a Support value is interpreted.
type SupportKind int

const (
	Absolute SupportKind = iota
	Percentage
)

// Support is a parsed support specification: either an absolute occurrence
// count or a percentage of the corpus size.
type Support struct {
	Kind  SupportKind
	Value float64
}

// ParseSupport parses "3", "2.5" or "50%". Only the numeric form is checked;
// zero, negative and >100% values are accepted as given.
func ParseSupport(spec string) (Support, error) {
	raw := strings.TrimSpace(spec)
	kind := Absolute
	if strings.HasSuffix(raw, "%") {
		kind = Percentage
		raw = strings.TrimSpace(strings.TrimSuffix(raw, "%"))
	}
	if raw == "" {
		return Support{}, apperrors.Newf(apperrors.ErrInvalidSupport, apperrors.ExitUsage,
			"%q has no numeric value", spec)
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Support{}, apperrors.Newf(apperrors.ErrInvalidSupport, apperrors.ExitUsage,
			"%q is not a number", spec)
	}
	return Support{Kind: kind, Value: value}, nil
}

// Resolve converts s into an absolute minimum occurrence count for a corpus
// of corpusLen strings.
func (s Support) Resolve(corpusLen int) float64 {
	if s.Kind == Percentage {
		return float64(corpusLen) * (s.Value / 100)
	}
	return s.Value
}

func (s Support) String() string {
	v := strconv.FormatFloat(s.Value, 'g', -1, 64)
	if s.Kind == Percentage {
		return v + "%"
	}
	return v
}

// ResolveSupport parses spec and resolves it against corpus in one step.
func ResolveSupport(spec string, corpus Corpus) (float64, error) {
	s, err := ParseSupport(spec)
	if err != nil {
		return 0, fmt.Errorf("resolving support: %w", err)
	}
	return s.Resolve(len(corpus)), nil
}
