package motif

import (
	"reflect"
	"testing"
)

func TestGenerateOverlapMerge(t *testing.T) {
	survivors := OccurrenceMap{
		"AA": {0: {0, 1, 4}, 1: {2}},
		"AC": {0: {2}, 2: {1}},
		"CA": {0: {3}, 1: {1}, 2: {0}},
		"TG": {1: {4}, 2: {3}},
	}
	got := Generate(survivors)
	want := CandidateSet{
		"AAA": {0, 1},
		"AAC": {0, 1, 2},
		"ACA": {0, 1, 2},
		"CAA": {0, 1, 2},
		"CAC": {0, 1, 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Generate = %v, want %v", got, want)
	}
}

func TestGenerateSelfMerge(t *testing.T) {
	got := Generate(OccurrenceMap{"ACA": {3: {0, 2}}})
	if len(got) != 0 {
		t.Errorf("ACA cannot self-merge (CA != AC), got %v", got)
	}

	got = Generate(OccurrenceMap{"AAA": {3: {0, 1}}})
	want := CandidateSet{"AAAA": {3}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Generate = %v, want %v", got, want)
	}
}

func TestGenerateUnionsScopes(t *testing.T) {
	survivors := OccurrenceMap{
		"AC": {0: {0}},
		"CA": {1: {0}},
		"CC": {2: {0}},
	}
	got := Generate(survivors)
	want := CandidateSet{
		"ACA": {0, 1},
		"ACC": {0, 2},
		"CAC": {0, 1},
		"CCA": {1, 2},
		"CCC": {2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Generate = %v, want %v", got, want)
	}
}

func TestGenerateIgnoresDifferentLengths(t *testing.T) {
	got := Generate(OccurrenceMap{
		"AC":  {0: {0}},
		"CGT": {0: {1}},
	})
	if len(got) != 0 {
		t.Errorf("patterns of different lengths must not merge, got %v", got)
	}
}

func TestGenerateSkipsSurvivorsWithoutOccurrences(t *testing.T) {
	got := Generate(OccurrenceMap{
		"AC": {0: {0}},
		"CG": {0: {1}},
		"GA": {},
		"CA": {},
	})
	want := CandidateSet{"ACG": {0}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Generate = %v, want %v", got, want)
	}
}

func TestGenerateEmpty(t *testing.T) {
	if got := Generate(OccurrenceMap{}); len(got) != 0 {
		t.Errorf("Generate(empty) = %v", got)
	}
}
