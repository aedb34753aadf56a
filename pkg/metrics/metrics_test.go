package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveRound(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveRound(16, 4, 3*time.Millisecond)
	m.ObserveRound(5, 1, time.Millisecond)

	if got := testutil.ToFloat64(m.RoundsTotal); got != 2 {
		t.Errorf("rounds = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.CandidatesTotal); got != 21 {
		t.Errorf("candidates = %v, want 21", got)
	}
	if got := testutil.ToFloat64(m.SurvivorsTotal); got != 5 {
		t.Errorf("survivors = %v, want 5", got)
	}
	if got := testutil.CollectAndCount(m.RoundDuration); got != 1 {
		t.Errorf("round duration series = %d, want 1", got)
	}
}

func TestObserveRunAndCache(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveRun(5, time.Second, nil)
	m.ObserveRun(0, time.Second, errors.New("boom"))
	m.ObserveCache(true)
	m.ObserveCache(false)
	m.ObserveCache(false)

	if got := testutil.ToFloat64(m.RunsTotal.WithLabelValues("ok")); got != 1 {
		t.Errorf("ok runs = %v", got)
	}
	if got := testutil.ToFloat64(m.RunsTotal.WithLabelValues("error")); got != 1 {
		t.Errorf("error runs = %v", got)
	}
	if got := testutil.ToFloat64(m.CacheLookupsTotal.WithLabelValues("miss")); got != 2 {
		t.Errorf("cache misses = %v", got)
	}
}

func TestNewPanicsOnDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	defer func() {
		if recover() == nil {
			t.Error("expected duplicate registration to panic")
		}
	}()
	New(reg)
}
