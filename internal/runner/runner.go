// Package runner drives one discovery run end to end: load the corpus, mine
// it (through the result cache when one is configured), persist the run and
// export the table. The CLI and the job worker share it.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/Adithya-Monish-Kumar-K/repfinder/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/repfinder/internal/motif"
	"github.com/Adithya-Monish-Kumar-K/repfinder/internal/report"
	"github.com/Adithya-Monish-Kumar-K/repfinder/internal/store/cache"
	"github.com/Adithya-Monish-Kumar-K/repfinder/internal/store/runstore"
	apperrors "github.com/Adithya-Monish-Kumar-K/repfinder/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/repfinder/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/repfinder/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/repfinder/pkg/tracing"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

// Options are the discovery settings applied to every run.
type Options struct {
	Alphabet  motif.Alphabet
	Workers   int
	MaxLength int
	Mode      motif.MatchMode
}

// Deps are the optional backends. Any nil field is skipped.
type Deps struct {
	Cache   *cache.ResultCache
	Store   *runstore.Store
	Metrics *metrics.Metrics
}

// Request describes one run. An empty OutputPath skips the export.
type Request struct {
	RunID      string
	InputPath  string
	Support    string
	OutputPath string
}

// Summary reports what a run produced.
type Summary struct {
	RunID      string
	Corpus     corpus.Stats
	Threshold  float64
	Patterns   int
	Rounds     int
	Cached     bool
	Persisted  bool
	OutputPath string
	Duration   time.Duration
	Stages     map[string]time.Duration
	Result     *motif.Result
}

type Runner struct {
	opts Options
	deps Deps
}

// New validates opts by building a throwaway Miner so that a bad alphabet
// or length bound is reported before any run starts.
func New(opts Options, deps Deps) (*Runner, error) {
	if opts.Alphabet == "" {
		opts.Alphabet = motif.DefaultAlphabet
	}
	if _, err := motif.NewMiner(motif.Options{
		Alphabet:  opts.Alphabet,
		MaxLength: opts.MaxLength,
	}); err != nil {
		return nil, err
	}
	return &Runner{opts: opts, deps: deps}, nil
}

// Run executes req. The support value is parsed before the corpus is read,
// so a malformed value never triggers any I/O.
func (r *Runner) Run(ctx context.Context, req Request) (*Summary, error) {
	start := time.Now()
	summary, err := r.run(ctx, req)
	if m := r.deps.Metrics; m != nil {
		patterns := 0
		if summary != nil {
			patterns = summary.Patterns
		}
		m.ObserveRun(patterns, time.Since(start), err)
	}
	if err != nil {
		return nil, err
	}
	summary.Duration = time.Since(start)
	return summary, nil
}

func (r *Runner) run(ctx context.Context, req Request) (*Summary, error) {
	runID := req.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	ctx = logger.WithRunID(ctx, runID)
	log := logger.FromContext(ctx).With("component", "runner")
	ctx, trace := tracing.Start(ctx, "run")
	defer func() {
		trace.End()
		trace.Log(log)
	}()

	support, err := motif.ParseSupport(req.Support)
	if err != nil {
		return nil, err
	}

	_, span := tracing.Start(ctx, "load")
	data, stats, err := corpus.Load(req.InputPath, r.opts.Alphabet)
	span.End()
	if err != nil {
		return nil, err
	}
	log.Info("corpus loaded",
		"path", req.InputPath,
		"strings", stats.Strings,
		"size", humanize.Bytes(uint64(stats.Bytes)),
		"longest", stats.Longest,
	)

	threshold := support.Resolve(len(data))
	miner, err := motif.NewMiner(motif.Options{
		Alphabet:  r.opts.Alphabet,
		Workers:   r.opts.Workers,
		MaxLength: r.opts.MaxLength,
		Mode:      r.opts.Mode,
		Observer:  r.observer(),
		Logger:    logger.FromContext(ctx).With("component", "discovery"),
	})
	if err != nil {
		return nil, err
	}

	_, span = tracing.Start(ctx, "mine")
	result, cached, err := r.mine(ctx, miner, data, support, threshold)
	span.SetAttr("cached", cached)
	span.End()
	if err != nil {
		return nil, fmt.Errorf("mining %s: %w", req.InputPath, err)
	}
	log.Info("repeats found",
		"patterns", humanize.Comma(int64(result.Len())),
		"rounds", len(result.Rounds),
		"threshold", threshold,
		"cached", cached,
	)

	summary := &Summary{
		RunID:     runID,
		Corpus:    stats,
		Threshold: threshold,
		Patterns:  result.Len(),
		Rounds:    len(result.Rounds),
		Cached:    cached,
		Result:    result,
	}

	if r.deps.Store != nil {
		_, span = tracing.Start(ctx, "persist")
		_, err := r.deps.Store.SaveRun(ctx, runID, support.String(), result)
		span.End()
		if err != nil {
			return nil, fmt.Errorf("persisting run: %w", err)
		}
		summary.Persisted = true
	}

	if req.OutputPath != "" {
		_, span = tracing.Start(ctx, "export")
		path := report.EnsureExtension(req.OutputPath)
		table := report.Build(result)
		log.Info("table built", "rows", len(table.Rows), "columns", len(table.Columns))
		err := report.Write(table, path)
		span.SetAttr("path", path)
		span.End()
		if err != nil {
			return nil, err
		}
		log.Info("table exported", "path", path)
		summary.OutputPath = path
	}
	summary.Stages = trace.Stages()
	return summary, nil
}

func (r *Runner) mine(
	ctx context.Context,
	miner *motif.Miner,
	data motif.Corpus,
	support motif.Support,
	threshold float64,
) (*motif.Result, bool, error) {
	compute := func() (*motif.Result, error) {
		return miner.Run(ctx, data, threshold)
	}
	if r.deps.Cache == nil {
		result, err := compute()
		return result, false, err
	}
	key := cache.Key{
		Corpus:    data,
		Support:   support.String(),
		Alphabet:  r.opts.Alphabet,
		Mode:      r.opts.Mode,
		MaxLength: r.opts.MaxLength,
	}
	result, cached, err := r.deps.Cache.GetOrCompute(ctx, key, compute)
	if err != nil {
		return nil, false, err
	}
	if r.deps.Metrics != nil {
		r.deps.Metrics.ObserveCache(cached)
	}
	return result, cached, nil
}

func (r *Runner) observer() motif.RoundObserver {
	if r.deps.Metrics == nil {
		return nil
	}
	return roundMetrics{m: r.deps.Metrics}
}

type roundMetrics struct {
	m *metrics.Metrics
}

func (o roundMetrics) ObserveRound(stats motif.RoundStats) {
	o.m.ObserveRound(stats.Candidates, stats.Survivors, stats.Duration)
}

// Export rebuilds the table of a stored run and writes it to outputPath.
func (r *Runner) Export(ctx context.Context, runID, outputPath string) (string, error) {
	if r.deps.Store == nil {
		return "", apperrors.New(apperrors.ErrInvalidInput, apperrors.ExitUsage,
			"exporting a stored run requires a configured database")
	}
	_, result, err := r.deps.Store.LoadRun(ctx, runID)
	if err != nil {
		return "", err
	}
	path := report.EnsureExtension(outputPath)
	if err := report.Write(report.Build(result), path); err != nil {
		return "", err
	}
	logger.FromContext(logger.WithRunID(ctx, runID)).Info("table exported",
		"component", "runner",
		"path", path,
		"patterns", result.Len(),
	)
	return path, nil
}
