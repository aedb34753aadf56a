package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Adithya-Monish-Kumar-K/repfinder/internal/runner"
	"github.com/Adithya-Monish-Kumar-K/repfinder/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/repfinder/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/repfinder/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/repfinder/pkg/metrics"
)

type options struct {
	configPath string
	input      string
	output     string
	support    string
	alphabet   string
	mode       string
	workers    int
	maxLength  int
	logLevel   string
	fromRun    string
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "path to config file")
	flag.StringVar(&opts.input, "i", "base.txt", "input corpus, one string per line")
	flag.StringVar(&opts.input, "input", "base.txt", "input corpus, one string per line")
	flag.StringVar(&opts.output, "o", "saida.xlsx", "output table (.xlsx or .csv)")
	flag.StringVar(&opts.output, "output", "saida.xlsx", "output table (.xlsx or .csv)")
	flag.StringVar(&opts.support, "s", "2", "minimum support: a count (3) or a percentage (50%)")
	flag.StringVar(&opts.support, "support", "2", "minimum support: a count (3) or a percentage (50%)")
	flag.StringVar(&opts.alphabet, "alphabet", "ACGT", "symbols the seed patterns are built from")
	flag.StringVar(&opts.mode, "mode", "overlapping", "match counting: overlapping or disjoint")
	flag.IntVar(&opts.workers, "workers", 0, "scan workers (0 = GOMAXPROCS)")
	flag.IntVar(&opts.maxLength, "max-length", 0, "longest pattern to consider (0 = unbounded)")
	flag.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error")
	flag.StringVar(&opts.fromRun, "from-run", "", "re-export a stored run instead of mining")
	flag.Parse()

	os.Exit(run(opts, setFlags()))
}

func setFlags() map[string]bool {
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

func run(opts options, set map[string]bool) int {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return apperrors.ExitFailure
	}
	applyFlags(cfg, opts, set)

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(nil)
		shutdown := metrics.StartServer(cfg.Metrics.Port, nil)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			shutdown(shutdownCtx)
		}()
	}

	runOpts, err := runner.OptionsFromConfig(cfg.Discovery)
	if err != nil {
		return fail(err)
	}
	backends, err := runner.OpenBackends(ctx, cfg, m)
	if err != nil {
		return fail(err)
	}
	defer backends.Close()

	r, err := runner.New(runOpts, backends.Deps)
	if err != nil {
		return fail(err)
	}

	if opts.fromRun != "" {
		if _, err := r.Export(ctx, opts.fromRun, cfg.Output.Path); err != nil {
			return fail(err)
		}
		return apperrors.ExitOK
	}

	summary, err := r.Run(ctx, runner.Request{
		InputPath:  cfg.Input.Path,
		Support:    cfg.Discovery.Support,
		OutputPath: cfg.Output.Path,
	})
	if err != nil {
		return fail(err)
	}
	slog.Info("done",
		"run_id", summary.RunID,
		"patterns", summary.Patterns,
		"output", summary.OutputPath,
		"duration", summary.Duration.Round(time.Millisecond),
	)
	return apperrors.ExitOK
}

// applyFlags lets explicitly set flags win over the config file and the
// environment.
func applyFlags(cfg *config.Config, opts options, set map[string]bool) {
	if set["i"] || set["input"] {
		cfg.Input.Path = opts.input
	}
	if set["o"] || set["output"] {
		cfg.Output.Path = opts.output
	}
	if set["s"] || set["support"] {
		cfg.Discovery.Support = opts.support
	}
	if set["alphabet"] {
		cfg.Discovery.Alphabet = opts.alphabet
	}
	if set["mode"] {
		cfg.Discovery.MatchMode = opts.mode
	}
	if set["workers"] {
		cfg.Discovery.Workers = opts.workers
	}
	if set["max-length"] {
		cfg.Discovery.MaxLength = opts.maxLength
	}
	if set["log-level"] {
		cfg.Logging.Level = opts.logLevel
	}
}

func fail(err error) int {
	slog.Error("repfinder failed", "error", err)
	return apperrors.ExitCode(err)
}
