package runner

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/repfinder/internal/motif"
	"github.com/Adithya-Monish-Kumar-K/repfinder/internal/store/cache"
	"github.com/Adithya-Monish-Kumar-K/repfinder/internal/store/runstore"
	"github.com/Adithya-Monish-Kumar-K/repfinder/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/repfinder/pkg/database"
	"github.com/Adithya-Monish-Kumar-K/repfinder/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/repfinder/pkg/metrics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/repfinder/pkg/redis"
)

// OptionsFromConfig converts the discovery section of cfg.
func OptionsFromConfig(cfg config.DiscoveryConfig) (Options, error) {
	alphabet, err := motif.ParseAlphabet(cfg.Alphabet)
	if err != nil {
		return Options{}, err
	}
	mode, err := motif.ParseMatchMode(cfg.MatchMode)
	if err != nil {
		return Options{}, err
	}
	return Options{
		Alphabet:  alphabet,
		Workers:   cfg.Workers,
		MaxLength: cfg.MaxLength,
		Mode:      mode,
	}, nil
}

// Backends holds the optional clients opened from config.
type Backends struct {
	Deps  Deps
	redis *pkgredis.Client
	db    *database.Client
}

// OpenBackends connects the backends enabled in cfg. An unreachable Redis
// only disables caching; a configured database that cannot be opened is an
// error, since the caller asked for runs to be persisted.
func OpenBackends(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (*Backends, error) {
	b := &Backends{Deps: Deps{Metrics: m}}

	if cfg.Redis.Enabled {
		client, err := pkgredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, result caching disabled", "error", err)
		} else {
			b.redis = client
			b.Deps.Cache = cache.New(client, cfg.Redis.CacheTTL)
			slog.Info("result cache enabled",
				"addr", cfg.Redis.Addr,
				"ttl", cfg.Redis.CacheTTL,
			)
		}
	}

	if cfg.Database.Driver != "" {
		db, err := database.New(cfg.Database)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("opening run store: %w", err)
		}
		store := runstore.New(db)
		if err := store.EnsureSchema(ctx); err != nil {
			db.Close()
			b.Close()
			return nil, err
		}
		b.db = db
		b.Deps.Store = store
		slog.Info("run store enabled", "driver", cfg.Database.Driver)
	}
	return b, nil
}

// RegisterChecks adds a probe for every open backend. Redis is optional;
// the run store is not.
func (b *Backends) RegisterChecks(c *health.Checker) {
	if b.redis != nil {
		c.Register("redis", health.Ping(b.redis.Ping, true))
	}
	if b.db != nil {
		c.Register("database", health.Ping(b.db.Ping, false))
	}
}

func (b *Backends) Close() {
	if b.redis != nil {
		if err := b.redis.Close(); err != nil {
			slog.Error("closing redis", "error", err)
		}
	}
	if b.db != nil {
		if err := b.db.Close(); err != nil {
			slog.Error("closing database", "error", err)
		}
	}
}
