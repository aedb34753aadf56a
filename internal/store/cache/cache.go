// Package cache stores finished discovery results in Redis, keyed by the
// corpus content, the support specification and the discovery options, so
// re-running the same job skips mining entirely.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/Adithya-Monish-Kumar-K/repfinder/internal/motif"
	pkgredis "github.com/Adithya-Monish-Kumar-K/repfinder/pkg/redis"
	"golang.org/x/sync/singleflight"
)

const keyPrefix = "repfinder:result:"

// Backend is the subset of the Redis client the cache needs.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) (int64, error)
}

// Key identifies a discovery run's inputs.
type Key struct {
	Corpus    motif.Corpus
	Support   string
	Alphabet  motif.Alphabet
	Mode      motif.MatchMode
	MaxLength int
}

type ResultCache struct {
	backend Backend
	ttl     time.Duration
	group   singleflight.Group
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
}

func New(backend Backend, ttl time.Duration) *ResultCache {
	return &ResultCache{
		backend: backend,
		ttl:     ttl,
		logger:  slog.Default().With("component", "result-cache"),
	}
}

func (c *ResultCache) Get(ctx context.Context, k Key) (*motif.Result, bool) {
	key := BuildKey(k)
	data, err := c.backend.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, pkgredis.ErrMiss) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.misses.Add(1)
		return nil, false
	}
	var result motif.Result
	if err := json.Unmarshal(data, &result); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	c.logger.Debug("cache hit", "key", key, "patterns", result.Len())
	return &result, true
}

func (c *ResultCache) Set(ctx context.Context, k Key, result *motif.Result) {
	key := BuildKey(k)
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.backend.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached result for k or runs computeFn once, even
// when several callers ask for the same key concurrently. The bool reports
// whether the result came from the cache.
func (c *ResultCache) GetOrCompute(
	ctx context.Context,
	k Key,
	computeFn func() (*motif.Result, error),
) (*motif.Result, bool, error) {
	if result, ok := c.Get(ctx, k); ok {
		return result, true, nil
	}
	key := BuildKey(k)
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		result, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, k, result)
		return result, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.(*motif.Result), false, nil
}

// Invalidate removes every cached result.
func (c *ResultCache) Invalidate(ctx context.Context) (int64, error) {
	deleted, err := c.backend.DeletePrefix(ctx, keyPrefix)
	if err != nil {
		return deleted, fmt.Errorf("invalidating result cache: %w", err)
	}
	c.logger.Info("cache invalidate", "keys_deleted", deleted)
	return deleted, nil
}

func (c *ResultCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// BuildKey hashes the run inputs. Strings are length-prefixed so that
// different splits of the same bytes hash differently.
func BuildKey(k Key) string {
	h := sha256.New()
	write := func(s string) {
		h.Write([]byte(strconv.Itoa(len(s))))
		h.Write([]byte{':'})
		h.Write([]byte(s))
	}
	write(k.Support)
	write(string(k.Alphabet))
	write(k.Mode.String())
	write(strconv.Itoa(k.MaxLength))
	write(strconv.Itoa(len(k.Corpus)))
	for _, s := range k.Corpus {
		write(s)
	}
	sum := h.Sum(nil)
	return keyPrefix + hex.EncodeToString(sum[:16])
}
