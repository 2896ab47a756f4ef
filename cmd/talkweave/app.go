package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/aretw0/talkweave"
	"github.com/aretw0/talkweave/internal/config"
	"github.com/aretw0/talkweave/internal/logging"
	"github.com/aretw0/talkweave/internal/metrics"
	"github.com/aretw0/talkweave/pkg/adapters/cache"
	talkloam "github.com/aretw0/talkweave/pkg/adapters/loam"
	"github.com/aretw0/talkweave/pkg/adapters/memory"
	"github.com/aretw0/talkweave/pkg/adapters/redis"
	"github.com/aretw0/talkweave/pkg/domain"
	"github.com/aretw0/talkweave/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// app holds everything a command needs: configuration, logger, metrics and
// the generator over the decorated stores.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	gen      *talkweave.Generator
	closers  []func() error
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("data") {
		cfg.Data.Path, _ = flags.GetString("data")
	}
	if flags.Changed("format") {
		cfg.Data.Format, _ = flags.GetString("format")
	}
	if flags.Changed("log-level") {
		cfg.Log.Level, _ = flags.GetString("log-level")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	level, _ := logging.ParseLevel(cfg.Log.Level)
	logger := logging.NewWriter(os.Stderr, level, cfg.Log.Format == "json")

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	a := &app{cfg: cfg, logger: logger, registry: reg, metrics: m}

	base, err := openDataset(cmd.Context(), cfg.Data)
	if err != nil {
		return nil, err
	}
	nodes, talks, err := a.decorate(cmd.Context(), base)
	if err != nil {
		a.close()
		return nil, err
	}

	a.gen = talkweave.New(nodes, talks,
		talkweave.WithLogger(logger),
		talkweave.WithHooks(m.Hooks(domain.Hooks{})),
		talkweave.WithMaxDepth(cfg.Generate.MaxDepth),
		talkweave.WithMaxMatches(cfg.Generate.MaxMatches),
		talkweave.WithParallelForks(cfg.Generate.ParallelForks),
		talkweave.WithVoices(base),
		talkweave.WithAvatars(base),
	)
	return a, nil
}

func openDataset(ctx context.Context, data config.DataConfig) (*memory.Store, error) {
	ds, err := readDataset(ctx, data)
	if err != nil {
		return nil, err
	}
	return memory.NewFromDataset(ds)
}

func readDataset(ctx context.Context, data config.DataConfig) (memory.Dataset, error) {
	if data.Format == config.FormatLoam {
		loader, err := talkloam.Open(data.Path)
		if err != nil {
			return memory.Dataset{}, err
		}
		return loader.Dataset(ctx)
	}
	return memory.ReadFile(data.Path)
}

// decorate stacks the in-process cache and, when configured, the shared
// Redis cache in front of the dataset. Redis sits outermost so every
// process sharing it benefits from warm entries.
func (a *app) decorate(ctx context.Context, base *memory.Store) (ports.NodeStore, ports.TalkStore, error) {
	var nodes ports.NodeStore = base
	var talks ports.TalkStore = base

	if a.cfg.Cache.Size > 0 {
		lru, err := cache.New(a.cfg.Cache.Size, nodes, talks, cache.WithObserver(func(op, result string) {
			a.metrics.Lookup("lru_"+op, result)
		}))
		if err != nil {
			return nil, nil, err
		}
		nodes, talks = lru, lru
	}

	if a.cfg.Redis.Addr != "" {
		rs := redis.New(a.cfg.Redis.Addr, "", 0, nodes, talks,
			redis.WithPrefix(a.cfg.Redis.Prefix),
			redis.WithTTL(a.cfg.Redis.TTL),
			redis.WithObserver(func(op, result string) {
				a.metrics.Lookup("redis_"+op, result)
			}),
		)
		a.closers = append(a.closers, rs.Close)
		if err := rs.Ping(ctx); err != nil {
			return nil, nil, fmt.Errorf("redis %s: %w", a.cfg.Redis.Addr, err)
		}
		nodes, talks = rs, rs
	}
	return nodes, talks, nil
}

func (a *app) close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.logger.Warn("close failed", "err", err)
		}
	}
}

// parseIDs converts positional arguments into dialogue or talk ids.
func parseIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	var errs []error
	for _, arg := range args {
		id, err := strconv.Atoi(arg)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid id %q", arg))
			continue
		}
		ids = append(ids, id)
	}
	return ids, errors.Join(errs...)
}
