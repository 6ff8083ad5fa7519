// Package app wires configuration, storage and the generation provider
// into the services the CLI and HTTP server use.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/abhisek/pathwise/internal/config"
	"github.com/abhisek/pathwise/internal/llm"
	"github.com/abhisek/pathwise/internal/projects"
	"github.com/abhisek/pathwise/internal/roadmap"
	"github.com/abhisek/pathwise/internal/roadmapgen"
	"github.com/abhisek/pathwise/internal/store"
)

// Options carries optional dependencies.
type Options struct {
	// Provider replaces the provider built from configuration.
	Provider llm.Provider
}

// App holds the long-lived services for one process.
type App struct {
	Config   config.Config
	Logger   *zap.Logger
	Store    *store.Store
	KV       store.KV
	Roadmaps *roadmap.Repository
	Projects *projects.Board

	provider    llm.Provider
	providerErr error
	once        sync.Once
	closers     []func() error
}

// New opens the event store at dbPath and the configured collection
// backend. The generation provider is built on first use so commands
// that never generate work without credentials.
func New(ctx context.Context, cfg config.Config, dbPath string, logger *zap.Logger, opts Options) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	a := &App{
		Config:   cfg,
		Logger:   logger,
		Store:    st,
		provider: opts.Provider,
		closers:  []func() error{st.Close},
	}

	kv, err := a.openKV(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.KV = kv
	a.Roadmaps = roadmap.NewRepository(kv)
	a.Projects = projects.NewBoard(kv)

	logger.Debug("app ready",
		zap.String("db", dbPath),
		zap.String("backend", cfg.Store.Backend))
	return a, nil
}

func (a *App) openKV(ctx context.Context) (store.KV, error) {
	sc := a.Config.Store
	switch sc.Backend {
	case config.BackendMemory:
		return store.NewMemoryKV(), nil
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{Addr: sc.RedisAddr, DB: sc.RedisDB})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("connect redis %s: %w", sc.RedisAddr, err)
		}
		a.closers = append(a.closers, client.Close)
		return store.NewRedisKV(client, sc.RedisPrefix), nil
	default:
		return a.Store.KV(), nil
	}
}

// Provider returns the generation provider, building it from
// configuration on first call.
func (a *App) Provider(ctx context.Context) (llm.Provider, error) {
	a.once.Do(func() {
		if a.provider != nil {
			return
		}
		a.provider, a.providerErr = llm.NewProviderFromEnv(ctx, a.Config.LLM, a.Store.EventRepo(), a.Logger)
	})
	return a.provider, a.providerErr
}

// Generator returns a roadmap generator over the configured provider.
func (a *App) Generator(ctx context.Context) (*roadmapgen.Generator, error) {
	p, err := a.Provider(ctx)
	if err != nil {
		return nil, fmt.Errorf("LLM provider not configured: %w", err)
	}
	return roadmapgen.New(p, a.Config.Generation, a.Logger)
}

// Close releases backends in reverse open order.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
