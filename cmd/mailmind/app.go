package main

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mailmind-ai/mailmind/pkg/agent"
	"github.com/mailmind-ai/mailmind/pkg/audit"
	"github.com/mailmind-ai/mailmind/pkg/cache"
	cachesqlite "github.com/mailmind-ai/mailmind/pkg/cache/sqlite"
	"github.com/mailmind-ai/mailmind/pkg/config"
	"github.com/mailmind-ai/mailmind/pkg/gateway/ollama"
)

// app holds the explicitly wired pipeline components. Everything is
// constructed here at process start and torn down via close; nothing is
// a package-level singleton.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	store    cache.Store
	auditLog *audit.Logger
	pipeline *agent.Agent
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

// newApp loads config and wires the pipeline. A cache that cannot be
// opened degrades to the observable in-memory store rather than
// failing startup.
func newApp(configPath string) (*app, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	logger, err := newLogger(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	var store cache.Store
	if cfg.Cache.Enabled {
		durable, err := cachesqlite.New(cfg.Cache.Path)
		if err != nil {
			logger.Warn("cache unavailable, degrading to in-memory store",
				zap.String("path", cfg.Cache.Path), zap.Error(err))
			store = cache.NewMemoryStore()
		} else {
			store = durable
		}
	} else {
		store = cache.NewMemoryStore()
	}

	auditLog, err := audit.New(cfg.Audit.Path)
	if err != nil {
		store.Close()
		logger.Sync()
		return nil, fmt.Errorf("init interaction log: %w", err)
	}

	gw := ollama.New(ollama.Config{
		URL:        cfg.Ollama.URL,
		Timeout:    cfg.Ollama.Timeout,
		Confidence: cfg.Ollama.Confidence,
	}, logger)

	pipeline := agent.New(gw, store, auditLog, cfg.Cache.TTL, logger,
		agent.WithRetry(cfg.Ollama.RetryWait))

	return &app{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		auditLog: auditLog,
		pipeline: pipeline,
	}, nil
}

func (a *app) close() {
	if err := a.auditLog.Close(); err != nil {
		a.logger.Warn("close interaction log", zap.Error(err))
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("close cache", zap.Error(err))
	}
	_ = a.logger.Sync()
}
