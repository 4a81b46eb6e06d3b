package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nexsupply/nexi"
	"github.com/nexsupply/nexi/internal/config"
	"github.com/nexsupply/nexi/pkg/adapters/file"
	"github.com/nexsupply/nexi/pkg/adapters/gemini"
	"github.com/nexsupply/nexi/pkg/adapters/memory"
	"github.com/nexsupply/nexi/pkg/adapters/redis"
	"github.com/nexsupply/nexi/pkg/analysis"
	"github.com/nexsupply/nexi/pkg/compliance"
	"github.com/nexsupply/nexi/pkg/flow"
	"github.com/nexsupply/nexi/pkg/persistence/middleware"
	"github.com/nexsupply/nexi/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
)

// storage is the conversation store selected by the configuration, plus
// the Redis-backed companions when Redis is enabled.
type storage struct {
	store   ports.ConversationStore
	redis   *redis.Store
	closeFn func() error
}

func (s *storage) Close() error {
	if s.closeFn == nil {
		return nil
	}
	return s.closeFn()
}

// openStorage connects to Redis when an address is configured, then
// tries the file store and falls back to process memory. The chosen store
// is wrapped with PII masking and encryption when configured.
func openStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*storage, error) {
	st, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	mws, err := storeMiddleware(cfg.Store)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	if len(mws) > 0 {
		st.store = middleware.Chain(st.store, mws...)
		logger.Info("conversation store protected",
			"pii_patterns", len(cfg.Store.PIINodes),
			"encrypted", cfg.Store.EncryptionKey != "")
	}
	return st, nil
}

func openBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*storage, error) {
	if cfg.Redis.Enabled() {
		store := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, redis.WithTTL(cfg.Redis.ConversationTTL))
		if err := store.Client().Ping(ctx).Err(); err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.Redis.Addr, err)
		}
		logger.Info("using redis storage", "addr", cfg.Redis.Addr, "db", cfg.Redis.DB)
		return &storage{store: store, redis: store, closeFn: store.Close}, nil
	}
	if cfg.Store.Dir != "" {
		logger.Info("using file storage", "dir", cfg.Store.Dir)
		return &storage{store: file.New(cfg.Store.Dir)}, nil
	}
	logger.Info("using in-memory storage")
	return &storage{store: memory.NewStore()}, nil
}

// storeMiddleware masks first so the sealed envelope never holds PII.
func storeMiddleware(cfg config.StoreConfig) ([]middleware.Middleware, error) {
	var mws []middleware.Middleware
	if len(cfg.PIINodes) > 0 {
		mw, err := middleware.NewPIIMiddleware(cfg.PIINodes)
		if err != nil {
			return nil, err
		}
		mws = append(mws, mw)
	}
	if cfg.EncryptionKey != "" {
		enc := middleware.EncryptionConfig{}
		key, err := middleware.ParseKey(cfg.EncryptionKey)
		if err != nil {
			return nil, err
		}
		enc.ActiveKey = key
		for _, s := range cfg.FallbackKeys {
			k, err := middleware.ParseKey(s)
			if err != nil {
				return nil, fmt.Errorf("fallback %w", err)
			}
			enc.FallbackKeys = append(enc.FallbackKeys, k)
		}
		mw, err := middleware.NewEncryptionMiddleware(enc)
		if err != nil {
			return nil, err
		}
		mws = append(mws, mw)
	}
	return mws, nil
}

// loadGraph returns the configured flow file or the embedded sourcing graph.
func loadGraph(path string) (*flow.Graph, error) {
	if path == "" {
		return flow.Sourcing(), nil
	}
	return flow.Load(path)
}

// buildService wires a Service from cfg. reg may be nil to skip metrics.
func buildService(ctx context.Context, cfg *config.Config, logger *slog.Logger, st *storage, reg prometheus.Registerer) (*nexi.Service, error) {
	graph, err := loadGraph(cfg.FlowPath)
	if err != nil {
		return nil, err
	}

	entries, err := compliance.Load(cfg.BlacklistPaths...)
	switch {
	case errors.Is(err, compliance.ErrNoDataset):
		logger.Warn("no blacklist dataset found, compliance gate passes everything", "paths", cfg.BlacklistPaths)
	case err != nil:
		return nil, err
	default:
		logger.Info("blacklist loaded", "entries", len(entries))
	}

	opts := []nexi.Option{
		nexi.WithLogger(logger),
		nexi.WithGraph(graph),
		nexi.WithBlacklist(entries),
		nexi.WithConversationStore(st.store),
		nexi.WithDefaultOrigin(cfg.DefaultOrigin),
		nexi.WithMaxInputSize(cfg.MaxInputSize),
		nexi.WithLimitSink(memory.NewLimitLog()),
	}
	if reg != nil {
		opts = append(opts, nexi.WithMetrics(analysis.NewMetrics(reg)))
	}

	if st.redis != nil {
		client := st.redis.Client()
		opts = append(opts,
			nexi.WithLocker(redis.NewLocker(client, redis.DefaultPrefix)),
			nexi.WithResults(redis.NewResultStore(client, redis.WithResultTTL(cfg.Redis.ResultTTL))),
			nexi.WithQuota(redis.NewQuotaLimiter(client, cfg.Quota.UserDaily, cfg.Quota.AnonymousDaily)),
		)
	} else {
		opts = append(opts, nexi.WithQuota(memory.NewQuotaLimiter(cfg.Quota.UserDaily, cfg.Quota.AnonymousDaily)))
	}

	if cfg.Gemini.APIKey == "" {
		logger.Warn("GEMINI_API_KEY is not set, analysis requests will fail with upstream_unavailable")
	} else {
		gopts := []gemini.Option{
			gemini.WithModel(cfg.Gemini.Model),
			gemini.WithTimeout(cfg.Gemini.Timeout),
			gemini.WithLogger(logger),
		}
		if cfg.Gemini.BaseURL != "" {
			gopts = append(gopts, gemini.WithBaseURL(cfg.Gemini.BaseURL))
		}
		est, err := gemini.New(ctx, cfg.Gemini.APIKey, gopts...)
		if err != nil {
			return nil, err
		}
		opts = append(opts, nexi.WithEstimator(est))
		logger.Info("estimator configured", "model", est.Model())
	}

	return nexi.New(opts...)
}
