package app

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ent0n29/realtybot/internal/brain"
	"github.com/ent0n29/realtybot/internal/config"
	"github.com/ent0n29/realtybot/internal/dialogue"
	"github.com/ent0n29/realtybot/internal/httpapi"
	"github.com/ent0n29/realtybot/internal/leads"
	"github.com/ent0n29/realtybot/internal/listing"
	"github.com/ent0n29/realtybot/internal/observability"
	"github.com/ent0n29/realtybot/internal/persist"
	"github.com/ent0n29/realtybot/internal/reply"
	"github.com/ent0n29/realtybot/internal/session"
	"github.com/ent0n29/realtybot/internal/voice"
)

type BuildResult struct {
	Config   config.Config
	API      *httpapi.Server
	Hub      *dialogue.Hub
	Sessions *session.Manager
	Leads    leads.Store
	Metrics  *observability.Metrics
	Voice    VoiceInfo

	// Cleanup should be called on shutdown to flush queued writes and
	// release storage handles.
	Cleanup func() error
}

// Build wires the chat service from cfg. metrics may be nil, in which case
// instruments are registered on the default registry.
func Build(ctx context.Context, cfg config.Config, logger *zap.Logger, metrics *observability.Metrics) (*BuildResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = observability.NewMetrics(cfg.MetricsNamespace)
	}

	searcher, err := listing.NewSearcher(cfg.ListingSearchURL, cfg.ListingCatalogPath, cfg.SearchTimeout)
	if err != nil {
		return nil, fmt.Errorf("listing search init failed: %w", err)
	}

	ai, err := brain.NewAdapter(brain.Config{
		Mode:          cfg.AIFallbackMode,
		HTTPURL:       cfg.AIFallbackHTTPURL,
		HTTPStrict:    cfg.AIFallbackStrict,
		OpenAIAPIKey:  cfg.OpenAIAPIKey,
		OpenAIModel:   cfg.OpenAIModel,
		OpenAIBaseURL: cfg.OpenAIBaseURL,
		Timeout:       cfg.AITimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("ai fallback init failed: %w", err)
	}

	leadStore, err := leads.NewStore(ctx, leads.Config{
		Backend:     cfg.LeadStore,
		DatabaseURL: cfg.DatabaseURL,
		SQLitePath:  cfg.LeadSQLitePath,
	})
	if err != nil {
		return nil, fmt.Errorf("lead store init failed: %w", err)
	}

	store, err := persist.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		_ = leadStore.Close()
		return nil, fmt.Errorf("session storage init failed: %w", err)
	}
	if err := store.Init(ctx); err != nil {
		_ = store.Close()
		_ = leadStore.Close()
		return nil, fmt.Errorf("session storage init failed: %w", err)
	}
	writer := persist.NewWriter(store, persist.WriterOptions{
		Timeout:  cfg.StorageTimeout,
		Logger:   logger.Named("persist"),
		Failures: metrics.StorageFailures,
	})

	speech, err := resolveSpeech(cfg, logger, metrics)
	if err != nil {
		writer.Close()
		_ = store.Close()
		_ = leadStore.Close()
		return nil, err
	}

	generator := reply.NewGenerator(ai, reply.Options{
		AITimeout: cfg.AITimeout,
		Logger:    logger.Named("reply"),
		Metrics:   metrics,
	})

	sessions := session.NewManager(cfg.SessionInactivityTimeout)
	hub := dialogue.NewHub(sessions, dialogue.Deps{
		Searcher:      searcher,
		Leads:         leadStore,
		Replies:       generator,
		Store:         store,
		Writer:        writer,
		Speaker:       speech.speaker,
		Logger:        logger.Named("dialogue"),
		Metrics:       metrics,
		SearchTimeout: cfg.SearchTimeout,
		LeadTimeout:   cfg.LeadTimeout,
		SearchLimit:   cfg.SearchLimit,
	})

	api := httpapi.New(cfg, hub, metrics, logger.Named("http"))
	if pinger, ok := store.(persist.Pinger); ok {
		api.Ready = pinger.Ping
	}

	cleanup := func() error {
		var errs []string
		if speech.speaker != nil {
			speech.speaker.Close()
		}
		// The writer drains before its store closes.
		writer.Close()
		if err := store.Close(); err != nil {
			errs = append(errs, err.Error())
		}
		if err := leadStore.Close(); err != nil {
			errs = append(errs, err.Error())
		}
		if len(errs) > 0 {
			return fmt.Errorf("%s", strings.Join(errs, "; "))
		}
		return nil
	}

	return &BuildResult{
		Config:   cfg,
		API:      api,
		Hub:      hub,
		Sessions: sessions,
		Leads:    leadStore,
		Metrics:  metrics,
		Voice:    speech.info,
		Cleanup:  cleanup,
	}, nil
}
