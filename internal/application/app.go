// Package application wires configuration into the running components
// shared by the server, the CLI and the Cloud Function.
package application

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/pep299/american-standard/internal/config"
	"github.com/pep299/american-standard/internal/handlers"
	"github.com/pep299/american-standard/internal/llm"
	"github.com/pep299/american-standard/internal/logging"
	"github.com/pep299/american-standard/internal/metrics"
	"github.com/pep299/american-standard/internal/pipeline"
	"github.com/pep299/american-standard/internal/repository"
	"github.com/pep299/american-standard/internal/service"
	"github.com/pep299/american-standard/internal/slack"
	"github.com/pep299/american-standard/internal/store"
)

// Application holds every wired component
type Application struct {
	Config     *config.Config
	Logger     *zap.Logger
	Store      store.Store
	Repository *repository.Repository
	Generator  *pipeline.Generator
	Editions   *service.Editions
	Metrics    *metrics.Metrics
}

// Load reads configuration, builds the logger and wires the application
func Load(ctx context.Context) (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	return New(ctx, cfg, logger)
}

// New creates the application from cfg
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Application, error) {
	logger = logging.OrNop(logger)

	kv, err := store.New(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("creating store: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	timeout := time.Duration(cfg.ModelTimeout) * time.Second
	search := llm.Observed(llm.NewXAIClient(llm.XAIConfig{
		APIKey:  cfg.XAIAPIKey,
		Model:   cfg.XAIModel,
		BaseURL: cfg.XAIBaseURL,
		Timeout: timeout,
	}), config.ProviderXAI, m)

	editor := newEditor(cfg, timeout, m, logger)

	generator := pipeline.New(search, editor, pipeline.OptionsFromConfig(cfg.Pipeline), logger,
		pipeline.WithStageObserver(m),
	)

	repo := repository.New(kv, logger)

	opts := []service.Option{
		service.WithRecorder(m),
		service.WithTimeout(time.Duration(cfg.GenerationTimeout) * time.Second),
	}
	if cfg.SlackConfigured() {
		opts = append(opts, service.WithNotifier(slack.NewClient(cfg.SlackBotToken, cfg.SlackChannel, cfg.SiteURL)))
	}
	editions := service.NewEditions(repo, generator, cfg.ModelConfigured(), logger, opts...)

	logger.Info("application ready",
		zap.String("store", kv.Name()),
		zap.Bool("model_configured", cfg.ModelConfigured()),
		zap.Bool("slack_configured", cfg.SlackConfigured()),
		zap.String("editor", editorName(cfg)),
	)

	return &Application{
		Config:     cfg,
		Logger:     logger,
		Store:      kv,
		Repository: repo,
		Generator:  generator,
		Editions:   editions,
		Metrics:    m,
	}, nil
}

// newEditor returns the gateway for the review call, or nil to reuse the
// search gateway
func newEditor(cfg *config.Config, timeout time.Duration, obs llm.Observer, logger *zap.Logger) llm.Gateway {
	var key string
	var gateway llm.Gateway
	switch cfg.EditorProvider {
	case config.ProviderAnthropic:
		key = cfg.AnthropicAPIKey
		gateway = llm.NewAnthropicClient(llm.AnthropicConfig{
			APIKey:  cfg.AnthropicAPIKey,
			Model:   cfg.AnthropicModel,
			Timeout: timeout,
		})
	case config.ProviderGemini:
		key = cfg.GeminiAPIKey
		gateway = llm.NewGeminiClient(llm.GeminiConfig{
			APIKey:  cfg.GeminiAPIKey,
			Model:   cfg.GeminiModel,
			Timeout: timeout,
		})
	default:
		return nil
	}

	if key == "" {
		logger.Warn("editor provider has no API key, review will be skipped",
			zap.String("provider", cfg.EditorProvider))
	}
	return llm.Observed(gateway, cfg.EditorProvider, obs)
}

func editorName(cfg *config.Config) string {
	if cfg.EditorProvider == "" {
		return config.ProviderXAI
	}
	return cfg.EditorProvider
}

// Handler returns the HTTP router
func (a *Application) Handler() http.Handler {
	return handlers.NewServer(a.Config, a.Repository, a.Editions, a.Metrics, a.Logger).SetupRoutes()
}

// Close releases the store and flushes the logger
func (a *Application) Close() error {
	err := a.Store.Close()
	_ = a.Logger.Sync() // fails on stderr for some platforms
	return err
}
