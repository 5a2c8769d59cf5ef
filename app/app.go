// Package app builds the catalog, narrator and coordinator from environment
// configuration. The server, the CLI and the Lambda handler all start here.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joeshaw/envdecode"

	"ecovalley"
	"ecovalley/analysis"
	"ecovalley/catalog"
	"ecovalley/catalog/storage"
	"ecovalley/coordinator"
	"ecovalley/narrator"
	"ecovalley/narrator/anthropic"
	"ecovalley/narrator/bedrock"
	"ecovalley/narrator/mock"
	"ecovalley/narrator/ollama"
	"ecovalley/slack"
)

// Catalog sources.
const (
	SourceFile   = "file"
	SourceS3     = "s3"
	SourceSQLite = "sqlite"
)

// Narrator providers.
const (
	ProviderBedrock   = "bedrock"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
	ProviderMock      = "mock"
)

// Stage log modes.
const (
	StageLogNone   = "none"
	StageLogStdout = "stdout"
	StageLogFile   = "file"
)

type Config struct {
	Narrator ecovalley.NarratorConfig
	Agent    ecovalley.AgentConfig
	Server   ecovalley.ServerConfig
}

// LoadConfig decodes every configuration group from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg.Narrator); err != nil {
		return Config{}, fmt.Errorf("failed to decode narrator config: %w", err)
	}
	if err := envdecode.Decode(&cfg.Agent); err != nil {
		return Config{}, fmt.Errorf("failed to decode agent config: %w", err)
	}
	if err := envdecode.Decode(&cfg.Server); err != nil {
		return Config{}, fmt.Errorf("failed to decode server config: %w", err)
	}
	return cfg, nil
}

type App struct {
	Config      Config
	Catalog     *catalog.Catalog
	Narrator    ecovalley.Narrator
	Coordinator *coordinator.Coordinator
	// Slack is nil when no webhook is configured.
	Slack ecovalley.SlackClient

	closers []func() error
}

// Overrides replaces parts of the wiring, mostly for tests and the Lambda
// handler.
type Overrides struct {
	Catalog     *catalog.Catalog
	Narrator    ecovalley.Narrator
	StageLogger ecovalley.StageLogger
	HTTPClient  ecovalley.HTTPClient
}

// New wires a ready to serve App. Any failure is an ecovalley.ErrInitialization.
func New(ctx context.Context, cfg Config, ov Overrides) (*App, error) {
	a := &App{Config: cfg}

	cat := ov.Catalog
	if cat == nil {
		var err error
		if cat, err = NewCatalog(ctx, cfg.Agent); err != nil {
			return nil, err
		}
	}
	a.Catalog = cat

	httpClient := ov.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	n := ov.Narrator
	if n == nil {
		backend, err := NewNarrator(ctx, cfg.Narrator, httpClient)
		if err != nil {
			return nil, err
		}
		n = narrator.NewGuard(backend, narrator.GuardConfig{
			Provider:      cfg.Narrator.Provider,
			Timeout:       cfg.Narrator.Timeout,
			RatePerSecond: cfg.Narrator.RatePerSecond,
			Burst:         cfg.Narrator.Burst,
		})
	}
	a.Narrator = n

	stageLogger := ov.StageLogger
	if stageLogger == nil {
		sl, closer, err := NewStageLogger(cfg.Agent.StageLog, ".")
		if err != nil {
			return nil, err
		}
		stageLogger = sl
		a.closers = append(a.closers, closer)
	}

	opts := analysis.NarrativeOptions{
		Temperature: cfg.Narrator.Temperature,
		MaxTokens:   cfg.Narrator.MaxTokens,
	}
	if opts.MaxTokens == 0 {
		opts = analysis.DefaultNarrativeOptions()
	}

	coord, err := coordinator.New(cat, coordinator.Stages{
		Environmental:  analysis.NewEnvironmentalScorer(cat, n, opts),
		Cost:           analysis.NewCostAnalyzer(cat, n, opts),
		Recommendation: analysis.NewRecommendationEngine(cat, n, opts),
	}, coordinator.Options{
		HistoryLimit: cfg.Agent.HistoryLimit,
		StageLogger:  stageLogger,
	})
	if err != nil {
		return nil, ecovalley.Initialization("build coordinator", err)
	}
	a.Coordinator = coord

	if cfg.Server.SlackWebhookURL != "" {
		a.Slack = slack.NewClient(cfg.Server.SlackWebhookURL, httpClient)
	}

	slog.Info("SETUP: Ready",
		"catalog_source", cfg.Agent.CatalogSource,
		"materials", cat.Len(),
		"narrator", cfg.Narrator.Provider,
		"history_limit", cfg.Agent.HistoryLimit,
	)
	return a, nil
}

// Notify posts a summary of resp to Slack when a webhook is configured.
func (a *App) Notify(ctx context.Context, resp ecovalley.CoordinatorResponse) error {
	if a.Slack == nil {
		return nil
	}
	return slack.Notify(ctx, a.Slack, a.Config.Server.SlackChannel, resp)
}

// Close flushes the stage log.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// AllowedOrigins splits the comma separated CORS origin list.
func (c Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.Server.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// NewCatalog loads the catalog from the configured source.
func NewCatalog(ctx context.Context, cfg ecovalley.AgentConfig) (*catalog.Catalog, error) {
	switch strings.ToLower(cfg.CatalogSource) {
	case SourceFile, "":
		return catalog.Load(ctx, storage.NewFileState(cfg.CatalogPath), catalog.FormatFromPath(cfg.CatalogPath))
	case SourceS3:
		if cfg.CatalogS3Bucket == "" || cfg.CatalogS3Key == "" {
			return nil, ecovalley.Initialization("catalog", errors.New("CATALOG_S3_BUCKET and CATALOG_S3_KEY must be set"))
		}
		awsCfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, ecovalley.Initialization("load AWS config", err)
		}
		state := storage.NewS3State(s3.NewFromConfig(awsCfg), cfg.CatalogS3Bucket, cfg.CatalogS3Key)
		return catalog.Load(ctx, state, catalog.FormatFromPath(cfg.CatalogS3Key))
	case SourceSQLite:
		return catalog.OpenSQLite(ctx, cfg.CatalogSQLitePath, cfg.CatalogSQLiteTable)
	default:
		return nil, ecovalley.Initialization("catalog", fmt.Errorf("unknown catalog source %q", cfg.CatalogSource))
	}
}

// NewNarrator builds the configured backend without the guard.
func NewNarrator(ctx context.Context, cfg ecovalley.NarratorConfig, httpClient ecovalley.HTTPClient) (ecovalley.Narrator, error) {
	switch strings.ToLower(cfg.Provider) {
	case ProviderBedrock, "":
		awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRetryMaxAttempts(5))
		if err != nil {
			return nil, ecovalley.Initialization("load AWS config", err)
		}
		return bedrock.NewNarrator(bedrockruntime.NewFromConfig(awsCfg), bedrock.Options{
			ModelID:     cfg.ModelID,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			TopP:        cfg.TopP,
		}), nil
	case ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, ecovalley.Initialization("narrator", errors.New("ANTHROPIC_API_KEY must be set"))
		}
		return anthropic.NewNarrator(cfg.AnthropicAPIKey, anthropic.Options{
			Model:       cfg.ModelID,
			MaxTokens:   int64(cfg.MaxTokens),
			Temperature: float64(cfg.Temperature),
		}), nil
	case ProviderOllama:
		n, err := ollama.NewNarrator(ollama.Opts{
			BaseEndpoint: cfg.OllamaEndpoint,
			ModelID:      cfg.ModelID,
			TopP:         cfg.TopP,
			HTTPClient:   httpClient,
		})
		if err != nil {
			return nil, ecovalley.Initialization("narrator", err)
		}
		return n, nil
	case ProviderMock:
		return mock.NewNarrator(), nil
	default:
		return nil, ecovalley.Initialization("narrator", fmt.Errorf("unknown narrator provider %q", cfg.Provider))
	}
}

// NewStageLogger returns the logger for mode and a closer that flushes it.
// File logs are written under dir.
func NewStageLogger(mode, dir string) (ecovalley.StageLogger, func() error, error) {
	noop := func() error { return nil }

	switch strings.ToLower(mode) {
	case StageLogNone, "":
		return ecovalley.NewNoOpStageLogger(), noop, nil
	case StageLogStdout:
		return ecovalley.NewStdoutStageLogger(), noop, nil
	case StageLogFile:
		path := ecovalley.NewStageLogFilePath(dir)
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			return nil, noop, ecovalley.Initialization("open stage log", err)
		}
		logger := ecovalley.NewFileStageLogger(f)
		closer := func() error {
			return errors.Join(logger.Flush(), f.Close())
		}
		return logger, closer, nil
	default:
		return nil, noop, ecovalley.Initialization("stage log", fmt.Errorf("unknown stage log mode %q", mode))
	}
}
