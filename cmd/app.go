package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dhabedank/strategem/internal/config"
	"github.com/dhabedank/strategem/internal/core"
	"github.com/dhabedank/strategem/internal/frameworks"
	"github.com/dhabedank/strategem/internal/llm"
	"github.com/dhabedank/strategem/internal/logging"
	"github.com/dhabedank/strategem/internal/service"
	"github.com/dhabedank/strategem/internal/store"
)

// Flags shared by every command that reads configuration.
var (
	configFile  string
	llmProvider string
	llmModel    string
)

func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "Config file (default: ./.strategem.yaml or ~/.strategem.yaml)")
}

func addLLMFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&llmProvider, "llm", "", "LLM provider: "+fmt.Sprint(llm.Providers))
	cmd.Flags().StringVar(&llmModel, "model", "", "Model to use (provider default if empty)")
}

// app holds the wired components for one command invocation.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	catalog  *frameworks.Catalog
	registry *core.Registry
	store    store.Store
	service  *service.AnalysisService
	model    string
}

// loadConfig reads the config file and env, then applies explicitly set
// flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if f := cmd.Flags().Lookup("llm"); f != nil && f.Changed {
		cfg.LLM.Provider = llmProvider
	}
	if f := cmd.Flags().Lookup("model"); f != nil && f.Changed {
		cfg.LLM.Model = llmModel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newApp wires config, logging, frameworks and storage. The LLM adapter is
// only built when withLLM is set so read-only commands work offline.
func newApp(ctx context.Context, cmd *cobra.Command, withLLM bool) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	if cfg.File != "" {
		logger.Debug("loaded config", zap.String("file", cfg.File))
	}

	catalog, err := frameworks.Load(cfg.Frameworks.File)
	if err != nil {
		return nil, err
	}
	registry, err := catalog.Registry()
	if err != nil {
		return nil, fmt.Errorf("registering frameworks: %w", err)
	}

	a := &app{cfg: cfg, logger: logger, catalog: catalog, registry: registry}
	if !withLLM {
		return a, nil
	}

	adapter, err := llm.New(ctx, cfg.LLM.Adapter())
	if err != nil {
		return nil, err
	}
	a.model = cfg.LLM.Model
	if a.model == "" {
		a.model = adapter.Name()
	}
	logger.Debug("using LLM adapter", zap.String("adapter", adapter.Name()), zap.String("model", a.model))

	runner := core.NewRunner(adapter, core.RunnerConfig{
		SystemPrompt: catalog.SystemPrompt,
		CallTimeout:  cfg.LLM.Timeout(),
	}, logger)
	coordinator := core.NewCoordinator(registry, runner, logger)

	if err := a.openStore(); err != nil {
		return nil, err
	}
	a.service = service.New(registry, coordinator, a.store, logger, service.Options{
		DefaultFrameworks: cfg.Frameworks.Default,
	})
	return a, nil
}

func (a *app) openStore() error {
	if a.store != nil {
		return nil
	}
	st, err := store.Open(a.cfg.Storage, a.logger)
	if err != nil {
		return err
	}
	a.store = st
	return nil
}

func (a *app) Close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("closing store", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
