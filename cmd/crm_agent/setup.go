package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/canpog/realestate-app-sub000/internal/config"
	"github.com/canpog/realestate-app-sub000/internal/llm"
	"github.com/canpog/realestate-app-sub000/internal/obs"
)

// loadConfig merges the --config file, defaults and the environment, in
// increasing priority.
func loadConfig() (config.Config, error) {
	cfg := config.Defaults()
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded.MergeWithDefaults(config.Defaults())
	}

	cfg, err := cfg.FromEnv()
	if err != nil {
		return cfg, err
	}
	if verbose {
		cfg.Verbose = true
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// newModelClient builds the retrying model client. Tests replace it.
var newModelClient = func(ctx context.Context, cfg config.Config, logger *slog.Logger) (llm.Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable or api_key config is required")
	}
	llmCfg := llm.DefaultConfig()
	llmCfg.Provider = llm.Provider(cfg.LLMProvider)
	if timeout := cfg.LLMTimeout(); timeout > 0 {
		llmCfg.Timeout = timeout
	}

	client, err := llm.NewClient(ctx, llmCfg, cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return llm.NewRetryingClient(client, logger), nil
}

func cliLogger(cfg config.Config) *slog.Logger {
	return obs.NewCLILogger(cfg.Env, cfg.Verbose)
}
