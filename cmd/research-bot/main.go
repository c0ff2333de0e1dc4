// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the research-bot CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/researcherbot/research-bot/internal/agent"
	"github.com/researcherbot/research-bot/internal/pipeline"
	"github.com/researcherbot/research-bot/internal/researchlog"
	"github.com/researcherbot/research-bot/internal/secrets"
	"github.com/researcherbot/research-bot/internal/tools"
	"github.com/researcherbot/research-bot/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the research-bot CLI.
var rootCmd = &cobra.Command{
	Use:   "research-bot",
	Short: "Agentic web research with citations and a relevance-scored log",
	Long: `research-bot answers research questions by driving a tool-calling chat model
through a four-stage pipeline: clarify the question, research with web and
academic search tools, fact-check the draft, and format a final cited report.

Completed answers are appended to a JSON research log; later questions that
score as relevant against past ones can reuse prior answers instead of
searching again.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(secrets.DefaultDir)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./research-bot.yaml or ~/.config/research-bot/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("research-bot")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "research-bot"))
		}
	}

	viper.SetEnvPrefix("RESEARCH_BOT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("model.model", "llama3.2")
	viper.SetDefault("model.base_url", "http://localhost:11434")
	viper.SetDefault("model.temperature", 0.2)
	viper.SetDefault("model.max_turns", 10)
	viper.SetDefault("model.timeout", "120s")
	viper.SetDefault("log.path", researchlog.DefaultPath)
	viper.SetDefault("log.min_score", 0.4)
	viper.SetDefault("log.max_entries", 5)
	viper.SetDefault("tools.timeout", "12s")
	viper.SetDefault("tools.user_agent", "research-bot/"+version)
	viper.SetDefault("tools.max_results", 20)
	viper.SetDefault("tools.enable_web_search", true)
	viper.SetDefault("tools.enable_news_search", true)
	viper.SetDefault("tools.enable_arxiv", true)
	viper.SetDefault("tools.enable_semantic_scholar", true)

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig assembles the pipeline configuration from viper, filling the
// Semantic Scholar key from .secrets/ when not set elsewhere.
func loadConfig() types.PipelineConfig {
	cfg := types.PipelineConfig{
		Model: types.ModelConfig{
			Model:       viper.GetString("model.model"),
			BaseURL:     viper.GetString("model.base_url"),
			Temperature: viper.GetFloat64("model.temperature"),
			MaxTurns:    viper.GetInt("model.max_turns"),
			Timeout:     viper.GetDuration("model.timeout"),
		},
		Log: types.LogConfig{
			Path:       viper.GetString("log.path"),
			MinScore:   viper.GetFloat64("log.min_score"),
			MaxEntries: viper.GetInt("log.max_entries"),
		},
		Tools: types.ToolsConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("tools.timeout"),
				UserAgent: viper.GetString("tools.user_agent"),
			},
			MaxResults:            viper.GetInt("tools.max_results"),
			EnableWebSearch:       viper.GetBool("tools.enable_web_search"),
			EnableNewsSearch:      viper.GetBool("tools.enable_news_search"),
			EnableArxiv:           viper.GetBool("tools.enable_arxiv"),
			EnableSemanticScholar: viper.GetBool("tools.enable_semantic_scholar"),
			SemanticScholarAPIKey: viper.GetString("tools.semantic_scholar_api_key"),
		},
	}
	if cfg.Tools.SemanticScholarAPIKey == "" {
		cfg.Tools.SemanticScholarAPIKey = loadedSecrets[secrets.KeySemanticScholar]
	}
	return cfg
}

// app bundles the wired components behind the CLI commands.
type app struct {
	cfg      types.PipelineConfig
	store    *researchlog.Store
	agent    *agent.Agent
	pipeline *pipeline.Pipeline
}

// newApp wires the store, tool registry, agent, and pipeline from the
// loaded configuration.
func newApp() (*app, error) {
	cfg := loadConfig()

	store := researchlog.NewStore(cfg.Log)

	registry, err := tools.NewDefaultRegistry(cfg.Tools, store)
	if err != nil {
		return nil, fmt.Errorf("building tool registry: %w", err)
	}

	backend := &agent.OllamaBackend{Config: cfg.Model}
	researcher := agent.New(backend, registry, cfg.Model)

	return &app{
		cfg:      cfg,
		store:    store,
		agent:    researcher,
		pipeline: pipeline.New(backend, researcher, store),
	}, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
