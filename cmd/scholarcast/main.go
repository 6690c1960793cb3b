// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the scholarcast CLI.
// See docs/ARCHITECTURE § Pipeline Interface, § Project Structure.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/scholarcast/internal/secrets"
	"github.com/pdiddy/scholarcast/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns the secret value for key if it exists, or fallback otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the scholarcast CLI.
var rootCmd = &cobra.Command{
	Use:   "scholarcast",
	Short: "Research podcast pipeline for academic papers",
	Long: `scholarcast turns a research query into a narrated briefing: it fetches
academic papers, extracts and summarizes their content, embeds the summaries
for similarity search, synthesizes audio, and caches the results locally.

Each operation is a subcommand: search runs the full pipeline, report adds
an aggregate narrated report, papers inspects the local cache, similar finds
related papers, and cleanup sweeps expired audio files.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
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

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./scholarcast.yaml or ~/.config/scholarcast/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("scholarcast")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "scholarcast"))
		}
	}

	viper.SetEnvPrefix("SCHOLARCAST")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// pipelineConfig assembles the full pipeline configuration from the config
// file, environment, and loaded secrets. Stage defaults live with the
// stages; only cross-cutting values are resolved here.
func pipelineConfig() types.PipelineConfig {
	viper.SetDefault("fetch.enable_arxiv", true)
	viper.SetDefault("fetch.enable_semantic_scholar", true)
	viper.SetDefault("fetch.max_results", 5)
	viper.SetDefault("summary.model", "claude-sonnet-4-5-20250929")
	viper.SetDefault("embedding.model", "text-embedding-3-small")
	viper.SetDefault("audio.model", "tts-1")
	viper.SetDefault("audio.voice", "alloy")
	viper.SetDefault("audio.storage_dir", filepath.Join("tmp", "audio"))
	viper.SetDefault("audio.cleanup_horizon", "24h")
	viper.SetDefault("store.cache_dir", "cache")
	viper.SetDefault("max_concurrent", 3)
	viper.SetDefault("use_fallbacks", true)

	horizon, err := time.ParseDuration(viper.GetString("audio.cleanup_horizon"))
	if err != nil {
		horizon = 24 * time.Hour
	}

	return types.PipelineConfig{
		Validation: types.ValidationConfig{
			MaxQueryLength: viper.GetInt("validation.max_query_length"),
			ScorerURL:      viper.GetString("validation.scorer_url"),
			ScorerAPIKey:   secretDefault("scorer-api-key", viper.GetString("validation.scorer_api_key")),
		},
		Fetch: types.FetchConfig{
			MaxResults:            viper.GetInt("fetch.max_results"),
			EnableArxiv:           viper.GetBool("fetch.enable_arxiv"),
			EnableSemanticScholar: viper.GetBool("fetch.enable_semantic_scholar"),
			SemanticScholarAPIKey: secretDefault("semantic-scholar-api-key", viper.GetString("fetch.semantic_scholar_api_key")),
			InterBackendDelay:     viper.GetDuration("fetch.inter_backend_delay"),
		},
		Extraction: types.ExtractionConfig{
			PdftotextPath: viper.GetString("extraction.pdftotext_path"),
			MaxChars:      viper.GetInt("extraction.max_chars"),
		},
		Summary: types.SummaryConfig{
			AIConfig: types.AIConfig{
				Model:      viper.GetString("summary.model"),
				APIKey:     secretDefault("anthropic-api-key", viper.GetString("summary.api_key")),
				MaxRetries: viper.GetInt("summary.max_retries"),
			},
			MaxPromptChars:        viper.GetInt("summary.max_prompt_chars"),
			FallbackImportanceMin: viper.GetInt("summary.fallback_importance_min"),
			FallbackImportanceMax: viper.GetInt("summary.fallback_importance_max"),
		},
		Embedding: types.EmbeddingConfig{
			Model:     viper.GetString("embedding.model"),
			APIKey:    secretDefault("openai-api-key", viper.GetString("embedding.api_key")),
			Dimension: viper.GetInt("embedding.dimension"),
		},
		Audio: types.AudioConfig{
			Model:          viper.GetString("audio.model"),
			Voice:          viper.GetString("audio.voice"),
			APIKey:         secretDefault("openai-api-key", viper.GetString("audio.api_key")),
			StorageDir:     viper.GetString("audio.storage_dir"),
			CleanupHorizon: horizon,
			WordsPerMinute: viper.GetInt("audio.words_per_minute"),
		},
		Store: types.StoreConfig{
			CacheDir:   viper.GetString("store.cache_dir"),
			MaxResults: viper.GetInt("store.max_results"),
		},
		MaxConcurrent: viper.GetInt("max_concurrent"),
		UseFallbacks:  viper.GetBool("use_fallbacks"),
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
