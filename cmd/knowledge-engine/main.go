// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the knowledge-engine CLI: triple
// extraction, evolutionary scoring, report merging, and the cross-run
// registry.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/knowledge-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the knowledge-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "knowledge-engine",
	Short: "Extract and evolve knowledge triples from document corpora",
	Long: `knowledge-engine ingests documents, extracts subject-predicate-object
triples through a lexical rule catalogue, links them into a relationship
graph, applies generational survival scoring, and aggregates harmonic
signatures into a single run report.

Each stage of the pipeline runs inside one batch execution (run); reports
from independent runs can be merged, dedup-checked, and registered.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./knowledge-engine.yaml or ~/.config/knowledge-engine/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("knowledge-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "knowledge-engine"))
		}
	}

	viper.SetEnvPrefix("KNOWLEDGE_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// engineConfig assembles the stage configuration from the config file,
// with zero values meaning "use the stage default".
func engineConfig() types.EngineConfig {
	return types.EngineConfig{
		Normalize: types.NormalizeConfig{
			MinSizeBytes: viper.GetInt64("normalize.min_size_bytes"),
		},
		Extraction: types.ExtractionConfig{
			CataloguePath: viper.GetString("extraction.catalogue_path"),
			Workers:       viper.GetInt("extraction.workers"),
		},
		Evolution: types.EvolutionConfig{
			Generations:       viper.GetInt("evolution.generations"),
			OptimalMin:        viper.GetInt("evolution.optimal_min"),
			OptimalMax:        viper.GetInt("evolution.optimal_max"),
			IsolationPenalty:  viper.GetFloat64("evolution.isolation_penalty"),
			OptimalBonus:      viper.GetFloat64("evolution.optimal_bonus"),
			OvercrowdPenalty:  viper.GetFloat64("evolution.overcrowd_penalty"),
			SurvivalThreshold: viper.GetFloat64("evolution.survival_threshold"),
		},
		Store: types.StoreConfig{
			StoreDir: viper.GetString("store.store_dir"),
		},
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
