// file: internal/config/config.go
// version: 1.3.0
// guid: 7b8c9d0e-1f2a-3b4c-5d6e-7f8a9b0c1d2e

package config

import (
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	DatabasePath string
	DatabaseType string // "pebble" (default) or "sqlite"
	EnableSQLite bool   // Must be true to use SQLite (safety flag)
	IndexPath    string // embedding index directory; empty keeps it in memory

	// Matching tunables (all overridable per request)
	MatchThreshold      float64  // τ: minimum fused score to report a match
	FuzzyMinLengthRatio float64  // fuzzy prefilter; skip pairs below this length ratio
	SemanticThreshold   float64  // minimum semantic similarity for the agreement boost
	SemanticBoost       float64  // added to the fused score on semantic agreement
	SemanticTopK        int      // semantic ranking depth per query
	Strategies          []string // strategies enabled by default

	// Collaborators
	OCREndpoint    string // base URL of the OCR provider; empty disables image queries
	ImportInboxDir string // watched directory for dropped CSV files; empty disables

	OpenAI struct {
		APIKey         string
		EmbeddingModel string
		Enabled        bool
	}
}

var AppConfig Config

// InitConfig initializes the application configuration
func InitConfig() {
	// Set defaults
	viper.SetDefault("database_type", "pebble")
	viper.SetDefault("enable_sqlite3_i_know_the_risks", false)
	viper.SetDefault("match_threshold", 0.80)
	viper.SetDefault("fuzzy_min_length_ratio", 0.5)
	viper.SetDefault("semantic_threshold", 0.75)
	viper.SetDefault("semantic_boost", 0.10)
	viper.SetDefault("semantic_top_k", 10)
	viper.SetDefault("strategies", []string{"lexical", "fuzzy", "semantic"})
	viper.SetDefault("openai.embedding_model", "text-embedding-3-small")

	AppConfig = Config{
		DatabasePath:        viper.GetString("database_path"),
		DatabaseType:        viper.GetString("database_type"),
		EnableSQLite:        viper.GetBool("enable_sqlite3_i_know_the_risks"),
		IndexPath:           viper.GetString("index_path"),
		MatchThreshold:      viper.GetFloat64("match_threshold"),
		FuzzyMinLengthRatio: viper.GetFloat64("fuzzy_min_length_ratio"),
		SemanticThreshold:   viper.GetFloat64("semantic_threshold"),
		SemanticBoost:       viper.GetFloat64("semantic_boost"),
		SemanticTopK:        viper.GetInt("semantic_top_k"),
		Strategies:          viper.GetStringSlice("strategies"),
		OCREndpoint:         viper.GetString("ocr_endpoint"),
		ImportInboxDir:      viper.GetString("import_inbox_dir"),
	}

	// OpenAI embedding backend
	AppConfig.OpenAI.APIKey = viper.GetString("openai.api_key")
	AppConfig.OpenAI.EmbeddingModel = viper.GetString("openai.embedding_model")
	AppConfig.OpenAI.Enabled = viper.GetBool("openai.enabled")

	// Normalize database type
	if AppConfig.DatabaseType == "sqlite3" {
		AppConfig.DatabaseType = "sqlite"
	}
	if AppConfig.DatabaseType == "" {
		AppConfig.DatabaseType = "pebble"
	}
}
