// file: cmd/root.go
// version: 1.2.0
// guid: 6a7b8c9d-0e1f-2a3b-4c5d-6e7f8a9b0c1d

package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/answerbox/answerbox/internal/ai"
	"github.com/answerbox/answerbox/internal/config"
	"github.com/answerbox/answerbox/internal/database"
	"github.com/answerbox/answerbox/internal/engine"
	"github.com/answerbox/answerbox/internal/importer"
	"github.com/answerbox/answerbox/internal/matcher"
	"github.com/answerbox/answerbox/internal/ocr"
	"github.com/answerbox/answerbox/internal/semantic"
	"github.com/answerbox/answerbox/internal/server"
	"github.com/answerbox/answerbox/internal/watcher"
)

var cfgFile string
var databasePath string
var databaseType string
var enableSQLite bool
var indexPath string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "answerbox",
	Short: "Look up answers to known questions by fuzzy matching",
	Long: `Answerbox keeps a corpus of question/answer records and resolves
incoming questions against it with lexical, fuzzy, and semantic matching.

Questions arrive as text or screenshots (via an OCR provider); records are
added manually, through CSV import, or by dropping files into a watched
inbox directory.`,
}

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Resolve a question against the corpus",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, cleanup, err := buildEngine()
		if err != nil {
			return err
		}
		defer cleanup()

		threshold, _ := cmd.Flags().GetFloat64("threshold")
		strategies, _ := cmd.Flags().GetStringSlice("strategy")

		question := strings.Join(args, " ")
		decision, err := eng.Match(cmd.Context(), question, engine.Options{
			Strategies: strategies,
			Threshold:  threshold,
		})
		if err != nil {
			return err
		}

		if !decision.Matched {
			fmt.Println("No match.")
			return nil
		}
		fmt.Printf("Answer: %s\n", decision.Record.Answer)
		fmt.Printf("Matched: %q (score %.3f)\n", decision.Record.Question, decision.Score)
		for name, score := range decision.Scores {
			fmt.Printf("  %-9s %.3f\n", name, score)
		}
		return nil
	},
}

// addCmd represents the add command
var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a question/answer record",
	RunE: func(cmd *cobra.Command, args []string) error {
		question, _ := cmd.Flags().GetString("question")
		answer, _ := cmd.Flags().GetString("answer")
		if question == "" || answer == "" {
			return fmt.Errorf("both --question and --answer are required")
		}

		eng, cleanup, err := buildEngine()
		if err != nil {
			return err
		}
		defer cleanup()

		record, err := eng.Ingest(cmd.Context(), question, answer, database.SourceManual)
		if err != nil {
			return err
		}
		fmt.Printf("Added record %s\n", record.ID)
		return nil
	},
}

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import <file>...",
	Short: "Bulk import question/answer records from CSV or TSV files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, cleanup, err := buildEngine()
		if err != nil {
			return err
		}
		defer cleanup()

		im := importer.New(eng)
		total := importer.Result{}
		for _, path := range args {
			result, err := im.ImportFile(cmd.Context(), path)
			if err != nil {
				return fmt.Errorf("importing %s: %w", path, err)
			}
			fmt.Printf("%s: imported %d, skipped %d\n", path, result.Imported, result.Skipped)
			total.Imported += result.Imported
			total.Skipped += result.Skipped
		}
		fmt.Printf("Total: imported %d, skipped %d\n", total.Imported, total.Skipped)
		return nil
	},
}

// reindexCmd represents the reindex command
var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the embedding index from the record store",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, cleanup, err := buildEngine()
		if err != nil {
			return err
		}
		defer cleanup()

		fmt.Println("Rebuilding embedding index...")
		indexed, err := eng.Reindex(cmd.Context())
		if err != nil {
			return fmt.Errorf("reindex failed after %d records: %w", indexed, err)
		}
		fmt.Printf("Indexed %d records\n", indexed)
		return nil
	},
}

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Start the HTTP server exposing the ask, record, and import API.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, cleanup, err := buildEngine()
		if err != nil {
			return err
		}
		defer cleanup()

		fmt.Printf("Using database: %s (%s)\n", config.AppConfig.DatabasePath, config.AppConfig.DatabaseType)

		if inbox := config.AppConfig.ImportInboxDir; inbox != "" {
			if err := os.MkdirAll(inbox, 0755); err != nil {
				return fmt.Errorf("creating import inbox: %w", err)
			}
			im := importer.New(eng)
			w := watcher.New(func(dir string) {
				importInbox(im, dir)
			}, 0)
			if err := w.Start(inbox); err != nil {
				return fmt.Errorf("starting inbox watcher: %w", err)
			}
			defer w.Stop()
			fmt.Printf("Watching import inbox: %s\n", inbox)
		}

		srv := server.NewServer(eng, database.GlobalStore, ocr.NewClient(config.AppConfig.OCREndpoint))

		cfg := server.ServerConfig{
			Port:         "8080",
			Host:         "localhost",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		if port := cmd.Flag("port").Value.String(); port != "" {
			cfg.Port = port
		}
		if host := cmd.Flag("host").Value.String(); host != "" {
			cfg.Host = host
		}
		if rt := cmd.Flag("read-timeout").Value.String(); rt != "" {
			if d, err := time.ParseDuration(rt); err == nil {
				cfg.ReadTimeout = d
			}
		}
		if wt := cmd.Flag("write-timeout").Value.String(); wt != "" {
			if d, err := time.ParseDuration(wt); err == nil {
				cfg.WriteTimeout = d
			}
		}
		if it := cmd.Flag("idle-timeout").Value.String(); it != "" {
			if d, err := time.ParseDuration(it); err == nil {
				cfg.IdleTimeout = d
			}
		}

		return srv.Start(cfg)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return rootCmd.Execute()
}

// buildEngine initializes the store and assembles the matching engine with
// its collaborators from AppConfig. The returned cleanup closes the store.
func buildEngine() (*engine.Engine, func(), error) {
	if err := database.InitializeStore(config.AppConfig.DatabaseType, config.AppConfig.DatabasePath, config.AppConfig.EnableSQLite); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	embedder := ai.NewEmbedder(config.AppConfig.OpenAI.APIKey, config.AppConfig.OpenAI.EmbeddingModel, config.AppConfig.OpenAI.Enabled)

	var index *semantic.Index
	if embedder.IsEnabled() {
		var err error
		index, err = semantic.NewIndex(config.AppConfig.IndexPath, func(ctx context.Context, text string) ([]float32, error) {
			return embedder.EmbedText(ctx, text)
		})
		if err != nil {
			database.CloseStore()
			return nil, nil, err
		}
	}

	eng := engine.New(database.GlobalStore, embedder, index, engine.Config{
		Threshold:           config.AppConfig.MatchThreshold,
		FuzzyMinLengthRatio: config.AppConfig.FuzzyMinLengthRatio,
		SemanticThreshold:   config.AppConfig.SemanticThreshold,
		SemanticBoost:       config.AppConfig.SemanticBoost,
		SemanticTopK:        config.AppConfig.SemanticTopK,
		Strategies:          config.AppConfig.Strategies,
	})
	return eng, func() { database.CloseStore() }, nil
}

// importInbox imports every CSV/TSV file in dir, renaming processed files so
// they are not imported again.
func importInbox(im *importer.Importer, dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		fmt.Printf("Error reading inbox %s: %v\n", dir, err)
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || !watcher.IsImportFile(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if _, err := im.ImportFile(context.Background(), path); err != nil {
			fmt.Printf("Error importing %s: %v\n", path, err)
			continue
		}
		if err := os.Rename(path, path+".done"); err != nil {
			fmt.Printf("Error renaming %s: %v\n", path, err)
		}
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.answerbox.yaml)")
	rootCmd.PersistentFlags().StringVar(&databasePath, "db", "answerbox.pebble", "path to database (default: answerbox.pebble for PebbleDB)")
	rootCmd.PersistentFlags().StringVar(&databaseType, "db-type", "pebble", "database type: pebble (default) or sqlite")
	rootCmd.PersistentFlags().BoolVar(&enableSQLite, "enable-sqlite3-i-know-the-risks", false, "enable SQLite3 database (WARNING: cross-compilation issues, PebbleDB recommended)")
	rootCmd.PersistentFlags().StringVar(&indexPath, "index", "", "embedding index directory (default: in-memory)")
	rootCmd.PersistentFlags().String("ocr-endpoint", "", "base URL of the OCR provider")
	rootCmd.PersistentFlags().String("inbox", "", "watched import inbox directory")

	viper.BindPFlag("database_path", rootCmd.PersistentFlags().Lookup("db"))
	viper.BindPFlag("database_type", rootCmd.PersistentFlags().Lookup("db-type"))
	viper.BindPFlag("enable_sqlite3_i_know_the_risks", rootCmd.PersistentFlags().Lookup("enable-sqlite3-i-know-the-risks"))
	viper.BindPFlag("index_path", rootCmd.PersistentFlags().Lookup("index"))
	viper.BindPFlag("ocr_endpoint", rootCmd.PersistentFlags().Lookup("ocr-endpoint"))
	viper.BindPFlag("import_inbox_dir", rootCmd.PersistentFlags().Lookup("inbox"))

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(reindexCmd)
	rootCmd.AddCommand(serveCmd)

	askCmd.Flags().Float64("threshold", 0, "minimum fused score to report a match (default: configured value)")
	askCmd.Flags().StringSlice("strategy", nil, "strategies to run: "+strings.Join([]string{matcher.NameLexical, matcher.NameFuzzy, matcher.NameSemantic}, ", "))

	addCmd.Flags().StringP("question", "q", "", "question text")
	addCmd.Flags().StringP("answer", "a", "", "answer text")

	serveCmd.Flags().String("port", "8080", "port to run the server on")
	serveCmd.Flags().String("host", "localhost", "host to bind the server to")
	serveCmd.Flags().String("read-timeout", "15s", "read timeout (e.g. 15s, 1m)")
	serveCmd.Flags().String("write-timeout", "15s", "write timeout (e.g. 15s, 1m)")
	serveCmd.Flags().String("idle-timeout", "60s", "idle timeout (e.g. 60s, 2m)")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".answerbox")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}

	// Ensure database directory exists
	if databasePath != "" {
		dbDir := filepath.Dir(databasePath)
		if dbDir != "." {
			if err := os.MkdirAll(dbDir, 0755); err != nil {
				fmt.Printf("Error creating database directory: %v\n", err)
			}
		}
	}

	config.InitConfig()
}
