package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/Lumos-Labs-HQ/overlord-seed/internal/config"
	"github.com/Lumos-Labs-HQ/overlord-seed/internal/seeder"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	Version = "0.3.0"
)

var rootCmd = &cobra.Command{
	Use:   "overlord-seed",
	Short: "Seed fake clients into overlord.db for load testing",
	Long: `
overlord-seed fills the clients table of an Overlord SQLite database with
synthetic endpoints (ids, host/OS/arch metadata, country, connectivity state)
so the management console can be load-tested against a realistic row count.

The table is created if it does not exist. Rows are written in batches, one
committed transaction per batch.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		showVersion, _ := cmd.Flags().GetBool("version")
		if showVersion {
			fmt.Printf("overlord-seed version %s\n", Version)
			return nil
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		dbPath, err := cfg.AbsDBPath()
		if err != nil {
			return err
		}

		return runSeed(cmd, cfg, dbPath)
	},
}

func runSeed(cmd *cobra.Command, cfg *config.Config, dbPath string) error {
	color.Cyan("🌱 Seeding %d clients into %s (truncate=%t)", cfg.Count, dbPath, cfg.Truncate)

	var generator *seeder.DataGenerator
	if cfg.Seed != 0 {
		generator = seeder.NewDataGeneratorWithSeed(cfg.Seed)
	}

	s, err := seeder.Open(cmd.Context(), dbPath, generator)
	if err != nil {
		return err
	}
	defer s.Close()

	exists, err := s.TableExists(cmd.Context())
	if err != nil {
		return err
	}
	if !exists {
		color.Cyan("📦 Creating %s table", seeder.ClientsTable)
	}

	result, err := s.Seed(cmd.Context(), seeder.SeedConfig{
		Count:      cfg.Count,
		Truncate:   cfg.Truncate,
		OnlineRate: cfg.OnlineRate,
		Batch:      cfg.BatchSize,
		Progress: func(inserted, total int) {
			fmt.Printf("  📝 Inserted %d/%d...\n", inserted, total)
		},
	})
	if cfg.Truncate && result.Deleted > 0 {
		color.Yellow("🗑️  Removed %d existing rows", result.Deleted)
	}
	if err != nil {
		return err
	}

	total, err := s.Count(cmd.Context())
	if err != nil {
		return err
	}
	online, err := s.OnlineCount(cmd.Context())
	if err != nil {
		return err
	}

	color.Green("✅ Done. Inserted %d rows into %s (%d total, %d online, %s)",
		result.Inserted, dbPath, total, online, result.Duration.Round(time.Millisecond))
	return nil
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		color.Red("❌ %v", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.Flags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ./overlord-seed.config.json)")
	flags.String("db", "", "Path to overlord.db (default: ../data/overlord.db next to the binary if present, else ./overlord.db)")
	flags.Int("count", config.DefaultCount, "How many rows to insert")
	flags.Bool("truncate", false, "Delete existing rows before seeding")
	flags.Float64("online-rate", config.DefaultOnlineRate, "Probability a seeded client is online (0-1)")
	flags.Int("batch-size", config.DefaultBatchSize, "Rows per committed transaction")
	flags.Int64("seed", 0, "Random seed for reproducible data (0 = time based)")
	flags.BoolP("version", "v", false, "Show CLI version")

	viper.BindPFlag("db", flags.Lookup("db"))
	viper.BindPFlag("count", flags.Lookup("count"))
	viper.BindPFlag("truncate", flags.Lookup("truncate"))
	viper.BindPFlag("online_rate", flags.Lookup("online-rate"))
	viper.BindPFlag("batch_size", flags.Lookup("batch-size"))
	viper.BindPFlag("seed", flags.Lookup("seed"))
}

func initConfig() {
	if err := godotenv.Load(); err != nil {
		godotenv.Load(".env.local")
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("overlord-seed.config")
	}

	viper.SetEnvPrefix("OVERLORD_SEED")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			color.Yellow("⚠️  Could not read config file %s: %v", cfgFile, err)
		}
	}
}
