package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/kengetal/internal/common"
)

var (
	// Command-line flags
	configFiles []string
	serverPort  int
	serverHost  string

	// Global state
	config *common.Config
	logger arbor.ILogger
)

var rootCmd = &cobra.Command{
	Use:           "kengetal",
	Short:         "Financial ratio analysis server",
	Long:          `Kengetal computes rentabiliteit, liquiditeit and solvabiliteit from balance sheet figures and explains them in Dutch.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

func init() {
	rootCmd.PersistentFlags().StringArrayVarP(&configFiles, "config", "c", nil, "Configuration file path (repeatable, later files override earlier ones)")
	rootCmd.Flags().IntVarP(&serverPort, "port", "p", 0, "Server port (overrides config)")
	rootCmd.Flags().StringVar(&serverHost, "host", "", "Server host (overrides config)")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	common.InstallCrashHandler("")
	defer common.RecoverWithCrashFile()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig runs the startup sequence shared by all commands:
// defaults -> config files -> env -> flags, then logger and env references.
func loadConfig(logLevel string) error {
	// Auto-discover config file if not specified
	if len(configFiles) == 0 {
		for _, candidate := range []string{"kengetal.toml", "deployments/local/kengetal.toml"} {
			if _, err := os.Stat(candidate); err == nil {
				configFiles = append(configFiles, candidate)
				break
			}
		}
	}

	var err error
	config, err = common.LoadFromFiles(configFiles...)
	if err != nil {
		if len(configFiles) == 0 {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return fmt.Errorf("failed to load configuration files %v: %w", configFiles, err)
	}

	common.ApplyFlagOverrides(config, serverPort, serverHost)
	if logLevel != "" {
		config.Logging.Level = logLevel
	}

	logger = common.InitLogger(config)

	if err := common.ResolveReferences(config, logger); err != nil {
		return fmt.Errorf("failed to resolve config references: %w", err)
	}

	logger.Debug().
		Strs("config_files", configFiles).
		Str("storage_path", config.Storage.Badger.Path).
		Str("log_level", config.Logging.Level).
		Strs("log_output", config.Logging.Output).
		Str("llm_provider", string(config.LLM.DefaultProvider)).
		Msg("Resolved configuration (sanitized)")

	return nil
}
