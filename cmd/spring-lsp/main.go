// Command spring-lsp is the CLI entrypoint (C13): a thin cobra shell
// around the Server Core, grounded on the teacher's cmd/nerd/main.go
// (persistent flags, zap lifecycle in PersistentPreRunE/PersistentPostRun)
// and cmd_mangle_lsp.go (an LSP command that initializes a manager and
// serves stdio under signal-driven cancellation).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spring-rs/spring-lsp/internal/logging"
	"github.com/spring-rs/spring-lsp/internal/serverconfig"
)

// version is overridden at link time via -ldflags "-X main.version=...".
var version = "dev"

var (
	configPath string
	logLevel   string
	verbose    bool

	cfg *serverconfig.Config
)

var rootCmd = &cobra.Command{
	Use:   "spring-lsp",
	Short: "Language server for the framework's route/job/component macros and TOML configuration",
	Long: `spring-lsp backs editor IDE features (completion, hover, diagnostics,
go-to-definition, and workspace queries) for applications built on the
framework: Rust source annotated with its attribute macros, plus TOML
configuration files validated against its JSON configuration schema.

Run "spring-lsp serve" from an editor's LSP client configuration.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := serverconfig.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if logLevel != "" {
			loaded.Logging.Level = logLevel
		}
		if verbose {
			loaded.Logging.Verbose = true
		}
		if err := logging.Configure(loaded.Logging.Level, loaded.Logging.Verbose, loaded.Logging.LogFile); err != nil {
			return fmt.Errorf("configure logging: %w", err)
		}
		cfg = loaded
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to the server's own TOML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging.level (trace|debug|info|warn|error)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "force debug-level logging regardless of config")

	rootCmd.AddCommand(serveCmd, versionCmd, checkCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
