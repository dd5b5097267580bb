package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/myenglish/internal/config"
	"github.com/abhisek/myenglish/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "myenglish",
	Short: "Interactive English lessons in the terminal",
	Long: `MyEnglish walks you through short English units: read, write, listen,
chat with a tutor, then take a quick test.

Lesson content comes from an LLM. Set one of GEMINI_API_KEY, OPENAI_API_KEY,
ANTHROPIC_API_KEY or OPENROUTER_API_KEY (or configure a provider in
config.yaml, see "myenglish config init"). Without a key the built-in
lesson content is used.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, false)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides MYENGLISH_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to config.yaml (default $XDG_CONFIG_HOME/myenglish/config.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "Write debug logs")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(lessonsCmd)
	rootCmd.AddCommand(defineCmd)
	rootCmd.AddCommand(speakCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then MYENGLISH_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// loadConfig resolves configuration from --config (or the default path),
// .env and the environment. --debug forces the debug log level.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// openStore opens the diagnostics database.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}
