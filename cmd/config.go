package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/myenglish/internal/config"
	"github.com/abhisek/myenglish/internal/learner"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage config.yaml",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config.yaml with the default settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		path, err := configPath(cmd)
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		if err := config.WriteFile(path, config.Template()); err != nil {
			return err
		}
		fmt.Println("Wrote", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved configuration (API keys hidden)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		name := cfg.LearnerName
		if name == "" {
			name = learner.DefaultName
		}
		source := cfg.Source
		if source == "" {
			source = "(none, defaults)"
		}

		provider := cfg.LLM.Provider
		if err := cfg.LLM.Validate(); err != nil {
			provider += " (not configured: " + err.Error() + ")"
		}

		fmt.Printf("Config file:     %s\n", source)
		fmt.Printf("LLM provider:    %s\n", provider)
		fmt.Printf("Speech provider: %s\n", cfg.LLM.SpeechProvider())
		fmt.Printf("Retries:         %d\n", cfg.LLM.Retry.MaxAttempts)
		fmt.Printf("Timeout:         %s\n", cfg.LLM.Timeout)
		fmt.Printf("Pass score:      %d\n", cfg.Lesson.PassScore)
		fmt.Printf("Mini-game odds:  %.0f%%\n", cfg.Lesson.MiniGameChance*100)
		fmt.Printf("Learner:         %s (%s)\n", name, cfg.LearnerLevel.DisplayName())
		fmt.Printf("Log level:       %s\n", cfg.LogLevel)
		if cfg.AudioDisabled {
			fmt.Printf("Audio:           disabled\n")
		} else if len(cfg.AudioCommand) > 0 {
			fmt.Printf("Audio:           %v\n", cfg.AudioCommand)
		} else {
			fmt.Printf("Audio:           auto-detect\n")
		}
		return nil
	},
}

// configPath returns --config or the default location.
func configPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("config"); p != "" {
		return p, nil
	}
	return config.DefaultPath()
}

func init() {
	configInitCmd.Flags().BoolP("force", "f", false, "Overwrite an existing file")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}
