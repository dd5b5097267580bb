package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var defineCmd = &cobra.Command{
	Use:   "define <word>",
	Short: "Explain a word in Spanish with an English example",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		context, _ := cmd.Flags().GetString("context")
		word := strings.TrimSpace(args[0])
		if word == "" {
			return fmt.Errorf("word must not be empty")
		}

		d, err := buildDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		def := d.tutor.DefineWord(cmd.Context(), word, context)
		fmt.Printf("%s\n  %s\n", word, def.Definition)
		if def.Example != "" {
			fmt.Printf("  e.g. %s\n", def.Example)
		}
		return nil
	},
}

func init() {
	defineCmd.Flags().StringP("context", "c", "", "Sentence the word appears in")
}
