package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/myenglish/internal/audio"
)

var speakCmd = &cobra.Command{
	Use:   "speak <text>",
	Short: "Read text aloud with the configured speech provider",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")
		text := strings.TrimSpace(strings.Join(args, " "))

		d, err := buildDeps(cmd, out == "")
		if err != nil {
			return err
		}
		defer d.Close()

		if !d.tutor.HasSpeech() {
			return fmt.Errorf("no speech provider configured (set speech.provider or a Gemini/OpenAI key)")
		}
		pcm := d.tutor.SynthesizeSpeech(cmd.Context(), text)
		if len(pcm) == 0 {
			return fmt.Errorf("speech synthesis failed, see the log for details")
		}

		if out != "" {
			if err := audio.WriteWAVFile(out, pcm, speechFormat); err != nil {
				return err
			}
			fmt.Printf("Wrote %s (%s)\n", out, speechFormat.Duration(pcm).Round(time.Millisecond))
			return nil
		}

		d.player.Play("speak", pcm)
		for d.player.Current() != "" {
			select {
			case <-cmd.Context().Done():
				d.player.Stop()
				return cmd.Context().Err()
			case <-time.After(50 * time.Millisecond):
			}
		}
		return nil
	},
}

func init() {
	speakCmd.Flags().StringP("out", "o", "", "Write a WAV file instead of playing")
}
