package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/myenglish/internal/app"
	"github.com/abhisek/myenglish/internal/audio"
	"github.com/abhisek/myenglish/internal/config"
	"github.com/abhisek/myenglish/internal/learner"
	"github.com/abhisek/myenglish/internal/lesson"
	"github.com/abhisek/myenglish/internal/llm"
	"github.com/abhisek/myenglish/internal/logging"
	"github.com/abhisek/myenglish/internal/store"
	"github.com/abhisek/myenglish/internal/tutor"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start the lesson player",
	RunE: func(cmd *cobra.Command, args []string) error {
		skip, _ := cmd.Flags().GetBool("skip-intro")
		return runApp(cmd, skip)
	},
}

func init() {
	playCmd.Flags().Bool("skip-intro", false, "Go straight to the lesson list")
}

// deps holds everything a command may need, built from configuration.
type deps struct {
	cfg    config.Config
	log    *zap.Logger
	store  *store.Store
	events store.EventRepo

	provider llm.Provider // nil when no provider is configured
	speech   llm.SpeechSynthesizer
	tutor    *tutor.Client
	player   *audio.Player
}

// buildDeps loads configuration, opens the logger and the store, and
// builds the tutor client. Provider problems are reported on stderr and
// leave the tutor on built-in content. withAudio adds a playback device.
func buildDeps(cmd *cobra.Command, withAudio bool) (*deps, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	d := &deps{cfg: cfg}

	logPath := cfg.LogPath
	if logPath == "" {
		if logPath, err = logging.DefaultPath(); err != nil {
			return nil, err
		}
	}
	if d.log, err = logging.New(logPath, logging.ParseLevel(cfg.LogLevel)); err != nil {
		fmt.Fprintln(os.Stderr, "Logging disabled:", err)
		d.log = logging.Nop()
	}

	if d.store, err = openStore(cmd); err != nil {
		d.log.Sync()
		return nil, err
	}
	d.events = d.store.EventRepo()

	if err := cfg.LLM.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
		fmt.Fprintln(os.Stderr, "Lessons will use built-in content.")
		d.log.Warn("llm provider not configured", zap.Error(err))
	} else if d.provider, err = llm.NewProvider(ctx, cfg.LLM, d.events); err != nil {
		fmt.Fprintln(os.Stderr, "LLM provider unavailable:", err)
		d.log.Warn("llm provider unavailable", zap.Error(err))
		d.provider = nil
	}

	if d.speech, err = llm.NewSpeechSynthesizer(ctx, cfg.LLM, d.events); err != nil {
		d.log.Warn("speech unavailable", zap.Error(err))
		d.speech = nil
	}

	d.tutor = tutor.New(d.provider, d.speech, tutor.DefaultConfig(), d.log)

	if withAudio {
		var sink audio.Sink = audio.SilentSink{}
		if !cfg.AudioDisabled {
			sink = audio.DetectSink(cfg.AudioCommand, d.log)
		}
		d.player = audio.NewPlayer(sink, speechFormat, d.log)
	}

	d.log.Info("started",
		zap.String("version", resolveVersion()),
		zap.String("llm_provider", providerName(d.provider, cfg.LLM.Provider)),
		zap.String("speech_provider", cfg.LLM.SpeechProvider()),
		zap.String("config", cfg.Source),
	)
	return d, nil
}

// speechFormat is the PCM layout every speech backend produces.
var speechFormat = audio.Format{SampleRate: llm.SpeechSampleRate, Channels: 1}

func providerName(p llm.Provider, name string) string {
	if p == nil {
		return "none"
	}
	return name
}

// Close releases the player, the store and the logger.
func (d *deps) Close() {
	if d.player != nil {
		d.player.Close()
	}
	if d.store != nil {
		d.store.Close()
	}
	d.log.Sync()
}

// newController builds the lesson controller for a new learner.
func (d *deps) newController() *lesson.Controller {
	profile := learner.New()
	if d.cfg.LearnerName != "" {
		profile.Name = d.cfg.LearnerName
	}
	profile.Level = d.cfg.LearnerLevel

	seed := d.cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	opts := lesson.Options{
		Config: d.cfg.Lesson,
		Rand:   lesson.NewRand(seed),
		Events: d.events,
		Logger: d.log,
	}
	if d.player != nil {
		opts.Player = d.player
	}
	return lesson.New(d.tutor, profile, opts)
}

// runApp builds dependencies and launches the TUI.
func runApp(cmd *cobra.Command, skipIntro bool) error {
	d, err := buildDeps(cmd, true)
	if err != nil {
		return err
	}
	defer d.Close()

	ctrl := d.newController()
	defer ctrl.Close()

	return app.Run(app.Options{
		Controller: ctrl,
		Events:     d.events,
		LLMReady:   d.provider != nil,
		SkipIntro:  skipIntro,
	})
}
