// Package config resolves application settings. Sources are applied in
// order, later ones winning: built-in defaults, provider API keys found in
// the environment, config.yaml, then MYENGLISH_* variables. A .env file in
// the working directory is loaded into the environment first without
// overriding variables that are already set.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/myenglish/internal/curriculum"
	"github.com/abhisek/myenglish/internal/lesson"
	"github.com/abhisek/myenglish/internal/llm"
)

const (
	configDir  = "myenglish"
	configFile = "config.yaml"
)

// File is the on-disk shape of config.yaml.
type File struct {
	LLM     LLMFile     `yaml:"llm"`
	Speech  SpeechFile  `yaml:"speech"`
	Lesson  LessonFile  `yaml:"lesson"`
	Audio   AudioFile   `yaml:"audio"`
	Log     LogFile     `yaml:"log"`
	Learner LearnerFile `yaml:"learner"`
}

// LLMFile selects the content provider.
type LLMFile struct {
	Provider string `yaml:"provider,omitempty"` // anthropic | openai | gemini | openrouter | mock
	Model    string `yaml:"model,omitempty"`    // model of the selected provider
	BaseURL  string `yaml:"base_url,omitempty"` // openai and openrouter only
	Retries  int    `yaml:"retries,omitempty"`
	Timeout  string `yaml:"timeout,omitempty"` // Go duration, e.g. "30s"
}

// SpeechFile selects the speech backend.
type SpeechFile struct {
	Provider string `yaml:"provider,omitempty"` // gemini | openai | mock | none
	Model    string `yaml:"model,omitempty"`
	Voice    string `yaml:"voice,omitempty"`
}

// LessonFile tunes lesson flow.
type LessonFile struct {
	PassScore      *int     `yaml:"pass_score,omitempty"`
	MiniGameChance *float64 `yaml:"minigame_chance,omitempty"`
	Seed           uint64   `yaml:"seed,omitempty"` // 0 picks a random seed
}

// AudioFile configures playback.
type AudioFile struct {
	Command  []string `yaml:"command,omitempty"` // player argv; the WAV path is appended
	Disabled bool     `yaml:"disabled,omitempty"`
}

// LogFile configures the log file.
type LogFile struct {
	Path  string `yaml:"path,omitempty"`
	Level string `yaml:"level,omitempty"`
}

// LearnerFile seeds the learner profile.
type LearnerFile struct {
	Name  string `yaml:"name,omitempty"`
	Level string `yaml:"level,omitempty"`
}

// Config is the resolved configuration.
type Config struct {
	LLM    llm.Config
	Lesson lesson.Config
	Seed   uint64

	AudioCommand  []string
	AudioDisabled bool

	LogPath  string
	LogLevel string

	LearnerName  string
	LearnerLevel curriculum.Level

	// Source is the config file that was read, "" if none.
	Source string
}

// DefaultPath returns $XDG_CONFIG_HOME/myenglish/config.yaml, falling back
// to ~/.config/myenglish/config.yaml.
func DefaultPath() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("get home dir: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, configDir, configFile), nil
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		LLM:          llm.DefaultConfig(),
		Lesson:       lesson.DefaultConfig(),
		LogLevel:     "info",
		LearnerLevel: curriculum.LevelA1,
	}
}

// Load resolves the configuration. An empty path means DefaultPath, which
// may be missing; an explicit path must exist.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if discovered, ok := llm.DiscoverConfig(); ok {
		cfg.LLM.Provider = discovered.Provider
	}
	cfg.LLM.Anthropic.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	cfg.LLM.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	cfg.LLM.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	cfg.LLM.OpenRouter.APIKey = os.Getenv("OPENROUTER_API_KEY")

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, err
		}
		path = p
	}

	f, err := ReadFile(path)
	switch {
	case err == nil:
		if err := cfg.apply(f); err != nil {
			return cfg, fmt.Errorf("config %s: %w", path, err)
		}
		cfg.Source = path
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		// No config file; defaults stand.
	default:
		return cfg, err
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ReadFile parses a config.yaml.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &f, nil
}

// WriteFile writes f to path, creating the directory if needed.
func WriteFile(path string, f *File) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Template returns a File describing the defaults, for `config init`.
func Template() *File {
	d := Default()
	pass, chance := d.Lesson.PassScore, d.Lesson.MiniGameChance
	return &File{
		LLM:     LLMFile{Provider: d.LLM.Provider, Retries: d.LLM.Retry.MaxAttempts},
		Lesson:  LessonFile{PassScore: &pass, MiniGameChance: &chance},
		Log:     LogFile{Level: d.LogLevel},
		Learner: LearnerFile{Level: string(d.LearnerLevel)},
	}
}

func (c *Config) apply(f *File) error {
	if f.LLM.Provider != "" {
		c.LLM.Provider = f.LLM.Provider
	}
	if f.LLM.Model != "" {
		setModel(&c.LLM, f.LLM.Model)
	}
	if f.LLM.BaseURL != "" {
		switch c.LLM.Provider {
		case "openai":
			c.LLM.OpenAI.BaseURL = f.LLM.BaseURL
		case "openrouter":
			c.LLM.OpenRouter.BaseURL = f.LLM.BaseURL
		}
	}
	if f.LLM.Retries > 0 {
		c.LLM.Retry.MaxAttempts = f.LLM.Retries
	}
	if f.LLM.Timeout != "" {
		d, err := time.ParseDuration(f.LLM.Timeout)
		if err != nil {
			return fmt.Errorf("llm.timeout: %w", err)
		}
		c.LLM.Timeout = d
	}

	if f.Speech.Provider != "" {
		c.LLM.Speech.Provider = f.Speech.Provider
	}
	if f.Speech.Model != "" {
		c.LLM.Speech.Model = f.Speech.Model
	}
	if f.Speech.Voice != "" {
		c.LLM.Speech.Voice = f.Speech.Voice
	}

	if f.Lesson.PassScore != nil {
		c.Lesson.PassScore = *f.Lesson.PassScore
	}
	if f.Lesson.MiniGameChance != nil {
		c.Lesson.MiniGameChance = *f.Lesson.MiniGameChance
	}
	c.Seed = f.Lesson.Seed

	if len(f.Audio.Command) > 0 {
		c.AudioCommand = f.Audio.Command
	}
	c.AudioDisabled = f.Audio.Disabled

	if f.Log.Path != "" {
		c.LogPath = f.Log.Path
	}
	if f.Log.Level != "" {
		c.LogLevel = f.Log.Level
	}

	if f.Learner.Name != "" {
		c.LearnerName = f.Learner.Name
	}
	if f.Learner.Level != "" {
		lvl, err := curriculum.ParseLevel(f.Learner.Level)
		if err != nil {
			return fmt.Errorf("learner.level: %w", err)
		}
		c.LearnerLevel = lvl
	}
	return c.Validate()
}

func (c *Config) applyEnv() error {
	c.LLM.ApplyEnv()

	if v := os.Getenv("MYENGLISH_PASS_SCORE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MYENGLISH_PASS_SCORE: %w", err)
		}
		c.Lesson.PassScore = n
	}
	if v := os.Getenv("MYENGLISH_MINIGAME_CHANCE"); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("MYENGLISH_MINIGAME_CHANCE: %w", err)
		}
		c.Lesson.MiniGameChance = p
	}
	if v := os.Getenv("MYENGLISH_AUDIO_CMD"); v != "" {
		c.AudioCommand = strings.Fields(v)
	}
	if v := os.Getenv("MYENGLISH_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("MYENGLISH_LOG_FILE"); v != "" {
		c.LogPath = v
	}
	return c.Validate()
}

// Validate checks the lesson tuning. Provider credentials are checked
// separately by llm.Config.Validate, since the app runs without them.
func (c Config) Validate() error {
	if c.Lesson.PassScore < 0 || c.Lesson.PassScore > 100 {
		return fmt.Errorf("pass score must be within 0..100, got %d", c.Lesson.PassScore)
	}
	if c.Lesson.MiniGameChance < 0 || c.Lesson.MiniGameChance > 1 {
		return fmt.Errorf("mini-game chance must be within 0..1, got %g", c.Lesson.MiniGameChance)
	}
	return nil
}

func setModel(c *llm.Config, model string) {
	switch c.Provider {
	case "anthropic":
		c.Anthropic.Model = model
	case "openai":
		c.OpenAI.Model = model
	case "gemini":
		c.Gemini.Model = model
	case "openrouter":
		c.OpenRouter.Model = model
	}
}
