package tutor

// HistoryWindow is how many trailing transcript lines a tutor reply sees.
const HistoryWindow = 5

// Config holds content generation settings.
type Config struct {
	MaxTokens       int
	Temperature     float64
	EvalTemperature float64
}

// DefaultConfig returns sensible defaults for content generation.
func DefaultConfig() Config {
	return Config{
		MaxTokens:       1024,
		Temperature:     0.7,
		EvalTemperature: 0.2,
	}
}
