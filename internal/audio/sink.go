package audio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

// candidates are the players tried by DetectSink, in order.
var candidates = [][]string{
	{"aplay", "-q"},
	{"paplay"},
	{"afplay"},
	{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet"},
}

// CommandSink plays audio by writing a temporary WAV file and running an
// external player on it. The file path is appended to Args.
type CommandSink struct {
	Name string
	Args []string
}

// Play writes pcm to a temporary WAV file and runs the player until it
// exits or ctx is cancelled.
func (s CommandSink) Play(ctx context.Context, pcm []byte, f Format) error {
	path, err := WriteTempWAV(pcm, f)
	if err != nil {
		return err
	}
	defer os.Remove(path)

	args := append(append([]string{}, s.Args...), path)
	cmd := exec.CommandContext(ctx, s.Name, args...)
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("run %s: %w", s.Name, err)
	}
	return nil
}

func (s CommandSink) String() string {
	return strings.TrimSpace(s.Name + " " + strings.Join(s.Args, " "))
}

// SilentSink discards audio but takes as long as the audio would to play,
// so playback state behaves the same as with a real device.
type SilentSink struct{}

func (SilentSink) Play(ctx context.Context, pcm []byte, f Format) error {
	t := time.NewTimer(f.Duration(pcm))
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// DetectSink returns a CommandSink for command when given, otherwise for
// the first known player found on PATH. Without any player it falls back
// to SilentSink.
func DetectSink(command []string, log *zap.Logger) Sink {
	if log == nil {
		log = zap.NewNop()
	}
	if len(command) > 0 && command[0] != "" {
		return CommandSink{Name: command[0], Args: command[1:]}
	}
	for _, c := range candidates {
		if _, err := exec.LookPath(c[0]); err == nil {
			log.Debug("using audio player", zap.String("command", c[0]))
			return CommandSink{Name: c[0], Args: c[1:]}
		}
	}
	log.Info("no audio player found on PATH, audio disabled")
	return SilentSink{}
}

// WriteTempWAV writes pcm to a new temporary WAV file and returns its path.
func WriteTempWAV(pcm []byte, f Format) (string, error) {
	file, err := os.CreateTemp("", "myenglish-*.wav")
	if err != nil {
		return "", fmt.Errorf("create temp wav: %w", err)
	}
	if err := WriteWAV(file, pcm, f); err != nil {
		file.Close()
		os.Remove(file.Name())
		return "", err
	}
	if err := file.Close(); err != nil {
		os.Remove(file.Name())
		return "", fmt.Errorf("close temp wav: %w", err)
	}
	return file.Name(), nil
}

// WriteWAVFile writes pcm as a WAV file at path.
func WriteWAVFile(path string, pcm []byte, f Format) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteWAV(file, pcm, f); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
