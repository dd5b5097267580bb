package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var speechFormat = Format{SampleRate: 24000, Channels: 1}

func TestDecode(t *testing.T) {
	pcm := []byte{
		0x00, 0x00, // 0
		0xff, 0x7f, // 32767
		0x00, 0x80, // -32768
		0x00, 0x40, // 16384
	}
	got, err := Decode(pcm)
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, float32(0), got[0])
	assert.InDelta(t, 0.99997, got[1], 1e-4)
	assert.Equal(t, float32(-1), got[2])
	assert.Equal(t, float32(0.5), got[3])

	_, err = Decode([]byte{0x01})
	assert.ErrorIs(t, err, ErrOddLength)
}

func TestDuration(t *testing.T) {
	pcm := make([]byte, 48000) // 24000 samples
	assert.Equal(t, time.Second, speechFormat.Duration(pcm))
	assert.Equal(t, 500*time.Millisecond, Format{SampleRate: 24000, Channels: 2}.Duration(pcm))
	assert.Equal(t, time.Duration(0), Format{}.Duration(pcm))
}

func TestWriteWAV(t *testing.T) {
	pcm := []byte{1, 2, 3, 4}
	var buf bytes.Buffer
	require.NoError(t, WriteWAV(&buf, pcm, speechFormat))

	b := buf.Bytes()
	require.Len(t, b, 48)
	assert.Equal(t, "RIFF", string(b[0:4]))
	assert.Equal(t, uint32(40), binary.LittleEndian.Uint32(b[4:8]))
	assert.Equal(t, "WAVE", string(b[8:12]))
	assert.Equal(t, "fmt ", string(b[12:16]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(b[20:22]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(b[22:24]))
	assert.Equal(t, uint32(24000), binary.LittleEndian.Uint32(b[24:28]))
	assert.Equal(t, uint32(48000), binary.LittleEndian.Uint32(b[28:32]))
	assert.Equal(t, uint16(16), binary.LittleEndian.Uint16(b[34:36]))
	assert.Equal(t, "data", string(b[36:40]))
	assert.Equal(t, uint32(4), binary.LittleEndian.Uint32(b[40:44]))
	assert.Equal(t, pcm, b[44:])

	assert.ErrorIs(t, WriteWAV(&buf, []byte{1}, speechFormat), ErrOddLength)
	assert.Error(t, WriteWAV(&buf, pcm, Format{}))
}

func TestWriteWAVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	require.NoError(t, WriteWAVFile(path, make([]byte, 10), speechFormat))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(54), info.Size())
}

// blockingSink records plays and blocks each until cancelled or released.
type blockingSink struct {
	mu       sync.Mutex
	started  []string
	stopped  []string
	release  chan struct{}
	startedC chan string
}

func newBlockingSink() *blockingSink {
	return &blockingSink{release: make(chan struct{}), startedC: make(chan string, 8)}
}

func (s *blockingSink) Play(ctx context.Context, pcm []byte, _ Format) error {
	label := string(pcm)
	s.mu.Lock()
	s.started = append(s.started, label)
	s.mu.Unlock()
	s.startedC <- label

	select {
	case <-ctx.Done():
		s.mu.Lock()
		s.stopped = append(s.stopped, label)
		s.mu.Unlock()
		return ctx.Err()
	case <-s.release:
		return nil
	}
}

func (s *blockingSink) waitStarted(t *testing.T, want string) {
	t.Helper()
	select {
	case got := <-s.startedC:
		assert.Equal(t, want, got)
	case <-time.After(time.Second):
		t.Fatalf("playback %q never started", want)
	}
}

func TestPlayer_NewPlaybackStopsPrevious(t *testing.T) {
	sink := newBlockingSink()
	p := NewPlayer(sink, speechFormat, nil)

	p.Play("first", []byte("aa"))
	sink.waitStarted(t, "aa")
	assert.Equal(t, "first", p.Current())

	p.Play("second", []byte("bb"))
	sink.waitStarted(t, "bb")
	assert.Equal(t, "second", p.Current())

	sink.mu.Lock()
	assert.Equal(t, []string{"aa"}, sink.stopped, "first playback is cancelled before the second starts")
	sink.mu.Unlock()

	p.Stop()
	assert.Equal(t, "", p.Current())

	sink.mu.Lock()
	assert.Equal(t, []string{"aa", "bb"}, sink.started)
	assert.Equal(t, []string{"aa", "bb"}, sink.stopped)
	sink.mu.Unlock()
}

func TestPlayer_FinishedPlaybackClearsCurrent(t *testing.T) {
	sink := newBlockingSink()
	p := NewPlayer(sink, speechFormat, nil)

	p.Play("clip", []byte("cc"))
	sink.waitStarted(t, "cc")
	close(sink.release)

	assert.Eventually(t, func() bool { return p.Current() == "" }, time.Second, 5*time.Millisecond)
	require.NoError(t, p.Close())
}

func TestPlayer_EmptyBufferOnlyStops(t *testing.T) {
	sink := newBlockingSink()
	p := NewPlayer(sink, speechFormat, nil)

	p.Play("clip", []byte("dd"))
	sink.waitStarted(t, "dd")
	p.Play("empty", nil)
	assert.Equal(t, "", p.Current())

	sink.mu.Lock()
	assert.Equal(t, []string{"dd"}, sink.started)
	sink.mu.Unlock()
}

func TestSilentSink(t *testing.T) {
	pcm := make([]byte, 480) // 10ms
	assert.NoError(t, SilentSink{}.Play(context.Background(), pcm, speechFormat))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := SilentSink{}.Play(ctx, make([]byte, 48000*10), speechFormat)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDetectSink_ConfiguredCommand(t *testing.T) {
	s := DetectSink([]string{"myplayer", "--quiet"}, nil)
	cs, ok := s.(CommandSink)
	require.True(t, ok)
	assert.Equal(t, "myplayer", cs.Name)
	assert.Equal(t, []string{"--quiet"}, cs.Args)
	assert.Equal(t, "myplayer --quiet", cs.String())
}

func TestCommandSink_MissingBinary(t *testing.T) {
	s := CommandSink{Name: "myenglish-no-such-player"}
	err := s.Play(context.Background(), []byte{0, 0}, speechFormat)
	assert.Error(t, err)
}
