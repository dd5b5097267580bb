// Package audio turns synthesized speech into sound. Speech arrives as raw
// mono signed 16-bit little-endian PCM; a Player owns the single playback
// slot and hands WAV-framed buffers to a Sink.
package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"
)

// Format describes a raw PCM16 stream.
type Format struct {
	SampleRate int
	Channels   int
}

// ErrOddLength is returned for PCM16 buffers that end mid-sample.
var ErrOddLength = errors.New("pcm16 buffer has odd length")

// Decode converts little-endian PCM16 into float32 samples in [-1, 1).
func Decode(pcm []byte) ([]float32, error) {
	if len(pcm)%2 != 0 {
		return nil, ErrOddLength
	}
	out := make([]float32, len(pcm)/2)
	for i := range out {
		s := int16(binary.LittleEndian.Uint16(pcm[2*i:]))
		out[i] = float32(s) / 32768.0
	}
	return out, nil
}

// Duration reports how long pcm plays at the given format.
func (f Format) Duration(pcm []byte) time.Duration {
	if f.SampleRate <= 0 || f.Channels <= 0 {
		return 0
	}
	frames := len(pcm) / (2 * f.Channels)
	return time.Duration(frames) * time.Second / time.Duration(f.SampleRate)
}

// WriteWAV frames pcm in a canonical 44-byte RIFF/WAVE header.
func WriteWAV(w io.Writer, pcm []byte, f Format) error {
	if len(pcm)%2 != 0 {
		return ErrOddLength
	}
	if f.SampleRate <= 0 || f.Channels <= 0 {
		return fmt.Errorf("invalid format %d Hz x %d channels", f.SampleRate, f.Channels)
	}

	const bitsPerSample = 16
	blockAlign := f.Channels * bitsPerSample / 8
	byteRate := f.SampleRate * blockAlign

	hdr := struct {
		RIFF          [4]byte
		ChunkSize     uint32
		WAVE          [4]byte
		Fmt           [4]byte
		FmtSize       uint32
		AudioFormat   uint16
		Channels      uint16
		SampleRate    uint32
		ByteRate      uint32
		BlockAlign    uint16
		BitsPerSample uint16
		Data          [4]byte
		DataSize      uint32
	}{
		RIFF:          [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     uint32(36 + len(pcm)),
		WAVE:          [4]byte{'W', 'A', 'V', 'E'},
		Fmt:           [4]byte{'f', 'm', 't', ' '},
		FmtSize:       16,
		AudioFormat:   1,
		Channels:      uint16(f.Channels),
		SampleRate:    uint32(f.SampleRate),
		ByteRate:      uint32(byteRate),
		BlockAlign:    uint16(blockAlign),
		BitsPerSample: bitsPerSample,
		Data:          [4]byte{'d', 'a', 't', 'a'},
		DataSize:      uint32(len(pcm)),
	}
	if err := binary.Write(w, binary.LittleEndian, hdr); err != nil {
		return fmt.Errorf("write wav header: %w", err)
	}
	if _, err := w.Write(pcm); err != nil {
		return fmt.Errorf("write wav data: %w", err)
	}
	return nil
}
