package waveform

import (
	"bytes"
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// writeWAV writes a 16-bit mono PCM file at 44100 Hz.
func writeWAV(t *testing.T, samples []int16) string {
	t.Helper()
	var data bytes.Buffer
	for _, s := range samples {
		binary.Write(&data, binary.LittleEndian, s)
	}

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+data.Len()))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // mono
	binary.Write(&buf, binary.LittleEndian, uint32(44100))
	binary.Write(&buf, binary.LittleEndian, uint32(44100*2))
	binary.Write(&buf, binary.LittleEndian, uint16(2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(data.Len()))
	buf.Write(data.Bytes())

	path := filepath.Join(t.TempDir(), "tone.wav")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write wav: %v", err)
	}
	return path
}

func TestExtractPeaks(t *testing.T) {
	// One second: silent first half, full scale second half.
	samples := make([]int16, 44100)
	for i := 22050; i < len(samples); i++ {
		samples[i] = 32767
	}
	path := writeWAV(t, samples)

	peaks, err := Extract(context.Background(), path, 10)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(peaks.Values) == 0 || len(peaks.Values) > 10 {
		t.Fatalf("bucket count = %d, want 1..10", len(peaks.Values))
	}
	if peaks.Values[0] != 0 {
		t.Errorf("first bucket = %v, want 0 for silence", peaks.Values[0])
	}
	last := peaks.Values[len(peaks.Values)-1]
	if last < 0.9 || last > 1 {
		t.Errorf("last bucket = %v, want near full scale", last)
	}
	if d := peaks.Duration; d < 900*time.Millisecond || d > 1100*time.Millisecond {
		t.Errorf("duration = %v, want about 1s", d)
	}
}

func TestExtractHonorsCancellation(t *testing.T) {
	path := writeWAV(t, make([]int16, 44100))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Extract(ctx, path, 10); err != context.Canceled {
		t.Errorf("err = %v, want %v", err, context.Canceled)
	}
}

func TestExtractMissingFile(t *testing.T) {
	if _, err := Extract(context.Background(), filepath.Join(t.TempDir(), "nope.wav"), 10); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestClamp01(t *testing.T) {
	if got := clamp01(1.5); got != 1 {
		t.Errorf("clamp01(1.5) = %v, want 1", got)
	}
	if got := clamp01(0.25); got != 0.25 {
		t.Errorf("clamp01(0.25) = %v, want 0.25", got)
	}
}
