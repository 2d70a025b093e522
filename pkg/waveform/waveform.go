// Package waveform extracts peak envelopes from audio files for the
// timeline strip. Extraction decodes the whole track, so it runs off the
// UI path and honors context cancellation.
package waveform

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/wav"
)

// Peaks holds the downsampled amplitude envelope of a track. Values are
// normalized to 0..1.
type Peaks struct {
	Values   []float64     `json:"values"`
	Duration time.Duration `json:"duration"`
}

// Extract decodes the audio file at path and reduces it to bucketCount
// peak values. It checks ctx between buckets so a superseded extraction
// stops promptly.
func Extract(ctx context.Context, path string, bucketCount int) (*Peaks, error) {
	if bucketCount <= 0 {
		bucketCount = 1000
	}

	streamer, format, err := decode(path)
	if err != nil {
		return nil, err
	}
	defer streamer.Close()

	total := streamer.Len()
	if total <= 0 {
		return &Peaks{Values: make([]float64, bucketCount)}, nil
	}

	bucketSize := total / bucketCount
	if bucketSize < 1 {
		bucketSize = 1
	}

	started := time.Now()
	values := make([]float64, 0, bucketCount)
	buf := make([][2]float64, 1024)
	peak := 0.0
	inBucket := 0

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, ok := streamer.Stream(buf)
		for i := 0; i < n; i++ {
			amp := math.Abs(buf[i][0])
			if r := math.Abs(buf[i][1]); r > amp {
				amp = r
			}
			if amp > peak {
				peak = amp
			}
			inBucket++
			if inBucket >= bucketSize {
				values = append(values, clamp01(peak))
				peak = 0
				inBucket = 0
			}
		}
		if !ok {
			break
		}
	}
	if inBucket > 0 {
		values = append(values, clamp01(peak))
	}
	if len(values) > bucketCount {
		values = values[:bucketCount]
	}

	slog.Debug("Extracted waveform peaks", "path", path,
		"buckets", len(values), "elapsed", time.Since(started))

	return &Peaks{
		Values:   values,
		Duration: format.SampleRate.D(total),
	}, nil
}

func clamp01(v float64) float64 {
	if v > 1 {
		return 1
	}
	return v
}

func decode(path string) (beep.StreamSeekCloser, beep.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("open audio file: %w", err)
	}

	streamer, format, err := mp3.Decode(f)
	if err == nil {
		return streamer, format, nil
	}

	f.Close()
	f, err = os.Open(path)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("reopen audio file: %w", err)
	}

	streamer, format, err = wav.Decode(f)
	if err != nil {
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("decode audio file %s: %w", path, err)
	}
	return streamer, format, nil
}
