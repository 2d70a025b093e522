package audio

import (
	"log/slog"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/generators"
	"github.com/gopxl/beep/v2/speaker"
)

// PlayTone plays a short sine beep, used for the countdown ticks before
// playback starts. It mixes on top of anything already playing and never
// touches the loaded track.
func (m *Manager) PlayTone(freq float64, dur time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.speakerInitialized {
		const targetSampleRate = 48000
		err := speaker.Init(beep.SampleRate(targetSampleRate), beep.SampleRate(targetSampleRate).N(time.Second/10))
		if err != nil {
			slog.Error("Failed to initialize speaker for tone", "error", err)
			return
		}
		m.speakerInitialized = true
		m.currentSampleRate = beep.SampleRate(targetSampleRate)
	}

	tone, err := generators.SineTone(m.currentSampleRate, freq)
	if err != nil {
		slog.Warn("Failed to generate countdown tone", "freq", freq, "error", err)
		return
	}
	speaker.Play(beep.Take(m.currentSampleRate.N(dur), tone))
}
