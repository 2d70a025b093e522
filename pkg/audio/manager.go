// Package audio provides playback of the project's narration track. The
// audio position is the authoritative clock during playback; everything
// else in the player derives from it.
package audio

import (
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
)

// Service defines the interface for audio playback control.
type Service interface {
	// Load opens an audio file and prepares it for playback, paused at
	// the start. onComplete is called when playback reaches the end of
	// the track (not when stopped manually).
	Load(filepath string, onComplete func()) error
	// Play resumes playback from the current position.
	Play()
	// Pause pauses playback, keeping the position.
	Pause()
	// Stop stops playback and releases the track.
	Stop()
	// Seek moves the playback position. Works while paused or playing.
	Seek(pos time.Duration) error
	// Shutdown stops playback and tears down the speaker session.
	Shutdown()

	// IsPlaying returns true if audio is currently playing (not paused).
	IsPlaying() bool
	// IsLoaded returns true if a track is loaded (playing or paused).
	IsLoaded() bool
	// Position returns the current playback position.
	Position() time.Duration
	// Duration returns the total duration of the loaded track.
	Duration() time.Duration
	// Remaining returns the remaining time of the loaded track.
	Remaining() time.Duration

	// SetSpeed sets the playback rate. Values are clamped by the caller.
	SetSpeed(rate float64)
	// Speed returns the current playback rate.
	Speed() float64
	// SetMuted silences output without touching the position clock.
	SetMuted(muted bool)
	// IsMuted returns the mute state.
	IsMuted() bool
	// SetVolume sets playback volume (0.0 to 1.0).
	SetVolume(vol float64)
	// Volume returns current volume level.
	Volume() float64

	// PlayTone plays a short sine beep for countdown ticks.
	PlayTone(freq float64, dur time.Duration)
}

// Manager implements the Service interface using gopxl/beep.
type Manager struct {
	mu                 sync.RWMutex
	ctrl               *beep.Ctrl
	volume             float64
	muted              bool
	speed              float64
	isPaused           bool
	speakerInitialized bool
	currentSampleRate  beep.SampleRate
	volStreamer        *effects.Volume
	resampler          *beep.Resampler
	trackStreamer      beep.StreamSeekCloser
	trackFormat        beep.Format
}

// New creates a new Manager instance.
func New() *Manager {
	return &Manager{
		volume: 1.0,
		speed:  1.0,
	}
}

// Load opens and decodes an audio file, wiring it to the speaker in a
// paused state. Any previously loaded track is released first.
func (m *Manager) Load(filepath string, onComplete func()) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopLocked()

	streamer, format, err := m.decodeStreamer(filepath)
	if err != nil {
		return err
	}

	if err := m.ensureSpeakerInitialized(streamer); err != nil {
		return err
	}

	// The resampler serves double duty: it converts the track's rate to
	// the speaker's, and its live ratio carries the playback speed.
	resampled := beep.ResampleRatio(3, m.resampleRatio(format.SampleRate), streamer)

	volStreamer := &effects.Volume{
		Streamer: resampled,
		Base:     2,
		Volume:   volumeToPower(m.volume),
		Silent:   m.muted || m.volume <= 0.01,
	}

	m.resampler = resampled
	m.volStreamer = volStreamer
	m.trackStreamer = streamer
	m.trackFormat = format

	m.ctrl = &beep.Ctrl{Streamer: volStreamer, Paused: true}
	m.isPaused = true

	speaker.Play(beep.Seq(m.ctrl, beep.Callback(func() {
		go func() {
			m.mu.Lock()
			finished := m.trackStreamer == streamer
			if finished {
				m.ctrl = nil
				m.isPaused = false
			}
			m.mu.Unlock()
			if finished && onComplete != nil {
				onComplete()
			}
		}()
	})))

	slog.Debug("Loaded audio track", "path", filepath,
		"duration", format.SampleRate.D(streamer.Len()))
	return nil
}

// Play resumes playback from the current position.
func (m *Manager) Play() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ctrl != nil && m.isPaused {
		speaker.Lock()
		m.ctrl.Paused = false
		speaker.Unlock()
		m.isPaused = false
	}
}

// Pause pauses current playback.
func (m *Manager) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ctrl != nil {
		speaker.Lock()
		m.ctrl.Paused = true
		speaker.Unlock()
		m.isPaused = true
	}
}

// Stop stops current playback and closes the track.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopLocked()
}

func (m *Manager) stopLocked() {
	if m.ctrl != nil {
		speaker.Clear()
		m.ctrl = nil
		m.isPaused = false
	}
	if m.trackStreamer != nil {
		m.trackStreamer.Close()
		m.trackStreamer = nil
	}
	m.volStreamer = nil
	m.resampler = nil
}

// Seek moves the playback position of the loaded track.
func (m *Manager) Seek(pos time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.trackStreamer == nil || m.trackFormat.SampleRate == 0 {
		return nil
	}
	sample := m.trackFormat.SampleRate.N(pos)
	if sample < 0 {
		sample = 0
	}
	if max := m.trackStreamer.Len() - 1; sample > max {
		sample = max
	}
	speaker.Lock()
	err := m.trackStreamer.Seek(sample)
	speaker.Unlock()
	if err != nil {
		slog.Warn("Audio seek failed", "pos", pos, "error", err)
	}
	return err
}

func (m *Manager) ensureSpeakerInitialized(streamer beep.StreamSeekCloser) error {
	const targetSampleRate = 48000
	if !m.speakerInitialized {
		err := speaker.Init(beep.SampleRate(targetSampleRate), beep.SampleRate(targetSampleRate).N(time.Second/10))
		if err != nil {
			streamer.Close()
			slog.Error("Failed to initialize speaker", "error", err)
			return err
		}
		m.speakerInitialized = true
		m.currentSampleRate = beep.SampleRate(targetSampleRate)
	}
	return nil
}

// Shutdown stops playback and releases the loaded track.
func (m *Manager) Shutdown() {
	m.Stop()
}

// IsPlaying returns true if audio is currently playing.
func (m *Manager) IsPlaying() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ctrl != nil && !m.isPaused
}

// IsLoaded returns true if a track is loaded (playing or paused).
func (m *Manager) IsLoaded() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ctrl != nil
}

// SetSpeed sets the playback rate by adjusting the live resampler ratio.
func (m *Manager) SetSpeed(rate float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rate <= 0 {
		rate = 1.0
	}
	m.speed = rate
	if m.resampler != nil && m.trackFormat.SampleRate != 0 {
		speaker.Lock()
		m.resampler.SetRatio(m.resampleRatio(m.trackFormat.SampleRate))
		speaker.Unlock()
	}
}

// Speed returns the current playback rate.
func (m *Manager) Speed() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.speed
}

func (m *Manager) resampleRatio(src beep.SampleRate) float64 {
	return float64(src) / float64(m.currentSampleRate) * m.speed
}

// SetMuted silences output. The track keeps advancing so the position
// clock stays valid.
func (m *Manager) SetMuted(muted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.muted = muted
	if m.volStreamer != nil {
		speaker.Lock()
		m.volStreamer.Silent = muted || m.volume <= 0.01
		speaker.Unlock()
	}
}

// IsMuted returns the mute state.
func (m *Manager) IsMuted() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.muted
}

// SetVolume sets playback volume (0.0 to 1.0).
func (m *Manager) SetVolume(vol float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if vol < 0 {
		vol = 0
	} else if vol > 1 {
		vol = 1
	}
	m.volume = vol

	if m.volStreamer != nil {
		speaker.Lock()
		m.volStreamer.Volume = volumeToPower(vol)
		m.volStreamer.Silent = m.muted || vol <= 0.01
		speaker.Unlock()
	}
}

// Volume returns current volume level.
func (m *Manager) Volume() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.volume
}

// Position returns the current playback position.
func (m *Manager) Position() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.trackStreamer == nil || m.trackFormat.SampleRate == 0 {
		return 0
	}
	speaker.Lock()
	pos := m.trackStreamer.Position()
	speaker.Unlock()
	return m.trackFormat.SampleRate.D(pos)
}

// Duration returns the total duration of the loaded track.
func (m *Manager) Duration() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.trackStreamer == nil || m.trackFormat.SampleRate == 0 {
		return 0
	}
	return m.trackFormat.SampleRate.D(m.trackStreamer.Len())
}

// Remaining returns the remaining time of the loaded track.
func (m *Manager) Remaining() time.Duration {
	d := m.Duration() - m.Position()
	if d < 0 {
		return 0
	}
	return d
}

func (m *Manager) decodeStreamer(path string) (beep.StreamSeekCloser, beep.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		slog.Error("Failed to open audio file", "path", path, "error", err)
		return nil, beep.Format{}, err
	}

	// Try MP3 first
	streamer, format, err := mp3.Decode(f)
	if err == nil {
		return streamer, format, nil
	}

	// Reopen file for WAV attempt (MP3 decode failure might leave file state uncertain)
	f.Close()
	f, err = os.Open(path)
	if err != nil {
		return nil, beep.Format{}, err
	}
	defer func() {
		if err != nil {
			f.Close()
		}
	}()

	streamer, format, err = wav.Decode(f)
	if err != nil {
		slog.Error("Failed to decode audio file", "path", path, "error", err)
		return nil, beep.Format{}, err
	}

	return streamer, format, nil
}
