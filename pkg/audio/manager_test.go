package audio

import (
	"math"
	"testing"
)

func TestNew(t *testing.T) {
	m := New()
	if m == nil {
		t.Fatal("New returned nil")
	}
	if m.Volume() != 1.0 {
		t.Errorf("Expected default volume 1.0, got %f", m.Volume())
	}
	if m.Speed() != 1.0 {
		t.Errorf("Expected default speed 1.0, got %f", m.Speed())
	}
}

func TestManager_StateWithoutTrack(t *testing.T) {
	m := New()

	if m.IsLoaded() {
		t.Error("expected IsLoaded false before Load")
	}
	if m.IsPlaying() {
		t.Error("expected IsPlaying false before Load")
	}
	if m.Position() != 0 {
		t.Errorf("expected Position 0, got %v", m.Position())
	}
	if m.Duration() != 0 {
		t.Errorf("expected Duration 0, got %v", m.Duration())
	}
	if m.Remaining() != 0 {
		t.Errorf("expected Remaining 0, got %v", m.Remaining())
	}

	// Control calls on an empty manager must not panic.
	m.Play()
	m.Pause()
	m.Stop()
	m.Shutdown()
}

func TestManager_VolumeClamping(t *testing.T) {
	m := New()

	m.SetVolume(0.5)
	if m.Volume() != 0.5 {
		t.Errorf("expected volume 0.5, got %f", m.Volume())
	}
	m.SetVolume(-1)
	if m.Volume() != 0 {
		t.Errorf("expected volume clamped to 0, got %f", m.Volume())
	}
	m.SetVolume(2)
	if m.Volume() != 1 {
		t.Errorf("expected volume clamped to 1, got %f", m.Volume())
	}
}

func TestManager_SpeedGuard(t *testing.T) {
	m := New()

	m.SetSpeed(1.5)
	if m.Speed() != 1.5 {
		t.Errorf("expected speed 1.5, got %f", m.Speed())
	}
	m.SetSpeed(0)
	if m.Speed() != 1.0 {
		t.Errorf("non-positive rate should reset to 1.0, got %f", m.Speed())
	}
}

func TestManager_Mute(t *testing.T) {
	m := New()

	m.SetMuted(true)
	if !m.IsMuted() {
		t.Error("expected muted true")
	}
	m.SetMuted(false)
	if m.IsMuted() {
		t.Error("expected muted false")
	}
}

func TestManager_LoadMissingFile(t *testing.T) {
	m := New()
	if err := m.Load("/nonexistent/track.mp3", nil); err == nil {
		t.Error("expected error loading a missing file")
	}
	if m.IsLoaded() {
		t.Error("failed load must not leave a track attached")
	}
}

func TestVolumeToPower(t *testing.T) {
	tests := []struct {
		vol  float64
		want float64
	}{
		{1.0, 0},
		{0.5, -1},
		{0.25, -2},
		{0.01, -10},
		{0, -10},
	}
	for _, tt := range tests {
		if got := volumeToPower(tt.vol); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("volumeToPower(%v) = %v, want %v", tt.vol, got, tt.want)
		}
	}
}
