package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Burhanali2211/SegiTelep-sub000/pkg/config"
	"github.com/Burhanali2211/SegiTelep-sub000/pkg/editor"
	"github.com/Burhanali2211/SegiTelep-sub000/pkg/model"
	"github.com/Burhanali2211/SegiTelep-sub000/pkg/player"
)

func newPlaybackFixture(t *testing.T) (*PlaybackHandler, *player.Player) {
	t.Helper()
	ed := editor.NewStore(nil, editor.Options{ChainMode: true, DefaultSegmentDuration: 5})
	ed.AddPageRef("", false)
	r := model.Region{X: 10, Y: 10, Width: 30, Height: 20}
	for i := 0; i < 3; i++ {
		if ed.AddSegment(0, r) == nil {
			t.Fatal("AddSegment returned nil")
		}
	}
	p := player.New(ed, nil, nil, nil, config.PlaybackConfig{SpeedMin: 0.5, SpeedMax: 2.0})
	t.Cleanup(p.Close)
	return NewPlaybackHandler(p, config.RemoteConfig{}, nil), p
}

// memState is an in-memory StateStore for handler tests.
type memState struct {
	vals map[string]string
}

func (m *memState) GetState(_ context.Context, key string) (string, bool) {
	v, ok := m.vals[key]
	return v, ok
}

func (m *memState) SetState(_ context.Context, key, val string) error {
	if m.vals == nil {
		m.vals = make(map[string]string)
	}
	m.vals[key] = val
	return nil
}

func (m *memState) DeleteState(_ context.Context, key string) error {
	delete(m.vals, key)
	return nil
}

func control(t *testing.T, h *PlaybackHandler, body string) (*httptest.ResponseRecorder, player.Status) {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/playback/control", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.HandleControl(rr, req)
	var st player.Status
	if rr.Code == http.StatusOK {
		if err := json.NewDecoder(rr.Body).Decode(&st); err != nil {
			t.Fatalf("decode status: %v", err)
		}
	}
	return rr, st
}

func TestHandleControl(t *testing.T) {
	h, p := newPlaybackFixture(t)

	t.Run("seek", func(t *testing.T) {
		rr, st := control(t, h, `{"action":"seek","value":6}`)
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
		}
		if st.Time != 6 {
			t.Errorf("time = %v, want 6", st.Time)
		}
		if st.CurrentSegment != 1 {
			t.Errorf("current segment = %d, want 1", st.CurrentSegment)
		}
	})

	t.Run("speed clamps", func(t *testing.T) {
		_, st := control(t, h, `{"action":"speed","value":99}`)
		if st.CurrentSpeed != 2.0 {
			t.Errorf("speed = %v, want the configured maximum 2.0", st.CurrentSpeed)
		}
	})

	t.Run("skip and reset", func(t *testing.T) {
		control(t, h, `{"action":"seek","value":0}`)
		_, st := control(t, h, `{"action":"next"}`)
		if st.Time != 5 {
			t.Errorf("time after next = %v, want 5", st.Time)
		}
		_, st = control(t, h, `{"action":"reset"}`)
		if st.Time != 0 {
			t.Errorf("time after reset = %v, want 0", st.Time)
		}
	})

	t.Run("mirror and live", func(t *testing.T) {
		_, st := control(t, h, `{"action":"mirror"}`)
		if !st.Mirror {
			t.Error("mirror toggle not reflected in status")
		}
		control(t, h, `{"action":"mirror"}`)

		_, st = control(t, h, `{"action":"go-live"}`)
		if !st.IsLive {
			t.Error("go-live not reflected in status")
		}
		_, st = control(t, h, `{"action":"exit-live"}`)
		if st.IsLive {
			t.Error("exit-live not reflected in status")
		}
	})

	t.Run("unknown action", func(t *testing.T) {
		rr, _ := control(t, h, `{"action":"warp"}`)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", rr.Code, http.StatusBadRequest)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		rr, _ := control(t, h, `{"action":`)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", rr.Code, http.StatusBadRequest)
		}
	})

	if p.State() != player.StateIdle {
		t.Errorf("player state = %v, want idle after control-only commands", p.State())
	}
}

func TestHandleControlVolumePersists(t *testing.T) {
	ed := editor.NewStore(nil, editor.Options{DefaultSegmentDuration: 5})
	p := player.New(ed, nil, nil, nil, config.PlaybackConfig{})
	t.Cleanup(p.Close)
	st := &memState{}
	h := NewPlaybackHandler(p, config.RemoteConfig{}, st)

	req := httptest.NewRequest("POST", "/api/playback/control",
		strings.NewReader(`{"action":"volume","value":0.8}`))
	rr := httptest.NewRecorder()
	h.HandleControl(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if _, ok := st.vals["volume"]; !ok {
		t.Error("volume change not persisted to the state store")
	}
}

func TestHandleStatus(t *testing.T) {
	h, p := newPlaybackFixture(t)
	p.Seek(11)

	req := httptest.NewRequest("GET", "/api/playback/status", nil)
	rr := httptest.NewRecorder()
	h.HandleStatus(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	var st player.Status
	if err := json.NewDecoder(rr.Body).Decode(&st); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if st.TotalSegments != 3 {
		t.Errorf("total segments = %d, want 3", st.TotalSegments)
	}
	if st.TotalDuration != 15 {
		t.Errorf("total duration = %v, want 15", st.TotalDuration)
	}
	if st.Time != 11 {
		t.Errorf("time = %v, want 11", st.Time)
	}
	if st.IsPlaying {
		t.Error("idle player reported as playing")
	}
}

func TestHandleQRDisabled(t *testing.T) {
	h, _ := newPlaybackFixture(t)

	req := httptest.NewRequest("GET", "/api/playback/qr", nil)
	rr := httptest.NewRecorder()
	h.HandleQR(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d when remote control is disabled", rr.Code, http.StatusNotFound)
	}
}
