// Package player implements the fullscreen playback engine: a small state
// machine (idle, countdown, playing) over the editor's segment list, with
// the audio track as the authoritative clock when one is attached.
package player

import (
	"log/slog"
	"sync"
	"time"

	"github.com/Burhanali2211/SegiTelep-sub000/pkg/audio"
	"github.com/Burhanali2211/SegiTelep-sub000/pkg/config"
	"github.com/Burhanali2211/SegiTelep-sub000/pkg/editor"
	"github.com/Burhanali2211/SegiTelep-sub000/pkg/model"
	"github.com/Burhanali2211/SegiTelep-sub000/pkg/timeline"
)

const (
	StateIdle      = "idle"
	StateCountdown = "countdown"
	StatePlaying   = "playing"
)

// ownerKey identifies the player to the playback coordinator.
const ownerKey = "fullscreen-player"

// Coordinator is the subset of the playback coordinator the player needs.
type Coordinator interface {
	RegisterStopCallback(ownerKey string, fn func())
	Unregister(ownerKey string)
	StopAllExcept(ownerKey string)
}

// AudioResolver turns a stored audio reference into a local playable path.
type AudioResolver interface {
	Resolve(fileID, hint string) (string, error)
}

// Tick is the per-frame playback broadcast. Display widgets consume it
// instead of subscribing to the editor store.
type Tick struct {
	State        string  `json:"state"`
	Time         float64 `json:"time"`
	Total        float64 `json:"total"`
	Countdown    int     `json:"countdown,omitempty"`
	SegmentID    string  `json:"segmentId,omitempty"`
	SegmentIndex int     `json:"segmentIndex"`
	PageIndex    int     `json:"pageIndex"`
	Preview      bool    `json:"preview,omitempty"`
}

// Player drives fullscreen playback. It reads from the editor store but
// keeps its own playback-scoped time so entering and leaving playback
// never disturbs authoring selection or view state.
type Player struct {
	mu    sync.Mutex
	store *editor.Store
	audio audio.Service
	coord Coordinator
	rsv   AudioResolver
	cfg   config.PlaybackConfig

	state          string
	playbackTime   float64 // seconds on the merged tape
	pausedTime     float64
	speed          float64
	muted          bool
	mirror         bool
	live           bool
	countdownLeft  int
	audioAttached  bool
	lastTickAt     time.Time // manual-clock baseline
	seekGuardUntil time.Time

	stopLoop      chan struct{}
	stopCountdown chan struct{}

	subMu       sync.Mutex
	subscribers []func(Tick)
}

// New creates a Player wired to the store, audio service and coordinator.
func New(store *editor.Store, aud audio.Service, coord Coordinator, rsv AudioResolver, cfg config.PlaybackConfig) *Player {
	p := &Player{
		store: store,
		audio: aud,
		coord: coord,
		rsv:   rsv,
		cfg:   cfg,
		state: StateIdle,
		speed: 1.0,
	}
	if coord != nil {
		coord.RegisterStopCallback(ownerKey, p.Stop)
	}
	return p
}

// Subscribe registers a tick consumer and returns an unsubscribe func.
func (p *Player) Subscribe(fn func(Tick)) func() {
	p.subMu.Lock()
	defer p.subMu.Unlock()
	p.subscribers = append(p.subscribers, fn)
	idx := len(p.subscribers) - 1
	return func() {
		p.subMu.Lock()
		defer p.subMu.Unlock()
		if idx < len(p.subscribers) {
			p.subscribers[idx] = nil
		}
	}
}

func (p *Player) emit(t Tick) {
	p.subMu.Lock()
	subs := make([]func(Tick), len(p.subscribers))
	copy(subs, p.subscribers)
	p.subMu.Unlock()
	for _, fn := range subs {
		if fn != nil {
			fn(t)
		}
	}
}

// State returns the current machine state.
func (p *Player) State() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Time returns the current playback time in seconds.
func (p *Player) Time() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currentTimeLocked()
}

// TogglePlay starts or pauses playback. From idle it enters countdown (or
// playing directly if countdown is disabled); from countdown or playing
// it returns to idle, remembering the paused position.
func (p *Player) TogglePlay() {
	p.mu.Lock()
	switch p.state {
	case StateIdle:
		p.mu.Unlock()
		p.start()
	case StateCountdown:
		p.cancelCountdownLocked()
		p.state = StateIdle
		p.mu.Unlock()
		p.emitCurrent()
	case StatePlaying:
		p.pauseLocked()
		p.mu.Unlock()
		p.emitCurrent()
	default:
		p.mu.Unlock()
	}
}

func (p *Player) start() {
	if p.coord != nil {
		p.coord.StopAllExcept(ownerKey)
	}

	p.mu.Lock()
	if p.state != StateIdle {
		p.mu.Unlock()
		return
	}
	p.playbackTime = p.pausedTime
	p.attachAudioLocked()

	if p.cfg.CountdownSeconds > 0 {
		p.state = StateCountdown
		p.countdownLeft = p.cfg.CountdownSeconds
		stop := make(chan struct{})
		p.stopCountdown = stop
		p.mu.Unlock()
		go p.runCountdown(stop)
		p.emitCurrent()
		return
	}
	p.beginPlayingLocked()
	p.mu.Unlock()
}

// runCountdown ticks once per second, beeping if configured, then hands
// off to the playing state. Cancel closes the channel.
func (p *Player) runCountdown(stop chan struct{}) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	p.beepTick()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			p.mu.Lock()
			if p.state != StateCountdown {
				p.mu.Unlock()
				return
			}
			p.countdownLeft--
			if p.countdownLeft <= 0 {
				p.stopCountdown = nil
				p.beginPlayingLocked()
				p.mu.Unlock()
				return
			}
			p.mu.Unlock()
			p.beepTick()
			p.emitCurrent()
		}
	}
}

func (p *Player) beepTick() {
	if p.cfg.CountdownBeep && p.audio != nil {
		p.audio.PlayTone(880, 100*time.Millisecond)
	}
}

// beginPlayingLocked transitions to playing and launches the tick loop.
// Caller holds p.mu.
func (p *Player) beginPlayingLocked() {
	p.state = StatePlaying
	p.lastTickAt = time.Now()
	if p.audioAttached {
		p.audio.Seek(secondsToDuration(p.playbackTime))
		p.audio.Play()
	}
	stop := make(chan struct{})
	p.stopLoop = stop
	go p.runLoop(stop)
	slog.Info("Playback started", "time", p.playbackTime)
}

// runLoop is the render tick loop. It schedules itself only while the
// machine is playing; stopping the machine stops the loop.
func (p *Player) runLoop(stop chan struct{}) {
	interval := time.Duration(p.cfg.TickInterval)
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !p.tick() {
				return
			}
		}
	}
}

// tick advances the clock one frame, emits the tick event, and handles
// end-of-timeline. Returns false when the loop should stop.
func (p *Player) tick() bool {
	p.mu.Lock()
	if p.state != StatePlaying {
		p.mu.Unlock()
		return false
	}

	now := time.Now()
	if p.audioAttached {
		// Audio is the authoritative clock; skip it briefly after a
		// manual seek so the loop does not fight the just-set time.
		if now.After(p.seekGuardUntil) {
			p.playbackTime = p.audio.Position().Seconds()
		}
	} else {
		p.playbackTime += now.Sub(p.lastTickAt).Seconds() * p.speed
	}
	p.lastTickAt = now

	total := p.totalDurationLocked()
	if total > 0 && p.playbackTime >= total {
		p.stopPlaybackLocked(true)
		p.mu.Unlock()
		p.emitCurrent()
		slog.Info("Playback reached end of timeline", "total", total)
		return false
	}

	t := p.tickLocked()
	p.mu.Unlock()
	p.emit(t)
	return true
}

// pauseLocked moves playing to idle, keeping the position for resume.
// Caller holds p.mu.
func (p *Player) pauseLocked() {
	if p.state != StatePlaying {
		return
	}
	p.pausedTime = p.currentTimeLocked()
	p.stopPlaybackLocked(false)
	p.pausedTime = p.playbackTime
}

// stopPlaybackLocked tears down the tick loop and audio. When reset is
// true the position returns to zero. Caller holds p.mu.
func (p *Player) stopPlaybackLocked(reset bool) {
	if p.stopLoop != nil {
		close(p.stopLoop)
		p.stopLoop = nil
	}
	if p.audioAttached {
		p.audio.Pause()
	}
	p.state = StateIdle
	if reset {
		p.playbackTime = 0
		p.pausedTime = 0
		if p.audioAttached {
			p.audio.Seek(0)
		}
	} else {
		p.pausedTime = p.playbackTime
	}
}

func (p *Player) cancelCountdownLocked() {
	if p.stopCountdown != nil {
		close(p.stopCountdown)
		p.stopCountdown = nil
	}
	p.countdownLeft = 0
}

// Stop halts playback entirely and resets the position to zero.
func (p *Player) Stop() {
	p.mu.Lock()
	p.cancelCountdownLocked()
	p.stopPlaybackLocked(true)
	p.mu.Unlock()
	p.emitCurrent()
}

// Pause moves playing to idle without resetting the position.
func (p *Player) Pause() {
	p.mu.Lock()
	if p.state == StateCountdown {
		p.cancelCountdownLocked()
		p.state = StateIdle
	} else {
		p.pauseLocked()
	}
	p.mu.Unlock()
	p.emitCurrent()
}

// Play starts playback if idle. Used by remote control; on-screen toggle
// goes through TogglePlay.
func (p *Player) Play() {
	p.mu.Lock()
	idle := p.state == StateIdle
	p.mu.Unlock()
	if idle {
		p.start()
	}
}

// Seek scrubs to an absolute time on the merged tape, clamped to the
// timeline, and syncs the audio position.
func (p *Player) Seek(t float64) {
	p.mu.Lock()
	total := p.totalDurationLocked()
	if t < 0 {
		t = 0
	}
	if total > 0 && t > total {
		t = total
	}
	p.playbackTime = t
	p.pausedTime = t
	p.lastTickAt = time.Now()
	if p.audioAttached {
		p.audio.Seek(secondsToDuration(t))
		guard := time.Duration(p.cfg.SeekDebounce)
		if guard <= 0 {
			guard = 250 * time.Millisecond
		}
		p.seekGuardUntil = time.Now().Add(guard)
	}
	p.mu.Unlock()
	p.emitCurrent()
}

// SeekFraction scrubs by progress-bar fraction (0..1) of total duration.
func (p *Player) SeekFraction(frac float64) {
	p.mu.Lock()
	total := p.totalDurationLocked()
	p.mu.Unlock()
	p.Seek(frac * total)
}

// SkipNext jumps to the start of the segment after the current one.
func (p *Player) SkipNext() {
	p.skip(1)
}

// SkipPrev jumps to the start of the segment before the current one, or
// to the current segment's start when already past it.
func (p *Player) SkipPrev() {
	p.skip(-1)
}

func (p *Player) skip(dir int) {
	p.mu.Lock()
	segs := timeline.VisibleSegments(p.store.Pages())
	if len(segs) == 0 {
		p.mu.Unlock()
		return
	}
	cur := p.currentTimeLocked()
	idx := currentIndex(segs, cur)
	target := idx + dir
	if dir < 0 && idx >= 0 && cur > segs[idx].StartTime+0.5 {
		// Well into a segment: prev returns to its own start first.
		target = idx
	}
	if target < 0 {
		target = 0
	}
	if target >= len(segs) {
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()
	p.Seek(segs[target].StartTime)
}

// ResetPosition rewinds to the start of the tape without changing state.
func (p *Player) ResetPosition() {
	p.Seek(0)
}

// SetSpeed sets the playback rate, clamped to the configured range. With
// audio attached the rate applies to the audio clock itself.
func (p *Player) SetSpeed(rate float64) {
	p.mu.Lock()
	min, max := p.cfg.SpeedMin, p.cfg.SpeedMax
	if min <= 0 {
		min = 0.5
	}
	if max <= 0 {
		max = 2.0
	}
	if rate < min {
		rate = min
	}
	if rate > max {
		rate = max
	}
	p.speed = rate
	if p.audioAttached {
		p.audio.SetSpeed(rate)
	}
	p.mu.Unlock()
	p.emitCurrent()
}

// Speed returns the current playback rate.
func (p *Player) Speed() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.speed
}

// SetVolume sets the audio output level (0..1) without touching the
// transport state.
func (p *Player) SetVolume(v float64) {
	if p.audio != nil {
		p.audio.SetVolume(v)
	}
}

// Volume returns the audio output level, or full volume without audio.
func (p *Player) Volume() float64 {
	if p.audio == nil {
		return 1.0
	}
	return p.audio.Volume()
}

// ToggleMute flips audio mute. The clock keeps running muted.
func (p *Player) ToggleMute() bool {
	p.mu.Lock()
	p.muted = !p.muted
	muted := p.muted
	if p.audioAttached {
		p.audio.SetMuted(muted)
	}
	p.mu.Unlock()
	return muted
}

// ToggleMirror flips horizontal mirroring for prompter glass rigs.
func (p *Player) ToggleMirror() bool {
	p.mu.Lock()
	p.mirror = !p.mirror
	m := p.mirror
	p.mu.Unlock()
	p.emitCurrent()
	return m
}

// Mirror returns the mirroring state.
func (p *Player) Mirror() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mirror
}

// GoLive marks the player as the live surface, for remote status display.
func (p *Player) GoLive() {
	p.mu.Lock()
	p.live = true
	p.mu.Unlock()
	p.emitCurrent()
}

// ExitLive clears the live flag and stops playback.
func (p *Player) ExitLive() {
	p.mu.Lock()
	p.live = false
	p.cancelCountdownLocked()
	p.stopPlaybackLocked(true)
	p.mu.Unlock()
	p.emitCurrent()
}

// IsLive reports whether the player is the live surface.
func (p *Player) IsLive() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.live
}

// Close tears down everything the player holds: countdown timer, tick
// loop, audio track and coordinator registration.
func (p *Player) Close() {
	p.mu.Lock()
	p.cancelCountdownLocked()
	p.stopPlaybackLocked(true)
	if p.audioAttached {
		p.audio.Stop()
		p.audioAttached = false
	}
	p.live = false
	p.mu.Unlock()

	if p.coord != nil {
		p.coord.Unregister(ownerKey)
	}
	slog.Debug("Player closed")
}

// attachAudioLocked resolves and loads the store's audio file if present.
// Failure degrades to the manual clock. Caller holds p.mu.
func (p *Player) attachAudioLocked() {
	af := p.store.AudioFile()
	if af == nil || p.audio == nil {
		p.audioAttached = false
		return
	}
	if p.audioAttached && p.audio.IsLoaded() {
		return
	}
	path := af.SourceRef
	if p.rsv != nil {
		resolved, err := p.rsv.Resolve(af.ID, af.SourceRef)
		if err != nil {
			slog.Warn("Failed to resolve audio file, playing without audio",
				"id", af.ID, "error", err)
			p.audioAttached = false
			return
		}
		path = resolved
	}
	if err := p.audio.Load(path, p.onAudioComplete); err != nil {
		slog.Warn("Failed to load audio track, playing without audio",
			"path", path, "error", err)
		p.audioAttached = false
		return
	}
	p.audio.SetSpeed(p.speed)
	p.audio.SetMuted(p.muted)
	p.audioAttached = true
}

func (p *Player) onAudioComplete() {
	p.mu.Lock()
	p.audioAttached = false
	done := p.state == StatePlaying && p.playbackTime >= p.totalDurationLocked()-0.05
	if done {
		p.stopPlaybackLocked(true)
	}
	p.mu.Unlock()
	if done {
		p.emitCurrent()
	}
}

// currentTimeLocked returns the live clock while playing, else the
// paused position. Caller holds p.mu.
func (p *Player) currentTimeLocked() float64 {
	if p.state == StatePlaying && p.audioAttached && time.Now().After(p.seekGuardUntil) {
		return p.audio.Position().Seconds()
	}
	return p.playbackTime
}

func (p *Player) totalDurationLocked() float64 {
	var audioDur float64
	if af := p.store.AudioFile(); af != nil {
		audioDur = af.Duration
	}
	return timeline.TotalDuration(p.store.Pages(), audioDur)
}

// tickLocked builds the broadcast payload. Caller holds p.mu.
func (p *Player) tickLocked() Tick {
	segs := timeline.VisibleSegments(p.store.Pages())
	t := Tick{
		State:     p.state,
		Time:      p.playbackTime,
		Total:     p.totalDurationLocked(),
		Countdown: p.countdownLeft,
	}
	t.SegmentIndex = -1
	t.PageIndex = -1
	if p.state == StateCountdown && !p.cfg.CountdownPreview {
		// The stage stays black until the countdown finishes.
		return t
	}
	if seg := timeline.SegmentAt(segs, p.playbackTime); seg != nil {
		t.SegmentID = seg.ID
		t.PageIndex = seg.PageIndex
		t.SegmentIndex = currentIndex(segs, p.playbackTime)
		t.Preview = p.state == StateCountdown
	}
	return t
}

func (p *Player) emitCurrent() {
	p.mu.Lock()
	t := p.tickLocked()
	p.mu.Unlock()
	p.emit(t)
}

// CurrentSegment resolves the active segment for the current time, with
// the hold-previous rule through gaps.
func (p *Player) CurrentSegment() *model.Segment {
	p.mu.Lock()
	segs := timeline.VisibleSegments(p.store.Pages())
	t := p.currentTimeLocked()
	p.mu.Unlock()
	return timeline.SegmentAt(segs, t)
}

// Status is the snapshot shared with remote-control clients. The
// controls fields tell the playback UI how to auto-hide its overlay.
type Status struct {
	IsPlaying          bool    `json:"isPlaying"`
	CurrentSpeed       float64 `json:"currentSpeed"`
	CurrentSegment     int     `json:"currentSegment"`
	TotalSegments      int     `json:"totalSegments"`
	ProjectName        string  `json:"projectName"`
	IsLive             bool    `json:"isLive"`
	Mirror             bool    `json:"mirror"`
	Time               float64 `json:"time"`
	TotalDuration      float64 `json:"totalDuration"`
	ControlsHideMs     int64   `json:"controlsHideMs"`
	ControlsAlwaysShow bool    `json:"controlsAlwaysShow"`
}

// Status returns the remote-facing state snapshot.
func (p *Player) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	segs := timeline.VisibleSegments(p.store.Pages())
	idx := currentIndex(segs, p.currentTimeLocked())
	return Status{
		IsPlaying:          p.state == StatePlaying,
		CurrentSpeed:       p.speed,
		CurrentSegment:     idx,
		TotalSegments:      len(segs),
		ProjectName:        p.store.ProjectName(),
		IsLive:             p.live,
		Mirror:             p.mirror,
		Time:               p.currentTimeLocked(),
		TotalDuration:      p.totalDurationLocked(),
		ControlsHideMs:     time.Duration(p.cfg.ControlsHideDelay).Milliseconds(),
		ControlsAlwaysShow: p.cfg.ControlsAlwaysShow,
	}
}

// currentIndex returns the index of the segment containing or nearest
// preceding t, or -1 before the first segment.
func currentIndex(segs []model.Segment, t float64) int {
	idx := -1
	for i, s := range segs {
		if s.StartTime <= t {
			idx = i
		} else {
			break
		}
	}
	return idx
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
