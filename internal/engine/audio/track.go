package audio

import (
	"bytes"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
	"go.uber.org/zap"

	"github.com/Faultbox/coati/internal/logger"
)

// Track is a music file streamed from memory each time it is played.
// Only one track plays at a time.
type Track struct {
	Name string
	data []byte
}

// NewTrack wraps encoded WAV data.
func NewTrack(name string, data []byte) *Track {
	return &Track{Name: name, data: data}
}

// LoadTrack reads a WAV file into memory.
func LoadTrack(path string) (*Track, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load track: %w", err)
	}
	return NewTrack(path, data), nil
}

type playingTrack struct {
	track    *Track
	streamer beep.StreamSeekCloser
	ctrl     *beep.Ctrl
	volume   *effects.Volume
	playing  atomic.Bool
	paused   bool
}

// PlayTrack replaces the current track with t.
func (m *Manager) PlayTrack(t *Track, loop bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return ErrNotInitialized
	}
	m.stopTrackLocked()

	streamer, format, err := wav.Decode(bytes.NewReader(t.data))
	if err != nil {
		return fmt.Errorf("decode track %s: %w", t.Name, err)
	}

	var src beep.Streamer = streamer
	if loop {
		src = &loopStreamer{streamer: streamer}
	}

	p := &playingTrack{track: t, streamer: streamer}
	p.playing.Store(true)
	p.ctrl = &beep.Ctrl{Streamer: m.resample(src, format.SampleRate)}
	p.volume = &effects.Volume{Streamer: p.ctrl, Base: volumeBase}
	m.track = p
	m.updateTrackVolume()

	// The callback runs on the speaker goroutine with the speaker locked,
	// so it must not take m.mu.
	m.add(beep.Seq(p.volume, beep.Callback(func() { p.playing.Store(false) })))

	logger.Debug("track started", zap.String("track", t.Name), zap.Bool("loop", loop))
	return nil
}

// StopTrack stops the current track, if any.
func (m *Manager) StopTrack() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopTrackLocked()
}

// PauseTrack pauses the current track.
func (m *Manager) PauseTrack() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.track != nil {
		m.setPaused(true)
	}
}

// ResumeTrack resumes a paused track.
func (m *Manager) ResumeTrack() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.track != nil {
		m.setPaused(false)
	}
}

// IsTrackPlaying reports whether t is the current, unpaused track.
func (m *Manager) IsTrackPlaying(t *Track) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.track != nil && m.track.track == t && m.track.playing.Load() && !m.track.paused
}

func (m *Manager) setPaused(paused bool) {
	speaker.Lock()
	m.track.ctrl.Paused = paused
	speaker.Unlock()
	m.track.paused = paused
}

func (m *Manager) stopTrackLocked() {
	p := m.track
	if p == nil {
		return
	}
	speaker.Lock()
	p.ctrl.Streamer = nil
	speaker.Unlock()

	p.playing.Store(false)
	if err := p.streamer.Close(); err != nil {
		logger.Warn("close track", zap.String("track", p.track.Name), zap.Error(err))
	}
	m.track = nil
}

func (m *Manager) updateTrackVolume() {
	if m.track == nil {
		return
	}
	speaker.Lock()
	setGain(m.track.volume, m.masterVolume*m.trackVolume)
	speaker.Unlock()
}
