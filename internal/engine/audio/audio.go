// Package audio plays positional sound samples and music tracks.
package audio

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
	"go.uber.org/zap"

	"github.com/Faultbox/coati/internal/logger"
)

// DefaultSampleRate is the output sample rate.
const DefaultSampleRate = beep.SampleRate(44100)

// DefaultSampleRadius is the distance from the listener at which samples
// fade to silence.
const DefaultSampleRadius = 0.5

// ErrNotInitialized is returned when playing before Init.
var ErrNotInitialized = errors.New("audio: not initialized")

// Manager owns the output mixer. Samples and tracks play through it
// concurrently.
type Manager struct {
	mu sync.RWMutex

	initialized bool
	sampleRate  beep.SampleRate
	mixer       *beep.Mixer

	track *playingTrack

	masterVolume float64
	trackVolume  float64
	sampleVolume float64
	sampleRadius float64
}

// New creates a manager with default volumes.
func New() *Manager {
	return &Manager{
		sampleRate:   DefaultSampleRate,
		mixer:        &beep.Mixer{},
		masterVolume: 1.0,
		trackVolume:  0.7,
		sampleVolume: 1.0,
		sampleRadius: DefaultSampleRadius,
	}
}

// Init opens the audio device.
func (m *Manager) Init() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}

	if err := speaker.Init(m.sampleRate, m.sampleRate.N(time.Second/30)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	speaker.Play(m.mixer)

	m.initialized = true
	logger.Info("audio initialized", zap.Int("sample_rate", int(m.sampleRate)))
	return nil
}

// Close stops all playback and releases the device.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return
	}
	m.stopTrackLocked()
	speaker.Clear()
	speaker.Close()
	m.initialized = false
}

// IsInitialized returns whether the audio device is open.
func (m *Manager) IsInitialized() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.initialized
}

// SetMasterVolume sets the master volume (0.0 to 1.0).
func (m *Manager) SetMasterVolume(vol float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.masterVolume = clamp(vol, 0, 1)
	m.updateTrackVolume()
}

// SetTrackVolume sets the music volume (0.0 to 1.0).
func (m *Manager) SetTrackVolume(vol float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trackVolume = clamp(vol, 0, 1)
	m.updateTrackVolume()
}

// SetSampleVolume sets the volume of newly played samples (0.0 to 1.0).
func (m *Manager) SetSampleVolume(vol float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sampleVolume = clamp(vol, 0, 1)
}

// MasterVolume returns the master volume.
func (m *Manager) MasterVolume() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.masterVolume
}

// TrackVolume returns the music volume.
func (m *Manager) TrackVolume() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.trackVolume
}

// SampleVolume returns the sample volume.
func (m *Manager) SampleVolume() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sampleVolume
}

// SetSampleRadius sets the distance at which positional samples become
// silent. Non-positive values are ignored.
func (m *Manager) SetSampleRadius(r float64) {
	if r <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sampleRadius = r
}

// SampleRadius returns the positional falloff radius.
func (m *Manager) SampleRadius() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sampleRadius
}

// add starts s on the output mixer.
func (m *Manager) add(s beep.Streamer) {
	speaker.Lock()
	m.mixer.Add(s)
	speaker.Unlock()
}

// resample converts s to the output rate when needed.
func (m *Manager) resample(s beep.Streamer, rate beep.SampleRate) beep.Streamer {
	if rate == m.sampleRate {
		return s
	}
	return beep.Resample(4, rate, m.sampleRate, s)
}

// volumeBase is the Base of every effects.Volume created here.
const volumeBase = 2

// gainExponent converts a linear 0-1 gain to the exponent effects.Volume
// expects, so that volumeBase^exponent == gain.
func gainExponent(gain float64) float64 {
	if gain <= 0 {
		return -100
	}
	return math.Log2(gain)
}

// setGain points v at a linear gain, muting it at zero.
func setGain(v *effects.Volume, gain float64) {
	v.Silent = gain <= 0
	v.Volume = gainExponent(gain)
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
