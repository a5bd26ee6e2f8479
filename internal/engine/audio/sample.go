package audio

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"sync/atomic"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"

	cmath "github.com/Faultbox/coati/pkg/math"
)

// Sample is a decoded sound held in memory so it can be played any number
// of times, also overlapping.
type Sample struct {
	buf *beep.Buffer
}

// DecodeSample decodes WAV data into a Sample.
func DecodeSample(data []byte) (*Sample, error) {
	streamer, format, err := wav.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode wav: %w", err)
	}
	defer streamer.Close()

	buf := beep.NewBuffer(format)
	buf.Append(streamer)
	if err := streamer.Err(); err != nil {
		return nil, fmt.Errorf("decode wav: %w", err)
	}
	return &Sample{buf: buf}, nil
}

// LoadSample reads and decodes a WAV file.
func LoadSample(path string) (*Sample, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load sample: %w", err)
	}
	s, err := DecodeSample(data)
	if err != nil {
		return nil, fmt.Errorf("load sample %s: %w", path, err)
	}
	return s, nil
}

// Len returns the sample length in frames.
func (s *Sample) Len() int { return s.buf.Len() }

// Format returns the sample's audio format.
func (s *Sample) Format() beep.Format { return s.buf.Format() }

// Panning describes where a positional sample sits in the stereo field.
type Panning struct {
	// Pan runs from -1 (left) to 1 (right).
	Pan float64
	// Gain is the distance attenuation, 1 at the listener and 0 at or
	// beyond the sample radius.
	Gain float64
}

// Pan computes the stereo placement of a sound at pos. Positions are in
// screen units with the listener at (0.5, 0.5); the horizontal offset
// saturates half a unit from the centre.
func Pan(pos cmath.Vec2, radius float64) Panning {
	dx := float64(pos.X) - 0.5
	dy := float64(pos.Y) - 0.5
	dist := math.Hypot(dx, dy)

	p := Panning{Pan: clamp(dx/0.5, -1, 1)}
	if radius > 0 {
		p.Gain = clamp(1-dist/radius, 0, 1)
	}
	return p
}

// Channel is one playing instance of a Sample.
type Channel struct {
	ctrl   *beep.Ctrl
	pan    *effects.Pan
	volume *effects.Volume
	radius float64
	level  float64

	pos  atomic.Value // cmath.Vec2
	done atomic.Bool
}

// PlaySample starts s at pos. A looping channel plays until stopped.
func (m *Manager) PlaySample(s *Sample, pos cmath.Vec2, loop bool) (*Channel, error) {
	m.mu.RLock()
	initialized := m.initialized
	level := m.masterVolume * m.sampleVolume
	radius := m.sampleRadius
	m.mu.RUnlock()

	if !initialized {
		return nil, ErrNotInitialized
	}

	ch := newChannel(s, pos, loop, level, radius)
	m.add(m.resample(ch.streamer(), s.buf.Format().SampleRate))
	return ch, nil
}

func newChannel(s *Sample, pos cmath.Vec2, loop bool, level, radius float64) *Channel {
	var src beep.Streamer = s.buf.Streamer(0, s.buf.Len())
	if loop {
		src = &loopStreamer{streamer: s.buf.Streamer(0, s.buf.Len())}
	}

	ch := &Channel{radius: radius, level: level}
	ch.ctrl = &beep.Ctrl{Streamer: src}
	ch.pan = &effects.Pan{Streamer: ch.ctrl}
	ch.volume = &effects.Volume{Streamer: ch.pan, Base: volumeBase}
	ch.place(pos)
	return ch
}

// streamer is the full chain handed to the mixer. It marks the channel
// done when the sample ends.
func (c *Channel) streamer() beep.Streamer {
	return beep.Seq(c.volume, beep.Callback(func() { c.done.Store(true) }))
}

// Active reports whether the channel is still playing.
func (c *Channel) Active() bool { return !c.done.Load() }

// Position returns the position last set for the channel.
func (c *Channel) Position() cmath.Vec2 {
	p, _ := c.pos.Load().(cmath.Vec2)
	return p
}

// SetPosition moves a playing channel.
func (c *Channel) SetPosition(pos cmath.Vec2) {
	speaker.Lock()
	c.place(pos)
	speaker.Unlock()
}

// Stop ends playback. Stopping twice is a no-op.
func (c *Channel) Stop() {
	speaker.Lock()
	c.ctrl.Streamer = nil
	speaker.Unlock()
	c.done.Store(true)
}

func (c *Channel) place(pos cmath.Vec2) {
	p := Pan(pos, c.radius)
	c.pan.Pan = p.Pan
	setGain(c.volume, c.level*p.Gain)
	c.pos.Store(pos)
}
