package audio

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"

	cmath "github.com/Faultbox/coati/pkg/math"
)

// encodeWAV returns a stereo WAV of frames samples at level.
func encodeWAV(t *testing.T, frames int, level float64) []byte {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tone.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}

	tone := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			samples[i] = [2]float64{level, level}
		}
		return len(samples), true
	})
	format := beep.Format{SampleRate: DefaultSampleRate, NumChannels: 2, Precision: 2}
	if err := wav.Encode(f, beep.Take(frames, tone), format); err != nil {
		t.Fatalf("encode wav: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

// drain streams s until it ends or limit frames were produced.
func drain(s beep.Streamer, limit int) (frames int, last [2]float64) {
	buf := make([][2]float64, 256)
	for frames < limit {
		n, ok := s.Stream(buf)
		if n > 0 {
			last = buf[n-1]
		}
		frames += n
		if !ok {
			break
		}
	}
	return frames, last
}

func TestGainExponent(t *testing.T) {
	for _, gain := range []float64{1, 0.5, 0.25, 0.1} {
		if got := math.Pow(volumeBase, gainExponent(gain)); math.Abs(got-gain) > 1e-9 {
			t.Errorf("base^gainExponent(%f) = %f", gain, got)
		}
	}
	if gainExponent(0) > -90 {
		t.Errorf("gainExponent(0) = %f, want very negative", gainExponent(0))
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		v, min, max, want float64
	}{
		{0.5, 0, 1, 0.5},
		{-1, 0, 1, 0},
		{2, 0, 1, 1},
		{0, 0, 1, 0},
		{1, 0, 1, 1},
	}

	for _, tt := range tests {
		if got := clamp(tt.v, tt.min, tt.max); got != tt.want {
			t.Errorf("clamp(%f, %f, %f) = %f, want %f", tt.v, tt.min, tt.max, got, tt.want)
		}
	}
}

func TestPan(t *testing.T) {
	tests := []struct {
		name     string
		pos      cmath.Vec2
		radius   float64
		wantPan  float64
		wantGain float64
	}{
		{"centre", cmath.Vec2{X: 0.5, Y: 0.5}, 0.5, 0, 1},
		{"right edge", cmath.Vec2{X: 1, Y: 0.5}, 0.5, 1, 0},
		{"quarter left", cmath.Vec2{X: 0.25, Y: 0.5}, 0.5, -0.5, 0.5},
		{"far right saturates", cmath.Vec2{X: 3, Y: 0.5}, 0.5, 1, 0},
		{"below centre", cmath.Vec2{X: 0.5, Y: 0.75}, 1, 0, 0.75},
		{"no radius", cmath.Vec2{X: 0.5, Y: 0.5}, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Pan(tt.pos, tt.radius)
			if math.Abs(p.Pan-tt.wantPan) > 1e-6 {
				t.Errorf("Pan = %f, want %f", p.Pan, tt.wantPan)
			}
			if math.Abs(p.Gain-tt.wantGain) > 1e-6 {
				t.Errorf("Gain = %f, want %f", p.Gain, tt.wantGain)
			}
		})
	}
}

func TestNewManager(t *testing.T) {
	m := New()
	if m.MasterVolume() != 1.0 {
		t.Errorf("master volume = %f, want 1.0", m.MasterVolume())
	}
	if m.TrackVolume() != 0.7 {
		t.Errorf("track volume = %f, want 0.7", m.TrackVolume())
	}
	if m.SampleVolume() != 1.0 {
		t.Errorf("sample volume = %f, want 1.0", m.SampleVolume())
	}
	if m.SampleRadius() != DefaultSampleRadius {
		t.Errorf("sample radius = %f, want %f", m.SampleRadius(), DefaultSampleRadius)
	}
	if m.IsInitialized() {
		t.Error("new manager reports initialized")
	}
}

func TestSetVolumeClamps(t *testing.T) {
	m := New()

	m.SetMasterVolume(2.0)
	if m.MasterVolume() != 1.0 {
		t.Errorf("master volume = %f, want 1.0 (clamped)", m.MasterVolume())
	}
	m.SetTrackVolume(-1)
	if m.TrackVolume() != 0 {
		t.Errorf("track volume = %f, want 0 (clamped)", m.TrackVolume())
	}
	m.SetSampleVolume(0.3)
	if m.SampleVolume() != 0.3 {
		t.Errorf("sample volume = %f, want 0.3", m.SampleVolume())
	}

	m.SetSampleRadius(-1)
	if m.SampleRadius() != DefaultSampleRadius {
		t.Errorf("negative radius accepted: %f", m.SampleRadius())
	}
	m.SetSampleRadius(2)
	if m.SampleRadius() != 2 {
		t.Errorf("sample radius = %f, want 2", m.SampleRadius())
	}
}

func TestPlayBeforeInit(t *testing.T) {
	m := New()
	s, err := DecodeSample(encodeWAV(t, 100, 0.5))
	if err != nil {
		t.Fatalf("DecodeSample: %v", err)
	}

	if _, err := m.PlaySample(s, cmath.Vec2{X: 0.5, Y: 0.5}, false); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("PlaySample: err = %v, want ErrNotInitialized", err)
	}
	if err := m.PlayTrack(NewTrack("theme", encodeWAV(t, 100, 0.5)), true); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("PlayTrack: err = %v, want ErrNotInitialized", err)
	}
}

func TestDecodeSample(t *testing.T) {
	s, err := DecodeSample(encodeWAV(t, 1000, 0.5))
	if err != nil {
		t.Fatalf("DecodeSample: %v", err)
	}
	if s.Len() != 1000 {
		t.Errorf("Len = %d, want 1000", s.Len())
	}
	if s.Format().SampleRate != DefaultSampleRate {
		t.Errorf("SampleRate = %d, want %d", s.Format().SampleRate, DefaultSampleRate)
	}

	if _, err := DecodeSample([]byte("RIFF junk")); err == nil {
		t.Error("expected error for invalid wav")
	}
	if _, err := LoadSample(filepath.Join(t.TempDir(), "missing.wav")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadSample missing: err = %v, want ErrNotExist", err)
	}
}

func TestChannelPlaysOnce(t *testing.T) {
	s, _ := DecodeSample(encodeWAV(t, 1000, 0.5))
	ch := newChannel(s, cmath.Vec2{X: 0.5, Y: 0.5}, false, 1, DefaultSampleRadius)

	frames, last := drain(ch.streamer(), 10000)
	if frames != 1000 {
		t.Errorf("frames = %d, want 1000", frames)
	}
	if math.Abs(last[0]-0.5) > 0.01 || math.Abs(last[1]-0.5) > 0.01 {
		t.Errorf("last frame = %v, want ~0.5 on both sides", last)
	}
	if ch.Active() {
		t.Error("channel still active after the sample ended")
	}
}

func TestChannelPositionAndStop(t *testing.T) {
	s, _ := DecodeSample(encodeWAV(t, 1000, 0.5))
	ch := newChannel(s, cmath.Vec2{X: 0.5, Y: 0.5}, true, 1, DefaultSampleRadius)
	stream := ch.streamer()

	// Looping keeps producing past the sample length.
	if frames, _ := drain(stream, 3000); frames < 3000 {
		t.Errorf("looping channel produced %d frames, want 3000", frames)
	}

	ch.SetPosition(cmath.Vec2{X: 2, Y: 2})
	if ch.Position() != (cmath.Vec2{X: 2, Y: 2}) {
		t.Errorf("Position = %v", ch.Position())
	}
	_, last := drain(stream, 256)
	if last != ([2]float64{}) {
		t.Errorf("out-of-range channel frame = %v, want silence", last)
	}

	ch.Stop()
	if ch.Active() {
		t.Error("stopped channel is active")
	}
	if frames, _ := drain(stream, 1000); frames != 0 {
		t.Errorf("stopped channel produced %d frames", frames)
	}
}

func TestLoopStreamer(t *testing.T) {
	s, _ := DecodeSample(encodeWAV(t, 100, 0.25))
	l := &loopStreamer{streamer: s.buf.Streamer(0, s.Len())}

	buf := make([][2]float64, 250)
	n, ok := l.Stream(buf)
	if n != 250 || !ok {
		t.Errorf("Stream = %d, %v, want 250, true", n, ok)
	}
	if math.Abs(buf[249][0]-0.25) > 0.01 {
		t.Errorf("frame 249 = %v, want ~0.25", buf[249])
	}
	if err := l.Err(); err != nil {
		t.Errorf("Err = %v", err)
	}
}

func TestLoadTrack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "theme.wav")
	if err := os.WriteFile(path, encodeWAV(t, 10, 0.1), 0644); err != nil {
		t.Fatal(err)
	}
	tr, err := LoadTrack(path)
	if err != nil {
		t.Fatalf("LoadTrack: %v", err)
	}
	if tr.Name != path {
		t.Errorf("Name = %q, want %q", tr.Name, path)
	}

	m := New()
	if m.IsTrackPlaying(tr) {
		t.Error("track playing before PlayTrack")
	}
	m.StopTrack()
	m.PauseTrack()
	m.ResumeTrack()
}
