// Package audio generates the reveal chime served to the overlay.
package audio

import (
	"fmt"
	"io"
	"math"
	"path/filepath"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/wav"
	"github.com/spf13/afero"
)

const SampleRate = beep.SampleRate(44100)

// Note is one tone of the chime.
type Note struct {
	Freq     float64
	Duration time.Duration
}

// Chime is a short sequence of shaped sine tones.
type Chime struct {
	Notes   []Note
	Gap     time.Duration
	Release time.Duration
	Volume  float64
}

// DefaultChime is a rising two-note cue.
func DefaultChime() Chime {
	return Chime{
		Notes: []Note{
			{Freq: 1318.51, Duration: 120 * time.Millisecond},
			{Freq: 1760.00, Duration: 180 * time.Millisecond},
		},
		Gap:     30 * time.Millisecond,
		Release: 60 * time.Millisecond,
		Volume:  0.5,
	}
}

// Samples is the chime length in frames.
func (c Chime) Samples() int {
	n := 0
	for i, note := range c.Notes {
		if i > 0 {
			n += SampleRate.N(c.Gap)
		}
		n += SampleRate.N(note.Duration)
	}
	return n
}

// Streamer assembles the chime.
func (c Chime) Streamer() (beep.Streamer, error) {
	parts := make([]beep.Streamer, 0, len(c.Notes)*2)
	for i, note := range c.Notes {
		if i > 0 && c.Gap > 0 {
			parts = append(parts, beep.Silence(SampleRate.N(c.Gap)))
		}
		tone, err := generators.SineTone(SampleRate, note.Freq)
		if err != nil {
			return nil, fmt.Errorf("tone %.2fHz: %w", note.Freq, err)
		}
		n := SampleRate.N(note.Duration)
		parts = append(parts, &release{
			streamer: beep.Take(n, tone),
			total:    n,
			tail:     min(SampleRate.N(c.Release), n),
		})
	}
	return volume(beep.Seq(parts...), c.Volume), nil
}

// Encode writes the chime as 16-bit stereo PCM WAV.
func (c Chime) Encode(w io.WriteSeeker) error {
	s, err := c.Streamer()
	if err != nil {
		return err
	}
	format := beep.Format{SampleRate: SampleRate, NumChannels: 2, Precision: 2}
	if err := wav.Encode(w, s, format); err != nil {
		return fmt.Errorf("encode chime: %w", err)
	}
	return nil
}

// Render encodes the chime into a file on fs and returns its bytes.
func (c Chime) Render(fs afero.Fs, path string) ([]byte, error) {
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create dir for %s: %w", path, err)
	}
	f, err := fs.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	if err := c.Encode(f); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close %s: %w", path, err)
	}
	return afero.ReadFile(fs, path)
}

// WAV renders the chime in memory.
func (c Chime) WAV() ([]byte, error) {
	return c.Render(afero.NewMemMapFs(), "chime.wav")
}

// release fades the last tail frames of a tone to silence.
type release struct {
	streamer beep.Streamer
	pos      int
	total    int
	tail     int
}

func (r *release) Stream(samples [][2]float64) (int, bool) {
	n, ok := r.streamer.Stream(samples)
	start := r.total - r.tail
	for i := 0; i < n; i++ {
		if r.tail > 0 && r.pos >= start {
			vol := float64(r.total-r.pos) / float64(r.tail)
			samples[i][0] *= vol
			samples[i][1] *= vol
		}
		r.pos++
	}
	return n, ok
}

func (r *release) Err() error { return r.streamer.Err() }

func volume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}
