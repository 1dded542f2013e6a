// Package placement picks on-screen rectangles for outro cards.
package placement

import (
	"math/rand/v2"

	"eosthanks/models"
)

const (
	CardHeight   = 135
	MarginTop    = 150
	MarginBottom = 150
	MarginLeft   = 10
	MarginRight  = 30

	// MaxAttempts bounds collision-avoidance resampling. The last candidate
	// is accepted even if it overlaps so the sequence never stalls.
	MaxAttempts = 10
)

// Result is a placement decision.
type Result struct {
	Rect      models.Rect
	Attempts  int
	Collision bool
}

// Sampler draws uniformly random card positions inside a fixed viewport.
type Sampler struct {
	viewport models.Size
	rng      *rand.Rand
}

// NewSampler creates a sampler for viewport. A nil rng uses a randomly
// seeded source.
func NewSampler(viewport models.Size, rng *rand.Rand) *Sampler {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Sampler{viewport: viewport, rng: rng}
}

// Viewport returns the canvas size the sampler places into.
func (s *Sampler) Viewport() models.Size {
	return s.viewport
}

// Candidate draws one rectangle for a card of the given width without
// checking collisions.
func (s *Sampler) Candidate(width int) models.Rect {
	top := s.sample(MarginTop, s.viewport.Height-MarginBottom-CardHeight, s.viewport.Height, CardHeight)
	left := s.sample(MarginLeft, s.viewport.Width-width-MarginRight, s.viewport.Width, width)
	return models.Rect{Top: top, Left: left, Width: width, Height: CardHeight}
}

// Place resamples up to MaxAttempts times until a candidate misses every
// obstacle. If all attempts collide the final candidate is returned with
// Collision set.
func (s *Sampler) Place(width int, obstacles []models.Rect) Result {
	var r Result
	for r.Attempts < MaxAttempts {
		r.Attempts++
		r.Rect = s.Candidate(width)
		if !HasCollision(r.Rect, obstacles) {
			r.Collision = false
			return r
		}
		r.Collision = true
	}
	return r
}

// sample returns a uniform integer in [lo, hi]. When the margins leave no
// room (hi < lo) it falls back to the full axis [0, extent-size], pinned at
// 0 if the card does not fit at all.
func (s *Sampler) sample(lo, hi, extent, size int) int {
	if hi < lo {
		lo, hi = 0, extent-size
		if hi < 0 {
			return 0
		}
	}
	return lo + s.rng.IntN(hi-lo+1)
}
