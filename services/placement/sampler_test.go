package placement

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eosthanks/models"
)

func newTestSampler(w, h int, seed uint64) *Sampler {
	return NewSampler(models.Size{Width: w, Height: h}, rand.New(rand.NewPCG(seed, seed+1)))
}

func TestSampler_CandidateWithinBounds(t *testing.T) {
	s := newTestSampler(1000, 800, 7)
	require.Equal(t, models.Size{Width: 1000, Height: 800}, s.Viewport())

	for i := 0; i < 5000; i++ {
		r := s.Candidate(200)
		require.GreaterOrEqual(t, r.Top, MarginTop)
		require.LessOrEqual(t, r.Top, 800-MarginBottom-CardHeight)
		require.GreaterOrEqual(t, r.Left, MarginLeft)
		require.LessOrEqual(t, r.Left, 1000-200-MarginRight)
		require.Equal(t, 200, r.Width)
		require.Equal(t, CardHeight, r.Height)
	}
}

func TestSampler_CandidateCoversRange(t *testing.T) {
	// Tight viewport so both ends of each range must show up.
	s := newTestSampler(245, 437, 3)

	seenTop := map[int]bool{}
	seenLeft := map[int]bool{}
	for i := 0; i < 2000; i++ {
		r := s.Candidate(200)
		seenTop[r.Top] = true
		seenLeft[r.Left] = true
	}

	// top in [150, 152], left in [10, 15]
	assert.Len(t, seenTop, 3)
	assert.Len(t, seenLeft, 6)
}

func TestSampler_PlaceAvoidsExistingCard(t *testing.T) {
	first := models.Rect{Top: 200, Left: 100, Width: 200, Height: 135}

	for seed := uint64(0); seed < 50; seed++ {
		s := newTestSampler(1000, 800, seed)
		res := s.Place(200, []models.Rect{first})

		require.LessOrEqual(t, res.Attempts, MaxAttempts)
		if res.Collision {
			assert.Equal(t, MaxAttempts, res.Attempts, "collision accepted before exhausting attempts")
			continue
		}
		assert.False(t, Overlaps(res.Rect, first), "seed %d placed %+v over %+v", seed, res.Rect, first)
	}
}

func TestSampler_PlaceExhaustionAcceptsLastCandidate(t *testing.T) {
	s := newTestSampler(1000, 800, 11)

	// One obstacle covering the whole canvas forces every attempt to collide.
	wall := models.Rect{Top: 0, Left: 0, Width: 1000, Height: 800}
	res := s.Place(200, []models.Rect{wall})

	assert.True(t, res.Collision)
	assert.Equal(t, MaxAttempts, res.Attempts)
	assert.Equal(t, 200, res.Rect.Width)
	assert.GreaterOrEqual(t, res.Rect.Top, MarginTop)
}

func TestSampler_PlaceFirstAttemptWhenEmpty(t *testing.T) {
	s := newTestSampler(1000, 800, 5)
	res := s.Place(150, nil)
	assert.Equal(t, 1, res.Attempts)
	assert.False(t, res.Collision)
}

func TestSampler_DegenerateViewport(t *testing.T) {
	t.Run("margins do not fit", func(t *testing.T) {
		s := newTestSampler(300, 300, 9)
		for i := 0; i < 500; i++ {
			r := s.Candidate(200)
			require.GreaterOrEqual(t, r.Top, 0)
			require.LessOrEqual(t, r.Bottom(), 300)
			require.GreaterOrEqual(t, r.Left, 0)
			require.LessOrEqual(t, r.Right(), 300)
		}
	})

	t.Run("card larger than canvas", func(t *testing.T) {
		s := newTestSampler(100, 100, 9)
		r := s.Candidate(400)
		assert.Equal(t, 0, r.Top)
		assert.Equal(t, 0, r.Left)
	})
}
