package placement

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"

	"eosthanks/models"
)

func TestOverlaps(t *testing.T) {
	base := models.Rect{Top: 200, Left: 100, Width: 200, Height: 135}

	tests := []struct {
		name  string
		other models.Rect
		want  bool
	}{
		{"identical", base, true},
		{"contained", models.Rect{Top: 220, Left: 120, Width: 10, Height: 10}, true},
		{"partial", models.Rect{Top: 300, Left: 250, Width: 200, Height: 135}, true},
		{"touching right edge", models.Rect{Top: 200, Left: 300, Width: 50, Height: 135}, true},
		{"left of", models.Rect{Top: 200, Left: 0, Width: 99, Height: 135}, false},
		{"right of", models.Rect{Top: 200, Left: 301, Width: 50, Height: 135}, false},
		{"above", models.Rect{Top: 0, Left: 100, Width: 200, Height: 199}, false},
		{"below", models.Rect{Top: 336, Left: 100, Width: 200, Height: 135}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(base, tt.other))
		})
	}
}

func TestOverlaps_Symmetric(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	randRect := func() models.Rect {
		return models.Rect{
			Top:    rng.IntN(1000),
			Left:   rng.IntN(1000),
			Width:  1 + rng.IntN(300),
			Height: 1 + rng.IntN(300),
		}
	}

	for i := 0; i < 2000; i++ {
		a, b := randRect(), randRect()
		assert.Equal(t, Overlaps(a, b), Overlaps(b, a), "a=%+v b=%+v", a, b)
		assert.True(t, Overlaps(a, a), "rect must overlap itself: %+v", a)
	}
}

func TestHasCollision(t *testing.T) {
	first := models.Rect{Top: 200, Left: 100, Width: 200, Height: 135}
	obstacles := []models.Rect{
		{Top: 600, Left: 600, Width: 100, Height: 135},
		first,
	}

	assert.True(t, HasCollision(models.Rect{Top: 250, Left: 150, Width: 200, Height: 135}, obstacles))
	assert.False(t, HasCollision(models.Rect{Top: 400, Left: 100, Width: 200, Height: 135}, obstacles))
	assert.False(t, HasCollision(first, nil))
}
