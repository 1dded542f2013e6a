package lifecycle

import (
	"slices"
	"sync"

	"eosthanks/models"
)

// VisibleSet tracks cards that are on screen (shown or fading). The loop
// goroutine writes it; status readers may call it from anywhere.
type VisibleSet struct {
	mu    sync.RWMutex
	cards map[int]models.Card
}

// NewVisibleSet creates an empty set.
func NewVisibleSet() *VisibleSet {
	return &VisibleSet{cards: make(map[int]models.Card)}
}

// Add inserts a shown card.
func (v *VisibleSet) Add(card models.Card) {
	v.mu.Lock()
	defer v.mu.Unlock()
	card.State = models.CardShown
	v.cards[card.ID] = card
}

// MarkFading moves a card out of collision consideration while keeping it
// visible.
func (v *VisibleSet) MarkFading(id int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if c, ok := v.cards[id]; ok {
		c.State = models.CardFading
		v.cards[id] = c
	}
}

// Remove drops a card from the set.
func (v *VisibleSet) Remove(id int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.cards, id)
}

// Obstacles returns the rectangles of shown cards ordered by card ID.
// Fading cards are not obstacles.
func (v *VisibleSet) Obstacles() []models.Rect {
	v.mu.RLock()
	defer v.mu.RUnlock()

	ids := make([]int, 0, len(v.cards))
	for id, c := range v.cards {
		if c.State == models.CardShown {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)

	rects := make([]models.Rect, 0, len(ids))
	for _, id := range ids {
		rects = append(rects, v.cards[id].Rect)
	}
	return rects
}

// Snapshot returns a copy of every visible card ordered by ID.
func (v *VisibleSet) Snapshot() []models.Card {
	v.mu.RLock()
	defer v.mu.RUnlock()

	out := make([]models.Card, 0, len(v.cards))
	for _, c := range v.cards {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b models.Card) int { return a.ID - b.ID })
	return out
}

// Len returns the number of visible cards.
func (v *VisibleSet) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.cards)
}
