// Package lifecycle drives each outro card from scheduled to removed.
package lifecycle

import (
	"fmt"
	"log"
	"sync"
	"time"

	"eosthanks/internal/view"
	"eosthanks/models"
	"eosthanks/services/placement"
)

const (
	// FadeDelay is measured from the moment a card is shown.
	FadeDelay = 2000 * time.Millisecond
	// RemoveDelay is measured from the moment a card is shown.
	RemoveDelay = 3500 * time.Millisecond
)

// Scheduler registers one-shot callbacks at offsets from run start.
type Scheduler interface {
	At(offset time.Duration, name string, fn func()) uint64
}

// Env is shared by every controller in a run.
type Env struct {
	RunID     string
	Scheduler Scheduler
	Sink      view.Sink
	Sampler   *placement.Sampler
	Visible   *VisibleSet
}

// Controller owns one card's state transitions. Transitions are purely
// time-driven and are never cancelled.
type Controller struct {
	env *Env

	mu       sync.Mutex
	card     models.Card
	attempts int
}

// NewController creates a controller for item with the run-unique id.
func NewController(env *Env, id int, item models.EventItem) *Controller {
	return &Controller{
		env:  env,
		card: models.Card{ID: id, Item: item, State: models.CardScheduled},
	}
}

// Schedule registers the show, fade and remove transitions relative to the
// reveal offset.
func (c *Controller) Schedule(offset time.Duration) {
	id := c.card.ID
	c.env.Scheduler.At(offset, fmt.Sprintf("card-%d-show", id), c.show)
	c.env.Scheduler.At(offset+FadeDelay, fmt.Sprintf("card-%d-fade", id), c.fade)
	c.env.Scheduler.At(offset+RemoveDelay, fmt.Sprintf("card-%d-remove", id), c.remove)
}

// Card returns a copy of the controller's card.
func (c *Controller) Card() models.Card {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.card
}

// Attempts returns how many candidates placement drew for this card.
func (c *Controller) Attempts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempts
}

func (c *Controller) show() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.card.State != models.CardScheduled {
		return
	}

	req := view.NewCardRequest(c.env.RunID, c.card.ID, c.card.Item)
	width := c.env.Sink.RenderCard(req)

	res := c.env.Sampler.Place(width, c.env.Visible.Obstacles())
	if res.Collision {
		log.Printf("[lifecycle] card %d (%s) placed overlapping after %d attempts", c.card.ID, c.card.Item.DisplayName, res.Attempts)
	}

	c.card.Rect = res.Rect
	c.card.State = models.CardShown
	c.attempts = res.Attempts

	c.env.Visible.Add(c.card)
	c.env.Sink.PlaceCard(c.card.ID, c.card.Rect)
}

func (c *Controller) fade() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.card.State != models.CardShown {
		return
	}

	c.card.State = models.CardFading
	c.env.Visible.MarkFading(c.card.ID)
	c.env.Sink.MarkFading(c.card.ID)
}

func (c *Controller) remove() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.card.State != models.CardFading {
		return
	}

	c.card.State = models.CardRemoved
	c.env.Visible.Remove(c.card.ID)
	c.env.Sink.RemoveCard(c.card.ID)
}
