package models

// Rect is an axis-aligned card rectangle in viewport pixels.
type Rect struct {
	Top    int `json:"top"`
	Left   int `json:"left"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Right returns the x coordinate of the rectangle's right edge.
func (r Rect) Right() int { return r.Left + r.Width }

// Bottom returns the y coordinate of the rectangle's bottom edge.
func (r Rect) Bottom() int { return r.Top + r.Height }

// Size is a width/height pair, used for the viewport.
type Size struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// CardState is the lifecycle stage of a card.
type CardState int

const (
	CardScheduled CardState = iota
	CardShown
	CardFading
	CardRemoved
)

func (s CardState) String() string {
	switch s {
	case CardScheduled:
		return "scheduled"
	case CardShown:
		return "shown"
	case CardFading:
		return "fading"
	case CardRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Card is the on-screen representation of one EventItem during a run.
// ID is the item's index in the run's timeline and is never reused.
type Card struct {
	ID    int       `json:"id"`
	Item  EventItem `json:"item"`
	Rect  Rect      `json:"rect"`
	State CardState `json:"state"`
}
