// Package view turns card lifecycle transitions into output: terminal
// drawing, MQTT messages for a browser overlay, or log lines.
package view

import "eosthanks/models"

//go:generate mockgen -destination=viewmock/sink.go -package=viewmock eosthanks/internal/view Sink

// CardRequest carries everything a sink needs to build a card element.
type CardRequest struct {
	RunID       string
	ID          int
	DisplayName string
	Kind        models.EventKind
	Label       string
	Months      int
	Decoration  string
}

// NewCardRequest derives the rendered text for item.
func NewCardRequest(runID string, id int, item models.EventItem) CardRequest {
	return CardRequest{
		RunID:       runID,
		ID:          id,
		DisplayName: item.DisplayName,
		Kind:        item.Kind,
		Label:       item.Kind.Label(),
		Months:      item.Months,
		Decoration:  item.Decoration(),
	}
}

// Sink receives the side effects of the card lifecycle. RenderCard builds
// the element off-screen and reports its measured width in viewport pixels;
// PlaceCard then shows it at its assigned rectangle. Implementations log
// their own failures and never block the sequence.
type Sink interface {
	RenderCard(req CardRequest) int
	PlaceCard(id int, rect models.Rect)
	MarkFading(id int)
	RemoveCard(id int)
	FadeInEndingGraphic()
}
