package view

import "eosthanks/models"

// Multi fans every side effect out to several sinks. RenderCard reports the
// widest measurement so placement avoids overlap on every output.
type Multi []Sink

func (m Multi) RenderCard(req CardRequest) int {
	width := 0
	for _, s := range m {
		width = max(width, s.RenderCard(req))
	}
	return width
}

func (m Multi) PlaceCard(id int, rect models.Rect) {
	for _, s := range m {
		s.PlaceCard(id, rect)
	}
}

func (m Multi) MarkFading(id int) {
	for _, s := range m {
		s.MarkFading(id)
	}
}

func (m Multi) RemoveCard(id int) {
	for _, s := range m {
		s.RemoveCard(id)
	}
}

func (m Multi) FadeInEndingGraphic() {
	for _, s := range m {
		s.FadeInEndingGraphic()
	}
}
