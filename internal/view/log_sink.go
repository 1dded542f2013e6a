package view

import (
	"log"

	"eosthanks/models"
)

// LogSink writes one log line per side effect.
type LogSink struct {
	logger   *log.Logger
	measurer *Measurer
}

// NewLogSink logs through logger, or the standard logger when nil.
func NewLogSink(logger *log.Logger, measurer *Measurer) *LogSink {
	if logger == nil {
		logger = log.Default()
	}
	if measurer == nil {
		measurer = NewMeasurer()
	}
	return &LogSink{logger: logger, measurer: measurer}
}

func (s *LogSink) RenderCard(req CardRequest) int {
	w := s.measurer.Width(req)
	s.logger.Printf("[view] render card %d: %s %s %s (width %d)", req.ID, req.DisplayName, req.Label, req.Decoration, w)
	return w
}

func (s *LogSink) PlaceCard(id int, rect models.Rect) {
	s.logger.Printf("[view] place card %d at top=%d left=%d", id, rect.Top, rect.Left)
}

func (s *LogSink) MarkFading(id int) {
	s.logger.Printf("[view] fade card %d", id)
}

func (s *LogSink) RemoveCard(id int) {
	s.logger.Printf("[view] remove card %d", id)
}

func (s *LogSink) FadeInEndingGraphic() {
	s.logger.Printf("[view] fade in ending graphic")
}
