package view

import (
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// Measurer estimates a card's rendered width in viewport pixels from the
// fixed-advance basic font, scaled to the overlay's name and label sizes.
type Measurer struct {
	face       font.Face
	nameScale  float64
	labelScale float64
	padding    int
	minWidth   int
}

// NewMeasurer returns a measurer tuned for a 48px name over a 32px label.
func NewMeasurer() *Measurer {
	glyph := float64(basicfont.Face7x13.Height)
	return &Measurer{
		face:       basicfont.Face7x13,
		nameScale:  48 / glyph,
		labelScale: 32 / glyph,
		padding:    40,
		minWidth:   120,
	}
}

// Width returns the measured card width for req.
func (m *Measurer) Width(req CardRequest) int {
	name := m.scaled(req.DisplayName, m.nameScale)

	label := req.Label
	if req.Decoration != "" {
		label += " " + req.Decoration
	}
	action := m.scaled(label, m.labelScale)

	return max(name, action, m.minWidth-m.padding) + m.padding
}

func (m *Measurer) scaled(s string, scale float64) int {
	if s == "" {
		return 0
	}
	adv := font.MeasureString(m.face, s)
	return int(math.Ceil(float64(adv.Ceil()) * scale))
}
