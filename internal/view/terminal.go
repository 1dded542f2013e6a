package view

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/gdamore/tcell/v2"

	"eosthanks/models"
	"eosthanks/utils"
)

const endingText = "THANKS FOR WATCHING"

// ErrQuit is returned by WaitForQuit when the viewer presses q, Esc or Ctrl-C.
var ErrQuit = errors.New("quit requested")

type termCard struct {
	req    CardRequest
	rect   models.Rect
	placed bool
	fading bool
}

// Terminal draws cards onto a tcell screen, projecting viewport pixels onto
// the screen's cell grid.
type Terminal struct {
	mu       sync.Mutex
	screen   tcell.Screen
	viewport models.Size
	measurer *Measurer
	ascii    bool

	cards  map[int]*termCard
	ending bool
}

// OpenTerminal initializes the process terminal as a tcell screen.
func OpenTerminal(viewport models.Size, ascii bool) (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("init screen: %w", err)
	}
	return NewTerminal(screen, viewport, NewMeasurer(), ascii), nil
}

// NewTerminal wraps an initialized screen.
func NewTerminal(screen tcell.Screen, viewport models.Size, measurer *Measurer, ascii bool) *Terminal {
	if measurer == nil {
		measurer = NewMeasurer()
	}
	screen.HideCursor()
	return &Terminal{
		screen:   screen,
		viewport: viewport,
		measurer: measurer,
		ascii:    ascii,
		cards:    make(map[int]*termCard),
	}
}

// Close restores the terminal.
func (t *Terminal) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.screen.Fini()
}

func (t *Terminal) RenderCard(req CardRequest) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.ascii {
		req.DisplayName = utils.ASCIIDisplayName(req.DisplayName)
	}
	t.cards[req.ID] = &termCard{req: req}
	return t.measurer.Width(req)
}

func (t *Terminal) PlaceCard(id int, rect models.Rect) {
	t.update(id, func(c *termCard) {
		c.rect = rect
		c.placed = true
	})
}

func (t *Terminal) MarkFading(id int) {
	t.update(id, func(c *termCard) { c.fading = true })
}

func (t *Terminal) RemoveCard(id int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.cards, id)
	t.drawLocked()
}

func (t *Terminal) FadeInEndingGraphic() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ending = true
	t.drawLocked()
}

func (t *Terminal) update(id int, fn func(*termCard)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	c, ok := t.cards[id]
	if !ok {
		return
	}
	fn(c)
	t.drawLocked()
}

// project maps a viewport pixel position onto the screen grid.
func (t *Terminal) project(top, left int) (x, y int) {
	cols, rows := t.screen.Size()
	if t.viewport.Width > 0 {
		x = left * cols / t.viewport.Width
	}
	if t.viewport.Height > 0 {
		y = top * rows / t.viewport.Height
	}
	return x, y
}

func (t *Terminal) drawLocked() {
	t.screen.Clear()

	ids := make([]int, 0, len(t.cards))
	for id, c := range t.cards {
		if c.placed {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)

	for _, id := range ids {
		c := t.cards[id]
		x, y := t.project(c.rect.Top, c.rect.Left)

		style := tcell.StyleDefault.Foreground(tcell.ColorGreen)
		if c.req.Kind == models.EventKindSubscribed {
			style = tcell.StyleDefault.Foreground(tcell.ColorPurple)
		}
		if c.fading {
			style = style.Dim(true)
		}

		t.drawText(x, y, c.req.DisplayName, style.Bold(true))
		action := c.req.Label
		if c.req.Decoration != "" {
			action += " " + c.req.Decoration
		}
		t.drawText(x, y+1, action, style)
	}

	if t.ending {
		cols, rows := t.screen.Size()
		x := max((cols-len(endingText))/2, 0)
		t.drawText(x, rows/2, endingText, tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true))
	}

	t.screen.Show()
}

func (t *Terminal) drawText(x, y int, s string, style tcell.Style) {
	cols, rows := t.screen.Size()
	if y < 0 || y >= rows {
		return
	}
	for _, r := range s {
		if x >= cols {
			return
		}
		if x >= 0 {
			t.screen.SetContent(x, y, r, nil, style)
		}
		x++
	}
}

// WaitForQuit handles terminal input until ctx is done or the viewer asks to
// quit. Resizes redraw the screen.
func (t *Terminal) WaitForQuit(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		t.screen.PostEvent(tcell.NewEventInterrupt(nil))
	})
	defer stop()

	for {
		ev := t.screen.PollEvent()
		if ev == nil || ctx.Err() != nil {
			return ctx.Err()
		}
		switch ev := ev.(type) {
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' {
				return ErrQuit
			}
		case *tcell.EventResize:
			t.mu.Lock()
			t.screen.Sync()
			t.drawLocked()
			t.mu.Unlock()
		}
	}
}
