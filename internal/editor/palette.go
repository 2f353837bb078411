package editor

import "unicode"

// Key is a navigation key forwarded to the open palette.
type Key string

const (
	KeyArrowUp   Key = "ArrowUp"
	KeyArrowDown Key = "ArrowDown"
	KeyEnter     Key = "Enter"
	KeyEscape    Key = "Escape"
)

// Overlay is the on-screen popup. It is created when the palette opens and
// released exactly once when it closes.
type Overlay interface {
	Show(at Coords, items []CommandKind, highlighted int)
	Update(at Coords, items []CommandKind, highlighted int)
	Release()
}

// Palette is the slash-command state machine: Closed or Open(query, highlighted).
type Palette struct {
	doc        Document
	newOverlay func() Overlay

	open        bool
	from        int // document position of the triggering "/"
	query       []rune
	candidates  []CommandKind
	highlighted int
	overlay     Overlay
}

func NewPalette(doc Document, newOverlay func() Overlay) *Palette {
	return &Palette{doc: doc, newOverlay: newOverlay}
}

// IsOpen reports whether the palette is showing.
func (p *Palette) IsOpen() bool { return p.open }

// Query is the text typed since the triggering "/".
func (p *Palette) Query() string { return string(p.query) }

// Candidates returns the currently visible commands.
func (p *Palette) Candidates() []CommandKind {
	return append([]CommandKind(nil), p.candidates...)
}

// Highlighted returns the highlighted candidate position.
func (p *Palette) Highlighted() int { return p.highlighted }

// Range covers the "/" and the query typed after it.
func (p *Palette) Range() Range {
	return Range{From: p.from, To: p.from + 1 + len(p.query)}
}

// TypeRune reports a character inserted at document position pos.
// A "/" opens the palette; while open, whitespace closes it and any other
// character extends the query.
func (p *Palette) TypeRune(r rune, pos int) {
	if !p.open {
		if r == '/' {
			p.openAt(pos)
		}
		return
	}
	if unicode.IsSpace(r) {
		p.Close()
		return
	}
	p.query = append(p.query, r)
	p.refilter()
}

// TypeString feeds s rune by rune starting at pos.
func (p *Palette) TypeString(s string, pos int) {
	for _, r := range s {
		p.TypeRune(r, pos)
		pos++
	}
}

// Backspace reports a deletion before the cursor. Deleting the "/" closes the palette.
func (p *Palette) Backspace() {
	if !p.open {
		return
	}
	if len(p.query) == 0 {
		p.Close()
		return
	}
	p.query = p.query[:len(p.query)-1]
	p.refilter()
}

// KeyDown handles navigation keys. consumed reports whether the key was
// handled; err is the failure of the command invoked by KeyEnter, in which
// case the palette is still closed.
func (p *Palette) KeyDown(k Key) (consumed bool, err error) {
	if !p.open {
		return false, nil
	}

	n := len(p.candidates)
	switch k {
	case KeyArrowDown:
		p.highlighted = (p.highlighted + 1) % n
		p.render()
		return true, nil
	case KeyArrowUp:
		p.highlighted = (p.highlighted - 1 + n) % n
		p.render()
		return true, nil
	case KeyEnter:
		return true, p.Select(p.highlighted)
	case KeyEscape:
		p.Close()
		return true, nil
	default:
		return false, nil
	}
}

// Select invokes candidate i (as a click would) and closes the palette.
func (p *Palette) Select(i int) error {
	if !p.open || i < 0 || i >= len(p.candidates) {
		return nil
	}
	cmd, r := p.candidates[i], p.Range()
	p.Close()
	return cmd.Apply(p.doc, r)
}

// ContentChanged repositions the overlay after any document change.
func (p *Palette) ContentChanged() {
	if p.open {
		p.render()
	}
}

// Close returns to the Closed state and releases the overlay.
func (p *Palette) Close() {
	if !p.open {
		return
	}
	p.open = false
	p.query = nil
	p.candidates = nil
	p.highlighted = 0
	if p.overlay != nil {
		p.overlay.Release()
		p.overlay = nil
	}
}

func (p *Palette) openAt(pos int) {
	p.open = true
	p.from = pos
	p.query = nil
	p.candidates = Commands()
	p.highlighted = 0
	p.overlay = p.newOverlay()
	p.overlay.Show(p.doc.CursorCoords(), p.Candidates(), p.highlighted)
}

func (p *Palette) refilter() {
	p.candidates = FilterCommands(string(p.query))
	p.highlighted = 0
	if len(p.candidates) == 0 {
		p.Close()
		return
	}
	p.render()
}

func (p *Palette) render() {
	if p.overlay != nil {
		p.overlay.Update(p.doc.CursorCoords(), p.Candidates(), p.highlighted)
	}
}
