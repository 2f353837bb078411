// Package editor models the "/" command palette of the entry editor.
package editor

import (
	"fmt"
	"strings"
)

// CommandKind is the closed set of palette commands.
type CommandKind int

const (
	CommandImage CommandKind = iota
	CommandHeading1
	CommandHeading2
	CommandHeading3
	CommandBulletList
	CommandNumberedList
	CommandQuote
	CommandCodeBlock

	commandCount
)

// Range is a half-open document position range [From, To).
type Range struct {
	From int
	To   int
}

// Coords are screen coordinates of the text cursor.
type Coords struct {
	Left   float64
	Top    float64
	Bottom float64
}

// Document is the editing surface the palette drives.
type Document interface {
	DeleteRange(r Range)
	ToggleHeading(level int)
	ToggleBulletList()
	ToggleOrderedList()
	ToggleBlockquote()
	ToggleCodeBlock()
	// PromptImage asks the user for an image URL and inserts it at the cursor.
	// It fails when the prompt is dismissed or the URL is rejected.
	PromptImage() error
	CursorCoords() Coords
}

// Commands returns every command in palette order.
func Commands() []CommandKind {
	out := make([]CommandKind, 0, commandCount)
	for k := CommandKind(0); k < commandCount; k++ {
		out = append(out, k)
	}
	return out
}

// Title is the label shown in the palette and matched by the filter.
func (k CommandKind) Title() string {
	switch k {
	case CommandImage:
		return "Image"
	case CommandHeading1:
		return "Heading 1"
	case CommandHeading2:
		return "Heading 2"
	case CommandHeading3:
		return "Heading 3"
	case CommandBulletList:
		return "Bullet List"
	case CommandNumberedList:
		return "Numbered List"
	case CommandQuote:
		return "Quote"
	case CommandCodeBlock:
		return "Code Block"
	default:
		return fmt.Sprintf("CommandKind(%d)", int(k))
	}
}

func (k CommandKind) String() string { return k.Title() }

// Apply removes the "/query" text in r and performs the structural edit.
func (k CommandKind) Apply(doc Document, r Range) error {
	var edit func() error
	switch k {
	case CommandImage:
		edit = doc.PromptImage
	case CommandHeading1:
		edit = toggle(func() { doc.ToggleHeading(1) })
	case CommandHeading2:
		edit = toggle(func() { doc.ToggleHeading(2) })
	case CommandHeading3:
		edit = toggle(func() { doc.ToggleHeading(3) })
	case CommandBulletList:
		edit = toggle(doc.ToggleBulletList)
	case CommandNumberedList:
		edit = toggle(doc.ToggleOrderedList)
	case CommandQuote:
		edit = toggle(doc.ToggleBlockquote)
	case CommandCodeBlock:
		edit = toggle(doc.ToggleCodeBlock)
	default:
		return fmt.Errorf("unknown command %d", int(k))
	}

	doc.DeleteRange(r)
	if err := edit(); err != nil {
		return fmt.Errorf("%s: %w", k.Title(), err)
	}
	return nil
}

func toggle(fn func()) func() error {
	return func() error { fn(); return nil }
}

// FilterCommands keeps, in palette order, the commands whose title contains
// query case-insensitively.
func FilterCommands(query string) []CommandKind {
	q := strings.ToLower(query)
	var out []CommandKind
	for _, k := range Commands() {
		if strings.Contains(strings.ToLower(k.Title()), q) {
			out = append(out, k)
		}
	}
	return out
}
