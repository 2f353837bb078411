package editor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDoc struct {
	calls    []string
	ranges   []Range
	coords   Coords
	imageErr error
}

func (d *fakeDoc) DeleteRange(r Range)     { d.ranges = append(d.ranges, r); d.calls = append(d.calls, "delete") }
func (d *fakeDoc) ToggleHeading(level int) { d.calls = append(d.calls, []string{"", "h1", "h2", "h3"}[level]) }
func (d *fakeDoc) ToggleBulletList()       { d.calls = append(d.calls, "bullet") }
func (d *fakeDoc) ToggleOrderedList()      { d.calls = append(d.calls, "ordered") }
func (d *fakeDoc) ToggleBlockquote()       { d.calls = append(d.calls, "quote") }
func (d *fakeDoc) ToggleCodeBlock()        { d.calls = append(d.calls, "code") }
func (d *fakeDoc) PromptImage() error      { d.calls = append(d.calls, "image"); return d.imageErr }
func (d *fakeDoc) CursorCoords() Coords    { return d.coords }

type fakeOverlay struct {
	shown    int
	updates  []Coords
	released int
	items    []CommandKind
}

func (o *fakeOverlay) Show(at Coords, items []CommandKind, _ int) {
	o.shown++
	o.items = items
}

func (o *fakeOverlay) Update(at Coords, items []CommandKind, _ int) {
	o.updates = append(o.updates, at)
	o.items = items
}

func (o *fakeOverlay) Release() { o.released++ }

func newPalette() (*Palette, *fakeDoc, *[]*fakeOverlay) {
	doc := &fakeDoc{}
	var overlays []*fakeOverlay
	p := NewPalette(doc, func() Overlay {
		o := &fakeOverlay{}
		overlays = append(overlays, o)
		return o
	})
	return p, doc, &overlays
}

// press sends k and fails the test if the invoked command errors.
func press(t *testing.T, p *Palette, k Key) bool {
	t.Helper()
	consumed, err := p.KeyDown(k)
	require.NoError(t, err)
	return consumed
}

func TestCommandsOrderAndTitles(t *testing.T) {
	var titles []string
	for _, k := range Commands() {
		titles = append(titles, k.Title())
	}
	assert.Equal(t, []string{
		"Image", "Heading 1", "Heading 2", "Heading 3",
		"Bullet List", "Numbered List", "Quote", "Code Block",
	}, titles)
}

func TestFilterCommands(t *testing.T) {
	tests := []struct {
		query string
		want  []CommandKind
	}{
		{query: "", want: Commands()},
		{query: "head", want: []CommandKind{CommandHeading1, CommandHeading2, CommandHeading3}},
		{query: "LIST", want: []CommandKind{CommandBulletList, CommandNumberedList}},
		{query: "o", want: []CommandKind{CommandQuote, CommandCodeBlock}},
		{query: "xyz", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterCommands(tt.query))
		})
	}
}

func TestSlashOpensWithFullList(t *testing.T) {
	p, _, overlays := newPalette()

	p.TypeRune('a', 0)
	assert.False(t, p.IsOpen())

	p.TypeRune('/', 1)
	require.True(t, p.IsOpen())
	assert.Equal(t, "", p.Query())
	assert.Equal(t, Commands(), p.Candidates())
	assert.Equal(t, 0, p.Highlighted())
	require.Len(t, *overlays, 1)
	assert.Equal(t, 1, (*overlays)[0].shown)
}

func TestFilteredNavigationInvokesFilteredCandidate(t *testing.T) {
	p, doc, overlays := newPalette()

	p.TypeRune('/', 10)
	p.TypeString("head", 11)
	require.Equal(t, []CommandKind{CommandHeading1, CommandHeading2, CommandHeading3}, p.Candidates())

	assert.True(t, press(t, p, KeyArrowDown))
	assert.True(t, press(t, p, KeyArrowDown))
	assert.Equal(t, 2, p.Highlighted())

	assert.True(t, press(t, p, KeyEnter))
	assert.False(t, p.IsOpen())
	assert.Equal(t, []string{"delete", "h3"}, doc.calls)
	assert.Equal(t, []Range{{From: 10, To: 15}}, doc.ranges)
	assert.Equal(t, 1, (*overlays)[0].released)
}

func TestNavigationWrapsBothWays(t *testing.T) {
	p, _, _ := newPalette()
	p.TypeRune('/', 0)
	n := len(Commands())

	press(t, p, KeyArrowUp)
	assert.Equal(t, n-1, p.Highlighted())
	press(t, p, KeyArrowDown)
	assert.Equal(t, 0, p.Highlighted())
}

func TestFilterChangeResetsHighlight(t *testing.T) {
	p, _, _ := newPalette()
	p.TypeRune('/', 0)
	press(t, p, KeyArrowDown)
	press(t, p, KeyArrowDown)

	p.TypeRune('l', 1)
	assert.Equal(t, 0, p.Highlighted())
}

func TestEmptyCandidatesClose(t *testing.T) {
	p, doc, overlays := newPalette()
	p.TypeRune('/', 0)
	p.TypeString("zz", 1)

	assert.False(t, p.IsOpen())
	assert.Empty(t, doc.calls)
	assert.Equal(t, 1, (*overlays)[0].released)
}

func TestEscapeClosesWithoutInvoking(t *testing.T) {
	p, doc, overlays := newPalette()
	p.TypeRune('/', 0)

	assert.True(t, press(t, p, KeyEscape))
	assert.False(t, p.IsOpen())
	assert.Empty(t, doc.calls)
	assert.Equal(t, 1, (*overlays)[0].released)

	// Keys are not consumed once closed.
	assert.False(t, press(t, p, KeyEnter))
}

func TestBackspace(t *testing.T) {
	p, _, overlays := newPalette()
	p.TypeRune('/', 0)
	p.TypeString("qu", 1)
	require.Equal(t, []CommandKind{CommandQuote}, p.Candidates())

	p.Backspace()
	assert.Equal(t, "q", p.Query())
	assert.Equal(t, []CommandKind{CommandQuote}, p.Candidates())

	p.Backspace()
	assert.True(t, p.IsOpen())
	assert.Equal(t, Commands(), p.Candidates())

	p.Backspace()
	assert.False(t, p.IsOpen())
	assert.Equal(t, 1, (*overlays)[0].released)
}

func TestSpaceCloses(t *testing.T) {
	p, _, _ := newPalette()
	p.TypeRune('/', 0)
	p.TypeRune(' ', 1)
	assert.False(t, p.IsOpen())
}

func TestOverlayTracksCursor(t *testing.T) {
	p, doc, overlays := newPalette()
	p.TypeRune('/', 0)

	doc.coords = Coords{Left: 40, Top: 100, Bottom: 118}
	p.ContentChanged()

	o := (*overlays)[0]
	require.NotEmpty(t, o.updates)
	assert.Equal(t, doc.coords, o.updates[len(o.updates)-1])

	p.Close()
	p.ContentChanged()
	assert.Len(t, o.updates, 1, "closed palette must not touch the released overlay")
}

func TestReopenUsesFreshOverlay(t *testing.T) {
	p, _, overlays := newPalette()
	p.TypeRune('/', 0)
	press(t, p, KeyEscape)
	p.TypeRune('/', 5)

	require.Len(t, *overlays, 2)
	assert.Equal(t, 1, (*overlays)[0].released)
	assert.Equal(t, 0, (*overlays)[1].released)
}

func TestEnterReportsCommandFailure(t *testing.T) {
	p, doc, overlays := newPalette()
	dismissed := errors.New("prompt dismissed")
	doc.imageErr = dismissed

	p.TypeRune('/', 0)
	p.TypeString("ima", 1)
	require.Equal(t, []CommandKind{CommandImage}, p.Candidates())

	consumed, err := p.KeyDown(KeyEnter)
	assert.True(t, consumed)
	require.ErrorIs(t, err, dismissed)
	assert.Contains(t, err.Error(), "Image")
	assert.False(t, p.IsOpen())
	assert.Equal(t, 1, (*overlays)[0].released)
	assert.Equal(t, []string{"delete", "image"}, doc.calls)
}

func TestSelectByClick(t *testing.T) {
	p, doc, _ := newPalette()
	p.TypeRune('/', 3)

	require.NoError(t, p.Select(int(CommandCodeBlock)))
	assert.Equal(t, []string{"delete", "code"}, doc.calls)
	assert.Equal(t, []Range{{From: 3, To: 4}}, doc.ranges)
}

func TestEveryCommandApplies(t *testing.T) {
	want := map[CommandKind]string{
		CommandImage:        "image",
		CommandHeading1:     "h1",
		CommandHeading2:     "h2",
		CommandHeading3:     "h3",
		CommandBulletList:   "bullet",
		CommandNumberedList: "ordered",
		CommandQuote:        "quote",
		CommandCodeBlock:    "code",
	}
	for _, k := range Commands() {
		doc := &fakeDoc{}
		require.NoError(t, k.Apply(doc, Range{}))
		assert.Equal(t, []string{"delete", want[k]}, doc.calls, k.Title())
	}

	assert.Error(t, CommandKind(99).Apply(&fakeDoc{}, Range{}))
}
