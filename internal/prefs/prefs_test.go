package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/snote/internal/domain"
)

func writeRaw(t *testing.T, dir, raw string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, StorageKey), []byte(raw), 0o600))
}

func TestLoadMissingReturnsDefaults(t *testing.T) {
	s := Open(t.TempDir())

	p, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, Preferences{Font: FontSystem, ViewMode: ViewList, HidePreview: false}, p)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	want := Preferences{Font: FontGeorgia, ViewMode: ViewGallery, HidePreview: true}

	require.NoError(t, Open(dir).Save(want))

	got, err := Open(dir).Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadMigratesLegacyDocuments(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Font
	}{
		{name: "missing font", raw: `{"state":{"viewMode":"gallery"},"version":0}`, want: FontSystem},
		{name: "bare font name", raw: `{"state":{"font":"mono"},"version":0}`, want: FontMono},
		{name: "already prefixed", raw: `{"state":{"font":"font-inter"},"version":0}`, want: FontInter},
		{name: "unknown font falls back", raw: `{"state":{"font":"comic"},"version":0}`, want: FontSystem},
		{name: "current version untouched", raw: `{"state":{"font":"font-merriweather"},"version":1}`, want: FontMerriweather},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeRaw(t, dir, tt.raw)

			p, err := Open(dir).Load()
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Font)
		})
	}
}

func TestLoadKeepsOtherFieldsOnMigration(t *testing.T) {
	dir := t.TempDir()
	writeRaw(t, dir, `{"state":{"font":"georgia","viewMode":"gallery","hidePreview":true}}`)

	p, err := Open(dir).Load()
	require.NoError(t, err)
	assert.Equal(t, Preferences{Font: FontGeorgia, ViewMode: ViewGallery, HidePreview: true}, p)
}

func TestLoadCorruptDocument(t *testing.T) {
	dir := t.TempDir()
	writeRaw(t, dir, `{not json`)

	p, err := Open(dir).Load()
	assert.Error(t, err)
	assert.Equal(t, Defaults(), p)
}

func TestMigrate(t *testing.T) {
	assert.Equal(t, map[string]any{"font": "font-system"}, Migrate(nil, 0))
	assert.Equal(t, map[string]any{"font": "font-inter"}, Migrate(map[string]any{"font": "inter"}, 0))
	assert.Equal(t, map[string]any{"font": "inter"}, Migrate(map[string]any{"font": "inter"}, Version))
}

func TestUpdate(t *testing.T) {
	s := Open(t.TempDir())

	p, err := s.Update(func(p *Preferences) error {
		p.HidePreview = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, p.HidePreview)

	again, err := s.Load()
	require.NoError(t, err)
	assert.True(t, again.HidePreview)
}

func TestParseFont(t *testing.T) {
	f, err := ParseFont("inter")
	require.NoError(t, err)
	assert.Equal(t, FontInter, f)

	f, err = ParseFont("font-mono")
	require.NoError(t, err)
	assert.Equal(t, FontMono, f)

	_, err = ParseFont("papyrus")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestParseViewMode(t *testing.T) {
	v, err := ParseViewMode("gallery")
	require.NoError(t, err)
	assert.Equal(t, ViewGallery, v)

	_, err = ParseViewMode("grid")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
