// Package prefs persists UI preferences (font, view mode, preview visibility)
// as a versioned JSON document.
package prefs

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/peterbourgon/diskv/v3"

	"github.com/MrSnakeDoc/snote/internal/domain"
)

const (
	// StorageKey names the persisted document.
	StorageKey = "snote-ui-storage"
	// Version is the current document version.
	Version = 1

	fontPrefix = "font-"
)

type Font string

const (
	FontSystem       Font = "font-system"
	FontInter        Font = "font-inter"
	FontGeorgia      Font = "font-georgia"
	FontMerriweather Font = "font-merriweather"
	FontMono         Font = "font-mono"
)

// Fonts lists the selectable fonts in menu order.
func Fonts() []Font {
	return []Font{FontSystem, FontInter, FontGeorgia, FontMerriweather, FontMono}
}

type ViewMode string

const (
	ViewList    ViewMode = "list"
	ViewGallery ViewMode = "gallery"
)

type Preferences struct {
	Font        Font     `json:"font"`
	ViewMode    ViewMode `json:"viewMode"`
	HidePreview bool     `json:"hidePreview"`
}

func Defaults() Preferences {
	return Preferences{Font: FontSystem, ViewMode: ViewList}
}

// document is the on-disk envelope.
type document struct {
	State   map[string]any `json:"state"`
	Version int            `json:"version"`
}

// Migrate upgrades a state persisted at version `from`. A missing font
// becomes FontSystem and a legacy bare font name gains the "font-" prefix.
func Migrate(state map[string]any, from int) map[string]any {
	if state == nil {
		state = map[string]any{}
	}
	if from >= Version {
		return state
	}

	font, _ := state["font"].(string)
	switch {
	case font == "":
		state["font"] = string(FontSystem)
	case !strings.HasPrefix(font, fontPrefix):
		state["font"] = fontPrefix + font
	}
	return state
}

// normalize fills missing fields with defaults and drops unknown values.
func normalize(state map[string]any) Preferences {
	p := Defaults()
	if f, ok := state["font"].(string); ok && slices.Contains(Fonts(), Font(f)) {
		p.Font = Font(f)
	}
	if v, ok := state["viewMode"].(string); ok && (ViewMode(v) == ViewList || ViewMode(v) == ViewGallery) {
		p.ViewMode = ViewMode(v)
	}
	if h, ok := state["hidePreview"].(bool); ok {
		p.HidePreview = h
	}
	return p
}

// Store reads and writes preferences through diskv.
type Store struct {
	d *diskv.Diskv
}

// Open returns a Store rooted at dir.
func Open(dir string) *Store {
	return &Store{d: diskv.New(diskv.Options{
		BasePath:     dir,
		Transform:    func(string) []string { return []string{} },
		CacheSizeMax: 64 * 1024,
	})}
}

// Load returns the stored preferences, migrated and normalized.
// A missing document yields Defaults().
func (s *Store) Load() (Preferences, error) {
	if !s.d.Has(StorageKey) {
		return Defaults(), nil
	}
	raw, err := s.d.Read(StorageKey)
	if err != nil {
		return Defaults(), fmt.Errorf("read preferences: %w", err)
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Defaults(), fmt.Errorf("decode preferences: %w", err)
	}
	return normalize(Migrate(doc.State, doc.Version)), nil
}

// Save writes p at the current version.
func (s *Store) Save(p Preferences) error {
	raw, err := json.Marshal(struct {
		State   Preferences `json:"state"`
		Version int         `json:"version"`
	}{State: p, Version: Version})
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	if err := s.d.Write(StorageKey, raw); err != nil {
		return fmt.Errorf("write preferences: %w", err)
	}
	return nil
}

// Update loads, applies fn and saves.
func (s *Store) Update(fn func(*Preferences) error) (Preferences, error) {
	p, err := s.Load()
	if err != nil {
		return p, err
	}
	if err := fn(&p); err != nil {
		return p, err
	}
	return p, s.Save(p)
}

// ParseFont accepts "font-inter" as well as the bare "inter".
func ParseFont(s string) (Font, error) {
	f := Font(s)
	if !strings.HasPrefix(s, fontPrefix) {
		f = Font(fontPrefix + s)
	}
	if !slices.Contains(Fonts(), f) {
		return "", fmt.Errorf("%w: unknown font %q", domain.ErrValidation, s)
	}
	return f, nil
}

func ParseViewMode(s string) (ViewMode, error) {
	switch v := ViewMode(s); v {
	case ViewList, ViewGallery:
		return v, nil
	default:
		return "", fmt.Errorf("%w: unknown view mode %q", domain.ErrValidation, s)
	}
}
