package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/snote/internal/config"
	"github.com/MrSnakeDoc/snote/internal/domain"
	"github.com/MrSnakeDoc/snote/internal/httpserver"
	"github.com/MrSnakeDoc/snote/internal/httpserver/deps"
	"github.com/MrSnakeDoc/snote/internal/logger"
	"github.com/MrSnakeDoc/snote/internal/service"
	"github.com/MrSnakeDoc/snote/internal/store/memory"
)

type harness struct {
	server  *httptest.Server
	svc     *service.EntryService
	dataDir string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	color.NoColor = true

	repo := memory.NewStore()
	svc := service.NewEntryService(repo, logger.Nop())
	d := deps.Deps{
		Logger:      logger.Nop(),
		StartTime:   time.Now(),
		StoreDriver: config.StoreMemory,
		Entries:     svc,
		Store:       repo,
	}
	srv := httptest.NewServer(httpserver.NewRouter(&config.Config{RequestTimeout: 2 * time.Second}, logger.Nop(), d))
	t.Cleanup(srv.Close)
	return &harness{server: srv, svc: svc, dataDir: t.TempDir()}
}

func (h *harness) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := New()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--server", h.server.URL, "--data-dir", h.dataDir}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (h *harness) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := h.run(t, "", args...)
	require.NoError(t, err, out)
	return out
}

func TestCreateAndList(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun(t, "create", "--title", "Groceries", "--icon", "star", "--content", "<p>milk and eggs</p>")
	assert.Contains(t, out, "created entry #1")
	h.mustRun(t, "create", "--title", "Trip", "--content", "<p>pack the tent</p>")

	out = h.mustRun(t, "list")
	assert.Contains(t, out, "Groceries")
	assert.Contains(t, out, "Trip")
	assert.Contains(t, out, "milk and eggs")

	out = h.mustRun(t, "list", "-q", "tent")
	assert.Contains(t, out, "Trip")
	assert.NotContains(t, out, "Groceries")

	out = h.mustRun(t, "list", "--icon", "star", "--no-preview")
	assert.Contains(t, out, "Groceries")
	assert.NotContains(t, out, "Trip")
	assert.NotContains(t, out, "milk and eggs")
}

func TestListEmpty(t *testing.T) {
	h := newHarness(t)
	assert.Contains(t, h.mustRun(t, "list"), "no entries")
}

func TestListRejectsBadFlags(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "", "list", "--sort", "size")
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = h.run(t, "", "list", "--icon", "nope")
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = h.run(t, "", "list", "--view", "grid")
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestCreateFromStdin(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "<p>from a pipe</p>", "create", "-f", "-")
	require.NoError(t, err, out)

	list, err := h.svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "<p>from a pipe</p>", list[0].Content)
}

func TestCreateRequiresContent(t *testing.T) {
	h := newHarness(t)
	_, err := h.run(t, "", "create", "--title", "empty")
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestGetEditCopyDelete(t *testing.T) {
	h := newHarness(t)
	e, err := h.svc.Create(context.Background(), domain.CreateInput{Title: "Draft", Content: "<p>first</p>"})
	require.NoError(t, err)

	out := h.mustRun(t, "get", e.ID)
	assert.Contains(t, out, "Draft")
	assert.Contains(t, out, "<p>first</p>")

	h.mustRun(t, "edit", e.ID, "--title", "Final", "--icon", "heart")
	got, err := h.svc.Get(context.Background(), e.ID)
	require.NoError(t, err)
	assert.Equal(t, "Final", got.Title)
	assert.Equal(t, domain.Icon("heart"), got.Icon)
	assert.Equal(t, "<p>first</p>", got.Content)

	out = h.mustRun(t, "copy", e.ID)
	assert.Contains(t, out, "Final (Copy)")

	h.mustRun(t, "delete", e.ID)
	_, err = h.svc.Get(context.Background(), e.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEditNothing(t *testing.T) {
	h := newHarness(t)
	e, err := h.svc.Create(context.Background(), domain.CreateInput{Content: "<p>x</p>"})
	require.NoError(t, err)

	_, err = h.run(t, "", "edit", e.ID)
	require.Error(t, err)
}

func TestMissingEntry(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "", "get", "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = h.run(t, "", "delete", "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIcons(t *testing.T) {
	h := newHarness(t)
	_, err := h.svc.Create(context.Background(), domain.CreateInput{Content: "<p>x</p>", Icon: "star"})
	require.NoError(t, err)

	out := h.mustRun(t, "icons")
	for _, info := range domain.Icons() {
		assert.Contains(t, out, string(info.Key))
	}
	assert.Contains(t, out, "yes")
}

func TestPrefs(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun(t, "prefs")
	assert.Contains(t, out, "font-system")
	assert.Contains(t, out, "list")

	h.mustRun(t, "prefs", "set", "font", "georgia")
	h.mustRun(t, "prefs", "set", "view", "gallery")
	h.mustRun(t, "prefs", "set", "hide-preview", "true")

	out = h.mustRun(t, "prefs", "get")
	assert.Contains(t, out, "font-georgia")
	assert.Contains(t, out, "gallery")
	assert.Contains(t, out, "true")

	_, err := h.run(t, "", "prefs", "set", "font", "comic-sans")
	require.ErrorIs(t, err, domain.ErrValidation)
	_, err = h.run(t, "", "prefs", "set", "colour", "red")
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestGalleryView(t *testing.T) {
	h := newHarness(t)
	e, err := h.svc.Create(context.Background(), domain.CreateInput{Title: "Card", Content: "<p>body text</p>"})
	require.NoError(t, err)
	h.mustRun(t, "prefs", "set", "view", "gallery")

	out := h.mustRun(t, "list")
	assert.Contains(t, out, "Card")
	assert.Contains(t, out, e.ID)
	assert.Contains(t, out, "body text")
}

func TestVersion(t *testing.T) {
	h := newHarness(t)
	assert.True(t, strings.HasPrefix(h.mustRun(t, "version"), "snote "))
}
