package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/snote/internal/config"
	"github.com/MrSnakeDoc/snote/internal/domain"
	"github.com/MrSnakeDoc/snote/internal/httpserver/deps"
	"github.com/MrSnakeDoc/snote/internal/httpserver/mw"
	"github.com/MrSnakeDoc/snote/internal/logger"
	"github.com/MrSnakeDoc/snote/internal/service"
	"github.com/MrSnakeDoc/snote/internal/store"
	"github.com/MrSnakeDoc/snote/internal/store/memory"
)

type fixture struct {
	handler http.Handler
	deps    deps.Deps
}

func newFixture(t *testing.T, mutate ...func(*config.Config, *deps.Deps)) *fixture {
	t.Helper()
	repo := memory.NewStore()
	cfg := &config.Config{RequestTimeout: 2 * time.Second}
	d := deps.Deps{
		Logger:      logger.Nop(),
		StartTime:   time.Now(),
		Version:     "test",
		StoreDriver: config.StoreMemory,
		Entries:     service.NewEntryService(repo, logger.Nop(), service.WithLocation(time.UTC)),
		Store:       repo,
	}
	for _, m := range mutate {
		m(cfg, &d)
	}
	return &fixture{handler: NewRouter(cfg, logger.Nop(), d), deps: d}
}

func (f *fixture) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func TestEntriesCRUD(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/entries", `{"title":"First","content":"<p>Hello world</p>","icon":"star"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[domain.Entry](t, rec)
	assert.Equal(t, "/api/entries/"+created.ID, rec.Header().Get("Location"))
	assert.Equal(t, int64(1), created.Index)
	assert.Equal(t, "Hello world...", created.Preview)
	assert.Equal(t, domain.Icon("star"), created.Icon)

	rec = f.do(t, http.MethodGet, "/api/entries/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created.ID, decode[domain.Entry](t, rec).ID)

	rec = f.do(t, http.MethodPatch, "/api/entries/"+created.ID, `{"title":"Renamed"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[domain.Entry](t, rec)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, created.Index, updated.Index)
	assert.True(t, updated.Date.Equal(created.Date))
	require.NotNil(t, updated.LastUpdated)
	assert.False(t, updated.LastUpdated.Before(updated.Date))

	rec = f.do(t, http.MethodDelete, "/api/entries/"+created.ID, "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/entries/"+created.ID, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, domain.CodeNotFound, decode[apiError](t, rec).Code)

	rec = f.do(t, http.MethodDelete, "/api/entries/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateEntryDefaultsTitle(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/entries", `{"content":"<p>Hello world</p>","preview":"ignored"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	e := decode[domain.Entry](t, rec)
	assert.Equal(t, domain.DefaultTitle(e.Date), e.Title)
	assert.Equal(t, "Hello world...", e.Preview)
}

func TestEntriesValidation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		method string
		target string
		body   string
	}{
		{"empty content", http.MethodPost, "/api/entries", `{"title":"x","content":""}`},
		{"unknown icon", http.MethodPost, "/api/entries", `{"content":"<p>x</p>","icon":"unicorn"}`},
		{"malformed json", http.MethodPost, "/api/entries", `{"content":`},
		{"empty body", http.MethodPost, "/api/entries", ``},
		{"bad sort", http.MethodGet, "/api/entries?sort=size", ``},
		{"bad icon filter", http.MethodGet, "/api/entries?icon=unicorn", ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, tt.method, tt.target, tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Equal(t, domain.CodeValidation, decode[apiError](t, rec).Code)
		})
	}

	rec := f.do(t, http.MethodPatch, "/api/entries/missing", `{"title":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListEntriesQuery(t *testing.T) {
	f := newFixture(t)
	for _, body := range []string{
		`{"title":"Banana","content":"<p>yellow fruit</p>","icon":"sun"}`,
		`{"title":"apple","content":"<p>red fruit</p>","icon":"heart"}`,
		`{"title":"Carrot","content":"<p>orange vegetable</p>","icon":"sun"}`,
	} {
		require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/api/entries", body).Code)
	}

	titles := func(target string) []string {
		rec := f.do(t, http.MethodGet, target, "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var out []string
		for _, e := range decode[[]domain.Entry](t, rec) {
			out = append(out, e.Title)
		}
		return out
	}

	assert.Equal(t, []string{"Banana", "apple", "Carrot"}, titles("/api/entries?sort=index"))
	assert.Equal(t, []string{"Banana", "Carrot", "apple"}, titles("/api/entries?sort=title"))
	assert.Equal(t, []string{"Banana", "Carrot"}, titles("/api/entries?icon=sun&sort=index"))
	assert.Equal(t, []string{"Banana", "apple"}, titles("/api/entries?q=FRUIT&sort=index"))
	assert.Len(t, titles("/api/entries"), 3)
}

func TestCopyEntry(t *testing.T) {
	f := newFixture(t)
	src := decode[domain.Entry](t, f.do(t, http.MethodPost, "/api/entries", `{"title":"Plan","content":"<p>x</p>","icon":"flag"}`))

	rec := f.do(t, http.MethodPost, "/api/entries/"+src.ID+"/copy", "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	cp := decode[domain.Entry](t, rec)
	assert.NotEqual(t, src.ID, cp.ID)
	assert.Equal(t, "Plan (Copy)", cp.Title)
	assert.Equal(t, src.Content, cp.Content)
	assert.Equal(t, src.Icon, cp.Icon)
	assert.Equal(t, src.Index+1, cp.Index)

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodPost, "/api/entries/missing/copy", "").Code)
}

type rpcEnvelope[T any] struct {
	Result struct {
		Data T `json:"data"`
	} `json:"result"`
	Error *struct {
		Message    string `json:"message"`
		Code       string `json:"code"`
		HTTPStatus int    `json:"httpStatus"`
	} `json:"error"`
}

func TestRPCProcedures(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/rpc/entries.create", `{"title":"Via rpc","content":"<p>body</p>","preview":"body..."}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	created := decode[rpcEnvelope[domain.Entry]](t, rec).Result.Data
	require.NotEmpty(t, created.ID)

	rec = f.do(t, http.MethodGet, "/api/rpc/entries.getAll", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[rpcEnvelope[[]domain.Entry]](t, rec).Result.Data, 1)

	rec = f.do(t, http.MethodGet, `/api/rpc/entries.getById?input=%22`+created.ID+`%22`, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Via rpc", decode[rpcEnvelope[domain.Entry]](t, rec).Result.Data.Title)

	rec = f.do(t, http.MethodPost, "/api/rpc/entries.update", `{"id":"`+created.ID+`","content":"<p>new body</p>"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[rpcEnvelope[domain.Entry]](t, rec).Result.Data
	assert.Equal(t, "new body...", updated.Preview)
	assert.Equal(t, "Via rpc", updated.Title)

	rec = f.do(t, http.MethodPost, "/api/rpc/entries.copy", `"`+created.ID+`"`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Via rpc (Copy)", decode[rpcEnvelope[domain.Entry]](t, rec).Result.Data.Title)

	rec = f.do(t, http.MethodPost, "/api/rpc/entries.delete", `"`+created.ID+`"`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, created.ID, decode[rpcEnvelope[struct {
		ID string `json:"id"`
	}]](t, rec).Result.Data.ID)

	rec = f.do(t, http.MethodGet, `/api/rpc/entries.getById?input=%22`+created.ID+`%22`, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	env := decode[rpcEnvelope[domain.Entry]](t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, domain.CodeNotFound, env.Error.Code)
	assert.Equal(t, http.StatusNotFound, env.Error.HTTPStatus)
}

func TestRPCErrors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		method string
		target string
		body   string
		status int
		code   string
	}{
		{"unknown procedure", http.MethodGet, "/api/rpc/entries.nope", "", http.StatusNotFound, domain.CodeNotFound},
		{"query via POST", http.MethodPost, "/api/rpc/entries.getAll", `null`, http.StatusMethodNotAllowed, "METHOD_NOT_SUPPORTED"},
		{"mutation via GET", http.MethodGet, "/api/rpc/entries.create", "", http.StatusMethodNotAllowed, "METHOD_NOT_SUPPORTED"},
		{"missing input", http.MethodGet, "/api/rpc/entries.getById", "", http.StatusBadRequest, domain.CodeValidation},
		{"wrong input type", http.MethodPost, "/api/rpc/entries.delete", `{"id":1}`, http.StatusBadRequest, domain.CodeValidation},
		{"invalid create", http.MethodPost, "/api/rpc/entries.create", `{"content":" "}`, http.StatusBadRequest, domain.CodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, tt.method, tt.target, tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			env := decode[rpcEnvelope[any]](t, rec)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
			assert.Equal(t, tt.status, env.Error.HTTPStatus)
		})
	}
}

func TestIconsAndCommands(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodPost, "/api/entries", `{"content":"<p>a</p>","icon":"moon"}`)
	f.do(t, http.MethodPost, "/api/entries", `{"content":"<p>b</p>"}`)

	rec := f.do(t, http.MethodGet, "/api/icons", "")
	require.Equal(t, http.StatusOK, rec.Code)
	set := decode[domain.IconSet](t, rec)
	assert.Len(t, set.Icons, len(domain.Icons()))
	assert.Equal(t, []domain.Icon{"moon"}, set.Used)

	rec = f.do(t, http.MethodGet, "/api/editor/commands?q=head", "")
	require.Equal(t, http.StatusOK, rec.Code)
	cmds := decode[[]struct {
		Title string `json:"title"`
	}](t, rec)
	require.Len(t, cmds, 3)
	assert.Equal(t, "Heading 3", cmds[2].Title)

	rec = f.do(t, http.MethodGet, "/api/editor/commands", "")
	assert.Len(t, decode[[]any](t, rec), 8)
}

type downStore struct{ *memory.Store }

func (downStore) Ping(context.Context) error { return errors.New("connection refused") }

var _ store.Repository = downStore{}

func TestProbes(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[map[string]any](t, rec)["status"])

	rec = f.do(t, http.MethodGet, "/readyz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode[map[string]any](t, rec)["ready"])

	rec = f.do(t, http.MethodGet, "/infra", "")
	require.Equal(t, http.StatusOK, rec.Code)
	infra := decode[struct {
		Status     string `json:"status"`
		Components map[string]struct {
			OK   bool   `json:"ok"`
			Mode string `json:"mode"`
		} `json:"components"`
	}](t, rec)
	assert.Equal(t, "ok", infra.Status)
	assert.True(t, infra.Components["store"].OK)
	assert.Equal(t, "disabled", infra.Components["cache"].Mode)

	down := newFixture(t, func(_ *config.Config, d *deps.Deps) {
		d.Store = downStore{memory.NewStore()}
	})
	assert.Equal(t, http.StatusServiceUnavailable, down.do(t, http.MethodGet, "/readyz", "").Code)
	assert.Equal(t, "critical", decode[map[string]any](t, down.do(t, http.MethodGet, "/infra", ""))["status"])
}

func TestReload(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, http.StatusServiceUnavailable, f.do(t, http.MethodPost, "/reload", "").Code)

	trigger := make(chan struct{}, 1)
	f = newFixture(t, func(_ *config.Config, d *deps.Deps) { d.ReloadTrigger = trigger })
	assert.Equal(t, http.StatusAccepted, f.do(t, http.MethodPost, "/reload", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, f.do(t, http.MethodPost, "/reload", "").Code)
	<-trigger
}

func TestAccessControl(t *testing.T) {
	f := newFixture(t, func(_ *config.Config, d *deps.Deps) {
		d.AllowedHosts = []string{"notes.example.com"}
		d.AllowedCIDRS = []string{"10.0.0.0/8"}
	})

	// httptest requests come from 192.0.2.1 with Host example.com
	assert.Equal(t, http.StatusForbidden, f.do(t, http.MethodGet, "/api/entries", "").Code)
	assert.Equal(t, http.StatusForbidden, f.do(t, http.MethodGet, "/readyz", "").Code)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/healthz", "").Code)

	req := httptest.NewRequest(http.MethodGet, "/api/entries", nil)
	req.Host = "notes.example.com:8080"
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWriteRateLimit(t *testing.T) {
	f := newFixture(t, func(_ *config.Config, d *deps.Deps) {
		d.WriteLimit = mw.RateLimitConfig{Burst: 1, RefillPerIPPerMin: 1}
	})

	body := `{"content":"<p>x</p>"}`
	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/api/entries", body).Code)

	rec := f.do(t, http.MethodPost, "/api/entries", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// reads are not limited
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/entries", "").Code)
}

func TestCORS(t *testing.T) {
	f := newFixture(t, func(cfg *config.Config, _ *deps.Deps) {
		cfg.CORSOrigins = []string{"http://localhost:5173"}
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/entries", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/entries", nil)
	req.Header.Set("Origin", "http://evil.test")
	rec = httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
