package ui

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"impactdash/adapters/filestore"
	"impactdash/adapters/llm"
	"impactdash/adapters/sqlstore"
	"impactdash/app"
	"impactdash/domain/core"
	"impactdash/internal/auth"
	"impactdash/internal/config"
	"impactdash/internal/quota"
	"impactdash/internal/usage"
	"impactdash/ports"
	"impactdash/ui/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testStartups = `[
  {"id":"s1","name":"Solarkraft","sdgs":[7],"sector":"Energie","city":"Berlin","batch":"Batch 2","status":"active","official":{},"latest":{},"quality":{},"sources":[],"notes":[]},
  {"id":"s2","name":"Kreislauf","sdgs":[12],"sector":"Kreislaufwirtschaft","city":"Hamburg","batch":"Batch 10","status":"active","official":{},"latest":{},"quality":{},"sources":[],"notes":[]}
]`

type recordingMailer struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (m *recordingMailer) AddContact(ctx context.Context, audienceID, email string) (*ports.ContactResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return &ports.ContactResult{ID: "c-1", Object: "contact"}, nil
}

func (m *recordingMailer) RemoveContact(ctx context.Context, audienceID, email string) (*ports.ContactResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return &ports.ContactResult{ID: "c-1", Object: "contact", Deleted: true}, nil
}

type testConfig struct {
	provider   ports.ChatProvider
	mailer     ports.Mailer
	audienceID string
	dailyLimit int
	auth       *auth.Authenticator
	usage      *usage.Service
}

func newTestServer(t *testing.T, cfg testConfig) (*Server, string) {
	t.Helper()
	dir := t.TempDir()
	writeData(t, dir, filestore.StartupsFile, testStartups)
	writeData(t, dir, filestore.SDGsFile, `[{"id":7,"name":"Saubere Energie"},{"id":12,"name":"Nachhaltiger Konsum"}]`)

	clock := core.NewManualClock(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))
	store := filestore.New(dir, clock, nil)

	if cfg.provider == nil {
		cfg.provider = &llm.MockChatProvider{Response: "Antwort"}
	}
	if cfg.mailer == nil {
		cfg.mailer = &recordingMailer{}
	}
	opts := app.ChatOptions{Clock: clock}
	if cfg.dailyLimit > 0 {
		opts.Limiter = quota.NewLimiter(sqlstore.NewMemoryQuotaStore(), clock, cfg.dailyLimit)
	}

	srv, err := NewServer(Dependencies{
		Chat:       app.NewChatService(store, cfg.provider, nil, opts),
		News:       app.NewNewsService(store, clock, nil),
		Newsletter: app.NewNewsletterService(cfg.mailer, cfg.audienceID, nil),
		Dashboard:  app.NewDashboardService(store),
		Usage:      cfg.usage,
		Auth:       cfg.auth,
	})
	require.NoError(t, err)
	return srv, dir
}

func writeData(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func do(h http.Handler, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestChatWithoutProviderKey(t *testing.T) {
	provider, err := llm.NewProvider(llm.Config{Provider: "gemini"})
	require.NoError(t, err)
	srv, _ := newTestServer(t, testConfig{provider: provider})

	w := do(srv.Handler(), http.MethodPost, "/api/chat", `{"message":"Wie viele Startups gibt es?"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Internal server error", body["error"])
	assert.Contains(t, body["message"], "GEMINI_API_KEY")
}

func TestChatRequiresMessage(t *testing.T) {
	provider := &llm.MockChatProvider{}
	srv, _ := newTestServer(t, testConfig{provider: provider})

	for _, payload := range []string{`{}`, `{"message":""}`, `{"message":42}`} {
		w := do(srv.Handler(), http.MethodPost, "/api/chat", payload)
		assert.Equal(t, http.StatusBadRequest, w.Code, payload)
		assert.JSONEq(t, `{"error":"Message is required"}`, w.Body.String())
	}
	assert.Empty(t, provider.Calls())
}

func TestChatReply(t *testing.T) {
	provider := &llm.MockChatProvider{Response: "Es gibt **2** Startups."}
	srv, _ := newTestServer(t, testConfig{provider: provider})

	w := do(srv.Handler(), http.MethodPost, "/api/chat", `{
		"message": "Wie viele?",
		"history": [
			{"role":"user","content":"Hallo"},
			{"role":"assistant","content":42},
			"kaputt",
			{"role":"assistant","content":"Hi!"}
		]
	}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Equal(t, "Es gibt **2** Startups.", body["message"])
	assert.Contains(t, body["html"], "<strong>2</strong>")
	assert.Equal(t, "2025-03-01T10:00:00Z", body["timestamp"])

	calls := provider.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, []ports.ChatMessage{
		{Role: ports.RoleUser, Content: "Hallo"},
		{Role: ports.RoleAssistant, Content: "Hi!"},
		{Role: ports.RoleUser, Content: "Wie viele?"},
	}, calls[0].Messages)
	assert.Contains(t, calls[0].SystemPrompt, "Solarkraft")
}

func TestChatDailyQuota(t *testing.T) {
	provider := &llm.MockChatProvider{}
	srv, _ := newTestServer(t, testConfig{provider: provider, dailyLimit: 2})
	client := &http.Cookie{Name: middleware.ClientCookie, Value: "browser-1"}

	for i := 0; i < 2; i++ {
		w := do(srv.Handler(), http.MethodPost, "/api/chat", `{"message":"Hallo"}`, client)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := do(srv.Handler(), http.MethodPost, "/api/chat", `{"message":"Hallo"}`, client)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, decode(t, w)["error"], "Tageslimit von 2 Nachrichten")
	assert.Len(t, provider.Calls(), 2)

	w = do(srv.Handler(), http.MethodGet, "/api/chat/quota", "", client)
	require.Equal(t, http.StatusOK, w.Code)
	quotaBody := decode(t, w)
	assert.Equal(t, float64(0), quotaBody["remaining"])
	assert.Equal(t, true, quotaBody["limitReached"])
	assert.Equal(t, "2025-03-01", quotaBody["date"])

	other := &http.Cookie{Name: middleware.ClientCookie, Value: "browser-2"}
	w = do(srv.Handler(), http.MethodPost, "/api/chat", `{"message":"Hallo"}`, other)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNewsletterInvalidEmailMakesNoCall(t *testing.T) {
	mailer := &recordingMailer{}
	srv, _ := newTestServer(t, testConfig{mailer: mailer, audienceID: "aud"})

	cases := map[string]string{
		`{"email":"keine-adresse"}`: "Ungültige E-Mail-Adresse",
		`{"email":""}`:              "E-Mail-Adresse ist erforderlich",
		`{"email":["a@b.de"]}`:      "E-Mail-Adresse ist erforderlich",
		`{}`:                        "E-Mail-Adresse ist erforderlich",
	}
	for payload, msg := range cases {
		for _, path := range []string{"/api/newsletter/subscribe", "/api/newsletter/unsubscribe"} {
			w := do(srv.Handler(), http.MethodPost, path, payload)
			assert.Equal(t, http.StatusBadRequest, w.Code, payload)
			assert.JSONEq(t, fmt.Sprintf(`{"error":%q}`, msg), w.Body.String())
		}
	}
	assert.Equal(t, 0, mailer.calls)
}

func TestNewsletterSubscribe(t *testing.T) {
	mailer := &recordingMailer{}
	srv, _ := newTestServer(t, testConfig{mailer: mailer, audienceID: "aud"})

	w := do(srv.Handler(), http.MethodPost, "/api/newsletter/subscribe", `{"email":"a@b.de"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Erfolgreich angemeldet!","data":{"id":"c-1","object":"contact"}}`, w.Body.String())

	w = do(srv.Handler(), http.MethodPost, "/api/newsletter/unsubscribe", `{"email":"a@b.de"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Erfolgreich abgemeldet!", decode(t, w)["message"])
	assert.Equal(t, 2, mailer.calls)
}

func TestNewsletterFailures(t *testing.T) {
	srv, _ := newTestServer(t, testConfig{})
	w := do(srv.Handler(), http.MethodPost, "/api/newsletter/subscribe", `{"email":"a@b.de"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Newsletter-Konfiguration fehlt"}`, w.Body.String())

	srv, _ = newTestServer(t, testConfig{mailer: &recordingMailer{err: fmt.Errorf("boom")}, audienceID: "aud"})
	w = do(srv.Handler(), http.MethodPost, "/api/newsletter/subscribe", `{"email":"a@b.de"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Anmeldung fehlgeschlagen. Bitte versuche es später erneut."}`, w.Body.String())

	w = do(srv.Handler(), http.MethodPost, "/api/newsletter/subscribe", `{not json`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Ein unerwarteter Fehler ist aufgetreten"}`, w.Body.String())
}

func TestNewsRoundTrip(t *testing.T) {
	srv, dir := newTestServer(t, testConfig{})

	w := do(srv.Handler(), http.MethodGet, "/api/news", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(0), body["total_news"])
	assert.Equal(t, []interface{}{}, body["news"])
	assert.Contains(t, body["message"], "News feed is empty")

	writeData(t, dir, filestore.NewsFeedFile, `{
		"last_updated": "2025-02-20T08:00:00Z",
		"total_news": 3,
		"news": [
			{"id":"a","date":"2025-01-05","headline":"A","category":"award","impact":"low"},
			{"id":"b","date":"2025-02-11","headline":"B","category":"funding","impact":"high","verified":true},
			{"id":"c","date":"2024-11-30","headline":"C","category":"team","impact":"medium"}
		]
	}`)

	w = do(srv.Handler(), http.MethodGet, "/api/news", "")
	require.Equal(t, http.StatusOK, w.Code)
	var feed struct {
		TotalNews int `json:"total_news"`
		News      []struct {
			ID string `json:"id"`
		} `json:"news"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &feed))
	assert.Equal(t, 3, feed.TotalNews)
	require.Len(t, feed.News, 3)
	assert.Equal(t, "b", feed.News[0].ID)
	assert.Equal(t, "a", feed.News[1].ID)
	assert.Equal(t, "c", feed.News[2].ID)

	w = do(srv.Handler(), http.MethodGet, "/api/news?highImpact=true", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &feed))
	require.Len(t, feed.News, 1)
	assert.Equal(t, "b", feed.News[0].ID)

	w = do(srv.Handler(), http.MethodGet, "/api/news/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	var stats struct {
		Total      int `json:"total"`
		ByCategory []struct {
			Category string `json:"category"`
			Label    string `json:"label"`
			Count    int    `json:"count"`
		} `json:"byCategory"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 3, stats.Total)
	require.NotEmpty(t, stats.ByCategory)
	assert.Equal(t, "funding", stats.ByCategory[0].Category)
	assert.Equal(t, "Finanzierung", stats.ByCategory[0].Label)
	assert.Equal(t, 1, stats.ByCategory[0].Count)

	writeData(t, dir, filestore.NewsFeedFile, `{"news": [`)
	w = do(srv.Handler(), http.MethodGet, "/api/news", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body = decode(t, w)
	assert.NotEmpty(t, body["error"])
	assert.Equal(t, []interface{}{}, body["news"])
}

func TestDashboardEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, testConfig{})
	h := srv.Handler()

	w := do(h, http.MethodGet, "/api/startups?city=Berlin", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(2), body["total"])
	assert.Equal(t, float64(1), body["filtered"])

	w = do(h, http.MethodGet, "/api/startups?sdg=7,12&batch=Batch%202", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["filtered"])

	w = do(h, http.MethodGet, "/api/startups?sdg=99", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(h, http.MethodGet, "/api/startups?freshnessMin=abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(h, http.MethodGet, "/api/startups/s1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Solarkraft", decode(t, w)["startup"].(map[string]interface{})["name"])

	w = do(h, http.MethodGet, "/api/startups/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Startup nicht gefunden"}`, w.Body.String())

	for _, path := range []string{"/api/facets", "/api/kpis", "/api/charts", "/api/quality", "/api/sdgs", "/api/crawl-runs", "/healthz"} {
		w = do(h, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	w = do(h, http.MethodGet, "/api/usage", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

type summaryRepo struct {
	start, end time.Time
}

func (r *summaryRepo) RecordUsage(ctx context.Context, record *ports.UsageRecord) error {
	return nil
}

func (r *summaryRepo) Summary(ctx context.Context, start, end time.Time) (*ports.UsageSummary, error) {
	r.start, r.end = start, end
	return &ports.UsageSummary{
		PeriodStart:  start,
		PeriodEnd:    end,
		RequestCount: 3,
		TotalTokens:  90,
		ByProvider:   map[string]int{"gemini": 90},
		ByModel: []ports.ModelUsage{
			{Provider: "gemini", Model: "gemini-2.5-flash", RequestCount: 1, TotalTokens: 20},
			{Provider: "gemini", Model: "gemini-2.5-pro", RequestCount: 2, TotalTokens: 70},
		},
	}, nil
}

func TestUsageEndpoint(t *testing.T) {
	repo := &summaryRepo{}
	srv, _ := newTestServer(t, testConfig{usage: usage.NewService(repo, nil, nil)})
	h := srv.Handler()

	w := do(h, http.MethodGet, "/api/usage?days=7", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 7*24*time.Hour, repo.end.Sub(repo.start))

	body := decode(t, w)
	assert.Equal(t, float64(90), body["total_tokens"])
	byModel := body["by_model"].([]interface{})
	require.Len(t, byModel, 2)
	first := byModel[0].(map[string]interface{})
	assert.Equal(t, "gemini-2.5-flash", first["model"])
	assert.Equal(t, float64(1), first["request_count"])

	w = do(h, http.MethodGet, "/api/usage?days=0", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDashboardMissingData(t *testing.T) {
	srv, dir := newTestServer(t, testConfig{})
	require.NoError(t, os.Remove(filepath.Join(dir, filestore.StartupsFile)))

	w := do(srv.Handler(), http.MethodGet, "/api/startups", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Startup-Daten konnten nicht geladen werden"}`, w.Body.String())
}

func TestExport(t *testing.T) {
	srv, _ := newTestServer(t, testConfig{})

	w := do(srv.Handler(), http.MethodGet, "/api/startups/export?city=Hamburg", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, contentTypeCSV, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".csv")
	assert.True(t, strings.HasPrefix(w.Body.String(), "\xef\xbb\xbf"))
	assert.Contains(t, w.Body.String(), "Kreislauf")
	assert.NotContains(t, w.Body.String(), "Solarkraft")

	w = do(srv.Handler(), http.MethodGet, "/api/startups/export?format=xlsx", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, contentTypeXLSX, w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "PK"))

	w = do(srv.Handler(), http.MethodGet, "/api/startups/export?format=pdf", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginWall(t *testing.T) {
	hash, err := auth.HashPassword("geheim")
	require.NoError(t, err)
	authenticator := auth.New(config.AuthConfig{Username: "admin", PasswordHash: hash, Secret: "test-secret"}, nil, nil)
	srv, _ := newTestServer(t, testConfig{auth: authenticator})
	h := srv.Handler()

	w := do(h, http.MethodGet, "/api/startups", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String())

	w = do(h, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	w = do(h, http.MethodGet, "/login", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `action="/api/auth/login"`)

	w = do(h, http.MethodGet, "/api/news", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(h, http.MethodPost, "/api/auth/login", `{"username":"admin","password":"falsch"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Ungültige Anmeldedaten"}`, w.Body.String())

	w = do(h, http.MethodPost, "/api/auth/login", `{"username":"admin","password":"geheim"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var session *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.CookieName {
			session = c
		}
	}
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)

	w = do(h, http.MethodGet, "/api/startups", "", session)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(h, http.MethodGet, "/login", "", session)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestLoginForm(t *testing.T) {
	hash, err := auth.HashPassword("geheim")
	require.NoError(t, err)
	authenticator := auth.New(config.AuthConfig{PasswordHash: hash, Secret: "test-secret"}, nil, nil)
	srv, _ := newTestServer(t, testConfig{auth: authenticator})

	post := func(form string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(form))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, req)
		return w
	}

	w := post("username=admin&password=nein")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Ungültige Anmeldedaten")
	assert.Contains(t, w.Body.String(), `value="admin"`)

	w = post("username=admin&password=geheim")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}
