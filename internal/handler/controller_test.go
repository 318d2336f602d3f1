package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobboard/pkg/api"
	"jobboard/pkg/logger"
	"jobboard/pkg/query"
	"jobboard/pkg/render"
)

type stubClient struct {
	mu    sync.Mutex
	calls []string
	fail  bool
}

func (s *stubClient) FetchJobs(ctx context.Context, keyword string, page int) (*api.ScrapeResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, keyword)
	if s.fail {
		return nil, errors.New("upstream down")
	}
	total := 3
	return &api.ScrapeResponse{
		Jobs: []api.JobPosting{
			{CompanyName: "Acme", JobTitle: keyword},
			{CompanyName: "Globex", JobTitle: keyword},
		},
		TotalPages: &total,
	}, nil
}

func (s *stubClient) Stats() api.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return api.Stats{TotalRequests: uint64(len(s.calls))}
}

type testServer struct {
	app    *fiber.App
	client *stubClient
	cookie string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger.SetLogger(logger.Nop())

	client := &stubClient{}
	store := NewSessionStore(func() *query.Controller {
		return query.NewController(client, query.WithLogger(logger.Nop()))
	})
	h := NewController(store, render.NewHTMLRenderer(1), client)
	return &testServer{app: NewApp(h), client: client}
}

func (ts *testServer) do(t *testing.T, method, path string, form url.Values) *http.Response {
	t.Helper()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if ts.cookie != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: ts.cookie})
	}

	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	for _, c := range resp.Cookies() {
		if c.Name == SessionCookie {
			ts.cookie = c.Value
		}
	}
	return resp
}

func (ts *testServer) view(t *testing.T) render.View {
	t.Helper()
	resp := ts.do(t, http.MethodGet, "/api/view", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var v render.View
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestIndex_SetsSessionCookie(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.NotEmpty(t, ts.cookie)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Select a role")
	assert.Contains(t, string(body), "Page 1 of 1")
}

func TestSelectFetchAndPaginate(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodPost, "/role", url.Values{"keyword": {"Data Scientist"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
	assert.Empty(t, ts.client.calls, "selecting a role does not fetch")

	v := ts.view(t)
	assert.Equal(t, "data-scientist", v.Keyword)

	resp = ts.do(t, http.MethodPost, "/fetch", nil)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	v = ts.view(t)
	require.Len(t, v.Rows, 2)
	assert.Equal(t, "Page 1 of 3", v.Pagination.Label)
	assert.True(t, v.Pagination.PrevDisabled)
	assert.False(t, v.Pagination.NextDisabled)

	ts.do(t, http.MethodPost, "/next", nil)
	ts.do(t, http.MethodPost, "/next", nil)
	ts.do(t, http.MethodPost, "/next", nil)

	v = ts.view(t)
	assert.Equal(t, 3, v.Pagination.Page)
	assert.True(t, v.Pagination.NextDisabled)

	ts.do(t, http.MethodPost, "/previous", nil)
	assert.Equal(t, 2, ts.view(t).Pagination.Page)
	assert.Len(t, ts.client.calls, 4)
}

func TestFetch_WithoutRoleShowsBanner(t *testing.T) {
	ts := newTestServer(t)

	ts.do(t, http.MethodPost, "/fetch", nil)

	v := ts.view(t)
	assert.Equal(t, query.MsgNoRoleSelected, v.Error)
	assert.Empty(t, ts.client.calls)
}

func TestFetch_AppliesSubmittedRole(t *testing.T) {
	ts := newTestServer(t)

	ts.do(t, http.MethodPost, "/fetch", url.Values{"keyword": {"backend-engineer"}})

	v := ts.view(t)
	assert.Equal(t, "backend-engineer", v.Keyword)
	assert.Len(t, v.Rows, 2)
	assert.Equal(t, []string{"backend-engineer"}, ts.client.calls)
}

func TestFetch_FailureShowsGenericBanner(t *testing.T) {
	ts := newTestServer(t)
	ts.client.fail = true

	ts.do(t, http.MethodPost, "/role", url.Values{"keyword": {"designer"}})
	ts.do(t, http.MethodPost, "/fetch", nil)

	v := ts.view(t)
	assert.Equal(t, query.MsgFetchFailed, v.Error)
	assert.NotContains(t, v.Error, "upstream down")
}

func TestSelectRole_Unknown(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodPost, "/role", url.Values{"keyword": {"astronaut"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSessionsAreIsolated(t *testing.T) {
	ts := newTestServer(t)
	ts.do(t, http.MethodPost, "/role", url.Values{"keyword": {"designer"}})
	first := ts.cookie

	ts.cookie = ""
	assert.Equal(t, "", ts.view(t).Keyword)
	assert.NotEqual(t, first, ts.cookie)

	ts.cookie = first
	assert.Equal(t, "designer", ts.view(t).Keyword)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var status StatusResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.Equal(t, "ok", status.Status)
	assert.Contains(t, status.Metrics, "sessions")
	assert.Contains(t, status.Metrics, "scrape_client")
}

func TestSessionStore_Sweep(t *testing.T) {
	now := time.Now()
	store := NewSessionStore(func() *query.Controller {
		return query.NewController(&stubClient{}, query.WithLogger(logger.Nop()))
	})
	store.now = func() time.Time { return now }

	oldID, _ := store.Get("")
	now = now.Add(20 * time.Minute)
	freshID, _ := store.Get("")
	require.Equal(t, 2, store.Len())

	now = now.Add(15 * time.Minute)
	assert.Equal(t, 1, store.Sweep(30*time.Minute))

	id, _ := store.Get(freshID)
	assert.Equal(t, freshID, id)
	id, _ = store.Get(oldID)
	assert.NotEqual(t, oldID, id, "swept session gets a new id")
}
