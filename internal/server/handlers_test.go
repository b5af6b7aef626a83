package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/claude/liftplan/internal/editor"
	"github.com/claude/liftplan/internal/localstore"
	lpmcp "github.com/claude/liftplan/internal/mcp"
	"github.com/claude/liftplan/internal/models"
	"github.com/claude/liftplan/internal/program"
	"github.com/google/uuid"
)

// TestHandleMeDefault verifies the /api/v1/me endpoint returns the dev user
// identity when no Tailscale middleware is active.
func TestHandleMeDefault(t *testing.T) {
	s := &Server{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	ctx := context.WithValue(req.Context(), userInfoKey, UserInfo{Login: "local", DisplayName: "Local Dev User"})
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()

	s.handleMe(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var info UserInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if info.Login != "local" {
		t.Errorf("login = %q, want %q", info.Login, "local")
	}
	if info.DisplayName != "Local Dev User" {
		t.Errorf("display_name = %q, want %q", info.DisplayName, "Local Dev User")
	}
}

// TestHandleMeTailscaleUser verifies the /api/v1/me endpoint returns the
// Tailscale user identity when set in context.
func TestHandleMeTailscaleUser(t *testing.T) {
	s := &Server{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	ctx := context.WithValue(req.Context(), userInfoKey, UserInfo{Login: "alice@example.com", DisplayName: "Alice"})
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()

	s.handleMe(rec, req)

	var info UserInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if info.Login != "alice@example.com" {
		t.Errorf("login = %q, want %q", info.Login, "alice@example.com")
	}
	if info.DisplayName != "Alice" {
		t.Errorf("display_name = %q, want %q", info.DisplayName, "Alice")
	}
}

// newTestServer serves a fresh SQLite store. A tailnet user is created before
// the dev user so the dev user's ID is not 1.
func newTestServer(t *testing.T, apiKey string) *Server {
	t.Helper()
	store, err := localstore.Open(filepath.Join(t.TempDir(), "server.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	if _, err := store.GetOrCreateUser(ctx, "alice@example.com", "Alice"); err != nil {
		t.Fatal(err)
	}
	devID, err := store.GetOrCreateUser(ctx, "local", "Local Dev User")
	if err != nil {
		t.Fatal(err)
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(editor.New(store, program.New(store, log), log), apiKey, devID, log)
}

func devUserID(t *testing.T, s *Server) int {
	t.Helper()
	id, err := s.svc.Store().GetOrCreateUser(context.Background(), "local", "")
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func do(t *testing.T, s *Server, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode %d response: %v", rec.Code, err)
	}
	return v
}

// TestProgramEditFlow drives a program from creation through an edit batch
// and back out through the read endpoints.
func TestProgramEditFlow(t *testing.T) {
	s := newTestServer(t, "k")

	rec := do(t, s, http.MethodPost, "/api/v1/exercises", `{"name":"Overhead Press","equipment":"barbell"}`, "X-API-Key", "k")
	if rec.Code != http.StatusCreated {
		t.Fatalf("create exercise: %d %s", rec.Code, rec.Body)
	}

	rec = do(t, s, http.MethodPost, "/api/v1/programs", `{"name":"Strength"}`, "X-API-Key", "k")
	if rec.Code != http.StatusCreated {
		t.Fatalf("create program: %d %s", rec.Code, rec.Body)
	}
	p := decode[models.Program](t, rec)
	base := "/api/v1/programs/" + p.ID.String()

	rec = do(t, s, http.MethodPost, base+"/edits", `{"operations":[
		{"op":"add","target":"week","week_number":1},
		{"op":"add","target":"day","week_number":1,"day_name":"Press"},
		{"op":"add","target":"exercise","week_number":1,"day_name":"Press","exercise_name":"overhead press","sets":5,"reps":"3-5"},
		{"op":"add","target":"exercise","week_number":1,"day_name":"Press","exercise_name":"Nordic Curl","sets":3,"reps":8},
		{"op":"jump","target":"week"}
	]}`, "X-API-Key", "k")
	if rec.Code != http.StatusOK {
		t.Fatalf("apply: %d %s", rec.Code, rec.Body)
	}
	res := decode[program.Result](t, rec)
	if res.Applied != 3 || res.Skipped != 2 {
		t.Errorf("result = applied %d skipped %d: %+v", res.Applied, res.Skipped, res.Outcomes)
	}

	rec = do(t, s, http.MethodGet, base, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get: %d %s", rec.Code, rec.Body)
	}
	detail := decode[models.ProgramDetail](t, rec)
	ex := detail.Weeks[0].Days[0].Exercises
	if len(ex) != 1 || ex[0].Name != "Overhead Press" || ex[0].Reps.String() != "[3,5]" || *ex[0].Number != 1 {
		t.Errorf("exercises = %+v", ex)
	}

	rec = do(t, s, http.MethodGet, base+"/summary", "")
	summary := decode[editor.ProgramSummary](t, rec)
	if len(summary.Weeks) != 1 || summary.Weeks[0].TotalSets.String() != "[5,5]" {
		t.Errorf("summary = %+v", summary)
	}

	rec = do(t, s, http.MethodGet, "/api/v1/edit-logs?limit=5", "")
	logs := decode[[]models.EditLog](t, rec)
	if len(logs) != 1 || logs[0].Status != models.EditStatusPartial || logs[0].Source != editor.SourceAPI {
		t.Errorf("edit logs = %+v", logs)
	}

	rec = do(t, s, http.MethodGet, "/api/v1/programs", "")
	if programs := decode[[]models.Program](t, rec); len(programs) != 1 || programs[0].ID != p.ID {
		t.Errorf("programs = %+v", programs)
	}
}

// TestAPIErrors verifies the status codes for rejected requests.
func TestAPIErrors(t *testing.T) {
	s := newTestServer(t, "k")
	missing := "/api/v1/programs/" + uuid.NewString()

	tests := []struct {
		name    string
		method  string
		path    string
		body    string
		headers []string
		want    int
	}{
		{"edits without key", http.MethodPost, missing + "/edits", `{"operations":[]}`, nil, http.StatusUnauthorized},
		{"bad program id", http.MethodGet, "/api/v1/programs/abc", "", nil, http.StatusBadRequest},
		{"unknown program", http.MethodGet, missing, "", nil, http.StatusNotFound},
		{"unknown program summary", http.MethodGet, missing + "/summary", "", nil, http.StatusNotFound},
		{"unknown program edits", http.MethodPost, missing + "/edits", `{"operations":[]}`, []string{"X-API-Key", "k"}, http.StatusNotFound},
		{"edits not an array", http.MethodPost, missing + "/edits", `{"operations":{"op":"add"}}`, []string{"X-API-Key", "k"}, http.StatusBadRequest},
		{"edits missing", http.MethodPost, missing + "/edits", `{}`, []string{"X-API-Key", "k"}, http.StatusBadRequest},
		{"invalid json", http.MethodPost, "/api/v1/programs", `{`, []string{"X-API-Key", "k"}, http.StatusBadRequest},
		{"empty program name", http.MethodPost, "/api/v1/programs", `{"name":"  "}`, []string{"X-API-Key", "k"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, tt.method, tt.path, tt.body, tt.headers...)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.want, rec.Body)
			}
		})
	}
}

// TestTailscaleRouting verifies SetTailscale takes effect on an already
// routed server.
func TestTailscaleRouting(t *testing.T) {
	s := newTestServer(t, "")
	dev := devUserID(t, s)
	s.SetTailscale(func(context.Context, string) (UserInfo, error) {
		return UserInfo{Login: "bob@example.com", DisplayName: "Bob"}, nil
	})

	rec := do(t, s, http.MethodGet, "/api/v1/me", "")
	info := decode[UserInfo](t, rec)
	if info.Login != "bob@example.com" {
		t.Errorf("me = %+v", info)
	}

	// Bob's programs are not the dev user's.
	rec = do(t, s, http.MethodPost, "/api/v1/programs", `{"name":"Bob's"}`)
	p := decode[models.Program](t, rec)
	if p.UserID == dev {
		t.Errorf("program owned by dev user: %+v", p)
	}
}

// TestMetricsMount verifies SetMetrics serves the handler at /metrics.
func TestMetricsMount(t *testing.T) {
	s := newTestServer(t, "")
	s.SetMetrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "ok")
	}))
	if rec := do(t, s, http.MethodGet, "/metrics", ""); rec.Body.String() != "ok" {
		t.Errorf("metrics body = %q", rec.Body)
	}
}

// TestDevUserOwnsRequests verifies requests without Tailscale act as the
// resolved dev user, not whichever user happens to hold ID 1.
func TestDevUserOwnsRequests(t *testing.T) {
	s := newTestServer(t, "")
	dev := devUserID(t, s)
	if dev == 1 {
		t.Fatal("fixture should give the dev user an ID other than 1")
	}

	rec := do(t, s, http.MethodPost, "/api/v1/programs", `{"name":"Mine"}`)
	if p := decode[models.Program](t, rec); p.UserID != dev {
		t.Errorf("program owner = %d, want dev user %d", p.UserID, dev)
	}

	alicePrograms, err := s.svc.Store().ListPrograms(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(alicePrograms) != 0 {
		t.Errorf("user 1 got programs: %+v", alicePrograms)
	}
}

// mcpCall posts one JSON-RPC message to /mcp.
func mcpCall(t *testing.T, s *Server, body, session string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	h := append([]string{
		"Content-Type", "application/json",
		"Accept", "application/json, text/event-stream",
	}, headers...)
	if session != "" {
		h = append(h, "Mcp-Session-Id", session)
	}
	return do(t, s, http.MethodPost, "/mcp", body, h...)
}

// TestMCPRequiresAPIKey verifies the MCP endpoint is guarded by the same API
// key as the REST mutations, so its edit tool cannot bypass it.
func TestMCPRequiresAPIKey(t *testing.T) {
	s := newTestServer(t, "k")
	s.SetMCP(lpmcp.New(lpmcp.NewLocal(s.svc), "test", s.log))

	p, err := s.svc.Store().CreateProgram(context.Background(), devUserID(t, s), "Guarded")
	if err != nil {
		t.Fatal(err)
	}

	const initialize = `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test","version":"1"}}}`
	call := `{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"apply_program_edits","arguments":{"program_id":"` +
		p.ID.String() + `","operations":[{"op":"add","target":"week","week_number":1}]}}}`

	tests := []struct {
		name    string
		headers []string
		want    int
	}{
		{"missing key", nil, http.StatusUnauthorized},
		{"wrong key", []string{"X-API-Key", "nope"}, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := mcpCall(t, s, initialize, "", tt.headers...); rec.Code != tt.want {
				t.Errorf("initialize status = %d, want %d", rec.Code, tt.want)
			}
			if rec := mcpCall(t, s, call, "", tt.headers...); rec.Code != tt.want {
				t.Errorf("tools/call status = %d, want %d", rec.Code, tt.want)
			}
		})
	}

	detail := decode[models.ProgramDetail](t, do(t, s, http.MethodGet, "/api/v1/programs/"+p.ID.String(), ""))
	if len(detail.Weeks) != 0 {
		t.Fatalf("unauthenticated MCP call edited the program: %+v", detail.Weeks)
	}

	rec := mcpCall(t, s, initialize, "", "X-API-Key", "k")
	if rec.Code != http.StatusOK {
		t.Fatalf("initialize with key: %d %s", rec.Code, rec.Body)
	}
	rec = mcpCall(t, s, call, rec.Header().Get("Mcp-Session-Id"), "X-API-Key", "k")
	if rec.Code != http.StatusOK {
		t.Fatalf("tools/call with key: %d %s", rec.Code, rec.Body)
	}
	detail = decode[models.ProgramDetail](t, do(t, s, http.MethodGet, "/api/v1/programs/"+p.ID.String(), ""))
	if len(detail.Weeks) != 1 {
		t.Errorf("weeks after keyed call = %+v", detail.Weeks)
	}
}
