package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"khata/internal/budget"
	"khata/internal/log"
	"khata/internal/services"
	"khata/internal/storage"
	"khata/internal/summary"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store := storage.NewMemoryRepository()
	budgets := budget.NewFileStore(filepath.Join(t.TempDir(), "budgets.json"))
	summaries := summary.NewService(store, time.Minute)
	logger := log.New(log.DefaultConfig())
	commands := services.NewCommandService(store, budgets, summaries, nil, logger)
	return NewServer(":0", commands, store, summaries, logger)
}

func postJSON(t *testing.T, s *Server, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return payload
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)
	if rec := get(t, s, "/healthz"); rec.Code != http.StatusOK {
		t.Errorf("/healthz = %d", rec.Code)
	}
	if rec := get(t, s, "/readyz"); rec.Code != http.StatusOK {
		t.Errorf("/readyz = %d", rec.Code)
	}
}

func TestVoiceCommandAdd(t *testing.T) {
	s := newTestServer(t)

	rec := postJSON(t, s, "/api/voice_command", map[string]string{"text": "spent 250 on groceries"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	payload := decode(t, rec)
	if payload["action"] != "add" {
		t.Errorf("action = %v, want add", payload["action"])
	}
	reply, _ := payload["reply"].(string)
	if !strings.Contains(reply, "₹250") || !strings.Contains(reply, "food") {
		t.Errorf("reply = %q", reply)
	}
	intentFields, ok := payload["intent"].(map[string]any)
	if !ok || intentFields["category"] != "food" {
		t.Errorf("intent = %v, want parsed category food", payload["intent"])
	}
}

func TestVoiceCommandSetBudget(t *testing.T) {
	s := newTestServer(t)

	rec := postJSON(t, s, "/api/voice_command", map[string]string{
		"text": "set budget of 5000 for food warn me at 70 percent",
	})
	payload := decode(t, rec)
	status, ok := payload["budget_status"].(map[string]any)
	if !ok {
		t.Fatalf("budget_status missing: %v", payload)
	}
	if status["category"] != "food" || status["limit"] != 5000.0 {
		t.Errorf("budget_status = %v", status)
	}
	if payload["warn_ratio"] != 0.7 {
		t.Errorf("warn_ratio = %v, want 0.7", payload["warn_ratio"])
	}
}

func TestVoiceCommandChart(t *testing.T) {
	s := newTestServer(t)
	postJSON(t, s, "/api/voice_command", map[string]string{"text": "spent 250 on groceries"})

	rec := postJSON(t, s, "/api/voice_command", map[string]string{"text": "show me a chart"})
	payload := decode(t, rec)
	series, ok := payload["chart_series"].(map[string]any)
	if !ok {
		t.Fatalf("chart_series missing: %v", payload)
	}
	breakdown, _ := series["category_breakdown"].([]any)
	if len(breakdown) == 0 {
		t.Error("category_breakdown should not be empty")
	}
	if payload["reply"] == "" {
		t.Error("chart reply missing")
	}
}

func TestVoiceCommandBadBody(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/voice_command", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestAddEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := postJSON(t, s, "/api/add", map[string]any{
		"amount": 120.5, "category": "Transport", "date": "2025-06-10", "description": "airport cab",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	payload := decode(t, rec)
	if payload["category"] != "transport" {
		t.Errorf("category = %v, want lowercased", payload["category"])
	}
	if payload["amount"] != 120.5 {
		t.Errorf("amount = %v, want 120.5", payload["amount"])
	}
	if payload["date"] != "2025-06-10" {
		t.Errorf("date = %v", payload["date"])
	}
}

func TestAddEndpointRejectsBadInput(t *testing.T) {
	s := newTestServer(t)

	if rec := postJSON(t, s, "/api/add", map[string]any{"amount": 0}); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("zero amount status = %d, want 422", rec.Code)
	}
	if rec := postJSON(t, s, "/api/add", map[string]any{"amount": 10, "date": "10/06/2025"}); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad date status = %d, want 422", rec.Code)
	}
	if rec := get(t, s, "/api/add"); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET status = %d, want 405", rec.Code)
	}
}

func TestRecentLimitClamping(t *testing.T) {
	s := newTestServer(t)
	for i := 0; i < 8; i++ {
		postJSON(t, s, "/api/add", map[string]any{"amount": 10, "category": "food"})
	}

	cases := []struct {
		query string
		want  int
	}{
		{"", 5},
		{"?limit=3", 3},
		{"?limit=0", 1},
		{"?limit=-2", 1},
		{"?limit=999", 8}, // clamped to 50, only 8 stored
		{"?limit=abc", 5},
	}
	for _, tc := range cases {
		rec := get(t, s, "/api/recent"+tc.query)
		if rec.Code != http.StatusOK {
			t.Fatalf("recent%s = %d", tc.query, rec.Code)
		}
		payload := decode(t, rec)
		expenses, _ := payload["expenses"].([]any)
		if len(expenses) != tc.want {
			t.Errorf("recent%s returned %d expenses, want %d", tc.query, len(expenses), tc.want)
		}
	}
}

func TestBudgetsEndpoint(t *testing.T) {
	s := newTestServer(t)

	payload := decode(t, get(t, s, "/api/budgets"))
	budgets, _ := payload["budgets"].([]any)
	if len(budgets) != 5 {
		t.Fatalf("budgets = %d, want the 5 defaults", len(budgets))
	}

	payload = decode(t, get(t, s, "/api/budgets?category=food"))
	status, ok := payload["budget_status"].(map[string]any)
	if !ok || status["category"] != "food" {
		t.Errorf("single budget = %v", payload)
	}
}

func TestSummaryEndpoints(t *testing.T) {
	s := newTestServer(t)
	postJSON(t, s, "/api/add", map[string]any{"amount": 300, "category": "food"})

	payload := decode(t, get(t, s, "/api/balance"))
	if reply, _ := payload["reply"].(string); !strings.Contains(reply, "₹300") {
		t.Errorf("balance reply = %q", reply)
	}
	payload = decode(t, get(t, s, "/api/summary/weekly"))
	if reply, _ := payload["reply"].(string); !strings.Contains(reply, "Weekly spend") {
		t.Errorf("weekly reply = %q", reply)
	}
	payload = decode(t, get(t, s, "/api/summary/monthly"))
	if reply, _ := payload["reply"].(string); !strings.Contains(reply, "total") {
		t.Errorf("monthly reply = %q", reply)
	}
}

func TestSafeLimit(t *testing.T) {
	cases := []struct {
		raw  string
		want int
	}{
		{"", 5},
		{"5", 5},
		{"1", 1},
		{"50", 50},
		{"51", 50},
		{"0", 1},
		{"-3", 1},
		{"nope", 5},
		{"  7 ", 7},
	}
	for _, tc := range cases {
		if got := safeLimit(tc.raw); got != tc.want {
			t.Errorf("safeLimit(%q) = %d, want %d", tc.raw, got, tc.want)
		}
	}
}
