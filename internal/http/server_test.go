package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"finboard/internal/amqp"
	"finboard/internal/auth"
	"finboard/internal/core"
	"finboard/internal/services"
	"finboard/internal/store/memory"
)

var testNow = time.Date(2025, time.February, 15, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) (*Server, *memory.Store) {
	t.Helper()
	return newTestServerWithOptions(t, Options{Now: func() time.Time { return testNow }})
}

func newTestServerWithOptions(t *testing.T, opts Options) (*Server, *memory.Store) {
	t.Helper()
	st := memory.New()
	if opts.Now == nil {
		opts.Now = func() time.Time { return testNow }
	}
	srv := NewServer(":0",
		services.NewTransactionService(st, st, nil),
		services.NewSettingsService(st),
		auth.NewService(st, 100, time.Hour),
		st, opts)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv, st
}

func doRequest(t *testing.T, srv *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func signUp(t *testing.T, srv *Server) string {
	t.Helper()
	creds := map[string]string{"email": "ada@example.com", "password": "correct horse"}
	if rec := doRequest(t, srv, http.MethodPost, "/api/register", "", creds); rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body %s", rec.Code, rec.Body.String())
	}
	rec := doRequest(t, srv, http.MethodPost, "/api/login", "", creds)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("login returned empty token")
	}
	return resp.Token
}

func TestAuthRequired(t *testing.T) {
	srv, _ := newTestServer(t)
	for _, path := range []string{"/api/transactions", "/api/settings", "/api/dashboard", "/api/export"} {
		rec := doRequest(t, srv, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("GET %s without token: status = %d, want %d", path, rec.Code, http.StatusUnauthorized)
		}
	}
}

func TestRegisterValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/register", "", map[string]string{"email": "nope", "password": "long enough"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad email: status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	rec = doRequest(t, srv, http.MethodPost, "/api/register", "", map[string]string{"email": "a@b.com", "password": "short"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("weak password: status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	creds := map[string]string{"email": "a@b.com", "password": "long enough"}
	if rec = doRequest(t, srv, http.MethodPost, "/api/register", "", creds); rec.Code != http.StatusCreated {
		t.Fatalf("register: status = %d", rec.Code)
	}
	if rec = doRequest(t, srv, http.MethodPost, "/api/register", "", creds); rec.Code != http.StatusConflict {
		t.Fatalf("duplicate register: status = %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestLoginAndLogout(t *testing.T) {
	srv, _ := newTestServer(t)
	token := signUp(t, srv)

	rec := doRequest(t, srv, http.MethodPost, "/api/login", "", map[string]string{"email": "ada@example.com", "password": "wrong password"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}

	if rec = doRequest(t, srv, http.MethodGet, "/api/transactions", token, nil); rec.Code != http.StatusOK {
		t.Fatalf("list with token: status = %d", rec.Code)
	}
	if rec = doRequest(t, srv, http.MethodPost, "/api/logout", token, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("logout: status = %d", rec.Code)
	}
	if rec = doRequest(t, srv, http.MethodGet, "/api/transactions", token, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("list after logout: status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestTransactionLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)
	token := signUp(t, srv)

	rec := doRequest(t, srv, http.MethodPost, "/api/transactions", token, map[string]any{
		"description": "grocery shopping",
		"amount":      "45.00",
		"type":        "expense",
		"date":        "2025-02-10",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d, body %s", rec.Code, rec.Body.String())
	}
	var created transactionPayload
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	if created.ID == "" {
		t.Fatal("created transaction has no id")
	}
	if created.Category != "Food" {
		t.Fatalf("category = %q, want Food", created.Category)
	}

	rec = doRequest(t, srv, http.MethodPut, "/api/transactions/"+created.ID, token, map[string]any{
		"description": "grocery shopping",
		"amount":      "52.25",
		"type":        "expense",
		"category":    created.Category,
		"date":        "2025-02-10",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update: status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/transactions", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status = %d", rec.Code)
	}
	var listed struct {
		Transactions []transactionPayload `json:"transactions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed.Transactions) != 1 {
		t.Fatalf("len(transactions) = %d, want 1", len(listed.Transactions))
	}
	if got := listed.Transactions[0].Amount.Cents; got != 5225 {
		t.Fatalf("amount after update = %d cents, want 5225", got)
	}

	if rec = doRequest(t, srv, http.MethodDelete, "/api/transactions/"+created.ID, token, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("delete: status = %d", rec.Code)
	}
	// Removing an id that no longer exists still succeeds quietly.
	if rec = doRequest(t, srv, http.MethodDelete, "/api/transactions/"+created.ID, token, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("repeat delete: status = %d, want %d", rec.Code, http.StatusNoContent)
	}
}

func seedTransactions(t *testing.T, srv *Server, token string) {
	t.Helper()
	for _, body := range []map[string]any{
		{"description": "salary", "amount": "2900.00", "type": "income", "category": "Salary", "date": "2025-02-01"},
		{"description": "grocery run", "amount": "45.00", "type": "expense", "category": "Food", "date": "2025-02-03"},
		{"description": "rent february", "amount": "900.00", "type": "expense", "category": "Housing", "date": "2025-02-05"},
		{"description": "bus pass", "amount": "30.50", "type": "expense", "category": "Transportation", "date": "2025-01-20"},
	} {
		if rec := doRequest(t, srv, http.MethodPost, "/api/transactions", token, body); rec.Code != http.StatusCreated {
			t.Fatalf("seed %q: status = %d, body %s", body["description"], rec.Code, rec.Body.String())
		}
	}
}

func TestTransactionFilters(t *testing.T) {
	srv, _ := newTestServer(t)
	token := signUp(t, srv)
	seedTransactions(t, srv, token)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"by type", "?type=income", []string{"salary"}},
		{"by category", "?category=Food", []string{"grocery run"}},
		{"date range", "?from=2025-02-01&to=2025-02-04", []string{"salary", "grocery run"}},
		{"sort amount desc", "?type=expense&sort_by=amount&order=desc", []string{"rent february", "grocery run", "bus pass"}},
		{"paginated", "?sort_by=date&offset=1&limit=2", []string{"salary", "grocery run"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, srv, http.MethodGet, "/api/transactions"+tt.query, token, nil)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
			}
			var listed struct {
				Transactions []transactionPayload `json:"transactions"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
				t.Fatalf("decode: %v", err)
			}
			got := make([]string, len(listed.Transactions))
			for i, tx := range listed.Transactions {
				got[i] = tx.Description
			}
			if len(got) != len(tt.want) {
				t.Fatalf("descriptions = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("descriptions = %v, want %v", got, tt.want)
				}
			}
		})
	}

	if rec := doRequest(t, srv, http.MethodGet, "/api/transactions?sort_by=color", token, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad sort field: status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	srv, _ := newTestServer(t)
	token := signUp(t, srv)

	rec := doRequest(t, srv, http.MethodPut, "/api/settings", token, map[string]any{
		"totalBudgetLimit": "1000.00",
		"categoryLimits":   map[string]string{"Food": "300.00", "Housing": "500.00"},
		"alertsEnabled":    true,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("put settings: status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/settings", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get settings: status = %d", rec.Code)
	}
	var got settingsPayload
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode settings: %v", err)
	}
	if got.TotalBudgetLimit.Cents != 100000 {
		t.Fatalf("total limit = %d cents, want 100000", got.TotalBudgetLimit.Cents)
	}
	if got.CategoryLimits["Food"].Cents != 30000 {
		t.Fatalf("Food limit = %d cents, want 30000", got.CategoryLimits["Food"].Cents)
	}
	if !got.AlertsEnabled {
		t.Fatal("alertsEnabled = false, want true")
	}
}

func TestSettingsRejectsBadInput(t *testing.T) {
	srv, _ := newTestServer(t)
	token := signUp(t, srv)

	// Unknown category key.
	rec := doRequest(t, srv, http.MethodPut, "/api/settings", token, map[string]any{
		"totalBudgetLimit": "1000.00",
		"categoryLimits":   map[string]string{"Yachts": "300.00"},
		"alertsEnabled":    true,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown category: status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	// Category limits summing past the total budget.
	rec = doRequest(t, srv, http.MethodPut, "/api/settings", token, map[string]any{
		"totalBudgetLimit": "100.00",
		"categoryLimits":   map[string]string{"Food": "80.00", "Housing": "80.00"},
		"alertsEnabled":    true,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("limits over total: status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestDashboard(t *testing.T) {
	srv, _ := newTestServer(t)
	token := signUp(t, srv)
	seedTransactions(t, srv, token)

	rec := doRequest(t, srv, http.MethodGet, "/api/dashboard", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard: status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Totals struct {
			Income  core.Money `json:"income"`
			Expense core.Money `json:"expense"`
			Balance core.Money `json:"balance"`
		} `json:"totals"`
		Alert struct {
			Visible bool `json:"isVisible"`
		} `json:"alert"`
		Recommendation string `json:"recommendation"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode dashboard: %v", err)
	}
	if resp.Totals.Income.Cents != 290000 {
		t.Fatalf("income = %d cents, want 290000", resp.Totals.Income.Cents)
	}
	if resp.Totals.Expense.Cents != 97550 {
		t.Fatalf("expense = %d cents, want 97550", resp.Totals.Expense.Cents)
	}
	if resp.Recommendation == "" {
		t.Fatal("recommendation is empty")
	}
	// Default settings carry a zero total budget, so any spend alerts.
	if !resp.Alert.Visible {
		t.Fatal("alert not visible despite spend over the zero default budget")
	}
}

func TestTrendReport(t *testing.T) {
	srv, _ := newTestServer(t)
	token := signUp(t, srv)
	seedTransactions(t, srv, token)

	rec := doRequest(t, srv, http.MethodGet, "/api/reports/trend?time_frame=monthly", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("trend: status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		TimeFrame string `json:"time_frame"`
		Points    []struct {
			Key     string     `json:"key"`
			Income  core.Money `json:"income"`
			Expense core.Money `json:"expense"`
		} `json:"points"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode trend: %v", err)
	}
	if len(resp.Points) != 2 {
		t.Fatalf("len(points) = %d, want 2", len(resp.Points))
	}
	if resp.Points[0].Key != "2025-01" || resp.Points[1].Key != "2025-02" {
		t.Fatalf("bucket keys = %q, %q", resp.Points[0].Key, resp.Points[1].Key)
	}

	if rec = doRequest(t, srv, http.MethodGet, "/api/reports/trend?time_frame=hourly", token, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad time frame: status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestBudgetReport(t *testing.T) {
	srv, _ := newTestServer(t)
	token := signUp(t, srv)
	seedTransactions(t, srv, token)

	rec := doRequest(t, srv, http.MethodPut, "/api/settings", token, map[string]any{
		"totalBudgetLimit": "2000.00",
		"categoryLimits":   map[string]string{"Food": "300.00"},
		"alertsEnabled":    false,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("put settings: status = %d", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/reports/budget?time_frame=monthly&as_of=2025-02-15", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("budget: status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Points []struct {
			Key    string     `json:"key"`
			Actual core.Money `json:"actual"`
		} `json:"points"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode budget: %v", err)
	}
	actuals := map[string]int64{}
	for _, p := range resp.Points {
		actuals[p.Key] = p.Actual.Cents
	}
	if actuals["2025-02_Food"] != 4500 {
		t.Fatalf("2025-02_Food actual = %d, want 4500", actuals["2025-02_Food"])
	}
	if actuals["Total_2025-02"] != 94500 {
		t.Fatalf("Total_2025-02 actual = %d, want 94500", actuals["Total_2025-02"])
	}
}

func TestExportDownload(t *testing.T) {
	srv, _ := newTestServer(t)
	token := signUp(t, srv)
	seedTransactions(t, srv, token)

	rec := doRequest(t, srv, http.MethodGet, "/api/export?report_type=trend&time_frame=monthly&file_name=trend.csv", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("export: status = %d, body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("Content-Type = %q, want text/csv", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, `"trend.csv"`) {
		t.Fatalf("Content-Disposition = %q", cd)
	}
	lines := strings.Split(rec.Body.String(), "\n")
	if lines[0] != "key,income,expense" {
		t.Fatalf("header line = %q", lines[0])
	}
	if len(lines) != 3 {
		t.Fatalf("len(lines) = %d, want 3", len(lines))
	}
	if !strings.Contains(lines[2], `"2025-02"`) {
		t.Fatalf("last line = %q, want february bucket", lines[2])
	}

	if rec = doRequest(t, srv, http.MethodGet, "/api/export?report_type=horoscope", token, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown report type: status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestExportDownloadNoData(t *testing.T) {
	srv, _ := newTestServer(t)
	token := signUp(t, srv)

	rec := doRequest(t, srv, http.MethodGet, "/api/export?report_type=transactions", token, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("empty export: status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("empty export wrote a body: %q", rec.Body.String())
	}
}

type capturedPublisher struct {
	msgs []*amqp.ExportRequestMessage
}

func (p *capturedPublisher) PublishExportRequest(ctx context.Context, msg *amqp.ExportRequestMessage) error {
	p.msgs = append(p.msgs, msg)
	return nil
}

func TestExportQueue(t *testing.T) {
	pub := &capturedPublisher{}
	srv, _ := newTestServerWithOptions(t, Options{Publisher: pub})
	token := signUp(t, srv)

	rec := doRequest(t, srv, http.MethodPost, "/api/export", token, map[string]string{
		"report_type": "budget",
		"time_frame":  "weekly",
		"file_name":   "budget-week",
	})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("queue export: status = %d, body %s", rec.Code, rec.Body.String())
	}
	if len(pub.msgs) != 1 {
		t.Fatalf("published %d messages, want 1", len(pub.msgs))
	}
	msg := pub.msgs[0]
	if msg.ReportType != "budget" || msg.TimeFrame != "weekly" || msg.FileName != "budget-week" {
		t.Fatalf("published message = %+v", msg)
	}
	if msg.AsOf != "2025-02-15" {
		t.Fatalf("as_of = %q, want 2025-02-15", msg.AsOf)
	}

	if rec = doRequest(t, srv, http.MethodPost, "/api/export", token, map[string]string{"report_type": "horoscope"}); rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown report type: status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestExportQueueWithoutPublisher(t *testing.T) {
	srv, _ := newTestServer(t)
	token := signUp(t, srv)

	rec := doRequest(t, srv, http.MethodPost, "/api/export", token, map[string]string{"report_type": "trend"})
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)
	if rec := doRequest(t, srv, http.MethodGet, "/healthz", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("healthz: status = %d", rec.Code)
	}
	if rec := doRequest(t, srv, http.MethodGet, "/readyz", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("readyz: status = %d", rec.Code)
	}

	failing, _ := newTestServerWithOptions(t, Options{
		ReadyCheck: func(ctx context.Context) error { return context.DeadlineExceeded },
	})
	if rec := doRequest(t, failing, http.MethodGet, "/readyz", "", nil); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("failing readyz: status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}
