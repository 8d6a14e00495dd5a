package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"wisewallet/internal/assistant"
	"wisewallet/internal/auth"
	"wisewallet/internal/cache"
	"wisewallet/internal/config"
	"wisewallet/internal/services"
	"wisewallet/internal/storage/memory"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store := memory.New()
	authSvc := auth.NewService(store, "unit-test-secret-0123456789", time.Hour)
	ledger := services.NewLedgerService(store, store, nil)
	budgets := services.NewBudgetService(store, nil, false)
	goals := services.NewGoalService(store, nil)
	wealth := services.NewWealthService(store, nil)
	insights := services.NewInsightService(store, store, store, false)
	reconcile := services.NewReconciler(store, store, store)
	snapshots := cache.NewSnapshotCache(100, time.Minute)

	cfg := &config.Config{Port: "0", SeriesMonths: 6}
	srv := NewServer(cfg, Deps{
		Auth:      authSvc,
		Ledger:    ledger,
		Budgets:   budgets,
		Goals:     goals,
		Wealth:    wealth,
		Insights:  insights,
		Reconcile: reconcile,
		Snapshots: snapshots,
		Assistant: assistant.NewService(nil),
	})

	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(func() {
		ts.Close()
		srv.rateLimiter.stop()
		close(srv.stopCacheCleanup)
	})
	return ts
}

func doRequest(t *testing.T, ts *httptest.Server, method, path, token string, body any) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, data
}

func registerAndLogin(t *testing.T, ts *httptest.Server, email string) string {
	t.Helper()

	creds := map[string]string{"email": email, "password": "hunter2hunter2"}
	if status, body := doRequest(t, ts, http.MethodPost, "/api/v1/auth/register", "", creds); status != http.StatusCreated {
		t.Fatalf("register status = %d, body %s", status, body)
	}
	status, body := doRequest(t, ts, http.MethodPost, "/api/v1/auth/login", "", creds)
	if status != http.StatusOK {
		t.Fatalf("login status = %d, body %s", status, body)
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if out.Token == "" {
		t.Fatal("login returned empty token")
	}
	return out.Token
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		status, _ := doRequest(t, ts, http.MethodGet, path, "", nil)
		if status != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, status)
		}
	}
}

func TestAuthFlow(t *testing.T) {
	ts := newTestServer(t)

	creds := map[string]string{"email": "Ada@Example.com", "password": "hunter2hunter2"}
	status, body := doRequest(t, ts, http.MethodPost, "/api/v1/auth/register", "", creds)
	if status != http.StatusCreated {
		t.Fatalf("register status = %d, body %s", status, body)
	}

	// Duplicate registration conflicts, case-insensitively.
	dup := map[string]string{"email": "ada@example.com", "password": "hunter2hunter2"}
	if status, _ := doRequest(t, ts, http.MethodPost, "/api/v1/auth/register", "", dup); status != http.StatusConflict {
		t.Errorf("duplicate register status = %d, want 409", status)
	}

	// Short password is rejected.
	weak := map[string]string{"email": "bob@example.com", "password": "short"}
	if status, _ := doRequest(t, ts, http.MethodPost, "/api/v1/auth/register", "", weak); status != http.StatusUnprocessableEntity {
		t.Errorf("weak password status = %d, want 422", status)
	}

	status, body = doRequest(t, ts, http.MethodPost, "/api/v1/auth/login", "", dup)
	if status != http.StatusOK {
		t.Fatalf("login status = %d, body %s", status, body)
	}

	wrong := map[string]string{"email": "ada@example.com", "password": "not-the-password"}
	if status, _ := doRequest(t, ts, http.MethodPost, "/api/v1/auth/login", "", wrong); status != http.StatusUnauthorized {
		t.Errorf("wrong password login status = %d, want 401", status)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	ts := newTestServer(t)

	status, _ := doRequest(t, ts, http.MethodGet, "/api/v1/transactions", "", nil)
	if status != http.StatusUnauthorized {
		t.Errorf("no token status = %d, want 401", status)
	}

	status, _ = doRequest(t, ts, http.MethodGet, "/api/v1/transactions", "not-a-jwt", nil)
	if status != http.StatusUnauthorized {
		t.Errorf("garbage token status = %d, want 401", status)
	}
}

func TestSecurityHeaders(t *testing.T) {
	ts := newTestServer(t)

	resp, err := ts.Client().Get(ts.URL + "/api/v1/transactions")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if got := resp.Header.Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q, want DENY", got)
	}
}

func TestTransactionLifecycle(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts, "carla@example.com")

	status, body := doRequest(t, ts, http.MethodPost, "/api/v1/categories", token,
		map[string]string{"name": "Groceries"})
	if status != http.StatusCreated {
		t.Fatalf("create category status = %d, body %s", status, body)
	}
	var cat struct {
		ID   string `json:"id"`
		Role string `json:"role"`
	}
	if err := json.Unmarshal(body, &cat); err != nil {
		t.Fatal(err)
	}
	if cat.Role != "expense" {
		t.Errorf("default role = %q, want expense", cat.Role)
	}

	status, body = doRequest(t, ts, http.MethodPost, "/api/v1/transactions", token, map[string]string{
		"description": "weekly shop",
		"amount":      "42,50",
		"category_id": cat.ID,
		"date":        "2025-03-10",
	})
	if status != http.StatusCreated {
		t.Fatalf("create transaction status = %d, body %s", status, body)
	}
	var tx struct {
		ID     string `json:"id"`
		Amount struct {
			Cents int64 `json:"cents"`
		} `json:"amount"`
	}
	if err := json.Unmarshal(body, &tx); err != nil {
		t.Fatal(err)
	}
	if tx.Amount.Cents != 4250 {
		t.Errorf("amount cents = %d, want 4250", tx.Amount.Cents)
	}

	status, body = doRequest(t, ts, http.MethodGet, "/api/v1/transactions?month=2025-03", token, nil)
	if status != http.StatusOK {
		t.Fatalf("list status = %d", status)
	}
	var listed []json.RawMessage
	if err := json.Unmarshal(body, &listed); err != nil {
		t.Fatal(err)
	}
	if len(listed) != 1 {
		t.Fatalf("month list length = %d, want 1", len(listed))
	}

	// Outside the month the list is empty.
	status, body = doRequest(t, ts, http.MethodGet, "/api/v1/transactions?month=2025-04", token, nil)
	if status != http.StatusOK {
		t.Fatalf("list status = %d", status)
	}
	if err := json.Unmarshal(body, &listed); err != nil {
		t.Fatal(err)
	}
	if len(listed) != 0 {
		t.Errorf("other month list length = %d, want 0", len(listed))
	}

	if status, _ := doRequest(t, ts, http.MethodDelete, "/api/v1/transactions/"+tx.ID, token, nil); status != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", status)
	}
	if status, _ := doRequest(t, ts, http.MethodDelete, "/api/v1/transactions/"+tx.ID, token, nil); status != http.StatusNotFound {
		t.Errorf("delete missing status = %d, want 404", status)
	}
}

func TestTransactionValidation(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts, "dave@example.com")

	cases := []struct {
		name string
		body map[string]string
		want int
	}{
		{"bad amount", map[string]string{"description": "x", "amount": "abc"}, http.StatusUnprocessableEntity},
		{"zero amount", map[string]string{"description": "x", "amount": "0"}, http.StatusUnprocessableEntity},
		{"empty description", map[string]string{"description": "  ", "amount": "5,00"}, http.StatusUnprocessableEntity},
		{"bad date", map[string]string{"description": "x", "amount": "5,00", "date": "10-03-2025"}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := doRequest(t, ts, http.MethodPost, "/api/v1/transactions", token, tc.body)
			if status != tc.want {
				t.Errorf("status = %d, want %d, body %s", status, tc.want, body)
			}
		})
	}

	if status, _ := doRequest(t, ts, http.MethodGet, "/api/v1/transactions?month=March", token, nil); status != http.StatusBadRequest {
		t.Errorf("bad month param status = %d, want 400", status)
	}
}

func TestCategoryDeleteInUse(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts, "erin@example.com")

	_, body := doRequest(t, ts, http.MethodPost, "/api/v1/categories", token,
		map[string]string{"name": "Rent"})
	var cat struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &cat); err != nil {
		t.Fatal(err)
	}

	doRequest(t, ts, http.MethodPost, "/api/v1/transactions", token, map[string]string{
		"description": "march rent", "amount": "800,00", "category_id": cat.ID,
	})

	if status, _ := doRequest(t, ts, http.MethodDelete, "/api/v1/categories/"+cat.ID, token, nil); status != http.StatusConflict {
		t.Errorf("delete in-use category status = %d, want 409", status)
	}
}

func TestDashboardCarryOver(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts, "frank@example.com")

	_, body := doRequest(t, ts, http.MethodPost, "/api/v1/categories", token,
		map[string]string{"name": "Salary", "role": "income"})
	var income struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &income); err != nil {
		t.Fatal(err)
	}

	// February: 500 budget, 300 spent, 100 earned. Net 200, carry 300.
	doRequest(t, ts, http.MethodPost, "/api/v1/budgets", token, map[string]string{
		"amount": "500,00", "start_date": "2025-02-01", "end_date": "2025-02-28",
	})
	doRequest(t, ts, http.MethodPost, "/api/v1/transactions", token, map[string]string{
		"description": "groceries", "amount": "300,00", "date": "2025-02-10",
	})
	doRequest(t, ts, http.MethodPost, "/api/v1/transactions", token, map[string]string{
		"description": "refund", "amount": "100,00", "date": "2025-02-12", "category_id": income.ID,
	})

	// March: 400 budget.
	doRequest(t, ts, http.MethodPost, "/api/v1/budgets", token, map[string]string{
		"amount": "400,00", "start_date": "2025-03-01", "end_date": "2025-03-31",
	})
	doRequest(t, ts, http.MethodPost, "/api/v1/transactions", token, map[string]string{
		"description": "cinema", "amount": "15,00", "date": "2025-03-05",
	})

	status, body := doRequest(t, ts, http.MethodGet, "/api/v1/dashboard?month=2025-03", token, nil)
	if status != http.StatusOK {
		t.Fatalf("dashboard status = %d, body %s", status, body)
	}
	var dash struct {
		Year            int `json:"year"`
		Month           int `json:"month"`
		EffectiveBudget struct {
			Cents int64 `json:"cents"`
		} `json:"effective_budget"`
		Transactions []struct {
			Description string `json:"description"`
		} `json:"transactions"`
	}
	if err := json.Unmarshal(body, &dash); err != nil {
		t.Fatal(err)
	}
	if dash.Year != 2025 || dash.Month != 3 {
		t.Errorf("dashboard month = %d-%d, want 2025-3", dash.Year, dash.Month)
	}
	if dash.EffectiveBudget.Cents != 70000 {
		t.Errorf("effective budget = %d cents, want 70000", dash.EffectiveBudget.Cents)
	}
	if len(dash.Transactions) != 1 || dash.Transactions[0].Description != "cinema" {
		t.Errorf("dashboard transactions = %+v, want just the March entry", dash.Transactions)
	}

	// Second read is served from cache and identical.
	status, cached := doRequest(t, ts, http.MethodGet, "/api/v1/dashboard?month=2025-03", token, nil)
	if status != http.StatusOK {
		t.Fatalf("cached dashboard status = %d", status)
	}
	if !bytes.Equal(bytes.TrimSpace(body), bytes.TrimSpace(cached)) {
		t.Error("cached dashboard differs from first read")
	}
}

func TestGoalContributionFlow(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts, "gina@example.com")

	status, body := doRequest(t, ts, http.MethodPost, "/api/v1/goals", token,
		map[string]string{"name": "Holiday", "target": "100,00"})
	if status != http.StatusCreated {
		t.Fatalf("create goal status = %d, body %s", status, body)
	}
	var goal struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &goal); err != nil {
		t.Fatal(err)
	}

	status, body = doRequest(t, ts, http.MethodPost, "/api/v1/goals/"+goal.ID+"/contribute", token,
		map[string]string{"amount": "40,00"})
	if status != http.StatusOK {
		t.Fatalf("contribute status = %d, body %s", status, body)
	}
	var contrib struct {
		Completed bool `json:"completed"`
		Goal      struct {
			CurrentAmount struct {
				Cents int64 `json:"cents"`
			} `json:"current_amount"`
		} `json:"goal"`
	}
	if err := json.Unmarshal(body, &contrib); err != nil {
		t.Fatal(err)
	}
	if contrib.Completed {
		t.Error("goal completed after partial contribution")
	}
	if contrib.Goal.CurrentAmount.Cents != 4000 {
		t.Errorf("current = %d cents, want 4000", contrib.Goal.CurrentAmount.Cents)
	}

	status, body = doRequest(t, ts, http.MethodPost, "/api/v1/goals/"+goal.ID+"/contribute", token,
		map[string]string{"amount": "60,00"})
	if status != http.StatusOK {
		t.Fatalf("final contribute status = %d, body %s", status, body)
	}
	if err := json.Unmarshal(body, &contrib); err != nil {
		t.Fatal(err)
	}
	if !contrib.Completed {
		t.Error("goal not completed after reaching target")
	}

	// Completed goals move to the archive.
	status, body = doRequest(t, ts, http.MethodGet, "/api/v1/goals", token, nil)
	if status != http.StatusOK {
		t.Fatal("list goals failed")
	}
	var open []json.RawMessage
	if err := json.Unmarshal(body, &open); err != nil {
		t.Fatal(err)
	}
	if len(open) != 0 {
		t.Errorf("open goals = %d, want 0", len(open))
	}

	status, body = doRequest(t, ts, http.MethodGet, "/api/v1/goals/completed", token, nil)
	if status != http.StatusOK {
		t.Fatal("list completed goals failed")
	}
	var completed []struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(body, &completed); err != nil {
		t.Fatal(err)
	}
	if len(completed) != 1 || completed[0].Name != "Holiday" {
		t.Errorf("completed goals = %+v, want [Holiday]", completed)
	}
}

func TestWealthRoundTrip(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts, "hugo@example.com")

	// Before any write the balances are zero.
	status, body := doRequest(t, ts, http.MethodGet, "/api/v1/wealth", token, nil)
	if status != http.StatusOK {
		t.Fatalf("get wealth status = %d", status)
	}
	var wlt struct {
		Cash struct {
			Cents int64 `json:"cents"`
		} `json:"cash"`
		Savings struct {
			Cents int64 `json:"cents"`
		} `json:"savings"`
	}
	if err := json.Unmarshal(body, &wlt); err != nil {
		t.Fatal(err)
	}
	if wlt.Cash.Cents != 0 || wlt.Savings.Cents != 0 {
		t.Errorf("initial wealth = %+v, want zeros", wlt)
	}

	status, body = doRequest(t, ts, http.MethodPut, "/api/v1/wealth", token,
		map[string]string{"cash": "120,00", "savings": "3500,50"})
	if status != http.StatusOK {
		t.Fatalf("put wealth status = %d, body %s", status, body)
	}
	if err := json.Unmarshal(body, &wlt); err != nil {
		t.Fatal(err)
	}
	if wlt.Cash.Cents != 12000 || wlt.Savings.Cents != 350050 {
		t.Errorf("wealth = %+v, want 12000/350050", wlt)
	}
}

func TestAssistantUnconfigured(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts, "iris@example.com")

	status, _ := doRequest(t, ts, http.MethodPost, "/api/v1/assistant/parse", token,
		map[string]string{"message": "spent 12 on lunch"})
	if status != http.StatusServiceUnavailable {
		t.Errorf("assistant status = %d, want 503", status)
	}
}

func TestOwnersAreIsolated(t *testing.T) {
	ts := newTestServer(t)
	alice := registerAndLogin(t, ts, "alice@example.com")
	bob := registerAndLogin(t, ts, "bob2@example.com")

	doRequest(t, ts, http.MethodPost, "/api/v1/transactions", alice, map[string]string{
		"description": "private", "amount": "10,00", "date": "2025-03-01",
	})

	status, body := doRequest(t, ts, http.MethodGet, "/api/v1/transactions?month=2025-03", bob, nil)
	if status != http.StatusOK {
		t.Fatalf("list status = %d", status)
	}
	var listed []json.RawMessage
	if err := json.Unmarshal(body, &listed); err != nil {
		t.Fatal(err)
	}
	if len(listed) != 0 {
		t.Errorf("bob sees %d of alice's transactions, want 0", len(listed))
	}
}
