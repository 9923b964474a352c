package main

import (
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"finlens/internal/config"
	"finlens/internal/models"
	"finlens/internal/services/calendar"
	"finlens/internal/testutil"
)

// setupTestServer stands up the full stack on in-memory storage.
func setupTestServer(t *testing.T) *testutil.TestServer {
	t.Helper()

	cfg = &config.Config{
		ListenAddr:         ":0",
		LogLevel:           "error",
		DatabasePath:       "",
		ExportDirectory:    t.TempDir(),
		CacheTTL:           time.Minute,
		RateLimitPerSecond: 1000,
		RateLimitBurst:     1000,
	}
	if err := SetupDependencies(cfg); err != nil {
		t.Fatalf("SetupDependencies failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	ts := testutil.NewTestServer(t, SetupRouter())
	t.Cleanup(ts.Close)
	return ts
}

func TestHealthEndpoint(t *testing.T) {
	ts := setupTestServer(t)

	testutil.AssertResponse(t, ts.GET("/api/health")).
		StatusOK().
		ContentTypeJSON().
		ContainsAll(`"status":"ok"`, `"version"`)
}

func TestRecordIngestAndList(t *testing.T) {
	ts := setupTestServer(t)

	records := []models.Record{
		{
			Kind:        models.Expense,
			Amount:      decimal.NewFromFloat(42.50),
			Category:    "groceries",
			Description: "Weekly shop",
			OccurredOn:  calendar.New(2025, 3, 10),
		},
		{
			Kind:        models.Income,
			Amount:      decimal.NewFromInt(3000),
			Category:    "salary",
			Description: "March salary",
			OccurredOn:  calendar.New(2025, 3, 1),
		},
	}

	testutil.AssertResponse(t, ts.POSTJSON("/api/records", records)).
		Status(http.StatusCreated).
		Contains(`"added":2`)

	var listed struct {
		Records []models.Record `json:"records"`
		Count   int             `json:"count"`
	}
	testutil.DecodeJSON(t, ts.GETWithQuery("/api/records", map[string]string{"year": "2025"}), &listed)
	if listed.Count != 2 {
		t.Fatalf("expected 2 records, got %d", listed.Count)
	}
	// Sorted by date: income on the 1st comes first.
	if listed.Records[0].Kind != models.Income {
		t.Errorf("expected income first after date sort, got %s", listed.Records[0].Kind)
	}

	testutil.AssertResponse(t, ts.GETWithQuery("/api/records", map[string]string{"category": "salary"})).
		StatusOK().
		Contains(`"count":1`)
}

func TestRecordValidation(t *testing.T) {
	ts := setupTestServer(t)

	bad := []models.Record{{
		Kind:       models.Expense,
		Amount:     decimal.NewFromInt(-5),
		OccurredOn: calendar.New(2025, 1, 1),
	}}
	testutil.AssertResponse(t, ts.POSTJSON("/api/records", bad)).
		Status(http.StatusBadRequest).
		Contains("positive")
}

func TestMaterializeDryRunThenCommit(t *testing.T) {
	ts := setupTestServer(t)

	definition := []models.Record{{
		Kind:        models.Expense,
		Amount:      decimal.NewFromFloat(9.99),
		Category:    "entertainment",
		Description: "Streaming",
		OccurredOn:  calendar.New(2025, 1, 15),
		IsRecurring: true,
		Frequency:   calendar.Monthly,
	}}
	testutil.AssertResponse(t, ts.POSTJSON("/api/records", definition)).
		Status(http.StatusCreated)

	var dry struct {
		TotalAdded int  `json:"total_added"`
		DryRun     bool `json:"dry_run"`
	}
	testutil.DecodeJSON(t, ts.POST("/api/recurring/materialize?as_of=2025-04-20&dry_run=true", "application/json", nil), &dry)
	// Jan 15 definition expanded through Apr 20: Feb, Mar, Apr.
	if dry.TotalAdded != 3 {
		t.Fatalf("dry run expected 3 occurrences, got %d", dry.TotalAdded)
	}
	if !dry.DryRun {
		t.Error("result should be flagged as a dry run")
	}

	// Dry run persisted nothing.
	testutil.AssertResponse(t, ts.GET("/api/records")).
		StatusOK().
		Contains(`"count":1`)

	var committed struct {
		TotalAdded int `json:"total_added"`
	}
	testutil.DecodeJSON(t, ts.POST("/api/recurring/materialize?as_of=2025-04-20", "application/json", nil), &committed)
	if committed.TotalAdded != dry.TotalAdded {
		t.Errorf("commit added %d but dry run promised %d", committed.TotalAdded, dry.TotalAdded)
	}

	testutil.AssertResponse(t, ts.GET("/api/records")).
		StatusOK().
		Contains(`"count":4`)

	// Re-running with the same as-of is a no-op thanks to dedup keys.
	var again struct {
		TotalAdded      int `json:"total_added"`
		SkippedExisting int `json:"skipped_existing"`
	}
	testutil.DecodeJSON(t, ts.POST("/api/recurring/materialize?as_of=2025-04-20", "application/json", nil), &again)
	if again.TotalAdded != 0 {
		t.Errorf("second run should add nothing, added %d", again.TotalAdded)
	}
}

func TestNetWorthSnapshotFlow(t *testing.T) {
	ts := setupTestServer(t)

	testutil.AssertResponse(t, ts.POSTJSON("/api/networth/assets", models.Asset{
		Name:         "Savings",
		Category:     "cash",
		CurrentValue: decimal.NewFromInt(10000),
	})).Status(http.StatusCreated)

	testutil.AssertResponse(t, ts.POSTJSON("/api/networth/liabilities", models.Liability{
		Name:           "Car loan",
		Category:       "auto",
		CurrentBalance: decimal.NewFromInt(4000),
	})).Status(http.StatusCreated)

	testutil.AssertResponse(t, ts.GET("/api/networth/current?date=2025-06-01")).
		StatusOK().
		Contains(`"net_worth":"6000"`)

	testutil.AssertResponse(t, ts.POST("/api/networth/snapshots?date=2025-06-01", "application/json", nil)).
		Status(http.StatusCreated)

	var listed struct {
		Count int `json:"count"`
	}
	testutil.DecodeJSON(t, ts.GET("/api/networth/snapshots"), &listed)
	if listed.Count != 1 {
		t.Fatalf("expected 1 snapshot, got %d", listed.Count)
	}

	// Same date again replaces, not appends.
	ts.POST("/api/networth/snapshots?date=2025-06-01", "application/json", nil).Body.Close()
	testutil.DecodeJSON(t, ts.GET("/api/networth/snapshots"), &listed)
	if listed.Count != 1 {
		t.Errorf("snapshot on same date should replace, got %d", listed.Count)
	}
}

func TestLoanPayoff(t *testing.T) {
	ts := setupTestServer(t)

	rate := 6.0
	payment := decimal.NewFromInt(300)
	var saved models.Liability
	testutil.DecodeJSON(t, ts.POSTJSON("/api/loans", models.Liability{
		Name:           "Student loan",
		CurrentBalance: decimal.NewFromInt(5000),
		InterestRate:   &rate,
		MinimumPayment: &payment,
	}), &saved)
	if saved.ID == "" {
		t.Fatal("expected server-assigned loan ID")
	}

	testutil.AssertResponse(t, ts.GET("/api/loans/"+saved.ID+"/payoff")).
		StatusOK().
		Contains(`"computable":true`)

	// Payment below monthly interest: still a 200, just not computable.
	tinyPayment := decimal.NewFromInt(1)
	var stuck models.Liability
	testutil.DecodeJSON(t, ts.POSTJSON("/api/loans", models.Liability{
		Name:           "Underwater",
		CurrentBalance: decimal.NewFromInt(100000),
		InterestRate:   &rate,
		MinimumPayment: &tinyPayment,
	}), &stuck)

	testutil.AssertResponse(t, ts.GET("/api/loans/"+stuck.ID+"/payoff")).
		StatusOK().
		Contains(`"computable":false`)

	testutil.AssertResponse(t, ts.GET("/api/loans/nonexistent/payoff")).
		Status(http.StatusNotFound)
}

func TestAnalysisEndpoints(t *testing.T) {
	ts := setupTestServer(t)

	records := []models.Record{
		{Kind: models.Income, Amount: decimal.NewFromInt(3000), Category: "salary", Description: "Pay", OccurredOn: calendar.New(2025, 1, 1)},
		{Kind: models.Expense, Amount: decimal.NewFromInt(1200), Category: "rent", Description: "Rent", OccurredOn: calendar.New(2025, 1, 3)},
		{Kind: models.Expense, Amount: decimal.NewFromInt(250), Category: "groceries", Description: "Food", OccurredOn: calendar.New(2025, 1, 12)},
	}
	testutil.AssertResponse(t, ts.POSTJSON("/api/records", records)).Status(http.StatusCreated)

	testutil.AssertResponse(t, ts.GET("/api/analysis/monthly/2025")).
		StatusOK().
		ContentTypeJSON().
		Contains(`"total_income"`)

	testutil.AssertResponse(t, ts.GET("/api/analysis/yearly/2025")).
		StatusOK().
		Contains(`"total_expense"`)

	testutil.AssertResponse(t, ts.GET("/api/analysis/monthly/notayear")).
		Status(http.StatusBadRequest)
}

func TestRateLimitExceeded(t *testing.T) {
	cfg = &config.Config{
		LogLevel:           "error",
		ExportDirectory:    t.TempDir(),
		CacheTTL:           time.Minute,
		RateLimitPerSecond: 0.001,
		RateLimitBurst:     1,
	}
	if err := SetupDependencies(cfg); err != nil {
		t.Fatalf("SetupDependencies failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	ts := testutil.NewTestServer(t, SetupRouter())
	t.Cleanup(ts.Close)

	testutil.AssertResponse(t, ts.GET("/api/health")).StatusOK()
	testutil.AssertResponse(t, ts.GET("/api/health")).Status(http.StatusTooManyRequests)
}
