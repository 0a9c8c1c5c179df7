package http

import (
	"net/http"
	"strings"
	"testing"

	"cantiere/internal/core"
)

func TestProjectLifecycle(t *testing.T) {
	srv := newTestServer(t)

	created := createProject(t, srv, "Villa Rossi")
	if created.ID == "" {
		t.Fatal("create left ID empty")
	}
	if created.TotalBudget.Cents != 10000000 {
		t.Errorf("TotalBudget = %d cents, want 10000000", created.TotalBudget.Cents)
	}

	rr := doJSON(t, srv, http.MethodGet, "/projects/"+created.ID, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("get status = %d", rr.Code)
	}
	if got := decodeBody[core.Project](t, rr); got.Name != "Villa Rossi" {
		t.Errorf("Name = %q", got.Name)
	}

	rr = doJSON(t, srv, http.MethodGet, "/projects", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("list status = %d", rr.Code)
	}
	if list := decodeBody[[]core.Project](t, rr); len(list) != 1 {
		t.Fatalf("list returned %d projects, want 1", len(list))
	}

	rr = doJSON(t, srv, http.MethodPut, "/projects/"+created.ID,
		`{"name":"Villa Rossi Fase 2","totalBudget":120000,"startDate":"2025-01-06"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", rr.Code, rr.Body.String())
	}
	updated := decodeBody[core.Project](t, rr)
	if updated.Name != "Villa Rossi Fase 2" {
		t.Errorf("updated Name = %q", updated.Name)
	}
	if updated.TotalBudget.Cents != 12000000 {
		t.Errorf("updated TotalBudget = %d cents, want 12000000", updated.TotalBudget.Cents)
	}

	rr = doJSON(t, srv, http.MethodDelete, "/projects/"+created.ID, "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rr.Code)
	}
	if rr := doJSON(t, srv, http.MethodGet, "/projects/"+created.ID, ""); rr.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d, want 404", rr.Code)
	}
}

func TestCreateProjectValidation(t *testing.T) {
	srv := newTestServer(t)

	cases := []struct {
		name string
		body string
	}{
		{"missing name", `{"totalBudget":100000,"startDate":"2025-01-06"}`},
		{"zero budget", `{"name":"x","totalBudget":0,"startDate":"2025-01-06"}`},
		{"missing start date", `{"name":"x","totalBudget":100000}`},
		{"end before start", `{"name":"x","totalBudget":100000,"startDate":"2025-01-06","endDate":"2024-12-01"}`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rr := doJSON(t, srv, http.MethodPost, "/projects", c.body)
			if rr.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d, want 422, body %s", rr.Code, rr.Body.String())
			}
		})
	}
}

func TestUpdateUnknownProject(t *testing.T) {
	srv := newTestServer(t)
	rr := doJSON(t, srv, http.MethodPut, "/projects/ghost",
		`{"name":"x","totalBudget":100000,"startDate":"2025-01-06"}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}

func TestProjectStats(t *testing.T) {
	srv := newTestServer(t)
	p := createProject(t, srv, "Cantiere Nord")

	rr := doJSON(t, srv, http.MethodPost, "/projects/"+p.ID+"/timesheets",
		`{"date":"2025-02-03","hours":8,"payRate":25}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create timesheet status = %d, body %s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, srv, http.MethodGet, "/projects/"+p.ID+"/stats", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("stats status = %d", rr.Code)
	}
	stats := decodeBody[core.BudgetStats](t, rr)
	if stats.ProjectName != "Cantiere Nord" {
		t.Errorf("ProjectName = %q", stats.ProjectName)
	}
	if stats.LaborSpent.Cents != 20000 {
		t.Errorf("LaborSpent = %d cents, want 20000", stats.LaborSpent.Cents)
	}
	if stats.TotalSpent.Cents != 20000 {
		t.Errorf("TotalSpent = %d cents, want 20000", stats.TotalSpent.Cents)
	}
	if stats.Remaining.Cents != 9980000 {
		t.Errorf("Remaining = %d cents, want 9980000", stats.Remaining.Cents)
	}
}

func TestProjectStatsUnknownProject(t *testing.T) {
	srv := newTestServer(t)
	if rr := doJSON(t, srv, http.MethodGet, "/projects/ghost/stats", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}

func TestExportLedgerCSV(t *testing.T) {
	srv := newTestServer(t)
	p := createProject(t, srv, "Magazzino Est")

	rr := doJSON(t, srv, http.MethodPost, "/projects/"+p.ID+"/overhead",
		`{"date":"2025-02-10","description":"Site insurance","cost":420}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create overhead status = %d, body %s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, srv, http.MethodGet, "/projects/"+p.ID+"/export", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("export status = %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "text/csv; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	body := rr.Body.String()
	if !strings.HasPrefix(body, "type,date,description,category,amount") {
		t.Errorf("unexpected CSV header: %q", body)
	}
	if !strings.Contains(body, "Site insurance") {
		t.Errorf("entry missing from export: %q", body)
	}
	if !strings.Contains(body, "total,,,,420.00") {
		t.Errorf("total row missing from export: %q", body)
	}
}

func TestExportUnknownProject(t *testing.T) {
	srv := newTestServer(t)
	if rr := doJSON(t, srv, http.MethodGet, "/projects/ghost/export", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}
