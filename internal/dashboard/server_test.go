package dashboard

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/packworks/packtrack/internal/hunt"
	"github.com/packworks/packtrack/internal/logger"
	"github.com/packworks/packtrack/internal/registry"
	"github.com/packworks/packtrack/internal/roster"
	"github.com/packworks/packtrack/internal/storage"
)

func testServer(t *testing.T) (*Server, *registry.Registry) {
	t.Helper()
	r, err := roster.New([]roster.Member{
		{Username: "alice", JoinedAt: time.Now().UTC()},
		{Username: "bob", JoinedAt: time.Now().UTC()},
		{Username: "carol", JoinedAt: time.Now().UTC()},
	})
	if err != nil {
		t.Fatalf("roster.New: %v", err)
	}

	log := logger.New("dashboard-test")
	hub := NewHub(log)
	go hub.Run()
	t.Cleanup(hub.Stop)

	reg, err := registry.Open("nightpack", r, storage.NewMemoryStore(), hub)
	if err != nil {
		t.Fatalf("registry.Open: %v", err)
	}
	return NewServer(reg, hub, log), reg
}

func doRequest(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestCreateAndGetHunt(t *testing.T) {
	srv, _ := testServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/hunts", createHuntRequest{
		FeatureName: "Checkout flow",
		Description: "Rework the checkout",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var created hunt.Hunt
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created hunt: %v", err)
	}
	if created.CurrentPhase != "requirements" || created.CurrentRole != "alice" {
		t.Errorf("expected requirements/alice, got %s/%s", created.CurrentPhase, created.CurrentRole)
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/hunts/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestCreateHunt_MissingName(t *testing.T) {
	srv, _ := testServer(t)
	rec := doRequest(t, srv, http.MethodPost, "/api/hunts", createHuntRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestGetHunt_NotFound(t *testing.T) {
	srv, _ := testServer(t)
	rec := doRequest(t, srv, http.MethodGet, "/api/hunts/hunt-missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestTransition_AutoAdvance(t *testing.T) {
	srv, reg := testServer(t)
	created, _ := reg.StartHunt("Checkout flow", "")

	rec := doRequest(t, srv, http.MethodPost, "/api/hunts/"+created.ID+"/transition", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var h hunt.Hunt
	json.Unmarshal(rec.Body.Bytes(), &h)
	if h.CurrentPhase != "spec" || h.CurrentRole != "bob" {
		t.Errorf("expected spec/bob, got %s/%s", h.CurrentPhase, h.CurrentRole)
	}
}

func TestTransition_SequenceViolationIs400(t *testing.T) {
	srv, reg := testServer(t)
	created, _ := reg.StartHunt("Checkout flow", "")

	rec := doRequest(t, srv, http.MethodPost, "/api/hunts/"+created.ID+"/transition",
		transitionRequest{Phase: "testing", Assignee: "alice"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for phase sequence violation, got %d", rec.Code)
	}
}

func TestCompleteFlow(t *testing.T) {
	srv, reg := testServer(t)
	created, _ := reg.StartHunt("Checkout flow", "")

	for i := 0; i < 3; i++ {
		rec := doRequest(t, srv, http.MethodPost, "/api/hunts/"+created.ID+"/transition", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("transition %d: expected 200, got %d: %s", i, rec.Code, rec.Body.String())
		}
	}

	rec := doRequest(t, srv, http.MethodPost, "/api/hunts/"+created.ID+"/complete", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var h hunt.Hunt
	json.Unmarshal(rec.Body.Bytes(), &h)
	if h.Status != hunt.StatusCompleted {
		t.Errorf("expected completed, got %s", h.Status)
	}
}

func TestBlockUnblock(t *testing.T) {
	srv, reg := testServer(t)
	created, _ := reg.StartHunt("Checkout flow", "")

	rec := doRequest(t, srv, http.MethodPost, "/api/hunts/"+created.ID+"/block",
		blockRequest{Reason: "waiting on design"})
	if rec.Code != http.StatusOK {
		t.Fatalf("block: expected 200, got %d", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodPost, "/api/hunts/"+created.ID+"/unblock", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unblock: expected 200, got %d", rec.Code)
	}
}

func TestListHunts_Filtering(t *testing.T) {
	srv, reg := testServer(t)
	reg.StartHunt("One", "")
	reg.StartHunt("Two", "")

	rec := doRequest(t, srv, http.MethodGet, "/api/hunts?status=active&limit=1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Hunts []hunt.Hunt `json:"hunts"`
		Total int         `json:"total"`
	}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Total != 2 {
		t.Errorf("expected total 2, got %d", resp.Total)
	}
	if len(resp.Hunts) != 1 {
		t.Errorf("expected 1 hunt on page, got %d", len(resp.Hunts))
	}
}

func TestTimeline(t *testing.T) {
	srv, reg := testServer(t)
	created, _ := reg.StartHunt("Checkout flow", "")
	reg.TransitionHunt(created.ID, "spec", "bob")

	rec := doRequest(t, srv, http.MethodGet, "/api/hunts/"+created.ID+"/timeline", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		PhaseHistory []hunt.PhaseRecord `json:"phaseHistory"`
	}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if len(resp.PhaseHistory) != 2 {
		t.Errorf("expected 2 phase records, got %d", len(resp.PhaseHistory))
	}
}

func TestAnalyticsEndpoints(t *testing.T) {
	srv, reg := testServer(t)
	reg.StartHunt("One", "")

	rec := doRequest(t, srv, http.MethodGet, "/api/analytics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("analytics: expected 200, got %d", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/analytics/report?format=markdown", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("report: expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/markdown; charset=utf-8" {
		t.Errorf("expected markdown content type, got %q", ct)
	}
}
