package tui

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"wisdombot/progress"
	"wisdombot/types"
)

func TestClientStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/status" {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(types.StatusResponse{State: types.StateComposing, JobID: "job-1"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	status, err := c.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.State != types.StateComposing || status.JobID != "job-1" {
		t.Fatalf("unexpected status: %+v", status)
	}
}

func TestClientStatusServerDown(t *testing.T) {
	c := NewClient("http://127.0.0.1:1")
	if _, err := c.Status(); err == nil {
		t.Fatal("expected connection error")
	}
}

func TestClientHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/history" {
			http.NotFound(w, r)
			return
		}
		if got := r.URL.Query().Get("limit"); got != "8" {
			t.Errorf("limit = %q, want 8", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"count":   1,
			"history": []progress.Record{{QuoteID: 7, Philosopher: "seneca"}},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	records, err := c.History(8)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(records) != 1 || records[0].QuoteID != 7 {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestClientSubmitRenderAccepted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/render" {
			http.NotFound(w, r)
			return
		}
		var body struct {
			Upload bool `json:"upload"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || !body.Upload {
			t.Errorf("upload flag not forwarded: %+v err=%v", body, err)
		}
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]string{"status": "started", "job_id": "j-1"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	jobID, err := c.SubmitRender(true)
	if err != nil {
		t.Fatalf("SubmitRender: %v", err)
	}
	if jobID != "j-1" {
		t.Fatalf("jobID = %q", jobID)
	}
}

func TestClientSubmitRenderRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"error": "render job-0 already in progress"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if _, err := c.SubmitRender(false); err == nil || !strings.Contains(err.Error(), "already in progress") {
		t.Fatalf("err = %v", err)
	}
}
