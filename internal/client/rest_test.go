package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRESTGetLinks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if r.URL.Path != "/sessions/7/nodes/2/links" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		ifid := 0
		json.NewEncoder(w).Encode(map[string][]LinkDescriptor{
			"links": {{
				Node1ID:           1,
				Node2ID:           3,
				Interface1ID:      &ifid,
				Interface1IP4:     "10.0.0.1",
				Interface1IP4Mask: 24,
			}},
		})
	}))
	defer srv.Close()

	c := NewREST(srv.URL, 7)
	links, err := c.GetLinks(context.Background(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(links) != 1 {
		t.Fatalf("expected 1 link, got %d", len(links))
	}
	if links[0].Interface1ID == nil || *links[0].Interface1ID != 0 {
		t.Error("expected interface1_id 0")
	}
	if links[0].Interface2ID != nil {
		t.Error("expected interface2_id absent")
	}
}

func TestRESTCreateNode(t *testing.T) {
	var got NodePayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/sessions/1/nodes" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewREST(srv.URL, 1)
	err := c.CreateNode(context.Background(), NodePayload{ID: 4, Type: 0, Name: "router4", Model: "router", X: 100, Y: 50})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != 4 || got.Name != "router4" {
		t.Errorf("daemon saw wrong payload: %+v", got)
	}
}

func TestRESTGetNodeIPs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sessions/1/nodes/5/addresses" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("ip4") != "10.0.0.1/24" || r.URL.Query().Get("ip6") != "2001::/64" {
			t.Errorf("unexpected prefixes: %s", r.URL.RawQuery)
		}
		json.NewEncoder(w).Encode(NodeIPs{IP4: "10.0.0.5", IP4Mask: 24, IP6: "2001::5", IP6Mask: 64})
	}))
	defer srv.Close()

	c := NewREST(srv.URL, 1)
	ips, err := c.GetNodeIPs(context.Background(), 5, "10.0.0.1/24", "2001::/64")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ips.IP4 != "10.0.0.5" || ips.IP6Mask != 64 {
		t.Errorf("unexpected allocation: %+v", ips)
	}
}

func TestRESTSetSessionState(t *testing.T) {
	var body map[string]int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/sessions/9/state" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&body)
	}))
	defer srv.Close()

	c := NewREST(srv.URL, 9)
	if err := c.SetSessionState(context.Background(), StateInstantiation); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body["state"] != int(StateInstantiation) {
		t.Errorf("expected state %d, got %d", StateInstantiation, body["state"])
	}
}

func TestRESTErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "session not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewREST(srv.URL, 2)
	if _, err := c.GetLinks(context.Background(), 1); err == nil {
		t.Error("expected error for non-2xx status")
	}
}

func TestSessionStateString(t *testing.T) {
	if StateInstantiation.String() != "instantiation" {
		t.Errorf("expected 'instantiation', got %q", StateInstantiation)
	}
	if StateShutdown.String() != "shutdown" {
		t.Errorf("expected 'shutdown', got %q", StateShutdown)
	}
}
