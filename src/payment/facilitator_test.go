package payment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	json "github.com/goccy/go-json"
)

func TestFacilitatorVerifyConfirmed(t *testing.T) {
	var gotPath string
	var gotReq facilitatorVerifyRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotReq)
		json.NewEncoder(w).Encode(map[string]any{"verified": true, "status": "confirmed"})
	}))
	defer srv.Close()

	client := NewFacilitatorClient(srv.URL, 2*time.Second)
	ok, err := client.Verify(context.Background(), matchingAssertion(), testRequirement())
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if !ok {
		t.Error("expected verified")
	}
	if gotPath != "/verify" {
		t.Errorf("expected POST /verify, got %s", gotPath)
	}
	if gotReq.ExpectedAmount != "30000" || gotReq.Network != "base" {
		t.Errorf("unexpected outbound payload %+v", gotReq)
	}
}

func TestFacilitatorVerifyRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"verified": false, "status": "invalid_signature"})
	}))
	defer srv.Close()

	client := NewFacilitatorClient(srv.URL, 2*time.Second)
	ok, err := client.Verify(context.Background(), matchingAssertion(), testRequirement())
	if err != nil {
		t.Fatalf("a clean rejection is not a transport error, got %v", err)
	}
	if ok {
		t.Error("expected not verified")
	}
}

func TestFacilitatorVerifyUnsettledStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"verified": true, "status": "pending"})
	}))
	defer srv.Close()

	client := NewFacilitatorClient(srv.URL, 2*time.Second)
	ok, err := client.Verify(context.Background(), matchingAssertion(), testRequirement())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("a pending settlement must not count as verified")
	}
}

func TestFacilitatorVerifyServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewFacilitatorClient(srv.URL, 2*time.Second)
	if _, err := client.Verify(context.Background(), matchingAssertion(), testRequirement()); err == nil {
		t.Fatal("a 5xx must surface as an error so the fallback engages")
	}
}

func TestFacilitatorVerifyUnreachable(t *testing.T) {
	client := NewFacilitatorClient("http://127.0.0.1:1", 200*time.Millisecond)
	if _, err := client.Verify(context.Background(), matchingAssertion(), testRequirement()); err == nil {
		t.Fatal("an unreachable facilitator must surface as an error")
	}
}
