package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lobsterbar2027-boop/crypto-sentiment-api/src/models"
	"github.com/lobsterbar2027-boop/crypto-sentiment-api/src/payment"
	"github.com/lobsterbar2027-boop/crypto-sentiment-api/src/security"
)

func newAdminHandler(t *testing.T) (*AdminHandler, payment.Ledger) {
	t.Helper()
	ledger := payment.NewMemoryLedger()
	auth := security.NewAuthService("test-jwt-secret-that-is-long-enough!!", "hunter2", time.Hour)
	return NewAdminHandler(auth, ledger, 6), ledger
}

func TestAdminLoginWrongSecret(t *testing.T) {
	h, _ := newAdminHandler(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(`{"secret":"wrong"}`))
	h.HandleLogin(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAdminLoginAndLedgerSummary(t *testing.T) {
	h, ledger := newAdminHandler(t)

	for _, id := range []string{"tx:0x1", "tx:0x2", "tx:0x3"} {
		err := ledger.Record(context.Background(), models.LedgerEntry{
			ID: id, Timestamp: time.Now().UTC(), Amount: "30000",
			Resource: "/api/sentiment/BTC", Payer: "0x1111111111111111111111111111111111111111",
		})
		if err != nil {
			t.Fatalf("seed record failed: %v", err)
		}
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(`{"secret":"hunter2"}`))
	h.HandleLogin(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on login, got %d", rec.Code)
	}
	var loginBody struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &loginBody); err != nil || loginBody.Token == "" {
		t.Fatalf("expected a token, got %q (err %v)", loginBody.Token, err)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/admin/ledger", nil)
	req.Header.Set("Authorization", "Bearer "+loginBody.Token)
	h.AuthMiddleware(h.HandleLedgerSummary)(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on summary, got %d", rec.Code)
	}

	var summary models.LedgerSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("summary is not JSON: %v", err)
	}
	if summary.Payments != 3 {
		t.Errorf("expected 3 payments, got %d", summary.Payments)
	}
	if summary.RevenueAtomic != "90000" {
		t.Errorf("expected revenue 90000, got %s", summary.RevenueAtomic)
	}
	if summary.RevenueDisplay != "$0.09" {
		t.Errorf("expected $0.09, got %s", summary.RevenueDisplay)
	}
}

func TestAdminLedgerRequiresToken(t *testing.T) {
	h, _ := newAdminHandler(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/ledger", nil)
	h.AuthMiddleware(h.HandleLedgerSummary)(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/admin/ledger", nil)
	req.Header.Set("Authorization", "Bearer garbage.token.here")
	h.AuthMiddleware(h.HandleLedgerSummary)(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with bad token, got %d", rec.Code)
	}
}

func TestAdminLoginDisabledWithoutSecret(t *testing.T) {
	ledger := payment.NewMemoryLedger()
	auth := security.NewAuthService("test-jwt-secret-that-is-long-enough!!", "", time.Hour)
	h := NewAdminHandler(auth, ledger, 6)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(`{"secret":""}`))
	h.HandleLogin(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("empty configured secret must disable admin access, got %d", rec.Code)
	}
}
