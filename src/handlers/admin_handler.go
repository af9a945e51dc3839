package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/lobsterbar2027-boop/crypto-sentiment-api/src/logger"
	"github.com/lobsterbar2027-boop/crypto-sentiment-api/src/models"
	"github.com/lobsterbar2027-boop/crypto-sentiment-api/src/payment"
	"github.com/lobsterbar2027-boop/crypto-sentiment-api/src/security"
	"github.com/lobsterbar2027-boop/crypto-sentiment-api/src/utils"
)

// AdminHandler exposes the ledger introspection surface behind the static
// shared secret (exchanged for a short-lived token at login).
type AdminHandler struct {
	authService   *security.AuthService
	ledger        payment.Ledger
	assetDecimals int
}

func NewAdminHandler(authService *security.AuthService, ledger payment.Ledger, assetDecimals int) *AdminHandler {
	return &AdminHandler{
		authService:   authService,
		ledger:        ledger,
		assetDecimals: assetDecimals,
	}
}

// HandleLogin exchanges the shared secret for a bearer token.
func (h *AdminHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Secret string `json:"secret"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.authService.CheckAdminSecret(req.Secret); err != nil {
		logger.FromContext(r.Context()).Warn("Admin login rejected", "remoteAddr", r.RemoteAddr)
		utils.SendJSONError(w, "invalid admin secret", http.StatusUnauthorized)
		return
	}

	token, err := h.authService.GenerateToken("admin")
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to generate admin token", "error", err)
		utils.SendJSONError(w, "internal error", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, map[string]string{"token": token}, http.StatusOK)
}

// HandleLedgerSummary reports payment count and derived revenue.
func (h *AdminHandler) HandleLedgerSummary(w http.ResponseWriter, r *http.Request) {
	count, totalAtomic, err := h.ledger.Summary(r.Context())
	if err != nil {
		logger.FromContext(r.Context()).Error("Ledger summary failed", "error", err)
		utils.SendJSONError(w, "ledger summary unavailable", http.StatusInternalServerError)
		return
	}

	summary := models.LedgerSummary{
		Payments:       count,
		RevenueAtomic:  strconv.FormatInt(totalAtomic, 10),
		RevenueDisplay: payment.DisplayPrice(strconv.FormatInt(totalAtomic, 10), h.assetDecimals),
	}
	utils.SendJSON(w, summary, http.StatusOK)
}
