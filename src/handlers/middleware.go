package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/lobsterbar2027-boop/crypto-sentiment-api/src/logger"
	"github.com/lobsterbar2027-boop/crypto-sentiment-api/src/models"
	"github.com/lobsterbar2027-boop/crypto-sentiment-api/src/payment"
	"github.com/lobsterbar2027-boop/crypto-sentiment-api/src/utils"
)

// PaymentHeader carries the base64-encoded payment assertion.
const PaymentHeader = "X-Payment"

// PaymentMiddleware gates a route behind the verification gateway.
// RequirementFor builds the challenge for the requested resource path.
type PaymentMiddleware struct {
	Gateway        *payment.Gateway
	RequirementFor func(resource string) models.PaymentRequirement
}

func (pm *PaymentMiddleware) Gate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())
		requirement := pm.RequirementFor(r.URL.Path)

		headerValue := r.Header.Get(PaymentHeader)
		if headerValue == "" {
			pm.challenge(w, requirement)
			return
		}

		assertion, err := payment.DecodeAssertion(headerValue)
		if err != nil {
			log.Debug("Rejecting malformed payment assertion", "error", err)
			utils.SendJSONError(w, "malformed payment assertion", http.StatusBadRequest)
			return
		}

		entry, err := pm.Gateway.Verify(r.Context(), assertion, requirement)
		if err != nil {
			pm.deny(w, r, err)
			return
		}

		log.Info("Payment admitted", "paymentID", entry.ID, "payer", entry.Payer, "resource", entry.Resource)
		next.ServeHTTP(w, r)
	})
}

// challenge answers first contact: 402 with the encoded requirement so the
// caller can construct a valid assertion.
func (pm *PaymentMiddleware) challenge(w http.ResponseWriter, requirement models.PaymentRequirement) {
	encoded, err := payment.EncodeRequirement(requirement)
	if err != nil {
		logger.L.Error("Failed to encode payment requirement", "error", err)
		utils.SendJSONError(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("X-Payment-Required", encoded)
	utils.SendJSON(w, map[string]any{
		"error":   "payment required",
		"accepts": []models.PaymentRequirement{requirement},
	}, http.StatusPaymentRequired)
}

func (pm *PaymentMiddleware) deny(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	switch {
	case errors.Is(err, payment.ErrPaymentRequired):
		pm.challenge(w, pm.RequirementFor(r.URL.Path))
	case errors.Is(err, payment.ErrMalformedAssertion):
		utils.SendJSONError(w, "malformed payment assertion", http.StatusBadRequest)
	case errors.Is(err, payment.ErrAmountMismatch):
		utils.SendJSONError(w, "payment amount mismatch", http.StatusForbidden)
	case errors.Is(err, payment.ErrRecipientMismatch):
		utils.SendJSONError(w, "payment recipient mismatch", http.StatusForbidden)
	case errors.Is(err, payment.ErrAlreadySpent):
		utils.SendJSONError(w, "payment already used", http.StatusForbidden)
	case errors.Is(err, payment.ErrVerificationFailed):
		utils.SendJSONError(w, "payment verification failed", http.StatusForbidden)
	case errors.Is(err, payment.ErrVerificationUnavailable):
		log.Error("Payment verification unavailable", "error", err)
		utils.SendJSONError(w, "payment verification unavailable", http.StatusInternalServerError)
	default:
		log.Error("Payment verification error", "error", err)
		utils.SendJSONError(w, "internal error", http.StatusInternalServerError)
	}
}

// AdminAuthMiddleware validates the Bearer token issued by the admin login.
func (h *AdminHandler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			logger.FromContext(r.Context()).Debug("AuthMiddleware: Authorization header missing", "path", r.URL.Path)
			utils.SendJSONError(w, "Authorization header required", http.StatusUnauthorized)
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == "" {
			utils.SendJSONError(w, "Malformed token", http.StatusUnauthorized)
			return
		}

		subject, err := h.authService.ValidateToken(tokenString)
		if err != nil || subject != "admin" {
			logger.FromContext(r.Context()).Warn("AuthMiddleware: Token validation failed", "path", r.URL.Path, "error", err)
			utils.SendJSONError(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		next(w, r)
	}
}
