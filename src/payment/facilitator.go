package payment

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"github.com/lobsterbar2027-boop/crypto-sentiment-api/src/logger"
	"github.com/lobsterbar2027-boop/crypto-sentiment-api/src/models"
)

// FacilitatorClient delegates signature and settlement confirmation to the
// external payment-rail authority. A transport-level failure (timeout,
// unreachable, non-2xx) is returned as an error and triggers the on-chain
// fallback; a clean "not verified" answer does not.
type FacilitatorClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewFacilitatorClient(baseURL string, timeout time.Duration) *FacilitatorClient {
	return &FacilitatorClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type facilitatorVerifyRequest struct {
	Payment           *models.PaymentAssertion `json:"payment"`
	ExpectedAmount    string                   `json:"expectedAmount"`
	ExpectedRecipient string                   `json:"expectedRecipient"`
	Network           string                   `json:"network"`
	Currency          string                   `json:"currency"`
}

type facilitatorVerifyResponse struct {
	Verified bool   `json:"verified"`
	Status   string `json:"status"`
}

func (c *FacilitatorClient) Verify(ctx context.Context, assertion *models.PaymentAssertion, req models.PaymentRequirement) (bool, error) {
	payload := facilitatorVerifyRequest{
		Payment:           assertion,
		ExpectedAmount:    req.Amount,
		ExpectedRecipient: req.PayTo,
		Network:           req.Network,
		Currency:          req.Asset,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return false, fmt.Errorf("failed to encode facilitator request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/verify", bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("failed to build facilitator request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return false, fmt.Errorf("facilitator unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return false, fmt.Errorf("facilitator returned status %d", resp.StatusCode)
	}

	var result facilitatorVerifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("failed to decode facilitator response: %w", err)
	}

	if !result.Verified {
		logger.FromContext(ctx).Debug("Facilitator rejected payment", "status", result.Status)
		return false, nil
	}
	if result.Status != "" && result.Status != "confirmed" {
		logger.FromContext(ctx).Debug("Facilitator verified but unsettled", "status", result.Status)
		return false, nil
	}
	return true, nil
}
