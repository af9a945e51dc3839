package payment

import (
	"encoding/base64"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"github.com/lobsterbar2027-boop/crypto-sentiment-api/src/models"
)

// sigPrefixLen is how much of the signature is kept as a payment
// identifier when no transaction reference is present. Long enough that
// distinct signatures cannot collide in practice.
const sigPrefixLen = 64

// DecodeAssertion parses the X-Payment header value: base64 of JSON.
// This is a purely structural transform; no cryptographic checks happen
// here.
func DecodeAssertion(headerValue string) (*models.PaymentAssertion, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(headerValue))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64: %v", ErrMalformedAssertion, err)
	}

	var assertion models.PaymentAssertion
	if err := json.Unmarshal(raw, &assertion); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %v", ErrMalformedAssertion, err)
	}

	switch {
	case assertion.Payer == "":
		return nil, fmt.Errorf("%w: missing payerAddress", ErrMalformedAssertion)
	case assertion.Recipient == "":
		return nil, fmt.Errorf("%w: missing recipientAddress", ErrMalformedAssertion)
	case assertion.Amount == "":
		return nil, fmt.Errorf("%w: missing amount", ErrMalformedAssertion)
	case assertion.Signature == "":
		return nil, fmt.Errorf("%w: missing signature", ErrMalformedAssertion)
	}

	return &assertion, nil
}

// EncodeRequirement renders the 402 challenge header value, the companion
// of DecodeAssertion.
func EncodeRequirement(req models.PaymentRequirement) (string, error) {
	raw, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to encode payment requirement: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// PaymentID derives the ledger key for an assertion. The same assertion
// always yields the same identifier: the transaction reference when one is
// present, otherwise a fixed-length signature prefix.
func PaymentID(assertion *models.PaymentAssertion) string {
	if tx := strings.ToLower(strings.TrimSpace(assertion.TxHash)); tx != "" {
		return "tx:" + tx
	}
	sig := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(assertion.Signature), "0x"))
	if len(sig) > sigPrefixLen {
		sig = sig[:sigPrefixLen]
	}
	return "sig:" + sig
}

// DisplayPrice derives the human-readable price from the canonical atomic
// amount, e.g. ("30000", 6) -> "$0.03". The atomic integer form is the
// canonical one; this string is presentation only.
func DisplayPrice(atomicAmount string, decimals int) string {
	d, err := decimal.NewFromString(atomicAmount)
	if err != nil {
		return "$?"
	}
	return "$" + d.Shift(int32(-decimals)).StringFixed(2)
}
