package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/lobsterbar2027-boop/crypto-sentiment-api/src/logger"
	"github.com/lobsterbar2027-boop/crypto-sentiment-api/src/models"
)

// FacilitatorVerifier confirms authenticity and settlement of an assertion
// through the external payment-rail authority.
type FacilitatorVerifier interface {
	Verify(ctx context.Context, assertion *models.PaymentAssertion, req models.PaymentRequirement) (bool, error)
}

// ChainVerifier independently confirms a settled transaction against the
// underlying network ledger.
type ChainVerifier interface {
	Confirm(ctx context.Context, txHash, expectedRecipient string) (bool, error)
}

// AdmitHook runs synchronously after a payment is recorded, before the
// protected resource is produced. Hook failures are the hook's problem;
// admission is already final when it runs.
type AdmitHook func(entry models.LedgerEntry)

// Gateway orchestrates codec, ledger and the two verifiers into a single
// admit/deny decision per request. Exactly one ledger write happens per
// admitted request and none on denial.
type Gateway struct {
	ledger      Ledger
	facilitator FacilitatorVerifier
	chain       ChainVerifier
	hook        AdmitHook
}

func NewGateway(ledger Ledger, facilitator FacilitatorVerifier, chain ChainVerifier, hook AdmitHook) *Gateway {
	return &Gateway{
		ledger:      ledger,
		facilitator: facilitator,
		chain:       chain,
		hook:        hook,
	}
}

// Verify decides whether the assertion satisfies the requirement for the
// named resource. On success it records the spend and returns the new
// ledger entry; every failure path returns one of the package's sentinel
// errors (possibly wrapped).
//
// The early Contains check is advisory: the authoritative serialization
// point for racing requests with the same identifier is Record, whose
// check-and-set admits exactly one winner.
func (g *Gateway) Verify(ctx context.Context, assertion *models.PaymentAssertion, req models.PaymentRequirement) (*models.LedgerEntry, error) {
	if assertion == nil {
		return nil, ErrPaymentRequired
	}
	log := logger.FromContext(ctx)

	if assertion.Amount != req.Amount {
		log.Debug("Payment amount mismatch", "got", assertion.Amount, "want", req.Amount)
		return nil, fmt.Errorf("%w: got %s, want %s", ErrAmountMismatch, assertion.Amount, req.Amount)
	}
	if NormalizeAddress(assertion.Recipient) != NormalizeAddress(req.PayTo) {
		log.Debug("Payment recipient mismatch", "got", assertion.Recipient)
		return nil, ErrRecipientMismatch
	}

	id := PaymentID(assertion)
	if spent, err := g.ledger.Contains(ctx, id); err != nil {
		return nil, fmt.Errorf("ledger check failed: %w", err)
	} else if spent {
		return nil, ErrAlreadySpent
	}

	if err := g.confirmSettlement(ctx, assertion, req); err != nil {
		return nil, err
	}

	entry := models.LedgerEntry{
		ID:        id,
		Timestamp: time.Now().UTC(),
		Amount:    assertion.Amount,
		Resource:  req.Resource,
		Payer:     NormalizeAddress(assertion.Payer),
	}
	if err := g.ledger.Record(ctx, entry); err != nil {
		// A concurrent request with the same payment won the race.
		return nil, err
	}

	if g.hook != nil {
		g.hook(entry)
	}
	return &entry, nil
}

// confirmSettlement applies the fallback policy: facilitator first (fast,
// cheap, external dependency), chain second (slow, always on). Only a
// transport failure of the facilitator opens the fallback path; a clean
// negative answer is final.
func (g *Gateway) confirmSettlement(ctx context.Context, assertion *models.PaymentAssertion, req models.PaymentRequirement) error {
	log := logger.FromContext(ctx)

	verified, facErr := g.facilitator.Verify(ctx, assertion, req)
	if facErr == nil {
		if !verified {
			return ErrVerificationFailed
		}
		return nil
	}

	log.Warn("Facilitator verification failed, falling back to chain", "error", facErr)

	if assertion.TxHash == "" {
		// Nothing to look up on chain without a transaction reference.
		return fmt.Errorf("%w: facilitator: %v; no transaction reference for chain fallback", ErrVerificationUnavailable, facErr)
	}

	confirmed, chainErr := g.chain.Confirm(ctx, assertion.TxHash, req.PayTo)
	if chainErr != nil {
		return fmt.Errorf("%w: facilitator: %v; chain: %v", ErrVerificationUnavailable, facErr, chainErr)
	}
	if !confirmed {
		return ErrVerificationFailed
	}
	log.Info("Payment confirmed via chain fallback", "txHash", assertion.TxHash)
	return nil
}
