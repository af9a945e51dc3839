package payment

import "errors"

// Verification error taxonomy. Handlers map these onto HTTP statuses with
// errors.Is; everything here is a terminal deny, analysis never runs after
// one of these.
var (
	// ErrPaymentRequired is the expected first-contact outcome: no assertion
	// was presented, the caller should be challenged with the requirement.
	ErrPaymentRequired = errors.New("payment required")

	ErrMalformedAssertion = errors.New("malformed payment assertion")
	ErrAmountMismatch     = errors.New("payment amount mismatch")
	ErrRecipientMismatch  = errors.New("payment recipient mismatch")
	ErrAlreadySpent       = errors.New("payment already used")

	// ErrVerificationFailed means an authority answered and said no.
	ErrVerificationFailed = errors.New("payment verification failed")

	// ErrVerificationUnavailable means facilitator and chain fallback were
	// both unreachable; the payment could not be judged either way.
	ErrVerificationUnavailable = errors.New("payment verification unavailable")
)
