package models

import "time"

// PaymentAssertion is the caller-supplied proof of payment carried in the
// X-Payment header, decoded from base64-encoded JSON. It lives for the
// duration of one request; only its derived identifier is ever persisted.
type PaymentAssertion struct {
	Payer       string `json:"payerAddress"`
	Recipient   string `json:"recipientAddress"`
	Amount      string `json:"amount"` // atomic units, e.g. "30000" = 0.03 USDC
	ValidAfter  int64  `json:"validAfter,omitempty"`
	ValidBefore int64  `json:"validBefore,omitempty"`
	Nonce       string `json:"nonce,omitempty"`
	Signature   string `json:"signature"`
	TxHash      string `json:"transactionReference,omitempty"`
}

// PaymentRequirement describes what a caller must pay to unlock a resource.
// It is returned (encoded) in the 402 challenge response.
type PaymentRequirement struct {
	Scheme       string         `json:"scheme"`
	Network      string         `json:"network"`
	Amount       string         `json:"maxAmountRequired"` // atomic units
	Asset        string         `json:"asset"`             // token contract address
	PayTo        string         `json:"payTo"`
	Resource     string         `json:"resource"`
	Description  string         `json:"description"`
	MimeType     string         `json:"mimeType"`
	OutputSchema map[string]any `json:"outputSchema,omitempty"`
}

// LedgerEntry records one consumed payment. Created exactly once per
// admitted identifier, immutable thereafter.
type LedgerEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Amount    string    `json:"amount"` // atomic units
	Resource  string    `json:"resource"`
	Payer     string    `json:"payer"`
}

// Mention is one unit of scraped social text considered as sentiment
// evidence. Produced by the collector, consumed by the analyzer, never
// persisted.
type Mention struct {
	Text       string    `json:"text"`
	Engagement int       `json:"engagement"`
	Comments   int       `json:"comments"`
	Source     string    `json:"source"`
	Timestamp  time.Time `json:"timestamp"`
}

// ScoredMention pairs a mention with its individual polarity score for the
// top-mentions section of a report.
type ScoredMention struct {
	Text       string  `json:"text"`
	Engagement int     `json:"engagement"`
	Source     string  `json:"source"`
	Score      float64 `json:"score"`
}

// SentimentBreakdown counts mentions per polarity class.
type SentimentBreakdown struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
}

// SentimentReport is the paid payload. Score is in [-1,1], Confidence in
// [0,0.95]. A zero-mention report carries score 0 and confidence 0 and is
// distinguished from a genuine neutral result by MentionCount, never by a
// sentinel score value.
type SentimentReport struct {
	Asset        string             `json:"asset"`
	Signal       string             `json:"signal"`
	Score        float64            `json:"normalizedScore"`
	Confidence   float64            `json:"confidence"`
	MentionCount int                `json:"mentionCount"`
	Breakdown    SentimentBreakdown `json:"breakdown"`
	TopMentions  []ScoredMention    `json:"topMentions"`
	GeneratedAt  time.Time          `json:"generatedAt"`
}

// Signal bands, ordered from most positive to most negative.
const (
	SignalVeryBullish = "very bullish"
	SignalBullish     = "bullish"
	SignalNeutral     = "neutral"
	SignalBearish     = "bearish"
	SignalVeryBearish = "very bearish"
)

// LedgerSummary is the admin introspection payload.
type LedgerSummary struct {
	Payments       int    `json:"payments"`
	RevenueAtomic  string `json:"revenueAtomic"`
	RevenueDisplay string `json:"revenueDisplay"`
}
