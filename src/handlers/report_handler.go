package handlers

import (
	"context"
	"net/http"
	"regexp"
	"strings"

	"github.com/patrickmn/go-cache"

	"github.com/lobsterbar2027-boop/crypto-sentiment-api/src/logger"
	"github.com/lobsterbar2027-boop/crypto-sentiment-api/src/models"
	"github.com/lobsterbar2027-boop/crypto-sentiment-api/src/sentiment"
	"github.com/lobsterbar2027-boop/crypto-sentiment-api/src/utils"
)

// MentionCollector gathers candidate mentions for a symbol. It never
// fails; degraded upstreams show up as fewer mentions.
type MentionCollector interface {
	Collect(ctx context.Context, symbol string) []models.Mention
}

// ReportAnalyzer reduces a mention set to a sentiment report.
type ReportAnalyzer interface {
	Aggregate(mentions []models.Mention, symbol string) models.SentimentReport
}

var symbolPattern = regexp.MustCompile(`^[A-Za-z0-9]{1,12}$`)

// ReportHandler serves the paid sentiment resource. Payment has already
// been verified and consumed by the time either handler method runs.
type ReportHandler struct {
	collector   MentionCollector
	analyzer    ReportAnalyzer
	reportCache *cache.Cache
}

func NewReportHandler(collector MentionCollector, analyzer ReportAnalyzer, reportCache *cache.Cache) *ReportHandler {
	return &ReportHandler{
		collector:   collector,
		analyzer:    analyzer,
		reportCache: reportCache,
	}
}

// HandleGetSentiment computes (or serves from cache) the report for one
// symbol. The cache only short-circuits collection; every request has paid
// by the time it reaches this handler.
func (h *ReportHandler) HandleGetSentiment(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	symbol := strings.ToUpper(r.PathValue("symbol"))
	if !symbolPattern.MatchString(symbol) {
		utils.SendJSONError(w, "invalid asset symbol", http.StatusBadRequest)
		return
	}

	// Payment is consumed at this point; an analysis panic must surface as
	// a server error, not a dropped connection.
	defer func() {
		if rec := recover(); rec != nil {
			log.Error("Sentiment analysis panicked", "symbol", symbol, "panic", rec)
			utils.SendJSONError(w, "analysis failed", http.StatusInternalServerError)
		}
	}()

	if cached, found := h.reportCache.Get(symbol); found {
		log.Debug("Serving cached sentiment report", "symbol", symbol)
		h.writeReport(w, cached.(models.SentimentReport))
		return
	}

	mentions := h.collector.Collect(r.Context(), symbol)
	mentions = sentiment.Dedupe(mentions)
	report := h.analyzer.Aggregate(mentions, symbol)

	h.reportCache.Set(symbol, report, cache.DefaultExpiration)
	h.writeReport(w, report)
}

func (h *ReportHandler) writeReport(w http.ResponseWriter, report models.SentimentReport) {
	if etag, err := utils.GenerateETag(report); err == nil {
		w.Header().Set("ETag", etag)
	}
	utils.SendJSON(w, report, http.StatusOK)
}

// HandleGetAssets lists the supported catalog with the display price for
// each entry. Free route so clients can discover what to pay for.
func (h *ReportHandler) HandleGetAssets(displayPrice string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		type assetInfo struct {
			Symbol string `json:"symbol"`
			Name   string `json:"name"`
			Price  string `json:"price"`
		}
		symbols := sentiment.KnownAssets()
		assets := make([]assetInfo, 0, len(symbols))
		for _, sym := range symbols {
			assets = append(assets, assetInfo{
				Symbol: sym,
				Name:   sentiment.FullName(sym),
				Price:  displayPrice,
			})
		}
		utils.SendJSON(w, map[string]any{"assets": assets}, http.StatusOK)
	}
}
