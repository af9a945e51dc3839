package sentiment

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/jonreiter/govader"

	"github.com/lobsterbar2027-boop/crypto-sentiment-api/src/models"
)

// Polarity class thresholds on the per-mention compound score.
const (
	positiveThreshold = 0.05
	negativeThreshold = -0.05
)

// Confidence is capped below 1.0: the system never claims certainty.
const confidenceCap = 0.95

const topMentionCount = 5

// Analyzer reduces a mention set to one bounded, confidence-scored signal.
// Scoring uses a lexicon/valence model (VADER); weighting favors engaged
// posts with diminishing returns so no single viral post dominates.
type Analyzer struct {
	vader *govader.SentimentIntensityAnalyzer
}

func NewAnalyzer() *Analyzer {
	return &Analyzer{vader: govader.NewSentimentIntensityAnalyzer()}
}

type scoredMention struct {
	mention models.Mention
	score   float64
	weight  float64
}

// Aggregate produces the sentiment report for a symbol. Zero input yields
// the deterministic empty report: score 0, confidence 0, neutral signal,
// mentionCount 0 — distinguishable from a confident neutral only by the
// count, never by a sentinel score.
func (a *Analyzer) Aggregate(mentions []models.Mention, symbol string) models.SentimentReport {
	relevant := filterBySymbol(mentions, symbol)

	report := models.SentimentReport{
		Asset:       strings.ToUpper(strings.TrimSpace(symbol)),
		Signal:      models.SignalNeutral,
		TopMentions: []models.ScoredMention{},
		GeneratedAt: time.Now().UTC(),
	}
	if len(relevant) == 0 {
		return report
	}

	scored := make([]scoredMention, 0, len(relevant))
	var sumWeighted, sumWeights float64
	for _, m := range relevant {
		score := a.vader.PolarityScores(m.Text).Compound
		weight := mentionWeight(m)
		scored = append(scored, scoredMention{mention: m, score: score, weight: weight})
		sumWeighted += score * weight
		sumWeights += weight

		switch {
		case score >= positiveThreshold:
			report.Breakdown.Positive++
		case score <= negativeThreshold:
			report.Breakdown.Negative++
		default:
			report.Breakdown.Neutral++
		}
	}

	report.MentionCount = len(relevant)
	if sumWeights > 0 {
		report.Score = clamp(sumWeighted/sumWeights, -1, 1)
	}
	report.Signal = classify(report.Score)
	report.Confidence = confidence(report.Breakdown, len(relevant))
	report.TopMentions = topMentions(scored)
	return report
}

// filterBySymbol keeps mentions naming the symbol or its full name. When
// that filter would empty the set, the unfiltered mentions are used: the
// feeds were already asset-targeted, and a low-recall text filter must not
// turn a populated collection into an empty report.
func filterBySymbol(mentions []models.Mention, symbol string) []models.Mention {
	sym := strings.ToLower(strings.TrimSpace(symbol))
	name := strings.ToLower(FullName(symbol))

	filtered := make([]models.Mention, 0, len(mentions))
	for _, m := range mentions {
		text := strings.ToLower(m.Text)
		if strings.Contains(text, sym) || (name != "" && strings.Contains(text, name)) {
			filtered = append(filtered, m)
		}
	}
	if len(filtered) == 0 {
		return mentions
	}
	return filtered
}

// mentionWeight grows logarithmically with engagement so weighting has
// diminishing returns.
func mentionWeight(m models.Mention) float64 {
	eng := float64(m.Engagement)
	if eng < 1 {
		eng = 1
	}
	com := float64(m.Comments)
	if com < 1 {
		com = 1
	}
	return math.Log10(eng + com + 1)
}

// classify maps the normalized score onto the five ordered bands.
// Tie-breaks are inclusive on the lower bound of each band.
func classify(score float64) string {
	switch {
	case score >= 0.5:
		return models.SignalVeryBullish
	case score >= 0.15:
		return models.SignalBullish
	case score <= -0.5:
		return models.SignalVeryBearish
	case score <= -0.15:
		return models.SignalBearish
	default:
		return models.SignalNeutral
	}
}

func confidence(b models.SentimentBreakdown, total int) float64 {
	if total == 0 {
		return 0
	}
	majority := b.Positive
	if b.Negative > majority {
		majority = b.Negative
	}
	if b.Neutral > majority {
		majority = b.Neutral
	}
	agreement := float64(majority) / float64(total)

	sampleBonus := float64(total) / 30
	if sampleBonus > 1 {
		sampleBonus = 1
	}

	c := agreement*0.75 + sampleBonus*0.25
	if c > confidenceCap {
		c = confidenceCap
	}
	return c
}

func topMentions(scored []scoredMention) []models.ScoredMention {
	sorted := make([]scoredMention, len(scored))
	copy(sorted, scored)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].mention.Engagement > sorted[j].mention.Engagement
	})
	if len(sorted) > topMentionCount {
		sorted = sorted[:topMentionCount]
	}
	out := make([]models.ScoredMention, 0, len(sorted))
	for _, s := range sorted {
		out = append(out, models.ScoredMention{
			Text:       s.mention.Text,
			Engagement: s.mention.Engagement,
			Source:     s.mention.Source,
			Score:      s.score,
		})
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
