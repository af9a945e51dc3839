package sentiment

import (
	"strings"

	"github.com/lobsterbar2027-boop/crypto-sentiment-api/src/models"
)

// dedupePrefixLen is how many runes of the normalized text form the
// equality key. Near-duplicate cross-posts share their opening text even
// when trailing links or hashtags differ, so a prefix key filters more of
// them than exact matching would.
const dedupePrefixLen = 80

// Dedupe removes near-identical mentions collected from overlapping feeds.
// The first occurrence wins and input order is preserved. Idempotent.
func Dedupe(mentions []models.Mention) []models.Mention {
	seen := make(map[string]struct{}, len(mentions))
	out := make([]models.Mention, 0, len(mentions))
	for _, m := range mentions {
		key := dedupeKey(m.Text)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, m)
	}
	return out
}

func dedupeKey(text string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(text), " "))
	runes := []rune(normalized)
	if len(runes) > dedupePrefixLen {
		runes = runes[:dedupePrefixLen]
	}
	return string(runes)
}
