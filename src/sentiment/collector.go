package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"

	"github.com/lobsterbar2027-boop/crypto-sentiment-api/src/logger"
	"github.com/lobsterbar2027-boop/crypto-sentiment-api/src/models"
)

// A valid browser User-Agent is crucial for the public JSON endpoints.
const collectorUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/108.0.0.0 Safari/537.36"

// rateLimitBackoff is how long we wait before the single retry after an
// upstream 429.
const rateLimitBackoff = 2 * time.Second

// FeedCollector fetches candidate mentions for an asset from the configured
// subreddit feeds plus a full-text search. Collect never fails: any feed
// error degrades to fewer mentions, because a zero-mention sentiment is a
// valid low-confidence result.
type FeedCollector struct {
	httpClient *http.Client
	baseURL    string
	subreddits []string
	limit      int
	pacer      *rate.Limiter
}

// NewFeedCollector builds a collector over the public reddit JSON API.
// delay spaces consecutive feed queries; this is politeness toward the
// upstream rate limits, not a performance knob.
func NewFeedCollector(baseURL string, subreddits []string, limit int, timeout, delay time.Duration) *FeedCollector {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil && logger.L != nil {
		logger.L.Error("Failed to create cookie jar", "error", err)
	}
	return &FeedCollector{
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: timeout,
		},
		baseURL:    baseURL,
		subreddits: subreddits,
		limit:      limit,
		pacer:      rate.NewLimiter(rate.Every(delay), 1),
	}
}

// Structs for the reddit listing API responses.
type redditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				Title       string  `json:"title"`
				Selftext    string  `json:"selftext"`
				Score       int     `json:"score"`
				NumComments int     `json:"num_comments"`
				CreatedUTC  float64 `json:"created_utc"`
				Subreddit   string  `json:"subreddit"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// Collect gathers mentions for a symbol across all feeds. Feeds are queried
// sequentially; cancellation between feeds abandons the remaining queries
// and returns what was already gathered.
func (c *FeedCollector) Collect(ctx context.Context, symbol string) []models.Mention {
	log := logger.FromContext(ctx)
	var mentions []models.Mention

	type feedQuery struct {
		label string
		url   string
	}
	queries := make([]feedQuery, 0, len(c.subreddits)+1)
	for _, sub := range c.subreddits {
		queries = append(queries, feedQuery{
			label: "r/" + sub,
			url:   fmt.Sprintf("%s/r/%s/hot.json?limit=%d", c.baseURL, url.PathEscape(sub), c.limit),
		})
	}
	searchTerm := symbol
	if name := FullName(symbol); name != "" {
		searchTerm = symbol + " OR " + name
	}
	queries = append(queries, feedQuery{
		label: "search",
		url:   fmt.Sprintf("%s/search.json?q=%s&sort=hot&limit=%d", c.baseURL, url.QueryEscape(searchTerm), c.limit),
	})

	for _, q := range queries {
		if err := c.pacer.Wait(ctx); err != nil {
			log.Warn("Collection abandoned", "reason", err)
			return mentions
		}
		batch, err := c.fetchFeed(ctx, q.url, q.label)
		if err != nil {
			log.Warn("Feed query failed, skipping", "feed", q.label, "error", err)
			continue
		}
		mentions = append(mentions, batch...)
	}

	log.Info("Collected mentions", "symbol", symbol, "count", len(mentions))
	return mentions
}

// fetchFeed runs one listing query with a single retry after a fixed
// backoff when the upstream answers 429.
func (c *FeedCollector) fetchFeed(ctx context.Context, feedURL, label string) ([]models.Mention, error) {
	mentions, status, err := c.fetchOnce(ctx, feedURL, label)
	if err == nil && status == http.StatusTooManyRequests {
		logger.FromContext(ctx).Debug("Feed rate limited, retrying once", "feed", label)
		select {
		case <-time.After(rateLimitBackoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		mentions, status, err = c.fetchOnce(ctx, feedURL, label)
	}
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d", status)
	}
	return mentions, nil
}

func (c *FeedCollector) fetchOnce(ctx context.Context, feedURL, label string) ([]models.Mention, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("User-Agent", collectorUserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, nil
	}

	var listing redditListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to decode feed response: %w", err)
	}

	mentions := make([]models.Mention, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		post := child.Data
		text := post.Title
		if post.Selftext != "" {
			text += " " + post.Selftext
		}
		if text == "" {
			continue
		}
		source := label
		if post.Subreddit != "" {
			source = "r/" + post.Subreddit
		}
		mentions = append(mentions, models.Mention{
			Text:       text,
			Engagement: post.Score,
			Comments:   post.NumComments,
			Source:     source,
			Timestamp:  time.Unix(int64(post.CreatedUTC), 0).UTC(),
		})
	}
	return mentions, resp.StatusCode, nil
}
