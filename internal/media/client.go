package media

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/verdantlabs/voicerelay/internal/cache"
	"github.com/verdantlabs/voicerelay/internal/config"
)

// Track is one search hit from the media server, already ordered by
// relevance on the server side.
type Track struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Channel  string  `json:"channel"`
	AudioURL string  `json:"audioUrl"`
	Duration float64 `json:"duration"`
}

// Client queries the media search server, caching results in redis so
// repeated "phát nhạc X" requests skip the round trip.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *cache.Cache
	cacheTTL   time.Duration
}

func NewClient(cfg config.MediaConfig, c *cache.Cache) *Client {
	return &Client{
		baseURL: cfg.ServerURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		cache:    c,
		cacheTTL: time.Duration(cfg.CacheTTL) * time.Second,
	}
}

// Search returns up to maxResults tracks for the query.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]Track, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("media server not configured")
	}
	if maxResults <= 0 {
		maxResults = 1
	}

	cacheKey := fmt.Sprintf("media:search:%d:%s", maxResults, query)
	if c.cached() {
		var tracks []Track
		if err := c.cache.Get(ctx, cacheKey, &tracks); err == nil {
			return tracks, nil
		}
	}

	u := fmt.Sprintf("%s/search?%s", c.baseURL, url.Values{
		"q":     {query},
		"limit": {strconv.Itoa(maxResults)},
	}.Encode())

	httpReq, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("media search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("media search failed (status %d): %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Results []Track `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode media results: %w", err)
	}

	if c.cached() {
		if err := c.cache.Set(ctx, cacheKey, payload.Results, c.cacheTTL); err != nil {
			slog.Debug("media cache write failed", "key", cacheKey, "error", err)
		}
	}
	return payload.Results, nil
}

func (c *Client) cached() bool {
	return c.cache != nil && c.cacheTTL > 0
}
