// Package taxonomy serves Google's product taxonomy for category autocomplete.
package taxonomy

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"feedgen/internal/cache"
	"feedgen/internal/logger"
)

// CacheTTL is how long the downloaded taxonomy is kept.
const CacheTTL = 24 * time.Hour

// Category is one select2 result.
type Category struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Client downloads the taxonomy list and searches it.
type Client struct {
	url      string
	http     *http.Client
	cache    cache.Store
	cacheKey string
	logger   *logger.Logger
}

func NewClient(url string, store cache.Store, cachePrefix string, log *logger.Logger) *Client {
	if log == nil {
		log = logger.Discard()
	}
	return &Client{
		url:      strings.TrimSpace(url),
		http:     &http.Client{Timeout: 15 * time.Second},
		cache:    store,
		cacheKey: cachePrefix + "_google_taxonomy",
		logger:   log,
	}
}

// Search returns every category containing query, case-insensitively. Any
// failure to obtain the list yields no results.
func (c *Client) Search(ctx context.Context, query string) []Category {
	lines := c.lines(ctx)
	needle := strings.ToLower(strings.TrimSpace(query))

	results := make([]Category, 0)
	for _, line := range lines {
		if needle != "" && !strings.Contains(strings.ToLower(line), needle) {
			continue
		}
		results = append(results, Category{ID: line, Text: line})
	}
	return results
}

func (c *Client) lines(ctx context.Context) []string {
	if content, ok, err := c.cache.Get(ctx, c.cacheKey); err == nil && ok {
		return parse(content)
	}

	content, err := c.fetch(ctx)
	if err != nil {
		c.logger.Error("Failed to fetch Google taxonomy: %v", err)
		return nil
	}

	lines := parse(content)
	if len(lines) > 0 {
		if err := c.cache.Put(ctx, c.cacheKey, strings.Join(lines, "\n"), CacheTTL); err != nil {
			c.logger.Error("Failed to cache Google taxonomy: %v", err)
		}
	}
	return lines
}

func (c *Client) fetch(ctx context.Context) (string, error) {
	if c.url == "" {
		return "", fmt.Errorf("taxonomy url not configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/plain")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var b strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		b.WriteString(scanner.Text())
		b.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return b.String(), nil
}

// parse drops blank lines and the "# Google_Product_Taxonomy_Version" header.
func parse(content string) []string {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
