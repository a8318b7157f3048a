package templates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultBaseURL is the gitignore template API endpoint.
const DefaultBaseURL = "https://www.toptal.com/developers/gitignore/api"

const defaultFetchTimeout = 30 * time.Second

// Client fetches exclusion templates from the remote template API.
//
// The API exposes two shapes: a single call returning every template with its
// contents, and a plain key list followed by one call per key. FetchAll
// prefers the first and falls back to the second, so either server variant
// works.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a template API client. A nil httpClient gets a default
// client with a request timeout; an empty baseURL falls back to DefaultBaseURL.
func NewClient(httpClient *http.Client, baseURL string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultFetchTimeout}
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// listEntry is one record of the combined list response.
type listEntry struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	Contents string `json:"contents"`
}

// FetchAll retrieves the full key-to-template mapping. Per-key failures in
// the fallback shape are logged and skipped; FetchAll fails only when zero
// templates could be obtained.
func (c *Client) FetchAll(ctx context.Context, logger *zap.Logger) (map[string]Template, error) {
	fetched, combinedErr := c.fetchCombined(ctx)
	if combinedErr == nil && len(fetched) > 0 {
		return fetched, nil
	}
	if combinedErr != nil {
		logger.Debug("Combined template fetch failed, trying per-key fetch", zap.Error(combinedErr))
	}

	fetched, splitErr := c.fetchPerKey(ctx, logger)
	if splitErr != nil {
		if combinedErr != nil {
			return nil, fmt.Errorf("template fetch failed: %v: %w", combinedErr, splitErr)
		}
		return nil, splitErr
	}
	return fetched, nil
}

// fetchCombined performs the preferred single round trip: the full template
// list with contents included.
func (c *Client) fetchCombined(ctx context.Context) (map[string]Template, error) {
	body, err := c.get(ctx, c.baseURL+"/list?format=json")
	if err != nil {
		return nil, err
	}

	var entries map[string]listEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode template list: %w", err)
	}

	templates := make(map[string]Template, len(entries))
	for key, entry := range entries {
		if entry.Key == "" {
			entry.Key = key
		}
		if entry.Name == "" {
			entry.Name = key
		}
		if entry.Contents == "" {
			continue
		}
		templates[entry.Key] = Template{
			Key:      entry.Key,
			Name:     entry.Name,
			Contents: entry.Contents,
		}
	}
	return templates, nil
}

// fetchPerKey performs the fallback shape: a plain key list followed by one
// content request per key.
func (c *Client) fetchPerKey(ctx context.Context, logger *zap.Logger) (map[string]Template, error) {
	body, err := c.get(ctx, c.baseURL+"/list")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch template key list: %w", err)
	}

	keys := splitKeyList(string(body))
	templates := make(map[string]Template, len(keys))
	for _, key := range keys {
		contents, err := c.get(ctx, c.baseURL+"/"+key)
		if err != nil {
			logger.Warn("Failed to fetch template, skipping", zap.String("key", key), zap.Error(err))
			continue
		}
		templates[key] = Template{
			Key:      key,
			Name:     key,
			Contents: string(contents),
		}
	}

	if len(templates) == 0 {
		return nil, fmt.Errorf("no templates could be fetched (%d keys listed)", len(keys))
	}
	return templates, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", url, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request to %s returned status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", url, err)
	}
	return body, nil
}

// splitKeyList parses the plain list response, which separates keys with
// commas and newlines.
func splitKeyList(body string) []string {
	raw := strings.FieldsFunc(body, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	})
	keys := make([]string, 0, len(raw))
	for _, key := range raw {
		key = strings.TrimSpace(key)
		if key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}
