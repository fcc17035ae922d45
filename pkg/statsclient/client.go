// Package statsclient talks to the external hit-counting collector.
// The collector is best-effort: callers tolerate empty or failed results.
package statsclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// TimeLayout is the timestamp format the collector speaks.
const TimeLayout = "2006-01-02 15:04:05"

type Stat struct {
	App  string `json:"app"`
	URI  string `json:"uri"`
	Hits int64  `json:"hits"`
}

type endpointHit struct {
	App       string `json:"app"`
	URI       string `json:"uri"`
	IP        string `json:"ip"`
	Timestamp string `json:"timestamp"`
}

type Client struct {
	baseURL    string
	app        string
	httpClient *http.Client
}

func New(baseURL, app string) *Client {
	return &Client{
		baseURL:    baseURL,
		app:        app,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

// SendHit records one endpoint hit with the collector.
func (c *Client) SendHit(ctx context.Context, uri, ip string) error {
	hit := endpointHit{
		App:       c.app,
		URI:       uri,
		IP:        ip,
		Timestamp: time.Now().Format(TimeLayout),
	}
	body, err := json.Marshal(hit)
	if err != nil {
		return fmt.Errorf("marshal hit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/hit", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build hit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send hit: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("send hit: collector returned %d", resp.StatusCode)
	}
	return nil
}

// GetStats fetches per-URI hit counts for the given window.
func (c *Client) GetStats(ctx context.Context, start, end time.Time, uris []string, unique bool) ([]Stat, error) {
	params := url.Values{}
	params.Set("start", start.Format(TimeLayout))
	params.Set("end", end.Format(TimeLayout))
	params.Set("unique", strconv.FormatBool(unique))
	for _, u := range uris {
		params.Add("uris", u)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/stats?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build stats request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get stats: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get stats: collector returned %d", resp.StatusCode)
	}

	var stats []Stat
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return nil, fmt.Errorf("decode stats: %w", err)
	}
	return stats, nil
}
