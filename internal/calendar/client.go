package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/julienfritschheydon/doodates-scheduler/internal/engine"
)

// Client fetches busy intervals from an external calendar bridge over HTTP.
// It implements engine.CalendarSource; the engine treats any failure here as
// an empty busy set, so callers usually just log the error and move on.
type Client struct {
	httpClient *http.Client
	baseURL    string
	log        zerolog.Logger
}

// NewClient creates a busy-interval client for a calendar bridge base URL.
func NewClient(baseURL string, log zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    baseURL,
		log:        log,
	}
}

type busyItem struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// BusyIntervals requests the occupied periods between from and to. One call
// covers the whole lookahead horizon; there are no per-day sub-requests.
func (c *Client) BusyIntervals(ctx context.Context, from, to time.Time) ([]engine.BusyInterval, error) {
	params := url.Values{}
	params.Add("from", from.Format(time.RFC3339))
	params.Add("to", to.Format(time.RFC3339))

	fullURL := fmt.Sprintf("%s/busy?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Msg("calendar lookup failed, continuing without busy data")
		return nil, fmt.Errorf("fetching busy intervals: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.log.Warn().Int("status", resp.StatusCode).Msg("calendar bridge returned an error")
		return nil, fmt.Errorf("calendar bridge returned status %d: %s", resp.StatusCode, string(body))
	}

	var items []busyItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("decoding busy intervals: %w", err)
	}

	intervals := make([]engine.BusyInterval, 0, len(items))
	for _, it := range items {
		if !it.Start.Before(it.End) {
			continue
		}
		intervals = append(intervals, engine.BusyInterval{Start: it.Start, End: it.End})
	}

	c.log.Debug().Int("count", len(intervals)).Msg("fetched busy intervals")
	return intervals, nil
}
