// Package seed fetches the canonical job dataset used to populate an
// empty store on first start.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/RihabMhd/jobboard/internal/board"
)

const httpTimeout = 15 * time.Second

// Fetcher retrieves the seed dataset over HTTP. The dataset is a static
// JSON array of job objects; ids may arrive as numbers or numeric strings
// and are normalized to integers by the decoder.
type Fetcher struct {
	URL    string
	client *http.Client
}

// New constructs a fetcher with a shared HTTP client.
func New(url string) *Fetcher {
	return &Fetcher{
		URL:    url,
		client: &http.Client{Timeout: httpTimeout},
	}
}

// Fetch downloads and decodes the dataset. Any network, HTTP or decode
// failure is returned as-is; the caller degrades to an empty listing.
func (f *Fetcher) Fetch(ctx context.Context) ([]board.Job, error) {
	if f.URL == "" {
		return nil, fmt.Errorf("no seed URL configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http GET: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("seed resource returned %d", resp.StatusCode)
	}

	var jobs []board.Job
	if err := json.Unmarshal(body, &jobs); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	return jobs, nil
}
