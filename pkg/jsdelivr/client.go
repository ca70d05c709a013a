// Package jsdelivr lists files of a GitHub repository through the jsDelivr data API,
// which serves a flat listing without consuming the GitHub API rate limit.
package jsdelivr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultBase = "https://data.jsdelivr.com"

// ErrMalformed is returned when a success response does not have the expected shape.
var ErrMalformed = errors.New("malformed jsdelivr response")

// File is one entry of a flat package listing. Name is a slash-rooted path.
type File struct {
	Name string `json:"name"`
	Hash string `json:"hash"`
	Size int64  `json:"size"`
}

// Listing is the flat package listing response.
type Listing struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	Version string `json:"version"`
	Files   []File `json:"files"`
}

// Client queries the jsDelivr data API.
type Client struct {
	base string
	http *http.Client
}

// New builds a client. An empty base selects the public endpoint.
func New(base string, timeout time.Duration) *Client {
	if base == "" {
		base = defaultBase
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{base: strings.TrimRight(base, "/"), http: &http.Client{Timeout: timeout}}
}

// ListFlat lists every file of the GitHub repo ("owner/name") at version (branch, tag or sha).
func (c *Client) ListFlat(ctx context.Context, repo, version string) (*Listing, error) {
	url := fmt.Sprintf("%s/v1/packages/gh/%s@%s?structure=flat", c.base, repo, version)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jsdelivr listing %s@%s: status %d", repo, version, resp.StatusCode)
	}

	var listing Listing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if listing.Files == nil {
		return nil, fmt.Errorf("%w: no files field", ErrMalformed)
	}
	return &listing, nil
}
