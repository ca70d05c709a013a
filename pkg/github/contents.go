package github

import (
	"context"
	"net/url"
)

// ContentEntry is one item of a Contents API directory listing.
type ContentEntry struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Type string `json:"type"`
	Size int64  `json:"size"`
}

// ListDirectory lists the immediate children of dir in repo at ref.
func (c *Client) ListDirectory(ctx context.Context, repo, dir, ref string) ([]ContentEntry, error) {
	u := c.url("repos", repo, "contents", dir)
	if ref != "" {
		u += "?ref=" + url.QueryEscape(ref)
	}
	var entries []ContentEntry
	if err := c.getJSON(ctx, u, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
