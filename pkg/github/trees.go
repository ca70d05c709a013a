package github

import (
	"context"
	"fmt"
)

// TreeEntry is one node of a recursive git tree listing.
type TreeEntry struct {
	Path string `json:"path"`
	Type string `json:"type"`
	SHA  string `json:"sha"`
	Size int64  `json:"size"`
}

// Tree is the Git Trees API response.
type Tree struct {
	SHA       string      `json:"sha"`
	Tree      []TreeEntry `json:"tree"`
	Truncated bool        `json:"truncated"`
}

// GetTree lists every path of repo ("owner/name") at ref in a single request.
func (c *Client) GetTree(ctx context.Context, repo, ref string) (*Tree, error) {
	url := c.url("repos", repo, "git", "trees", ref) + "?recursive=1"
	var tree Tree
	if err := c.getJSON(ctx, url, &tree); err != nil {
		return nil, err
	}
	if tree.Tree == nil {
		return nil, fmt.Errorf("%w: tree listing has no entries field", ErrMalformed)
	}
	return &tree, nil
}
