package githubapi

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/notehub/gitnotes"
)

// BranchHead implements gitnotes.Gateway. It resolves the branch to its
// current commit SHA.
func (c *Client) BranchHead(ctx context.Context) (string, error) {
	var resp refResponse
	err := c.do(ctx, http.MethodGet, c.repoPath("git/ref/heads", c.branch), nil, nil, &resp)
	if err != nil {
		return "", fmt.Errorf("resolve head of %q: %w", c.branch, err)
	}
	return resp.Object.SHA, nil
}

// CommitTree implements gitnotes.Gateway. It returns the tree SHA of the
// given commit.
func (c *Client) CommitTree(ctx context.Context, commitRevision string) (string, error) {
	var resp commitResponse
	err := c.do(ctx, http.MethodGet, c.repoPath("git/commits", commitRevision), nil, nil, &resp)
	if err != nil {
		return "", fmt.Errorf("resolve tree of commit %s: %w", commitRevision, err)
	}
	return resp.Tree.SHA, nil
}

// CreateBlobObject implements gitnotes.Gateway. Text content travels as
// utf-8, binary content as base64.
func (c *Client) CreateBlobObject(ctx context.Context, content gitnotes.FileContent) (string, error) {
	req := blobRequest{Encoding: "utf-8", Content: content.Text}
	if content.Kind == gitnotes.ContentBinary {
		req = blobRequest{
			Encoding: "base64",
			Content:  base64.StdEncoding.EncodeToString(content.Bytes),
		}
	}

	var resp shaResponse
	if err := c.do(ctx, http.MethodPost, c.repoPath("git/blobs"), nil, req, &resp); err != nil {
		return "", fmt.Errorf("create blob: %w", err)
	}
	return resp.SHA, nil
}

// CreateTreeObject implements gitnotes.Gateway. The new tree extends
// baseTree with the given blob writes as regular files.
func (c *Client) CreateTreeObject(ctx context.Context, baseTree string, writes []gitnotes.TreeWrite) (string, error) {
	req := treeRequest{BaseTree: baseTree, Tree: make([]treeEntry, 0, len(writes))}
	for _, w := range writes {
		req.Tree = append(req.Tree, treeEntry{
			Path: w.Path,
			Mode: "100644",
			Type: "blob",
			SHA:  w.BlobRevision,
		})
	}

	var resp shaResponse
	if err := c.do(ctx, http.MethodPost, c.repoPath("git/trees"), nil, req, &resp); err != nil {
		return "", fmt.Errorf("create tree: %w", err)
	}
	return resp.SHA, nil
}

// CreateCommitObject implements gitnotes.Gateway.
func (c *Client) CreateCommitObject(ctx context.Context, message, treeRevision, parentRevision string) (string, error) {
	req := commitRequest{Message: message, Tree: treeRevision}
	if parentRevision != "" {
		req.Parents = []string{parentRevision}
	}

	var resp shaResponse
	if err := c.do(ctx, http.MethodPost, c.repoPath("git/commits"), nil, req, &resp); err != nil {
		return "", fmt.Errorf("create commit: %w", err)
	}
	return resp.SHA, nil
}

// AdvanceBranch implements gitnotes.Gateway. The update is never forced, so
// a branch that moved since BranchHead was read comes back as a
// ConflictError instead of losing the interleaved commit.
func (c *Client) AdvanceBranch(ctx context.Context, commitRevision string) error {
	req := refUpdateRequest{SHA: commitRevision, Force: false}

	err := c.do(ctx, http.MethodPatch, c.repoPath("git/refs/heads", c.branch), nil, req, nil)
	switch statusOf(err) {
	case http.StatusConflict, http.StatusUnprocessableEntity:
		return gitnotes.NewConflictError("refs/heads/"+c.branch, commitRevision)
	}
	if err != nil {
		return fmt.Errorf("advance %q: %w", c.branch, err)
	}
	return nil
}

// CommitURL implements gitnotes.Gateway without a remote call.
func (c *Client) CommitURL(revision string) string {
	base := strings.TrimSuffix(c.htmlBase.String(), "/")
	return fmt.Sprintf("%s/%s/%s/commit/%s",
		base, url.PathEscape(c.owner), url.PathEscape(c.repo), url.PathEscape(revision))
}
