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

// ListDirectory implements gitnotes.Gateway. A missing directory is reported
// as empty, not as an error.
func (c *Client) ListDirectory(ctx context.Context, dir string) ([]gitnotes.TreeEntry, error) {
	query := url.Values{"ref": {c.branch}}

	var items []contentsItem
	err := c.do(ctx, http.MethodGet, c.repoPath("contents", dir), query, nil, &items)
	if statusOf(err) == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list %q: %w", dir, err)
	}

	entries := make([]gitnotes.TreeEntry, 0, len(items))
	for _, item := range items {
		var entryType gitnotes.EntryType
		switch item.Type {
		case "file":
			entryType = gitnotes.EntryFile
		case "dir":
			entryType = gitnotes.EntryDir
		default:
			// Symlinks and submodules are not editable here.
			continue
		}
		entries = append(entries, gitnotes.TreeEntry{
			Type:     entryType,
			Name:     item.Name,
			Path:     item.Path,
			Revision: item.SHA,
		})
	}
	return entries, nil
}

// ReadBlob implements gitnotes.Gateway. An absent file yields (nil, nil).
// revision selects the ref to read from; empty means the client's branch.
func (c *Client) ReadBlob(ctx context.Context, path, revision string) (*gitnotes.BlobContent, error) {
	ref := revision
	if ref == "" {
		ref = c.branch
	}
	query := url.Values{"ref": {ref}}

	var item contentsItem
	err := c.do(ctx, http.MethodGet, c.repoPath("contents", path), query, nil, &item)
	if statusOf(err) == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", path, err)
	}
	if item.Type != "file" {
		return nil, gitnotes.NewInvalidPathError(path, "not a file")
	}

	content, err := decodeContent(item)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", path, err)
	}
	return &gitnotes.BlobContent{Content: content, Revision: item.SHA}, nil
}

// WriteBlob implements gitnotes.Gateway. A non-empty precondition is sent as
// the expected blob SHA; a stale precondition, or a create that collides
// with an existing file, comes back as a ConflictError.
func (c *Client) WriteBlob(ctx context.Context, path string, content gitnotes.FileContent, message, precondition string) (string, error) {
	req := writeRequest{
		Message: message,
		Content: base64.StdEncoding.EncodeToString(contentBytes(content)),
		Branch:  c.branch,
		SHA:     precondition,
	}

	var resp writeResponse
	err := c.do(ctx, http.MethodPut, c.repoPath("contents", path), nil, req, &resp)
	switch statusOf(err) {
	case http.StatusConflict, http.StatusUnprocessableEntity:
		return "", gitnotes.NewConflictError(path, precondition)
	}
	if err != nil {
		return "", fmt.Errorf("write %q: %w", path, err)
	}
	if resp.Content == nil {
		return "", fmt.Errorf("write %q: response missing content sha", path)
	}
	return resp.Content.SHA, nil
}

// DeleteBlob implements gitnotes.Gateway.
func (c *Client) DeleteBlob(ctx context.Context, path, revision, message string) error {
	req := deleteRequest{Message: message, SHA: revision, Branch: c.branch}

	err := c.do(ctx, http.MethodDelete, c.repoPath("contents", path), nil, req, nil)
	switch statusOf(err) {
	case http.StatusNotFound:
		return gitnotes.NewPathNotFoundError(path)
	case http.StatusConflict, http.StatusUnprocessableEntity:
		return gitnotes.NewConflictError(path, revision)
	}
	if err != nil {
		return fmt.Errorf("delete %q: %w", path, err)
	}
	return nil
}

// ListRevisions implements gitnotes.Gateway, newest first. A path with no
// history is reported as empty.
func (c *Client) ListRevisions(ctx context.Context, path string) ([]gitnotes.RevisionInfo, error) {
	query := url.Values{
		"path":     {path},
		"sha":      {c.branch},
		"per_page": {"30"},
	}

	var items []commitItem
	err := c.do(ctx, http.MethodGet, c.repoPath("commits"), query, nil, &items)
	if statusOf(err) == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list revisions for %q: %w", path, err)
	}

	revisions := make([]gitnotes.RevisionInfo, 0, len(items))
	for _, item := range items {
		revisions = append(revisions, gitnotes.RevisionInfo{
			Revision:  item.SHA,
			Message:   item.Commit.Message,
			Author:    item.Commit.Author.Name,
			Timestamp: item.Commit.Author.Date,
		})
	}
	return revisions, nil
}

// decodeContent decodes a contents API payload. GitHub wraps base64 content
// at 60 columns, so newlines are stripped before decoding.
func decodeContent(item contentsItem) (string, error) {
	switch item.Encoding {
	case "base64":
		raw, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(item.Content, "\n", ""))
		if err != nil {
			return "", fmt.Errorf("decode base64 content: %w", err)
		}
		return string(raw), nil
	case "", "none":
		return item.Content, nil
	default:
		return "", fmt.Errorf("unsupported content encoding %q", item.Encoding)
	}
}

// contentBytes flattens a FileContent into raw bytes for transport.
func contentBytes(content gitnotes.FileContent) []byte {
	if content.Kind == gitnotes.ContentBinary {
		return content.Bytes
	}
	return []byte(content.Text)
}
