package gitnotes

import (
	"context"
	"time"
)

// EntryType is the kind of a directory-listing row.
type EntryType int

const (
	// EntryFile is a regular file (a blob in the remote object model).
	EntryFile EntryType = iota
	// EntryDir is a directory (a tree in the remote object model).
	EntryDir
)

func (t EntryType) String() string {
	switch t {
	case EntryFile:
		return "file"
	case EntryDir:
		return "dir"
	default:
		return "unknown"
	}
}

// TreeEntry is one directory-listing row in the remote repository.
type TreeEntry struct {
	// Type distinguishes files from directories.
	Type EntryType
	// Name is the leaf name (e.g., "notes.md").
	Name string
	// Path is the full repository-relative path; "" denotes the root.
	Path string
	// Revision is the opaque content-addressed version token of the blob.
	// It is empty for directories and is the required precondition for
	// updates and deletes.
	Revision string
}

// BlobContent is the result of reading a single file from the remote.
type BlobContent struct {
	Content  string
	Revision string
}

// RevisionInfo is one entry in a path's commit history, newest first.
type RevisionInfo struct {
	Revision  string
	Message   string
	Author    string
	Timestamp time.Time
}

// TreeWrite is one file to include in a tree object under construction,
// referencing a blob object previously created with CreateBlobObject.
type TreeWrite struct {
	Path         string
	BlobRevision string
}

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -o internal/fakes/gateway.go . Gateway

// Gateway is the contract over the remote Git hosting API. All operations
// are remote calls and may fail with a transport error; conflict and
// not-found outcomes are classified at this boundary (see errors.go) and
// must never be collapsed into generic failures by implementations.
type Gateway interface {
	// ListDirectory returns the immediate children of a directory.
	// A path that does not exist and a genuinely empty directory both
	// yield an empty slice; callers must not distinguish them.
	ListDirectory(ctx context.Context, path string) ([]TreeEntry, error)

	// ReadBlob reads a file's content. An empty revision reads the current
	// default-branch version; a non-empty revision reads that historical
	// version. A missing path yields (nil, nil), not an error.
	ReadBlob(ctx context.Context, path, revision string) (*BlobContent, error)

	// WriteBlob creates or updates a single file in one commit and returns
	// the new blob revision. A non-empty precondition is the expected prior
	// revision; when it does not match the remote's current revision the
	// call fails with a ConflictError.
	WriteBlob(ctx context.Context, path string, content FileContent, message, precondition string) (string, error)

	// DeleteBlob removes a single file in one commit. The revision is
	// mandatory; a stale revision fails with a ConflictError.
	DeleteBlob(ctx context.Context, path, revision, message string) error

	// ListRevisions returns the commit history touching a path, newest
	// first. Absent history yields an empty slice, not an error.
	ListRevisions(ctx context.Context, path string) ([]RevisionInfo, error)

	// BranchHead resolves the branch's current head commit revision.
	// First step of the atomic multi-file commit sequence.
	BranchHead(ctx context.Context) (string, error)

	// CommitTree resolves the tree revision attached to a commit.
	// Second step of the atomic multi-file commit sequence.
	CommitTree(ctx context.Context, commitRevision string) (string, error)

	// CreateBlobObject creates one content object and returns its revision.
	// Text content is sent as UTF-8, binary content as base64.
	CreateBlobObject(ctx context.Context, content FileContent) (string, error)

	// CreateTreeObject assembles a new tree listing the given writes against
	// the prior base tree and returns the new tree revision.
	CreateTreeObject(ctx context.Context, baseTree string, writes []TreeWrite) (string, error)

	// CreateCommitObject creates a commit referencing the tree, with the
	// given parent, and returns the commit revision.
	CreateCommitObject(ctx context.Context, message, treeRevision, parentRevision string) (string, error)

	// AdvanceBranch atomically moves the branch reference to the commit.
	// Final step of the atomic multi-file commit sequence; a concurrently
	// advanced branch fails with a ConflictError and leaves the remote
	// untouched apart from unreferenced intermediate objects.
	AdvanceBranch(ctx context.Context, commitRevision string) error

	// CommitURL returns a browsable URL for a commit revision. It performs
	// no remote call.
	CommitURL(revision string) string
}
