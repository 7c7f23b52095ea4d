package gitnotes

import "context"

// fakeGateway is a scriptable Gateway for unit tests. Unset functions
// return zero values, so each test wires only the calls it exercises.
type fakeGateway struct {
	listDirectoryFn      func(ctx context.Context, dir string) ([]TreeEntry, error)
	readBlobFn           func(ctx context.Context, path, revision string) (*BlobContent, error)
	writeBlobFn          func(ctx context.Context, path string, content FileContent, message, precondition string) (string, error)
	deleteBlobFn         func(ctx context.Context, path, revision, message string) error
	listRevisionsFn      func(ctx context.Context, path string) ([]RevisionInfo, error)
	branchHeadFn         func(ctx context.Context) (string, error)
	commitTreeFn         func(ctx context.Context, commitRevision string) (string, error)
	createBlobObjectFn   func(ctx context.Context, content FileContent) (string, error)
	createTreeObjectFn   func(ctx context.Context, baseTree string, writes []TreeWrite) (string, error)
	createCommitObjectFn func(ctx context.Context, message, treeRevision, parentRevision string) (string, error)
	advanceBranchFn      func(ctx context.Context, commitRevision string) error
	commitURLFn          func(revision string) string
}

func (f *fakeGateway) ListDirectory(ctx context.Context, dir string) ([]TreeEntry, error) {
	if f.listDirectoryFn == nil {
		return nil, nil
	}
	return f.listDirectoryFn(ctx, dir)
}

func (f *fakeGateway) ReadBlob(ctx context.Context, path, revision string) (*BlobContent, error) {
	if f.readBlobFn == nil {
		return nil, nil
	}
	return f.readBlobFn(ctx, path, revision)
}

func (f *fakeGateway) WriteBlob(ctx context.Context, path string, content FileContent, message, precondition string) (string, error) {
	if f.writeBlobFn == nil {
		return "rev-1", nil
	}
	return f.writeBlobFn(ctx, path, content, message, precondition)
}

func (f *fakeGateway) DeleteBlob(ctx context.Context, path, revision, message string) error {
	if f.deleteBlobFn == nil {
		return nil
	}
	return f.deleteBlobFn(ctx, path, revision, message)
}

func (f *fakeGateway) ListRevisions(ctx context.Context, path string) ([]RevisionInfo, error) {
	if f.listRevisionsFn == nil {
		return nil, nil
	}
	return f.listRevisionsFn(ctx, path)
}

func (f *fakeGateway) BranchHead(ctx context.Context) (string, error) {
	if f.branchHeadFn == nil {
		return "head-1", nil
	}
	return f.branchHeadFn(ctx)
}

func (f *fakeGateway) CommitTree(ctx context.Context, commitRevision string) (string, error) {
	if f.commitTreeFn == nil {
		return "tree-1", nil
	}
	return f.commitTreeFn(ctx, commitRevision)
}

func (f *fakeGateway) CreateBlobObject(ctx context.Context, content FileContent) (string, error) {
	if f.createBlobObjectFn == nil {
		return "blob-1", nil
	}
	return f.createBlobObjectFn(ctx, content)
}

func (f *fakeGateway) CreateTreeObject(ctx context.Context, baseTree string, writes []TreeWrite) (string, error) {
	if f.createTreeObjectFn == nil {
		return "tree-2", nil
	}
	return f.createTreeObjectFn(ctx, baseTree, writes)
}

func (f *fakeGateway) CreateCommitObject(ctx context.Context, message, treeRevision, parentRevision string) (string, error) {
	if f.createCommitObjectFn == nil {
		return "commit-1", nil
	}
	return f.createCommitObjectFn(ctx, message, treeRevision, parentRevision)
}

func (f *fakeGateway) AdvanceBranch(ctx context.Context, commitRevision string) error {
	if f.advanceBranchFn == nil {
		return nil
	}
	return f.advanceBranchFn(ctx, commitRevision)
}

func (f *fakeGateway) CommitURL(revision string) string {
	if f.commitURLFn == nil {
		return "https://example.com/commit/" + revision
	}
	return f.commitURLFn(revision)
}
