package gitnotes

import (
	"context"
	"io"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/notehub/gitnotes/log"
)

// StagedFile is one pending local change not yet committed.
type StagedFile struct {
	Path    string
	Content FileContent
}

// IncomingFile is one file from a drop batch, read lazily. Open is invoked
// once per file; the content's text/binary kind is detected from the bytes.
type IncomingFile struct {
	Path string
	Open func() (io.ReadCloser, error)
}

// StagingBuffer accumulates not-yet-committed file content, independent of
// the tree mirror. It holds no revision preconditions: the multi-file
// commit path starts from the branch head resolved at commit time, which
// makes per-file preconditions redundant by construction.
type StagingBuffer struct {
	logger log.Logger
	files  map[string]FileContent
}

// NewStagingBuffer creates an empty buffer.
func NewStagingBuffer(logger log.Logger) *StagingBuffer {
	if logger == nil {
		logger = log.Noop{}
	}
	return &StagingBuffer{
		logger: logger,
		files:  make(map[string]FileContent),
	}
}

// Stage inserts or replaces the entry at path. Overlapping stages resolve
// asymmetrically: staging a path removes any previously staged entries
// nested under it (the new ancestor supersedes its descendants), while a
// new entry nested under an already-staged path is rejected (the existing
// broader stage wins). The returned bool reports whether the entry was
// accepted.
func (b *StagingBuffer) Stage(path string, content FileContent) (bool, error) {
	path, err := validateFilePath(path)
	if err != nil {
		return false, err
	}

	for existing := range b.files {
		if pathWithin(path, existing) {
			b.logger.Warn("stage rejected, broader path already staged",
				"path", path, "staged", existing)
			return false, nil
		}
	}

	for existing := range b.files {
		if pathWithin(existing, path) {
			b.logger.Debug("staged ancestor supersedes descendant",
				"path", path, "removed", existing)
			delete(b.files, existing)
		}
	}

	b.files[path] = content
	return true, nil
}

// StageBatch ingests one drop batch: every file's content is read
// concurrently, and staging happens only once all reads in the batch have
// completed. A single failed read fails the batch and stages nothing from
// it. Returns the paths accepted into the buffer.
func (b *StagingBuffer) StageBatch(ctx context.Context, incoming []IncomingFile) ([]string, error) {
	if len(incoming) == 0 {
		return nil, nil
	}

	contents := make([]FileContent, len(incoming))
	g, ctx := errgroup.WithContext(ctx)
	for i, in := range incoming {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rc, err := in.Open()
			if err != nil {
				return err
			}
			defer func() { _ = rc.Close() }()

			data, err := io.ReadAll(rc)
			if err != nil {
				return err
			}
			contents[i] = DetectContent(data)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var accepted []string
	for i, in := range incoming {
		ok, err := b.Stage(in.Path, contents[i])
		if err != nil {
			return accepted, err
		}
		if ok {
			accepted = append(accepted, in.Path)
		}
	}
	return accepted, nil
}

// Files returns the staged entries ordered by path.
func (b *StagingBuffer) Files() []StagedFile {
	out := make([]StagedFile, 0, len(b.files))
	for path, content := range b.files {
		out = append(out, StagedFile{Path: path, Content: content})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Get returns the staged content for a path, if present.
func (b *StagingBuffer) Get(path string) (FileContent, bool) {
	content, ok := b.files[path]
	return content, ok
}

// Len returns the number of staged entries.
func (b *StagingBuffer) Len() int {
	return len(b.files)
}

// Clear empties the buffer unconditionally. Called after a successful
// commit or explicit cancellation.
func (b *StagingBuffer) Clear() {
	b.files = make(map[string]FileContent)
}
