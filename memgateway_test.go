package gitnotes_test

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/notehub/gitnotes"
)

// memGateway simulates a remote repository branch in memory, including the
// object-level commit protocol, so end-to-end flows can run against
// realistic remote semantics: revision preconditions, non-fast-forward
// rejection, and directory listings derived from file paths.
type memGateway struct {
	files map[string]string
	revs  map[string]string

	head    string
	seq     int
	blobs   map[string]gitnotes.FileContent
	trees   map[string][]gitnotes.TreeWrite
	commits map[string]memCommit

	// afterHead, when set, runs once after BranchHead resolves. Used to
	// interleave an external writer with an in-flight commit.
	afterHead func()
}

type memCommit struct {
	parent string
	tree   string
}

func newMemGateway(files map[string]string) *memGateway {
	g := &memGateway{
		files:   make(map[string]string),
		revs:    make(map[string]string),
		blobs:   make(map[string]gitnotes.FileContent),
		trees:   make(map[string][]gitnotes.TreeWrite),
		commits: make(map[string]memCommit),
		head:    "head-0",
	}
	for path, content := range files {
		g.files[path] = content
		g.revs[path] = g.nextID("rev")
	}
	return g
}

func (g *memGateway) nextID(kind string) string {
	g.seq++
	return fmt.Sprintf("%s-%d", kind, g.seq)
}

func (g *memGateway) bumpHead() {
	g.head = g.nextID("head")
}

func (g *memGateway) ListDirectory(_ context.Context, dir string) ([]gitnotes.TreeEntry, error) {
	prefix := ""
	if dir != "" {
		prefix = dir + "/"
	}

	seenDirs := map[string]bool{}
	var entries []gitnotes.TreeEntry
	for path := range g.files {
		if !strings.HasPrefix(path, prefix) {
			continue
		}
		rest := path[len(prefix):]
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			name := rest[:i]
			if !seenDirs[name] {
				seenDirs[name] = true
				entries = append(entries, gitnotes.TreeEntry{
					Type: gitnotes.EntryDir,
					Name: name,
					Path: prefix + name,
				})
			}
			continue
		}
		entries = append(entries, gitnotes.TreeEntry{
			Type:     gitnotes.EntryFile,
			Name:     rest,
			Path:     path,
			Revision: g.revs[path],
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func (g *memGateway) ReadBlob(_ context.Context, path, _ string) (*gitnotes.BlobContent, error) {
	content, ok := g.files[path]
	if !ok {
		return nil, nil
	}
	return &gitnotes.BlobContent{Content: content, Revision: g.revs[path]}, nil
}

func (g *memGateway) WriteBlob(_ context.Context, path string, content gitnotes.FileContent, _, precondition string) (string, error) {
	_, exists := g.files[path]
	if precondition == "" && exists {
		return "", gitnotes.NewConflictError(path, precondition)
	}
	if precondition != "" && precondition != g.revs[path] {
		return "", gitnotes.NewConflictError(path, precondition)
	}

	g.files[path] = content.Text
	g.revs[path] = g.nextID("rev")
	g.bumpHead()
	return g.revs[path], nil
}

func (g *memGateway) DeleteBlob(_ context.Context, path, revision, _ string) error {
	if _, ok := g.files[path]; !ok {
		return gitnotes.NewPathNotFoundError(path)
	}
	if revision != g.revs[path] {
		return gitnotes.NewConflictError(path, revision)
	}
	delete(g.files, path)
	delete(g.revs, path)
	g.bumpHead()
	return nil
}

func (g *memGateway) ListRevisions(_ context.Context, path string) ([]gitnotes.RevisionInfo, error) {
	if _, ok := g.files[path]; !ok {
		return nil, nil
	}
	return []gitnotes.RevisionInfo{{Revision: g.revs[path], Message: "Edit " + path}}, nil
}

func (g *memGateway) BranchHead(_ context.Context) (string, error) {
	head := g.head
	if g.afterHead != nil {
		hook := g.afterHead
		g.afterHead = nil
		hook()
	}
	return head, nil
}

func (g *memGateway) CommitTree(_ context.Context, commitRevision string) (string, error) {
	return "tree-of-" + commitRevision, nil
}

func (g *memGateway) CreateBlobObject(_ context.Context, content gitnotes.FileContent) (string, error) {
	id := g.nextID("blob")
	g.blobs[id] = content
	return id, nil
}

func (g *memGateway) CreateTreeObject(_ context.Context, _ string, writes []gitnotes.TreeWrite) (string, error) {
	id := g.nextID("tree")
	g.trees[id] = writes
	return id, nil
}

func (g *memGateway) CreateCommitObject(_ context.Context, _, treeRevision, parentRevision string) (string, error) {
	id := g.nextID("commit")
	g.commits[id] = memCommit{parent: parentRevision, tree: treeRevision}
	return id, nil
}

func (g *memGateway) AdvanceBranch(_ context.Context, commitRevision string) error {
	commit, ok := g.commits[commitRevision]
	if !ok {
		return gitnotes.NewPathNotFoundError(commitRevision)
	}
	if commit.parent != g.head {
		// The branch moved since the commit's parent was resolved.
		return gitnotes.NewConflictError("refs/heads/main", commitRevision)
	}
	for _, w := range g.trees[commit.tree] {
		content := g.blobs[w.BlobRevision]
		g.files[w.Path] = content.Text
		g.revs[w.Path] = g.nextID("rev")
	}
	g.bumpHead()
	return nil
}

func (g *memGateway) CommitURL(revision string) string {
	return "https://git.example.test/notes/commit/" + revision
}
