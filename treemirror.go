package gitnotes

import (
	"context"
	"sort"

	"github.com/notehub/gitnotes/log"
)

// TreeMirror is a lazily-populated, in-memory view of the remote directory
// tree: a per-directory cache of children, the set of expanded directories,
// and the set of directories with a listing fetch in flight.
//
// The mirror is owned by a single Session and is not safe for concurrent
// use; all gateway calls are suspension points and results are guarded
// against state that changed while the call was outstanding.
type TreeMirror struct {
	gw     Gateway
	logger log.Logger

	children map[string][]TreeEntry
	expanded map[string]bool
	loading  map[string]bool
}

// NewTreeMirror creates an empty mirror over the given gateway.
// Nothing is fetched until a directory is expanded or refreshed.
func NewTreeMirror(gw Gateway, logger log.Logger) *TreeMirror {
	if logger == nil {
		logger = log.Noop{}
	}
	return &TreeMirror{
		gw:       gw,
		logger:   logger,
		children: make(map[string][]TreeEntry),
		expanded: make(map[string]bool),
		loading:  make(map[string]bool),
	}
}

// Expand toggles a directory's expansion state. The first expansion of an
// uncached directory fetches its listing; a second call while that fetch is
// outstanding is a no-op rather than a duplicate fetch. A fetch failure
// collapses the directory again and is returned to the caller without
// touching sibling state.
func (m *TreeMirror) Expand(ctx context.Context, dir string) error {
	dir, err := validateDirPath(dir)
	if err != nil {
		return err
	}

	if m.loading[dir] {
		m.logger.Debug("expand ignored, listing in flight", "path", dir)
		return nil
	}

	if m.expanded[dir] {
		delete(m.expanded, dir)
		return nil
	}
	m.expanded[dir] = true

	if _, cached := m.children[dir]; cached {
		return nil
	}

	return m.fetch(ctx, dir, true)
}

// Refresh re-fetches a single directory and replaces its cache entry.
// Refreshing the root (empty path) drops the entire cache and collapses
// every subdirectory; the mirror does not attempt incremental root diffing.
func (m *TreeMirror) Refresh(ctx context.Context, dir string) error {
	dir, err := validateDirPath(dir)
	if err != nil {
		return err
	}

	if dir == "" {
		m.children = make(map[string][]TreeEntry)
		m.expanded = make(map[string]bool)
		m.loading = make(map[string]bool)
	}

	return m.fetch(ctx, dir, false)
}

// fetch lists a directory and installs the result, discarding it if the
// mirror was reset or the directory collapsed while the call was outstanding.
func (m *TreeMirror) fetch(ctx context.Context, dir string, collapseOnError bool) error {
	m.loading[dir] = true

	entries, err := m.gw.ListDirectory(ctx, dir)
	if !m.loading[dir] {
		// State moved on while the listing was in flight; the result is
		// stale and must not be applied.
		m.logger.Debug("discarding stale directory listing", "path", dir)
		return nil
	}
	delete(m.loading, dir)

	if err != nil {
		if collapseOnError {
			delete(m.expanded, dir)
		}
		m.logger.Warn("directory listing failed", "path", dir, "error", err)
		return err
	}

	m.setBucket(dir, entries)
	return nil
}

// Children returns a copy of the cached listing for a directory and whether
// the directory has been fetched at all. Missing and empty directories are
// indistinguishable once cached: both report an empty slice.
func (m *TreeMirror) Children(dir string) ([]TreeEntry, bool) {
	entries, ok := m.children[dir]
	if !ok {
		return nil, false
	}
	out := make([]TreeEntry, len(entries))
	copy(out, entries)
	return out, true
}

// IsExpanded reports whether the directory is currently expanded.
func (m *TreeMirror) IsExpanded(dir string) bool {
	return m.expanded[dir]
}

// IsLoading reports whether a listing fetch for the directory is in flight.
func (m *TreeMirror) IsLoading(dir string) bool {
	return m.loading[dir]
}

// setBucket installs a directory's children in canonical order.
func (m *TreeMirror) setBucket(dir string, entries []TreeEntry) {
	bucket := make([]TreeEntry, len(entries))
	copy(bucket, entries)
	sortEntries(bucket)
	m.children[dir] = bucket
}

// insertEntry speculatively adds an entry to a directory's cached listing,
// keeping canonical order. Used by the optimistic mutation layer ahead of
// remote confirmation. Inserting into an uncached bucket creates it.
func (m *TreeMirror) insertEntry(dir string, e TreeEntry) {
	bucket := append(m.children[dir], e)
	sortEntries(bucket)
	m.children[dir] = bucket
}

// removeEntry removes the named entry from a directory's cached listing.
func (m *TreeMirror) removeEntry(dir, name string) {
	bucket := m.children[dir]
	for i, e := range bucket {
		if e.Name == name {
			m.children[dir] = append(bucket[:i:i], bucket[i+1:]...)
			return
		}
	}
}

// updateEntryRevision records a new blob revision for a cached file entry.
func (m *TreeMirror) updateEntryRevision(dir, name, revision string) {
	bucket := m.children[dir]
	for i := range bucket {
		if bucket[i].Name == name {
			bucket[i].Revision = revision
			return
		}
	}
}

// snapshotBucket captures a directory's cached listing for transactional
// rollback. The bool reports whether the bucket existed at all.
func (m *TreeMirror) snapshotBucket(dir string) ([]TreeEntry, bool) {
	bucket, ok := m.children[dir]
	if !ok {
		return nil, false
	}
	out := make([]TreeEntry, len(bucket))
	copy(out, bucket)
	return out, true
}

// restoreBucket reinstates a snapshot taken with snapshotBucket, restoring
// the full prior state rather than patching incrementally.
func (m *TreeMirror) restoreBucket(dir string, snapshot []TreeEntry, existed bool) {
	if !existed {
		delete(m.children, dir)
		return
	}
	m.children[dir] = snapshot
}

// purgeSubtree drops every cached bucket and expansion flag at or under the
// given directory. Used after a directory is deleted or renamed away.
func (m *TreeMirror) purgeSubtree(dir string) {
	for cached := range m.children {
		if cached == dir || pathWithin(cached, dir) {
			delete(m.children, cached)
		}
	}
	for exp := range m.expanded {
		if exp == dir || pathWithin(exp, dir) {
			delete(m.expanded, exp)
		}
	}
	for load := range m.loading {
		if load == dir || pathWithin(load, dir) {
			delete(m.loading, load)
		}
	}
}

// sortEntries orders a listing directories-first, then lexicographically
// by name. Every cached bucket holds this order after any mutation settles.
func sortEntries(entries []TreeEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Type != entries[j].Type {
			return entries[i].Type == EntryDir
		}
		return entries[i].Name < entries[j].Name
	})
}
