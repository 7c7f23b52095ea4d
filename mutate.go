package gitnotes

import (
	"context"
	"fmt"
)

// PlaceholderName is the marker file written to represent an otherwise
// unrepresentable empty directory in the remote object model.
const PlaceholderName = ".gitkeep"

// bucketTxn is the snapshot/rollback helper shared by create, delete and
// rename: snapshot the affected directory bucket, apply the speculative
// mutation, then either keep it or restore the full prior snapshot. Reverts
// never patch incrementally.
type bucketTxn struct {
	mirror    *TreeMirror
	dir       string
	snapshot  []TreeEntry
	existed   bool
	selection Selection
}

func (s *Session) beginBucketTxn(dir string) *bucketTxn {
	snapshot, existed := s.mirror.snapshotBucket(dir)
	return &bucketTxn{
		mirror:    s.mirror,
		dir:       dir,
		snapshot:  snapshot,
		existed:   existed,
		selection: s.selection,
	}
}

func (t *bucketTxn) rollback(s *Session) {
	t.mirror.restoreBucket(t.dir, t.snapshot, t.existed)
	s.selection = t.selection
}

// CreateFile creates an empty file under targetDir and selects it as a new
// file, so the editor starts from empty content without a remote read. The
// entry appears in the mirror immediately and is removed again if the
// remote write fails.
func (s *Session) CreateFile(ctx context.Context, targetDir, name string) (string, error) {
	if err := s.requireUser(ctx); err != nil {
		return "", err
	}

	targetDir, err := validateDirPath(targetDir)
	if err != nil {
		return "", err
	}
	name, err = validateEntryName(name)
	if err != nil {
		return "", err
	}

	path := joinPath(targetDir, name)
	if s.bucketContains(targetDir, name) {
		return "", NewValidationError(fmt.Sprintf("%s already exists", path))
	}

	txn := s.beginBucketTxn(targetDir)
	s.mirror.insertEntry(targetDir, TreeEntry{Type: EntryFile, Name: name, Path: path})

	revision, err := s.gw.WriteBlob(ctx, path, TextContent(""), "Create "+path, "")
	if err != nil {
		txn.rollback(s)
		return "", fmt.Errorf("create %s: %w", path, err)
	}

	s.mirror.updateEntryRevision(targetDir, name, revision)
	s.selection = Selection{Path: path, IsNew: true, Revision: revision}
	return path, nil
}

// CreateFolder creates a directory under targetDir by writing the
// placeholder marker file, since the remote object model has no
// empty-directory representation. A conflict creating the placeholder means
// the folder already exists and is reported as soft success: the returned
// bool is true when the folder existed beforehand.
func (s *Session) CreateFolder(ctx context.Context, targetDir, name string) (bool, error) {
	if err := s.requireUser(ctx); err != nil {
		return false, err
	}

	targetDir, err := validateDirPath(targetDir)
	if err != nil {
		return false, err
	}
	name, err = validateEntryName(name)
	if err != nil {
		return false, err
	}

	folderPath := joinPath(targetDir, name)
	if s.bucketContains(targetDir, name) {
		return false, NewValidationError(fmt.Sprintf("%s already exists", folderPath))
	}

	txn := s.beginBucketTxn(targetDir)
	s.mirror.insertEntry(targetDir, TreeEntry{Type: EntryDir, Name: name, Path: folderPath})

	placeholder := joinPath(folderPath, PlaceholderName)
	if _, err := s.gw.WriteBlob(ctx, placeholder, TextContent(""), "Create folder "+folderPath, ""); err != nil {
		if isConflict(err) {
			s.logger.Warn("folder already exists on remote", "path", folderPath)
			return true, nil
		}
		txn.rollback(s)
		return false, fmt.Errorf("create folder %s: %w", folderPath, err)
	}

	return false, nil
}

// DeleteEntry removes a file, or an empty directory, from the remote and
// the mirror. A directory is empty when it has zero children or exactly one
// child that is the placeholder marker; anything else is rejected with a
// validation error before the mirror is touched. On remote failure the
// affected bucket is restored verbatim.
func (s *Session) DeleteEntry(ctx context.Context, entry TreeEntry) error {
	if err := s.requireUser(ctx); err != nil {
		return err
	}

	path, err := validateFilePath(entry.Path)
	if err != nil {
		return err
	}
	parent, name := splitPath(path)

	var placeholder *TreeEntry
	if entry.Type == EntryDir {
		placeholder, err = s.resolveEmptyDir(ctx, path)
		if err != nil {
			return err
		}
	}

	txn := s.beginBucketTxn(parent)
	s.mirror.removeEntry(parent, name)

	switch {
	case entry.Type == EntryFile:
		if entry.Revision == "" {
			txn.rollback(s)
			return NewValidationError(fmt.Sprintf("no revision known for %s", path))
		}
		if err := s.gw.DeleteBlob(ctx, path, entry.Revision, "Delete "+path); err != nil {
			txn.rollback(s)
			return fmt.Errorf("delete %s: %w", path, err)
		}
	case placeholder != nil:
		if err := s.gw.DeleteBlob(ctx, placeholder.Path, placeholder.Revision, "Delete folder "+path); err != nil {
			txn.rollback(s)
			return fmt.Errorf("delete folder %s: %w", path, err)
		}
	default:
		// Zero children: nothing exists remotely, only the mirror entry.
	}

	if entry.Type == EntryDir {
		s.mirror.purgeSubtree(path)
	}
	if s.selection.selected(path) || pathWithin(s.selection.Path, path) {
		s.selection = Selection{}
	}
	return nil
}

// resolveEmptyDir verifies the directory qualifies for deletion and returns
// its placeholder child, if any. Uses the cached listing when present and
// fetches one otherwise.
func (s *Session) resolveEmptyDir(ctx context.Context, dir string) (*TreeEntry, error) {
	children, cached := s.mirror.Children(dir)
	if !cached {
		var err error
		children, err = s.gw.ListDirectory(ctx, dir)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", dir, err)
		}
	}

	switch {
	case len(children) == 0:
		return nil, nil
	case len(children) == 1 && children[0].Type == EntryFile && children[0].Name == PlaceholderName:
		child := children[0]
		return &child, nil
	default:
		return nil, NewValidationError(fmt.Sprintf("directory %s is not empty", dir))
	}
}

// RenameFile renames a file within its directory. Renaming to the current
// name is a no-op. The mirror and selection update immediately; the remote
// operation is read-old, delete-old, create-new and is not atomic — a
// failure after the delete leaves the remote with neither path reliably
// populated. The mirror is still reverted for display consistency and the
// error surfaced verbatim.
func (s *Session) RenameFile(ctx context.Context, entry TreeEntry, newName string) (string, error) {
	if err := s.requireUser(ctx); err != nil {
		return "", err
	}

	if entry.Type != EntryFile {
		return "", NewValidationError("only files can be renamed")
	}

	oldPath, err := validateFilePath(entry.Path)
	if err != nil {
		return "", err
	}
	newName, err = validateEntryName(newName)
	if err != nil {
		return "", err
	}

	parent, oldName := splitPath(oldPath)
	if newName == oldName {
		return oldPath, nil
	}

	newPath := joinPath(parent, newName)
	if s.bucketContains(parent, newName) {
		return "", NewValidationError(fmt.Sprintf("%s already exists", newPath))
	}

	txn := s.beginBucketTxn(parent)
	s.mirror.removeEntry(parent, oldName)
	s.mirror.insertEntry(parent, TreeEntry{Type: EntryFile, Name: newName, Path: newPath, Revision: entry.Revision})
	if s.selection.selected(oldPath) {
		s.selection.Path = newPath
	}

	message := fmt.Sprintf("Rename %s to %s", oldPath, newPath)

	blob, err := s.gw.ReadBlob(ctx, oldPath, "")
	if err != nil {
		txn.rollback(s)
		return "", fmt.Errorf("read %s: %w", oldPath, err)
	}
	if blob == nil {
		txn.rollback(s)
		return "", NewPathNotFoundError(oldPath)
	}

	if err := s.gw.DeleteBlob(ctx, oldPath, blob.Revision, message); err != nil {
		txn.rollback(s)
		return "", fmt.Errorf("delete %s: %w", oldPath, err)
	}

	revision, err := s.gw.WriteBlob(ctx, newPath, TextContent(blob.Content), message, "")
	if err != nil {
		// The old path is already deleted remotely; the remote now matches
		// neither the reverted nor the attempted state. Known limitation.
		txn.rollback(s)
		s.logger.Error("rename left remote inconsistent",
			"old_path", oldPath, "new_path", newPath, "error", err)
		return "", fmt.Errorf("recreate %s after deleting %s: %w", newPath, oldPath, err)
	}

	s.mirror.updateEntryRevision(parent, newName, revision)
	if s.selection.selected(newPath) {
		s.selection.Revision = revision
	}
	return newPath, nil
}

// bucketContains reports whether the cached listing for dir already has an
// entry with the given name. An uncached bucket reports false.
func (s *Session) bucketContains(dir, name string) bool {
	children, ok := s.mirror.Children(dir)
	if !ok {
		return false
	}
	for _, e := range children {
		if e.Name == name {
			return true
		}
	}
	return false
}
