package gitnotes

// Selection identifies the file currently open in the editor.
type Selection struct {
	// Path is the repository-relative path of the selected file.
	// Empty when nothing is selected.
	Path string
	// IsNew marks a file that has no remote blob yet; the editor starts
	// from empty content instead of issuing a remote read.
	IsNew bool
	// Revision is the last-known blob revision loaded into the editor,
	// used as the optimistic-concurrency precondition on save.
	Revision string
}

// selected reports whether path is the current selection.
func (s Selection) selected(path string) bool {
	return s.Path != "" && s.Path == path
}
