// Package diff computes line-level unified diffs between remote and staged
// file content, and assembles the per-file sections into one text blob for
// commit-message suggestion.
package diff

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// FileDiff describes one staged path to diff: the remote content (Old), the
// staged content (New), and whether the file is newly created or binary.
type FileDiff struct {
	Path    string
	Old     string
	New     string
	Created bool
	Binary  bool
}

// Unified renders a single file's unified diff with git-style a/ b/ labels.
func Unified(fd FileDiff) (string, error) {
	fromFile := "a/" + fd.Path
	if fd.Created {
		fromFile = "/dev/null"
	}

	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(fd.Old),
		B:        difflib.SplitLines(fd.New),
		FromFile: fromFile,
		ToFile:   "b/" + fd.Path,
		Context:  3,
	})
	if err != nil {
		return "", fmt.Errorf("diff %s: %w", fd.Path, err)
	}
	return text, nil
}

// Assemble concatenates per-file diff sections into one blob, each preceded
// by a git-style header. Binary files contribute a marker stanza instead of
// a text diff.
func Assemble(files []FileDiff) (string, error) {
	var out strings.Builder
	for _, fd := range files {
		fmt.Fprintf(&out, "diff --git a/%s b/%s\n", fd.Path, fd.Path)

		if fd.Binary {
			fmt.Fprintf(&out, "Binary files a/%s and b/%s differ\n", fd.Path, fd.Path)
			continue
		}

		section, err := Unified(fd)
		if err != nil {
			return "", err
		}
		if section == "" {
			// Identical content still lists the file so the suggester
			// sees which paths are part of the commit.
			continue
		}
		out.WriteString(section)
	}
	return out.String(), nil
}

// Stats counts added and removed lines across a unified diff blob.
func Stats(diffText string) (added, removed int) {
	for _, line := range strings.Split(diffText, "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		case strings.HasPrefix(line, "+"):
			added++
		case strings.HasPrefix(line, "-"):
			removed++
		}
	}
	return added, removed
}
