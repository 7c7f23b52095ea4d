package gitnotes

import (
	"path"
	"strings"
)

// normalizePath normalizes a repository-relative path: trims whitespace,
// strips leading/trailing slashes, and collapses duplicate slashes.
// The empty string denotes the repository root and is valid.
// Parent directory references are rejected.
func normalizePath(p string) (string, error) {
	p = strings.TrimSpace(p)
	p = strings.Trim(p, "/")
	if p == "" {
		return "", nil
	}

	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}

	for _, part := range strings.Split(p, "/") {
		if part == ".." {
			return "", NewInvalidPathError(p, "path contains parent directory references (..)")
		}
	}

	cleaned := path.Clean(p)
	if cleaned == "." {
		return "", nil
	}

	return cleaned, nil
}

// validateFilePath validates and normalizes a path that must address a file.
// File paths cannot be empty (that is the root directory) and cannot end
// with a trailing slash.
func validateFilePath(p string) (string, error) {
	trimmed := strings.TrimSpace(p)
	if trimmed != "" && strings.HasSuffix(trimmed, "/") {
		return "", NewInvalidPathError(p, "file path cannot end with trailing slash")
	}

	normalized, err := normalizePath(p)
	if err != nil {
		return "", err
	}

	if normalized == "" {
		return "", NewInvalidPathError(p, "file path cannot be empty")
	}

	return normalized, nil
}

// validateDirPath validates and normalizes a path that addresses a directory.
// The empty string is valid and denotes the repository root.
func validateDirPath(p string) (string, error) {
	return normalizePath(p)
}

// validateEntryName validates a single path component, as entered in a
// create or rename dialog. It must be non-empty and contain no separators.
func validateEntryName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", NewInvalidPathError(name, "name cannot be empty")
	}
	if strings.Contains(name, "/") {
		return "", NewInvalidPathError(name, "name cannot contain path separators")
	}
	if name == "." || name == ".." {
		return "", NewInvalidPathError(name, "name cannot be a directory reference")
	}
	return name, nil
}

// joinPath joins a directory path and a leaf name. The empty directory
// denotes the repository root.
func joinPath(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}

// splitPath splits a path into its parent directory and leaf name.
// Paths at the repository root return "" as the parent.
func splitPath(p string) (dir, name string) {
	i := strings.LastIndex(p, "/")
	if i < 0 {
		return "", p
	}
	return p[:i], p[i+1:]
}

// pathWithin reports whether child is strictly nested under parent at a
// path-separator boundary. A path is not within itself, and "doc" is not
// within "do".
func pathWithin(child, parent string) bool {
	if parent == "" {
		return child != ""
	}
	return strings.HasPrefix(child, parent+"/")
}
