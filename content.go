package gitnotes

import "unicode/utf8"

// ContentKind discriminates how staged file content is carried and how it is
// encoded at the gateway boundary.
type ContentKind int

const (
	// ContentText is UTF-8 text, written to the remote as-is.
	ContentText ContentKind = iota
	// ContentBinary is raw bytes, base64-encoded at the gateway boundary.
	ContentBinary
)

func (k ContentKind) String() string {
	switch k {
	case ContentText:
		return "text"
	case ContentBinary:
		return "binary"
	default:
		return "unknown"
	}
}

// FileContent is the tagged union carried by staged files and editor saves.
// Exactly one of Text or Bytes is meaningful, selected by Kind. The encoding
// choice (utf-8 vs base64) is resolved only by the Gateway implementation.
type FileContent struct {
	Kind  ContentKind
	Text  string
	Bytes []byte
}

// TextContent wraps UTF-8 text as file content.
func TextContent(text string) FileContent {
	return FileContent{Kind: ContentText, Text: text}
}

// BinaryContent wraps raw bytes as file content.
func BinaryContent(data []byte) FileContent {
	return FileContent{Kind: ContentBinary, Bytes: data}
}

// DetectContent classifies raw bytes read from a dropped file: valid UTF-8
// without NUL bytes is treated as text, anything else as binary.
func DetectContent(data []byte) FileContent {
	if utf8.Valid(data) && !containsNUL(data) {
		return TextContent(string(data))
	}
	return BinaryContent(data)
}

func containsNUL(data []byte) bool {
	for _, b := range data {
		if b == 0 {
			return true
		}
	}
	return false
}

// Size returns the content length in bytes.
func (fc FileContent) Size() int {
	if fc.Kind == ContentBinary {
		return len(fc.Bytes)
	}
	return len(fc.Text)
}
