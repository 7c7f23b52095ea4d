// Package suggest produces commit message suggestions from staged diffs.
// Suggestion is strictly best-effort: any provider failure falls back to a
// static message so the commit flow never blocks on the suggester.
package suggest

import (
	"context"
	"strings"

	"github.com/notehub/gitnotes/log"
)

// Fallback is the commit message used whenever no suggestion is available.
const Fallback = "Update files"

// maxSubjectLen caps the suggested subject line, matching conventional
// commit subject length limits.
const maxSubjectLen = 72

// Suggester generates a one-line commit message for a unified diff.
//
//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -o ../internal/fakes/suggester.go . Suggester
type Suggester interface {
	Suggest(ctx context.Context, diffText string) (string, error)
}

// Message returns a commit message for diffText using s, falling back to
// Fallback when s is nil, the diff is empty, or the provider fails. It
// never returns an error and never returns an empty string.
func Message(ctx context.Context, s Suggester, diffText string, logger log.Logger) string {
	if logger == nil {
		logger = log.Noop{}
	}
	if s == nil || strings.TrimSpace(diffText) == "" {
		return Fallback
	}

	msg, err := s.Suggest(ctx, diffText)
	if err != nil {
		logger.Warn("commit message suggestion failed, using fallback", "error", err)
		return Fallback
	}

	msg = sanitize(msg)
	if msg == "" {
		logger.Warn("commit message suggestion empty, using fallback")
		return Fallback
	}
	return msg
}

// sanitize collapses the suggestion to a single trimmed subject line.
func sanitize(msg string) string {
	msg = strings.TrimSpace(msg)
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = strings.TrimSpace(msg[:i])
	}
	msg = strings.Trim(msg, "\"'`")
	if len(msg) > maxSubjectLen {
		msg = strings.TrimSpace(msg[:maxSubjectLen])
	}
	return msg
}
