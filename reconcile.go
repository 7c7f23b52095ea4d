package gitnotes

import (
	"context"
	"fmt"
	"strings"

	"github.com/notehub/gitnotes/diff"
	"github.com/notehub/gitnotes/suggest"
)

// Status classifies the outcome of a reconciliation attempt. The
// presentation layer distinguishes conflict (refresh and reapply) from
// failure (retry) from validation (fix input); the engine never collapses
// one into another.
type Status int

const (
	// StatusSuccess means the remote accepted the change.
	StatusSuccess Status = iota
	// StatusConflict means a revision precondition did not match the
	// remote's current state. Never auto-resolved.
	StatusConflict
	// StatusValidation means the operation was rejected before any remote
	// call was made.
	StatusValidation
	// StatusFailure means a transport or unexpected error; retrying is
	// reasonable.
	StatusFailure
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusConflict:
		return "conflict"
	case StatusValidation:
		return "validation"
	case StatusFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// classify maps a gateway error to a reconciliation status.
func classify(err error) Status {
	switch {
	case err == nil:
		return StatusSuccess
	case isConflict(err):
		return StatusConflict
	case isValidation(err):
		return StatusValidation
	default:
		return StatusFailure
	}
}

// SaveResult is the outcome of a single-file save.
type SaveResult struct {
	Status   Status
	Revision string
	Err      error
}

// CommitOutcome is the outcome of a multi-file atomic commit.
type CommitOutcome struct {
	Status   Status
	Revision string
	URL      string
	Err      error
}

// Save persists the editor's content for a path as one single-file commit.
// For the selected file the last-known blob revision is sent as the
// precondition, so a concurrent remote change resolves to a conflict rather
// than a silent overwrite. On conflict nothing local is mutated and no
// retry is attempted; on success the selection revision advances and any
// draft for the path is cleared.
func (s *Session) Save(ctx context.Context, path, content, message string) SaveResult {
	if err := s.requireUser(ctx); err != nil {
		return SaveResult{Status: StatusFailure, Err: err}
	}

	path, err := validateFilePath(path)
	if err != nil {
		return SaveResult{Status: StatusValidation, Err: err}
	}
	if strings.TrimSpace(message) == "" {
		return SaveResult{Status: StatusValidation, Err: NewValidationError("commit message cannot be empty")}
	}

	precondition := ""
	if s.selection.selected(path) {
		precondition = s.selection.Revision
	}

	revision, err := s.gw.WriteBlob(ctx, path, TextContent(content), message, precondition)
	if err != nil {
		status := classify(err)
		if status == StatusConflict {
			s.logger.Warn("save conflict, remote changed since load", "path", path)
		}
		return SaveResult{Status: status, Err: err}
	}

	if s.selection.selected(path) {
		s.selection.Revision = revision
		s.selection.IsNew = false
	}
	parent, name := splitPath(path)
	s.mirror.updateEntryRevision(parent, name, revision)

	if s.drafts != nil {
		if err := s.drafts.Delete(ctx, path); err != nil {
			s.logger.Warn("clearing draft failed", "path", path, "error", err)
		}
	}

	return SaveResult{Status: StatusSuccess, Revision: revision}
}

// CommitStaged turns every staged file into one atomic commit via the
// four-step sequence: resolve the branch head, resolve its tree, create
// blob and tree objects, then create the commit and advance the branch
// reference. The steps are strictly sequential; each consumes the previous
// result. A failure at any step leaves the branch reference unchanged and
// the staging buffer intact so the user can retry without re-staging. On
// success the buffer is cleared and the mirror root refreshed best-effort.
func (s *Session) CommitStaged(ctx context.Context, message string) CommitOutcome {
	if err := s.requireUser(ctx); err != nil {
		return CommitOutcome{Status: StatusFailure, Err: err}
	}

	if s.staging.Len() == 0 {
		return CommitOutcome{Status: StatusValidation, Err: NewValidationError("nothing staged")}
	}
	if strings.TrimSpace(message) == "" {
		return CommitOutcome{Status: StatusValidation, Err: NewValidationError("commit message cannot be empty")}
	}

	head, err := s.gw.BranchHead(ctx)
	if err != nil {
		return commitFailure("resolve branch head", err)
	}

	baseTree, err := s.gw.CommitTree(ctx, head)
	if err != nil {
		return commitFailure("resolve base tree", err)
	}

	staged := s.staging.Files()
	writes := make([]TreeWrite, 0, len(staged))
	for _, f := range staged {
		blobRev, err := s.gw.CreateBlobObject(ctx, f.Content)
		if err != nil {
			return commitFailure(fmt.Sprintf("create blob for %s", f.Path), err)
		}
		writes = append(writes, TreeWrite{Path: f.Path, BlobRevision: blobRev})
	}

	treeRev, err := s.gw.CreateTreeObject(ctx, baseTree, writes)
	if err != nil {
		return commitFailure("create tree", err)
	}

	commitRev, err := s.gw.CreateCommitObject(ctx, message, treeRev, head)
	if err != nil {
		return commitFailure("create commit", err)
	}

	if err := s.gw.AdvanceBranch(ctx, commitRev); err != nil {
		return commitFailure("advance branch", err)
	}

	s.staging.Clear()
	s.logger.Info("staged files committed", "files", len(staged), "revision", commitRev)

	if err := s.mirror.Refresh(ctx, ""); err != nil {
		s.logger.Warn("root refresh after commit failed", "error", err)
	}

	return CommitOutcome{
		Status:   StatusSuccess,
		Revision: commitRev,
		URL:      s.gw.CommitURL(commitRev),
	}
}

func commitFailure(step string, err error) CommitOutcome {
	return CommitOutcome{
		Status: classify(err),
		Err:    fmt.Errorf("%s: %w", step, err),
	}
}

// PrepareCommit assembles the pre-commit view for the staged set: a
// concatenated per-file diff of remote content against staged content, and
// a suggested commit message. Suggestion failures degrade to the fixed
// fallback and never block the commit flow.
func (s *Session) PrepareCommit(ctx context.Context) (string, string, error) {
	staged := s.staging.Files()
	if len(staged) == 0 {
		return "", "", NewValidationError("nothing staged")
	}

	sections := make([]diff.FileDiff, 0, len(staged))
	for _, f := range staged {
		fd := diff.FileDiff{Path: f.Path}

		if f.Content.Kind == ContentBinary {
			fd.Binary = true
		} else {
			fd.New = f.Content.Text
		}

		blob, err := s.gw.ReadBlob(ctx, f.Path, "")
		if err != nil {
			return "", "", fmt.Errorf("read %s: %w", f.Path, err)
		}
		if blob != nil {
			fd.Old = blob.Content
		} else {
			fd.Created = true
		}

		sections = append(sections, fd)
	}

	diffText, err := diff.Assemble(sections)
	if err != nil {
		return "", "", fmt.Errorf("assemble diff: %w", err)
	}

	message := suggest.Message(ctx, s.suggester, diffText, s.logger)
	return diffText, message, nil
}
