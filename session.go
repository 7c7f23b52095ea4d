package gitnotes

import (
	"context"
	"errors"
	"fmt"

	"github.com/notehub/gitnotes/drafts"
	"github.com/notehub/gitnotes/log"
	"github.com/notehub/gitnotes/suggest"
)

// Identity is an opaque current-user identity supplied by the application's
// authentication layer. The engine only checks presence before mutating.
type Identity struct {
	Login string
}

// AuthProvider yields the current user identity, or nil when the session is
// unauthenticated.
type AuthProvider interface {
	CurrentUser(ctx context.Context) (*Identity, error)
}

// Session is an editing session against one repository branch. It owns the
// tree mirror, the staging buffer, and the editor selection, and funnels
// every mutation through the optimistic-mutation and reconciliation paths.
//
// A Session is event-driven and single-owner: it is not safe for concurrent
// use from multiple goroutines.
type Session struct {
	gw        Gateway
	logger    log.Logger
	mirror    *TreeMirror
	staging   *StagingBuffer
	drafts    drafts.Store
	suggester suggest.Suggester
	auth      AuthProvider

	selection Selection
}

// Option is a function that configures a Session during creation.
type Option func(*Session) error

// NewSession creates a session over the given gateway. Nothing is fetched
// until the tree is expanded or refreshed.
func NewSession(gw Gateway, options ...Option) (*Session, error) {
	if gw == nil {
		return nil, errors.New("gateway cannot be nil")
	}

	s := &Session{
		gw:     gw,
		logger: log.Noop{},
	}
	for _, option := range options {
		if option == nil { // allow for easy optional options
			continue
		}
		if err := option(s); err != nil {
			return nil, err
		}
	}

	s.mirror = NewTreeMirror(gw, s.logger)
	s.staging = NewStagingBuffer(s.logger)

	return s, nil
}

// WithLogger configures a custom logger for the session.
// If not provided, a no-op logger is used.
func WithLogger(logger log.Logger) Option {
	return func(s *Session) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		s.logger = logger
		return nil
	}
}

// WithDrafts attaches a local store for unsent editor content, keyed by
// file path. Drafts are independent of the staging buffer.
func WithDrafts(store drafts.Store) Option {
	return func(s *Session) error {
		if store == nil {
			return errors.New("draft store cannot be nil")
		}
		s.drafts = store
		return nil
	}
}

// WithSuggester attaches a commit-message suggester consulted by
// PrepareCommit. Without one, the fixed fallback message is used.
func WithSuggester(sg suggest.Suggester) Option {
	return func(s *Session) error {
		if sg == nil {
			return errors.New("suggester cannot be nil")
		}
		s.suggester = sg
		return nil
	}
}

// WithAuth attaches an authentication collaborator. When present, every
// mutating operation checks for a current user before calling the gateway.
func WithAuth(auth AuthProvider) Option {
	return func(s *Session) error {
		if auth == nil {
			return errors.New("auth provider cannot be nil")
		}
		s.auth = auth
		return nil
	}
}

// Tree exposes the session's tree mirror.
func (s *Session) Tree() *TreeMirror {
	return s.mirror
}

// Staging exposes the session's staging buffer.
func (s *Session) Staging() *StagingBuffer {
	return s.staging
}

// Selection returns the current editor selection.
func (s *Session) Selection() Selection {
	return s.selection
}

// ClearSelection deselects the current file.
func (s *Session) ClearSelection() {
	s.selection = Selection{}
}

// Open selects a file and reads its current remote content, recording the
// blob revision as the precondition for a later save. Files created in this
// session with IsNew set skip the remote read and open empty.
func (s *Session) Open(ctx context.Context, path string) (string, error) {
	path, err := validateFilePath(path)
	if err != nil {
		return "", err
	}

	if s.selection.selected(path) && s.selection.IsNew {
		return "", nil
	}

	blob, err := s.gw.ReadBlob(ctx, path, "")
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	if blob == nil {
		return "", NewPathNotFoundError(path)
	}

	s.selection = Selection{Path: path, Revision: blob.Revision}
	return blob.Content, nil
}

// History returns the commit history touching a path, newest first.
// A path with no history yields an empty slice.
func (s *Session) History(ctx context.Context, path string) ([]RevisionInfo, error) {
	path, err := validateFilePath(path)
	if err != nil {
		return nil, err
	}
	return s.gw.ListRevisions(ctx, path)
}

// SaveDraft stores unsent editor content for a path in the local draft
// store. A session without a draft store silently drops drafts.
func (s *Session) SaveDraft(ctx context.Context, path, content string) error {
	if s.drafts == nil {
		return nil
	}
	return s.drafts.Put(ctx, path, []byte(content))
}

// LoadDraft retrieves unsent editor content for a path, reporting whether
// a draft exists.
func (s *Session) LoadDraft(ctx context.Context, path string) (string, bool, error) {
	if s.drafts == nil {
		return "", false, nil
	}
	data, ok, err := s.drafts.Get(ctx, path)
	if err != nil || !ok {
		return "", false, err
	}
	return string(data), true, nil
}

// requireUser rejects mutating operations when an auth collaborator is
// configured and reports no current user.
func (s *Session) requireUser(ctx context.Context) error {
	if s.auth == nil {
		return nil
	}
	id, err := s.auth.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("resolve current user: %w", err)
	}
	if id == nil {
		return ErrUnauthenticated
	}
	return nil
}
