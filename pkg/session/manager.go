package session

import (
	"context"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	errs "github.com/matzehuels/infragraph/pkg/errors"
	"github.com/matzehuels/infragraph/pkg/importers"
)

// Manager tracks open sessions. New, opened and imported projects each get
// their own session, which becomes the active one.
type Manager struct {
	opts     Options
	sessions []*Session
	active   int
	recent   *RecentStore
}

// NewManager creates a manager with no open sessions.
func NewManager(opts Options) *Manager {
	return &Manager{opts: opts, active: -1}
}

// SetRecent attaches a store that records opened and saved files.
func (m *Manager) SetRecent(r *RecentStore) { m.recent = r }

// Recent returns the recently used project files.
func (m *Manager) Recent() []string {
	if m.recent == nil {
		return nil
	}
	return m.recent.List()
}

// Options returns the options applied to new sessions.
func (m *Manager) Options() Options { return m.opts }

// New opens an empty project.
func (m *Manager) New() (*Session, error) {
	s, err := New(m.opts, nil)
	if err != nil {
		return nil, err
	}
	m.add(s)
	return s, nil
}

// Open loads a project file into a new session. If the file is already
// open, that session is activated instead.
func (m *Manager) Open(ctx context.Context, path string) (*Session, error) {
	if abs, err := filepath.Abs(path); err == nil {
		for i, s := range m.sessions {
			if p, err := filepath.Abs(s.path); err == nil && s.path != "" && p == abs {
				m.active = i
				return s, nil
			}
		}
	}
	s, err := load(ctx, m.opts, path)
	if err != nil {
		return nil, err
	}
	if err := m.attach(ctx, s); err != nil {
		return nil, err
	}
	m.remember(path)
	return s, nil
}

// Import runs imp against path and opens the result in a new, unsaved
// session. An import that yields no objects fails with PARSE_ERROR.
func (m *Manager) Import(ctx context.Context, path string, imp importers.Importer) (*Session, *importers.Result, error) {
	res, err := importers.ParsePath(ctx, path, imp)
	if err != nil {
		return nil, nil, err
	}
	if res.Graph.NodeCount() == 0 {
		return nil, res, errs.New(errs.ErrCodeParse, "%s contains no importable objects", filepath.Base(path))
	}
	s, err := New(m.opts, res.Graph)
	if err != nil {
		return nil, nil, err
	}
	name := res.Name
	if name == "" {
		name = filepath.Base(path)
	}
	s.title = "Import: " + name
	s.dirty = true
	if err := m.attach(ctx, s); err != nil {
		return nil, nil, err
	}
	return s, res, nil
}

// Save saves the active session and records its file.
func (m *Manager) Save(ctx context.Context) error {
	s, err := m.Active()
	if err != nil {
		return err
	}
	if err := s.Save(ctx); err != nil {
		return err
	}
	m.remember(s.path)
	return nil
}

// SaveAs saves the active session to path and records the file.
func (m *Manager) SaveAs(ctx context.Context, path string) error {
	s, err := m.Active()
	if err != nil {
		return err
	}
	if err := s.SaveAs(ctx, path); err != nil {
		return err
	}
	m.remember(path)
	return nil
}

// Active returns the active session.
func (m *Manager) Active() (*Session, error) {
	if m.active < 0 || m.active >= len(m.sessions) {
		return nil, errs.New(errs.ErrCodeSessionNotFound, "no open project")
	}
	return m.sessions[m.active], nil
}

// Sessions returns the open sessions in the order they were opened.
func (m *Manager) Sessions() []*Session {
	return slices.Clone(m.sessions)
}

// Len returns the number of open sessions.
func (m *Manager) Len() int { return len(m.sessions) }

// Lookup finds a session by 1-based position or by a prefix of its ID.
func (m *Manager) Lookup(ref string) (*Session, error) {
	i, err := m.index(ref)
	if err != nil {
		return nil, err
	}
	return m.sessions[i], nil
}

// Switch activates the session named by ref (see Lookup).
func (m *Manager) Switch(ref string) (*Session, error) {
	i, err := m.index(ref)
	if err != nil {
		return nil, err
	}
	m.active = i
	return m.sessions[i], nil
}

// Close closes the session named by ref, or the active session when ref is
// empty. A dirty session is only closed when force is set; otherwise the
// error code is UNSAVED_CHANGES.
func (m *Manager) Close(ref string, force bool) error {
	i := m.active
	if ref != "" {
		var err error
		if i, err = m.index(ref); err != nil {
			return err
		}
	}
	if i < 0 || i >= len(m.sessions) {
		return errs.New(errs.ErrCodeSessionNotFound, "no open project")
	}
	s := m.sessions[i]
	if s.dirty && !force {
		return errs.New(errs.ErrCodeUnsavedChanges, "%s has been modified", s.Title())
	}
	s.Close()
	m.sessions = slices.Delete(m.sessions, i, i+1)
	switch {
	case len(m.sessions) == 0:
		m.active = -1
	case m.active > i:
		m.active--
	case m.active >= len(m.sessions):
		m.active = len(m.sessions) - 1
	}
	return nil
}

// Unsaved returns the sessions with unsaved changes.
func (m *Manager) Unsaved() []*Session {
	var out []*Session
	for _, s := range m.sessions {
		if s.dirty {
			out = append(out, s)
		}
	}
	return out
}

// attach lays out s, fits the view and makes it the active session. A
// session that cannot be laid out is closed and not added.
func (m *Manager) attach(ctx context.Context, s *Session) error {
	if err := s.ResetView(ctx); err != nil {
		s.Close()
		return err
	}
	m.add(s)
	return nil
}

func (m *Manager) add(s *Session) {
	m.sessions = append(m.sessions, s)
	m.active = len(m.sessions) - 1
}

func (m *Manager) remember(path string) {
	if m.recent != nil {
		_ = m.recent.Add(path)
	}
}

func (m *Manager) index(ref string) (int, error) {
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(m.sessions) {
			return -1, errs.New(errs.ErrCodeSessionNotFound, "no project #%d (%d open)", n, len(m.sessions))
		}
		return n - 1, nil
	}
	found := -1
	for i, s := range m.sessions {
		if ref != "" && strings.HasPrefix(s.ID, ref) {
			if found >= 0 {
				return -1, errs.New(errs.ErrCodeInvalidInput, "project id %q is ambiguous", ref)
			}
			found = i
		}
	}
	if found < 0 {
		return -1, errs.New(errs.ErrCodeSessionNotFound, "no project %q", ref)
	}
	return found, nil
}
