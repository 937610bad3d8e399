package access

import "sync"

// Session is the process-wide record of what the user has opened: the
// current workspace directory and every file handed over by the OS.
//
// Only Authority mutates a Session. External entries accumulate for the
// lifetime of the session and are never removed.
type Session struct {
	mu           sync.RWMutex
	workspaceDir string
	external     map[string]struct{}
}

// NewSession returns an empty session with no workspace.
func NewSession() *Session {
	return &Session{
		external: make(map[string]struct{}),
	}
}

func (s *Session) workspace() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.workspaceDir, s.workspaceDir != ""
}

func (s *Session) setWorkspace(dir string) {
	s.mu.Lock()
	s.workspaceDir = dir
	s.mu.Unlock()
}

func (s *Session) hasExternal(key string) bool {
	s.mu.RLock()
	_, ok := s.external[key]
	s.mu.RUnlock()
	return ok
}

func (s *Session) addExternal(key string) {
	s.mu.Lock()
	s.external[key] = struct{}{}
	s.mu.Unlock()
}

func (s *Session) externalCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.external)
}
