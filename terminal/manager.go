package terminal

import (
	"os"
	"os/exec"
	"sync"

	"github.com/rs/zerolog"
)

// Manager owns the embedded terminal sessions. It is the surface the
// executor feeds commands into.
type Manager struct {
	mu       sync.Mutex
	sessions []*Session
	current  *Session
	focus    bool

	start func() (*Session, error)
	log   zerolog.Logger
}

func NewManager(scrollback int, log zerolog.Logger) *Manager {
	log = log.With().Str("component", "terminal").Logger()
	m := &Manager{log: log}
	m.start = func() (*Session, error) {
		shell, args := ResolveShell(os.Getenv, exec.LookPath)
		return Start(shell, args, scrollback, log)
	}
	return m
}

// ExecuteCommand feeds text to a fresh session when newTab is set or no
// live session exists, otherwise to the current one.
func (m *Manager) ExecuteCommand(text string, newTab bool) error {
	m.mu.Lock()
	m.pruneLocked()
	s := m.current
	if newTab || s == nil {
		var err error
		if s, err = m.start(); err != nil {
			m.mu.Unlock()
			m.log.Error().Err(err).Msg("failed to start terminal session")
			return err
		}
		m.sessions = append(m.sessions, s)
		m.current = s
	}
	m.mu.Unlock()

	return s.Feed(text)
}

// FocusCurrentTerminal asks the UI to attach the current session.
func (m *Manager) FocusCurrentTerminal() {
	m.mu.Lock()
	m.focus = true
	m.mu.Unlock()
}

// TakeFocusRequest reports and clears a pending focus request.
func (m *Manager) TakeFocusRequest() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	f := m.focus
	m.focus = false
	return f
}

// Current returns the live session the next command would reuse, or nil.
func (m *Manager) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pruneLocked()
	return m.current
}

func (m *Manager) Sessions() []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pruneLocked()
	out := make([]*Session, len(m.sessions))
	copy(out, m.sessions)
	return out
}

// CloseCurrent terminates the current session; the most recent remaining
// one becomes current.
func (m *Manager) CloseCurrent() error {
	m.mu.Lock()
	s := m.current
	if s == nil {
		m.mu.Unlock()
		return nil
	}
	m.remove(s)
	m.mu.Unlock()
	return s.Close()
}

// CloseAll terminates every session.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = nil
	m.current = nil
	m.mu.Unlock()

	var wg sync.WaitGroup
	for _, s := range sessions {
		wg.Add(1)
		go func(s *Session) {
			defer wg.Done()
			s.Close()
		}(s)
	}
	wg.Wait()
}

// pruneLocked forgets sessions whose shell has exited.
func (m *Manager) pruneLocked() {
	live := m.sessions[:0]
	for _, s := range m.sessions {
		if s.Exited() {
			s.Close()
			continue
		}
		live = append(live, s)
	}
	m.sessions = live
	if m.current != nil && m.current.Exited() {
		m.current = nil
	}
	if m.current == nil && len(m.sessions) > 0 {
		m.current = m.sessions[len(m.sessions)-1]
	}
}

func (m *Manager) remove(s *Session) {
	for i, x := range m.sessions {
		if x == s {
			m.sessions = append(m.sessions[:i], m.sessions[i+1:]...)
			break
		}
	}
	if m.current == s {
		m.current = nil
	}
	m.pruneLocked()
}
