// Package terminal hosts interactive shell sessions on pseudo-terminals.
// A session runs in the background and can be attached to the real
// terminal while the TUI is suspended.
package terminal

import (
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/creack/pty"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	DefaultScrollback = 10000

	// readyTimeout bounds the wait for the shell's first output before
	// input is fed to it.
	readyTimeout = 1500 * time.Millisecond
	killGrace    = 250 * time.Millisecond
)

var ErrSessionClosed = errors.New("terminal session has exited")

// process is the child behind a session.
type process interface {
	Signal(sig syscall.Signal) error
	Wait() error
	Pid() int
}

type osProcess struct {
	cmd *exec.Cmd
}

// Signal targets the whole process group; pty.Start makes the shell a
// session leader.
func (p osProcess) Signal(sig syscall.Signal) error {
	return syscall.Kill(-p.cmd.Process.Pid, sig)
}

func (p osProcess) Wait() error { return p.cmd.Wait() }

func (p osProcess) Pid() int { return p.cmd.Process.Pid }

// Session is one shell running on a pty.
type Session struct {
	ID      string
	Shell   string
	Started time.Time

	pty  io.ReadWriteCloser
	proc process
	out  *transcript

	mu   sync.Mutex
	sink io.Writer

	ready     chan struct{}
	readyOnce sync.Once
	done      chan struct{}
	exitErr   error
	closeOnce sync.Once

	log zerolog.Logger
}

// Start launches shell with args on a new pty.
func Start(shell string, args []string, scrollback int, log zerolog.Logger) (*Session, error) {
	cmd := exec.Command(shell, args...)
	cmd.Env = append(os.Environ(), "TERM=xterm-256color")

	f, err := pty.Start(cmd)
	if err != nil {
		return nil, err
	}
	return newSession(shell, f, osProcess{cmd: cmd}, scrollback, log), nil
}

func newSession(shell string, rw io.ReadWriteCloser, proc process, scrollback int, log zerolog.Logger) *Session {
	s := &Session{
		ID:      uuid.NewString(),
		Shell:   shell,
		Started: time.Now(),
		pty:     rw,
		proc:    proc,
		out:     newTranscript(scrollback),
		ready:   make(chan struct{}),
		done:    make(chan struct{}),
	}
	s.log = log.With().Str("session", s.ID).Logger()
	s.log.Info().Str("shell", shell).Int("pid", proc.Pid()).Msg("terminal session started")

	go s.readLoop()
	go func() {
		s.exitErr = proc.Wait()
		s.log.Info().AnErr("exit", s.exitErr).Msg("terminal session exited")
		close(s.done)
	}()
	return s
}

func (s *Session) readLoop() {
	buf := make([]byte, 4096)
	for {
		n, err := s.pty.Read(buf)
		if n > 0 {
			s.readyOnce.Do(func() { close(s.ready) })
			s.out.Write(buf[:n])
			s.mu.Lock()
			if s.sink != nil {
				s.sink.Write(buf[:n])
			}
			s.mu.Unlock()
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, os.ErrClosed) {
				s.log.Debug().Err(err).Msg("pty read ended")
			}
			return
		}
	}
}

func (s *Session) setSink(w io.Writer) {
	s.mu.Lock()
	s.sink = w
	s.mu.Unlock()
}

// Title is a short label for lists.
func (s *Session) Title() string {
	return filepath.Base(s.Shell) + " " + s.ID[:8]
}

func (s *Session) Exited() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Done is closed when the shell exits.
func (s *Session) Done() <-chan struct{} { return s.done }

// Transcript returns the retained output.
func (s *Session) Transcript() []byte { return s.out.Bytes() }

// Feed writes text to the shell as if typed. The first feed waits for the
// shell to print its prompt.
func (s *Session) Feed(text string) error {
	if s.Exited() {
		return ErrSessionClosed
	}
	select {
	case <-s.ready:
	case <-s.done:
		return ErrSessionClosed
	case <-time.After(readyTimeout):
		s.log.Debug().Msg("shell not ready, feeding anyway")
	}
	_, err := io.WriteString(s.pty, text)
	return err
}

// Close terminates the shell the way a closing terminal window does:
// SIGHUP and SIGTERM to its process group, then SIGKILL if it is still
// running after a short grace period. Interactive shells ignore SIGTERM
// but exit on SIGHUP.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		if !s.Exited() {
			for _, sig := range []syscall.Signal{syscall.SIGHUP, syscall.SIGTERM} {
				if err := s.proc.Signal(sig); err != nil {
					s.log.Debug().Err(err).Stringer("signal", sig).Msg("signal failed")
				}
			}
			select {
			case <-s.done:
			case <-time.After(killGrace):
				s.log.Warn().Msg("shell still running after hangup, killing")
				if err := s.proc.Signal(syscall.SIGKILL); err != nil {
					s.log.Debug().Err(err).Msg("SIGKILL failed")
				}
			}
		}
		s.pty.Close()
	})
	return nil
}

// ResolveShell picks the user's shell: $SHELL, else the first of zsh, bash
// and sh on PATH. Bash and zsh start as login shells.
func ResolveShell(getenv func(string) string, lookPath func(string) (string, error)) (string, []string) {
	shell := getenv("SHELL")
	if shell == "" {
		shell = "/bin/sh"
		for _, name := range []string{"zsh", "bash", "sh"} {
			if p, err := lookPath(name); err == nil {
				shell = p
				break
			}
		}
	}
	switch filepath.Base(shell) {
	case "bash", "zsh":
		return shell, []string{"-l"}
	}
	return shell, nil
}
