package terminal

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/creack/pty"
	"github.com/muesli/cancelreader"
	"golang.org/x/term"
)

// DetachKey is Ctrl+].
const DetachKey byte = 0x1d

// Attachment connects a session to the real terminal. It satisfies
// tea.ExecCommand, so the TUI can hand over the screen with tea.Exec.
type Attachment struct {
	s      *Session
	stdin  io.Reader
	stdout io.Writer
}

func (s *Session) Attach() *Attachment {
	return &Attachment{s: s}
}

func (a *Attachment) SetStdin(r io.Reader)  { a.stdin = r }
func (a *Attachment) SetStdout(w io.Writer) { a.stdout = w }
func (a *Attachment) SetStderr(io.Writer)   {}

// Run forwards keys to the shell until the detach key or shell exit.
func (a *Attachment) Run() error {
	in, out := a.stdin, a.stdout
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	if a.s.Exited() {
		return ErrSessionClosed
	}

	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd := int(f.Fd())
		state, err := term.MakeRaw(fd)
		if err != nil {
			return fmt.Errorf("raw mode: %w", err)
		}
		defer term.Restore(fd, state)

		if p, ok := a.s.pty.(*os.File); ok {
			stop := followSize(f, p)
			defer stop()
		}
	}

	fmt.Fprintf(out, "\r\n-- %s (Ctrl+] to detach) --\r\n", a.s.Title())
	out.Write(a.s.Transcript())
	a.s.setSink(out)
	defer a.s.setSink(nil)

	cr, err := cancelreader.NewReader(in)
	if err != nil {
		return err
	}
	defer cr.Close()

	copied := make(chan error, 1)
	go func() { copied <- copyUntilDetach(a.s.pty, cr) }()

	select {
	case err = <-copied:
	case <-a.s.done:
		cr.Cancel()
		err = <-copied
	}
	if errors.Is(err, cancelreader.ErrCanceled) {
		err = nil
	}
	return err
}

// copyUntilDetach copies src to dst and returns nil once DetachKey is read.
func copyUntilDetach(dst io.Writer, src io.Reader) error {
	buf := make([]byte, 1024)
	for {
		n, err := src.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			i := bytes.IndexByte(chunk, DetachKey)
			if i >= 0 {
				chunk = chunk[:i]
			}
			if len(chunk) > 0 {
				if _, werr := dst.Write(chunk); werr != nil {
					return werr
				}
			}
			if i >= 0 {
				return nil
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

// followSize copies tty's size to p now and on every SIGWINCH.
func followSize(tty, p *os.File) func() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGWINCH)
	ch <- syscall.SIGWINCH
	go func() {
		for range ch {
			_ = pty.InheritSize(tty, p)
		}
	}()
	return func() {
		signal.Stop(ch)
		close(ch)
	}
}
