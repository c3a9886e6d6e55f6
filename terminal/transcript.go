package terminal

import (
	"bytes"
	"sync"
)

// maxTranscriptBytes caps output that never contains a newline.
const maxTranscriptBytes = 1 << 20

// transcript keeps the tail of a session's output for replay on attach.
type transcript struct {
	mu       sync.Mutex
	buf      []byte
	lines    int
	maxLines int
}

func newTranscript(maxLines int) *transcript {
	if maxLines < 1 {
		maxLines = DefaultScrollback
	}
	return &transcript{maxLines: maxLines}
}

func (t *transcript) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.buf = append(t.buf, p...)
	t.lines += bytes.Count(p, []byte{'\n'})

	for t.lines > t.maxLines {
		i := bytes.IndexByte(t.buf, '\n')
		t.buf = t.buf[i+1:]
		t.lines--
	}
	if over := len(t.buf) - maxTranscriptBytes; over > 0 {
		t.lines -= bytes.Count(t.buf[:over], []byte{'\n'})
		t.buf = t.buf[over:]
	}
	return len(p), nil
}

func (t *transcript) Bytes() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	return bytes.Clone(t.buf)
}
