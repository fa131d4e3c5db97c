// Package pipefabric implements the pipe/buffer fabric, spec.md §4.2: the
// shared in-memory sinks that drain a child's output pipe for back-quote
// capture or post-pipe consumption, plus the anonymous pipes that connect
// adjacent pipeline nodes.
package pipefabric

import (
	"bytes"
	"io"
	"os"
	"sync"

	"github.com/wyshell/wyshell/internal/invariant"
)

// Buffer is a reference-counted binary buffer with one drain goroutine per
// pipe feeding it. CreateNew starts the first drain; AppendToExisting adds
// another over a fresh pipe into the same memory (the "append-to-existing"
// case spec.md names, for a second process writing to the same buffer after
// the first finishes).
type Buffer struct {
	mu       sync.Mutex
	data     bytes.Buffer
	refcount int32
	active   int32 // number of drain goroutines not yet at EOF
	done     chan struct{}
}

// NewBuffer allocates an empty, unstarted buffer. With no drain running
// there is nothing to finalize, so WaitForFinalize returns at once until
// the first drain is added.
func NewBuffer() *Buffer {
	done := make(chan struct{})
	close(done)
	return &Buffer{done: done, refcount: 1}
}

// CreateNew creates a pipe, hands the write end back to the caller (for
// installation as a node's stdout/stderr), and starts a drain goroutine
// reading the read end into buf.
func CreateNew() (buf *Buffer, writeEnd io.WriteCloser, err error) {
	buf = NewBuffer()
	writeEnd, err = buf.addDrain()
	return buf, writeEnd, err
}

// AppendToExisting adds a new drain over a new pipe against buf, for a
// second node that writes to a buffer a previous node already produced.
func AppendToExisting(buf *Buffer) (io.WriteCloser, error) {
	invariant.NotNil(buf, "buf")
	buf.mu.Lock()
	buf.refcount++
	buf.mu.Unlock()
	// Let earlier drains reach EOF first so the appended bytes land after
	// everything the previous writer produced.
	buf.WaitForFinalize()
	return buf.addDrain()
}

func (b *Buffer) addDrain() (io.WriteCloser, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	// A drain joining while no other drain is active starts a fresh
	// "finalize" epoch: the previous one's done channel, if any, is
	// already closed, and a second AppendToExisting writer must not be
	// able to race WaitForFinalize into returning before it has run.
	if b.active == 0 {
		b.done = make(chan struct{})
	}
	b.active++
	b.mu.Unlock()

	go func() {
		defer r.Close()
		_, _ = io.Copy(&bufferWriter{b}, r)
		b.mu.Lock()
		b.active--
		remaining := b.active
		done := b.done
		b.mu.Unlock()
		if remaining == 0 {
			close(done)
		}
	}()

	return w, nil
}

// bufferWriter serializes writes into Buffer.data under the mutex.
type bufferWriter struct{ b *Buffer }

func (w *bufferWriter) Write(p []byte) (int, error) {
	w.b.mu.Lock()
	defer w.b.mu.Unlock()
	return w.b.data.Write(p)
}

// WriteEnd satisfies internal/redirect.BufferSink by creating a fresh drain
// (via addDrain, the same step CreateNew and AppendToExisting use) and
// returning its write end. It does not change the buffer's refcount.
func (b *Buffer) WriteEnd() io.WriteCloser {
	w, err := b.addDrain()
	if err != nil {
		// A pipe() failure here is a resource exhaustion condition the
		// caller (internal/redirect) surfaces as a RedirectError; return a
		// writer that reports the same failure on first use rather than a
		// nil that would panic every built-in's fmt.Fprintf.
		return failingWriteCloser{err}
	}
	return w
}

type failingWriteCloser struct{ err error }

func (f failingWriteCloser) Write(p []byte) (int, error) { return 0, f.err }
func (f failingWriteCloser) Close() error                { return f.err }

// WaitForFinalize blocks until every drain over buf has observed EOF and
// flushed its bytes. Safe to call before a later AppendToExisting/WriteEnd
// starts a new drain only if the caller itself serializes that against this
// call — spec.md's own sequencing (a node finishes before the next node
// that appends to its buffer starts) already guarantees that.
func (b *Buffer) WaitForFinalize() {
	b.mu.Lock()
	done := b.done
	b.mu.Unlock()
	<-done
}

// ReadContents returns buf's accumulated bytes. Only meaningful after
// WaitForFinalize; calling earlier returns a racy partial snapshot, so
// callers that need the guarantee must call WaitForFinalize first.
func (b *Buffer) ReadContents() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]byte, b.data.Len())
	copy(out, b.data.Bytes())
	return out
}

// ForwardToNext streams buf's finalized contents as the next node's stdin,
// for when a built-in emitted to a buffer but the user requested a pipe to
// the next node (spec.md §4.5 step 1 / §4.2 ForwardToNext).
func (b *Buffer) ForwardToNext() io.Reader {
	b.WaitForFinalize()
	return bytes.NewReader(b.ReadContents())
}

// Release decrements the buffer's reference count. Callers that created or
// appended to a buffer must Release exactly once each.
func (b *Buffer) Release() int32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refcount--
	return b.refcount
}
