package clipboard

import (
	"bufio"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

// Transport carries framed protocol messages across the process boundary.
type Transport interface {
	// Send writes one message.
	Send(content []byte) error

	// Receive reads the next message.
	Receive() ([]byte, error)

	// Close closes the transport.
	Close() error
}

// MaxContentLength is the maximum allowed frame size (10MB).
const MaxContentLength = 10 * 1024 * 1024

// StreamTransport frames messages over a reader and a writer, such as a
// process's stdin and stdout.
type StreamTransport struct {
	reader *bufio.Reader
	w      io.Writer
	closer func() error

	mu        sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

// NewStreamTransport creates a transport over r and w. Close closes whichever
// of them implement io.Closer.
func NewStreamTransport(r io.Reader, w io.Writer) *StreamTransport {
	return &StreamTransport{
		reader: bufio.NewReader(r),
		w:      w,
		closer: func() error {
			var first error
			if c, ok := w.(io.Closer); ok {
				first = c.Close()
			}
			if c, ok := r.(io.Closer); ok {
				if err := c.Close(); err != nil && first == nil {
					first = err
				}
			}
			return first
		},
	}
}

// NewConnTransport creates a transport over a bidirectional connection.
func NewConnTransport(rwc io.ReadWriteCloser) *StreamTransport {
	return &StreamTransport{
		reader: bufio.NewReader(rwc),
		w:      rwc,
		closer: rwc.Close,
	}
}

// NewProcessTransport starts cmd and talks to it over its stdin and stdout.
// Close terminates the process.
func NewProcessTransport(cmd *exec.Cmd) (*StreamTransport, error) {
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("get stdin pipe: %w", err)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		stdin.Close()
		return nil, fmt.Errorf("get stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		stdin.Close()
		stdout.Close()
		return nil, fmt.Errorf("start command: %w", err)
	}

	return &StreamTransport{
		reader: bufio.NewReader(stdout),
		w:      stdin,
		closer: func() error {
			stdin.Close()
			if cmd.Process != nil {
				_ = cmd.Process.Kill()
			}
			_ = cmd.Wait()
			return nil
		},
	}, nil
}

// Send writes one framed message.
func (t *StreamTransport) Send(content []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return writeFrame(t.w, content)
}

// Receive reads one framed message.
func (t *StreamTransport) Receive() ([]byte, error) {
	return readFrame(t.reader)
}

// Close closes the underlying streams. Subsequent calls return the first result.
func (t *StreamTransport) Close() error {
	t.closeOnce.Do(func() {
		if t.closer != nil {
			t.closeErr = t.closer()
		}
	})
	return t.closeErr
}

// writeFrame writes a Content-Length framed message.
func writeFrame(w io.Writer, content []byte) error {
	header := fmt.Sprintf("Content-Length: %d\r\n\r\n", len(content))
	if _, err := io.WriteString(w, header); err != nil {
		return fmt.Errorf("write headers: %w", err)
	}
	if _, err := w.Write(content); err != nil {
		return fmt.Errorf("write content: %w", err)
	}
	return nil
}

// readFrame reads a Content-Length framed message.
func readFrame(r *bufio.Reader) ([]byte, error) {
	contentLength := -1

	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("read header: %w", err)
		}

		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}

		name, value, ok := strings.Cut(line, ": ")
		if !ok {
			return nil, fmt.Errorf("%w: header %q", ErrInvalidMessage, line)
		}

		if strings.EqualFold(name, "content-length") {
			length, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("invalid content-length: %w", err)
			}
			if length < 0 || length > MaxContentLength {
				return nil, fmt.Errorf("content-length %d exceeds maximum allowed %d", length, MaxContentLength)
			}
			contentLength = length
		}
	}

	if contentLength <= 0 {
		return nil, fmt.Errorf("%w: missing Content-Length header", ErrInvalidMessage)
	}

	content := make([]byte, contentLength)
	if _, err := io.ReadFull(r, content); err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}
	return content, nil
}
