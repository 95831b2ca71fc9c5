package epaper

import (
	"io"
	"time"
)

// Issue is a downloaded issue: its filename plus a read-once byte stream.
// The stream is not buffered; callers copy it to storage and then Close it.
type Issue struct {
	Filename string
	Edition  Edition
	Date     time.Time
	// Size is the declared Content-Length, or -1 when the server did not send one
	Size int64

	body      io.Reader
	closer    io.Closer
	exhausted bool
	closed    bool
}

// NewIssue wraps body as an issue stream. body is read through r, which may be
// a buffered view of it; Close always closes body.
func NewIssue(filename string, edition Edition, date time.Time, size int64, r io.Reader, body io.Closer) *Issue {
	return &Issue{
		Filename: filename,
		Edition:  edition,
		Date:     date,
		Size:     size,
		body:     r,
		closer:   body,
	}
}

// Read implements io.Reader. Once the end of the stream is reached every
// further call returns io.EOF without touching the underlying body.
func (i *Issue) Read(p []byte) (int, error) {
	if i.exhausted {
		return 0, io.EOF
	}
	if i.closed {
		return 0, io.ErrClosedPipe
	}
	n, err := i.body.Read(p)
	if err == io.EOF {
		i.exhausted = true
	}
	return n, err
}

// Exhausted reports whether the end of the stream has been reached
func (i *Issue) Exhausted() bool {
	return i.exhausted
}

// Close releases the underlying response body. It is safe to call twice.
func (i *Issue) Close() error {
	if i.closed {
		return nil
	}
	i.closed = true
	if i.closer == nil {
		return nil
	}
	return i.closer.Close()
}
