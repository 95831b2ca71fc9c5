package storage

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	errs "szepaper/pkg/errors"
	"szepaper/pkg/logger"
)

const (
	// DefaultChunkSize is the number of bytes read from the issue stream per write
	DefaultChunkSize = 64 * 1024

	// DefaultAliasName is the link that points at the newest current issue
	DefaultAliasName = "current.pdf"
)

// Manager writes issues into one directory and maintains the alias link there
type Manager struct {
	outputDir string
	chunkSize int
	aliasName string
	logger    logger.Logger
}

// Option configures a Manager
type Option func(*Manager)

// WithChunkSize sets the copy chunk size; values <= 0 are ignored
func WithChunkSize(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.chunkSize = n
		}
	}
}

// WithAliasName sets the alias link name
func WithAliasName(name string) Option {
	return func(m *Manager) {
		if name != "" {
			m.aliasName = name
		}
	}
}

// WithLogger sets the logger used by the manager
func WithLogger(l logger.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// NewManager creates a new storage manager, creating outputDir if needed
func NewManager(outputDir string, opts ...Option) (*Manager, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, errs.Wrap(errs.ErrorTypeFilesystem, err, "failed to create output directory")
	}

	m := &Manager{
		outputDir: outputDir,
		chunkSize: DefaultChunkSize,
		aliasName: DefaultAliasName,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = logger.GetLogger()
	}
	return m, nil
}

// SaveIssue copies r into <dir>/<filename>, replacing any existing file.
//
// The stream is read in chunks of at most the configured chunk size until it
// reports io.EOF. If writing fails the partial file is left behind; fetching
// the same issue again overwrites it.
func (m *Manager) SaveIssue(r io.Reader, filename string) (string, int64, error) {
	if filename == "" || filepath.Base(filename) != filename {
		return "", 0, errs.New(errs.ErrorTypeFilesystem, "invalid issue filename %q", filename)
	}

	path := filepath.Join(m.outputDir, filename)
	out, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return "", 0, errs.Wrap(errs.ErrorTypeFilesystem, err, "failed to create %s", path)
	}

	written, copyErr := copyChunked(out, r, m.chunkSize)
	closeErr := out.Close()

	if copyErr != nil {
		return path, written, copyErr
	}
	if closeErr != nil {
		return path, written, errs.Wrap(errs.ErrorTypeFilesystem, closeErr, "failed to close %s", path)
	}

	m.logger.DebugWithFields("issue written", map[string]interface{}{
		"path":  path,
		"bytes": written,
	})

	return path, written, nil
}

// copyChunked is a read-then-write loop with a fixed buffer. io.Copy is not
// used because *os.File's ReadFrom would pick its own read sizes.
func copyChunked(dst io.Writer, src io.Reader, chunkSize int) (int64, error) {
	buf := make([]byte, chunkSize)
	var written int64

	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			w, err := dst.Write(buf[:n])
			written += int64(w)
			if err != nil {
				return written, errs.Wrap(errs.ErrorTypeFilesystem, err, "failed to write issue")
			}
			if w != n {
				return written, errs.Wrap(errs.ErrorTypeFilesystem, io.ErrShortWrite, "failed to write issue")
			}
		}
		if readErr == io.EOF {
			return written, nil
		}
		if readErr != nil {
			return written, errs.Wrap(errs.ErrorTypeTransport, readErr, "failed to read issue stream")
		}
	}
}

// UpdateAlias points the alias link at filename, replacing any previous target.
// The old link is removed first, so for a moment there is no alias.
func (m *Manager) UpdateAlias(filename string) error {
	aliasPath := m.AliasPath()

	if err := os.Remove(aliasPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errs.Wrap(errs.ErrorTypeFilesystem, err, "failed to remove %s", aliasPath)
	}

	// Relative target so the directory can be moved or mounted elsewhere
	if err := os.Symlink(filename, aliasPath); err != nil {
		return errs.Wrap(errs.ErrorTypeFilesystem, err, "failed to link %s to %s", aliasPath, filename)
	}

	m.logger.DebugWithFields("alias updated", map[string]interface{}{
		"alias":  aliasPath,
		"target": filename,
	})
	return nil
}

// Alias returns the current alias target, or "" when there is no alias
func (m *Manager) Alias() (string, error) {
	target, err := os.Readlink(m.AliasPath())
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", errs.Wrap(errs.ErrorTypeFilesystem, err, "failed to read alias")
	}
	return target, nil
}

// AliasPath returns the full path of the alias link
func (m *Manager) AliasPath() string {
	return filepath.Join(m.outputDir, m.aliasName)
}

// GetOutputDir returns the output directory path
func (m *Manager) GetOutputDir() string {
	return m.outputDir
}
