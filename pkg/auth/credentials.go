package auth

import (
	"errors"
	"fmt"

	"szepaper/pkg/config"
	errs "szepaper/pkg/errors"
	"szepaper/pkg/logger"
)

// PasswordSource looks up the portal password for a username.
// Sources are read-only; the downloader never stores credentials.
type PasswordSource interface {
	// Name identifies the source in log output
	Name() string

	// Password returns the stored password or ErrCredentialsNotFound
	Password(username string) (string, error)
}

// Manager asks its sources in order until one knows the password
type Manager struct {
	sources []PasswordSource
	logger  logger.Logger
}

// NewManager creates a credential manager over the given sources
func NewManager(l logger.Logger, sources ...PasswordSource) *Manager {
	if l == nil {
		l = logger.GetLogger()
	}
	return &Manager{sources: sources, logger: l}
}

// Lookup returns the password from the first source that has one
func (m *Manager) Lookup(username string) (string, error) {
	if username == "" {
		return "", ErrInvalidCredentials
	}

	var lastErr error
	for _, source := range m.sources {
		password, err := source.Password(username)
		if err == nil && password != "" {
			m.logger.WithFields(map[string]interface{}{
				"source": source.Name(),
				"user":   MaskUsername(username),
			}).Debug("Password found")
			return password, nil
		}
		if err != nil && !errors.Is(err, ErrCredentialsNotFound) {
			m.logger.WithError(err).WithField("source", source.Name()).Warn("Password source failed")
			lastErr = err
		}
	}

	if lastErr != nil {
		return "", fmt.Errorf("%w: %v", ErrCredentialsNotFound, lastErr)
	}
	return "", ErrCredentialsNotFound
}

// Resolve fills in cfg's password from the manager when the keyring is enabled
// and no password was given on the command line or in the environment.
// A username without any password is a usage error.
func (m *Manager) Resolve(cfg *config.Config) error {
	portal := &cfg.Portal
	if portal.Password != "" || portal.Username == "" || !portal.UseKeyring {
		return nil
	}

	password, err := m.Lookup(portal.Username)
	if err != nil {
		return errs.Wrap(errs.ErrorTypeUsage, err, "no password for %s", portal.Username)
	}
	portal.Password = password
	return nil
}

// MaskUsername keeps the first two characters of a username for logs
func MaskUsername(username string) string {
	if len(username) <= 2 {
		return "***"
	}
	return username[:2] + "***"
}

// Errors
var (
	ErrCredentialsNotFound = errors.New("credentials not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
)
