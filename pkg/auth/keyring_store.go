package auth

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/zalando/go-keyring"
)

const keyringService = "szepaper"

// KeyringSource reads passwords from the system keychain.
// Entries live under the service "szepaper" with the portal username as key.
type KeyringSource struct{}

// NewKeyringSource creates a keychain-backed password source
func NewKeyringSource() *KeyringSource {
	return &KeyringSource{}
}

// Name implements PasswordSource
func (k *KeyringSource) Name() string {
	return "keyring"
}

// Password implements PasswordSource
func (k *KeyringSource) Password(username string) (string, error) {
	if username == "" {
		return "", ErrInvalidCredentials
	}

	password, err := keyring.Get(keyringService, username)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrCredentialsNotFound
		}
		return "", fmt.Errorf("failed to read from keyring: %w", err)
	}
	return password, nil
}

// KeyringHint explains how to put a password into the keychain for this OS
func KeyringHint(username string) string {
	var b strings.Builder
	b.WriteString("Store the portal password in the system keychain, for example:\n")

	switch runtime.GOOS {
	case "darwin":
		fmt.Fprintf(&b, "  security add-generic-password -s %s -a %s -w\n", keyringService, username)
	case "windows":
		fmt.Fprintf(&b, "  cmdkey /generic:%s:%s /user:%s /pass\n", keyringService, username, username)
	default:
		fmt.Fprintf(&b, "  secret-tool store --label=%s service %s username %s\n", keyringService, keyringService, username)
	}

	b.WriteString("then run again with --keyring.")
	return b.String()
}
