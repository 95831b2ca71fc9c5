package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	errs "szepaper/pkg/errors"
	"szepaper/pkg/ui"
)

// isolate keeps the user's environment and dotfiles out of the test
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, key := range []string{
		"SZEPAPER_USERNAME", "SZEPAPER_PASSWORD", "SZEPAPER_KEYRING", "SZEPAPER_DIRECTORY",
		"SZEPAPER_EDITION", "SZEPAPER_ISSUE", "SZEPAPER_CHUNK_SIZE", "SZEPAPER_TIMEOUT",
		"SZEPAPER_LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
	return home
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer

	oldOut, oldErr := ui.Stdout, ui.Stderr
	ui.Stdout, ui.Stderr = &out, &errOut
	t.Cleanup(func() { ui.Stdout, ui.Stderr = oldOut, oldErr })

	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestListEditions(t *testing.T) {
	isolate(t)

	out, _, err := execute(t, "--list-editions")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, []string{
		"Available editions:",
		"bayern_base",
		"bayern_full",
		"deutschland_base",
		"deutschland_full",
		"stadt_base",
		"stadt_full",
	}, lines)
}

func TestMissingCredentialsPrintsUsage(t *testing.T) {
	isolate(t)

	out, errOut, err := execute(t, "--username", "reader", "--log-level", "disabled")
	require.NoError(t, err)
	assert.Contains(t, errOut, "Missing credentials")
	assert.Contains(t, out, "Usage:")
}

func TestRejectsBeforeNetwork(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		sentinel error
		code     int
	}{
		{
			name:     "sunday",
			args:     []string{"--issue", "2012-04-15"},
			sentinel: errs.ErrUnavailableDate,
			code:     2,
		},
		{
			name:     "unknown edition",
			args:     []string{"--edition", "berlin_full", "--issue", "2012-04-14"},
			sentinel: errs.ErrUnknownEdition,
			code:     2,
		},
		{
			name:     "malformed date",
			args:     []string{"--issue", "14.04.2012"},
			sentinel: errs.ErrUsage,
			code:     2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := isolate(t)
			dir := filepath.Join(home, "papers")

			args := append([]string{"-u", "reader", "-p", "secret", "-d", dir, "--log-level", "disabled"}, tt.args...)
			_, _, err := execute(t, args...)

			assert.True(t, errors.Is(err, tt.sentinel), "got %v", err)
			assert.Equal(t, tt.code, errs.ExitCode(err))

			_, statErr := os.Stat(dir)
			assert.True(t, os.IsNotExist(statErr), "output directory must not be created")
		})
	}
}

func TestIssueFromEnvironment(t *testing.T) {
	home := isolate(t)
	dir := filepath.Join(home, "papers")
	t.Setenv("SZEPAPER_ISSUE", "2012-04-15")

	_, _, err := execute(t, "-u", "reader", "-p", "secret", "-d", dir, "--log-level", "disabled")
	assert.True(t, errors.Is(err, errs.ErrUnavailableDate), "got %v", err)

	// The flag still wins over the environment
	_, _, err = execute(t, "-u", "reader", "-p", "secret", "-d", dir, "--log-level", "disabled", "-e", "berlin_full", "-i", "2012-04-14")
	assert.True(t, errors.Is(err, errs.ErrUnknownEdition), "got %v", err)

	_, statErr := os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestBadFlagIsUsageError(t *testing.T) {
	isolate(t)

	_, _, err := execute(t, "--chunk-size", "lots")
	assert.True(t, errors.Is(err, errs.ErrUsage))
	assert.Equal(t, 2, errs.ExitCode(err))
}

func TestInvalidChunkSizeFromConfig(t *testing.T) {
	isolate(t)

	_, _, err := execute(t, "-u", "reader", "-p", "secret", "--chunk-size", "0")
	assert.True(t, errors.Is(err, errs.ErrUsage))
}

func TestConfigInitAndShow(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, "szepaper.yaml")

	_, _, err := execute(t, "config", "init", "--config", path)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	_, _, err = execute(t, "config", "init", "--config", path)
	assert.True(t, errors.Is(err, errs.ErrUsage))

	t.Setenv("SZEPAPER_EDITION", "stadt_full")
	t.Setenv("SZEPAPER_PASSWORD", "secret")
	out, _, err := execute(t, "config", "show", "--config", path)
	require.NoError(t, err)

	assert.Contains(t, out, "edition: stadt_full")
	assert.Contains(t, out, "alias_name: current.pdf")
	assert.Contains(t, out, "# password: set")
	assert.NotContains(t, out, "secret")
}
