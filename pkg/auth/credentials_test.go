package auth

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
	"szepaper/pkg/config"
	errs "szepaper/pkg/errors"
	"szepaper/pkg/logger"
)

// staticSource serves passwords from a map
type staticSource struct {
	name      string
	passwords map[string]string
	err       error
	calls     int
}

func (s *staticSource) Name() string { return s.name }

func (s *staticSource) Password(username string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	if p, ok := s.passwords[username]; ok {
		return p, nil
	}
	return "", ErrCredentialsNotFound
}

func TestKeyringSource(t *testing.T) {
	keyring.MockInit()
	require.NoError(t, keyring.Set(keyringService, "reader", "s3cret"))

	source := NewKeyringSource()
	assert.Equal(t, "keyring", source.Name())

	password, err := source.Password("reader")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", password)

	_, err = source.Password("someone-else")
	assert.True(t, errors.Is(err, ErrCredentialsNotFound))

	_, err = source.Password("")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))
}

func TestKeyringSourceUnavailable(t *testing.T) {
	keyring.MockInitWithError(errors.New("no secret service"))
	defer keyring.MockInit()

	_, err := NewKeyringSource().Password("reader")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrCredentialsNotFound))
	assert.Contains(t, err.Error(), "no secret service")
}

func TestManagerLookupOrder(t *testing.T) {
	first := &staticSource{name: "first", passwords: map[string]string{}}
	second := &staticSource{name: "second", passwords: map[string]string{"reader": "from-second"}}
	third := &staticSource{name: "third", passwords: map[string]string{"reader": "from-third"}}

	m := NewManager(logger.NewNopLogger(), first, second, third)

	password, err := m.Lookup("reader")
	require.NoError(t, err)
	assert.Equal(t, "from-second", password)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 0, third.calls)
}

func TestManagerLookupFailures(t *testing.T) {
	broken := &staticSource{name: "broken", err: errors.New("locked")}
	empty := &staticSource{name: "empty", passwords: map[string]string{}}

	tl := logger.NewTestLogger()
	m := NewManager(tl, broken, empty)

	_, err := m.Lookup("reader")
	assert.True(t, errors.Is(err, ErrCredentialsNotFound))
	assert.Contains(t, err.Error(), "locked")
	assert.True(t, tl.HasMessage("Password source failed"))

	_, err = NewManager(logger.NewNopLogger(), empty).Lookup("reader")
	assert.Equal(t, ErrCredentialsNotFound, err)

	_, err = m.Lookup("")
	assert.Equal(t, ErrInvalidCredentials, err)
}

func TestResolve(t *testing.T) {
	source := &staticSource{name: "static", passwords: map[string]string{"reader": "pw"}}
	m := NewManager(logger.NewNopLogger(), source)

	t.Run("fills password when keyring enabled", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Portal.Username = "reader"
		cfg.Portal.UseKeyring = true

		require.NoError(t, m.Resolve(cfg))
		assert.Equal(t, "pw", cfg.Portal.Password)
		assert.True(t, cfg.HasCredentials())
	})

	t.Run("explicit password wins", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Portal.Username = "reader"
		cfg.Portal.Password = "given"
		cfg.Portal.UseKeyring = true

		require.NoError(t, m.Resolve(cfg))
		assert.Equal(t, "given", cfg.Portal.Password)
	})

	t.Run("keyring disabled", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Portal.Username = "reader"

		require.NoError(t, m.Resolve(cfg))
		assert.Empty(t, cfg.Portal.Password)
	})

	t.Run("unknown user is usage error", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Portal.Username = "stranger"
		cfg.Portal.UseKeyring = true

		err := m.Resolve(cfg)
		assert.True(t, errors.Is(err, errs.ErrUsage))
		assert.True(t, errors.Is(err, ErrCredentialsNotFound))
	})
}

func TestMaskUsername(t *testing.T) {
	assert.Equal(t, "re***", MaskUsername("reader"))
	assert.Equal(t, "***", MaskUsername("ab"))
	assert.Equal(t, "***", MaskUsername(""))
}

func TestKeyringHint(t *testing.T) {
	hint := KeyringHint("reader")
	assert.Contains(t, hint, "reader")
	assert.Contains(t, hint, keyringService)
	assert.Contains(t, hint, "--keyring")
}
