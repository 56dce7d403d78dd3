package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openConfig(t *testing.T, contents string) *Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config")
	if contents != "" {
		require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	}

	cfg := New(path)
	require.NoError(t, cfg.Open())
	return cfg
}

func TestConfigMissingFileIsEmpty(t *testing.T) {
	cfg := openConfig(t, "")

	_, ok, err := cfg.Get("user.name")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConfigGetExistingVariable(t *testing.T) {
	cfg := openConfig(t, "[user]\nname = A. U. Thor\nemail = author@example.com\n")

	name, ok, err := cfg.Get("user.name")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "A. U. Thor", name)
}

func TestConfigNamesAreCaseInsensitive(t *testing.T) {
	cfg := openConfig(t, "[user]\nname = someone\n")

	name, ok, err := cfg.Get("User.Name")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "someone", name)
}

func TestConfigSubsectionVariables(t *testing.T) {
	cfg := openConfig(t, "[branch \"main\"]\nremote = origin\n")

	remote, ok, err := cfg.Get("branch.main.remote")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "origin", remote)
}

func TestConfigRejectsInvalidNames(t *testing.T) {
	cfg := openConfig(t, "")

	_, _, err := cfg.Get("noseparator")
	assert.ErrorIs(t, err, ErrInvalidVariable)

	err = cfg.Set("1bad.name", "x")
	assert.ErrorIs(t, err, ErrInvalidVariable)
}

func TestConfigSetAndSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")

	cfg := New(path)
	require.NoError(t, cfg.OpenForUpdate())
	require.NoError(t, cfg.Set("user.name", "someone"))
	require.NoError(t, cfg.Set("core.bare", "false"))
	require.NoError(t, cfg.Save())

	reloaded := New(path)
	require.NoError(t, reloaded.Open())

	name, ok, err := reloaded.Get("user.name")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "someone", name)

	bare, ok, err := reloaded.Get("core.bare")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "false", bare)
}

func TestConfigUnsetDropsEmptySection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	require.NoError(t, os.WriteFile(path, []byte("[user]\nname = someone\n"), 0o644))

	cfg := New(path)
	require.NoError(t, cfg.OpenForUpdate())
	require.NoError(t, cfg.Unset("user.name"))
	require.NoError(t, cfg.Save())

	reloaded := New(path)
	require.NoError(t, reloaded.Open())

	_, ok, err := reloaded.Get("user.name")
	require.NoError(t, err)
	assert.False(t, ok)
}
