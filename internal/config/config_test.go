package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gist", "config.json")

	cfg := New()
	cfg.Set("zed", OAuth("oauth-token"))
	cfg.Set("alice", PersonalAccessToken("alice", "pat"))

	require.NoError(t, Save(path, cfg))
	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)
	require.Equal(t, []string{"zed", "alice"}, loaded.Names())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	require.Equal(t, 0, cfg.Len())
	_, _, ok := cfg.First()
	require.False(t, ok)
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"alice": `), 0600))

	_, err := Load(path)
	require.ErrorIs(t, err, ErrMalformed)
}

func TestReadKeepsFileOrder(t *testing.T) {
	in := `{
  "zed": {"type": "oauth", "value": "z"},
  "alice": {"type": "personal_access_token", "value": {"user": "alice", "token": "a"}},
  "bob": {"type": "oauth", "value": "b"}
}`
	cfg, err := Read(strings.NewReader(in))
	require.NoError(t, err)
	require.Equal(t, []string{"zed", "alice", "bob"}, cfg.Names())

	name, login, ok := cfg.First()
	require.True(t, ok)
	assert.Equal(t, "zed", name)
	assert.Equal(t, OAuth("z"), login)

	login, ok = cfg.Get("alice")
	require.True(t, ok)
	assert.Equal(t, PersonalAccessToken("alice", "a"), login)
}

func TestReadRejectsNonObject(t *testing.T) {
	_, err := Read(strings.NewReader(`[1, 2]`))
	require.ErrorIs(t, err, ErrMalformed)
}

func TestReadUnknownLoginType(t *testing.T) {
	_, err := Read(strings.NewReader(`{"alice": {"type": "ssh", "value": "x"}}`))
	require.ErrorIs(t, err, ErrMalformed)
	assert.Contains(t, err.Error(), `unknown login type "ssh"`)
}

func TestSetReplacesInPlace(t *testing.T) {
	cfg := New()
	assert.False(t, cfg.Set("a", OAuth("1")))
	assert.False(t, cfg.Set("b", OAuth("2")))
	assert.True(t, cfg.Set("a", OAuth("3")))

	require.Equal(t, []string{"a", "b"}, cfg.Names())
	login, _ := cfg.Get("a")
	assert.Equal(t, OAuth("3"), login)
}

func TestDelete(t *testing.T) {
	cfg := New()
	cfg.Set("a", OAuth("1"))
	cfg.Set("b", OAuth("2"))

	assert.True(t, cfg.Delete("a"))
	assert.False(t, cfg.Delete("a"))
	name, _, ok := cfg.First()
	require.True(t, ok)
	assert.Equal(t, "b", name)
}

func TestDefaultPath(t *testing.T) {
	path, err := DefaultPath()
	if err != nil {
		require.ErrorIs(t, err, ErrNoConfigDir)
		return
	}
	assert.Equal(t, filepath.Join("gist", "config.json"), filepath.Join(filepath.Base(filepath.Dir(path)), filepath.Base(path)))
}
