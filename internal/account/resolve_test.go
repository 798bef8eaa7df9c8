package account

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poonai/gist/internal/config"
)

func staticLoader(cfg *config.Config) Loader {
	return func() (*config.Config, error) {
		return cfg, nil
	}
}

func failingLoader(t *testing.T) Loader {
	return func() (*config.Config, error) {
		t.Error("config must not be loaded")
		return config.New(), nil
	}
}

func TestResolve(t *testing.T) {
	saved := config.New()
	saved.Set("alice", config.OAuth("x"))
	saved.Set("carol", config.PersonalAccessToken("carol", "pat"))

	tests := []struct {
		name    string
		sel     Selector
		load    Loader
		want    config.Login
		wantErr error
	}{
		{
			name: "first saved account",
			sel:  Selector{},
			load: staticLoader(saved),
			want: config.OAuth("x"),
		},
		{
			name: "named saved account",
			sel:  Selector{Username: "carol"},
			load: staticLoader(saved),
			want: config.PersonalAccessToken("carol", "pat"),
		},
		{
			name:    "unknown saved account",
			sel:     Selector{Username: "bob"},
			load:    staticLoader(saved),
			wantErr: ErrAccountNotFound,
		},
		{
			name:    "empty config",
			sel:     Selector{},
			load:    staticLoader(config.New()),
			wantErr: ErrEmptyConfig,
		},
		{
			name: "token wins over everything",
			sel:  Selector{Token: "tok", Username: "bob", Password: "pw"},
			load: failingLoader(t),
			want: config.OAuth("tok"),
		},
		{
			name: "username and password",
			sel:  Selector{Username: "bob", Password: "pw"},
			load: failingLoader(t),
			want: config.PersonalAccessToken("bob", "pw"),
		},
		{
			name:    "password alone",
			sel:     Selector{Password: "pw"},
			load:    failingLoader(t),
			wantErr: ErrPasswordWithoutUser,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.sel, tt.load)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveLoadFailureIsFatal(t *testing.T) {
	boom := errors.New("boom")
	_, err := Resolve(Selector{}, func() (*config.Config, error) { return nil, boom })
	require.ErrorIs(t, err, boom)
}

func TestResolveConfigFile(t *testing.T) {
	dir := t.TempDir()
	fromFile := func(path string) Loader {
		return func() (*config.Config, error) { return config.Load(path) }
	}

	_, err := Resolve(Selector{}, fromFile(filepath.Join(dir, "missing.json")))
	require.ErrorIs(t, err, ErrEmptyConfig)

	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"alice": {"type": "oauth", "value": "x"}}`), 0600))
	login, err := Resolve(Selector{}, fromFile(path))
	require.NoError(t, err)
	assert.Equal(t, config.OAuth("x"), login)

	require.NoError(t, os.WriteFile(path, []byte(`not json`), 0600))
	_, err = Resolve(Selector{}, fromFile(path))
	require.ErrorIs(t, err, config.ErrMalformed)
}
