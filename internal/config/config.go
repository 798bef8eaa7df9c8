package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/kirsle/configdir"
)

var (
	// ErrNoConfigDir is returned when the platform config directory cannot be found.
	ErrNoConfigDir = errors.New("couldn't find the configuration directory")
	// ErrMalformed wraps every decoding failure of the config file.
	ErrMalformed = errors.New("malformed config file")
)

type entry struct {
	name  string
	login Login
}

// Config maps account names to logins. Entries keep the order they have
// in the config file; accounts added later are appended.
type Config struct {
	entries []entry
}

// New returns an empty Config.
func New() *Config {
	return &Config{}
}

func (c *Config) index(name string) int {
	for i, e := range c.entries {
		if e.name == name {
			return i
		}
	}
	return -1
}

// Get returns the login saved under name.
func (c *Config) Get(name string) (Login, bool) {
	if i := c.index(name); i >= 0 {
		return c.entries[i].login, true
	}
	return Login{}, false
}

// Set stores login under name. An existing entry is replaced in place
// and replaced reports true.
func (c *Config) Set(name string, login Login) (replaced bool) {
	if i := c.index(name); i >= 0 {
		c.entries[i].login = login
		return true
	}
	c.entries = append(c.entries, entry{name: name, login: login})
	return false
}

// Delete removes the entry for name and reports whether it existed.
func (c *Config) Delete(name string) bool {
	i := c.index(name)
	if i < 0 {
		return false
	}
	c.entries = append(c.entries[:i], c.entries[i+1:]...)
	return true
}

// First returns the entry that appears first in the config file. This is
// the default account when no other one is selected.
func (c *Config) First() (string, Login, bool) {
	if len(c.entries) == 0 {
		return "", Login{}, false
	}
	return c.entries[0].name, c.entries[0].login, true
}

// Names returns the account names in order.
func (c *Config) Names() []string {
	names := make([]string, 0, len(c.entries))
	for _, e := range c.entries {
		names = append(names, e.name)
	}
	return names
}

func (c *Config) Len() int {
	return len(c.entries)
}

func (c *Config) MarshalJSON() ([]byte, error) {
	buf := &bytes.Buffer{}
	buf.WriteByte('{')
	for i, e := range c.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(e.login)
		if err != nil {
			return nil, fmt.Errorf("account %q: %w", e.name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object token by token so the key order
// survives. A repeated key keeps its first position and its last value.
func (c *Config) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected a JSON object, got %v", tok)
	}
	c.entries = nil
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected an account name, got %v", tok)
		}
		var login Login
		if err := dec.Decode(&login); err != nil {
			return fmt.Errorf("account %q: %w", name, err)
		}
		c.Set(name, login)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// DefaultPath returns the config file location inside the platform
// config directory, e.g. ~/.config/gist/config.json on Linux.
func DefaultPath() (string, error) {
	dir := configdir.LocalConfig("gist")
	if dir == "" || !filepath.IsAbs(dir) {
		return "", ErrNoConfigDir
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the whole config file. A missing file yields an empty Config.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

// Read decodes a config from r.
func Read(r io.Reader) (*Config, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	cfg := New()
	if len(bytes.TrimSpace(buf)) == 0 {
		return cfg, nil
	}
	if err := json.Unmarshal(buf, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformed, err)
	}
	return cfg, nil
}

// Save replaces the config file with cfg, creating its directory first.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	buf, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	buf = append(buf, '\n')
	return os.WriteFile(path, buf, 0600)
}
