// Package account picks the GitHub credential a command runs with.
package account

import (
	"errors"
	"fmt"

	"github.com/poonai/gist/internal/config"
)

var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrEmptyConfig         = errors.New("no saved account, run `gist login` or pass a token")
	ErrPasswordWithoutUser = errors.New("a password requires a username")
)

// Selector holds the credential flags of a command line.
type Selector struct {
	// Token is an OAuth access token.
	Token string
	// Username alone selects a saved account, with Password it is a
	// personal access token login.
	Username string
	Password string
}

// Loader loads the saved accounts. It is only called when the selector
// does not carry a complete credential.
type Loader func() (*config.Config, error)

// Resolve returns the login selected by sel. The first match wins:
// an explicit token, an explicit username and password, a saved account
// named by username, and finally the first saved account.
func Resolve(sel Selector, load Loader) (config.Login, error) {
	switch {
	case sel.Token != "":
		return config.OAuth(sel.Token), nil
	case sel.Username != "" && sel.Password != "":
		return config.PersonalAccessToken(sel.Username, sel.Password), nil
	case sel.Password != "":
		return config.Login{}, ErrPasswordWithoutUser
	}

	cfg, err := load()
	if err != nil {
		return config.Login{}, fmt.Errorf("loading config: %w", err)
	}
	if sel.Username != "" {
		login, ok := cfg.Get(sel.Username)
		if !ok {
			return config.Login{}, fmt.Errorf("%w: %q", ErrAccountNotFound, sel.Username)
		}
		return login, nil
	}
	_, login, ok := cfg.First()
	if !ok {
		return config.Login{}, ErrEmptyConfig
	}
	return login, nil
}
