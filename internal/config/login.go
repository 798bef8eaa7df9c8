package config

import (
	"encoding/json"
	"fmt"
)

// Kind tells which credential a Login carries.
type Kind int

const (
	KindOAuth Kind = iota + 1
	KindPersonalAccessToken
)

func (k Kind) String() string {
	switch k {
	case KindOAuth:
		return "oauth"
	case KindPersonalAccessToken:
		return "personal_access_token"
	}
	return "unknown"
}

// Login is a GitHub credential: either an OAuth token sent as a bearer
// header, or a username and personal access token sent with basic auth.
// The zero value carries no credential.
type Login struct {
	kind     Kind
	username string
	token    string
}

// OAuth returns a Login for an OAuth access token.
func OAuth(token string) Login {
	return Login{kind: KindOAuth, token: token}
}

// PersonalAccessToken returns a Login for a username and personal access token.
func PersonalAccessToken(username, token string) Login {
	return Login{kind: KindPersonalAccessToken, username: username, token: token}
}

func (l Login) Kind() Kind       { return l.kind }
func (l Login) Username() string { return l.username }
func (l Login) Token() string    { return l.token }
func (l Login) IsZero() bool     { return l.kind == 0 }

func (l Login) String() string {
	if l.kind == KindPersonalAccessToken {
		return fmt.Sprintf("%s(%s)", l.kind, l.username)
	}
	return l.kind.String()
}

type loginJSON struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

type patJSON struct {
	User  string `json:"user"`
	Token string `json:"token"`
}

func (l Login) MarshalJSON() ([]byte, error) {
	var value interface{}
	switch l.kind {
	case KindOAuth:
		value = l.token
	case KindPersonalAccessToken:
		value = patJSON{User: l.username, Token: l.token}
	default:
		return nil, fmt.Errorf("cannot encode empty login")
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return json.Marshal(loginJSON{Type: l.kind.String(), Value: raw})
}

func (l *Login) UnmarshalJSON(data []byte) error {
	var wire loginJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	switch wire.Type {
	case KindOAuth.String():
		var token string
		if err := json.Unmarshal(wire.Value, &token); err != nil {
			return fmt.Errorf("oauth login: %w", err)
		}
		*l = OAuth(token)
	case KindPersonalAccessToken.String():
		var pat patJSON
		if err := json.Unmarshal(wire.Value, &pat); err != nil {
			return fmt.Errorf("personal access token login: %w", err)
		}
		*l = PersonalAccessToken(pat.User, pat.Token)
	default:
		return fmt.Errorf("unknown login type %q", wire.Type)
	}
	return nil
}
