package config

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginJSON(t *testing.T) {
	tests := []struct {
		name  string
		login Login
		json  string
	}{
		{
			name:  "oauth",
			login: OAuth("gho_123"),
			json:  `{"type":"oauth","value":"gho_123"}`,
		},
		{
			name:  "personal access token",
			login: PersonalAccessToken("octocat", "ghp_456"),
			json:  `{"type":"personal_access_token","value":{"user":"octocat","token":"ghp_456"}}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := json.Marshal(tt.login)
			require.NoError(t, err)
			assert.JSONEq(t, tt.json, string(buf))

			var got Login
			require.NoError(t, json.Unmarshal([]byte(tt.json), &got))
			assert.Equal(t, tt.login, got)
		})
	}
}

func TestLoginMarshalZero(t *testing.T) {
	_, err := json.Marshal(Login{})
	require.Error(t, err)
}

func TestLoginAccessors(t *testing.T) {
	pat := PersonalAccessToken("octocat", "secret")
	assert.Equal(t, KindPersonalAccessToken, pat.Kind())
	assert.Equal(t, "octocat", pat.Username())
	assert.Equal(t, "secret", pat.Token())
	assert.NotContains(t, pat.String(), "secret")

	oauth := OAuth("tok")
	assert.Equal(t, KindOAuth, oauth.Kind())
	assert.Empty(t, oauth.Username())
	assert.True(t, Login{}.IsZero())
	assert.False(t, oauth.IsZero())
}
