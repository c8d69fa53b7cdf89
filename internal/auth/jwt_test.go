package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndVerifyToken(t *testing.T) {
	m := NewJWTManager("test-secret", "rwa-backend", time.Hour)

	token, err := m.GenerateToken("user-1", "admin@example.org", "admin")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "admin@example.org", claims.Email)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "rwa-backend", claims.Issuer)
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	m := NewJWTManager("secret-a", "", time.Hour)
	token, err := m.GenerateToken("user-1", "a@b.c", "member")
	require.NoError(t, err)

	other := NewJWTManager("secret-b", "", time.Hour)
	_, err = other.VerifyToken(token)
	assert.Error(t, err)
}

func TestVerifyExpiredToken(t *testing.T) {
	m := NewJWTManager("secret", "", time.Hour)
	m.ttl = -time.Minute

	token, err := m.GenerateToken("user-1", "a@b.c", "member")
	require.NoError(t, err)

	_, err = m.VerifyToken(token)
	assert.Error(t, err)
}

func TestExtractTokenFromHeader(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{"valid", "Bearer abc.def.ghi", "abc.def.ghi", false},
		{"missing prefix", "abc.def.ghi", "", true},
		{"wrong scheme", "Basic abc", "", true},
		{"empty token", "Bearer ", "", true},
		{"empty header", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractTokenFromHeader(tt.header)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
