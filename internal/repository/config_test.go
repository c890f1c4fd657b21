package repository

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_ConnStringEscapesCredentials(t *testing.T) {
	cfg := Config{
		Host:     "db.internal",
		Port:     "5433",
		User:     "board",
		Password: "p@ss/w:rd?#",
		Database: "fantasy_football",
		SSLMode:  "require",
	}

	u, err := url.Parse(cfg.connString())
	require.NoError(t, err)
	assert.Equal(t, "db.internal:5433", u.Host)
	assert.Equal(t, "/fantasy_football", u.Path)
	assert.Equal(t, "require", u.Query().Get("sslmode"))

	pass, ok := u.User.Password()
	require.True(t, ok)
	assert.Equal(t, "p@ss/w:rd?#", pass)
}

func TestConfig_PoolConfig(t *testing.T) {
	tests := []struct {
		name     string
		maxConns int32
		wantMax  int32
		wantMin  int32
	}{
		{name: "default", maxConns: 0, wantMax: defaultMaxConns, wantMin: 2},
		{name: "explicit", maxConns: 4, wantMax: 4, wantMin: 2},
		{name: "single connection", maxConns: 1, wantMax: 1, wantMin: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{Host: "localhost", Port: "5432", User: "u", Password: "p", Database: "d", SSLMode: "disable", MaxConns: tt.maxConns}

			pc, err := cfg.poolConfig()
			require.NoError(t, err)
			assert.Equal(t, tt.wantMax, pc.MaxConns)
			assert.Equal(t, tt.wantMin, pc.MinConns)
			assert.Equal(t, "localhost", pc.ConnConfig.Host)
			assert.Equal(t, uint16(5432), pc.ConnConfig.Port)
			assert.Equal(t, "p", pc.ConnConfig.Password)
		})
	}
}
