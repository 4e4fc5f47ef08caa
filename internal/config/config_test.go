package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("JWT_ACCESS_SECRET", "access")
	t.Setenv("JWT_REFRESH_SECRET", "refresh")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Service.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "redis", cfg.Store.Backend)
	assert.Equal(t, 8, cfg.Store.MaxRetries)
	assert.Equal(t, 16, cfg.Store.CodeAttempts)
	assert.Equal(t, 5*time.Second, cfg.Service.RequestTimeout)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9000")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("REQUEST_TIMEOUT", "250ms")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Service.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, 250*time.Millisecond, cfg.Service.RequestTimeout)
	assert.Equal(t, 0, cfg.Redis.DB, "unparsable ints fall back to the default")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		wants string
	}{
		{"bad port", map[string]string{"PORT": "70000"}, "invalid port"},
		{"bad driver", map[string]string{"DB_DRIVER": "mysql"}, "unsupported database driver"},
		{"bad backend", map[string]string{"STORE_BACKEND": "etcd"}, "unsupported store backend"},
		{"no retries", map[string]string{"STORE_MAX_RETRIES": "0"}, "store max retries"},
		{"missing secret", map[string]string{"JWT_ACCESS_SECRET": ""}, "JWT_ACCESS_SECRET"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wants)
		})
	}
}

func TestDSN(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{
		Host: "db", Port: 5433, User: "u", Password: "p", Name: "n", SSLMode: "disable",
	}}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=n sslmode=disable", cfg.DSN())
}
