package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadServerConfigFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := LoadServerConfigFromEnv()

		assert.Empty(t, cfg.Host)
		assert.Equal(t, ":8080", cfg.Port)
		assert.Equal(t, 10*time.Second, cfg.ReadTimeout)
		assert.Equal(t, 10*time.Second, cfg.WriteTimeout)
		assert.Equal(t, 120*time.Second, cfg.IdleTimeout)
		assert.Equal(t, 15*time.Second, cfg.ShutdownTimeout)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("SERVER_HOST", "10.0.0.5")
		t.Setenv("SERVER_PORT", "9191")
		t.Setenv("SERVER_READ_TIMEOUT", "45s")
		t.Setenv("SERVER_SHUTDOWN_TIMEOUT", "1m")

		cfg := LoadServerConfigFromEnv()

		assert.Equal(t, "10.0.0.5", cfg.Host)
		assert.Equal(t, "9191", cfg.Port)
		assert.Equal(t, 45*time.Second, cfg.ReadTimeout)
		assert.Equal(t, time.Minute, cfg.ShutdownTimeout)
	})
}

func TestServerConfigAddr(t *testing.T) {
	tests := []struct {
		name string
		cfg  ServerConfig
		want string
	}{
		{"bare port keeps its colon", ServerConfig{Port: ":8080"}, ":8080"},
		{"bare port without colon", ServerConfig{Port: "8080"}, "8080"},
		{"host joined with port", ServerConfig{Host: "localhost", Port: "8080"}, "localhost:8080"},
		{"host strips the port colon", ServerConfig{Host: "0.0.0.0", Port: ":8080"}, "0.0.0.0:8080"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.Addr())
		})
	}
}

func TestServerConfigValidate(t *testing.T) {
	valid := ServerConfig{
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    10 * time.Second,
		IdleTimeout:     2 * time.Minute,
		ShutdownTimeout: 15 * time.Second,
	}

	assert.NoError(t, valid.Validate())

	t.Run("zero read timeout", func(t *testing.T) {
		cfg := valid
		cfg.ReadTimeout = 0
		assert.ErrorContains(t, cfg.Validate(), "SERVER_READ_TIMEOUT")
	})

	t.Run("negative write timeout", func(t *testing.T) {
		cfg := valid
		cfg.WriteTimeout = -time.Second
		assert.ErrorContains(t, cfg.Validate(), "SERVER_WRITE_TIMEOUT")
	})

	t.Run("zero idle timeout", func(t *testing.T) {
		cfg := valid
		cfg.IdleTimeout = 0
		assert.ErrorContains(t, cfg.Validate(), "SERVER_IDLE_TIMEOUT")
	})

	t.Run("zero shutdown timeout", func(t *testing.T) {
		cfg := valid
		cfg.ShutdownTimeout = 0
		assert.ErrorContains(t, cfg.Validate(), "SERVER_SHUTDOWN_TIMEOUT")
	})
}
