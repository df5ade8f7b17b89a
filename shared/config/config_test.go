package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nao_existe.json"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadFormats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"json", "config.json", `{"view_radius": 6, "cache_backend": "badger"}`},
		{"yaml", "config.yaml", "view_radius: 6\ncache_backend: badger\n"},
		{"yml", "config.yml", "view_radius: 6\ncache_backend: badger\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			cfg, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, int32(6), cfg.ViewRadius)
			assert.Equal(t, "badger", cfg.CacheBackend)
			// Campos ausentes mantêm o padrão
			assert.Equal(t, 9, cfg.AmbientSamples)
		})
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"raio zero", `{"view_radius": 0}`},
		{"amostras", `{"ambient_samples": 7}`},
		{"backend", `{"cache_backend": "redis"}`},
		{"threads", `{"mesher_threads": -2}`},
		{"json quebrado", `{"view_radius": `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestSaveAndReload(t *testing.T) {
	for _, name := range []string{"cfg.json", "cfg.yaml"} {
		path := filepath.Join(t.TempDir(), name)
		cfg := DefaultConfig()
		cfg.NoiseSeed = 99
		cfg.Smoothing = false
		require.NoError(t, cfg.Save(path))

		back, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, cfg, back, name)
	}
}

func TestCutoffs(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ViewRadius = 4
	cfg.DropMargin = 2
	cfg.KeepMargin = 3
	assert.Equal(t, int64(36), cfg.DropCutoffSq())
	assert.Equal(t, int32(7), cfg.KeepRadius())
}
