package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config armazena as configurações do VoxelStream (cliente e servidor).
type Config struct {
	// Janela
	WindowWidth  int32  `json:"window_width" yaml:"window_width"`
	WindowHeight int32  `json:"window_height" yaml:"window_height"`
	WindowTitle  string `json:"window_title" yaml:"window_title"`
	Fullscreen   bool   `json:"fullscreen" yaml:"fullscreen"`
	TargetFPS    int32  `json:"target_fps" yaml:"target_fps"`

	// Rede
	ServerURL  string `json:"server_url" yaml:"server_url"`
	ListenAddr string `json:"listen_addr" yaml:"listen_addr"` // Usado pelo Servidor

	// Streaming
	ViewRadius       int32 `json:"view_radius" yaml:"view_radius"`             // Raio (em regiões) pedido e desenhado
	DropMargin       int32 `json:"drop_margin" yaml:"drop_margin"`             // Jobs de mesh além de ViewRadius+DropMargin são descartados
	KeepMargin       int32 `json:"keep_margin" yaml:"keep_margin"`             // Regiões além de ViewRadius+KeepMargin são removidas
	MesherThreads    int   `json:"mesher_threads" yaml:"mesher_threads"`       // 0 = runtime.NumCPU()
	ChecksumInterval int   `json:"checksum_interval" yaml:"checksum_interval"` // Segundos entre verificações

	// Mesher
	Smoothing      bool  `json:"smoothing" yaml:"smoothing"`
	MergeNormals   bool  `json:"merge_normals" yaml:"merge_normals"`
	Noise          bool  `json:"noise" yaml:"noise"`
	NoiseSeed      int64 `json:"noise_seed" yaml:"noise_seed"`
	AmbientSamples int   `json:"ambient_samples" yaml:"ambient_samples"` // 5 ou 9

	// Cache
	CacheBackend string `json:"cache_backend" yaml:"cache_backend"` // file, sqlite ou badger
	CacheDir     string `json:"cache_dir" yaml:"cache_dir"`

	// Servidor
	WorldSeed int64 `json:"world_seed" yaml:"world_seed"`

	// Métricas (vazio = desligado)
	MetricsAddr string `json:"metrics_addr" yaml:"metrics_addr"`

	// Câmera
	CameraSpeed float32 `json:"camera_speed" yaml:"camera_speed"`
	FOV         float32 `json:"fov" yaml:"fov"`

	// Debug
	ShowDebugInfo bool `json:"show_debug_info" yaml:"show_debug_info"`
	WireframeMode bool `json:"wireframe_mode" yaml:"wireframe_mode"`
}

// DefaultConfig retorna a configuração padrão.
func DefaultConfig() *Config {
	return &Config{
		WindowWidth:  1280,
		WindowHeight: 720,
		WindowTitle:  "VoxelStream",
		Fullscreen:   false,
		TargetFPS:    60,

		ServerURL:  "ws://127.0.0.1:8080/ws",
		ListenAddr: ":8080",

		ViewRadius:       4,
		DropMargin:       2,
		KeepMargin:       3,
		MesherThreads:    0,
		ChecksumInterval: 15,

		Smoothing:      true,
		MergeNormals:   true,
		Noise:          true,
		NoiseSeed:      1,
		AmbientSamples: 9,

		CacheBackend: "file",
		CacheDir:     "cache",

		WorldSeed: 1337,

		CameraSpeed: 20.0,
		FOV:         60.0,

		ShowDebugInfo: true,
		WireframeMode: false,
	}
}

// DefaultPath retorna o caminho do arquivo de configuração ao lado do executável.
func DefaultPath() string {
	execDir, err := os.Executable()
	if err != nil {
		return "config.json"
	}
	return filepath.Join(filepath.Dir(execDir), "config.json")
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Load carrega as configurações de um arquivo JSON ou YAML (pela extensão).
// Se o arquivo não existir, retorna as configurações padrão.
// Campos ausentes no arquivo mantêm o valor padrão.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("falha ao ler %s: %w", path, err)
	}

	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("falha ao interpretar %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save salva as configurações no formato indicado pela extensão.
func (c *Config) Save(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate verifica combinações inválidas.
func (c *Config) Validate() error {
	if c.ViewRadius < 1 {
		return fmt.Errorf("view_radius deve ser >= 1 (atual %d)", c.ViewRadius)
	}
	if c.DropMargin < 0 || c.KeepMargin < 0 {
		return fmt.Errorf("drop_margin e keep_margin não podem ser negativos")
	}
	if c.MesherThreads < 0 {
		return fmt.Errorf("mesher_threads não pode ser negativo (atual %d)", c.MesherThreads)
	}
	if c.AmbientSamples != 5 && c.AmbientSamples != 9 {
		return fmt.Errorf("ambient_samples deve ser 5 ou 9 (atual %d)", c.AmbientSamples)
	}
	if c.ChecksumInterval < 1 {
		return fmt.Errorf("checksum_interval deve ser >= 1 segundo")
	}
	switch c.CacheBackend {
	case "file", "sqlite", "badger":
	default:
		return fmt.Errorf("cache_backend desconhecido: %q", c.CacheBackend)
	}
	return nil
}

// DropCutoffSq é a distância quadrada (em regiões) a partir da qual jobs de mesh são descartados.
func (c *Config) DropCutoffSq() int64 {
	r := int64(c.ViewRadius + c.DropMargin)
	return r * r
}

// KeepRadius é o raio em que as regiões são mantidas em memória.
func (c *Config) KeepRadius() int32 {
	return c.ViewRadius + c.KeepMargin
}
