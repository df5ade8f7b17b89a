package assets

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"VoxelStream/shared/mapdata"
)

// --- Estruturas JSON ---

// ColorEntry liga padrões de nome de bloco (com wildcard *) a uma cor.
type ColorEntry struct {
	Tokens  []string `json:"tokens"`
	Color   string   `json:"color"` // "#rrggbb" ou "#rrggbbaa"
	Comment string   `json:"comment,omitempty"`
}

// PropEntry define como um objeto especial é desenhado.
type PropEntry struct {
	Tokens []string `json:"tokens"`
	Shape  string   `json:"shape"` // cube, sphere, cylinder, cone
	Scale  float32  `json:"scale"`
	Color  string   `json:"color"`
}

// PaletteConfig é o root do palette.json
type PaletteConfig struct {
	Colors []ColorEntry `json:"colors"`
	Props  []PropEntry  `json:"props"`
}

// Prop é a forma resolvida de um objeto especial.
type Prop struct {
	Shape string
	Scale float32
	Color [4]uint8
}

// --- Manager ---

// Manager responde às consultas de cor e forma do renderizador.
// As consultas são resolvidas uma vez por tipo de bloco e guardadas em tabela.
type Manager struct {
	colors [mapdata.NumBlockTypes][4]uint8
	props  [mapdata.NumBlockTypes]Prop
}

// NewManager carrega palette.json de configDir. Arquivo ausente usa a paleta padrão.
func NewManager(configDir string) (*Manager, error) {
	data, err := os.ReadFile(filepath.Join(configDir, "palette.json"))
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("falha ao ler palette.json: %w", err)
	}

	var conf PaletteConfig
	if err := json.Unmarshal(data, &conf); err != nil {
		return nil, fmt.Errorf("falha ao parsear palette.json: %w", err)
	}
	return FromConfig(conf)
}

// FromConfig resolve uma configuração sobre a paleta padrão.
func FromConfig(conf PaletteConfig) (*Manager, error) {
	merged := DefaultConfig()
	merged.Colors = append(merged.Colors, conf.Colors...)
	merged.Props = append(merged.Props, conf.Props...)
	return build(merged)
}

// Default retorna a paleta embutida.
func Default() *Manager {
	m, err := build(DefaultConfig())
	if err != nil {
		panic(err)
	}
	return m
}

func build(conf PaletteConfig) (*Manager, error) {
	m := &Manager{}
	for i := 0; i < mapdata.NumBlockTypes; i++ {
		name := mapdata.BlockType(i).String()

		m.colors[i] = [4]uint8{255, 0, 255, 255}
		best := -1
		for _, e := range conf.Colors {
			score := bestScore(e.Tokens, name)
			if score < 0 || score < best {
				continue
			}
			c, err := parseColor(e.Color)
			if err != nil {
				return nil, fmt.Errorf("cor de %v: %w", e.Tokens, err)
			}
			m.colors[i], best = c, score
		}

		best = -1
		for _, e := range conf.Props {
			score := bestScore(e.Tokens, name)
			if score < 0 || score < best {
				continue
			}
			c, err := parseColor(e.Color)
			if err != nil {
				return nil, fmt.Errorf("prop de %v: %w", e.Tokens, err)
			}
			scale := e.Scale
			if scale == 0 {
				scale = 1
			}
			m.props[i], best = Prop{Shape: e.Shape, Scale: scale, Color: c}, score
		}
	}
	return m, nil
}

// Color retorna a cor base de um tipo de bloco.
func (m *Manager) Color(bt mapdata.BlockType) [4]uint8 {
	return m.colors[bt]
}

// Prop retorna a forma de um objeto especial. ok=false quando não há entrada.
func (m *Manager) Prop(bt mapdata.BlockType) (Prop, bool) {
	p := m.props[bt]
	return p, p.Shape != ""
}

// --- Wildcard Matching ---

// matchToken compara um nome de bloco contra um padrão com suporte a wildcards (*).
func matchToken(pattern, query string) bool {
	ok, err := path.Match(pattern, query)
	return err == nil && ok
}

// specificityScore conta os caracteres literais do padrão; empates ficam com a entrada mais recente.
func specificityScore(pattern string) int {
	return len(strings.ReplaceAll(pattern, "*", ""))
}

func bestScore(patterns []string, name string) int {
	best := -1
	for _, p := range patterns {
		if matchToken(p, name) {
			best = max(best, specificityScore(p))
		}
	}
	return best
}

func parseColor(s string) ([4]uint8, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 && len(s) != 8 {
		return [4]uint8{}, fmt.Errorf("formato inválido %q", s)
	}
	if len(s) == 6 {
		s += "ff"
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return [4]uint8{}, fmt.Errorf("formato inválido %q: %w", s, err)
	}
	return [4]uint8{uint8(v >> 24), uint8(v >> 16), uint8(v >> 8), uint8(v)}, nil
}

// DefaultConfig é a paleta embutida, também usada como base do palette.json.
func DefaultConfig() PaletteConfig {
	return PaletteConfig{
		Colors: []ColorEntry{
			{Tokens: []string{"*"}, Color: "#b0b0b0"},
			{Tokens: []string{"stone"}, Color: "#8a8a8a"},
			{Tokens: []string{"water"}, Color: "#3a6ec8b4"},
			{Tokens: []string{"brick"}, Color: "#a0503c"},
			{Tokens: []string{"soil"}, Color: "#7a5634"},
			{Tokens: []string{"topsoil"}, Color: "#5c9a3a"},
			{Tokens: []string{"logs"}, Color: "#8c6a40"},
			{Tokens: []string{"sand"}, Color: "#dccb8c"},
			{Tokens: []string{"lamp*"}, Color: "#fff0b4"},
			{Tokens: []string{"teleport"}, Color: "#8c50dc"},
			{Tokens: []string{"hedge"}, Color: "#2f6e2a"},
			{Tokens: []string{"window"}, Color: "#c8e6ff80"},
			{Tokens: []string{"paving", "concrete"}, Color: "#9e9e96"},
			{Tokens: []string{"gravel"}, Color: "#7c7870"},
			{Tokens: []string{"marble"}, Color: "#eae6e0"},
			{Tokens: []string{"ladder"}, Color: "#a07840"},
		},
		Props: []PropEntry{
			{Tokens: []string{"tree"}, Shape: "cone", Scale: 1, Color: "#2e7d32"},
			{Tokens: []string{"tuft"}, Shape: "cone", Scale: 0.3, Color: "#6fae3c"},
			{Tokens: []string{"flowers"}, Shape: "sphere", Scale: 0.25, Color: "#e05a8c"},
			{Tokens: []string{"lamp*"}, Shape: "sphere", Scale: 0.35, Color: "#fff5c0"},
			{Tokens: []string{"*fog"}, Shape: "sphere", Scale: 1, Color: "#ffffff40"},
			{Tokens: []string{"bigfog"}, Shape: "sphere", Scale: 2, Color: "#ffffff30"},
			{Tokens: []string{"treasure", "quest"}, Shape: "cube", Scale: 0.5, Color: "#e8c030"},
		},
	}
}
