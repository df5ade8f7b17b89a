package util

import (
	"fmt"
	"math"
	"sort"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// RegionSize é a aresta de uma região em blocos (constante do mundo).
const RegionSize = 32

// RegionVolume é o número de blocos de uma região.
const RegionVolume = RegionSize * RegionSize * RegionSize

// RegionCoord identifica uma região no grid do mundo.
// X = leste, Y = norte, Z = vertical
type RegionCoord struct {
	X, Y, Z int32
}

// NewRegionCoord cria uma nova coordenada de região.
func NewRegionCoord(x, y, z int32) RegionCoord {
	return RegionCoord{X: x, Y: y, Z: z}
}

// Add soma duas coordenadas.
func (c RegionCoord) Add(other RegionCoord) RegionCoord {
	return RegionCoord{
		X: c.X + other.X,
		Y: c.Y + other.Y,
		Z: c.Z + other.Z,
	}
}

// Sub subtrai duas coordenadas.
func (c RegionCoord) Sub(other RegionCoord) RegionCoord {
	return RegionCoord{
		X: c.X - other.X,
		Y: c.Y - other.Y,
		Z: c.Z - other.Z,
	}
}

// String retorna a representação em string da coordenada.
func (c RegionCoord) String() string {
	return fmt.Sprintf("(%d, %d, %d)", c.X, c.Y, c.Z)
}

// DistSq retorna a distância quadrada, em regiões, até outra coordenada.
func (c RegionCoord) DistSq(other RegionCoord) int64 {
	dx := int64(c.X - other.X)
	dy := int64(c.Y - other.Y)
	dz := int64(c.Z - other.Z)
	return dx*dx + dy*dy + dz*dz
}

// Less define uma ordem total usada para desempate determinístico.
func (c RegionCoord) Less(other RegionCoord) bool {
	if c.Z != other.Z {
		return c.Z < other.Z
	}
	if c.Y != other.Y {
		return c.Y < other.Y
	}
	return c.X < other.X
}

// SortDescending ordena por z decrescente, depois y, depois x.
// Serve apenas para iteração determinística, nunca para identidade.
func SortDescending(coords []RegionCoord) {
	sort.Slice(coords, func(i, j int) bool {
		return coords[j].Less(coords[i])
	})
}

// BlockPos é uma posição absoluta de bloco no mundo.
type BlockPos struct {
	X, Y, Z int64
}

// floorDiv divide arredondando para baixo (também para negativos).
func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// Region retorna a região que contém a posição.
func (p BlockPos) Region() RegionCoord {
	return RegionCoord{
		X: int32(floorDiv(p.X, RegionSize)),
		Y: int32(floorDiv(p.Y, RegionSize)),
		Z: int32(floorDiv(p.Z, RegionSize)),
	}
}

// Local retorna a coordenada local (0..31) dentro da região.
func (p BlockPos) Local() (x, y, z int) {
	r := p.Region()
	return int(p.X - int64(r.X)*RegionSize),
		int(p.Y - int64(r.Y)*RegionSize),
		int(p.Z - int64(r.Z)*RegionSize)
}

// Origin retorna a posição absoluta do canto mínimo da região.
func (c RegionCoord) Origin() BlockPos {
	return BlockPos{
		X: int64(c.X) * RegionSize,
		Y: int64(c.Y) * RegionSize,
		Z: int64(c.Z) * RegionSize,
	}
}

// GameScale controla a escala de conversão bloco → 3D.
const GameScale float32 = 1.0

// BlockToWorldPos converte uma posição em espaço de blocos (z para cima)
// para o espaço da Raylib (y para cima, z para o sul).
func BlockToWorldPos(x, y, z float32) rl.Vector3 {
	return rl.Vector3{
		X: x * GameScale,
		Y: z * GameScale,
		Z: -y * GameScale,
	}
}

// WorldToBlockPos faz o caminho inverso de BlockToWorldPos.
func WorldToBlockPos(pos rl.Vector3) BlockPos {
	return BlockPos{
		X: int64(floorF(pos.X / GameScale)),
		Y: int64(floorF(-pos.Z / GameScale)),
		Z: int64(floorF(pos.Y / GameScale)),
	}
}

func floorF(v float32) float64 {
	return math.Floor(float64(v))
}

// Directions representa as seis faces de um cubo como bitflags.
type Directions uint8

const (
	DirNone Directions = 0
	DirWest Directions = 1 << (iota - 1)
	DirEast
	DirSouth
	DirNorth
	DirDown
	DirUp
	DirAll Directions = 0x3F
)

// Has verifica se uma direção está ativa.
func (d Directions) Has(dir Directions) bool {
	return d&dir != 0
}

// FaceDirs lista as faces em ordem fixa.
var FaceDirs = [6]Directions{DirWest, DirEast, DirSouth, DirNorth, DirDown, DirUp}

// DirOffsets mapeia direções para offsets de coordenada.
var DirOffsets = map[Directions]RegionCoord{
	DirWest:  {X: -1},
	DirEast:  {X: 1},
	DirSouth: {Y: -1},
	DirNorth: {Y: 1},
	DirDown:  {Z: -1},
	DirUp:    {Z: 1},
}

// AddDir retorna uma nova coordenada deslocada na direção especificada.
func (c RegionCoord) AddDir(dir Directions) RegionCoord {
	return c.Add(DirOffsets[dir])
}

// FaceNeighbors retorna as 6 regiões que compartilham uma face.
func (c RegionCoord) FaceNeighbors() [6]RegionCoord {
	var out [6]RegionCoord
	for i, d := range FaceDirs {
		out[i] = c.AddDir(d)
	}
	return out
}

// BoundaryDirs retorna as faces da região tocadas por uma posição local.
// Uma edição nessas posições invalida também a vizinha daquele lado.
func BoundaryDirs(x, y, z int) Directions {
	d := DirNone
	if x == 0 {
		d |= DirWest
	}
	if x == RegionSize-1 {
		d |= DirEast
	}
	if y == 0 {
		d |= DirSouth
	}
	if y == RegionSize-1 {
		d |= DirNorth
	}
	if z == 0 {
		d |= DirDown
	}
	if z == RegionSize-1 {
		d |= DirUp
	}
	return d
}
