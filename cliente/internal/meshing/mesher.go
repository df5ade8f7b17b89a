package meshing

import (
	"errors"
	"sync"

	"VoxelStream/shared/mapdata"
	"VoxelStream/shared/util"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrNoData indica um pedido de mesh sem os blocos da região central.
var ErrNoData = errors.New("meshing: região central sem dados descomprimidos")

// Vertex é um vértice em espaço local da região (z para cima).
type Vertex struct {
	Pos     mgl32.Vec3
	Normal  mgl32.Vec3
	UV      mgl32.Vec2
	Light   float32 // 1 se o raio do sol não foi bloqueado, 0 caso contrário
	Ambient float32 // fração dos raios para o céu que escaparam
	Pick    uint32  // só usado em modo picking
}

// Triangle é uma lista ordenada de três vértices (anti-horário visto de fora).
type Triangle [3]Vertex

// BoundingBox é a caixa local (em blocos) tocada por algo visível, com padding de luz/névoa.
type BoundingBox struct {
	Min, Max [3]int8
}

// SpecialObject é um bloco desenhado fora do mesh (árvore, lâmpada, névoa, tesouro).
type SpecialObject struct {
	Pos     [3]uint8
	Type    mapdata.BlockType
	Ambient float32
}

// MeshResult contém a geometria gerada para uma região.
type MeshResult struct {
	Coord util.RegionCoord
	// Slots guarda um conjunto de triângulos por tipo de bloco.
	Slots [mapdata.NumBlockTypes][]Triangle
	BBox  BoundingBox
	Empty bool // nenhum bloco além de ar

	Trees     []SpecialObject
	Lamps     []SpecialObject
	Fogs      []SpecialObject
	Treasures []SpecialObject

	// Opções de picking com que os códigos das faces foram gerados
	Picking    bool
	PickOffset [3]int8
}

// TriangleCount soma os triângulos de todos os slots.
func (r *MeshResult) TriangleCount() int {
	n := 0
	for i := range r.Slots {
		n += len(r.Slots[i])
	}
	return n
}

// Options controla as etapas opcionais do mesher.
type Options struct {
	Smoothing      bool
	MergeNormals   bool
	Noise          bool
	NoiseSeed      int64
	AmbientSamples int // 5 ou 9

	// Picking codifica cada face numa cor única para seleção por clique.
	Picking    bool
	PickOffset [3]int8 // região relativa ao observador, -1..1 por eixo
}

// DefaultOptions retorna as opções usadas pelo cliente por padrão.
func DefaultOptions() Options {
	return Options{
		Smoothing:      true,
		MergeNormals:   true,
		Noise:          true,
		NoiseSeed:      1,
		AmbientSamples: 9,
	}
}

// Neighborhood são as 27 regiões ao redor (e incluindo) a região central.
// Uma entrada nil é tratada como toda de ar.
type Neighborhood [27]*mapdata.BlockView

// NeighborIndex converte um offset (-1..1 por eixo) em índice do Neighborhood.
func NeighborIndex(dx, dy, dz int) int {
	return (dx + 1) + (dy+1)*3 + (dz+1)*9
}

// CenterIndex é o índice da região central.
var CenterIndex = NeighborIndex(0, 0, 0)

// At lê um bloco em coordenadas locais da região central, podendo sair
// até uma região inteira para cada lado. inside=false fora do Neighborhood.
func (nb *Neighborhood) At(x, y, z int) (bt mapdata.BlockType, inside bool) {
	rx, lx, ok1 := split(x)
	ry, ly, ok2 := split(y)
	rz, lz, ok3 := split(z)
	if !ok1 || !ok2 || !ok3 {
		return mapdata.BTAir, false
	}
	return nb[NeighborIndex(rx, ry, rz)].At(lx, ly, lz), true
}

func split(v int) (region, local int, ok bool) {
	switch {
	case v < -util.RegionSize || v >= 2*util.RegionSize:
		return 0, 0, false
	case v < 0:
		return -1, v + util.RegionSize, true
	case v >= util.RegionSize:
		return 1, v - util.RegionSize, true
	}
	return 0, v, true
}

// MeshBuffer acumula os triângulos de um slot durante o job.
type MeshBuffer struct {
	Triangles []Triangle
}

// Lado do cache de raios: células de -1 a RegionSize em cada eixo.
const memoSide = util.RegionSize + 2

// scratch guarda os buffers de trabalho de um job; reciclado via sync.Pool.
type scratch struct {
	lattice []mgl32.Vec3 // deltas de suavização, (RegionSize+1)^3
	ambient []float32    // cache do raio de céu por célula de origem (-1 = não calculado)
	sun     []int8       // cache do raio de sol (-1 = não calculado)
	emitted [mapdata.NumBlockTypes]MeshBuffer
	refs    []vertexRef
}

// Global Pool para reciclar buffers de trabalho e evitar alocação excessiva (GC Pressure)
var scratchPool = sync.Pool{
	New: func() interface{} {
		const lat = (util.RegionSize + 1) * (util.RegionSize + 1) * (util.RegionSize + 1)
		return &scratch{
			lattice: make([]mgl32.Vec3, lat),
			ambient: make([]float32, memoSide*memoSide*memoSide),
			sun:     make([]int8, memoSide*memoSide*memoSide),
		}
	},
}

func getScratch() *scratch {
	s := scratchPool.Get().(*scratch)
	for i := range s.ambient {
		s.ambient[i] = -1
		s.sun[i] = -1
	}
	for i := range s.lattice {
		s.lattice[i] = mgl32.Vec3{}
	}
	for i := range s.emitted {
		s.emitted[i].Triangles = nil
	}
	s.refs = s.refs[:0]
	return s
}

func putScratch(s *scratch) {
	if s == nil {
		return
	}
	scratchPool.Put(s)
}
