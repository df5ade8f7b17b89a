// Package terrain gera regiões de forma determinística a partir de uma seed.
// A mesma seed sempre produz os mesmos blocos, então o servidor pode
// descartar o cache sem mudar o mundo.
package terrain

import (
	"encoding/binary"
	"math"

	"VoxelStream/shared/mapdata"
	"VoxelStream/shared/util"

	"github.com/cespare/xxhash/v2"
	"github.com/ojrac/opensimplex-go"
)

// FlagGenerated marca no cabeçalho as regiões criadas pelo gerador.
const FlagGenerated uint32 = 1

var trees = []mapdata.BlockType{
	mapdata.BTTree1, mapdata.BTTree2, mapdata.BTTree3, mapdata.BTTree4, mapdata.BTTree5,
}

// Generator produz os blocos crus de uma região.
type Generator struct {
	Seed       int64
	Scale      float64 // Frequência do relevo
	Amplitude  float64 // Variação máxima de altura em blocos
	BaseHeight float64
	SeaLevel   int64
	SoilDepth  int64

	height opensimplex.Noise
	biome  opensimplex.Noise
}

func New(seed int64) *Generator {
	return &Generator{
		Seed:       seed,
		Scale:      0.012,
		Amplitude:  20,
		BaseHeight: 16,
		SeaLevel:   12,
		SoilDepth:  3,
		height:     opensimplex.New(seed),
		biome:      opensimplex.New(seed + 42),
	}
}

// SurfaceHeight devolve o z do bloco sólido mais alto da coluna (wx, wy).
func (g *Generator) SurfaceHeight(wx, wy int64) int64 {
	x := float64(wx) * g.Scale
	y := float64(wy) * g.Scale

	// Três oitavas, normalizadas para [-1, 1]
	n := g.height.Eval2(x, y) +
		0.5*g.height.Eval2(x*2, y*2) +
		0.25*g.height.Eval2(x*4, y*4)
	n /= 1.75

	return int64(math.Floor(g.BaseHeight + n*g.Amplitude))
}

// forest indica se a coluna pertence a um bioma de floresta.
func (g *Generator) forest(wx, wy int64) bool {
	return g.biome.Eval2(float64(wx)*0.004, float64(wy)*0.004) > 0.2
}

// beach é verdade para superfícies rente à água, que viram areia.
func (g *Generator) beach(surface int64) bool {
	return surface <= g.SeaLevel+1
}

// Generate preenche uma região inteira. O slice tem util.RegionVolume bytes
// na ordem de mapdata.Index.
func (g *Generator) Generate(coord util.RegionCoord) []byte {
	blocks := make([]byte, util.RegionVolume)
	origin := coord.Origin()

	for y := 0; y < util.RegionSize; y++ {
		for x := 0; x < util.RegionSize; x++ {
			wx := origin.X + int64(x)
			wy := origin.Y + int64(y)
			surface := g.SurfaceHeight(wx, wy)

			// Coluna inteira acima do relevo e da água: nada a fazer
			if origin.Z > surface+1 && origin.Z > g.SeaLevel {
				continue
			}

			for z := 0; z < util.RegionSize; z++ {
				bt := g.BlockAt(wx, wy, origin.Z+int64(z), surface)
				if bt != mapdata.BTAir {
					blocks[mapdata.Index(x, y, z)] = byte(bt)
				}
			}
		}
	}
	return blocks
}

// BlockAt decide o bloco de uma posição dada a altura da superfície da coluna.
func (g *Generator) BlockAt(wx, wy, wz, surface int64) mapdata.BlockType {
	switch {
	case wz <= surface-g.SoilDepth:
		return mapdata.BTStone
	case wz <= surface:
		if g.beach(surface) {
			return mapdata.BTSand
		}
		return mapdata.BTSoil
	case wz <= g.SeaLevel:
		return mapdata.BTWater
	case wz == surface+1:
		return g.decoration(wx, wy, surface)
	}
	return mapdata.BTAir
}

// decoration escolhe o objeto apoiado sobre a superfície, se houver.
func (g *Generator) decoration(wx, wy, surface int64) mapdata.BlockType {
	if g.beach(surface) {
		return mapdata.BTAir
	}

	r := g.hash01(wx, wy, 0)
	if g.forest(wx, wy) {
		switch {
		case r < 0.06:
			return trees[int(g.hash01(wx, wy, 1)*float64(len(trees)))%len(trees)]
		case r < 0.18:
			return mapdata.BTTuft
		}
		return mapdata.BTAir
	}

	switch {
	case r < 0.008:
		return trees[int(g.hash01(wx, wy, 1)*float64(len(trees)))%len(trees)]
	case r < 0.05:
		return mapdata.BTTuft
	case r < 0.075:
		return mapdata.BTFlowers
	case r < 0.0765:
		return mapdata.BTLamp1
	case r < 0.0772:
		return mapdata.BTTreasure
	}
	return mapdata.BTAir
}

// hash01 devolve um valor estável em [0, 1) para a coluna e o canal dados.
func (g *Generator) hash01(wx, wy int64, channel uint64) float64 {
	var buf [32]byte
	binary.LittleEndian.PutUint64(buf[0:8], uint64(g.Seed))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(wx))
	binary.LittleEndian.PutUint64(buf[16:24], uint64(wy))
	binary.LittleEndian.PutUint64(buf[24:32], channel)
	return float64(xxhash.Sum64(buf[:])>>11) / (1 << 53)
}
