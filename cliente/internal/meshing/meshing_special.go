package meshing

import (
	"VoxelStream/shared/mapdata"
	"VoxelStream/shared/util"
)

// Padding da caixa para blocos que afetam a vizinhança: lâmpadas iluminam
// mais para baixo, névoa sobe.
var (
	lampPadMin = [3]int{-4, -4, -4}
	lampPadMax = [3]int{4, 4, 2}
	fogPadMin  = [3]int{-2, -2, -1}
	fogPadMax  = [3]int{2, 2, 3}
)

// bboxBuilder acumula a caixa em coordenadas de canto (um bloco em 0 vai de 0 a 1).
type bboxBuilder struct {
	min, max [3]int
	any      bool
}

func (b *bboxBuilder) add(lo, hi [3]int) {
	if !b.any {
		b.min, b.max, b.any = lo, hi, true
		return
	}
	for a := 0; a < 3; a++ {
		if lo[a] < b.min[a] {
			b.min[a] = lo[a]
		}
		if hi[a] > b.max[a] {
			b.max[a] = hi[a]
		}
	}
}

func (b *bboxBuilder) addBlock(x, y, z int, bt mapdata.BlockType) {
	lo := [3]int{x, y, z}
	hi := [3]int{x + 1, y + 1, z + 1}
	b.add(lo, hi)

	var padMin, padMax [3]int
	switch bt.Special() {
	case mapdata.SpecialLamp:
		padMin, padMax = lampPadMin, lampPadMax
	case mapdata.SpecialFog:
		padMin, padMax = fogPadMin, fogPadMax
	default:
		return
	}
	for a := 0; a < 3; a++ {
		lo[a] += padMin[a]
		hi[a] += padMax[a]
	}
	b.add(lo, hi)
}

func (b *bboxBuilder) box() BoundingBox {
	var out BoundingBox
	if !b.any {
		return out
	}
	for a := 0; a < 3; a++ {
		out.Min[a] = util.ClampInt8(b.min[a])
		out.Max[a] = util.ClampInt8(b.max[a])
	}
	return out
}

// collectSpecial adiciona o bloco à lista da sua categoria.
func (j *job) collectSpecial(res *MeshResult, x, y, z int, bt mapdata.BlockType) {
	kind := bt.Special()
	if kind == mapdata.SpecialNone {
		return
	}
	obj := SpecialObject{
		Pos:     [3]uint8{uint8(x), uint8(y), uint8(z)},
		Type:    bt,
		Ambient: j.ambientAt(x, y, z),
	}
	switch kind {
	case mapdata.SpecialTree:
		res.Trees = append(res.Trees, obj)
	case mapdata.SpecialLamp:
		res.Lamps = append(res.Lamps, obj)
	case mapdata.SpecialFog:
		res.Fogs = append(res.Fogs, obj)
	case mapdata.SpecialTreasure:
		res.Treasures = append(res.Treasures, obj)
	}
}
