package meshing

import "VoxelStream/shared/util"

// Layout do código de picking (24 bits, cabe em RGB):
// bits 0-4 x, 5-9 y, 10-14 z, 15-17 face+1, 18-23 offset+1 da região (2 bits por eixo).
// A face é gravada a partir de 1 para que nenhum código válido seja zero.
const (
	pickBitsCoord = 5
	pickMaskCoord = 1<<pickBitsCoord - 1
	pickFaceShift = 15
	pickOffShift  = 18
)

// PickHit é o resultado decodificado de um clique no buffer de picking.
type PickHit struct {
	X, Y, Z int
	Face    util.Directions
	Offset  [3]int8
}

// EncodePick monta o código de uma face. faceIndex indexa util.FaceDirs.
func EncodePick(x, y, z, faceIndex int, offset [3]int8) uint32 {
	code := uint32(x&pickMaskCoord) |
		uint32(y&pickMaskCoord)<<pickBitsCoord |
		uint32(z&pickMaskCoord)<<(2*pickBitsCoord) |
		uint32((faceIndex+1)&7)<<pickFaceShift
	for a := 0; a < 3; a++ {
		code |= uint32(int(offset[a])+1) & 3 << (pickOffShift + 2*a)
	}
	return code
}

// DecodePick reverte EncodePick. ok=false para códigos inválidos (ex.: fundo preto).
func DecodePick(code uint32) (PickHit, bool) {
	if code == 0 || code>>24 != 0 {
		return PickHit{}, false
	}
	face := int(code>>pickFaceShift)&7 - 1
	if face < 0 || face >= len(util.FaceDirs) {
		return PickHit{}, false
	}
	hit := PickHit{
		X:    int(code & pickMaskCoord),
		Y:    int(code>>pickBitsCoord) & pickMaskCoord,
		Z:    int(code>>(2*pickBitsCoord)) & pickMaskCoord,
		Face: util.FaceDirs[face],
	}
	for a := 0; a < 3; a++ {
		o := int(code>>(pickOffShift+2*a)) & 3
		if o == 3 {
			return PickHit{}, false
		}
		hit.Offset[a] = int8(o - 1)
	}
	return hit, true
}

// PickColor separa o código em RGBA.
func PickColor(code uint32) [4]uint8 {
	return [4]uint8{uint8(code), uint8(code >> 8), uint8(code >> 16), 255}
}
