package meshing

import (
	"encoding/binary"
	"math"

	"VoxelStream/shared/util"

	"github.com/cespare/xxhash/v2"
)

// GeometryData contém os buffers de vértices para uma malha, prontos para a GPU.
type GeometryData struct {
	Vertices []float32
	Normals  []float32
	Colors   []uint8
	UVs      []float32
}

// VertexCount retorna o número de vértices.
func (g GeometryData) VertexCount() int {
	return len(g.Vertices) / 3
}

// Clone cria uma cópia profunda dos dados para evitar corrupção de memória.
func (g GeometryData) Clone() GeometryData {
	clone := GeometryData{}
	if len(g.Vertices) > 0 {
		clone.Vertices = append([]float32(nil), g.Vertices...)
	}
	if len(g.Normals) > 0 {
		clone.Normals = append([]float32(nil), g.Normals...)
	}
	if len(g.Colors) > 0 {
		clone.Colors = append([]uint8(nil), g.Colors...)
	}
	if len(g.UVs) > 0 {
		clone.UVs = append([]float32(nil), g.UVs...)
	}
	return clone
}

// shade combina sol e ambiente num tom de cinza.
func shade(v Vertex) uint8 {
	f := 0.35 + 0.35*v.Ambient + 0.3*v.Light
	return uint8(util.Clamp01(f) * 255)
}

// Geometry converte um slot para o espaço da Raylib (y para cima), já
// posicionado no mundo. Em modo picking a cor carrega o código da face.
func (r *MeshResult) Geometry(slot int, picking bool) GeometryData {
	tris := r.Slots[slot]
	n := len(tris) * 3
	g := GeometryData{
		Vertices: make([]float32, 0, n*3),
		Normals:  make([]float32, 0, n*3),
		Colors:   make([]uint8, 0, n*4),
		UVs:      make([]float32, 0, n*2),
	}
	origin := r.Coord.Origin()
	ox, oy, oz := float32(origin.X), float32(origin.Y), float32(origin.Z)

	for _, tri := range tris {
		for _, v := range tri {
			p := util.BlockToWorldPos(ox+v.Pos[0], oy+v.Pos[1], oz+v.Pos[2])
			nn := util.BlockToWorldPos(v.Normal[0], v.Normal[1], v.Normal[2])
			g.Vertices = append(g.Vertices, p.X, p.Y, p.Z)
			g.Normals = append(g.Normals, nn.X, nn.Y, nn.Z)
			g.UVs = append(g.UVs, v.UV[0], v.UV[1])
			if picking {
				c := PickColor(v.Pick)
				g.Colors = append(g.Colors, c[0], c[1], c[2], c[3])
			} else {
				s := shade(v)
				g.Colors = append(g.Colors, s, s, s, 255)
			}
		}
	}
	return g
}

// Digest resume o resultado inteiro num hash estável, usado para comparar
// saídas do mesher (determinismo) sem guardar cópias.
func (r *MeshResult) Digest() uint64 {
	h := xxhash.New()
	var buf [4]byte
	putU32 := func(v uint32) {
		binary.LittleEndian.PutUint32(buf[:], v)
		h.Write(buf[:])
	}
	putF := func(f float32) { putU32(math.Float32bits(f)) }

	putU32(uint32(r.Coord.X))
	putU32(uint32(r.Coord.Y))
	putU32(uint32(r.Coord.Z))
	for slot, tris := range r.Slots {
		if len(tris) == 0 {
			continue
		}
		putU32(uint32(slot))
		putU32(uint32(len(tris)))
		for _, tri := range tris {
			for _, v := range tri {
				for a := 0; a < 3; a++ {
					putF(v.Pos[a])
					putF(v.Normal[a])
				}
				putF(v.UV[0])
				putF(v.UV[1])
				putF(v.Light)
				putF(v.Ambient)
				putU32(v.Pick)
			}
		}
	}
	for a := 0; a < 3; a++ {
		putU32(uint32(r.BBox.Min[a]))
		putU32(uint32(r.BBox.Max[a]))
	}
	for _, list := range [][]SpecialObject{r.Trees, r.Lamps, r.Fogs, r.Treasures} {
		putU32(uint32(len(list)))
		for _, o := range list {
			putU32(uint32(o.Pos[0]) | uint32(o.Pos[1])<<8 | uint32(o.Pos[2])<<16 | uint32(o.Type)<<24)
			putF(o.Ambient)
		}
	}
	return h.Sum64()
}
