package render

import (
	"VoxelStream/cliente/internal/meshing"
	"VoxelStream/shared/mapdata"
	"VoxelStream/shared/util"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// PropInstance é um objeto especial já posicionado no mundo.
type PropInstance struct {
	Type     mapdata.BlockType
	Position rl.Vector3 // centro do bloco, espaço da Raylib
	Ambient  float32
}

// RegionModel representa a geometria renderizável de uma região.
type RegionModel struct {
	Coord     util.RegionCoord
	Slots     map[mapdata.BlockType]rl.Model // um modelo por tipo de bloco
	PickModel rl.Model                       // todas as faces com cor de picking
	HasPick   bool
	Bounds    rl.BoundingBox // caixa em espaço da Raylib, para culling
	Instances []PropInstance
}

// worldBounds converte a caixa local do mesher para o espaço da Raylib.
// O eixo y de blocos vira -z, então os cantos trocam de lado.
func worldBounds(coord util.RegionCoord, box meshing.BoundingBox) rl.BoundingBox {
	o := coord.Origin()
	ox, oy, oz := float32(o.X), float32(o.Y), float32(o.Z)
	a := util.BlockToWorldPos(ox+float32(box.Min[0]), oy+float32(box.Min[1]), oz+float32(box.Min[2]))
	b := util.BlockToWorldPos(ox+float32(box.Max[0]), oy+float32(box.Max[1]), oz+float32(box.Max[2]))
	return rl.BoundingBox{
		Min: rl.Vector3{X: min(a.X, b.X), Y: min(a.Y, b.Y), Z: min(a.Z, b.Z)},
		Max: rl.Vector3{X: max(a.X, b.X), Y: max(a.Y, b.Y), Z: max(a.Z, b.Z)},
	}
}

// collectInstances junta os objetos especiais de um resultado.
func collectInstances(res *meshing.MeshResult) []PropInstance {
	n := len(res.Trees) + len(res.Lamps) + len(res.Fogs) + len(res.Treasures)
	if n == 0 {
		return nil
	}
	o := res.Coord.Origin()
	out := make([]PropInstance, 0, n)
	for _, list := range [][]meshing.SpecialObject{res.Trees, res.Lamps, res.Fogs, res.Treasures} {
		for _, obj := range list {
			pos := util.BlockToWorldPos(
				float32(o.X)+float32(obj.Pos[0])+0.5,
				float32(o.Y)+float32(obj.Pos[1])+0.5,
				float32(o.Z)+float32(obj.Pos[2])+0.5,
			)
			out = append(out, PropInstance{Type: obj.Type, Position: pos, Ambient: obj.Ambient})
		}
	}
	return out
}

// isTranslucent indica slots desenhados depois dos opacos, com blending.
func isTranslucent(bt mapdata.BlockType, color [4]uint8) bool {
	return bt.IsWater() || color[3] < 255
}
