package meshing

import (
	"VoxelStream/shared/mapdata"
	"VoxelStream/shared/util"

	"github.com/go-gl/mathgl/mgl32"
)

// faceCorners lista os 4 cantos (offsets 0/1 do bloco) de cada face,
// em ordem anti-horária vista de fora.
var faceCorners = map[util.Directions][4][3]int{
	util.DirUp:    {{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1}},
	util.DirDown:  {{0, 0, 0}, {0, 1, 0}, {1, 1, 0}, {1, 0, 0}},
	util.DirEast:  {{1, 0, 0}, {1, 1, 0}, {1, 1, 1}, {1, 0, 1}},
	util.DirWest:  {{0, 0, 0}, {0, 0, 1}, {0, 1, 1}, {0, 1, 0}},
	util.DirNorth: {{0, 1, 0}, {0, 1, 1}, {1, 1, 1}, {1, 1, 0}},
	util.DirSouth: {{0, 0, 0}, {1, 0, 0}, {1, 0, 1}, {0, 0, 1}},
}

// faceNormals é a normal geométrica de cada face sem suavização.
var faceNormals = map[util.Directions]mgl32.Vec3{
	util.DirUp:    {0, 0, 1},
	util.DirDown:  {0, 0, -1},
	util.DirEast:  {1, 0, 0},
	util.DirWest:  {-1, 0, 0},
	util.DirNorth: {0, 1, 0},
	util.DirSouth: {0, -1, 0},
}

// uvAxes indica quais componentes da posição viram (u, v) em cada face.
func uvAxes(face util.Directions) (int, int) {
	switch face {
	case util.DirUp, util.DirDown:
		return 0, 1
	case util.DirNorth, util.DirSouth:
		return 0, 2
	default:
		return 1, 2
	}
}

// grassThreshold é o mínimo de normal.z para um triângulo de terra virar grama.
const grassThreshold = 0.7

// emitFace gera os dois triângulos de uma face visível do bloco (x, y, z).
func (j *job) emitFace(x, y, z int, bt mapdata.BlockType, face util.Directions, faceIndex int) {
	ox, oy, oz := lightOrigin(x, y, z, face)
	light := j.sunAt(ox, oy, oz)
	ambient := j.ambientAt(ox, oy, oz)

	var pick uint32
	if j.opts.Picking {
		pick = EncodePick(x, y, z, faceIndex, j.opts.PickOffset)
	}

	ua, va := uvAxes(face)
	var verts [4]Vertex
	for c, corner := range faceCorners[face] {
		cx, cy, cz := x+corner[0], y+corner[1], z+corner[2]
		pos := mgl32.Vec3{float32(cx), float32(cy), float32(cz)}.Add(j.delta(cx, cy, cz))
		verts[c] = Vertex{
			Pos:     pos,
			UV:      mgl32.Vec2{pos[ua], pos[va]},
			Light:   light,
			Ambient: ambient,
			Pick:    pick,
		}
	}

	j.emitTriangle(bt, face, Triangle{verts[0], verts[1], verts[2]})
	j.emitTriangle(bt, face, Triangle{verts[0], verts[2], verts[3]})
}

// emitTriangle calcula a normal do triângulo já deformado e escolhe o slot.
func (j *job) emitTriangle(bt mapdata.BlockType, face util.Directions, tri Triangle) {
	n := tri[1].Pos.Sub(tri[0].Pos).Cross(tri[2].Pos.Sub(tri[0].Pos))
	if n.Len() < 1e-6 {
		n = faceNormals[face]
	} else {
		n = n.Normalize()
	}
	for i := range tri {
		tri[i].Normal = n
	}

	slot := bt
	if bt == mapdata.BTSoil && n[2] > grassThreshold {
		slot = mapdata.BTTopSoil
	}
	buf := &j.scratch.emitted[slot]
	buf.Triangles = append(buf.Triangles, tri)
}
