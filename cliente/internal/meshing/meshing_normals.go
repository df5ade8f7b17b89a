package meshing

import (
	"sort"

	"VoxelStream/shared/mapdata"

	"github.com/go-gl/mathgl/mgl32"
)

type vertexRef struct {
	pos mgl32.Vec3
	tri int
	v   int
}

func posLess(a, b mgl32.Vec3) bool {
	if a[0] != b[0] {
		return a[0] < b[0]
	}
	if a[1] != b[1] {
		return a[1] < b[1]
	}
	return a[2] < b[2]
}

// mergeNormals faz cada grupo de vértices na mesma posição compartilhar a
// média das normais. Blocos rígidos e semitransparentes mantêm arestas vivas.
func (j *job) mergeNormals(slot mapdata.BlockType, tris []Triangle) {
	if len(tris) == 0 || slot.Rigid() || slot.SemiTransparent() {
		return
	}

	refs := j.scratch.refs[:0]
	for t := range tris {
		for v := 0; v < 3; v++ {
			refs = append(refs, vertexRef{pos: tris[t][v].Pos, tri: t, v: v})
		}
	}
	// Estável: vértices iguais mantêm a ordem de emissão, o resultado é determinístico
	sort.SliceStable(refs, func(a, b int) bool {
		return posLess(refs[a].pos, refs[b].pos)
	})

	for start := 0; start < len(refs); {
		end := start + 1
		for end < len(refs) && refs[end].pos == refs[start].pos {
			end++
		}
		if end-start > 1 {
			var sum mgl32.Vec3
			for _, r := range refs[start:end] {
				sum = sum.Add(tris[r.tri][r.v].Normal)
			}
			if sum.Len() > 1e-6 {
				n := sum.Normalize()
				for _, r := range refs[start:end] {
					tris[r.tri][r.v].Normal = n
				}
			}
		}
		start = end
	}
	j.scratch.refs = refs
}
