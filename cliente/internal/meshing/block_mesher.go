package meshing

import (
	"fmt"

	"VoxelStream/shared/mapdata"
	"VoxelStream/shared/util"
)

// Mesh transforma os blocos de uma região (e das 26 vizinhas) em geometria.
// É uma função pura: pode rodar em qualquer goroutine e, para as mesmas
// entradas, produz sempre a mesma saída.
func Mesh(coord util.RegionCoord, nb *Neighborhood, opts Options) (*MeshResult, error) {
	if nb == nil || nb[CenterIndex] == nil {
		return nil, fmt.Errorf("%w: %v", ErrNoData, coord)
	}

	s := getScratch()
	defer putScratch(s)

	j := &job{
		nb:      nb,
		opts:    opts,
		origin:  coord.Origin(),
		scratch: s,
	}
	res := &MeshResult{Coord: coord, Picking: opts.Picking, PickOffset: opts.PickOffset}

	if opts.Smoothing {
		j.buildLattice()
	}

	var bbox bboxBuilder
	center := nb[CenterIndex]

	for z := 0; z < util.RegionSize; z++ {
		for y := 0; y < util.RegionSize; y++ {
			for x := 0; x < util.RegionSize; x++ {
				bt := center.At(x, y, z)
				if bt == mapdata.BTAir {
					continue
				}
				bbox.addBlock(x, y, z, bt)
				j.collectSpecial(res, x, y, z, bt)

				if !bt.Meshed() {
					continue
				}
				for faceIndex, face := range util.FaceDirs {
					off := util.DirOffsets[face]
					neighbor := j.block(x+int(off.X), y+int(off.Y), z+int(off.Z))
					if !shouldDrawFace(bt, neighbor) {
						continue
					}
					j.emitFace(x, y, z, bt, face, faceIndex)
				}
			}
		}
	}

	res.BBox = bbox.box()
	res.Empty = !bbox.any

	for slot := range s.emitted {
		tris := s.emitted[slot].Triangles
		if len(tris) == 0 {
			continue
		}
		if opts.MergeNormals {
			j.mergeNormals(mapdata.BlockType(slot), tris)
		}
		res.Slots[slot] = tris
	}
	return res, nil
}
