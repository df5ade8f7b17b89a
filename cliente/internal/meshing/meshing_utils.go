package meshing

import (
	"VoxelStream/shared/mapdata"
	"VoxelStream/shared/util"
)

// Raios para o céu: o primeiro é vertical; 5 amostras usam as diagonais
// dos eixos, 9 amostras somam as diagonais dos cantos.
var skyRays = [9][3]int{
	{0, 0, 1},
	{1, 0, 1}, {-1, 0, 1}, {0, 1, 1}, {0, -1, 1},
	{1, 1, 1}, {-1, 1, 1}, {1, -1, 1}, {-1, -1, 1},
}

// sunStep é o passo fixo do raio em direção ao sol.
var sunStep = [3]int{1, 1, 2}

// job agrupa o estado de um único Mesh.
type job struct {
	nb      *Neighborhood
	opts    Options
	origin  util.BlockPos // canto mínimo da região em coordenadas absolutas
	scratch *scratch
}

func (j *job) block(x, y, z int) mapdata.BlockType {
	bt, _ := j.nb.At(x, y, z)
	return bt
}

// shouldDrawFace decide se a face entre current e neighbor fica visível.
func shouldDrawFace(current, neighbor mapdata.BlockType) bool {
	if !neighbor.SemiTransparent() {
		return false
	}
	// Água com água, vidro com vidro: a face interna não aparece
	if current.SemiTransparent() && neighbor == current {
		return false
	}
	return true
}

func memoIndex(x, y, z int) (int, bool) {
	x, y, z = x+1, y+1, z+1
	if x < 0 || y < 0 || z < 0 || x >= memoSide || y >= memoSide || z >= memoSide {
		return 0, false
	}
	return x + y*memoSide + z*memoSide*memoSide, true
}

// castRay anda a partir da célula de origem (sem testá-la) até sair do
// Neighborhood (visível) ou encontrar um bloco opaco (bloqueado).
func (j *job) castRay(x, y, z int, step [3]int) bool {
	for {
		x, y, z = x+step[0], y+step[1], z+step[2]
		bt, inside := j.nb.At(x, y, z)
		if !inside {
			return true
		}
		if !bt.SemiTransparent() {
			return false
		}
	}
}

// ambientAt retorna a fração dos raios de céu que escapam a partir da célula.
func (j *job) ambientAt(x, y, z int) float32 {
	idx, cached := memoIndex(x, y, z)
	if cached {
		if v := j.scratch.ambient[idx]; v >= 0 {
			return v
		}
	}

	samples := j.opts.AmbientSamples
	if samples != 5 {
		samples = 9
	}
	hits := 0
	for i := 0; i < samples; i++ {
		if j.castRay(x, y, z, skyRays[i]) {
			hits++
		}
	}
	v := float32(hits) / float32(samples)
	if cached {
		j.scratch.ambient[idx] = v
	}
	return v
}

// sunAt retorna 1 se o raio em direção ao sol escapa, 0 caso contrário.
func (j *job) sunAt(x, y, z int) float32 {
	idx, cached := memoIndex(x, y, z)
	if cached {
		if v := j.scratch.sun[idx]; v >= 0 {
			return float32(v)
		}
	}
	var v int8
	if j.castRay(x, y, z, sunStep) {
		v = 1
	}
	if cached {
		j.scratch.sun[idx] = v
	}
	return float32(v)
}

// lightOrigin escolhe a célula de onde saem os raios de uma face:
// a vizinha da face, exceto para a face de baixo, que usa o próprio bloco.
func lightOrigin(x, y, z int, face util.Directions) (int, int, int) {
	if face == util.DirDown {
		return x, y, z
	}
	off := util.DirOffsets[face]
	return x + int(off.X), y + int(off.Y), z + int(off.Z)
}
