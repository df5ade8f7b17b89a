package meshing

import (
	"VoxelStream/shared/util"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/ojrac/opensimplex-go"
)

const (
	latticeSide = util.RegionSize + 1

	// smoothScale converte o deslocamento heurístico (-1..1) em blocos.
	// Abaixo de 0.5 os pontos nunca cruzam o meio do bloco.
	smoothScale float32 = 0.5
	// surfaceBias é o deslocamento de uma superfície plana (4 sólidos embaixo, 4 livres em cima).
	surfaceBias float32 = 0.2

	noiseFrequency = 0.13
	noiseAmplitude = 0.15
)

func latticeIndex(i, j, k int) int {
	return i + j*latticeSide + k*latticeSide*latticeSide
}

// axisShift calcula o deslocamento ao longo de um eixo a partir do número de
// células sólidas na metade baixa e na metade alta do cubo 2x2x2.
func axisShift(solidLow, solidHigh int) float32 {
	switch {
	case solidLow == solidHigh:
		return 0
	case solidLow == 4 && solidHigh == 0:
		return surfaceBias
	case solidLow == 0 && solidHigh == 4:
		return -surfaceBias
	}
	s := float32(solidLow+solidHigh-4) / 4
	if solidLow > solidHigh {
		// Degrau de chão: o lado mais cheio puxa o ponto para cima
		return s
	}
	return -s
}

// buildLattice calcula o delta de cada ponto da grade (RegionSize+1)^3.
// Pontos da borda são compartilhados com a vizinha e usam os mesmos blocos,
// então as duas regiões chegam ao mesmo delta.
func (j *job) buildLattice() {
	var noise opensimplex.Noise
	if j.opts.Noise {
		noise = opensimplex.New(j.opts.NoiseSeed)
	}

	for k := 0; k < latticeSide; k++ {
		for jy := 0; jy < latticeSide; jy++ {
			for i := 0; i < latticeSide; i++ {
				d, water, ok := j.pointDelta(i, jy, k)
				if !ok {
					continue
				}
				if noise != nil && !water {
					wx := float64(j.origin.X + int64(i))
					wy := float64(j.origin.Y + int64(jy))
					d[2] += float32(noise.Eval2(wx*noiseFrequency, wy*noiseFrequency) * noiseAmplitude)
				}
				j.scratch.lattice[latticeIndex(i, jy, k)] = d
			}
		}
	}
}

// pointDelta aplica as regras de suavização ao cubo 2x2x2 em volta do ponto.
// ok=false significa delta zero (interior, vazio ou bloco rígido).
func (j *job) pointDelta(i, jy, k int) (d mgl32.Vec3, water, ok bool) {
	var (
		solid    [2][2][2]bool
		total    int
		rigidHit bool
	)
	for dz := 0; dz < 2; dz++ {
		for dy := 0; dy < 2; dy++ {
			for dx := 0; dx < 2; dx++ {
				bt := j.block(i-1+dx, jy-1+dy, k-1+dz)
				if bt.Rigid() {
					rigidHit = true
				}
				if bt.IsWater() {
					water = true
				}
				if !bt.SemiTransparent() {
					solid[dx][dy][dz] = true
					total++
				}
			}
		}
	}
	if rigidHit || total == 0 || total == 8 {
		return mgl32.Vec3{}, water, false
	}

	var low, high [3]int
	for dz := 0; dz < 2; dz++ {
		for dy := 0; dy < 2; dy++ {
			for dx := 0; dx < 2; dx++ {
				if !solid[dx][dy][dz] {
					continue
				}
				side := [3]int{dx, dy, dz}
				for axis := 0; axis < 3; axis++ {
					if side[axis] == 0 {
						low[axis]++
					} else {
						high[axis]++
					}
				}
			}
		}
	}

	d = mgl32.Vec3{
		axisShift(low[0], high[0]) * smoothScale,
		axisShift(low[1], high[1]) * smoothScale,
		axisShift(low[2], high[2]) * smoothScale,
	}
	if water {
		// Água mantém a superfície plana
		d[2] = 0
	}
	return d, water, true
}

// delta retorna o deslocamento de um canto (coordenadas locais 0..RegionSize).
func (j *job) delta(i, jy, k int) mgl32.Vec3 {
	if !j.opts.Smoothing {
		return mgl32.Vec3{}
	}
	return j.scratch.lattice[latticeIndex(i, jy, k)]
}
