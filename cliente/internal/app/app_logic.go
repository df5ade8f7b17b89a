package app

import (
	"time"

	"VoxelStream/cliente/internal/meshing"
	"VoxelStream/cliente/internal/scheduler"
	"VoxelStream/shared/config"
	"VoxelStream/shared/util"
)

// mesherOptions traduz a configuração para as opções do mesher.
func mesherOptions(cfg *config.Config, picking bool) meshing.Options {
	return meshing.Options{
		Smoothing:      cfg.Smoothing,
		MergeNormals:   cfg.MergeNormals,
		Noise:          cfg.Noise,
		NoiseSeed:      cfg.NoiseSeed,
		AmbientSamples: cfg.AmbientSamples,
		Picking:        picking,
	}
}

// streamerConfig deriva os parâmetros do streamer da configuração.
func streamerConfig(cfg *config.Config) StreamerConfig {
	sc := DefaultStreamerConfig(cfg.ViewRadius)
	sc.KeepRadius = cfg.KeepRadius()
	sc.ChecksumInterval = time.Duration(cfg.ChecksumInterval) * time.Second
	return sc
}

// resolvePick converte um acerto do buffer de picking em bloco absoluto.
func resolvePick(hit meshing.PickHit, viewer util.RegionCoord) util.BlockPos {
	region := viewer.Add(util.RegionCoord{X: int32(hit.Offset[0]), Y: int32(hit.Offset[1]), Z: int32(hit.Offset[2])})
	o := region.Origin()
	return util.BlockPos{X: o.X + int64(hit.X), Y: o.Y + int64(hit.Y), Z: o.Z + int64(hit.Z)}
}

// adjacent é o bloco vizinho através da face (onde um bloco novo é colocado).
func adjacent(pos util.BlockPos, face util.Directions) util.BlockPos {
	off := util.DirOffsets[face]
	return util.BlockPos{X: pos.X + int64(off.X), Y: pos.Y + int64(off.Y), Z: pos.Z + int64(off.Z)}
}

// neighborsWithin lista as regiões do cubo de raio r em volta de c.
func neighborsWithin(c util.RegionCoord, r int32) []util.RegionCoord {
	out := make([]util.RegionCoord, 0, (2*r+1)*(2*r+1)*(2*r+1))
	for dz := -r; dz <= r; dz++ {
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				out = append(out, c.Add(util.RegionCoord{X: dx, Y: dy, Z: dz}))
			}
		}
	}
	return out
}

// pickGate segura o picking enquanto as regiões próximas ainda exibem
// malhas com códigos de outro observador.
type pickGate struct {
	viewer  util.RegionCoord
	pending map[util.RegionCoord]struct{}
}

// Begin exige malhas novas de coords, codificadas em relação a viewer.
func (g *pickGate) Begin(viewer util.RegionCoord, coords []util.RegionCoord) {
	g.viewer = viewer
	g.pending = make(map[util.RegionCoord]struct{}, len(coords))
	for _, c := range coords {
		g.pending[c] = struct{}{}
	}
}

// Installed libera as regiões cujas malhas instaladas já usam o observador atual.
func (g *pickGate) Installed(meshes []scheduler.InstalledMesh) {
	for _, m := range meshes {
		if m.Mesh == nil || !m.Mesh.Picking {
			continue
		}
		if m.Mesh.PickOffset == scheduler.PickOffset(m.Coord, g.viewer) {
			delete(g.pending, m.Coord)
		}
	}
}

// Reset descarta as pendências.
func (g *pickGate) Reset() {
	g.pending = nil
}

// Ready indica se os códigos do buffer podem ser decodificados.
func (g *pickGate) Ready() bool {
	return len(g.pending) == 0
}

// setPicking liga ou desliga o modo de edição. As malhas precisam ser
// refeitas com ou sem os códigos de picking.
func (a *App) setPicking(on bool) {
	a.picking = on
	a.renderer.Picking = on
	a.pickViewer = a.Cam.Region()
	a.pool.SetMesherOptions(mesherOptions(a.Config, on))
	if !on {
		a.Selected = nil
		a.pickGate.Reset()
		return
	}
	a.pickGate.Begin(a.pickViewer, a.pool.MarkDirty(neighborsWithin(a.pickViewer, 2)...))
}

// applyMesherToggles reaplica as opções depois de uma troca pelo teclado.
func (a *App) applyMesherToggles() {
	a.pool.SetMesherOptions(mesherOptions(a.Config, a.picking))
}
