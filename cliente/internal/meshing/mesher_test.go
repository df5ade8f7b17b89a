package meshing

import (
	"math"
	"math/rand"
	"testing"

	"VoxelStream/shared/mapdata"
	"VoxelStream/shared/util"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// world descreve blocos em coordenadas locais da região central
// (podem ir de -32 a 63 para alcançar as vizinhas).
type world map[[3]int]mapdata.BlockType

func (w world) neighborhood() *Neighborhood {
	blocks := map[int][]byte{CenterIndex: make([]byte, util.RegionVolume)}
	for p, bt := range w {
		rx, lx, ok1 := split(p[0])
		ry, ly, ok2 := split(p[1])
		rz, lz, ok3 := split(p[2])
		if !ok1 || !ok2 || !ok3 {
			panic("posição fora do neighborhood")
		}
		idx := NeighborIndex(rx, ry, rz)
		if blocks[idx] == nil {
			blocks[idx] = make([]byte, util.RegionVolume)
		}
		blocks[idx][mapdata.Index(lx, ly, lz)] = byte(bt)
	}
	var nb Neighborhood
	for idx, b := range blocks {
		nb[idx] = mapdata.NewBlockView(b)
	}
	return &nb
}

// flat desliga todas as etapas opcionais para facilitar as contas.
var flat = Options{AmbientSamples: 9}

func mustMesh(t *testing.T, w world, opts Options) *MeshResult {
	t.Helper()
	res, err := Mesh(util.NewRegionCoord(0, 0, 0), w.neighborhood(), opts)
	require.NoError(t, err)
	return res
}

func TestIsolatedStone(t *testing.T) {
	for _, opts := range []Options{flat, DefaultOptions()} {
		res := mustMesh(t, world{{0, 0, 0}: mapdata.BTStone}, opts)

		assert.Equal(t, 12, res.TriangleCount())
		assert.Len(t, res.Slots[mapdata.BTStone], 12)
		assert.False(t, res.Empty)
		assert.Equal(t, BoundingBox{Min: [3]int8{0, 0, 0}, Max: [3]int8{1, 1, 1}}, res.BBox)

		for _, tri := range res.Slots[mapdata.BTStone] {
			for _, v := range tri {
				assert.Equal(t, float32(1), v.Light)
				assert.Equal(t, float32(1), v.Ambient)
			}
		}
	}
}

func TestEmptyRegion(t *testing.T) {
	res := mustMesh(t, world{}, DefaultOptions())
	assert.True(t, res.Empty)
	assert.Zero(t, res.TriangleCount())
	assert.Equal(t, BoundingBox{}, res.BBox)
}

func TestMissingCenterFails(t *testing.T) {
	var nb Neighborhood
	_, err := Mesh(util.RegionCoord{}, &nb, flat)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestEnclosedBlockHasNoFaces(t *testing.T) {
	w := world{{5, 5, 5}: mapdata.BTStone}
	for _, d := range util.FaceDirs {
		off := util.DirOffsets[d]
		w[[3]int{5 + int(off.X), 5 + int(off.Y), 5 + int(off.Z)}] = mapdata.BTStone
	}
	res := mustMesh(t, w, flat)

	// Cada um dos 6 vizinhos expõe 5 faces; o bloco do meio não contribui
	assert.Equal(t, 6*5*2, res.TriangleCount())
}

func TestTransparencyRule(t *testing.T) {
	tests := []struct {
		name  string
		w     world
		slots map[mapdata.BlockType]int
	}{
		{
			name:  "água com água não tem face interna",
			w:     world{{0, 0, 0}: mapdata.BTWater, {1, 0, 0}: mapdata.BTWater},
			slots: map[mapdata.BlockType]int{mapdata.BTWater: 20},
		},
		{
			name:  "água ao lado de pedra",
			w:     world{{0, 0, 0}: mapdata.BTWater, {1, 0, 0}: mapdata.BTStone},
			slots: map[mapdata.BlockType]int{mapdata.BTWater: 10, mapdata.BTStone: 12},
		},
		{
			name:  "vidro com água mostra as duas faces",
			w:     world{{0, 0, 0}: mapdata.BTWindow, {1, 0, 0}: mapdata.BTWater},
			slots: map[mapdata.BlockType]int{mapdata.BTWindow: 12, mapdata.BTWater: 12},
		},
		{
			name:  "árvore não gera cubo e não esconde a pedra",
			w:     world{{0, 0, 0}: mapdata.BTTree1, {1, 0, 0}: mapdata.BTStone},
			slots: map[mapdata.BlockType]int{mapdata.BTStone: 12},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := mustMesh(t, tt.w, flat)
			total := 0
			for bt, n := range tt.slots {
				assert.Len(t, res.Slots[bt], n, bt.String())
				total += n
			}
			assert.Equal(t, total, res.TriangleCount())
		})
	}
}

func TestNeighborRegionCulling(t *testing.T) {
	// Bloco na borda leste, vizinho presente na região +x
	res := mustMesh(t, world{{31, 0, 0}: mapdata.BTStone, {32, 0, 0}: mapdata.BTStone}, flat)
	assert.Equal(t, 10, res.TriangleCount())

	// Vizinha ausente conta como ar
	res = mustMesh(t, world{{31, 0, 0}: mapdata.BTStone}, flat)
	assert.Equal(t, 12, res.TriangleCount())
}

func TestGrassOnTopOfSoil(t *testing.T) {
	res := mustMesh(t, world{{3, 3, 3}: mapdata.BTSoil}, flat)
	assert.Len(t, res.Slots[mapdata.BTTopSoil], 2)
	assert.Len(t, res.Slots[mapdata.BTSoil], 10)
	for _, tri := range res.Slots[mapdata.BTTopSoil] {
		assert.Greater(t, tri[0].Normal[2], float32(grassThreshold))
	}
}

func TestAmbientUnderOverhang(t *testing.T) {
	w := world{{5, 5, 5}: mapdata.BTStone, {5, 5, 8}: mapdata.BTStone}
	res := mustMesh(t, w, flat)

	var top []Triangle
	for _, tri := range res.Slots[mapdata.BTStone] {
		if tri[0].Normal[2] > 0.9 && tri[0].Pos[2] == 6 {
			top = append(top, tri)
		}
	}
	require.Len(t, top, 2)
	// Só o raio vertical bate no teto
	assert.InDelta(t, 8.0/9.0, top[0][0].Ambient, 1e-6)
	assert.Equal(t, float32(1), top[0][0].Light)

	five := flat
	five.AmbientSamples = 5
	res = mustMesh(t, w, five)
	for _, tri := range res.Slots[mapdata.BTStone] {
		if tri[0].Normal[2] > 0.9 && tri[0].Pos[2] == 6 {
			assert.InDelta(t, 4.0/5.0, tri[0].Ambient, 1e-6)
		}
	}
}

func TestSunBlocked(t *testing.T) {
	// Telhado exatamente no caminho do raio do sol a partir do topo
	w := world{{5, 5, 5}: mapdata.BTStone, {6, 6, 8}: mapdata.BTStone}
	res := mustMesh(t, w, flat)
	for _, tri := range res.Slots[mapdata.BTStone] {
		if tri[0].Normal[2] > 0.9 && tri[0].Pos[2] == 6 {
			assert.Equal(t, float32(0), tri[0].Light)
		}
	}
}

func TestSpecialObjects(t *testing.T) {
	w := world{
		{2, 2, 2}: mapdata.BTTree2,
		{4, 4, 4}: mapdata.BTFlowers,
		{8, 8, 8}: mapdata.BTLamp1,
		{9, 9, 9}: mapdata.BTSmallFog,
		{10, 0, 0}: mapdata.BTTreasure,
		{11, 0, 0}: mapdata.BTQuest,
	}
	res := mustMesh(t, w, flat)

	assert.Len(t, res.Trees, 2)
	assert.Len(t, res.Lamps, 1)
	assert.Len(t, res.Fogs, 1)
	assert.Len(t, res.Treasures, 2)
	// Só a lâmpada vira cubo
	assert.Equal(t, 12, res.TriangleCount())
	assert.Equal(t, [3]uint8{8, 8, 8}, res.Lamps[0].Pos)
	assert.Equal(t, float32(1), res.Lamps[0].Ambient)
}

func TestBoundingBoxPadding(t *testing.T) {
	res := mustMesh(t, world{{0, 0, 0}: mapdata.BTLamp2}, flat)
	assert.Equal(t, [3]int8{-4, -4, -4}, res.BBox.Min)
	assert.Equal(t, [3]int8{5, 5, 3}, res.BBox.Max)

	res = mustMesh(t, world{{10, 10, 10}: mapdata.BTBigFog}, flat)
	assert.Equal(t, [3]int8{8, 8, 9}, res.BBox.Min)
	assert.Equal(t, [3]int8{13, 13, 14}, res.BBox.Max)
}

func TestBoundingBoxMonotonic(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	w := world{}
	var prev BoundingBox
	for i := 0; i < 40; i++ {
		p := [3]int{rng.Intn(32), rng.Intn(32), rng.Intn(32)}
		w[p] = mapdata.BTStone
		res := mustMesh(t, w, flat)
		if i > 0 {
			for a := 0; a < 3; a++ {
				assert.LessOrEqual(t, res.BBox.Min[a], prev.Min[a])
				assert.GreaterOrEqual(t, res.BBox.Max[a], prev.Max[a])
			}
		}
		prev = res.BBox
	}
}

func randomWorld(seed int64) world {
	rng := rand.New(rand.NewSource(seed))
	types := []mapdata.BlockType{
		mapdata.BTStone, mapdata.BTSoil, mapdata.BTWater, mapdata.BTBrick,
		mapdata.BTSand, mapdata.BTTree1, mapdata.BTLamp1, mapdata.BTWindow,
	}
	w := world{}
	for i := 0; i < 3000; i++ {
		p := [3]int{rng.Intn(40) - 4, rng.Intn(40) - 4, rng.Intn(40) - 4}
		w[p] = types[rng.Intn(len(types))]
	}
	return w
}

func TestMeshIsDeterministic(t *testing.T) {
	w := randomWorld(99)
	opts := DefaultOptions()
	opts.NoiseSeed = 5

	a := mustMesh(t, w, opts)
	b := mustMesh(t, w, opts)
	assert.Equal(t, a.Digest(), b.Digest())
	assert.Equal(t, a, b)

	// Mudar uma opção muda a saída
	opts.Noise = false
	c := mustMesh(t, w, opts)
	assert.NotEqual(t, a.Digest(), c.Digest())
}

func TestRigidBlocksAreNotSmoothed(t *testing.T) {
	res := mustMesh(t, world{{4, 4, 4}: mapdata.BTBrick}, DefaultOptions())
	require.Len(t, res.Slots[mapdata.BTBrick], 12)
	for _, tri := range res.Slots[mapdata.BTBrick] {
		for _, v := range tri {
			for a := 0; a < 3; a++ {
				assert.Equal(t, float32(math.Round(float64(v.Pos[a]))), v.Pos[a])
			}
		}
	}
}

func TestWaterKeepsFlatSurface(t *testing.T) {
	w := world{}
	for x := 0; x < 6; x++ {
		for y := 0; y < 6; y++ {
			w[[3]int{x, y, 0}] = mapdata.BTSand
			w[[3]int{x, y, 1}] = mapdata.BTWater
		}
	}
	res := mustMesh(t, w, DefaultOptions())
	require.NotEmpty(t, res.Slots[mapdata.BTWater])
	for _, tri := range res.Slots[mapdata.BTWater] {
		for _, v := range tri {
			assert.Equal(t, float32(math.Round(float64(v.Pos[2]))), v.Pos[2])
		}
	}
}

func TestSmoothingIsSharedAcrossBoundary(t *testing.T) {
	// Um morro que atravessa a borda leste da região central
	w := world{}
	for x := 26; x < 38; x++ {
		for y := 0; y < 8; y++ {
			h := 3 + (x+y)%3
			for z := 0; z < h; z++ {
				w[[3]int{x, y, z}] = mapdata.BTSoil
			}
		}
	}
	// A mesma geometria vista a partir da região +x
	shifted := world{}
	for p, bt := range w {
		shifted[[3]int{p[0] - util.RegionSize, p[1], p[2]}] = bt
	}

	opts := DefaultOptions()
	build := func(coord util.RegionCoord, w world) *job {
		j := &job{nb: w.neighborhood(), opts: opts, origin: coord.Origin(), scratch: getScratch()}
		j.buildLattice()
		return j
	}
	a := build(util.NewRegionCoord(0, 0, 0), w)
	b := build(util.NewRegionCoord(1, 0, 0), shifted)
	defer putScratch(a.scratch)
	defer putScratch(b.scratch)

	for k := 0; k <= util.RegionSize; k++ {
		for jy := 0; jy <= util.RegionSize; jy++ {
			assert.Equal(t, a.delta(util.RegionSize, jy, k), b.delta(0, jy, k))
		}
	}
}

func TestMergeNormalsOnCorners(t *testing.T) {
	opts := flat
	opts.MergeNormals = true
	res := mustMesh(t, world{{0, 0, 0}: mapdata.BTStone}, opts)

	want := mgl32.Vec3{-1, -1, -1}.Normalize()
	found := false
	for _, tri := range res.Slots[mapdata.BTStone] {
		for _, v := range tri {
			if v.Pos == (mgl32.Vec3{0, 0, 0}) {
				found = true
				assert.InDelta(t, want[0], v.Normal[0], 1e-5)
				assert.InDelta(t, want[1], v.Normal[1], 1e-5)
				assert.InDelta(t, want[2], v.Normal[2], 1e-5)
			}
		}
	}
	assert.True(t, found)

	// Vidro (semitransparente) mantém a normal da face
	res = mustMesh(t, world{{0, 0, 0}: mapdata.BTWindow}, opts)
	for _, tri := range res.Slots[mapdata.BTWindow] {
		assert.InDelta(t, 1.0, tri[0].Normal.Len(), 1e-5)
		axis := 0
		for a := 0; a < 3; a++ {
			if tri[0].Normal[a] != 0 {
				axis++
			}
		}
		assert.Equal(t, 1, axis)
	}
}

func TestOverridesAreVisibleToMesher(t *testing.T) {
	d := mapdata.NewEmptyRegionData(util.RegionCoord{})
	require.True(t, d.SetBlock(1, 1, 1, mapdata.BTStone))
	require.True(t, d.AddOverride(1, 1, 1, mapdata.BTAir, 1e9))

	var nb Neighborhood
	nb[CenterIndex] = d.View()
	res, err := Mesh(util.RegionCoord{}, &nb, flat)
	require.NoError(t, err)
	assert.True(t, res.Empty)
}

func TestPickRoundTrip(t *testing.T) {
	tests := []struct {
		x, y, z, face int
		off           [3]int8
	}{
		{0, 0, 0, 0, [3]int8{-1, -1, -1}},
		{31, 31, 31, 5, [3]int8{1, 1, 1}},
		{7, 0, 19, 3, [3]int8{0, -1, 1}},
	}
	for _, tt := range tests {
		code := EncodePick(tt.x, tt.y, tt.z, tt.face, tt.off)
		assert.NotZero(t, code)
		hit, ok := DecodePick(code)
		require.True(t, ok)
		assert.Equal(t, PickHit{X: tt.x, Y: tt.y, Z: tt.z, Face: util.FaceDirs[tt.face], Offset: tt.off}, hit)
	}

	_, ok := DecodePick(0)
	assert.False(t, ok)
}

func TestPickingModeColorsFaces(t *testing.T) {
	opts := flat
	opts.Picking = true
	opts.PickOffset = [3]int8{0, 1, 0}
	res := mustMesh(t, world{{2, 3, 4}: mapdata.BTStone}, opts)
	assert.True(t, res.Picking)
	assert.Equal(t, opts.PickOffset, res.PickOffset)

	g := res.Geometry(int(mapdata.BTStone), true)
	require.Equal(t, 36, g.VertexCount())
	seen := map[util.Directions]bool{}
	for i := 0; i < g.VertexCount(); i++ {
		code := uint32(g.Colors[i*4]) | uint32(g.Colors[i*4+1])<<8 | uint32(g.Colors[i*4+2])<<16
		hit, ok := DecodePick(code)
		require.True(t, ok)
		assert.Equal(t, 2, hit.X)
		assert.Equal(t, 3, hit.Y)
		assert.Equal(t, 4, hit.Z)
		assert.Equal(t, opts.PickOffset, hit.Offset)
		seen[hit.Face] = true
	}
	assert.Len(t, seen, 6)
}

func TestGeometryWorldSpace(t *testing.T) {
	res, err := Mesh(util.NewRegionCoord(1, 0, 2), world{{0, 0, 0}: mapdata.BTStone}.neighborhood(), flat)
	require.NoError(t, err)
	g := res.Geometry(int(mapdata.BTStone), false)
	require.Equal(t, 36, g.VertexCount())

	// Região (1,0,2): x começa em 32, altura (y da Raylib) começa em 64
	for i := 0; i < g.VertexCount(); i++ {
		x, y := g.Vertices[i*3], g.Vertices[i*3+1]
		assert.True(t, x == 32 || x == 33)
		assert.True(t, y == 64 || y == 65)
		assert.GreaterOrEqual(t, g.Colors[i*4], uint8(254), "sol e céu livres dão tom máximo")
	}
}
