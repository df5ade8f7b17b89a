package terrain

import (
	"testing"

	"VoxelStream/shared/mapdata"
	"VoxelStream/shared/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateIsDeterministic(t *testing.T) {
	coord := util.NewRegionCoord(3, -2, 0)

	a := New(7).Generate(coord)
	b := New(7).Generate(coord)
	require.Len(t, a, util.RegionVolume)
	assert.Equal(t, a, b)
	assert.Equal(t, mapdata.Checksum(a), mapdata.Checksum(b))

	c := New(8).Generate(coord)
	assert.NotEqual(t, a, c)
}

func TestGenerateFarRegions(t *testing.T) {
	g := New(1)

	deep := g.Generate(util.NewRegionCoord(0, 0, -4))
	for i, b := range deep {
		if mapdata.BlockType(b) != mapdata.BTStone {
			t.Fatalf("bloco %d: esperado pedra, veio %s", i, mapdata.BlockType(b))
		}
	}

	sky := g.Generate(util.NewRegionCoord(0, 0, 4))
	for i, b := range sky {
		if b != 0 {
			t.Fatalf("bloco %d: esperado ar, veio %s", i, mapdata.BlockType(b))
		}
	}
}

func TestGenerateFollowsSurface(t *testing.T) {
	g := New(1337)
	coord := util.NewRegionCoord(1, 1, 0)
	blocks := g.Generate(coord)
	origin := coord.Origin()

	for y := 0; y < util.RegionSize; y += 5 {
		for x := 0; x < util.RegionSize; x += 5 {
			surface := g.SurfaceHeight(origin.X+int64(x), origin.Y+int64(y))
			for z := 0; z < util.RegionSize; z++ {
				wz := origin.Z + int64(z)
				bt := mapdata.BlockType(blocks[mapdata.Index(x, y, z)])
				switch {
				case wz <= surface:
					assert.Contains(t, []mapdata.BlockType{mapdata.BTStone, mapdata.BTSoil, mapdata.BTSand}, bt,
						"(%d,%d,%d) abaixo da superfície %d", x, y, z, surface)
				case wz <= g.SeaLevel:
					assert.Equal(t, mapdata.BTWater, bt)
				case wz > surface+1:
					assert.Equal(t, mapdata.BTAir, bt)
				}
			}
		}
	}
}

func TestBlockAt(t *testing.T) {
	g := New(1)
	g.SeaLevel = 10

	tests := []struct {
		name    string
		wz      int64
		surface int64
		want    mapdata.BlockType
	}{
		{"pedra funda", 0, 20, mapdata.BTStone},
		{"terra no topo", 20, 20, mapdata.BTSoil},
		{"areia na praia", 11, 11, mapdata.BTSand},
		{"água sobre o fundo", 9, 5, mapdata.BTWater},
		{"água no nível do mar", 10, 5, mapdata.BTWater},
		{"ar acima do mar", 11, 5, mapdata.BTAir},
		{"ar bem acima", 30, 20, mapdata.BTAir},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.BlockAt(4, 4, tt.wz, tt.surface))
		})
	}
}

func TestDecorationsOnlyOnDryLand(t *testing.T) {
	g := New(99)
	found := 0
	for wy := int64(0); wy < 64; wy++ {
		for wx := int64(0); wx < 64; wx++ {
			bt := g.decoration(wx, wy, g.SeaLevel+1)
			assert.Equal(t, mapdata.BTAir, bt)

			if g.decoration(wx, wy, g.SeaLevel+5) != mapdata.BTAir {
				found++
			}
		}
	}
	assert.Greater(t, found, 0)
}

func TestHash01Range(t *testing.T) {
	g := New(5)
	for i := int64(-50); i < 50; i++ {
		v := g.hash01(i, -i, 0)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
	assert.Equal(t, g.hash01(3, 4, 0), g.hash01(3, 4, 0))
	assert.NotEqual(t, g.hash01(3, 4, 0), g.hash01(3, 4, 1))
}
