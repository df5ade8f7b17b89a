package mapdata

import (
	"testing"
	"time"

	"VoxelStream/shared/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyRegionIsAir(t *testing.T) {
	d := NewEmptyRegionData(util.NewRegionCoord(1, 2, 3))
	require.True(t, d.Decompressed())
	assert.Equal(t, BTAir, d.BlockAt(0, 0, 0))
	assert.Equal(t, BTAir, d.BlockAt(31, 31, 31))
	assert.Equal(t, BTAir, d.BlockAt(-1, 0, 0))
}

func TestIndexOrder(t *testing.T) {
	assert.Equal(t, 0, Index(0, 0, 0))
	assert.Equal(t, 1, Index(1, 0, 0))
	assert.Equal(t, util.RegionSize, Index(0, 1, 0))
	assert.Equal(t, util.RegionSize*util.RegionSize, Index(0, 0, 1))
	assert.Equal(t, util.RegionVolume-1, Index(31, 31, 31))
}

func TestDecompressFillsBlocks(t *testing.T) {
	blocks := make([]byte, util.RegionVolume)
	blocks[Index(4, 5, 6)] = byte(BTStone)
	compressed, err := CompressBlocks(blocks)
	require.NoError(t, err)

	d := NewRegionData(util.RegionCoord{}, Header{}, compressed)
	assert.False(t, d.Decompressed())
	assert.Nil(t, d.View())

	require.NoError(t, d.Decompress())
	assert.Equal(t, BTStone, d.BlockAt(4, 5, 6))
}

func TestSetBlockKeepsCapturedView(t *testing.T) {
	d := NewEmptyRegionData(util.RegionCoord{})
	view := d.View()

	require.True(t, d.SetBlock(1, 1, 1, BTBrick))
	assert.Equal(t, BTBrick, d.BlockAt(1, 1, 1))
	assert.Equal(t, BTAir, view.At(1, 1, 1), "view capturada não deve enxergar a edição")
	assert.Equal(t, BTBrick, d.View().At(1, 1, 1))
}

func TestOverrides(t *testing.T) {
	d := NewEmptyRegionData(util.RegionCoord{})
	require.True(t, d.SetBlock(2, 2, 2, BTStone))

	require.True(t, d.AddOverride(2, 2, 2, BTAir, 2*time.Second))
	assert.Equal(t, BTAir, d.BlockAt(2, 2, 2))
	assert.Equal(t, BTAir, d.View().At(2, 2, 2))

	assert.False(t, d.TickOverrides(time.Second))
	assert.Len(t, d.Overrides(), 1)

	assert.True(t, d.TickOverrides(1500*time.Millisecond))
	assert.Empty(t, d.Overrides())
	assert.Equal(t, BTStone, d.BlockAt(2, 2, 2))
}

func TestOverrideCap(t *testing.T) {
	d := NewEmptyRegionData(util.RegionCoord{})
	for i := 0; i < MaxOverrides; i++ {
		require.True(t, d.AddOverride(i, 0, 0, BTAir, time.Second))
	}
	assert.False(t, d.AddOverride(20, 0, 0, BTAir, time.Second))
	assert.Len(t, d.Overrides(), MaxOverrides)

	// Atualizar um existente não conta para o limite
	assert.True(t, d.AddOverride(0, 0, 0, BTWater, time.Second))
	assert.Equal(t, BTWater, d.BlockAt(0, 0, 0))
}

func TestBlockProperties(t *testing.T) {
	tests := []struct {
		bt          BlockType
		semi, rigid bool
		meshed      bool
		special     SpecialKind
	}{
		{BTAir, true, false, false, SpecialNone},
		{BTStone, false, false, true, SpecialNone},
		{BTWater, true, false, true, SpecialNone},
		{BTBrick, false, true, true, SpecialNone},
		{BTLamp1, false, true, true, SpecialLamp},
		{BTTree3, true, false, false, SpecialTree},
		{BTBigFog, true, false, false, SpecialFog},
		{BTQuest, true, false, false, SpecialTreasure},
	}
	for _, tt := range tests {
		t.Run(tt.bt.String(), func(t *testing.T) {
			assert.Equal(t, tt.semi, tt.bt.SemiTransparent())
			assert.Equal(t, tt.rigid, tt.bt.Rigid())
			assert.Equal(t, tt.meshed, tt.bt.Meshed())
			assert.Equal(t, tt.special, tt.bt.Special())
		})
	}
}
