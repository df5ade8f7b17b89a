package world

import (
	"testing"

	"VoxelStream/cliente/internal/meshing"
	"VoxelStream/shared/mapdata"
	"VoxelStream/shared/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegionState(t *testing.T) {
	tests := []struct {
		name   string
		region Region
		want   State
	}{
		{"vazia", Region{}, StateEmpty},
		{"carregando", Region{Loading: true}, StateLoading},
		{"carregada", Region{Loaded: true, Dirty: true}, StateLoaded},
		{"gerando malha", Region{Loaded: true, Meshing: true}, StateMeshing},
		{"pronta", Region{Loaded: true, Mesh: &meshing.MeshResult{}}, StateReady},
		{"pronta e suja", Region{Loaded: true, Dirty: true, Mesh: &meshing.MeshResult{}}, StateReady},
		{"recarregando com malha antiga", Region{Loading: true, Mesh: &meshing.MeshResult{}}, StateLoading},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.region.State())
		})
	}
}

func TestNeedsMesh(t *testing.T) {
	assert.True(t, (&Region{Loaded: true, Dirty: true}).NeedsMesh())
	assert.False(t, (&Region{Loaded: true}).NeedsMesh())
	assert.False(t, (&Region{Dirty: true}).NeedsMesh())
	assert.False(t, (&Region{Loaded: true, Dirty: true, Meshing: true}).NeedsMesh())
	assert.False(t, (&Region{Loaded: true, Dirty: true, Loading: true}).NeedsMesh())
}

func TestNewRegionIsAir(t *testing.T) {
	r := NewRegion(util.NewRegionCoord(1, 2, 3))
	assert.Equal(t, StateEmpty, r.State())
	v := r.View()
	require.NotNil(t, v)
	assert.Equal(t, mapdata.BTAir, v.At(0, 0, 0))

	var nilRegion *Region
	assert.Nil(t, nilRegion.View())
}

func TestStoreGetOrCreate(t *testing.T) {
	s := NewStore()
	c := util.NewRegionCoord(0, 0, 0)

	_, ok := s.Get(c)
	assert.False(t, ok)

	r1, created := s.GetOrCreate(c)
	assert.True(t, created)
	r2, created := s.GetOrCreate(c)
	assert.False(t, created)
	assert.Same(t, r1, r2)
	assert.Equal(t, 1, s.Len())

	got, ok := s.Evict(c)
	assert.True(t, ok)
	assert.Same(t, r1, got)
	_, ok = s.Evict(c)
	assert.False(t, ok)
}

func TestStorePurgeKeepsInFlight(t *testing.T) {
	s := NewStore()
	for x := int32(-5); x <= 5; x++ {
		s.GetOrCreate(util.NewRegionCoord(x, 0, 0))
	}
	busy, _ := s.GetOrCreate(util.NewRegionCoord(5, 0, 0))
	busy.Meshing = true

	removed := s.Purge(util.RegionCoord{}, 3)
	var coords []util.RegionCoord
	for _, r := range removed {
		coords = append(coords, r.Coord)
	}
	assert.Equal(t, []util.RegionCoord{{X: -5}, {X: -4}, {X: 4}}, coords)

	_, ok := s.Get(util.NewRegionCoord(5, 0, 0))
	assert.True(t, ok, "região com job em andamento não sai")
	assert.Equal(t, 8, s.Len())
}

func TestStoreWithinOrder(t *testing.T) {
	s := NewStore()
	for _, c := range []util.RegionCoord{{X: 2}, {X: -1}, {X: 1}, {}, {Z: 1}, {X: 9}} {
		s.GetOrCreate(c)
	}

	var got []util.RegionCoord
	s.ForEachWithin(util.RegionCoord{}, 2, func(r *Region) {
		got = append(got, r.Coord)
	})
	assert.Equal(t, []util.RegionCoord{{}, {X: -1}, {X: 1}, {Z: 1}, {X: 2}}, got)

	snap := s.Snapshot()
	require.Len(t, snap, 6)
	assert.Equal(t, util.RegionCoord{X: -1}, snap[0].Coord)
	assert.Equal(t, util.RegionCoord{Z: 1}, snap[5].Coord)
}
