package util

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockPosRegion(t *testing.T) {
	tests := []struct {
		pos    BlockPos
		region RegionCoord
		local  [3]int
	}{
		{BlockPos{0, 0, 0}, RegionCoord{0, 0, 0}, [3]int{0, 0, 0}},
		{BlockPos{31, 32, 63}, RegionCoord{0, 1, 1}, [3]int{31, 0, 31}},
		{BlockPos{-1, -32, -33}, RegionCoord{-1, -1, -2}, [3]int{31, 0, 31}},
		{BlockPos{-64, 100, 5}, RegionCoord{-2, 3, 0}, [3]int{0, 4, 5}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.region, tt.pos.Region(), "%+v", tt.pos)
		x, y, z := tt.pos.Local()
		assert.Equal(t, tt.local, [3]int{x, y, z}, "%+v", tt.pos)

		o := tt.region.Origin()
		assert.Equal(t, tt.pos, BlockPos{o.X + int64(x), o.Y + int64(y), o.Z + int64(z)})
	}
}

func TestDistSqAndOrder(t *testing.T) {
	a := NewRegionCoord(1, 2, 3)
	assert.Equal(t, int64(0), a.DistSq(a))
	assert.Equal(t, int64(1+4+9), a.DistSq(RegionCoord{}))
	assert.Equal(t, a.DistSq(RegionCoord{}), RegionCoord{}.DistSq(a))

	assert.True(t, RegionCoord{X: 5}.Less(RegionCoord{Y: 1}))
	assert.True(t, RegionCoord{Y: 5}.Less(RegionCoord{Z: 1}))
	assert.False(t, a.Less(a))

	coords := []RegionCoord{{0, 0, 0}, {1, 0, 2}, {0, 1, 2}, {3, 0, 0}, {0, 0, 1}}
	SortDescending(coords)
	assert.Equal(t, []RegionCoord{{0, 1, 2}, {1, 0, 2}, {0, 0, 1}, {3, 0, 0}, {0, 0, 0}}, coords)
}

func TestDirections(t *testing.T) {
	seen := DirNone
	for _, d := range FaceDirs {
		assert.False(t, seen.Has(d), "direção repetida")
		seen |= d
	}
	assert.Equal(t, DirAll, seen)

	c := NewRegionCoord(0, 0, 0)
	n := c.FaceNeighbors()
	assert.Equal(t, RegionCoord{X: -1}, n[0])
	assert.Equal(t, RegionCoord{Z: 1}, n[5])
	for _, nb := range n {
		assert.Equal(t, int64(1), c.DistSq(nb))
	}
}

func TestBoundaryDirs(t *testing.T) {
	assert.Equal(t, DirNone, BoundaryDirs(5, 5, 5))
	assert.Equal(t, DirWest|DirSouth|DirDown, BoundaryDirs(0, 0, 0))
	assert.Equal(t, DirEast|DirNorth|DirUp, BoundaryDirs(31, 31, 31))
	assert.Equal(t, DirUp, BoundaryDirs(10, 1, 31))
}

func TestWorldConversion(t *testing.T) {
	v := BlockToWorldPos(3, 4, 5)
	assert.Equal(t, rl.Vector3{X: 3, Y: 5, Z: -4}, v)
	assert.Equal(t, BlockPos{3, 4, 5}, WorldToBlockPos(rl.Vector3{X: 3.5, Y: 5.2, Z: -4.5}))
	assert.Equal(t, BlockPos{-1, 0, -1}, WorldToBlockPos(rl.Vector3{X: -0.5, Y: -0.1, Z: -0.5}))
}

func TestUniqueQueue(t *testing.T) {
	q := NewUniqueQueue[RegionCoord, string]()
	require.True(t, q.Enqueue(RegionCoord{X: 3}, "a"))
	require.True(t, q.Enqueue(RegionCoord{X: 1}, "b"))
	require.True(t, q.Enqueue(RegionCoord{X: -1}, "c"))

	// Duplicata não altera o valor
	assert.False(t, q.Enqueue(RegionCoord{X: 3}, "z"))
	assert.Equal(t, 3, q.Len())

	origin := RegionCoord{}
	score := func(c RegionCoord) int64 { return c.DistSq(origin) }
	less := func(a, b RegionCoord) bool { return a.Less(b) }

	// (1,0,0) e (-1,0,0) empatam; vence o menor pela ordem total
	best, s, ok := q.Best(score, less)
	require.True(t, ok)
	assert.Equal(t, RegionCoord{X: -1}, best)
	assert.Equal(t, int64(1), s)

	v, ok := q.Pop(best)
	require.True(t, ok)
	assert.Equal(t, "c", v)
	_, ok = q.Pop(best)
	assert.False(t, ok)

	removed := q.RemoveIf(func(k RegionCoord, _ string) bool { return k.X > 2 })
	assert.Equal(t, []RegionCoord{{X: 3}}, removed)
	assert.True(t, q.Contains(RegionCoord{X: 1}))
	assert.False(t, q.Contains(RegionCoord{X: 3}))

	assert.True(t, q.Remove(RegionCoord{X: 1}))
	assert.False(t, q.Remove(RegionCoord{X: 1}))

	q.Enqueue(RegionCoord{}, "x")
	q.Clear()
	_, _, ok = q.Best(score, less)
	assert.False(t, ok)
}

func TestClampHelpers(t *testing.T) {
	assert.Equal(t, int8(127), ClampInt8(300))
	assert.Equal(t, int8(-128), ClampInt8(-300))
	assert.Equal(t, int8(-4), ClampInt8(-4))
	assert.Equal(t, float32(0), Clamp01(-1))
	assert.Equal(t, float32(1), Clamp01(2))
	assert.Equal(t, int32(7), Abs(-7))
	assert.Equal(t, float32(5), Lerp(0, 10, 0.5))
}
