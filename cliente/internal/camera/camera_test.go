package camera

import (
	"testing"

	"VoxelStream/shared/util"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
)

func TestForwardAndRight(t *testing.T) {
	c := New(rl.Vector3{}, 60, 10)
	c.Pitch = 0

	f := c.Forward()
	assert.InDelta(t, 0, f.X(), 1e-6)
	assert.InDelta(t, -1, f.Z(), 1e-6)

	r := c.Right()
	assert.InDelta(t, 1, r.X(), 1e-6)
	assert.InDelta(t, 0, r.Z(), 1e-6)
}

func TestLookClampsPitch(t *testing.T) {
	c := New(rl.Vector3{}, 60, 10)
	c.Look(0, -1e6)
	assert.InDelta(t, maxPitch, c.Pitch, 1e-6)
	c.Look(0, 1e6)
	assert.InDelta(t, minPitch, c.Pitch, 1e-6)
}

func TestMoveAndUpdate(t *testing.T) {
	c := New(rl.Vector3{}, 60, 10)
	c.Pitch = 0

	c.Move(1, 0, 0, 1, false)
	assert.InDelta(t, -10, c.TargetPos.Z, 1e-4, "andar para frente é -Z")
	assert.Equal(t, float32(0), c.CurrentPos.Z, "posição atual só muda no Update")

	c.Move(0, 0, 1, 0.5, true)
	assert.InDelta(t, 20, c.TargetPos.Y, 1e-4)

	// Com fator 1 a câmera alcança o alvo num frame
	c.SmoothFactor = 1
	c.Update(1)
	assert.Equal(t, c.TargetPos, c.CurrentPos)
	assert.Equal(t, c.CurrentPos, c.RLCamera.Position)
}

func TestRegionFollowsBlockSpace(t *testing.T) {
	c := New(rl.Vector3{}, 60, 10)
	// Raylib (x, y, z) = bloco (x, -z, y)
	c.SetPosition(rl.Vector3{X: 40, Y: 70, Z: -10})
	assert.Equal(t, util.BlockPos{X: 40, Y: 10, Z: 70}, c.Block())
	assert.Equal(t, util.NewRegionCoord(1, 0, 2), c.Region())

	c.SetPosition(rl.Vector3{X: -1, Y: 0, Z: 1})
	assert.Equal(t, util.NewRegionCoord(-1, -1, 0), c.Region())
}
