package camera

import (
	"math"

	"VoxelStream/shared/util"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
)

// Limites da inclinação vertical (radianos), para a câmera não virar de ponta cabeça.
const (
	minPitch = -89.0 * rl.Deg2rad
	maxPitch = 89.0 * rl.Deg2rad
)

// CameraController é uma câmera livre (voo) com movimento suavizado.
type CameraController struct {
	// Estado interno do Raylib
	RLCamera rl.Camera3D

	// Configurações
	MoveSpeed    float32 // blocos por segundo
	FastFactor   float32 // multiplicador com Shift
	MouseSens    float32
	SmoothFactor float32 // 0.0 a 1.0 (quanto menor, mais suave/lento)
	InvertMouseY bool

	// Estado alvo (para interpolação suave)
	TargetPos rl.Vector3
	Yaw       float32 // rotação horizontal (radianos), 0 olha para -Z
	Pitch     float32 // rotação vertical (radianos)

	// Estado atual (interpolado)
	CurrentPos rl.Vector3
}

// New cria uma câmera na posição dada (espaço da Raylib).
func New(pos rl.Vector3, fov, speed float32) *CameraController {
	c := &CameraController{
		MoveSpeed:    speed,
		FastFactor:   4,
		MouseSens:    0.003,
		SmoothFactor: 0.25,
		TargetPos:    pos,
		CurrentPos:   pos,
		Pitch:        -20 * rl.Deg2rad,
	}
	c.RLCamera = rl.Camera3D{
		Up:         rl.Vector3{X: 0, Y: 1, Z: 0},
		Fovy:       fov,
		Projection: rl.CameraPerspective,
	}
	c.apply()
	return c
}

// Forward é o vetor unitário para onde a câmera olha.
func (c *CameraController) Forward() mgl32.Vec3 {
	cp := float32(math.Cos(float64(c.Pitch)))
	return mgl32.Vec3{
		cp * float32(math.Sin(float64(c.Yaw))),
		float32(math.Sin(float64(c.Pitch))),
		-cp * float32(math.Cos(float64(c.Yaw))),
	}
}

// Right é o vetor lateral projetado no plano do chão.
func (c *CameraController) Right() mgl32.Vec3 {
	f := c.Forward()
	f[1] = 0
	if f.Len() == 0 {
		return mgl32.Vec3{1, 0, 0}
	}
	return f.Normalize().Cross(mgl32.Vec3{0, 1, 0}).Normalize()
}

// Look gira a câmera pelo deslocamento do mouse em pixels.
func (c *CameraController) Look(dx, dy float32) {
	if c.InvertMouseY {
		dy = -dy
	}
	c.Yaw += dx * c.MouseSens
	c.Pitch -= dy * c.MouseSens
	c.Pitch = max(minPitch, min(maxPitch, c.Pitch))
}

// Move desloca o alvo. forward/right/up em -1..1, relativos à câmera.
func (c *CameraController) Move(forward, right, up float32, dt float32, fast bool) {
	f := c.Forward()
	f[1] = 0
	if f.Len() > 0 {
		f = f.Normalize()
	}
	dir := f.Mul(forward).Add(c.Right().Mul(right)).Add(mgl32.Vec3{0, up, 0})
	if dir.Len() == 0 {
		return
	}
	speed := c.MoveSpeed * dt
	if fast {
		speed *= c.FastFactor
	}
	dir = dir.Normalize().Mul(speed)
	c.TargetPos = rl.Vector3{X: c.TargetPos.X + dir.X(), Y: c.TargetPos.Y + dir.Y(), Z: c.TargetPos.Z + dir.Z()}
}

// SetPosition teleporta a câmera sem suavização.
func (c *CameraController) SetPosition(pos rl.Vector3) {
	c.TargetPos = pos
	c.CurrentPos = pos
	c.apply()
}

// Update interpola a posição atual em direção ao alvo. Deve ser chamado a cada frame.
func (c *CameraController) Update(dt float32) {
	factor := c.SmoothFactor * 60.0 * dt // Normaliza para 60 FPS
	if factor > 1.0 {
		factor = 1.0
	}

	cur := mgl32.Vec3{c.CurrentPos.X, c.CurrentPos.Y, c.CurrentPos.Z}
	tgt := mgl32.Vec3{c.TargetPos.X, c.TargetPos.Y, c.TargetPos.Z}
	cur = cur.Add(tgt.Sub(cur).Mul(factor))
	c.CurrentPos = rl.Vector3{X: cur.X(), Y: cur.Y(), Z: cur.Z()}

	c.apply()
}

func (c *CameraController) apply() {
	f := c.Forward()
	c.RLCamera.Position = c.CurrentPos
	c.RLCamera.Target = rl.Vector3{X: c.CurrentPos.X + f.X(), Y: c.CurrentPos.Y + f.Y(), Z: c.CurrentPos.Z + f.Z()}
}

// Block retorna o bloco onde a câmera está.
func (c *CameraController) Block() util.BlockPos {
	return util.WorldToBlockPos(c.CurrentPos)
}

// Region retorna a região do observador, usada para priorizar o streaming.
func (c *CameraController) Region() util.RegionCoord {
	return c.Block().Region()
}

// HandleInput processa teclado e mouse. Retorna true se houve movimento.
func (c *CameraController) HandleInput(dt float32) bool {
	moved := false

	// Olhar com botão direito
	if rl.IsMouseButtonDown(rl.MouseRightButton) {
		delta := rl.GetMouseDelta()
		if delta.X != 0 || delta.Y != 0 {
			c.Look(delta.X, delta.Y)
			moved = true
		}
	}

	var forward, right, up float32
	if rl.IsKeyDown(rl.KeyW) {
		forward++
	}
	if rl.IsKeyDown(rl.KeyS) {
		forward--
	}
	if rl.IsKeyDown(rl.KeyD) {
		right++
	}
	if rl.IsKeyDown(rl.KeyA) {
		right--
	}
	if rl.IsKeyDown(rl.KeySpace) {
		up++
	}
	if rl.IsKeyDown(rl.KeyLeftControl) {
		up--
	}
	if forward != 0 || right != 0 || up != 0 {
		c.Move(forward, right, up, dt, rl.IsKeyDown(rl.KeyLeftShift))
		moved = true
	}

	return moved
}
