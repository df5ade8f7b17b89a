package render

import (
	"image/color"
	"unsafe"

	"VoxelStream/cliente/internal/assets"
	"VoxelStream/shared/mapdata"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// PropBatch agrupa instâncias do mesmo tipo de bloco para desenho instanciado.
type PropBatch struct {
	Type       mapdata.BlockType
	Mesh       rl.Mesh
	Material   rl.Material
	Transforms []rl.Matrix
}

// Draw renderiza as instâncias acumuladas no frame.
func (b *PropBatch) Draw() {
	count := len(b.Transforms)
	if count == 0 {
		return
	}
	// 1 draw call para todas as instâncias deste tipo
	rl.DrawMeshInstanced(b.Mesh, b.Material, b.Transforms, count)
}

// PropManager coordena os lotes de instanciamento, criados sob demanda.
type PropManager struct {
	Batches map[mapdata.BlockType]*PropBatch
	palette *assets.Manager
	shader  rl.Shader
}

func NewPropManager(palette *assets.Manager, shader rl.Shader) *PropManager {
	return &PropManager{
		Batches: make(map[mapdata.BlockType]*PropBatch),
		palette: palette,
		shader:  shader,
	}
}

// Clear reseta os buffers sem desalocar memória.
func (pm *PropManager) Clear() {
	for _, b := range pm.Batches {
		b.Transforms = b.Transforms[:0]
	}
}

// AddInstance adiciona uma instância. Tipos sem entrada na paleta são ignorados.
func (pm *PropManager) AddInstance(inst PropInstance) {
	batch, ok := pm.Batches[inst.Type]
	if !ok {
		prop, found := pm.palette.Prop(inst.Type)
		if !found {
			return
		}
		batch = &PropBatch{
			Type:       inst.Type,
			Mesh:       genPropMesh(prop.Shape),
			Material:   pm.newMaterial(prop.Color),
			Transforms: make([]rl.Matrix, 0, 256),
		}
		pm.Batches[inst.Type] = batch
	}
	prop, _ := pm.palette.Prop(inst.Type)
	batch.Transforms = append(batch.Transforms, propTransform(inst, prop.Scale))
}

// DrawAll desenha todos os lotes.
func (pm *PropManager) DrawAll() {
	for _, b := range pm.Batches {
		b.Draw()
	}
}

// Unload libera malhas e materiais dos lotes.
func (pm *PropManager) Unload() {
	for t, b := range pm.Batches {
		rl.UnloadMesh(&b.Mesh)
		delete(pm.Batches, t)
	}
}

func (pm *PropManager) newMaterial(c [4]uint8) rl.Material {
	mat := rl.LoadMaterialDefault()
	if pm.shader.ID != 0 {
		mat.Shader = pm.shader
	}
	maps := unsafe.Slice(mat.Maps, rl.MaxMaterialMaps)
	maps[rl.MapDiffuse].Color = color.RGBA{R: c[0], G: c[1], B: c[2], A: c[3]}
	return mat
}

// propTransform monta T * S: a malha base tem altura 1 com a base na origem.
func propTransform(inst PropInstance, scale float32) rl.Matrix {
	if scale == 0 {
		scale = 1
	}
	s := rl.MatrixScale(scale, scale, scale)
	// Apoia o objeto no chão do bloco
	t := rl.MatrixTranslate(inst.Position.X, inst.Position.Y-0.5, inst.Position.Z)
	return rl.MatrixMultiply(s, t)
}

func genPropMesh(shape string) rl.Mesh {
	var mesh rl.Mesh
	switch shape {
	case "sphere":
		mesh = rl.GenMeshSphere(0.5, 8, 12)
	case "cylinder":
		mesh = rl.GenMeshCylinder(0.5, 1, 10)
	case "cone":
		mesh = rl.GenMeshCone(0.5, 1, 10)
	default:
		mesh = rl.GenMeshCube(1, 1, 1)
	}
	return mesh
}
