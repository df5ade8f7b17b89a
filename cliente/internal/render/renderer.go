package render

/*
#include <stdlib.h>
*/
import "C"

import (
	"image/color"
	"log"
	"slices"
	"sync"
	"unsafe"

	"VoxelStream/cliente/internal/assets"
	"VoxelStream/cliente/internal/meshing"
	"VoxelStream/shared/mapdata"
	"VoxelStream/shared/util"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Renderer guarda os modelos de GPU de cada região e implementa o
// Uploader do streamer. Só a thread da janela chama seus métodos.
type Renderer struct {
	mu     sync.RWMutex
	Models map[util.RegionCoord]*RegionModel

	// Shaders e Uniforms
	TerrainShader rl.Shader
	WaterShader   rl.Shader
	PropShader    rl.Shader

	terrainCamLoc      int32
	terrainFogLoc      int32
	terrainFogColorLoc int32
	waterTimeLoc       int32
	waterCamLoc        int32
	waterFogLoc        int32
	waterFogColorLoc   int32

	Palette *assets.Manager
	PropMgr *PropManager

	// Picking faz cada upload gerar também o modelo de picking.
	Picking     bool
	FogDistance float32
	FogColor    color.RGBA

	drawn int // regiões desenhadas no último frame
}

// Tamanho do array Locs de um shader (RL_MAX_SHADER_LOCATIONS).
const maxShaderLocations = 32

// NewRenderer cria um novo renderizador. Sem janela aberta os uploads são ignorados.
func NewRenderer(palette *assets.Manager, fogDistance float32) *Renderer {
	if palette == nil {
		palette = assets.Default()
	}
	r := &Renderer{
		Models:      make(map[util.RegionCoord]*RegionModel),
		Palette:     palette,
		FogDistance: fogDistance,
		FogColor:    color.RGBA{R: 150, G: 190, B: 230, A: 255},
	}

	if rl.IsWindowReady() {
		r.TerrainShader = rl.LoadShaderFromMemory(terrainVertexShader, terrainFragmentShader)
		r.WaterShader = rl.LoadShaderFromMemory(waterVertexShader, waterFragmentShader)
		r.PropShader = rl.LoadShaderFromMemory(propInstancedVertexShader, propFragmentShader)

		// Locs é um ponteiro bruto (*int32) que aponta para um array em C
		locsT := unsafe.Slice(r.TerrainShader.Locs, maxShaderLocations)
		locsT[rl.ShaderLocMatrixModel] = rl.GetShaderLocation(r.TerrainShader, "matModel")
		locsT[rl.ShaderLocColorDiffuse] = rl.GetShaderLocation(r.TerrainShader, "colDiffuse")

		locsW := unsafe.Slice(r.WaterShader.Locs, maxShaderLocations)
		locsW[rl.ShaderLocColorDiffuse] = rl.GetShaderLocation(r.WaterShader, "colDiffuse")

		locsP := unsafe.Slice(r.PropShader.Locs, maxShaderLocations)
		locsP[rl.ShaderLocMatrixMvp] = rl.GetShaderLocation(r.PropShader, "mvp")
		locsP[rl.ShaderLocMatrixModel] = rl.GetShaderLocationAttrib(r.PropShader, "instanceTransform")
		locsP[rl.ShaderLocColorDiffuse] = rl.GetShaderLocation(r.PropShader, "colDiffuse")

		r.terrainCamLoc = rl.GetShaderLocation(r.TerrainShader, "camPos")
		r.terrainFogLoc = rl.GetShaderLocation(r.TerrainShader, "fogDistance")
		r.terrainFogColorLoc = rl.GetShaderLocation(r.TerrainShader, "fogColor")
		r.waterTimeLoc = rl.GetShaderLocation(r.WaterShader, "time")
		r.waterCamLoc = rl.GetShaderLocation(r.WaterShader, "camPos")
		r.waterFogLoc = rl.GetShaderLocation(r.WaterShader, "fogDistance")
		r.waterFogColorLoc = rl.GetShaderLocation(r.WaterShader, "fogColor")
	}

	r.PropMgr = NewPropManager(palette, r.PropShader)
	return r
}

// Upload converte um resultado de meshing em modelos Raylib, um por tipo de bloco.
func (r *Renderer) Upload(coord util.RegionCoord, res *meshing.MeshResult) {
	if !rl.IsWindowReady() {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.Models[coord]; ok {
		// O streamer sempre libera antes; chegar aqui indica upload duplicado
		log.Printf("[Renderer] Upload de %s sem Release anterior", coord)
		r.unloadLocked(coord)
	}
	if res == nil || res.Empty {
		return
	}

	rm := &RegionModel{
		Coord:     coord,
		Slots:     make(map[mapdata.BlockType]rl.Model),
		Bounds:    worldBounds(coord, res.BBox),
		Instances: collectInstances(res),
	}

	var pick meshing.GeometryData
	for slot := range res.Slots {
		if len(res.Slots[slot]) == 0 {
			continue
		}
		bt := mapdata.BlockType(slot)
		rm.Slots[bt] = r.uploadGeometry(res.Geometry(slot, false), r.shaderFor(bt))
		if r.Picking {
			pick = appendGeometry(pick, res.Geometry(slot, true))
		}
	}
	if pick.VertexCount() > 0 {
		rm.PickModel = r.uploadGeometry(pick, rl.Shader{})
		rm.HasPick = true
	}

	if len(rm.Slots) == 0 && len(rm.Instances) == 0 {
		return
	}
	r.Models[coord] = rm
}

// Release libera os recursos de GPU de uma região.
func (r *Renderer) Release(coord util.RegionCoord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unloadLocked(coord)
}

func (r *Renderer) unloadLocked(coord util.RegionCoord) {
	rm, ok := r.Models[coord]
	if !ok {
		return
	}
	for _, m := range rm.Slots {
		rl.UnloadModel(m)
	}
	if rm.HasPick {
		rl.UnloadModel(rm.PickModel)
	}
	delete(r.Models, coord)
}

func (r *Renderer) shaderFor(bt mapdata.BlockType) rl.Shader {
	if bt.IsWater() {
		return r.WaterShader
	}
	return r.TerrainShader
}

func (r *Renderer) uploadGeometry(data meshing.GeometryData, shader rl.Shader) rl.Model {
	mesh := r.geometryToMesh(data)
	rl.UploadMesh(&mesh, false)
	r.freeMeshRAM(&mesh)
	model := rl.LoadModelFromMesh(mesh)
	if shader.ID != 0 && model.MaterialCount > 0 {
		materials := unsafe.Slice(model.Materials, model.MaterialCount)
		materials[0].Shader = shader
	}
	return model
}

func appendGeometry(dst, src meshing.GeometryData) meshing.GeometryData {
	dst.Vertices = append(dst.Vertices, src.Vertices...)
	dst.Normals = append(dst.Normals, src.Normals...)
	dst.Colors = append(dst.Colors, src.Colors...)
	dst.UVs = append(dst.UVs, src.UVs...)
	return dst
}

func (r *Renderer) geometryToMesh(data meshing.GeometryData) rl.Mesh {
	var mesh rl.Mesh
	vCount := int32(data.VertexCount())
	mesh.VertexCount = vCount
	mesh.TriangleCount = vCount / 3

	if len(data.Vertices) > 0 {
		mesh.Vertices = (*float32)(r.copyToC(unsafe.Pointer(&data.Vertices[0]), len(data.Vertices)*4))
	}
	if len(data.Normals) > 0 {
		mesh.Normals = (*float32)(r.copyToC(unsafe.Pointer(&data.Normals[0]), len(data.Normals)*4))
	}
	if len(data.Colors) > 0 {
		mesh.Colors = (*uint8)(r.copyToC(unsafe.Pointer(&data.Colors[0]), len(data.Colors)))
	}
	if len(data.UVs) > 0 {
		mesh.Texcoords = (*float32)(r.copyToC(unsafe.Pointer(&data.UVs[0]), len(data.UVs)*4))
	}
	return mesh
}

// copyToC copia para memória C: a Raylib libera os buffers com free().
func (r *Renderer) copyToC(data unsafe.Pointer, size int) unsafe.Pointer {
	if size <= 0 || data == nil {
		return nil
	}
	ptr := C.malloc(C.size_t(size))
	if ptr == nil {
		return nil
	}
	cSlice := unsafe.Slice((*byte)(ptr), size)
	goSlice := unsafe.Slice((*byte)(data), size)
	copy(cSlice, goSlice)
	return ptr
}

// freeMeshRAM descarta a cópia em RAM depois do upload para a GPU.
func (r *Renderer) freeMeshRAM(mesh *rl.Mesh) {
	if mesh.Vertices != nil {
		C.free(unsafe.Pointer(mesh.Vertices))
		mesh.Vertices = nil
	}
	if mesh.Normals != nil {
		C.free(unsafe.Pointer(mesh.Normals))
		mesh.Normals = nil
	}
	if mesh.Colors != nil {
		C.free(unsafe.Pointer(mesh.Colors))
		mesh.Colors = nil
	}
	if mesh.Texcoords != nil {
		C.free(unsafe.Pointer(mesh.Texcoords))
		mesh.Texcoords = nil
	}
}

func (r *Renderer) setUniforms(camPos rl.Vector3) {
	cam := []float32{camPos.X, camPos.Y, camPos.Z}
	fog := []float32{r.FogDistance}
	fogColor := []float32{float32(r.FogColor.R) / 255, float32(r.FogColor.G) / 255, float32(r.FogColor.B) / 255}

	if r.TerrainShader.ID != 0 {
		rl.SetShaderValue(r.TerrainShader, r.terrainCamLoc, cam, rl.ShaderUniformVec3)
		rl.SetShaderValue(r.TerrainShader, r.terrainFogLoc, fog, rl.ShaderUniformFloat)
		rl.SetShaderValue(r.TerrainShader, r.terrainFogColorLoc, fogColor, rl.ShaderUniformVec3)
	}
	if r.WaterShader.ID != 0 {
		rl.SetShaderValue(r.WaterShader, r.waterTimeLoc, []float32{float32(rl.GetTime())}, rl.ShaderUniformFloat)
		rl.SetShaderValue(r.WaterShader, r.waterCamLoc, cam, rl.ShaderUniformVec3)
		rl.SetShaderValue(r.WaterShader, r.waterFogLoc, fog, rl.ShaderUniformFloat)
		rl.SetShaderValue(r.WaterShader, r.waterFogColorLoc, fogColor, rl.ShaderUniformVec3)
	}
}

// visibleLocked devolve as regiões dentro da distância de neblina, da mais
// distante para a mais próxima (ordem certa para o passe translúcido).
func (r *Renderer) visibleLocked(camPos rl.Vector3) []*RegionModel {
	limit := r.FogDistance + util.RegionSize
	out := make([]*RegionModel, 0, len(r.Models))
	dist := make(map[*RegionModel]float32, len(r.Models))
	for _, rm := range r.Models {
		d := distToBox(camPos, rm.Bounds)
		if d > limit {
			continue
		}
		dist[rm] = d
		out = append(out, rm)
	}
	slices.SortFunc(out, func(a, b *RegionModel) int {
		if dist[a] != dist[b] {
			if dist[a] > dist[b] {
				return -1
			}
			return 1
		}
		if a.Coord.Less(b.Coord) {
			return -1
		}
		if b.Coord.Less(a.Coord) {
			return 1
		}
		return 0
	})
	return out
}

// distToBox é a distância do ponto até a caixa (0 dentro dela).
func distToBox(p rl.Vector3, box rl.BoundingBox) float32 {
	dx := max(box.Min.X-p.X, 0, p.X-box.Max.X)
	dy := max(box.Min.Y-p.Y, 0, p.Y-box.Max.Y)
	dz := max(box.Min.Z-p.Z, 0, p.Z-box.Max.Z)
	return rl.Vector3Length(rl.Vector3{X: dx, Y: dy, Z: dz})
}

// Draw desenha as regiões visíveis. Deve ser chamado entre BeginMode3D/EndMode3D.
func (r *Renderer) Draw(camera3d rl.Camera3D) {
	r.mu.Lock()
	defer r.mu.Unlock()

	camPos := camera3d.Position
	r.setUniforms(camPos)
	visible := r.visibleLocked(camPos)
	r.drawn = len(visible)

	// Opacos, do mais próximo ao mais distante
	for i := len(visible) - 1; i >= 0; i-- {
		rm := visible[i]
		for bt, m := range rm.Slots {
			c := r.Palette.Color(bt)
			if isTranslucent(bt, c) {
				continue
			}
			rl.DrawModel(m, rl.Vector3{}, 1.0, color.RGBA{R: c[0], G: c[1], B: c[2], A: 255})
		}
	}

	r.PropMgr.Clear()
	for _, rm := range visible {
		for _, inst := range rm.Instances {
			r.PropMgr.AddInstance(inst)
		}
	}
	r.PropMgr.DrawAll()

	rl.BeginBlendMode(rl.BlendAlpha)
	for _, rm := range visible {
		for bt, m := range rm.Slots {
			c := r.Palette.Color(bt)
			if !isTranslucent(bt, c) {
				continue
			}
			rl.DrawModel(m, rl.Vector3{}, 1.0, color.RGBA{R: c[0], G: c[1], B: c[2], A: c[3]})
		}
	}
	rl.EndBlendMode()
}

// DrawPicking desenha só os modelos de picking, com as cores exatas dos códigos.
// O código guarda a região relativa ao observador em -1..1, então só as
// vizinhas imediatas de viewer entram.
func (r *Renderer) DrawPicking(camera3d rl.Camera3D, viewer util.RegionCoord) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rm := range r.visibleLocked(camera3d.Position) {
		if rm.HasPick && pickable(rm.Coord, viewer) {
			rl.DrawModel(rm.PickModel, rl.Vector3{}, 1.0, rl.White)
		}
	}
}

func pickable(coord, viewer util.RegionCoord) bool {
	d := coord.Sub(viewer)
	return util.Abs(d.X) <= 1 && util.Abs(d.Y) <= 1 && util.Abs(d.Z) <= 1
}

// Stats retorna quantas regiões têm modelo e quantas foram desenhadas no último frame.
func (r *Renderer) Stats() (models, drawn int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.Models), r.drawn
}

// Unload libera todos os recursos de GPU.
func (r *Renderer) Unload() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for coord := range r.Models {
		r.unloadLocked(coord)
	}
	r.PropMgr.Unload()
	for _, s := range []rl.Shader{r.TerrainShader, r.WaterShader, r.PropShader} {
		if s.ID != 0 {
			rl.UnloadShader(s)
		}
	}
}
