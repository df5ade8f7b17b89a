package render

import (
	"image/color"

	"VoxelStream/shared/util"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// PickBuffer desenha os modelos de picking fora da tela e lê o pixel sob o cursor.
type PickBuffer struct {
	target        rl.RenderTexture2D
	width, height int32
}

func NewPickBuffer(width, height int32) *PickBuffer {
	return &PickBuffer{
		target: rl.LoadRenderTexture(width, height),
		width:  width,
		height: height,
	}
}

// Resize recria a textura quando a janela muda de tamanho.
func (pb *PickBuffer) Resize(width, height int32) {
	if width == pb.width && height == pb.height {
		return
	}
	rl.UnloadRenderTexture(pb.target)
	pb.target = rl.LoadRenderTexture(width, height)
	pb.width, pb.height = width, height
}

// Pick retorna o código da face no pixel (x, y) da tela. ok=false no fundo.
func (pb *PickBuffer) Pick(r *Renderer, cam rl.Camera3D, viewer util.RegionCoord, x, y int32) (code uint32, ok bool) {
	if x < 0 || y < 0 || x >= pb.width || y >= pb.height {
		return 0, false
	}

	rl.BeginTextureMode(pb.target)
	rl.ClearBackground(rl.Black)
	rl.BeginMode3D(cam)
	r.DrawPicking(cam, viewer)
	rl.EndMode3D()
	rl.EndTextureMode()

	img := rl.LoadImageFromTexture(pb.target.Texture)
	defer rl.UnloadImage(img)
	// Render textures ficam de cabeça para baixo
	code = pickCode(rl.GetImageColor(*img, x, pb.height-1-y))
	return code, code != 0
}

func (pb *PickBuffer) Unload() {
	rl.UnloadRenderTexture(pb.target)
}

// pickCode reverte meshing.PickColor.
func pickCode(c color.RGBA) uint32 {
	return uint32(c.R) | uint32(c.G)<<8 | uint32(c.B)<<16
}
