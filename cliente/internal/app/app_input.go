package app

import (
	"log"
	"time"

	"VoxelStream/cliente/internal/meshing"
	"VoxelStream/shared/mapdata"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Blocos selecionáveis com as teclas 1..9.
var brushKeys = []mapdata.BlockType{
	mapdata.BTStone, mapdata.BTBrick, mapdata.BTSoil, mapdata.BTSand, mapdata.BTWater,
	mapdata.BTWindow, mapdata.BTLamp1, mapdata.BTTree1, mapdata.BTMarble,
}

// updateCamera atualiza a câmera baseado no input.
func (a *App) updateCamera(dt float32) {
	a.Cam.HandleInput(dt)
	a.Cam.Update(dt)
}

// updateInput processa entradas de teclado gerais.
func (a *App) updateInput() {
	// ESC: alternar pausa
	if rl.IsKeyPressed(rl.KeyEscape) {
		if a.State == StateViewing {
			a.State = StatePaused
			log.Println("[App] Pausado")
		} else {
			a.State = StateViewing
			log.Println("[App] Retomando")
		}
	}
	if a.State != StateViewing {
		return
	}

	// Toggle debug info
	if rl.IsKeyPressed(rl.KeyF3) {
		a.Config.ShowDebugInfo = !a.Config.ShowDebugInfo
	}

	// Toggle wireframe
	if rl.IsKeyPressed(rl.KeyF4) {
		a.Config.WireframeMode = !a.Config.WireframeMode
	}

	// Etapas do mesher: cada troca refaz as malhas carregadas
	if rl.IsKeyPressed(rl.KeyF5) {
		a.Config.Smoothing = !a.Config.Smoothing
		log.Printf("[App] Suavização: %v", a.Config.Smoothing)
		a.applyMesherToggles()
	}
	if rl.IsKeyPressed(rl.KeyF6) {
		a.Config.MergeNormals = !a.Config.MergeNormals
		log.Printf("[App] Normais suavizadas: %v", a.Config.MergeNormals)
		a.applyMesherToggles()
	}
	if rl.IsKeyPressed(rl.KeyF7) {
		a.Config.Noise = !a.Config.Noise
		log.Printf("[App] Ruído: %v", a.Config.Noise)
		a.applyMesherToggles()
	}
	if rl.IsKeyPressed(rl.KeyF8) {
		if a.Config.AmbientSamples == 9 {
			a.Config.AmbientSamples = 5
		} else {
			a.Config.AmbientSamples = 9
		}
		log.Printf("[App] Amostras de oclusão: %d", a.Config.AmbientSamples)
		a.applyMesherToggles()
	}

	// Modo edição (picking)
	if rl.IsKeyPressed(rl.KeyTab) {
		a.setPicking(!a.picking)
		log.Printf("[App] Modo edição: %v", a.picking)
	}

	for i, bt := range brushKeys {
		if rl.IsKeyPressed(rl.KeyOne + int32(i)) {
			a.Brush = bt
			log.Printf("[App] Pincel: %s", bt)
		}
	}

	// Fullscreen toggle
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}
}

// updateEditing atualiza o bloco sob o cursor e aplica os cliques.
func (a *App) updateEditing() {
	if !a.picking {
		return
	}
	// Malhas próximas ainda com códigos do observador anterior
	if !a.pickGate.Ready() {
		a.Selected = nil
		return
	}

	mouse := rl.GetMousePosition()
	code, ok := a.pickBuf.Pick(a.renderer, a.Cam.RLCamera, a.pickViewer, int32(mouse.X), int32(mouse.Y))
	if !ok {
		a.Selected = nil
		return
	}
	hit, ok := meshing.DecodePick(code)
	if !ok {
		a.Selected = nil
		return
	}
	pos := resolvePick(hit, a.pickViewer)
	a.Selected = &pos

	switch {
	case rl.IsMouseButtonPressed(rl.MouseLeftButton):
		if a.streamer.SetBlock(pos, mapdata.BTAir) {
			log.Printf("[App] Bloco removido em %v", pos)
		}
	case rl.IsMouseButtonPressed(rl.MouseMiddleButton):
		target := adjacent(pos, hit.Face)
		if a.streamer.SetBlock(target, a.Brush) {
			log.Printf("[App] %s colocado em %v", a.Brush, target)
		}
	case rl.IsKeyPressed(rl.KeyT):
		// Abre um buraco temporário
		a.streamer.SetTemporary(pos, mapdata.BTAir, 3*time.Second)
	}
}
