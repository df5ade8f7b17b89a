package app

import (
	"fmt"
	"runtime"

	"VoxelStream/shared/util"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// draw renderiza a cena.
func (a *App) draw() {
	rl.BeginDrawing()
	rl.ClearBackground(a.renderer.FogColor)

	a.drawScene()
	a.drawHUD()

	if a.State == StatePaused {
		a.drawPauseMenu()
	}

	rl.EndDrawing()
}

// drawScene renderiza a cena 3D.
func (a *App) drawScene() {
	rl.BeginMode3D(a.Cam.RLCamera)

	if a.Config.WireframeMode {
		rl.EnableWireMode()
	}
	a.renderer.Draw(a.Cam.RLCamera)
	if a.Config.WireframeMode {
		rl.DisableWireMode()
	}

	// Destaque do bloco sob o cursor
	if a.Selected != nil {
		p := a.Selected
		center := util.BlockToWorldPos(float32(p.X)+0.5, float32(p.Y)+0.5, float32(p.Z)+0.5)
		rl.DrawCubeWires(center, 1.02, 1.02, 1.02, rl.Yellow)
	}

	rl.EndMode3D()
}

// drawHUD desenha a interface sobreposta.
func (a *App) drawHUD() {
	// Mira
	cx, cy := int32(rl.GetScreenWidth())/2, int32(rl.GetScreenHeight())/2
	rl.DrawLine(cx-6, cy, cx+6, cy, rl.White)
	rl.DrawLine(cx, cy-6, cx, cy+6, rl.White)

	if a.picking {
		rl.DrawText(fmt.Sprintf("EDIÇÃO | Pincel: %s | Esq: remover | Meio: colocar | T: buraco temporário", a.Brush),
			10, int32(rl.GetScreenHeight())-30, 16, rl.Yellow)
	}

	if !a.Config.ShowDebugInfo {
		return
	}

	width := int32(360)
	height := int32(260)
	x := int32(rl.GetScreenWidth()) - width - 10
	y := int32(10)

	rl.DrawRectangle(x, y, width, height, rl.NewColor(0, 0, 0, 180))
	rl.DrawRectangleLines(x, y, width, height, rl.NewColor(50, 50, 50, 255))

	// FPS
	fps := rl.GetFPS()
	fpsColor := rl.Green
	if fps < 30 {
		fpsColor = rl.Red
	} else if fps < 50 {
		fpsColor = rl.Yellow
	}
	rl.DrawText(fmt.Sprintf("FPS: %d", fps), x+10, y+10, 20, fpsColor)

	netColor := rl.Red
	if a.netClient.IsConnected() {
		netColor = rl.Green
	}
	rl.DrawText(a.connStatus.Load().(string), x+200, y+14, 14, netColor)

	rl.DrawLine(x+10, y+35, x+width-10, y+35, rl.NewColor(100, 100, 100, 100))

	// Localização
	rl.DrawText("LOCALIZAÇÃO", x+10, y+45, 12, rl.Gray)
	block := a.Cam.Block()
	rl.DrawText(fmt.Sprintf("Bloco: (%d, %d, %d)", block.X, block.Y, block.Z), x+10, y+60, 16, rl.White)
	rl.DrawText(fmt.Sprintf("Região: %s", block.Region()), x+10, y+80, 14, rl.LightGray)

	rl.DrawLine(x+10, y+100, x+width-10, y+100, rl.NewColor(100, 100, 100, 100))

	// Streaming
	st := a.streamer.Stats()
	models, drawn := a.renderer.Stats()
	rl.DrawText("STREAMING", x+10, y+110, 12, rl.Gray)
	rl.DrawText(fmt.Sprintf("Regiões: %d | Aguardando: %d | Pedidas: %d", st.Regions, st.Pending, st.Requested), x+10, y+125, 14, rl.LightGray)
	rl.DrawText(fmt.Sprintf("Fila: %d descomp. / %d mesh | Rodando: %d", st.Pool.DecompressQueued, st.Pool.MeshQueued, st.Pool.Running), x+10, y+142, 14, rl.LightGray)
	rl.DrawText(fmt.Sprintf("Modelos: %d | Desenhados: %d | Uploads: %d", models, drawn, a.uploads), x+10, y+159, 14, rl.LightGray)

	if a.frameCount%30 == 0 || a.heapMB == 0 {
		var mem runtime.MemStats
		runtime.ReadMemStats(&mem)
		a.heapMB = mem.HeapAlloc / (1 << 20)
	}
	rl.DrawText(fmt.Sprintf("Heap: %d MB | Último poll: %d dados, %d malhas",
		a.heapMB, len(a.lastReport.Loaded), len(a.lastReport.Meshes)), x+10, y+176, 14, rl.LightGray)

	rl.DrawLine(x+10, y+196, x+width-10, y+196, rl.NewColor(100, 100, 100, 100))

	// Opções do mesher
	onOff := func(b bool) string {
		if b {
			return "on"
		}
		return "off"
	}
	rl.DrawText(fmt.Sprintf("F5 Suavizar: %s | F6 Normais: %s | F7 Ruído: %s",
		onOff(a.Config.Smoothing), onOff(a.Config.MergeNormals), onOff(a.Config.Noise)), x+10, y+206, 14, rl.SkyBlue)
	rl.DrawText(fmt.Sprintf("F8 Oclusão: %d amostras | Tab: edição | F4: wireframe", a.Config.AmbientSamples), x+10, y+223, 14, rl.SkyBlue)
	rl.DrawText("WASD/Espaço/Ctrl: mover | Botão dir.: olhar", x+10, y+240, 14, rl.SkyBlue)
}

// drawPauseMenu desenha o menu de escape centralizado.
func (a *App) drawPauseMenu() {
	screenWidth := int32(rl.GetScreenWidth())
	screenHeight := int32(rl.GetScreenHeight())

	rl.DrawRectangle(0, 0, screenWidth, screenHeight, rl.NewColor(0, 0, 0, 150))

	panelWidth := int32(400)
	panelHeight := int32(220)
	panelX := (screenWidth - panelWidth) / 2
	panelY := (screenHeight - panelHeight) / 2

	rl.DrawRectangle(panelX, panelY, panelWidth, panelHeight, rl.NewColor(30, 30, 35, 255))
	rl.DrawRectangleLines(panelX, panelY, panelWidth, panelHeight, rl.White)

	menuTitle := "PAUSA"
	titleWidth := rl.MeasureText(menuTitle, 24)
	rl.DrawText(menuTitle, panelX+(panelWidth-titleWidth)/2, panelY+30, 24, rl.Gold)

	buttonX := panelX + 50
	buttonWidth := panelWidth - 100
	buttonHeight := int32(40)

	if a.drawButton(buttonX, panelY+90, buttonWidth, buttonHeight, "RETOMAR (ESC)", rl.Green) {
		a.State = StateViewing
	}
	if a.drawButton(buttonX, panelY+145, buttonWidth, buttonHeight, "SAIR", rl.Red) {
		// O loop principal encerra e faz o shutdown
		a.quit.Store(true)
	}
}

// drawButton desenha um botão genérico com hover e retorna true se clicado.
func (a *App) drawButton(x, y, w, h int32, text string, color rl.Color) bool {
	mousePos := rl.GetMousePosition()
	isHover := mousePos.X >= float32(x) && mousePos.X <= float32(x+w) &&
		mousePos.Y >= float32(y) && mousePos.Y <= float32(y+h)

	drawColor := color
	if isHover {
		drawColor.R = uint8(min(int(drawColor.R)+30, 255))
		drawColor.G = uint8(min(int(drawColor.G)+30, 255))
		drawColor.B = uint8(min(int(drawColor.B)+30, 255))
	}

	rl.DrawRectangle(x, y, w, h, rl.NewColor(50, 50, 50, 255))
	rl.DrawRectangleLines(x, y, w, h, drawColor)

	textWidth := rl.MeasureText(text, 18)
	rl.DrawText(text, x+(w-textWidth)/2, y+(h-18)/2, 18, rl.White)

	return isHover && rl.IsMouseButtonPressed(rl.MouseLeftButton)
}
