package app

import (
	"log"
	"sync/atomic"
	"time"

	"VoxelStream/cliente/internal/assets"
	"VoxelStream/cliente/internal/camera"
	"VoxelStream/cliente/internal/client"
	"VoxelStream/cliente/internal/render"
	"VoxelStream/cliente/internal/scheduler"
	"VoxelStream/cliente/internal/world"
	"VoxelStream/shared/cache"
	"VoxelStream/shared/config"
	"VoxelStream/shared/mapdata"
	"VoxelStream/shared/util"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// AppState representa os estados possíveis da aplicação.
type AppState int

const (
	StateViewing AppState = iota // Visualizando o mundo
	StatePaused                  // Pausado (streaming continua, input não)
)

// App é a aplicação principal do VoxelStream.
type App struct {
	Config     *config.Config
	ConfigPath string
	State      AppState

	Cam *camera.CameraController

	// Informações de debug
	frameCount int
	lastReport scheduler.PollReport
	uploads    int
	heapMB     uint64
	quit       atomic.Bool

	// Bloco sob o cursor (modo edição)
	Selected   *util.BlockPos
	Brush      mapdata.BlockType
	picking    bool
	pickViewer util.RegionCoord
	pickGate   pickGate

	// Pipeline de streaming
	cache     cache.RegionCache
	metrics   *scheduler.Metrics
	store     *world.Store
	pool      *scheduler.Pool
	streamer  *Streamer
	netClient *client.NetworkClient
	renderer  *render.Renderer
	palette   *assets.Manager
	pickBuf   *render.PickBuffer

	connStatus atomic.Value // string, escrito pela goroutine de conexão
}

// New cria uma nova instância da aplicação. O cache é fechado no shutdown.
func New(cfg *config.Config, configPath string, c cache.RegionCache, palette *assets.Manager, metrics *scheduler.Metrics) *App {
	a := &App{
		Config:     cfg,
		ConfigPath: configPath,
		State:      StateViewing,
		Brush:      mapdata.BTStone,
		cache:      c,
		palette:    palette,
		metrics:    metrics,
	}
	a.connStatus.Store("Desconectado")
	return a
}

// Run inicia o loop principal da aplicação.
func (a *App) Run() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[PANIC] Erro fatal recuperado: %v", r)
			panic(r)
		}
	}()

	// Inicializar janela raylib
	rl.SetConfigFlags(rl.FlagMsaa4xHint | rl.FlagWindowResizable)
	rl.InitWindow(a.Config.WindowWidth, a.Config.WindowHeight, a.Config.WindowTitle)
	rl.SetTraceLogLevel(rl.LogWarning) // Reduz ruído no terminal

	if a.Config.Fullscreen {
		rl.ToggleFullscreen()
	}

	rl.SetTargetFPS(a.Config.TargetFPS)
	rl.SetExitKey(0) // ESC pausa em vez de fechar

	// Começa acima da origem, olhando para o terreno
	a.Cam = camera.New(util.BlockToWorldPos(16, 16, 48), a.Config.FOV, a.Config.CameraSpeed)

	log.Println("[App] Janela inicializada com sucesso")
	log.Printf("[App] Resolução: %dx%d", a.Config.WindowWidth, a.Config.WindowHeight)

	a.renderer = render.NewRenderer(a.palette, float32(a.Config.ViewRadius*util.RegionSize))
	a.pickBuf = render.NewPickBuffer(int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight()))

	a.store = world.NewStore()
	a.pool = scheduler.New(a.store, scheduler.Options{
		Workers:      a.Config.MesherThreads,
		DropCutoffSq: a.Config.DropCutoffSq(),
		Mesher:       mesherOptions(a.Config, false),
		Metrics:      a.metrics,
	})
	log.Printf("[App] Scheduler com %d workers", a.pool.Workers())

	a.netClient = client.NewNetworkClient(a.Config.ServerURL)
	a.streamer = NewStreamer(a.pool, a.store, a.cache, a.netClient, a.renderer, streamerConfig(a.Config))

	// Conexão em background: o mundo já aparece a partir do cache
	go a.connectServer()

	// Loop principal
	for !rl.WindowShouldClose() && !a.quit.Load() {
		a.update()
		a.draw()
	}

	// Cleanup
	a.shutdown()
	rl.CloseWindow()
}

// update atualiza a lógica a cada frame.
func (a *App) update() {
	a.frameCount++
	dt := rl.GetFrameTime()

	if rl.IsWindowResized() {
		a.pickBuf.Resize(int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight()))
	}

	a.updateInput()
	if a.State == StateViewing {
		a.updateCamera(dt)
		a.updateEditing()
	}
	a.updateStreaming(dt)
}

// updateStreaming roda um passo do streamer com o observador na câmera.
func (a *App) updateStreaming(dt float32) {
	viewer := a.Cam.Region()
	if a.picking && viewer != a.pickViewer {
		// Códigos de picking são relativos ao observador
		a.pickViewer = viewer
		a.pickGate.Begin(viewer, a.pool.MarkDirty(neighborsWithin(viewer, 2)...))
	}

	rep := a.streamer.Update(time.Duration(float64(dt)*float64(time.Second)), viewer)
	if a.picking {
		a.pickGate.Installed(rep.Meshes)
	}
	a.uploads += len(rep.Meshes)
	if len(rep.Loaded) > 0 || len(rep.Meshes) > 0 {
		a.lastReport = rep
	}
}

// shutdown realiza a limpeza de recursos.
func (a *App) shutdown() {
	log.Println("[App] Finalizando aplicação...")
	a.quit.Store(true)

	if err := a.netClient.Close(); err != nil {
		log.Printf("[App] Erro ao fechar conexão: %v", err)
	}
	a.pool.Close()
	a.pickBuf.Unload()
	a.renderer.Unload()

	if err := a.cache.Close(); err != nil {
		log.Printf("[App] Erro ao fechar cache: %v", err)
	}

	if a.ConfigPath != "" {
		if err := a.Config.Save(a.ConfigPath); err != nil {
			log.Printf("[App] Erro ao salvar configurações: %v", err)
		}
	}
}
