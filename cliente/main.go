package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"runtime"

	"VoxelStream/cliente/internal/app"
	"VoxelStream/cliente/internal/assets"
	"VoxelStream/cliente/internal/scheduler"
	"VoxelStream/shared/cache"
	"VoxelStream/shared/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Raylib/OpenGL exige rodar na thread principal do SO
	runtime.LockOSThread()

	// Flags de linha de comando
	configPath := flag.String("config", config.DefaultPath(), "Arquivo de configuração (.json ou .yaml)")
	serverURL := flag.String("server", "", "URL do servidor de regiões (padrão: ws://127.0.0.1:8080/ws)")
	cacheBackend := flag.String("cache", "", "Backend do cache: file, sqlite ou badger")
	cacheDir := flag.String("cache-dir", "", "Diretório do cache de regiões")
	viewRadius := flag.Int("view", 0, "Raio de visão em regiões")
	workers := flag.Int("workers", -1, "Threads do mesher (0 = número de CPUs)")
	metricsAddr := flag.String("metrics", "", "Endereço para expor métricas Prometheus (ex.: :9100)")
	paletteDir := flag.String("assets", "assets/config", "Diretório com palette.json")
	fullscreen := flag.Bool("fullscreen", false, "Iniciar em tela cheia")
	debug := flag.Bool("debug", false, "Mostrar informações de debug")
	width := flag.Int("width", 0, "Largura da janela")
	height := flag.Int("height", 0, "Altura da janela")
	flag.Parse()

	// Configurar Log em Arquivo
	f, err := os.OpenFile("debug_vs.log", os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err == nil {
		defer f.Close()
		log.SetOutput(f)
		log.Println("--- INICIANDO VOXELSTREAM ---")
	}
	log.SetFlags(log.Ltime | log.Lshortfile)

	// Carregar configurações
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("[Config] %v", err)
	}

	// Aplicar flags de linha de comando (sobrescrevem o arquivo)
	if *serverURL != "" {
		cfg.ServerURL = *serverURL
	}
	if *cacheBackend != "" {
		cfg.CacheBackend = *cacheBackend
	}
	if *cacheDir != "" {
		cfg.CacheDir = *cacheDir
	}
	if *viewRadius > 0 {
		cfg.ViewRadius = int32(*viewRadius)
	}
	if *workers >= 0 {
		cfg.MesherThreads = *workers
	}
	if *metricsAddr != "" {
		cfg.MetricsAddr = *metricsAddr
	}
	if *fullscreen {
		cfg.Fullscreen = true
	}
	if *debug {
		cfg.ShowDebugInfo = true
	}
	if *width > 0 {
		cfg.WindowWidth = int32(*width)
	}
	if *height > 0 {
		cfg.WindowHeight = int32(*height)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[Config] %v", err)
	}

	regionCache, err := cache.Open(cfg.CacheBackend, cfg.CacheDir)
	if err != nil {
		log.Fatalf("[Cache] Não foi possível abrir o cache %s em %s: %v", cfg.CacheBackend, cfg.CacheDir, err)
	}
	log.Printf("[Cache] Backend %s em %s", cfg.CacheBackend, cfg.CacheDir)

	palette, err := assets.NewManager(*paletteDir)
	if err != nil {
		log.Printf("[Assets] AVISO: paleta inválida, usando a padrão: %v", err)
		palette = assets.Default()
	}

	metrics := scheduler.NewMetrics(prometheus.DefaultRegisterer)
	if cfg.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			log.Printf("[Metrics] Expondo métricas em %s/metrics", cfg.MetricsAddr)
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				log.Printf("[Metrics] Servidor de métricas parou: %v", err)
			}
		}()
	}

	// Criar e rodar a aplicação
	application := app.New(cfg, *configPath, regionCache, palette, metrics)
	application.Run()
}
