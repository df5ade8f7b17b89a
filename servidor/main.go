package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"VoxelStream/servidor/internal/hub"
	"VoxelStream/servidor/internal/regions"
	"VoxelStream/servidor/internal/terrain"
	"VoxelStream/shared/cache"
	"VoxelStream/shared/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	configPath := flag.String("config", config.DefaultPath(), "Arquivo de configuração (.json ou .yaml)")
	listen := flag.String("listen", "", "Endereço de escuta (padrão: :8080)")
	cacheBackend := flag.String("cache", "", "Backend do cache: file, sqlite ou badger")
	cacheDir := flag.String("cache-dir", "", "Diretório do cache de regiões")
	seed := flag.Int64("seed", 0, "Seed do gerador de terreno (0 = a do arquivo)")
	metricsFlag := flag.Bool("metrics", false, "Expor /metrics no mesmo endereço do websocket")
	flag.Parse()

	// Configurar Log em Arquivo
	f, err := os.OpenFile("debug_server.log", os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err == nil {
		defer f.Close()
		log.SetOutput(f)
		log.Println("--- INICIANDO SERVIDOR VOXELSTREAM ---")
	}
	log.SetFlags(log.Ltime | log.Lshortfile)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("[Config] %v", err)
	}
	if *listen != "" {
		cfg.ListenAddr = *listen
	}
	if port := os.Getenv("PORT"); port != "" && *listen == "" {
		cfg.ListenAddr = ":" + port
	}
	if *cacheBackend != "" {
		cfg.CacheBackend = *cacheBackend
	}
	if *cacheDir != "" {
		cfg.CacheDir = *cacheDir
	}
	if *seed != 0 {
		cfg.WorldSeed = *seed
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[Config] %v", err)
	}

	regionCache, err := cache.Open(cfg.CacheBackend, cfg.CacheDir)
	if err != nil {
		log.Fatalf("[Cache] Não foi possível abrir o cache %s em %s: %v", cfg.CacheBackend, cfg.CacheDir, err)
	}
	defer regionCache.Close()

	metrics := regions.NewMetrics(prometheus.DefaultRegisterer)
	service := regions.NewService(regionCache, terrain.New(cfg.WorldSeed), metrics)
	h := hub.New(service, metrics)

	mux := http.NewServeMux()
	mux.Handle("/ws", h)
	if *metricsFlag || cfg.MetricsAddr != "" {
		mux.Handle("/metrics", promhttp.Handler())
	}

	// Verificar a porta antes para dar uma mensagem clara
	ln, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		log.Printf("╔══════════════════════════════════════════════════════════════╗")
		log.Printf("║ ERRO CRÍTICO: Não foi possível abrir %-24s║", cfg.ListenAddr)
		log.Printf("║ Provavelmente há outra instância do servidor rodando.        ║")
		log.Printf("╚══════════════════════════════════════════════════════════════╝")
		log.Fatalf("Erro ao iniciar servidor: %v", err)
	}

	srv := &http.Server{Handler: mux}
	go func() {
		log.Printf("[Server] VoxelStream servindo regiões em %s (seed %d, cache %s)", cfg.ListenAddr, cfg.WorldSeed, cfg.CacheBackend)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Erro fatal no servidor HTTP: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("[Server] Encerrando...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("[Server] Erro no shutdown: %v", err)
	}
	// Shutdown não fecha conexões sequestradas pelo upgrade
	h.Close()
}
