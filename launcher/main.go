package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"
)

func main() {
	binDir := flag.String("bin", defaultBinDir(), "Diretório com os binários do servidor e do cliente")
	addr := flag.String("addr", "127.0.0.1:8080", "Endereço em que o servidor vai escutar")
	wait := flag.Duration("wait", 15*time.Second, "Tempo máximo esperando o servidor abrir a porta")
	flag.Parse()

	fmt.Println("╔══════════════════════════════════════╗")
	fmt.Println("║        VoxelStream Launcher          ║")
	fmt.Println("╚══════════════════════════════════════╝")

	// 1. Iniciar o Servidor
	fmt.Println("[1/2] Iniciando Servidor...")
	serverCmd := exec.Command(binPath(*binDir, "voxelstream-server"), "-listen", *addr)
	serverCmd.Dir = *binDir
	serverCmd.Stdout = os.Stdout
	serverCmd.Stderr = os.Stderr
	if err := serverCmd.Start(); err != nil {
		log.Fatalf("Erro ao iniciar servidor: %v", err)
	}
	defer func() {
		if serverCmd.Process != nil {
			_ = serverCmd.Process.Kill()
			_ = serverCmd.Wait()
		}
	}()

	// 2. Aguardar o servidor abrir a porta
	fmt.Println("Aguardando inicialização do servidor...")
	if err := waitForPort(*addr, *wait); err != nil {
		fmt.Printf("ERRO CRÍTICO: %v\n", err)
		return
	}

	// 3. Iniciar o Cliente apontando para o servidor
	fmt.Println("[2/2] Abrindo Cliente...")
	clientCmd := exec.Command(binPath(*binDir, "voxelstream"), "-server", "ws://"+*addr+"/ws")
	clientCmd.Dir = *binDir // Diretório de trabalho para carregar assets e config
	if err := clientCmd.Start(); err != nil {
		fmt.Printf("ERRO CRÍTICO: Não foi possível executar o cliente: %v\n", err)
		return
	}

	fmt.Println("\nSucesso! VoxelStream foi iniciado. O servidor fecha junto com o cliente.")
	if err := clientCmd.Wait(); err != nil {
		fmt.Printf("Cliente terminou com erro: %v\n", err)
	}
}

// waitForPort tenta conectar até o servidor aceitar ou o prazo acabar.
func waitForPort(addr string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", addr, 500*time.Millisecond)
		if err == nil {
			conn.Close()
			return nil
		}
		time.Sleep(250 * time.Millisecond)
	}
	return fmt.Errorf("servidor não respondeu em %s após %v", addr, timeout)
}

func binPath(dir, name string) string {
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	abs, err := filepath.Abs(filepath.Join(dir, name))
	if err != nil {
		return filepath.Join(dir, name)
	}
	return abs
}

// defaultBinDir é o diretório do próprio launcher.
func defaultBinDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}
