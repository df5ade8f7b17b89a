package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// Cores para o terminal (ANSI)
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorCyan   = "\033[36m"
)

type component struct {
	name    string
	dir     string
	output  string
	cgo     bool
	ldflags string
}

func main() {
	outDir := flag.String("out", "bin", "Diretório de saída dos binários")
	static := flag.Bool("static", runtime.GOOS == "windows", "Linkar estaticamente (MSYS2 no Windows)")
	pause := flag.Bool("pause", runtime.GOOS == "windows", "Esperar Enter antes de sair")
	flag.Parse()

	fmt.Println(ColorCyan + "╔══════════════════════════════════════╗" + ColorReset)
	fmt.Println(ColorCyan + "║       VoxelStream Native Builder     ║" + ColorReset)
	fmt.Println(ColorCyan + "╚══════════════════════════════════════╝" + ColorReset)

	start := time.Now()
	setupEnvironment()

	ldflags := "-s -w"
	if *static {
		ldflags = "-extldflags=-static -s -w"
	}
	clientFlags := ldflags
	if runtime.GOOS == "windows" {
		clientFlags += " -H=windowsgui"
	}

	// O servidor usa CGO por causa do backend sqlite; o cliente, pelo raylib
	components := []component{
		{"SERVIDOR (CGO)", "servidor", exeName(*outDir, "voxelstream-server"), true, ldflags},
		{"CLIENTE (CGO + GUI)", "cliente", exeName(*outDir, "voxelstream"), true, clientFlags},
		{"LAUNCHER (Pure Go)", "launcher", exeName(*outDir, "voxelstream-launcher"), false, "-s -w"},
	}
	for i, c := range components {
		fmt.Printf(ColorYellow+"\n[%d/%d]"+ColorReset, i+1, len(components))
		if err := buildComponent(c); err != nil {
			fatal(err, *pause)
		}
	}

	fmt.Printf("\n"+ColorCyan+"Build finalizada com sucesso em %v!"+ColorReset+"\n", time.Since(start).Round(time.Second))
	fmt.Printf(ColorYellow+"Dica: Execute o '%s' para iniciar servidor e cliente."+ColorReset+"\n", exeName(*outDir, "voxelstream-launcher"))

	if *pause {
		fmt.Println("\nPressione Enter para sair...")
		fmt.Scanln()
	}
}

// exeName monta o caminho do binário com a extensão da plataforma.
func exeName(dir, name string) string {
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return filepath.Join(dir, name)
}

func setupEnvironment() {
	fmt.Println(ColorYellow + "\n[0] Configurando ambiente de compilação..." + ColorReset)

	// Adicionar MSYS2 ao PATH se estiver no Windows
	if runtime.GOOS == "windows" {
		msysPath := `C:\msys64\mingw64\bin`
		currentPath := os.Getenv("PATH")
		if !strings.Contains(currentPath, msysPath) {
			os.Setenv("PATH", msysPath+";"+currentPath)
			fmt.Printf("  - PATH atualizado: %s adicionado.\n", msysPath)
		}
		os.Setenv("CC", "gcc")
		fmt.Println("  - Compilador C: gcc (MSYS2)")
	}
}

func buildComponent(c component) error {
	fmt.Printf(ColorYellow+" Compilando %s..."+ColorReset+"\n", c.name)

	args := []string{"build", "-ldflags", c.ldflags, "-o", c.output, "./" + c.dir}
	cmd := exec.Command("go", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	cgoValue := "0"
	if c.cgo {
		cgoValue = "1"
	}
	cmd.Env = append(os.Environ(), "CGO_ENABLED="+cgoValue)

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("falha ao compilar %s: %w", c.name, err)
	}

	fmt.Printf(ColorGreen+"  - %s compilado com sucesso -> %s"+ColorReset+"\n", c.name, c.output)
	return nil
}

func fatal(err error, pause bool) {
	fmt.Printf("\n"+ColorRed+"[ERRO FATAL] %v"+ColorReset+"\n", err)
	if pause {
		fmt.Println("Pressione Enter para sair...")
		fmt.Scanln()
	}
	os.Exit(1)
}
