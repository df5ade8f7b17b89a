// Package cache implementa o cache em disco das regiões comprimidas.
// Qualquer falha de leitura é tratada como "não presente": o chamador
// simplesmente busca a região de novo pela rede.
package cache

import (
	"fmt"
	"log"

	"VoxelStream/shared/mapdata"
	"VoxelStream/shared/util"
)

// RegionCache é o contrato comum aos backends.
type RegionCache interface {
	// Exists verifica presença sem ler o conteúdo.
	Exists(coord util.RegionCoord) bool
	// Write grava cabeçalho e bytes comprimidos da região.
	Write(coord util.RegionCoord, h mapdata.Header, compressed []byte) error
	// Read nunca devolve resultado parcial: ou tudo, ou ok=false.
	Read(coord util.RegionCoord) (mapdata.Header, []byte, bool)
	Close() error
}

// Backends suportados.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
)

// Open abre o backend escolhido no diretório informado.
func Open(backend, dir string) (RegionCache, error) {
	var (
		c   RegionCache
		err error
	)
	switch backend {
	case "", BackendFile:
		c, err = NewFileCache(dir)
	case BackendSQLite:
		c, err = NewSQLiteCache(dir)
	case BackendBadger:
		c, err = NewBadgerCache(dir)
	default:
		return nil, fmt.Errorf("backend de cache desconhecido: %q", backend)
	}
	if err != nil {
		return nil, err
	}
	log.Printf("[Cache] Backend %q aberto em %s", backend, dir)
	return c, nil
}

// regionKey gera a chave textual usada pelos backends de banco.
func regionKey(coord util.RegionCoord) string {
	return fmt.Sprintf("%d_%d_%d", coord.X, coord.Y, coord.Z)
}
