package cache

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"VoxelStream/shared/mapdata"
	"VoxelStream/shared/util"
)

// FileCache grava um arquivo por região: <dir>/<x>/<y>_<z>.region
type FileCache struct {
	dir string
}

// NewFileCache cria o diretório base se necessário.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("falha ao criar diretório do cache: %w", err)
	}
	return &FileCache{dir: dir}, nil
}

func (c *FileCache) path(coord util.RegionCoord) string {
	return filepath.Join(c.dir, fmt.Sprint(coord.X), fmt.Sprintf("%d_%d.region", coord.Y, coord.Z))
}

func (c *FileCache) Exists(coord util.RegionCoord) bool {
	info, err := os.Stat(c.path(coord))
	return err == nil && info.Size() >= mapdata.HeaderSize
}

// Write grava em um arquivo temporário e renomeia, para nunca deixar
// um arquivo pela metade no caminho final.
func (c *FileCache) Write(coord util.RegionCoord, h mapdata.Header, compressed []byte) error {
	p := c.path(coord)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("falha ao criar diretório %s: %w", filepath.Dir(p), err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(p), ".region-*")
	if err != nil {
		return fmt.Errorf("falha ao criar temporário: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(mapdata.EncodeRegion(h, compressed)); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("falha ao gravar região %v: %w", coord, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("falha ao fechar região %v: %w", coord, err)
	}
	if err := os.Rename(tmpName, p); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("falha ao publicar região %v: %w", coord, err)
	}
	return nil
}

func (c *FileCache) Read(coord util.RegionCoord) (mapdata.Header, []byte, bool) {
	raw, err := os.ReadFile(c.path(coord))
	if err != nil {
		return mapdata.Header{}, nil, false
	}
	h, compressed, err := mapdata.DecodeRegion(raw)
	if err != nil {
		log.Printf("[Cache] Arquivo inválido para %v: %v", coord, err)
		return mapdata.Header{}, nil, false
	}
	return h, compressed, true
}

func (c *FileCache) Close() error { return nil }
