package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"VoxelStream/shared/mapdata"
	"VoxelStream/shared/util"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// RegionModel representa o esquema do banco de dados para uma região.
type RegionModel struct {
	ID        string `gorm:"primaryKey"` // Coordenada formatada "X_Y_Z"
	X, Y, Z   int32  `gorm:"index:idx_pos"`
	Flag      uint32
	Checksum  uint32
	Owner     uint32
	Data      []byte    // Blocos comprimidos
	UpdatedAt time.Time // Para controle interno do GORM
}

// SQLiteCache guarda as regiões numa tabela SQLite via GORM.
type SQLiteCache struct {
	db *gorm.DB
}

// NewSQLiteCache abre (ou cria) o banco em <dir>/regions.db e roda migrações.
func NewSQLiteCache(dir string) (*SQLiteCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "regions.db")

	// Configuramos o logger para ser silencioso em produção
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("falha ao conectar no SQLite: %w", err)
	}

	if err := db.AutoMigrate(&RegionModel{}); err != nil {
		return nil, fmt.Errorf("falha na migração do banco: %w", err)
	}
	return &SQLiteCache{db: db}, nil
}

func (c *SQLiteCache) Exists(coord util.RegionCoord) bool {
	var count int64
	if err := c.db.Model(&RegionModel{}).Where("id = ?", regionKey(coord)).Count(&count).Error; err != nil {
		return false
	}
	return count > 0
}

func (c *SQLiteCache) Write(coord util.RegionCoord, h mapdata.Header, compressed []byte) error {
	model := RegionModel{
		ID:       regionKey(coord),
		X:        coord.X,
		Y:        coord.Y,
		Z:        coord.Z,
		Flag:     h.Flag,
		Checksum: h.Checksum,
		Owner:    h.Owner,
		Data:     compressed,
	}
	// Upsert (Cria ou Atualiza)
	if err := c.db.Save(&model).Error; err != nil {
		return fmt.Errorf("falha ao salvar região %s: %w", model.ID, err)
	}
	return nil
}

func (c *SQLiteCache) Read(coord util.RegionCoord) (mapdata.Header, []byte, bool) {
	var model RegionModel
	if err := c.db.First(&model, "id = ?", regionKey(coord)).Error; err != nil {
		return mapdata.Header{}, nil, false
	}
	h := mapdata.Header{Flag: model.Flag, Checksum: model.Checksum, Owner: model.Owner}
	return h, model.Data, true
}

func (c *SQLiteCache) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
