package cache

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"

	"VoxelStream/shared/mapdata"
	"VoxelStream/shared/util"

	"github.com/dgraph-io/badger/v3"
)

// BadgerCache guarda as regiões no BadgerDB, valor no mesmo formato do arquivo.
type BadgerCache struct {
	db *badger.DB
}

// NewBadgerCache abre o banco em <dir>/badger.
func NewBadgerCache(dir string) (*BadgerCache, error) {
	opts := badger.DefaultOptions(filepath.Join(dir, "badger"))
	opts.Logger = nil // BadgerDB é muito verboso

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("falha ao abrir BadgerDB: %w", err)
	}
	return &BadgerCache{db: db}, nil
}

func badgerKey(coord util.RegionCoord) []byte {
	return []byte("region:" + regionKey(coord))
}

func (c *BadgerCache) Exists(coord util.RegionCoord) bool {
	err := c.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(badgerKey(coord))
		return err
	})
	return err == nil
}

func (c *BadgerCache) Write(coord util.RegionCoord, h mapdata.Header, compressed []byte) error {
	value := mapdata.EncodeRegion(h, compressed)
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(badgerKey(coord), value)
	})
	if err != nil {
		return fmt.Errorf("falha ao salvar região %v: %w", coord, err)
	}
	return nil
}

func (c *BadgerCache) Read(coord util.RegionCoord) (mapdata.Header, []byte, bool) {
	var raw []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(coord))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			log.Printf("[Cache] Erro lendo %v do BadgerDB: %v", coord, err)
		}
		return mapdata.Header{}, nil, false
	}
	h, compressed, err := mapdata.DecodeRegion(raw)
	if err != nil {
		log.Printf("[Cache] Valor inválido para %v: %v", coord, err)
		return mapdata.Header{}, nil, false
	}
	return h, compressed, true
}

func (c *BadgerCache) Close() error {
	return c.db.Close()
}
