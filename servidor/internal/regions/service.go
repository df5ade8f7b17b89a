// Package regions entrega as regiões do mundo: primeiro do cache em disco,
// senão gerando, comprimindo e gravando.
package regions

import (
	"fmt"
	"log"
	"sync"

	"VoxelStream/servidor/internal/terrain"
	"VoxelStream/shared/cache"
	"VoxelStream/shared/mapdata"
	"VoxelStream/shared/util"
)

// Origens de uma região servida, usadas como label nas métricas.
const (
	SourceCache     = "cache"
	SourceGenerated = "generated"
)

// Service resolve pedidos de região e de checksum.
type Service struct {
	cache   cache.RegionCache
	gen     *terrain.Generator
	metrics *Metrics

	// Serializa a geração para que duas conexões não gerem a mesma região
	genMu sync.Mutex
}

func NewService(c cache.RegionCache, gen *terrain.Generator, metrics *Metrics) *Service {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Service{cache: c, gen: gen, metrics: metrics}
}

// Region devolve a região no formato de rede [flag][checksum][owner][comprimido].
func (s *Service) Region(coord util.RegionCoord) ([]byte, error) {
	h, compressed, err := s.load(coord)
	if err != nil {
		return nil, err
	}
	return mapdata.EncodeRegion(h, compressed), nil
}

// Verify compara o checksum do cliente com o atual da região.
func (s *Service) Verify(coord util.RegionCoord, checksum uint32) (bool, error) {
	h, _, err := s.load(coord)
	if err != nil {
		return false, err
	}
	match := h.Checksum == checksum
	s.metrics.ChecksumReplies.WithLabelValues(fmt.Sprint(match)).Inc()
	return match, nil
}

func (s *Service) load(coord util.RegionCoord) (mapdata.Header, []byte, error) {
	if h, compressed, ok := s.cache.Read(coord); ok {
		s.metrics.RegionsServed.WithLabelValues(SourceCache).Inc()
		return h, compressed, nil
	}

	s.genMu.Lock()
	defer s.genMu.Unlock()

	// Outra conexão pode ter gerado enquanto esperávamos o lock
	if h, compressed, ok := s.cache.Read(coord); ok {
		s.metrics.RegionsServed.WithLabelValues(SourceCache).Inc()
		return h, compressed, nil
	}

	blocks := s.gen.Generate(coord)
	compressed, err := mapdata.CompressBlocks(blocks)
	if err != nil {
		return mapdata.Header{}, nil, fmt.Errorf("comprimindo região %v: %w", coord, err)
	}
	h := mapdata.Header{
		Flag:     terrain.FlagGenerated,
		Checksum: mapdata.Checksum(blocks),
	}

	if err := s.cache.Write(coord, h, compressed); err != nil {
		// Ainda dá para servir; a próxima requisição gera de novo
		log.Printf("[Regions] Falha ao gravar região %v no cache: %v", coord, err)
	}

	s.metrics.RegionsServed.WithLabelValues(SourceGenerated).Inc()
	return h, compressed, nil
}
