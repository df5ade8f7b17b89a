package world

import (
	"sort"
	"sync"

	"VoxelStream/shared/util"
)

// Store é a tabela de regiões do cliente.
//
// O mapa tem o próprio RWMutex; as flags de cada Region pertencem ao lock do
// scheduler. Ordem de lock: scheduler → store, nunca o contrário.
type Store struct {
	mu      sync.RWMutex
	regions map[util.RegionCoord]*Region
}

// NewStore cria uma tabela vazia.
func NewStore() *Store {
	return &Store{
		regions: make(map[util.RegionCoord]*Region),
	}
}

// Get retorna a região se ela existir.
func (s *Store) Get(coord util.RegionCoord) (*Region, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.regions[coord]
	return r, ok
}

// GetOrCreate retorna a região, criando-a vazia (toda ar) no primeiro uso.
// created indica se ela acabou de ser sintetizada.
func (s *Store) GetOrCreate(coord util.RegionCoord) (r *Region, created bool) {
	s.mu.RLock()
	r, ok := s.regions[coord]
	s.mu.RUnlock()
	if ok {
		return r, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok = s.regions[coord]; ok {
		return r, false
	}
	r = NewRegion(coord)
	s.regions[coord] = r
	return r, true
}

// Len retorna o número de regiões em memória.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.regions)
}

// Evict remove uma região da tabela. Quem chama garante (com o lock do
// scheduler) que não há job em andamento para ela.
func (s *Store) Evict(coord util.RegionCoord) (*Region, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.regions[coord]
	if ok {
		delete(s.regions, coord)
	}
	return r, ok
}

// Purge descarrega as regiões fora do raio (em regiões) a partir do centro.
// Regiões com job em andamento ficam; o resultado delas ainda precisa ser
// instalado. Exige o lock do scheduler. Retorna as regiões removidas.
func (s *Store) Purge(center util.RegionCoord, radius int32) []*Region {
	s.mu.Lock()
	defer s.mu.Unlock()

	radiusSq := int64(radius) * int64(radius)
	var removed []*Region
	for coord, r := range s.regions {
		if coord.DistSq(center) <= radiusSq || r.InFlight() {
			continue
		}
		removed = append(removed, r)
		delete(s.regions, coord)
	}
	sort.Slice(removed, func(i, j int) bool {
		return removed[i].Coord.Less(removed[j].Coord)
	})
	return removed
}

// Within lista as regiões dentro do raio, da mais próxima para a mais
// distante (empates pela ordem total das coordenadas).
func (s *Store) Within(center util.RegionCoord, radius int32) []*Region {
	s.mu.RLock()
	radiusSq := int64(radius) * int64(radius)
	out := make([]*Region, 0, len(s.regions))
	for coord, r := range s.regions {
		if coord.DistSq(center) <= radiusSq {
			out = append(out, r)
		}
	}
	s.mu.RUnlock()

	sortByDistance(out, center)
	return out
}

// ForEachWithin chama fn para cada região dentro do raio, sem segurar o lock
// do mapa durante a chamada (fn pode usar o scheduler).
func (s *Store) ForEachWithin(center util.RegionCoord, radius int32, fn func(r *Region)) {
	for _, r := range s.Within(center, radius) {
		fn(r)
	}
}

// Snapshot retorna todas as regiões em ordem determinística.
func (s *Store) Snapshot() []*Region {
	s.mu.RLock()
	out := make([]*Region, 0, len(s.regions))
	for _, r := range s.regions {
		out = append(out, r)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].Coord.Less(out[j].Coord)
	})
	return out
}

func sortByDistance(regions []*Region, center util.RegionCoord) {
	sort.Slice(regions, func(i, j int) bool {
		di := regions[i].Coord.DistSq(center)
		dj := regions[j].Coord.DistSq(center)
		if di != dj {
			return di < dj
		}
		return regions[i].Coord.Less(regions[j].Coord)
	})
}
