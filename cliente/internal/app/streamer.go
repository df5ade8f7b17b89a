package app

import (
	"log"
	"sort"
	"time"

	"VoxelStream/cliente/internal/meshing"
	"VoxelStream/cliente/internal/scheduler"
	"VoxelStream/cliente/internal/world"
	"VoxelStream/shared/cache"
	"VoxelStream/shared/mapdata"
	"VoxelStream/shared/util"
)

// Uploader recebe as malhas na thread dona. Release sempre vem antes do
// Upload que substitui a malha da mesma região.
type Uploader interface {
	Upload(coord util.RegionCoord, mesh *meshing.MeshResult)
	Release(coord util.RegionCoord)
}

// Fetcher pede dados ao servidor. Implementado por client.NetworkClient.
type Fetcher interface {
	RequestRegion(coord util.RegionCoord) error
	VerifyChecksum(coord util.RegionCoord, checksum uint32) error
}

// StreamerConfig são os parâmetros de streaming.
type StreamerConfig struct {
	ViewRadius       int32         // regiões em volta do observador que recebem malha
	KeepRadius       int32         // além disso as regiões são descarregadas
	ChecksumInterval time.Duration // 0 desliga a verificação
	LoadsPerFrame    int           // referências novas por frame
	RetryAfter       time.Duration // novo pedido se a região não chegou
	EvictEvery       time.Duration
}

// DefaultStreamerConfig retorna valores razoáveis para um raio de visão.
func DefaultStreamerConfig(viewRadius int32) StreamerConfig {
	return StreamerConfig{
		ViewRadius:       viewRadius,
		KeepRadius:       viewRadius + 3,
		ChecksumInterval: 15 * time.Second,
		LoadsPerFrame:    64,
		RetryAfter:       5 * time.Second,
		EvictEvery:       2 * time.Second,
	}
}

// LightCandidate é uma lâmpada de uma região pronta, em coordenadas absolutas.
type LightCandidate struct {
	Pos     util.BlockPos
	Type    mapdata.BlockType
	Ambient float32
}

// StreamerStats é usado no HUD de debug.
type StreamerStats struct {
	Regions   int
	Pending   int
	Requested int
	Pool      scheduler.Stats
}

type eventKind int

const (
	eventRegion eventKind = iota
	eventChecksum
)

type event struct {
	kind  eventKind
	coord util.RegionCoord
	data  []byte
	match bool
}

// Streamer liga rede, cache, scheduler e GPU. Todos os métodos, exceto
// HandleRegion e HandleChecksum, rodam apenas na thread dona.
type Streamer struct {
	pool     *scheduler.Pool
	store    *world.Store
	cache    cache.RegionCache
	fetcher  Fetcher
	uploader Uploader
	cfg      StreamerConfig
	now      func() time.Time

	inbox     chan event
	pending   map[util.RegionCoord]*mapdata.RegionData
	requested map[util.RegionCoord]time.Time
	temporary map[util.RegionCoord]struct{}
	offsets   []util.RegionCoord

	viewer     util.RegionCoord
	sinceEvict time.Duration
}

// NewStreamer cria o streamer. fetcher pode ser nil (somente cache).
func NewStreamer(pool *scheduler.Pool, store *world.Store, c cache.RegionCache, fetcher Fetcher, uploader Uploader, cfg StreamerConfig) *Streamer {
	return &Streamer{
		pool:      pool,
		store:     store,
		cache:     c,
		fetcher:   fetcher,
		uploader:  uploader,
		cfg:       cfg,
		now:       time.Now,
		inbox:     make(chan event, 1024),
		pending:   make(map[util.RegionCoord]*mapdata.RegionData),
		requested: make(map[util.RegionCoord]time.Time),
		temporary: make(map[util.RegionCoord]struct{}),
		offsets:   sphereOffsets(cfg.ViewRadius),
	}
}

// sphereOffsets lista os deslocamentos dentro do raio, do centro para fora.
func sphereOffsets(radius int32) []util.RegionCoord {
	var out []util.RegionCoord
	rsq := int64(radius) * int64(radius)
	origin := util.RegionCoord{}
	for z := -radius; z <= radius; z++ {
		for y := -radius; y <= radius; y++ {
			for x := -radius; x <= radius; x++ {
				c := util.NewRegionCoord(x, y, z)
				if c.DistSq(origin) <= rsq {
					out = append(out, c)
				}
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		di, dj := out[i].DistSq(origin), out[j].DistSq(origin)
		if di != dj {
			return di < dj
		}
		return out[i].Less(out[j])
	})
	return out
}

// HandleRegion recebe bytes de região da rede. Seguro em qualquer goroutine.
// Com a caixa de entrada cheia o evento é descartado; a região volta a ser
// pedida depois de RetryAfter.
func (s *Streamer) HandleRegion(coord util.RegionCoord, data []byte) {
	s.push(event{kind: eventRegion, coord: coord, data: data})
}

// HandleChecksum recebe o resultado de uma verificação. Seguro em qualquer goroutine.
func (s *Streamer) HandleChecksum(coord util.RegionCoord, match bool) {
	s.push(event{kind: eventChecksum, coord: coord, match: match})
}

func (s *Streamer) push(ev event) {
	select {
	case s.inbox <- ev:
	default:
		log.Printf("[App] Caixa de entrada cheia, evento de %v descartado", ev.coord)
	}
}

// Update roda um passo do streaming. Retorna o relatório do Poll para o HUD.
func (s *Streamer) Update(dt time.Duration, viewer util.RegionCoord) scheduler.PollReport {
	if viewer != s.viewer {
		s.viewer = viewer
		s.pool.SetViewer(viewer)
	}

	s.drainInbox()
	s.referenceMissing()
	s.submitPending()
	s.tickTemporary(dt)
	s.pool.SubmitDirty(viewer, s.cfg.ViewRadius)

	rep := s.pool.Poll()
	for _, m := range rep.Meshes {
		if m.Previous != nil {
			s.uploader.Release(m.Coord)
		}
		s.uploader.Upload(m.Coord, m.Mesh)
	}

	s.verifyChecksums()

	s.sinceEvict += dt
	if s.cfg.EvictEvery > 0 && s.sinceEvict >= s.cfg.EvictEvery {
		s.sinceEvict = 0
		s.evict()
	}
	return rep
}

func (s *Streamer) drainInbox() {
	for {
		select {
		case ev := <-s.inbox:
			switch ev.kind {
			case eventRegion:
				s.receiveRegion(ev.coord, ev.data)
			case eventChecksum:
				if !ev.match {
					log.Printf("[App] Checksum divergente em %v, pedindo de novo", ev.coord)
					s.request(ev.coord)
				}
			}
		default:
			return
		}
	}
}

func (s *Streamer) receiveRegion(coord util.RegionCoord, raw []byte) {
	h, compressed, err := mapdata.DecodeRegion(raw)
	if err != nil {
		log.Printf("[App] Região %v recebida com cabeçalho inválido: %v", coord, err)
		delete(s.requested, coord)
		return
	}
	if s.cache != nil {
		if err := s.cache.Write(coord, h, compressed); err != nil {
			log.Printf("[Cache] Erro ao gravar região %v: %v", coord, err)
		}
	}
	delete(s.requested, coord)
	s.pending[coord] = mapdata.NewRegionData(coord, h, compressed)
}

// referenceMissing cria as regiões do raio de visão que ainda não têm
// dados, usando o cache quando possível e a rede caso contrário.
func (s *Streamer) referenceMissing() {
	var missing []util.RegionCoord
	s.pool.View(func(store *world.Store) {
		for _, off := range s.offsets {
			c := s.viewer.Add(off)
			if r, ok := store.Get(c); ok && (r.Loaded || r.Loading) {
				continue
			}
			missing = append(missing, c)
		}
	})

	now := s.now()
	loads := 0
	for _, c := range missing {
		if s.cfg.LoadsPerFrame > 0 && loads >= s.cfg.LoadsPerFrame {
			return
		}
		if _, ok := s.pending[c]; ok {
			continue
		}
		if at, ok := s.requested[c]; ok && now.Sub(at) < s.cfg.RetryAfter {
			continue
		}
		loads++

		if s.cache != nil {
			if h, compressed, ok := s.cache.Read(c); ok {
				s.pending[c] = mapdata.NewRegionData(c, h, compressed)
				continue
			}
		}
		s.store.GetOrCreate(c)
		s.request(c)
	}
}

func (s *Streamer) request(c util.RegionCoord) {
	if s.fetcher == nil {
		return
	}
	if err := s.fetcher.RequestRegion(c); err != nil {
		return
	}
	s.requested[c] = s.now()
}

// submitPending envia os dados recebidos para descompressão, dos mais
// próximos para os mais distantes.
func (s *Streamer) submitPending() {
	if len(s.pending) == 0 {
		return
	}
	coords := make([]util.RegionCoord, 0, len(s.pending))
	for c := range s.pending {
		coords = append(coords, c)
	}
	sort.Slice(coords, func(i, j int) bool {
		di, dj := coords[i].DistSq(s.viewer), coords[j].DistSq(s.viewer)
		if di != dj {
			return di < dj
		}
		return coords[i].Less(coords[j])
	})

	for _, c := range coords {
		switch s.pool.SubmitDecompress(s.pending[c]) {
		case scheduler.Submitted, scheduler.Rejected:
			delete(s.pending, c)
		case scheduler.Contended:
			return
		case scheduler.InFlight:
			// Fica para o próximo frame
		}
	}
}

// SetBlock edita um bloco. Blocos na borda invalidam também a vizinha.
func (s *Streamer) SetBlock(pos util.BlockPos, bt mapdata.BlockType) bool {
	x, y, z := pos.Local()
	return s.pool.Edit(pos.Region(), func(r *world.Region) (bool, util.Directions) {
		return r.Data.SetBlock(x, y, z, bt), util.BoundaryDirs(x, y, z)
	})
}

// SetTemporary troca um bloco por outro durante dur (efeito "gelatina").
func (s *Streamer) SetTemporary(pos util.BlockPos, bt mapdata.BlockType, dur time.Duration) bool {
	x, y, z := pos.Local()
	coord := pos.Region()
	ok := s.pool.Edit(coord, func(r *world.Region) (bool, util.Directions) {
		return r.Data.AddOverride(x, y, z, bt, dur), util.BoundaryDirs(x, y, z)
	})
	if ok {
		s.temporary[coord] = struct{}{}
	}
	return ok
}

func (s *Streamer) tickTemporary(dt time.Duration) {
	for coord := range s.temporary {
		active := true
		s.pool.Edit(coord, func(r *world.Region) (bool, util.Directions) {
			touched := util.DirNone
			for _, o := range r.Data.Overrides() {
				touched |= boundaryOfOffset(int(o.Offset))
			}
			expired := r.Data.TickOverrides(dt)
			active = len(r.Data.Overrides()) > 0
			return expired, touched
		})
		if !active {
			delete(s.temporary, coord)
		}
	}
}

func boundaryOfOffset(offset int) util.Directions {
	x := offset % util.RegionSize
	y := (offset / util.RegionSize) % util.RegionSize
	z := offset / (util.RegionSize * util.RegionSize)
	return util.BoundaryDirs(x, y, z)
}

// verifyChecksums pede a verificação das regiões carregadas cujo prazo venceu.
func (s *Streamer) verifyChecksums() {
	if s.cfg.ChecksumInterval <= 0 || s.fetcher == nil {
		return
	}
	type check struct {
		coord    util.RegionCoord
		checksum uint32
	}
	var due []check
	now := s.now()
	s.pool.View(func(store *world.Store) {
		for _, r := range store.Within(s.viewer, s.cfg.ViewRadius) {
			if !r.Loaded || r.Loading {
				continue
			}
			if r.Data.ChecksumTimeout.IsZero() {
				r.Data.ChecksumTimeout = now.Add(s.cfg.ChecksumInterval)
				continue
			}
			if now.Before(r.Data.ChecksumTimeout) {
				continue
			}
			r.Data.ChecksumTimeout = now.Add(s.cfg.ChecksumInterval)
			due = append(due, check{r.Coord, r.Data.Header.Checksum})
		}
	})
	for _, c := range due {
		if err := s.fetcher.VerifyChecksum(c.coord, c.checksum); err != nil {
			log.Printf("[App] Não foi possível verificar checksum de %v: %v", c.coord, err)
		}
	}
}

func (s *Streamer) evict() {
	removed := s.pool.Evict(s.viewer, s.cfg.KeepRadius)
	for _, r := range removed {
		if r.Mesh != nil {
			s.uploader.Release(r.Coord)
		}
		delete(s.pending, r.Coord)
		delete(s.requested, r.Coord)
		delete(s.temporary, r.Coord)
	}
	if len(removed) > 0 {
		log.Printf("[App] %d regiões descarregadas", len(removed))
	}
}

// LightCandidates lista as lâmpadas das regiões prontas no raio, com as
// regiões em ordem decrescente de z, y, x.
func (s *Streamer) LightCandidates(radius int32) []LightCandidate {
	meshes := map[util.RegionCoord]*meshing.MeshResult{}
	s.pool.View(func(store *world.Store) {
		for _, r := range store.Within(s.viewer, radius) {
			if r.Mesh != nil && len(r.Mesh.Lamps) > 0 {
				meshes[r.Coord] = r.Mesh
			}
		}
	})

	coords := make([]util.RegionCoord, 0, len(meshes))
	for c := range meshes {
		coords = append(coords, c)
	}
	util.SortDescending(coords)

	var out []LightCandidate
	for _, c := range coords {
		origin := c.Origin()
		for _, l := range meshes[c].Lamps {
			out = append(out, LightCandidate{
				Pos: util.BlockPos{
					X: origin.X + int64(l.Pos[0]),
					Y: origin.Y + int64(l.Pos[1]),
					Z: origin.Z + int64(l.Pos[2]),
				},
				Type:    l.Type,
				Ambient: l.Ambient,
			})
		}
	}
	return out
}

// Stats retorna contadores para o HUD.
func (s *Streamer) Stats() StreamerStats {
	return StreamerStats{
		Regions:   s.store.Len(),
		Pending:   len(s.pending),
		Requested: len(s.requested),
		Pool:      s.pool.Stats(),
	}
}
