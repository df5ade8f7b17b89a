package scheduler

import (
	"fmt"
	"log"
	"runtime"
	"sort"
	"sync"
	"time"

	"VoxelStream/cliente/internal/meshing"
	"VoxelStream/cliente/internal/world"
	"VoxelStream/shared/mapdata"
	"VoxelStream/shared/util"
)

// SubmitStatus é o resultado de uma submissão não bloqueante.
type SubmitStatus int

const (
	Submitted SubmitStatus = iota
	Contended              // lock ocupado; tentar de novo no próximo frame
	InFlight               // a região já tem job na fila ou rodando
	Rejected               // região desconhecida, sem dados ou pool encerrado
)

func (s SubmitStatus) String() string {
	switch s {
	case Submitted:
		return "submitted"
	case Contended:
		return "contended"
	case InFlight:
		return "in-flight"
	case Rejected:
		return "rejected"
	}
	return "unknown"
}

// FatalFunc recebe erros de corrupção. O padrão é log.Fatalf.
type FatalFunc func(format string, args ...any)

// Options configura o pool.
type Options struct {
	Workers      int   // 0 = runtime.NumCPU()
	DropCutoffSq int64 // 0 = nunca descarta jobs de malha
	Mesher       meshing.Options
	Metrics      *Metrics
	Fatal        FatalFunc
}

// InstalledMesh descreve uma malha instalada por Poll. Previous deve ter os
// recursos de GPU liberados antes do upload de Mesh.
type InstalledMesh struct {
	Coord    util.RegionCoord
	Mesh     *meshing.MeshResult
	Previous *meshing.MeshResult
}

// PollReport é o que Poll instalou neste frame.
type PollReport struct {
	Loaded    []util.RegionCoord
	Meshes    []InstalledMesh
	Discarded int // resultados de regiões que já foram descarregadas
}

// Stats é uma fotografia das filas.
type Stats struct {
	DecompressQueued int
	MeshQueued       int
	Running          int
	DecompressedOut  int
	MeshedOut        int
}

type job struct {
	kind  string
	coord util.RegionCoord
	data  *mapdata.RegionData
	nb    *meshing.Neighborhood
	opts  meshing.Options
}

// Pool é o conjunto fixo de workers que descomprime e gera malhas.
//
// Todo estado compartilhado fica sob mu; cond acorda os workers. A thread
// dona (render) submete sem bloquear e coleta os resultados com Poll.
type Pool struct {
	mu   sync.Mutex
	cond *sync.Cond

	store *world.Store

	decompressQ     *util.UniqueQueue[util.RegionCoord, *mapdata.RegionData]
	meshQ           *util.UniqueQueue[util.RegionCoord, struct{}]
	decompressedOut map[util.RegionCoord]*mapdata.RegionData
	meshedOut       map[util.RegionCoord]*meshing.MeshResult
	running         int
	terminate       bool

	viewer       util.RegionCoord
	dropCutoffSq int64
	mesherOpts   meshing.Options

	metrics   *Metrics
	fatal     FatalFunc
	workers   int
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// New cria o pool e inicia os workers.
func New(store *world.Store, opts Options) *Pool {
	p := newPool(store, opts)
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	log.Printf("[Scheduler] %d workers iniciados", p.workers)
	return p
}

// newPool monta o pool sem iniciar goroutines.
func newPool(store *world.Store, opts Options) *Pool {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers < 1 {
		workers = 1
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	fatal := opts.Fatal
	if fatal == nil {
		fatal = log.Fatalf
	}

	p := &Pool{
		store:           store,
		decompressQ:     util.NewUniqueQueue[util.RegionCoord, *mapdata.RegionData](),
		meshQ:           util.NewUniqueQueue[util.RegionCoord, struct{}](),
		decompressedOut: make(map[util.RegionCoord]*mapdata.RegionData),
		meshedOut:       make(map[util.RegionCoord]*meshing.MeshResult),
		dropCutoffSq:    opts.DropCutoffSq,
		mesherOpts:      opts.Mesher,
		metrics:         metrics,
		fatal:           fatal,
		workers:         workers,
	}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// Workers retorna o número de workers.
func (p *Pool) Workers() int {
	return p.workers
}

// SubmitMesh coloca a região na fila de malha. Não bloqueia: se o lock
// estiver ocupado retorna Contended e o chamador tenta no próximo frame.
func (p *Pool) SubmitMesh(coord util.RegionCoord) SubmitStatus {
	if !p.mu.TryLock() {
		p.metrics.SubmitContended.WithLabelValues(KindMesh).Inc()
		return Contended
	}
	defer p.mu.Unlock()

	if p.terminate {
		return Rejected
	}
	r, ok := p.store.Get(coord)
	if !ok {
		return Rejected
	}
	// Carregando ou gerando malha: já há job para a região
	if r.InFlight() {
		return InFlight
	}
	if !r.Loaded {
		return Rejected
	}
	p.enqueueMeshLocked(r)
	p.updateDepthLocked()
	p.cond.Signal()
	return Submitted
}

// SubmitDirty enfileira, da mais próxima para a mais distante, as regiões
// dentro do raio que estão carregadas, sujas e sem job. Também não
// bloqueia: ok=false quando o lock estava ocupado.
func (p *Pool) SubmitDirty(center util.RegionCoord, radius int32) (n int, ok bool) {
	if !p.mu.TryLock() {
		p.metrics.SubmitContended.WithLabelValues(KindMesh).Inc()
		return 0, false
	}
	defer p.mu.Unlock()

	if p.terminate {
		return 0, true
	}
	for _, r := range p.store.Within(center, radius) {
		if !r.NeedsMesh() {
			continue
		}
		p.enqueueMeshLocked(r)
		n++
	}
	if n > 0 {
		p.updateDepthLocked()
		p.cond.Broadcast()
	}
	return n, true
}

func (p *Pool) enqueueMeshLocked(r *world.Region) {
	r.Meshing = true
	r.Dirty = false
	p.meshQ.Enqueue(r.Coord, struct{}{})
}

// SubmitDecompress coloca dados comprimidos na fila. A região é criada se
// ainda não existir. Também recusa (InFlight) enquanto a região gera malha,
// para que Loading e Meshing nunca coexistam.
func (p *Pool) SubmitDecompress(data *mapdata.RegionData) SubmitStatus {
	if !p.mu.TryLock() {
		p.metrics.SubmitContended.WithLabelValues(KindDecompress).Inc()
		return Contended
	}
	defer p.mu.Unlock()

	if p.terminate || data == nil {
		return Rejected
	}
	r, _ := p.store.GetOrCreate(data.Coord)
	if r.InFlight() {
		return InFlight
	}
	r.Loading = true
	p.decompressQ.Enqueue(data.Coord, data)
	p.updateDepthLocked()
	p.cond.Signal()
	return Submitted
}

// Poll instala os resultados prontos. Bloqueia brevemente; roda uma vez
// por frame na thread dona. Nada de GPU acontece aqui.
func (p *Pool) Poll() PollReport {
	p.mu.Lock()
	defer p.mu.Unlock()

	var rep PollReport

	for _, coord := range sortedKeys(p.decompressedOut) {
		data := p.decompressedOut[coord]
		r, ok := p.store.Get(coord)
		if !ok {
			rep.Discarded++
			continue
		}
		r.Data = data
		r.Loading = false
		r.Loaded = true
		r.Dirty = true
		// A visibilidade das vizinhas depende desta região
		for _, n := range coord.FaceNeighbors() {
			if nr, ok := p.store.Get(n); ok {
				nr.Dirty = true
			}
		}
		rep.Loaded = append(rep.Loaded, coord)
	}
	clear(p.decompressedOut)

	for _, coord := range sortedKeys(p.meshedOut) {
		res := p.meshedOut[coord]
		r, ok := p.store.Get(coord)
		if !ok {
			rep.Discarded++
			continue
		}
		prev := r.Mesh
		r.Mesh = res
		r.Meshing = false
		rep.Meshes = append(rep.Meshes, InstalledMesh{Coord: coord, Mesh: res, Previous: prev})
	}
	clear(p.meshedOut)

	return rep
}

// SetViewer atualiza a região do observador usada na prioridade.
func (p *Pool) SetViewer(coord util.RegionCoord) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.viewer = coord
}

// SetDropCutoff atualiza a distância quadrada (em regiões) além da qual
// jobs de malha ainda na fila são descartados.
func (p *Pool) SetDropCutoff(cutoffSq int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dropCutoffSq = cutoffSq
}

// MesherOptions retorna as opções atuais do mesher.
func (p *Pool) MesherOptions() meshing.Options {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mesherOpts
}

// SetMesherOptions troca as opções do mesher. Se mudaram, todas as regiões
// carregadas ficam Dirty.
func (p *Pool) SetMesherOptions(opts meshing.Options) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if opts == p.mesherOpts {
		return
	}
	p.mesherOpts = opts
	for _, r := range p.store.Snapshot() {
		if r.Loaded {
			r.Dirty = true
		}
	}
}

// MarkDirty marca regiões existentes para nova malha e retorna as que
// estavam carregadas.
func (p *Pool) MarkDirty(coords ...util.RegionCoord) []util.RegionCoord {
	p.mu.Lock()
	defer p.mu.Unlock()
	var loaded []util.RegionCoord
	for _, c := range coords {
		if r, ok := p.store.Get(c); ok {
			r.Dirty = true
			if r.Loaded {
				loaded = append(loaded, c)
			}
		}
	}
	return loaded
}

// EditFunc altera a região sob o lock do scheduler. changed indica se a
// malha ficou velha; touched lista as faces cujas vizinhas também ficaram.
type EditFunc func(r *world.Region) (changed bool, touched util.Directions)

// Edit aplica fn a uma região carregada. Regiões vazias ou com dados novos
// chegando (Loading) não são editadas.
func (p *Pool) Edit(coord util.RegionCoord, fn EditFunc) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	r, ok := p.store.Get(coord)
	if !ok || !r.Loaded || r.Loading {
		return false
	}
	changed, touched := fn(r)
	if !changed {
		return false
	}
	r.Dirty = true
	for _, d := range util.FaceDirs {
		if !touched.Has(d) {
			continue
		}
		if nr, ok := p.store.Get(coord.AddDir(d)); ok {
			nr.Dirty = true
		}
	}
	return true
}

// View executa fn com o lock do scheduler, para leituras consistentes das
// flags e ponteiros das regiões.
func (p *Pool) View(fn func(store *world.Store)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(p.store)
}

// Evict descarrega as regiões fora do raio e retorna as removidas, para
// que a thread dona libere a GPU delas.
func (p *Pool) Evict(center util.RegionCoord, radius int32) []*world.Region {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.store.Purge(center, radius)
}

// Stats retorna o tamanho das filas.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{
		DecompressQueued: p.decompressQ.Len(),
		MeshQueued:       p.meshQ.Len(),
		Running:          p.running,
		DecompressedOut:  len(p.decompressedOut),
		MeshedOut:        len(p.meshedOut),
	}
}

// Close pede o encerramento, acorda todos os workers e espera por eles.
// Jobs em andamento terminam; os que estão na fila são abandonados.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.terminate = true
		p.cond.Broadcast()
		p.mu.Unlock()

		p.wg.Wait()
		log.Println("[Scheduler] Workers encerrados")
	})
}

func (p *Pool) worker() {
	defer p.wg.Done()

	p.mu.Lock()
	defer p.mu.Unlock()
	for {
		for !p.terminate && p.decompressQ.Len() == 0 && p.meshQ.Len() == 0 {
			p.cond.Wait()
		}
		if p.terminate {
			return
		}
		j, ok := p.pickLocked()
		if !ok {
			continue
		}
		p.running++
		p.mu.Unlock()

		mesh, err := p.execute(j)
		if err != nil {
			log.Printf("[Scheduler] Dados corrompidos na região %v (job %s): %v", j.coord, j.kind, err)
			p.fatal("[Scheduler] Falha fatal no job %s da região %v: %v", j.kind, j.coord, err)
		}

		p.mu.Lock()
		p.running--
		p.publishLocked(j, mesh, err)
	}
}

// pickLocked escolhe o item mais próximo do observador entre as duas filas.
// Antes disso descarta as malhas que saíram do alcance.
func (p *Pool) pickLocked() (job, bool) {
	p.dropFarLocked()

	score := func(c util.RegionCoord) int64 { return c.DistSq(p.viewer) }
	less := func(a, b util.RegionCoord) bool { return a.Less(b) }

	dc, ds, dok := p.decompressQ.Best(score, less)
	mc, ms, mok := p.meshQ.Best(score, less)

	var j job
	switch {
	case dok && (!mok || ds <= ms):
		// Empate favorece a descompressão: a malha depende dos dados
		data, _ := p.decompressQ.Pop(dc)
		j = job{kind: KindDecompress, coord: dc, data: data}
	case mok:
		p.meshQ.Pop(mc)
		opts := p.mesherOpts
		if opts.Picking {
			opts.PickOffset = PickOffset(mc, p.viewer)
		}
		j = job{kind: KindMesh, coord: mc, nb: p.neighborhoodLocked(mc), opts: opts}
	default:
		return job{}, false
	}
	p.updateDepthLocked()
	return j, true
}

func (p *Pool) dropFarLocked() {
	if p.dropCutoffSq <= 0 {
		return
	}
	dropped := p.meshQ.RemoveIf(func(c util.RegionCoord, _ struct{}) bool {
		return c.DistSq(p.viewer) > p.dropCutoffSq
	})
	for _, c := range dropped {
		if r, ok := p.store.Get(c); ok {
			r.Meshing = false
			r.Dirty = true
		}
		p.metrics.MeshJobsDropped.Inc()
	}
	if len(dropped) > 0 {
		p.updateDepthLocked()
	}
}

// neighborhoodLocked captura as 27 views imutáveis. Regiões ausentes ou
// sem dados ficam nil (ar).
func (p *Pool) neighborhoodLocked(coord util.RegionCoord) *meshing.Neighborhood {
	var nb meshing.Neighborhood
	for dz := -1; dz <= 1; dz++ {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				c := coord.Add(util.NewRegionCoord(int32(dx), int32(dy), int32(dz)))
				r, ok := p.store.Get(c)
				if !ok || !r.Loaded {
					continue
				}
				nb[meshing.NeighborIndex(dx, dy, dz)] = r.View()
			}
		}
	}
	return &nb
}

// execute roda o job sem lock. Pânicos viram erro.
func (p *Pool) execute(j job) (mesh *meshing.MeshResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	start := time.Now()
	defer func() {
		p.metrics.JobSeconds.WithLabelValues(j.kind).Observe(time.Since(start).Seconds())
	}()

	switch j.kind {
	case KindDecompress:
		err = j.data.Decompress()
	case KindMesh:
		mesh, err = meshing.Mesh(j.coord, j.nb, j.opts)
	default:
		err = fmt.Errorf("tipo de job desconhecido: %s", j.kind)
	}
	return mesh, err
}

// publishLocked move o resultado para a saída correspondente.
func (p *Pool) publishLocked(j job, mesh *meshing.MeshResult, err error) {
	if err != nil {
		// Só chega aqui quando o handler fatal não encerrou o processo
		if r, ok := p.store.Get(j.coord); ok {
			r.Loading = false
			r.Meshing = false
		}
		return
	}
	switch j.kind {
	case KindDecompress:
		p.decompressedOut[j.coord] = j.data
	case KindMesh:
		p.meshedOut[j.coord] = mesh
	}
	p.metrics.JobsCompleted.WithLabelValues(j.kind).Inc()
}

func (p *Pool) updateDepthLocked() {
	p.metrics.QueueDepth.WithLabelValues(KindDecompress).Set(float64(p.decompressQ.Len()))
	p.metrics.QueueDepth.WithLabelValues(KindMesh).Set(float64(p.meshQ.Len()))
}

// PickOffset é a posição da região relativa ao observador, limitada a -1..1.
func PickOffset(coord, viewer util.RegionCoord) [3]int8 {
	d := coord.Sub(viewer)
	clamp := func(v int32) int8 {
		if v < -1 {
			return -1
		}
		if v > 1 {
			return 1
		}
		return int8(v)
	}
	return [3]int8{clamp(d.X), clamp(d.Y), clamp(d.Z)}
}

func sortedKeys[V any](m map[util.RegionCoord]V) []util.RegionCoord {
	keys := make([]util.RegionCoord, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}
