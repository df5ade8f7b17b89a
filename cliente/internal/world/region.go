package world

import (
	"VoxelStream/cliente/internal/meshing"
	"VoxelStream/shared/mapdata"
	"VoxelStream/shared/util"
)

// State é o estado observável de uma região, derivado das flags.
type State int

const (
	StateEmpty   State = iota // ainda sem dados, sintetizada como ar
	StateLoading              // job de descompressão em andamento
	StateLoaded               // blocos instalados, sem malha
	StateMeshing              // job de malha em andamento
	StateReady                // malha instalada
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "Empty"
	case StateLoading:
		return "Loading"
	case StateLoaded:
		return "Loaded"
	case StateMeshing:
		return "Meshing"
	case StateReady:
		return "Ready"
	}
	return "Unknown"
}

// Region une os dados, a malha e as flags de agendamento de uma região.
// As flags e os ponteiros Data/Mesh só podem ser lidos ou escritos com o
// lock do scheduler; o job carrega a coordenada, nunca o ponteiro.
type Region struct {
	Coord util.RegionCoord
	Data  *mapdata.RegionData
	Mesh  *meshing.MeshResult

	Loaded  bool
	Loading bool
	Meshing bool
	Dirty   bool
}

// NewRegion cria uma região vazia (toda ar).
func NewRegion(coord util.RegionCoord) *Region {
	return &Region{
		Coord: coord,
		Data:  mapdata.NewEmptyRegionData(coord),
	}
}

// State deriva o estado atual. Loading e Meshing nunca são verdadeiros juntos.
func (r *Region) State() State {
	switch {
	case r.Loading:
		return StateLoading
	case r.Meshing:
		return StateMeshing
	case r.Mesh != nil:
		return StateReady
	case r.Loaded:
		return StateLoaded
	}
	return StateEmpty
}

// InFlight indica se existe job na fila ou rodando para a região.
func (r *Region) InFlight() bool {
	return r.Loading || r.Meshing
}

// NeedsMesh indica se a região pode e deve ir para a fila de malha.
func (r *Region) NeedsMesh() bool {
	return r.Loaded && r.Dirty && !r.InFlight()
}

// View retorna a visão imutável dos blocos, ou nil se ainda não há blocos.
func (r *Region) View() *mapdata.BlockView {
	if r == nil || r.Data == nil {
		return nil
	}
	return r.Data.View()
}
