package mapdata

import (
	"log"
	"time"

	"VoxelStream/shared/util"
)

// MaxOverrides é o limite de blocos temporários ("jelly") por região.
const MaxOverrides = 10

// Override substitui temporariamente o valor de um bloco durante o meshing.
type Override struct {
	Offset    uint16
	Value     BlockType
	Remaining time.Duration
}

// RegionData guarda os dados de blocos de uma região.
// Blocks é nil até a descompressão; depois tem exatamente util.RegionVolume bytes.
// O slice Blocks nunca é alterado no lugar: edições trocam por uma cópia,
// assim uma BlockView capturada continua válida sem lock.
type RegionData struct {
	Coord      util.RegionCoord
	Header     Header
	Compressed []byte
	Blocks     []byte

	// ChecksumTimeout é o momento em que o checksum deve ser reverificado.
	ChecksumTimeout time.Time

	overrides []Override
}

// NewEmptyRegionData cria uma região toda de ar, usada até os dados reais chegarem.
func NewEmptyRegionData(coord util.RegionCoord) *RegionData {
	return &RegionData{
		Coord:  coord,
		Blocks: make([]byte, util.RegionVolume),
	}
}

// NewRegionData cria uma região ainda comprimida.
func NewRegionData(coord util.RegionCoord, h Header, compressed []byte) *RegionData {
	return &RegionData{
		Coord:      coord,
		Header:     h,
		Compressed: compressed,
	}
}

// Index converte uma posição local para o índice no array (x varia mais rápido).
func Index(x, y, z int) int {
	return x + y*util.RegionSize + z*util.RegionSize*util.RegionSize
}

func inside(x, y, z int) bool {
	return x >= 0 && x < util.RegionSize &&
		y >= 0 && y < util.RegionSize &&
		z >= 0 && z < util.RegionSize
}

// Decompress preenche Blocks a partir de Compressed.
func (d *RegionData) Decompress() error {
	blocks, err := DecompressBlocks(d.Compressed)
	if err != nil {
		return err
	}
	d.Blocks = blocks
	return nil
}

// Decompressed indica se os blocos já estão disponíveis.
func (d *RegionData) Decompressed() bool {
	return len(d.Blocks) == util.RegionVolume
}

// BlockAt retorna o bloco na posição local, já com os overrides aplicados.
func (d *RegionData) BlockAt(x, y, z int) BlockType {
	if !inside(x, y, z) || !d.Decompressed() {
		return BTAir
	}
	idx := Index(x, y, z)
	for _, o := range d.overrides {
		if int(o.Offset) == idx {
			return o.Value
		}
	}
	return BlockType(d.Blocks[idx])
}

// SetBlock grava um bloco trocando o array inteiro por uma cópia.
func (d *RegionData) SetBlock(x, y, z int, bt BlockType) bool {
	if !inside(x, y, z) || !d.Decompressed() {
		return false
	}
	blocks := make([]byte, len(d.Blocks))
	copy(blocks, d.Blocks)
	blocks[Index(x, y, z)] = byte(bt)
	d.Blocks = blocks
	return true
}

// AddOverride registra um bloco temporário. Acima de MaxOverrides o pedido
// é registrado no log e descartado.
func (d *RegionData) AddOverride(x, y, z int, value BlockType, dur time.Duration) bool {
	if !inside(x, y, z) {
		return false
	}
	idx := uint16(Index(x, y, z))
	// Sempre uma cópia nova: views já capturadas guardam o slice antigo.
	overrides := make([]Override, len(d.overrides), len(d.overrides)+1)
	copy(overrides, d.overrides)
	for i := range overrides {
		if overrides[i].Offset == idx {
			overrides[i].Value = value
			overrides[i].Remaining = dur
			d.overrides = overrides
			return true
		}
	}
	if len(overrides) >= MaxOverrides {
		log.Printf("[MapData] Limite de %d blocos temporários atingido em %v, ignorando", MaxOverrides, d.Coord)
		return false
	}
	d.overrides = append(overrides, Override{Offset: idx, Value: value, Remaining: dur})
	return true
}

// TickOverrides avança os contadores e remove os expirados.
// Retorna true se algum expirou (a região precisa de novo mesh).
func (d *RegionData) TickOverrides(dt time.Duration) bool {
	if len(d.overrides) == 0 {
		return false
	}
	kept := make([]Override, 0, len(d.overrides))
	expired := false
	for _, o := range d.overrides {
		o.Remaining -= dt
		if o.Remaining <= 0 {
			expired = true
			continue
		}
		kept = append(kept, o)
	}
	d.overrides = kept
	return expired
}

// Overrides retorna uma cópia da lista de overrides ativos.
func (d *RegionData) Overrides() []Override {
	out := make([]Override, len(d.overrides))
	copy(out, d.overrides)
	return out
}

// View captura uma visão imutável dos blocos para o mesher.
// Retorna nil se os blocos ainda não foram descomprimidos.
func (d *RegionData) View() *BlockView {
	if d == nil || !d.Decompressed() {
		return nil
	}
	return &BlockView{blocks: d.Blocks, overrides: d.overrides}
}

// BlockView é uma leitura imutável de uma região. Uma view nil é toda de ar.
type BlockView struct {
	blocks    []byte
	overrides []Override
}

// NewBlockView cria uma view diretamente de um array de blocos.
func NewBlockView(blocks []byte) *BlockView {
	if len(blocks) != util.RegionVolume {
		return nil
	}
	return &BlockView{blocks: blocks}
}

// At retorna o bloco na posição local (coordenadas já dentro de 0..31).
func (v *BlockView) At(x, y, z int) BlockType {
	if v == nil {
		return BTAir
	}
	idx := Index(x, y, z)
	for _, o := range v.overrides {
		if int(o.Offset) == idx {
			return o.Value
		}
	}
	return BlockType(v.blocks[idx])
}
