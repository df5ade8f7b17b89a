package mapdata

// BlockType é o identificador de um tipo de bloco (um byte por bloco).
type BlockType uint8

const (
	BTAir BlockType = iota
	BTStone
	BTWater
	BTBrick
	BTSoil
	BTLogs
	BTSand
	BTTree1
	BTLamp1
	BTLamp2
	BTTeleport
	BTHedge
	BTTopSoil // grama; só aparece no mesh como topo de BTSoil
	BTWindow
	BTTree2
	BTTree3
	BTPaving
	BTGravel
	BTTree4
	BTTree5
	BTTuft
	BTFlowers
	BTConcrete
	BTMarble
	BTSmallFog
	BTBigFog
	BTTreasure
	BTQuest
	BTLadder

	NumBlockTypes = 256
)

// Categoria de objetos especiais coletados pelo mesher.
type SpecialKind uint8

const (
	SpecialNone SpecialKind = iota
	SpecialTree
	SpecialLamp
	SpecialFog
	SpecialTreasure
)

type blockInfo struct {
	name            string
	semiTransparent bool // a luz e a visão atravessam
	rigid           bool // nunca suavizado
	noMesh          bool // não gera cubo, só objeto especial
	special         SpecialKind
}

var blockTable [NumBlockTypes]blockInfo

func init() {
	for i := range blockTable {
		blockTable[i] = blockInfo{name: "unknown"}
	}
	set := func(bt BlockType, info blockInfo) { blockTable[bt] = info }

	set(BTAir, blockInfo{name: "air", semiTransparent: true, noMesh: true})
	set(BTStone, blockInfo{name: "stone"})
	set(BTWater, blockInfo{name: "water", semiTransparent: true})
	set(BTBrick, blockInfo{name: "brick", rigid: true})
	set(BTSoil, blockInfo{name: "soil"})
	set(BTLogs, blockInfo{name: "logs", rigid: true})
	set(BTSand, blockInfo{name: "sand"})
	set(BTLamp1, blockInfo{name: "lamp1", rigid: true, special: SpecialLamp})
	set(BTLamp2, blockInfo{name: "lamp2", rigid: true, special: SpecialLamp})
	set(BTTeleport, blockInfo{name: "teleport", rigid: true})
	set(BTHedge, blockInfo{name: "hedge"})
	set(BTTopSoil, blockInfo{name: "topsoil"})
	set(BTWindow, blockInfo{name: "window", semiTransparent: true, rigid: true})
	set(BTPaving, blockInfo{name: "paving", rigid: true})
	set(BTGravel, blockInfo{name: "gravel"})
	set(BTConcrete, blockInfo{name: "concrete", rigid: true})
	set(BTMarble, blockInfo{name: "marble", rigid: true})
	set(BTLadder, blockInfo{name: "ladder", semiTransparent: true, rigid: true})

	for _, bt := range []BlockType{BTTree1, BTTree2, BTTree3, BTTree4, BTTree5, BTTuft, BTFlowers} {
		set(bt, blockInfo{name: "tree", semiTransparent: true, noMesh: true, special: SpecialTree})
	}
	blockTable[BTTuft].name = "tuft"
	blockTable[BTFlowers].name = "flowers"

	set(BTSmallFog, blockInfo{name: "smallfog", semiTransparent: true, noMesh: true, special: SpecialFog})
	set(BTBigFog, blockInfo{name: "bigfog", semiTransparent: true, noMesh: true, special: SpecialFog})
	set(BTTreasure, blockInfo{name: "treasure", semiTransparent: true, noMesh: true, special: SpecialTreasure})
	set(BTQuest, blockInfo{name: "quest", semiTransparent: true, noMesh: true, special: SpecialTreasure})
}

// SemiTransparent indica se o bloco deixa ver (e iluminar) o que está atrás.
func (b BlockType) SemiTransparent() bool { return blockTable[b].semiTransparent }

// Rigid indica blocos trabalhados que nunca são suavizados.
func (b BlockType) Rigid() bool { return blockTable[b].rigid }

// Meshed indica se o bloco gera faces de cubo.
func (b BlockType) Meshed() bool { return !blockTable[b].noMesh }

// Special retorna a categoria de objeto especial do bloco.
func (b BlockType) Special() SpecialKind { return blockTable[b].special }

// IsWater indica água.
func (b BlockType) IsWater() bool { return b == BTWater }

func (b BlockType) String() string { return blockTable[b].name }
