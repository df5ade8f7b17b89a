package mapdata

import (
	"math/rand"
	"testing"

	"VoxelStream/shared/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomBlocks(seed int64) []byte {
	rng := rand.New(rand.NewSource(seed))
	blocks := make([]byte, util.RegionVolume)
	for i := range blocks {
		// Terreno realista: muitas repetições, poucos tipos
		if rng.Intn(4) == 0 {
			blocks[i] = byte(rng.Intn(int(BTLadder) + 1))
		}
	}
	return blocks
}

// uniformBlocks preenche todos os bytes 0..255 sem repetição previsível:
// o pior caso para o zlib.
func uniformBlocks(seed int64) []byte {
	rng := rand.New(rand.NewSource(seed))
	blocks := make([]byte, util.RegionVolume)
	rng.Read(blocks)
	return blocks
}

func TestCompressRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		blocks []byte
	}{
		{"terreno 1", randomBlocks(1)},
		{"terreno 2", randomBlocks(2)},
		{"terreno 42", randomBlocks(42)},
		{"bytes uniformes", uniformBlocks(3)},
		{"tudo ar", make([]byte, util.RegionVolume)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			compressed, err := CompressBlocks(tt.blocks)
			require.NoError(t, err)

			back, err := DecompressBlocks(compressed)
			require.NoError(t, err)
			assert.Equal(t, tt.blocks, back)
			assert.Equal(t, Checksum(tt.blocks), Checksum(back))
		})
	}
}

func TestRegionBytesRoundTrip(t *testing.T) {
	blocks := randomBlocks(7)
	compressed, err := CompressBlocks(blocks)
	require.NoError(t, err)

	h := Header{Flag: 3, Checksum: Checksum(blocks), Owner: 99}
	raw := EncodeRegion(h, compressed)
	require.Len(t, raw, HeaderSize+len(compressed))

	gotH, gotC, err := DecodeRegion(raw)
	require.NoError(t, err)
	assert.Equal(t, h, gotH)
	assert.Equal(t, compressed, gotC)

	back, err := DecompressBlocks(gotC)
	require.NoError(t, err)
	assert.Equal(t, h.Checksum, Checksum(back))
}

func TestDecodeRegionShortHeader(t *testing.T) {
	_, _, err := DecodeRegion([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrShortHeader)
}

func TestDecompressCorrupt(t *testing.T) {
	_, err := DecompressBlocks([]byte("isto não é zlib"))
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestDecompressWrongSize(t *testing.T) {
	blocks := randomBlocks(3)
	compressed, err := CompressBlocks(blocks)
	require.NoError(t, err)

	// Trunca o fluxo comprimido: descompressão termina antes do volume esperado
	_, err = DecompressBlocks(compressed[:len(compressed)/3])
	assert.Error(t, err)

	_, err = CompressBlocks(make([]byte, 10))
	assert.ErrorIs(t, err, ErrSizeMismatch)
}

func TestChecksumDetectsChange(t *testing.T) {
	a := randomBlocks(5)
	b := make([]byte, len(a))
	copy(b, a)
	b[100]++
	assert.NotEqual(t, Checksum(a), Checksum(b))
}
