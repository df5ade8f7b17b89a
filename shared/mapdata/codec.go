package mapdata

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"VoxelStream/shared/util"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zlib"
)

// HeaderSize é o tamanho do cabeçalho fixo: flag, checksum e owner (u32 cada).
const HeaderSize = 12

var (
	// ErrShortHeader indica um buffer menor que o cabeçalho.
	ErrShortHeader = errors.New("mapdata: cabeçalho incompleto")
	// ErrCorrupt indica dados comprimidos ilegíveis.
	ErrCorrupt = errors.New("mapdata: dados comprimidos corrompidos")
	// ErrSizeMismatch indica descompressão com tamanho diferente do volume da região.
	ErrSizeMismatch = errors.New("mapdata: tamanho descomprimido inesperado")
)

// Header é o cabeçalho persistido junto com os blocos comprimidos.
type Header struct {
	Flag     uint32
	Checksum uint32
	Owner    uint32
}

// EncodeRegion monta o formato em disco/rede: [flag][checksum][owner][bytes comprimidos].
func EncodeRegion(h Header, compressed []byte) []byte {
	out := make([]byte, HeaderSize+len(compressed))
	binary.LittleEndian.PutUint32(out[0:4], h.Flag)
	binary.LittleEndian.PutUint32(out[4:8], h.Checksum)
	binary.LittleEndian.PutUint32(out[8:12], h.Owner)
	copy(out[HeaderSize:], compressed)
	return out
}

// DecodeRegion separa cabeçalho e bytes comprimidos. O slice retornado é uma cópia.
func DecodeRegion(b []byte) (Header, []byte, error) {
	if len(b) < HeaderSize {
		return Header{}, nil, fmt.Errorf("%w: %d bytes", ErrShortHeader, len(b))
	}
	h := Header{
		Flag:     binary.LittleEndian.Uint32(b[0:4]),
		Checksum: binary.LittleEndian.Uint32(b[4:8]),
		Owner:    binary.LittleEndian.Uint32(b[8:12]),
	}
	compressed := make([]byte, len(b)-HeaderSize)
	copy(compressed, b[HeaderSize:])
	return h, compressed, nil
}

// CompressBlocks comprime um array de blocos com zlib.
func CompressBlocks(blocks []byte) ([]byte, error) {
	if len(blocks) != util.RegionVolume {
		return nil, fmt.Errorf("%w: %d bytes", ErrSizeMismatch, len(blocks))
	}
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, zlib.BestSpeed)
	if err != nil {
		return nil, fmt.Errorf("falha ao criar compressor: %w", err)
	}
	if _, err := w.Write(blocks); err != nil {
		return nil, fmt.Errorf("falha ao comprimir: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("falha ao finalizar compressão: %w", err)
	}
	return buf.Bytes(), nil
}

// DecompressBlocks descomprime e exige exatamente util.RegionVolume bytes.
func DecompressBlocks(compressed []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	defer r.Close()

	blocks := make([]byte, util.RegionVolume)
	n, err := io.ReadFull(r, blocks)
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %d bytes", ErrSizeMismatch, n)
		}
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	// Sobrou conteúdo além do volume esperado?
	var extra [1]byte
	if m, _ := r.Read(extra[:]); m > 0 {
		return nil, fmt.Errorf("%w: mais de %d bytes", ErrSizeMismatch, util.RegionVolume)
	}
	return blocks, nil
}

// Checksum calcula o checksum de uma região a partir dos blocos crus.
func Checksum(blocks []byte) uint32 {
	return uint32(xxhash.Sum64(blocks))
}
