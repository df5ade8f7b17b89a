// Package protowire oferece um encoder/decoder campo a campo no formato
// protobuf, sobre google.golang.org/protobuf/encoding/protowire.
// Usado pelas mensagens escritas à mão em shared/proto.
package protowire

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// WireType constantes do protobuf
const (
	WireVarint          = int(protowire.VarintType)
	Wire64Bit           = int(protowire.Fixed64Type)
	WireLengthDelimited = int(protowire.BytesType)
	Wire32Bit           = int(protowire.Fixed32Type)
)

// ---------- ENCODER ----------

// Encoder acumula bytes no formato protobuf.
type Encoder struct {
	buf []byte
}

// NewEncoder cria um encoder vazio.
func NewEncoder() *Encoder {
	return &Encoder{buf: make([]byte, 0, 64)}
}

// Bytes retorna o buffer serializado.
func (e *Encoder) Bytes() []byte {
	return e.buf
}

// EncodeVarint codifica um campo varint. Zero não é serializado (proto3).
func (e *Encoder) EncodeVarint(fieldNum int, v uint64) {
	if v == 0 {
		return
	}
	e.buf = protowire.AppendTag(e.buf, protowire.Number(fieldNum), protowire.VarintType)
	e.buf = protowire.AppendVarint(e.buf, v)
}

// EncodeSint codifica um inteiro com sinal em zigzag (sint64).
func (e *Encoder) EncodeSint(fieldNum int, v int64) {
	e.EncodeVarint(fieldNum, protowire.EncodeZigZag(v))
}

// EncodeBool codifica um boolean.
func (e *Encoder) EncodeBool(fieldNum int, v bool) {
	if v {
		e.EncodeVarint(fieldNum, 1)
	}
}

// EncodeBytes codifica bytes raw (length-delimited).
func (e *Encoder) EncodeBytes(fieldNum int, v []byte) {
	if len(v) == 0 {
		return
	}
	e.buf = protowire.AppendTag(e.buf, protowire.Number(fieldNum), protowire.BytesType)
	e.buf = protowire.AppendBytes(e.buf, v)
}

// ---------- DECODER ----------

// Decoder lê campos protobuf de um buffer.
type Decoder struct {
	buf []byte
}

// NewDecoder cria um decoder sobre um buffer.
func NewDecoder(buf []byte) *Decoder {
	return &Decoder{buf: buf}
}

// Done retorna true se não há mais bytes.
func (d *Decoder) Done() bool {
	return len(d.buf) == 0
}

// ReadTag lê o número do campo e o tipo de wire do próximo campo.
func (d *Decoder) ReadTag() (fieldNum int, wireType int, err error) {
	num, typ, n := protowire.ConsumeTag(d.buf)
	if n < 0 {
		return 0, 0, fmt.Errorf("protowire: tag inválida: %w", protowire.ParseError(n))
	}
	d.buf = d.buf[n:]
	return int(num), int(typ), nil
}

// ReadVarint lê um valor varint (após o tag já ter sido lido).
func (d *Decoder) ReadVarint() (uint64, error) {
	v, n := protowire.ConsumeVarint(d.buf)
	if n < 0 {
		return 0, fmt.Errorf("protowire: varint inválido: %w", protowire.ParseError(n))
	}
	d.buf = d.buf[n:]
	return v, nil
}

// ReadSint lê um inteiro zigzag.
func (d *Decoder) ReadSint() (int64, error) {
	v, err := d.ReadVarint()
	return protowire.DecodeZigZag(v), err
}

// ReadBool lê um boolean.
func (d *Decoder) ReadBool() (bool, error) {
	v, err := d.ReadVarint()
	return v != 0, err
}

// ReadBytes lê um campo length-delimited. O slice aponta para o buffer original.
func (d *Decoder) ReadBytes() ([]byte, error) {
	v, n := protowire.ConsumeBytes(d.buf)
	if n < 0 {
		return nil, fmt.Errorf("protowire: bytes inválidos: %w", protowire.ParseError(n))
	}
	d.buf = d.buf[n:]
	return v, nil
}

// SkipField pula o valor de um campo desconhecido.
func (d *Decoder) SkipField(fieldNum, wireType int) error {
	n := protowire.ConsumeFieldValue(protowire.Number(fieldNum), protowire.Type(wireType), d.buf)
	if n < 0 {
		return fmt.Errorf("protowire: campo %d inválido: %w", fieldNum, protowire.ParseError(n))
	}
	d.buf = d.buf[n:]
	return nil
}
