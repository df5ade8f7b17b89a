// Package regionnet define as mensagens trocadas entre cliente e servidor de regiões.
package regionnet

import (
	"fmt"

	"VoxelStream/shared/pkg/protowire"
	"VoxelStream/shared/util"
)

// MessageType identifica o conteúdo do envelope.
type MessageType uint32

const (
	TypeUnknown MessageType = iota
	TypeRegionRequest
	TypeRegionPayload
	TypeChecksumRequest
	TypeChecksumReply
)

func (t MessageType) String() string {
	switch t {
	case TypeRegionRequest:
		return "REGION_REQUEST"
	case TypeRegionPayload:
		return "REGION_PAYLOAD"
	case TypeChecksumRequest:
		return "CHECKSUM_REQUEST"
	case TypeChecksumReply:
		return "CHECKSUM_REPLY"
	}
	return fmt.Sprintf("UNKNOWN(%d)", uint32(t))
}

// Envelope encapsula qualquer mensagem do protocolo.
type Envelope struct {
	Type    MessageType
	Payload []byte
}

func (m *Envelope) Marshal() []byte {
	e := protowire.NewEncoder()
	e.EncodeVarint(1, uint64(m.Type))
	e.EncodeBytes(2, m.Payload)
	return e.Bytes()
}

func (m *Envelope) Unmarshal(data []byte) error {
	d := protowire.NewDecoder(data)
	for !d.Done() {
		fieldNum, wireType, err := d.ReadTag()
		if err != nil {
			return err
		}
		switch fieldNum {
		case 1:
			v, err := d.ReadVarint()
			if err != nil {
				return err
			}
			m.Type = MessageType(v)
		case 2:
			v, err := d.ReadBytes()
			if err != nil {
				return err
			}
			m.Payload = append([]byte(nil), v...)
		default:
			if err := d.SkipField(fieldNum, wireType); err != nil {
				return err
			}
		}
	}
	return nil
}

// Message é implementado por todas as mensagens que viajam num Envelope.
type Message interface {
	Type() MessageType
	Marshal() []byte
	Unmarshal(data []byte) error
}

// Wrap serializa uma mensagem já dentro do envelope.
func Wrap(msg Message) []byte {
	env := Envelope{Type: msg.Type(), Payload: msg.Marshal()}
	return env.Marshal()
}

// encodeCoord grava a coordenada comum a todas as mensagens (campos 1..3, zigzag).
func encodeCoord(e *protowire.Encoder, c util.RegionCoord) {
	e.EncodeSint(1, int64(c.X))
	e.EncodeSint(2, int64(c.Y))
	e.EncodeSint(3, int64(c.Z))
}

func decodeCoordField(d *protowire.Decoder, fieldNum int, c *util.RegionCoord) error {
	v, err := d.ReadSint()
	if err != nil {
		return err
	}
	switch fieldNum {
	case 1:
		c.X = int32(v)
	case 2:
		c.Y = int32(v)
	case 3:
		c.Z = int32(v)
	}
	return nil
}

// RegionRequest pede os dados de uma região.
type RegionRequest struct {
	Coord util.RegionCoord
}

func (m *RegionRequest) Type() MessageType { return TypeRegionRequest }

func (m *RegionRequest) Marshal() []byte {
	e := protowire.NewEncoder()
	encodeCoord(e, m.Coord)
	return e.Bytes()
}

func (m *RegionRequest) Unmarshal(data []byte) error {
	d := protowire.NewDecoder(data)
	for !d.Done() {
		fieldNum, wireType, err := d.ReadTag()
		if err != nil {
			return err
		}
		if fieldNum >= 1 && fieldNum <= 3 {
			if err := decodeCoordField(d, fieldNum, &m.Coord); err != nil {
				return err
			}
			continue
		}
		if err := d.SkipField(fieldNum, wireType); err != nil {
			return err
		}
	}
	return nil
}

// RegionPayload carrega a região no formato [flag][checksum][owner][comprimido].
type RegionPayload struct {
	Coord util.RegionCoord
	Data  []byte
}

func (m *RegionPayload) Type() MessageType { return TypeRegionPayload }

func (m *RegionPayload) Marshal() []byte {
	e := protowire.NewEncoder()
	encodeCoord(e, m.Coord)
	e.EncodeBytes(4, m.Data)
	return e.Bytes()
}

func (m *RegionPayload) Unmarshal(data []byte) error {
	d := protowire.NewDecoder(data)
	for !d.Done() {
		fieldNum, wireType, err := d.ReadTag()
		if err != nil {
			return err
		}
		switch {
		case fieldNum >= 1 && fieldNum <= 3:
			if err := decodeCoordField(d, fieldNum, &m.Coord); err != nil {
				return err
			}
		case fieldNum == 4:
			v, err := d.ReadBytes()
			if err != nil {
				return err
			}
			m.Data = append([]byte(nil), v...)
		default:
			if err := d.SkipField(fieldNum, wireType); err != nil {
				return err
			}
		}
	}
	return nil
}

// ChecksumRequest pergunta se o checksum local ainda é o do servidor.
type ChecksumRequest struct {
	Coord    util.RegionCoord
	Checksum uint32
}

func (m *ChecksumRequest) Type() MessageType { return TypeChecksumRequest }

func (m *ChecksumRequest) Marshal() []byte {
	e := protowire.NewEncoder()
	encodeCoord(e, m.Coord)
	e.EncodeVarint(4, uint64(m.Checksum))
	return e.Bytes()
}

func (m *ChecksumRequest) Unmarshal(data []byte) error {
	d := protowire.NewDecoder(data)
	for !d.Done() {
		fieldNum, wireType, err := d.ReadTag()
		if err != nil {
			return err
		}
		switch {
		case fieldNum >= 1 && fieldNum <= 3:
			if err := decodeCoordField(d, fieldNum, &m.Coord); err != nil {
				return err
			}
		case fieldNum == 4:
			v, err := d.ReadVarint()
			if err != nil {
				return err
			}
			m.Checksum = uint32(v)
		default:
			if err := d.SkipField(fieldNum, wireType); err != nil {
				return err
			}
		}
	}
	return nil
}

// ChecksumReply responde a um ChecksumRequest.
type ChecksumReply struct {
	Coord util.RegionCoord
	Match bool
}

func (m *ChecksumReply) Type() MessageType { return TypeChecksumReply }

func (m *ChecksumReply) Marshal() []byte {
	e := protowire.NewEncoder()
	encodeCoord(e, m.Coord)
	e.EncodeBool(4, m.Match)
	return e.Bytes()
}

func (m *ChecksumReply) Unmarshal(data []byte) error {
	d := protowire.NewDecoder(data)
	for !d.Done() {
		fieldNum, wireType, err := d.ReadTag()
		if err != nil {
			return err
		}
		switch {
		case fieldNum >= 1 && fieldNum <= 3:
			if err := decodeCoordField(d, fieldNum, &m.Coord); err != nil {
				return err
			}
		case fieldNum == 4:
			v, err := d.ReadBool()
			if err != nil {
				return err
			}
			m.Match = v
		default:
			if err := d.SkipField(fieldNum, wireType); err != nil {
				return err
			}
		}
	}
	return nil
}
