package bridge

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/annel0/voxel4d/internal/world"
)

// Теги бинарных кадров: первый байт, далее zstd-поток
const (
	TagVoxels  byte = 1 // 4D мир с паддингом, по байту на ячейку
	TagPalette byte = 2 // 256 × RGBA float32 little-endian
	TagView    byte = 3 // 3D срез
)

// Типы текстовых кадров
const (
	TypeCamera3D = "camera3d"
	TypeCamera4D = "camera4d"
	TypeMeta     = "meta"
	TypeError    = "error"
)

// TextFrame JSON кадр
type TextFrame struct {
	Type  string          `json:"type"`
	Frame uint64          `json:"frame"`
	Data  json.RawMessage `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
}

// codec сжимает и разжимает бинарные кадры. EncodeAll/DecodeAll
// безопасны для конкурентного вызова.
type codec struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

func newCodec() (*codec, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("zstd writer: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	return &codec{enc: enc, dec: dec}, nil
}

func (c *codec) close() {
	c.enc.Close()
	c.dec.Close()
}

// encode собирает бинарный кадр: tag + zstd(raw)
func (c *codec) encode(tag byte, raw []byte) []byte {
	out := make([]byte, 1, 1+len(raw)/4)
	out[0] = tag
	return c.enc.EncodeAll(raw, out)
}

// decode разбирает бинарный кадр
func (c *codec) decode(frame []byte) (byte, []byte, error) {
	if len(frame) == 0 {
		return 0, nil, fmt.Errorf("пустой бинарный кадр")
	}
	raw, err := c.dec.DecodeAll(frame[1:], nil)
	if err != nil {
		return 0, nil, fmt.Errorf("zstd decode: %w", err)
	}
	return frame[0], raw, nil
}

// PaletteBytes раскладка палитры для загрузки в рендерер
func PaletteBytes(p [world.PaletteCapacity]world.InternalType) []byte {
	var buf bytes.Buffer
	buf.Grow(len(p) * 16)
	// Запись в bytes.Buffer не возвращает ошибок
	_ = binary.Write(&buf, binary.LittleEndian, p)
	return buf.Bytes()
}

func textFrame(typ string, frame uint64, v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", typ, err)
	}
	return json.Marshal(TextFrame{Type: typ, Frame: frame, Data: data})
}
