package tag

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Encoder is implemented by values that can be tagged. TagChunks must be
// injective for the type: distinct values must produce distinct byte streams.
type Encoder interface {
	TagChunks() [][]byte
}

// String tags a string by its UTF-8 bytes.
type String string

func (s String) TagChunks() [][]byte { return [][]byte{[]byte(s)} }

// Bytes tags a raw byte slice.
type Bytes []byte

func (b Bytes) TagChunks() [][]byte { return [][]byte{b} }

// Int64 tags a signed integer by its 8-byte big-endian encoding.
type Int64 int64

func (i Int64) TagChunks() [][]byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(i))
	return [][]byte{buf[:]}
}

// Uint64 tags an unsigned integer by its 8-byte big-endian encoding.
type Uint64 uint64

func (u Uint64) TagChunks() [][]byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(u))
	return [][]byte{buf[:]}
}

// Float64 tags a float by its IEEE-754 bits.
type Float64 float64

func (f Float64) TagChunks() [][]byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], math.Float64bits(float64(f)))
	return [][]byte{buf[:]}
}

// Bool tags false as a single zero byte and true as a single one byte.
type Bool bool

func (b Bool) TagChunks() [][]byte {
	if b {
		return [][]byte{{1}}
	}
	return [][]byte{{0}}
}

// Encode returns an Encoder for common Go values.
func Encode(v any) (Encoder, error) {
	switch x := v.(type) {
	case Encoder:
		return x, nil
	case string:
		return String(x), nil
	case []byte:
		return Bytes(x), nil
	case bool:
		return Bool(x), nil
	case int:
		return Int64(x), nil
	case int8:
		return Int64(x), nil
	case int16:
		return Int64(x), nil
	case int32:
		return Int64(x), nil
	case int64:
		return Int64(x), nil
	case uint:
		return Uint64(x), nil
	case uint8:
		return Uint64(x), nil
	case uint16:
		return Uint64(x), nil
	case uint32:
		return Uint64(x), nil
	case uint64:
		return Uint64(x), nil
	case float32:
		return Float64(x), nil
	case float64:
		return Float64(x), nil
	}
	return nil, fmt.Errorf("%w: %T", ErrNotEncodable, v)
}
