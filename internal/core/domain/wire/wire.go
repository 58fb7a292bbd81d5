// Package wire holds the SCALE primitives shared by every protocol version
// of the location, asset and program types.
package wire

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
)

type (
	Encoder = scale.Encoder
	Decoder = scale.Decoder
)

type Encodable interface {
	Encode(enc Encoder) error
}

type Decodable interface {
	Decode(dec Decoder) error
}

var ErrTrailingBytes = errors.New("trailing bytes after decoded value")

// Marshal returns the SCALE encoding of v.
func Marshal(v Encodable) ([]byte, error) {
	var buf bytes.Buffer
	if err := v.Encode(*scale.NewEncoder(&buf)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes data into v and rejects any leftover input.
func Unmarshal(data []byte, v Decodable) error {
	r := bytes.NewReader(data)
	if err := v.Decode(*scale.NewDecoder(r)); err != nil {
		return err
	}
	if r.Len() > 0 {
		return ErrTrailingBytes
	}
	return nil
}

func PutByte(enc Encoder, b byte) error {
	return enc.PushByte(b)
}

func Byte(dec Decoder) (byte, error) {
	b, err := dec.ReadOneByte()
	if errors.Is(err, io.EOF) {
		return 0, io.ErrUnexpectedEOF
	}
	return b, err
}

func PutCompact(enc Encoder, v uint64) error {
	return enc.EncodeUintCompact(*new(big.Int).SetUint64(v))
}

func Compact(dec Decoder) (uint64, error) {
	v, err := dec.DecodeUintCompact()
	if err != nil {
		return 0, err
	}
	if !v.IsUint64() {
		return 0, fmt.Errorf("compact value %s overflows uint64", v)
	}
	return v.Uint64(), nil
}

func PutFixed(enc Encoder, b []byte) error {
	return enc.Write(b)
}

func Fixed(dec Decoder, n int) ([]byte, error) {
	buf := make([]byte, n)
	if n == 0 {
		return buf, nil
	}
	if err := dec.Read(buf); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return buf, nil
}

// PutBytes writes a compact length prefix followed by b.
func PutBytes(enc Encoder, b []byte) error {
	if err := PutCompact(enc, uint64(len(b))); err != nil {
		return err
	}
	if len(b) == 0 {
		return nil
	}
	return enc.Write(b)
}

// Bytes reads a length-prefixed byte string of at most max bytes.
func Bytes(dec Decoder, max int) ([]byte, error) {
	n, err := Compact(dec)
	if err != nil {
		return nil, err
	}
	if n > uint64(max) {
		return nil, fmt.Errorf("byte string of length %d exceeds maximum %d", n, max)
	}
	return Fixed(dec, int(n))
}

// PutOption writes the option tag and, when present, the value.
func PutOption(enc Encoder, present bool, put func() error) error {
	if !present {
		return enc.PushByte(0)
	}
	if err := enc.PushByte(1); err != nil {
		return err
	}
	return put()
}

// Option reads an option tag and calls get when a value follows.
func Option(dec Decoder, get func() error) (bool, error) {
	tag, err := Byte(dec)
	if err != nil {
		return false, err
	}
	switch tag {
	case 0:
		return false, nil
	case 1:
		return true, get()
	default:
		return false, fmt.Errorf("invalid option tag %d", tag)
	}
}

// Length reads a compact sequence length bounded by max.
func Length(dec Decoder, max int) (int, error) {
	n, err := Compact(dec)
	if err != nil {
		return 0, err
	}
	if n > uint64(max) {
		return 0, fmt.Errorf("sequence of length %d exceeds maximum %d", n, max)
	}
	return int(n), nil
}
