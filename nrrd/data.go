package nrrd

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"slices"
	"strconv"

	"github.com/mrjoshuak/go-nrrd/internal/binio"
)

// payloadLayout is what the data codec needs to know about a document.
type payloadLayout struct {
	typ       Type
	encoding  Encoding
	order     binary.ByteOrder
	count     int
	blockSize int
}

func layoutOf(d *Document) payloadLayout {
	l := payloadLayout{
		typ:       d.Type,
		encoding:  d.Encoding,
		order:     binio.NativeEndian,
		count:     d.ElementCount(),
		blockSize: d.BlockSize,
	}
	switch d.Endian {
	case EndianLittle:
		l.order = binary.LittleEndian
	case EndianBig:
		l.order = binary.BigEndian
	}
	return l
}

func (l payloadLayout) elementSize() int {
	if l.typ == TypeBlock {
		return l.blockSize
	}
	return l.typ.Size()
}

func (l payloadLayout) rawSize() int {
	return l.count * l.elementSize()
}

// skipPayload applies lineSkip and byteSkip to an inline data region.
// A byteSkip of -1 on raw data selects the trailing rawSize bytes.
func skipPayload(region []byte, d *Document, l payloadLayout) ([]byte, int, error) {
	skipped := 0
	for n := 0; n < d.LineSkip; n++ {
		i := bytes.IndexByte(region, '\n')
		if i < 0 {
			return nil, skipped, fieldError(ErrTruncatedData, FieldNameLineSkip, "only %d of %d lines present", n, d.LineSkip)
		}
		region = region[i+1:]
		skipped += i + 1
	}
	switch {
	case d.ByteSkip == -1:
		if l.encoding != EncodingRaw {
			return nil, skipped, fieldError(ErrMalformedValue, FieldNameByteSkip, "-1 is only valid for raw encoding")
		}
		need := l.rawSize()
		if len(region) < need {
			return nil, skipped, fieldError(ErrTruncatedData, FieldNameData, "have %d bytes, need %d", len(region), need)
		}
		skipped += len(region) - need
		region = region[len(region)-need:]
	case d.ByteSkip < -1:
		return nil, skipped, fieldError(ErrMalformedValue, FieldNameByteSkip, "%d is not a valid skip", d.ByteSkip)
	case d.ByteSkip > 0:
		if len(region) < d.ByteSkip {
			return nil, skipped, fieldError(ErrTruncatedData, FieldNameByteSkip, "cannot skip %d of %d bytes", d.ByteSkip, len(region))
		}
		region = region[d.ByteSkip:]
		skipped += d.ByteSkip
	}
	return region, skipped, nil
}

// decodePayload converts an inline data region into samples, or into an
// opaque byte buffer for block data.
func decodePayload(region []byte, l payloadLayout) (Samples, []byte, error) {
	switch l.encoding {
	case EncodingRaw:
		return decodeRaw(region, l)
	case EncodingASCII:
		s, err := decodeASCII(region, l)
		return s, nil, err
	default:
		return nil, nil, fieldError(ErrUnsupportedEncoding, FieldNameEncoding, "cannot decode %q", string(l.encoding))
	}
}

func decodeRaw(region []byte, l payloadLayout) (Samples, []byte, error) {
	size := l.elementSize()
	if size <= 0 {
		return nil, nil, fieldError(ErrUnsupportedType, FieldNameType, "cannot decode %q", string(l.typ))
	}
	need := l.count * size
	if len(region) < need {
		return nil, nil, fieldError(ErrTruncatedData, FieldNameData, "have %d bytes, need %d", len(region), need)
	}
	region = region[:need]

	if l.typ == TypeBlock {
		buf := make([]byte, need)
		copy(buf, region)
		return nil, buf, nil
	}

	s, err := NewSamples(l.typ, l.count)
	if err != nil {
		return nil, nil, err
	}
	if size == 1 || binio.IsNative(l.order) {
		copy(nativeBytes(s), region)
		return s, nil, nil
	}

	r := binio.NewReader(region, l.order)
	switch v := s.(type) {
	case Int16Samples:
		err = readAll(v, r.Int16)
	case Uint16Samples:
		err = readAll(v, r.Uint16)
	case Int32Samples:
		err = readAll(v, r.Int32)
	case Uint32Samples:
		err = readAll(v, r.Uint32)
	case Int64Samples:
		err = readAll(v, r.Int64)
	case Uint64Samples:
		err = readAll(v, r.Uint64)
	case Float32Samples:
		err = readAll(v, r.Float32)
	case Float64Samples:
		err = readAll(v, r.Float64)
	}
	if err != nil {
		return nil, nil, fieldError(ErrTruncatedData, FieldNameData, "%v", err)
	}
	return s, nil, nil
}

// readAll fills dst with read(0), read(1), ... and stops at the first
// error.
func readAll[T any](dst []T, read func(int) (T, error)) error {
	for i := range dst {
		v, err := read(i)
		if err != nil {
			return err
		}
		dst[i] = v
	}
	return nil
}

func writeAll[T any](src []T, put func(int, T) error) error {
	for i, v := range src {
		if err := put(i, v); err != nil {
			return err
		}
	}
	return nil
}

func signedParser[T ~int8 | ~int16 | ~int32 | ~int64](bits int) func(string) (T, error) {
	return func(s string) (T, error) {
		v, err := strconv.ParseInt(s, 10, bits)
		return T(v), err
	}
}

func unsignedParser[T ~uint8 | ~uint16 | ~uint32 | ~uint64](bits int) func(string) (T, error) {
	return func(s string) (T, error) {
		v, err := strconv.ParseUint(s, 10, bits)
		return T(v), err
	}
}

func floatParser[T ~float32 | ~float64]() func(string) (T, error) {
	return func(s string) (T, error) {
		v, err := parseFloat(s)
		return T(v), err
	}
}

func parseTokens[T number](dst []T, tokens [][]byte, conv func(string) (T, error)) error {
	for i := range dst {
		v, err := conv(string(tokens[i]))
		if err != nil {
			return fieldError(ErrMalformedValue, FieldNameData, "value %d: bad %T %q", i, v, tokens[i])
		}
		dst[i] = v
	}
	return nil
}

func decodeASCII(region []byte, l payloadLayout) (Samples, error) {
	if l.typ.Size() == 0 {
		return nil, fieldError(ErrUnsupportedType, FieldNameType, "cannot decode %q as ascii", string(l.typ))
	}
	tokens := bytes.Fields(region)
	if len(tokens) < l.count {
		return nil, fieldError(ErrTruncatedData, FieldNameData, "insufficient data: have %d values, need %d", len(tokens), l.count)
	}
	s, err := NewSamples(l.typ, l.count)
	if err != nil {
		return nil, err
	}
	switch v := s.(type) {
	case Int8Samples:
		err = parseTokens(v, tokens, signedParser[int8](8))
	case Uint8Samples:
		err = parseTokens(v, tokens, unsignedParser[uint8](8))
	case Int16Samples:
		err = parseTokens(v, tokens, signedParser[int16](16))
	case Uint16Samples:
		err = parseTokens(v, tokens, unsignedParser[uint16](16))
	case Int32Samples:
		err = parseTokens(v, tokens, signedParser[int32](32))
	case Uint32Samples:
		err = parseTokens(v, tokens, unsignedParser[uint32](32))
	case Int64Samples:
		err = parseTokens(v, tokens, signedParser[int64](64))
	case Uint64Samples:
		err = parseTokens(v, tokens, unsignedParser[uint64](64))
	case Float32Samples:
		err = parseTokens(v, tokens, floatParser[float32]())
	case Float64Samples:
		err = parseTokens(v, tokens, floatParser[float64]())
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// payloadSource returns the samples to encode for an inline payload.
// A raw Buffer is reinterpreted through the raw decoder when the output
// encoding is ascii.
func payloadSource(d *Document, l payloadLayout) (Samples, []byte, error) {
	if d.Buffer == nil {
		return d.Data, nil, nil
	}
	if l.encoding == EncodingRaw {
		return nil, d.Buffer, nil
	}
	raw := l
	raw.encoding = EncodingRaw
	s, _, err := decodeRaw(d.Buffer, raw)
	return s, nil, err
}

// encodedSize returns the exact number of payload bytes encodePayload
// will append.
func encodedSize(s Samples, buf []byte, l payloadLayout) (int, error) {
	if buf != nil {
		return len(buf), nil
	}
	switch l.encoding {
	case EncodingRaw:
		return l.count * l.typ.Size(), nil
	case EncodingASCII:
		n := 0
		err := eachText(s, func(i int, text []byte) {
			if i > 0 {
				n++
			}
			n += len(text)
		})
		return n, err
	default:
		return 0, fieldError(ErrUnsupportedEncoding, FieldNameEncoding, "cannot encode %q", string(l.encoding))
	}
}

// encodePayload appends the encoded payload to dst. dst must have
// capacity for encodedSize more bytes.
func encodePayload(dst []byte, s Samples, buf []byte, l payloadLayout) ([]byte, error) {
	if buf != nil {
		return append(dst, buf...), nil
	}
	switch l.encoding {
	case EncodingRaw:
		return encodeRaw(dst, s, l)
	case EncodingASCII:
		err := eachText(s, func(i int, text []byte) {
			if i > 0 {
				dst = append(dst, ' ')
			}
			dst = append(dst, text...)
		})
		return dst, err
	default:
		return nil, fieldError(ErrUnsupportedEncoding, FieldNameEncoding, "cannot encode %q", string(l.encoding))
	}
}

func encodeRaw(dst []byte, s Samples, l payloadLayout) ([]byte, error) {
	size := l.typ.Size()
	if size == 1 || binio.IsNative(l.order) {
		b := nativeBytes(s)
		if b == nil && s.Len() > 0 {
			return nil, fieldError(ErrUnsupportedType, FieldNameData, "cannot encode %T", s)
		}
		return append(dst, b...), nil
	}

	start := len(dst)
	need := s.Len() * size
	dst = slices.Grow(dst, need)[:start+need]
	w := binio.NewWriter(dst[start:], l.order)
	var err error
	switch v := s.(type) {
	case Int16Samples:
		err = writeAll(v, w.PutInt16)
	case Uint16Samples:
		err = writeAll(v, w.PutUint16)
	case Int32Samples:
		err = writeAll(v, w.PutInt32)
	case Uint32Samples:
		err = writeAll(v, w.PutUint32)
	case Int64Samples:
		err = writeAll(v, w.PutInt64)
	case Uint64Samples:
		err = writeAll(v, w.PutUint64)
	case Float32Samples:
		err = writeAll(v, w.PutFloat32)
	case Float64Samples:
		err = writeAll(v, w.PutFloat64)
	default:
		return nil, fieldError(ErrUnsupportedType, FieldNameData, "cannot encode %T", s)
	}
	if err != nil {
		return nil, fmt.Errorf("nrrd: encode %s: %w", l.typ, err)
	}
	return dst, nil
}

func eachSigned[T ~int8 | ~int16 | ~int32 | ~int64](v []T, fn func(int, []byte)) {
	var scratch [24]byte
	for i, e := range v {
		fn(i, strconv.AppendInt(scratch[:0], int64(e), 10))
	}
}

func eachUnsigned[T ~uint8 | ~uint16 | ~uint32 | ~uint64](v []T, fn func(int, []byte)) {
	var scratch [24]byte
	for i, e := range v {
		fn(i, strconv.AppendUint(scratch[:0], uint64(e), 10))
	}
}

func eachFloat[T ~float32 | ~float64](v []T, bits int, fn func(int, []byte)) {
	var scratch [32]byte
	for i, e := range v {
		fn(i, appendFloat(scratch[:0], float64(e), bits))
	}
}

// eachText calls fn with the ascii form of every element of s in order.
// The text slice is only valid for the duration of the call.
func eachText(s Samples, fn func(i int, text []byte)) error {
	switch v := s.(type) {
	case Int8Samples:
		eachSigned(v, fn)
	case Uint8Samples:
		eachUnsigned(v, fn)
	case Int16Samples:
		eachSigned(v, fn)
	case Uint16Samples:
		eachUnsigned(v, fn)
	case Int32Samples:
		eachSigned(v, fn)
	case Uint32Samples:
		eachUnsigned(v, fn)
	case Int64Samples:
		eachSigned(v, fn)
	case Uint64Samples:
		eachUnsigned(v, fn)
	case Float32Samples:
		eachFloat(v, 32, fn)
	case Float64Samples:
		eachFloat(v, 64, fn)
	default:
		return fmt.Errorf("%w: cannot encode %T as ascii", ErrUnsupportedType, s)
	}
	return nil
}
