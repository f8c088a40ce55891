package nrrd

import (
	"fmt"
	"math"
	"unsafe"
)

// Samples is a typed array of sample values. The concrete types
// (Int8Samples through Float64Samples) are plain slices tagged with the
// element type they hold, so a payload always carries its own Type.
type Samples interface {
	// Type returns the element type of the array.
	Type() Type
	// Len returns the number of elements.
	Len() int
	// Float64 returns element i converted to float64.
	Float64(i int) float64
}

// Typed sample arrays.
type (
	Int8Samples    []int8
	Uint8Samples   []uint8
	Int16Samples   []int16
	Uint16Samples  []uint16
	Int32Samples   []int32
	Uint32Samples  []uint32
	Int64Samples   []int64
	Uint64Samples  []uint64
	Float32Samples []float32
	Float64Samples []float64
)

func (s Int8Samples) Type() Type    { return TypeInt8 }
func (s Uint8Samples) Type() Type   { return TypeUint8 }
func (s Int16Samples) Type() Type   { return TypeInt16 }
func (s Uint16Samples) Type() Type  { return TypeUint16 }
func (s Int32Samples) Type() Type   { return TypeInt32 }
func (s Uint32Samples) Type() Type  { return TypeUint32 }
func (s Int64Samples) Type() Type   { return TypeInt64 }
func (s Uint64Samples) Type() Type  { return TypeUint64 }
func (s Float32Samples) Type() Type { return TypeFloat }
func (s Float64Samples) Type() Type { return TypeDouble }

func (s Int8Samples) Len() int    { return len(s) }
func (s Uint8Samples) Len() int   { return len(s) }
func (s Int16Samples) Len() int   { return len(s) }
func (s Uint16Samples) Len() int  { return len(s) }
func (s Int32Samples) Len() int   { return len(s) }
func (s Uint32Samples) Len() int  { return len(s) }
func (s Int64Samples) Len() int   { return len(s) }
func (s Uint64Samples) Len() int  { return len(s) }
func (s Float32Samples) Len() int { return len(s) }
func (s Float64Samples) Len() int { return len(s) }

func (s Int8Samples) Float64(i int) float64    { return float64(s[i]) }
func (s Uint8Samples) Float64(i int) float64   { return float64(s[i]) }
func (s Int16Samples) Float64(i int) float64   { return float64(s[i]) }
func (s Uint16Samples) Float64(i int) float64  { return float64(s[i]) }
func (s Int32Samples) Float64(i int) float64   { return float64(s[i]) }
func (s Uint32Samples) Float64(i int) float64  { return float64(s[i]) }
func (s Int64Samples) Float64(i int) float64   { return float64(s[i]) }
func (s Uint64Samples) Float64(i int) float64  { return float64(s[i]) }
func (s Float32Samples) Float64(i int) float64 { return float64(s[i]) }
func (s Float64Samples) Float64(i int) float64 { return s[i] }

// SamplesOf wraps a plain Go slice of a supported numeric type as Samples.
// Values that already implement Samples are returned unchanged.
func SamplesOf(v any) (Samples, error) {
	switch s := v.(type) {
	case Samples:
		return s, nil
	case []int8:
		return Int8Samples(s), nil
	case []uint8:
		return Uint8Samples(s), nil
	case []int16:
		return Int16Samples(s), nil
	case []uint16:
		return Uint16Samples(s), nil
	case []int32:
		return Int32Samples(s), nil
	case []uint32:
		return Uint32Samples(s), nil
	case []int64:
		return Int64Samples(s), nil
	case []uint64:
		return Uint64Samples(s), nil
	case []float32:
		return Float32Samples(s), nil
	case []float64:
		return Float64Samples(s), nil
	default:
		return nil, fmt.Errorf("%w: cannot hold %T", ErrUnsupportedType, v)
	}
}

// NewSamples allocates a zeroed array of n elements of type t.
func NewSamples(t Type, n int) (Samples, error) {
	switch t {
	case TypeInt8:
		return make(Int8Samples, n), nil
	case TypeUint8:
		return make(Uint8Samples, n), nil
	case TypeInt16:
		return make(Int16Samples, n), nil
	case TypeUint16:
		return make(Uint16Samples, n), nil
	case TypeInt32:
		return make(Int32Samples, n), nil
	case TypeUint32:
		return make(Uint32Samples, n), nil
	case TypeInt64:
		return make(Int64Samples, n), nil
	case TypeUint64:
		return make(Uint64Samples, n), nil
	case TypeFloat:
		return make(Float32Samples, n), nil
	case TypeDouble:
		return make(Float64Samples, n), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, string(t))
	}
}

type number interface {
	~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 |
		~int64 | ~uint64 | ~float32 | ~float64
}

// limits describes the range of a conversion target.
type limits struct {
	integer bool
	lo      int64
	hi      uint64
	float32 bool
}

func limitsOf[T number]() limits {
	var z T
	switch any(z).(type) {
	case int8:
		return limits{integer: true, lo: math.MinInt8, hi: math.MaxInt8}
	case uint8:
		return limits{integer: true, hi: math.MaxUint8}
	case int16:
		return limits{integer: true, lo: math.MinInt16, hi: math.MaxInt16}
	case uint16:
		return limits{integer: true, hi: math.MaxUint16}
	case int32:
		return limits{integer: true, lo: math.MinInt32, hi: math.MaxInt32}
	case uint32:
		return limits{integer: true, hi: math.MaxUint32}
	case int64:
		return limits{integer: true, lo: math.MinInt64, hi: math.MaxInt64}
	case uint64:
		return limits{integer: true, hi: math.MaxUint64}
	case float32:
		return limits{float32: true}
	default:
		return limits{}
	}
}

type sourceKind uint8

const (
	sourceSigned sourceKind = iota
	sourceUnsigned
	sourceFloat
)

func kindOf[T number]() sourceKind {
	var z T
	switch any(z).(type) {
	case uint8, uint16, uint32, uint64:
		return sourceUnsigned
	case float32, float64:
		return sourceFloat
	default:
		return sourceSigned
	}
}

// convertSlice converts src element-wise, saturating at the range of D.
func convertSlice[D, S number](src []S) []D {
	dst := make([]D, len(src))
	lim := limitsOf[D]()
	kind := kindOf[S]()
	for i, v := range src {
		dst[i] = convertValue[D](v, kind, lim)
	}
	return dst
}

func convertValue[D, S number](v S, kind sourceKind, lim limits) D {
	switch kind {
	case sourceFloat:
		f := float64(v)
		if !lim.integer {
			if lim.float32 && !math.IsInf(f, 0) && math.Abs(f) > math.MaxFloat32 {
				return D(math.Inf(int(math.Copysign(1, f))))
			}
			return D(f)
		}
		switch {
		case math.IsNaN(f):
			return 0
		case f <= float64(lim.lo):
			return D(lim.lo)
		case f >= float64(lim.hi):
			return D(lim.hi)
		}
		return D(f)
	case sourceUnsigned:
		if lim.integer && uint64(v) > lim.hi {
			return D(lim.hi)
		}
		return D(v)
	default:
		n := int64(v)
		if !lim.integer {
			return D(v)
		}
		if n < lim.lo {
			return D(lim.lo)
		}
		if n > 0 && uint64(n) > lim.hi {
			return D(lim.hi)
		}
		return D(n)
	}
}

func convertTo[S number](src []S, t Type) (Samples, error) {
	switch t {
	case TypeInt8:
		return Int8Samples(convertSlice[int8](src)), nil
	case TypeUint8:
		return Uint8Samples(convertSlice[uint8](src)), nil
	case TypeInt16:
		return Int16Samples(convertSlice[int16](src)), nil
	case TypeUint16:
		return Uint16Samples(convertSlice[uint16](src)), nil
	case TypeInt32:
		return Int32Samples(convertSlice[int32](src)), nil
	case TypeUint32:
		return Uint32Samples(convertSlice[uint32](src)), nil
	case TypeInt64:
		return Int64Samples(convertSlice[int64](src)), nil
	case TypeUint64:
		return Uint64Samples(convertSlice[uint64](src)), nil
	case TypeFloat:
		return Float32Samples(convertSlice[float32](src)), nil
	case TypeDouble:
		return Float64Samples(convertSlice[float64](src)), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, string(t))
	}
}

// ConvertSamples returns s converted element-wise to type t. Values
// outside the range of an integer type saturate at its minimum or maximum,
// fractions are truncated toward zero and NaN becomes 0. Doubles too large
// for float become infinities. If s already has type t it is returned
// unchanged.
func ConvertSamples(s Samples, t Type) (Samples, error) {
	if s.Type() == t {
		return s, nil
	}
	switch v := s.(type) {
	case Int8Samples:
		return convertTo(v, t)
	case Uint8Samples:
		return convertTo(v, t)
	case Int16Samples:
		return convertTo(v, t)
	case Uint16Samples:
		return convertTo(v, t)
	case Int32Samples:
		return convertTo(v, t)
	case Uint32Samples:
		return convertTo(v, t)
	case Int64Samples:
		return convertTo(v, t)
	case Uint64Samples:
		return convertTo(v, t)
	case Float32Samples:
		return convertTo(v, t)
	case Float64Samples:
		return convertTo(v, t)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedType, s)
	}
}

func sliceBytes[T number](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*int(unsafe.Sizeof(s[0])))
}

// nativeBytes returns the in-memory representation of s. The result
// aliases s.
func nativeBytes(s Samples) []byte {
	switch v := s.(type) {
	case Int8Samples:
		return sliceBytes(v)
	case Uint8Samples:
		return sliceBytes(v)
	case Int16Samples:
		return sliceBytes(v)
	case Uint16Samples:
		return sliceBytes(v)
	case Int32Samples:
		return sliceBytes(v)
	case Uint32Samples:
		return sliceBytes(v)
	case Int64Samples:
		return sliceBytes(v)
	case Uint64Samples:
		return sliceBytes(v)
	case Float32Samples:
		return sliceBytes(v)
	case Float64Samples:
		return sliceBytes(v)
	default:
		return nil
	}
}
