// Package nrrd provides reading and writing of NRRD ("Nearly Raw Raster
// Data") files.
//
// A NRRD file is a text header of typed fields describing an
// N-dimensional sampled volume, followed by the samples themselves,
// either inline (raw binary or ascii text) or in one or more detached
// data files. Parse turns a byte buffer into a Document and Serialize
// does the reverse. Neither touches the file system.
package nrrd

import (
	"math"
	"strings"
)

// Type identifies the element type of the samples.
//
// Unrecognized type names parse into an opaque Type holding the literal
// token; such documents can be inspected and re-serialized but their
// payload cannot be decoded.
type Type string

// Element types.
const (
	TypeInt8    Type = "int8"
	TypeUint8   Type = "uint8"
	TypeInt16   Type = "int16"
	TypeUint16  Type = "uint16"
	TypeInt32   Type = "int32"
	TypeUint32  Type = "uint32"
	TypeInt64   Type = "int64"
	TypeUint64  Type = "uint64"
	TypeFloat   Type = "float"
	TypeDouble  Type = "double"
	TypeBlock   Type = "block"
	TypeUnknown Type = ""
)

var typeAliases = map[string]Type{
	"signed char": TypeInt8,
	"int8":        TypeInt8,
	"int8_t":      TypeInt8,

	"uchar":         TypeUint8,
	"unsigned char": TypeUint8,
	"uint8":         TypeUint8,
	"uint8_t":       TypeUint8,

	"short":              TypeInt16,
	"short int":          TypeInt16,
	"signed short":       TypeInt16,
	"signed short int":   TypeInt16,
	"int16":              TypeInt16,
	"int16_t":            TypeInt16,
	"ushort":             TypeUint16,
	"unsigned short":     TypeUint16,
	"unsigned short int": TypeUint16,
	"uint16":             TypeUint16,
	"uint16_t":           TypeUint16,

	"int":          TypeInt32,
	"signed int":   TypeInt32,
	"int32":        TypeInt32,
	"int32_t":      TypeInt32,
	"uint":         TypeUint32,
	"unsigned int": TypeUint32,
	"uint32":       TypeUint32,
	"uint32_t":     TypeUint32,

	"longlong":               TypeInt64,
	"long long":              TypeInt64,
	"long long int":          TypeInt64,
	"signed long long":       TypeInt64,
	"signed long long int":   TypeInt64,
	"int64":                  TypeInt64,
	"int64_t":                TypeInt64,
	"ulonglong":              TypeUint64,
	"unsigned long long":     TypeUint64,
	"unsigned long long int": TypeUint64,
	"uint64":                 TypeUint64,
	"uint64_t":               TypeUint64,

	"float":  TypeFloat,
	"double": TypeDouble,
	"block":  TypeBlock,
}

// Size returns the width of one element in bytes, or 0 for block and
// unknown types.
func (t Type) Size() int {
	switch t {
	case TypeInt8, TypeUint8:
		return 1
	case TypeInt16, TypeUint16:
		return 2
	case TypeInt32, TypeUint32, TypeFloat:
		return 4
	case TypeInt64, TypeUint64, TypeDouble:
		return 8
	default:
		return 0
	}
}

// IsKnown reports whether t is one of the element types the codec can
// encode and decode.
func (t Type) IsKnown() bool {
	return t.Size() > 0 || t == TypeBlock
}

// IsFloat reports whether t is a floating-point type.
func (t Type) IsFloat() bool {
	return t == TypeFloat || t == TypeDouble
}

// NeedsEndian reports whether raw samples of this type depend on byte order.
func (t Type) NeedsEndian() bool {
	switch t {
	case TypeInt8, TypeUint8, TypeBlock:
		return false
	default:
		return true
	}
}

// Encoding identifies how the payload is stored.
type Encoding string

// Payload encodings. Only EncodingRaw and EncodingASCII can be decoded.
const (
	EncodingRaw   Encoding = "raw"
	EncodingASCII Encoding = "ascii"
	EncodingHex   Encoding = "hex"
	EncodingGzip  Encoding = "gzip"
	EncodingBzip2 Encoding = "bzip2"
)

var encodingAliases = map[string]Encoding{
	"raw":   EncodingRaw,
	"txt":   EncodingASCII,
	"text":  EncodingASCII,
	"ascii": EncodingASCII,
	"hex":   EncodingHex,
	"gz":    EncodingGzip,
	"gzip":  EncodingGzip,
	"bz2":   EncodingBzip2,
	"bzip2": EncodingBzip2,
}

// IsSupported reports whether payloads in this encoding can be decoded and
// encoded.
func (e Encoding) IsSupported() bool {
	return e == EncodingRaw || e == EncodingASCII
}

// Endian is the byte order of raw multi-byte samples.
type Endian string

// Byte orders. EndianUnset means the field is absent.
const (
	EndianUnset  Endian = ""
	EndianLittle Endian = "little"
	EndianBig    Endian = "big"
)

var endianAliases = map[string]Endian{
	"little": EndianLittle,
	"big":    EndianBig,
}

// Space names a physical coordinate frame.
type Space string

// Named coordinate frames.
const (
	SpaceUnset                  Space = ""
	SpaceRightAnteriorSuperior  Space = "right-anterior-superior"
	SpaceLeftAnteriorSuperior   Space = "left-anterior-superior"
	SpaceLeftPosteriorSuperior  Space = "left-posterior-superior"
	SpaceRightAnteriorSuperiorT Space = "right-anterior-superior-time"
	SpaceLeftAnteriorSuperiorT  Space = "left-anterior-superior-time"
	SpaceLeftPosteriorSuperiorT Space = "left-posterior-superior-time"
	SpaceScannerXYZ             Space = "scanner-xyz"
	SpaceScannerXYZTime         Space = "scanner-xyz-time"
	Space3DRightHanded          Space = "3D-right-handed"
	Space3DLeftHanded           Space = "3D-left-handed"
	Space3DRightHandedTime      Space = "3D-right-handed-time"
	Space3DLeftHandedTime       Space = "3D-left-handed-time"
)

var spaceAliases = map[string]Space{
	"right-anterior-superior":      SpaceRightAnteriorSuperior,
	"ras":                          SpaceRightAnteriorSuperior,
	"left-anterior-superior":       SpaceLeftAnteriorSuperior,
	"las":                          SpaceLeftAnteriorSuperior,
	"left-posterior-superior":      SpaceLeftPosteriorSuperior,
	"lps":                          SpaceLeftPosteriorSuperior,
	"right-anterior-superior-time": SpaceRightAnteriorSuperiorT,
	"rast":                         SpaceRightAnteriorSuperiorT,
	"left-anterior-superior-time":  SpaceLeftAnteriorSuperiorT,
	"last":                         SpaceLeftAnteriorSuperiorT,
	"left-posterior-superior-time": SpaceLeftPosteriorSuperiorT,
	"lpst":                         SpaceLeftPosteriorSuperiorT,
	"scanner-xyz":                  SpaceScannerXYZ,
	"scanner-xyz-time":             SpaceScannerXYZTime,
	"3d-right-handed":              Space3DRightHanded,
	"3d-left-handed":               Space3DLeftHanded,
	"3d-right-handed-time":         Space3DRightHandedTime,
	"3d-left-handed-time":          Space3DLeftHandedTime,
}

// Dimension returns the number of axes the frame implies: 3 for spatial
// frames, 4 for frames with a trailing time axis, 0 if unknown.
func (s Space) Dimension() int {
	canon, ok := spaceAliases[strings.ToLower(string(s))]
	if !ok {
		return 0
	}
	if strings.HasSuffix(string(canon), "-time") {
		return 4
	}
	return 3
}

// Center is the sample centering along one axis.
type Center string

// Centerings. CenterNone is written as "???".
const (
	CenterNone Center = ""
	CenterCell Center = "cell"
	CenterNode Center = "node"
)

var centerAliases = map[string]Center{
	"cell": CenterCell,
	"node": CenterNode,
	"???":  CenterNone,
	"none": CenterNone,
}

// Kind describes what an axis represents.
type Kind string

// Axis kinds. KindNone is written as "???".
const (
	KindNone                    Kind = ""
	KindDomain                  Kind = "domain"
	KindSpace                   Kind = "space"
	KindTime                    Kind = "time"
	KindList                    Kind = "list"
	KindPoint                   Kind = "point"
	KindVector                  Kind = "vector"
	KindCovariantVector         Kind = "covariant-vector"
	KindNormal                  Kind = "normal"
	KindStub                    Kind = "stub"
	KindScalar                  Kind = "scalar"
	KindComplex                 Kind = "complex"
	Kind2Vector                 Kind = "2-vector"
	Kind3Color                  Kind = "3-color"
	KindRGBColor                Kind = "RGB-color"
	KindHSVColor                Kind = "HSV-color"
	KindXYZColor                Kind = "XYZ-color"
	Kind4Color                  Kind = "4-color"
	KindRGBAColor               Kind = "RGBA-color"
	Kind3Vector                 Kind = "3-vector"
	Kind3Gradient               Kind = "3-gradient"
	Kind3Normal                 Kind = "3-normal"
	Kind4Vector                 Kind = "4-vector"
	KindQuaternion              Kind = "quaternion"
	Kind2DSymmetricMatrix       Kind = "2D-symmetric-matrix"
	Kind2DMaskedSymmetricMatrix Kind = "2D-masked-symmetric-matrix"
	Kind2DMatrix                Kind = "2D-matrix"
	Kind2DMaskedMatrix          Kind = "2D-masked-matrix"
	Kind3DSymmetricMatrix       Kind = "3D-symmetric-matrix"
	Kind3DMaskedSymmetricMatrix Kind = "3D-masked-symmetric-matrix"
	Kind3DMatrix                Kind = "3D-matrix"
	Kind3DMaskedMatrix          Kind = "3D-masked-matrix"
)

var kindAliases = func() map[string]Kind {
	kinds := []Kind{
		KindDomain, KindSpace, KindTime, KindList, KindPoint, KindVector,
		KindCovariantVector, KindNormal, KindStub, KindScalar, KindComplex,
		Kind2Vector, Kind3Color, KindRGBColor, KindHSVColor, KindXYZColor,
		Kind4Color, KindRGBAColor, Kind3Vector, Kind3Gradient, Kind3Normal,
		Kind4Vector, KindQuaternion, Kind2DSymmetricMatrix,
		Kind2DMaskedSymmetricMatrix, Kind2DMatrix, Kind2DMaskedMatrix,
		Kind3DSymmetricMatrix, Kind3DMaskedSymmetricMatrix, Kind3DMatrix,
		Kind3DMaskedMatrix,
	}
	m := make(map[string]Kind, len(kinds)+2)
	for _, k := range kinds {
		m[strings.ToLower(string(k))] = k
	}
	m["???"] = KindNone
	m["none"] = KindNone
	return m
}()

// lookupEnum resolves token case-insensitively against aliases. Unknown
// tokens are returned verbatim with ok set to false.
func lookupEnum[T ~string](aliases map[string]T, token string) (T, bool) {
	if v, ok := aliases[strings.ToLower(strings.TrimSpace(token))]; ok {
		return v, true
	}
	return T(token), false
}

// Vector is a point or direction in space. A nil Vector is the "none"
// marker used for non-spatial axes in space directions.
type Vector []float64

// DataFile describes detached sample storage.
//
// Exactly one form is used: a single file name (Name), a numbered
// sequence produced from a printf-style Format over Min..Max by Step, or
// an explicit list of names (Files).
type DataFile struct {
	Name string

	Format string
	Min    int
	Max    int
	Step   int

	Files []string

	// SubDim is the dimension of the sub-volume stored in each file.
	// Zero means the field was not given.
	SubDim int
}

// IsList reports whether the data file is an explicit list of names.
func (f *DataFile) IsList() bool {
	return f.Files != nil
}

// IsPattern reports whether the data file is a numbered sequence.
func (f *DataFile) IsPattern() bool {
	return f.Format != ""
}

// Count returns the number of files named: the list length, the number of
// indices in Min..Max visited by Step, or 1 for a single name. A pattern
// with zero step names no files. Counts beyond math.MaxInt saturate.
func (f *DataFile) Count() int {
	switch {
	case f.IsList():
		return len(f.Files)
	case f.IsPattern():
		var span, step uint64
		switch {
		case f.Step > 0 && f.Max >= f.Min:
			span, step = uint64(f.Max)-uint64(f.Min), uint64(f.Step)
		case f.Step < 0 && f.Min >= f.Max:
			span, step = uint64(f.Min)-uint64(f.Max), uint64(-(f.Step+1))+1
		default:
			return 0
		}
		q := span / step
		if q >= math.MaxInt {
			return math.MaxInt
		}
		return int(q) + 1
	default:
		return 1
	}
}
