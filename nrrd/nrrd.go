package nrrd

import (
	"encoding/binary"
	"errors"
	"math"
	"strconv"

	"github.com/mrjoshuak/go-nrrd/internal/binio"
)

// Document is the structured form of one NRRD file.
//
// Optional scalar fields are absent when zero (or nil for pointers);
// list fields are absent when nil. Exactly one payload source must be
// set: Data, Buffer or DataFile.
type Document struct {
	// Version is the format version from the magic line. Serialize writes
	// at least DefaultVersion.
	Version int

	Dimension int
	Type      Type
	BlockSize int
	Encoding  Encoding
	Endian    Endian
	Sizes     []int

	// Per-axis fields; each has Dimension elements when present.
	Spacings    []float64
	Thicknesses []float64
	AxisMins    []float64
	AxisMaxs    []float64
	Centers     []Center
	Kinds       []Kind
	Labels      []string
	Units       []string

	// Orientation. SpaceDimension may be left zero when Space implies it.
	Space            Space
	SpaceDimension   int
	SpaceUnits       []string
	SpaceOrigin      Vector
	SpaceDirections  []Vector
	MeasurementFrame []Vector

	Content     string
	Number      string
	SampleUnits string
	Min         *float64
	Max         *float64
	OldMin      *float64
	OldMax      *float64
	LineSkip    int
	ByteSkip    int

	DataFile *DataFile

	// Keys holds key/value pairs ("key:=value" lines).
	Keys map[string]string

	// Data holds decoded samples for numeric types.
	Data Samples
	// Buffer holds raw sample bytes: always for block data, or instead of
	// Data when the caller already has encoded bytes.
	Buffer []byte
}

// ElementCount returns the number of samples described by Sizes.
func (d *Document) ElementCount() int {
	if len(d.Sizes) == 0 {
		return 0
	}
	n := 1
	for _, s := range d.Sizes {
		n *= s
	}
	return n
}

// ElementSize returns the width of one sample in bytes, or 0 if the type
// is unknown.
func (d *Document) ElementSize() int {
	if d.Type == TypeBlock {
		return d.BlockSize
	}
	return d.Type.Size()
}

// EffectiveSpaceDimension returns the explicit space dimension, or the one
// implied by Space, or 0.
func (d *Document) EffectiveSpaceDimension() int {
	if d.SpaceDimension > 0 {
		return d.SpaceDimension
	}
	return d.Space.Dimension()
}

// Samples returns the payload as typed samples: Data if set, otherwise
// Buffer decoded according to Type and Endian. Block data and detached
// payloads have no samples.
func (d *Document) Samples() (Samples, error) {
	switch {
	case d.Data != nil:
		return d.Data, nil
	case d.Buffer != nil:
		l := layoutOf(d)
		l.encoding = EncodingRaw
		s, _, err := decodeRaw(d.Buffer, l)
		if err != nil {
			return nil, err
		}
		if s == nil {
			return nil, fieldError(ErrUnsupportedType, FieldNameData, "block data has no samples")
		}
		return s, nil
	default:
		return nil, fieldError(ErrNoPayload, FieldNameData, "no inline samples")
	}
}

// Float returns a pointer to v, for the optional float fields.
func Float(v float64) *float64 {
	return &v
}

// Parse decodes a complete NRRD file. Inline payloads are decoded into
// Data (or Buffer for block data); detached data files are described in
// DataFile but not read.
//
// The returned warnings report input that was accepted as-is. A non-nil
// error means no usable document was produced.
func Parse(b []byte, opts ...Option) (*Document, []Warning, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	diag := &diagnostics{opts: o}

	header, region, offset := splitHeader(b)
	d := &Document{}
	if err := parseHeader(d, header, diag); err != nil {
		return nil, diag.warnings, err
	}
	if err := d.validateHeader(diag); err != nil {
		return nil, diag.warnings, err
	}

	switch {
	case d.DataFile != nil:
		if err := diag.warn(0, FieldNameDataFile, "payload is in detached data file(s); not read"); err != nil {
			return nil, diag.warnings, err
		}
	case offset < 0:
		return nil, diag.warnings, fieldError(ErrNoPayload, FieldNameData, "no blank line after header and no data file")
	default:
		l := layoutOf(d)
		region, skipped, err := skipPayload(region, d, l)
		if err != nil {
			return nil, diag.warnings, withOffset(err, offset)
		}
		data, buf, err := decodePayload(region, l)
		if err != nil {
			return nil, diag.warnings, withOffset(err, offset+skipped)
		}
		d.Data, d.Buffer = data, buf
	}

	if err := d.validatePayload(); err != nil {
		return nil, diag.warnings, err
	}
	return d, diag.warnings, nil
}

func withOffset(err error, offset int) error {
	var fe *FormatError
	if errors.As(err, &fe) && fe.Offset < 0 {
		fe.Offset = offset
	}
	return err
}

// Serialize encodes d as a NRRD file. Missing fields that can be derived
// are filled in on a private copy: Type from Data, Encoding as raw,
// Endian as the host byte order when required, Dimension from Sizes. d
// itself is not modified.
func Serialize(d *Document, opts ...Option) ([]byte, []Warning, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	diag := &diagnostics{opts: o}

	w, err := d.normalize()
	if err != nil {
		return nil, nil, err
	}
	if err := w.validate(diag); err != nil {
		return nil, diag.warnings, err
	}
	if w.DataFile == nil && (w.LineSkip != 0 || w.ByteSkip != 0) {
		if err := diag.warn(0, FieldNameLineSkip, "line and byte skips are not written for inline data"); err != nil {
			return nil, diag.warnings, err
		}
	}

	version := o.version
	if version == 0 {
		version = max(DefaultVersion, min(w.Version, MaxVersion))
	}
	header := renderHeader(w, version, o.comments)

	if w.DataFile != nil {
		return header, diag.warnings, nil
	}

	l := layoutOf(w)
	if !l.encoding.IsSupported() {
		return nil, diag.warnings, fieldError(ErrUnsupportedEncoding, FieldNameEncoding, "cannot encode %q", string(l.encoding))
	}
	s, buf, err := payloadSource(w, l)
	if err != nil {
		return nil, diag.warnings, err
	}
	size, err := encodedSize(s, buf, l)
	if err != nil {
		return nil, diag.warnings, err
	}

	out := make([]byte, 0, len(header)+1+size)
	out = append(out, header...)
	out = append(out, '\n')
	out, err = encodePayload(out, s, buf, l)
	if err != nil {
		return nil, diag.warnings, err
	}
	return out, diag.warnings, nil
}

// normalize returns a shallow copy of d with derivable fields filled in.
// Slices shared with d are never written to.
func (d *Document) normalize() (*Document, error) {
	w := *d
	if w.Type == TypeUnknown && w.Data != nil {
		w.Type = w.Data.Type()
	}
	if w.Encoding == "" {
		w.Encoding = EncodingRaw
	}
	if w.Dimension == 0 {
		w.Dimension = len(w.Sizes)
	}
	if w.Endian == EndianUnset && w.Type.NeedsEndian() && w.Encoding != EncodingASCII {
		w.Endian = nativeEndian()
	}
	if w.Data != nil && w.Type.Size() > 0 && w.Data.Type() != w.Type {
		s, err := ConvertSamples(w.Data, w.Type)
		if err != nil {
			return nil, err
		}
		w.Data = s
	}
	return &w, nil
}

func nativeEndian() Endian {
	if binio.NativeEndian == binary.BigEndian {
		return EndianBig
	}
	return EndianLittle
}

// String returns a short summary of the document layout.
func (d *Document) String() string {
	s := "nrrd{" + string(d.Type) + " " + string(d.Encoding)
	for i, n := range d.Sizes {
		if i == 0 {
			s += " "
		} else {
			s += "x"
		}
		s += strconv.Itoa(n)
	}
	return s + "}"
}

// IsMissing reports whether a per-axis float value is the "nan" marker
// for an unknown value.
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}
