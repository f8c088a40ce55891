package nrrd

import (
	"math"
	"strings"
)

// maxBytes bounds the payload size so that byte counts never overflow.
const maxBytes = math.MaxInt >> 1

// Validate checks the structural invariants of d: required fields,
// per-axis and per-space-axis list lengths, the conditional endian and
// block size requirements, and the payload source. It does not modify d.
func (d *Document) Validate() error {
	diag := &diagnostics{opts: defaultOptions()}
	return d.validate(diag)
}

func (d *Document) validate(diag *diagnostics) error {
	if err := d.validateHeader(diag); err != nil {
		return err
	}
	return d.validatePayload()
}

// validateHeader checks everything except the payload. Parse runs it
// before decoding because the data codec relies on these invariants.
func (d *Document) validateHeader(diag *diagnostics) error {
	if err := d.checkRequired(); err != nil {
		return err
	}
	if err := d.checkCardinality(); err != nil {
		return err
	}
	if err := d.checkText(); err != nil {
		return err
	}
	if err := d.checkDataFile(); err != nil {
		return err
	}
	return d.checkConditional(diag)
}

func (d *Document) checkRequired() error {
	switch {
	case d.Dimension == 0:
		return fieldError(ErrMissingField, FieldNameDimension, "required")
	case d.Type == TypeUnknown:
		return fieldError(ErrMissingField, FieldNameType, "required")
	case d.Encoding == "":
		return fieldError(ErrMissingField, FieldNameEncoding, "required")
	case d.Sizes == nil:
		return fieldError(ErrMissingField, FieldNameSizes, "required")
	}
	if d.Dimension < 0 {
		return fieldError(ErrMalformedValue, FieldNameDimension, "%d is not a valid dimension", d.Dimension)
	}
	return nil
}

func (d *Document) checkCardinality() error {
	n := 1
	for i, s := range d.Sizes {
		if s <= 0 {
			return fieldError(ErrMalformedValue, FieldNameSizes, "size %d of axis %d is not positive", s, i)
		}
		if n > maxBytes/8/s {
			return fieldError(ErrMalformedValue, FieldNameSizes, "element count is too large")
		}
		n *= s
	}
	if d.Type == TypeBlock && d.BlockSize > 0 && n > maxBytes/d.BlockSize {
		return fieldError(ErrMalformedValue, FieldNameBlockSize, "payload size is too large")
	}

	spaceDim, err := d.spaceDimension()
	if err != nil {
		return err
	}

	for _, f := range fields {
		if f.Cardinality() == CardinalityFixed || !f.present(d) {
			continue
		}
		want := d.Dimension
		if f.Cardinality() == CardinalitySpaceDimension {
			if spaceDim == 0 {
				return fieldError(ErrMissingField, FieldNameSpaceDimension, "%s requires space or space dimension", f.ID())
			}
			want = spaceDim
		}
		if n := f.count(d); n != want {
			return fieldError(ErrCardinalityMismatch, f.ID(), "has %d elements, want %d", n, want)
		}
		for i, n := range f.elementLens(d) {
			if n < 0 {
				if f.ID() == FieldNameMeasurementFrame {
					return fieldError(ErrMalformedValue, f.ID(), "vector %d is none", i)
				}
				continue
			}
			if spaceDim == 0 {
				return fieldError(ErrMissingField, FieldNameSpaceDimension, "%s requires space or space dimension", f.ID())
			}
			if n != spaceDim {
				return fieldError(ErrCardinalityMismatch, f.ID(), "vector %d has %d components, want %d", i, n, spaceDim)
			}
		}
	}
	return nil
}

// checkText rejects values that cannot be written on a single header
// line, and keys that would be read back as a different key.
func (d *Document) checkText() error {
	for _, f := range fields {
		if f.present(d) && strings.ContainsAny(f.encode(d), "\r\n") {
			return fieldError(ErrMalformedValue, f.ID(), "value contains a line break")
		}
	}
	if d.DataFile != nil {
		for i, name := range d.DataFile.Files {
			if name == "" || strings.ContainsAny(name, "\r\n") || name[0] == '#' {
				return fieldError(ErrMalformedValue, FieldNameDataFile, "file %d: %q cannot be listed", i, name)
			}
		}
	}
	for k, v := range d.Keys {
		switch {
		case k == "" || k[0] == '#' || strings.ContainsRune(k, ':'):
			return fieldError(ErrMalformedValue, FieldNameKeys, "key %q", k)
		case strings.ContainsRune(k, '\r') || strings.ContainsRune(v, '\r'):
			return fieldError(ErrMalformedValue, FieldNameKeys, "key %q: carriage return", k)
		}
	}
	return nil
}

// checkDataFile requires the detached data descriptor to use exactly one
// form, in a way that reads back as the same form, and to name no more
// files than there are samples.
func (d *Document) checkDataFile() error {
	df := d.DataFile
	if df == nil {
		return nil
	}
	forms := 0
	if df.Name != "" {
		forms++
	}
	if df.IsPattern() {
		forms++
	}
	if df.IsList() {
		forms++
	}
	if forms != 1 {
		return fieldError(ErrMalformedValue, FieldNameDataFile, "exactly one of a name, a pattern or a list is required")
	}
	if df.SubDim < 0 || df.SubDim > d.Dimension {
		return fieldError(ErrMalformedValue, FieldNameDataFile, "sub-dimension %d out of range", df.SubDim)
	}

	switch {
	case df.IsPattern():
		if df.Step == 0 {
			return fieldError(ErrMalformedValue, FieldNameDataFile, "step must be non-zero")
		}
		if df.Format != strings.TrimSpace(df.Format) {
			return fieldError(ErrMalformedValue, FieldNameDataFile, "format %q has surrounding blanks", df.Format)
		}
	case !df.IsList():
		name := df.Name
		if name != strings.TrimSpace(name) || dataFileList.MatchString(name) || dataFilePattern.MatchString(name) {
			return fieldError(ErrMalformedValue, FieldNameDataFile, "name %q would be read as another form", name)
		}
	}

	if n := df.Count(); n > d.ElementCount() {
		return fieldError(ErrCardinalityMismatch, FieldNameDataFile, "%d data files for %d samples", n, d.ElementCount())
	}
	return nil
}

// spaceDimension reconciles the explicit space dimension with the one
// implied by space.
func (d *Document) spaceDimension() (int, error) {
	implied := d.Space.Dimension()
	switch {
	case d.SpaceDimension < 0:
		return 0, fieldError(ErrMalformedValue, FieldNameSpaceDimension, "%d is not a valid dimension", d.SpaceDimension)
	case d.SpaceDimension > 0 && implied > 0 && d.SpaceDimension != implied:
		return 0, fieldError(ErrCardinalityMismatch, FieldNameSpaceDimension, "is %d but space %q implies %d", d.SpaceDimension, string(d.Space), implied)
	case d.SpaceDimension > 0:
		return d.SpaceDimension, nil
	default:
		return implied, nil
	}
}

func (d *Document) checkConditional(diag *diagnostics) error {
	needEndian := d.Type.NeedsEndian() && d.Encoding != EncodingASCII
	switch {
	case needEndian && d.Endian == EndianUnset:
		return fieldError(ErrMissingField, FieldNameEndian, "required for type %s with %s encoding", d.Type, d.Encoding)
	case !needEndian && d.Endian != EndianUnset:
		if err := diag.warn(0, FieldNameEndian, "not needed for type %s with %s encoding", d.Type, d.Encoding); err != nil {
			return err
		}
	}

	switch {
	case d.Type == TypeBlock && d.BlockSize <= 0:
		return fieldError(ErrMissingField, FieldNameBlockSize, "required for block type")
	case d.Type != TypeBlock && d.BlockSize != 0:
		if err := diag.warn(0, FieldNameBlockSize, "ignored for type %s", d.Type); err != nil {
			return err
		}
	}
	return nil
}

// validatePayload checks that exactly one payload source exists and that
// its length agrees with the sizes.
func (d *Document) validatePayload() error {
	sources := 0
	if d.Data != nil {
		sources++
	}
	if d.Buffer != nil {
		sources++
	}
	if d.DataFile != nil {
		sources++
	}
	switch {
	case sources == 0:
		return fieldError(ErrNoPayload, FieldNameData, "no data, buffer or data file")
	case sources > 1:
		return fieldError(ErrConflictingPayload, FieldNameData, "found %d sources", sources)
	}

	n := d.ElementCount()
	switch {
	case d.Data != nil:
		if d.Type == TypeBlock {
			return fieldError(ErrUnsupportedType, FieldNameData, "block data must be supplied as a buffer")
		}
		if err := checkLength(d.Data.Len(), n, "elements"); err != nil {
			return err
		}
	case d.Buffer != nil:
		size := d.ElementSize()
		if size == 0 {
			return nil
		}
		if err := checkLength(len(d.Buffer), n*size, "bytes"); err != nil {
			return err
		}
	}
	return nil
}

func checkLength(have, want int, unit string) error {
	switch {
	case have < want:
		return fieldError(ErrTruncatedData, FieldNameData, "have %d %s, need %d", have, unit, want)
	case have > want:
		return fieldError(ErrCardinalityMismatch, FieldNameData, "have %d %s, sizes describe %d", have, unit, want)
	}
	return nil
}
