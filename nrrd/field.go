package nrrd

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// FieldKind classifies the value grammar of a header field.
type FieldKind uint8

const (
	// FieldScalar is a single integer or float.
	FieldScalar FieldKind = iota
	// FieldVector is a parenthesized float vector.
	FieldVector
	// FieldScalarList is a blank-separated list of scalars or strings.
	FieldScalarList
	// FieldVectorList is a blank-separated list of vectors.
	FieldVectorList
	// FieldEnum is a single token from a closed vocabulary.
	FieldEnum
	// FieldLiteral is the rest of the line, kept verbatim.
	FieldLiteral
	// FieldStructured has a field-specific grammar.
	FieldStructured
)

// String returns a string representation of the field kind.
func (k FieldKind) String() string {
	switch k {
	case FieldScalar:
		return "scalar"
	case FieldVector:
		return "vector"
	case FieldScalarList:
		return "scalar-list"
	case FieldVectorList:
		return "vector-list"
	case FieldEnum:
		return "enum"
	case FieldLiteral:
		return "literal"
	case FieldStructured:
		return "structured"
	default:
		return "unknown"
	}
}

// Cardinality constrains the number of elements of a list-valued field.
type Cardinality uint8

const (
	// CardinalityFixed fields are scalars or have no length constraint.
	CardinalityFixed Cardinality = iota
	// CardinalityDimension fields have one element per axis.
	CardinalityDimension
	// CardinalitySpaceDimension fields have one element per space axis.
	CardinalitySpaceDimension
)

// Canonical field identities.
const (
	FieldNameDimension        = "dimension"
	FieldNameSpaceDimension   = "spaceDimension"
	FieldNameSpace            = "space"
	FieldNameType             = "type"
	FieldNameBlockSize        = "blockSize"
	FieldNameEncoding         = "encoding"
	FieldNameEndian           = "endian"
	FieldNameContent          = "content"
	FieldNameNumber           = "number"
	FieldNameSizes            = "sizes"
	FieldNameSpacings         = "spacings"
	FieldNameThicknesses      = "thicknesses"
	FieldNameAxisMins         = "axisMins"
	FieldNameAxisMaxs         = "axisMaxs"
	FieldNameCenters          = "centers"
	FieldNameLabels           = "labels"
	FieldNameUnits            = "units"
	FieldNameKinds            = "kinds"
	FieldNameSpaceUnits       = "spaceUnits"
	FieldNameSpaceOrigin      = "spaceOrigin"
	FieldNameSpaceDirections  = "spaceDirections"
	FieldNameMeasurementFrame = "measurementFrame"
	FieldNameMin              = "min"
	FieldNameMax              = "max"
	FieldNameOldMin           = "oldMin"
	FieldNameOldMax           = "oldMax"
	FieldNameSampleUnits      = "sampleUnits"
	FieldNameLineSkip         = "lineSkip"
	FieldNameByteSkip         = "byteSkip"
	FieldNameDataFile         = "dataFile"
	FieldNameKeys             = "keys"
	FieldNameData             = "data"
)

// warnFunc reports a non-fatal diagnostic for the field being processed.
// It returns an error when warnings are fatal.
type warnFunc func(format string, args ...any) error

// fieldSpec is one entry of the field registry.
type fieldSpec interface {
	// ID is the canonical identity, e.g. "blockSize".
	ID() string
	// Wire is the name written to headers, e.g. "block size".
	Wire() string
	Kind() FieldKind
	Cardinality() Cardinality

	names() []string
	present(d *Document) bool
	decode(d *Document, value string, warn warnFunc) error
	encode(d *Document) string
	// count returns the element count of a list-valued field.
	count(d *Document) int
	// elementLens returns the lengths of nested vectors, or nil.
	elementLens(d *Document) []int
}

// field implements fieldSpec for a Document member of type T.
type field[T any] struct {
	id      string
	wire    string
	aliases []string
	kind    FieldKind
	card    Cardinality

	ref    func(*Document) *T
	parse  func(string, warnFunc) (T, error)
	format func(T) string
	has    func(T) bool
	size   func(T) int
	inner  func(T) []int
}

func (f *field[T]) ID() string               { return f.id }
func (f *field[T]) Wire() string             { return f.wire }
func (f *field[T]) Kind() FieldKind          { return f.kind }
func (f *field[T]) Cardinality() Cardinality { return f.card }

func (f *field[T]) names() []string {
	return append([]string{f.id, f.wire}, f.aliases...)
}

func (f *field[T]) present(d *Document) bool {
	return f.has(*f.ref(d))
}

func (f *field[T]) decode(d *Document, value string, warn warnFunc) error {
	v, err := f.parse(value, warn)
	if err != nil {
		return err
	}
	*f.ref(d) = v
	return nil
}

func (f *field[T]) encode(d *Document) string {
	return f.format(*f.ref(d))
}

func (f *field[T]) count(d *Document) int {
	if f.size == nil {
		return -1
	}
	return f.size(*f.ref(d))
}

func (f *field[T]) elementLens(d *Document) []int {
	if f.inner == nil {
		return nil
	}
	return f.inner(*f.ref(d))
}

func intField(id, wire string, ref func(*Document) *int, aliases ...string) fieldSpec {
	return &field[int]{
		id: id, wire: wire, aliases: aliases,
		kind: FieldScalar,
		ref:  ref,
		parse: func(s string, _ warnFunc) (int, error) {
			return parseInt(s)
		},
		format: formatInt,
		has:    func(v int) bool { return v != 0 },
	}
}

func floatField(id, wire string, ref func(*Document) **float64, aliases ...string) fieldSpec {
	return &field[*float64]{
		id: id, wire: wire, aliases: aliases,
		kind: FieldScalar,
		ref:  ref,
		parse: func(s string, _ warnFunc) (*float64, error) {
			v, err := parseFloat(s)
			if err != nil {
				return nil, err
			}
			return &v, nil
		},
		format: func(v *float64) string { return formatFloat(*v) },
		has:    func(v *float64) bool { return v != nil },
	}
}

func literalField(id, wire string, ref func(*Document) *string, aliases ...string) fieldSpec {
	return &field[string]{
		id: id, wire: wire, aliases: aliases,
		kind: FieldLiteral,
		ref:  ref,
		parse: func(s string, _ warnFunc) (string, error) {
			return s, nil
		},
		format: func(v string) string { return v },
		has:    func(v string) bool { return v != "" },
	}
}

// enumParser resolves a token against aliases. Unknown tokens are kept
// verbatim after a warning.
func enumParser[T ~string](aliases map[string]T) func(string, warnFunc) (T, error) {
	return func(s string, warn warnFunc) (T, error) {
		v, ok := lookupEnum(aliases, s)
		if !ok {
			if err := warn("unrecognized value %q", s); err != nil {
				return v, err
			}
			v = T(strings.TrimSpace(s))
		}
		return v, nil
	}
}

func enumField[T ~string](id, wire string, aliases map[string]T, ref func(*Document) *T) fieldSpec {
	return &field[T]{
		id: id, wire: wire,
		kind:   FieldEnum,
		ref:    ref,
		parse:  enumParser(aliases),
		format: func(v T) string { return string(v) },
		has:    func(v T) bool { return v != "" },
	}
}

func listOf[E any](split func(string) ([]string, error), elem func(string, warnFunc) (E, error)) func(string, warnFunc) ([]E, error) {
	return func(s string, warn warnFunc) ([]E, error) {
		tokens, err := split(s)
		if err != nil {
			return nil, err
		}
		out := make([]E, len(tokens))
		for i, tok := range tokens {
			if out[i], err = elem(tok, warn); err != nil {
				return nil, err
			}
		}
		return out, nil
	}
}

func joinList[E any](elem func(E) string) func([]E) string {
	return func(v []E) string {
		parts := make([]string, len(v))
		for i, e := range v {
			parts[i] = elem(e)
		}
		return strings.Join(parts, " ")
	}
}

func listField[E any](id, wire string, card Cardinality, ref func(*Document) *[]E,
	split func(string) ([]string, error), parse func(string, warnFunc) (E, error), format func(E) string,
	aliases ...string) fieldSpec {
	return &field[[]E]{
		id: id, wire: wire, aliases: aliases,
		kind:   FieldScalarList,
		card:   card,
		ref:    ref,
		parse:  listOf(split, parse),
		format: joinList(format),
		has:    func(v []E) bool { return v != nil },
		size:   func(v []E) int { return len(v) },
	}
}

func splitBlank(s string) ([]string, error) {
	return splitList(s), nil
}

func intElem(s string, _ warnFunc) (int, error)       { return parseInt(s) }
func floatElem(s string, _ warnFunc) (float64, error) { return parseFloat(s) }
func quotedElem(s string, _ warnFunc) (string, error) { return parseQuoted(s) }
func vectorElem(s string, _ warnFunc) (Vector, error) { return parseVector(s) }

func formatCenter(c Center) string {
	if c == CenterNone {
		return "???"
	}
	return string(c)
}

func formatKind(k Kind) string {
	if k == KindNone {
		return "???"
	}
	return string(k)
}

func vectorLens(v []Vector) []int {
	lens := make([]int, len(v))
	for i, e := range v {
		if e == nil {
			lens[i] = -1
			continue
		}
		lens[i] = len(e)
	}
	return lens
}

// dataFilePattern matches "<format> <min> <max> <step> [<subdim>]".
var dataFilePattern = regexp.MustCompile(`^(.*?\S)\s+(-?\d+)\s+(-?\d+)\s+(-?\d+)(?:\s+(\d+))?$`)

// dataFileList matches "LIST [<subdim>]".
var dataFileList = regexp.MustCompile(`^LIST(?:\s+(\d+))?$`)

func parseDataFile(s string, _ warnFunc) (*DataFile, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty data file", ErrMalformedValue)
	}
	if m := dataFileList.FindStringSubmatch(s); m != nil {
		df := &DataFile{Files: []string{}}
		if m[1] != "" {
			var err error
			if df.SubDim, err = parseInt(m[1]); err != nil {
				return nil, err
			}
		}
		return df, nil
	}
	if m := dataFilePattern.FindStringSubmatch(s); m != nil {
		df := &DataFile{Format: m[1]}
		for i, dst := range []*int{&df.Min, &df.Max, &df.Step, &df.SubDim} {
			if m[i+2] == "" {
				continue
			}
			v, err := parseInt(m[i+2])
			if err != nil {
				return nil, err
			}
			*dst = v
		}
		if df.Step == 0 {
			return nil, fmt.Errorf("%w: data file step must be non-zero", ErrMalformedValue)
		}
		return df, nil
	}
	return &DataFile{Name: s}, nil
}

// formatDataFile renders the field value only. List entries follow on
// their own lines and are written by the header codec.
func formatDataFile(df *DataFile) string {
	switch {
	case df.IsList():
		if df.SubDim > 0 {
			return "LIST " + strconv.Itoa(df.SubDim)
		}
		return "LIST"
	case df.IsPattern():
		s := fmt.Sprintf("%s %d %d %d", df.Format, df.Min, df.Max, df.Step)
		if df.SubDim > 0 {
			s += " " + strconv.Itoa(df.SubDim)
		}
		return s
	default:
		return df.Name
	}
}

// fields is the registry, in the order fields are written. dimension,
// spaceDimension and space come first because other fields are
// interpreted relative to them.
var fields = []fieldSpec{
	intField(FieldNameDimension, "dimension", func(d *Document) *int { return &d.Dimension }),
	intField(FieldNameSpaceDimension, "space dimension", func(d *Document) *int { return &d.SpaceDimension }),
	enumField(FieldNameSpace, "space", spaceAliases, func(d *Document) *Space { return &d.Space }),
	enumField(FieldNameType, "type", typeAliases, func(d *Document) *Type { return &d.Type }),
	intField(FieldNameBlockSize, "block size", func(d *Document) *int { return &d.BlockSize }),
	enumField(FieldNameEncoding, "encoding", encodingAliases, func(d *Document) *Encoding { return &d.Encoding }),
	enumField(FieldNameEndian, "endian", endianAliases, func(d *Document) *Endian { return &d.Endian }),
	literalField(FieldNameContent, "content", func(d *Document) *string { return &d.Content }),
	literalField(FieldNameNumber, "number", func(d *Document) *string { return &d.Number }),
	listField(FieldNameSizes, "sizes", CardinalityDimension, func(d *Document) *[]int { return &d.Sizes },
		splitBlank, intElem, formatInt),
	listField(FieldNameSpacings, "spacings", CardinalityDimension, func(d *Document) *[]float64 { return &d.Spacings },
		splitBlank, floatElem, formatFloat),
	listField(FieldNameThicknesses, "thicknesses", CardinalityDimension, func(d *Document) *[]float64 { return &d.Thicknesses },
		splitBlank, floatElem, formatFloat),
	listField(FieldNameAxisMins, "axis mins", CardinalityDimension, func(d *Document) *[]float64 { return &d.AxisMins },
		splitBlank, floatElem, formatFloat),
	listField(FieldNameAxisMaxs, "axis maxs", CardinalityDimension, func(d *Document) *[]float64 { return &d.AxisMaxs },
		splitBlank, floatElem, formatFloat),
	listField(FieldNameCenters, "centers", CardinalityDimension, func(d *Document) *[]Center { return &d.Centers },
		splitBlank, enumParser(centerAliases), formatCenter, "centerings"),
	listField(FieldNameLabels, "labels", CardinalityDimension, func(d *Document) *[]string { return &d.Labels },
		splitQuoted, quotedElem, formatQuoted),
	listField(FieldNameUnits, "units", CardinalityDimension, func(d *Document) *[]string { return &d.Units },
		splitQuoted, quotedElem, formatQuoted),
	listField(FieldNameKinds, "kinds", CardinalityDimension, func(d *Document) *[]Kind { return &d.Kinds },
		splitBlank, enumParser(kindAliases), formatKind),
	listField(FieldNameSpaceUnits, "space units", CardinalitySpaceDimension, func(d *Document) *[]string { return &d.SpaceUnits },
		splitQuoted, quotedElem, formatQuoted),
	&field[Vector]{
		id: FieldNameSpaceOrigin, wire: "space origin",
		kind:   FieldVector,
		card:   CardinalitySpaceDimension,
		ref:    func(d *Document) *Vector { return &d.SpaceOrigin },
		parse:  vectorElem,
		format: formatVector,
		has:    func(v Vector) bool { return v != nil },
		size:   func(v Vector) int { return len(v) },
	},
	&field[[]Vector]{
		id: FieldNameSpaceDirections, wire: "space directions",
		kind:   FieldVectorList,
		card:   CardinalityDimension,
		ref:    func(d *Document) *[]Vector { return &d.SpaceDirections },
		parse:  listOf(splitVectors, vectorElem),
		format: joinList(formatVector),
		has:    func(v []Vector) bool { return v != nil },
		size:   func(v []Vector) int { return len(v) },
		inner:  vectorLens,
	},
	&field[[]Vector]{
		id: FieldNameMeasurementFrame, wire: "measurement frame",
		kind:   FieldVectorList,
		card:   CardinalitySpaceDimension,
		ref:    func(d *Document) *[]Vector { return &d.MeasurementFrame },
		parse:  listOf(splitVectors, vectorElem),
		format: joinList(formatVector),
		has:    func(v []Vector) bool { return v != nil },
		size:   func(v []Vector) int { return len(v) },
		inner:  vectorLens,
	},
	floatField(FieldNameMin, "min", func(d *Document) **float64 { return &d.Min }),
	floatField(FieldNameMax, "max", func(d *Document) **float64 { return &d.Max }),
	floatField(FieldNameOldMin, "old min", func(d *Document) **float64 { return &d.OldMin }),
	floatField(FieldNameOldMax, "old max", func(d *Document) **float64 { return &d.OldMax }),
	literalField(FieldNameSampleUnits, "sample units", func(d *Document) *string { return &d.SampleUnits }),
	intField(FieldNameLineSkip, "line skip", func(d *Document) *int { return &d.LineSkip }),
	intField(FieldNameByteSkip, "byte skip", func(d *Document) *int { return &d.ByteSkip }),
	&field[*DataFile]{
		id: FieldNameDataFile, wire: "data file",
		kind:   FieldStructured,
		ref:    func(d *Document) **DataFile { return &d.DataFile },
		parse:  parseDataFile,
		format: formatDataFile,
		has:    func(v *DataFile) bool { return v != nil },
	},
}

// fieldIndex maps every accepted spelling, lower-cased, to its field.
var fieldIndex = func() map[string]fieldSpec {
	m := make(map[string]fieldSpec)
	for _, f := range fields {
		for _, name := range f.names() {
			lower := strings.ToLower(name)
			m[lower] = f
			m[strings.ReplaceAll(lower, " ", "")] = f
		}
	}
	return m
}()

// lookupField resolves a header field name, case-insensitively and
// ignoring the optional blanks in multi-word names.
func lookupField(name string) (fieldSpec, bool) {
	f, ok := fieldIndex[strings.ToLower(strings.TrimSpace(name))]
	return f, ok
}

// LookupField returns the canonical identity and kind for a header field
// name as it may appear in a file, e.g. "Block Size" -> "blockSize".
func LookupField(name string) (id string, kind FieldKind, ok bool) {
	f, ok := lookupField(name)
	if !ok {
		return "", 0, false
	}
	return f.ID(), f.Kind(), true
}
