package nrrd

import (
	"errors"
	"math"
	"testing"
)

func validDocument() *Document {
	return &Document{
		Dimension: 2,
		Type:      TypeUint16,
		Encoding:  EncodingRaw,
		Endian:    EndianLittle,
		Sizes:     []int{2, 3},
		Data:      Uint16Samples{1, 2, 3, 4, 5, 6},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(d *Document)
		err    error
		field  string
	}{
		{"valid", func(d *Document) {}, nil, ""},
		{"no dimension", func(d *Document) { d.Dimension = 0 }, ErrMissingField, FieldNameDimension},
		{"no type", func(d *Document) { d.Type = TypeUnknown }, ErrMissingField, FieldNameType},
		{"no encoding", func(d *Document) { d.Encoding = "" }, ErrMissingField, FieldNameEncoding},
		{"no sizes", func(d *Document) { d.Sizes = nil }, ErrMissingField, FieldNameSizes},
		{"no endian", func(d *Document) { d.Endian = EndianUnset }, ErrMissingField, FieldNameEndian},
		{"ascii needs no endian", func(d *Document) {
			d.Endian = EndianUnset
			d.Encoding = EncodingASCII
		}, nil, ""},
		{"sizes mismatch", func(d *Document) { d.Sizes = []int{6} }, ErrCardinalityMismatch, FieldNameSizes},
		{"zero size", func(d *Document) { d.Sizes = []int{0, 3} }, ErrMalformedValue, FieldNameSizes},
		{"spacings mismatch", func(d *Document) { d.Spacings = []float64{1} }, ErrCardinalityMismatch, FieldNameSpacings},
		{"labels mismatch", func(d *Document) { d.Labels = []string{"a", "b", "c"} }, ErrCardinalityMismatch, FieldNameLabels},
		{"origin without space", func(d *Document) { d.SpaceOrigin = Vector{0, 0, 0} }, ErrMissingField, FieldNameSpaceDimension},
		{"origin wrong length", func(d *Document) {
			d.Space = SpaceLeftPosteriorSuperior
			d.SpaceOrigin = Vector{0, 0}
		}, ErrCardinalityMismatch, FieldNameSpaceOrigin},
		{"direction wrong length", func(d *Document) {
			d.SpaceDimension = 2
			d.SpaceDirections = []Vector{{1, 0}, {0, 1, 0}}
		}, ErrCardinalityMismatch, FieldNameSpaceDirections},
		{"none direction allowed", func(d *Document) {
			d.SpaceDimension = 2
			d.SpaceDirections = []Vector{nil, {0, 1}}
		}, nil, ""},
		{"none in measurement frame", func(d *Document) {
			d.SpaceDimension = 2
			d.MeasurementFrame = []Vector{nil, {0, 1}}
		}, ErrMalformedValue, FieldNameMeasurementFrame},
		{"space dimension conflict", func(d *Document) {
			d.Space = SpaceRightAnteriorSuperiorT
			d.SpaceDimension = 3
		}, ErrCardinalityMismatch, FieldNameSpaceDimension},
		{"block without size", func(d *Document) {
			d.Type = TypeBlock
			d.Data = nil
			d.Buffer = make([]byte, 6)
		}, ErrMissingField, FieldNameBlockSize},
		{"block as samples", func(d *Document) {
			d.Type = TypeBlock
			d.BlockSize = 2
		}, ErrUnsupportedType, FieldNameData},
		{"no payload", func(d *Document) { d.Data = nil }, ErrNoPayload, FieldNameData},
		{"two payloads", func(d *Document) { d.Buffer = make([]byte, 12) }, ErrConflictingPayload, FieldNameData},
		{"short data", func(d *Document) { d.Data = Uint16Samples{1} }, ErrTruncatedData, FieldNameData},
		{"long data", func(d *Document) { d.Data = make(Uint16Samples, 7) }, ErrCardinalityMismatch, FieldNameData},
		{"short buffer", func(d *Document) {
			d.Data = nil
			d.Buffer = make([]byte, 11)
		}, ErrTruncatedData, FieldNameData},
		{"data file", func(d *Document) {
			d.Data = nil
			d.DataFile = &DataFile{Name: "x.raw"}
		}, nil, ""},
		{"content with newline", func(d *Document) { d.Content = "a\nb" }, ErrMalformedValue, FieldNameContent},
		{"key with colon", func(d *Document) { d.Keys = map[string]string{"a:b": "c"} }, ErrMalformedValue, FieldNameKeys},
		{"key read as comment", func(d *Document) { d.Keys = map[string]string{"#note": "x"} }, ErrMalformedValue, FieldNameKeys},
		{"value with carriage return", func(d *Document) { d.Keys = map[string]string{"k": "v\r"} }, ErrMalformedValue, FieldNameKeys},
		{"key with carriage return", func(d *Document) { d.Keys = map[string]string{"k\r": "v"} }, ErrMalformedValue, FieldNameKeys},
		{"key with escaped newline", func(d *Document) { d.Keys = map[string]string{"k": "a\nb"} }, nil, ""},
		{"empty data file", withDataFile(&DataFile{}), ErrMalformedValue, FieldNameDataFile},
		{"name and list", withDataFile(&DataFile{Name: "x.raw", Files: []string{"y.raw"}}), ErrMalformedValue, FieldNameDataFile},
		{"zero step", withDataFile(&DataFile{Format: "f%03d.raw", Min: 1, Max: 3}), ErrMalformedValue, FieldNameDataFile},
		{"padded format", withDataFile(&DataFile{Format: " f%d.raw", Min: 1, Max: 3, Step: 1}), ErrMalformedValue, FieldNameDataFile},
		{"name read as list", withDataFile(&DataFile{Name: "LIST"}), ErrMalformedValue, FieldNameDataFile},
		{"name read as pattern", withDataFile(&DataFile{Name: "f%d 1 2 1"}), ErrMalformedValue, FieldNameDataFile},
		{"padded name", withDataFile(&DataFile{Name: "x.raw "}), ErrMalformedValue, FieldNameDataFile},
		{"sub-dimension too large", withDataFile(&DataFile{Files: []string{"a"}, SubDim: 3}), ErrMalformedValue, FieldNameDataFile},
		{"too many files", withDataFile(&DataFile{Format: "f%d.raw", Min: 0, Max: 1000000000000, Step: 1}),
			ErrCardinalityMismatch, FieldNameDataFile},
		{"too many listed files", withDataFile(&DataFile{Files: []string{"a", "b", "c", "d", "e", "f", "g"}}),
			ErrCardinalityMismatch, FieldNameDataFile},
		{"pattern near max int", withDataFile(&DataFile{Format: "f%d.raw", Min: math.MaxInt - 1, Max: math.MaxInt, Step: 2}), nil, ""},
		{"descending pattern", withDataFile(&DataFile{Format: "f%d.raw", Min: 5, Max: 0, Step: -1}), nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDocument()
			tt.modify(d)
			err := d.Validate()
			if tt.err == nil {
				if err != nil {
					t.Fatalf("Validate() error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.err) {
				t.Fatalf("Validate() error = %v, want %v", err, tt.err)
			}
			var fe *FormatError
			if !errors.As(err, &fe) {
				t.Fatalf("Validate() error %T is not a *FormatError", err)
			}
			if fe.Field != tt.field {
				t.Errorf("Field = %q, want %q", fe.Field, tt.field)
			}
		})
	}
}

func withDataFile(df *DataFile) func(*Document) {
	return func(d *Document) {
		d.Data = nil
		d.DataFile = df
	}
}

func TestDataFileRoundTrip(t *testing.T) {
	descriptors := []*DataFile{
		{Name: "vol.raw"},
		{Name: "dir with blanks/vol.raw"},
		{Format: "slice %03d.raw", Min: 1, Max: 6, Step: 1, SubDim: 1},
		{Format: "f%d.raw", Min: 5, Max: 0, Step: -1},
		{Files: []string{"a.raw", "b.raw", "c.raw"}, SubDim: 1},
	}
	for _, df := range descriptors {
		d := validDocument()
		withDataFile(df)(d)
		out, _, err := Serialize(d)
		if err != nil {
			t.Fatalf("Serialize(%+v) error: %v", df, err)
		}
		back, _, err := Parse(out)
		if err != nil {
			t.Fatalf("Parse of %q error: %v", out, err)
		}
		if got := back.DataFile; got.Name != df.Name || got.Format != df.Format || got.Min != df.Min ||
			got.Max != df.Max || got.Step != df.Step || got.SubDim != df.SubDim || len(got.Files) != len(df.Files) {
			t.Errorf("DataFile = %+v, want %+v", got, df)
		}
	}
}

func TestDataFileCount(t *testing.T) {
	tests := []struct {
		df   DataFile
		want int
	}{
		{DataFile{Name: "x"}, 1},
		{DataFile{Files: []string{}}, 0},
		{DataFile{Files: []string{"a", "b"}}, 2},
		{DataFile{Format: "f", Min: 1, Max: 5, Step: 2}, 3},
		{DataFile{Format: "f", Min: 1, Max: 6, Step: 2}, 3},
		{DataFile{Format: "f", Min: 2, Max: 0, Step: -1}, 3},
		{DataFile{Format: "f", Min: 3, Max: 1, Step: 1}, 0},
		{DataFile{Format: "f", Min: 1, Max: 3}, 0},
		{DataFile{Format: "f", Min: math.MaxInt - 1, Max: math.MaxInt, Step: 2}, 1},
		{DataFile{Format: "f", Min: math.MinInt, Max: math.MaxInt, Step: 1}, math.MaxInt},
		{DataFile{Format: "f", Min: math.MaxInt, Max: math.MinInt, Step: math.MinInt}, 2},
	}
	for _, tt := range tests {
		if got := tt.df.Count(); got != tt.want {
			t.Errorf("%+v.Count() = %d, want %d", tt.df, got, tt.want)
		}
	}
}

func TestValidateIdempotent(t *testing.T) {
	d := validDocument()
	d.Spacings = []float64{1, 2}
	before := *d
	for i := 0; i < 2; i++ {
		if err := d.Validate(); err != nil {
			t.Fatalf("Validate() #%d error: %v", i, err)
		}
	}
	if d.Dimension != before.Dimension || d.Endian != before.Endian || len(d.Spacings) != 2 {
		t.Error("Validate() modified the document")
	}

	d.Sizes = []int{2}
	first, second := d.Validate(), d.Validate()
	if !errors.Is(first, ErrCardinalityMismatch) || first.Error() != second.Error() {
		t.Errorf("Validate() = %v then %v, want the same cardinality mismatch", first, second)
	}
}

func TestValidateStrictWarnings(t *testing.T) {
	d := validDocument()
	d.BlockSize = 4

	diag := &diagnostics{opts: defaultOptions()}
	if err := d.validate(diag); err != nil {
		t.Fatalf("validate error: %v", err)
	}
	if len(diag.warnings) != 1 || diag.warnings[0].Field != FieldNameBlockSize {
		t.Errorf("warnings = %v, want one block size warning", diag.warnings)
	}

	o := defaultOptions()
	WithStrict()(o)
	if err := d.validate(&diagnostics{opts: o}); !errors.Is(err, ErrMalformedValue) {
		t.Errorf("strict validate error = %v, want ErrMalformedValue", err)
	}
}
