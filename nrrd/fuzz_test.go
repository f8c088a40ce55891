package nrrd

import (
	"errors"
	"testing"
)

// FuzzParse feeds arbitrary input to Parse. Any input must either fail
// with a classified error or produce a document that serializes.
func FuzzParse(f *testing.F) {
	seeds := []string{
		"NRRD0004\ntype: uint8\ndimension: 1\nsizes: 3\nencoding: raw\n\n\x01\x02\x03",
		"NRRD0004\ntype: int16\ndimension: 2\nsizes: 2 1\nendian: big\nencoding: raw\n\n\x00\x01\x00\x02",
		"NRRD0005\ntype: float\ndimension: 1\nsizes: 2\nencoding: ascii\nspace: RAS\n\n1.5 nan",
		"NRRD0004\ntype: block\nblock size: 2\ndimension: 1\nsizes: 1\nencoding: raw\n\nab",
		"NRRD0004\ntype: uint8\ndimension: 1\nsizes: 2\nencoding: raw\ndata file: LIST\na\nb\n",
		"NRRD0004\ntype: uint8\ndimension: 1\nsizes: 1\nencoding: raw\nbyte skip: -1\nline skip: 1\n\nx\ny\x05",
		"NRRD0004\r\ntype: uint8\r\ndimension: 1\r\nsizes: 1\r\nencoding: ascii\r\nk:=v\\n\r\n\r\n7",
		"NRRD0004\ndimension: 1\nsizes: 4611686018427387904\ntype: double\nencoding: raw\nendian: little\n\n",
		"NRRDzzzz",
	}
	for _, s := range seeds {
		f.Add([]byte(s))
	}

	f.Fuzz(func(t *testing.T, data []byte) {
		d, _, err := Parse(data)
		if err != nil {
			var fe *FormatError
			if !errors.As(err, &fe) && !errors.Is(err, ErrUnsupportedType) {
				t.Fatalf("unclassified error %T: %v", err, err)
			}
			return
		}
		if err := d.Validate(); err != nil {
			t.Fatalf("parsed document does not validate: %v", err)
		}
		if _, _, err := Serialize(d); err != nil && !errors.Is(err, ErrUnsupportedEncoding) &&
			!errors.Is(err, ErrUnsupportedType) && !errors.Is(err, ErrMalformedValue) {
			t.Fatalf("Serialize of parsed document: %v", err)
		}
	})
}
