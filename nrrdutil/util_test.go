package nrrdutil

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrjoshuak/go-nrrd/nrrd"
)

func writeTestFile(t *testing.T, dir, name string, d *nrrd.Document) string {
	t.Helper()
	path := filepath.Join(dir, name)
	_, err := WriteFile(path, d)
	require.NoError(t, err)
	return path
}

func volume() *nrrd.Document {
	return &nrrd.Document{
		Type:     nrrd.TypeInt16,
		Endian:   nrrd.EndianLittle,
		Sizes:    []int{3, 2},
		Kinds:    []nrrd.Kind{nrrd.KindSpace, nrrd.KindNone},
		Space:    nrrd.SpaceRightAnteriorSuperior,
		Content:  "test volume",
		Keys:     map[string]string{"modality": "CT"},
		Data:     nrrd.Int16Samples{0, 1, 2, 10, 11, 12},
		Encoding: nrrd.EncodingRaw,
	}
}

func TestReadWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "vol.nrrd", volume())

	d, warnings, err := ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, nrrd.Int16Samples{0, 1, 2, 10, 11, 12}, d.Data)
	assert.Equal(t, "test volume", d.Content)

	st, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), st.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file left behind")
}

func TestWriteFileInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.nrrd")

	_, err := WriteFile(path, &nrrd.Document{Type: nrrd.TypeUint8, Sizes: []int{2}})
	assert.ErrorIs(t, err, nrrd.ErrNoPayload)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestReadFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, _, err := ReadFile(filepath.Join(dir, "missing.nrrd"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(dir, "junk.nrrd")
	require.NoError(t, os.WriteFile(path, []byte("P6\n1 1\n255\n\x00\x00\x00"), 0o644))
	_, _, err = ReadFile(path)
	assert.ErrorIs(t, err, nrrd.ErrMagicMismatch)
	assert.Contains(t, err.Error(), "junk.nrrd")
}

func TestDataFiles(t *testing.T) {
	tests := []struct {
		name string
		df   *nrrd.DataFile
		sizes []int
		want  []string
	}{
		{"inline", nil, nil, nil},
		{"single", &nrrd.DataFile{Name: "vol.raw"}, nil, []string{"hdr/vol.raw"}},
		{"absolute", &nrrd.DataFile{Name: "/data/vol.raw"}, nil, []string{"/data/vol.raw"}},
		{"pattern", &nrrd.DataFile{Format: "s%02d.raw", Min: 1, Max: 5, Step: 2}, nil,
			[]string{"hdr/s01.raw", "hdr/s03.raw", "hdr/s05.raw"}},
		{"descending", &nrrd.DataFile{Format: "s%d.raw", Min: 2, Max: 0, Step: -1}, nil,
			[]string{"hdr/s2.raw", "hdr/s1.raw", "hdr/s0.raw"}},
		{"near max int", &nrrd.DataFile{Format: "s%d.raw", Min: math.MaxInt - 1, Max: math.MaxInt, Step: 2}, nil,
			[]string{fmt.Sprintf("hdr/s%d.raw", math.MaxInt-1)}},
		{"descending to min int", &nrrd.DataFile{Format: "s%d.raw", Min: math.MinInt + 1, Max: math.MinInt, Step: -1}, nil,
			[]string{fmt.Sprintf("hdr/s%d.raw", math.MinInt+1), fmt.Sprintf("hdr/s%d.raw", math.MinInt)}},
		{"zero step", &nrrd.DataFile{Format: "s%d.raw", Min: 0, Max: 3}, nil, nil},
		{"more files than samples", &nrrd.DataFile{Format: "s%d.raw", Min: 0, Max: 1000000000000, Step: 1}, []int{4}, nil},
		{"list", &nrrd.DataFile{Files: []string{"a.raw", "b.raw"}}, nil, []string{"hdr/a.raw", "hdr/b.raw"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &nrrd.Document{Sizes: tt.sizes, DataFile: tt.df}
			got := DataFiles(d, "hdr")
			var want []string
			for _, w := range tt.want {
				want = append(want, filepath.FromSlash(w))
			}
			assert.Equal(t, want, got)
		})
	}
}

func TestGetFileInfo(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "vol.nrrd", volume())

	info, err := GetFileInfo(path)
	require.NoError(t, err)

	assert.Equal(t, path, info.Path)
	assert.Equal(t, nrrd.DefaultVersion, info.Version)
	assert.Equal(t, "int16", info.Type)
	assert.Equal(t, "raw", info.Encoding)
	assert.Equal(t, "little", info.Endian)
	assert.Equal(t, 2, info.Dimension)
	assert.Equal(t, []int{3, 2}, info.Sizes)
	assert.Equal(t, []string{"space", "???"}, info.Kinds)
	assert.Equal(t, 3, info.SpaceDim)
	assert.Equal(t, 6, info.ElementCount)
	assert.Equal(t, 2, info.ElementSize)
	assert.False(t, info.Detached)
	assert.Equal(t, "CT", info.Keys["modality"])
	assert.Greater(t, info.FileSize, int64(12))
}

func TestValidateFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid", func(t *testing.T) {
		path := writeTestFile(t, dir, "ok.nrrd", volume())
		result, err := ValidateFile(path)
		require.NoError(t, err)
		assert.True(t, result.Valid, result.Errors)
		assert.Empty(t, result.Warnings)
	})

	t.Run("missing", func(t *testing.T) {
		result, err := ValidateFile(filepath.Join(dir, "nope.nrrd"))
		require.NoError(t, err)
		assert.False(t, result.Valid)
		assert.Len(t, result.Errors, 1)
	})

	t.Run("truncated", func(t *testing.T) {
		path := filepath.Join(dir, "short.nrrd")
		body := "NRRD0004\ntype: int32\ndimension: 1\nsizes: 4\nencoding: ascii\n\n1 2 3\n"
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
		result, err := ValidateFile(path)
		require.NoError(t, err)
		assert.False(t, result.Valid)
		require.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0], "insufficient data")
	})

	t.Run("warnings", func(t *testing.T) {
		path := filepath.Join(dir, "warn.nrrd")
		body := "NRRD0004\ntype: uint8\ndimension: 1\nsizes: 1\nencoding: raw\ncolour: red\n\n\x01"
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

		result, err := ValidateFile(path)
		require.NoError(t, err)
		assert.True(t, result.Valid)
		assert.Len(t, result.Warnings, 1)

		result, err = ValidateFile(path, nrrd.WithStrict())
		require.NoError(t, err)
		assert.False(t, result.Valid)
	})

	t.Run("detached", func(t *testing.T) {
		d := &nrrd.Document{
			Type:     nrrd.TypeUint8,
			Encoding: nrrd.EncodingRaw,
			Sizes:    []int{4, 2},
			DataFile: &nrrd.DataFile{Format: "slice%d.raw", Min: 0, Max: 1, Step: 1},
		}
		path := writeTestFile(t, dir, "vol.nhdr", d)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "slice0.raw"), make([]byte, 4), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "slice1.raw"), make([]byte, 3), 0o644))

		result, err := ValidateFile(path)
		require.NoError(t, err)
		assert.False(t, result.Valid)
		require.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0], "slice1.raw")
		assert.Len(t, result.Warnings, 1, "detached payload warning")

		require.NoError(t, os.WriteFile(filepath.Join(dir, "slice1.raw"), make([]byte, 4), 0o644))
		result, err = ValidateFile(path)
		require.NoError(t, err)
		assert.True(t, result.Valid, result.Errors)
	})
}

func TestIndex(t *testing.T) {
	sizes := []int{3, 4, 5}

	idx, err := Index(sizes, 0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	idx, err = Index(sizes, 1, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, idx, "first axis varies fastest")

	idx, err = Index(sizes, 2, 3, 4)
	require.NoError(t, err)
	assert.Equal(t, 59, idx)

	_, err = Index(sizes, 3, 0, 0)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = Index(sizes, 0, 0)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = Index(sizes, 0, -1, 0)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestAt(t *testing.T) {
	d := volume()
	v, err := At(d, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, 12.0, v)

	d.Data = nil
	d.Endian = nrrd.EndianBig
	d.Buffer = []byte{0, 0, 0, 1, 0, 2, 0, 10, 0, 11, 0, 12}
	v, err = At(d, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, 10.0, v)
}

func TestFloat64s(t *testing.T) {
	got, err := Float64s(volume())
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 2, 10, 11, 12}, got)

	src := nrrd.Float64Samples{1.5}
	got, err = Float64s(&nrrd.Document{Sizes: []int{1}, Data: src})
	require.NoError(t, err)
	got[0] = 9
	assert.Equal(t, 1.5, src[0], "Float64s must copy")

	_, err = Float64s(&nrrd.Document{Type: nrrd.TypeBlock, BlockSize: 1, Sizes: []int{1}, Buffer: []byte{0}})
	assert.ErrorIs(t, err, nrrd.ErrUnsupportedType)
}

func TestRange(t *testing.T) {
	d := &nrrd.Document{Sizes: []int{4}, Data: nrrd.Float32Samples{float32(math.NaN()), 3, -1, 2}}
	lo, hi, err := Range(d)
	require.NoError(t, err)
	assert.Equal(t, -1.0, lo)
	assert.Equal(t, 3.0, hi)

	d.Data = nrrd.Float32Samples{float32(math.NaN())}
	d.Sizes = []int{1}
	lo, hi, err = Range(d)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(lo) && math.IsNaN(hi))
}

func TestCompare(t *testing.T) {
	a := volume()

	b := volume()
	b.Encoding = nrrd.EncodingASCII
	b.Endian = nrrd.EndianUnset
	same, diffs, err := Compare(a, b, CompareOptions{})
	require.NoError(t, err)
	assert.True(t, same, diffs)

	b.Data = nrrd.Int16Samples{0, 1, 2, 10, 11, 13}
	same, diffs, err = Compare(a, b, CompareOptions{})
	require.NoError(t, err)
	assert.False(t, same)
	assert.Equal(t, []string{"1 samples differ (max diff: 1)"}, diffs)

	same, _, err = Compare(a, b, CompareOptions{Tolerance: 1})
	require.NoError(t, err)
	assert.True(t, same)

	b.Keys = map[string]string{"modality": "MR", "extra": "x"}
	_, diffs, err = Compare(a, b, CompareOptions{Tolerance: 1})
	require.NoError(t, err)
	assert.Len(t, diffs, 2)

	same, _, err = Compare(a, b, CompareOptions{Tolerance: 1, IgnoreKeys: true})
	require.NoError(t, err)
	assert.True(t, same)

	b.Sizes = []int{6}
	same, diffs, err = Compare(a, b, CompareOptions{})
	require.NoError(t, err)
	assert.False(t, same)
	assert.Len(t, diffs, 1)
}

func TestCompareFiles(t *testing.T) {
	dir := t.TempDir()
	p1 := writeTestFile(t, dir, "a.nrrd", volume())

	ascii := volume()
	ascii.Encoding = nrrd.EncodingASCII
	ascii.Endian = nrrd.EndianUnset
	p2 := writeTestFile(t, dir, "b.nrrd", ascii)

	same, diffs, err := CompareFiles(p1, p2, CompareOptions{})
	require.NoError(t, err)
	assert.True(t, same, diffs)

	_, _, err = CompareFiles(p1, filepath.Join(dir, "missing.nrrd"), CompareOptions{})
	assert.Error(t, err)
}
