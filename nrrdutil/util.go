// Package nrrdutil provides file-level helpers around the nrrd codec.
//
// The nrrd package works on byte slices only. This package adds the
// operations an application needs on top: reading and writing files,
// locating detached data files, summarizing and validating a file,
// indexing samples and comparing volumes.
//
// Example usage:
//
//	info, _ := nrrdutil.GetFileInfo("brain.nhdr")
//	fmt.Printf("%s %v, %d data file(s)\n", info.Type, info.Sizes, len(info.DataFiles))
//
//	d, _, _ := nrrdutil.ReadFile("brain.nrrd")
//	v, _ := nrrdutil.At(d, 10, 20, 5)
package nrrdutil

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"os"
	"path/filepath"
	"slices"

	"github.com/mrjoshuak/go-nrrd/nrrd"
)

// ===========================================
// File I/O
// ===========================================

// ReadFile reads and parses the NRRD file at path. Detached data files are
// not read; see DataFiles.
func ReadFile(path string, opts ...nrrd.Option) (*nrrd.Document, []nrrd.Warning, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	d, warnings, err := nrrd.Parse(b, opts...)
	if err != nil {
		return nil, warnings, fmt.Errorf("%s: %w", path, err)
	}
	return d, warnings, nil
}

// WriteFile serializes d and writes it to path. The file is written to a
// temporary name in the same directory and renamed into place, so a failed
// write never leaves a partial file behind.
func WriteFile(path string, d *nrrd.Document, opts ...nrrd.Option) ([]nrrd.Warning, error) {
	b, warnings, err := nrrd.Serialize(d, opts...)
	if err != nil {
		return warnings, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".nrrd-*")
	if err != nil {
		return warnings, err
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return warnings, err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return warnings, err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return warnings, err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return warnings, err
	}
	return warnings, nil
}

// DataFiles returns the paths of the detached data files of d, in order.
// Relative names are resolved against dir, the directory of the header
// file. Returns nil if d has an inline payload, or if its sizes are set
// and it names more files than samples.
func DataFiles(d *nrrd.Document, dir string) []string {
	df := d.DataFile
	if df == nil {
		return nil
	}
	n := df.Count()
	if len(d.Sizes) > 0 && n > d.ElementCount() {
		return nil
	}

	var names []string
	switch {
	case df.IsList():
		names = append(names, df.Files...)
	case df.IsPattern():
		i := df.Min
		for k := 0; k < n; k++ {
			names = append(names, fmt.Sprintf(df.Format, i))
			i += df.Step
		}
	default:
		names = []string{df.Name}
	}

	for i, name := range names {
		if !filepath.IsAbs(name) {
			names[i] = filepath.Join(dir, name)
		}
	}
	return names
}

// ===========================================
// File Information
// ===========================================

// FileInfo provides a summary of a NRRD file.
type FileInfo struct {
	Path         string            `yaml:"path,omitempty"`
	Version      int               `yaml:"version"`
	Type         string            `yaml:"type"`
	Encoding     string            `yaml:"encoding"`
	Endian       string            `yaml:"endian,omitempty"`
	Dimension    int               `yaml:"dimension"`
	Sizes        []int             `yaml:"sizes,flow"`
	Kinds        []string          `yaml:"kinds,flow,omitempty"`
	Labels       []string          `yaml:"labels,flow,omitempty"`
	Space        string            `yaml:"space,omitempty"`
	SpaceDim     int               `yaml:"spaceDimension,omitempty"`
	Content      string            `yaml:"content,omitempty"`
	ElementCount int               `yaml:"elements"`
	ElementSize  int               `yaml:"elementSize"`
	Detached     bool              `yaml:"detached"`
	DataFiles    []string          `yaml:"dataFiles,omitempty"`
	Keys         map[string]string `yaml:"keys,omitempty"`
	FileSize     int64             `yaml:"fileSize,omitempty"`
}

// Info summarizes a parsed document. dir resolves detached data files and
// may be empty.
func Info(d *nrrd.Document, dir string) *FileInfo {
	info := &FileInfo{
		Version:      d.Version,
		Type:         string(d.Type),
		Encoding:     string(d.Encoding),
		Endian:       string(d.Endian),
		Dimension:    d.Dimension,
		Sizes:        d.Sizes,
		Labels:       d.Labels,
		Space:        string(d.Space),
		SpaceDim:     d.EffectiveSpaceDimension(),
		Content:      d.Content,
		ElementCount: d.ElementCount(),
		ElementSize:  d.ElementSize(),
		Detached:     d.DataFile != nil,
		DataFiles:    DataFiles(d, dir),
		Keys:         d.Keys,
	}
	for _, k := range d.Kinds {
		if k == nrrd.KindNone {
			info.Kinds = append(info.Kinds, "???")
			continue
		}
		info.Kinds = append(info.Kinds, string(k))
	}
	return info
}

// GetFileInfo returns summary information about a NRRD file.
func GetFileInfo(path string) (*FileInfo, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	d, _, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	info := Info(d, filepath.Dir(path))
	info.Path = path
	info.FileSize = stat.Size()
	return info, nil
}

// ===========================================
// Validation
// ===========================================

// ValidationResult contains the results of file validation.
type ValidationResult struct {
	Valid    bool
	Warnings []string
	Errors   []string
}

// ValidateFile checks that the file at path parses and that its detached
// data files, if any, exist and are large enough. Parse warnings are
// reported as warnings; pass nrrd.WithStrict to make them errors.
//
// The returned error is reserved for failures of the check itself; a
// malformed file yields a result with Valid set to false.
func ValidateFile(path string, opts ...nrrd.Option) (*ValidationResult, error) {
	result := &ValidationResult{Valid: true}

	stat, err := os.Stat(path)
	if err != nil {
		result.fail("cannot access file: %v", err)
		return result, nil
	}
	if stat.Size() < int64(len(nrrd.Magic)+4) {
		result.fail("file too small to be valid NRRD")
		return result, nil
	}

	d, warnings, err := ReadFile(path, opts...)
	for _, w := range warnings {
		result.Warnings = append(result.Warnings, w.String())
	}
	if err != nil {
		result.fail("%v", err)
		return result, nil
	}

	if d.Encoding != "" && !d.Encoding.IsSupported() {
		result.Warnings = append(result.Warnings, fmt.Sprintf("encoding %q cannot be decoded", d.Encoding))
	}

	files := DataFiles(d, filepath.Dir(path))
	if len(files) > 1 && d.DataFile.SubDim == 0 {
		last := d.Sizes[len(d.Sizes)-1]
		if last%len(files) != 0 {
			result.fail("%d data files do not divide the slowest axis of size %d", len(files), last)
		}
	}
	perFile := 0
	if n := len(files); n > 0 && d.Encoding == nrrd.EncodingRaw && d.LineSkip == 0 && d.ByteSkip >= 0 {
		perFile = d.ElementCount() * d.ElementSize() / n
	}
	for _, f := range files {
		st, err := os.Stat(f)
		if err != nil {
			result.fail("data file %s: %v", f, err)
			continue
		}
		if perFile > 0 && st.Size() < int64(perFile+d.ByteSkip) {
			result.fail("data file %s: %d bytes, need %d", f, st.Size(), perFile+d.ByteSkip)
		}
	}

	if d.ElementCount() > 1<<31 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("very large volume: %d elements", d.ElementCount()))
	}
	return result, nil
}

func (r *ValidationResult) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// ===========================================
// Sample Access
// ===========================================

// ErrIndexOutOfRange is returned when coordinates fall outside the sizes.
var ErrIndexOutOfRange = errors.New("nrrdutil: index out of range")

// Index returns the linear sample index of the given per-axis coordinates.
// Samples are stored with the first axis varying fastest.
func Index(sizes []int, coords ...int) (int, error) {
	if len(coords) != len(sizes) {
		return 0, fmt.Errorf("%w: %d coordinates for %d axes", ErrIndexOutOfRange, len(coords), len(sizes))
	}
	idx, stride := 0, 1
	for i, c := range coords {
		if c < 0 || c >= sizes[i] {
			return 0, fmt.Errorf("%w: coordinate %d is %d, size %d", ErrIndexOutOfRange, i, c, sizes[i])
		}
		idx += c * stride
		stride *= sizes[i]
	}
	return idx, nil
}

// At returns the sample at the given coordinates as a float64.
func At(d *nrrd.Document, coords ...int) (float64, error) {
	idx, err := Index(d.Sizes, coords...)
	if err != nil {
		return 0, err
	}
	s, err := d.Samples()
	if err != nil {
		return 0, err
	}
	if idx >= s.Len() {
		return 0, fmt.Errorf("%w: sample %d of %d", ErrIndexOutOfRange, idx, s.Len())
	}
	return s.Float64(idx), nil
}

// Float64s returns every sample of d converted to float64.
func Float64s(d *nrrd.Document) ([]float64, error) {
	s, err := d.Samples()
	if err != nil {
		return nil, err
	}
	if f, ok := s.(nrrd.Float64Samples); ok {
		out := make([]float64, len(f))
		copy(out, f)
		return out, nil
	}
	out := make([]float64, s.Len())
	for i := range out {
		out[i] = s.Float64(i)
	}
	return out, nil
}

// Range returns the smallest and largest non-NaN sample of d. Both are NaN
// if there are no such samples.
func Range(d *nrrd.Document) (lo, hi float64, err error) {
	s, err := d.Samples()
	if err != nil {
		return 0, 0, err
	}
	lo, hi = math.NaN(), math.NaN()
	for i := 0; i < s.Len(); i++ {
		v := s.Float64(i)
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(lo) || v < lo {
			lo = v
		}
		if math.IsNaN(hi) || v > hi {
			hi = v
		}
	}
	return lo, hi, nil
}

// ===========================================
// Comparison
// ===========================================

// CompareOptions configures document comparison behavior.
type CompareOptions struct {
	Tolerance  float64 // Maximum allowed difference for sample values
	IgnoreKeys bool    // If true, key/value pairs are not compared
}

// Compare checks whether two documents describe the same volume.
// Returns true if they match within tolerance, along with any differences
// found. Documents are compared by layout and sample values, not by
// encoding or byte order.
func Compare(a, b *nrrd.Document, opts CompareOptions) (bool, []string, error) {
	var diffs []string

	if !slices.Equal(a.Sizes, b.Sizes) {
		diffs = append(diffs, fmt.Sprintf("sizes differ: %v vs %v", a.Sizes, b.Sizes))
		return false, diffs, nil
	}
	if a.Type != b.Type {
		diffs = append(diffs, fmt.Sprintf("type differs: %s vs %s", a.Type, b.Type))
	}
	if a.Space != b.Space {
		diffs = append(diffs, fmt.Sprintf("space differs: %q vs %q", a.Space, b.Space))
	}

	if !opts.IgnoreKeys {
		for _, k := range slices.Sorted(maps.Keys(a.Keys)) {
			if v, ok := b.Keys[k]; !ok {
				diffs = append(diffs, fmt.Sprintf("key %q only in first", k))
			} else if v != a.Keys[k] {
				diffs = append(diffs, fmt.Sprintf("key %q differs: %q vs %q", k, a.Keys[k], v))
			}
		}
		for _, k := range slices.Sorted(maps.Keys(b.Keys)) {
			if _, ok := a.Keys[k]; !ok {
				diffs = append(diffs, fmt.Sprintf("key %q only in second", k))
			}
		}
	}

	sa, err := a.Samples()
	if err != nil {
		return false, nil, fmt.Errorf("first document: %w", err)
	}
	sb, err := b.Samples()
	if err != nil {
		return false, nil, fmt.Errorf("second document: %w", err)
	}

	maxDiff := 0.0
	diffCount := 0
	for i := 0; i < sa.Len() && i < sb.Len(); i++ {
		va, vb := sa.Float64(i), sb.Float64(i)
		if math.IsNaN(va) && math.IsNaN(vb) {
			continue
		}
		diff := math.Abs(va - vb)
		if math.IsNaN(diff) || diff > opts.Tolerance {
			diffCount++
			if diff > maxDiff || math.IsNaN(diff) {
				maxDiff = diff
			}
		}
	}
	if diffCount > 0 {
		diffs = append(diffs, fmt.Sprintf("%d samples differ (max diff: %g)", diffCount, maxDiff))
	}

	return len(diffs) == 0, diffs, nil
}

// CompareFiles reads two NRRD files and compares them with Compare.
func CompareFiles(path1, path2 string, opts CompareOptions) (bool, []string, error) {
	a, _, err := ReadFile(path1)
	if err != nil {
		return false, nil, err
	}
	b, _, err := ReadFile(path2)
	if err != nil {
		return false, nil, err
	}
	return Compare(a, b, opts)
}
