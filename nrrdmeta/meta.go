// Package nrrdmeta provides typed accessors for well-known NRRD key/value
// annotations.
//
// NRRD stores free-form metadata as "key:=value" lines. A few keys have a
// conventional meaning, most notably the diffusion-weighted MRI keys
// written by scanners and DTI tools. All functions operate on
// *nrrd.Document and read or write Document.Keys.
//
// Example usage:
//
//	d := &nrrd.Document{Sizes: []int{64, 64, 30, 7}, Data: samples}
//	nrrdmeta.SetModality(d, nrrdmeta.ModalityDWMRI)
//	nrrdmeta.SetBValue(d, 1000)
//	nrrdmeta.SetGradients(d, gradients)
package nrrdmeta

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mrjoshuak/go-nrrd/nrrd"
)

// Well-known keys.
const (
	KeyModality = "modality"
	KeyBValue   = "DWMRI_b-value"

	// KeyGradientFormat and KeyNEXFormat are formatted with the
	// zero-based gradient index.
	KeyGradientFormat = "DWMRI_gradient_%04d"
	KeyNEXFormat      = "DWMRI_NEX_%04d"
)

// ModalityDWMRI marks a diffusion-weighted MRI volume.
const ModalityDWMRI = "DWMRI"

// ===========================================
// Generic Keys
// ===========================================

// GetString returns the value for key and whether it is set.
func GetString(d *nrrd.Document, key string) (string, bool) {
	if d.Keys == nil {
		return "", false
	}
	v, ok := d.Keys[key]
	return v, ok
}

// SetString sets key to value.
func SetString(d *nrrd.Document, key, value string) {
	if d.Keys == nil {
		d.Keys = make(map[string]string)
	}
	d.Keys[key] = value
}

// Delete removes key.
func Delete(d *nrrd.Document, key string) {
	delete(d.Keys, key)
}

// GetFloat returns the value for key parsed as a float.
// Returns 0 and false if the key is not set or is not a number.
func GetFloat(d *nrrd.Document, key string) (float64, bool) {
	s, ok := GetString(d, key)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// SetFloat sets key to the shortest decimal form of v.
func SetFloat(d *nrrd.Document, key string, v float64) {
	SetString(d, key, strconv.FormatFloat(v, 'g', -1, 64))
}

// GetFloats returns the value for key parsed as a blank-separated list of
// floats. Returns nil if the key is not set or any element is not a
// number.
func GetFloats(d *nrrd.Document, key string) []float64 {
	s, ok := GetString(d, key)
	if !ok {
		return nil
	}
	fields := strings.Fields(s)
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil
		}
		out[i] = v
	}
	return out
}

// SetFloats sets key to the values separated by single blanks.
func SetFloats(d *nrrd.Document, key string, v []float64) {
	parts := make([]string, len(v))
	for i, f := range v {
		parts[i] = strconv.FormatFloat(f, 'g', -1, 64)
	}
	SetString(d, key, strings.Join(parts, " "))
}

// ===========================================
// Diffusion-weighted MRI
// ===========================================

// SetModality sets the acquisition modality, e.g. ModalityDWMRI.
func SetModality(d *nrrd.Document, modality string) {
	SetString(d, KeyModality, modality)
}

// Modality returns the acquisition modality, or empty string if not set.
func Modality(d *nrrd.Document) string {
	s, _ := GetString(d, KeyModality)
	return s
}

// IsDWMRI reports whether the document is tagged as a diffusion-weighted
// MRI volume.
func IsDWMRI(d *nrrd.Document) bool {
	return Modality(d) == ModalityDWMRI
}

// SetBValue sets the reference b-value in s/mm².
func SetBValue(d *nrrd.Document, b float64) {
	SetFloat(d, KeyBValue, b)
}

// BValue returns the reference b-value.
// Returns 0 and false if not set.
func BValue(d *nrrd.Document) (float64, bool) {
	return GetFloat(d, KeyBValue)
}

// GradientKey returns the key holding gradient i.
func GradientKey(i int) string {
	return fmt.Sprintf(KeyGradientFormat, i)
}

// SetGradients stores one gradient direction per key, replacing any
// gradients already present.
func SetGradients(d *nrrd.Document, gradients []nrrd.Vector) {
	for i := 0; ; i++ {
		if _, ok := GetString(d, GradientKey(i)); !ok {
			break
		}
		Delete(d, GradientKey(i))
	}
	for i, g := range gradients {
		SetFloats(d, GradientKey(i), g)
	}
}

// Gradient returns gradient i, or nil if it is not set or malformed.
func Gradient(d *nrrd.Document, i int) nrrd.Vector {
	v := GetFloats(d, GradientKey(i))
	if len(v) != 3 {
		return nil
	}
	return nrrd.Vector(v)
}

// Gradients returns the gradient directions stored under consecutive
// indices starting at 0. A NEX key repeats the preceding gradient: with
// DWMRI_NEX_0002:=3, gradient 2 is also used for indices 3 and 4. The
// repeats never extend past the largest axis of d, and NEX keys are
// ignored when d has no sizes.
func Gradients(d *nrrd.Document) []nrrd.Vector {
	volumes := 0
	for _, s := range d.Sizes {
		volumes = max(volumes, s)
	}
	var out []nrrd.Vector
	for i := 0; ; {
		g := Gradient(d, i)
		if g == nil {
			return out
		}
		n := 1
		if v, ok := GetFloat(d, fmt.Sprintf(KeyNEXFormat, i)); ok && v > 1 && volumes > 0 {
			n = int(min(v, float64(max(volumes-len(out), 1))))
		}
		for j := 0; j < n; j++ {
			out = append(out, g)
		}
		i += n
	}
}

// EffectiveBValues returns the b-value applied with each gradient. Scanners
// encode lower b-values by shortening the gradient, so each value is the
// reference b-value scaled by the squared gradient length. Returns nil if
// the b-value is not set.
func EffectiveBValues(d *nrrd.Document) []float64 {
	b, ok := BValue(d)
	if !ok {
		return nil
	}
	gradients := Gradients(d)
	out := make([]float64, len(gradients))
	for i, g := range gradients {
		var sq float64
		for _, c := range g {
			sq += c * c
		}
		out[i] = b * sq
	}
	return out
}

// Normalize returns g scaled to unit length. The zero vector is returned
// unchanged.
func Normalize(g nrrd.Vector) nrrd.Vector {
	var sq float64
	for _, c := range g {
		sq += c * c
	}
	if sq == 0 {
		return g
	}
	n := math.Sqrt(sq)
	out := make(nrrd.Vector, len(g))
	for i, c := range g {
		out[i] = c / n
	}
	return out
}
