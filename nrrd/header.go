package nrrd

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Magic is the prefix of every NRRD file. It is followed by a four digit
// version number.
const Magic = "NRRD"

// attribution is the comment written after the magic line.
const attribution = "# Complete NRRD file format specification at:\n# http://teem.sourceforge.net/nrrd/format.html\n"

// splitHeader separates the header text from the payload at the first
// blank line ("\n\n" or "\n\r\n") at or after offset 2. dataOffset is the
// offset of the payload in b, or -1 if there is no blank line.
func splitHeader(b []byte) (header, data []byte, dataOffset int) {
	for i := 2; i < len(b); i++ {
		if b[i] != '\n' {
			continue
		}
		if i+1 < len(b) && b[i+1] == '\n' {
			return b[:i], b[i+2:], i + 2
		}
		if i+2 < len(b) && b[i+1] == '\r' && b[i+2] == '\n' {
			return b[:i], b[i+3:], i + 3
		}
	}
	return b, nil, -1
}

// headerLine is a retained (non-blank, non-comment) header line.
type headerLine struct {
	num  int
	text string
}

// splitLines breaks header text on "\n" or "\r\n" and drops blank and
// comment lines.
func splitLines(header []byte) []headerLine {
	raw := strings.Split(string(header), "\n")
	lines := make([]headerLine, 0, len(raw))
	for i, l := range raw {
		l = strings.TrimSuffix(l, "\r")
		if l == "" || l[0] == '#' {
			continue
		}
		lines = append(lines, headerLine{num: i + 1, text: l})
	}
	return lines
}

// parseMagic validates a magic line and returns its version.
func parseMagic(line string) (int, error) {
	if len(line) != len(Magic)+4 || !strings.HasPrefix(line, Magic) {
		return 0, &FormatError{Line: 1, Offset: 0, Detail: fmt.Sprintf("bad magic line %q", truncate(line, 16)), Err: ErrMagicMismatch}
	}
	digits := line[len(Magic):]
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return 0, &FormatError{Line: 1, Offset: 0, Detail: fmt.Sprintf("bad magic line %q", line), Err: ErrMagicMismatch}
		}
	}
	v, _ := strconv.Atoi(digits)
	return v, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// lineKind classifies a header line after the magic.
type lineKind uint8

const (
	lineInvalid lineKind = iota
	lineField
	lineKeyValue
)

// classifyLine splits "<name>: <value>" or "<key>:=<value>". The name may
// not contain a colon.
func classifyLine(s string) (kind lineKind, name, value string) {
	i := strings.IndexByte(s, ':')
	if i < 0 {
		return lineInvalid, "", ""
	}
	rest := s[i+1:]
	switch {
	case strings.HasPrefix(rest, "="):
		return lineKeyValue, s[:i], rest[1:]
	case strings.HasPrefix(rest, " "):
		return lineField, s[:i], rest[1:]
	default:
		return lineInvalid, "", ""
	}
}

// parseHeader fills d from the header text. The magic line must be the
// first retained line.
func parseHeader(d *Document, header []byte, diag *diagnostics) error {
	lines := splitLines(header)
	if len(lines) == 0 {
		return &FormatError{Line: 1, Offset: 0, Detail: "empty header", Err: ErrMagicMismatch}
	}
	version, err := parseMagic(lines[0].text)
	if err != nil {
		if fe, ok := err.(*FormatError); ok {
			fe.Line = lines[0].num
		}
		return err
	}
	d.Version = version
	if version > MaxVersion {
		if err := diag.warn(lines[0].num, "", "format version %d is newer than %d; reading anyway", version, MaxVersion); err != nil {
			return err
		}
	}

	seen := make(map[string]bool)
	for i := 1; i < len(lines); i++ {
		ln := lines[i]
		kind, name, value := classifyLine(ln.text)
		switch kind {
		case lineKeyValue:
			if d.Keys == nil {
				d.Keys = make(map[string]string)
			}
			d.Keys[unescapeValue(name)] = unescapeValue(value)
			continue
		case lineInvalid:
			if err := diag.warn(ln.num, "", "ignoring unparseable line %q", truncate(ln.text, 40)); err != nil {
				return err
			}
			continue
		}

		f, ok := lookupField(name)
		if !ok {
			if err := diag.warn(ln.num, name, "unrecognized field"); err != nil {
				return err
			}
			continue
		}
		if seen[f.ID()] {
			if err := diag.warn(ln.num, f.ID(), "field repeated; using last value"); err != nil {
				return err
			}
		}
		seen[f.ID()] = true

		warn := func(format string, args ...any) error {
			return diag.warn(ln.num, f.ID(), format, args...)
		}
		if err := f.decode(d, value, warn); err != nil {
			return atLine(err, ln.num, f.ID())
		}

		if f.ID() == FieldNameEncoding && !d.Encoding.IsSupported() {
			if _, known := encodingAliases[string(d.Encoding)]; known {
				if err := warn("encoding %q is recognized but cannot be decoded", d.Encoding); err != nil {
					return err
				}
			}
		}

		if f.ID() == FieldNameDataFile && d.DataFile.IsList() {
			for _, rest := range lines[i+1:] {
				d.DataFile.Files = append(d.DataFile.Files, rest.text)
			}
			break
		}
	}
	return nil
}

// renderHeader writes the header of a normalized, validated document.
// Fields follow registry order; key/value pairs are sorted by key; a
// data file, if any, comes last. The blank line separating inline data
// is not included.
func renderHeader(d *Document, version int, comments []string) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "%s%04d\n", Magic, version)
	b.WriteString(attribution)
	for _, c := range comments {
		for _, l := range strings.Split(c, "\n") {
			b.WriteString("# ")
			b.WriteString(l)
			b.WriteByte('\n')
		}
	}

	for _, f := range fields {
		switch f.ID() {
		case FieldNameDataFile:
			continue
		case FieldNameSpaceDimension:
			// Implied by a recognized space.
			if d.Space.Dimension() > 0 {
				continue
			}
		case FieldNameLineSkip, FieldNameByteSkip:
			if d.DataFile == nil {
				continue
			}
		}
		if !f.present(d) {
			continue
		}
		b.WriteString(f.Wire())
		b.WriteString(": ")
		b.WriteString(f.encode(d))
		b.WriteByte('\n')
	}

	keys := make([]string, 0, len(d.Keys))
	for k := range d.Keys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString(escapeValue(k))
		b.WriteString(":=")
		b.WriteString(escapeValue(d.Keys[k]))
		b.WriteByte('\n')
	}

	if d.DataFile != nil {
		f, _ := lookupField(FieldNameDataFile)
		b.WriteString(f.Wire())
		b.WriteString(": ")
		b.WriteString(f.encode(d))
		b.WriteByte('\n')
		for _, name := range d.DataFile.Files {
			b.WriteString(name)
			b.WriteByte('\n')
		}
	}
	return b.Bytes()
}
