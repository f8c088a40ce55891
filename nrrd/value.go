package nrrd

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// parseInt parses a strict decimal integer.
func parseInt(s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: bad integer %q", ErrMalformedValue, s)
	}
	return v, nil
}

func formatInt(v int) string {
	return strconv.Itoa(v)
}

// parseFloat parses a decimal or exponential float, accepting nan, inf
// and -inf in any case.
func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "nan", "+nan", "-nan":
		return math.NaN(), nil
	case "inf", "+inf", "infinity", "+infinity":
		return math.Inf(1), nil
	case "-inf", "-infinity":
		return math.Inf(-1), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad number %q", ErrMalformedValue, s)
	}
	return v, nil
}

// formatFloat writes the shortest representation that parses back to
// the same float64.
func formatFloat(v float64) string {
	return formatFloatBits(v, 64)
}

func formatFloatBits(v float64, bits int) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return strconv.FormatFloat(v, 'g', -1, bits)
}

func appendFloat(dst []byte, v float64, bits int) []byte {
	switch {
	case math.IsNaN(v):
		return append(dst, "nan"...)
	case math.IsInf(v, 1):
		return append(dst, "inf"...)
	case math.IsInf(v, -1):
		return append(dst, "-inf"...)
	}
	return strconv.AppendFloat(dst, v, 'g', -1, bits)
}

// parseQuoted parses a double-quoted string, unescaping \" and \\. Any
// other backslash is kept as written.
func parseQuoted(s string) (string, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return "", fmt.Errorf("%w: expected quoted string, got %q", ErrMalformedValue, s)
	}
	s = s[1 : len(s)-1]
	if !strings.Contains(s, `\`) {
		return s, nil
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && (s[i+1] == '"' || s[i+1] == '\\') {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String(), nil
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func formatQuoted(s string) string {
	return `"` + quoteEscaper.Replace(s) + `"`
}

// parseVector parses "(v1,v2,...)". The literal "none" yields a nil Vector.
func parseVector(s string) (Vector, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "none") {
		return nil, nil
	}
	if len(s) < 2 || s[0] != '(' || s[len(s)-1] != ')' {
		return nil, fmt.Errorf("%w: expected vector, got %q", ErrMalformedValue, s)
	}
	parts := strings.Split(s[1:len(s)-1], ",")
	v := make(Vector, len(parts))
	for i, p := range parts {
		f, err := parseFloat(p)
		if err != nil {
			return nil, fmt.Errorf("%w: bad vector component in %q", ErrMalformedValue, s)
		}
		v[i] = f
	}
	return v, nil
}

func formatVector(v Vector) string {
	if v == nil {
		return "none"
	}
	var b strings.Builder
	b.WriteByte('(')
	for i, f := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(formatFloat(f))
	}
	b.WriteByte(')')
	return b.String()
}

// splitList splits a header list on runs of spaces and tabs. Other
// whitespace is not a separator: header values are single lines.
func splitList(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '\t'
	})
}

// splitVectors tokenizes a list of vectors. A parenthesized group is one
// token even if it contains blanks; bare words such as "none" are split
// like splitList.
func splitVectors(s string) ([]string, error) {
	var tokens []string
	for i := 0; i < len(s); {
		switch c := s[i]; {
		case c == ' ' || c == '\t':
			i++
		case c == '(':
			end := strings.IndexByte(s[i:], ')')
			if end < 0 {
				return nil, fmt.Errorf("%w: unterminated vector in %q", ErrMalformedValue, s)
			}
			tokens = append(tokens, s[i:i+end+1])
			i += end + 1
		default:
			j := i
			for j < len(s) && s[j] != ' ' && s[j] != '\t' {
				j++
			}
			tokens = append(tokens, s[i:j])
			i = j
		}
	}
	return tokens, nil
}

// splitQuoted tokenizes a list of double-quoted strings, honoring \"
// and \\ escapes. Each returned token still carries its quotes.
func splitQuoted(s string) ([]string, error) {
	var tokens []string
	for i := 0; i < len(s); {
		c := s[i]
		if c == ' ' || c == '\t' {
			i++
			continue
		}
		if c != '"' {
			return nil, fmt.Errorf("%w: expected quoted string at %q", ErrMalformedValue, s[i:])
		}
		j := i + 1
		for ; j < len(s); j++ {
			if s[j] == '\\' && j+1 < len(s) && (s[j+1] == '"' || s[j+1] == '\\') {
				j++
				continue
			}
			if s[j] == '"' {
				break
			}
		}
		if j >= len(s) {
			return nil, fmt.Errorf("%w: unterminated string in %q", ErrMalformedValue, s)
		}
		tokens = append(tokens, s[i:j+1])
		i = j + 1
	}
	return tokens, nil
}

// unescapeValue decodes the escapes allowed in key/value pairs.
func unescapeValue(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case '\\':
				b.WriteByte('\\')
				i++
				continue
			case 'n':
				b.WriteByte('\n')
				i++
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

var valueEscaper = strings.NewReplacer(`\`, `\\`, "\n", `\n`)

func escapeValue(s string) string {
	return valueEscaper.Replace(s)
}
