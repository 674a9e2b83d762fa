// Package sanitize corrects OCR character confusions in machine-readable
// zone lines before they are sliced into fields.
package sanitize

import (
	"fmt"
	"maps"
	"strings"
)

// FieldContext selects which characters are legal at a position.
type FieldContext int

const (
	// ContextMixed leaves characters as read (document numbers, optional data).
	ContextMixed FieldContext = iota
	// ContextName allows letters and filler. Digits become their look-alike letter or filler.
	ContextName
	// ContextNumeric allows digits and filler. Letters become their look-alike digit.
	ContextNumeric
	// ContextTrailing collapses a trailing run of misread fillers back to filler.
	ContextTrailing
)

func (c FieldContext) String() string {
	switch c {
	case ContextName:
		return "name"
	case ContextNumeric:
		return "numeric"
	case ContextTrailing:
		return "trailing"
	default:
		return "mixed"
	}
}

// Span applies a context to line[Start:Start+Len].
type Span struct {
	Start   int
	Len     int
	Context FieldContext
}

// Sanitizer holds substitution tables. It is immutable after construction
// and safe for concurrent use.
type Sanitizer struct {
	toLetter map[byte]byte
	toDigit  map[byte]byte
	noise    [256]bool
	dominant byte
}

// Default uses the built-in confusion tables.
var Default = mustNew()

func mustNew() *Sanitizer {
	s, err := New()
	if err != nil {
		panic(err)
	}
	return s
}

// New builds a sanitizer from the built-in tables extended by overrides.
func New(overrides ...Overrides) (*Sanitizer, error) {
	s := &Sanitizer{
		toLetter: maps.Clone(nameTable),
		toDigit:  maps.Clone(numericTable),
		dominant: dominantFiller,
	}
	s.setNoise(fillerNoise)

	for _, o := range overrides {
		if err := o.applyTo(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Sanitizer) setNoise(letters string) {
	s.noise = [256]bool{}
	for i := 0; i < len(letters); i++ {
		s.noise[letters[i]] = true
	}
	s.noise[Filler] = true
	s.noise[s.dominant] = true
}

// Sanitize applies ctx to the whole line.
func Sanitize(line string, ctx FieldContext) string {
	return Default.Sanitize(line, ctx)
}

// Sanitize applies ctx to the whole line.
func (s *Sanitizer) Sanitize(line string, ctx FieldContext) string {
	if ctx == ContextTrailing {
		return s.RestoreTrailingFillers(line, 0)
	}
	return s.SanitizeSpans(line, []Span{{Start: 0, Len: len(line), Context: ctx}})
}

// SanitizeSpans applies each span's context to its slice of line. Spans that
// run past the end of the line are clipped. Trailing runs are located on the
// raw line, and name substitution stops where the first one starts.
func (s *Sanitizer) SanitizeSpans(line string, spans []Span) string {
	cut := len(line)
	var runs []int
	for _, sp := range spans {
		if sp.Context == ContextTrailing && sp.Start < len(line) {
			r := s.trailingRun(line, sp.Start)
			runs = append(runs, r)
			cut = min(cut, r)
		}
	}

	b := []byte(line)
	for _, sp := range spans {
		end := min(sp.Start+sp.Len, len(b))
		for i := sp.Start; i < end; i++ {
			switch sp.Context {
			case ContextName:
				if i < cut {
					b[i] = s.Letter(b[i])
				}
			case ContextNumeric:
				b[i] = s.Digit(b[i])
			}
		}
	}
	out := string(b)
	for _, r := range runs {
		out = s.restoreFrom(out, r)
	}
	return out
}

// Letter returns c if it is a letter or filler, otherwise its look-alike.
func (s *Sanitizer) Letter(c byte) byte {
	if isUpper(c) || c == Filler {
		return c
	}
	if r, ok := s.toLetter[c]; ok {
		return r
	}
	return nameFallback
}

// Digit returns c if it is a digit or filler, otherwise its look-alike.
func (s *Sanitizer) Digit(c byte) byte {
	if isDigit(c) || c == Filler {
		return c
	}
	if r, ok := s.toDigit[c]; ok {
		return r
	}
	return numericFallback
}

// RestoreTrailingFillers finds the run of filler, filler-noise letters and
// stray digits at the end of line (never reaching before nameStart) and
// rewrites it to filler. Digits in the run always become filler; the letters
// only when they look like decayed padding: at least minNoiseLetters of them,
// with the dominant noise letter making up half.
func (s *Sanitizer) RestoreTrailingFillers(line string, nameStart int) string {
	return s.restoreFrom(line, s.trailingRun(line, nameStart))
}

// trailingRun returns where the padding at the end of line starts. A run
// holding a filler starts at its first filler, so noise letters ending the
// name (the L of PAUL, the CK of YANNICK) stay with it. A run glued to the
// name starts at its first dominant letter or digit.
func (s *Sanitizer) trailingRun(line string, nameStart int) int {
	end := len(line)
	start := end
	for start > nameStart && s.isNoise(line[start-1]) {
		start--
	}
	if i := strings.IndexByte(line[start:end], Filler); i >= 0 {
		return start + i
	}
	for start < end && line[start] != s.dominant && !isDigit(line[start]) {
		start++
	}
	return start
}

func (s *Sanitizer) restoreFrom(line string, start int) string {
	letters, dominant := 0, 0
	for i := start; i < len(line); i++ {
		c := line[i]
		if c == Filler || isDigit(c) {
			continue
		}
		letters++
		if c == s.dominant {
			dominant++
		}
	}
	restore := letters >= minNoiseLetters && dominant*2 >= letters

	b := []byte(line)
	for i := start; i < len(b); i++ {
		if restore || isDigit(b[i]) {
			b[i] = Filler
		}
	}
	return string(b)
}

func (s *Sanitizer) isNoise(c byte) bool {
	return s.noise[c] || isDigit(c)
}

func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func checkSingle(kind, k, v string) (byte, byte, error) {
	if len(k) != 1 || len(v) != 1 {
		return 0, 0, fmt.Errorf("sanitize: %s override %q -> %q must map one ASCII character to one", kind, k, v)
	}
	return k[0], v[0], nil
}
