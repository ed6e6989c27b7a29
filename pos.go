package shi

import "fmt"

// Location and Span track where in a source byte stream something
// happened, for reader diagnostics (spec.md §4.5's "reported through
// the error channel with a human-readable message"). Adapted from the
// teacher's Location/Span pair: here Cursor is a byte offset rather
// than a rune offset, since §4.5's grammar is defined byte-by-byte
// except inside string/symbol bodies.
type Location struct {
	Line   int
	Column int
	Cursor int
}

func (l Location) String() string {
	return fmt.Sprintf("%d:%d", l.Line, l.Column)
}

// Span covers the input between two Locations.
type Span struct {
	Start Location
	End   Location
}

func NewSpan(start, end Location) Span {
	return Span{Start: start, End: end}
}

func (s Span) String() string {
	if s.Start.Line == s.End.Line && s.Start.Column == s.End.Column {
		return s.Start.String()
	}
	return fmt.Sprintf("%s..%s", s.Start, s.End)
}
