package shi

import "strconv"

// maxStringLen and maxSymbolLen are the literal size caps from spec.md
// §4.5.
const (
	maxStringLen = 1000
	maxSymbolLen = 200
)

// symbolPunct is the punctuation allowed in a Symbol, both as a
// starting character and as a continuation character (spec.md §4.5:
// "continues with letters, digits, or the same punctuation set").
const symbolPunct = "~!#$%^&*-_=+:/?<>"

// Reader lifts a byte stream into canonical expression trees, per
// spec.md §4.5. Each call to Read returns one expression; repeated
// calls over the same Reader walk the stream to EOF. It tracks
// position the way the teacher's BaseParser does (byte cursor plus
// line/column, advanced one character at a time) but works over bytes
// rather than runes, since every delimiter and operator in the grammar
// is ASCII.
type Reader struct {
	in     *Interp
	src    []byte
	pos    int
	line   int
	column int
}

// NewReader creates a Reader over src. A leading `#` is treated as a
// shebang line comment only because it is the very first byte of the
// whole input (spec.md §4.5) — the reader checks r.pos == 0 for that.
func (in *Interp) NewReader(src []byte) *Reader {
	return &Reader{in: in, src: src, line: 1, column: 1}
}

func (r *Reader) loc() Location {
	return Location{Line: r.line, Column: r.column, Cursor: r.pos}
}

func (r *Reader) peek() (byte, bool) {
	if r.pos >= len(r.src) {
		return 0, false
	}
	return r.src[r.pos], true
}

func (r *Reader) peekAt(off int) (byte, bool) {
	if r.pos+off >= len(r.src) {
		return 0, false
	}
	return r.src[r.pos+off], true
}

func (r *Reader) advance() {
	if r.pos >= len(r.src) {
		return
	}
	if r.src[r.pos] == '\n' {
		r.line++
		r.column = 1
	} else {
		r.column++
	}
	r.pos++
}

func (r *Reader) err(msg string, start Location) error {
	return &ReaderError{Message: msg, Span: NewSpan(start, r.loc())}
}

// skipAtmosphere consumes whitespace and comments between tokens
// (spec.md §4.5: whitespace is {space, tab, CR, LF} ignored between
// tokens; `;` starts a line comment; `#` is a shebang line comment,
// but only as the very first character of the whole input).
func (r *Reader) skipAtmosphere() {
	for {
		c, ok := r.peek()
		if !ok {
			return
		}
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			r.advance()
		case c == ';':
			for {
				c, ok := r.peek()
				if !ok || c == '\n' {
					break
				}
				r.advance()
			}
		case c == '#' && r.pos == 0:
			for {
				c, ok := r.peek()
				if !ok || c == '\n' {
					break
				}
				r.advance()
			}
		default:
			return
		}
	}
}

// Read returns the next expression in the stream, or ok=false at EOF.
// It never returns one of the reader-internal sentinels: a stray `)`,
// `}`, or `.` at this level is a syntax error (spec.md §4.5).
func (r *Reader) Read() (v Value, ok bool, err error) {
	r.skipAtmosphere()
	if _, has := r.peek(); !has {
		return Nil, false, nil
	}
	f := r.in.roots.PushFrame()
	defer r.in.roots.Release(f)

	start := r.loc()
	val, err := r.readForm()
	if err != nil {
		return Nil, false, err
	}
	if isSentinel(val) {
		return Nil, false, r.err("unexpected `"+sentinelText(val)+"`", start)
	}
	return val, true, nil
}

func sentinelText(v Value) string {
	switch v.tag {
	case tagSentinelDot:
		return "."
	case tagSentinelCloseParen:
		return ")"
	case tagSentinelCloseBrace:
		return "}"
	default:
		return "?"
	}
}

// readForm reads one form, possibly returning an internal sentinel
// that only makeList/makeAlist (or Read's final check) understand.
func (r *Reader) readForm() (Value, error) {
	r.skipAtmosphere()
	start := r.loc()
	c, ok := r.peek()
	if !ok {
		return Nil, r.err("unexpected end of input", start)
	}

	switch {
	case c == '(':
		r.advance()
		return r.readList()
	case c == '{':
		r.advance()
		return r.readAlist()
	case c == ')':
		r.advance()
		return sentinelCloseParen, nil
	case c == '}':
		r.advance()
		return sentinelCloseBrace, nil
	case c == '.':
		r.advance()
		return sentinelDot, nil
	case c == '\'':
		r.advance()
		return r.readPrefixed("quote")
	case c == '`':
		r.advance()
		return r.readPrefixed("quasiquote")
	case c == ',':
		r.advance()
		if n, has := r.peek(); has && n == '@' {
			r.advance()
			return r.readPrefixed("unquote-splicing")
		}
		return r.readPrefixed("unquote")
	case c == '@':
		r.advance()
		return r.readPrefixed("unbox")
	case c == '"':
		return r.readString()
	case c == '-' && isDigitAt(r, 1):
		return r.readInteger()
	case isDigitByte(c):
		return r.readInteger()
	case isSymbolStart(c):
		return r.readSymbolOrAccess()
	default:
		return Nil, r.err("unknown character `"+string(c)+"`", start)
	}
}

func isDigitAt(r *Reader, off int) bool {
	c, ok := r.peekAt(off)
	return ok && isDigitByte(c)
}

func (r *Reader) readPrefixed(head string) (Value, error) {
	inner, err := r.readForm()
	if err != nil {
		return Nil, err
	}
	if isSentinel(inner) {
		return Nil, r.err("expected an expression after `"+head+"`", r.loc())
	}
	innerH := r.in.roots.NewHandle(inner)
	sym, err := r.in.intern(head)
	if err != nil {
		return Nil, err
	}
	return r.in.list(sym, r.in.roots.Get(innerH))
}

// readList implements "(...)" reads a list, with `.` marking the
// dotted tail (spec.md §4.5): `(a b . c)` is a pair chain terminated by
// c.
func (r *Reader) readList() (Value, error) {
	start := r.loc()
	f := r.in.roots.PushFrame()
	defer r.in.roots.Release(f)

	var items []Handle
	tailH := r.in.roots.NewHandle(Nil)
	sawDot := false

	for {
		r.skipAtmosphere()
		if _, has := r.peek(); !has {
			return Nil, r.err("unterminated list", start)
		}
		val, err := r.readForm()
		if err != nil {
			return Nil, err
		}
		switch {
		case val.tag == tagSentinelCloseParen:
			return r.finishList(items, tailH, sawDot, start)
		case val.tag == tagSentinelCloseBrace:
			return Nil, r.err("stray `}`", start)
		case val.tag == tagSentinelDot:
			if sawDot || len(items) == 0 {
				return Nil, r.err("stray `.`", start)
			}
			sawDot = true
			r.skipAtmosphere()
			tailVal, err := r.readForm()
			if err != nil {
				return Nil, err
			}
			if isSentinel(tailVal) {
				return Nil, r.err("expected a value after `.`", start)
			}
			r.in.roots.Set(tailH, tailVal)
		default:
			if sawDot {
				return Nil, r.err("only one value allowed after `.`", start)
			}
			items = append(items, r.in.roots.NewHandle(val))
		}
	}
}

func (r *Reader) finishList(items []Handle, tailH Handle, sawDot bool, start Location) (Value, error) {
	tail := r.in.roots.Get(tailH)
	if sawDot && tail.IsNil() {
		return Nil, r.err("missing value after `.`", start)
	}
	f := r.in.roots.PushFrame()
	defer r.in.roots.Release(f)
	rh := r.in.roots.NewHandle(tail)
	for i := len(items) - 1; i >= 0; i-- {
		cell, err := r.in.cons(r.in.roots.Get(items[i]), r.in.roots.Get(rh))
		if err != nil {
			return Nil, err
		}
		r.in.roots.Set(rh, cell)
	}
	return r.in.roots.Get(rh), nil
}

// readAlist implements "{k1 v1 k2 v2 ...}" and desugars it to
// (list (cons k1 v1) (cons k2 v2) ...) (spec.md §4.5). Element count
// must be even.
func (r *Reader) readAlist() (Value, error) {
	start := r.loc()
	f0 := r.in.roots.PushFrame()
	defer r.in.roots.Release(f0)

	var elems []Handle
	for {
		r.skipAtmosphere()
		if _, has := r.peek(); !has {
			return Nil, r.err("unterminated alist", start)
		}
		val, err := r.readForm()
		if err != nil {
			return Nil, err
		}
		if val.tag == tagSentinelCloseBrace {
			break
		}
		if isSentinel(val) {
			return Nil, r.err("unexpected `"+sentinelText(val)+"` in alist", start)
		}
		elems = append(elems, r.in.roots.NewHandle(val))
	}
	if len(elems)%2 != 0 {
		return Nil, r.err("alist literal has an odd number of elements", start)
	}

	consSym, err := r.in.intern("cons")
	if err != nil {
		return Nil, err
	}
	listSym, err := r.in.intern("list")
	if err != nil {
		return Nil, err
	}

	forms := []Handle{r.in.roots.NewHandle(listSym)}
	for i := 0; i < len(elems); i += 2 {
		pairForm, err := r.in.list(consSym, r.in.roots.Get(elems[i]), r.in.roots.Get(elems[i+1]))
		if err != nil {
			return Nil, err
		}
		forms = append(forms, r.in.roots.NewHandle(pairForm))
	}
	formVals := make([]Value, len(forms))
	for i, h := range forms {
		formVals[i] = r.in.roots.Get(h)
	}
	return r.in.list(formVals...)
}

// readString implements `"..."` with the escapes of spec.md §4.5.
func (r *Reader) readString() (Value, error) {
	start := r.loc()
	r.advance() // opening quote
	buf := make([]byte, 0, 16)
	for {
		c, has := r.peek()
		if !has {
			return Nil, r.err("unterminated string literal", start)
		}
		if c == '"' {
			r.advance()
			break
		}
		if c == '\\' {
			r.advance()
			esc, has := r.peek()
			if !has {
				return Nil, r.err("unterminated string escape", start)
			}
			var lit byte
			switch esc {
			case 'n':
				lit = '\n'
			case 'r':
				lit = '\r'
			case 't':
				lit = '\t'
			case '"':
				lit = '"'
			case '\\':
				lit = '\\'
			default:
				return Nil, r.err("unknown escape `\\"+string(esc)+"`", start)
			}
			buf = append(buf, lit)
			r.advance()
			continue
		}
		buf = append(buf, c)
		r.advance()
		if len(buf) > maxStringLen {
			return Nil, r.err("string literal too long", start)
		}
	}
	return r.in.newString(string(buf))
}

// readInteger implements the integer literal grammar of spec.md §4.5.
func (r *Reader) readInteger() (Value, error) {
	start := r.loc()
	neg := false
	if c, _ := r.peek(); c == '-' {
		neg = true
		r.advance()
	}
	digitStart := r.pos
	for {
		c, has := r.peek()
		if !has || !isDigitByte(c) {
			break
		}
		r.advance()
	}
	digits := string(r.src[digitStart:r.pos])
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return Nil, r.err("malformed integer literal", start)
	}
	if neg {
		n = -n
	}
	return Integer(n), nil
}

// readSymbolOrAccess reads a symbol, splitting it at its first
// unescaped `:` into the `(: obj (quote prop))` access sugar (spec.md
// §4.5's "Embedded colon syntax").
func (r *Reader) readSymbolOrAccess() (Value, error) {
	start := r.loc()
	tokStart := r.pos
	for {
		c, has := r.peek()
		if !has || !isSymbolCont(c) {
			break
		}
		r.advance()
	}
	text := string(r.src[tokStart:r.pos])
	if len(text) > maxSymbolLen {
		return Nil, r.err("symbol too long", start)
	}

	colon := -1
	for i := 0; i < len(text); i++ {
		if text[i] == ':' {
			colon = i
			break
		}
	}
	if colon < 0 {
		return r.in.intern(text)
	}

	objName, propName := text[:colon], text[colon+1:]
	if objName == "" || propName == "" {
		return Nil, r.err("malformed `obj:prop` access", start)
	}
	objSym, err := r.in.intern(objName)
	if err != nil {
		return Nil, err
	}
	objH := r.in.roots.NewHandle(objSym)
	propSym, err := r.in.intern(propName)
	if err != nil {
		return Nil, err
	}
	propH := r.in.roots.NewHandle(propSym)
	colonSym, err := r.in.intern(":")
	if err != nil {
		return Nil, err
	}
	colonH := r.in.roots.NewHandle(colonSym)
	quoteSym, err := r.in.intern("quote")
	if err != nil {
		return Nil, err
	}
	quotedProp, err := r.in.list(quoteSym, r.in.roots.Get(propH))
	if err != nil {
		return Nil, err
	}
	quotedPropH := r.in.roots.NewHandle(quotedProp)
	return r.in.list(r.in.roots.Get(colonH), r.in.roots.Get(objH), r.in.roots.Get(quotedPropH))
}

func isDigitByte(c byte) bool { return c >= '0' && c <= '9' }

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isSymbolPunct(c byte) bool {
	for i := 0; i < len(symbolPunct); i++ {
		if symbolPunct[i] == c {
			return true
		}
	}
	return false
}

func isSymbolStart(c byte) bool {
	return isLetter(c) || isSymbolPunct(c)
}

func isSymbolCont(c byte) bool {
	return isLetter(c) || isDigitByte(c) || isSymbolPunct(c)
}

// ReadAll reads every expression in src, useful for `read-sexp`
// (spec.md §4.7) and for loading a whole source file (spec.md §6).
func (in *Interp) ReadAll(src []byte) ([]Value, error) {
	r := in.NewReader(src)
	var forms []Value
	for {
		v, ok, err := r.Read()
		if err != nil {
			return nil, err
		}
		if !ok {
			return forms, nil
		}
		forms = append(forms, v)
	}
}
