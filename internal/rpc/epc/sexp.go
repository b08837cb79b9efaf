package epc

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Symbol is an unquoted S-expression atom such as call or query.
type Symbol string

var errUnexpectedEOF = errors.New("sexp: unexpected end of input")

// Parse reads exactly one S-expression from src.
//
// Lists decode to []any, strings to string, integers to int64, floats to
// float64, nil to nil, t to true and any other atom to Symbol.
func Parse(src string) (any, error) {
	p := &parser{src: src}
	v, err := p.value()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, fmt.Errorf("sexp: trailing data at offset %d", p.pos)
	}
	return v, nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) {
		switch c := p.src[p.pos]; {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f':
			p.pos++
		case c == ';':
			for p.pos < len(p.src) && p.src[p.pos] != '\n' {
				p.pos++
			}
		default:
			return
		}
	}
}

func (p *parser) value() (any, error) {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return nil, errUnexpectedEOF
	}

	switch p.src[p.pos] {
	case '(':
		p.pos++
		return p.list()
	case ')':
		return nil, fmt.Errorf("sexp: unexpected ')' at offset %d", p.pos)
	case '"':
		p.pos++
		return p.str()
	case '\'':
		p.pos++
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		return []any{Symbol("quote"), v}, nil
	default:
		return p.atom()
	}
}

func (p *parser) list() (any, error) {
	items := make([]any, 0, 4)
	for {
		p.skipSpace()
		if p.pos >= len(p.src) {
			return nil, errUnexpectedEOF
		}
		if p.src[p.pos] == ')' {
			p.pos++
			if len(items) == 0 {
				return nil, nil
			}
			return items, nil
		}
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
}

func (p *parser) str() (any, error) {
	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch c {
		case '"':
			p.pos++
			return b.String(), nil
		case '\\':
			p.pos++
			if p.pos >= len(p.src) {
				return nil, errUnexpectedEOF
			}
			if err := p.escape(&b); err != nil {
				return nil, err
			}
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
	return nil, errUnexpectedEOF
}

var simpleEscapes = map[byte]byte{
	'a': '\a', 'b': '\b', 'd': 0x7f, 'e': 0x1b, 'f': '\f',
	'n': '\n', 'r': '\r', 's': ' ', 't': '\t', 'v': '\v',
}

// escape decodes the escape sequence after a backslash in a string, following
// the Emacs reader: \xHEX, \NNN octal, \uXXXX, \UXXXXXXXX and \N{U+X}.
// A backslash before a newline or a space produces nothing.
func (p *parser) escape(b *strings.Builder) error {
	start := p.pos - 1
	e := p.src[p.pos]
	p.pos++

	if c, ok := simpleEscapes[e]; ok {
		b.WriteByte(c)
		return nil
	}

	switch {
	case e == '\n' || e == ' ':
		return nil
	case e == 'x':
		n := p.digits(16, -1)
		if n == "" {
			return fmt.Errorf("sexp: empty \\x escape at offset %d", start)
		}
		return writeCodePoint(b, n, 16, start)
	case e >= '0' && e <= '7':
		p.pos--
		return writeCodePoint(b, p.digits(8, 3), 8, start)
	case e == 'u' || e == 'U':
		width := 4
		if e == 'U' {
			width = 8
		}
		n := p.digits(16, width)
		if len(n) != width {
			return fmt.Errorf("sexp: \\%c escape needs %d hex digits at offset %d", e, width, start)
		}
		return writeCodePoint(b, n, 16, start)
	case e == 'N':
		end := strings.IndexByte(p.src[p.pos:], '}')
		if !strings.HasPrefix(p.src[p.pos:], "{U+") || end < 0 {
			return fmt.Errorf("sexp: unsupported \\N escape at offset %d", start)
		}
		n := p.src[p.pos+3 : p.pos+end]
		p.pos += end + 1
		return writeCodePoint(b, n, 16, start)
	case e >= 'a' && e <= 'z' || e >= 'A' && e <= 'Z' || e >= '0' && e <= '9' || e == '^':
		return fmt.Errorf("sexp: unsupported escape \\%c at offset %d", e, start)
	default:
		// \" \\ and other punctuation stand for themselves
		b.WriteByte(e)
		return nil
	}
}

// digits consumes up to limit digits in base (all of them when limit < 0).
func (p *parser) digits(base, limit int) string {
	from := p.pos
	for p.pos < len(p.src) && (limit < 0 || p.pos-from < limit) {
		c := p.src[p.pos]
		isDigit := c >= '0' && c <= '7' ||
			base == 16 && (c >= '8' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F')
		if !isDigit {
			break
		}
		p.pos++
	}
	return p.src[from:p.pos]
}

func writeCodePoint(b *strings.Builder, digits string, base, offset int) error {
	n, err := strconv.ParseUint(digits, base, 32)
	if err != nil || n > utf8.MaxRune || !utf8.ValidRune(rune(n)) {
		return fmt.Errorf("sexp: invalid character code %q at offset %d", digits, offset)
	}
	b.WriteRune(rune(n))
	return nil
}

func (p *parser) atom() (any, error) {
	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '(' || c == ')' || c == '"' || c == ';' || c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' {
			break
		}
		if c == '\\' && p.pos+1 < len(p.src) {
			p.pos++
			c = p.src[p.pos]
		}
		b.WriteByte(c)
		p.pos++
	}

	tok := b.String()
	switch tok {
	case "nil":
		return nil, nil
	case "t":
		return true, nil
	}
	if i, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return i, nil
	}
	if looksNumeric(tok) {
		if f, err := strconv.ParseFloat(tok, 64); err == nil {
			return f, nil
		}
	}
	return Symbol(tok), nil
}

// looksNumeric keeps symbols like inf or e1 from being read as floats.
func looksNumeric(tok string) bool {
	if tok == "" {
		return false
	}
	c := tok[0]
	if c == '+' || c == '-' || c == '.' {
		if len(tok) == 1 {
			return false
		}
		c = tok[1]
	}
	return c >= '0' && c <= '9' || c == '.'
}

// Marshal renders v as an S-expression.
func Marshal(v any) (string, error) {
	var b strings.Builder
	if err := encode(&b, v); err != nil {
		return "", err
	}
	return b.String(), nil
}

func encode(b *strings.Builder, v any) error {
	switch x := v.(type) {
	case nil:
		b.WriteString("nil")
	case bool:
		if x {
			b.WriteString("t")
		} else {
			b.WriteString("nil")
		}
	case Symbol:
		b.WriteString(string(x))
	case string:
		quote(b, x)
	case *string:
		if x == nil {
			b.WriteString("nil")
		} else {
			quote(b, *x)
		}
	case int:
		b.WriteString(strconv.Itoa(x))
	case int64:
		b.WriteString(strconv.FormatInt(x, 10))
	case float64:
		b.WriteString(strconv.FormatFloat(x, 'g', -1, 64))
	case []string:
		items := make([]any, len(x))
		for i, s := range x {
			items[i] = s
		}
		return encode(b, items)
	case []any:
		if len(x) == 0 {
			b.WriteString("nil")
			return nil
		}
		b.WriteByte('(')
		for i, item := range x {
			if i > 0 {
				b.WriteByte(' ')
			}
			if err := encode(b, item); err != nil {
				return err
			}
		}
		b.WriteByte(')')
	default:
		return fmt.Errorf("sexp: cannot encode %T", v)
	}
	return nil
}

func quote(b *strings.Builder, s string) {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "�")
	}
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
}
