package docparser

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/vinicius-lino-figueiredo/criterium/domain"
)

var (
	// ErrTrailingData is returned when there are unskippable bytes after
	// the JSON data structure in the content ends.
	ErrTrailingData = errors.New("trailing data after JSON")
	// ErrInvalidUTF8Char is returned when the parser finds an incomplete or
	// invalid UTF-8 character.
	ErrInvalidUTF8Char = errors.New("invalid utf8 char")
	// ErrExpectedString is returned when a JSON object is started, but no
	// string is found for the key.
	ErrExpectedString = errors.New("expected string")
	// ErrUnterminatedString is returned when a string starts, but no is not
	// terminated before end of bytes.
	ErrUnterminatedString = errors.New("unterminated string")
	// ErrNoComma is returned when there is no comma between segments of
	// data in objects or arrays.
	ErrNoComma = errors.New("expected comma")
	// ErrNoColon is returned when there is no colon after the definition of
	// a key in a JSON object.
	ErrNoColon = errors.New("expected colon")
	// ErrInvalidNumber is returned when a non-null non-bool literal could
	// not be correctly read as a number.
	ErrInvalidNumber = errors.New("invalid JSON number")
)

// ErrInvalidLiteral when a known token (either true, false or null) starts but
// is not correctly finished.
type ErrInvalidLiteral struct {
	Value string
}

// Error implements [error].
func (e ErrInvalidLiteral) Error() string {
	return fmt.Sprintf("invalid literal %q", e.Value)
}

// ErrUnknownEscapeChar is returned when the scape character (\) does not
// precede a valid escapable char (any of "\/'bfnrtu).
type ErrUnknownEscapeChar struct {
	Char byte
}

// Error implements [error].
func (e ErrUnknownEscapeChar) Error() string {
	return fmt.Sprintf("unknown escape char, %q", e.Char)
}

// ErrInvalidControlChar indicates an invalid control character was found inside
// a string.
type ErrInvalidControlChar struct {
	Char byte
}

// Error implements [error].
func (e ErrInvalidControlChar) Error() string {
	return fmt.Sprintf("invalid control char, %q", e.Char)
}

// ParseJSON reads a JSON document into a query node. Object keys keep the order
// they were written in. Numbers are read as float64.
func ParseJSON(data []byte) (domain.Node, error) {
	p := &parser{data: data, n: len(data)}
	return p.parse()
}

type parser struct {
	data []byte
	i    int
	n    int
}

func (p *parser) parse() (domain.Node, error) {
	p.skip()
	val, err := p.value()
	if err != nil {
		return nil, err
	}
	p.skip()
	if p.i != p.n {
		return nil, ErrTrailingData
	}
	return val, nil
}

func (p *parser) skip() {
	for p.i < p.n {
		switch p.data[p.i] {
		case ' ', '\t', '\n', '\r':
			p.i++
		default:
			return
		}
	}
}

func (p *parser) value() (domain.Node, error) {
	if p.i >= p.n {
		return nil, io.ErrUnexpectedEOF
	}
	switch p.data[p.i] {
	case '{':
		return p.obj()
	case '[':
		return p.arr()
	case '"':
		s, err := p.str()
		if err != nil {
			return nil, err
		}
		return domain.Scalar{Value: s}, nil
	case 't':
		return p.expect("true", true)
	case 'f':
		return p.expect("false", false)
	case 'n':
		return p.expect("null", nil)
	default:
		return p.num()
	}
}

func (p *parser) obj() (domain.Node, error) {
	p.i++ // skip '{'
	p.skip()
	if p.i < p.n && p.data[p.i] == '}' {
		p.i++
		return domain.Mapping{}, nil
	}
	m := newEntries(4)
	for {
		p.skip()
		if p.i >= p.n {
			return nil, io.ErrUnexpectedEOF
		}
		key, err := p.str()
		if err != nil {
			return nil, err
		}
		p.skip()
		if p.i >= p.n || p.data[p.i] != ':' {
			return nil, ErrNoColon
		}
		p.i++
		p.skip()
		val, err := p.value()
		if err != nil {
			return nil, err
		}
		m.set(key, val)
		p.skip()
		if p.i >= p.n {
			return nil, io.ErrUnexpectedEOF
		}
		if p.data[p.i] == '}' {
			p.i++
			break
		}
		if p.data[p.i] != ',' {
			return nil, ErrNoComma
		}
		p.i++
	}
	return extended(m.m)
}

// entries builds a mapping in key order. A repeated key replaces the value in
// place, so the last value wins but the first position is kept.
type entries struct {
	m   domain.Mapping
	pos map[string]int
}

func newEntries(size int) *entries {
	return &entries{
		m:   make(domain.Mapping, 0, size),
		pos: make(map[string]int, size),
	}
}

func (e *entries) set(key string, val domain.Node) {
	if n, ok := e.pos[key]; ok {
		e.m[n].Value = val
		return
	}
	e.pos[key] = len(e.m)
	e.m = append(e.m, domain.Entry{Key: key, Value: val})
}

func (p *parser) arr() (domain.Node, error) {
	p.i++ // skip '['
	p.skip()
	out := domain.Sequence{}
	if p.i < p.n && p.data[p.i] == ']' {
		p.i++
		return out, nil
	}
	for {
		val, err := p.value()
		if err != nil {
			return nil, err
		}
		out = append(out, val)
		p.skip()
		if p.i >= p.n {
			return nil, io.ErrUnexpectedEOF
		}
		if p.data[p.i] == ']' {
			p.i++
			break
		}
		if p.data[p.i] != ',' {
			return nil, ErrNoComma
		}
		p.i++
		p.skip()
	}
	return out, nil
}

func (p *parser) str() (string, error) {
	if p.data[p.i] != '"' {
		return "", ErrExpectedString
	}
	for i := p.i + 1; i < p.n; i++ {
		c := p.data[i]
		switch c {
		case '\\':
			i++
		case '"':
			unquoted := p.data[p.i+1 : i]
			s, err := p.decodeString(unquoted)
			if err != nil {
				return "", err
			}
			p.i = i + 1
			return s, nil
		default:
		}
	}
	return "", ErrUnterminatedString
}

func (p *parser) decodeString(b []byte) (string, error) {

	out := make([]byte, len(b)+2*utf8.UTFMax)

	i := 0 // current byte
	w := 0 // written

	for i < len(b) {
		if w >= len(out)-2*utf8.UTFMax {
			nb := make([]byte, (len(out)+utf8.UTFMax)*2)
			copy(nb, out[0:w])
			out = nb
		}
		switch c := b[i]; {
		case c == '\\':
			i++
			switch b[i] {
			case '"', '\\', '/', '\'':
				out[w] = b[i]
			case 'b':
				out[w] = '\b'
			case 'f':
				out[w] = '\f'
			case 'n':
				out[w] = '\n'
			case 'r':
				out[w] = '\r'
			case 't':
				out[w] = '\t'
			case 'u':
				si, sw, err := p.treatSlashU(b[i-1:], out[w:])
				if err != nil {
					return "", err
				}
				i += si - 1
				w += sw
				continue
			default:
				return "", ErrUnknownEscapeChar{Char: b[i]}
			}
			i++
			w++

		case c < ' ':
			return "", ErrInvalidControlChar{Char: c}

		case c < utf8.RuneSelf:
			out[w] = c
			i++
			w++

		default:
			rr, size := utf8.DecodeRune(b[i:])
			i += size
			w += utf8.EncodeRune(out[w:], rr)
		}
	}
	return string(out[0:w]), nil
}

// treatSlashU decodes a \uXXXX sequence, joining surrogate pairs. It returns
// how many bytes were read and written.
func (p *parser) treatSlashU(b []byte, out []byte) (int, int, error) {
	rr := p.getUTF(b)
	if rr < 0 {
		return 0, 0, ErrInvalidUTF8Char
	}
	i := 6
	if utf16.IsSurrogate(rr) {
		rr1 := p.getUTF(b[i:])
		if dec := utf16.DecodeRune(rr, rr1); dec != unicode.ReplacementChar {
			return i + 6, utf8.EncodeRune(out, dec), nil
		}
		rr = unicode.ReplacementChar
	}
	return i, utf8.EncodeRune(out, rr), nil
}

func (p *parser) getUTF(b []byte) rune {
	if len(b) < 6 || b[0] != '\\' || b[1] != 'u' {
		return -1
	}

	r, err := strconv.ParseInt(string(b[2:6]), 16, 64)
	if err != nil {
		return -1
	}
	return rune(r)

}

func (p *parser) num() (domain.Node, error) {
	start := p.i
	for p.i < p.n {
		c := p.data[p.i]
		if (c >= '0' && c <= '9') || c == '.' || c == '-' || c == '+' || c == 'e' || c == 'E' {
			p.i++
		} else {
			break
		}
	}
	s := string(p.data[start:p.i])
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidNumber, err)
	}
	return domain.Scalar{Value: v}, nil
}

func (p *parser) expect(lit string, val any) (domain.Node, error) {
	end := p.i + len(lit)
	if end > p.n || string(p.data[p.i:end]) != lit {
		limit := min(p.n, end)
		literal := p.data[p.i:limit]
		return nil, ErrInvalidLiteral{Value: string(literal)}
	}
	p.i = end
	return domain.Scalar{Value: val}, nil
}
