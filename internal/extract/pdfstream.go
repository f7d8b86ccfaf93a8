package extract

import (
	"encoding/hex"
	"strconv"
	"strings"
)

// TextFromContentStream pulls shown text out of a page content stream,
// keeping one output line per text line so that time ranges and course
// titles stay separate.
func TextFromContentStream(data []byte) string {
	var (
		out      strings.Builder
		operands []any
		sc       = scanner{data: data}
	)
	newline := func() {
		if out.Len() > 0 && !strings.HasSuffix(out.String(), "\n") {
			out.WriteByte('\n')
		}
	}
	space := func() {
		s := out.String()
		if out.Len() > 0 && !strings.HasSuffix(s, " ") && !strings.HasSuffix(s, "\n") {
			out.WriteByte(' ')
		}
	}

	for {
		tok, ok := sc.next()
		if !ok {
			break
		}
		op, isOp := tok.(operator)
		if !isOp {
			operands = append(operands, tok)
			continue
		}
		switch op {
		case "Tj":
			writeLastString(&out, operands)
		case "'", "\"":
			newline()
			writeLastString(&out, operands)
		case "TJ":
			if arr, ok := last(operands).([]any); ok {
				for _, el := range arr {
					switch v := el.(type) {
					case string:
						out.WriteString(v)
					case float64:
						if v < -250 {
							space()
						}
					}
				}
			}
		case "Td", "TD":
			if len(operands) >= 2 {
				if ty, ok := operands[len(operands)-1].(float64); ok && ty != 0 {
					newline()
					break
				}
			}
			space()
		case "T*", "ET", "Tm":
			newline()
		case "ID":
			sc.skipInlineImage()
		}
		operands = operands[:0]
	}

	var lines []string
	for _, l := range strings.Split(out.String(), "\n") {
		if l = strings.Join(strings.Fields(l), " "); l != "" {
			lines = append(lines, l)
		}
	}
	return strings.Join(lines, "\n")
}

func last(ops []any) any {
	if len(ops) == 0 {
		return nil
	}
	return ops[len(ops)-1]
}

func writeLastString(out *strings.Builder, ops []any) {
	if s, ok := last(ops).(string); ok {
		out.WriteString(s)
	}
}

type operator string

type scanner struct {
	data []byte
	pos  int
}

func isDelim(c byte) bool {
	return strings.IndexByte("()<>[]{}/%", c) >= 0
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\r' || c == '\t' || c == '\f' || c == 0
}

// next returns the next token: string, float64, []any, operator, or nil for
// names and dictionary delimiters.
func (s *scanner) next() (any, bool) {
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		switch {
		case isSpace(c):
			s.pos++
		case c == '%':
			for s.pos < len(s.data) && s.data[s.pos] != '\n' && s.data[s.pos] != '\r' {
				s.pos++
			}
		case c == '(':
			s.pos++
			return s.literal(), true
		case c == '<':
			if s.pos+1 < len(s.data) && s.data[s.pos+1] == '<' {
				s.pos += 2
				return nil, true
			}
			s.pos++
			return s.hexString(), true
		case c == '>':
			s.pos++
			if s.pos < len(s.data) && s.data[s.pos] == '>' {
				s.pos++
			}
			return nil, true
		case c == '[':
			s.pos++
			var arr []any
			for {
				if s.peekByte() == ']' {
					s.pos++
					break
				}
				tok, ok := s.next()
				if !ok {
					break
				}
				arr = append(arr, tok)
			}
			return arr, true
		case c == ']' || c == '{' || c == '}':
			s.pos++
			return nil, true
		case c == '/':
			s.pos++
			s.word()
			return nil, true
		default:
			w := s.word()
			if w == "" {
				s.pos++
				continue
			}
			if f, err := strconv.ParseFloat(w, 64); err == nil {
				return f, true
			}
			return operator(w), true
		}
	}
	return nil, false
}

func (s *scanner) peekByte() byte {
	for s.pos < len(s.data) && isSpace(s.data[s.pos]) {
		s.pos++
	}
	if s.pos >= len(s.data) {
		return ']'
	}
	return s.data[s.pos]
}

func (s *scanner) word() string {
	start := s.pos
	for s.pos < len(s.data) && !isSpace(s.data[s.pos]) && !isDelim(s.data[s.pos]) {
		s.pos++
	}
	return string(s.data[start:s.pos])
}

// literal reads a (...) string; the opening paren is already consumed.
func (s *scanner) literal() string {
	var b strings.Builder
	depth := 1
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		s.pos++
		switch c {
		case '\\':
			if s.pos >= len(s.data) {
				return b.String()
			}
			e := s.data[s.pos]
			s.pos++
			switch e {
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			case 'b', 'f':
			case '\r', '\n':
				// line continuation
			default:
				if e >= '0' && e <= '7' {
					val := int(e - '0')
					for i := 0; i < 2 && s.pos < len(s.data) && s.data[s.pos] >= '0' && s.data[s.pos] <= '7'; i++ {
						val = val*8 + int(s.data[s.pos]-'0')
						s.pos++
					}
					b.WriteByte(byte(val))
				} else {
					b.WriteByte(e)
				}
			}
		case '(':
			depth++
			b.WriteByte(c)
		case ')':
			depth--
			if depth == 0 {
				return b.String()
			}
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// hexString reads a <...> string; the opening bracket is already consumed.
func (s *scanner) hexString() string {
	start := s.pos
	for s.pos < len(s.data) && s.data[s.pos] != '>' {
		s.pos++
	}
	raw := strings.Join(strings.Fields(string(s.data[start:s.pos])), "")
	if s.pos < len(s.data) {
		s.pos++
	}
	if len(raw)%2 == 1 {
		raw += "0"
	}
	b, err := hex.DecodeString(raw)
	if err != nil {
		return ""
	}
	return string(b)
}

// skipInlineImage advances past binary inline image data up to "EI".
func (s *scanner) skipInlineImage() {
	for s.pos+2 <= len(s.data) {
		if s.data[s.pos] == 'E' && s.data[s.pos+1] == 'I' &&
			(s.pos == 0 || isSpace(s.data[s.pos-1])) &&
			(s.pos+2 == len(s.data) || isSpace(s.data[s.pos+2])) {
			s.pos += 2
			return
		}
		s.pos++
	}
	s.pos = len(s.data)
}
