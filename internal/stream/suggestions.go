package stream

import "fmt"

// ParseSuggestions parses the body of a suggestions block as a literal
// list of quoted strings, e.g. ["check the spark plug", "order part"].
//
// The grammar is deliberately narrow: optional whitespace, a bracketed
// comma-separated list of single- or double-quoted strings, optional
// whitespace, end of input. Inside a string only the quote character
// and the backslash may be escaped. Anything else, including trailing
// text after the closing bracket, is an error; callers degrade a parse
// error to an empty list rather than surfacing model formatting noise
// to the user.
func ParseSuggestions(body string) ([]string, error) {
	p := &suggestionParser{input: body}

	p.skipSpace()
	if !p.consume('[') {
		return nil, p.errorf("expected '['")
	}

	var items []string
	p.skipSpace()
	if p.consume(']') {
		p.skipSpace()
		if !p.done() {
			return nil, p.errorf("trailing data after list")
		}
		return items, nil
	}

	for {
		p.skipSpace()
		item, err := p.parseString()
		if err != nil {
			return nil, err
		}
		items = append(items, item)

		p.skipSpace()
		if p.consume(',') {
			continue
		}
		if p.consume(']') {
			break
		}
		return nil, p.errorf("expected ',' or ']'")
	}

	p.skipSpace()
	if !p.done() {
		return nil, p.errorf("trailing data after list")
	}
	return items, nil
}

type suggestionParser struct {
	input string
	pos   int
}

func (p *suggestionParser) done() bool {
	return p.pos >= len(p.input)
}

func (p *suggestionParser) skipSpace() {
	for !p.done() {
		switch p.input[p.pos] {
		case ' ', '\t', '\r', '\n':
			p.pos++
		default:
			return
		}
	}
}

// consume advances past c when it is the next byte.
func (p *suggestionParser) consume(c byte) bool {
	if p.done() || p.input[p.pos] != c {
		return false
	}
	p.pos++
	return true
}

func (p *suggestionParser) parseString() (string, error) {
	if p.done() {
		return "", p.errorf("expected string")
	}

	quote := p.input[p.pos]
	if quote != '"' && quote != '\'' {
		return "", p.errorf("expected quoted string")
	}
	p.pos++

	var out []byte
	for {
		if p.done() {
			return "", p.errorf("unterminated string")
		}
		c := p.input[p.pos]
		p.pos++

		switch c {
		case quote:
			return string(out), nil
		case '\\':
			if p.done() {
				return "", p.errorf("unterminated escape")
			}
			esc := p.input[p.pos]
			p.pos++
			if esc != quote && esc != '\\' {
				return "", p.errorf("unsupported escape %q", string(esc))
			}
			out = append(out, esc)
		default:
			out = append(out, c)
		}
	}
}

func (p *suggestionParser) errorf(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	return fmt.Errorf("suggestions: %s at offset %d", msg, p.pos)
}
