package validator

import (
	"fmt"
	"strconv"
	"strings"
)

// ParsePassbackParams разбирает строку passback_params. API присылает её
// не как JSON, а как питоновский литерал словаря, например
// {'oauth_consumer_key': 'key', 'lis_result_sourcedid': 'id'}.
// Строка "None" означает пустой словарь. Любой другой результат разбора,
// кроме словаря, считается ошибкой — решение, что с ней делать, за вызывающим.
func ParsePassbackParams(s string) (map[string]any, error) {
	if s == "None" {
		return map[string]any{}, nil
	}

	p := &literalParser{input: s}
	value, err := p.parse()
	if err != nil {
		return nil, err
	}

	params, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("passback_params is not a dict: %T", value)
	}

	return params, nil
}

// literalParser — рекурсивный спуск по подмножеству литералов Python:
// словари, списки, кортежи, строки в одинарных и двойных кавычках,
// целые и вещественные числа, True/False/None.
type literalParser struct {
	input string
	pos   int
}

func (p *literalParser) parse() (any, error) {
	value, err := p.parseValue()
	if err != nil {
		return nil, err
	}

	p.skipSpace()
	if p.pos != len(p.input) {
		return nil, fmt.Errorf("unexpected character %q at position %d", p.input[p.pos], p.pos)
	}

	return value, nil
}

func (p *literalParser) parseValue() (any, error) {
	p.skipSpace()

	switch c := p.peek(); {
	case c == '{':
		return p.parseDict()
	case c == '[':
		return p.parseSequence(']')
	case c == '(':
		return p.parseSequence(')')
	case c == '\'' || c == '"':
		return p.parseString()
	case c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9'):
		return p.parseNumber()
	case c == '_' || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z'):
		return p.parseName()
	case c == 0:
		return nil, fmt.Errorf("unexpected end of input at position %d", p.pos)
	default:
		return nil, fmt.Errorf("unexpected character %q at position %d", c, p.pos)
	}
}

func (p *literalParser) parseDict() (any, error) {
	p.pos++ // '{'
	result := make(map[string]any)

	p.skipSpace()
	if p.consume('}') {
		return result, nil
	}

	for {
		key, err := p.parseValue()
		if err != nil {
			return nil, err
		}

		p.skipSpace()
		if !p.consume(':') {
			return nil, fmt.Errorf("expected ':' at position %d", p.pos)
		}

		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		result[dictKey(key)] = value

		p.skipSpace()
		if p.consume(',') {
			p.skipSpace()
			if p.consume('}') { // запятая перед '}' допустима
				return result, nil
			}
			continue
		}
		if p.consume('}') {
			return result, nil
		}
		return nil, fmt.Errorf("expected ',' or '}' at position %d", p.pos)
	}
}

func (p *literalParser) parseSequence(end byte) (any, error) {
	p.pos++ // '[' или '('
	result := []any{}

	p.skipSpace()
	if p.consume(end) {
		return result, nil
	}

	for {
		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		result = append(result, value)

		p.skipSpace()
		if p.consume(',') {
			p.skipSpace()
			if p.consume(end) {
				return result, nil
			}
			continue
		}
		if p.consume(end) {
			return result, nil
		}
		return nil, fmt.Errorf("expected ',' or %q at position %d", end, p.pos)
	}
}

func (p *literalParser) parseString() (any, error) {
	quote := p.input[p.pos]
	p.pos++

	var sb strings.Builder
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		switch c {
		case quote:
			p.pos++
			return sb.String(), nil
		case '\\':
			p.pos++
			if p.pos >= len(p.input) {
				return nil, fmt.Errorf("unterminated string at position %d", p.pos)
			}
			sb.WriteString(unescape(p.input[p.pos]))
			p.pos++
		default:
			sb.WriteByte(c)
			p.pos++
		}
	}

	return nil, fmt.Errorf("unterminated string at position %d", p.pos)
}

func unescape(c byte) string {
	switch c {
	case 'n':
		return "\n"
	case 't':
		return "\t"
	case 'r':
		return "\r"
	case 'b':
		return "\b"
	case 'f':
		return "\f"
	case '0':
		return "\x00"
	case '\\', '\'', '"':
		return string(c)
	default:
		// Python оставляет неизвестные escape-последовательности как есть
		return "\\" + string(c)
	}
}

func (p *literalParser) parseNumber() (any, error) {
	start := p.pos

	if c := p.peek(); c == '+' || c == '-' {
		p.pos++
	}
	isFloat := false
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if c >= '0' && c <= '9' {
			p.pos++
			continue
		}
		if c == '.' || c == 'e' || c == 'E' {
			isFloat = true
			p.pos++
			continue
		}
		if (c == '+' || c == '-') && isFloat {
			prev := p.input[p.pos-1]
			if prev == 'e' || prev == 'E' {
				p.pos++
				continue
			}
		}
		break
	}

	text := p.input[start:p.pos]
	if isFloat {
		value, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q at position %d", text, start)
		}
		return value, nil
	}

	value, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q at position %d", text, start)
	}
	return value, nil
}

func (p *literalParser) parseName() (any, error) {
	start := p.pos
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if c == '_' || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			p.pos++
			continue
		}
		break
	}

	switch name := p.input[start:p.pos]; name {
	case "True":
		return true, nil
	case "False":
		return false, nil
	case "None":
		return nil, nil
	default:
		return nil, fmt.Errorf("invalid literal %q at position %d", name, start)
	}
}

func (p *literalParser) skipSpace() {
	for p.pos < len(p.input) {
		switch p.input[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *literalParser) peek() byte {
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *literalParser) consume(c byte) bool {
	if p.pos < len(p.input) && p.input[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

func dictKey(key any) string {
	if s, ok := key.(string); ok {
		return s
	}
	return fmt.Sprint(key)
}
