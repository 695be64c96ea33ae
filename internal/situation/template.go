package situation

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Template is a situation message with "${...}" placeholders. A placeholder
// holds an expression or one of formatar(x[, places]), ANO(i), TRIMESTRE(i)
// and MES(i).
type Template struct {
	src   string
	parts []textPart
}

type textPart interface {
	text(e *env, year int) (string, error)
}

type (
	literalText string
	exprText    struct{ x Expr }
	formatText  struct{ x, places Expr }
	yearText    struct{ index Expr }
	quarterText struct{ index Expr }
	monthText   struct{ index Expr }
)

// ParseTemplate splits src into literal text and placeholders.
func ParseTemplate(src string) (*Template, error) {
	t := &Template{src: src}
	rest := src
	offset := 0
	for {
		open := strings.Index(rest, "${")
		if open < 0 {
			if rest != "" {
				t.parts = append(t.parts, literalText(rest))
			}
			return t, nil
		}
		if open > 0 {
			t.parts = append(t.parts, literalText(rest[:open]))
		}
		end := closingBrace(rest, open+2)
		if end < 0 {
			return nil, &SyntaxError{Source: src, Pos: offset + open, Msg: "unclosed placeholder"}
		}
		part, err := parsePlaceholder(rest[open+2 : end])
		if err != nil {
			return nil, err
		}
		t.parts = append(t.parts, part)
		offset += end + 1
		rest = rest[end+1:]
	}
}

// closingBrace finds the "}" ending a placeholder, skipping quoted strings.
func closingBrace(s string, from int) int {
	var quote byte
	for i := from; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '}':
			return i
		}
	}
	return -1
}

func parsePlaceholder(src string) (textPart, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	head := p.peek()
	if head.kind == tokIdent && p.toks[p.i+1].kind == tokLParen {
		var args []Expr
		var build func() textPart
		switch strings.ToLower(head.text) {
		case "formatar", "format":
			build = func() textPart {
				f := formatText{x: args[0]}
				if len(args) > 1 {
					f.places = args[1]
				}
				return f
			}
		case "ano", "year":
			build = func() textPart { return yearText{args[0]} }
		case "trimestre", "quarter":
			build = func() textPart { return quarterText{args[0]} }
		case "mes", "month":
			build = func() textPart { return monthText{args[0]} }
		}
		if build != nil {
			p.next()
			p.next()
			if args, err = p.args(); err != nil {
				return nil, err
			}
			if len(args) == 0 || len(args) > 2 || (len(args) == 2 && !strings.HasPrefix(strings.ToLower(head.text), "format")) {
				return nil, p.errorf(head, "wrong number of arguments to %s", head.text)
			}
			if err := p.expect(tokEOF); err != nil {
				return nil, err
			}
			return build(), nil
		}
	}
	x, err := p.expr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(tokEOF); err != nil {
		return nil, err
	}
	return exprText{x}, nil
}

// args parses a comma-separated expression list up to and including ")".
func (p *parser) args() ([]Expr, error) {
	var out []Expr
	if p.peek().kind == tokRParen {
		p.next()
		return out, nil
	}
	for {
		x, err := p.expr()
		if err != nil {
			return nil, err
		}
		out = append(out, x)
		t := p.next()
		switch t.kind {
		case tokRParen:
			return out, nil
		case tokComma:
		default:
			return nil, p.errorf(t, "unexpected %s", t)
		}
	}
}

// Render evaluates every placeholder. year is the analysed year used by
// ANO, TRIMESTRE and MES.
func (t *Template) Render(src Source, year int) (string, error) {
	e := &env{src: src}
	var b strings.Builder
	for _, part := range t.parts {
		s, err := part.text(e, year)
		if err != nil {
			return "", err
		}
		b.WriteString(s)
	}
	return b.String(), nil
}

func (t *Template) String() string { return t.src }

func (l literalText) text(*env, int) (string, error) { return string(l), nil }

func (x exprText) text(e *env, _ int) (string, error) {
	v, err := x.x.eval(e)
	if err != nil {
		return "", err
	}
	return v.String(), nil
}

func (f formatText) text(e *env, _ int) (string, error) {
	v, err := f.x.eval(e)
	if err != nil {
		return "", err
	}
	places := 2
	if f.places != nil {
		if places, err = intArg(e, f.places, 0, 10); err != nil {
			return "", err
		}
	}
	return FormatNumber(v, places), nil
}

func (y yearText) text(e *env, year int) (string, error) {
	i, err := intArg(e, y.index, 1, 3)
	if err != nil {
		return "", fmt.Errorf("ANO: %w", err)
	}
	return fmt.Sprint(year - 3 + i), nil
}

func (q quarterText) text(e *env, year int) (string, error) {
	i, err := intArg(e, q.index, 1, 4)
	if err != nil {
		return "", fmt.Errorf("TRIMESTRE: %w", err)
	}
	return fmt.Sprintf("T%d/%d", i, year), nil
}

var monthAbbrev = [...]string{"jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez"}

func (m monthText) text(e *env, year int) (string, error) {
	i, err := intArg(e, m.index, 1, 12)
	if err != nil {
		return "", fmt.Errorf("MES: %w", err)
	}
	return fmt.Sprintf("%s-%d", monthAbbrev[i-1], year), nil
}

func intArg(e *env, x Expr, lo, hi int) (int, error) {
	v, err := x.eval(e)
	if err != nil {
		return 0, err
	}
	if !v.IsInteger() || v.IntPart() < int64(lo) || v.IntPart() > int64(hi) {
		return 0, fmt.Errorf("argument %s out of range %d..%d", v, lo, hi)
	}
	return int(v.IntPart()), nil
}

// FormatNumber renders v in Brazilian Portuguese notation with the given
// number of decimal places, e.g. 1234.5 -> "1.234,50".
func FormatNumber(v decimal.Decimal, places int) string {
	f, _ := v.Round(int32(places)).Float64()
	p := message.NewPrinter(language.BrazilianPortuguese)
	return p.Sprintf(fmt.Sprintf("%%.%df", places), f)
}
