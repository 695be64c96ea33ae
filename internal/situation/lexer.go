package situation

import (
	"fmt"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokString
	tokIdent
	tokLParen
	tokRParen
	tokComma
	tokPlus
	tokMinus
	tokStar
	tokSlash
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func (t token) String() string {
	if t.kind == tokEOF {
		return "end of input"
	}
	return fmt.Sprintf("%q", t.text)
}

// SyntaxError reports a malformed expression.
type SyntaxError struct {
	Source string
	Pos    int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at %d in %q: %s", e.Pos, e.Source, e.Msg)
}

func lex(src string) ([]token, error) {
	var toks []token
	rs := []rune(src)
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case unicode.IsDigit(r) || (r == '.' && i+1 < len(rs) && unicode.IsDigit(rs[i+1])):
			start := i
			dot := false
			for i < len(rs) && (unicode.IsDigit(rs[i]) || (rs[i] == '.' && !dot)) {
				if rs[i] == '.' {
					dot = true
				}
				i++
			}
			toks = append(toks, token{tokNumber, string(rs[start:i]), start})
		case r == '\'' || r == '"':
			start := i
			i++
			var b strings.Builder
			for i < len(rs) && rs[i] != r {
				b.WriteRune(rs[i])
				i++
			}
			if i == len(rs) {
				return nil, &SyntaxError{Source: src, Pos: start, Msg: "unterminated string"}
			}
			i++
			toks = append(toks, token{tokString, b.String(), start})
		case unicode.IsLetter(r) || r == '_':
			start := i
			for i < len(rs) && (unicode.IsLetter(rs[i]) || unicode.IsDigit(rs[i]) || rs[i] == '_') {
				i++
			}
			toks = append(toks, token{tokIdent, string(rs[start:i]), start})
		default:
			kind, ok := punct[r]
			if !ok {
				return nil, &SyntaxError{Source: src, Pos: i, Msg: fmt.Sprintf("unexpected character %q", r)}
			}
			toks = append(toks, token{kind, string(r), i})
			i++
		}
	}
	return append(toks, token{kind: tokEOF, pos: len(rs)}), nil
}

var punct = map[rune]tokenKind{
	'(': tokLParen,
	')': tokRParen,
	',': tokComma,
	'+': tokPlus,
	'-': tokMinus,
	'*': tokStar,
	'/': tokSlash,
}
