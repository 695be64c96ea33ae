// Package code models dotted hierarchical account codes such as "1.01.02.00".
package code

import (
	"fmt"
	"strconv"
	"strings"
)

// MalformedCodeError reports an account code with a non-numeric segment.
type MalformedCodeError struct {
	Code string
}

func (e MalformedCodeError) Error() string {
	return fmt.Sprintf("malformed account code %q", e.Code)
}

// Code is a parsed account code. The zero value is the empty code.
type Code struct {
	raw  string
	segs []int
}

// Parse splits s on "." and converts every segment to a non-negative integer.
func Parse(s string) (Code, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Code{}, MalformedCodeError{Code: s}
	}
	parts := strings.Split(s, ".")
	segs := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || strings.ContainsAny(p, "+-") {
			return Code{}, MalformedCodeError{Code: s}
		}
		segs[i] = n
	}
	return Code{raw: s, segs: segs}, nil
}

// MustParse is like Parse but panics on a malformed code.
func MustParse(s string) Code {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

// String returns the code as it was written.
func (c Code) String() string { return c.raw }

// IsZero reports whether c is the empty code.
func (c Code) IsZero() bool { return len(c.segs) == 0 }

// Segments returns a copy of the numeric segments.
func (c Code) Segments() []int {
	out := make([]int, len(c.segs))
	copy(out, c.segs)
	return out
}

// Level is the 1-based position of the last non-zero segment.
// "1.01.00.00" has level 2; an all-zero code has level 0.
func (c Code) Level() int {
	return len(trimZeros(c.segs))
}

// IsDirectChild reports whether child sits exactly one level below parent.
// Trailing zero segments are ignored on both sides.
func IsDirectChild(parent, child Code) bool {
	p := trimZeros(parent.segs)
	ch := trimZeros(child.segs)
	if len(ch) == 0 || len(ch)-1 != len(p) {
		return false
	}
	for i := range p {
		if p[i] != ch[i] {
			return false
		}
	}
	return true
}

// MaxLevel returns the deepest level among codes, or 0 for none.
func MaxLevel(codes []Code) int {
	max := 0
	for _, c := range codes {
		if l := c.Level(); l > max {
			max = l
		}
	}
	return max
}

// Level parses s and returns its level.
func Level(s string) (int, error) {
	c, err := Parse(s)
	if err != nil {
		return 0, err
	}
	return c.Level(), nil
}

func trimZeros(segs []int) []int {
	n := len(segs)
	for n > 0 && segs[n-1] == 0 {
		n--
	}
	return segs[:n]
}
