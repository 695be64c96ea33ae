package importer

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// readLines returns the text of r split into lines. Input that is not valid
// UTF-8 is decoded as ISO-8859-1, the encoding most Brazilian accounting
// packages export.
func readLines(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	if !utf8.Valid(data) {
		data, err = charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("decoding latin1: %w", err)
		}
	}
	text := string(data)
	if strings.Contains(text, "\r\n") {
		return strings.Split(text, "\r\n"), nil
	}
	return strings.Split(text, "\n"), nil
}
