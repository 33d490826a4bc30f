package source

import "io"

// TextReader handles plain text exports. The content passes through
// unchanged apart from newline normalization.
type TextReader struct{}

func (p *TextReader) Extract(r io.Reader, filename string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return normalizeNewlines(string(data)), nil
}
