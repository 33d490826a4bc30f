package source

import (
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownReader handles MSO exports pasted into Markdown notes, typically
// inside code fences. It flattens the document back to line-oriented text
// using the goldmark AST.
type MarkdownReader struct{}

func (p *MarkdownReader) Extract(r io.Reader, filename string) (string, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	var buf strings.Builder
	var walk func(n ast.Node)
	walk = func(n ast.Node) {
		switch node := n.(type) {
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			writeBlockLines(&buf, n, src)
			return
		case *ast.Heading:
			buf.Write(node.Text(src))
			buf.WriteByte('\n')
			return
		case *ast.Paragraph, *ast.TextBlock:
			writeBlockLines(&buf, n, src)
			return
		}
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			walk(c)
		}
	}
	for c := doc.FirstChild(); c != nil; c = c.NextSibling() {
		walk(c)
	}

	return normalizeNewlines(buf.String()), nil
}

// writeBlockLines copies a block node's raw source lines, terminating the
// block with a newline when the last line lacks one.
func writeBlockLines(buf *strings.Builder, n ast.Node, src []byte) {
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(src))
	}
	if s := buf.String(); s != "" && !strings.HasSuffix(s, "\n") {
		buf.WriteByte('\n')
	}
}
