// Package mdtext extracts plain text from markdown payloads.
package mdtext

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Flatten strips markdown structure from a document, returning its plain text
// with block boundaries collapsed to single newlines. Inline formatting
// (emphasis, links, code spans) contributes only its text content.
func Flatten(markdown string) string {
	src := []byte(markdown)
	doc := goldmark.DefaultParser().Parse(text.NewReader(src))

	var b strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if n.Type() == ast.TypeBlock && n.Kind() != ast.KindDocument {
			blockBreak(&b)
		}
		switch node := n.(type) {
		case *ast.Text:
			b.Write(node.Segment.Value(src))
			if node.HardLineBreak() {
				b.WriteByte('\n')
			} else if node.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.AutoLink:
			b.Write(node.URL(src))
		case *ast.FencedCodeBlock:
			writeLines(&b, node, src)
			return ast.WalkSkipChildren, nil
		case *ast.CodeBlock:
			writeLines(&b, node, src)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

func blockBreak(b *strings.Builder) {
	s := b.String()
	if len(s) == 0 || s[len(s)-1] == '\n' {
		return
	}
	b.WriteByte('\n')
}

func writeLines(b *strings.Builder, n ast.Node, src []byte) {
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(src))
	}
}
