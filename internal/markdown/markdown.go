package markdown

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var md = goldmark.New()

// CodeBlock is a fenced block found in a markdown document.
type CodeBlock struct {
	Info string
	Code string
}

// FirstCodeBlock returns the first fenced code block in src. An unclosed
// fence runs to the end of the document.
func FirstCodeBlock(src []byte) (CodeBlock, bool) {
	blocks := codeBlocks(src, 1)
	if len(blocks) == 0 {
		return CodeBlock{}, false
	}
	return blocks[0], true
}

// codeBlocks returns fenced code blocks in document order, stopping after
// limit blocks when limit is positive.
func codeBlocks(src []byte, limit int) []CodeBlock {
	doc := md.Parser().Parse(text.NewReader(src))

	var out []CodeBlock
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fc, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}

		var sb strings.Builder
		lines := fc.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			sb.Write(seg.Value(src))
		}
		out = append(out, CodeBlock{
			Info: string(fc.Language(src)),
			Code: sb.String(),
		})

		if limit > 0 && len(out) >= limit {
			return ast.WalkStop, nil
		}
		return ast.WalkSkipChildren, nil
	})
	return out
}
