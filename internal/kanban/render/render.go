// Package render turns task descriptions, which are markdown, into plain
// text for the board and CLI.
package render

import (
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

const ellipsis = "…"

// Plain strips markdown syntax from a description. Blocks end up on their
// own lines and list items get a bullet.
func Plain(markdown string) string {
	src := []byte(markdown)
	doc := goldmark.DefaultParser().Parse(text.NewReader(src))

	var b strings.Builder
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.Text:
			if !entering {
				break
			}
			b.Write(node.Segment.Value(src))
			switch {
			case node.HardLineBreak():
				b.WriteByte('\n')
			case node.SoftLineBreak():
				b.WriteByte(' ')
			}
		case *ast.String:
			if entering {
				b.Write(node.Value)
			}
		case *ast.ListItem:
			if entering {
				b.WriteString("• ")
			}
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			if entering {
				lines := n.Lines()
				for i := 0; i < lines.Len(); i++ {
					seg := lines.At(i)
					b.Write(seg.Value(src))
				}
				b.WriteByte('\n')
			}
			return ast.WalkSkipChildren, nil
		case *ast.Paragraph, *ast.TextBlock, *ast.Heading:
			if !entering {
				b.WriteByte('\n')
			}
		}
		return ast.WalkContinue, nil
	})

	var lines []string
	for _, line := range strings.Split(b.String(), "\n") {
		if line = strings.TrimRight(line, " "); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// Preview returns at most maxLines lines of the plain description, each cut
// to width runes. An ellipsis marks anything dropped.
func Preview(markdown string, maxLines, width int) []string {
	plain := Plain(markdown)
	if plain == "" || maxLines <= 0 {
		return nil
	}

	lines := strings.Split(plain, "\n")
	cut := len(lines) > maxLines
	if cut {
		lines = lines[:maxLines]
	}
	for i, line := range lines {
		lines[i] = Truncate(line, width)
	}
	if cut {
		last := lines[len(lines)-1]
		if !strings.HasSuffix(last, ellipsis) {
			lines[len(lines)-1] = Truncate(last+" "+ellipsis, width)
		}
	}
	return lines
}

// Summary is the first line of the plain description, cut to width runes.
// Unlike Preview it does not mark the lines that follow.
func Summary(markdown string, width int) string {
	first, _, _ := strings.Cut(Plain(markdown), "\n")
	return Truncate(first, width)
}

// Truncate cuts s to width runes, ending with an ellipsis when shortened.
// A width of zero or less disables truncation.
func Truncate(s string, width int) string {
	if width <= 0 || utf8.RuneCountInString(s) <= width {
		return s
	}
	if width == 1 {
		return ellipsis
	}
	runes := []rune(s)
	return string(runes[:width-1]) + ellipsis
}
