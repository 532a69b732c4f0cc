package quill

import (
	"fmt"
	"html"
	"strings"
)

// RenderHTML walks a Document and emits HTML. Emission is deterministic;
// prose text is escaped, code block and code span contents are escaped but
// otherwise verbatim.
func RenderHTML(doc *Document) string {
	var b strings.Builder
	writeBlocks(&b, doc.Blocks)
	return b.String()
}

func writeBlocks(b *strings.Builder, blocks []Block) {
	for _, blk := range blocks {
		switch n := blk.(type) {
		case Heading:
			fmt.Fprintf(b, "<h%d>", n.Level)
			writeSpans(b, n.Spans)
			fmt.Fprintf(b, "</h%d>\n", n.Level)

		case Paragraph:
			b.WriteString("<p>")
			writeSpans(b, n.Spans)
			b.WriteString("</p>\n")

		case CodeBlock:
			if n.Lang != "" {
				fmt.Fprintf(b, "<pre><code class=\"language-%s\">", html.EscapeString(n.Lang))
			} else {
				b.WriteString("<pre><code>")
			}
			b.WriteString(html.EscapeString(n.Text))
			b.WriteString("</code></pre>\n")

		case List:
			tag := "ul"
			if n.Ordered {
				tag = "ol"
			}
			fmt.Fprintf(b, "<%s>\n", tag)
			for _, item := range n.Items {
				b.WriteString("<li>")
				writeSpans(b, item)
				b.WriteString("</li>\n")
			}
			fmt.Fprintf(b, "</%s>\n", tag)

		case Blockquote:
			b.WriteString("<blockquote>\n")
			writeBlocks(b, n.Blocks)
			b.WriteString("</blockquote>\n")

		case ThematicBreak:
			b.WriteString("<hr />\n")
		}
	}
}

func writeSpans(b *strings.Builder, spans []Span) {
	for _, sp := range spans {
		switch n := sp.(type) {
		case Text:
			b.WriteString(html.EscapeString(n.Text))
		case Emphasis:
			b.WriteString("<em>")
			writeSpans(b, n.Spans)
			b.WriteString("</em>")
		case Strong:
			b.WriteString("<strong>")
			writeSpans(b, n.Spans)
			b.WriteString("</strong>")
		case Code:
			b.WriteString("<code>")
			b.WriteString(html.EscapeString(n.Text))
			b.WriteString("</code>")
		case Link:
			fmt.Fprintf(b, "<a href=\"%s\">", html.EscapeString(n.URL))
			writeSpans(b, n.Spans)
			b.WriteString("</a>")
		case Image:
			fmt.Fprintf(b, "<img src=\"%s\" alt=\"%s\" />",
				html.EscapeString(n.URL), html.EscapeString(n.Alt))
		}
	}
}
