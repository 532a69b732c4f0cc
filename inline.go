package quill

import "strings"

// Span is an inline node inside a heading, paragraph or list item.
type Span interface{ span() }

type Text struct {
	Text string
}

type Emphasis struct {
	Spans []Span
}

type Strong struct {
	Spans []Span
}

// Code is an inline code span. Its text is verbatim; no nested markup is
// interpreted inside it.
type Code struct {
	Text string
}

type Link struct {
	Spans []Span
	URL   string
}

type Image struct {
	Alt string
	URL string
}

func (Text) span()     {}
func (Emphasis) span() {}
func (Strong) span()   {}
func (Code) span()     {}
func (Link) span()     {}
func (Image) span()    {}

// parseSpans parses inline markup. A marker without a matching closer is
// never an error: it stays in the output as literal text.
func parseSpans(s string) []Span {
	var spans []Span
	var text strings.Builder

	flush := func() {
		if text.Len() > 0 {
			spans = append(spans, Text{Text: text.String()})
			text.Reset()
		}
	}

	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s) && isPunct(s[i+1]):
			text.WriteByte(s[i+1])
			i += 2

		case c == '`':
			code, width, ok := parseCodeSpan(s[i:])
			if !ok {
				text.WriteByte(c)
				i++
				break
			}
			flush()
			spans = append(spans, code)
			i += width

		case c == '!' && i+1 < len(s) && s[i+1] == '[':
			alt, url, width, ok := parseBracketPair(s[i+1:])
			if !ok {
				text.WriteByte(c)
				i++
				break
			}
			flush()
			spans = append(spans, Image{Alt: alt, URL: url})
			i += 1 + width

		case c == '[':
			label, url, width, ok := parseBracketPair(s[i:])
			if !ok {
				text.WriteByte(c)
				i++
				break
			}
			flush()
			spans = append(spans, Link{Spans: parseSpans(label), URL: url})
			i += width

		case c == '*' || c == '_':
			marker := string(c)
			if strings.HasPrefix(s[i:], marker+marker) {
				marker += marker
			}
			inner, width, ok := parseDelimited(s[i:], marker)
			if !ok {
				text.WriteByte(c)
				i++
				break
			}
			flush()
			if len(marker) == 2 {
				spans = append(spans, Strong{Spans: parseSpans(inner)})
			} else {
				spans = append(spans, Emphasis{Spans: parseSpans(inner)})
			}
			i += width

		default:
			text.WriteByte(c)
			i++
		}
	}

	flush()
	return spans
}

// parseCodeSpan matches a backtick run at the start of s against the next
// run of the same length. Content in between is taken verbatim.
func parseCodeSpan(s string) (Code, int, bool) {
	ticks := 0
	for ticks < len(s) && s[ticks] == '`' {
		ticks++
	}

	for j := ticks; j < len(s); j++ {
		if s[j] != '`' {
			continue
		}
		run := 0
		for j+run < len(s) && s[j+run] == '`' {
			run++
		}
		if run == ticks {
			return Code{Text: s[ticks:j]}, j + run, true
		}
		j += run - 1
	}
	return Code{}, 0, false
}

// parseBracketPair matches [label](url) at the start of s.
func parseBracketPair(s string) (label, url string, width int, ok bool) {
	if len(s) == 0 || s[0] != '[' {
		return "", "", 0, false
	}
	closeBracket := strings.Index(s, "](")
	if closeBracket < 0 {
		return "", "", 0, false
	}
	closeParen := strings.IndexByte(s[closeBracket+2:], ')')
	if closeParen < 0 {
		return "", "", 0, false
	}
	label = s[1:closeBracket]
	url = s[closeBracket+2 : closeBracket+2+closeParen]
	return label, url, closeBracket + 2 + closeParen + 1, true
}

// parseDelimited matches marker...marker at the start of s. The closer must
// not be immediately preceded by whitespace, and the content must be
// non-empty, so stray asterisks in prose stay literal.
func parseDelimited(s, marker string) (inner string, width int, ok bool) {
	start := len(marker)
	for j := start; j+len(marker) <= len(s); j++ {
		if s[j:j+len(marker)] != marker {
			continue
		}
		inner = s[start:j]
		if inner == "" || endsInSpace(inner) {
			return "", 0, false
		}
		return inner, j + len(marker), true
	}
	return "", 0, false
}

func endsInSpace(s string) bool {
	return s != "" && (s[len(s)-1] == ' ' || s[len(s)-1] == '\t' || s[len(s)-1] == '\n')
}

func isPunct(c byte) bool {
	return strings.IndexByte("\\`*_{}[]()#+-.!<>|\"'~", c) >= 0
}
