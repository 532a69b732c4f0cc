package quill

import (
	"fmt"
	"regexp"
	"strings"
)

// Document is the render tree of one content unit: an ordered sequence of
// block-level nodes. Parsing is pure; the same body always yields the same
// tree.
type Document struct {
	Blocks []Block
}

// Block is a block-level node of the render tree.
type Block interface{ block() }

type Heading struct {
	Level int
	Spans []Span
}

type Paragraph struct {
	Spans []Span
}

// CodeBlock holds the verbatim contents of a fenced code block. Text is
// never interpreted as markup, whatever it contains.
type CodeBlock struct {
	Lang string
	Text string
}

type List struct {
	Ordered bool
	Items   [][]Span
}

type Blockquote struct {
	Blocks []Block
}

type ThematicBreak struct{}

func (Heading) block()       {}
func (Paragraph) block()     {}
func (CodeBlock) block()     {}
func (List) block()          {}
func (Blockquote) block()    {}
func (ThematicBreak) block() {}

var (
	fenceOpenRe = regexp.MustCompile("^(`{3,}|~{3,})[ \t]*([^`\\s]*)[ \t]*$")
	headingRe   = regexp.MustCompile(`^(#{1,6})[ \t]+(.*?)(?:[ \t]+#+)?[ \t]*$`)
	breakRe     = regexp.MustCompile(`^ {0,3}(?:(?:-[ \t]*){3,}|(?:\*[ \t]*){3,}|(?:_[ \t]*){3,})$`)
	bulletRe    = regexp.MustCompile(`^[-*+][ \t]+(.*)$`)
	orderedRe   = regexp.MustCompile(`^\d{1,9}[.)][ \t]+(.*)$`)
	indentRe    = regexp.MustCompile(`^(?:\t| {2,})[ \t]*(\S.*)$`)
)

// ParseMarkdown converts body text into a Document. The only structural
// failure is an opened fence that never closes, which returns
// ErrUnterminatedCodeBlock; malformed inline markup degrades to literal
// text instead of failing.
func ParseMarkdown(body []byte) (*Document, error) {
	text := strings.ReplaceAll(string(body), "\r\n", "\n")
	lines := strings.Split(text, "\n")

	p := &blockParser{lines: lines}
	blocks, err := p.parseBlocks()
	if err != nil {
		return nil, err
	}
	return &Document{Blocks: blocks}, nil
}

type blockParser struct {
	lines []string
	pos   int
}

func (p *blockParser) parseBlocks() ([]Block, error) {
	var blocks []Block
	for p.pos < len(p.lines) {
		line := p.lines[p.pos]

		switch {
		case strings.TrimSpace(line) == "":
			p.pos++

		case fenceOpenRe.MatchString(line):
			cb, err := p.parseFence()
			if err != nil {
				return nil, err
			}
			blocks = append(blocks, cb)

		case breakRe.MatchString(line):
			blocks = append(blocks, ThematicBreak{})
			p.pos++

		case headingRe.MatchString(line):
			m := headingRe.FindStringSubmatch(line)
			blocks = append(blocks, Heading{Level: len(m[1]), Spans: parseSpans(m[2])})
			p.pos++

		case strings.HasPrefix(line, ">"):
			bq, err := p.parseBlockquote()
			if err != nil {
				return nil, err
			}
			blocks = append(blocks, bq)

		case bulletRe.MatchString(line):
			blocks = append(blocks, p.parseList(bulletRe, false))

		case orderedRe.MatchString(line):
			blocks = append(blocks, p.parseList(orderedRe, true))

		default:
			blocks = append(blocks, p.parseParagraph())
		}
	}
	return blocks, nil
}

// parseFence consumes an opened fence through its closing line. The closer
// must repeat the opening delimiter exactly: same character, same run
// length, nothing else on the line. Lines that merely look fence-ish (a
// longer run, the other fence character) stay inside the block verbatim.
func (p *blockParser) parseFence() (Block, error) {
	m := fenceOpenRe.FindStringSubmatch(p.lines[p.pos])
	marker, lang := m[1], m[2]
	p.pos++

	var body []string
	for p.pos < len(p.lines) {
		line := p.lines[p.pos]
		if strings.TrimRight(line, " \t") == marker {
			p.pos++
			text := ""
			if len(body) > 0 {
				text = strings.Join(body, "\n") + "\n"
			}
			return CodeBlock{Lang: lang, Text: text}, nil
		}
		body = append(body, line)
		p.pos++
	}
	return nil, fmt.Errorf("%w: fence %q opened but never closed", ErrUnterminatedCodeBlock, marker)
}

func (p *blockParser) parseBlockquote() (Block, error) {
	var inner []string
	for p.pos < len(p.lines) {
		line := p.lines[p.pos]
		if !strings.HasPrefix(line, ">") {
			break
		}
		line = strings.TrimPrefix(line, ">")
		line = strings.TrimPrefix(line, " ")
		inner = append(inner, line)
		p.pos++
	}

	sub := &blockParser{lines: inner}
	blocks, err := sub.parseBlocks()
	if err != nil {
		return nil, err
	}
	return Blockquote{Blocks: blocks}, nil
}

// parseList consumes consecutive marker lines. A line indented under an
// item continues that item; a blank line or any other line ends the list.
func (p *blockParser) parseList(marker *regexp.Regexp, ordered bool) Block {
	var items [][]string
	for p.pos < len(p.lines) {
		line := p.lines[p.pos]
		if m := marker.FindStringSubmatch(line); m != nil {
			items = append(items, []string{m[1]})
			p.pos++
			continue
		}
		if m := indentRe.FindStringSubmatch(line); m != nil && len(items) > 0 {
			last := len(items) - 1
			items[last] = append(items[last], m[1])
			p.pos++
			continue
		}
		break
	}

	list := List{Ordered: ordered, Items: make([][]Span, len(items))}
	for i, item := range items {
		list.Items[i] = parseSpans(strings.Join(item, " "))
	}
	return list
}

func (p *blockParser) parseParagraph() Block {
	var para []string
	for p.pos < len(p.lines) {
		line := p.lines[p.pos]
		if strings.TrimSpace(line) == "" || p.interruptsParagraph(line) {
			break
		}
		para = append(para, strings.TrimSpace(line))
		p.pos++
	}
	return Paragraph{Spans: parseSpans(strings.Join(para, "\n"))}
}

func (p *blockParser) interruptsParagraph(line string) bool {
	return fenceOpenRe.MatchString(line) ||
		headingRe.MatchString(line) ||
		breakRe.MatchString(line) ||
		strings.HasPrefix(line, ">") ||
		bulletRe.MatchString(line) ||
		orderedRe.MatchString(line)
}
