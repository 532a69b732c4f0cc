package quill

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FrontMatter holds the metadata block of a content unit. Known keys are
// extracted into typed fields; everything else is preserved opaquely in
// Extra so that keys this tool does not understand survive a round trip.
type FrontMatter struct {
	Title      string
	Date       time.Time
	Layout     string
	Categories []string
	Tags       []string
	Permalink  string
	Draft      bool
	Extra      map[string]any

	// dateRaw and dateInvalid remember an unparseable date value so it can
	// be rejected lazily, only once a date is actually required.
	dateRaw     string
	dateInvalid bool
}

const frontMatterDelim = "---"

// hasFrontMatterDelim reports whether content opens with a front-matter
// delimiter line at all, distinguishing "no block" from "malformed block".
func hasFrontMatterDelim(content []byte) bool {
	return bytes.HasPrefix(content, []byte(frontMatterDelim+"\n")) ||
		bytes.HasPrefix(content, []byte(frontMatterDelim+"\r\n"))
}

// Date layouts accepted for the date key, tried in order.
var dateLayouts = []string{
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02",
}

// ParseFrontMatter splits raw source text into its front-matter block and
// body, and decodes the block. The text must open with a `---` line and
// contain a closing `---` line; anything else is ErrMalformedFrontMatter.
func ParseFrontMatter(content []byte) (*FrontMatter, []byte, error) {
	content = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))

	open := []byte(frontMatterDelim + "\n")
	if !bytes.HasPrefix(content, open) {
		return nil, nil, fmt.Errorf("%w: missing opening delimiter", ErrMalformedFrontMatter)
	}
	rest := content[len(open):]

	var block, body []byte
	if bytes.HasPrefix(rest, open) {
		block, body = nil, rest[len(open):]
	} else if idx := bytes.Index(rest, []byte("\n"+frontMatterDelim+"\n")); idx >= 0 {
		block, body = rest[:idx+1], rest[idx+1+len(open):]
	} else if bytes.HasSuffix(rest, []byte("\n"+frontMatterDelim)) {
		block, body = rest[:len(rest)-len(frontMatterDelim)], nil
	} else {
		return nil, nil, fmt.Errorf("%w: missing closing delimiter", ErrMalformedFrontMatter)
	}

	fields := map[string]any{}
	if err := yaml.Unmarshal(block, &fields); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedFrontMatter, err)
	}

	return frontMatterFromFields(fields), body, nil
}

func frontMatterFromFields(fields map[string]any) *FrontMatter {
	fm := &FrontMatter{Extra: map[string]any{}}

	for key, val := range fields {
		switch key {
		case "title":
			fm.Title = stringValue(val)
		case "layout":
			fm.Layout = stringValue(val)
		case "permalink":
			fm.Permalink = stringValue(val)
		case "draft":
			b, ok := val.(bool)
			fm.Draft = ok && b
		case "categories":
			fm.Categories = stringList(val)
		case "tags":
			fm.Tags = stringList(val)
		case "date":
			fm.setDate(val)
		default:
			fm.Extra[key] = val
		}
	}
	return fm
}

func (fm *FrontMatter) setDate(val any) {
	switch v := val.(type) {
	case time.Time:
		fm.Date = v
	case string:
		fm.dateRaw = v
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				fm.Date = t
				return
			}
		}
		fm.dateInvalid = true
	default:
		fm.dateRaw = fmt.Sprint(val)
		fm.dateInvalid = true
	}
}

// stringList accepts either a YAML sequence of scalars or a single scalar
// holding comma- or space-separated values, as Jekyll-era corpora use both.
func stringList(val any) []string {
	switch v := val.(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s := strings.TrimSpace(stringValue(item)); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		sep := " "
		if strings.Contains(v, ",") {
			sep = ","
		}
		var out []string
		for _, part := range strings.Split(v, sep) {
			if s := strings.TrimSpace(part); s != "" {
				out = append(out, s)
			}
		}
		return out
	case nil:
		return nil
	default:
		return []string{stringValue(v)}
	}
}

func stringValue(val any) string {
	if s, ok := val.(string); ok {
		return s
	}
	if val == nil {
		return ""
	}
	return fmt.Sprint(val)
}

// Reserialize emits the front matter back as a delimited YAML block. Known
// keys come first in a fixed order, then the preserved unknown keys sorted
// by name, so output is deterministic.
func (fm *FrontMatter) Reserialize() ([]byte, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}

	appendKV := func(key string, val *yaml.Node) {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, val)
	}
	scalar := func(s string) *yaml.Node {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
	}
	seq := func(items []string) *yaml.Node {
		n := &yaml.Node{Kind: yaml.SequenceNode}
		for _, item := range items {
			n.Content = append(n.Content, scalar(item))
		}
		return n
	}

	if fm.Title != "" {
		appendKV("title", scalar(fm.Title))
	}
	if fm.dateRaw != "" {
		appendKV("date", scalar(fm.dateRaw))
	} else if !fm.Date.IsZero() {
		appendKV("date", scalar(fm.Date.Format("2006-01-02 15:04:05 -0700")))
	}
	if fm.Layout != "" {
		appendKV("layout", scalar(fm.Layout))
	}
	if len(fm.Categories) > 0 {
		appendKV("categories", seq(fm.Categories))
	}
	if len(fm.Tags) > 0 {
		appendKV("tags", seq(fm.Tags))
	}
	if fm.Permalink != "" {
		appendKV("permalink", scalar(fm.Permalink))
	}
	if fm.Draft {
		appendKV("draft", &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: "true"})
	}

	extraKeys := make([]string, 0, len(fm.Extra))
	for k := range fm.Extra {
		extraKeys = append(extraKeys, k)
	}
	sort.Strings(extraKeys)
	for _, k := range extraKeys {
		var val yaml.Node
		if err := val.Encode(fm.Extra[k]); err != nil {
			return nil, fmt.Errorf("reserialize key %q: %w", k, err)
		}
		appendKV(k, &val)
	}

	var buf bytes.Buffer
	buf.WriteString(frontMatterDelim + "\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	buf.WriteString(frontMatterDelim + "\n")
	return buf.Bytes(), nil
}
