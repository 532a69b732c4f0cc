package quill

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
)

// insertionPoint is the marker every layout must contain exactly once; the
// previous composition stage's output is substituted there.
const insertionPoint = "{{.Content}}"

// Layout is a named template. A layout may declare a parent in its own
// front matter (`layout: <name>`), forming a single-inheritance chain.
type Layout struct {
	Name   string
	Parent string
	tmpl   *template.Template
}

// LayoutRegistry holds all layouts of a site. It is built once at startup
// and read-only afterwards.
type LayoutRegistry struct {
	layouts map[string]*Layout
}

// LoadLayouts reads every .html file in dir as a layout named after its
// base name. A missing dir yields an empty registry, which composes every
// unit untemplated.
func LoadLayouts(dir string) (*LayoutRegistry, error) {
	reg := &LayoutRegistry{layouts: map[string]*Layout{}}

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return reg, nil
	}
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".html") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".html")
		raw, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		l, err := parseLayout(name, raw)
		if err != nil {
			return nil, err
		}
		reg.layouts[name] = l
	}
	return reg, nil
}

// parseLayout builds one layout. The front-matter block is optional for
// layouts; when present it may carry the parent layout name.
func parseLayout(name string, raw []byte) (*Layout, error) {
	l := &Layout{Name: name}

	// The front-matter block is optional for layouts, but one that opens
	// with the delimiter must be well-formed: swallowing the error here
	// would drop the parent declaration.
	body := raw
	if hasFrontMatterDelim(raw) {
		fm, rest, err := ParseFrontMatter(raw)
		if err != nil {
			return nil, fmt.Errorf("layout %q: %w", name, err)
		}
		l.Parent = fm.Layout
		body = rest
	}

	if l.Parent == name {
		return nil, fmt.Errorf("%w: layout %q names itself as parent", ErrLayoutCycle, name)
	}
	if n := bytes.Count(body, []byte(insertionPoint)); n != 1 {
		return nil, fmt.Errorf("layout %q must contain exactly one %s insertion point, found %d",
			name, insertionPoint, n)
	}

	tmpl, err := template.New(name).Parse(string(body))
	if err != nil {
		return nil, fmt.Errorf("layout %q: %w", name, err)
	}
	l.tmpl = tmpl
	return l, nil
}

// Has reports whether a layout is registered.
func (r *LayoutRegistry) Has(name string) bool {
	_, ok := r.layouts[name]
	return ok
}

// composeParams is the data visible to layout placeholders besides the
// insertion point.
type composeParams struct {
	Content            template.HTML
	Title              string
	Page               *ContentUnit
	Site               *SiteConf
	FrequentCategories []string
}

// Compose wraps content in the named layout and then in each ancestor,
// innermost first, until a layout without a parent is reached. The empty
// name is the identity composition. A walk that revisits a layout fails
// with ErrLayoutCycle naming the chain.
func (r *LayoutRegistry) Compose(name string, content template.HTML, p composeParams) (template.HTML, error) {
	visited := map[string]bool{}
	var chain []string

	for name != "" {
		if visited[name] {
			chain = append(chain, name)
			return "", fmt.Errorf("%w: %s", ErrLayoutCycle, strings.Join(chain, " -> "))
		}
		visited[name] = true
		chain = append(chain, name)

		l, ok := r.layouts[name]
		if !ok {
			return "", fmt.Errorf("%w: %q", ErrUnknownLayout, name)
		}

		p.Content = content
		var buf bytes.Buffer
		if err := l.tmpl.Execute(&buf, p); err != nil {
			return "", fmt.Errorf("layout %q: %w", name, err)
		}
		content = template.HTML(buf.String())
		name = l.Parent
	}
	return content, nil
}
