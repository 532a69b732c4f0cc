// Package quill is a static blog generator, because everyone needs to
// write one. Content units are Markdown files with YAML front matter;
// quill parses them, renders each body to a render tree, groups units by
// category and tag, resolves a permalink per unit and wraps everything in
// a chain of layouts.
package quill

import (
	"fmt"
	"html"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/otiai10/copy"
	"golang.org/x/sync/errgroup"
)

// Site is the fully parsed corpus plus the immutable structures derived
// from it. Everything is rebuilt from source on every run.
type Site struct {
	conf    *SiteConf
	units   []*ContentUnit
	layouts *LayoutRegistry
	index   Index
	freq    []string

	// Output slug per term, validated against case-fold collisions.
	catSlugs map[string]string
	tagSlugs map[string]string
}

// ReadSite runs the per-unit pipeline stages (parse, render) in parallel,
// then the whole-corpus stages (taxonomy index, permalink resolution)
// behind the join. Any failure aborts the build; there is no partial
// success.
func ReadSite(conf *SiteConf, includeDrafts bool) (*Site, error) {
	units, err := LoadUnits(conf.SourceDir, conf.ContentExtension, includeDrafts)
	if err != nil {
		return nil, err
	}

	layouts, err := LoadLayouts(conf.layoutPath())
	if err != nil {
		return nil, err
	}

	index := BuildIndex(units)
	if err := ResolveAll(units); err != nil {
		return nil, err
	}

	catSlugs, err := termSlugs(index.CategoryTerms())
	if err != nil {
		return nil, fmt.Errorf("categories: %w", err)
	}
	tagSlugs, err := termSlugs(index.TagTerms())
	if err != nil {
		return nil, fmt.Errorf("tags: %w", err)
	}

	slog.Info("read site", "units", len(units), "categories", len(index.Categories), "tags", len(index.Tags))

	return &Site{
		conf:     conf,
		units:    units,
		layouts:  layouts,
		index:    index,
		freq:     index.FrequentCategories(conf.NumFrequentCategories, conf.MinPostsForFrequentCategories),
		catSlugs: catSlugs,
		tagSlugs: tagSlugs,
	}, nil
}

// Units returns the corpus ordered newest first.
func (s *Site) Units() []*ContentUnit { return s.units }

// Posts returns only the dated posts, newest first.
func (s *Site) Posts() []*ContentUnit {
	posts := make([]*ContentUnit, 0, len(s.units))
	for _, u := range s.units {
		if u.IsPost() {
			posts = append(posts, u)
		}
	}
	return posts
}

func (s *Site) params(title string, u *ContentUnit) composeParams {
	return composeParams{
		Title:              title,
		Page:               u,
		Site:               s.conf,
		FrequentCategories: s.freq,
	}
}

// ComposeUnit wraps one rendered unit in its layout chain. A unit with no
// layout renders its body untemplated.
func (s *Site) ComposeUnit(u *ContentUnit) (template.HTML, error) {
	out, err := s.layouts.Compose(u.Layout, template.HTML(u.HTML), s.params(u.Title, u))
	if err != nil {
		return "", fmt.Errorf("%s: %w", u.ID, err)
	}
	return out, nil
}

// RenderPages writes one document per unit at its resolved permalink, a
// listing page per taxonomy term, and the front index page.
func (s *Site) RenderPages() error {
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, u := range s.units {
		u := u
		g.Go(func() error {
			out, err := s.ComposeUnit(u)
			if err != nil {
				return err
			}
			return s.writeFile(outputFile(u.Permapath), []byte(out))
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := s.renderTermPages(s.conf.CategoriesOutDir, s.index.Categories, s.index.CategoryTerms(), s.catSlugs); err != nil {
		return err
	}
	if err := s.renderTermPages(s.conf.TagsOutDir, s.index.Tags, s.index.TagTerms(), s.tagSlugs); err != nil {
		return err
	}

	return s.renderIndexPage()
}

// renderTermPages writes one listing document per term, members in index
// order, at <outDir>/<term-slug>/index.html.
func (s *Site) renderTermPages(outDir string, terms map[string][]*ContentUnit, names []string, slugs map[string]string) error {
	for _, term := range names {
		body := listingHTML(term, terms[term])
		out, err := s.composeListing(term, body)
		if err != nil {
			return fmt.Errorf("term %q: %w", term, err)
		}
		file := filepath.Join(outDir, slugs[term], "index.html")
		if err := s.writeFile(file, []byte(out)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Site) renderIndexPage() error {
	posts := s.Posts()
	if len(posts) > s.conf.MaxPostsOnIndex {
		posts = posts[:s.conf.MaxPostsOnIndex]
	}
	body := listingHTML(s.conf.SiteTitle, posts)
	out, err := s.composeListing(s.conf.SiteTitle, body)
	if err != nil {
		return err
	}
	return s.writeFile("index.html", []byte(out))
}

// composeListing wraps a generated listing document in the "list" layout
// when one is registered, and leaves it untemplated otherwise.
func (s *Site) composeListing(title, body string) (template.HTML, error) {
	layout := ""
	if s.layouts.Has("list") {
		layout = "list"
	}
	return s.layouts.Compose(layout, template.HTML(body), s.params(title, nil))
}

// listingHTML builds the body of an index document: a heading and the
// member units as dated links, in the order the taxonomy index defines.
func listingHTML(title string, members []*ContentUnit) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h1>%s</h1>\n<ul class=\"postlist\">\n", html.EscapeString(title))
	for _, u := range members {
		b.WriteString("<li><a href=\"")
		b.WriteString(html.EscapeString(u.Permapath))
		b.WriteString("\">")
		b.WriteString(html.EscapeString(u.Title))
		b.WriteString("</a>")
		if u.Dated() {
			fmt.Fprintf(&b, " <span class=\"date\">%s</span>", u.FormatDateShort())
		}
		b.WriteString("</li>\n")
	}
	b.WriteString("</ul>\n")
	return b.String()
}

func (s *Site) writeFile(relPath string, content []byte) error {
	outPath := filepath.Join(s.conf.OutDir, relPath)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o775); err != nil {
		return err
	}
	return os.WriteFile(outPath, content, 0o664)
}

// RenderAll produces the whole output tree: unit documents, term listings,
// the index page and the atom feeds.
func (s *Site) RenderAll() error {
	if err := s.RenderPages(); err != nil {
		return err
	}
	return s.RenderAtom()
}

// CopyStaticFiles copies the static asset directory into the output root,
// if it exists.
func (s *Site) CopyStaticFiles() error {
	srcDir := s.staticSrc()
	if srcDir == "" {
		return nil
	}
	dest := filepath.Join(s.conf.OutDir, filepath.Base(srcDir))
	slog.Info("copying static files", "from", srcDir, "to", dest)
	return copy.Copy(srcDir, dest)
}

func (s *Site) staticSrc() string {
	srcDir := s.conf.staticPath()
	if _, err := os.Stat(srcDir); err != nil {
		return ""
	}
	return srcDir
}
