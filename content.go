package quill

import (
	"cmp"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"runtime"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// ContentUnit is one post or page. It is immutable after parsing except for
// the derived fields (Doc, HTML, Permapath), each of which is computed
// exactly once by its pipeline stage before any reader consumes it.
type ContentUnit struct {
	// ID is the source path relative to the content root, slash-separated,
	// with the file extension stripped. Unique within a corpus.
	ID string

	Title      string
	Date       time.Time
	Layout     string
	Categories []string
	Tags       []string
	Permalink  string
	Draft      bool
	Extra      map[string]any
	Body       []byte

	// Doc and HTML are derived by the rendering stage.
	Doc  *Document
	HTML string

	// Permapath is the resolved public path, set by ResolveAll.
	Permapath string

	post     bool
	fileSlug string
}

var postStampRe = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})-(.+)$`)

// IsPost reports whether the unit was classified as a dated post. Posts are
// recognized by a YYYY-MM-DD- prefix on their source file name.
func (u *ContentUnit) IsPost() bool { return u.post }

// Dated reports whether the unit carries a date.
func (u *ContentUnit) Dated() bool { return !u.Date.IsZero() }

func (u *ContentUnit) FormatDate() string {
	return u.Date.Format("January 2, 2006")
}

func (u *ContentUnit) FormatDateShort() string {
	return u.Date.Format("Jan 2, 2006")
}

// ParseUnit builds a ContentUnit from one source file. relPath is the
// slash-separated path relative to the content root.
func ParseUnit(relPath string, content []byte) (*ContentUnit, error) {
	ext := path.Ext(relPath)
	id := strings.TrimSuffix(relPath, ext)

	fm, body, err := ParseFrontMatter(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", id, err)
	}

	u := &ContentUnit{
		ID:         id,
		Title:      fm.Title,
		Date:       fm.Date,
		Layout:     fm.Layout,
		Categories: dedup(fm.Categories),
		Tags:       dedup(fm.Tags),
		Permalink:  fm.Permalink,
		Draft:      fm.Draft,
		Extra:      fm.Extra,
		Body:       body,
	}

	base := path.Base(id)
	if m := postStampRe.FindStringSubmatch(base); m != nil {
		u.post = true
		u.fileSlug = m[2]

		if fm.dateInvalid {
			return nil, fmt.Errorf("%s: %w: date %q", id, ErrInvalidField, fm.dateRaw)
		}
		if u.Date.IsZero() {
			stamp, err := time.Parse("2006-01-02", m[1])
			if err != nil {
				return nil, fmt.Errorf("%s: %w: date stamp %q", id, ErrInvalidField, m[1])
			}
			u.Date = stamp
		}
	} else {
		u.fileSlug = base
	}

	return u, nil
}

// dedup drops repeated terms while preserving first-occurrence order.
func dedup(terms []string) []string {
	if len(terms) < 2 {
		return terms
	}
	seen := make(map[string]bool, len(terms))
	out := terms[:0]
	for _, t := range terms {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

// compareUnits orders units newest first, undated units last, ties broken
// by id. Used for both the corpus ordering and taxonomy member ordering.
func compareUnits(a, b *ContentUnit) int {
	switch {
	case a.Dated() && !b.Dated():
		return -1
	case !a.Dated() && b.Dated():
		return 1
	case a.Dated():
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
	}
	return cmp.Compare(a.ID, b.ID)
}

func findContentFiles(root, fileExtension string) ([]string, error) {
	files := make([]string, 0, 100)

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// Underscore directories hold layouts and other machinery,
			// not content.
			if p != root && strings.HasPrefix(d.Name(), "_") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(p, fileExtension) {
			files = append(files, p)
		}
		return nil
	})
	return files, err
}

// LoadUnits reads, parses and renders every content file under root, one
// worker task per unit. The returned slice is ordered newest first. The
// first failing unit aborts the whole load.
func LoadUnits(root, fileExtension string, includeDrafts bool) ([]*ContentUnit, error) {
	files, err := findContentFiles(root, fileExtension)
	if err != nil {
		return nil, err
	}

	parsed := make([]*ContentUnit, len(files))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			raw, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			rel, err := filepath.Rel(root, file)
			if err != nil {
				return err
			}
			u, err := ParseUnit(filepath.ToSlash(rel), raw)
			if err != nil {
				return err
			}
			doc, err := ParseMarkdown(u.Body)
			if err != nil {
				return fmt.Errorf("%s: %w", u.ID, err)
			}
			u.Doc = doc
			u.HTML = RenderHTML(doc)
			parsed[i] = u
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	units := make([]*ContentUnit, 0, len(parsed))
	for _, u := range parsed {
		if u.Draft && !includeDrafts {
			continue
		}
		units = append(units, u)
	}
	slices.SortFunc(units, compareUnits)
	return units, nil
}
