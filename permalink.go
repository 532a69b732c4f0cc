package quill

import (
	"fmt"
	"path"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Default permalink pattern for posts. Pages derive their path from their
// source location instead.
const defaultPostPattern = "/:year/:month/:day/:title/"

// resolvePermalink computes the public path of one unit: the explicit
// permalink pattern if present, otherwise the classification default.
// Recognized placeholders are :year, :month, :day and :title.
func resolvePermalink(u *ContentUnit) string {
	pattern := u.Permalink
	if pattern == "" {
		if u.IsPost() {
			pattern = defaultPostPattern
		} else {
			return pagePath(u)
		}
	}

	r := strings.NewReplacer(
		":year", u.Date.Format("2006"),
		":month", u.Date.Format("01"),
		":day", u.Date.Format("02"),
		":title", u.titleSlug(),
	)
	resolved := r.Replace(pattern)
	if !strings.HasPrefix(resolved, "/") {
		resolved = "/" + resolved
	}
	return resolved
}

// pagePath derives a page's path from its source location: directory
// components kept as-is, base name slugified, "index" mapping onto the
// directory itself.
func pagePath(u *ContentUnit) string {
	dir := path.Dir(u.ID)
	base := path.Base(u.ID)

	prefix := "/"
	if dir != "." {
		prefix += dir + "/"
	}
	if base == "index" {
		return prefix
	}
	return prefix + Slugify(base) + "/"
}

func (u *ContentUnit) titleSlug() string {
	if u.Title != "" {
		return Slugify(u.Title)
	}
	return Slugify(u.fileSlug)
}

// ResolveAll assigns Permapath to every unit and checks the whole corpus
// for collisions; two units resolving to the same path is
// ErrAmbiguousPermalink naming both ids. The collision key is the
// materialized output file, not the raw path, so /about/ and
// /about/index.html count as the same document.
func ResolveAll(units []*ContentUnit) error {
	byFile := make(map[string]string, len(units))
	for _, u := range units {
		p := resolvePermalink(u)
		file := outputFile(p)
		if prev, taken := byFile[file]; taken {
			return fmt.Errorf("%w: %q resolved by both %s and %s", ErrAmbiguousPermalink, file, prev, u.ID)
		}
		byFile[file] = u.ID
		u.Permapath = p
	}
	return nil
}

// outputFile maps a public path onto a file path relative to the output
// root. Directory-style paths get an index.html.
func outputFile(permapath string) string {
	p := strings.TrimPrefix(permapath, "/")
	if p == "" || strings.HasSuffix(p, "/") {
		p += "index.html"
	}
	return p
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify lowercases s, folds diacritics and collapses everything that is
// not a letter or digit into single hyphens.
func Slugify(s string) string {
	if folded, _, err := transform.String(stripMarks, s); err == nil {
		s = folded
	}

	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastHyphen = false
		} else if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
