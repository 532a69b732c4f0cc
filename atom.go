package quill

import (
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	atom "github.com/thomas11/atomgenerator"
)

// RenderAtom writes the site-wide feed to index.xml plus one feed per
// category and tag, next to the term's listing page.
func (s *Site) RenderAtom() error {
	if s.conf.BaseURL == "" {
		slog.Warn("skipping atom feeds, no BaseURL configured")
		return nil
	}

	if err := s.renderAndSaveFeed(s.conf.SiteTitle, "", "index.xml", s.Posts()); err != nil {
		return err
	}

	if err := s.renderTermFeeds(s.conf.CategoriesOutDir, s.index.Categories, s.index.CategoryTerms(), s.catSlugs); err != nil {
		return err
	}
	return s.renderTermFeeds(s.conf.TagsOutDir, s.index.Tags, s.index.TagTerms(), s.tagSlugs)
}

func (s *Site) renderTermFeeds(outDir string, terms map[string][]*ContentUnit, names []string, slugs map[string]string) error {
	for _, term := range names {
		title := s.conf.SiteTitle + ` ` + term
		relURL := outDir + "/" + slugs[term] + "/"
		filePath := filepath.Join(outDir, slugs[term]+".xml")

		if err := s.renderAndSaveFeed(title, relURL, filePath, terms[term]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Site) renderFeed(title, relURL string, units []*ContentUnit) ([]byte, error) {
	feedURL := s.conf.BaseURL
	if len(relURL) > 0 {
		if relURL[0] == '/' {
			relURL = relURL[1:]
		}
		feedURL += relURL
	}

	feed := atom.Feed{
		Title:   title,
		Link:    feedURL,
		PubDate: time.Now(),
	}
	feed.AddAuthor(atom.Author{
		Name: s.conf.Author,
		Uri:  s.conf.AuthorURI,
	})

	for _, u := range units {
		// Undated units have no meaningful feed entry.
		if !u.Dated() {
			continue
		}
		feed.AddEntry(s.entryForUnit(u))
	}

	errs := feed.Validate()
	if len(errs) > 0 {
		for _, e := range errs {
			slog.Error("atom feed is not valid", "feed", title, "error", e)
		}
		return nil, errs[0]
	}

	return feed.GenXml()
}

func (s *Site) entryForUnit(u *ContentUnit) *atom.Entry {
	e := &atom.Entry{
		Title:   u.Title,
		Link:    strings.TrimSuffix(s.conf.BaseURL, "/") + u.Permapath,
		PubDate: u.Date,
		Content: u.HTML,
	}
	// A blurb front-matter key, when present, becomes the entry summary.
	if blurb, ok := u.Extra["blurb"].(string); ok {
		e.Description = blurb
	}

	for _, cat := range u.Categories {
		e.AddCategory(atom.Category{Term: cat})
	}
	return e
}

func (s *Site) renderAndSaveFeed(title, relURL, filePath string, units []*ContentUnit) error {
	atomXml, err := s.renderFeed(title, relURL, units)
	if err != nil {
		return err
	}
	return s.writeFile(filePath, atomXml)
}
