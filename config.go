package quill

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SiteConf is the site-wide configuration, read once at startup and
// treated as read-only by the pipeline.
type SiteConf struct {
	Author, AuthorURI string
	BaseURL           string
	SiteTitle         string

	SourceDir        string
	ContentExtension string
	LayoutDir        string
	StaticFilesDir   string

	OutDir           string
	CategoriesOutDir string
	TagsOutDir       string

	MaxPostsOnIndex               int
	NumFrequentCategories         int
	MinPostsForFrequentCategories int
}

// DefaultConf returns a configuration usable without a config file, rooted
// at the given source and output directories.
func DefaultConf(sourceDir, outDir string) *SiteConf {
	conf := &SiteConf{SourceDir: sourceDir, OutDir: outDir}
	conf.applyDefaults()
	return conf
}

// ReadConf loads a JSON configuration file, fills in defaults, and
// normalizes relative paths against the file's directory so the binary can
// be invoked from anywhere.
func ReadConf(fileName string) (*SiteConf, error) {
	rawConf, err := os.ReadFile(fileName)
	if err != nil {
		return nil, err
	}

	conf := SiteConf{}
	if err = json.Unmarshal(rawConf, &conf); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", fileName, err)
	}
	conf.applyDefaults()

	baseDir := filepath.Dir(fileName)
	conf.SourceDir = normalizePath(conf.SourceDir, baseDir)
	conf.OutDir = normalizePath(conf.OutDir, baseDir)
	if conf.StaticFilesDir != "" {
		conf.StaticFilesDir = normalizePath(conf.StaticFilesDir, baseDir)
	}

	return &conf, nil
}

func (c *SiteConf) applyDefaults() {
	if c.ContentExtension == "" {
		c.ContentExtension = ".md"
	}
	if c.LayoutDir == "" {
		c.LayoutDir = "_layouts"
	}
	if c.CategoriesOutDir == "" {
		c.CategoriesOutDir = "categories"
	}
	if c.TagsOutDir == "" {
		c.TagsOutDir = "tags"
	}
	if c.MaxPostsOnIndex == 0 {
		c.MaxPostsOnIndex = 10
	}
	if c.NumFrequentCategories == 0 {
		c.NumFrequentCategories = 6
	}
	if c.MinPostsForFrequentCategories == 0 {
		c.MinPostsForFrequentCategories = 2
	}
}

// layoutPath returns the layout directory, which lives under the source
// root unless configured absolute.
func (c *SiteConf) layoutPath() string {
	if filepath.IsAbs(c.LayoutDir) {
		return c.LayoutDir
	}
	return filepath.Join(c.SourceDir, c.LayoutDir)
}

func (c *SiteConf) staticPath() string {
	if c.StaticFilesDir != "" {
		return c.StaticFilesDir
	}
	return filepath.Join(c.SourceDir, "static")
}

func normalizePath(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}
