package quill

import (
	"errors"
	"html/template"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeLayouts(t *testing.T, files map[string]string) *LayoutRegistry {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o664))
	}
	reg, err := LoadLayouts(dir)
	require.NoError(t, err)
	return reg
}

func TestCompose_ChainInnermostFirst(t *testing.T) {
	reg := writeLayouts(t, map[string]string{
		"base.html": "<html><title>{{.Title}}</title><body>{{.Content}}</body></html>",
		"post.html": "---\nlayout: base\n---\n<article>{{.Content}}</article>",
	})

	out, err := reg.Compose("post", template.HTML("<p>hi</p>"), composeParams{Title: "T"})
	require.NoError(t, err)
	require.Equal(t,
		"<html><title>T</title><body><article><p>hi</p></article></body></html>",
		string(out))
}

func TestCompose_IdentityWithoutLayout(t *testing.T) {
	reg := writeLayouts(t, nil)

	out, err := reg.Compose("", template.HTML("<p>raw</p>"), composeParams{})
	require.NoError(t, err)
	require.Equal(t, "<p>raw</p>", string(out))
}

func TestCompose_UnknownLayout(t *testing.T) {
	reg := writeLayouts(t, nil)

	_, err := reg.Compose("missing", template.HTML("x"), composeParams{})
	require.True(t, errors.Is(err, ErrUnknownLayout))
	require.Contains(t, err.Error(), "missing")
}

func TestCompose_CycleNamesChain(t *testing.T) {
	reg := writeLayouts(t, map[string]string{
		"a.html": "---\nlayout: b\n---\n{{.Content}}",
		"b.html": "---\nlayout: a\n---\n{{.Content}}",
	})

	_, err := reg.Compose("a", template.HTML("x"), composeParams{})
	require.True(t, errors.Is(err, ErrLayoutCycle))
	require.Contains(t, err.Error(), "a -> b -> a")
}

func TestLoadLayouts_SelfParentRejected(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.html"),
		[]byte("---\nlayout: a\n---\n{{.Content}}"), 0o664))

	_, err := LoadLayouts(dir)
	require.True(t, errors.Is(err, ErrLayoutCycle))
}

func TestLoadLayouts_RequiresOneInsertionPoint(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.html"),
		[]byte("<html>no insertion point</html>"), 0o664))

	_, err := LoadLayouts(dir)
	require.Error(t, err)
	require.Contains(t, err.Error(), "insertion point")
}

func TestLoadLayouts_MalformedFrontMatterFails(t *testing.T) {
	// A layout that opens with the delimiter but holds bad YAML must not
	// be quietly treated as having no front matter: that would drop its
	// parent declaration.
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "post.html"),
		[]byte("---\nlayout: [unclosed\n---\n{{.Content}}"), 0o664))

	_, err := LoadLayouts(dir)
	require.True(t, errors.Is(err, ErrMalformedFrontMatter))
	require.Contains(t, err.Error(), "post")
}

func TestLoadLayouts_MissingDirIsEmptyRegistry(t *testing.T) {
	reg, err := LoadLayouts(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	require.False(t, reg.Has("post"))
}

func TestCompose_MetadataPlaceholders(t *testing.T) {
	reg := writeLayouts(t, map[string]string{
		"post.html": "<h1>{{.Page.Title}}</h1><time>{{.Page.FormatDate}}</time>{{.Content}}",
	})

	u := mustParseUnit(t, "2024-01-01-hello.md", "---\ntitle: Hello\n---\nbody")
	out, err := reg.Compose("post", template.HTML("<p>b</p>"), composeParams{Title: u.Title, Page: u})
	require.NoError(t, err)
	require.Equal(t, "<h1>Hello</h1><time>January 1, 2024</time><p>b</p>", string(out))
}
