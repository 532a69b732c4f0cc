package quill

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func mustParseUnit(t *testing.T, relPath, content string) *ContentUnit {
	t.Helper()
	u, err := ParseUnit(relPath, []byte(content))
	require.NoError(t, err)
	return u
}

func TestResolvePermalink_PostDefault(t *testing.T) {
	u := mustParseUnit(t, "2024-01-01-mastering-optionals-in-swift.md",
		"---\ntitle: Mastering Optionals in Swift\n---\nbody")

	require.Equal(t, "/2024/01/01/mastering-optionals-in-swift/", resolvePermalink(u))
}

func TestResolvePermalink_FileSlugWhenUntitled(t *testing.T) {
	u := mustParseUnit(t, "2024-05-06-some-notes.md", "---\n---\nbody")
	require.Equal(t, "/2024/05/06/some-notes/", resolvePermalink(u))
}

func TestResolvePermalink_ExplicitPattern(t *testing.T) {
	u := mustParseUnit(t, "2024-01-02-a-post.md",
		"---\ntitle: A Post\npermalink: blog/:year/:title/\n---\n")

	require.Equal(t, "/blog/2024/a-post/", resolvePermalink(u))
}

func TestResolvePermalink_PageFromSourceLocation(t *testing.T) {
	about := mustParseUnit(t, "about.md", "---\ntitle: About\n---\n")
	require.Equal(t, "/about/", resolvePermalink(about))

	nested := mustParseUnit(t, "docs/setup.md", "---\n---\n")
	require.Equal(t, "/docs/setup/", resolvePermalink(nested))

	index := mustParseUnit(t, "index.md", "---\n---\n")
	require.Equal(t, "/", resolvePermalink(index))
}

func TestResolveAll_SetsPermapaths(t *testing.T) {
	units := []*ContentUnit{
		mustParseUnit(t, "2024-01-01-one.md", "---\ntitle: One\n---\n"),
		mustParseUnit(t, "about.md", "---\n---\n"),
	}

	require.NoError(t, ResolveAll(units))
	require.Equal(t, "/2024/01/01/one/", units[0].Permapath)
	require.Equal(t, "/about/", units[1].Permapath)
}

func TestResolveAll_CollisionNamesBothIDs(t *testing.T) {
	units := []*ContentUnit{
		mustParseUnit(t, "2024-01-01-async-await.md", "---\ntitle: Async Await\n---\nv1"),
		mustParseUnit(t, "posts/2024-01-01-async-await.md", "---\ntitle: Async Await\n---\nv2"),
	}

	err := ResolveAll(units)
	require.True(t, errors.Is(err, ErrAmbiguousPermalink))
	require.Contains(t, err.Error(), "2024-01-01-async-await")
	require.Contains(t, err.Error(), "posts/2024-01-01-async-await")
}

func TestResolveAll_CollisionOnOutputFile(t *testing.T) {
	// /about/ and /about/index.html are distinct permapaths but the same
	// file on disk; the collision must be caught at the file level.
	units := []*ContentUnit{
		mustParseUnit(t, "about.md", "---\ntitle: About\n---\n"),
		mustParseUnit(t, "contact.md", "---\npermalink: /about/index.html\n---\n"),
	}

	err := ResolveAll(units)
	require.True(t, errors.Is(err, ErrAmbiguousPermalink))
	require.Contains(t, err.Error(), "about/index.html")
	require.Contains(t, err.Error(), "contact")
}

func TestOutputFile(t *testing.T) {
	require.Equal(t, "2024/01/01/x/index.html", outputFile("/2024/01/01/x/"))
	require.Equal(t, "index.html", outputFile("/"))
	require.Equal(t, "feed.xml", outputFile("/feed.xml"))
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Mastering Optionals in Swift", "mastering-optionals-in-swift"},
		{"Café au Lait!", "cafe-au-lait"},
		{"  spaces   and---dashes  ", "spaces-and-dashes"},
		{"Swift 5.9: What's New?", "swift-5-9-what-s-new"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, Slugify(tt.in), "slugify %q", tt.in)
	}
}
