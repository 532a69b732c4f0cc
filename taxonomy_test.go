package quill

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func unit(id string, date time.Time, categories, tags []string) *ContentUnit {
	return &ContentUnit{ID: id, Date: date, Categories: categories, Tags: tags}
}

func ids(units []*ContentUnit) []string {
	out := make([]string, len(units))
	for i, u := range units {
		out[i] = u.ID
	}
	return out
}

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestBuildIndex_MembershipAndOrder(t *testing.T) {
	units := []*ContentUnit{
		unit("a", day(1), []string{"Swift"}, nil),
		unit("b", day(3), []string{"Swift", "iOS"}, []string{"tooling"}),
		unit("c", day(2), []string{"iOS"}, nil),
		unit("d", time.Time{}, []string{"Swift"}, nil), // undated page
	}

	idx := BuildIndex(units)

	require.Equal(t, []string{"b", "a", "d"}, ids(idx.Categories["Swift"]))
	require.Equal(t, []string{"b", "c"}, ids(idx.Categories["iOS"]))
	require.Equal(t, []string{"b"}, ids(idx.Tags["tooling"]))
}

func TestBuildIndex_NoEmptyTerms(t *testing.T) {
	idx := BuildIndex([]*ContentUnit{unit("a", day(1), nil, nil)})
	require.Empty(t, idx.Categories)
	require.Empty(t, idx.Tags)
}

func TestBuildIndex_CaseSensitiveTerms(t *testing.T) {
	units := []*ContentUnit{
		unit("a", day(1), []string{"Swift"}, nil),
		unit("b", day(2), []string{"swift"}, nil),
	}

	idx := BuildIndex(units)
	require.Equal(t, []string{"a"}, ids(idx.Categories["Swift"]))
	require.Equal(t, []string{"b"}, ids(idx.Categories["swift"]))
}

func TestBuildIndex_TieBreakByID(t *testing.T) {
	units := []*ContentUnit{
		unit("z", day(1), []string{"Go"}, nil),
		unit("a", day(1), []string{"Go"}, nil),
	}

	idx := BuildIndex(units)
	require.Equal(t, []string{"a", "z"}, ids(idx.Categories["Go"]))
}

func TestBuildIndex_Idempotent(t *testing.T) {
	units := []*ContentUnit{
		unit("a", day(1), []string{"Swift", "iOS"}, []string{"x"}),
		unit("b", day(2), []string{"Swift"}, []string{"x", "y"}),
	}

	first := BuildIndex(units)
	second := BuildIndex(units)
	require.Equal(t, first, second)
}

func TestTermSlugs_CaseFoldCollision(t *testing.T) {
	// Terms are case sensitive, but their output slugs are not; two terms
	// folding to one slug must fail rather than overwrite a listing.
	_, err := termSlugs([]string{"Swift", "swift"})
	require.True(t, errors.Is(err, ErrAmbiguousPermalink))
	require.Contains(t, err.Error(), `"Swift"`)
	require.Contains(t, err.Error(), `"swift"`)

	slugs, err := termSlugs([]string{"Swift", "iOS"})
	require.NoError(t, err)
	require.Equal(t, map[string]string{"Swift": "swift", "iOS": "ios"}, slugs)
}

func TestFrequentCategories(t *testing.T) {
	units := []*ContentUnit{
		unit("a", day(1), []string{"Swift", "Go"}, nil),
		unit("b", day(2), []string{"Swift"}, nil),
		unit("c", day(3), []string{"Swift", "Go"}, nil),
		unit("d", day(4), []string{"Rust"}, nil),
	}

	idx := BuildIndex(units)
	require.Equal(t, []string{"Swift", "Go"}, idx.FrequentCategories(5, 2))
	require.Equal(t, []string{"Swift"}, idx.FrequentCategories(1, 2))
}
