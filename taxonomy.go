package quill

import (
	"fmt"
	"slices"
	"sort"
)

// Index groups content units by taxonomy term. Term identity is case
// sensitive: "Swift" and "swift" are distinct terms. A term exists only
// while it has members; the index is rebuilt wholesale on every build.
type Index struct {
	Categories map[string][]*ContentUnit
	Tags       map[string][]*ContentUnit
}

// BuildIndex aggregates the full unit set. Members of every term are
// ordered newest first, undated units last, ties broken by id, so
// rebuilding over an unchanged set yields an identical index.
func BuildIndex(units []*ContentUnit) Index {
	idx := Index{
		Categories: make(map[string][]*ContentUnit),
		Tags:       make(map[string][]*ContentUnit),
	}
	for _, u := range units {
		for _, term := range u.Categories {
			idx.Categories[term] = append(idx.Categories[term], u)
		}
		for _, term := range u.Tags {
			idx.Tags[term] = append(idx.Tags[term], u)
		}
	}
	for _, members := range idx.Categories {
		slices.SortFunc(members, compareUnits)
	}
	for _, members := range idx.Tags {
		slices.SortFunc(members, compareUnits)
	}
	return idx
}

// CategoryTerms returns the category names in lexical order.
func (idx Index) CategoryTerms() []string {
	return sortedTerms(idx.Categories)
}

// TagTerms returns the tag names in lexical order.
func (idx Index) TagTerms() []string {
	return sortedTerms(idx.Tags)
}

// termSlugs maps each term to its output slug. Terms are case sensitive
// but slugs fold case, so two case-distinct terms can claim the same
// listing path; that would silently overwrite one term's output, so it
// fails instead.
func termSlugs(names []string) (map[string]string, error) {
	slugs := make(map[string]string, len(names))
	bySlug := make(map[string]string, len(names))
	for _, term := range names {
		s := Slugify(term)
		if prev, taken := bySlug[s]; taken {
			return nil, fmt.Errorf("%w: terms %q and %q both resolve to %q",
				ErrAmbiguousPermalink, prev, term, s)
		}
		bySlug[s] = term
		slugs[term] = s
	}
	return slugs, nil
}

func sortedTerms(m map[string][]*ContentUnit) []string {
	terms := make([]string, 0, len(m))
	for t := range m {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	return terms
}

// FrequentCategories returns up to n category names ordered by member
// count descending (ties by name), skipping terms with fewer than minPosts
// members. Used by layouts for navigation.
func (idx Index) FrequentCategories(n, minPosts int) []string {
	terms := sortedTerms(idx.Categories)
	slices.SortStableFunc(terms, func(a, b string) int {
		return len(idx.Categories[b]) - len(idx.Categories[a])
	})

	frequent := make([]string, 0, n)
	for _, t := range terms {
		if len(frequent) == n || len(idx.Categories[t]) < minPosts {
			break
		}
		frequent = append(frequent, t)
	}
	return frequent
}
