// Package listview derives the visible entry list from search, icon filter and sort key.
package listview

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/MrSnakeDoc/snote/internal/domain"
)

// SortKey selects the ordering of the visible list.
type SortKey string

const (
	SortDate  SortKey = "date"  // newest first
	SortTitle SortKey = "title" // lexicographic, case-sensitive
	SortIndex SortKey = "index" // creation order
)

// ParseSort maps a query value to a SortKey. Empty selects SortDate.
func ParseSort(s string) (SortKey, error) {
	switch SortKey(s) {
	case "", SortDate:
		return SortDate, nil
	case SortTitle:
		return SortTitle, nil
	case SortIndex:
		return SortIndex, nil
	default:
		return "", fmt.Errorf("%w: unknown sort key %q", domain.ErrValidation, s)
	}
}

// Options describe the view. Zero values mean "no filter" and SortDate.
type Options struct {
	Query string
	Icon  domain.Icon
	Sort  SortKey
}

// Apply returns a new slice with the entries matching opts, ordered by
// opts.Sort. The input slice is left untouched.
func Apply(entries []*domain.Entry, opts Options) []*domain.Entry {
	query := strings.ToLower(opts.Query)

	out := make([]*domain.Entry, 0, len(entries))
	for _, e := range entries {
		if query != "" &&
			!strings.Contains(strings.ToLower(e.Title), query) &&
			!strings.Contains(strings.ToLower(e.Preview), query) {
			continue
		}
		if opts.Icon != "" && e.Icon != opts.Icon {
			continue
		}
		out = append(out, e)
	}

	switch opts.Sort {
	case SortTitle:
		slices.SortStableFunc(out, func(a, b *domain.Entry) int { return strings.Compare(a.Title, b.Title) })
	case SortIndex:
		slices.SortStableFunc(out, func(a, b *domain.Entry) int { return cmp.Compare(a.Index, b.Index) })
	default:
		slices.SortStableFunc(out, func(a, b *domain.Entry) int { return b.Date.Compare(a.Date) })
	}
	return out
}

// UsedIcons lists the distinct icons present in entries, in first-seen order.
func UsedIcons(entries []*domain.Entry) []domain.Icon {
	seen := make(map[domain.Icon]bool)
	var icons []domain.Icon
	for _, e := range entries {
		if e.Icon == "" || seen[e.Icon] {
			continue
		}
		seen[e.Icon] = true
		icons = append(icons, e.Icon)
	}
	return icons
}
