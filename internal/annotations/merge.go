// Package annotations merges highlights and notes of one book into a single
// sequence grouped by chapter.
package annotations

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/mrlokans/weread2notion/internal/weread"
)

// Group holds the annotations of one chapter in reading order.
type Group struct {
	ChapterUID int
	Items      []weread.Highlight
}

// Merge combines highlights and positional notes, orders them by chapter and
// by the start of their range, and groups them by chapter in first-seen
// order. Entries with equal keys keep their input order, highlights first.
func Merge(highlights []weread.Highlight, notes []weread.ReviewNote) []Group {
	all := make([]weread.Highlight, 0, len(highlights)+len(notes))
	all = append(all, highlights...)
	for _, n := range notes {
		all = append(all, n.AsHighlight())
	}

	slices.SortStableFunc(all, func(a, b weread.Highlight) int {
		if c := cmp.Compare(a.ChapterUID, b.ChapterUID); c != 0 {
			return c
		}
		return cmp.Compare(RangeStart(a.Range), RangeStart(b.Range))
	})

	return group(all)
}

// Flatten returns the annotations of all groups in group order.
func Flatten(groups []Group) []weread.Highlight {
	var out []weread.Highlight
	for _, g := range groups {
		out = append(out, g.Items...)
	}
	return out
}

// RangeStart returns the numeric start of a "start-end" range. Empty or
// malformed ranges start at 0.
func RangeStart(r string) int {
	start, _, _ := strings.Cut(r, "-")
	n, err := strconv.Atoi(strings.TrimSpace(start))
	if err != nil {
		return 0
	}
	return n
}

func group(items []weread.Highlight) []Group {
	var groups []Group
	index := make(map[int]int)
	for _, item := range items {
		i, ok := index[item.ChapterUID]
		if !ok {
			i = len(groups)
			index[item.ChapterUID] = i
			groups = append(groups, Group{ChapterUID: item.ChapterUID})
		}
		groups[i].Items = append(groups[i].Items, item)
	}
	return groups
}
