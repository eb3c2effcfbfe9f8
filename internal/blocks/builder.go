package blocks

import (
	"slices"

	"github.com/mrlokans/weread2notion/internal/annotations"
	"github.com/mrlokans/weread2notion/internal/weread"
)

// MaxTextLength is the longest text a single block may carry.
const MaxTextLength = 2000

// SummaryHeading titles the section holding whole-book reviews.
const SummaryHeading = "点评"

// Filter restricts which plain highlights are rendered. An empty list does
// not restrict its dimension.
type Filter struct {
	Styles []int
	Colors []int
}

// Allows reports whether h should be rendered. Annotations the user
// commented on, and those without both style fields, are always kept.
func (f Filter) Allows(h weread.Highlight) bool {
	if h.HasReview() || h.Style == nil || h.ColorStyle == nil {
		return true
	}
	if len(f.Styles) > 0 && !slices.Contains(f.Styles, *h.Style) {
		return false
	}
	if len(f.Colors) > 0 && !slices.Contains(f.Colors, *h.ColorStyle) {
		return false
	}
	return true
}

// Builder renders books into block trees.
type Builder struct {
	Filter Filter
}

// NewBuilder creates a builder with the given allow-lists.
func NewBuilder(filter Filter) *Builder {
	return &Builder{Filter: filter}
}

// Build renders a book. With chapters, the tree starts with a table of
// contents and each group is preceded by its chapter heading when the
// chapter is known and abstracts are nested under their annotation. Without
// chapters, all annotations are rendered as one flat list in merged order
// and abstracts are dropped. Summaries follow under their own heading.
func (b *Builder) Build(chapters map[int]weread.Chapter, summaries []weread.Summary, groups []annotations.Group) Tree {
	t := Tree{Attachments: make(map[int]Block)}

	if chapters != nil {
		t.Blocks = append(t.Blocks, TableOfContents())
		for _, g := range groups {
			if ch, ok := chapters[g.ChapterUID]; ok {
				t.Blocks = append(t.Blocks, Heading(ch.Level, ch.Title))
			}
			for _, h := range g.Items {
				b.appendAnnotation(&t, h, true)
			}
		}
	} else {
		for _, h := range annotations.Flatten(groups) {
			b.appendAnnotation(&t, h, false)
		}
	}

	if len(summaries) > 0 {
		t.Blocks = append(t.Blocks, Heading(1, SummaryHeading))
		for _, s := range summaries {
			for _, chunk := range Chunk(s.Content) {
				t.Blocks = append(t.Blocks, Callout(chunk, s.Style, s.ColorStyle, s.ReviewID))
			}
		}
	}

	return t
}

func (b *Builder) appendAnnotation(t *Tree, h weread.Highlight, attach bool) {
	if !b.Filter.Allows(h) {
		return
	}
	for _, chunk := range Chunk(h.MarkText) {
		t.Blocks = append(t.Blocks, Callout(chunk, h.Style, h.ColorStyle, h.ReviewID))
	}
	if attach && h.Abstract != "" {
		t.Attachments[len(t.Blocks)-1] = Quote(h.Abstract)
	}
}

// Chunk splits text into len/MaxTextLength+1 pieces of at most
// MaxTextLength characters. Empty text yields one empty piece, as does a
// text whose length is an exact multiple of MaxTextLength at its end.
func Chunk(text string) []string {
	runes := []rune(text)
	n := len(runes)/MaxTextLength + 1
	chunks := make([]string, 0, n)
	for i := 0; i < n; i++ {
		start := i * MaxTextLength
		end := min(start+MaxTextLength, len(runes))
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
