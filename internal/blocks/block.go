// Package blocks turns the merged annotations of a book into the ordered list
// of content blocks written to its destination page.
package blocks

// Kind identifies the variant of a Block.
type Kind int

const (
	KindTableOfContents Kind = iota
	KindHeading
	KindCallout
	KindQuote
)

func (k Kind) String() string {
	switch k {
	case KindTableOfContents:
		return "table_of_contents"
	case KindHeading:
		return "heading"
	case KindCallout:
		return "callout"
	case KindQuote:
		return "quote"
	default:
		return "unknown"
	}
}

// Block is one content block. Fields not used by a Kind stay zero.
type Block struct {
	Kind Kind

	// Heading
	Level int

	// Heading, Callout and Quote
	Text string

	// Callout
	Style      *int
	ColorStyle *int
	ReviewID   string
}

// TableOfContents returns a table of contents marker.
func TableOfContents() Block {
	return Block{Kind: KindTableOfContents}
}

// Heading returns a chapter heading.
func Heading(level int, text string) Block {
	return Block{Kind: KindHeading, Level: level, Text: text}
}

// Callout returns one chunk of annotation text with its style metadata.
func Callout(text string, style, colorStyle *int, reviewID string) Block {
	return Block{
		Kind:       KindCallout,
		Text:       text,
		Style:      style,
		ColorStyle: colorStyle,
		ReviewID:   reviewID,
	}
}

// Quote returns a quote block.
func Quote(text string) Block {
	return Block{Kind: KindQuote, Text: text}
}

// Tree is the output of the builder. Attachments maps the index of a block
// in Blocks to a quote that is written as its child.
type Tree struct {
	Blocks      []Block
	Attachments map[int]Block
}
