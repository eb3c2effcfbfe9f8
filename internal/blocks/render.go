package blocks

// Payload renders the block as a workspace block object.
func (b Block) Payload() map[string]any {
	switch b.Kind {
	case KindTableOfContents:
		return map[string]any{
			"type":              "table_of_contents",
			"table_of_contents": map[string]any{"color": "default"},
		}
	case KindHeading:
		kind := headingType(b.Level)
		return map[string]any{
			"type": kind,
			kind: map[string]any{
				"rich_text": richText(b.Text),
				"color":     "default",
			},
		}
	case KindCallout:
		return map[string]any{
			"type": "callout",
			"callout": map[string]any{
				"rich_text": richText(b.Text),
				"icon":      map[string]any{"type": "emoji", "emoji": CalloutEmoji(b.Style, b.ReviewID)},
				"color":     CalloutColor(b.ColorStyle),
			},
		}
	case KindQuote:
		return map[string]any{
			"type": "quote",
			"quote": map[string]any{
				"rich_text": richText(b.Text),
				"color":     "default",
			},
		}
	default:
		return nil
	}
}

// Payloads renders a list of blocks.
func Payloads(list []Block) []map[string]any {
	out := make([]map[string]any, 0, len(list))
	for _, b := range list {
		out = append(out, b.Payload())
	}
	return out
}

// headingType maps a chapter level onto the three heading sizes.
func headingType(level int) string {
	switch level {
	case 1:
		return "heading_1"
	case 2:
		return "heading_2"
	default:
		return "heading_3"
	}
}

func richText(content string) []map[string]any {
	return []map[string]any{
		{
			"type": "text",
			"text": map[string]any{"content": content},
		},
	}
}
