package blocks

const (
	emojiDefault = "🌟"
	emojiNote    = "✍️"
)

// CalloutEmoji maps the underline style of a highlight to a callout icon.
// Notes always get the pen icon.
func CalloutEmoji(style *int, reviewID string) string {
	if reviewID != "" {
		return emojiNote
	}
	if style == nil {
		return emojiDefault
	}

	styleMapping := map[int]string{
		0: "💡", // straight underline
		1: "⭐", // background fill
	}
	if emoji, ok := styleMapping[*style]; ok {
		return emoji
	}
	return emojiDefault
}

// CalloutColor maps the highlight color to a text color of the workspace.
// Default return is "default" for unknown colors.
func CalloutColor(colorStyle *int) string {
	if colorStyle == nil {
		return "default"
	}

	colorMapping := map[int]string{
		1: "red",
		2: "purple",
		3: "blue",
		4: "green",
		5: "yellow",
	}
	if color, ok := colorMapping[*colorStyle]; ok {
		return color
	}
	return "default"
}
