package notion

// Property value builders for page creation.

func Title(content string) map[string]any {
	return map[string]any{"title": textValue(content)}
}

func RichText(content string) map[string]any {
	return map[string]any{"rich_text": textValue(content)}
}

func URL(u string) map[string]any {
	return map[string]any{"url": u}
}

func Number[T int | int64 | float64](n T) map[string]any {
	return map[string]any{"number": n}
}

func Select(name string) map[string]any {
	return map[string]any{"select": map[string]any{"name": name}}
}

func MultiSelect(names []string) map[string]any {
	options := make([]map[string]any, 0, len(names))
	for _, n := range names {
		options = append(options, map[string]any{"name": n})
	}
	return map[string]any{"multi_select": options}
}

// Date sets a date property. start is formatted "2006-01-02 15:04:05".
func Date(start, timeZone string) map[string]any {
	return map[string]any{"date": map[string]any{"start": start, "time_zone": timeZone}}
}

// ExternalFile sets a files property to a single external URL.
func ExternalFile(name, u string) map[string]any {
	return map[string]any{
		"files": []map[string]any{
			{"type": "external", "name": name, "external": map[string]any{"url": u}},
		},
	}
}

// ExternalIcon is a page icon served from an external URL.
func ExternalIcon(u string) map[string]any {
	return map[string]any{"type": "external", "external": map[string]any{"url": u}}
}

func textValue(content string) []map[string]any {
	return []map[string]any{
		{"type": "text", "text": map[string]any{"content": content}},
	}
}
