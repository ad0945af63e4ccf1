package sanitize

import (
	"github.com/microcosm-cc/bluemonday"
)

var (
	// strict removes all HTML tags and attributes. Used for single-line
	// fields: names, titles, locations, ticket tier names.
	strict = bluemonday.StrictPolicy()

	// ugc allows safe user-generated formatting (<p>, <b>, <i>, <em>,
	// <strong>, <a>, lists, <br>). Used for event descriptions and admin
	// review feedback.
	ugc = bluemonday.UGCPolicy()
)

// Text strips all HTML from input and returns plain text.
func Text(input string) string {
	return strict.Sanitize(input)
}

// HTML sanitizes input, keeping safe formatting tags and dropping scripts,
// iframes, event handlers and style attributes.
func HTML(input string) string {
	return ugc.Sanitize(input)
}

// TextSlice strips all HTML from each element.
func TextSlice(inputs []string) []string {
	if inputs == nil {
		return nil
	}
	out := make([]string, len(inputs))
	for i, input := range inputs {
		out[i] = Text(input)
	}
	return out
}
