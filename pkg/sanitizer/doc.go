// Package sanitizer normalizes user-visible text before it is validated and
// stored. Transforms are plain func(string) string values combined with
// Apply or Compose:
//
//	clean := sanitizer.Compose(sanitizer.StripControl, sanitizer.SingleLine)
//	title := clean(in.Title)
package sanitizer
