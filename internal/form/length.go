package form

import "unicode/utf16"

// InputLength counts s the way a browser applies maxlength: in UTF-16 code
// units, so characters outside the Basic Multilingual Plane count twice.
func InputLength(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// TruncateInput returns the longest prefix of s whose InputLength is at most
// max. A character is never split across the limit.
func TruncateInput(s string, max int) string {
	n := 0
	for i, r := range s {
		w := utf16.RuneLen(r)
		if n+w > max {
			return s[:i]
		}
		n += w
	}
	return s
}
