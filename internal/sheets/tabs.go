package sheets

import "strings"

// forbiddenTabChars are characters Google Sheets rejects in tab titles.
const forbiddenTabChars = ":\\/?*[]"

// maxTabTitleLen caps sanitized titles well under the API's 100-char limit.
const maxTabTitleLen = 80

// SanitizeTabTitle turns a display name into a legal tab title: forbidden
// characters become spaces, whitespace collapses, and the result is
// truncated. An empty result falls back to "User".
func SanitizeTabTitle(name string) string {
	replaced := strings.Map(func(r rune) rune {
		if strings.ContainsRune(forbiddenTabChars, r) {
			return ' '
		}
		return r
	}, name)

	collapsed := strings.Join(strings.Fields(replaced), " ")

	runes := []rune(collapsed)
	if len(runes) > maxTabTitleLen {
		collapsed = strings.TrimSpace(string(runes[:maxTabTitleLen]))
	}
	if collapsed == "" {
		return "User"
	}
	return collapsed
}
