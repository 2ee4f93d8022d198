package scrape

import "strings"

// titleSeparator is the only split point for deriving a dish name from
// an item title. Deliberately narrow: splitting on "&" would mangle
// names like "Chicken & Waffles".
const titleSeparator = " with "

// announcementPatterns marks titles that are administrative notices
// rather than food. Matching is a case-insensitive substring test.
var announcementPatterns = []string{
	"no school",
	"school closed",
	"winter break",
	"spring break",
	"last day of school",
	"memorial day",
	"labor day",
	"teacher work day",
	"teacher institute",
	"quarter ends",
}

// NormalizeTitle derives the dish name and description from a decoded
// item title. The name is the text before the first " with " (trimmed);
// the description is always the entire original text, so side-dish
// information after the separator is preserved. Without a separator
// both are the full text.
func NormalizeTitle(decoded string) (name, description string) {
	if idx := strings.Index(decoded, titleSeparator); idx >= 0 {
		return strings.TrimSpace(decoded[:idx]), decoded
	}
	return strings.TrimSpace(decoded), decoded
}

// IsAnnouncement reports whether a decoded title is an administrative
// announcement (holiday, break, closure) rather than a menu item.
func IsAnnouncement(decoded string) bool {
	lower := strings.ToLower(decoded)
	for _, pattern := range announcementPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}
