package assistant

import "strings"

// PolicyScreen detects requests for disallowed data categories. Categories
// come from configuration so clinics can tune what counts as a violation.
type PolicyScreen struct {
	categories []string
}

// NewPolicyScreen parses a comma-separated category blocklist.
func NewPolicyScreen(blocklist string) *PolicyScreen {
	var categories []string
	for _, c := range strings.Split(blocklist, ",") {
		c = strings.ToLower(strings.TrimSpace(c))
		if c != "" {
			categories = append(categories, c)
		}
	}
	return &PolicyScreen{categories: categories}
}

// Screen returns the matched category, or "" when the message is clean.
func (p *PolicyScreen) Screen(message string) string {
	lower := strings.ToLower(message)
	for _, c := range p.categories {
		if strings.Contains(lower, c) {
			return c
		}
	}
	return ""
}
