package derive

import (
	"sort"
	"strings"
)

// ClientTable maps a label keyword to the client it identifies.
type ClientTable map[string]string

// Attribute matches every label against the keywords, case-insensitively
// and by substring, and joins the distinct client names in sorted order.
func (ct ClientTable) Attribute(labels ...string) string {
	found := make(map[string]struct{})
	for _, label := range labels {
		l := strings.ToLower(label)
		if l == "" {
			continue
		}
		for keyword, client := range ct {
			if keyword != "" && strings.Contains(l, strings.ToLower(keyword)) {
				found[client] = struct{}{}
			}
		}
	}
	if len(found) == 0 {
		return ""
	}
	names := make([]string, 0, len(found))
	for name := range found {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
