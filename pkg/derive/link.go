package derive

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var hyperlinkRe = regexp.MustCompile(`^=HYPERLINK\("([^"]*)"\s*[,;]\s*"([^"]*)"\)$`)

// IssueURL joins the tracker base URL and a key. A base URL that already
// ends with the key is returned as is.
func IssueURL(baseURL, key string) string {
	if key == "" || strings.HasSuffix(baseURL, key) {
		return baseURL
	}
	if baseURL != "" && !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return baseURL + key
}

// RenderDisplayKey renders a sheet hyperlink whose text is the key.
func RenderDisplayKey(key, baseURL string) string {
	if key == "" {
		return ""
	}
	return fmt.Sprintf(`=HYPERLINK("%s","%s")`, IssueURL(baseURL, key), key)
}

// KeyFromDisplay extracts the key from a rendered hyperlink. Plain text is
// returned trimmed.
func KeyFromDisplay(display string) string {
	s := strings.TrimSpace(display)
	if m := hyperlinkRe.FindStringSubmatch(s); len(m) > 2 {
		return m[2]
	}
	return s
}

// IsNonFinite reports whether a cell holds a NaN or infinite number,
// which the sheets cannot store.
func IsNonFinite(cell string) bool {
	f, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil {
		return false
	}
	return math.IsNaN(f) || math.IsInf(f, 0)
}
