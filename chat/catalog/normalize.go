// Package catalog adapts heterogeneous commerce backends into the canonical
// product and order shapes, and dispatches per-store to the right connector.
package catalog

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const defaultCategory = "Uncategorized"

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// stripHTML flattens platform-supplied rich descriptions to plain text.
func stripHTML(s string) string {
	return strings.TrimSpace(htmlTagPattern.ReplaceAllString(s, ""))
}

// formatPrice renders the canonical currency string. Missing prices
// normalize to "$0.00" rather than failing.
func formatPrice(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

// parsePrice tolerates the string-encoded decimals both platforms emit.
func parsePrice(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0
	}
	return v
}

func orCategory(name string) string {
	if strings.TrimSpace(name) == "" {
		return defaultCategory
	}
	return name
}
