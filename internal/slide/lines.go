package slide

import (
	"strings"

	"github.com/rendis/typeview/pkg/schema"
)

// NormalizeToLines flattens content into individual lines. Each block is split
// on line breaks and the results are concatenated in block order. Lines are
// neither trimmed nor filtered.
func NormalizeToLines(c schema.Content) []string {
	if len(c) == 0 {
		return []string{}
	}
	lines := make([]string, 0, len(c))
	for _, block := range c {
		lines = append(lines, SplitLines(block)...)
	}
	return lines
}

// SplitLines splits s on "\n" or "\r\n". A trailing break yields a trailing
// empty line.
func SplitLines(s string) []string {
	parts := strings.Split(s, "\n")
	for i := 0; i < len(parts)-1; i++ {
		parts[i] = strings.TrimSuffix(parts[i], "\r")
	}
	return parts
}
