// Package parse turns free-form device CLI output into structured values.
package parse

import "strings"

// KeyValue parses lines of "key<sep>value" text into a map, trimming
// whitespace around both sides. A separator inside parentheses does not
// split the line: the scan keeps a running nesting counter and only the
// first separator seen while the counter is exactly zero is the boundary.
// Lines with no such separator, and lines whose trimmed key is empty,
// contribute no entry. Duplicate keys keep the last value.
func KeyValue(lines []string, sep byte) map[string]string {
	kv := make(map[string]string)

	for _, line := range lines {
		depth := 0
		pos := -1

	scan:
		for i := 0; i < len(line); i++ {
			switch line[i] {
			case '(':
				depth++
			case ')':
				depth--
			case sep:
				if depth == 0 {
					pos = i
					break scan
				}
			}
		}

		if pos < 0 {
			continue
		}

		k := strings.TrimSpace(line[:pos])
		v := strings.TrimSpace(line[pos+1:])

		if k != "" {
			kv[k] = v
		}
	}

	return kv
}

// Columns splits one line of tabular device output into its cells,
// dropping the dot padding used to align columns.
func Columns(line string) []string {
	return strings.Fields(strings.ReplaceAll(line, ".", ""))
}
