package utils

import "strings"

// CompactSQL collapses whitespace so queries log on a single line.
func CompactSQL(sql string) string {
	return strings.Join(strings.Fields(sql), " ")
}
