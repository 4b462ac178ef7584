package utils

import (
	"strings"

	"github.com/segmentio/ksuid"
)

func GenKSUID() string {
	return ksuid.New().String()
}

func StrEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// FirstNonEmpty returns the first argument that is not blank.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if !StrEmpty(v) {
			return v
		}
	}
	return ""
}
