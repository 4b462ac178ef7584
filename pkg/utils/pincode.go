package utils

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	PincodeLength = 6
	MaxPincode    = 999999
)

// IsValidPincode accepts exactly six ASCII digits.
func IsValidPincode(code string) bool {
	if len(code) != PincodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}

func NormalizePincode(code string) string {
	return strings.TrimSpace(code)
}

func PincodeToInt(code string) (int, error) {
	if !IsValidPincode(code) {
		return 0, fmt.Errorf("invalid pincode %q", code)
	}
	return strconv.Atoi(code)
}

func FormatPincode(n int) string {
	return fmt.Sprintf("%06d", n)
}
