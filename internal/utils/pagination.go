// Package utils provides small helpers shared by the handler and service
// layers: query parsing, range clamping and opaque feed cursors.
package utils

import "strconv"

// AtoiDefault parses s as a base-10 int. Empty or malformed input (including
// surrounding whitespace) yields def.
//
//	utils.AtoiDefault("42", 0) // 42
//	utils.AtoiDefault("", 10)  // 10
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// ClampPageSize returns def when n <= 0 and max when n exceeds it.
func ClampPageSize(n, def, max int) int {
	if n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}

// ClampRange bounds n to [lo, hi].
func ClampRange(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
