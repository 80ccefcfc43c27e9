// Package isbn normalizes and converts ISBN identifiers used as join keys.
package isbn

import (
	"strconv"
	"strings"
)

// Normalize canonicalizes an ISBN string for use as a join key.
// Surrounding whitespace, inner spaces and hyphens are removed and a trailing
// lowercase x check digit is upper-cased. No checksum validation is done:
// both book sources share the same identifiers, valid or not.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	s = strings.Map(func(r rune) rune {
		if r == '-' || r == ' ' {
			return -1
		}
		return r
	}, s)
	if strings.HasSuffix(s, "x") {
		s = s[:len(s)-1] + "X"
	}
	return s
}

// Valid10 reports whether s is a well-formed ISBN-10 with a correct check digit.
func Valid10(s string) bool {
	if len(s) != 10 {
		return false
	}
	sum := 0
	for i, c := range s {
		var d int
		switch {
		case c >= '0' && c <= '9':
			d = int(c - '0')
		case c == 'X' && i == 9:
			d = 10
		default:
			return false
		}
		sum += d * (10 - i)
	}
	return sum%11 == 0
}

// To13 converts an ISBN-10 to ISBN-13 by prepending 978 and computing the check digit.
// Returns an empty string if the input is not a valid ISBN-10.
func To13(isbn10 string) string {
	if len(isbn10) != 10 {
		return ""
	}
	base := "978" + isbn10[:9]
	sum := 0
	for i, c := range base {
		d, err := strconv.Atoi(string(c))
		if err != nil {
			return ""
		}
		if i%2 == 0 {
			sum += d
		} else {
			sum += d * 3
		}
	}
	check := (10 - sum%10) % 10
	return base + strconv.Itoa(check)
}
