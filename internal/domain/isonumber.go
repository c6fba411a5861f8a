package domain

// ISO 6346 container number validation. A container number is 11 characters:
// a 3-letter owner code, a category identifier (U, J or Z), a 6-digit serial
// and a check digit derived from the first 10 characters.

// isoLetterValues maps A-Z to their ISO 6346 numeric values. The standard
// skips multiples of 11 (11, 22, 33).
var isoLetterValues = [26]int{
	10, 12, 13, 14, 15, 16, 17, 18, 19, 20, // A-J
	21, 23, 24, 25, 26, 27, 28, 29, 30, 31, // K-T
	32, 34, 35, 36, 37, 38, // U-Z
}

func charValue(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'A' && c <= 'Z':
		return isoLetterValues[c-'A'], true
	default:
		return 0, false
	}
}

// CheckDigit computes the ISO 6346 check digit for the first 10 characters
// of a container number. Returns -1 when the prefix is malformed.
func CheckDigit(prefix string) int {
	if len(prefix) != 10 {
		return -1
	}
	sum := 0
	weight := 1
	for i := 0; i < 10; i++ {
		v, ok := charValue(prefix[i])
		if !ok {
			return -1
		}
		sum += v * weight
		weight <<= 1
	}
	return (sum % 11) % 10
}

// ValidContainerNumber reports whether s is a well-formed ISO 6346 container
// number: 3 uppercase letters, a category in {U, J, Z}, 6 digits and a
// matching check digit.
func ValidContainerNumber(s string) bool {
	if len(s) != 11 {
		return false
	}
	for i := 0; i < 3; i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	switch s[3] {
	case 'U', 'J', 'Z':
	default:
		return false
	}
	for i := 4; i < 11; i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return CheckDigit(s[:10]) == int(s[10]-'0')
}
