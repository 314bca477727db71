package util

import (
	"regexp"
	"strings"
)

var taxCodePattern = regexp.MustCompile(`^[A-Z]{6}[0-9LMNPQRSTUV]{2}[ABCDEHLMPRST][0-9LMNPQRSTUV]{2}[A-Z][0-9LMNPQRSTUV]{3}[A-Z]$`)

// Check-character tables for the Italian fiscal code algorithm.
var taxCodeOddValues = map[byte]int{
	'0': 1, '1': 0, '2': 5, '3': 7, '4': 9, '5': 13, '6': 15, '7': 17, '8': 19, '9': 21,
	'A': 1, 'B': 0, 'C': 5, 'D': 7, 'E': 9, 'F': 13, 'G': 15, 'H': 17, 'I': 19, 'J': 21,
	'K': 2, 'L': 4, 'M': 18, 'N': 20, 'O': 11, 'P': 3, 'Q': 6, 'R': 8, 'S': 12, 'T': 14,
	'U': 16, 'V': 10, 'W': 22, 'X': 25, 'Y': 24, 'Z': 23,
}

func taxCodeEvenValue(c byte) int {
	if c >= '0' && c <= '9' {
		return int(c - '0')
	}
	return int(c - 'A')
}

// ValidateTaxCode checks a 16-character Italian fiscal code: shape first,
// then the check character. Accepts substitution letters in numeric
// positions.
func ValidateTaxCode(code string) bool {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !taxCodePattern.MatchString(code) {
		return false
	}

	sum := 0
	for i := 0; i < 15; i++ {
		if i%2 == 0 { // odd position, 1-indexed
			sum += taxCodeOddValues[code[i]]
		} else {
			sum += taxCodeEvenValue(code[i])
		}
	}

	return code[15] == byte('A'+sum%26)
}
