package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateTaxCode_Valid(t *testing.T) {
	assert.True(t, ValidateTaxCode("RSSMRA85T10A562S"))
}

func TestValidateTaxCode_LowercaseAndWhitespace(t *testing.T) {
	assert.True(t, ValidateTaxCode("  rssmra85t10a562s "))
}

func TestValidateTaxCode_WrongCheckCharacter(t *testing.T) {
	assert.False(t, ValidateTaxCode("RSSMRA85T10A562Z"))
}

func TestValidateTaxCode_WrongShape(t *testing.T) {
	cases := []string{
		"",
		"RSSMRA85T10A562",   // too short
		"RSSMRA85T10A562SS", // too long
		"RSSMR185T10A562S",  // digit in the surname block
		"RSSMRA85X10A562S",  // invalid month letter
		"1234567890123456",
	}
	for _, code := range cases {
		assert.False(t, ValidateTaxCode(code), "expected %q to be rejected", code)
	}
}
