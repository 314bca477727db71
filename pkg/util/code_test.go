package util

import (
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateApplicationCode_Format(t *testing.T) {
	pattern := regexp.MustCompile(fmt.Sprintf(`^DOM-%d-[0-9A-F]{6}$`, time.Now().Year()))

	for i := 0; i < 100; i++ {
		code, err := GenerateApplicationCode()
		require.NoError(t, err)
		assert.Regexp(t, pattern, code)
	}
}

func TestGenerateApplicationCode_Varies(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := GenerateApplicationCode()
		require.NoError(t, err)
		seen[code] = true
	}
	// 100 draws from a 16M space should essentially never all collide
	assert.Greater(t, len(seen), 90)
}
