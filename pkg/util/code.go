package util

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// GenerateApplicationCode produces a human-readable application code, e.g.
// "DOM-2026-3F9A2C". Collisions are possible in principle; the store enforces
// uniqueness with a constraint and the caller retries on conflict.
func GenerateApplicationCode() (string, error) {
	buf := make([]byte, 3)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	suffix := strings.ToUpper(hex.EncodeToString(buf))
	return fmt.Sprintf("DOM-%d-%s", time.Now().Year(), suffix), nil
}
