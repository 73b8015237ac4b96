package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"
)

// CalculateStringSHA256 computes the SHA-256 hash of a string.
func CalculateStringSHA256(content string) string {
	hash := sha256.New()
	hash.Write([]byte(content))
	return hex.EncodeToString(hash.Sum(nil))
}

// Fingerprint computes a content fingerprint: the SHA-256 hash of the
// text after case folding and whitespace collapsing. Two pages whose
// visible text differs only in casing or formatting share a fingerprint,
// which is what duplicate detection and the similarity network key on.
func Fingerprint(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	lastSpace := true
	for _, r := range strings.ToLower(text) {
		if unicode.IsSpace(r) {
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}
	return CalculateStringSHA256(strings.TrimSpace(b.String()))
}
