package util

import (
	"crypto/sha1"
	"encoding/hex"
)

// ContentHash is the hex sha1 of content. The panel page uses it as ETag, so it only has to change with the content.
func ContentHash(content string) string {
	sum := sha1.Sum([]byte(content))

	return hex.EncodeToString(sum[:])
}
