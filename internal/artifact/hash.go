package artifact

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash computes the content digest used for change detection. Two syncs
// with byte-identical content hash equal and do not create a new version.
func Hash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
