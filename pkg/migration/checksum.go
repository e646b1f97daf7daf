// SPDX-License-Identifier: Apache-2.0

package migration

import (
	"crypto/sha256"
	"encoding/hex"
)

// Checksum returns a stable hex-encoded SHA-256 digest of body. The same
// algorithm is used everywhere a checksum is written (Migrate, Repair) and
// everywhere one is compared (Validate), so
// writer and validator never disagree.
func Checksum(body string) string {
	sum := sha256.Sum256([]byte(body))
	return hex.EncodeToString(sum[:])
}
