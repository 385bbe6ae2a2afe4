// Package fingerprint derives content-addressed identifiers from document bytes.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// Size is the length in bytes of a decoded fingerprint.
const Size = sha256.Size

// ErrInvalid is returned when a string is not a hex-encoded fingerprint.
var ErrInvalid = errors.New("invalid fingerprint")

// Sum returns the lowercase hex SHA-256 digest of data.
// Empty input is valid and yields the digest of the empty string.
func Sum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Bytes32 decodes a fingerprint produced by Sum into its fixed-length form.
// An optional "0x" prefix is accepted.
func Bytes32(fp string) ([Size]byte, error) {
	var out [Size]byte

	raw := strings.TrimPrefix(strings.TrimPrefix(fp, "0x"), "0X")
	if len(raw) != Size*2 {
		return out, fmt.Errorf("%w: want %d hex chars, got %d", ErrInvalid, Size*2, len(raw))
	}

	if _, err := hex.Decode(out[:], []byte(raw)); err != nil {
		return out, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	return out, nil
}
