package ledger

import (
	"crypto/ecdsa"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

// LoadKey resolves a credential reference into a signing key.
// "env:NAME" reads the hex key from the named variable and
// "file:/path" reads it from disk.
func LoadKey(ref string) (*ecdsa.PrivateKey, error) {
	scheme, target, ok := strings.Cut(ref, ":")
	if !ok || target == "" {
		return nil, fmt.Errorf("%w: malformed reference", ErrCredential)
	}

	var raw string
	switch scheme {
	case "env":
		raw = os.Getenv(target)
		if raw == "" {
			return nil, fmt.Errorf("%w: %s is not set", ErrCredential, target)
		}
	case "file":
		data, err := os.ReadFile(target)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCredential, err)
		}
		raw = string(data)
	default:
		return nil, fmt.Errorf("%w: unknown scheme %q", ErrCredential, scheme)
	}

	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "0x"), "0X")

	key, err := crypto.HexToECDSA(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCredential, err)
	}
	return key, nil
}
