package fingerprint_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/JaimeStill/attest/pkg/fingerprint"
)

func TestSumDeterministic(t *testing.T) {
	inputs := [][]byte{
		nil,
		{},
		[]byte("a"),
		[]byte("sale deed registered with sub-registrar"),
		bytesOf(0xff, 4096),
	}

	for _, in := range inputs {
		a := fingerprint.Sum(in)
		b := fingerprint.Sum(append([]byte(nil), in...))
		if a != b {
			t.Errorf("Sum(%q) not deterministic: %s != %s", truncate(in), a, b)
		}
		if len(a) != fingerprint.Size*2 {
			t.Errorf("Sum length = %d, want %d", len(a), fingerprint.Size*2)
		}
	}
}

func TestSumEmpty(t *testing.T) {
	const want = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

	if got := fingerprint.Sum(nil); got != want {
		t.Errorf("Sum(nil) = %s, want %s", got, want)
	}
	if got := fingerprint.Sum([]byte{}); got != want {
		t.Errorf("Sum([]byte{}) = %s, want %s", got, want)
	}
}

func TestSumDistinct(t *testing.T) {
	corpus := [][]byte{
		{},
		{0x00},
		{0x00, 0x00},
		{0x01},
		[]byte("lease agreement"),
		[]byte("lease agreement "),
		[]byte("Lease agreement"),
		[]byte("RERA certificate no 42"),
		[]byte("RERA certificate no 43"),
		bytesOf(0xaa, 1024),
		bytesOf(0xaa, 1025),
	}

	seen := make(map[string]int, len(corpus))
	for i, in := range corpus {
		sum := fingerprint.Sum(in)
		if j, ok := seen[sum]; ok {
			t.Errorf("collision between corpus[%d] and corpus[%d]: %s", j, i, sum)
		}
		seen[sum] = i
	}
}

func TestBytes32(t *testing.T) {
	sum := fingerprint.Sum([]byte("document"))

	t.Run("round trips plain hex", func(t *testing.T) {
		b, err := fingerprint.Bytes32(sum)
		if err != nil {
			t.Fatalf("Bytes32: %v", err)
		}
		if got := strings.ToLower(hexOf(b)); got != sum {
			t.Errorf("decoded = %s, want %s", got, sum)
		}
	})

	t.Run("accepts 0x prefix", func(t *testing.T) {
		if _, err := fingerprint.Bytes32("0x" + sum); err != nil {
			t.Fatalf("Bytes32 with prefix: %v", err)
		}
	})

	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"short", sum[:10]},
		{"non hex", strings.Repeat("zz", fingerprint.Size)},
	}

	for _, tt := range tests {
		t.Run("rejects "+tt.name, func(t *testing.T) {
			_, err := fingerprint.Bytes32(tt.in)
			if !errors.Is(err, fingerprint.ErrInvalid) {
				t.Errorf("err = %v, want ErrInvalid", err)
			}
		})
	}
}

func bytesOf(b byte, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = b
	}
	return out
}

func hexOf(b [fingerprint.Size]byte) string {
	const digits = "0123456789abcdef"
	var sb strings.Builder
	for _, c := range b {
		sb.WriteByte(digits[c>>4])
		sb.WriteByte(digits[c&0x0f])
	}
	return sb.String()
}

func truncate(b []byte) string {
	if len(b) > 16 {
		return string(b[:16]) + "..."
	}
	return string(b)
}
