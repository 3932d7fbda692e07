package trace

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// domainKey is the BLAKE3 key for trace fingerprints: the ASCII domain name
// zero-padded to 32 bytes. Changing it changes every fingerprint.
var domainKey = [32]byte{
	'd', 'e', 'l', 't', 'a', 's', 't', 'a', 't', 'e', '.', 't', 'r', 'a', 'c', 'e',
}

// Fingerprint returns the hex BLAKE3 keyed hash of t's canonical encoding.
func Fingerprint(t Trace) (string, error) {
	data, err := t.MarshalCanonical()
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	return FingerprintBytes(data), nil
}

// FingerprintBytes hashes already-canonical trace bytes.
func FingerprintBytes(data []byte) string {
	h, err := blake3.NewKeyed(domainKey[:])
	if err != nil {
		panic("trace: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
