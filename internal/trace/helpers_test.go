package trace

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

func blake3Sum(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
