package ledger_service

import (
	"encoding/binary"

	"golang.org/x/crypto/sha3"
)

// PeriodToken derives the opaque billing period token for a label such as "2026-02":
// the first 8 bytes of keccak256(label), big-endian. A zero result maps to 1 since zero
// is not a valid period.
func PeriodToken(label string) uint64 {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(label))
	token := binary.BigEndian.Uint64(h.Sum(nil)[:8])
	if token == 0 {
		return 1
	}
	return token
}
