package models

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Account opaque caller identifier supplied by the boundary
type Account string

// ZeroAccount null account
const ZeroAccount Account = ""

var zeroAddress = common.Address{}.Hex()

// ParseAccount trims the identifier and normalizes hex addresses to their checksum form,
// so the same wallet always maps to the same key regardless of letter case.
func ParseAccount(s string) Account {
	s = strings.TrimSpace(s)
	if common.IsHexAddress(s) {
		return Account(common.HexToAddress(s).Hex())
	}
	return Account(s)
}

// IsZero reports whether the account is the null account
func (a Account) IsZero() bool {
	return a == ZeroAccount || string(a) == zeroAddress
}

func (a Account) String() string {
	return string(a)
}
