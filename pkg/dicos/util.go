package dicos

import (
	"math/big"

	"github.com/google/uuid"
)

// GenerateUID returns a UUID derived UID under the 2.25 root
// (PS3.5 B.2), which needs no registered prefix.
func GenerateUID() string {
	id := uuid.New()
	return "2.25." + new(big.Int).SetBytes(id[:]).String()
}
