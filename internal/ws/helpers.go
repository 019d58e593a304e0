package ws

import (
	"crypto/rand"
	"encoding/hex"
)

func newConnID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "conn-unknown"
	}
	return hex.EncodeToString(b)
}
