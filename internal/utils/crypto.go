package utils

import (
    "crypto/sha256"
    "encoding/hex"

    "github.com/google/uuid"
)

func SHA256Hex(s string) string {
    h := sha256.Sum256([]byte(s))
    return hex.EncodeToString(h[:])
}

// NewSessionHash derives the opaque capability token identifying an exam
// session on the realtime channel.
func NewSessionHash() string {
    return SHA256Hex(uuid.NewString())
}
