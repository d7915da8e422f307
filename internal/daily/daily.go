package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Seed returns the deterministic board seed for a date using HMAC(salt, YYYY-MM-DD).
// Every player dealt on the same date gets the same board.
func Seed(date time.Time, salt string) int64 {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	// first 8 bytes, top bit cleared so the seed stays non-negative
	return int64(binary.BigEndian.Uint64(sum[:8]) >> 1)
}
