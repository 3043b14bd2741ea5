package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// GenerateOrderReference returns the human-facing code customers quote in
// their transfer note, e.g. ZV-20260314-101502-123-0042.
func GenerateOrderReference(now time.Time) string {
	now = now.UTC()

	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		n = big.NewInt(now.UnixNano() % 10000)
	}

	return fmt.Sprintf("ZV-%s-%03d-%04d",
		now.Format("20060102-150405"),
		now.Nanosecond()/int(time.Millisecond),
		n.Int64(),
	)
}
