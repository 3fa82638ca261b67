// Package xxhash provides content fingerprints and a synthetic tweet ID
// strategy built on the xxHash64 algorithm.
package xxhash

import (
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/tweetexport"
)

// Fingerprint returns the xxHash64 digest of s.
func Fingerprint(s string) uint64 {
	return xxhash.Sum64String(s)
}

var _ tweetexport.IDGenerator = (*IDGenerator)(nil)

// IDGenerator synthesizes IDs from the xxHash64 digest of the element text,
// reduced to ten decimal digits, followed by tweetexport.TimeSuffix.
// Like every synthetic ID, the result changes between scans.
type IDGenerator struct{}

// GenerateID returns the synthetic ID for text at time now.
func (IDGenerator) GenerateID(text string, now time.Time) string {
	return strconv.FormatUint(Fingerprint(text)%1e10, 10) + tweetexport.TimeSuffix(now)
}
