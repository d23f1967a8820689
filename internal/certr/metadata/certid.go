package metadata

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const (
	certIDAlphabet   = "0123456789abcdefghijklmnopqrstuvwxyz"
	certIDRandomLen  = 9
	certIDTimeFormat = "CERT-%d-%s"
)

// DefaultLocatorPrefix is prepended to certificate ids to form the metadata
// locator until a real content-addressed store is wired in.
const DefaultLocatorPrefix = "ipfs://demo/"

// NewCertificateID returns a fresh certificate identifier of the form
// CERT-<unix-ms>-<9 base36 chars>. The random component carries about 46 bits
// of entropy, enough that collisions within a 50-item batch (and across a
// process lifetime) are negligible even under concurrent generation.
func NewCertificateID() string {
	return newCertificateIDAt(time.Now())
}

func newCertificateIDAt(now time.Time) string {
	buf := make([]byte, certIDRandomLen)
	max := big.NewInt(int64(len(certIDAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand failing means the platform entropy source is broken;
			// there is no meaningful fallback for an identifier that must not collide.
			panic(fmt.Sprintf("certid: entropy source unavailable: %v", err))
		}
		buf[i] = certIDAlphabet[n.Int64()]
	}
	return fmt.Sprintf(certIDTimeFormat, now.UnixMilli(), string(buf))
}

// Locator derives the deterministic metadata locator for a certificate id.
// An empty prefix selects DefaultLocatorPrefix.
func Locator(prefix, certificateID string) string {
	if prefix == "" {
		prefix = DefaultLocatorPrefix
	}
	return prefix + certificateID
}
