// Package resolve maps a lookup key to a canonical token id via the
// off-chain index. The index is a pointer cache: the caller must still
// cross-check the resolved token id against the chain collaborator, which
// stays the source of truth for existence and revocation.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/vaibhaw-/CertR/internal/certr/index"
)

// KeyKind classifies a lookup key.
type KeyKind string

const (
	KindTokenID KeyKind = "tokenId"
	KindAddress KeyKind = "address"
	KindCertID  KeyKind = "certId"
)

// ErrInvalidKey reports a key value that does not fit its declared kind.
// Distinct from index.ErrNotFound, which is a clean miss.
var ErrInvalidKey = errors.New("invalid lookup key")

// DetectKind guesses the key kind from its shape: decimal digits are a token
// id, a hex address is a wallet, a CERT- prefix is a certificate id.
func DetectKind(value string) (KeyKind, error) {
	value = strings.TrimSpace(value)
	switch {
	case value == "":
		return "", fmt.Errorf("empty value: %w", ErrInvalidKey)
	case common.IsHexAddress(value):
		return KindAddress, nil
	case strings.HasPrefix(strings.ToUpper(value), "CERT-"):
		return KindCertID, nil
	default:
		if _, err := strconv.ParseInt(value, 10, 64); err == nil {
			return KindTokenID, nil
		}
		return "", fmt.Errorf("value %q matches no key kind: %w", value, ErrInvalidKey)
	}
}

// Resolve maps (kind, value) to a token id.
//
// Token ids pass through after a non-negative integer check; existence is
// the chain's call, not the index's. Addresses are lowercase-normalized and
// resolve to the wallet's most recent certificate. Certificate ids are
// exact-match. A miss returns index.ErrNotFound, an expected outcome.
func Resolve(ctx context.Context, store index.Store, kind KeyKind, value string) (int64, error) {
	value = strings.TrimSpace(value)
	switch kind {
	case KindTokenID:
		id, err := strconv.ParseInt(value, 10, 64)
		if err != nil || id < 0 {
			return 0, fmt.Errorf("token id %q: %w", value, ErrInvalidKey)
		}
		return id, nil

	case KindAddress:
		if !common.IsHexAddress(value) {
			return 0, fmt.Errorf("address %q: %w", value, ErrInvalidKey)
		}
		addr := strings.ToLower(common.HexToAddress(value).Hex())
		rec, err := store.LatestByAddress(ctx, addr)
		if err != nil {
			return 0, err
		}
		return rec.TokenID, nil

	case KindCertID:
		if value == "" {
			return 0, fmt.Errorf("empty certificate id: %w", ErrInvalidKey)
		}
		rec, err := store.GetByCertificateID(ctx, value)
		if err != nil {
			return 0, err
		}
		return rec.TokenID, nil

	default:
		return 0, fmt.Errorf("unknown key kind %q: %w", kind, ErrInvalidKey)
	}
}
