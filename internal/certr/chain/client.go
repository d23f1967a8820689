// Package chain is the boundary to the certificate contract. The contract's
// internal state machine is consumed only through this call interface;
// consensus, gas strategy and multi-chain concerns live behind it.
package chain

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Certificate is the strongly-typed result of a verifyCertificate call.
// Named fields, never positional tuples: the contract's return order must
// not be able to silently reshuffle meaning.
type Certificate struct {
	Exists       bool
	Revoked      bool
	Recipient    common.Address
	MetadataURI  string
	MetadataHash common.Hash
	IssuedAt     time.Time
}

// HashLookup is the result of a verifyCertificateByHash call.
type HashLookup struct {
	Exists    bool
	TokenID   *big.Int
	Revoked   bool
	Recipient common.Address
}

// Client is the chain collaborator. All methods may fail with
// ErrUnauthorized (caller lacks the issuer role) and the mint methods with
// ErrDuplicateMetadata; transport failures before submission surface as
// *SubmissionError and are safe to retry with the same payload.
type Client interface {
	// MintOne issues a single certificate and returns its token id.
	MintOne(ctx context.Context, recipient common.Address, metadataURI string, metadataHash common.Hash) (*big.Int, error)

	// MintBatch bulk-issues certificates. The three slices must be equal
	// length and index-aligned; the returned token ids mirror input order.
	MintBatch(ctx context.Context, receivers []common.Address, metadataURIs []string, metadataHashes []common.Hash) ([]*big.Int, error)

	// Revoke marks a certificate revoked on-chain.
	Revoke(ctx context.Context, tokenID *big.Int) error

	// Verify reads a certificate's current on-chain state.
	Verify(ctx context.Context, tokenID *big.Int) (*Certificate, error)

	// VerifyByHash looks a certificate up by its metadata digest.
	VerifyByHash(ctx context.Context, metadataHash common.Hash) (*HashLookup, error)

	// HasIssuerRole reports whether the address holds the issuer role.
	HasIssuerRole(ctx context.Context, addr common.Address) (bool, error)
}
