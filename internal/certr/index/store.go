// Package index mirrors issuance state off-chain for fast lookup. The index
// is a pointer cache: it is never authoritative over on-chain state, and a
// record is only written after the corresponding transaction is confirmed.
package index

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound reports a lookup miss. It is an expected outcome for
// verification lookups, not a failure.
var ErrNotFound = errors.New("certificate not found in index")

// WriteError wraps a failed index mutation. After a confirmed on-chain call
// this means the chain is ahead of the index and manual reconciliation is
// required; callers must surface it loudly.
type WriteError struct {
	Op  string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("index write (%s): %v", e.Op, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Record is one issued certificate as mirrored off-chain.
type Record struct {
	ID               string    `json:"id"`
	TokenID          int64     `json:"token_id"`
	RecipientAddress string    `json:"recipient_address"` // lowercase-normalized
	RecipientName    string    `json:"recipient_name"`
	Program          string    `json:"program"`
	IssueDate        string    `json:"issue_date"` // YYYY-MM-DD
	CertificateID    string    `json:"certificate_id"`
	MetadataURI      string    `json:"metadata_uri"`
	MetadataHash     string    `json:"metadata_hash"` // 0x-prefixed hex
	Revoked          bool      `json:"revoked"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Store is the off-chain index collaborator. Implementations must make each
// call an independent, isolated operation; correctness under concurrent batch
// submissions rests on the backend's single-row atomicity.
type Store interface {
	// Insert persists a confirmed record keyed by token id.
	Insert(ctx context.Context, rec Record) error

	// GetByTokenID returns the record for a token id, or ErrNotFound.
	GetByTokenID(ctx context.Context, tokenID int64) (*Record, error)

	// GetByCertificateID returns the record with the exact certificate id,
	// or ErrNotFound.
	GetByCertificateID(ctx context.Context, certID string) (*Record, error)

	// LatestByAddress returns the most recently created record for a
	// lowercase-normalized address, or ErrNotFound. "Most recent" is the
	// documented tie-break when a wallet holds several certificates.
	LatestByAddress(ctx context.Context, address string) (*Record, error)

	// ListByAddress returns every record for an address, newest first.
	ListByAddress(ctx context.Context, address string) ([]Record, error)

	// List returns all records ordered by creation time descending.
	List(ctx context.Context) ([]Record, error)

	// SetRevoked updates the revoked flag for a token id. Returns
	// ErrNotFound if no record exists for the token id.
	SetRevoked(ctx context.Context, tokenID int64, revoked bool) error
}
