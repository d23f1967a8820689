package parser

import (
	"errors"
	"fmt"
	"strings"
)

// MaxBatchSize is the upper bound on certificates per bulk-issue call,
// mirroring the contract's batchMint limit.
const MaxBatchSize = 50

var (
	// ErrBatchTooLarge rejects a validated set larger than MaxBatchSize.
	// The batch is never silently truncated.
	ErrBatchTooLarge = fmt.Errorf("batch exceeds maximum of %d certificates", MaxBatchSize)

	// ErrEmptyBatch rejects input that yields no certificate rows.
	ErrEmptyBatch = errors.New("batch contains no certificate rows")
)

// CertificateRequest is one validated issuance request. RecipientAddress is
// lowercase-normalized and 0x-prefixed; IssueDate is YYYY-MM-DD.
type CertificateRequest struct {
	RecipientAddress string
	RecipientName    string
	Program          string
	IssueDate        string
}

// RowError describes a single rejected input row. Row is the 1-based data row
// number (the header row is not counted), so an operator can point at the
// offending line in the uploaded file.
type RowError struct {
	Row    int
	Field  string
	Reason string
}

func (e RowError) String() string {
	return fmt.Sprintf("row %d: %s: %s", e.Row, e.Field, e.Reason)
}

// ValidationError carries every rejected row of a batch. Any row error fails
// the whole batch: a bulk mint is atomic on-chain, so thinning the batch
// would issue a different set than the operator reviewed.
type ValidationError struct {
	Rows []RowError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Rows))
	for _, r := range e.Rows {
		parts = append(parts, r.String())
	}
	return fmt.Sprintf("%d invalid row(s): %s", len(e.Rows), strings.Join(parts, "; "))
}
