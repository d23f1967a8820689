package chain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrDuplicateMetadata reports a mint rejected because the metadata hash
	// is already anchored on-chain. Terminal for that exact payload: the
	// same data hashes the same way, so retrying cannot succeed.
	ErrDuplicateMetadata = errors.New("metadata hash already issued on-chain")

	// ErrUnauthorized reports a call from an address without the issuer role.
	ErrUnauthorized = errors.New("caller lacks issuer role")
)

// SubmissionError wraps a transport or RPC failure that happened before a
// transaction was accepted by the network. Nothing was submitted and no
// index state was written, so re-invoking with the same payload is safe.
type SubmissionError struct {
	Op  string
	Err error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("chain submission (%s): %v", e.Op, e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// RevertError reports a transaction that was mined and reverted. The tx hash
// lets an operator inspect the failure before deciding whether to retry.
type RevertError struct {
	Op     string
	TxHash common.Hash
}

func (e *RevertError) Error() string {
	return fmt.Sprintf("transaction reverted (%s): tx %s", e.Op, e.TxHash.Hex())
}

// classifyCallError maps a revert reason surfaced during gas estimation or
// a call into the package taxonomy. Reason strings come from the contract's
// require messages and OpenZeppelin's AccessControl revert format.
func classifyCallError(op string, err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "duplicate") || strings.Contains(msg, "already issued"):
		return fmt.Errorf("%s: %w", op, ErrDuplicateMetadata)
	case strings.Contains(msg, "missing role") || strings.Contains(msg, "accesscontrol") ||
		strings.Contains(msg, "unauthorized"):
		return fmt.Errorf("%s: %w", op, ErrUnauthorized)
	default:
		return &SubmissionError{Op: op, Err: err}
	}
}
