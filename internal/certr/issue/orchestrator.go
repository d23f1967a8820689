// Package issue drives an issuance end to end: assemble the batch, submit
// it to the chain collaborator, and reconcile the confirmed result into the
// off-chain index. Per issuance the flow moves
// Assembled -> Submitted -> Confirmed | Reverted; index records exist only
// for confirmed issuances.
package issue

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vaibhaw-/CertR/internal/certr/batch"
	"github.com/vaibhaw-/CertR/internal/certr/chain"
	"github.com/vaibhaw-/CertR/internal/certr/index"
	"github.com/vaibhaw-/CertR/internal/certr/logger"
	"github.com/vaibhaw-/CertR/internal/certr/metrics"
	"github.com/vaibhaw-/CertR/internal/certr/parser"
)

// IndexInconsistencyError reports a confirmed on-chain state the index could
// not mirror: the chain is now ahead of the index and the listed token ids
// need manual reconciliation. This must never be swallowed.
type IndexInconsistencyError struct {
	RunID     string
	Written   []int64 // token ids mirrored before the failure
	Unwritten []int64 // token ids confirmed on-chain but absent from the index
	Err       error
}

func (e *IndexInconsistencyError) Error() string {
	return fmt.Sprintf("index behind chain (run %s): wrote %s, missing %s: %v",
		e.RunID, formatIDs(e.Written), formatIDs(e.Unwritten), e.Err)
}

func (e *IndexInconsistencyError) Unwrap() error { return e.Err }

func formatIDs(ids []int64) string {
	if len(ids) == 0 {
		return "none"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return strings.Join(parts, ",")
}

// Options configures an Orchestrator. Metrics is optional.
type Options struct {
	LocatorPrefix string
	Metrics       *metrics.Registry
}

// Orchestrator owns the issuance and revocation flows. It holds no state of
// its own between calls; correctness under concurrent use rests on the index
// collaborator's per-row atomicity.
type Orchestrator struct {
	chain chain.Client
	store index.Store
	opts  Options
}

func New(c chain.Client, s index.Store, opts Options) *Orchestrator {
	return &Orchestrator{chain: c, store: s, opts: opts}
}

func (o *Orchestrator) metric(f func(m *metrics.Registry)) {
	if o.opts.Metrics != nil {
		f(o.opts.Metrics)
	}
}

// IssueSingle issues one certificate and returns its confirmed index record.
func (o *Orchestrator) IssueSingle(ctx context.Context, req parser.CertificateRequest) (*index.Record, error) {
	recs, err := o.issue(ctx, []parser.CertificateRequest{req}, true)
	if err != nil {
		return nil, err
	}
	return &recs[0], nil
}

// IssueBatch issues up to parser.MaxBatchSize certificates in one bulk call.
// The returned records correspond positionally to the input requests. On a
// reverted or unsubmitted transaction no index record is written; the batch
// is atomic at the index level.
func (o *Orchestrator) IssueBatch(ctx context.Context, reqs []parser.CertificateRequest) ([]index.Record, error) {
	if len(reqs) == 0 {
		return nil, parser.ErrEmptyBatch
	}
	if len(reqs) > parser.MaxBatchSize {
		return nil, parser.ErrBatchTooLarge
	}
	return o.issue(ctx, reqs, false)
}

func (o *Orchestrator) issue(ctx context.Context, reqs []parser.CertificateRequest, single bool) ([]index.Record, error) {
	log := logger.L()
	runID := uuid.NewString()

	res, err := batch.Assemble(reqs, batch.Options{LocatorPrefix: o.opts.LocatorPrefix})
	if err != nil {
		return nil, fmt.Errorf("assemble batch: %w", err)
	}
	log.Infow("batch assembled", "run", runID, "size", res.Payload.Len(), "state", "assembled")

	start := time.Now()
	var tokenIDs []*big.Int
	if single {
		id, merr := o.chain.MintOne(ctx, res.Payload.Receivers[0], res.Payload.MetadataURIs[0], res.Payload.MetadataHashes[0])
		if merr != nil {
			return o.failSubmission(runID, merr)
		}
		tokenIDs = []*big.Int{id}
	} else {
		tokenIDs, err = o.chain.MintBatch(ctx, res.Payload.Receivers, res.Payload.MetadataURIs, res.Payload.MetadataHashes)
		if err != nil {
			return o.failSubmission(runID, err)
		}
	}
	o.metric(func(m *metrics.Registry) { m.ConfirmLatencySec.Observe(time.Since(start).Seconds()) })

	if len(tokenIDs) != len(reqs) {
		// Confirmed on-chain but positional correspondence is lost; nothing
		// can be mirrored safely, so every token id needs reconciliation.
		o.metric(func(m *metrics.Registry) { m.IndexWriteFailures.Inc() })
		return nil, &IndexInconsistencyError{
			RunID:     runID,
			Unwritten: toInt64s(tokenIDs),
			Err:       fmt.Errorf("chain assigned %d token ids for %d requests", len(tokenIDs), len(reqs)),
		}
	}

	log.Infow("batch confirmed", "run", runID, "size", len(tokenIDs),
		"state", "confirmed", "confirm_seconds", time.Since(start).Seconds())

	records := make([]index.Record, 0, len(reqs))
	for i := range res.Records {
		rec := res.Records[i]
		rec.ID = uuid.NewString()
		rec.TokenID = tokenIDs[i].Int64()
		if err := o.store.Insert(ctx, rec); err != nil {
			o.metric(func(m *metrics.Registry) { m.IndexWriteFailures.Inc() })
			written := make([]int64, 0, i)
			for _, r := range records {
				written = append(written, r.TokenID)
			}
			incErr := &IndexInconsistencyError{
				RunID:     runID,
				Written:   written,
				Unwritten: toInt64s(tokenIDs[i:]),
				Err:       err,
			}
			log.Errorw("index behind chain, manual reconciliation required",
				"run", runID, "err", incErr.Error())
			return nil, incErr
		}
		records = append(records, rec)
	}

	o.metric(func(m *metrics.Registry) {
		m.BatchesIssued.Inc()
		m.CertificatesIssued.Add(float64(len(records)))
	})
	log.Infow("index updated", "run", runID, "records", len(records))
	return records, nil
}

func (o *Orchestrator) failSubmission(runID string, err error) ([]index.Record, error) {
	log := logger.L()
	o.metric(func(m *metrics.Registry) { m.BatchesReverted.Inc() })
	log.Errorw("batch not confirmed, index unchanged", "run", runID, "state", "reverted", "err", err.Error())
	return nil, fmt.Errorf("issue batch: %w", err)
}

// Revoke revokes a certificate on-chain and mirrors the flag into the index
// only after confirmation. A pending or failed revoke leaves the index
// untouched: the index must never claim revocation the chain does not back.
func (o *Orchestrator) Revoke(ctx context.Context, tokenID int64) error {
	log := logger.L()
	if err := o.chain.Revoke(ctx, big.NewInt(tokenID)); err != nil {
		return fmt.Errorf("revoke token %d: %w", tokenID, err)
	}
	o.metric(func(m *metrics.Registry) { m.RevocationsConfirmed.Inc() })
	log.Infow("revocation confirmed", "token_id", tokenID)

	if err := o.store.SetRevoked(ctx, tokenID, true); err != nil {
		o.metric(func(m *metrics.Registry) { m.IndexWriteFailures.Inc() })
		incErr := &IndexInconsistencyError{
			RunID:     uuid.NewString(),
			Unwritten: []int64{tokenID},
			Err:       err,
		}
		log.Errorw("index behind chain after revoke", "token_id", tokenID, "err", err.Error())
		return incErr
	}
	return nil
}

func toInt64s(ids []*big.Int) []int64 {
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = id.Int64()
	}
	return out
}
