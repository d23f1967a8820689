// Package batch turns validated certificate requests into the parallel
// arrays a bulk on-chain mint expects, plus the off-chain index drafts that
// mirror them.
package batch

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/vaibhaw-/CertR/internal/certr/index"
	"github.com/vaibhaw-/CertR/internal/certr/metadata"
	"github.com/vaibhaw-/CertR/internal/certr/parser"
)

// ErrDigestCollision reports two distinct requests hashing identically.
// Certificate ids are part of the hash input, so this can only happen if
// canonicalization is broken: it is fatal, never retried.
var ErrDigestCollision = errors.New("distinct requests produced identical metadata digests")

// Payload carries the three index-aligned sequences of a bulk-issue call.
// Index i across all three describes one certificate; misalignment would
// silently assign one recipient another recipient's hash and locator.
type Payload struct {
	Receivers      []common.Address
	MetadataURIs   []string
	MetadataHashes []common.Hash
}

// Len returns the batch size.
func (p Payload) Len() int { return len(p.Receivers) }

// Result is an assembled batch: the on-chain payload, the per-request
// metadata blobs, and one index record draft per request with TokenID unset
// until the chain assigns it.
type Result struct {
	Payload  Payload
	Metadata []metadata.Metadata
	Records  []index.Record
}

// Options configures assembly. The zero value uses the default locator
// prefix and a fresh certificate id per request.
type Options struct {
	LocatorPrefix string

	// NewID overrides certificate-id generation; tests use it to pin ids.
	NewID func() string
}

func (o Options) newID() string {
	if o.NewID != nil {
		return o.NewID()
	}
	return metadata.NewCertificateID()
}

// Assemble builds the batch for the given requests in input order.
// Guarantees: all output sequences have length len(requests); certificate
// ids are unique within the batch; digests are pairwise distinct.
func Assemble(requests []parser.CertificateRequest, opts Options) (*Result, error) {
	res := &Result{
		Payload: Payload{
			Receivers:      make([]common.Address, 0, len(requests)),
			MetadataURIs:   make([]string, 0, len(requests)),
			MetadataHashes: make([]common.Hash, 0, len(requests)),
		},
		Metadata: make([]metadata.Metadata, 0, len(requests)),
		Records:  make([]index.Record, 0, len(requests)),
	}

	seenDigest := make(map[common.Hash]int, len(requests))
	seenID := make(map[string]int, len(requests))

	for i, req := range requests {
		certID := opts.newID()
		if prev, dup := seenID[certID]; dup {
			// Same failure class as a digest collision: the id generator's
			// entropy guarantee has been violated.
			return nil, fmt.Errorf("certificate id %q repeated at positions %d and %d: %w",
				certID, prev, i, ErrDigestCollision)
		}
		seenID[certID] = i

		m := metadata.Build(req.RecipientAddress, req.RecipientName, req.Program, req.IssueDate, certID)
		digest, err := metadata.Digest(m)
		if err != nil {
			return nil, fmt.Errorf("digest request %d: %w", i, err)
		}
		if prev, dup := seenDigest[digest]; dup {
			return nil, fmt.Errorf("requests %d and %d: %w", prev, i, ErrDigestCollision)
		}
		seenDigest[digest] = i

		locator := metadata.Locator(opts.LocatorPrefix, certID)

		res.Payload.Receivers = append(res.Payload.Receivers, common.HexToAddress(req.RecipientAddress))
		res.Payload.MetadataURIs = append(res.Payload.MetadataURIs, locator)
		res.Payload.MetadataHashes = append(res.Payload.MetadataHashes, digest)
		res.Metadata = append(res.Metadata, m)
		res.Records = append(res.Records, index.Record{
			RecipientAddress: req.RecipientAddress,
			RecipientName:    req.RecipientName,
			Program:          req.Program,
			IssueDate:        req.IssueDate,
			CertificateID:    certID,
			MetadataURI:      locator,
			MetadataHash:     digest.Hex(),
		})
	}

	return res, nil
}
