package integration

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaibhaw-/CertR/internal/certr/chain"
	"github.com/vaibhaw-/CertR/internal/certr/index"
	"github.com/vaibhaw-/CertR/internal/certr/issue"
	"github.com/vaibhaw-/CertR/internal/certr/metadata"
	"github.com/vaibhaw-/CertR/internal/certr/parser"
	"github.com/vaibhaw-/CertR/internal/certr/resolve"
)

// contractSim is a stateful in-memory stand-in for the certificate contract.
// It enforces the same rules the contract does: duplicate metadata hashes are
// rejected, token ids are sequential, revocation flips a flag.
type contractSim struct {
	nextID int64
	byID   map[int64]*chain.Certificate
	byHash map[common.Hash]int64
}

func newContractSim() *contractSim {
	return &contractSim{
		byID:   make(map[int64]*chain.Certificate),
		byHash: make(map[common.Hash]int64),
	}
}

func (c *contractSim) MintOne(ctx context.Context, recipient common.Address, uri string, hash common.Hash) (*big.Int, error) {
	ids, err := c.MintBatch(ctx, []common.Address{recipient}, []string{uri}, []common.Hash{hash})
	if err != nil {
		return nil, err
	}
	return ids[0], nil
}

func (c *contractSim) MintBatch(ctx context.Context, receivers []common.Address, uris []string, hashes []common.Hash) ([]*big.Int, error) {
	for _, h := range hashes {
		if _, ok := c.byHash[h]; ok {
			return nil, chain.ErrDuplicateMetadata
		}
	}
	ids := make([]*big.Int, len(receivers))
	for i := range receivers {
		c.nextID++
		c.byID[c.nextID] = &chain.Certificate{
			Exists:       true,
			Recipient:    receivers[i],
			MetadataURI:  uris[i],
			MetadataHash: hashes[i],
			IssuedAt:     time.Now().UTC(),
		}
		c.byHash[hashes[i]] = c.nextID
		ids[i] = big.NewInt(c.nextID)
	}
	return ids, nil
}

func (c *contractSim) Revoke(ctx context.Context, tokenID *big.Int) error {
	cert, ok := c.byID[tokenID.Int64()]
	if !ok {
		return &chain.RevertError{Op: "revokeCertificate"}
	}
	cert.Revoked = true
	return nil
}

func (c *contractSim) Verify(ctx context.Context, tokenID *big.Int) (*chain.Certificate, error) {
	if cert, ok := c.byID[tokenID.Int64()]; ok {
		out := *cert
		return &out, nil
	}
	return &chain.Certificate{}, nil
}

func (c *contractSim) VerifyByHash(ctx context.Context, hash common.Hash) (*chain.HashLookup, error) {
	id, ok := c.byHash[hash]
	if !ok {
		return &chain.HashLookup{}, nil
	}
	cert := c.byID[id]
	return &chain.HashLookup{
		Exists:    true,
		TokenID:   big.NewInt(id),
		Revoked:   cert.Revoked,
		Recipient: cert.Recipient,
	}, nil
}

func (c *contractSim) HasIssuerRole(ctx context.Context, addr common.Address) (bool, error) {
	return true, nil
}

const uploadCSV = `recipient_address,recipient_name,program,issue_date
0x1111111111111111111111111111111111111111,Asha Rao,Blockchain Development Internship,2024-06-01
0x2222222222222222222222222222222222222222,Ben Ito,Smart Contract Security Internship,2024-06-02
0x1111111111111111111111111111111111111111,Asha Rao,Full Stack Web3 Internship,2024-06-15
`

// TestPipeline_CSVToVerifiedCertificates drives the whole issuance path:
// CSV upload, batch mint, index mirroring, lookup resolution, on-chain
// verification and revocation.
func TestPipeline_CSVToVerifiedCertificates(t *testing.T) {
	ctx := context.Background()
	sim := newContractSim()
	store := index.NewMemory()
	orch := issue.New(sim, store, issue.Options{})

	reqs, err := parser.ParseCSV(strings.NewReader(uploadCSV))
	require.NoError(t, err)
	require.Len(t, reqs, 3)

	recs, err := orch.IssueBatch(ctx, reqs)
	require.NoError(t, err)
	require.Len(t, recs, 3)

	// Index rows mirror the chain exactly, in request order.
	for i, rec := range recs {
		assert.Equal(t, int64(i+1), rec.TokenID)

		cert, verr := sim.Verify(ctx, big.NewInt(rec.TokenID))
		require.NoError(t, verr)
		require.True(t, cert.Exists)
		assert.Equal(t, rec.MetadataURI, cert.MetadataURI)
		assert.Equal(t, rec.MetadataHash, cert.MetadataHash.Hex())
		assert.Equal(t, rec.RecipientAddress, strings.ToLower(cert.Recipient.Hex()))
	}

	// Recomputing the canonical metadata from the indexed fields must land on
	// the hash the chain stored, or tamper evidence is broken.
	rec := recs[0]
	md := metadata.Build(rec.RecipientAddress, rec.RecipientName, rec.Program, rec.IssueDate, rec.CertificateID)
	digest, err := metadata.Digest(md)
	require.NoError(t, err)
	assert.Equal(t, rec.MetadataHash, digest.Hex())

	// Lookup by certificate id resolves to the minted token.
	tokenID, err := resolve.Resolve(ctx, store, resolve.KindCertID, rec.CertificateID)
	require.NoError(t, err)
	assert.Equal(t, rec.TokenID, tokenID)

	// Address lookup returns the wallet's most recent certificate: the repeat
	// recipient in row 3 shadows row 1.
	tokenID, err = resolve.Resolve(ctx, store, resolve.KindAddress, "0x1111111111111111111111111111111111111111")
	require.NoError(t, err)
	assert.Equal(t, recs[2].TokenID, tokenID)

	// Hash lookup on the chain agrees with the index.
	lookup, err := sim.VerifyByHash(ctx, common.HexToHash(rec.MetadataHash))
	require.NoError(t, err)
	require.True(t, lookup.Exists)
	assert.Equal(t, rec.TokenID, lookup.TokenID.Int64())

	// Revoke the first certificate: both the chain and the mirror must agree,
	// and the other certificates stay valid.
	require.NoError(t, orch.Revoke(ctx, rec.TokenID))

	cert, err := sim.Verify(ctx, big.NewInt(rec.TokenID))
	require.NoError(t, err)
	assert.True(t, cert.Revoked)

	got, err := store.GetByTokenID(ctx, rec.TokenID)
	require.NoError(t, err)
	assert.True(t, got.Revoked)

	got, err = store.GetByTokenID(ctx, recs[1].TokenID)
	require.NoError(t, err)
	assert.False(t, got.Revoked)
}

// TestPipeline_InvalidCSVLeavesNoTrace rejects the whole upload when any row
// is invalid; neither the chain nor the index may see a partial batch.
func TestPipeline_InvalidCSVLeavesNoTrace(t *testing.T) {
	ctx := context.Background()
	sim := newContractSim()
	store := index.NewMemory()
	orch := issue.New(sim, store, issue.Options{})

	badCSV := `recipient_address,recipient_name,program,issue_date
0x1111111111111111111111111111111111111111,Asha Rao,Program,2024-06-01
not-an-address,Ben Ito,Program,2024-06-02
`
	reqs, err := parser.ParseCSV(strings.NewReader(badCSV))
	var verr *parser.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Nil(t, reqs)

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Zero(t, sim.nextID)

	_ = orch // the orchestrator is never reached on a parse failure
}

// TestPipeline_DuplicateMetadataRejectedWholeBatch pins the certificate id
// generator so a re-submission reproduces the same metadata hashes, which the
// contract rejects; the index must stay at the first batch's state.
func TestPipeline_DuplicateMetadataRejectedWholeBatch(t *testing.T) {
	ctx := context.Background()
	sim := newContractSim()
	store := index.NewMemory()
	orch := issue.New(sim, store, issue.Options{})

	reqs, err := parser.ParseCSV(strings.NewReader(uploadCSV))
	require.NoError(t, err)

	recs, err := orch.IssueBatch(ctx, reqs)
	require.NoError(t, err)

	// Simulate a replay: mint the exact payload the first batch produced.
	receivers := make([]common.Address, len(recs))
	uris := make([]string, len(recs))
	hashes := make([]common.Hash, len(recs))
	for i, rec := range recs {
		receivers[i] = common.HexToAddress(rec.RecipientAddress)
		uris[i] = rec.MetadataURI
		hashes[i] = common.HexToHash(rec.MetadataHash)
	}
	_, err = sim.MintBatch(ctx, receivers, uris, hashes)
	assert.True(t, errors.Is(err, chain.ErrDuplicateMetadata))

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(recs))

	// A fresh submission of the same rows gets new certificate ids, so the
	// hashes differ and the mint goes through.
	recs2, err := orch.IssueBatch(ctx, reqs)
	require.NoError(t, err)
	for i := range recs {
		assert.NotEqual(t, recs[i].MetadataHash, recs2[i].MetadataHash)
	}
}
