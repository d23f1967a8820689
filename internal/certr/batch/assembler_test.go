package batch

import (
	"errors"
	"fmt"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaibhaw-/CertR/internal/certr/parser"
)

func requests(n int) []parser.CertificateRequest {
	reqs := make([]parser.CertificateRequest, 0, n)
	for i := 0; i < n; i++ {
		reqs = append(reqs, parser.CertificateRequest{
			RecipientAddress: fmt.Sprintf("0x%040x", i+1),
			RecipientName:    fmt.Sprintf("Recipient %d", i),
			Program:          fmt.Sprintf("Program %d", i),
			IssueDate:        "2024-01-01",
		})
	}
	return reqs
}

func TestAssemble_AlignedSequences(t *testing.T) {
	for _, n := range []int{1, 2, 10, 50} {
		t.Run(fmt.Sprintf("size_%d", n), func(t *testing.T) {
			res, err := Assemble(requests(n), Options{})
			require.NoError(t, err)

			assert.Len(t, res.Payload.Receivers, n)
			assert.Len(t, res.Payload.MetadataURIs, n)
			assert.Len(t, res.Payload.MetadataHashes, n)
			assert.Len(t, res.Metadata, n)
			assert.Len(t, res.Records, n)

			idPattern := regexp.MustCompile(`^CERT-\d+-[0-9a-z]{9}$`)
			seenIDs := make(map[string]bool)
			seenDigests := make(map[string]bool)
			for i, rec := range res.Records {
				// Index i across all sequences describes the same certificate.
				assert.Equal(t, rec.MetadataURI, res.Payload.MetadataURIs[i])
				assert.Equal(t, rec.MetadataHash, res.Payload.MetadataHashes[i].Hex())
				assert.Equal(t, rec.RecipientAddress, "0x"+fmt.Sprintf("%040x", i+1))
				assert.Equal(t, rec.CertificateID, res.Metadata[i].CertificateID())
				assert.Zero(t, rec.TokenID, "token id is deferred to the chain")

				assert.True(t, idPattern.MatchString(rec.CertificateID))
				assert.False(t, seenIDs[rec.CertificateID], "duplicate certificate id")
				seenIDs[rec.CertificateID] = true
				assert.False(t, seenDigests[rec.MetadataHash], "duplicate digest")
				seenDigests[rec.MetadataHash] = true
			}
		})
	}
}

func TestAssemble_EndToEndScenario(t *testing.T) {
	reqs := []parser.CertificateRequest{
		{RecipientAddress: "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa1111", RecipientName: "Jane", Program: "X", IssueDate: "2024-01-01"},
		{RecipientAddress: "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb2222", RecipientName: "Jim", Program: "Y", IssueDate: "2024-01-02"},
	}
	res, err := Assemble(reqs, Options{})
	require.NoError(t, err)
	require.Equal(t, 2, res.Payload.Len())
	assert.NotEqual(t, res.Payload.MetadataHashes[0], res.Payload.MetadataHashes[1])
	assert.NotEqual(t, res.Records[0].CertificateID, res.Records[1].CertificateID)
	assert.Regexp(t, `^CERT-`, res.Records[0].CertificateID)
	assert.Regexp(t, `^CERT-`, res.Records[1].CertificateID)
}

func TestAssemble_IdenticalRequestsStillDigestDifferently(t *testing.T) {
	// Two legitimately separate issuances of the same data must not trip
	// duplicate detection: the certificate id is part of the hash input.
	req := parser.CertificateRequest{
		RecipientAddress: "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa1111",
		RecipientName:    "Jane",
		Program:          "X",
		IssueDate:        "2024-01-01",
	}
	res, err := Assemble([]parser.CertificateRequest{req, req}, Options{})
	require.NoError(t, err)
	assert.NotEqual(t, res.Payload.MetadataHashes[0], res.Payload.MetadataHashes[1])
}

func TestAssemble_DigestCollisionIsFatal(t *testing.T) {
	// Pin the id generator so identical requests canonicalize identically,
	// simulating a broken generator.
	req := parser.CertificateRequest{
		RecipientAddress: "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa1111",
		RecipientName:    "Jane",
		Program:          "X",
		IssueDate:        "2024-01-01",
	}
	_, err := Assemble([]parser.CertificateRequest{req, req}, Options{
		NewID: func() string { return "CERT-1-fixedfixd" },
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDigestCollision))
}

func TestAssemble_LocatorPrefix(t *testing.T) {
	res, err := Assemble(requests(1), Options{LocatorPrefix: "ipfs://batch7/"})
	require.NoError(t, err)
	assert.Equal(t, "ipfs://batch7/"+res.Records[0].CertificateID, res.Payload.MetadataURIs[0])
}

func TestAssemble_EmptyInput(t *testing.T) {
	res, err := Assemble(nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Payload.Len())
}
