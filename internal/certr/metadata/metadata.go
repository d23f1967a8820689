package metadata

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// ImagePlaceholder is the image locator present in metadata at hash time.
// The imaging collaborator swaps it after issuance; the digest is always
// computed over the placeholder form.
const ImagePlaceholder = "ipfs://placeholder"

// Attribute is one trait of a certificate. Attributes are hashed in slice
// order, so the order fixed by Build must never change once records exist.
type Attribute struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
}

// Metadata is the full certificate metadata blob. Field order here is the
// canonical JSON key order and is part of the hash input.
type Metadata struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Image       string      `json:"image"`
	Attributes  []Attribute `json:"attributes"`
}

// Build derives the metadata blob for one certificate. The attribute order
// (name, wallet, program, issue_date, certificate_id) is frozen: reordering
// changes the digest of otherwise-identical records.
func Build(recipientAddress, recipientName, program, issueDate, certificateID string) Metadata {
	return Metadata{
		Name:        fmt.Sprintf("Internship Certificate — %s", recipientName),
		Description: fmt.Sprintf("%s successfully completed %s", recipientName, program),
		Image:       ImagePlaceholder,
		Attributes: []Attribute{
			{TraitType: "name", Value: recipientName},
			{TraitType: "wallet", Value: recipientAddress},
			{TraitType: "program", Value: program},
			{TraitType: "issue_date", Value: issueDate},
			{TraitType: "certificate_id", Value: certificateID},
		},
	}
}

// CertificateID returns the certificate_id attribute, or "" if absent.
func (m Metadata) CertificateID() string {
	for _, a := range m.Attributes {
		if a.TraitType == "certificate_id" {
			return a.Value
		}
	}
	return ""
}

// CanonicalBytes returns the single canonical encoding of m: compact JSON
// with struct field order and no HTML escaping.
func CanonicalBytes(m Metadata) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(m); err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}
	// Encode appends a trailing newline that is not part of the canonical form.
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Digest computes the keccak-256 digest of the canonical encoding of m.
// It is a pure function of m: identical metadata always digests identically,
// which is what makes the digest usable as an on-chain duplicate-detection key.
func Digest(m Metadata) (common.Hash, error) {
	b, err := CanonicalBytes(m)
	if err != nil {
		return common.Hash{}, err
	}
	return crypto.Keccak256Hash(b), nil
}
