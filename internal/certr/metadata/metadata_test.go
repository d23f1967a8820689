package metadata

import (
	"regexp"
	"strings"
	"testing"
	"time"
)

func sample() Metadata {
	return Build(
		"0x742d35cc6634c0532925a3b844bc9e7595f0beb1",
		"Jane",
		"Full Stack Web3 Internship",
		"2024-01-15",
		"CERT-1700000000000-abc123xyz",
	)
}

func TestCanonicalBytes_ExactForm(t *testing.T) {
	m := Build("0xabc", "Jane", "X", "2024-01-01", "CERT-1-abcdefghi")
	got, err := CanonicalBytes(m)
	if err != nil {
		t.Fatalf("canonical bytes: %v", err)
	}
	want := `{"name":"Internship Certificate — Jane",` +
		`"description":"Jane successfully completed X",` +
		`"image":"ipfs://placeholder",` +
		`"attributes":[` +
		`{"trait_type":"name","value":"Jane"},` +
		`{"trait_type":"wallet","value":"0xabc"},` +
		`{"trait_type":"program","value":"X"},` +
		`{"trait_type":"issue_date","value":"2024-01-01"},` +
		`{"trait_type":"certificate_id","value":"CERT-1-abcdefghi"}]}`
	if string(got) != want {
		t.Fatalf("canonical form mismatch:\n got %s\nwant %s", got, want)
	}
}

func TestDigest_Deterministic(t *testing.T) {
	m := sample()
	d1, err := Digest(m)
	if err != nil {
		t.Fatalf("digest 1: %v", err)
	}
	d2, err := Digest(m)
	if err != nil {
		t.Fatalf("digest 2: %v", err)
	}
	if d1 != d2 {
		t.Fatalf("digest not deterministic: %s != %s", d1.Hex(), d2.Hex())
	}
}

func TestDigest_SensitiveToEveryAttribute(t *testing.T) {
	base := sample()
	baseDigest, err := Digest(base)
	if err != nil {
		t.Fatalf("digest base: %v", err)
	}

	for i := range base.Attributes {
		mutated := sample()
		mutated.Attributes[i].Value += "x"
		d, err := Digest(mutated)
		if err != nil {
			t.Fatalf("digest mutated attribute %d: %v", i, err)
		}
		if d == baseDigest {
			t.Fatalf("changing attribute %q did not change digest", base.Attributes[i].TraitType)
		}
	}
}

func TestDigest_NoNaiveConcatenationCollision(t *testing.T) {
	// "ab"+"c" vs "a"+"bc" must not collide: JSON quoting keeps field
	// boundaries in the hash input.
	m1 := Build("0x1", "ab", "c", "2024-01-01", "CERT-1-aaaaaaaaa")
	m2 := Build("0x1", "a", "bc", "2024-01-01", "CERT-1-aaaaaaaaa")
	d1, err := Digest(m1)
	if err != nil {
		t.Fatalf("digest 1: %v", err)
	}
	d2, err := Digest(m2)
	if err != nil {
		t.Fatalf("digest 2: %v", err)
	}
	if d1 == d2 {
		t.Fatalf("boundary-shifted values collided")
	}
}

func TestNewCertificateID_FormatAndUniqueness(t *testing.T) {
	pattern := regexp.MustCompile(`^CERT-\d+-[0-9a-z]{9}$`)
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewCertificateID()
		if !pattern.MatchString(id) {
			t.Fatalf("id %q does not match expected pattern", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id generated: %s", id)
		}
		seen[id] = true
	}
}

func TestNewCertificateID_EmbedsTimestamp(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	id := newCertificateIDAt(now)
	if !strings.HasPrefix(id, "CERT-1700000000000-") {
		t.Fatalf("id %q missing timestamp component", id)
	}
}

func TestLocator(t *testing.T) {
	if got := Locator("", "CERT-1-abcdefghi"); got != "ipfs://demo/CERT-1-abcdefghi" {
		t.Fatalf("default locator = %q", got)
	}
	if got := Locator("ipfs://batch7/", "CERT-1-abcdefghi"); got != "ipfs://batch7/CERT-1-abcdefghi" {
		t.Fatalf("prefixed locator = %q", got)
	}
}

func TestCertificateID_Accessor(t *testing.T) {
	m := sample()
	if got := m.CertificateID(); got != "CERT-1700000000000-abc123xyz" {
		t.Fatalf("CertificateID() = %q", got)
	}
	if got := (Metadata{}).CertificateID(); got != "" {
		t.Fatalf("empty metadata CertificateID() = %q", got)
	}
}
