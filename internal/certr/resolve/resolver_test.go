package resolve

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaibhaw-/CertR/internal/certr/index"
)

func seededStore(t *testing.T) *index.Memory {
	t.Helper()
	ctx := context.Background()
	m := index.NewMemory()
	require.NoError(t, m.Insert(ctx, index.Record{
		TokenID:          1,
		RecipientAddress: "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa1111",
		CertificateID:    "CERT-1-aaaaaaaaa",
	}))
	require.NoError(t, m.Insert(ctx, index.Record{
		TokenID:          2,
		RecipientAddress: "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa1111",
		CertificateID:    "CERT-2-bbbbbbbbb",
	}))
	return m
}

func TestResolve_TokenIDPassesThrough(t *testing.T) {
	// No index entry for 99: token ids defer existence to the chain.
	got, err := Resolve(context.Background(), index.NewMemory(), KindTokenID, "99")
	require.NoError(t, err)
	assert.Equal(t, int64(99), got)
}

func TestResolve_TokenIDValidation(t *testing.T) {
	for _, bad := range []string{"-1", "abc", "", "1.5"} {
		_, err := Resolve(context.Background(), index.NewMemory(), KindTokenID, bad)
		assert.True(t, errors.Is(err, ErrInvalidKey), "value %q", bad)
	}
}

func TestResolve_AddressNormalizesAndReturnsMostRecent(t *testing.T) {
	store := seededStore(t)
	got, err := Resolve(context.Background(), store, KindAddress, "0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA1111")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got, "wallet with several certificates resolves to the newest")
}

func TestResolve_CertIDExactMatch(t *testing.T) {
	store := seededStore(t)
	got, err := Resolve(context.Background(), store, KindCertID, "CERT-1-aaaaaaaaa")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)
}

func TestResolve_MissIsNotFoundNotFailure(t *testing.T) {
	store := seededStore(t)

	_, err := Resolve(context.Background(), store, KindCertID, "CERT-9-zzzzzzzzz")
	assert.True(t, errors.Is(err, index.ErrNotFound))

	_, err = Resolve(context.Background(), store, KindAddress, "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb2222")
	assert.True(t, errors.Is(err, index.ErrNotFound))
}

func TestDetectKind(t *testing.T) {
	tests := []struct {
		value string
		want  KeyKind
		ok    bool
	}{
		{"42", KindTokenID, true},
		{"0x742d35Cc6634C0532925a3b844Bc9e7595f0bEb1", KindAddress, true},
		{"CERT-1700000000000-abc123xyz", KindCertID, true},
		{"cert-1700000000000-abc123xyz", KindCertID, true},
		{"", "", false},
		{"not-a-key", "", false},
	}
	for _, tt := range tests {
		got, err := DetectKind(tt.value)
		if tt.ok {
			require.NoError(t, err, "value %q", tt.value)
			assert.Equal(t, tt.want, got)
		} else {
			assert.True(t, errors.Is(err, ErrInvalidKey), "value %q", tt.value)
		}
	}
}
