package main

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/spf13/cobra"

	"github.com/vaibhaw-/CertR/internal/certr/config"
	"github.com/vaibhaw-/CertR/internal/certr/index"
	"github.com/vaibhaw-/CertR/internal/certr/qr"
	"github.com/vaibhaw-/CertR/internal/certr/resolve"
)

var (
	verifyFlagKey   string
	verifyFlagType  string
	verifyFlagLocal bool
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Resolve a lookup key and verify the certificate against the chain",
	Long: "Resolves a token id, wallet address or certificate id to a token id via " +
		"the off-chain index, then cross-checks the certificate's on-chain state. " +
		"The index is only a pointer cache; the chain is the source of truth.",
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().StringVar(&verifyFlagKey, "key", "", "lookup value: token id, 0x address, or CERT- id (required)")
	verifyCmd.Flags().StringVar(&verifyFlagType, "type", "", "key kind: tokenId|address|certId (default: auto-detect)")
	verifyCmd.Flags().BoolVar(&verifyFlagLocal, "local", false, "resolve via the index only, skip the on-chain check")
	verifyCmd.MarkFlagRequired("key")
}

func runVerify(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	kind := resolve.KeyKind(verifyFlagType)
	if kind == "" {
		detected, err := resolve.DetectKind(verifyFlagKey)
		if err != nil {
			return err
		}
		kind = detected
	}

	store, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	tokenID, err := resolve.Resolve(ctx, store, kind, verifyFlagKey)
	if errors.Is(err, index.ErrNotFound) {
		fmt.Printf("No certificate found for %s %q\n", kind, verifyFlagKey)
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Printf("Resolved %s %q to token %d\n", kind, verifyFlagKey, tokenID)
	fmt.Printf("Public link: %s\n", qr.VerifyURL(config.Get().Issuance.FrontendURL, tokenID))

	if verifyFlagLocal {
		return nil
	}

	c, err := dialChain(ctx)
	if err != nil {
		return fmt.Errorf("chain: %w", err)
	}
	defer c.Close()

	cert, err := c.Verify(ctx, big.NewInt(tokenID))
	if err != nil {
		return err
	}
	if !cert.Exists {
		fmt.Println("On-chain status: NOT FOUND (index entry is stale)")
		return nil
	}

	status := "VALID"
	if cert.Revoked {
		status = "REVOKED"
	}
	fmt.Printf("On-chain status: %s\n", status)
	fmt.Printf("  recipient: %s\n", cert.Recipient.Hex())
	fmt.Printf("  locator:   %s\n", cert.MetadataURI)
	fmt.Printf("  hash:      %s\n", cert.MetadataHash.Hex())
	fmt.Printf("  issued at: %s\n", cert.IssuedAt.Format("2006-01-02 15:04:05 MST"))
	return nil
}
