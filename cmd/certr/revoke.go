package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var revokeFlagTokenID int64

var revokeCmd = &cobra.Command{
	Use:   "revoke",
	Short: "Revoke an issued certificate on-chain and mirror it to the index",
	RunE:  runRevoke,
}

func init() {
	revokeCmd.Flags().Int64Var(&revokeFlagTokenID, "token-id", -1, "token id to revoke (required)")
	revokeCmd.MarkFlagRequired("token-id")
}

func runRevoke(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if revokeFlagTokenID < 0 {
		return fmt.Errorf("invalid token id %d", revokeFlagTokenID)
	}

	orch, cleanup, err := newOrchestrator(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := orch.Revoke(ctx, revokeFlagTokenID); err != nil {
		return err
	}
	fmt.Printf("Revoked token %d\n", revokeFlagTokenID)
	return nil
}
