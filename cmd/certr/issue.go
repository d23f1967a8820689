package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vaibhaw-/CertR/internal/certr/parser"
)

var (
	issueFlagRecipient string
	issueFlagName      string
	issueFlagProgram   string
	issueFlagDate      string
)

var issueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Issue a single certificate",
	RunE:  runIssue,
}

func init() {
	issueCmd.Flags().StringVar(&issueFlagRecipient, "recipient", "", "recipient wallet address (required)")
	issueCmd.Flags().StringVar(&issueFlagName, "name", "", "recipient name (required)")
	issueCmd.Flags().StringVar(&issueFlagProgram, "program", "", "program name (required)")
	issueCmd.Flags().StringVar(&issueFlagDate, "date", "", "issue date, YYYY-MM-DD (required)")
	issueCmd.MarkFlagRequired("recipient")
	issueCmd.MarkFlagRequired("name")
	issueCmd.MarkFlagRequired("program")
	issueCmd.MarkFlagRequired("date")
}

func runIssue(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	req, err := parser.NewRequest(issueFlagRecipient, issueFlagName, issueFlagProgram, issueFlagDate)
	if err != nil {
		return err
	}

	orch, cleanup, err := newOrchestrator(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	rec, err := orch.IssueSingle(ctx, req)
	if err != nil {
		return err
	}

	fmt.Printf("Issued certificate %s\n", rec.CertificateID)
	fmt.Printf("  token id:  %d\n", rec.TokenID)
	fmt.Printf("  recipient: %s\n", rec.RecipientAddress)
	fmt.Printf("  locator:   %s\n", rec.MetadataURI)
	fmt.Printf("  hash:      %s\n", rec.MetadataHash)
	return nil
}
