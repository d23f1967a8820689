package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vaibhaw-/CertR/internal/certr/parser"
)

var batchFlagInput string

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Issue a batch of certificates from a CSV file",
	RunE:  runBatch,
}

func init() {
	batchCmd.Flags().StringVar(&batchFlagInput, "input", "", "CSV file with certificate rows (required)")
	batchCmd.MarkFlagRequired("input")
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	f, err := os.Open(batchFlagInput)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	reqs, err := parser.ParseCSV(f)
	if err != nil {
		return fmt.Errorf("parse %s: %w", batchFlagInput, err)
	}

	orch, cleanup, err := newOrchestrator(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	records, err := orch.IssueBatch(ctx, reqs)
	if err != nil {
		return err
	}

	fmt.Printf("Issued %d certificate(s)\n", len(records))
	for _, rec := range records {
		fmt.Printf("  token %-6d %-32s %s\n", rec.TokenID, rec.CertificateID, rec.RecipientAddress)
	}
	return nil
}
