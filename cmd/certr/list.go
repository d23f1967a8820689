package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed certificates, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, closeStore, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		records, err := store.List(ctx)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("No certificates indexed.")
			return nil
		}
		for _, rec := range records {
			status := "valid"
			if rec.Revoked {
				status = "revoked"
			}
			fmt.Printf("%-6d %-32s %-44s %-10s %s\n",
				rec.TokenID, rec.CertificateID, rec.RecipientAddress, rec.IssueDate, status)
		}
		return nil
	},
}
