package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vaibhaw-/CertR/internal/certr/parser"
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Print the CSV template for batch uploads",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(parser.Template())
	},
}
