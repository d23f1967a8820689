package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/vaibhaw-/CertR/internal/certr/config"
	"github.com/vaibhaw-/CertR/internal/certr/issue"
	"github.com/vaibhaw-/CertR/internal/certr/logger"
	"github.com/vaibhaw-/CertR/internal/certr/metrics"
	"github.com/vaibhaw-/CertR/internal/certr/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (upload, lookup, metrics)",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := config.Get()
	log := logger.L()

	store, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	reg := metrics.NewRegistry()

	// The chain client is optional: without it the API still serves the
	// lookup surface, and minting endpoints answer 503.
	var orch *issue.Orchestrator
	if cfg.Chain.RPCURL != "" {
		c, err := dialChain(ctx)
		if err != nil {
			return fmt.Errorf("chain: %w", err)
		}
		defer c.Close()
		orch = issue.New(c, store, issue.Options{
			LocatorPrefix: cfg.Issuance.LocatorPrefix,
			Metrics:       reg,
		})
	} else {
		fmt.Fprintln(os.Stderr, "Warning: chain.rpc_url not set, minting endpoints disabled")
	}

	srv := server.New(server.Options{
		Orchestrator:  orch,
		Store:         store,
		Metrics:       reg,
		FrontendURL:   cfg.Issuance.FrontendURL,
		LocatorPrefix: cfg.Issuance.LocatorPrefix,
	})

	log.Infow("http api listening", "addr", cfg.Server.Listen, "minting", orch != nil)
	return http.ListenAndServe(cfg.Server.Listen, srv.Handler())
}
