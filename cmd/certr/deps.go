package main

import (
	"context"
	"fmt"
	"os"

	"github.com/vaibhaw-/CertR/internal/certr/chain"
	"github.com/vaibhaw-/CertR/internal/certr/config"
	"github.com/vaibhaw-/CertR/internal/certr/index"
	"github.com/vaibhaw-/CertR/internal/certr/issue"
	"github.com/vaibhaw-/CertR/internal/certr/logger"
)

// openStore builds the index store from config. An empty DSN selects the
// in-memory store, which only lives for the process; fine for dry runs and
// demos, useless for a real deployment.
func openStore(ctx context.Context) (index.Store, func(), error) {
	cfg := config.Get()
	if cfg.Index.DSN == "" {
		fmt.Fprintln(os.Stderr, "Warning: index.dsn not set, using in-memory index (state is lost on exit)")
		return index.NewMemory(), func() {}, nil
	}

	s, err := index.OpenSQL(cfg.Index.Driver, cfg.Index.DSN)
	if err != nil {
		return nil, nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		s.Close()
		return nil, nil, err
	}
	return s, func() { _ = s.Close() }, nil
}

// dialChain builds the chain client from config.
func dialChain(ctx context.Context) (*chain.Ethereum, error) {
	cfg := config.Get()
	return chain.Dial(ctx, chain.Config{
		RPCURL:          cfg.Chain.RPCURL,
		ContractAddress: cfg.Chain.ContractAddress,
		ChainID:         cfg.Chain.ChainID,
		PrivateKey:      cfg.Chain.PrivateKey,
	})
}

// newOrchestrator wires chain + index into an orchestrator for the minting
// and revocation commands.
func newOrchestrator(ctx context.Context) (*issue.Orchestrator, func(), error) {
	c, err := dialChain(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("chain: %w", err)
	}

	store, closeStore, err := openStore(ctx)
	if err != nil {
		c.Close()
		return nil, nil, fmt.Errorf("index: %w", err)
	}

	cfg := config.Get()
	orch := issue.New(c, store, issue.Options{LocatorPrefix: cfg.Issuance.LocatorPrefix})
	cleanup := func() {
		closeStore()
		c.Close()
	}
	logger.L().Debugw("orchestrator ready", "issuer", c.Issuer().Hex())
	return orch, cleanup, nil
}
