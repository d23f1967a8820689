package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/vaibhaw-/CertR/internal/certr/logger"
)

// issuerRole is keccak256("ISSUER_ROLE"), the contract's role constant.
var issuerRole = crypto.Keccak256Hash([]byte("ISSUER_ROLE"))

// Config targets one contract deployment. Supplying a different instance
// retargets every call; nothing here is ambient.
type Config struct {
	RPCURL          string
	ContractAddress string
	ChainID         int64
	// PrivateKey is the issuer's signing key as hex (0x prefix optional).
	// Empty is valid for read-only use; mint and revoke will then fail fast.
	PrivateKey string
}

// Ethereum implements Client against a JSON-RPC endpoint.
type Ethereum struct {
	ec       *ethclient.Client
	contract *bind.BoundContract
	abi      abi.ABI
	auth     *bind.TransactOpts
	address  common.Address
}

// Dial connects to the RPC endpoint and binds the certificate contract.
func Dial(ctx context.Context, cfg Config) (*Ethereum, error) {
	if cfg.RPCURL == "" {
		return nil, errors.New("chain: rpc url not configured")
	}
	if !common.IsHexAddress(cfg.ContractAddress) {
		return nil, fmt.Errorf("chain: invalid contract address %q", cfg.ContractAddress)
	}

	ec, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, &SubmissionError{Op: "dial", Err: err}
	}

	parsed, err := abi.JSON(strings.NewReader(contractABI))
	if err != nil {
		return nil, fmt.Errorf("chain: parse contract abi: %w", err)
	}

	addr := common.HexToAddress(cfg.ContractAddress)
	c := &Ethereum{
		ec:       ec,
		contract: bind.NewBoundContract(addr, parsed, ec, ec, ec),
		abi:      parsed,
		address:  addr,
	}

	if cfg.PrivateKey != "" {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
		if err != nil {
			return nil, fmt.Errorf("chain: parse private key: %w", err)
		}
		auth, err := bind.NewKeyedTransactorWithChainID(key, big.NewInt(cfg.ChainID))
		if err != nil {
			return nil, fmt.Errorf("chain: build transactor: %w", err)
		}
		c.auth = auth
	}

	logger.L().Debugw("chain client ready",
		"contract", addr.Hex(), "chain_id", cfg.ChainID, "signing", c.auth != nil)
	return c, nil
}

func (c *Ethereum) Close() { c.ec.Close() }

// Issuer returns the signing address, or the zero address in read-only mode.
func (c *Ethereum) Issuer() common.Address {
	if c.auth == nil {
		return common.Address{}
	}
	return c.auth.From
}

func (c *Ethereum) MintOne(ctx context.Context, recipient common.Address, metadataURI string, metadataHash common.Hash) (*big.Int, error) {
	ids, err := c.transactAndCollect(ctx, "mintCertificate", recipient, metadataURI, metadataHash)
	if err != nil {
		return nil, err
	}
	if len(ids) != 1 {
		return nil, fmt.Errorf("chain: mintCertificate emitted %d issuance events, want 1", len(ids))
	}
	return ids[0], nil
}

func (c *Ethereum) MintBatch(ctx context.Context, receivers []common.Address, metadataURIs []string, metadataHashes []common.Hash) ([]*big.Int, error) {
	if len(receivers) != len(metadataURIs) || len(receivers) != len(metadataHashes) {
		return nil, fmt.Errorf("chain: misaligned batch: %d receivers, %d uris, %d hashes",
			len(receivers), len(metadataURIs), len(metadataHashes))
	}
	ids, err := c.transactAndCollect(ctx, "batchMint", receivers, metadataURIs, metadataHashes)
	if err != nil {
		return nil, err
	}
	if len(ids) != len(receivers) {
		return nil, fmt.Errorf("chain: batchMint emitted %d issuance events, want %d", len(ids), len(receivers))
	}
	return ids, nil
}

func (c *Ethereum) Revoke(ctx context.Context, tokenID *big.Int) error {
	_, err := c.transactAndCollect(ctx, "revokeCertificate", tokenID)
	return err
}

func (c *Ethereum) Verify(ctx context.Context, tokenID *big.Int) (*Certificate, error) {
	var out []interface{}
	if err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, "verifyCertificate", tokenID); err != nil {
		return nil, classifyCallError("verifyCertificate", err)
	}
	if len(out) != 6 {
		return nil, fmt.Errorf("chain: verifyCertificate returned %d values, want 6", len(out))
	}
	issuedAt := out[5].(*big.Int)
	return &Certificate{
		Exists:       out[0].(bool),
		Revoked:      out[1].(bool),
		Recipient:    out[2].(common.Address),
		MetadataURI:  out[3].(string),
		MetadataHash: common.Hash(out[4].([32]byte)),
		IssuedAt:     time.Unix(issuedAt.Int64(), 0).UTC(),
	}, nil
}

func (c *Ethereum) VerifyByHash(ctx context.Context, metadataHash common.Hash) (*HashLookup, error) {
	var out []interface{}
	if err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, "verifyCertificateByHash", metadataHash); err != nil {
		return nil, classifyCallError("verifyCertificateByHash", err)
	}
	if len(out) != 4 {
		return nil, fmt.Errorf("chain: verifyCertificateByHash returned %d values, want 4", len(out))
	}
	return &HashLookup{
		Exists:    out[0].(bool),
		TokenID:   out[1].(*big.Int),
		Revoked:   out[2].(bool),
		Recipient: out[3].(common.Address),
	}, nil
}

func (c *Ethereum) HasIssuerRole(ctx context.Context, addr common.Address) (bool, error) {
	var out []interface{}
	if err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, "hasRole", issuerRole, addr); err != nil {
		return false, classifyCallError("hasRole", err)
	}
	if len(out) != 1 {
		return false, fmt.Errorf("chain: hasRole returned %d values, want 1", len(out))
	}
	return out[0].(bool), nil
}

// certificateIssuedEvent mirrors the CertificateIssued event; field names
// follow the ABI argument names for log unpacking.
type certificateIssuedEvent struct {
	To           common.Address
	TokenId      *big.Int
	Uri          string
	MetadataHash [32]byte
}

// transactAndCollect submits a state-changing call, waits for the receipt
// and returns the token ids from CertificateIssued logs in emission order.
// The contract assigns ids sequentially per batch entry, so emission order
// mirrors request order.
func (c *Ethereum) transactAndCollect(ctx context.Context, method string, args ...interface{}) ([]*big.Int, error) {
	log := logger.L()
	if c.auth == nil {
		return nil, fmt.Errorf("%s: %w", method, ErrUnauthorized)
	}

	opts := *c.auth
	opts.Context = ctx

	tx, err := c.contract.Transact(&opts, method, args...)
	if err != nil {
		// Gas estimation runs the call first, so contract reverts
		// (duplicate hash, missing role) surface here, before submission.
		return nil, classifyCallError(method, err)
	}
	log.Infow("transaction submitted", "method", method, "tx", tx.Hash().Hex())

	receipt, err := bind.WaitMined(ctx, c.ec, tx)
	if err != nil {
		// Submitted but confirmation unknown; never auto-resubmit.
		return nil, fmt.Errorf("await receipt for %s tx %s: %w", method, tx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, &RevertError{Op: method, TxHash: tx.Hash()}
	}

	issuedID := c.abi.Events["CertificateIssued"].ID
	var ids []*big.Int
	for _, l := range receipt.Logs {
		if l.Address != c.address || len(l.Topics) == 0 || l.Topics[0] != issuedID {
			continue
		}
		var ev certificateIssuedEvent
		if err := c.contract.UnpackLog(&ev, "CertificateIssued", *l); err != nil {
			return nil, fmt.Errorf("decode issuance event in tx %s: %w", tx.Hash().Hex(), err)
		}
		ids = append(ids, ev.TokenId)
	}
	log.Infow("transaction confirmed",
		"method", method, "tx", tx.Hash().Hex(), "block", receipt.BlockNumber, "issued", len(ids))
	return ids, nil
}
