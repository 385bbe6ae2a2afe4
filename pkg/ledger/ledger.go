// Package ledger records document fingerprints on an EVM-compatible chain.
// Recording is fail-open: every outcome, including connection failures,
// is returned as a Receipt value.
package ledger

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/JaimeStill/attest/pkg/fingerprint"
)

// Outcome is the state reported by a Receipt.
type Outcome string

const (
	Recorded        Outcome = "recorded"
	AlreadyRecorded Outcome = "already_recorded"
	Failed          Outcome = "failed"
	Skipped         Outcome = "skipped"
)

// Receipt is the result of a recording attempt.
type Receipt struct {
	Status Outcome `json:"status"`
	TxID   string  `json:"tx_id,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// Status describes the ledger connection.
type Status struct {
	Enabled     bool   `json:"enabled"`
	Connected   bool   `json:"connected"`
	ChainID     int64  `json:"chain_id,omitempty"`
	LatestBlock uint64 `json:"latest_block,omitempty"`
	Contract    string `json:"contract,omitempty"`
	Account     string `json:"account,omitempty"`
	Error       string `json:"error,omitempty"`
}

// System records fingerprints and reports ledger status.
type System interface {
	Enabled() bool
	Record(ctx context.Context, fp string) Receipt
	Status(ctx context.Context) Status
	Close()
}

// Backend is the subset of the JSON-RPC client the ledger uses.
// *ethclient.Client satisfies it.
type Backend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	BlockNumber(ctx context.Context) (uint64, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	Close()
}

// New returns a disabled System when cfg has no endpoint; otherwise it
// resolves the signing key and dials the endpoint.
func New(ctx context.Context, cfg *Config, logger *slog.Logger) (System, error) {
	if !cfg.Enabled() {
		return disabled{}, nil
	}

	key, err := LoadKey(cfg.CredentialRef)
	if err != nil {
		return nil, err
	}

	backend, err := ethclient.DialContext(ctx, cfg.EndpointURL)
	if err != nil {
		return nil, fmt.Errorf("dial ledger: %w", err)
	}

	client, err := NewWithBackend(backend, cfg, key, logger)
	if err != nil {
		backend.Close()
		return nil, err
	}
	return client, nil
}

// Client records fingerprints through a Backend.
type Client struct {
	backend  Backend
	abi      abi.ABI
	contract common.Address
	key      *ecdsa.PrivateKey
	from     common.Address
	gasLimit uint64
	timeout  time.Duration
	poll     time.Duration
	logger   *slog.Logger

	// serializes nonce acquisition and submission
	sendMu sync.Mutex

	idMu    sync.Mutex
	chainID *big.Int
}

// NewWithBackend builds a Client over an existing Backend.
func NewWithBackend(backend Backend, cfg *Config, key *ecdsa.PrivateKey, logger *slog.Logger) (*Client, error) {
	parsed, err := abi.JSON(strings.NewReader(ContractABI))
	if err != nil {
		return nil, fmt.Errorf("parse contract abi: %w", err)
	}

	c := &Client{
		backend:  backend,
		abi:      parsed,
		contract: common.HexToAddress(cfg.ContractAddress),
		key:      key,
		from:     crypto.PubkeyToAddress(key.PublicKey),
		gasLimit: cfg.GasLimit,
		timeout:  cfg.TimeoutDuration(),
		poll:     cfg.PollIntervalDuration(),
		logger:   logger.With("system", "ledger"),
	}
	if cfg.ChainID > 0 {
		c.chainID = big.NewInt(cfg.ChainID)
	}
	return c, nil
}

// Enabled always reports true for a Client.
func (c *Client) Enabled() bool { return true }

// Account returns the address transactions are sent from.
func (c *Client) Account() common.Address { return c.from }

// Record submits fp to the contract and waits for the transaction to be
// mined, bounded by the configured timeout.
func (c *Client) Record(ctx context.Context, fp string) Receipt {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	arg, err := fingerprint.Bytes32(fp)
	if err != nil {
		return c.failed(fp, ErrRejected, err)
	}

	recorded, err := c.isRecorded(ctx, arg)
	if err != nil {
		return c.failed(fp, classify(ctx, err, ErrUnavailable), err)
	}
	if recorded {
		c.logger.Info("fingerprint already recorded", "fingerprint", fp)
		return Receipt{Status: AlreadyRecorded}
	}

	hash, err := c.submit(ctx, arg)
	if err != nil {
		if errors.Is(err, errAlreadyRecorded) {
			c.logger.Info("fingerprint already recorded", "fingerprint", fp)
			return Receipt{Status: AlreadyRecorded}
		}
		return c.failed(fp, classify(ctx, err, ErrRejected), err)
	}

	receipt, err := c.wait(ctx, hash)
	if err != nil {
		return c.failed(fp, classify(ctx, err, ErrUnavailable), err)
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		r := c.failed(fp, ErrReverted, fmt.Errorf("receipt status %d", receipt.Status))
		r.TxID = hash.Hex()
		return r
	}

	c.logger.Info(
		"fingerprint recorded",
		"fingerprint", fp,
		"tx", hash.Hex(),
		"block", receipt.BlockNumber,
	)
	return Receipt{Status: Recorded, TxID: hash.Hex()}
}

// Status queries the chain id and head block.
func (c *Client) Status(ctx context.Context) Status {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	s := Status{
		Enabled:  true,
		Contract: c.contract.Hex(),
		Account:  c.from.Hex(),
	}

	id, err := c.resolveChainID(ctx)
	if err != nil {
		c.logger.Warn("ledger status unavailable", "error", err)
		s.Error = ErrUnavailable.Error()
		return s
	}

	block, err := c.backend.BlockNumber(ctx)
	if err != nil {
		c.logger.Warn("ledger status unavailable", "error", err)
		s.Error = ErrUnavailable.Error()
		return s
	}

	s.Connected = true
	s.ChainID = id.Int64()
	s.LatestBlock = block
	return s
}

// Close releases the backend connection.
func (c *Client) Close() {
	c.backend.Close()
}

func (c *Client) isRecorded(ctx context.Context, arg [fingerprint.Size]byte) (bool, error) {
	data, err := c.abi.Pack(methodRecorded, arg)
	if err != nil {
		return false, err
	}

	out, err := c.backend.CallContract(ctx, ethereum.CallMsg{
		From: c.from,
		To:   &c.contract,
		Data: data,
	}, nil)
	if err != nil {
		return false, err
	}

	values, err := c.abi.Unpack(methodRecorded, out)
	if err != nil {
		return false, fmt.Errorf("unpack %s: %w", methodRecorded, err)
	}
	if len(values) != 1 {
		return false, fmt.Errorf("unpack %s: %d values", methodRecorded, len(values))
	}

	recorded, ok := values[0].(bool)
	if !ok {
		return false, fmt.Errorf("unpack %s: unexpected %T", methodRecorded, values[0])
	}
	return recorded, nil
}

func (c *Client) submit(ctx context.Context, arg [fingerprint.Size]byte) (common.Hash, error) {
	data, err := c.abi.Pack(methodRecord, arg)
	if err != nil {
		return common.Hash{}, err
	}

	chainID, err := c.resolveChainID(ctx)
	if err != nil {
		return common.Hash{}, err
	}

	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	nonce, err := c.backend.PendingNonceAt(ctx, c.from)
	if err != nil {
		return common.Hash{}, fmt.Errorf("pending nonce: %w", err)
	}

	gasPrice, err := c.backend.SuggestGasPrice(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("gas price: %w", err)
	}

	gas := c.gasLimit
	if gas == 0 {
		gas, err = c.backend.EstimateGas(ctx, ethereum.CallMsg{
			From: c.from,
			To:   &c.contract,
			Data: data,
		})
		if err != nil {
			if alreadyVerified(err) {
				return common.Hash{}, errAlreadyRecorded
			}
			return common.Hash{}, fmt.Errorf("estimate gas: %w", err)
		}
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gas,
		To:       &c.contract,
		Value:    new(big.Int),
		Data:     data,
	})

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), c.key)
	if err != nil {
		return common.Hash{}, fmt.Errorf("sign transaction: %w", err)
	}

	if err := c.backend.SendTransaction(ctx, signed); err != nil {
		if alreadyVerified(err) {
			return common.Hash{}, errAlreadyRecorded
		}
		return common.Hash{}, fmt.Errorf("send transaction: %w", err)
	}

	return signed.Hash(), nil
}

func (c *Client) wait(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(c.poll)
	defer ticker.Stop()

	for {
		receipt, err := c.backend.TransactionReceipt(ctx, hash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *Client) resolveChainID(ctx context.Context) (*big.Int, error) {
	c.idMu.Lock()
	defer c.idMu.Unlock()

	if c.chainID != nil {
		return c.chainID, nil
	}

	id, err := c.backend.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("chain id: %w", err)
	}
	c.chainID = id
	return id, nil
}

func (c *Client) failed(fp string, reason, cause error) Receipt {
	c.logger.Warn(
		"ledger record failed",
		"fingerprint", fp,
		"reason", reason,
		"error", cause,
	)
	return Receipt{Status: Failed, Error: reason.Error()}
}

type disabled struct{}

func (disabled) Enabled() bool { return false }

func (disabled) Record(context.Context, string) Receipt {
	return Receipt{Status: Skipped}
}

func (disabled) Status(context.Context) Status {
	return Status{}
}

func (disabled) Close() {}
