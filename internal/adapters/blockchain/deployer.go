package blockchain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/xet-labs/xet-composer/internal/domain"
	"github.com/xet-labs/xet-composer/internal/domain/config"
	"github.com/xet-labs/xet-composer/internal/usecase"
)

const defaultPollInterval = 2 * time.Second

// backend is the subset of ethclient.Client the deployer needs. Narrowed
// for test fakes.
type backend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	Close()
}

// DeployerAdapter implements the ContractDeployer port. Each Deploy call
// dials its own connection to the request's network, so concurrent
// requests share nothing. A transaction is broadcast at most once per
// invocation; a missed confirmation is reported, never silently re-sent.
type DeployerAdapter struct {
	signer         usecase.Signer
	confirmations  uint64
	confirmTimeout time.Duration
	signTimeout    time.Duration
	pollInterval   time.Duration
	dial           func(ctx context.Context, rawurl string) (backend, error)
	log            *slog.Logger
}

// NewDeployerAdapter creates a new deployment executor.
func NewDeployerAdapter(cfg *config.RuntimeConfig, signer usecase.Signer, log *slog.Logger) *DeployerAdapter {
	return &DeployerAdapter{
		signer:         signer,
		confirmations:  cfg.Confirmations,
		confirmTimeout: cfg.ConfirmTimeout,
		signTimeout:    cfg.SignTimeout,
		pollInterval:   defaultPollInterval,
		dial: func(ctx context.Context, rawurl string) (backend, error) {
			return ethclient.DialContext(ctx, rawurl)
		},
		log: log.With("component", "DeployerAdapter"),
	}
}

// Deploy encodes the constructor arguments, builds and signs the creation
// transaction, broadcasts it and waits for inclusion.
func (d *DeployerAdapter) Deploy(ctx context.Context, req *domain.DeploymentRequest) (*domain.DeploymentResult, error) {
	if !req.Artifact.Deployable() {
		return nil, domain.ErrNotDeployable
	}
	if d.signer == nil {
		return nil, &domain.SigningError{Err: domain.ErrNoSigner}
	}
	if req.Network == nil || req.Network.RPCURL == "" {
		return nil, &domain.BroadcastError{Stage: "dial", Err: errors.New("no target network configured")}
	}

	payload, err := d.buildPayload(req)
	if err != nil {
		return nil, err
	}

	client, err := d.dial(ctx, req.Network.RPCURL)
	if err != nil {
		return nil, &domain.BroadcastError{Stage: "dial", Err: err}
	}
	defer client.Close()

	chainID, err := client.ChainID(ctx)
	if err != nil {
		return nil, &domain.BroadcastError{Stage: "chain id", Err: err}
	}
	if req.Network.ChainID != 0 && chainID.Uint64() != req.Network.ChainID {
		return nil, &domain.BroadcastError{
			Stage: "chain id",
			Err:   fmt.Errorf("expected chain %d, node reports %d", req.Network.ChainID, chainID.Uint64()),
		}
	}

	from := d.signer.Address()
	tx, nonce, err := d.buildTx(ctx, client, chainID, from, payload)
	if err != nil {
		return nil, err
	}

	signCtx := ctx
	if d.signTimeout > 0 {
		var cancel context.CancelFunc
		signCtx, cancel = context.WithTimeout(ctx, d.signTimeout)
		defer cancel()
	}
	signed, err := d.signer.SignTx(signCtx, tx, chainID)
	if err != nil {
		return nil, &domain.SigningError{Err: err}
	}

	if err := client.SendTransaction(ctx, signed); err != nil {
		return nil, &domain.BroadcastError{Stage: "send", Err: err}
	}
	txHash := signed.Hash()
	d.log.Info("deployment transaction broadcast",
		"tx", txHash.Hex(), "from", from.Hex(), "nonce", nonce, "network", req.Network.Name)

	receipt, err := d.waitConfirmed(ctx, client, txHash)
	if err != nil {
		return nil, err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, &domain.BroadcastError{
			Stage: "inclusion",
			Err:   fmt.Errorf("deployment transaction %s reverted", txHash.Hex()),
		}
	}

	address := receipt.ContractAddress
	if address == (common.Address{}) {
		address = crypto.CreateAddress(from, nonce)
	}

	d.log.Info("contract deployed", "address", address.Hex(), "tx", txHash.Hex())
	return &domain.DeploymentResult{
		Address: address,
		TxHash:  txHash,
		ABI:     req.Artifact.RawABI,
		Message: fmt.Sprintf("contract %s deployed at %s", req.Artifact.ContractName, address.Hex()),
	}, nil
}

// buildPayload encodes the constructor arguments against the ABI's
// constructor signature and appends them to the creation bytecode.
// Arguments are pulled from the parameter set by name and ordered by the
// descriptor's declaration order only here, at the final encode step.
func (d *DeployerAdapter) buildPayload(req *domain.DeploymentRequest) ([]byte, error) {
	inputs := req.Artifact.ABI.Constructor.Inputs
	if len(inputs) != len(req.Descriptor.Params) {
		return nil, &domain.EncodingError{
			Err: fmt.Errorf("constructor takes %d argument(s), template declares %d parameter(s)",
				len(inputs), len(req.Descriptor.Params)),
		}
	}

	args := make([]any, 0, len(req.Descriptor.Params))
	for i, p := range req.Descriptor.Params {
		v, ok := req.Params.Get(p.Name)
		if !ok {
			return nil, &domain.EncodingError{Param: p.Name, Err: errors.New("missing from parameter set")}
		}
		arg, err := abiValue(v, inputs[i].Type.String())
		if err != nil {
			return nil, &domain.EncodingError{Param: p.Name, Err: err}
		}
		args = append(args, arg)
	}

	packed, err := req.Artifact.ABI.Pack("", args...)
	if err != nil {
		return nil, &domain.EncodingError{Err: err}
	}
	return append(append([]byte{}, req.Artifact.Bytecode...), packed...), nil
}

// abiValue converts a validated parameter value into the Go value the ABI
// encoder expects, checking it against the constructor input's type.
func abiValue(v domain.ParamValue, abiType string) (any, error) {
	switch {
	case v.Kind == domain.KindAddress:
		if abiType != "address" {
			return nil, fmt.Errorf("parameter is an address, constructor expects %s", abiType)
		}
		return v.Address, nil
	case v.Kind.IsInteger():
		if !strings.HasPrefix(abiType, "uint") {
			return nil, fmt.Errorf("parameter is an integer, constructor expects %s", abiType)
		}
		return new(big.Int).Set(v.Uint), nil
	default:
		return nil, fmt.Errorf("unsupported parameter kind %q", v.Kind)
	}
}

func (d *DeployerAdapter) buildTx(
	ctx context.Context,
	client backend,
	chainID *big.Int,
	from common.Address,
	payload []byte,
) (*types.Transaction, uint64, error) {
	nonce, err := client.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, 0, &domain.BroadcastError{Stage: "nonce", Err: err}
	}

	tipCap, err := client.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, 0, &domain.BroadcastError{Stage: "gas price", Err: err}
	}
	head, err := client.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, 0, &domain.BroadcastError{Stage: "gas price", Err: err}
	}
	// EIP-1559 only: fee cap covers twice the current base fee plus tip.
	feeCap := new(big.Int).Add(tipCap, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))

	gas, err := client.EstimateGas(ctx, ethereum.CallMsg{
		From:      from,
		To:        nil,
		GasTipCap: tipCap,
		GasFeeCap: feeCap,
		Data:      payload,
	})
	if err != nil {
		return nil, 0, &domain.BroadcastError{Stage: "gas estimate", Err: err}
	}

	return types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		GasTipCap: tipCap,
		GasFeeCap: feeCap,
		Gas:       gas,
		To:        nil,
		Data:      payload,
	}), nonce, nil
}

// waitConfirmed polls for the inclusion receipt and then for the required
// confirmation depth, bounded by the configured timeout. On timeout the
// transaction is left as-is and reported; re-sending could double-deploy.
func (d *DeployerAdapter) waitConfirmed(ctx context.Context, client backend, txHash common.Hash) (*types.Receipt, error) {
	if d.confirmTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.confirmTimeout)
		defer cancel()
	}

	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()

	timedOut := func(err error) error {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return &domain.ConfirmationTimeoutError{TxHash: txHash, Confirmations: d.confirmations}
		}
		return err
	}

	var receipt *types.Receipt
	for receipt == nil {
		r, err := client.TransactionReceipt(ctx, txHash)
		switch {
		case err == nil:
			receipt = r
		case errors.Is(err, ethereum.NotFound):
			select {
			case <-ctx.Done():
				return nil, timedOut(ctx.Err())
			case <-ticker.C:
			}
		default:
			return nil, timedOut(err)
		}
	}

	for d.confirmations > 1 {
		head, err := client.HeaderByNumber(ctx, nil)
		if err != nil {
			return nil, timedOut(err)
		}
		depth := new(big.Int).Sub(head.Number, receipt.BlockNumber)
		if depth.Sign() >= 0 && depth.Uint64()+1 >= d.confirmations {
			break
		}
		select {
		case <-ctx.Done():
			return nil, timedOut(ctx.Err())
		case <-ticker.C:
		}
	}

	return receipt, nil
}
