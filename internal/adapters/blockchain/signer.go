package blockchain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/xet-labs/xet-composer/internal/domain/config"
	"github.com/xet-labs/xet-composer/internal/usecase"
)

// PrivateKeySigner signs transactions with an in-memory secp256k1 key. The
// key never leaves this type; the deployment executor only sees the Signer
// port.
type PrivateKeySigner struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

// NewPrivateKeySigner parses a hex-encoded private key.
func NewPrivateKeySigner(hexKey string) (*PrivateKeySigner, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return &PrivateKeySigner{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

// NewSignerFromConfig builds the configured signer, or nil when no key is
// configured. A nil signer surfaces as a SigningError at deploy time, so
// commands that never deploy work without one.
func NewSignerFromConfig(cfg *config.RuntimeConfig) (usecase.Signer, error) {
	if cfg.PrivateKey == "" {
		return nil, nil
	}
	return NewPrivateKeySigner(cfg.PrivateKey)
}

// Address returns the signer's account address.
func (s *PrivateKeySigner) Address() common.Address {
	return s.address
}

// SignTx signs the transaction for the given chain.
func (s *PrivateKeySigner) SignTx(ctx context.Context, tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	return types.SignTx(tx, types.LatestSignerForChainID(chainID), s.key)
}
