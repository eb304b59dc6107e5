package api

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ValidateRequestor performs the basic identity check on a deploy request.
// It is a plausibility gate, not an identity verification service: the
// fields must be present and well formed, nothing more.
func ValidateRequestor(r Requestor) error {
	if strings.TrimSpace(r.LegalName) == "" {
		return fmt.Errorf("requestor legal_name is required")
	}
	wallet := strings.TrimSpace(r.WalletAddress)
	if !strings.HasPrefix(wallet, "0x") || len(wallet) != 42 || !common.IsHexAddress(wallet) {
		return fmt.Errorf("requestor wallet_address must be a 0x-prefixed 20-byte hex address")
	}
	if strings.TrimSpace(r.SignatureHash) == "" {
		return fmt.Errorf("requestor signature_hash is required")
	}
	return nil
}
