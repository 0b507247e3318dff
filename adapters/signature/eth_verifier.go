package signature

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/layer-3/freelance/core"
	"github.com/layer-3/freelance/ports"
)

// EthVerifier recovers signers of EIP-191 personal_sign messages
type EthVerifier struct{}

// NewEthVerifier creates a new verifier
func NewEthVerifier() ports.SignatureVerifier {
	return &EthVerifier{}
}

// RecoverAddress returns the checksummed address that signed message
func (v *EthVerifier) RecoverAddress(message, signature string) (string, error) {
	sig, err := decodeSignature(signature)
	if err != nil {
		return "", err
	}

	pub, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrInvalidSignature, err)
	}

	return crypto.PubkeyToAddress(*pub).Hex(), nil
}

// VerifyClaim reports whether claimedAddress signed message. Addresses compare case-insensitively.
func (v *EthVerifier) VerifyClaim(claimedAddress, message, signature string) (bool, error) {
	recovered, err := v.RecoverAddress(message, signature)
	if err != nil {
		return false, err
	}

	return core.CanonicalAddress(recovered) == core.CanonicalAddress(claimedAddress), nil
}

// decodeSignature parses a 65 byte r||s||v signature and normalises v to {0, 1}
func decodeSignature(signature string) ([]byte, error) {
	signature = strings.TrimSpace(signature)
	if !strings.HasPrefix(signature, "0x") && !strings.HasPrefix(signature, "0X") {
		signature = "0x" + signature
	}

	sig, err := hexutil.Decode(signature)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidSignature, err)
	}
	if len(sig) != crypto.SignatureLength {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", core.ErrInvalidSignature, crypto.SignatureLength, len(sig))
	}

	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}
	if sig[crypto.RecoveryIDOffset] > 1 {
		return nil, fmt.Errorf("%w: bad recovery id", core.ErrInvalidSignature)
	}

	return sig, nil
}
