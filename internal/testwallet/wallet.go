// Package testwallet provides throwaway Ethereum keys that sign like a browser wallet.
package testwallet

import (
	"crypto/ecdsa"
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Wallet is a generated secp256k1 key and its checksummed address
type Wallet struct {
	key     *ecdsa.PrivateKey
	Address string
}

// New generates a wallet or fails the test
func New(t testing.TB) *Wallet {
	t.Helper()

	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	return &Wallet{
		key:     key,
		Address: crypto.PubkeyToAddress(key.PublicKey).Hex(),
	}
}

// Sign produces a 0x-prefixed personal_sign signature with V in {27, 28}
func (w *Wallet) Sign(t testing.TB, message string) string {
	t.Helper()

	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), w.key)
	if err != nil {
		t.Fatalf("failed to sign message: %v", err)
	}
	sig[crypto.RecoveryIDOffset] += 27
	return hexutil.Encode(sig)
}
