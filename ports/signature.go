package ports

// SignatureVerifier recovers wallet addresses from personal_sign signatures
type SignatureVerifier interface {
	RecoverAddress(message, signature string) (string, error)
	VerifyClaim(claimedAddress, message, signature string) (bool, error)
}
