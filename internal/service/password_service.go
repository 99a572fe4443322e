package service

type PasswordService interface {
	Hash(password string) (string, error)
	// Verify reports whether the plaintext matches the stored hash. An empty
	// stored hash never matches (accounts created without a password).
	Verify(password, hash string) bool
}
