package ports

// PasswordHasher hashes credentials with a slow, salted one-way function.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	// Verify reports whether plaintext matches hash. A malformed hash
	// never matches.
	Verify(plaintext, hash string) bool
}

// TokenService issues and verifies self-contained signed session tokens.
type TokenService interface {
	Issue(userID string) (string, error)
	// Verify returns the user ID bound to token, or domain.ErrInvalidToken
	// whatever the underlying cause.
	Verify(token string) (string, error)
}
