package usecase

import "github.com/fastygo/taskboard/domain"

// PasswordHasher hashes credentials one way and verifies candidates.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(hash, plain string) (bool, error)
}

// TokenIssuer mints bearer tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID string) (string, *domain.Session, error)
}
