package auth

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/pkg/logger"
	"github.com/fastygo/taskboard/pkg/password"
	"github.com/fastygo/taskboard/repository"
	"github.com/fastygo/taskboard/usecase"
)

var errPasswordTooLong = domain.NewError(domain.ErrCodeInvalid, "Password is too long")

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type UseCase struct {
	users  repository.UserRepository
	hasher usecase.PasswordHasher
	tokens usecase.TokenIssuer
	logger *zap.Logger
}

func New(users repository.UserRepository, hasher usecase.PasswordHasher, tokens usecase.TokenIssuer, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		logger: logger,
	}
}

// Register creates an account. It never issues a token; callers log in separately.
func (uc *UseCase) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, domain.ErrMissingFields
	}
	email := domain.NormalizeEmail(in.Email)
	if email == "" {
		return nil, domain.ErrMissingFields
	}

	if _, err := uc.users.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := uc.hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, password.ErrTooLong) {
			return nil, errPasswordTooLong
		}
		return nil, err
	}

	user := &domain.User{
		Name:         in.Name,
		Email:        email,
		PasswordHash: hash,
	}
	// The store's unique index still guards against a concurrent registration.
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.For(ctx, uc.logger).Info("user registered", zap.String("user_id", user.ID))
	return user, nil
}

// Login verifies credentials and returns a signed bearer token.
//
// Unknown emails and wrong passwords produce different messages, which
// reveals whether an account exists.
func (uc *UseCase) Login(ctx context.Context, email, plain string) (string, error) {
	if email == "" || plain == "" {
		return "", domain.ErrMissingFields
	}

	user, err := uc.users.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", domain.ErrUserDoesNotExist
		}
		return "", err
	}

	ok, err := uc.hasher.Verify(user.PasswordHash, plain)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", domain.ErrInvalidCredentials
	}

	signed, _, err := uc.tokens.Issue(user.ID)
	if err != nil {
		return "", err
	}
	return signed, nil
}
