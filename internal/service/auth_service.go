// internal/service/auth_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"fintrack/internal/auth"
	"fintrack/internal/domain"
	"fintrack/internal/repository"
	"fintrack/internal/seed"
	"fintrack/internal/util"
)

const minPasswordLength = 8

// SignUpInput carries the fields of a new account.
type SignUpInput struct {
	Email    string
	Password string
	Name     string
}

// AuthService handles sign-up, sign-in and token verification.
type AuthService interface {
	SignUp(ctx context.Context, input SignUpInput) (*domain.User, error)
	SignIn(ctx context.Context, email, password string) (*domain.User, string, error)
	Authenticate(ctx context.Context, token string) (*auth.Principal, error)
	Me(ctx context.Context, userID int64) (*domain.User, error)
}

type authService struct {
	txRunner     *TxRunner
	dbExecutor   repository.DBExecutor
	userRepo     repository.UserRepository
	walletRepo   repository.WalletRepository
	categoryRepo repository.CategoryRepository
	tokens       *auth.TokenIssuer
	categories   []seed.Category
}

// NewAuthService creates a new instance of AuthService. categories are
// created for every new account.
func NewAuthService(
	txRunner *TxRunner,
	dbExecutor repository.DBExecutor,
	userRepo repository.UserRepository,
	walletRepo repository.WalletRepository,
	categoryRepo repository.CategoryRepository,
	tokens *auth.TokenIssuer,
	categories []seed.Category,
) AuthService {
	return &authService{
		txRunner:     txRunner,
		dbExecutor:   dbExecutor,
		userRepo:     userRepo,
		walletRepo:   walletRepo,
		categoryRepo: categoryRepo,
		tokens:       tokens,
		categories:   categories,
	}
}

// SignUp creates the user together with the default categories and a Cash
// wallet, all in one unit of work.
func (s *authService) SignUp(ctx context.Context, input SignUpInput) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	name := strings.TrimSpace(input.Name)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("sign up: invalid email: %w", util.ErrInvalidInput)
	}
	if name == "" {
		return nil, fmt.Errorf("sign up: name is required: %w", util.ErrInvalidInput)
	}
	if len(input.Password) < minPasswordLength {
		return nil, fmt.Errorf("sign up: password must be at least %d characters: %w", minPasswordLength, util.ErrInvalidInput)
	}

	if _, err := s.userRepo.GetUserByEmail(ctx, s.dbExecutor, email); err == nil {
		return nil, fmt.Errorf("sign up: email %s: %w", email, util.ErrDuplicateEntry)
	} else if !errors.Is(err, util.ErrUserNotFound) {
		return nil, fmt.Errorf("sign up: %w", err)
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}

	user := domain.NewUser(email, name, hash)
	err = s.txRunner.WithTx(ctx, "sign up", func(q repository.DBExecutor) error {
		if err := s.userRepo.CreateUser(ctx, q, user); err != nil {
			return fmt.Errorf("sign up: %w", err)
		}
		for _, c := range s.categories {
			if err := s.categoryRepo.CreateCategory(ctx, q, c.ToDomain(user.ID)); err != nil {
				return fmt.Errorf("sign up: seed category %q: %w", c.Name, err)
			}
		}
		if err := s.walletRepo.CreateWallet(ctx, q, domain.NewWallet(user.ID, domain.DefaultWalletName)); err != nil {
			return fmt.Errorf("sign up: default wallet: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	util.GetLogger().Info("user signed up", "user_id", user.ID)
	return user, nil
}

// SignIn checks the credentials and issues an access token. Unknown email and
// wrong password fail the same way.
func (s *authService) SignIn(ctx context.Context, email, password string) (*domain.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.userRepo.GetUserByEmail(ctx, s.dbExecutor, email)
	if err != nil {
		if errors.Is(err, util.ErrUserNotFound) {
			return nil, "", fmt.Errorf("sign in: %w", util.ErrUnauthorized)
		}
		return nil, "", fmt.Errorf("sign in: %w", err)
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, "", fmt.Errorf("sign in: %w", util.ErrUnauthorized)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", fmt.Errorf("sign in: %w", err)
	}
	return user, token, nil
}

// Authenticate verifies token and checks that its user still exists.
func (s *authService) Authenticate(ctx context.Context, token string) (*auth.Principal, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, fmt.Errorf("authenticate: %v: %w", err, util.ErrUnauthorized)
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, fmt.Errorf("authenticate: %v: %w", err, util.ErrUnauthorized)
	}

	user, err := s.userRepo.GetUserByID(ctx, s.dbExecutor, userID)
	if err != nil {
		if errors.Is(err, util.ErrUserNotFound) {
			return nil, fmt.Errorf("authenticate: user %d: %w", userID, util.ErrUnauthorized)
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	return &auth.Principal{ID: user.ID, Email: user.Email}, nil
}

// Me returns the caller's profile.
func (s *authService) Me(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, s.dbExecutor, userID)
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", userID, err)
	}
	return user, nil
}
