package accounts

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var nowFunc = time.Now

// Service implements account management on top of a Repository.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(logger *slog.Logger, repo Repository) *Service {
	return &Service{repo: repo, logger: logger}
}

// Login verifies the identity/password pair and returns the account on
// success. Password comparison runs even for unknown identities so the
// response time does not reveal whether the account exists.
func (s *Service) Login(ctx context.Context, identity, password string) (Account, error) {
	rec, err := s.repo.GetByIdentity(ctx, identity)
	if err != nil {
		bcrypt.CompareHashAndPassword([]byte("$2a$10$000000000000000000000uGZLKNeKk7S51pmjxIQCkSYhNPCyd9fm"), []byte(password))
		return Account{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(password)); err != nil {
		return Account{}, ErrInvalidCredentials
	}
	if !rec.IsActive {
		return Account{}, ErrInactiveAccount
	}
	if err := s.repo.TouchLastLogin(ctx, rec.ID); err != nil {
		s.logger.Warn("failed to record login time", "account_id", rec.ID, "error", err)
	}
	return rec.Account, nil
}

// Create registers a new account with the given plaintext password.
func (s *Service) Create(ctx context.Context, username, email, displayName, role, password string) (Account, error) {
	if username == "" {
		return Account{}, fmt.Errorf("username is required")
	}
	if role == "" {
		role = RoleEditor
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Account{}, fmt.Errorf("hash password: %w", err)
	}
	rec := Record{
		Account: Account{
			ID:          uuid.NewString(),
			Username:    username,
			Email:       email,
			DisplayName: displayName,
			Role:        role,
			IsActive:    true,
			CreatedAt:   nowFunc(),
		},
		PasswordHash: string(hash),
	}
	saved, err := s.repo.Insert(ctx, rec)
	if err != nil {
		return Account{}, err
	}
	return saved.Account, nil
}

func (s *Service) Get(ctx context.Context, id string) (Account, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Account{}, err
	}
	return rec.Account, nil
}

func (s *Service) List(ctx context.Context) ([]Account, error) {
	recs, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Account, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.Account)
	}
	return out, nil
}

// SetPassword replaces the password for an existing account.
func (s *Service) SetPassword(ctx context.Context, id, password string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.repo.UpdatePassword(ctx, id, string(hash))
}

// EnsureAdmin creates the bootstrap admin account when no account with
// that username exists yet. Called once at startup.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return nil
	}
	if _, err := s.repo.GetByIdentity(ctx, username); err == nil {
		return nil
	}
	account, err := s.Create(ctx, username, "", "Administrator", RoleAdmin, password)
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	s.logger.Info("created bootstrap admin account", "account_id", account.ID, "username", username)
	return nil
}
