package users

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/granary/granary/internal/shared"
)

// Service implements profile and account management operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
	admins map[string]struct{}
}

// NewService builds a Service. adminNames lists account names granted access
// to the management endpoints.
func NewService(repo Repository, logger *slog.Logger, adminNames []string) *Service {
	admins := make(map[string]struct{}, len(adminNames))
	for _, name := range adminNames {
		name = strings.TrimSpace(name)
		if name != "" {
			admins[name] = struct{}{}
		}
	}
	return &Service{repo: repo, logger: logger, admins: admins}
}

// IsAdmin reports whether the named account may manage users.
func (s *Service) IsAdmin(name string) bool {
	_, ok := s.admins[name]
	return ok
}

// Profile returns the caller's own account.
func (s *Service) Profile(ctx context.Context, userID int64) (*User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// ChangePasscode verifies the current passcode and stores a new hash.
func (s *Service) ChangePasscode(ctx context.Context, userID int64, oldPasscode, newPasscode string) error {
	hash, err := s.repo.GetPasscodeHash(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(oldPasscode)) != nil {
		return ErrBadOldPasscode
	}
	newHash, err := bcrypt.GenerateFromPassword([]byte(newPasscode), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.SetPasscode(ctx, userID, string(newHash))
}

// UserPage is one page of accounts for the management list.
type UserPage struct {
	Users []User
	Total int
}

// List returns a page of accounts with the total count.
func (s *Service) List(ctx context.Context, page shared.PageRequest) (*UserPage, error) {
	page = page.Normalize()
	users, err := s.repo.List(ctx, page.Offset(), page.Limit)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &UserPage{Users: users, Total: total}, nil
}

// Create provisions an account that can later register through the
// mini-program.
func (s *Service) Create(ctx context.Context, in CreateInput) (*User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	if !ValidPhone(in.Phone) {
		return nil, ErrBadPhone
	}
	user, err := s.repo.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user provisioned", slog.Int64("user_id", user.ID), slog.String("phone", user.Phone))
	return user, nil
}

var knownStatuses = map[string]struct{}{
	"active": {}, "registered": {}, "frozen": {}, "deleted": {},
}

// Update patches an account.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) error {
	if in.Phone != nil {
		trimmed := strings.TrimSpace(*in.Phone)
		if !ValidPhone(trimmed) {
			return ErrBadPhone
		}
		in.Phone = &trimmed
	}
	if in.Status != nil {
		if _, ok := knownStatuses[*in.Status]; !ok {
			return ErrBadStatusValue
		}
	}
	err := s.repo.Update(ctx, id, in)
	if errors.Is(err, shared.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}
