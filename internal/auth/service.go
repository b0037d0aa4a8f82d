package auth

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/granary/granary/internal/shared"
)

// Service implements registration and token issuance.
type Service struct {
	repo   Repository
	tokens *TokenManager
	logger *slog.Logger
}

// NewService constructs an auth Service.
func NewService(repo Repository, tokens *TokenManager, logger *slog.Logger) *Service {
	return &Service{repo: repo, tokens: tokens, logger: logger}
}

// RegisterInput carries the registration request.
type RegisterInput struct {
	Phone    string
	OpenID   string
	Passcode string
	IP       string
}

// Register binds an openid and passcode to a pre-provisioned account. The
// phone must already exist with an active status; anything else rejects.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, string, error) {
	user, err := s.repo.FindByPhone(ctx, in.Phone)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.recordRegister(ctx, in, false, 0)
			return nil, "", ErrPhoneNotProvisioned
		}
		return nil, "", err
	}
	if user.Status != StatusActive {
		s.recordRegister(ctx, in, false, user.ID)
		return nil, "", ErrCannotRegister
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Passcode), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}
	if err := s.repo.BindRegistration(ctx, user.ID, in.OpenID, string(hash)); err != nil {
		return nil, "", err
	}
	s.recordRegister(ctx, in, true, user.ID)

	token, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	user.OpenID = in.OpenID
	user.Status = StatusRegistered
	return user, token, nil
}

// LoginInput carries the token request.
type LoginInput struct {
	OpenID   string
	Passcode string
	IP       string
}

// IssueToken authenticates an openid+passcode pair and mints a bearer token.
func (s *Service) IssueToken(ctx context.Context, in LoginInput) (*User, string, error) {
	user, err := s.repo.FindByOpenID(ctx, in.OpenID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.recordLogin(ctx, 0, in, false)
			return nil, "", ErrUserNotFound
		}
		return nil, "", err
	}
	if user.Status != StatusRegistered {
		s.recordLogin(ctx, user.ID, in, false)
		return nil, "", ErrBadStatus
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasscodeHash), []byte(in.Passcode)) != nil {
		s.recordLogin(ctx, user.ID, in, false)
		return nil, "", ErrBadPasscode
	}
	s.recordLogin(ctx, user.ID, in, true)

	token, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Identify resolves a bearer token to the owning user.
func (s *Service) Identify(ctx context.Context, token string) (*User, error) {
	userID, err := s.tokens.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrUnauthorized
		}
		return nil, err
	}
	return user, nil
}

// History writes are best effort; an audit failure never blocks the flow.

func (s *Service) recordRegister(ctx context.Context, in RegisterInput, success bool, userID int64) {
	if err := s.repo.RecordRegister(ctx, in.OpenID, in.IP, in.Phone, success, userID); err != nil {
		s.logger.Warn("record register history", slog.Any("error", err))
	}
}

func (s *Service) recordLogin(ctx context.Context, userID int64, in LoginInput, success bool) {
	if err := s.repo.RecordLogin(ctx, userID, in.OpenID, in.IP, success); err != nil {
		s.logger.Warn("record login history", slog.Any("error", err))
	}
}
