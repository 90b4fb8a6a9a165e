package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"
	"unicode/utf8"

	domainuser "stayadmin/internal/domain/user"
)

var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrPasswordTooShort   = errors.New("auth: password must be at least 8 characters")
	ErrWrongPassword      = errors.New("auth: current password does not match")
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type TokenIssuer interface {
	Issue(userID uint, email, name, role string, now time.Time) (string, error)
}

type Service struct {
	Users     domainuser.Repository
	Passwords PasswordHasher
	Tokens    TokenIssuer
	Logger    *slog.Logger
}

type LoginParams struct {
	Email    string
	Password string
}

type AuthResult struct {
	User  *domainuser.User
	Token string
}

func (s *Service) Login(ctx context.Context, params LoginParams) (*AuthResult, error) {
	email := domainuser.NormalizeEmail(params.Email)
	if email == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.Users.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domainuser.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := s.Passwords.Compare(user.PasswordHash, params.Password); err != nil {
		return nil, ErrInvalidCredentials
	}
	token, err := s.Tokens.Issue(user.ID, user.Email, user.Name, string(user.Role), time.Now())
	if err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("user authenticated", "user_id", user.ID)
	}
	return &AuthResult{User: user, Token: token}, nil
}

func (s *Service) Me(ctx context.Context, userID uint) (*domainuser.User, error) {
	return s.Users.ByID(ctx, userID)
}

type ChangePasswordParams struct {
	UserID          uint
	CurrentPassword string
	NewPassword     string
}

func (s *Service) ChangePassword(ctx context.Context, params ChangePasswordParams) error {
	if utf8.RuneCountInString(params.NewPassword) < 8 {
		return ErrPasswordTooShort
	}
	user, err := s.Users.ByID(ctx, params.UserID)
	if err != nil {
		return err
	}
	if err := s.Passwords.Compare(user.PasswordHash, params.CurrentPassword); err != nil {
		return ErrWrongPassword
	}
	hash, err := s.Passwords.Hash(params.NewPassword)
	if err != nil {
		return err
	}
	if err := s.Users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}
	if s.Logger != nil {
		s.Logger.Info("password changed", "user_id", user.ID)
	}
	return nil
}
