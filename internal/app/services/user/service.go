package user

import (
	"context"
	"errors"
	"log/slog"
	"unicode/utf8"

	auditsvc "stayadmin/internal/app/services/audit"
	"stayadmin/internal/app/uow"
	domainaudit "stayadmin/internal/domain/audit"
	domainuser "stayadmin/internal/domain/user"
)

var (
	ErrPasswordTooShort = errors.New("user: password must be at least 8 characters")
	ErrBadRole          = errors.New("user: role must be admin or super_admin")
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// Service manages the admin accounts that operate the system.
type Service struct {
	UoW       uow.Factory
	Users     domainuser.Repository
	Passwords PasswordHasher
	Audit     *auditsvc.Recorder
	Logger    *slog.Logger
}

func (s *Service) ByID(ctx context.Context, id uint) (*domainuser.User, error) {
	return s.Users.ByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]domainuser.User, error) {
	return s.Users.List(ctx)
}

type CreateParams struct {
	Name     string
	Email    string
	Password string
	Role     string
}

func (s *Service) Create(ctx context.Context, params CreateParams, actorID uint) (*domainuser.User, error) {
	email := domainuser.NormalizeEmail(params.Email)
	if email == "" {
		return nil, domainuser.ErrEmailRequired
	}
	if params.Name == "" {
		return nil, domainuser.ErrNameRequired
	}
	if utf8.RuneCountInString(params.Password) < 8 {
		return nil, ErrPasswordTooShort
	}
	role, err := parseRole(params.Role)
	if err != nil {
		return nil, err
	}
	hash, err := s.Passwords.Hash(params.Password)
	if err != nil {
		return nil, err
	}
	u := &domainuser.User{
		Name:         params.Name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	tx, err := s.UoW.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)
	if err := tx.Users().Create(ctx, u); err != nil {
		return nil, err
	}
	entry := s.Audit.Record(ctx, tx.Audit(), auditsvc.Change{
		Entity: "user", EntityID: u.ID, Action: domainaudit.ActionCreate,
		New: u, UserID: actorID,
	})
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	s.Audit.Publish(ctx, entry)
	if s.Logger != nil {
		s.Logger.Info("user created", "user_id", u.ID, "role", u.Role)
	}
	return u, nil
}

type UpdateParams struct {
	Name  string
	Email string
	Role  string
}

func (s *Service) Update(ctx context.Context, id uint, params UpdateParams, actorID uint) (*domainuser.User, error) {
	existing, err := s.Users.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	email := domainuser.NormalizeEmail(params.Email)
	if email == "" {
		return nil, domainuser.ErrEmailRequired
	}
	if params.Name == "" {
		return nil, domainuser.ErrNameRequired
	}
	role, err := parseRole(params.Role)
	if err != nil {
		return nil, err
	}
	u := &domainuser.User{
		ID:           existing.ID,
		Name:         params.Name,
		Email:        email,
		PasswordHash: existing.PasswordHash,
		Role:         role,
		IsActive:     existing.IsActive,
		CreatedAt:    existing.CreatedAt,
	}
	tx, err := s.UoW.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)
	if err := tx.Users().Update(ctx, u); err != nil {
		return nil, err
	}
	entry := s.Audit.Record(ctx, tx.Audit(), auditsvc.Change{
		Entity: "user", EntityID: u.ID, Action: domainaudit.ActionUpdate,
		Old: existing, New: u, UserID: actorID,
	})
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	s.Audit.Publish(ctx, entry)
	return u, nil
}

func (s *Service) Deactivate(ctx context.Context, id uint, actorID uint) error {
	existing, err := s.Users.ByID(ctx, id)
	if err != nil {
		return err
	}
	tx, err := s.UoW.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)
	if err := tx.Users().Deactivate(ctx, id); err != nil {
		return err
	}
	entry := s.Audit.Record(ctx, tx.Audit(), auditsvc.Change{
		Entity: "user", EntityID: id, Action: domainaudit.ActionDelete,
		Old: existing, UserID: actorID,
	})
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	s.Audit.Publish(ctx, entry)
	return nil
}

func parseRole(raw string) (domainuser.Role, error) {
	switch domainuser.Role(raw) {
	case "":
		return domainuser.RoleAdmin, nil
	case domainuser.RoleAdmin:
		return domainuser.RoleAdmin, nil
	case domainuser.RoleSuperAdmin:
		return domainuser.RoleSuperAdmin, nil
	default:
		return "", ErrBadRole
	}
}
