package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strconv"
	"strings"

	"github.com/you/meeting-room-booking/pkg/auth"
	"github.com/you/meeting-room-booking/services/reservation-service/internal/domain"
)

const minPasswordLen = 8

type RegisterInput struct {
	Email    string
	Password string
	FullName *string
	IsAdmin  bool
}

type AuthSvc struct {
	users  domain.UserStore
	issuer *auth.Issuer
	log    *slog.Logger
	// allowAdminSignup lets /register create administrators.
	allowAdminSignup bool
}

func NewAuthSvc(users domain.UserStore, issuer *auth.Issuer, allowAdminSignup bool, log *slog.Logger) *AuthSvc {
	if log == nil {
		log = slog.Default()
	}
	return &AuthSvc{users: users, issuer: issuer, log: log, allowAdminSignup: allowAdminSignup}
}

func (s *AuthSvc) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	return s.register(ctx, in, s.allowAdminSignup)
}

func (s *AuthSvc) register(ctx context.Context, in RegisterInput, allowAdmin bool) (*domain.User, error) {
	email, err := validateEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if len(in.Password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, minPasswordLen)
	}
	if in.IsAdmin && !allowAdmin {
		return nil, fmt.Errorf("%w: admin self-registration is disabled", domain.ErrForbidden)
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &domain.User{Email: email, FullName: in.FullName, PasswordHash: hash, IsAdmin: in.IsAdmin}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	s.log.Info("user registered", "id", u.ID, "admin", u.IsAdmin)
	return u, nil
}

// Login checks the credentials and issues an access token. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (s *AuthSvc) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.users.ByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return "", domain.ErrBadCredentials
	}
	if err != nil {
		return "", err
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return "", domain.ErrBadCredentials
	}
	return s.issuer.CreateAccessToken(strconv.FormatUint(uint64(u.ID), 10), u.Email, u.IsAdmin)
}

// Authenticate resolves a bearer token to the stored user. The admin flag is
// read from the store, not from the token.
func (s *AuthSvc) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.issuer.ParseValidate(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUnauthorized, err)
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return nil, fmt.Errorf("%w: bad subject", domain.ErrUnauthorized)
	}
	u, err := s.users.ByID(ctx, uint(id))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: unknown user", domain.ErrUnauthorized)
	}
	return u, err
}

// EnsureAdmin creates an administrator with the given credentials unless the
// email is already registered. It reports whether a user was created.
func (s *AuthSvc) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	if _, err := s.users.ByEmail(ctx, email); err == nil {
		return false, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return false, err
	}
	if _, err := s.register(ctx, RegisterInput{Email: email, Password: password, IsAdmin: true}, true); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func validateEmail(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return "", fmt.Errorf("%w: invalid email", domain.ErrValidation)
	}
	return s, nil
}
