package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"taskboard/internal/auth"
	"taskboard/internal/domain"
	"taskboard/internal/repository"
)

// emailShape is the same permissive local@domain.tld check the API has
// always used; real validation happens when mail bounces.
var emailShape = regexp.MustCompile(`.+@.+\..+`)

// RegisterInput carries the registration request fields. ConfirmPassword
// is a pointer so an omitted field can be told apart from an empty one.
type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword *string
}

// UserService describes user lifecycle operations.
type UserService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	EnsureAdmin(ctx context.Context, name, email, password string) error
}

type userService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users}
}

// Register validates the input, hashes the password and stores the user.
// The stored role is always "user"; admins are provisioned separately
// through EnsureAdmin, never through self-service registration.
func (s *userService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	name := sanitizeName(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if name == "" || email == "" || in.Password == "" {
		return nil, validationError("name, email, password required")
	}
	if !emailShape.MatchString(email) {
		return nil, validationError("Invalid email format")
	}
	if len(in.Password) < 8 {
		return nil, validationError("Password must be at least 8 characters")
	}
	if !passwordMeetsPolicy(in.Password) {
		return nil, validationError("Password must include uppercase, lowercase, number, and special character")
	}
	if in.ConfirmPassword != nil && in.Password != *in.ConfirmPassword {
		return nil, validationError("Passwords do not match")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return redactUser(user), nil
}

func (s *userService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, validationError("email and password required")
	}
	if !emailShape.MatchString(email) {
		return nil, validationError("Invalid email format")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return redactUser(user), nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return redactUser(user), nil
}

// EnsureAdmin creates the configured admin account on startup if it does
// not exist yet. It is a no-op when no admin credentials are configured.
func (s *userService) EnsureAdmin(ctx context.Context, name, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil
	}
	if name = sanitizeName(name); name == "" {
		name = "Administrator"
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	admin := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
	}
	if err := s.users.Create(ctx, admin); err != nil && !errors.Is(err, repository.ErrEmailTaken) {
		return err
	}
	return nil
}

// passwordMeetsPolicy requires at least one lowercase letter, one
// uppercase letter, one digit and one character outside [A-Za-z0-9].
func passwordMeetsPolicy(password string) bool {
	var lower, upper, digit, special bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		default:
			special = true
		}
	}
	return lower && upper && digit && special
}

func sanitizeName(name string) string {
	name = strings.NewReplacer("<", "", ">", "").Replace(name)
	return strings.TrimSpace(name)
}

func redactUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	return &domain.User{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
