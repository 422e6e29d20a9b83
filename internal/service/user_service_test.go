package service

import (
	"context"
	"errors"
	"testing"

	"taskboard/internal/auth"
	"taskboard/internal/domain"
	"taskboard/internal/repository"
	"taskboard/internal/repository/sqlite"
)

func newUserService(t *testing.T) (UserService, repository.UserRepository) {
	t.Helper()

	db, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	repo := sqlite.NewUserRepository(db)
	if err := repo.Init(context.Background()); err != nil {
		t.Fatalf("init user repository: %v", err)
	}
	return NewUserService(repo), repo
}

func strptr(s string) *string { return &s }

func TestRegisterValidationOrder(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		input  RegisterInput
		reason string
	}{
		{
			name:   "missing name",
			input:  RegisterInput{Email: "ann@x.com", Password: "Secur3$pass"},
			reason: "name, email, password required",
		},
		{
			name:   "missing email",
			input:  RegisterInput{Name: "Ann", Password: "Secur3$pass"},
			reason: "name, email, password required",
		},
		{
			name:   "missing password",
			input:  RegisterInput{Name: "Ann", Email: "ann@x.com"},
			reason: "name, email, password required",
		},
		{
			name:   "bad email shape",
			input:  RegisterInput{Name: "Ann", Email: "not-an-email", Password: "Secur3$pass"},
			reason: "Invalid email format",
		},
		{
			name:   "too short",
			input:  RegisterInput{Name: "Ann", Email: "ann@x.com", Password: "Ab1$xyz"},
			reason: "Password must be at least 8 characters",
		},
		{
			name:   "no lowercase",
			input:  RegisterInput{Name: "Ann", Email: "ann@x.com", Password: "ALLUPPER1$"},
			reason: "Password must include uppercase, lowercase, number, and special character",
		},
		{
			name:   "no uppercase",
			input:  RegisterInput{Name: "Ann", Email: "ann@x.com", Password: "alllower1$"},
			reason: "Password must include uppercase, lowercase, number, and special character",
		},
		{
			name:   "no digit",
			input:  RegisterInput{Name: "Ann", Email: "ann@x.com", Password: "NoDigits$$"},
			reason: "Password must include uppercase, lowercase, number, and special character",
		},
		{
			name:   "no special",
			input:  RegisterInput{Name: "Ann", Email: "ann@x.com", Password: "NoSpecial11"},
			reason: "Password must include uppercase, lowercase, number, and special character",
		},
		{
			name:   "confirm mismatch",
			input:  RegisterInput{Name: "Ann", Email: "ann@x.com", Password: "Secur3$pass", ConfirmPassword: strptr("Other3$pass")},
			reason: "Passwords do not match",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.input)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Register() error = %v, want ValidationError", err)
			}
			if verr.Reason != tt.reason {
				t.Errorf("reason = %q, want %q", verr.Reason, tt.reason)
			}
		})
	}
}

func TestRegisterSuccess(t *testing.T) {
	svc, repo := newUserService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{
		Name:            "Ann",
		Email:           "Ann@X.com",
		Password:        "Secur3$pass",
		ConfirmPassword: strptr("Secur3$pass"),
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if user.ID == "" {
		t.Error("registered user has no id")
	}
	if user.Role != domain.RoleUser {
		t.Errorf("role = %q, want %q", user.Role, domain.RoleUser)
	}
	if user.Email != "ann@x.com" {
		t.Errorf("email = %q, want lowercased %q", user.Email, "ann@x.com")
	}
	if user.PasswordHash != "" {
		t.Error("returned user view exposes the password hash")
	}

	stored, err := repo.GetByEmail(ctx, "ann@x.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if stored.PasswordHash == "Secur3$pass" {
		t.Error("stored hash equals the plaintext password")
	}
	if !auth.CheckPassword("Secur3$pass", stored.PasswordHash) {
		t.Error("stored hash does not verify against the password")
	}
}

func TestRegisterSanitizesName(t *testing.T) {
	svc, _ := newUserService(t)

	user, err := svc.Register(context.Background(), RegisterInput{
		Name:     "<script>Ann</script>",
		Email:    "ann@x.com",
		Password: "Secur3$pass",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.Name != "scriptAnn/script" {
		t.Errorf("name = %q, want angle brackets stripped", user.Name)
	}
}

func TestRegisterDuplicateEmailCaseInsensitive(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Name: "Ann", Email: "Ann@X.com", Password: "Secur3$pass"}); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}

	_, err := svc.Register(ctx, RegisterInput{Name: "Ann Again", Email: "ann@x.com", Password: "Secur3$pass"})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("second Register() error = %v, want ErrEmailTaken", err)
	}
}

func TestAuthenticateGenericFailure(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Name: "Ann", Email: "ann@x.com", Password: "Secur3$pass"}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	_, wrongPass := svc.Authenticate(ctx, "ann@x.com", "Wr0ng$pass!")
	_, unknownEmail := svc.Authenticate(ctx, "nobody@x.com", "Secur3$pass")

	if !errors.Is(wrongPass, ErrInvalidCredentials) {
		t.Errorf("wrong password error = %v, want ErrInvalidCredentials", wrongPass)
	}
	if !errors.Is(unknownEmail, ErrInvalidCredentials) {
		t.Errorf("unknown email error = %v, want ErrInvalidCredentials", unknownEmail)
	}
	if wrongPass.Error() != unknownEmail.Error() {
		t.Error("login failures are distinguishable")
	}
}

func TestAuthenticateSuccessReturnsRedactedUser(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Name: "Ann", Email: "ann@x.com", Password: "Secur3$pass"}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	user, err := svc.Authenticate(ctx, "Ann@X.com", "Secur3$pass")
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if user.PasswordHash != "" {
		t.Error("authenticated user view exposes the password hash")
	}
}

func TestEnsureAdmin(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	if err := svc.EnsureAdmin(ctx, "", "admin@x.com", "Adm1n$pass"); err != nil {
		t.Fatalf("EnsureAdmin() error = %v", err)
	}

	admin, err := svc.Authenticate(ctx, "admin@x.com", "Adm1n$pass")
	if err != nil {
		t.Fatalf("Authenticate(admin) error = %v", err)
	}
	if admin.Role != domain.RoleAdmin {
		t.Errorf("seeded role = %q, want %q", admin.Role, domain.RoleAdmin)
	}
	if admin.Name != "Administrator" {
		t.Errorf("seeded name = %q, want default", admin.Name)
	}

	// idempotent on restart
	if err := svc.EnsureAdmin(ctx, "", "admin@x.com", "Adm1n$pass"); err != nil {
		t.Fatalf("second EnsureAdmin() error = %v", err)
	}
}

func TestEnsureAdminSkippedWhenUnconfigured(t *testing.T) {
	svc, _ := newUserService(t)

	if err := svc.EnsureAdmin(context.Background(), "Admin", "", ""); err != nil {
		t.Fatalf("EnsureAdmin() without config error = %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "admin@x.com", "Adm1n$pass"); err == nil {
		t.Error("admin was created despite missing configuration")
	}
}
