package service

import (
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/marcdejesus/graph-market/internal/domain"
	"github.com/marcdejesus/graph-market/internal/repo"
)

func newUserService() UserService {
	return NewUserService(repo.NewUserRepository(), zap.NewNop())
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newUserService()

	user, err := svc.Register(&domain.RegisterRequest{
		Email:     "Jane.Doe@Example.com",
		Password:  "s3cret-password",
		FirstName: "Jane",
		LastName:  "Doe",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.ID == 0 {
		t.Error("Register() did not assign an ID")
	}
	if user.Email != "jane.doe@example.com" {
		t.Errorf("Register() email = %q, want lowercased", user.Email)
	}
	if user.Role != domain.UserRoleUser {
		t.Errorf("Register() role = %q, want %q", user.Role, domain.UserRoleUser)
	}
	if user.PasswordHash == "s3cret-password" {
		t.Error("Register() stored the plaintext password")
	}

	// login is case-insensitive on email
	got, err := svc.Login(&domain.LoginRequest{Email: "JANE.DOE@example.com", Password: "s3cret-password"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("Login() user ID = %d, want %d", got.ID, user.ID)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newUserService()

	req := &domain.RegisterRequest{Email: "dup@example.com", Password: "password1", FirstName: "A", LastName: "B"}
	if _, err := svc.Register(req); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}
	if _, err := svc.Register(req); !errors.Is(err, ErrUserExists) {
		t.Errorf("second Register() error = %v, want ErrUserExists", err)
	}
}

func TestLoginFailures(t *testing.T) {
	svc := newUserService()
	if _, err := svc.Register(&domain.RegisterRequest{
		Email: "user@example.com", Password: "correct-horse", FirstName: "U", LastName: "S",
	}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"wrong password", "user@example.com", "battery-staple", ErrInvalidCredentials},
		{"unknown email", "nobody@example.com", "correct-horse", ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(&domain.LoginRequest{Email: tt.email, Password: tt.password})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Login() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoginInactiveUser(t *testing.T) {
	userRepo := repo.NewUserRepository()
	svc := NewUserService(userRepo, zap.NewNop())

	user, err := svc.Register(&domain.RegisterRequest{
		Email: "ghost@example.com", Password: "password1", FirstName: "G", LastName: "H",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	user.IsActive = false
	if err := userRepo.Update(user); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if _, err := svc.Login(&domain.LoginRequest{Email: "ghost@example.com", Password: "password1"}); !errors.Is(err, ErrUserInactive) {
		t.Errorf("Login() error = %v, want ErrUserInactive", err)
	}
}

func TestGetUserByID(t *testing.T) {
	svc := newUserService()

	user, err := svc.Register(&domain.RegisterRequest{
		Email: "find@example.com", Password: "password1", FirstName: "F", LastName: "I",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	got, err := svc.GetUserByID(user.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if got.Email != user.Email {
		t.Errorf("GetUserByID() email = %q, want %q", got.Email, user.Email)
	}

	if _, err := svc.GetUserByID(9999); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("GetUserByID(9999) error = %v, want ErrUserNotFound", err)
	}
}
