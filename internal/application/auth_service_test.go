package application

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/matiasb-dev/authkeep/internal/domain/entity"
	repo "github.com/matiasb-dev/authkeep/internal/domain/repository"
	"github.com/matiasb-dev/authkeep/pkg/helpers"
)

type stubUserRepo struct {
	createFn     func(context.Context, *entity.User) error
	getByIDFn    func(context.Context, string) (*entity.User, error)
	getByEmailFn func(context.Context, string) (*entity.User, error)
	updateFn     func(context.Context, *entity.User) error
}

func (s *stubUserRepo) Create(ctx context.Context, u *entity.User) error {
	if s.createFn != nil {
		return s.createFn(ctx, u)
	}
	return nil
}

func (s *stubUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if s.getByIDFn != nil {
		return s.getByIDFn(ctx, id)
	}
	return nil, repo.ErrNotFound
}

func (s *stubUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	if s.getByEmailFn != nil {
		return s.getByEmailFn(ctx, email)
	}
	return nil, repo.ErrNotFound
}

func (s *stubUserRepo) Update(ctx context.Context, u *entity.User) error {
	if s.updateFn != nil {
		return s.updateFn(ctx, u)
	}
	return nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func TestRegisterHashesPasswordAndNormalizesEmail(t *testing.T) {
	var stored *entity.User
	svc := &AuthService{
		Users: &stubUserRepo{
			createFn: func(_ context.Context, u *entity.User) error {
				u.ID = "user-1"
				stored = u
				return nil
			},
		},
		Logger: quietLogger(),
	}

	u, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Test User",
		Email:    "  Test@Example.COM ",
		Password: "secret1",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.Email != "test@example.com" {
		t.Fatalf("email not normalized: %s", u.Email)
	}
	if stored.Password == "secret1" {
		t.Fatal("password stored in plaintext")
	}
	if !helpers.CompareHashAndPassword(stored.Password, "secret1") {
		t.Fatal("stored hash does not match password")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := &AuthService{
		Users: &stubUserRepo{
			createFn: func(context.Context, *entity.User) error { return repo.ErrConflict },
		},
		Logger: quietLogger(),
	}

	_, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Test User",
		Email:    "a@x.com",
		Password: "secret1",
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestAuthenticateFailuresAreUniform(t *testing.T) {
	hash, err := helpers.HashPassword("secret1")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	svc := &AuthService{
		Users: &stubUserRepo{
			getByEmailFn: func(_ context.Context, email string) (*entity.User, error) {
				if email == "a@x.com" {
					return &entity.User{ID: "user-1", Email: email, Password: hash}, nil
				}
				return nil, repo.ErrNotFound
			},
		},
		Logger: quietLogger(),
	}
	ctx := context.Background()

	if _, err := svc.Authenticate(ctx, "a@x.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "nobody@x.com", "secret1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email: expected ErrInvalidCredentials, got %v", err)
	}

	u, err := svc.Authenticate(ctx, "A@X.com", "secret1")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if u.ID != "user-1" {
		t.Fatalf("unexpected user id: %s", u.ID)
	}
}
