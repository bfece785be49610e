package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mvucinic/billsight/internal/config"
	"github.com/mvucinic/billsight/internal/services/users"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	encoded, err := HashPassword("s3cret-lozinka")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	ok, err := VerifyPassword("s3cret-lozinka", encoded)
	if err != nil {
		t.Fatalf("verify password: %v", err)
	}
	if !ok {
		t.Fatal("expected password to verify")
	}

	ok, err = VerifyPassword("wrong", encoded)
	if err != nil {
		t.Fatalf("verify wrong password: %v", err)
	}
	if ok {
		t.Fatal("expected wrong password to fail verification")
	}
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	if _, err := HashPassword(""); err == nil {
		t.Fatal("expected error for empty password")
	}
}

func TestTokenManagerGenerateAndValidate(t *testing.T) {
	tm, err := NewTokenManager("unit-test-secret", time.Hour, 24*time.Hour, "billsight")
	if err != nil {
		t.Fatalf("new token manager: %v", err)
	}

	userID := uuid.New()
	pair, err := tm.Generate(userID, "ana@example.com")
	if err != nil {
		t.Fatalf("generate tokens: %v", err)
	}

	got, err := tm.ValidateAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("validate access token: %v", err)
	}
	if got != userID {
		t.Fatalf("want subject %s, got %s", userID, got)
	}

	if _, err := tm.ValidateAccessToken(pair.RefreshToken); err == nil {
		t.Fatal("refresh token must not validate as access token")
	}
	if _, err := tm.ValidateRefreshToken(pair.RefreshToken); err != nil {
		t.Fatalf("validate refresh token: %v", err)
	}
}

type fakeDirectory struct {
	byEmail map[string]users.User
	byID    map[uuid.UUID]users.User
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{byEmail: map[string]users.User{}, byID: map[uuid.UUID]users.User{}}
}

func (d *fakeDirectory) Create(_ context.Context, params users.CreateParams) (users.User, error) {
	if _, exists := d.byEmail[params.Email]; exists {
		return users.User{}, users.ErrAlreadyExists
	}
	u := users.User{
		ID:           uuid.New(),
		Username:     params.Username,
		Email:        params.Email,
		PasswordHash: params.PasswordHash,
		CreatedAt:    time.Now(),
	}
	d.byEmail[u.Email] = u
	d.byID[u.ID] = u
	return u, nil
}

func (d *fakeDirectory) GetByEmail(_ context.Context, email string) (users.User, error) {
	u, ok := d.byEmail[email]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return u, nil
}

func (d *fakeDirectory) GetByID(_ context.Context, id uuid.UUID) (users.User, error) {
	u, ok := d.byID[id]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return u, nil
}

func newTestService(t *testing.T) (*Service, *fakeDirectory) {
	t.Helper()
	dir := newFakeDirectory()
	svc, err := NewService(config.AuthConfig{
		JWTSecret:       "unit-test-secret",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
	}, dir)
	if err != nil {
		t.Fatalf("new auth service: %v", err)
	}
	return svc, dir
}

func TestServiceRegisterAndLogin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterParams{
		Username: "ana",
		Email:    "Ana@Example.com",
		Password: "lozinka123",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "ana@example.com" {
		t.Fatalf("want normalized email, got %s", user.Email)
	}

	pair, logged, err := svc.Login(ctx, "ana@example.com", "lozinka123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if logged.ID != user.ID {
		t.Fatal("login returned a different user")
	}

	resolved, err := svc.AuthorizeAccessToken(ctx, pair.AccessToken)
	if err != nil {
		t.Fatalf("authorize access token: %v", err)
	}
	if resolved.ID != user.ID {
		t.Fatal("authorized token resolved to wrong user")
	}
}

func TestServiceLoginRejectsBadPassword(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterParams{Username: "ana", Email: "ana@example.com", Password: "lozinka123"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, _, err := svc.Login(ctx, "ana@example.com", "pogresna"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("want ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "niko@example.com", "lozinka123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user: want ErrInvalidCredentials, got %v", err)
	}
}

func TestServiceRefreshIssuesNewPair(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterParams{Username: "ana", Email: "ana@example.com", Password: "lozinka123"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	pair, _, err := svc.Login(ctx, "ana@example.com", "lozinka123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	fresh, refreshed, err := svc.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.ID != user.ID {
		t.Fatal("refresh resolved to wrong user")
	}
	if fresh.AccessToken == "" {
		t.Fatal("refresh returned empty access token")
	}

	if _, _, err := svc.Refresh(ctx, pair.AccessToken); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("access token used as refresh: want ErrInvalidCredentials, got %v", err)
	}
}
