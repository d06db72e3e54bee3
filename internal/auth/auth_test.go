package auth

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"habitd/internal/storage/sqlite"
)

func newService(t *testing.T) *Service {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "auth.db"), nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return NewService(store, NewTokens("test-secret", time.Hour), nil, WithBcryptCost(bcrypt.MinCost))
}

func TestTokensRoundTrip(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	raw, err := tokens.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	id, err := tokens.Verify(raw)
	if err != nil || id != "user-1" {
		t.Fatalf("verify: got %q, %v", id, err)
	}
}

func TestTokensRejectTampering(t *testing.T) {
	raw, err := NewTokens("secret", time.Hour).Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := NewTokens("other-secret", time.Hour).Verify(raw); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for wrong secret, got %v", err)
	}
	if _, err := NewTokens("secret", time.Hour).Verify("not.a.token"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for garbage, got %v", err)
	}
}

func TestTokensExpire(t *testing.T) {
	tokens := NewTokens("secret", time.Minute)
	issued := time.Date(2024, 3, 14, 12, 0, 0, 0, time.UTC)
	tokens.now = func() time.Time { return issued }

	raw, err := tokens.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	tokens.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = tokens.Verify(raw)
	if !errors.Is(err, ErrUnauthorized) || !IsExpired(err) {
		t.Fatalf("expected expired token error, got %v", err)
	}
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	session, err := svc.Register(ctx, Registration{Name: "Ada", Email: " Ada@Example.com ", Password: "secret1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if session.Token == "" || session.User.Email != "ada@example.com" || session.User.PasswordHash == "" {
		t.Fatalf("unexpected session: %#v", session)
	}
	if strings.Contains(session.User.PasswordHash, "secret1") {
		t.Fatal("password stored in clear text")
	}

	id, err := svc.Authenticate(ctx, session.Token)
	if err != nil || id != session.User.ID {
		t.Fatalf("authenticate: %q, %v", id, err)
	}

	login, err := svc.Login(ctx, "ADA@example.com", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if login.User.ID != session.User.ID {
		t.Fatalf("login resolved to another user: %#v", login.User)
	}

	me, err := svc.Me(ctx, session.User.ID)
	if err != nil || me.Name != "Ada" {
		t.Fatalf("me: %#v, %v", me, err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	for _, in := range []Registration{
		{Email: "a@example.com", Password: "secret1"},
		{Name: "A", Email: "not-an-email", Password: "secret1"},
		{Name: "A", Email: "a@example.com", Password: "short"},
	} {
		if _, err := svc.Register(ctx, in); !errors.Is(err, ErrValidation) {
			t.Fatalf("%#v: expected ErrValidation, got %v", in, err)
		}
	}

	if _, err := svc.Register(ctx, Registration{Name: "A", Email: "a@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(ctx, Registration{Name: "B", Email: "A@example.com", Password: "secret2"}); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestLoginFailures(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, Registration{Name: "Ada", Email: "ada@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Login(ctx, "ada@example.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "secret1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "", ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestAuthenticateUnknownUser(t *testing.T) {
	svc := newService(t)
	raw, err := svc.tokens.Issue("ghost")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), raw); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
