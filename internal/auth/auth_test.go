package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"wisewallet/internal/core"
	"wisewallet/internal/storage/memory"
)

const testSecret = "0123456789abcdef"

func newTestService() *Service {
	return NewService(memory.New(), testSecret, time.Hour)
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	u, err := svc.Register(ctx, "  Alice@Example.com ", "hunter22-hunter22")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Email != "alice@example.com" {
		t.Fatalf("email = %q, want normalized lowercase", u.Email)
	}
	if u.PasswordHash == "hunter22-hunter22" || u.PasswordHash == "" {
		t.Fatalf("password must be stored hashed")
	}

	token, err := svc.Login(ctx, "alice@example.com", "hunter22-hunter22")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ownerID, err := svc.VerifyToken(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ownerID != u.ID {
		t.Fatalf("token subject = %q, want %q", ownerID, u.ID)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "not-an-email", "longenoughpassword"); err == nil {
		t.Fatalf("expected error for bad email")
	}
	if _, err := svc.Register(ctx, "a@b.c", "short"); err == nil {
		t.Fatalf("expected error for short password")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "a@b.c", "longenoughpassword"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Register(ctx, "A@B.C", "longenoughpassword"); !errors.Is(err, core.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "a@b.c", "longenoughpassword"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Login(ctx, "a@b.c", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody@b.c", "longenoughpassword"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestVerifyToken(t *testing.T) {
	svc := newTestService()

	if _, err := svc.VerifyToken("garbage"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}

	// Tokens signed with a different secret must not verify.
	other := NewService(memory.New(), "another-secret-value", time.Hour)
	ctx := context.Background()
	if _, err := other.Register(ctx, "a@b.c", "longenoughpassword"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	token, err := other.Login(ctx, "a@b.c", "longenoughpassword")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.VerifyToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for foreign signature, got %v", err)
	}
}

func TestExpiredToken(t *testing.T) {
	svc := NewService(memory.New(), testSecret, -time.Minute)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "a@b.c", "longenoughpassword"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	token, err := svc.Login(ctx, "a@b.c", "longenoughpassword")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.VerifyToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}
