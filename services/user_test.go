package services

import (
	"context"
	"errors"
	"testing"

	"github.com/LuqmanKt98/hangout-app/models"
)

func TestRegisterAndLogin(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	ctx := context.Background()

	auth, err := svc.Register(ctx, RegisterRequest{
		Email:       "Dana@Example.com",
		Password:    "correct-horse",
		DisplayName: "Dana",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if auth.Token == "" {
		t.Fatalf("register should issue a token")
	}
	if auth.User.Email != "dana@example.com" {
		t.Fatalf("email should be lowercased, got %s", auth.User.Email)
	}

	// The address is taken regardless of case.
	if _, err := svc.Register(ctx, RegisterRequest{
		Email: "dana@example.com", Password: "whatever1", DisplayName: "Imposter",
	}); !errors.Is(err, ErrStorageConflict) {
		t.Fatalf("duplicate email: want ErrStorageConflict, got %v", err)
	}

	if _, err := svc.Login(ctx, LoginRequest{Email: "dana@example.com", Password: "correct-horse"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := svc.Login(ctx, LoginRequest{Email: "dana@example.com", Password: "wrong"}); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("bad password: want ErrUnauthenticated, got %v", err)
	}
	if _, err := svc.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "x"}); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("unknown email: want ErrUnauthenticated, got %v", err)
	}
}

func TestUpdateProfilePartial(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	user := createUser(t, db, "dana")
	ctx := context.Background()

	updated, err := svc.UpdateProfile(ctx, user.ID, models.UpdateProfileRequest{Bio: "likes long walks"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Bio != "likes long walks" {
		t.Fatalf("bio not applied")
	}
	if updated.DisplayName != "dana" {
		t.Fatalf("unset fields should be untouched, got %s", updated.DisplayName)
	}
}

func TestRegisterFCMToken(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	user := createUser(t, db, "dana")
	ctx := context.Background()

	if err := svc.RegisterFCMToken(ctx, user.ID, "device-token-1"); err != nil {
		t.Fatalf("register token: %v", err)
	}
	reloaded, err := svc.Get(ctx, user.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if reloaded.FCMToken != "device-token-1" {
		t.Fatalf("token not stored")
	}

	// Empty token unregisters.
	if err := svc.RegisterFCMToken(ctx, user.ID, ""); err != nil {
		t.Fatalf("unregister: %v", err)
	}
	reloaded, _ = svc.Get(ctx, user.ID)
	if reloaded.FCMToken != "" {
		t.Fatalf("token should be cleared")
	}
}
