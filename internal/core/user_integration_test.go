package core_test

import (
	"context"
	"errors"
	"testing"

	"stocktrack/internal/core"
)

func TestUser_AuthenticateRoundTrip(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	users := core.NewUserService(pool)
	ctx := context.Background()

	created, err := users.Create(ctx, core.NewUserInput{
		Username: "maria",
		Email:    "maria@example.com",
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.Role != core.RoleStaff {
		t.Errorf("expected default staff role, got %s", created.Role)
	}

	u, err := users.Authenticate(ctx, "maria", "correct-horse")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if u.ID != created.ID {
		t.Errorf("authenticated wrong user: %d", u.ID)
	}

	// Wrong password and unknown user return the same error.
	_, badPass := users.Authenticate(ctx, "maria", "wrong")
	_, badUser := users.Authenticate(ctx, "nobody", "wrong")
	if !errors.Is(badPass, core.ErrInvalidCredentials) || !errors.Is(badUser, core.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for both, got %v / %v", badPass, badUser)
	}
}

func TestUser_InactiveCannotAuthenticate(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	users := core.NewUserService(pool)
	ctx := context.Background()

	created, err := users.Create(ctx, core.NewUserInput{
		Username: "leaver", Password: "goodbye-world",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := users.SetActive(ctx, testerUserID, created.ID, false); err != nil {
		t.Fatalf("SetActive failed: %v", err)
	}

	if _, err := users.Authenticate(ctx, "leaver", "goodbye-world"); !errors.Is(err, core.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for inactive user, got %v", err)
	}
}

func TestUser_SelfProtection(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	users := core.NewUserService(pool)
	ctx := context.Background()

	if err := users.SetRole(ctx, testerUserID, testerUserID, core.RoleStaff); !errors.Is(err, core.ErrUserProtected) {
		t.Errorf("expected ErrUserProtected on self demotion, got %v", err)
	}
	if err := users.SetActive(ctx, testerUserID, testerUserID, false); !errors.Is(err, core.ErrUserProtected) {
		t.Errorf("expected ErrUserProtected on self deactivation, got %v", err)
	}
	if err := users.Delete(ctx, testerUserID, testerUserID); !errors.Is(err, core.ErrUserProtected) {
		t.Errorf("expected ErrUserProtected on self delete, got %v", err)
	}
}

func TestUser_DeleteBlockedByHistory(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	users := core.NewUserService(pool)
	txSvc := core.NewTransactionService(pool, core.NewUnitLedger(pool))
	ctx := context.Background()

	clerk, err := users.Create(ctx, core.NewUserInput{Username: "clerk", Password: "clerk-pass-1"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := txSvc.Create(ctx, core.TransactionInput{
		TypeID: inflowTypeID, ProductID: printerID, Quantity: 1,
		Lot: "LOT-U", UserID: clerk.ID,
	}); err != nil {
		t.Fatalf("inflow failed: %v", err)
	}

	if err := users.Delete(ctx, testerUserID, clerk.ID); !errors.Is(err, core.ErrUserProtected) {
		t.Errorf("expected ErrUserProtected for user with history, got %v", err)
	}
}

func TestUser_ChangePassword(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	users := core.NewUserService(pool)
	ctx := context.Background()

	u, err := users.Create(ctx, core.NewUserInput{Username: "rotator", Password: "old-password"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := users.ChangePassword(ctx, u.ID, "short"); err == nil {
		t.Error("expected rejection of short password")
	}
	if err := users.ChangePassword(ctx, u.ID, "new-password-1"); err != nil {
		t.Fatalf("ChangePassword failed: %v", err)
	}
	if _, err := users.Authenticate(ctx, "rotator", "old-password"); !errors.Is(err, core.ErrInvalidCredentials) {
		t.Error("old password still accepted")
	}
	if _, err := users.Authenticate(ctx, "rotator", "new-password-1"); err != nil {
		t.Errorf("new password rejected: %v", err)
	}
}
