package notification

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/dashfault/dashfault-backend/internal/data/repos/testutil"
	types "github.com/dashfault/dashfault-backend/internal/domain"
	"github.com/dashfault/dashfault-backend/internal/platform/dbctx"
)

func TestUpsertReplacesExistingToken(t *testing.T) {
	db := testutil.DB(t)
	repo := NewPushTokenRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background()}

	userID := uuid.New()
	t.Cleanup(func() {
		db.Where("user_id = ?", userID).Delete(&types.PushToken{})
	})

	if err := repo.Upsert(dbc, userID, "token-one"); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := repo.Upsert(dbc, userID, "token-two"); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	row, err := repo.GetByUserID(dbc, userID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if row == nil || row.Token != "token-two" {
		t.Fatalf("got %+v, want token-two", row)
	}

	var count int64
	if err := db.Model(&types.PushToken{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("got %d token rows, want 1", count)
	}
}

func TestGetByUserIDReturnsSeededToken(t *testing.T) {
	db := testutil.DB(t)
	repo := NewPushTokenRepo(db, testutil.Logger(t))

	userID := uuid.New()
	testutil.SeedPushToken(t, db, userID, "seeded-token")

	row, err := repo.GetByUserID(dbctx.Context{Ctx: context.Background()}, userID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if row == nil || row.Token != "seeded-token" {
		t.Fatalf("got %+v, want seeded-token", row)
	}
}

func TestGetByUserIDMissingIsNil(t *testing.T) {
	db := testutil.DB(t)
	repo := NewPushTokenRepo(db, testutil.Logger(t))

	row, err := repo.GetByUserID(dbctx.Context{Ctx: context.Background()}, uuid.New())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if row != nil {
		t.Errorf("expected nil for unknown user, got %+v", row)
	}
}
