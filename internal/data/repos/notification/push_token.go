package notification

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/dashfault/dashfault-backend/internal/domain"
	"github.com/dashfault/dashfault-backend/internal/platform/dbctx"
	"github.com/dashfault/dashfault-backend/internal/platform/logger"
)

type PushTokenRepo interface {
	// Upsert replaces the user's current token; one current value per user.
	Upsert(dbc dbctx.Context, userID uuid.UUID, token string) error
	GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.PushToken, error)
}

type pushTokenRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPushTokenRepo(db *gorm.DB, baseLog *logger.Logger) PushTokenRepo {
	repoLog := baseLog.With("repo", "PushTokenRepo")
	return &pushTokenRepo{db: db, log: repoLog}
}

func (r *pushTokenRepo) Upsert(dbc dbctx.Context, userID uuid.UUID, token string) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	row := &types.PushToken{
		ID:     uuid.New(),
		UserID: userID,
		Token:  token,
	}
	return transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"token": token, "updated_at": time.Now()}),
		}).
		Create(row).Error
}

func (r *pushTokenRepo) GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.PushToken, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.PushToken
	err := transaction.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}
