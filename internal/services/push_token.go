package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dashfault/dashfault-backend/internal/data/repos"
	"github.com/dashfault/dashfault-backend/internal/platform/apierr"
	"github.com/dashfault/dashfault-backend/internal/platform/dbctx"
	"github.com/dashfault/dashfault-backend/internal/platform/logger"
)

// PushTokenService keeps one current device token per user.
type PushTokenService interface {
	Register(ctx context.Context, userID uuid.UUID, token string) error
}

type pushTokenService struct {
	log           *logger.Logger
	pushTokenRepo repos.PushTokenRepo
}

func NewPushTokenService(log *logger.Logger, pushTokenRepo repos.PushTokenRepo) PushTokenService {
	serviceLog := log.With("service", "PushTokenService")
	return &pushTokenService{log: serviceLog, pushTokenRepo: pushTokenRepo}
}

func (ps *pushTokenService) Register(ctx context.Context, userID uuid.UUID, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return apierr.InvalidInput(fmt.Errorf("token is required"))
	}
	if err := ps.pushTokenRepo.Upsert(dbctx.Context{Ctx: ctx}, userID, token); err != nil {
		return err
	}
	ps.log.Info("Push token registered", "user_id", userID)
	return nil
}
