package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dashfault/dashfault-backend/internal/data/repos"
	types "github.com/dashfault/dashfault-backend/internal/domain"
	"github.com/dashfault/dashfault-backend/internal/knowledge"
	"github.com/dashfault/dashfault-backend/internal/platform/apierr"
	"github.com/dashfault/dashfault-backend/internal/platform/dbctx"
	"github.com/dashfault/dashfault-backend/internal/platform/logger"
)

// ReportAssembler turns an analysis callback into a persisted report.
// The callback is delivered at least once, so the whole path is
// idempotent: a repeat returns the existing report unchanged.
type ReportAssembler interface {
	HandleAnalysisCallback(ctx context.Context, mediaAssetID uuid.UUID, rawPayload []byte) (*types.Report, error)
}

type reportAssembler struct {
	db         *gorm.DB
	log        *logger.Logger
	mediaRepo  repos.MediaAssetRepo
	reportRepo repos.ReportRepo
	caseTable  *knowledge.AccidentCaseTable
	dispatcher NotificationDispatcher
}

func NewReportAssembler(
	db *gorm.DB,
	log *logger.Logger,
	mediaRepo repos.MediaAssetRepo,
	reportRepo repos.ReportRepo,
	caseTable *knowledge.AccidentCaseTable,
	dispatcher NotificationDispatcher,
) ReportAssembler {
	serviceLog := log.With("service", "ReportAssembler")
	return &reportAssembler{
		db:         db,
		log:        serviceLog,
		mediaRepo:  mediaRepo,
		reportRepo: reportRepo,
		caseTable:  caseTable,
		dispatcher: dispatcher,
	}
}

func (ra *reportAssembler) HandleAnalysisCallback(ctx context.Context, mediaAssetID uuid.UUID, rawPayload []byte) (*types.Report, error) {
	dbc := dbctx.Context{Ctx: ctx}

	asset, err := ra.mediaRepo.GetByID(dbc, mediaAssetID)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, apierr.NotFound(fmt.Errorf("media asset %s not found", mediaAssetID))
	}

	// Idempotency gate. A repeated callback returns the first report.
	existing, err := ra.reportRepo.GetByMediaAssetID(dbc, mediaAssetID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		ra.log.Info("Report already exists for asset, absorbing duplicate callback",
			"media_asset_id", mediaAssetID, "report_id", existing.ID)
		return existing, nil
	}

	payload := decodeAnalysisPayload(rawPayload)
	code := payload.accidentCode()
	entry := ra.caseTable.Resolve(code)

	// The case table's fault split is authoritative. An analysis-supplied
	// override is logged and discarded.
	if payload.FaultA != nil && *payload.FaultA != entry.FaultA {
		ra.log.Warn("Ignoring analysis fault override",
			"media_asset_id", mediaAssetID, "supplied", *payload.FaultA, "table", entry.FaultA)
	}

	rep := &types.Report{
		ID:                uuid.New(),
		MediaAssetID:      asset.ID,
		AccidentCode:      strconv.Itoa(code),
		Title:             entry.Title,
		Laws:              entry.Laws,
		Precedents:        entry.Precedents,
		VehicleADirection: describeDirection(payload.CarAProgress, true),
		VehicleBDirection: describeDirection(payload.CarBProgress, false),
		FaultA:            entry.FaultA,
		FaultB:            entry.FaultB,
		DamageLocation:    payload.DamageLocation,
		TimelineLog:       serializeTimeline(buildTimeline(payload.EventTimeline)),
	}

	err = ra.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txc := dbctx.Context{Ctx: ctx, Tx: tx}
		if _, err := ra.reportRepo.Create(txc, rep); err != nil {
			return err
		}
		return ra.mediaRepo.UpdateAnalysisStatus(txc, asset.ID, types.AnalysisStatusCompleted)
	})
	if err != nil {
		// A concurrent callback may have won the unique index race on
		// media_asset_id. If its report is visible now, absorb ours.
		winner, lookupErr := ra.reportRepo.GetByMediaAssetID(dbc, mediaAssetID)
		if lookupErr == nil && winner != nil {
			ra.log.Info("Lost report creation race, returning winner",
				"media_asset_id", mediaAssetID, "report_id", winner.ID)
			return winner, nil
		}
		return nil, err
	}

	ra.log.Info("Report created",
		"media_asset_id", mediaAssetID, "report_id", rep.ID, "accident_code", code)

	// Strictly after commit, never allowed to fail the callback.
	ra.dispatcher.DispatchReportReady(ctx, asset, rep)

	return rep, nil
}
