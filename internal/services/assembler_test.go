package services

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/dashfault/dashfault-backend/internal/data/repos"
	"github.com/dashfault/dashfault-backend/internal/data/repos/testutil"
	types "github.com/dashfault/dashfault-backend/internal/domain"
	"github.com/dashfault/dashfault-backend/internal/knowledge"
	"github.com/dashfault/dashfault-backend/internal/platform/apierr"
)

const assemblerCaseTable = `idx,place,place_feature,veh_a_dir,veh_b_dir,fault_a,fault_b,code,title,laws,precedents
1,intersection,T-intersection,go_straight,move_left,70,30,5,T-intersection – through vs. turning,Road Traffic Act art. 25,Supreme Court 2015Da12345
2,intersection,signalized,go_straight,go_straight,50,50,12,Signalized crossing collision,Road Traffic Act art. 5,Supreme Court 2018Da67890
`

type assemblerHarness struct {
	assembler  ReportAssembler
	mediaRepo  repos.MediaAssetRepo
	reportRepo repos.ReportRepo
	tokenRepo  *fakePushTokenRepo
	push       *fakePushClient
}

func newAssemblerHarness(t *testing.T) *assemblerHarness {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)

	csvPath := filepath.Join(t.TempDir(), "case_table.csv")
	if err := os.WriteFile(csvPath, []byte(assemblerCaseTable), 0o644); err != nil {
		t.Fatalf("write case table: %v", err)
	}
	caseTable, err := knowledge.Load(csvPath, log)
	if err != nil {
		t.Fatalf("load case table: %v", err)
	}

	mediaRepo := repos.NewMediaAssetRepo(db, log)
	reportRepo := repos.NewReportRepo(db, log)
	tokenRepo := &fakePushTokenRepo{}
	push := &fakePushClient{}
	dispatcher := NewNotificationDispatcher(log, tokenRepo, push)

	return &assemblerHarness{
		assembler:  NewReportAssembler(db, log, mediaRepo, reportRepo, caseTable, dispatcher),
		mediaRepo:  mediaRepo,
		reportRepo: reportRepo,
		tokenRepo:  tokenRepo,
		push:       push,
	}
}

func TestCallbackMissingAssetIsNotFound(t *testing.T) {
	h := newAssemblerHarness(t)

	_, err := h.assembler.HandleAnalysisCallback(context.Background(), uuid.New(), []byte(`{}`))
	if !apierr.IsCode(err, apierr.CodeNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestCallbackIsIdempotent(t *testing.T) {
	h := newAssemblerHarness(t)
	db := testutil.DB(t)
	asset := testutil.SeedVideoAsset(t, db, uuid.New(), types.UploadTypeManual)

	payload := []byte(`{"accidentType": 12, "carAProgress": "go_straight", "carBProgress": "go_straight"}`)

	first, err := h.assembler.HandleAnalysisCallback(context.Background(), asset.ID, payload)
	if err != nil {
		t.Fatalf("first callback: %v", err)
	}
	second, err := h.assembler.HandleAnalysisCallback(context.Background(), asset.ID, payload)
	if err != nil {
		t.Fatalf("second callback: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("callbacks returned different reports: %s vs %s", first.ID, second.ID)
	}

	var count int64
	if err := db.Model(&types.Report{}).Where("media_asset_id = ?", asset.ID).Count(&count).Error; err != nil {
		t.Fatalf("count reports: %v", err)
	}
	if count != 1 {
		t.Errorf("got %d report rows, want 1", count)
	}
}

func TestCallbackCaseTableFaultsAreAuthoritative(t *testing.T) {
	h := newAssemblerHarness(t)
	db := testutil.DB(t)
	asset := testutil.SeedVideoAsset(t, db, uuid.New(), types.UploadTypeManual)

	// The payload claims a different split than the table's 70/30.
	payload := []byte(`{"accidentType": 5, "faultA": 10, "faultB": 90}`)

	rep, err := h.assembler.HandleAnalysisCallback(context.Background(), asset.ID, payload)
	if err != nil {
		t.Fatalf("callback: %v", err)
	}
	if rep.FaultA != 70 || rep.FaultB != 30 {
		t.Errorf("persisted faults %d/%d, want table values 70/30", rep.FaultA, rep.FaultB)
	}
}

func TestCallbackUnknownCodeUsesSentinel(t *testing.T) {
	h := newAssemblerHarness(t)
	db := testutil.DB(t)
	asset := testutil.SeedVideoAsset(t, db, uuid.New(), types.UploadTypeManual)

	rep, err := h.assembler.HandleAnalysisCallback(context.Background(), asset.ID, []byte(`{"accidentType": 999}`))
	if err != nil {
		t.Fatalf("callback must not fail on unknown code: %v", err)
	}
	if rep.FaultA != 0 || rep.FaultB != 0 {
		t.Errorf("sentinel faults = %d/%d, want 0/0", rep.FaultA, rep.FaultB)
	}
	if rep.AccidentCode != "999" {
		t.Errorf("accident code = %q", rep.AccidentCode)
	}
}

func TestCallbackFlipsAssetToCompleted(t *testing.T) {
	h := newAssemblerHarness(t)
	db := testutil.DB(t)
	asset := testutil.SeedVideoAsset(t, db, uuid.New(), types.UploadTypeManual)

	if _, err := h.assembler.HandleAnalysisCallback(context.Background(), asset.ID, []byte(`{"accidentType": 12}`)); err != nil {
		t.Fatalf("callback: %v", err)
	}

	var reloaded types.MediaAsset
	if err := db.Where("id = ?", asset.ID).First(&reloaded).Error; err != nil {
		t.Fatalf("reload asset: %v", err)
	}
	if reloaded.AnalysisStatus != types.AnalysisStatusCompleted {
		t.Errorf("analysis status = %s, want COMPLETED", reloaded.AnalysisStatus)
	}
}

// Full scenario: AUTO upload with a registered token. The callback for
// accident type 5 must persist the table's 70/30 split and title, flip
// the asset, and push exactly once with the new report's id.
func TestScenarioAutoUploadCallback(t *testing.T) {
	h := newAssemblerHarness(t)
	db := testutil.DB(t)
	ownerID := uuid.New()
	asset := testutil.SeedVideoAsset(t, db, ownerID, types.UploadTypeAuto)
	if err := h.tokenRepo.Upsert(dbctxBackground(), ownerID, "valid-device-token"); err != nil {
		t.Fatalf("register token: %v", err)
	}

	payload := []byte(`{
		"accidentType": 5,
		"carAProgress": "go_straight",
		"carBProgress": "move_left",
		"damageLocation": "front_left",
		"eventTimeline": [
			{"event": "vehicle_B_first_seen", "frameIdx": 10},
			{"event": "aftermath", "frameIdx": 55}
		]
	}`)

	rep, err := h.assembler.HandleAnalysisCallback(context.Background(), asset.ID, payload)
	if err != nil {
		t.Fatalf("callback: %v", err)
	}

	if rep.FaultA != 70 || rep.FaultB != 30 {
		t.Errorf("faults %d/%d, want 70/30", rep.FaultA, rep.FaultB)
	}
	if rep.Title != "T-intersection – through vs. turning" {
		t.Errorf("title = %q", rep.Title)
	}
	if rep.VehicleADirection != "Going straight" || rep.VehicleBDirection != "Entering from the left" {
		t.Errorf("directions = %q / %q", rep.VehicleADirection, rep.VehicleBDirection)
	}

	var timeline []timelineEvent
	if err := json.Unmarshal(rep.TimelineLog, &timeline); err != nil {
		t.Fatalf("timeline blob: %v", err)
	}
	if len(timeline) != 2 || timeline[0].Event != "Other vehicle first seen" {
		t.Errorf("timeline = %+v", timeline)
	}

	var reloaded types.MediaAsset
	if err := db.Where("id = ?", asset.ID).First(&reloaded).Error; err != nil {
		t.Fatalf("reload asset: %v", err)
	}
	if reloaded.AnalysisStatus != types.AnalysisStatusCompleted {
		t.Errorf("analysis status = %s, want COMPLETED", reloaded.AnalysisStatus)
	}

	sends := h.push.sent()
	if len(sends) != 1 {
		t.Fatalf("got %d push attempts, want 1", len(sends))
	}
	if sends[0].ReportID != rep.ID.String() {
		t.Errorf("pushed reportId = %q, want %q", sends[0].ReportID, rep.ID)
	}
}
