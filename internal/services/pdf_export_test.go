package services

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dashfault/dashfault-backend/internal/data/repos"
	"github.com/dashfault/dashfault-backend/internal/data/repos/testutil"
	types "github.com/dashfault/dashfault-backend/internal/domain"
	"github.com/dashfault/dashfault-backend/internal/platform/apierr"
)

func pdfExportUnderTest(t *testing.T, db *gorm.DB, bucket *fakeBucket, renderer *fakeRenderer) PdfExportService {
	t.Helper()
	log := testutil.Logger(t)
	reportRepo := repos.NewReportRepo(db, log)
	objectRepo := repos.NewStoredObjectRepo(db, log)
	mediaRepo := repos.NewMediaAssetRepo(db, log)
	gateway := NewStorageGatewayService(db, log, objectRepo, mediaRepo, bucket)
	return NewPdfExportService(log, reportRepo, gateway, bucket, renderer)
}

func seedReport(t *testing.T, db *gorm.DB, ownerID uuid.UUID) *types.Report {
	t.Helper()
	asset := testutil.SeedVideoAsset(t, db, ownerID, types.UploadTypeManual)
	rep := &types.Report{
		ID:           uuid.New(),
		MediaAssetID: asset.ID,
		AccidentCode: "5",
		Title:        "T-intersection – through vs. turning",
		FaultA:       70,
		FaultB:       30,
		TimelineLog:  []byte(`[]`),
	}
	if err := db.Create(rep).Error; err != nil {
		t.Fatalf("seed report: %v", err)
	}
	t.Cleanup(func() {
		db.Where("owner_id = ?", ownerID).Delete(&types.StoredObject{})
	})
	return rep
}

func TestGeneratePdfIsSingleShot(t *testing.T) {
	db := testutil.DB(t)
	bucket := newFakeBucket()
	renderer := &fakeRenderer{}
	svc := pdfExportUnderTest(t, db, bucket, renderer)

	ownerID := uuid.New()
	rep := seedReport(t, db, ownerID)

	first, err := svc.Generate(context.Background(), ownerID, rep.ID)
	if err != nil {
		t.Fatalf("first generate: %v", err)
	}
	if first.DownloadURL == "" || first.ExpiresIn <= 0 {
		t.Errorf("bad download payload: %+v", first)
	}

	var reloaded types.Report
	if err := db.Where("id = ?", rep.ID).First(&reloaded).Error; err != nil {
		t.Fatalf("reload report: %v", err)
	}
	if reloaded.PdfKey == nil {
		t.Fatal("pdf_key not set after generate")
	}
	firstKey := *reloaded.PdfKey
	if !strings.HasPrefix(firstKey, "report-pdf/") || !strings.HasSuffix(firstKey, ".pdf") {
		t.Errorf("unexpected pdf key %q", firstKey)
	}
	if !bucket.has(firstKey) {
		t.Error("PDF object missing from storage")
	}

	// Second call must fail and leave the stored key untouched.
	_, err = svc.Generate(context.Background(), ownerID, rep.ID)
	if !apierr.IsCode(err, apierr.CodeAlreadyExists) {
		t.Fatalf("expected already_exists, got %v", err)
	}
	if err := db.Where("id = ?", rep.ID).First(&reloaded).Error; err != nil {
		t.Fatalf("reload report: %v", err)
	}
	if reloaded.PdfKey == nil || *reloaded.PdfKey != firstKey {
		t.Errorf("pdf_key changed on repeat generate")
	}
	if renderer.renders != 1 {
		t.Errorf("renderer ran %d times, want 1", renderer.renders)
	}
}

func TestGeneratePdfUnknownReportIsNotFound(t *testing.T) {
	db := testutil.DB(t)
	svc := pdfExportUnderTest(t, db, newFakeBucket(), &fakeRenderer{})

	_, err := svc.Generate(context.Background(), uuid.New(), uuid.New())
	if !apierr.IsCode(err, apierr.CodeNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestGetExistingURLRequiresGeneratedPdf(t *testing.T) {
	db := testutil.DB(t)
	bucket := newFakeBucket()
	svc := pdfExportUnderTest(t, db, bucket, &fakeRenderer{})

	ownerID := uuid.New()
	rep := seedReport(t, db, ownerID)

	_, err := svc.GetExistingURL(context.Background(), ownerID, rep.ID)
	if !apierr.IsCode(err, apierr.CodeNotFound) {
		t.Fatalf("expected not_found before generation, got %v", err)
	}

	if _, err := svc.Generate(context.Background(), ownerID, rep.ID); err != nil {
		t.Fatalf("generate: %v", err)
	}

	download, err := svc.GetExistingURL(context.Background(), ownerID, rep.ID)
	if err != nil {
		t.Fatalf("existing URL: %v", err)
	}
	if !strings.Contains(download.DownloadURL, "report-pdf/") {
		t.Errorf("download URL %q does not reference the PDF object", download.DownloadURL)
	}
}

func TestGeneratePdfOtherUsersReportIsNotFound(t *testing.T) {
	db := testutil.DB(t)
	svc := pdfExportUnderTest(t, db, newFakeBucket(), &fakeRenderer{})

	rep := seedReport(t, db, uuid.New())

	_, err := svc.Generate(context.Background(), uuid.New(), rep.ID)
	if !apierr.IsCode(err, apierr.CodeNotFound) {
		t.Fatalf("expected not_found for foreign report, got %v", err)
	}
}
