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
)

func gatewayUnderTest(t *testing.T, db *gorm.DB, bucket *fakeBucket) StorageGatewayService {
	t.Helper()
	log := testutil.Logger(t)
	objectRepo := repos.NewStoredObjectRepo(db, log)
	mediaRepo := repos.NewMediaAssetRepo(db, log)
	return NewStorageGatewayService(db, log, objectRepo, mediaRepo, bucket)
}

func cleanupOwnerObjects(t *testing.T, db *gorm.DB, ownerID uuid.UUID) {
	t.Helper()
	t.Cleanup(func() {
		db.Where("owner_id = ?", ownerID).Delete(&types.StoredObject{})
		db.Where("owner_id = ?", ownerID).Delete(&types.MediaAsset{})
	})
}

func TestUploadIntentReusesKeyForSameTriple(t *testing.T) {
	db := testutil.DB(t)
	gateway := gatewayUnderTest(t, db, newFakeBucket())
	ownerID := uuid.New()
	cleanupOwnerObjects(t, db, ownerID)

	first, err := gateway.CreateUploadIntent(context.Background(), ownerID, "crash.mp4", "video/mp4")
	if err != nil {
		t.Fatalf("first intent: %v", err)
	}
	second, err := gateway.CreateUploadIntent(context.Background(), ownerID, "crash.mp4", "video/mp4")
	if err != nil {
		t.Fatalf("second intent: %v", err)
	}
	if first.StorageKey != second.StorageKey {
		t.Errorf("same triple minted different keys: %q vs %q", first.StorageKey, second.StorageKey)
	}
	if first.UploadURL == "" || second.UploadURL == "" {
		t.Errorf("every intent needs a signed URL")
	}
}

func TestUploadIntentMintsNewKeyWhenAnyFieldDiffers(t *testing.T) {
	db := testutil.DB(t)
	gateway := gatewayUnderTest(t, db, newFakeBucket())
	ownerID := uuid.New()
	otherOwner := uuid.New()
	cleanupOwnerObjects(t, db, ownerID)
	cleanupOwnerObjects(t, db, otherOwner)

	base, err := gateway.CreateUploadIntent(context.Background(), ownerID, "crash.mp4", "video/mp4")
	if err != nil {
		t.Fatalf("base intent: %v", err)
	}

	cases := []struct {
		name        string
		ownerID     uuid.UUID
		fileName    string
		contentType string
	}{
		{"different file name", ownerID, "other.mp4", "video/mp4"},
		{"different content type", ownerID, "crash.mp4", "video/quicktime"},
		{"different owner", otherOwner, "crash.mp4", "video/mp4"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			intent, err := gateway.CreateUploadIntent(context.Background(), tc.ownerID, tc.fileName, tc.contentType)
			if err != nil {
				t.Fatalf("intent: %v", err)
			}
			if intent.StorageKey == base.StorageKey {
				t.Errorf("expected a fresh key for %s", tc.name)
			}
		})
	}
}

func TestUploadIntentRejectsBlankFields(t *testing.T) {
	db := testutil.DB(t)
	gateway := gatewayUnderTest(t, db, newFakeBucket())

	if _, err := gateway.CreateUploadIntent(context.Background(), uuid.New(), "", "video/mp4"); err == nil {
		t.Error("expected error for blank file name")
	}
	if _, err := gateway.CreateUploadIntent(context.Background(), uuid.New(), "crash.mp4", " "); err == nil {
		t.Error("expected error for blank content type")
	}
}

func TestMintStorageKeyIsUniqueAndKeepsExtension(t *testing.T) {
	a := mintStorageKey("crash.MP4")
	b := mintStorageKey("crash.MP4")
	if a == b {
		t.Errorf("keys must never repeat: %q", a)
	}
	if !strings.HasSuffix(a, ".mp4") {
		t.Errorf("key %q should keep a lowercased extension", a)
	}
	if got := mintStorageKey("noextension"); strings.Contains(got, ".") {
		t.Errorf("key %q should have no extension", got)
	}
}

func TestReleaseObjectIsReferenceCounted(t *testing.T) {
	db := testutil.DB(t)
	bucket := newFakeBucket()
	gateway := gatewayUnderTest(t, db, bucket)
	log := testutil.Logger(t)
	mediaRepo := repos.NewMediaAssetRepo(db, log)

	ownerID := uuid.New()
	cleanupOwnerObjects(t, db, ownerID)

	// Two asset rows share one physical object.
	sharedKey := mintStorageKey("shared.mp4")
	bucket.put(sharedKey, []byte("video-bytes"))
	if err := db.Create(&types.StoredObject{
		ID: uuid.New(), StorageKey: sharedKey, FileName: "shared.mp4",
		ContentType: "video/mp4", OwnerID: ownerID,
	}).Error; err != nil {
		t.Fatalf("seed stored object: %v", err)
	}

	var assets []*types.MediaAsset
	for i := 0; i < 2; i++ {
		asset := &types.MediaAsset{
			ID: uuid.New(), OwnerID: ownerID, FileName: "shared.mp4",
			StorageKey: sharedKey, ContentType: "video/mp4",
			UploadType: types.UploadTypeManual, FileType: types.FileTypeVideo,
			AnalysisStatus: types.AnalysisStatusAnalyzing,
		}
		if err := db.Create(asset).Error; err != nil {
			t.Fatalf("seed asset: %v", err)
		}
		assets = append(assets, asset)
	}

	// Drop the first reference: object must survive.
	if err := mediaRepo.Delete(dbctxBackground(), assets[0].ID); err != nil {
		t.Fatalf("delete first asset: %v", err)
	}
	if err := gateway.ReleaseObject(context.Background(), sharedKey); err != nil {
		t.Fatalf("release after first delete: %v", err)
	}
	if !bucket.has(sharedKey) {
		t.Fatal("object deleted while still referenced")
	}

	// Drop the last reference: object and record must go.
	if err := mediaRepo.Delete(dbctxBackground(), assets[1].ID); err != nil {
		t.Fatalf("delete second asset: %v", err)
	}
	if err := gateway.ReleaseObject(context.Background(), sharedKey); err != nil {
		t.Fatalf("release after last delete: %v", err)
	}
	if bucket.has(sharedKey) {
		t.Fatal("object should be physically deleted at zero references")
	}

	var count int64
	if err := db.Model(&types.StoredObject{}).Where("storage_key = ?", sharedKey).Count(&count).Error; err != nil {
		t.Fatalf("count records: %v", err)
	}
	if count != 0 {
		t.Errorf("stored object record should be gone, found %d", count)
	}
}
