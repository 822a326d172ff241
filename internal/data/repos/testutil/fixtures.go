package testutil

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/dashfault/dashfault-backend/internal/domain"
)

// SeedVideoAsset inserts a video MediaAsset in ANALYZING state together
// with its StoredObject record, and cleans both up when the test ends.
func SeedVideoAsset(tb testing.TB, db *gorm.DB, ownerID uuid.UUID, uploadType types.UploadType) *types.MediaAsset {
	tb.Helper()

	key := uuid.New().String() + ".mp4"
	obj := &types.StoredObject{
		ID:          uuid.New(),
		StorageKey:  key,
		FileName:    "dashcam.mp4",
		ContentType: "video/mp4",
		OwnerID:     ownerID,
	}
	if err := db.Create(obj).Error; err != nil {
		tb.Fatalf("seed stored object: %v", err)
	}

	asset := &types.MediaAsset{
		ID:             uuid.New(),
		OwnerID:        ownerID,
		FileName:       "dashcam.mp4",
		StorageKey:     key,
		ContentType:    "video/mp4",
		SizeBytes:      1 << 20,
		UploadType:     uploadType,
		FileType:       types.FileTypeVideo,
		AnalysisStatus: types.AnalysisStatusAnalyzing,
	}
	if err := db.Create(asset).Error; err != nil {
		tb.Fatalf("seed media asset: %v", err)
	}

	tb.Cleanup(func() {
		db.Where("media_asset_id = ?", asset.ID).Delete(&types.Report{})
		db.Where("id = ?", asset.ID).Delete(&types.MediaAsset{})
		db.Where("storage_key = ?", key).Delete(&types.StoredObject{})
	})
	return asset
}

// SeedPushToken registers a token for the user and removes it afterward.
func SeedPushToken(tb testing.TB, db *gorm.DB, userID uuid.UUID, token string) {
	tb.Helper()

	row := &types.PushToken{ID: uuid.New(), UserID: userID, Token: token}
	if err := db.Create(row).Error; err != nil {
		tb.Fatalf("seed push token: %v", err)
	}
	tb.Cleanup(func() {
		db.Where("user_id = ?", userID).Delete(&types.PushToken{})
	})
}
