package media

import (
	"time"

	"github.com/google/uuid"
)

type UploadType string

const (
	UploadTypeAuto   UploadType = "AUTO"
	UploadTypeManual UploadType = "MANUAL"
)

type FileType string

const (
	FileTypeVideo FileType = "VIDEO"
	FileTypePDF   FileType = "PDF"
)

type AnalysisStatus string

const (
	AnalysisStatusAnalyzing AnalysisStatus = "ANALYZING"
	AnalysisStatusCompleted AnalysisStatus = "COMPLETED"
	AnalysisStatusFailed    AnalysisStatus = "FAILED"
)

// MediaAsset is one uploaded file (dashcam video or generated PDF source)
// tracked through its analysis lifecycle. AnalysisStatus transitions
// ANALYZING -> COMPLETED|FAILED exactly once and is terminal after that.
type MediaAsset struct {
	ID      uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OwnerID uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`

	FileName    string `gorm:"column:file_name;not null" json:"file_name"`
	StorageKey  string `gorm:"column:storage_key;not null;index" json:"storage_key"`
	ContentType string `gorm:"column:content_type" json:"content_type"`
	SizeBytes   int64  `gorm:"column:size_bytes" json:"size_bytes"`

	UploadType     UploadType     `gorm:"column:upload_type;not null" json:"upload_type"`
	FileType       FileType       `gorm:"column:file_type;not null" json:"file_type"`
	AnalysisStatus AnalysisStatus `gorm:"column:analysis_status;not null" json:"analysis_status"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (MediaAsset) TableName() string { return "media_asset" }
