package report

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/dashfault/dashfault-backend/internal/domain/media"
)

// Report is the finished accident-analysis document. Exactly one per
// MediaAsset; the unique index on media_asset_id is what absorbs
// concurrent duplicate callbacks.
type Report struct {
	ID           uuid.UUID         `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	MediaAssetID uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex" json:"media_asset_id"`
	MediaAsset   *media.MediaAsset `gorm:"constraint:OnDelete:CASCADE;foreignKey:MediaAssetID;references:ID" json:"media_asset,omitempty"`

	AccidentCode string `gorm:"column:accident_code;not null" json:"accident_code"`
	Title        string `gorm:"column:title" json:"title"`
	Laws         string `gorm:"column:laws" json:"laws"`
	Precedents   string `gorm:"column:precedents" json:"precedents"`

	VehicleADirection string `gorm:"column:vehicle_a_direction" json:"vehicle_a_direction"`
	VehicleBDirection string `gorm:"column:vehicle_b_direction" json:"vehicle_b_direction"`
	FaultA            int    `gorm:"column:fault_a;not null" json:"fault_a"`
	FaultB            int    `gorm:"column:fault_b;not null" json:"fault_b"`
	DamageLocation    string `gorm:"column:damage_location" json:"damage_location"`

	// Ordered timeline entries serialized as a JSON array; input order is
	// preserved, never re-sorted.
	TimelineLog datatypes.JSON `gorm:"column:timeline_log;type:jsonb" json:"timeline_log"`

	// Set at most once, only after the rendered PDF is durably stored.
	PdfKey *string `gorm:"column:pdf_key" json:"pdf_key,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Report) TableName() string { return "report" }
