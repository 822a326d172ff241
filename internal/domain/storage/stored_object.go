package storage

import (
	"time"

	"github.com/google/uuid"
)

// StoredObject records one minted storage key. Created when an upload
// intent is issued; removed only when no owning row references the key
// any more.
type StoredObject struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	StorageKey string    `gorm:"column:storage_key;not null;uniqueIndex" json:"storage_key"`

	FileName    string    `gorm:"column:file_name;not null;index:idx_stored_object_dedup" json:"file_name"`
	ContentType string    `gorm:"column:content_type;index:idx_stored_object_dedup" json:"content_type"`
	OwnerID     uuid.UUID `gorm:"type:uuid;not null;index:idx_stored_object_dedup" json:"owner_id"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (StoredObject) TableName() string { return "stored_object" }
