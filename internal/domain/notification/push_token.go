package notification

import (
	"time"

	"github.com/google/uuid"
)

// PushToken holds the single current push token per user. Registering a
// new token replaces the previous one.
type PushToken struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	Token  string    `gorm:"column:token;not null" json:"token"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (PushToken) TableName() string { return "push_token" }
