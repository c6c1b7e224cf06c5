package migrations

import (
	"time"

	"gorm.io/gorm"
)

// Run applies the schema owned by the session context.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(&transitionRecord{})
}

// Transition schema mirrors the session journal Postgres adapter. No column
// ever holds session material.
type transitionRecord struct {
	ID         string    `gorm:"primaryKey;column:id;type:uuid"`
	GuardID    string    `gorm:"column:guard_id;type:uuid;index"`
	FromState  string    `gorm:"column:from_state;type:varchar(32)"`
	ToState    string    `gorm:"column:to_state;type:varchar(32)"`
	Reason     string    `gorm:"column:reason;type:varchar(32)"`
	UserID     string    `gorm:"column:user_id"`
	OccurredAt time.Time `gorm:"column:occurred_at;index"`
}

func (transitionRecord) TableName() string { return "session_transitions" }
