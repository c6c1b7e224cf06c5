package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Apurer/go-gin-session-guard/internal/domains/session/domain"
	"github.com/Apurer/go-gin-session-guard/internal/domains/session/ports"
)

// Journal persists guard transitions in PostgreSQL. Caller owns DB lifecycle.
type Journal struct {
	db *gorm.DB
}

func NewJournal(db *gorm.DB) *Journal {
	return &Journal{db: db}
}

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

func (j *Journal) Record(ctx context.Context, t domain.Transition) error {
	if err := j.ensureDB(); err != nil {
		return err
	}
	if strings.TrimSpace(t.GuardID) == "" {
		return errors.New("transition guard id is required")
	}
	rec := toRecord(t)
	if err := j.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("record transition: %w", err)
	}
	return nil
}

func (j *Journal) List(ctx context.Context, guardID string) ([]domain.Transition, error) {
	if err := j.ensureDB(); err != nil {
		return nil, err
	}
	var recs []transitionRecord
	if err := j.db.WithContext(ctx).
		Where("guard_id = ?", guardID).
		Order("occurred_at ASC").
		Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list transitions: %w", err)
	}
	out := make([]domain.Transition, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.toDomain())
	}
	return out, nil
}

// PurgeOlderThan removes transitions recorded before cutoff. Use for housekeeping or cron.
func (j *Journal) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if err := j.ensureDB(); err != nil {
		return 0, err
	}
	res := j.db.WithContext(ctx).Where("occurred_at < ?", cutoff).Delete(&transitionRecord{})
	if res.Error != nil {
		return 0, fmt.Errorf("purge transitions: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (j *Journal) ensureDB() error {
	if j == nil || j.db == nil {
		return errors.New("postgres journal not configured")
	}
	return nil
}

func toRecord(t domain.Transition) transitionRecord {
	id := t.ID
	if id == "" {
		id = uuid.NewString()
	}
	at := t.At
	if at.IsZero() {
		at = time.Now()
	}
	return transitionRecord{
		ID:         id,
		GuardID:    t.GuardID,
		FromState:  t.From.String(),
		ToState:    t.To.String(),
		Reason:     string(t.Reason),
		UserID:     t.UserID,
		OccurredAt: at.UTC(),
	}
}

func (r transitionRecord) toDomain() domain.Transition {
	return domain.Transition{
		ID:      r.ID,
		GuardID: r.GuardID,
		From:    domain.ParseKind(r.FromState),
		To:      domain.ParseKind(r.ToState),
		Reason:  domain.FailureReason(r.Reason),
		UserID:  r.UserID,
		At:      r.OccurredAt,
	}
}

var _ ports.Journal = (*Journal)(nil)
