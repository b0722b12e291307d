// Package repository persists the reaction cursor.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CursorRecord is the single persisted row per channel: the id of the
// last message the loop committed to having processed.
type CursorRecord struct {
	ChannelID     string    `gorm:"primaryKey;column:channel_id"`
	LastMessageID string    `gorm:"column:last_message_id"`
	LastUpdated   time.Time `gorm:"column:last_updated"`
}

// TableName overrides the GORM default.
func (CursorRecord) TableName() string { return "reaction_cursors" }

// CursorRepository handles reaction_cursors table operations.
// Single-instance by design: the record is read once at startup and
// written after each advance, with no cross-process locking.
type CursorRepository struct {
	db *gorm.DB
}

// NewCursorRepository creates the repository and migrates its table.
func NewCursorRepository(db *gorm.DB) (*CursorRepository, error) {
	if err := db.AutoMigrate(&CursorRecord{}); err != nil {
		return nil, fmt.Errorf("migrate cursor table: %w", err)
	}
	return &CursorRepository{db: db}, nil
}

// Load returns the persisted cursor for a channel. A missing or empty
// record is reported as absent, not as an error.
func (r *CursorRepository) Load(ctx context.Context, channelID string) (string, bool, error) {
	var rec CursorRecord
	err := r.db.WithContext(ctx).First(&rec, "channel_id = ?", channelID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("load cursor: %w", err)
	}
	if rec.LastMessageID == "" {
		return "", false, nil
	}
	return rec.LastMessageID, true, nil
}

// Save upserts the cursor after an advance.
func (r *CursorRepository) Save(ctx context.Context, channelID, messageID string) error {
	rec := CursorRecord{
		ChannelID:     channelID,
		LastMessageID: messageID,
		LastUpdated:   time.Now().UTC(),
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "channel_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_message_id", "last_updated"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("save cursor: %w", err)
	}
	return nil
}
