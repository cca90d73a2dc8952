package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"feedgen/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DatabaseStore persists entries in the transients table so they survive
// restarts and are shared between the api and worker processes.
type DatabaseStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db, now: time.Now}
}

// WithClock replaces the time source (tests).
func (s *DatabaseStore) WithClock(now func() time.Time) *DatabaseStore {
	s.now = now
	return s
}

// Get deletes the row when it has expired.
func (s *DatabaseStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := validKey(key); err != nil {
		return "", false, err
	}

	var row models.Transient
	err := s.db.WithContext(ctx).Where("transient_key = ?", key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read transient %s: %w", key, err)
	}

	if !s.now().Before(row.ExpiresAt) {
		if err := s.db.WithContext(ctx).Where("transient_key = ? AND expires_at <= ?", key, row.ExpiresAt).
			Delete(&models.Transient{}).Error; err != nil {
			return "", false, fmt.Errorf("failed to delete expired transient %s: %w", key, err)
		}
		return "", false, nil
	}
	return row.Value, true, nil
}

func (s *DatabaseStore) Put(ctx context.Context, key, content string, ttl time.Duration) error {
	if err := validKey(key); err != nil {
		return err
	}
	if ttl <= 0 {
		return nil
	}

	row := models.Transient{
		Key:       key,
		Value:     content,
		ExpiresAt: s.now().Add(ttl),
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "transient_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to store transient %s: %w", key, err)
	}
	return nil
}

func (s *DatabaseStore) Invalidate(ctx context.Context, key string) error {
	if err := validKey(key); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Where("transient_key = ?", key).Delete(&models.Transient{}).Error; err != nil {
		return fmt.Errorf("failed to delete transient %s: %w", key, err)
	}
	return nil
}
