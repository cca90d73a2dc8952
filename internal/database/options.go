package database

import (
	"context"
	"fmt"

	"feedgen/internal/config"
	"feedgen/internal/models"

	"gorm.io/gorm"
)

// OptionsStore loads feed settings from the options table, falling back to
// the supplied defaults for options that have no row.
type OptionsStore struct {
	db       *gorm.DB
	defaults map[string]string
}

func NewOptionsStore(db *gorm.DB, defaults map[string]string) *OptionsStore {
	return &OptionsStore{
		db:       db,
		defaults: defaults,
	}
}

func (s *OptionsStore) Load(ctx context.Context) (config.Settings, error) {
	var rows []models.Option
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return config.Settings{}, fmt.Errorf("failed to load options: %w", err)
	}

	options := make(map[string]string, len(s.defaults)+len(rows))
	for name, value := range s.defaults {
		options[name] = value
	}
	for _, row := range rows {
		options[row.Name] = row.Value
	}
	return config.ParseSettings(options), nil
}

