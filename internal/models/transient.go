package models

import "time"

// Transient is a cached value with an expiry, keyed by name.
type Transient struct {
	Key       string    `json:"key" gorm:"primaryKey;column:transient_key"`
	Value     string    `json:"value" gorm:"type:text"`
	ExpiresAt time.Time `json:"expires_at" gorm:"index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Option is a named feed setting.
type Option struct {
	Name      string    `json:"name" gorm:"primaryKey"`
	Value     string    `json:"value" gorm:"type:text"`
	UpdatedAt time.Time `json:"updated_at"`
}
