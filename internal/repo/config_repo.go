// Package repo – repository functions for the key/value config table.
package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/yyang/go-car-backend/internal/domain"
)

// GetConfigValue returns the value stored under key and whether it exists.
// The value is read fresh on every call; callers fall back to their hardcoded
// defaults when the key is absent.
func GetConfigValue(ctx context.Context, db *gorm.DB, key string) (string, bool, error) {
	var row domain.ConfigEntry
	err := db.WithContext(ctx).First(&row, "config_key = ?", key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return row.ConfigValue, true, nil
}

// SetConfigValue inserts or replaces the value stored under key.
func SetConfigValue(ctx context.Context, db *gorm.DB, key, value string) error {
	existing := domain.ConfigEntry{}
	err := db.WithContext(ctx).First(&existing, "config_key = ?", key).Error
	switch {
	case err == nil:
		return db.WithContext(ctx).Model(&domain.ConfigEntry{}).
			Where("id = ?", existing.ID).
			Update("config_value", value).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		return db.WithContext(ctx).Create(&domain.ConfigEntry{ConfigKey: key, ConfigValue: value}).Error
	default:
		return err
	}
}
