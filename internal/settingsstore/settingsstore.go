// Package settingsstore resolves runtime settings that can be overridden from
// the API. Priority: database > configuration > default.
package settingsstore

import (
	"errors"

	"gorm.io/gorm"

	"github.com/mrlokans/booklibrary/internal/entities"
)

// Sources of an effective setting value.
const (
	SourceDatabase = "database"
	SourceConfig   = "config"
	SourceDefault  = "default"
)

// Repository is the key/value store overrides are kept in.
type Repository interface {
	GetSetting(key string) (*entities.Setting, error)
	SetSetting(key, value string) error
	SetSettings(values map[string]string) error
	DeleteSetting(key string) error
}

type SettingsStore struct {
	repo     Repository
	defaults MaintenanceConfig
}

// New creates a settings store. defaults holds the values from the
// configuration file and environment.
func New(repo Repository, defaults MaintenanceConfig) *SettingsStore {
	return &SettingsStore{repo: repo, defaults: defaults}
}

// lookup returns the stored override for key, or "" when none exists.
func (s *SettingsStore) lookup(key string) string {
	setting, err := s.repo.GetSetting(key)
	if err != nil {
		return ""
	}
	return setting.Value
}

func (s *SettingsStore) clear(keys ...string) error {
	for _, key := range keys {
		if err := s.repo.DeleteSetting(key); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	}
	return nil
}
