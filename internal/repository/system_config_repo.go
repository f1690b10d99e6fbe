package repository

import (
	"errors"

	"github.com/civicvoice/civicvoice-backend/internal/common"
	"github.com/civicvoice/civicvoice-backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SystemConfigRepository is the key/value settings access layer
type SystemConfigRepository struct {
	db *gorm.DB
}

// NewSystemConfigRepository creates a new SystemConfigRepository
func NewSystemConfigRepository(db *gorm.DB) *SystemConfigRepository {
	return &SystemConfigRepository{db: db}
}

// Get loads the config row for a key
func (r *SystemConfigRepository) Get(key string) (*domain.SystemConfig, error) {
	var cfg domain.SystemConfig
	err := r.db.Where("cfg_key = ?", key).First(&cfg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return &cfg, nil
}

// Upsert creates or replaces the config row for a key
func (r *SystemConfigRepository) Upsert(cfg *domain.SystemConfig) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cfg_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"cfg_value", "updated_by", "updated_at"}),
	}).Create(cfg).Error
}
