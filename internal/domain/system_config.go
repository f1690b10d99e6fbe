package domain

import "time"

// SystemConfig is a key/value store for runtime settings.
// Values are JSON documents owned by the key's feature.
type SystemConfig struct {
	Key       string    `gorm:"column:cfg_key;type:varchar(100);primaryKey" json:"key"`
	Value     string    `gorm:"column:cfg_value;type:json" json:"value"`
	UpdatedBy string    `gorm:"column:updated_by;type:varchar(36)" json:"updated_by,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name
func (SystemConfig) TableName() string {
	return "system_configs"
}

// ConfigKeyModerationSettings is the key holding ModerationSettings
const ConfigKeyModerationSettings = "moderation_settings"
