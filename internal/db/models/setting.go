// Package models contains database model definitions.
package models

import "time"

// SettingType declares how a setting's stored value must be decoded on read.
type SettingType = string

const (
	// SettingTypeString stores the value verbatim as text.
	SettingTypeString SettingType = "string"
	// SettingTypeBoolean stores a permissively parsed boolean.
	SettingTypeBoolean SettingType = "boolean"
	// SettingTypeNumber stores an integer value.
	SettingTypeNumber SettingType = "number"
	// SettingTypeInteger is an alias tag for SettingTypeNumber.
	SettingTypeInteger SettingType = "integer"
	// SettingTypeFloat stores a floating point value.
	SettingTypeFloat SettingType = "float"
	// SettingTypeJSON stores a JSON encoded document.
	SettingTypeJSON SettingType = "json"
	// SettingTypeFile stores a file path, returned verbatim as text.
	SettingTypeFile SettingType = "file"
)

// Setting represents a configuration setting stored in the database.
// Keys are unique across all groups; the group tag only partitions settings
// into named namespaces for bulk retrieval.
type Setting struct {
	ID uint64 `gorm:"primaryKey"`
	// Key is the globally unique name of the setting.
	Key string `gorm:"unique;size:191;not null"`
	// Value is the stored text; nil means a stored NULL, which decodes to nil
	// regardless of Type.
	Value *string `gorm:"type:text"`
	// Group partitions settings into namespaces (general, payment, seo, smtp,
	// notifications, security).
	Group string `gorm:"column:group_name;size:100;not null"`
	// Type declares how Value is decoded on read.
	Type SettingType `gorm:"size:20;not null;default:'string'"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
