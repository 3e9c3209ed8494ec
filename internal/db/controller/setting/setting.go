// Package setting provides typed get/set access to the flat namespace of
// application configuration values.
//
// Lookups are deliberately fail-soft: a missing key returns the caller
// supplied default, malformed JSON decodes to nil, and storage errors are
// logged rather than surfaced, so that configuration reads never break a
// request.
package setting

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoBackOffice/GoBackOffice/internal/db/models"
)

const (
	keyQueryPattern   = "key = ?"
	groupQueryPattern = "group_name = ?"
)

var (
	// ErrSettingKeyEmpty is returned when attempting to write a setting with an empty key.
	ErrSettingKeyEmpty = errors.New("setting key cannot be empty")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Store provides typed access to persisted settings. It is passed explicitly
// to the components that need it (locale middleware, settings handler)
// instead of living behind package-level state.
type Store struct {
	db *gorm.DB
}

// NewStore creates a settings store on top of the given database connection.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Get retrieves a setting value by key, decoded according to its stored type.
// A missing key is a normal state, not an error: the default is returned
// unchanged, with no type coercion applied to it.
func (s *Store) Get(key string, def any) any {
	if s.db == nil || key == "" {
		return def
	}

	var setting models.Setting
	result := s.db.Where(keyQueryPattern, key).First(&setting)
	if result.Error != nil {
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			log.Error().Err(result.Error).Str("key", key).Msg("setting lookup failed")
		}

		return def
	}

	return CastValue(setting.Value, setting.Type)
}

// Set creates or updates a setting by key (upsert). Keys are unique across
// all groups, so writing an existing key overwrites its value, group and
// type regardless of which group it belonged to before. Composite values
// are JSON encoded before storage.
func (s *Store) Set(key string, value any, group string, settingType models.SettingType) (*models.Setting, error) {
	if s.db == nil {
		return nil, ErrDBNil
	}
	if key == "" {
		return nil, ErrSettingKeyEmpty
	}

	stored, err := encodeValue(value)
	if err != nil {
		return nil, err
	}

	var setting models.Setting
	result := s.db.Where(keyQueryPattern, key).First(&setting)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		setting = models.Setting{
			Key:   key,
			Value: stored,
			Group: group,
			Type:  settingType,
		}

		if err := s.db.Create(&setting).Error; err != nil {
			return nil, err
		}

		return &setting, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}

	setting.Value = stored
	setting.Group = group
	setting.Type = settingType

	if err := s.db.Save(&setting).Error; err != nil {
		return nil, err
	}

	return &setting, nil
}

// GetGroup returns all settings currently tagged with the given group as a
// key to decoded-value map. A key's group is authoritative at read time.
func (s *Store) GetGroup(group string) map[string]any {
	out := make(map[string]any)

	if s.db == nil {
		return out
	}

	var settings []models.Setting
	if err := s.db.Where(groupQueryPattern, group).Find(&settings).Error; err != nil {
		log.Error().Err(err).Str("group", group).Msg("setting group lookup failed")

		return out
	}

	for _, setting := range settings {
		out[setting.Key] = CastValue(setting.Value, setting.Type)
	}

	return out
}

// GetString returns a string setting or the default.
func (s *Store) GetString(key, def string) string {
	if v, ok := s.Get(key, def).(string); ok {
		return v
	}

	return def
}

// GetBool returns a boolean setting or the default.
func (s *Store) GetBool(key string, def bool) bool {
	if v, ok := s.Get(key, def).(bool); ok {
		return v
	}

	return def
}

// GetInt returns an integer setting or the default.
func (s *Store) GetInt(key string, def int) int {
	if v, ok := s.Get(key, def).(int); ok {
		return v
	}

	return def
}

// GetFloat returns a float setting or the default.
func (s *Store) GetFloat(key string, def float64) float64 {
	if v, ok := s.Get(key, def).(float64); ok {
		return v
	}

	return def
}

// GetJSON returns a json setting decoded into its structured form, or the
// default when the key is unset or the stored document is malformed.
func (s *Store) GetJSON(key string, def any) any {
	v := s.Get(key, def)
	if v == nil {
		return def
	}

	return v
}

// CastValue decodes a stored value according to its type tag.
//
// The leniency rules are part of the store's contract, consumers silently
// depend on the result's runtime type:
//   - a stored NULL short-circuits to nil regardless of type
//   - boolean accepts "1"/"true"/"yes"/"on" (case-insensitive) as true,
//     everything else including "" is false
//   - number/integer takes the longest leading integer prefix, so "12abc"
//     is 12 and "3.9" truncates to 3
//   - float takes the longest leading float prefix
//   - json decodes to a structured document; malformed input yields nil,
//     never an error
//   - any other tag (string, file, unknown) returns the text verbatim
func CastValue(value *string, settingType models.SettingType) any {
	if value == nil {
		return nil
	}

	v := *value

	switch settingType {
	case models.SettingTypeBoolean:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "on":
			return true
		default:
			return false
		}
	case models.SettingTypeNumber, models.SettingTypeInteger:
		return castInt(v)
	case models.SettingTypeFloat:
		return castFloat(v)
	case models.SettingTypeJSON:
		var doc any
		if err := json.Unmarshal([]byte(v), &doc); err != nil {
			return nil
		}

		return doc
	default:
		return v
	}
}

// castInt converts the longest leading integer prefix, or 0.
func castInt(v string) int {
	v = strings.TrimSpace(v)
	for l := len(v); l > 0; l-- {
		if n, err := strconv.Atoi(v[:l]); err == nil {
			return n
		}
	}

	return 0
}

// castFloat converts the longest leading float prefix, or 0.
func castFloat(v string) float64 {
	v = strings.TrimSpace(v)
	for l := len(v); l > 0; l-- {
		if f, err := strconv.ParseFloat(v[:l], 64); err == nil {
			return f
		}
	}

	return 0
}

// encodeValue serializes a value to its stored text form. Scalars are
// formatted directly; anything composite goes through JSON.
func encodeValue(value any) (*string, error) {
	if value == nil {
		return nil, nil
	}

	var out string

	switch v := value.(type) {
	case string:
		out = v
	case []byte:
		out = string(v)
	case bool:
		if v {
			out = "1"
		} else {
			out = "0"
		}
	case int:
		out = strconv.Itoa(v)
	case int64:
		out = strconv.FormatInt(v, 10)
	case uint64:
		out = strconv.FormatUint(v, 10)
	case float64:
		out = strconv.FormatFloat(v, 'f', -1, 64)
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}

		out = string(raw)
	}

	return &out, nil
}
