package setting

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/GoBackOffice/GoBackOffice/internal/db/models"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(&models.Setting{})
	require.NoError(t, err, "failed to migrate test database")

	return db
}

func strPtr(s string) *string { return &s }

func TestCastValue(t *testing.T) {
	testCases := []struct {
		name        string
		value       *string
		settingType models.SettingType
		expected    any
	}{
		{
			name:        "nil value short-circuits regardless of type",
			value:       nil,
			settingType: models.SettingTypeBoolean,
			expected:    nil,
		},
		{
			name:        "boolean one",
			value:       strPtr("1"),
			settingType: models.SettingTypeBoolean,
			expected:    true,
		},
		{
			name:        "boolean true mixed case",
			value:       strPtr("TrUe"),
			settingType: models.SettingTypeBoolean,
			expected:    true,
		},
		{
			name:        "boolean yes",
			value:       strPtr("yes"),
			settingType: models.SettingTypeBoolean,
			expected:    true,
		},
		{
			name:        "boolean on with whitespace",
			value:       strPtr("  on "),
			settingType: models.SettingTypeBoolean,
			expected:    true,
		},
		{
			name:        "boolean zero",
			value:       strPtr("0"),
			settingType: models.SettingTypeBoolean,
			expected:    false,
		},
		{
			name:        "boolean empty string",
			value:       strPtr(""),
			settingType: models.SettingTypeBoolean,
			expected:    false,
		},
		{
			name:        "boolean garbage",
			value:       strPtr("banana"),
			settingType: models.SettingTypeBoolean,
			expected:    false,
		},
		{
			name:        "number plain",
			value:       strPtr("587"),
			settingType: models.SettingTypeNumber,
			expected:    587,
		},
		{
			name:        "number with trailing garbage",
			value:       strPtr("12abc"),
			settingType: models.SettingTypeNumber,
			expected:    12,
		},
		{
			name:        "number decimal truncates",
			value:       strPtr("3.9"),
			settingType: models.SettingTypeNumber,
			expected:    3,
		},
		{
			name:        "number negative",
			value:       strPtr("-42"),
			settingType: models.SettingTypeNumber,
			expected:    -42,
		},
		{
			name:        "number non numeric",
			value:       strPtr("abc"),
			settingType: models.SettingTypeNumber,
			expected:    0,
		},
		{
			name:        "integer alias of number",
			value:       strPtr("7days"),
			settingType: models.SettingTypeInteger,
			expected:    7,
		},
		{
			name:        "float plain",
			value:       strPtr("19.99"),
			settingType: models.SettingTypeFloat,
			expected:    19.99,
		},
		{
			name:        "float with trailing garbage",
			value:       strPtr("2.5kg"),
			settingType: models.SettingTypeFloat,
			expected:    2.5,
		},
		{
			name:        "float non numeric",
			value:       strPtr("oops"),
			settingType: models.SettingTypeFloat,
			expected:    float64(0),
		},
		{
			name:        "json object",
			value:       strPtr(`{"a":1}`),
			settingType: models.SettingTypeJSON,
			expected:    map[string]any{"a": float64(1)},
		},
		{
			name:        "json malformed yields nil",
			value:       strPtr("not json"),
			settingType: models.SettingTypeJSON,
			expected:    nil,
		},
		{
			name:        "string verbatim",
			value:       strPtr("  keep me  "),
			settingType: models.SettingTypeString,
			expected:    "  keep me  ",
		},
		{
			name:        "file type returns path text",
			value:       strPtr("/uploads/logo.png"),
			settingType: models.SettingTypeFile,
			expected:    "/uploads/logo.png",
		},
		{
			name:        "unknown type falls back to text",
			value:       strPtr("raw"),
			settingType: "mystery",
			expected:    "raw",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := CastValue(tc.value, tc.settingType)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestGet(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	// missing key returns the default unchanged
	assert.Equal(t, "fallback", store.Get("nonexistent", "fallback"))
	assert.Nil(t, store.Get("nonexistent", nil))

	// nil store db returns the default
	nilStore := NewStore(nil)
	assert.Equal(t, 42, nilStore.Get("anything", 42))

	// empty key returns the default
	assert.Equal(t, "d", store.Get("", "d"))

	// stored value decodes per its type tag
	_, err := store.Set("smtp_port", "587", "smtp", models.SettingTypeNumber)
	require.NoError(t, err)
	assert.Equal(t, 587, store.Get("smtp_port", 0))

	// stored NULL decodes to nil even with a default
	require.NoError(t, db.Create(&models.Setting{
		Key: "empty", Group: "general", Type: models.SettingTypeString,
	}).Error)
	assert.Nil(t, store.Get("empty", "default"))
}

func TestSet(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	t.Run("nil database", func(t *testing.T) {
		_, err := NewStore(nil).Set("k", "v", "general", models.SettingTypeString)
		require.ErrorIs(t, err, ErrDBNil)
	})

	t.Run("empty key", func(t *testing.T) {
		_, err := store.Set("", "v", "general", models.SettingTypeString)
		require.ErrorIs(t, err, ErrSettingKeyEmpty)
	})

	t.Run("create then overwrite moves group and type", func(t *testing.T) {
		created, err := store.Set("app_name", "Shop", "general", models.SettingTypeString)
		require.NoError(t, err)
		require.NotNil(t, created.Value)
		assert.Equal(t, "Shop", *created.Value)

		updated, err := store.Set("app_name", true, "security", models.SettingTypeBoolean)
		require.NoError(t, err)
		assert.Equal(t, created.ID, updated.ID, "upsert must reuse the existing row")
		require.NotNil(t, updated.Value)
		assert.Equal(t, "1", *updated.Value)
		assert.Equal(t, "security", updated.Group)
		assert.Equal(t, models.SettingTypeBoolean, updated.Type)

		var count int64
		db.Model(&models.Setting{}).Where("key = ?", "app_name").Count(&count)
		assert.EqualValues(t, 1, count)
	})

	t.Run("scalar encodings", func(t *testing.T) {
		s, err := store.Set("bool_off", false, "general", models.SettingTypeBoolean)
		require.NoError(t, err)
		assert.Equal(t, "0", *s.Value)

		s, err = store.Set("int_val", 42, "general", models.SettingTypeNumber)
		require.NoError(t, err)
		assert.Equal(t, "42", *s.Value)

		s, err = store.Set("float_val", 19.99, "general", models.SettingTypeFloat)
		require.NoError(t, err)
		assert.Equal(t, "19.99", *s.Value)
	})

	t.Run("composite value is json encoded", func(t *testing.T) {
		s, err := store.Set("features", []string{"a", "b"}, "general", models.SettingTypeJSON)
		require.NoError(t, err)
		require.NotNil(t, s.Value)
		assert.JSONEq(t, `["a","b"]`, *s.Value)

		got := store.Get("features", nil)
		assert.Equal(t, []any{"a", "b"}, got)
	})

	t.Run("nil value stores NULL", func(t *testing.T) {
		s, err := store.Set("cleared", nil, "general", models.SettingTypeString)
		require.NoError(t, err)
		assert.Nil(t, s.Value)
		assert.Nil(t, store.Get("cleared", "default"))
	})
}

func TestGetGroup(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	_, err := store.Set("app_name", "Shop", "general", models.SettingTypeString)
	require.NoError(t, err)
	_, err = store.Set("smtp_port", "587", "smtp", models.SettingTypeNumber)
	require.NoError(t, err)
	_, err = store.Set("two_factor_enabled", "1", "security", models.SettingTypeBoolean)
	require.NoError(t, err)

	general := store.GetGroup("general")
	assert.Equal(t, map[string]any{"app_name": "Shop"}, general)

	smtp := store.GetGroup("smtp")
	assert.Equal(t, map[string]any{"smtp_port": 587}, smtp)

	security := store.GetGroup("security")
	assert.Equal(t, map[string]any{"two_factor_enabled": true}, security)

	// unknown group is an empty map, not nil
	empty := store.GetGroup("nope")
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	// moving a key to another group moves it out of the old one
	_, err = store.Set("app_name", "Shop", "seo", models.SettingTypeString)
	require.NoError(t, err)
	assert.Empty(t, store.GetGroup("general"))
	assert.Equal(t, map[string]any{"app_name": "Shop"}, store.GetGroup("seo"))
}

func TestTypedGetters(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	_, err := store.Set("language", "bn", "general", models.SettingTypeString)
	require.NoError(t, err)
	_, err = store.Set("two_factor_enabled", "yes", "security", models.SettingTypeBoolean)
	require.NoError(t, err)
	_, err = store.Set("session_timeout", "120", "security", models.SettingTypeNumber)
	require.NoError(t, err)
	_, err = store.Set("tax_rate", "7.25", "payment", models.SettingTypeFloat)
	require.NoError(t, err)

	assert.Equal(t, "bn", store.GetString("language", "en"))
	assert.Equal(t, "en", store.GetString("missing", "en"))

	assert.True(t, store.GetBool("two_factor_enabled", false))
	assert.True(t, store.GetBool("missing", true))

	assert.Equal(t, 120, store.GetInt("session_timeout", 30))
	assert.Equal(t, 30, store.GetInt("missing", 30))

	assert.InDelta(t, 7.25, store.GetFloat("tax_rate", 0), 0.0001)
	assert.InDelta(t, 1.5, store.GetFloat("missing", 1.5), 0.0001)

	// type mismatch falls back to the default
	assert.Equal(t, 5, store.GetInt("language", 5))
	assert.Equal(t, "en", store.GetString("session_timeout", "en"))

	_, err = store.Set("mail_headers", map[string]any{"X-Priority": "1"}, "smtp", models.SettingTypeJSON)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"X-Priority": "1"}, store.GetJSON("mail_headers", nil))
	assert.Equal(t, "fallback", store.GetJSON("missing", "fallback"))

	// malformed stored json decodes to nil, so the default wins
	broken := "{oops"
	require.NoError(t, db.Create(&models.Setting{Key: "broken_json", Value: &broken, Group: "smtp", Type: models.SettingTypeJSON}).Error)
	assert.Equal(t, "fallback", store.GetJSON("broken_json", "fallback"))
}
