// Package settings implements the group-tabbed application settings page.
//
// Every tab posts back to the same update route with its group name.
// Only whitelisted keys are written, each with its declared value type,
// so a crafted form field can neither invent a key nor change a type.
package settings

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoBackOffice/GoBackOffice/internal/auth"
	"github.com/GoBackOffice/GoBackOffice/internal/config"
	"github.com/GoBackOffice/GoBackOffice/internal/db/controller/setting"
	"github.com/GoBackOffice/GoBackOffice/internal/db/models"
	"github.com/GoBackOffice/GoBackOffice/internal/web/flash"
	"github.com/GoBackOffice/GoBackOffice/internal/web/handler"
	"github.com/GoBackOffice/GoBackOffice/internal/web/handler/dashboard"
	"github.com/GoBackOffice/GoBackOffice/internal/web/navigation"
)

const (
	// Path is the base path for the settings page.
	Path = handler.RootPath + "admin/settings"

	// Template is the settings page template.
	Template = "admin/settings"
)

// Groups lists the setting groups in tab order.
var Groups = []string{"general", "payment", "seo", "smtp", "notifications", "security"}

// keySpec declares the stored type of one settings key.
type keySpec struct {
	Key  string
	Type models.SettingType
}

// groupKeys whitelists the writable keys per group.
var groupKeys = map[string][]keySpec{
	"general": {
		{"app_name", models.SettingTypeString},
		{"app_email", models.SettingTypeString},
		{"app_phone", models.SettingTypeString},
		{"app_address", models.SettingTypeString},
		{"language", models.SettingTypeString},
	},
	"payment": {
		{"payment_gateway", models.SettingTypeString},
		{"currency", models.SettingTypeString},
		{"currency_symbol", models.SettingTypeString},
		{"stripe_public_key", models.SettingTypeString},
		{"stripe_secret_key", models.SettingTypeString},
		{"stripe_webhook_secret", models.SettingTypeString},
		{"paypal_client_id", models.SettingTypeString},
		{"paypal_secret", models.SettingTypeString},
		{"sslcommerz_store_id", models.SettingTypeString},
		{"sslcommerz_store_password", models.SettingTypeString},
		{"payment_mode", models.SettingTypeString},
	},
	"seo": {
		{"meta_title", models.SettingTypeString},
		{"meta_description", models.SettingTypeString},
		{"meta_keywords", models.SettingTypeString},
		{"google_analytics_id", models.SettingTypeString},
		{"google_search_console_verification", models.SettingTypeString},
	},
	"smtp": {
		{"smtp_host", models.SettingTypeString},
		{"smtp_port", models.SettingTypeNumber},
		{"smtp_username", models.SettingTypeString},
		{"smtp_password", models.SettingTypeString},
		{"smtp_encryption", models.SettingTypeString},
		{"smtp_from_address", models.SettingTypeString},
		{"smtp_from_name", models.SettingTypeString},
	},
	"notifications": {
		{"email_notifications_enabled", models.SettingTypeBoolean},
		{"push_notifications_enabled", models.SettingTypeBoolean},
		{"notification_email", models.SettingTypeString},
		{"low_stock_threshold", models.SettingTypeNumber},
		{"order_notification_enabled", models.SettingTypeBoolean},
	},
	"security": {
		{"password_min_length", models.SettingTypeNumber},
		{"password_require_uppercase", models.SettingTypeBoolean},
		{"password_require_lowercase", models.SettingTypeBoolean},
		{"password_require_numbers", models.SettingTypeBoolean},
		{"password_require_symbols", models.SettingTypeBoolean},
		{"two_factor_enabled", models.SettingTypeBoolean},
		{"session_timeout", models.SettingTypeNumber},
	},
}

// Service renders and updates application settings.
type Service struct {
	cfg         *config.Config
	db          *gorm.DB
	store       *setting.Store
	authService *auth.Service
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, store *setting.Store, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg
	s.store = store
	s.authService = authService

	app.Get(Path,
		auth.RequirePermission(authService, auth.PermViewSettings),
		s.Index,
	)
	app.Post(Path+"/:group",
		auth.RequirePermission(authService, auth.PermEditSettings),
		s.Update,
	)
}

// Index renders all setting groups as typed maps.
func (s *Service) Index(c *fiber.Ctx) error {
	nav := navigation.NewContext("Settings", "admin", "settings").
		AddBreadcrumb("Home", dashboard.Path, false).
		AddBreadcrumb("Admin", "#", false).
		AddBreadcrumb("Settings", Path, true)

	groupValues := make(map[string]map[string]any, len(Groups))
	for _, group := range Groups {
		values := s.store.GetGroup(group)

		// unset keys render as their zero value
		for _, spec := range groupKeys[group] {
			if _, ok := values[spec.Key]; ok && values[spec.Key] != nil {
				continue
			}

			switch spec.Type {
			case models.SettingTypeBoolean:
				values[spec.Key] = false
			case models.SettingTypeNumber, models.SettingTypeInteger:
				values[spec.Key] = 0
			default:
				values[spec.Key] = ""
			}
		}

		groupValues[group] = values
	}

	messages := flash.Get(c)

	return c.Render(Template, fiber.Map{
		"Navigation": nav,
		"Groups":     Groups,
		"Settings":   groupValues,
		"ActiveTab":  c.Query("tab", Groups[0]),
		"Success":    messages[flash.KeySuccess],
		"Error":      messages[flash.KeyError],
	}, handler.BaseLayout)
}

// Update writes the posted fields of one group. Fields absent from the
// submission are left untouched so the tabs stay independent.
func (s *Service) Update(c *fiber.Ctx) error {
	group := c.Params("group")

	specs, ok := groupKeys[group]
	if !ok {
		return c.Status(fiber.StatusNotFound).SendString("Unknown settings group")
	}

	var (
		failed bool
		args   = c.Request().PostArgs()
	)

	for _, spec := range specs {
		if !args.Has(spec.Key) {
			continue
		}

		// Checkbox fields arrive as hidden "0" plus checked "1";
		// the last occurrence wins.
		occurrences := args.PeekMulti(spec.Key)
		value := string(occurrences[len(occurrences)-1])

		if _, err := s.store.Set(spec.Key, value, group, spec.Type); err != nil {
			log.Error().Err(err).
				Str("group", group).
				Str("key", spec.Key).
				Msg("update setting failed")

			failed = true
		}
	}

	if failed {
		flash.Set(c, flash.KeyError, "Some settings could not be saved.")
	} else {
		flash.Set(c, flash.KeySuccess, "Settings updated successfully.")
	}

	return c.Redirect(Path + "?tab=" + group)
}
