// Package daemon wires the database, session storage and web service
// together into the running application.
package daemon

import (
	"fmt"

	"github.com/gofiber/storage"
	sessionmysql "github.com/gofiber/storage/mysql/v2"
	sessionpostgres "github.com/gofiber/storage/postgres/v3"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/GoBackOffice/GoBackOffice/internal/config"
	"github.com/GoBackOffice/GoBackOffice/internal/db/dsn"
	"github.com/GoBackOffice/GoBackOffice/internal/db/models"
	"github.com/GoBackOffice/GoBackOffice/internal/web"
	"github.com/GoBackOffice/GoBackOffice/internal/web/session"
)

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	webService *web.Service
}

// Start starts the Daemon's web service.
func (d *Daemon) Start() error {
	addr := fmt.Sprintf(":%d", d.cfg.Webserver.Port)

	go d.webService.WaitShutdown()

	return d.webService.Start(addr)
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) *Daemon {
	if cfg == nil {
		log.Fatal().Msg("config is nil")
		return nil
	}

	db, err := gorm.Open(openDialector(cfg), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}

	if err = db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Permission{},
		&models.UserRole{},
		&models.RolePermission{},
		&models.Setting{},
	); err != nil {
		panic("failed to migrate database")
	}

	seed(cfg, db)

	session.Init(openSessionStorage(cfg))

	return &Daemon{
		cfg:        cfg,
		webService: web.New(cfg, db),
	}
}

// openDialector selects the gorm driver for the configured engine.
func openDialector(cfg *config.Config) gorm.Dialector {
	if cfg.DB.GormEngine == "postgres" {
		return gormpostgres.Open(dsn.Create(cfg))
	}

	return gormmysql.Open(dsn.Create(cfg))
}

// openSessionStorage selects the fiber session storage for the configured
// engine, so sessions live next to the application data.
func openSessionStorage(cfg *config.Config) storage.Storage {
	if cfg.DB.GormEngine == "postgres" {
		return sessionpostgres.New(sessionpostgres.Config{
			ConnectionURI: dsn.Create(cfg),
			Table:         "sessions",
		})
	}

	return sessionmysql.New(sessionmysql.Config{
		ConnectionURI: dsn.Create(cfg),
		Table:         "sessions",
	})
}
