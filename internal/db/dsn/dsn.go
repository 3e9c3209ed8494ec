// Package dsn provides Data Source Name construction utilities for database connections.
package dsn

import (
	"fmt"

	"github.com/GoBackOffice/GoBackOffice/internal/config"
)

// Create builds the Data Source Name from the configuration, matching the
// configured gorm engine.
func Create(dbCfg *config.Config) string {
	if dbCfg.DB.GormEngine == "postgres" {
		return CreatePostgres(dbCfg)
	}

	return CreateMySQL(dbCfg)
}

// CreateMySQL builds a MySQL Data Source Name.
func CreateMySQL(dbCfg *config.Config) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		dbCfg.DB.User,
		dbCfg.DB.Password,
		dbCfg.DB.Host,
		dbCfg.DB.Port,
		dbCfg.DB.Name,
		dbCfg.DB.Extras,
	)
}

// CreatePostgres builds a PostgreSQL Data Source Name.
func CreatePostgres(dbCfg *config.Config) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?%s",
		dbCfg.DB.User,
		dbCfg.DB.Password,
		dbCfg.DB.Host,
		dbCfg.DB.Port,
		dbCfg.DB.Name,
		dbCfg.DB.Extras,
	)
}
