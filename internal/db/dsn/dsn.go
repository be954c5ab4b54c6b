// Package dsn provides Data Source Name construction utilities for database connections.
package dsn

import (
	"fmt"

	"github.com/parley-chat/parley/internal/config"
)

// Create builds the MySQL Data Source Name from the configuration.
func Create(dbCfg *config.Config) string {
	out := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		dbCfg.DB.User,
		dbCfg.DB.Password,
		dbCfg.DB.Host,
		dbCfg.DB.Port,
		dbCfg.DB.Name,
		dbCfg.DB.Extras,
	)

	return out
}

// SQLite returns the SQLite database path, defaulting to a local file.
func SQLite(dbCfg *config.Config) string {
	if dbCfg.DB.SQLitePath == "" {
		return "parley.db"
	}

	return dbCfg.DB.SQLitePath
}
