// Package dsn provides Data Source Name construction utilities for database connections.
package dsn

import (
	"fmt"

	"github.com/GoCourseNav/GoCourseNav/internal/config"
)

// Engine identifiers accepted in the DB.GormEngine configuration setting.
const (
	EngineSQLite   = "sqlite"
	EngineMySQL    = "mysql"
	EnginePostgres = "postgres"
)

// Create builds the Data Source Name for the configured engine.
// SQLite treats DB.Name as the database file path; the server engines
// assemble host, port, credentials and extras into their native form.
func Create(dbCfg *config.Config) string {
	switch dbCfg.DB.GormEngine {
	case EnginePostgres:
		out := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s",
			dbCfg.DB.Host,
			dbCfg.DB.Port,
			dbCfg.DB.User,
			dbCfg.DB.Password,
			dbCfg.DB.Name,
		)

		if dbCfg.DB.Extras != "" {
			out += " " + dbCfg.DB.Extras
		}

		return out
	case EngineMySQL:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
			dbCfg.DB.User,
			dbCfg.DB.Password,
			dbCfg.DB.Host,
			dbCfg.DB.Port,
			dbCfg.DB.Name,
			dbCfg.DB.Extras,
		)
	default: // sqlite
		return dbCfg.DB.Name
	}
}
