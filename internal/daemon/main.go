// Package daemon wires the portal together: database, session store,
// course structure provider and the web service.
package daemon

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/storage"
	sessionmysql "github.com/gofiber/storage/mysql/v2"
	sessionpostgres "github.com/gofiber/storage/postgres/v3"
	sessionsqlite "github.com/gofiber/storage/sqlite3/v2"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/GoCourseNav/GoCourseNav/internal/config"
	"github.com/GoCourseNav/GoCourseNav/internal/course"
	"github.com/GoCourseNav/GoCourseNav/internal/db/dsn"
	"github.com/GoCourseNav/GoCourseNav/internal/db/models"
	"github.com/GoCourseNav/GoCourseNav/internal/logger/adapter/gormlogger"
	"github.com/GoCourseNav/GoCourseNav/internal/web"
	"github.com/GoCourseNav/GoCourseNav/internal/web/session"
)

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	webService *web.Service
	courses    *course.Provider
}

// Start runs the web service until shutdown and releases the daemon's
// resources afterwards.
func (d *Daemon) Start() error {
	go d.webService.WaitShutdown()

	err := d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))

	d.courses.Close()

	return err
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) *Daemon {
	if cfg == nil {
		log.Fatal().Msg("config is nil")
		return nil
	}

	db, err := openDatabase(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("engine", cfg.DB.GormEngine).Msg("failed to connect database")
		return nil
	}

	if err = db.AutoMigrate(
		&models.User{},
		&models.Setting{},
		&models.Course{},
		&models.Section{},
		&models.Enrolment{},
		&models.BlockInstance{},
	); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
		return nil
	}

	seed(cfg, db)

	session.Init(sessionStorage(cfg))

	courses, err := course.NewProvider(db, course.ProviderConfig{
		TTL:     cfg.Course.CacheTTL,
		MaxCost: cfg.Course.CacheMaxCost,
		Formats: courseFormats(cfg),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create course structure provider")
		return nil
	}

	return &Daemon{
		cfg:        cfg,
		webService: web.New(cfg, db, courses),
		courses:    courses,
	}
}

// openDatabase opens the configured GORM engine with the zerolog adapter.
func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: gormlogger.New()}

	switch cfg.DB.GormEngine {
	case dsn.EngineMySQL:
		return gorm.Open(gormmysql.Open(dsn.Create(cfg)), gormCfg) //nolint:wrapcheck
	case dsn.EnginePostgres:
		return gorm.Open(gormpostgres.Open(dsn.Create(cfg)), gormCfg) //nolint:wrapcheck
	default:
		return gorm.Open(sqlite.Open(dsn.Create(cfg)), gormCfg) //nolint:wrapcheck
	}
}

// sessionStorage picks the fiber session storage backend matching the
// database engine, so sessions live next to the portal data.
func sessionStorage(cfg *config.Config) storage.Storage {
	const table = "sessions"

	switch cfg.DB.GormEngine {
	case dsn.EngineMySQL:
		return sessionmysql.New(sessionmysql.Config{
			ConnectionURI: dsn.Create(cfg),
			Table:         table,
		})
	case dsn.EnginePostgres:
		return sessionpostgres.New(sessionpostgres.Config{
			ConnectionURI: dsn.Create(cfg),
			Table:         table,
		})
	default:
		return sessionsqlite.New(sessionsqlite.Config{
			Database: cfg.DB.Name,
			Table:    table,
		})
	}
}

// courseFormats converts the config format table into the provider's type.
func courseFormats(cfg *config.Config) course.Formats {
	formats := make(course.Formats, len(cfg.Format))

	for id, settings := range cfg.Format {
		formats[id] = course.FormatSettings{
			Name:         settings.Name,
			UsesSections: settings.UsesSections,
			SectionNoun:  settings.SectionNoun,
			Weekly:       settings.Weekly,
		}
	}

	return formats
}
