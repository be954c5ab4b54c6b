// Package daemon wires the database, seed data and web service together.
package daemon

import (
	"fmt"

	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/parley-chat/parley/internal/config"
	"github.com/parley-chat/parley/internal/db/dsn"
	"github.com/parley-chat/parley/internal/db/models"
	"github.com/parley-chat/parley/internal/web"
)

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	webService *web.Service
}

// Start starts the Daemon's web service.
func (d *Daemon) Start() error {
	return d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))
}

// WaitShutdown blocks until the web service shut down gracefully.
func (d *Daemon) WaitShutdown() {
	d.webService.WaitShutdown()
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) *Daemon {
	if cfg == nil {
		log.Fatal().Msg("config is nil")
		return nil
	}

	var dbDriver gorm.Dialector

	switch cfg.DB.GormEngine {
	case "mysql":
		dbDriver = gormmysql.Open(dsn.Create(cfg))
	case "", "sqlite":
		dbDriver = gormsqlite.Open(dsn.SQLite(cfg))
	default:
		log.Fatal().Str("engine", cfg.DB.GormEngine).Msg("unknown gorm engine")
	}

	db, err := gorm.Open(dbDriver, &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	if err = db.AutoMigrate(
		&models.Role{},
		&models.Member{},
		&models.MemberRole{},
		&models.Channel{},
		&models.Overwrite{},
		&models.Thread{},
		&models.ThreadMember{},
		&models.APIToken{},
	); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	seed(db)

	return &Daemon{
		cfg:        cfg,
		webService: web.New(cfg, db),
	}
}
