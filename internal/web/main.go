// Package web implements the parley HTTP API service.
package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/parley-chat/parley/internal/access"
	"github.com/parley-chat/parley/internal/config"
	logadapter "github.com/parley-chat/parley/internal/logger/adapter/fiber"
	channelhandler "github.com/parley-chat/parley/internal/web/handler/channel"
	memberhandler "github.com/parley-chat/parley/internal/web/handler/member"
	overwritehandler "github.com/parley-chat/parley/internal/web/handler/overwrite"
	permissionhandler "github.com/parley-chat/parley/internal/web/handler/permission"
	rolehandler "github.com/parley-chat/parley/internal/web/handler/role"
	threadhandler "github.com/parley-chat/parley/internal/web/handler/thread"
	tokenhandler "github.com/parley-chat/parley/internal/web/handler/token"
)

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
	db           *gorm.DB
	accService   *access.Service
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown waits for graceful shutdown of parley.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	// Wait interrupt or shutdown request through /shutdown
	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: set status to fail, so checkalive returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	// stop fiber http server
	serverShutdown := make(chan struct{})

	go func() {
		log.Info().Msg("stopping http server ...")

		err := s.App.Shutdown()
		if err != nil {
			log.Error().Err(err).Msg("")
		}

		serverShutdown <- struct{}{}
	}()

	<-serverShutdown
	log.Info().Msg("http server was stopped ... good bye...")
}

// New creates a new web service with the given configuration.
func New(cfg *config.Config, db *gorm.DB) *Service {
	if cfg == nil {
		panic("config cannot be nil")
	}

	if db == nil {
		panic("db cannot be nil")
	}

	checkAliveURI := cfg.Webserver.CheckAliveURI
	if checkAliveURI == "" {
		checkAliveURI = "/checkalive"
	}

	// create fiber app
	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        "parley",
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
		},
	)

	if !cfg.Webserver.DisableRecover {
		app.Use(recover.New())
	}

	// access log
	app.Use(logadapter.New(logadapter.Config{
		Config:        cfg.Log,
		CheckAliveURI: checkAliveURI,
	}))

	// init web service
	service := &Service{
		cfg:        cfg,
		App:        app,
		db:         db,
		accService: access.NewService(db),
	}
	service.alive.Store(true)

	// unauthenticated endpoints for probes and scrapes
	app.Get(checkAliveURI, service.checkAlive)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// everything below requires a valid API token
	app.Use(TokenAuthMiddleware(db))

	// init handlers (they register their own routes with permission checks)
	mustInit("role", rolehandler.Handler.Init(app, cfg, db, service.accService))
	mustInit("member", memberhandler.Handler.Init(app, cfg, db, service.accService))
	mustInit("channel", channelhandler.Handler.Init(app, cfg, db, service.accService))
	mustInit("overwrite", overwritehandler.Handler.Init(app, cfg, db, service.accService))
	mustInit("thread", threadhandler.Handler.Init(app, cfg, db, service.accService))
	mustInit("permission", permissionhandler.Handler.Init(app, cfg, db, service.accService))
	mustInit("token", tokenhandler.Handler.Init(app, cfg, db, service.accService))

	return service
}

func mustInit(name string, err error) {
	if err != nil {
		log.Fatal().Err(err).Str("handler", name).Msg("handler init failed")
	}
}

// checkAlive reports service liveness. It flips to 503 during graceful
// shutdown so load balancers drain this instance.
func (s *Service) checkAlive(c *fiber.Ctx) error {
	if !s.alive.Load() {
		return c.SendStatus(fiber.StatusServiceUnavailable)
	}

	return c.SendString("OK")
}
