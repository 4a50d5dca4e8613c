// Package web assembles the fiber application: templates, static assets,
// middleware and the page handlers.
package web

import (
	"errors"
	"html/template"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/template/html/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoCourseNav/GoCourseNav/internal/auth"
	"github.com/GoCourseNav/GoCourseNav/internal/config"
	"github.com/GoCourseNav/GoCourseNav/internal/course"
	accesslog "github.com/GoCourseNav/GoCourseNav/internal/logger/adapter/fiber"
	"github.com/GoCourseNav/GoCourseNav/internal/web/handler/admin/enrolment"
	"github.com/GoCourseNav/GoCourseNav/internal/web/handler/admin/server/configuration"
	adminsectionlinks "github.com/GoCourseNav/GoCourseNav/internal/web/handler/admin/settings/sectionlinks"
	adminuser "github.com/GoCourseNav/GoCourseNav/internal/web/handler/admin/user"
	oidchandler "github.com/GoCourseNav/GoCourseNav/internal/web/handler/auth/oidc"
	courseview "github.com/GoCourseNav/GoCourseNav/internal/web/handler/course/view"
	"github.com/GoCourseNav/GoCourseNav/internal/web/handler/courses"
	"github.com/GoCourseNav/GoCourseNav/internal/web/handler/login"
	"github.com/GoCourseNav/GoCourseNav/internal/web/handler/logout"
	instancesectionlinks "github.com/GoCourseNav/GoCourseNav/internal/web/handler/settings/sectionlinks"
	authmiddleware "github.com/GoCourseNav/GoCourseNav/internal/web/middleware/auth"
)

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
	db           *gorm.DB
	authService  *auth.Service
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

// WaitShutdown waits for graceful shutdown of the portal.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

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
func New(cfg *config.Config, db *gorm.DB, courseProvider *course.Provider) *Service {
	if cfg == nil {
		panic("config cannot be nil")
	}

	if db == nil {
		panic("db cannot be nil")
	}

	if courseProvider == nil {
		panic("course provider cannot be nil")
	}

	httpFS := http.FS(templateEmbedFS{embeddedTemplates})
	templateEngine := html.NewFileSystem(httpFS, ".gohtml")

	// in dev mode, use local filesystem for templates
	if cfg.DevMode {
		templateEngine = html.New("./internal/web/templates", ".gohtml")
		templateEngine.ShouldReload = true

		log.Warn().Msg("dev mode enabled: using local filesystem for templates")
	}

	// Add template helper functions
	templateEngine.AddFunc("iterate", func(count int) []int {
		result := make([]int, count)
		for i := range result {
			result[i] = i
		}

		return result
	})
	templateEngine.AddFunc("add", func(a, b int) int {
		return a + b
	})
	templateEngine.AddFunc("sub", func(a, b int) int {
		return a - b
	})
	templateEngine.AddFunc("unescape", func(s string) any {
		return template.HTML(s) //nolint:gosec // values passed here went through richtext
	})

	// create fiber app
	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        cfg.Title,
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
			Views:          templateEngine,
		},
	)

	// access log middleware
	app.Use(accesslog.New(accesslog.Config{
		Config:        cfg.Log,
		CheckAliveURI: "/checkalive",
	}))

	// serve embedded static files
	app.Use("/static",
		filesystem.New(
			filesystem.Config{
				Root:       http.FS(embeddedStaticFiles),
				PathPrefix: "static",
				Browse:     cfg.Webserver.BrowseStatic,
			},
		),
	)

	// init web service
	service := &Service{
		cfg: cfg,
		App: app,
		db:  db,
	}
	service.alive.Store(true)

	// operational endpoints stay outside the session check
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Get("/checkalive", service.checkAlive)

	// session middleware
	app.Use(authmiddleware.Middleware)

	// Initialize auth service
	authService := auth.NewService(db)
	service.authService = authService

	// init handlers (they register their own routes with capability checks)
	login.Handler.Init(app, cfg, db)
	logout.Handler.Init(app, cfg)
	oidchandler.Handler.Init(app, cfg, db)
	courses.Handler.Init(app, cfg, db, authService)
	courseview.Handler.Init(app, cfg, db, authService, courseProvider)
	instancesectionlinks.Handler.Init(app, cfg, db, authService)
	adminsectionlinks.Handler.Init(app, cfg, db, authService)
	adminuser.Handler.Init(app, cfg, db, authService)
	enrolment.Handler.Init(app, cfg, db, authService)
	configuration.Handler.Init(app, cfg, db, authService)

	// redirect root to the course overview
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect(courses.Path)
	})

	return service
}

// checkAlive answers liveness probes, 503 once the drain window started.
func (s *Service) checkAlive(c *fiber.Ctx) error {
	if !s.alive.Load() {
		return c.Status(fiber.StatusServiceUnavailable).SendString("draining")
	}

	return c.SendString("ok")
}
