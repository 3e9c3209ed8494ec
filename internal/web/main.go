package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/template/html/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoBackOffice/GoBackOffice/internal/auth"
	"github.com/GoBackOffice/GoBackOffice/internal/config"
	"github.com/GoBackOffice/GoBackOffice/internal/db/controller/setting"
	fiberlogger "github.com/GoBackOffice/GoBackOffice/internal/logger/adapter/fiber"
	permissionhandler "github.com/GoBackOffice/GoBackOffice/internal/web/handler/admin/permission"
	rolehandler "github.com/GoBackOffice/GoBackOffice/internal/web/handler/admin/role"
	settingshandler "github.com/GoBackOffice/GoBackOffice/internal/web/handler/admin/settings"
	userhandler "github.com/GoBackOffice/GoBackOffice/internal/web/handler/admin/user"
	"github.com/GoBackOffice/GoBackOffice/internal/web/handler/dashboard"
	"github.com/GoBackOffice/GoBackOffice/internal/web/handler/login"
	"github.com/GoBackOffice/GoBackOffice/internal/web/handler/logout"
	authmiddleware "github.com/GoBackOffice/GoBackOffice/internal/web/middleware/auth"
	localemiddleware "github.com/GoBackOffice/GoBackOffice/internal/web/middleware/locale"
	suspensionmiddleware "github.com/GoBackOffice/GoBackOffice/internal/web/middleware/suspension"
)

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
	db           *gorm.DB
	authService  *auth.Service
	settings     *setting.Store
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

// WaitShutdown waits for graceful shutdown of the web service.
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
func New(cfg *config.Config, db *gorm.DB) *Service {
	if cfg == nil {
		panic("config cannot be nil")
	}

	if db == nil {
		panic("db cannot be nil")
	}

	httpFS := http.FS(templateEmbedFS{embeddedTemplates})
	templateEngine := html.NewFileSystem(httpFS, ".gohtml")

	// in debug mode, use local filesystem for templates
	if cfg.DevMode {
		templateEngine = html.New("./internal/web/templates", ".gohtml")
		templateEngine.ShouldReload = true

		log.Warn().Msg("debug mode enabled: using local filesystem for templates")
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

	// access logging
	app.Use(fiberlogger.New(fiberlogger.Config{
		Config: cfg.Log,
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

	// basic auth middleware
	app.Use(authmiddleware.Middleware)

	// Initialize auth service and settings store
	authService := auth.NewService(db)
	settingsStore := setting.NewStore(db)

	// Add permissions to fiber.Locals middleware (after auth)
	app.Use(auth.AddPermissionsToLocals(authService))

	// resolve the display language, then enforce the suspension gate.
	// locale runs first so even the redirect of a freshly suspended user
	// renders in the right language.
	app.Use(localemiddleware.New(settingsStore, cfg.Locale))
	app.Use(suspensionmiddleware.New(db))

	// init web service
	service := &Service{
		cfg:         cfg,
		App:         app,
		db:          db,
		authService: authService,
		settings:    settingsStore,
	}

	// init handlers (they register their own routes with permission checks)
	if err := login.Handler.Init(app, cfg, db); err != nil {
		log.Fatal().Err(err).Msg("failed to init login handler")
	}

	logout.Handler.Init(app, cfg)
	dashboard.Handler.Init(app, cfg, db, authService)
	userhandler.Handler.Init(app, cfg, db, authService)
	rolehandler.Handler.Init(app, cfg, db, authService)
	permissionhandler.Handler.Init(app, cfg, db, authService)
	settingshandler.Handler.Init(app, cfg, db, settingsStore, authService)

	// redirect root to dashboard
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect(dashboard.Path)
	})

	return service
}
