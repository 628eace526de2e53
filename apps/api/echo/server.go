package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/edureach/backend/core"
	"github.com/edureach/backend/core/auth"
	"github.com/edureach/backend/core/contact"
	"github.com/edureach/backend/core/content"
	"github.com/edureach/backend/core/student"
)

type (
	ServerDeps struct {
		Conf       *core.Config
		Logger     core.Logger
		StudentSvc student.ServiceInterface
		AuthSvc    *auth.Service
		ContentSvc content.ServiceInterface
		ContactSvc *contact.Service
		Validate   *validator.Validate
		Translator ut.Translator

		DisableReqLogs bool
	}

	Server struct {
		addr     string
		deps     ServerDeps
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(addr string, deps ServerDeps) *Server {
	s := &Server{
		addr:     addr,
		deps:     deps,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, syscall.SIGINT, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug
	s.app.HideBanner = true

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := authMiddleware(conf)

	registerAuthAPI(v1, jwt, conf, s.deps.StudentSvc, s.deps.AuthSvc, s.deps.Validate, s.deps.Translator)
	registerContentAPI(v1, jwt, s.deps.ContentSvc, s.deps.Validate, s.deps.Translator)
	registerContactAPI(v1, s.deps.ContactSvc, s.deps.Validate)
}

func (s *Server) Start() {
	s.errors <- s.app.Start(s.addr)
}

// Errors surfaces the fatal server error, if any.
func (s *Server) Errors() <-chan error { return s.errors }

// ShutdownSignal delivers OS termination signals and internal shutdown requests.
func (s *Server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

// signalShutdown requests a graceful shutdown; used when an integrity error is caught.
func (s *Server) signalShutdown() {
	s.shutdown <- syscall.SIGTERM
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to EduReach API!")
}
