package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"horse.fit/mtroute/internal/globaltime"
	"horse.fit/mtroute/internal/language"
	"horse.fit/mtroute/internal/logging"
	"horse.fit/mtroute/internal/translation"
)

const defaultBodyLimit = "1M"

// Translator is the part of the orchestrator the HTTP surface drives.
type Translator interface {
	Execute(ctx context.Context, req translation.Request) (*translation.Result, error)
	TranslateDirect(ctx context.Context, req translation.DirectRequest) (*translation.DirectResult, error)
	Routes() *translation.Registry
	LoadedBackends() []string
}

type Options struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	BodyLimit       string

	// A non-empty DebugModelTokenHash guards /debug_model with a bearer token.
	DebugModelEndpoint  bool
	DebugModelTokenHash string
}

type Server struct {
	translator Translator
	logger     zerolog.Logger
	opts       Options
}

func NewServer(translator Translator, logger zerolog.Logger, opts Options) *Server {
	host := strings.TrimSpace(opts.Host)
	if host == "" {
		host = "0.0.0.0"
	}
	port := opts.Port
	if port <= 0 {
		port = 8090
	}
	readTimeout := opts.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 10 * time.Second
	}
	writeTimeout := opts.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 5 * time.Minute
	}
	shutdownTimeout := opts.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	bodyLimit := strings.TrimSpace(opts.BodyLimit)
	if bodyLimit == "" {
		bodyLimit = defaultBodyLimit
	}

	return &Server{
		translator: translator,
		logger:     logging.Component(logger, "httpapi"),
		opts: Options{
			Host:                host,
			Port:                port,
			ReadTimeout:         readTimeout,
			WriteTimeout:        writeTimeout,
			ShutdownTimeout:     shutdownTimeout,
			BodyLimit:           bodyLimit,
			DebugModelEndpoint:  opts.DebugModelEndpoint,
			DebugModelTokenHash: strings.TrimSpace(opts.DebugModelTokenHash),
		},
	}
}

// Handler builds the Echo instance with middleware and routes registered.
func (s *Server) Handler() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.httpErrorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.BodyLimit(s.opts.BodyLimit))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       3600,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				s.logger.Error().
					Err(v.Error).
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Str("remote_ip", v.RemoteIP).
					Str("request_id", v.RequestID).
					Msg("http request failed")
				return nil
			}

			s.logger.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg("http request")
			return nil
		},
	}))

	e.POST("/translate", s.handleTranslate)
	if s.opts.DebugModelEndpoint {
		e.GET("/debug_model", s.handleDebugModel, s.requireDebugToken())
	}

	api := e.Group("/api/v1")
	api.GET("/health", s.handleHealth)
	api.GET("/routes", s.handleRoutes)

	return e
}

func (s *Server) Start(ctx context.Context) error {
	if s == nil || s.translator == nil {
		return fmt.Errorf("server is not initialized")
	}

	e := s.Handler()

	addr := fmt.Sprintf("%s:%d", s.opts.Host, s.opts.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      e,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		if shutdownErr := e.Shutdown(shutdownCtx); shutdownErr != nil {
			s.logger.Error().Err(shutdownErr).Msg("server shutdown failed")
		}
	}()

	s.logger.Info().
		Str("addr", addr).
		Bool("debug_model", s.opts.DebugModelEndpoint).
		Bool("debug_model_token", s.opts.DebugModelTokenHash != "").
		Msg("mtroute server started")

	if err := e.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("start server: %w", err)
	}
	s.logger.Info().Msg("mtroute server stopped")
	return nil
}

func (s *Server) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "Internal server error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		switch v := he.Message.(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				message = v
			}
		default:
			if text := strings.TrimSpace(http.StatusText(status)); text != "" {
				message = text
			}
		}
	}

	if status >= 500 {
		_ = serverError(c, "Internal server error", nil)
		return
	}
	_ = fail(c, status, message, nil)
}

func (s *Server) handleHealth(c echo.Context) error {
	return success(c, map[string]any{
		"service":         "mtroute",
		"time":            globaltime.UTC(),
		"loaded_backends": s.translator.LoadedBackends(),
	})
}

func (s *Server) handleRoutes(c echo.Context) error {
	registry := s.translator.Routes()
	return success(c, map[string]any{
		"routes":    registry.Routes(),
		"languages": translation.LanguageOptions(registry),
		"hub":       language.Hub.String(),
	})
}
