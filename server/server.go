package server

import (
	"context"
	"log/slog"
	"math"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/hrygo/uihint/ai/format"
	"github.com/hrygo/uihint/ai/metrics"
	"github.com/hrygo/uihint/internal/logging"
	"github.com/hrygo/uihint/internal/profile"
	apiv1 "github.com/hrygo/uihint/server/router/api/v1"
)

// Server serves the UI hint API. It owns its echo instance, listener and
// metrics; nothing is shared through package state.
type Server struct {
	Profile *profile.Profile

	echoServer *echo.Echo
	httpServer *http.Server
	metrics    *metrics.PrometheusExporter
}

func NewServer(_ context.Context, profile *profile.Profile) (*Server, error) {
	if profile == nil {
		return nil, errors.New("profile is required")
	}

	s := &Server{
		Profile: profile,
		metrics: metrics.NewPrometheusExporter(metrics.Config{RuntimeCollectors: true}),
	}

	echoServer := echo.New()
	echoServer.Debug = profile.IsDev()
	echoServer.HideBanner = true
	echoServer.HidePort = true
	echoServer.HTTPErrorHandler = apiv1.HTTPErrorHandler
	s.echoServer = echoServer

	echoServer.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	echoServer.Use(withRequestLogger)
	echoServer.Use(newRequestLogger())
	echoServer.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		DisablePrintStack: !profile.IsDev(),
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			slog.Error("Recovered from panic",
				"uri", c.Request().RequestURI,
				"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
				"error", err,
				"stack", string(stack),
			)
			return err
		},
	}))
	echoServer.Use(middleware.BodyLimit(profile.BodyLimit))
	if len(profile.CORSOrigins) > 0 {
		echoServer.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: profile.CORSOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		}))
	}
	if profile.RateLimit > 0 {
		echoServer.Use(newRateLimiter(profile.RateLimit))
	}

	apiV1Service := apiv1.NewAPIV1Service(profile, format.NewFormatter(), s.metrics)
	apiV1Service.RegisterRoutes(echoServer)

	s.httpServer = &http.Server{
		Handler:           h2c.NewHandler(echoServer, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s, nil
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.echoServer
}

// Run listens and serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listener, err := s.listen()
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "failed to serve")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.Profile.ShutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) listen() (net.Listener, error) {
	if s.Profile.UNIXSock != "" {
		if err := os.Remove(s.Profile.UNIXSock); err != nil && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to remove stale unix socket %s", s.Profile.UNIXSock)
		}
		listener, err := net.Listen("unix", s.Profile.UNIXSock)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to listen on unix socket %s", s.Profile.UNIXSock)
		}
		return listener, nil
	}

	listener, err := net.Listen("tcp", s.Profile.ListenAddr())
	if err != nil {
		return nil, errors.Wrapf(err, "failed to listen on %s", s.Profile.ListenAddr())
	}
	return listener, nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("Server shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "failed to shutdown server")
	}
	slog.Info("Server stopped properly")
	return nil
}

// withRequestLogger stores a logger tagged with the request id in the request
// context.
func withRequestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		l := slog.Default().With("request_id", c.Response().Header().Get(echo.HeaderXRequestID))
		c.SetRequest(req.WithContext(logging.ToContext(req.Context(), l)))
		return next(c)
	}
}

func newRequestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/healthz" || c.Path() == "/metrics"
		},
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := slog.LevelInfo
			if v.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			} else if v.Status >= http.StatusBadRequest {
				level = slog.LevelWarn
			}
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("request_id", v.RequestID),
				slog.String("remote_ip", v.RemoteIP),
			}
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}
			slog.LogAttrs(c.Request().Context(), level, "request", attrs...)
			return nil
		},
	})
}

// newRateLimiter limits requests per client IP. Burst is at least one request
// so fractional rates still admit traffic.
func newRateLimiter(perSecond float64) echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(perSecond),
		Burst:     int(math.Max(1, math.Ceil(perSecond))),
		ExpiresIn: 3 * time.Minute,
	})
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/healthz"
		},
		Store: store,
	})
}
