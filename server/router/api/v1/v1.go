package v1

import (
	"github.com/labstack/echo/v4"

	"github.com/hrygo/uihint/ai/format"
	"github.com/hrygo/uihint/ai/metrics"
	"github.com/hrygo/uihint/internal/profile"
)

type APIV1Service struct {
	// Domain Services
	ProcessService *ProcessService
	HealthService  *HealthService

	// Shared Infra
	Profile *profile.Profile
	Metrics *metrics.PrometheusExporter
}

func NewAPIV1Service(profile *profile.Profile, formatter format.Formatter, exporter *metrics.PrometheusExporter) *APIV1Service {
	return &APIV1Service{
		Profile: profile,
		Metrics: exporter,
		ProcessService: &ProcessService{
			Formatter: formatter,
			Metrics:   exporter,
		},
		HealthService: &HealthService{Profile: profile},
	}
}

// RegisterRoutes registers the REST endpoints with the given Echo instance.
func (s *APIV1Service) RegisterRoutes(echoServer *echo.Echo) {
	echoServer.POST("/process", s.ProcessService.Process)
	echoServer.GET("/healthz", s.HealthService.Health)

	apiGroup := echoServer.Group("/api/v1")
	apiGroup.POST("/process", s.ProcessService.Process)

	if s.Profile.MetricsEnabled && s.Metrics != nil {
		echoServer.GET("/metrics", echo.WrapHandler(s.Metrics.Handler()))
	}
}
