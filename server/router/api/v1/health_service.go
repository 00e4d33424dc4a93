package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/uihint/internal/profile"
)

type HealthService struct {
	Profile *profile.Profile
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Mode    string `json:"mode"`
}

// Health handles GET /healthz.
func (s *HealthService) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{
		Status:  "ok",
		Version: s.Profile.Version,
		Mode:    s.Profile.Mode,
	})
}
