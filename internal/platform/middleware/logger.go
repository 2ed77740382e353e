package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/scis/scis/internal/platform/auth"
)

// Logger emits one structured line per request. hospital_id and role come
// from the authenticated claims; the per-hospital dashboards aggregate on
// them.
func Logger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			req := c.Request()
			evt := logger.Info()
			if err != nil {
				evt = logger.Error().Err(err)
			}

			rid, _ := c.Get("request_id").(string)
			evt = evt.
				Str("request_id", rid).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", c.Response().Status).
				Int64("bytes_out", c.Response().Size).
				Dur("latency", time.Since(start)).
				Str("remote_ip", c.RealIP())
			if hid, ok := c.Get("hospital_id").(string); ok && hid != "" {
				evt = evt.Str("hospital_id", hid)
			}
			if role := auth.RoleFromContext(req.Context()); role != "" {
				evt = evt.Str("role", role)
			}
			evt.Msg("request")

			return err
		}
	}
}
