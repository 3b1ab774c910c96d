package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
)

// RequestLogger writes one access line per request through the
// application logger.  Server errors log at error, client errors at warn.
func RequestLogger(logger *log.Logger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			line := "%s %s %d %s ip=%s id=%s"
			args := []any{v.Method, v.URI, v.Status, v.Latency.Round(time.Microsecond), v.RemoteIP, v.RequestID}
			if v.Error != nil {
				line += " err=%v"
				args = append(args, v.Error)
			}
			switch {
			case v.Status >= 500:
				logger.Errorf(line, args...)
			case v.Status >= 400:
				logger.Warnf(line, args...)
			default:
				logger.Infof(line, args...)
			}
			return nil
		},
	})
}
