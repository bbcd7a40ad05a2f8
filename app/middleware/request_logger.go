package middleware

import (
	"time"

	"github.com/amirphl/debt-collection-crm/logger"
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RequestLogger attaches a request-scoped zap logger and writes one access line per request
func RequestLogger(base *zap.Logger) fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		requestID := c.Get("X-Request-ID")
		if requestID == "" {
			requestID = string(c.Response().Header.Peek("X-Request-ID"))
		}

		reqLog := base.With(zap.String("request_id", requestID))
		c.SetContext(logger.WithContext(c.Context(), reqLog))

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		level := zapcore.InfoLevel
		switch {
		case status >= 500:
			level = zapcore.ErrorLevel
		case status >= 400:
			level = zapcore.WarnLevel
		}

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.IP()),
		}
		if userID, ok := GetUserIDFromContext(c); ok {
			fields = append(fields, zap.Uint("user_id", userID))
		}
		if err != nil {
			fields = append(fields, zap.Error(err))
		}
		reqLog.Log(level, "http_request", fields...)

		return err
	}
}
