package middleware

import (
	"time"

	"wardrobe/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
)

// RequestLogger puts a request-scoped logger into the user context and logs
// each request once it is done. It must run after the requestid middleware.
func RequestLogger(base *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		requestID, _ := c.Locals(requestid.ConfigDefault.ContextKey).(string)
		ctx := logger.NewRequestIDContext(c.UserContext(), requestID)

		log := base.With(
			zap.String("path", c.Path()),
			zap.String("method", c.Method()),
			zap.String("ip", c.IP()),
		)
		ctx = logger.NewContext(ctx, log)
		c.SetUserContext(ctx)

		err := c.Next()
		if err != nil {
			// Let the error handler write the response so the status is known.
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		fields := []zap.Field{
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)),
		}
		if err != nil {
			log.Warn(ctx, "request failed", append(fields, zap.Error(err))...)
			return nil
		}
		log.Info(ctx, "request completed", fields...)
		return nil
	}
}
