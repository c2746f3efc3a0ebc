// Package httpx holds the fiber plumbing shared by every API package.
package httpx

import (
	"errors"

	"github.com/Abraxas-365/hirekit/pkg/errx"
	"github.com/Abraxas-365/hirekit/pkg/logx"
	"github.com/gofiber/fiber/v2"
)

// ErrorHandler converts returned errors into the standard JSON envelope
func ErrorHandler(c *fiber.Ctx, err error) error {
	// Fiber errors (unknown route, 429 from the limiter, body too large)
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{
			"error": fe.Message,
			"code":  fe.Code,
		})
	}

	if e, ok := errx.As(err); ok {
		if e.HTTPStatus >= fiber.StatusInternalServerError {
			logx.With("code", e.Code, "path", c.Path()).Error("request failed", "error", e.Error())
		}
		return c.Status(e.HTTPStatus).JSON(e.ToHTTPResponse())
	}

	logx.Errorf("Internal Server Error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":   "Internal Server Error",
		"type":    errx.TypeInternal,
		"code":    "INTERNAL_ERROR",
		"message": "An unexpected error occurred",
	})
}
