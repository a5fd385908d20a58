package middleware

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CORSConfig lists what cross-origin callers may do. An empty
// AllowedOrigins, or one containing "*", admits every origin.
type CORSConfig struct {
	AllowedOrigins   []string
	AllowCredentials bool
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	// MaxAge is the preflight cache lifetime in seconds.
	MaxAge int
}

func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods: []string{
			fiber.MethodGet, fiber.MethodPost, fiber.MethodPatch, fiber.MethodDelete, fiber.MethodOptions,
		},
		AllowedHeaders: []string{
			fiber.HeaderOrigin, fiber.HeaderContentType, fiber.HeaderAccept, fiber.HeaderAuthorization, fiber.HeaderXRequestedWith,
		},
		ExposedHeaders: []string{fiber.HeaderContentLength, fiber.HeaderXRequestID},
		MaxAge:         3600,
	}
}

// CORSFromOrigins is the default policy restricted to the given origins.
func CORSFromOrigins(origins []string) CORSConfig {
	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = origins
	return cfg
}

// CORS answers preflight requests itself and decorates every other
// response with the allow headers for admitted origins.
func CORS(config ...CORSConfig) fiber.Handler {
	cfg := DefaultCORSConfig()
	if len(config) > 0 {
		cfg = config[0]
	}

	anyOrigin := len(cfg.AllowedOrigins) == 0
	allowed := make(map[string]bool, len(cfg.AllowedOrigins))
	for _, origin := range cfg.AllowedOrigins {
		if origin == "*" {
			anyOrigin = true
		}
		allowed[strings.TrimRight(origin, "/")] = true
	}

	preflight := map[string]string{
		fiber.HeaderAccessControlAllowMethods: strings.Join(cfg.AllowedMethods, ","),
		fiber.HeaderAccessControlAllowHeaders: strings.Join(cfg.AllowedHeaders, ","),
		fiber.HeaderAccessControlMaxAge:       strconv.Itoa(cfg.MaxAge),
	}
	exposed := strings.Join(cfg.ExposedHeaders, ",")

	return func(c *fiber.Ctx) error {
		origin := c.Get(fiber.HeaderOrigin)

		switch {
		case anyOrigin:
			c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
		case allowed[origin]:
			c.Set(fiber.HeaderAccessControlAllowOrigin, origin)
			c.Vary(fiber.HeaderOrigin)
		}

		if cfg.AllowCredentials && !anyOrigin {
			c.Set(fiber.HeaderAccessControlAllowCredentials, "true")
		}
		if exposed != "" {
			c.Set(fiber.HeaderAccessControlExposeHeaders, exposed)
		}

		if c.Method() != fiber.MethodOptions {
			return c.Next()
		}
		for k, v := range preflight {
			c.Set(k, v)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
