package server

import (
	_ "embed"

	"github.com/gofiber/fiber/v2"
)

//go:embed openapi.json
var openAPISpec []byte

// OpenAPISpec serves the API description consumed by the Swagger UI at
// /api/swagger.
func (s *Server) OpenAPISpec(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(openAPISpec)
}
