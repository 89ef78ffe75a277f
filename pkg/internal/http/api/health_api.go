package api

import (
	"github.com/desmin2102/HostelApp/pkg/internal/database"
	"github.com/gofiber/fiber/v2"
)

func getHealth(c *fiber.Ctx) error {
	raw, err := database.C.DB()
	if err == nil {
		err = raw.PingContext(c.UserContext())
	}
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":   "unavailable",
			"database": err.Error(),
		})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
