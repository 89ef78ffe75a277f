package admin

import (
	"github.com/desmin2102/HostelApp/pkg/internal/database"
	"github.com/desmin2102/HostelApp/pkg/internal/http/exts"
	"github.com/desmin2102/HostelApp/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
)

func adminApproveRentalPost(c *fiber.Ctx) error {
	user, _ := exts.GetUser(c)

	id, err := exts.ParamsID(c, "id")
	if err != nil {
		return err
	}
	item, err := services.GetRentalPost(database.C, id)
	if err != nil {
		return err
	}

	if item, err = services.ApproveRentalPost(c.UserContext(), user, item); err != nil {
		return err
	}
	return c.JSON(item)
}

func adminRejectRentalPost(c *fiber.Ctx) error {
	user, _ := exts.GetUser(c)

	id, err := exts.ParamsID(c, "id")
	if err != nil {
		return err
	}
	item, err := services.GetRentalPost(database.C, id)
	if err != nil {
		return err
	}

	if item, err = services.RejectRentalPost(user, item); err != nil {
		return err
	}
	return c.JSON(item)
}
