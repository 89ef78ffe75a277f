package api

import (
	"github.com/desmin2102/HostelApp/pkg/internal/http/exts"
	"github.com/desmin2102/HostelApp/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
)

func getUserinfo(c *fiber.Ctx) error {
	if err := exts.EnsureAuthenticated(c); err != nil {
		return err
	}
	user, _ := exts.GetUser(c)

	return c.JSON(user)
}

func listMyFollowing(c *fiber.Ctx) error {
	if err := exts.EnsureAuthenticated(c); err != nil {
		return err
	}
	user, _ := exts.GetUser(c)

	owners, err := services.ListFollowing(user.ID)
	if err != nil {
		return err
	}
	return c.JSON(owners)
}

func listOwnerFollowers(c *fiber.Ctx) error {
	ownerID, err := exts.ParamsID(c, "ownerId")
	if err != nil {
		return err
	}
	if _, err := services.GetAccountWithID(ownerID); err != nil {
		return err
	}

	followers, err := services.ListFollowers(ownerID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"count": len(followers),
		"data":  followers,
	})
}

func followOwner(c *fiber.Ctx) error {
	if err := exts.EnsureAuthenticated(c); err != nil {
		return err
	}
	user, _ := exts.GetUser(c)

	ownerID, err := exts.ParamsID(c, "ownerId")
	if err != nil {
		return err
	}

	follow, err := services.FollowOwner(user, ownerID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(follow)
}

func unfollowOwner(c *fiber.Ctx) error {
	if err := exts.EnsureAuthenticated(c); err != nil {
		return err
	}
	user, _ := exts.GetUser(c)

	ownerID, err := exts.ParamsID(c, "ownerId")
	if err != nil {
		return err
	}

	if err := services.UnfollowOwner(user, ownerID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusOK)
}
