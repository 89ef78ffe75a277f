package api

import (
	"github.com/desmin2102/HostelApp/pkg/internal/http/exts"
	"github.com/desmin2102/HostelApp/pkg/internal/models"
	"github.com/desmin2102/HostelApp/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
)

func targetOf(c *fiber.Ctx, kind models.TargetKind) (models.TargetRef, error) {
	id, err := exts.ParamsID(c, "id")
	if err != nil {
		return models.TargetRef{}, err
	}
	return models.TargetRef{Kind: kind, ID: id}, nil
}

func listComments(kind models.TargetKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		target, err := targetOf(c, kind)
		if err != nil {
			return err
		}
		if err := services.EnsureTarget(target, exts.GetUserPtr(c)); err != nil {
			return err
		}

		items, count, err := services.ListComments(target, c.QueryInt("take", 20), c.QueryInt("offset", 0))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"count": count,
			"data":  items,
		})
	}
}

func createComment(kind models.TargetKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := exts.EnsureAuthenticated(c); err != nil {
			return err
		}
		user, _ := exts.GetUser(c)

		target, err := targetOf(c, kind)
		if err != nil {
			return err
		}

		var data struct {
			Content  string `json:"content" validate:"required,max=4096"`
			ParentID *uint  `json:"parent_id"`
		}
		if err := exts.BindAndValidate(c, &data); err != nil {
			return err
		}

		item, err := services.NewComment(user, target, data.Content, data.ParentID)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(item)
	}
}

func deleteComment(kind models.TargetKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := exts.EnsureAuthenticated(c); err != nil {
			return err
		}
		user, _ := exts.GetUser(c)

		target, err := targetOf(c, kind)
		if err != nil {
			return err
		}
		commentID, err := exts.ParamsID(c, "commentId")
		if err != nil {
			return err
		}

		if err := services.DeleteComment(user, target, commentID); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusOK)
	}
}

func listLikes(kind models.TargetKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		target, err := targetOf(c, kind)
		if err != nil {
			return err
		}
		if err := services.EnsureTarget(target, exts.GetUserPtr(c)); err != nil {
			return err
		}

		items, err := services.ListLikes(target)
		if err != nil {
			return err
		}

		liked := false
		if user, ok := exts.GetUser(c); ok {
			if liked, err = services.HasLiked(user, target); err != nil {
				return err
			}
		}

		return c.JSON(fiber.Map{
			"count": len(items),
			"liked": liked,
			"data":  items,
		})
	}
}

func likeTarget(kind models.TargetKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := exts.EnsureAuthenticated(c); err != nil {
			return err
		}
		user, _ := exts.GetUser(c)

		target, err := targetOf(c, kind)
		if err != nil {
			return err
		}

		item, err := services.LikeTarget(user, target)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(item)
	}
}

func unlikeTarget(kind models.TargetKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := exts.EnsureAuthenticated(c); err != nil {
			return err
		}
		user, _ := exts.GetUser(c)

		target, err := targetOf(c, kind)
		if err != nil {
			return err
		}

		if err := services.UnlikeTarget(user, target); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusOK)
	}
}
