package api

import (
	"github.com/desmin2102/HostelApp/pkg/internal/models"
	"github.com/gofiber/fiber/v2"
)

func MapAPIs(app *fiber.App, baseURL string) {
	api := app.Group(baseURL)
	{
		api.Get("/health", getHealth)

		api.Get("/cities", listCities)
		api.Get("/districts", listDistricts)
		api.Get("/wards", listWards)
		api.Get("/categories", listCategories)

		users := api.Group("/users").Name("Users API")
		{
			users.Get("/me", getUserinfo)
			users.Get("/me/following", listMyFollowing)
		}

		owners := api.Group("/owners/:ownerId").Name("Owners API")
		{
			owners.Get("/followers", listOwnerFollowers)
			owners.Post("/follow", followOwner)
			owners.Post("/unfollow", unfollowOwner)
		}

		rentals := api.Group("/rentals").Name("Rental Posts API")
		{
			rentals.Get("/", listRentalPosts)
			rentals.Get("/featured", listFeaturedRentalPosts)
			rentals.Get("/:id", getRentalPost)
			rentals.Get("/:id/images/:imageId", getRentalImage)
			rentals.Post("/", createRentalPost)
			rentals.Put("/:id", editRentalPost)
			rentals.Delete("/:id", deleteRentalPost)

			mapInteractions(rentals, models.TargetRental)
		}

		requests := api.Group("/requests").Name("Tenant Requests API")
		{
			requests.Get("/", listTenantRequests)
			requests.Get("/:id", getTenantRequest)
			requests.Post("/", createTenantRequest)
			requests.Put("/:id", editTenantRequest)
			requests.Delete("/:id", deleteTenantRequest)

			mapInteractions(requests, models.TargetRequest)
		}
	}
}

// mapInteractions mounts comments and likes under a listing group.
func mapInteractions(group fiber.Router, kind models.TargetKind) {
	group.Get("/:id/comments", listComments(kind))
	group.Post("/:id/comments", createComment(kind))
	group.Delete("/:id/comments/:commentId", deleteComment(kind))

	group.Get("/:id/likes", listLikes(kind))
	group.Post("/:id/likes", likeTarget(kind))
	group.Delete("/:id/likes", unlikeTarget(kind))
}
