package admin

import (
	"github.com/desmin2102/HostelApp/pkg/internal/http/exts"
	"github.com/gofiber/fiber/v2"
)

func MapControllers(app *fiber.App, baseURL string) {
	admin := app.Group(baseURL, exts.StaffOnly)
	{
		admin.Post("/rentals/:id/approve", adminApproveRentalPost)
		admin.Post("/rentals/:id/reject", adminRejectRentalPost)

		admin.Post("/cities", adminCreateCity)
		admin.Post("/districts", adminCreateDistrict)
		admin.Post("/wards", adminCreateWard)
		admin.Post("/categories", adminCreateCategory)

		admin.Get("/statistics/accounts", adminCountAccounts)
		admin.Get("/statistics/owners", adminCountOwners)
		admin.Get("/statistics/prices", adminAveragePrices)
		admin.Get("/statistics/prices/export", adminExportAveragePrices)
	}
}
