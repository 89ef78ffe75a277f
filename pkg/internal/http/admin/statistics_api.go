package admin

import (
	"fmt"

	"github.com/desmin2102/HostelApp/pkg/internal/models"
	"github.com/desmin2102/HostelApp/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func countAccounts(c *fiber.Ctx, role string) error {
	var year *int
	if raw := c.QueryInt("year", 0); raw > 0 {
		year = lo.ToPtr(raw)
	}
	if len(role) > 0 && !services.IsKnownRole(role) {
		return services.NewValidationError("role", fmt.Sprintf("unknown role %q", role))
	}

	period := services.NormalizePeriod(c.Query("period"))
	out, err := services.CountAccountsByPeriod(period, year, role)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"period": period,
		"data":   out,
	})
}

func adminCountAccounts(c *fiber.Ctx) error {
	return countAccounts(c, c.Query("role"))
}

func adminCountOwners(c *fiber.Ctx) error {
	return countAccounts(c, models.AccountRoleOwner)
}

func readReportCity(c *fiber.Ctx) (models.City, error) {
	id := c.QueryInt("city", 0)
	if id <= 0 {
		return models.City{}, services.NewValidationError("city", "city is required")
	}
	return services.GetCity(uint(id))
}

func adminAveragePrices(c *fiber.Ctx) error {
	city, err := readReportCity(c)
	if err != nil {
		return err
	}

	out, err := services.AveragePriceByDistrict(city.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"city": city,
		"data": out,
	})
}

func adminExportAveragePrices(c *fiber.Ctx) error {
	city, err := readReportCity(c)
	if err != nil {
		return err
	}

	out, err := services.AveragePriceByDistrict(city.ID)
	if err != nil {
		return err
	}
	buf, err := services.ExportAveragePrices(city, out)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="average-prices-%d.xlsx"`, city.ID))
	return c.Send(buf.Bytes())
}
