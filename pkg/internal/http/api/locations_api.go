package api

import (
	"github.com/desmin2102/HostelApp/pkg/internal/http/exts"
	"github.com/desmin2102/HostelApp/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
)

func listCities(c *fiber.Ctx) error {
	cities, err := services.ListCities()
	if err != nil {
		return err
	}
	return c.JSON(cities)
}

func listDistricts(c *fiber.Ctx) error {
	values, err := exts.QueryValues(c)
	if err != nil {
		return err
	}
	criteria, err := services.ParseListingCriteria(values)
	if err != nil {
		return err
	} else if criteria.City == nil {
		return services.NewValidationError("city", "city is required")
	}

	districts, err := services.ListDistricts(*criteria.City)
	if err != nil {
		return err
	}
	return c.JSON(districts)
}

func listWards(c *fiber.Ctx) error {
	values, err := exts.QueryValues(c)
	if err != nil {
		return err
	}
	criteria, err := services.ParseListingCriteria(values)
	if err != nil {
		return err
	} else if len(criteria.Districts) == 0 {
		return services.NewValidationError("district", "district is required")
	}

	wards, err := services.ListWards(criteria.Districts)
	if err != nil {
		return err
	}
	return c.JSON(wards)
}

func listCategories(c *fiber.Ctx) error {
	categories, err := services.ListCategory()
	if err != nil {
		return err
	}
	return c.JSON(categories)
}
