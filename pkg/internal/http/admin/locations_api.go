package admin

import (
	"github.com/desmin2102/HostelApp/pkg/internal/http/exts"
	"github.com/desmin2102/HostelApp/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
)

func adminCreateCity(c *fiber.Ctx) error {
	var data struct {
		Name string `json:"name" validate:"required,max=100"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	city, err := services.NewCity(data.Name)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(city)
}

func adminCreateDistrict(c *fiber.Ctx) error {
	var data struct {
		Name   string `json:"name" validate:"required,max=100"`
		CityID uint   `json:"city_id" validate:"required"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	district, err := services.NewDistrict(data.CityID, data.Name)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(district)
}

func adminCreateWard(c *fiber.Ctx) error {
	var data struct {
		Name       string `json:"name" validate:"required,max=100"`
		DistrictID uint   `json:"district_id" validate:"required"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	ward, err := services.NewWard(data.DistrictID, data.Name)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(ward)
}

func adminCreateCategory(c *fiber.Ctx) error {
	var data struct {
		Name        string `json:"name" validate:"required,max=100"`
		Description string `json:"description"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	category, err := services.NewCategory(data.Name, data.Description)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}
