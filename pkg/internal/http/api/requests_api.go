package api

import (
	"github.com/desmin2102/HostelApp/pkg/internal/database"
	"github.com/desmin2102/HostelApp/pkg/internal/http/exts"
	"github.com/desmin2102/HostelApp/pkg/internal/models"
	"github.com/desmin2102/HostelApp/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

func listTenantRequests(c *fiber.Ctx) error {
	take := c.QueryInt("take", 20)
	offset := c.QueryInt("offset", 0)

	values, err := exts.QueryValues(c)
	if err != nil {
		return err
	}
	criteria, err := services.ParseListingCriteria(values)
	if err != nil {
		return err
	}

	tx := services.FilterListings(database.C, services.Requests, criteria)
	tx = services.FilterRequestVisibility(tx, exts.GetUserPtr(c))
	if tenant := c.QueryInt("tenant", 0); tenant > 0 {
		tx = services.FilterRequestWithTenant(tx, uint(tenant))
	}

	count, err := services.CountListings(tx, services.Requests)
	if err != nil {
		return err
	}
	items, err := services.ListTenantRequests(tx, take, offset)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"count": count,
		"data":  items,
	})
}

func getTenantRequest(c *fiber.Ctx) error {
	id, err := exts.ParamsID(c, "id")
	if err != nil {
		return err
	}

	tx := services.FilterRequestVisibility(database.C, exts.GetUserPtr(c))
	item, err := services.GetTenantRequest(tx, id)
	if err != nil {
		return err
	}
	return c.JSON(item)
}

type tenantRequestRequest struct {
	Title       *string  `json:"title" validate:"omitempty,max=255"`
	Description *string  `json:"description"`
	CategoryID  *uint    `json:"category_id"`
	Area        *float64 `json:"area" validate:"omitempty,gte=0"`
	MinPrice    *int     `json:"min_price" validate:"omitempty,gte=0"`
	MaxPrice    *int     `json:"max_price" validate:"omitempty,gte=0"`
	CityID      *uint    `json:"city_id"`
	Districts   []uint   `json:"districts"`
	Wards       []uint   `json:"wards"`
	Tags        []string `json:"tags"`
}

func createTenantRequest(c *fiber.Ctx) error {
	if err := exts.EnsureAuthenticated(c); err != nil {
		return err
	}
	user, _ := exts.GetUser(c)

	var data tenantRequestRequest
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}
	if data.CityID == nil {
		return services.NewValidationError("city_id", "city_id is required")
	}

	item := models.TenantRequest{
		Title:       lo.FromPtr(data.Title),
		Description: lo.FromPtr(data.Description),
		CategoryID:  data.CategoryID,
		Area:        lo.FromPtr(data.Area),
		MinPrice:    data.MinPrice,
		MaxPrice:    data.MaxPrice,
		CityID:      *data.CityID,
	}

	item, err := services.NewTenantRequest(user, item, data.Districts, data.Wards, data.Tags)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

func editTenantRequest(c *fiber.Ctx) error {
	if err := exts.EnsureAuthenticated(c); err != nil {
		return err
	}
	user, _ := exts.GetUser(c)

	id, err := exts.ParamsID(c, "id")
	if err != nil {
		return err
	}

	var data tenantRequestRequest
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	item, err := services.GetTenantRequest(database.C, id)
	if err != nil {
		return err
	}

	item, err = services.EditTenantRequest(user, item, services.TenantRequestPatch{
		Title:       data.Title,
		Description: data.Description,
		CategoryID:  data.CategoryID,
		Area:        data.Area,
		MinPrice:    data.MinPrice,
		MaxPrice:    data.MaxPrice,
		CityID:      data.CityID,
		Districts:   data.Districts,
		Wards:       data.Wards,
		Tags:        data.Tags,
	})
	if err != nil {
		return err
	}
	return c.JSON(item)
}

func deleteTenantRequest(c *fiber.Ctx) error {
	if err := exts.EnsureAuthenticated(c); err != nil {
		return err
	}
	user, _ := exts.GetUser(c)

	id, err := exts.ParamsID(c, "id")
	if err != nil {
		return err
	}

	item, err := services.GetTenantRequest(database.C, id)
	if err != nil {
		return err
	}
	if err := services.DeleteTenantRequest(user, item); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusOK)
}
