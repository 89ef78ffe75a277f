package api

import (
	"errors"
	"io"
	"mime/multipart"
	"strings"

	"github.com/desmin2102/HostelApp/pkg/internal/database"
	"github.com/desmin2102/HostelApp/pkg/internal/http/exts"
	"github.com/desmin2102/HostelApp/pkg/internal/models"
	"github.com/desmin2102/HostelApp/pkg/internal/services"
	"github.com/desmin2102/HostelApp/pkg/internal/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

func listRentalPosts(c *fiber.Ctx) error {
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

	var approved *bool
	if raw := c.Query("approved"); len(raw) > 0 {
		approved = lo.ToPtr(c.QueryBool("approved"))
	}

	tx := services.FilterListings(database.C, services.Rentals, criteria)
	tx = services.FilterRentalVisibility(tx, exts.GetUserPtr(c), approved)
	if owner := c.QueryInt("owner", 0); owner > 0 {
		tx = services.FilterRentalWithOwner(tx, uint(owner))
	}

	count, err := services.CountListings(tx, services.Rentals)
	if err != nil {
		return err
	}
	items, err := services.ListRentalPosts(tx, take, offset)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"count": count,
		"data":  items,
	})
}

func listFeaturedRentalPosts(c *fiber.Ctx) error {
	items, err := services.ListFeaturedRentals(c.QueryInt("take", 10))
	if err != nil {
		return err
	}
	return c.JSON(items)
}

func getRentalPost(c *fiber.Ctx) error {
	id, err := exts.ParamsID(c, "id")
	if err != nil {
		return err
	}

	item, err := services.GetVisibleRentalPost(id, exts.GetUserPtr(c))
	if err != nil {
		return err
	}
	return c.JSON(item)
}

func getRentalImage(c *fiber.Ctx) error {
	id, err := exts.ParamsID(c, "id")
	if err != nil {
		return err
	}
	imageID, err := exts.ParamsID(c, "imageId")
	if err != nil {
		return err
	}

	if _, err := services.GetVisibleRentalPost(id, exts.GetUserPtr(c)); err != nil {
		return err
	}
	image, err := services.GetRentalImage(id, imageID)
	if err != nil {
		return err
	}
	if services.Images == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "image store is not configured")
	}

	reader, err := services.Images.Open(c.UserContext(), image.FileID)
	if errors.Is(err, storage.ErrBlobNotFound) {
		return services.NewNotFoundError("image")
	} else if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, image.ContentType)
	c.Set(fiber.HeaderCacheControl, "public, max-age=86400")
	return c.SendStream(reader, int(image.Size))
}

type rentalPostRequest struct {
	Title       *string  `json:"title" form:"title" validate:"omitempty,max=255"`
	Description *string  `json:"description" form:"description"`
	CategoryID  *uint    `json:"category_id" form:"category_id"`
	Area        *float64 `json:"area" form:"area" validate:"omitempty,gte=0"`
	Price       *int     `json:"price" form:"price" validate:"omitempty,gt=0"`
	Tags        []string `json:"tags" form:"tags"`
	Address     *string  `json:"address" form:"address" validate:"omitempty,max=255"`
	CityID      *uint    `json:"city_id" form:"city_id"`
	DistrictID  *uint    `json:"district_id" form:"district_id"`
	WardID      *uint    `json:"ward_id" form:"ward_id"`
}

// tags may come as a JSON list, repeated form fields or one comma separated field.
func (v rentalPostRequest) tags() []string {
	if v.Tags == nil {
		return nil
	}
	if tags := services.ParseTags(strings.Join(v.Tags, ",")); len(tags) > 0 {
		return tags
	}
	return []string{}
}

func readUploads(c *fiber.Ctx) ([]services.ImageUpload, error) {
	if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		return nil, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return lo.Map(form.File["images"], func(header *multipart.FileHeader, _ int) services.ImageUpload {
		return services.ImageUpload{
			Filename:    header.Filename,
			ContentType: header.Header.Get(fiber.HeaderContentType),
			Size:        header.Size,
			Open: func() (io.ReadCloser, error) {
				return header.Open()
			},
		}
	}), nil
}

func createRentalPost(c *fiber.Ctx) error {
	if err := exts.EnsureAuthenticated(c); err != nil {
		return err
	}
	user, _ := exts.GetUser(c)

	var data rentalPostRequest
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}
	uploads, err := readUploads(c)
	if err != nil {
		return err
	}

	item := models.RentalPost{
		Title:       lo.FromPtr(data.Title),
		Description: lo.FromPtr(data.Description),
		CategoryID:  data.CategoryID,
		Area:        lo.FromPtr(data.Area),
		Price:       lo.FromPtr(data.Price),
		Address:     lo.FromPtr(data.Address),
		CityID:      lo.FromPtr(data.CityID),
		DistrictID:  lo.FromPtr(data.DistrictID),
		WardID:      lo.FromPtr(data.WardID),
	}

	item, err = services.NewRentalPost(c.UserContext(), user, item, data.tags(), uploads)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

func editRentalPost(c *fiber.Ctx) error {
	if err := exts.EnsureAuthenticated(c); err != nil {
		return err
	}
	user, _ := exts.GetUser(c)

	id, err := exts.ParamsID(c, "id")
	if err != nil {
		return err
	}

	var data rentalPostRequest
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}
	uploads, err := readUploads(c)
	if err != nil {
		return err
	}

	item, err := services.GetRentalPost(database.C, id)
	if err != nil {
		return err
	}

	item, err = services.EditRentalPost(c.UserContext(), user, item, services.RentalPostPatch{
		Title:       data.Title,
		Description: data.Description,
		CategoryID:  data.CategoryID,
		Area:        data.Area,
		Price:       data.Price,
		Tags:        data.tags(),
		Address:     data.Address,
		CityID:      data.CityID,
		DistrictID:  data.DistrictID,
		WardID:      data.WardID,
		Images:      uploads,
	})
	if err != nil {
		return err
	}
	return c.JSON(item)
}

func deleteRentalPost(c *fiber.Ctx) error {
	if err := exts.EnsureAuthenticated(c); err != nil {
		return err
	}
	user, _ := exts.GetUser(c)

	id, err := exts.ParamsID(c, "id")
	if err != nil {
		return err
	}

	item, err := services.GetRentalPost(database.C, id)
	if err != nil {
		return err
	}
	if err := services.DeleteRentalPost(c.UserContext(), user, item); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusOK)
}
