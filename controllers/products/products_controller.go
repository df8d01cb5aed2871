package products

import (
	"strconv"
	"strings"

	"storefront-api/apperr"
	"storefront-api/controllers/request"
	"storefront-api/responses"
	"storefront-api/stores"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/shopspring/decimal"
)

type Controller struct {
	svc     *Service
	history *stores.History
}

func NewController(svc *Service, history *stores.History) *Controller {
	return &Controller{svc: svc, history: history}
}

func list(value string) []string {
	if value == "" {
		return nil
	}
	return strings.Split(value, ",")
}

func priceParam(c *fiber.Ctx, name string) (*decimal.Decimal, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		return nil, apperr.Validation("%s must be a non-negative number", name)
	}
	return &d, nil
}

// GetAllProducts is the storefront listing with filters, sorting and paging.
func (ctl *Controller) GetAllProducts(c *fiber.Ctx) error {
	page, limit := request.Page(c)
	minPrice, err := priceParam(c, "minPrice")
	if err != nil {
		return responses.Error(c, err)
	}
	maxPrice, err := priceParam(c, "maxPrice")
	if err != nil {
		return responses.Error(c, err)
	}

	result, err := ctl.svc.Search(c.UserContext(), SearchQuery{
		Query:      strings.TrimSpace(c.Query("name")),
		Category:   c.Query("category"),
		Brands:     list(c.Query("brands")),
		Gender:     c.Query("gender"),
		DressStyle: c.Query("dressStyle"),
		Colors:     list(c.Query("colors")),
		Sizes:      list(c.Query("sizes")),
		MinPrice:   minPrice,
		MaxPrice:   maxPrice,
		Sort:       c.Query("sort", SortNewest),
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		return responses.Error(c, err)
	}

	status := "success"
	if len(result.Products) == 0 {
		status = "no more products"
	}
	return responses.OK(c, "Fetched Products", &fiber.Map{
		"status":        status,
		"currentPage":   page,
		"totalPages":    request.TotalPages(result.Total, limit),
		"totalProducts": result.Total,
		"products":      result.Products,
	})
}

func (ctl *Controller) GetFilters(c *fiber.Ctx) error {
	facets, err := ctl.svc.Facets(c.UserContext())
	if err != nil {
		return responses.Error(c, err)
	}
	return responses.OK(c, "Filters fetched successfully", &fiber.Map{"filters": facets})
}

func (ctl *Controller) GetPopularProducts(c *fiber.Ctx) error {
	topRated, newArrivals, err := ctl.svc.Highlights(c.UserContext(), c.Query("brand"), 10)
	if err != nil {
		return responses.Error(c, err)
	}
	return responses.OK(c, "Successfully fetched data", &fiber.Map{
		"popular":     topRated,
		"newArrivals": newArrivals,
	})
}

// FetchProductDetails serves the product page and records the view in the browsing history.
func (ctl *Controller) FetchProductDetails(c *fiber.Ctx) error {
	product, err := ctl.svc.GetBySlug(c.UserContext(), c.Params("slug"), false)
	if err != nil {
		return responses.Error(c, err)
	}
	if clientID := request.ClientID(c); clientID != "" && ctl.history != nil {
		if _, err := ctl.history.Record(c.UserContext(), clientID, product.ID); err != nil {
			log.Warnw("failed to record browsing history", "productId", product.ID, "error", err)
		}
	}
	return responses.OK(c, "Product fetched successfully", &fiber.Map{
		"status":  "success",
		"product": product,
	})
}

// Only for admin

func (ctl *Controller) AdminGetProducts(c *fiber.Ctx) error {
	page, limit := request.Page(c)
	q := AdminQuery{Query: strings.TrimSpace(c.Query("q")), Page: page, Limit: limit}
	if raw := c.Query("archived"); raw != "" {
		archived, err := strconv.ParseBool(raw)
		if err != nil {
			return responses.BadRequest(c, "archived must be true or false")
		}
		q.Archived = &archived
	}

	products, total, err := ctl.svc.AdminList(c.UserContext(), q)
	if err != nil {
		return responses.Error(c, err)
	}
	return responses.OK(c, "Fetched Products", &fiber.Map{
		"currentPage":   page,
		"totalPages":    request.TotalPages(total, limit),
		"totalProducts": total,
		"products":      products,
	})
}

func (ctl *Controller) AdminGetProduct(c *fiber.Ctx) error {
	id, err := request.ID(c, "id")
	if err != nil {
		return responses.Error(c, err)
	}
	product, err := ctl.svc.GetProduct(c.UserContext(), id)
	if err != nil {
		return responses.Error(c, err)
	}
	return responses.OK(c, "Product fetched successfully", &fiber.Map{"product": product})
}

func (ctl *Controller) AddProduct(c *fiber.Ctx) error {
	var reqBody ProductInput
	if err := c.BodyParser(&reqBody); err != nil {
		return responses.BadRequest(c, "Error parsing product data")
	}
	product, err := ctl.svc.CreateProduct(c.UserContext(), reqBody)
	if err != nil {
		return responses.Error(c, err)
	}
	return responses.Created(c, "Product added successfully", &fiber.Map{"product": product})
}

func (ctl *Controller) EditProduct(c *fiber.Ctx) error {
	id, err := request.ID(c, "id")
	if err != nil {
		return responses.Error(c, err)
	}
	var reqBody ProductInput
	if err := c.BodyParser(&reqBody); err != nil {
		return responses.BadRequest(c, "Error parsing product data")
	}
	product, err := ctl.svc.EditProduct(c.UserContext(), id, reqBody)
	if err != nil {
		return responses.Error(c, err)
	}
	return responses.OK(c, "Product updated successfully", &fiber.Map{"product": product})
}

func (ctl *Controller) setArchived(c *fiber.Ctx, archived bool, message string) error {
	id, err := request.ID(c, "id")
	if err != nil {
		return responses.Error(c, err)
	}
	if err := ctl.svc.SetArchived(c.UserContext(), id, archived); err != nil {
		return responses.Error(c, err)
	}
	return responses.OK(c, message, nil)
}

func (ctl *Controller) ArchiveProduct(c *fiber.Ctx) error {
	return ctl.setArchived(c, true, "Product archived")
}

func (ctl *Controller) UnarchiveProduct(c *fiber.Ctx) error {
	return ctl.setArchived(c, false, "Product restored")
}

func (ctl *Controller) DeleteProduct(c *fiber.Ctx) error {
	id, err := request.ID(c, "id")
	if err != nil {
		return responses.Error(c, err)
	}
	if err := ctl.svc.DeleteProduct(c.UserContext(), id); err != nil {
		return responses.Error(c, err)
	}
	return responses.OK(c, "Product deleted successfully", nil)
}

func (ctl *Controller) UploadImage(c *fiber.Ctx) error {
	header, err := c.FormFile("image")
	if err != nil {
		return responses.BadRequest(c, "image file is required")
	}
	file, err := header.Open()
	if err != nil {
		return responses.Error(c, err)
	}
	defer file.Close()

	img, err := ctl.svc.UploadImage(c.UserContext(), header.Filename, header.Header.Get("Content-Type"), file, header.Size)
	if err != nil {
		return responses.Error(c, err)
	}
	return responses.Created(c, "Image uploaded successfully", &fiber.Map{"image": img})
}

func (ctl *Controller) DiscardImage(c *fiber.Ctx) error {
	var reqBody struct {
		PublicID string `json:"publicId"`
	}
	if err := c.BodyParser(&reqBody); err != nil {
		return responses.BadRequest(c, "Invalid request format")
	}
	if err := ctl.svc.DiscardImage(c.UserContext(), strings.TrimSpace(reqBody.PublicID)); err != nil {
		return responses.Error(c, err)
	}
	return responses.OK(c, "Image deleted successfully", nil)
}
