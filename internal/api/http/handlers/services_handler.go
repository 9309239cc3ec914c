package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/campus-market/internal/api/dto"
	"github.com/spec-kit/campus-market/internal/auth"
	"github.com/spec-kit/campus-market/internal/domain"
	"github.com/spec-kit/campus-market/internal/service"
	appvalidator "github.com/spec-kit/campus-market/internal/validator"
	apperrors "github.com/spec-kit/campus-market/pkg/util"
)

// ServicesHandler manages listing and catalog endpoints.
type ServicesHandler struct {
	catalog  *service.CatalogService
	validate *appvalidator.Validator
}

// NewServicesHandler constructs handler.
func NewServicesHandler(catalog *service.CatalogService, validate *appvalidator.Validator) *ServicesHandler {
	return &ServicesHandler{catalog: catalog, validate: validate}
}

// Browse GET /services.
func (h *ServicesHandler) Browse(c *fiber.Ctx) error {
	query := service.CatalogQuery{
		SortBy:   c.Query("sort_by"),
		SortDesc: strings.EqualFold(c.Query("order", "desc"), "desc"),
		Page:     parseInt(c.Query("page"), 1),
		Limit:    parseInt(c.Query("limit"), 20),
	}
	if raw := c.Query("category"); raw != "" {
		category := domain.ServiceCategory(raw)
		if !domain.ValidServiceCategory(category) {
			return apperrors.NewValidationError("unknown category", map[string]any{"category": raw})
		}
		query.Category = &category
	}
	if raw := c.Query("min_price"); raw != "" {
		minPrice, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return apperrors.NewValidationError("min_price must be an integer", nil)
		}
		query.MinPrice = &minPrice
	}
	if raw := c.Query("max_price"); raw != "" {
		maxPrice, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return apperrors.NewValidationError("max_price must be an integer", nil)
		}
		query.MaxPrice = &maxPrice
	}
	if raw := strings.TrimSpace(c.Query("search")); raw != "" {
		query.SearchTerm = &raw
	}

	page, err := h.catalog.ListPublic(c.UserContext(), query)
	if err != nil {
		return err
	}

	services := make([]dto.ServiceResponse, 0, len(page.Services))
	for i := range page.Services {
		services = append(services, serviceResponse(&page.Services[i]))
	}
	return c.JSON(fiber.Map{"data": dto.CatalogResponse{
		Services: services,
		Total:    page.Total,
		Page:     page.Page,
		Pages:    page.Pages,
		Limit:    page.Limit,
	}})
}

// Get GET /services/:id.
func (h *ServicesHandler) Get(c *fiber.Ctx) error {
	svc, err := h.catalog.GetService(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": serviceResponse(svc)})
}

// Create POST /services.
func (h *ServicesHandler) Create(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateServiceRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.validate.Validate(req); err != nil {
		return err
	}

	svc, err := h.catalog.CreateService(c.UserContext(), user.ID, service.ServiceCreateInput{
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		Price:        req.Price,
		DeliveryDays: req.DeliveryDays,
		Images:       req.Images,
		Tags:         req.Tags,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": serviceResponse(svc)})
}

// Update PUT /services/:id.
func (h *ServicesHandler) Update(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateServiceRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.validate.Validate(req); err != nil {
		return err
	}

	svc, err := h.catalog.UpdateService(c.UserContext(), user.ID, c.Params("id"), service.ServiceUpdateInput{
		Title:        req.Title,
		Description:  req.Description,
		Price:        req.Price,
		DeliveryDays: req.DeliveryDays,
		Status:       req.Status,
		Tags:         req.Tags,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": serviceResponse(svc)})
}

// Delete DELETE /services/:id.
func (h *ServicesHandler) Delete(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.catalog.DeleteService(c.UserContext(), user.ID, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": true}})
}

// Mine GET /services/my-services.
func (h *ServicesHandler) Mine(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	services, err := h.catalog.MyServices(c.UserContext(), user.ID)
	if err != nil {
		return err
	}
	items := make([]dto.ServiceResponse, 0, len(services))
	for i := range services {
		items = append(items, serviceResponse(&services[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func serviceResponse(svc *domain.Service) dto.ServiceResponse {
	return dto.ServiceResponse{
		ID:            svc.ID,
		SellerID:      svc.SellerID,
		Title:         svc.Title,
		Description:   svc.Description,
		Category:      svc.Category,
		Price:         svc.Price,
		DeliveryDays:  svc.DeliveryDays,
		Images:        svc.Images,
		Status:        svc.Status,
		Tags:          svc.Tags,
		RequestCount:  svc.RequestCount,
		AverageRating: svc.AverageRating,
		CreatedAt:     svc.CreatedAt,
		UpdatedAt:     svc.UpdatedAt,
	}
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
