package dto

import (
	"time"

	"github.com/spec-kit/campus-market/internal/domain"
)

// CreateServiceRequest payload.
type CreateServiceRequest struct {
	Title        string                 `json:"title" validate:"required,min=5,max=100"`
	Description  string                 `json:"description" validate:"required,min=10,max=1000"`
	Category     domain.ServiceCategory `json:"category" validate:"required,service_category"`
	Price        int64                  `json:"price" validate:"required,min=100,max=10000"`
	DeliveryDays int                    `json:"delivery_days" validate:"required,min=1,max=30"`
	Images       []string               `json:"images" validate:"omitempty,max=5,dive,max=500"`
	Tags         []string               `json:"tags" validate:"omitempty,max=10,dive,min=1,max=30"`
}

// UpdateServiceRequest carries a partial listing update.
type UpdateServiceRequest struct {
	Title        *string               `json:"title" validate:"omitempty,min=5,max=100"`
	Description  *string               `json:"description" validate:"omitempty,min=10,max=1000"`
	Price        *int64                `json:"price" validate:"omitempty,min=100,max=10000"`
	DeliveryDays *int                  `json:"delivery_days" validate:"omitempty,min=1,max=30"`
	Status       *domain.ServiceStatus `json:"status" validate:"omitempty,oneof=active paused sold_out"`
	Tags         []string              `json:"tags" validate:"omitempty,max=10,dive,min=1,max=30"`
}

// ServiceResponse is the listing representation.
type ServiceResponse struct {
	ID            string                 `json:"id"`
	SellerID      string                 `json:"seller_id"`
	Title         string                 `json:"title"`
	Description   string                 `json:"description"`
	Category      domain.ServiceCategory `json:"category"`
	Price         int64                  `json:"price"`
	DeliveryDays  int                    `json:"delivery_days"`
	Images        []string               `json:"images"`
	Status        domain.ServiceStatus   `json:"status"`
	Tags          []string               `json:"tags"`
	RequestCount  int                    `json:"request_count"`
	AverageRating float64                `json:"average_rating"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

// CatalogResponse is one page of the public catalog.
type CatalogResponse struct {
	Services []ServiceResponse `json:"services"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	Pages    int               `json:"pages"`
	Limit    int               `json:"limit"`
}
