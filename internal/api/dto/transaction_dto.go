package dto

import (
	"time"

	"github.com/spec-kit/campus-market/internal/domain"
)

// RequestServiceRequest opens a transaction against a listing.
type RequestServiceRequest struct {
	ServiceID    string     `json:"service_id" validate:"required,uuid"`
	Requirements string     `json:"requirements" validate:"required,min=10,max=1000"`
	Deadline     *time.Time `json:"deadline"`
}

// CompleteWorkRequest carries the seller's delivery.
type CompleteWorkRequest struct {
	Deliverables []string `json:"deliverables" validate:"omitempty,max=10,dive,max=500"`
}

// RateTransactionRequest payload.
type RateTransactionRequest struct {
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
	Review string `json:"review" validate:"omitempty,max=500"`
}

// PaymentLegResponse is one escrow installment.
type PaymentLegResponse struct {
	Paid   bool       `json:"paid"`
	Amount int64      `json:"amount"`
	PaidAt *time.Time `json:"paid_at"`
}

// PaymentResponse is the two-phase payment record.
type PaymentResponse struct {
	Advance PaymentLegResponse `json:"advance"`
	Final   PaymentLegResponse `json:"final"`
}

// WorkDetailsResponse mirrors the requirements/delivery record.
type WorkDetailsResponse struct {
	Requirements string     `json:"requirements"`
	Deliverables []string   `json:"deliverables"`
	Deadline     *time.Time `json:"deadline"`
	SubmittedAt  *time.Time `json:"submitted_at"`
}

// RatingEntryResponse is a single counterparty rating.
type RatingEntryResponse struct {
	Rating  int       `json:"rating"`
	Review  string    `json:"review,omitempty"`
	RatedAt time.Time `json:"rated_at"`
}

// TransactionResponse is the full escrow representation.
type TransactionResponse struct {
	ID           string                   `json:"id"`
	BuyerID      string                   `json:"buyer_id"`
	SellerID     string                   `json:"seller_id"`
	ServiceID    string                   `json:"service_id"`
	Amount       int64                    `json:"amount"`
	Status       domain.TransactionStatus `json:"status"`
	Payment      PaymentResponse          `json:"payment"`
	WorkDetails  WorkDetailsResponse      `json:"work_details"`
	BuyerRating  *RatingEntryResponse     `json:"buyer_rating,omitempty"`
	SellerRating *RatingEntryResponse     `json:"seller_rating,omitempty"`
	CompletedAt  *time.Time               `json:"completed_at"`
	CreatedAt    time.Time                `json:"created_at"`
	UpdatedAt    time.Time                `json:"updated_at"`
}
