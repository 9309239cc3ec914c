package domain

import "time"

// ServiceCategory enumerates listing categories.
type ServiceCategory string

const (
	CategoryAcademicTutoring ServiceCategory = "Academic Tutoring"
	CategoryDesignMedia      ServiceCategory = "Design & Media"
	CategoryTechServices     ServiceCategory = "Tech Services"
	CategoryWritingContent   ServiceCategory = "Writing & Content"
	CategoryOtherSkills      ServiceCategory = "Other Skills"
)

// ServiceCategories lists every accepted category value.
var ServiceCategories = []ServiceCategory{
	CategoryAcademicTutoring,
	CategoryDesignMedia,
	CategoryTechServices,
	CategoryWritingContent,
	CategoryOtherSkills,
}

// ValidServiceCategory reports whether c is one of the accepted categories.
func ValidServiceCategory(c ServiceCategory) bool {
	for _, candidate := range ServiceCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ServiceStatus enumerates listing visibility states.
type ServiceStatus string

const (
	ServiceStatusActive  ServiceStatus = "active"
	ServiceStatusPaused  ServiceStatus = "paused"
	ServiceStatusSoldOut ServiceStatus = "sold_out"
)

// ValidServiceStatus reports whether s is a known listing status.
func ValidServiceStatus(s ServiceStatus) bool {
	return s == ServiceStatusActive || s == ServiceStatusPaused || s == ServiceStatusSoldOut
}

// Price and delivery bounds for listings.
const (
	MinServicePrice  = 100
	MaxServicePrice  = 10000
	MinDeliveryDays  = 1
	MaxDeliveryDays  = 30
	MaxTitleLen      = 100
	MaxDescriptionLen = 1000
)

// Service is a seller-owned marketplace offering.
type Service struct {
	ID            string
	SellerID      string
	Title         string
	Description   string
	Category      ServiceCategory
	Price         int64
	DeliveryDays  int
	Images        []string
	Status        ServiceStatus
	Tags          []string
	RequestCount  int
	AverageRating float64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
