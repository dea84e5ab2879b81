package models

import "time"

// ServiceCategories is the fixed set of marketplace categories.
var ServiceCategories = []string{
	"tutoring", "design", "development", "writing", "music", "fitness",
	"cooking", "repairs", "gardening", "photography", "language", "other",
}

// IsValidCategory reports whether c is one of ServiceCategories.
func IsValidCategory(c string) bool {
	for _, cat := range ServiceCategories {
		if cat == c {
			return true
		}
	}
	return false
}

// Service is a listing a member offers in exchange for another member's service.
type Service struct {
	ID             string   `bson:"id" json:"id"`
	OwnerID        string   `bson:"ownerId" json:"ownerId"`
	Title          string   `bson:"title" json:"title"`
	Description    string   `bson:"description" json:"description"`
	Category       string   `bson:"category" json:"category"`
	Tags           []string `bson:"tags" json:"tags"`
	EstimatedHours float64  `bson:"estimatedHours" json:"estimatedHours"`
	ImageURLs      []string `bson:"imageUrls" json:"imageUrls"`
	Active         bool     `bson:"active" json:"active"`
	// SuspendedHidden marks listings switched off by a suspension so only those come back.
	SuspendedHidden bool      `bson:"suspendedHidden,omitempty" json:"-"`
	CreatedAt       time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time `bson:"updatedAt" json:"updatedAt"`
}

type CreateServiceRequest struct {
	Title          string   `json:"title" binding:"required"`
	Description    string   `json:"description"`
	Category       string   `json:"category" binding:"required"`
	Tags           []string `json:"tags"`
	EstimatedHours float64  `json:"estimatedHours"`
}

type UpdateServiceRequest struct {
	Title          *string  `json:"title"`
	Description    *string  `json:"description"`
	Category       *string  `json:"category"`
	Tags           []string `json:"tags"`
	EstimatedHours *float64 `json:"estimatedHours"`
	Active         *bool    `json:"active"`
}

// ServiceFilter narrows a marketplace listing query.
type ServiceFilter struct {
	Category       string
	Query          string
	OwnerID        string
	ExcludeOwnerID string
	ActiveOnly     bool
}
