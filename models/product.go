package models

import "time"

// ProductStatus controls storefront visibility. Products are never deleted,
// only deactivated.
type ProductStatus string

const (
	ProductActive   ProductStatus = "active"
	ProductInactive ProductStatus = "inactive"
)

type Product struct {
	ID             uint              `json:"id" gorm:"primaryKey"`
	Name           string            `json:"name" gorm:"not null"`
	Description    string            `json:"description" gorm:"not null"`
	Price          float64           `json:"price" gorm:"not null"`
	Images         []string          `json:"images" gorm:"serializer:json"`
	Category       string            `json:"category" gorm:"not null;index"`
	Subcategory    string            `json:"subcategory"`
	Stock          int               `json:"stock" gorm:"not null;default:0"`
	Status         ProductStatus     `json:"status" gorm:"not null;default:'active'"`
	Rating         float64           `json:"rating" gorm:"default:0"`
	Brand          string            `json:"brand"`
	Discount       float64           `json:"discount" gorm:"default:0"`
	Specifications map[string]string `json:"specifications,omitempty" gorm:"serializer:json"`
	Reviews        []Review          `json:"reviews,omitempty" gorm:"foreignKey:ProductID"`
	IsFeatured     bool              `json:"isFeatured" gorm:"default:false"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

type Review struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ProductID uint      `json:"productId" gorm:"not null;index"`
	User      string    `json:"user"`
	Rating    float64   `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}
