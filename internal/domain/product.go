package domain

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Product Model
type Product struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"size:200;not null" json:"name"`
	Slug          string    `gorm:"size:220;uniqueIndex;not null" json:"slug"`   // Storefront URL key
	Description   string    `gorm:"type:text" json:"description"`
	CategorySlug  string    `gorm:"size:100;index" json:"categorySlug"`
	Brand         string    `gorm:"size:100" json:"brand"`
	Price         float64   `gorm:"not null;default:0" json:"price"`             // List price
	DiscountPrice *float64  `json:"discountPrice"`                               // Sale price, nil when not on sale
	Stock         int       `gorm:"not null;default:0" json:"stock"`             // Never negative
	SoldCount     int       `gorm:"not null;default:0;index" json:"soldCount"`   // Drives best sellers
	IsFeatured    bool      `gorm:"not null;default:false;index" json:"isFeatured"`
	IsActive      bool      `gorm:"not null;default:true;index" json:"isActive"` // Soft delete flag
	Images        []string  `gorm:"serializer:json;type:text" json:"images"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// EffectivePrice is what the customer pays
func (p *Product) EffectivePrice() float64 {
	if p.OnSale() {
		return *p.DiscountPrice
	}
	return p.Price
}

// OnSale reports whether a usable discount is set
func (p *Product) OnSale() bool {
	return p.DiscountPrice != nil && *p.DiscountPrice < p.Price
}

// AfterFind keeps Images a list when the column is NULL
func (p *Product) AfterFind(tx *gorm.DB) error {
	if p.Images == nil {
		p.Images = []string{}
	}
	return nil
}

// ProductInput carries a create or partial update; nil fields are left alone
type ProductInput struct {
	Name          *string   `json:"name"`
	Description   *string   `json:"description"`
	CategorySlug  *string   `json:"categorySlug"`
	Brand         *string   `json:"brand"`
	Price         *float64  `json:"price"`
	DiscountPrice *float64  `json:"discountPrice"`
	ClearDiscount bool      `json:"clearDiscount"` // Ends a sale
	Stock         *int      `json:"stock"`
	IsFeatured    *bool     `json:"isFeatured"`
	IsActive      *bool     `json:"isActive"`
	Images        *[]string `json:"images"`
}

// ApplyTo copies every present field onto p and returns the names of the
// fields it touched, ready for a gorm Select.
func (in *ProductInput) ApplyTo(p *Product) []string {
	var fields []string
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
		fields = append(fields, "Name")
	}
	if in.Description != nil {
		p.Description = *in.Description
		fields = append(fields, "Description")
	}
	if in.CategorySlug != nil {
		p.CategorySlug = strings.TrimSpace(*in.CategorySlug)
		fields = append(fields, "CategorySlug")
	}
	if in.Brand != nil {
		p.Brand = strings.TrimSpace(*in.Brand)
		fields = append(fields, "Brand")
	}
	if in.Price != nil {
		p.Price = *in.Price
		fields = append(fields, "Price")
	}
	switch {
	case in.ClearDiscount:
		p.DiscountPrice = nil
		fields = append(fields, "DiscountPrice")
	case in.DiscountPrice != nil:
		price := *in.DiscountPrice
		p.DiscountPrice = &price
		fields = append(fields, "DiscountPrice")
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
		fields = append(fields, "Stock")
	}
	if in.IsFeatured != nil {
		p.IsFeatured = *in.IsFeatured
		fields = append(fields, "IsFeatured")
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
		fields = append(fields, "IsActive")
	}
	if in.Images != nil {
		p.Images = append([]string{}, *in.Images...)
		fields = append(fields, "Images")
	}
	return fields
}

// ValidateProduct checks the invariants every stored product holds
func ValidateProduct(p *Product) error {
	switch {
	case p.Name == "":
		return ValidationError("Product name is required")
	case p.Price < 0:
		return ValidationError("Price must not be negative")
	case p.DiscountPrice != nil && (*p.DiscountPrice < 0 || *p.DiscountPrice > p.Price):
		return ValidationError("Discount price must be between 0 and the price")
	case p.Stock < 0:
		return ValidationError("Stock must not be negative")
	}
	return nil
}

// StockChange sets stock outright or moves it by a delta; exactly one is given
type StockChange struct {
	Stock *int `json:"stock"`
	Delta *int `json:"delta"`
}
