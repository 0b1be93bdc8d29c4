package domain

import (
	"strconv"
	"strings"
	"time"
)

// ProductStatus is the lifecycle state of a product listing.
// Only ACTIVE products are searchable.
type ProductStatus string

const (
	ProductStatusActive ProductStatus = "ACTIVE"
)

// Product represents a product row as read from the external store,
// with the owning vendor's fields joined in.
//
// Exactly one of MicroCategoryID / SubCategoryID / HeadCategoryID is expected
// to be set, matching the product's classification depth; the store does not
// enforce this, so all three are nullable.
type Product struct {
	ID              int64         `json:"id"`
	Name            string        `json:"name"`
	Status          ProductStatus `json:"status"`
	Description     *string       `json:"description,omitempty"`
	CategorySlug    string        `json:"category_slug"`
	MicroCategoryID *int64        `json:"micro_category_id,omitempty"`
	SubCategoryID   *int64        `json:"sub_category_id,omitempty"`
	HeadCategoryID  *int64        `json:"head_category_id,omitempty"`
	Price           string        `json:"price"` // stored as numeric or text, kept raw and coerced on demand
	TargetLocations []byte        `json:"-"`     // raw polymorphic payload, decoded via DecodeTargetLocations
	VendorID        int64         `json:"vendor_id"`
	InStock         bool          `json:"in_stock"`
	CreatedAt       time.Time     `json:"created_at"`

	Vendor Vendor `json:"vendor"`
}

// PriceValue coerces the raw price column to a float64. Legacy rows carry
// textual prices with currency noise; anything unparseable coerces to 0.
func (p *Product) PriceValue() float64 {
	s := strings.TrimSpace(p.Price)
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// Vendor holds the vendor fields the search surface exposes alongside each
// product. StateID/CityID back the vendor-level location fallback.
type Vendor struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	StateID    *int64  `json:"state_id,omitempty"`
	CityID     *int64  `json:"city_id,omitempty"`
	StateName  string  `json:"state_name,omitempty"`
	CityName   string  `json:"city_name,omitempty"`
	IsActive   bool    `json:"is_active"`
	IsVerified bool    `json:"is_verified"`
	Rating     float64 `json:"rating"`
	PlanName   string  `json:"plan_name,omitempty"` // filled from the subscription join, empty when none
}
