// Package domain defines the product catalog entities.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// Product is a catalog item owned by a seller. Only published products are
// visible on the customer storefront.
type Product struct {
	ID          string
	SellerID    string
	Name        string
	Description string
	PriceCents  int64
	Published   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate checks the product's fields. It returns an error describing the
// first problem found, or nil if the product is valid.
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("product name is required")
	}
	if len(p.Name) > 200 {
		return fmt.Errorf("product name must be at most 200 characters")
	}
	if p.PriceCents < 0 {
		return fmt.Errorf("product price must not be negative")
	}
	if p.SellerID == "" {
		return fmt.Errorf("product seller is required")
	}
	return nil
}
