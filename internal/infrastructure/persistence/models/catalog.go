package models

import (
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
)

// ProductModel is the persistence model for catalog.Product
type ProductModel struct {
	AggregateModel
	SKU         string                `gorm:"column:sku;type:varchar(50);not null;uniqueIndex:idx_products_sku"`
	Title       string                `gorm:"type:varchar(300);not null"`
	Author      string                `gorm:"type:varchar(200)"`
	Description string                `gorm:"type:text"`
	UnitPrice   decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	ImageRef    string                `gorm:"type:varchar(500)"`
	Status      catalog.ProductStatus `gorm:"type:varchar(20);not null;default:'active';index"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseAggregateRoot: m.ToAggregateRoot(),
		SKU:               m.SKU,
		Title:             m.Title,
		Author:            m.Author,
		Description:       m.Description,
		UnitPrice:         m.UnitPrice,
		ImageRef:          m.ImageRef,
		Status:            m.Status,
	}
}

// FromDomain populates the persistence model from a domain Product
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.SKU = p.SKU
	m.Title = p.Title
	m.Author = p.Author
	m.Description = p.Description
	m.UnitPrice = p.UnitPrice
	m.ImageRef = p.ImageRef
	m.Status = p.Status
}

// ProductModelFromDomain creates a new persistence model from a domain Product
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}
