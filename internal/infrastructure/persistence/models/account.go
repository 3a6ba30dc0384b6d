package models

import (
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/account"
)

// AddressModel is the persistence model for account.Address
type AddressModel struct {
	BaseModel
	UserID     uuid.UUID               `gorm:"type:uuid;not null;index"`
	Name       string                  `gorm:"type:varchar(200);not null"`
	Phone      string                  `gorm:"type:varchar(30);not null"`
	Street     string                  `gorm:"type:varchar(500);not null"`
	City       string                  `gorm:"type:varchar(100);not null"`
	State      string                  `gorm:"type:varchar(100);not null"`
	PostalCode string                  `gorm:"type:varchar(20);not null"`
	Country    string                  `gorm:"type:varchar(100);not null"`
	Category   account.AddressCategory `gorm:"type:varchar(20);not null;default:'home'"`
	IsDefault  bool                    `gorm:"not null;default:false"`
}

func (AddressModel) TableName() string {
	return "addresses"
}

func (m *AddressModel) ToDomain() *account.Address {
	return &account.Address{
		BaseEntity: m.BaseModel.ToDomain(),
		UserID:     m.UserID,
		AddressFields: account.AddressFields{
			Name:       m.Name,
			Phone:      m.Phone,
			Street:     m.Street,
			City:       m.City,
			State:      m.State,
			PostalCode: m.PostalCode,
			Country:    m.Country,
			Category:   m.Category,
		},
		IsDefault: m.IsDefault,
	}
}

func (m *AddressModel) FromDomain(a *account.Address) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.UserID = a.UserID
	m.Name = a.Name
	m.Phone = a.Phone
	m.Street = a.Street
	m.City = a.City
	m.State = a.State
	m.PostalCode = a.PostalCode
	m.Country = a.Country
	m.Category = a.Category
	m.IsDefault = a.IsDefault
}

func AddressModelFromDomain(a *account.Address) *AddressModel {
	m := &AddressModel{}
	m.FromDomain(a)
	return m
}

// PaymentMethodModel is the persistence model for account.PaymentMethod.
// Details are stored as a JSON document.
type PaymentMethodModel struct {
	BaseModel
	UserID      uuid.UUID           `gorm:"type:uuid;not null;index"`
	Type        account.PaymentMode `gorm:"type:varchar(20);not null"`
	DisplayName string              `gorm:"type:varchar(200);not null"`
	Details     map[string]string   `gorm:"type:jsonb;serializer:json"`
	IsDefault   bool                `gorm:"not null;default:false"`
}

func (PaymentMethodModel) TableName() string {
	return "payment_methods"
}

func (m *PaymentMethodModel) ToDomain() *account.PaymentMethod {
	details := m.Details
	if details == nil {
		details = map[string]string{}
	}
	return &account.PaymentMethod{
		BaseEntity:  m.BaseModel.ToDomain(),
		UserID:      m.UserID,
		Type:        m.Type,
		DisplayName: m.DisplayName,
		Details:     details,
		IsDefault:   m.IsDefault,
	}
}

func (m *PaymentMethodModel) FromDomain(p *account.PaymentMethod) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.UserID = p.UserID
	m.Type = p.Type
	m.DisplayName = p.DisplayName
	m.Details = p.Details
	m.IsDefault = p.IsDefault
}

func PaymentMethodModelFromDomain(p *account.PaymentMethod) *PaymentMethodModel {
	m := &PaymentMethodModel{}
	m.FromDomain(p)
	return m
}
