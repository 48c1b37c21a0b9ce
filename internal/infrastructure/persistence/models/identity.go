package models

import (
	"github.com/rentledger/backend/internal/domain/identity"
)

// OrganizationModel is the persistence model for organizations.
// Organizations are the isolation boundary itself, so the table has no
// org_id column and is never auto-filtered.
type OrganizationModel struct {
	AggregateModel
	Code         string `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name         string `gorm:"type:varchar(200);not null"`
	Status       string `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
	ContactName  string `gorm:"type:varchar(100)"`
	ContactPhone string `gorm:"type:varchar(50)"`
	ContactEmail string `gorm:"type:varchar(200)"`
	Currency     string `gorm:"type:varchar(3);not null;default:'KES'"`
	Timezone     string `gorm:"type:varchar(50);not null;default:'Africa/Nairobi'"`
}

// TableName returns the table name for GORM
func (OrganizationModel) TableName() string {
	return "organizations"
}

// ToDomain converts the model to a domain Organization
func (m *OrganizationModel) ToDomain() *identity.Organization {
	org := &identity.Organization{
		Code:         m.Code,
		Name:         m.Name,
		Status:       identity.OrganizationStatus(m.Status),
		ContactName:  m.ContactName,
		ContactPhone: m.ContactPhone,
		ContactEmail: m.ContactEmail,
		Currency:     m.Currency,
		Timezone:     m.Timezone,
	}
	org.ID = m.ID
	org.CreatedAt = m.CreatedAt
	org.UpdatedAt = m.UpdatedAt
	org.Version = m.Version
	return org
}

// OrganizationModelFromDomain converts a domain Organization to the model
func OrganizationModelFromDomain(org *identity.Organization) *OrganizationModel {
	m := &OrganizationModel{
		Code:         org.Code,
		Name:         org.Name,
		Status:       string(org.Status),
		ContactName:  org.ContactName,
		ContactPhone: org.ContactPhone,
		ContactEmail: org.ContactEmail,
		Currency:     org.Currency,
		Timezone:     org.Timezone,
	}
	m.FromDomainAggregateRoot(org.BaseAggregateRoot)
	return m
}
