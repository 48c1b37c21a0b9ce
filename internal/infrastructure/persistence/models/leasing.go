package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/leasing"
	"github.com/shopspring/decimal"
)

// PropertyModel is the persistence model for the Property aggregate root.
type PropertyModel struct {
	OrgAggregateModel
	Name       string      `gorm:"type:varchar(200);not null"`
	Address    string      `gorm:"type:varchar(500)"`
	LandlordID uuid.UUID   `gorm:"type:uuid;not null;index"`
	Units      []UnitModel `gorm:"foreignKey:PropertyID;references:ID"`
}

// TableName returns the table name for GORM
func (PropertyModel) TableName() string {
	return "properties"
}

// ToDomain converts the persistence model to a domain Property entity.
func (m *PropertyModel) ToDomain() *leasing.Property {
	units := make([]leasing.Unit, len(m.Units))
	for i, u := range m.Units {
		units[i] = *u.ToDomain()
	}
	return &leasing.Property{
		OrgAggregateRoot: m.orgAggregateRoot(),
		Name:             m.Name,
		Address:          m.Address,
		LandlordID:       m.LandlordID,
		Units:            units,
	}
}

// FromDomain populates the persistence model from a domain Property entity.
// Units are persisted through their own repository, not cascaded here.
func (m *PropertyModel) FromDomain(p *leasing.Property) {
	m.FromDomainOrgAggregateRoot(p.OrgAggregateRoot)
	m.Name = p.Name
	m.Address = p.Address
	m.LandlordID = p.LandlordID
}

// PropertyModelFromDomain creates a new persistence model from a domain Property.
func PropertyModelFromDomain(p *leasing.Property) *PropertyModel {
	m := &PropertyModel{}
	m.FromDomain(p)
	return m
}

// UnitModel is the persistence model for the Unit aggregate root.
type UnitModel struct {
	OrgAggregateModel
	PropertyID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_unit_property_number,priority:1"`
	Number     string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_unit_property_number,priority:2"`
	IsOccupied bool      `gorm:"not null;default:false;index"`
}

// TableName returns the table name for GORM
func (UnitModel) TableName() string {
	return "units"
}

// ToDomain converts the persistence model to a domain Unit entity.
func (m *UnitModel) ToDomain() *leasing.Unit {
	return &leasing.Unit{
		OrgAggregateRoot: m.orgAggregateRoot(),
		PropertyID:       m.PropertyID,
		Number:           m.Number,
		IsOccupied:       m.IsOccupied,
	}
}

// FromDomain populates the persistence model from a domain Unit entity.
func (m *UnitModel) FromDomain(u *leasing.Unit) {
	m.FromDomainOrgAggregateRoot(u.OrgAggregateRoot)
	m.PropertyID = u.PropertyID
	m.Number = u.Number
	m.IsOccupied = u.IsOccupied
}

// UnitModelFromDomain creates a new persistence model from a domain Unit.
func UnitModelFromDomain(u *leasing.Unit) *UnitModel {
	m := &UnitModel{}
	m.FromDomain(u)
	return m
}

// TenantModel is the persistence model for the Tenant (renter) aggregate root.
type TenantModel struct {
	OrgAggregateModel
	UnitID      uuid.UUID            `gorm:"type:uuid;not null;index"`
	PropertyID  uuid.UUID            `gorm:"type:uuid;not null;index"`
	FullName    string               `gorm:"type:varchar(200);not null"`
	Phone       string               `gorm:"type:varchar(30)"`
	MonthlyRent decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	RentDueDay  int                  `gorm:"not null;default:1"`
	Status      leasing.TenantStatus `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
	LeaseStart  time.Time            `gorm:"not null;index"`
	LeaseEnd    *time.Time           `gorm:"index"`
}

// TableName returns the table name for GORM
func (TenantModel) TableName() string {
	return "tenants"
}

// ToDomain converts the persistence model to a domain Tenant entity.
func (m *TenantModel) ToDomain() *leasing.Tenant {
	return &leasing.Tenant{
		OrgAggregateRoot: m.orgAggregateRoot(),
		UnitID:           m.UnitID,
		PropertyID:       m.PropertyID,
		FullName:         m.FullName,
		Phone:            m.Phone,
		MonthlyRent:      m.MonthlyRent,
		RentDueDay:       m.RentDueDay,
		Status:           m.Status,
		LeaseStart:       m.LeaseStart,
		LeaseEnd:         m.LeaseEnd,
	}
}

// FromDomain populates the persistence model from a domain Tenant entity.
func (m *TenantModel) FromDomain(t *leasing.Tenant) {
	m.FromDomainOrgAggregateRoot(t.OrgAggregateRoot)
	m.UnitID = t.UnitID
	m.PropertyID = t.PropertyID
	m.FullName = t.FullName
	m.Phone = t.Phone
	m.MonthlyRent = t.MonthlyRent
	m.RentDueDay = t.RentDueDay
	m.Status = t.Status
	m.LeaseStart = t.LeaseStart
	m.LeaseEnd = t.LeaseEnd
}

// TenantModelFromDomain creates a new persistence model from a domain Tenant.
func TenantModelFromDomain(t *leasing.Tenant) *TenantModel {
	m := &TenantModel{}
	m.FromDomain(t)
	return m
}
