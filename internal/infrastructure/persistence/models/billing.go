package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
)

// UtilityTypeModel is the persistence model for the UtilityType aggregate root.
type UtilityTypeModel struct {
	OrgAggregateModel
	Name          string              `gorm:"type:varchar(100);not null;uniqueIndex:idx_utility_type_org_name,priority:2"`
	Mode          billing.BillingMode `gorm:"type:varchar(20);not null"`
	UnitOfMeasure string              `gorm:"type:varchar(20)"`
}

// TableName returns the table name for GORM
func (UtilityTypeModel) TableName() string {
	return "utility_types"
}

// ToDomain converts the persistence model to a domain UtilityType entity.
func (m *UtilityTypeModel) ToDomain() *billing.UtilityType {
	return &billing.UtilityType{
		OrgAggregateRoot: m.orgAggregateRoot(),
		Name:             m.Name,
		Mode:             m.Mode,
		UnitOfMeasure:    m.UnitOfMeasure,
	}
}

// FromDomain populates the persistence model from a domain UtilityType entity.
func (m *UtilityTypeModel) FromDomain(ut *billing.UtilityType) {
	m.FromDomainOrgAggregateRoot(ut.OrgAggregateRoot)
	m.Name = ut.Name
	m.Mode = ut.Mode
	m.UnitOfMeasure = ut.UnitOfMeasure
}

// UtilityTypeModelFromDomain creates a new persistence model from a domain UtilityType.
func UtilityTypeModelFromDomain(ut *billing.UtilityType) *UtilityTypeModel {
	m := &UtilityTypeModel{}
	m.FromDomain(ut)
	return m
}

// UtilityConfigModel is the persistence model for the UtilityConfig aggregate root.
type UtilityConfigModel struct {
	OrgAggregateModel
	UtilityTypeID uuid.UUID           `gorm:"type:uuid;not null;index"`
	TypeName      string              `gorm:"type:varchar(100);not null"`
	Mode          billing.BillingMode `gorm:"type:varchar(20);not null"`
	PropertyID    uuid.UUID           `gorm:"type:uuid;not null;index"`
	UnitID        *uuid.UUID          `gorm:"type:uuid;index"`
	EffectiveFrom time.Time           `gorm:"not null;index"`
	EffectiveTo   *time.Time          `gorm:"index"`
	FixedAmount   decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	Rate          decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	SharedAmount  decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (UtilityConfigModel) TableName() string {
	return "utility_configs"
}

// ToDomain converts the persistence model to a domain UtilityConfig entity.
func (m *UtilityConfigModel) ToDomain() *billing.UtilityConfig {
	return &billing.UtilityConfig{
		OrgAggregateRoot: m.orgAggregateRoot(),
		UtilityTypeID:    m.UtilityTypeID,
		TypeName:         m.TypeName,
		Mode:             m.Mode,
		PropertyID:       m.PropertyID,
		UnitID:           m.UnitID,
		EffectiveFrom:    m.EffectiveFrom,
		EffectiveTo:      m.EffectiveTo,
		FixedAmount:      m.FixedAmount,
		Rate:             m.Rate,
		SharedAmount:     m.SharedAmount,
	}
}

// FromDomain populates the persistence model from a domain UtilityConfig entity.
func (m *UtilityConfigModel) FromDomain(cfg *billing.UtilityConfig) {
	m.FromDomainOrgAggregateRoot(cfg.OrgAggregateRoot)
	m.UtilityTypeID = cfg.UtilityTypeID
	m.TypeName = cfg.TypeName
	m.Mode = cfg.Mode
	m.PropertyID = cfg.PropertyID
	m.UnitID = cfg.UnitID
	m.EffectiveFrom = cfg.EffectiveFrom
	m.EffectiveTo = cfg.EffectiveTo
	m.FixedAmount = cfg.FixedAmount
	m.Rate = cfg.Rate
	m.SharedAmount = cfg.SharedAmount
}

// UtilityConfigModelFromDomain creates a new persistence model from a domain UtilityConfig.
func UtilityConfigModelFromDomain(cfg *billing.UtilityConfig) *UtilityConfigModel {
	m := &UtilityConfigModel{}
	m.FromDomain(cfg)
	return m
}

// MeterReadingModel is the persistence model for the MeterReading aggregate root.
type MeterReadingModel struct {
	OrgAggregateModel
	UtilityConfigID uuid.UUID       `gorm:"type:uuid;not null;index:idx_reading_config_unit_date,priority:1"`
	UnitID          uuid.UUID       `gorm:"type:uuid;not null;index:idx_reading_config_unit_date,priority:2"`
	Value           decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ReadingDate     time.Time       `gorm:"not null;index:idx_reading_config_unit_date,priority:3"`
	RecordedBy      *uuid.UUID      `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (MeterReadingModel) TableName() string {
	return "meter_readings"
}

// ToDomain converts the persistence model to a domain MeterReading entity.
func (m *MeterReadingModel) ToDomain() *billing.MeterReading {
	return &billing.MeterReading{
		OrgAggregateRoot: m.orgAggregateRoot(),
		UtilityConfigID:  m.UtilityConfigID,
		UnitID:           m.UnitID,
		Value:            m.Value,
		ReadingDate:      m.ReadingDate,
		RecordedBy:       m.RecordedBy,
	}
}

// FromDomain populates the persistence model from a domain MeterReading entity.
func (m *MeterReadingModel) FromDomain(r *billing.MeterReading) {
	m.FromDomainOrgAggregateRoot(r.OrgAggregateRoot)
	m.UtilityConfigID = r.UtilityConfigID
	m.UnitID = r.UnitID
	m.Value = r.Value
	m.ReadingDate = r.ReadingDate
	m.RecordedBy = r.RecordedBy
}

// MeterReadingModelFromDomain creates a new persistence model from a domain MeterReading.
func MeterReadingModelFromDomain(r *billing.MeterReading) *MeterReadingModel {
	m := &MeterReadingModel{}
	m.FromDomain(r)
	return m
}
