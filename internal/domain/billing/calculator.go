package billing

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/leasing"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/rentledger/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Charge is one computed utility amount for a tenant and period.
// Amount is always Quantity * Rate rounded to cents; flat charges use
// Quantity 1 with Rate equal to the amount.
type Charge struct {
	UtilityTypeID uuid.UUID
	Description   string
	Quantity      decimal.Decimal
	Rate          decimal.Decimal
	Amount        decimal.Decimal
}

// Warning records a non-fatal data problem found during charge
// calculation. The affected utility is skipped, never estimated, and
// the warning travels up through the generation result so an operator
// can remediate and re-run.
type Warning struct {
	Code        string `json:"code"`
	UtilityType string `json:"utility_type"`
	Message     string `json:"message"`
}

// Warning codes
const (
	WarnMissingReading      = "MISSING_METER_READING"
	WarnNegativeConsumption = "NEGATIVE_CONSUMPTION"
	WarnOverlappingConfigs  = "OVERLAPPING_CONFIGS"
	WarnNoOccupiedUnits     = "NO_OCCUPIED_UNITS"
)

// Calculator derives utility charges for a tenant and billing period.
// It is pure with respect to external state apart from config, reading
// and occupancy lookups.
type Calculator struct {
	configs  UtilityConfigRepository
	readings MeterReadingRepository
	units    leasing.UnitRepository
	logger   *zap.Logger
}

// NewCalculator creates a new utility charge calculator
func NewCalculator(
	configs UtilityConfigRepository,
	readings MeterReadingRepository,
	units leasing.UnitRepository,
	logger *zap.Logger,
) *Calculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Calculator{
		configs:  configs,
		readings: readings,
		units:    units,
		logger:   logger,
	}
}

// ComputeCharges produces one charge per applicable utility config for
// the tenant's unit and the billing period. Problems with individual
// utilities surface as warnings; only infrastructure failures return an
// error.
func (c *Calculator) ComputeCharges(
	ctx context.Context,
	tenant *leasing.Tenant,
	period valueobject.Period,
) ([]Charge, []Warning, error) {
	candidates, err := c.configs.FindEffectiveForUnit(ctx, tenant.OrgID, tenant.PropertyID, tenant.UnitID, period)
	if err != nil {
		return nil, nil, fmt.Errorf("loading utility configs: %w", err)
	}

	selected, warnings := c.selectConfigs(candidates, period)

	charges := make([]Charge, 0, len(selected))
	for _, cfg := range selected {
		var (
			charge *Charge
			warn   *Warning
		)
		switch cfg.Mode {
		case BillingModeFixed:
			charge = c.fixedCharge(&cfg, period)
		case BillingModeMetered:
			charge, warn, err = c.meteredCharge(ctx, &cfg, tenant, period)
		case BillingModeShared:
			charge, warn, err = c.sharedCharge(ctx, &cfg, tenant, period)
		default:
			warn = &Warning{
				Code:        "UNKNOWN_BILLING_MODE",
				UtilityType: cfg.TypeName,
				Message:     fmt.Sprintf("unknown billing mode %q", cfg.Mode),
			}
		}
		if err != nil {
			return nil, nil, err
		}
		if warn != nil {
			warnings = append(warnings, *warn)
			continue
		}
		if charge != nil {
			charges = append(charges, *charge)
		}
	}

	// Deterministic ordering: invoices regenerated from the same data
	// must list utilities identically.
	sort.Slice(charges, func(i, j int) bool {
		return charges[i].Description < charges[j].Description
	})

	return charges, warnings, nil
}

// selectConfigs applies precedence rules to raw candidates: within a
// utility type, unit-specific configs displace property-wide ones
// entirely; overlapping same-scope ranges pick the latest
// EffectiveFrom and record a data-integrity warning.
func (c *Calculator) selectConfigs(candidates []UtilityConfig, period valueobject.Period) ([]UtilityConfig, []Warning) {
	byType := make(map[uuid.UUID][]UtilityConfig)
	order := make([]uuid.UUID, 0, len(candidates))
	for _, cfg := range candidates {
		if !cfg.IsEffectiveDuring(period) {
			continue
		}
		if _, seen := byType[cfg.UtilityTypeID]; !seen {
			order = append(order, cfg.UtilityTypeID)
		}
		byType[cfg.UtilityTypeID] = append(byType[cfg.UtilityTypeID], cfg)
	}

	var warnings []Warning
	selected := make([]UtilityConfig, 0, len(order))
	for _, typeID := range order {
		group := byType[typeID]

		unitScoped := make([]UtilityConfig, 0, len(group))
		for _, cfg := range group {
			if cfg.IsUnitScoped() {
				unitScoped = append(unitScoped, cfg)
			}
		}
		if len(unitScoped) > 0 {
			group = unitScoped
		}

		winner := group[0]
		if len(group) > 1 {
			// Overlapping effective ranges for one scope are a stored
			// data defect. Latest EffectiveFrom wins; the conflict is
			// reported, not auto-resolved.
			for _, cfg := range group[1:] {
				if cfg.EffectiveFrom.After(winner.EffectiveFrom) {
					winner = cfg
				}
			}
			warnings = append(warnings, Warning{
				Code:        WarnOverlappingConfigs,
				UtilityType: winner.TypeName,
				Message: fmt.Sprintf("%d overlapping configs for %s; using config effective from %s",
					len(group), winner.TypeName, winner.EffectiveFrom.Format("2006-01-02")),
			})
			c.logger.Warn("Overlapping utility configs",
				zap.String("utility_type", winner.TypeName),
				zap.String("property_id", winner.PropertyID.String()),
				zap.Int("count", len(group)),
			)
		}
		selected = append(selected, winner)
	}

	return selected, warnings
}

// fixedCharge prorates a fixed amount by the fraction of the period the
// config is effective. Full coverage bills the configured amount
// exactly, with no rounding applied.
func (c *Calculator) fixedCharge(cfg *UtilityConfig, period valueobject.Period) *Charge {
	effective, err := cfg.EffectivePeriod(period.End())
	if err != nil {
		return nil
	}
	clamped, ok := period.ClampTo(effective)
	if !ok {
		return nil
	}

	amount := cfg.FixedAmount
	quantity := decimal.NewFromInt(1)
	if !clamped.Equals(period) {
		fraction := period.Fraction(clamped)
		amount = cfg.FixedAmount.Mul(fraction).Round(2)
	}

	return &Charge{
		UtilityTypeID: cfg.UtilityTypeID,
		Description:   fmt.Sprintf("%s (%s)", cfg.TypeName, cfg.Mode.Description()),
		Quantity:      quantity,
		Rate:          amount,
		Amount:        amount,
	}
}

// meteredCharge bills the consumption delta between the boundary
// readings. Missing readings or a negative delta skip the utility with
// a warning; consumption is never estimated.
func (c *Calculator) meteredCharge(
	ctx context.Context,
	cfg *UtilityConfig,
	tenant *leasing.Tenant,
	period valueobject.Period,
) (*Charge, *Warning, error) {
	opening, err := c.readings.FindLatestAtOrBefore(ctx, cfg.OrgID, cfg.ID, tenant.UnitID, period.Start())
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, &Warning{
				Code:        WarnMissingReading,
				UtilityType: cfg.TypeName,
				Message:     fmt.Sprintf("no reading at or before period start %s", period.Start().Format("2006-01-02")),
			}, nil
		}
		return nil, nil, fmt.Errorf("loading opening reading: %w", err)
	}

	closing, err := c.readings.FindLatestAtOrBefore(ctx, cfg.OrgID, cfg.ID, tenant.UnitID, period.End())
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, &Warning{
				Code:        WarnMissingReading,
				UtilityType: cfg.TypeName,
				Message:     fmt.Sprintf("no reading at or before period end %s", period.End().Format("2006-01-02")),
			}, nil
		}
		return nil, nil, fmt.Errorf("loading closing reading: %w", err)
	}

	quantity, err := closing.Consumption(opening)
	if err != nil {
		c.logger.Warn("Negative meter consumption",
			zap.String("utility_type", cfg.TypeName),
			zap.String("unit_id", tenant.UnitID.String()),
			zap.String("opening", opening.Value.String()),
			zap.String("closing", closing.Value.String()),
		)
		return nil, &Warning{
			Code:        WarnNegativeConsumption,
			UtilityType: cfg.TypeName,
			Message: fmt.Sprintf("reading decreased from %s to %s; possible meter reset",
				opening.Value.String(), closing.Value.String()),
		}, nil
	}

	amount := quantity.Mul(cfg.Rate).Round(2)
	return &Charge{
		UtilityTypeID: cfg.UtilityTypeID,
		Description:   fmt.Sprintf("%s (%s)", cfg.TypeName, cfg.Mode.Description()),
		Quantity:      quantity,
		Rate:          cfg.Rate,
		Amount:        amount,
	}, nil, nil
}

// sharedCharge splits the configured amount across units occupied for
// any part of the period, then prorates this tenant's share by their
// active-days fraction.
func (c *Calculator) sharedCharge(
	ctx context.Context,
	cfg *UtilityConfig,
	tenant *leasing.Tenant,
	period valueobject.Period,
) (*Charge, *Warning, error) {
	occupied, err := c.units.CountOccupiedInPeriod(ctx, cfg.OrgID, cfg.PropertyID, period)
	if err != nil {
		return nil, nil, fmt.Errorf("counting occupied units: %w", err)
	}
	if occupied == 0 {
		return nil, &Warning{
			Code:        WarnNoOccupiedUnits,
			UtilityType: cfg.TypeName,
			Message:     "no occupied units to share the charge across",
		}, nil
	}

	share := cfg.SharedAmount.Div(decimal.NewFromInt(occupied))
	fraction := tenant.ActiveDaysFraction(period)
	amount := share.Mul(fraction).Round(2)

	return &Charge{
		UtilityTypeID: cfg.UtilityTypeID,
		Description:   fmt.Sprintf("%s (%s)", cfg.TypeName, cfg.Mode.Description()),
		Quantity:      decimal.NewFromInt(1),
		Rate:          amount,
		Amount:        amount,
	}, nil, nil
}
