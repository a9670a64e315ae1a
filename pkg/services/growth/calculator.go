package growth

import (
	"errors"
	"fmt"
	"slices"

	"github.com/de-tools/bonus-atlas/pkg/models/domain"
	"github.com/de-tools/bonus-atlas/pkg/services/aggregate"
	"github.com/de-tools/bonus-atlas/pkg/services/override"
	"github.com/shopspring/decimal"
)

const (
	TopTier     = 3
	DeclineTier = 0
)

var hundred = decimal.NewFromInt(100)

// Band is one step of the rate schedule. A growth percent qualifies for the
// band when it is greater than or equal to MinPercent.
type Band struct {
	Tier       int
	MinPercent decimal.Decimal
	Rate       decimal.Decimal
}

// Schedule holds bands ordered by descending MinPercent. Growth below the
// lowest band earns DeclineTier and no bonus.
type Schedule []Band

func DefaultSchedule() Schedule {
	return Schedule{
		{Tier: 3, MinPercent: decimal.NewFromInt(10), Rate: decimal.RequireFromString("0.10")},
		{Tier: 2, MinPercent: decimal.NewFromInt(5), Rate: decimal.RequireFromString("0.05")},
		{Tier: 1, MinPercent: decimal.Zero, Rate: decimal.RequireFromString("0.025")},
	}
}

func (s Schedule) Validate() error {
	if len(s) == 0 {
		return errors.New("growth schedule has no bands")
	}
	for i, b := range s {
		if b.Rate.IsNegative() {
			return fmt.Errorf("growth band %d has negative rate %s", b.Tier, b.Rate)
		}
		if i > 0 && !b.MinPercent.LessThan(s[i-1].MinPercent) {
			return fmt.Errorf("growth bands must have strictly descending thresholds, got %s after %s",
				b.MinPercent, s[i-1].MinPercent)
		}
		if i > 0 && b.Tier >= s[i-1].Tier {
			return fmt.Errorf("growth bands must have descending tiers, got %d after %d", b.Tier, s[i-1].Tier)
		}
	}
	return nil
}

func (s Schedule) top() Band {
	return s[0]
}

func (s Schedule) band(percent decimal.Decimal) (int, decimal.Decimal) {
	for _, b := range s {
		if percent.GreaterThanOrEqual(b.MinPercent) {
			return b.Tier, b.Rate
		}
	}
	return DeclineTier, decimal.Zero
}

// Calculator computes the tiered growth bonus for the one supplier that
// carries it.
type Calculator struct {
	supplierID string
	schedule   Schedule
}

func NewCalculator(supplierID string, schedule Schedule) (*Calculator, error) {
	if supplierID == "" {
		return nil, errors.New("growth bonus supplier id is required")
	}
	if schedule == nil {
		schedule = DefaultSchedule()
	}
	if err := schedule.Validate(); err != nil {
		return nil, err
	}
	return &Calculator{supplierID: supplierID, schedule: slices.Clone(schedule)}, nil
}

func (c *Calculator) SupplierID() string {
	return c.supplierID
}

// Compute derives tier, rate and bonus from current and prior turnover.
func (c *Calculator) Compute(current, prior decimal.Decimal) domain.GrowthBonusResult {
	res := domain.GrowthBonusResult{
		SupplierID:      c.supplierID,
		CurrentTurnover: current,
		PrevTurnover:    prior,
		Tier:            DeclineTier,
	}

	switch {
	case !current.IsPositive():
		return res
	case prior.IsZero():
		top := c.schedule.top()
		res.IsNewCustomer = true
		res.Tier = top.Tier
		res.BonusRate = top.Rate
	default:
		res.GrowthPercent = current.Sub(prior).Div(prior).Mul(hundred)
		res.Tier, res.BonusRate = c.schedule.band(res.GrowthPercent)
	}

	res.BonusAmount = current.Mul(res.BonusRate)
	return res
}

// ComputeForSalon is shared by the chain overview and the salon detail. It
// reads the growth supplier's turnover from both year buckets and applies the
// override when there is one. It returns nil when the salon has no activity
// with the growth supplier in either year and no override.
func (c *Calculator) ComputeForSalon(
	current, prior *aggregate.SalonBucket,
	ov *domain.BaselineOverride,
) *domain.GrowthBonusResult {
	if current.Supplier(c.supplierID) == nil && prior.Supplier(c.supplierID) == nil && ov == nil {
		return nil
	}

	calculated := prior.SupplierTurnover(c.supplierID)
	res := c.Compute(current.SupplierTurnover(c.supplierID), override.ResolvePrior(calculated, ov))
	res.CalculatedPrevTurnover = calculated
	res.Override = ov
	return &res
}
