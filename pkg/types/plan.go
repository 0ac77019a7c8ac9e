package types

type PlanType string

const (
	PlanTypeFree         PlanType = "free"
	PlanTypeSubscription PlanType = "subscription"
	PlanTypeLifetime     PlanType = "lifetime"
)

type PlanInterval string

const (
	PlanIntervalMonth PlanInterval = "month"
	PlanIntervalYear  PlanInterval = "year"
)

// PlanPrice is a purchasable price point of a plan, keyed by the
// provider-side price identifier.
type PlanPrice struct {
	PriceID string `json:"price_id" mapstructure:"price_id"`
	// Amount in minor currency units.
	Amount   int64        `json:"amount" mapstructure:"amount"`
	Currency string       `json:"currency" mapstructure:"currency"`
	Interval PlanInterval `json:"interval,omitempty" mapstructure:"interval"`
}

// CreditPolicy describes the credit grant attached to a qualifying payment
// for a plan.
type CreditPolicy struct {
	Amount int64 `json:"amount" mapstructure:"amount"`
	// ExpireDays is the grant lifetime when no billing period end applies.
	ExpireDays int `json:"expire_days" mapstructure:"expire_days"`
	// DailyBonus is the size of the daily-refreshing bonus pool, if any.
	DailyBonus int64 `json:"daily_bonus,omitempty" mapstructure:"daily_bonus"`
}

// Plan is one entry of the configured plan catalog.
type Plan struct {
	ID       string        `json:"id" mapstructure:"id"`
	Name     string        `json:"name" mapstructure:"name"`
	PlanType PlanType      `json:"plan_type" mapstructure:"plan_type"`
	Credit   *CreditPolicy `json:"credit,omitempty" mapstructure:"credit"`
	Prices   []*PlanPrice  `json:"prices" mapstructure:"prices"`
}

func (p *Plan) IsLifetime() bool { return p != nil && p.PlanType == PlanTypeLifetime }

func (p *Plan) PriceByID(priceID string) *PlanPrice {
	if p == nil {
		return nil
	}
	for _, price := range p.Prices {
		if price.PriceID == priceID {
			return price
		}
	}
	return nil
}

// IntervalDisplayText is used when composing product names for orders.
func IntervalDisplayText(interval PlanInterval) string {
	switch interval {
	case PlanIntervalMonth:
		return "Monthly"
	case PlanIntervalYear:
		return "Yearly"
	default:
		return "One-time"
	}
}
