package fees

import (
	"github.com/shopspring/decimal"

	"github.com/adeyemiadedayo/kasuwa-backend/pkg/enums"
	pkgerrors "github.com/adeyemiadedayo/kasuwa-backend/pkg/errors"
)

// Money amounts round half-up to two decimal places. The courier side
// of a split rounds first and the platform side takes the remainder,
// so the two always sum back to the fee.

var (
	courierShare = decimal.NewFromFloat(0.70)

	multiplierStandard = decimal.NewFromInt(1)
	multiplierExpress  = decimal.NewFromFloat(1.5)
	multiplierUrgent   = decimal.NewFromInt(2)
)

// Calculator prices deliveries and splits revenue. All methods are
// pure; configuration is fixed at construction.
type Calculator struct {
	ratePerKm         decimal.Decimal
	defaultDistanceKm decimal.Decimal
}

type Config struct {
	RatePerKm         string
	DefaultDistanceKm string
}

func NewCalculator(cfg Config) (*Calculator, error) {
	rate, err := decimal.NewFromString(cfg.RatePerKm)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeValidation, "invalid rate per km")
	}
	if rate.Sign() <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rate per km must be positive")
	}
	dflt, err := decimal.NewFromString(cfg.DefaultDistanceKm)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeValidation, "invalid default distance")
	}
	if dflt.Sign() <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "default distance must be positive")
	}
	return &Calculator{ratePerKm: rate, defaultDistanceKm: dflt}, nil
}

// DefaultDistanceKm is the distance assumed when the dropoff has no
// usable coordinates.
func (c *Calculator) DefaultDistanceKm() decimal.Decimal {
	return c.defaultDistanceKm
}

// DeliveryFee prices a delivery: distance times the per-km rate times
// the priority multiplier.
func (c *Calculator) DeliveryFee(distanceKm decimal.Decimal, priority enums.DeliveryPriority) decimal.Decimal {
	if distanceKm.Sign() <= 0 {
		distanceKm = c.defaultDistanceKm
	}
	return c.ratePerKm.Mul(distanceKm).Mul(priorityMultiplier(priority)).Round(2)
}

// Split divides a delivery fee between courier and platform.
func Split(fee decimal.Decimal) (courier, platform decimal.Decimal) {
	courier = fee.Mul(courierShare).Round(2)
	platform = fee.Sub(courier)
	return courier, platform
}

// DiscountAmount applies a percentage discount to an amount.
func DiscountAmount(amount, percent decimal.Decimal) decimal.Decimal {
	if percent.Sign() <= 0 {
		return decimal.Zero
	}
	return amount.Mul(percent).Div(decimal.NewFromInt(100)).Round(2)
}

// Totals carries the priced breakdown of an order.
type Totals struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	DeliveryFee    decimal.Decimal
	Total          decimal.Decimal
	AmountMinor    int64
}

// Line is one priced order line. Discountable marks lines whose
// product belongs to the applied code's product set.
type Line struct {
	UnitPrice    decimal.Decimal
	Quantity     int
	Discountable bool
}

// LineTotal prices a single line.
func LineTotal(l Line) decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))).Round(2)
}

// OrderTotals assembles an order's money breakdown. The discount
// percentage applies to discountable lines only. The gateway amount is
// the total expressed in the currency's minor unit.
func OrderTotals(lines []Line, discountPercent, deliveryFee decimal.Decimal) (Totals, error) {
	if len(lines) == 0 {
		return Totals{}, pkgerrors.New(pkgerrors.CodeValidation, "order needs at least one line")
	}

	subtotal := decimal.Zero
	discountBase := decimal.Zero
	for _, l := range lines {
		if l.Quantity <= 0 {
			return Totals{}, pkgerrors.New(pkgerrors.CodeValidation, "line quantity must be positive")
		}
		if l.UnitPrice.Sign() < 0 {
			return Totals{}, pkgerrors.New(pkgerrors.CodeValidation, "line price must not be negative")
		}
		total := LineTotal(l)
		subtotal = subtotal.Add(total)
		if l.Discountable {
			discountBase = discountBase.Add(total)
		}
	}

	discount := DiscountAmount(discountBase, discountPercent)
	if discount.GreaterThan(discountBase) {
		discount = discountBase
	}

	total := subtotal.Sub(discount).Add(deliveryFee)
	if total.Sign() < 0 {
		return Totals{}, pkgerrors.New(pkgerrors.CodeValidation, "order total must not be negative")
	}

	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		DeliveryFee:    deliveryFee,
		Total:          total,
		AmountMinor:    total.Mul(decimal.NewFromInt(100)).IntPart(),
	}, nil
}

// CommissionMinor computes an agent's cut of a paid order in minor
// units. Fractions floor. A cut below the configured minimum is not
// worth paying out and comes back as zero.
func CommissionMinor(totalMinor int64, ratePercent int, minMinor int64) int64 {
	if totalMinor <= 0 || ratePercent <= 0 {
		return 0
	}
	amount := totalMinor * int64(ratePercent) / 100
	if amount < minMinor {
		return 0
	}
	return amount
}

// Unrecognized priorities price as standard.
func priorityMultiplier(priority enums.DeliveryPriority) decimal.Decimal {
	switch priority {
	case enums.DeliveryPriorityExpress:
		return multiplierExpress
	case enums.DeliveryPriorityUrgent:
		return multiplierUrgent
	default:
		return multiplierStandard
	}
}
