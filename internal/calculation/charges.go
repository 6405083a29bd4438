package calculation

import (
	"github.com/ledgerline/monacopay/internal/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// round2 rounds a monetary amount half-up to 2 decimals. Amounts here are
// never negative, so Round's half-away-from-zero behaviour is half-up.
func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ComputeCharges calculates every contribution of the schedule against the
// gross amount, each rounded to the cent, plus the two side totals.
//
// The contribution base per band:
//
//	none    : gross
//	t1      : tranche 1 slice
//	t1_t2   : tranche 1 + tranche 2 slices
//	t2_only : tranche 2 slice only
//
// A t2_only charge therefore depends exclusively on the gross above the T1
// ceiling (capped at T2). Applying such a rate to the combined slices, or
// to full gross, overstates the charge severely at mid-range salaries.
func ComputeCharges(gross decimal.Decimal, schedule *domain.RateSchedule) domain.ChargeResult {
	slices := Split(gross, schedule.Tranches)

	result := domain.ChargeResult{
		Employee: make(map[string]decimal.Decimal),
		Employer: make(map[string]decimal.Decimal),
	}

	for _, c := range schedule.Charges {
		base := chargeBase(gross, slices, c.Band)
		amount := round2(base.Mul(c.RatePercent).Div(hundred))

		switch c.Side {
		case domain.SideEmployee:
			result.Employee[c.Code] = amount
			result.EmployeeTotal = result.EmployeeTotal.Add(amount)
		case domain.SideEmployer:
			result.Employer[c.Code] = amount
			result.EmployerTotal = result.EmployerTotal.Add(amount)
		}
	}
	return result
}

func chargeBase(gross decimal.Decimal, s TrancheSlices, band domain.ChargeBand) decimal.Decimal {
	switch band {
	case domain.BandT1:
		return s.T1
	case domain.BandT1T2:
		return s.T1.Add(s.T2)
	case domain.BandT2Only:
		return s.T2
	default:
		return gross
	}
}
