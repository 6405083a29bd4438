package calculation

import (
	"fmt"

	"github.com/ledgerline/monacopay/internal/domain"
	"github.com/shopspring/decimal"
)

// CrossBorder layers the residence-country income tax on top of the Monaco
// social charges. Local charges (both sides) always apply in full; this
// overlay only adds withholding and recomputes the net actually received.
//
// Monaco residents pay no income tax. French residents pay CSG/CRDS on an
// abated base plus a progressive monthly withholding (or their personal
// rate when the tax administration communicated one). Italian frontaliers
// pay IRPEF reduced by the 15%-of-gross Monaco source withholding credit,
// clamped at zero. Any other country is a configuration error, never a
// silent default.
func CrossBorder(in *domain.EmployeePeriodInput, gross, netBeforeTax decimal.Decimal, schedule *domain.RateSchedule) (domain.CrossBorderResult, error) {
	res := domain.CrossBorderResult{Country: in.ResidenceCountry, NetAfterTax: netBeforeTax}

	switch in.ResidenceCountry {
	case domain.CountryMonaco:
		return res, nil

	case domain.CountryFrance:
		fr := schedule.France
		base := gross.Mul(fr.CSGBaseFactor)
		res.CSGDeductible = round2(base.Mul(fr.CSGDeductibleRate).Div(hundred))
		csgNonDed := round2(base.Mul(fr.CSGNonDeductibleRate).Div(hundred))
		crds := round2(base.Mul(fr.CRDSRate).Div(hundred))
		res.CSGCRDS = res.CSGDeductible.Add(csgNonDed).Add(crds)

		// Taxable base for the withholding scale: net of social charges
		// and of the deductible CSG fraction.
		taxable := netBeforeTax.Sub(res.CSGDeductible)
		if in.WithholdingRate != nil {
			res.ProgressiveWithholding = round2(taxable.Mul(*in.WithholdingRate))
		} else {
			res.ProgressiveWithholding = marginalTax(taxable, fr.Brackets)
		}

		res.AdditionalWithholding = res.CSGCRDS.Add(res.ProgressiveWithholding)
		res.NetAfterTax = netBeforeTax.Sub(res.AdditionalWithholding)
		return res, nil

	case domain.CountryItaly:
		it := schedule.Italy
		irpef := marginalTax(netBeforeTax, it.Brackets)
		res.MonacoCredit = round2(gross.Mul(it.MonacoCreditRate))

		residual := irpef.Sub(res.MonacoCredit)
		if residual.IsNegative() {
			residual = decimal.Zero
		}
		res.AdditionalWithholding = residual
		res.NetAfterTax = netBeforeTax.Sub(residual)
		return res, nil

	default:
		return domain.CrossBorderResult{}, &domain.ConfigError{
			Op:     "cross-border tax",
			Detail: fmt.Sprintf("employee %s: residence country %q has no treaty rule", in.Matricule, in.ResidenceCountry),
			Err:    domain.ErrUnknownCountry,
		}
	}
}

// marginalTax applies a progressive monthly scale to a taxable base. Each
// bracket taxes only the slice of income falling between its floor and its
// ceiling; a zero ceiling marks the open top bracket.
func marginalTax(taxable decimal.Decimal, brackets []domain.TaxBracket) decimal.Decimal {
	if taxable.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	tax := decimal.Zero
	floor := decimal.Zero
	for _, b := range brackets {
		var slice decimal.Decimal
		if b.UpTo.IsZero() { // open top bracket
			slice = taxable.Sub(floor)
		} else {
			slice = decimal.Min(taxable, b.UpTo).Sub(floor)
		}
		if slice.IsPositive() {
			tax = tax.Add(slice.Mul(b.Rate))
		}
		if !b.UpTo.IsZero() && taxable.LessThanOrEqual(b.UpTo) {
			break
		}
		floor = b.UpTo
	}
	return round2(tax)
}
