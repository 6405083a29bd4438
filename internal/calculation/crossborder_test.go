package calculation

import (
	"errors"
	"testing"

	"github.com/ledgerline/monacopay/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrossBorderMonaco(t *testing.T) {
	in := &domain.EmployeePeriodInput{Matricule: "M001", ResidenceCountry: domain.CountryMonaco}
	res, err := CrossBorder(in, d("3000.00"), d("2160.00"), schedule2024())
	require.NoError(t, err)

	assert.True(t, res.AdditionalWithholding.IsZero())
	assert.True(t, res.NetAfterTax.Equal(d("2160.00")))
}

func TestCrossBorderFrance(t *testing.T) {
	t.Run("default_scale", func(t *testing.T) {
		in := &domain.EmployeePeriodInput{Matricule: "M002", ResidenceCountry: domain.CountryFrance}
		res, err := CrossBorder(in, d("3000.00"), d("2160.00"), schedule2024())
		require.NoError(t, err)

		// CSG base is 98.25% of gross: 2947.50. Deductible 6.80% = 200.43,
		// non-deductible 2.40% = 70.74, CRDS 0.50% = 14.74.
		assert.True(t, res.CSGDeductible.Equal(d("200.43")), "CSG deductible = %s", res.CSGDeductible)
		assert.True(t, res.CSGCRDS.Equal(d("285.91")), "CSG/CRDS = %s", res.CSGCRDS)

		// Taxable 2160.00 - 200.43 = 1959.57: the 11% bracket covers
		// 1959.57 - 898.08 = 1061.49, so withholding is 116.76.
		assert.True(t, res.ProgressiveWithholding.Equal(d("116.76")), "withholding = %s", res.ProgressiveWithholding)
		assert.True(t, res.AdditionalWithholding.Equal(d("402.67")))
		assert.True(t, res.NetAfterTax.Equal(d("1757.33")))
	})

	t.Run("personal_rate_overrides_scale", func(t *testing.T) {
		rate := d("0.05")
		in := &domain.EmployeePeriodInput{
			Matricule:        "M002",
			ResidenceCountry: domain.CountryFrance,
			WithholdingRate:  &rate,
		}
		res, err := CrossBorder(in, d("3000.00"), d("2160.00"), schedule2024())
		require.NoError(t, err)

		// 5% of the taxable 1959.57.
		assert.True(t, res.ProgressiveWithholding.Equal(d("97.98")), "withholding = %s", res.ProgressiveWithholding)
	})
}

func TestCrossBorderItaly(t *testing.T) {
	t.Run("residual_after_credit", func(t *testing.T) {
		in := &domain.EmployeePeriodInput{Matricule: "M003", ResidenceCountry: domain.CountryItaly}
		res, err := CrossBorder(in, d("2500.00"), d("2000.00"), schedule2024())
		require.NoError(t, err)

		// IRPEF on 2000.00: 1250 at 23% + 750 at 25% = 475.00.
		// Monaco credit: 15% of 2500.00 = 375.00. Residual 100.00.
		assert.True(t, res.MonacoCredit.Equal(d("375.00")))
		assert.True(t, res.AdditionalWithholding.Equal(d("100.00")), "residual = %s", res.AdditionalWithholding)
		assert.True(t, res.NetAfterTax.Equal(d("1900.00")))
	})

	t.Run("credit_exceeding_irpef_clamps_to_zero", func(t *testing.T) {
		in := &domain.EmployeePeriodInput{Matricule: "M003", ResidenceCountry: domain.CountryItaly}
		res, err := CrossBorder(in, d("5000.00"), d("1000.00"), schedule2024())
		require.NoError(t, err)

		// IRPEF 230.00 versus a 750.00 credit: nothing extra withheld,
		// and the excess credit is never refunded.
		assert.True(t, res.AdditionalWithholding.IsZero())
		assert.True(t, res.NetAfterTax.Equal(d("1000.00")))
	})
}

func TestCrossBorderUnknownCountry(t *testing.T) {
	for _, country := range []domain.ResidenceCountry{"", "germany"} {
		in := &domain.EmployeePeriodInput{Matricule: "M004", ResidenceCountry: country}
		_, err := CrossBorder(in, d("3000.00"), d("2160.00"), schedule2024())
		require.Error(t, err, "country %q must not default to Monaco", country)
		assert.True(t, errors.Is(err, domain.ErrUnknownCountry))
		assert.True(t, domain.IsConfigError(err))
	}
}

func TestMarginalTax(t *testing.T) {
	brackets := schedule2024().France.Brackets

	tests := []struct {
		name    string
		taxable string
		want    string
	}{
		{"zero", "0", "0"},
		{"negative", "-100.00", "0"},
		{"inside_zero_bracket", "800.00", "0"},
		{"bracket_boundary", "898.08", "0"},
		{"spans_two_brackets", "2289.83", "153.09"},
		{"open_top_bracket", "20000.00", "7182.61"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := marginalTax(d(tt.taxable), brackets)
			assert.True(t, got.Equal(d(tt.want)), "tax = %s, want %s", got, tt.want)
		})
	}
}

func TestMarginalTaxNeverExceedsTopRate(t *testing.T) {
	brackets := schedule2024().Italy.Brackets
	taxable := d("100000.00")
	tax := marginalTax(taxable, brackets)
	assert.True(t, tax.LessThan(taxable.Mul(decimal.RequireFromString("0.43"))),
		"marginal tax must stay below the flat top rate")
}
