package rate

import (
    "testing"

    "github.com/shopspring/decimal"
    "github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeCharge_NoRule(t *testing.T) {
    charge, ok := ComputeCharge(nil, dec("50"), true)
    assert.False(t, ok)
    assert.True(t, charge.IsZero())

    charge, ok = ComputeCharge(nil, dec("50"), false)
    assert.True(t, ok)
    assert.True(t, charge.IsZero())
}

func TestComputeCharge_FlatAmount(t *testing.T) {
    r := &Rule{ChargeAmount: dec("5.00")}
    charge, ok := ComputeCharge(r, dec("50"), true)
    assert.True(t, ok)
    assert.Equal(t, "5.00", charge.StringFixed(2))
}

func TestComputeCharge_Percentage(t *testing.T) {
    cases := []struct {
        name     string
        subtotal string
        pct      string
        want     string
    }{
        {name: "rounds up past half", subtotal: "19.995", pct: "10", want: "2.00"},
        {name: "exact half cent", subtotal: "50", pct: "1", want: "0.50"},
        {name: "halfway rounds away from zero", subtotal: "0.25", pct: "10", want: "0.03"},
        {name: "halfway on even digit", subtotal: "0.45", pct: "10", want: "0.05"},
        {name: "below half rounds down", subtotal: "12.34", pct: "7", want: "0.86"},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            r := &Rule{UsePercentage: true, ChargePercentage: dec(tc.pct)}
            charge, ok := ComputeCharge(r, dec(tc.subtotal), true)
            assert.True(t, ok)
            assert.Equal(t, tc.want, charge.StringFixed(2))
        })
    }
}

func TestComputeCharge_NonPositiveGuards(t *testing.T) {
    charge, ok := ComputeCharge(&Rule{ChargeAmount: dec("-5")}, dec("50"), true)
    assert.True(t, ok)
    assert.True(t, charge.IsZero())

    charge, ok = ComputeCharge(&Rule{UsePercentage: true, ChargePercentage: decimal.Zero}, dec("50"), true)
    assert.True(t, ok)
    assert.True(t, charge.IsZero())

    // the inactive field is ignored
    charge, ok = ComputeCharge(&Rule{UsePercentage: true, ChargeAmount: dec("9")}, dec("50"), true)
    assert.True(t, ok)
    assert.True(t, charge.IsZero())
}

func TestComputeCharge_NegativeSubtotalClamps(t *testing.T) {
    r := &Rule{UsePercentage: true, ChargePercentage: dec("10")}
    charge, ok := ComputeCharge(r, dec("-20"), true)
    assert.True(t, ok)
    assert.True(t, charge.IsZero())
}

func TestComputeCharge_Idempotent(t *testing.T) {
    r := &Rule{UsePercentage: true, ChargePercentage: dec("3.3")}
    first, _ := ComputeCharge(r, dec("123.45"), false)
    second, _ := ComputeCharge(r, dec("123.45"), false)
    assert.True(t, first.Equal(second))
    assert.Equal(t, "4.07", first.StringFixed(2))
}
