package rate

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// ComputeCharge prices a matched rule against subtotal.
// A nil rule yields (0, false) when methods are limited to configured rules,
// meaning the method is unavailable, and (0, true) otherwise.
// Percentage charges are rounded to 2 places, half away from zero.
func ComputeCharge(rule *Rule, subtotal decimal.Decimal, limitToConfigured bool) (decimal.Decimal, bool) {
    if rule == nil {
        if limitToConfigured {
            return decimal.Zero, false
        }
        return decimal.Zero, true
    }
    if rule.UsePercentage && !rule.ChargePercentage.IsPositive() {
        return decimal.Zero, true
    }
    if !rule.UsePercentage && !rule.ChargeAmount.IsPositive() {
        return decimal.Zero, true
    }

    var charge decimal.Decimal
    if rule.UsePercentage {
        charge = subtotal.Mul(rule.ChargePercentage).Div(hundred).Round(2)
    } else {
        charge = rule.ChargeAmount
    }
    if charge.IsNegative() {
        charge = decimal.Zero
    }
    return charge, true
}
