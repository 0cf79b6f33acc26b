package rate

import (
    "errors"
    "fmt"
    "slices"
    "strings"
    "unicode/utf8"

    "github.com/shopspring/decimal"
)

var (
    // ErrInvalidRule is returned when a rule fails administrative validation.
    ErrInvalidRule = errors.New("invalid rule")
    // ErrRuleNotFound is returned by stores when no rule has the requested id.
    ErrRuleNotFound = errors.New("rule not found")
)

// PrepareRule normalizes a rule submitted through the admin API.
// "*" or blank means any ZIP / postal code; the inactive charge field is zeroed.
func PrepareRule(r Rule) (Rule, error) {
    if r.ShippingMethodID == 0 {
        return Rule{}, fmt.Errorf("%w: shipping method required", ErrInvalidRule)
    }
    if r.From.GreaterThan(r.To) {
        return Rule{}, fmt.Errorf("%w: from must not exceed to", ErrInvalidRule)
    }

    zip := strings.TrimSpace(r.ZipPostalCode)
    if zip == "*" {
        zip = ""
    }
    if utf8.RuneCountInString(zip) > ZipPostalCodeMaxLength {
        zip = string([]rune(zip)[:ZipPostalCodeMaxLength])
    }
    r.ZipPostalCode = zip

    if r.UsePercentage {
        r.ChargeAmount = decimal.Zero
    } else {
        r.ChargePercentage = decimal.Zero
    }
    return r, nil
}

// SortForListing orders rules the way the admin list shows them.
func SortForListing(rules []Rule) {
    slices.SortStableFunc(rules, compareRules)
}
