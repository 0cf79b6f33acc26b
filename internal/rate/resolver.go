package rate

import (
    "fmt"

    "github.com/shopspring/decimal"
)

// Resolver prices candidate shipping methods against a snapshot of rules.
// It holds no mutable state and is safe for concurrent use.
type Resolver struct {
    matcher *Matcher
}

// NewResolver returns a Resolver using m; a nil m uses the country policy.
func NewResolver(m *Matcher) *Resolver {
    if m == nil {
        m = NewMatcherByName(PolicyCountry)
    }
    return &Resolver{matcher: m}
}

// Validate checks the parts of a request every resolution depends on.
func Validate(req Request) error {
    if len(req.Items) == 0 {
        return fmt.Errorf("%w: no shipment items", ErrInvalidRequest)
    }
    if req.Address == nil {
        return fmt.Errorf("%w: shipping address is not set", ErrInvalidRequest)
    }
    return nil
}

// ShippableSubtotal sums item subtotals, skipping free-shipping and non-shippable items.
func ShippableSubtotal(items []Item) decimal.Decimal {
    total := decimal.Zero
    for _, it := range items {
        if it.FreeShipping || it.ShipDisabled {
            continue
        }
        total = total.Add(it.Subtotal)
    }
    return total
}

// ResolveOptions returns one option per method that has a price, in method order.
func (rs *Resolver) ResolveOptions(rules []Rule, req Request, methods []Method, settings Settings) ([]Option, error) {
    if err := Validate(req); err != nil {
        return nil, err
    }
    q := Query{
        Subtotal:        ShippableSubtotal(req.Items),
        StoreID:         req.StoreID,
        WarehouseID:     req.WarehouseID,
        CountryID:       req.Address.CountryID,
        StateProvinceID: req.Address.StateProvinceID,
        ZipPostalCode:   req.Address.ZipPostalCode,
    }

    options := make([]Option, 0, len(methods))
    for _, m := range methods {
        q.ShippingMethodID = m.ID
        charge, ok := rs.Rate(rules, q, settings)
        if !ok {
            continue
        }
        options = append(options, Option{Name: m.Name, Description: m.Description, Rate: charge})
    }
    return options, nil
}

// Rate matches q against rules and computes the charge; false means unavailable.
func (rs *Resolver) Rate(rules []Rule, q Query, settings Settings) (decimal.Decimal, bool) {
    var matched *Rule
    if r, ok := rs.matcher.Find(rules, q); ok {
        matched = &r
    }
    return ComputeCharge(matched, q.Subtotal, settings.LimitMethodsToConfiguredRules)
}
